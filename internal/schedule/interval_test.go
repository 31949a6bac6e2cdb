package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEnd(t *testing.T) {
	start := time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC)

	end, err := End(start, 30)
	assert.NoError(t, err)
	assert.Equal(t, start.Add(30*time.Minute), end)

	_, err = End(start, 0)
	assert.ErrorIs(t, err, ErrInvalidDuration)

	_, err = End(start, -15)
	assert.ErrorIs(t, err, ErrInvalidDuration)
}

func TestOverlaps(t *testing.T) {
	at := func(h, m int) time.Time {
		return time.Date(2026, 9, 1, h, m, 0, 0, time.UTC)
	}

	cases := []struct {
		name           string
		aStart, aEnd   time.Time
		bStart, bEnd   time.Time
		expectsOverlap bool
	}{
		{
			name:   "identical intervals",
			aStart: at(9, 0), aEnd: at(9, 30),
			bStart: at(9, 0), bEnd: at(9, 30),
			expectsOverlap: true,
		},
		{
			name:   "same start different durations",
			aStart: at(9, 0), aEnd: at(9, 30),
			bStart: at(9, 0), bEnd: at(10, 0),
			expectsOverlap: true,
		},
		{
			name:   "partial overlap at tail",
			aStart: at(9, 0), aEnd: at(9, 30),
			bStart: at(9, 15), bEnd: at(9, 45),
			expectsOverlap: true,
		},
		{
			name:   "b contained in a",
			aStart: at(9, 0), aEnd: at(10, 0),
			bStart: at(9, 15), bEnd: at(9, 30),
			expectsOverlap: true,
		},
		{
			name:   "back to back, a then b",
			aStart: at(9, 0), aEnd: at(9, 30),
			bStart: at(9, 30), bEnd: at(10, 0),
			expectsOverlap: false,
		},
		{
			name:   "back to back, b then a",
			aStart: at(9, 30), aEnd: at(10, 0),
			bStart: at(9, 0), bEnd: at(9, 30),
			expectsOverlap: false,
		},
		{
			name:   "disjoint",
			aStart: at(9, 0), aEnd: at(9, 30),
			bStart: at(11, 0), bEnd: at(11, 30),
			expectsOverlap: false,
		},
		{
			name:   "one minute of overlap",
			aStart: at(9, 0), aEnd: at(9, 30),
			bStart: at(9, 29), bEnd: at(10, 0),
			expectsOverlap: true,
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.expectsOverlap, Overlaps(c.aStart, c.aEnd, c.bStart, c.bEnd))
			// Overlap is symmetric
			assert.Equal(t, c.expectsOverlap, Overlaps(c.bStart, c.bEnd, c.aStart, c.aEnd))
		})
	}
}

func TestWithBuffer(t *testing.T) {
	start := time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC)
	end := start.Add(30 * time.Minute)

	s, e := WithBuffer(start, end, 0)
	assert.Equal(t, start, s)
	assert.Equal(t, end, e)

	s, e = WithBuffer(start, end, 10*time.Minute)
	assert.Equal(t, start.Add(-10*time.Minute), s)
	assert.Equal(t, end.Add(10*time.Minute), e)
}
