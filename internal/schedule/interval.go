// Package schedule holds the interval arithmetic the conflict resolver
// is built on. All intervals are half-open: [start, end).
package schedule

import (
	"errors"
	"time"
)

// ErrInvalidDuration is returned for non-positive appointment durations.
var ErrInvalidDuration = errors.New("duration must be a positive number of minutes")

// End computes the end instant of an appointment starting at start and
// lasting minutes.
func End(start time.Time, minutes int) (time.Time, error) {
	if minutes <= 0 {
		return time.Time{}, ErrInvalidDuration
	}
	return start.Add(time.Duration(minutes) * time.Minute), nil
}

// Overlaps reports whether the half-open intervals [aStart, aEnd) and
// [bStart, bEnd) intersect. An interval ending exactly where the other
// begins does not overlap, so back-to-back appointments are allowed.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}

// WithBuffer widens [start, end) by the configured booking buffer on
// both sides. A zero buffer returns the interval unchanged.
func WithBuffer(start, end time.Time, buffer time.Duration) (time.Time, time.Time) {
	if buffer <= 0 {
		return start, end
	}
	return start.Add(-buffer), end.Add(buffer)
}
