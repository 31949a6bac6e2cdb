package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAppointmentStatusTransitions(t *testing.T) {
	all := []AppointmentStatus{
		AppointmentStatusScheduled,
		AppointmentStatusConfirmed,
		AppointmentStatusCancelled,
		AppointmentStatusCompleted,
	}

	allowed := map[AppointmentStatus][]AppointmentStatus{
		AppointmentStatusScheduled: {AppointmentStatusConfirmed, AppointmentStatusCancelled},
		AppointmentStatusConfirmed: {AppointmentStatusCompleted, AppointmentStatusCancelled},
		AppointmentStatusCancelled: {},
		AppointmentStatusCompleted: {},
	}

	// Every edge in the full from x to grid must match the table.
	for _, from := range all {
		for _, to := range all {
			want := false
			for _, a := range allowed[from] {
				if a == to {
					want = true
				}
			}
			assert.Equalf(t, want, from.CanTransition(to), "%s -> %s", from, to)
		}
	}
}

func TestAppointmentStatusSets(t *testing.T) {
	assert.True(t, AppointmentStatusScheduled.Blocking())
	assert.True(t, AppointmentStatusConfirmed.Blocking())
	assert.False(t, AppointmentStatusCancelled.Blocking())
	assert.False(t, AppointmentStatusCompleted.Blocking())

	assert.False(t, AppointmentStatusScheduled.Terminal())
	assert.False(t, AppointmentStatusConfirmed.Terminal())
	assert.True(t, AppointmentStatusCancelled.Terminal())
	assert.True(t, AppointmentStatusCompleted.Terminal())

	assert.True(t, AppointmentStatusScheduled.Valid())
	assert.False(t, AppointmentStatus("rescheduled").Valid())
	assert.False(t, AppointmentStatus("").Valid())
}

func TestAppointmentEndTime(t *testing.T) {
	start := time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC)
	apt := &Appointment{StartTime: start, DurationMinutes: 45}
	assert.Equal(t, start.Add(45*time.Minute), apt.EndTime())

	// End moves when duration changes; nothing is cached.
	apt.DurationMinutes = 60
	assert.Equal(t, start.Add(time.Hour), apt.EndTime())
}
