package model

import (
	"time"

	"github.com/google/uuid"
)

type AppointmentStatus string

const (
	AppointmentStatusScheduled AppointmentStatus = "scheduled"
	AppointmentStatusConfirmed AppointmentStatus = "confirmed"
	AppointmentStatusCancelled AppointmentStatus = "cancelled"
	AppointmentStatusCompleted AppointmentStatus = "completed"
)

// Valid reports whether s is a known status value.
func (s AppointmentStatus) Valid() bool {
	switch s {
	case AppointmentStatusScheduled, AppointmentStatusConfirmed,
		AppointmentStatusCancelled, AppointmentStatusCompleted:
		return true
	}
	return false
}

// Terminal statuses permit no further transitions.
func (s AppointmentStatus) Terminal() bool {
	return s == AppointmentStatusCancelled || s == AppointmentStatusCompleted
}

// Blocking statuses count toward conflict detection.
func (s AppointmentStatus) Blocking() bool {
	return s == AppointmentStatusScheduled || s == AppointmentStatusConfirmed
}

// CanTransition reports whether the edge s -> next is permitted:
// scheduled -> confirmed|cancelled, confirmed -> completed|cancelled.
func (s AppointmentStatus) CanTransition(next AppointmentStatus) bool {
	switch s {
	case AppointmentStatusScheduled:
		return next == AppointmentStatusConfirmed || next == AppointmentStatusCancelled
	case AppointmentStatusConfirmed:
		return next == AppointmentStatusCompleted || next == AppointmentStatusCancelled
	}
	return false
}

// BlockingStatuses returns the statuses considered during conflict
// detection, in the order used by store queries.
func BlockingStatuses() []AppointmentStatus {
	return []AppointmentStatus{AppointmentStatusScheduled, AppointmentStatusConfirmed}
}

// Appointment is a time-boxed booking on a dentist's calendar. A nil
// PatientID marks a dentist block-out slot. The end instant is always
// derived from StartTime and DurationMinutes, never stored.
type Appointment struct {
	ID              uuid.UUID         `db:"id" json:"id"`
	DentistID       uuid.UUID         `db:"dentist_id" json:"dentist_id"`
	PatientID       *uuid.UUID        `db:"patient_id" json:"patient_id,omitempty"`
	StartTime       time.Time         `db:"start_time" json:"start_time"`
	DurationMinutes int               `db:"duration_minutes" json:"duration_minutes"`
	Status          AppointmentStatus `db:"status" json:"status"`
	Notes           string            `db:"notes" json:"notes,omitempty"`
	CreatedAt       time.Time         `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time         `db:"updated_at" json:"updated_at"`
}

// EndTime recomputes the end instant from the stored start and duration.
func (a *Appointment) EndTime() time.Time {
	return a.StartTime.Add(time.Duration(a.DurationMinutes) * time.Minute)
}

type BookAppointmentRequest struct {
	DentistID       uuid.UUID  `json:"dentist_id" binding:"required"`
	PatientID       *uuid.UUID `json:"patient_id"`
	StartTime       time.Time  `json:"start_time" binding:"required,future"`
	DurationMinutes int        `json:"duration_minutes" binding:"required,gt=0"`
	Notes           string     `json:"notes" binding:"max=1000"`
}

type RescheduleAppointmentRequest struct {
	StartTime       time.Time `json:"start_time" binding:"required"`
	DurationMinutes int       `json:"duration_minutes" binding:"required,gt=0"`
}

type UpdateAppointmentStatusRequest struct {
	Status AppointmentStatus `json:"status" binding:"required"`
}

type AppointmentFilters struct {
	DentistID uuid.UUID
	Status    AppointmentStatus
	From      *time.Time
	To        *time.Time
}
