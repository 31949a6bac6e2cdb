package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type OutboxStatus string

const (
	OutboxStatusPending    OutboxStatus = "PENDING"
	OutboxStatusProcessing OutboxStatus = "PROCESSING"
	OutboxStatusProcessed  OutboxStatus = "PROCESSED"
	OutboxStatusFailed     OutboxStatus = "FAILED"
)

// Appointment lifecycle event types written to the outbox.
const (
	EventAppointmentBooked        = "appointment.booked"
	EventAppointmentRescheduled   = "appointment.rescheduled"
	EventAppointmentCancelled     = "appointment.cancelled"
	EventAppointmentStatusChanged = "appointment.status_changed"
	EventAppointmentDeleted       = "appointment.deleted"
)

type OutboxEvent struct {
	ID           uuid.UUID       `db:"id" json:"id"`
	EventType    string          `db:"event_type" json:"event_type"`
	Payload      json.RawMessage `db:"payload" json:"payload"`
	Status       OutboxStatus    `db:"status" json:"status"`
	ErrorMessage *string         `db:"error_message" json:"error_message,omitempty"`
	CreatedAt    time.Time       `db:"created_at" json:"created_at"`
	ProcessedAt  *time.Time      `db:"processed_at" json:"processed_at,omitempty"`
	RetryCount   int             `db:"retry_count" json:"retry_count"`
}
