package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/scheduler-api/internal/model"
)

// All repository interfaces in one file
type (
	// AppointmentRepository owns the canonical appointment records.
	// Create and Reschedule must run their conflict re-check and the
	// write as one atomic unit per dentist; the re-check covers the
	// store's configured booking buffer, and on conflict they return
	// an error carrying the blocking appointment ids.
	AppointmentRepository interface {
		Create(ctx context.Context, appointment *model.Appointment) error
		Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error)
		Reschedule(ctx context.Context, appointment *model.Appointment) error
		UpdateStatus(ctx context.Context, appointment *model.Appointment) error
		Delete(ctx context.Context, id uuid.UUID) error
		List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error)
		FindConflicts(ctx context.Context, dentistID uuid.UUID, start, end time.Time, excludeID *uuid.UUID) ([]*model.Appointment, error)
	}

	DentistRepository interface {
		Create(ctx context.Context, dentist *model.Dentist) error
		Get(ctx context.Context, id uuid.UUID) (*model.Dentist, error)
		Update(ctx context.Context, dentist *model.Dentist) error
		Delete(ctx context.Context, id uuid.UUID) error
		List(ctx context.Context) ([]*model.Dentist, error)
	}

	PatientRepository interface {
		Create(ctx context.Context, patient *model.Patient) error
		Get(ctx context.Context, id uuid.UUID) (*model.Patient, error)
		Update(ctx context.Context, patient *model.Patient) error
		Delete(ctx context.Context, id uuid.UUID) error
		List(ctx context.Context) ([]*model.Patient, error)
	}

	// OutboxRepository hands out pending events. ClaimPendingEvents
	// must atomically move the claimed batch out of the pending set so
	// two workers never publish the same event.
	OutboxRepository interface {
		ClaimPendingEvents(ctx context.Context, limit int) ([]*model.OutboxEvent, error)
		UpdateStatus(ctx context.Context, id uuid.UUID, status model.OutboxStatus, errMsg *string) error
	}
)
