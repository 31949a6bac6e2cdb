package postgres

import (
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/scheduler-api/internal/repository"
)

type appointmentRepository struct {
	db *sqlx.DB
	// buffer widens the candidate interval inside the atomic conflict
	// re-check, so the configured gap survives concurrent bookings.
	buffer time.Duration
}

type dentistRepository struct {
	db *sqlx.DB
}

type patientRepository struct {
	db *sqlx.DB
}

type outboxRepository struct {
	db *sqlx.DB
}

func NewAppointmentRepository(db *sqlx.DB, buffer time.Duration) repository.AppointmentRepository {
	return &appointmentRepository{db: db, buffer: buffer}
}

func NewDentistRepository(db *sqlx.DB) repository.DentistRepository {
	return &dentistRepository{db: db}
}

func NewPatientRepository(db *sqlx.DB) repository.PatientRepository {
	return &patientRepository{db: db}
}

func NewOutboxRepository(db *sqlx.DB) repository.OutboxRepository {
	return &outboxRepository{db: db}
}
