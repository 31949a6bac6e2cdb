package model

import (
	"time"

	"github.com/google/uuid"
)

// Patient is the party an appointment is booked for.
type Patient struct {
	ID        uuid.UUID  `db:"id" json:"id"`
	Name      string     `db:"name" json:"name"`
	Email     string     `db:"email" json:"email,omitempty"`
	Phone     string     `db:"phone" json:"phone,omitempty"`
	BirthDate *time.Time `db:"birth_date" json:"birth_date,omitempty"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt time.Time  `db:"updated_at" json:"updated_at"`
}

type CreatePatientRequest struct {
	Name      string     `json:"name" binding:"required,max=255"`
	Email     string     `json:"email" binding:"omitempty,email"`
	Phone     string     `json:"phone" binding:"max=32"`
	BirthDate *time.Time `json:"birth_date"`
}

type UpdatePatientRequest struct {
	Name      *string    `json:"name" binding:"omitempty,max=255"`
	Email     *string    `json:"email" binding:"omitempty,email"`
	Phone     *string    `json:"phone" binding:"omitempty,max=32"`
	BirthDate *time.Time `json:"birth_date"`
}
