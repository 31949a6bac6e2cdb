package model

import (
	"time"

	"github.com/google/uuid"
)

// Dentist is the bookable provider resource. Inactive dentists remain
// in the directory but reject new bookings.
type Dentist struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Email     string    `db:"email" json:"email,omitempty"`
	Specialty string    `db:"specialty" json:"specialty,omitempty"`
	CRO       string    `db:"cro" json:"cro,omitempty"`
	Active    bool      `db:"active" json:"active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

type CreateDentistRequest struct {
	Name      string `json:"name" binding:"required,max=255"`
	Email     string `json:"email" binding:"omitempty,email"`
	Specialty string `json:"specialty" binding:"max=255"`
	CRO       string `json:"cro" binding:"max=32"`
}

type UpdateDentistRequest struct {
	Name      *string `json:"name" binding:"omitempty,max=255"`
	Email     *string `json:"email" binding:"omitempty,email"`
	Specialty *string `json:"specialty" binding:"omitempty,max=255"`
	Active    *bool   `json:"active"`
}
