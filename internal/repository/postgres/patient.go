package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/scheduler-api/internal/model"
	apperrors "github.com/jwalitptl/scheduler-api/pkg/errors"
)

const patientColumns = `id, name, email, phone, birth_date, created_at, updated_at`

func (r *patientRepository) Create(ctx context.Context, patient *model.Patient) error {
	patient.ID = uuid.New()
	patient.CreatedAt = time.Now()
	patient.UpdatedAt = patient.CreatedAt

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO patients (`+patientColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`,
		patient.ID,
		patient.Name,
		patient.Email,
		patient.Phone,
		patient.BirthDate,
		patient.CreatedAt,
		patient.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create patient: %w", err)
	}
	return nil
}

func (r *patientRepository) Get(ctx context.Context, id uuid.UUID) (*model.Patient, error) {
	var patient model.Patient
	err := r.db.GetContext(ctx, &patient, `
		SELECT `+patientColumns+`
		FROM patients
		WHERE id = $1
	`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.PatientNotFound(id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get patient: %w", err)
	}
	return &patient, nil
}

func (r *patientRepository) Update(ctx context.Context, patient *model.Patient) error {
	patient.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(ctx, `
		UPDATE patients
		SET name = $1, email = $2, phone = $3, birth_date = $4, updated_at = $5
		WHERE id = $6
	`,
		patient.Name,
		patient.Email,
		patient.Phone,
		patient.BirthDate,
		patient.UpdatedAt,
		patient.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update patient: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.PatientNotFound(patient.ID)
	}
	return nil
}

func (r *patientRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM patients WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete patient: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.PatientNotFound(id)
	}
	return nil
}

func (r *patientRepository) List(ctx context.Context) ([]*model.Patient, error) {
	var patients []*model.Patient
	err := r.db.SelectContext(ctx, &patients, `
		SELECT `+patientColumns+`
		FROM patients
		ORDER BY name ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list patients: %w", err)
	}
	return patients, nil
}
