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

const dentistColumns = `id, name, email, specialty, cro, active, created_at, updated_at`

func (r *dentistRepository) Create(ctx context.Context, dentist *model.Dentist) error {
	dentist.ID = uuid.New()
	dentist.CreatedAt = time.Now()
	dentist.UpdatedAt = dentist.CreatedAt

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO dentists (`+dentistColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`,
		dentist.ID,
		dentist.Name,
		dentist.Email,
		dentist.Specialty,
		dentist.CRO,
		dentist.Active,
		dentist.CreatedAt,
		dentist.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create dentist: %w", err)
	}
	return nil
}

func (r *dentistRepository) Get(ctx context.Context, id uuid.UUID) (*model.Dentist, error) {
	var dentist model.Dentist
	err := r.db.GetContext(ctx, &dentist, `
		SELECT `+dentistColumns+`
		FROM dentists
		WHERE id = $1
	`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.DentistNotFound(id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get dentist: %w", err)
	}
	return &dentist, nil
}

func (r *dentistRepository) Update(ctx context.Context, dentist *model.Dentist) error {
	dentist.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(ctx, `
		UPDATE dentists
		SET name = $1, email = $2, specialty = $3, active = $4, updated_at = $5
		WHERE id = $6
	`,
		dentist.Name,
		dentist.Email,
		dentist.Specialty,
		dentist.Active,
		dentist.UpdatedAt,
		dentist.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update dentist: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.DentistNotFound(dentist.ID)
	}
	return nil
}

func (r *dentistRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM dentists WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete dentist: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.DentistNotFound(id)
	}
	return nil
}

func (r *dentistRepository) List(ctx context.Context) ([]*model.Dentist, error) {
	var dentists []*model.Dentist
	err := r.db.SelectContext(ctx, &dentists, `
		SELECT `+dentistColumns+`
		FROM dentists
		ORDER BY name ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list dentists: %w", err)
	}
	return dentists, nil
}
