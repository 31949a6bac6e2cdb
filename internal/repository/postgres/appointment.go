package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/scheduler-api/internal/model"
	"github.com/jwalitptl/scheduler-api/internal/schedule"
	apperrors "github.com/jwalitptl/scheduler-api/pkg/errors"
)

const appointmentColumns = `id, dentist_id, patient_id, start_time, duration_minutes, status, notes, created_at, updated_at`

// conflictQuery selects blocking appointments whose half-open interval
// [start_time, start_time + duration) intersects [$2, $3). The end
// instant is always recomputed from the duration, never stored.
const conflictQuery = `
	SELECT ` + appointmentColumns + `
	FROM appointments
	WHERE dentist_id = $1
	AND status IN ('scheduled', 'confirmed')
	AND start_time < $3
	AND start_time + make_interval(mins => duration_minutes) > $2
`

// lockDentist serializes bookings per dentist for the duration of the
// enclosing transaction. Two concurrent bookings for the same dentist
// cannot both pass the conflict re-check.
func lockDentist(ctx context.Context, tx *sqlx.Tx, dentistID uuid.UUID) error {
	if _, err := tx.ExecContext(ctx,
		`SELECT pg_advisory_xact_lock(hashtextextended($1::text, 0))`, dentistID); err != nil {
		return fmt.Errorf("failed to lock dentist calendar: %w", err)
	}
	return nil
}

func findConflictsTx(ctx context.Context, tx *sqlx.Tx, dentistID uuid.UUID, start, end time.Time, excludeID *uuid.UUID) ([]*model.Appointment, error) {
	query := conflictQuery
	args := []interface{}{dentistID, start, end}
	if excludeID != nil {
		query += " AND id != $4"
		args = append(args, *excludeID)
	}
	query += " ORDER BY start_time ASC"

	var conflicts []*model.Appointment
	if err := tx.SelectContext(ctx, &conflicts, query, args...); err != nil {
		return nil, fmt.Errorf("failed to find conflicting appointments: %w", err)
	}
	return conflicts, nil
}

func conflictIDs(conflicts []*model.Appointment) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(conflicts))
	for _, c := range conflicts {
		ids = append(ids, c.ID)
	}
	return ids
}

func appendEventTx(ctx context.Context, tx *sqlx.Tx, eventType string, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal event payload: %w", err)
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO outbox_events (id, event_type, payload, status, created_at, retry_count)
		VALUES ($1, $2, $3, $4, $5, 0)
	`, uuid.New(), eventType, body, model.OutboxStatusPending, time.Now())
	if err != nil {
		return fmt.Errorf("failed to append outbox event: %w", err)
	}
	return nil
}

func (r *appointmentRepository) Create(ctx context.Context, appointment *model.Appointment) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := lockDentist(ctx, tx, appointment.DentistID); err != nil {
		return err
	}

	bStart, bEnd := schedule.WithBuffer(appointment.StartTime, appointment.EndTime(), r.buffer)
	conflicts, err := findConflictsTx(ctx, tx, appointment.DentistID, bStart, bEnd, nil)
	if err != nil {
		return err
	}
	if len(conflicts) > 0 {
		return apperrors.SchedulingConflict(conflictIDs(conflicts))
	}

	appointment.ID = uuid.New()
	appointment.CreatedAt = time.Now()
	appointment.UpdatedAt = appointment.CreatedAt

	_, err = tx.ExecContext(ctx, `
		INSERT INTO appointments (`+appointmentColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`,
		appointment.ID,
		appointment.DentistID,
		appointment.PatientID,
		appointment.StartTime,
		appointment.DurationMinutes,
		appointment.Status,
		appointment.Notes,
		appointment.CreatedAt,
		appointment.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create appointment: %w", err)
	}

	if err := appendEventTx(ctx, tx, model.EventAppointmentBooked, appointment); err != nil {
		return err
	}

	return tx.Commit()
}

func (r *appointmentRepository) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	var appointment model.Appointment
	err := r.db.GetContext(ctx, &appointment, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE id = $1
	`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("appointment", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}
	return &appointment, nil
}

func (r *appointmentRepository) Reschedule(ctx context.Context, appointment *model.Appointment) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := lockDentist(ctx, tx, appointment.DentistID); err != nil {
		return err
	}

	// The appointment being moved must not conflict with itself.
	bStart, bEnd := schedule.WithBuffer(appointment.StartTime, appointment.EndTime(), r.buffer)
	conflicts, err := findConflictsTx(ctx, tx, appointment.DentistID, bStart, bEnd, &appointment.ID)
	if err != nil {
		return err
	}
	if len(conflicts) > 0 {
		return apperrors.SchedulingConflict(conflictIDs(conflicts))
	}

	appointment.UpdatedAt = time.Now()

	result, err := tx.ExecContext(ctx, `
		UPDATE appointments
		SET start_time = $1, duration_minutes = $2, updated_at = $3
		WHERE id = $4
	`,
		appointment.StartTime,
		appointment.DurationMinutes,
		appointment.UpdatedAt,
		appointment.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to reschedule appointment: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.NotFound("appointment", nil)
	}

	if err := appendEventTx(ctx, tx, model.EventAppointmentRescheduled, appointment); err != nil {
		return err
	}

	return tx.Commit()
}

func (r *appointmentRepository) UpdateStatus(ctx context.Context, appointment *model.Appointment) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	appointment.UpdatedAt = time.Now()

	result, err := tx.ExecContext(ctx, `
		UPDATE appointments
		SET status = $1, updated_at = $2
		WHERE id = $3
	`,
		appointment.Status,
		appointment.UpdatedAt,
		appointment.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update appointment status: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.NotFound("appointment", nil)
	}

	eventType := model.EventAppointmentStatusChanged
	if appointment.Status == model.AppointmentStatusCancelled {
		eventType = model.EventAppointmentCancelled
	}
	if err := appendEventTx(ctx, tx, eventType, appointment); err != nil {
		return err
	}

	return tx.Commit()
}

func (r *appointmentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `DELETE FROM appointments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete appointment: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.NotFound("appointment", nil)
	}

	if err := appendEventTx(ctx, tx, model.EventAppointmentDeleted, map[string]interface{}{"id": id}); err != nil {
		return err
	}

	return tx.Commit()
}

func (r *appointmentRepository) List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error) {
	query := `
		SELECT ` + appointmentColumns + `
		FROM appointments
		WHERE dentist_id = $1
	`
	args := []interface{}{filters.DentistID}
	argCount := 2

	if filters.Status != "" {
		query += fmt.Sprintf(" AND status = $%d", argCount)
		args = append(args, filters.Status)
		argCount++
	}

	if filters.From != nil {
		query += fmt.Sprintf(" AND start_time >= $%d", argCount)
		args = append(args, *filters.From)
		argCount++
	}

	if filters.To != nil {
		query += fmt.Sprintf(" AND start_time < $%d", argCount)
		args = append(args, *filters.To)
		argCount++
	}

	query += " ORDER BY start_time ASC"

	var appointments []*model.Appointment
	if err := r.db.SelectContext(ctx, &appointments, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	return appointments, nil
}

func (r *appointmentRepository) FindConflicts(ctx context.Context, dentistID uuid.UUID, start, end time.Time, excludeID *uuid.UUID) ([]*model.Appointment, error) {
	query := conflictQuery
	args := []interface{}{dentistID, start, end}
	if excludeID != nil {
		query += " AND id != $4"
		args = append(args, *excludeID)
	}
	query += " ORDER BY start_time ASC"

	var conflicts []*model.Appointment
	if err := r.db.SelectContext(ctx, &conflicts, query, args...); err != nil {
		return nil, fmt.Errorf("failed to find conflicting appointments: %w", err)
	}
	return conflicts, nil
}
