package appointment

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/scheduler-api/internal/model"
	"github.com/jwalitptl/scheduler-api/internal/repository"
	"github.com/jwalitptl/scheduler-api/internal/schedule"
	apperrors "github.com/jwalitptl/scheduler-api/pkg/errors"
	"github.com/jwalitptl/scheduler-api/pkg/logger"
)

// Config carries the scheduling knobs.
type Config struct {
	// BufferMinutes widens the candidate interval in availability
	// dry-runs. The store applies the same buffer inside its atomic
	// conflict re-check. Zero keeps exact half-open overlap semantics.
	BufferMinutes int
	// StoreTimeout bounds every store call. Zero disables the bound.
	StoreTimeout time.Duration
}

// DentistDirectory answers whether a dentist can take bookings. The
// lookup is expected to sit behind a read cache.
type DentistDirectory interface {
	IsActive(ctx context.Context, id uuid.UUID) (bool, error)
}

// PatientDirectory resolves patient ids on the booking path.
type PatientDirectory interface {
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}

type Service struct {
	repo     repository.AppointmentRepository
	dentists DentistDirectory
	patients PatientDirectory
	cfg      Config
	logger   *logger.Logger
}

func NewService(
	repo repository.AppointmentRepository,
	dentists DentistDirectory,
	patients PatientDirectory,
	cfg Config,
	logger *logger.Logger,
) *Service {
	return &Service{
		repo:     repo,
		dentists: dentists,
		patients: patients,
		cfg:      cfg,
		logger:   logger,
	}
}

func (s *Service) buffer() time.Duration {
	return time.Duration(s.cfg.BufferMinutes) * time.Minute
}

func (s *Service) storeCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.cfg.StoreTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.cfg.StoreTimeout)
}

// wrapStoreErr surfaces store deadline hits as the Timeout kind so
// callers never mistake an unavailable store for a scheduling conflict.
func wrapStoreErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return apperrors.Timeout(err)
	}
	return err
}

// Book validates the request, resolves the dentist (and patient, when
// given) and persists a new scheduled appointment. The conflict check,
// including the configured booking buffer, and the insert run as one
// atomic unit inside the store.
func (s *Service) Book(ctx context.Context, req *model.BookAppointmentRequest) (*model.Appointment, error) {
	if !req.StartTime.After(time.Now()) {
		return nil, apperrors.BadRequest("start time must be in the future", nil)
	}
	if _, err := schedule.End(req.StartTime, req.DurationMinutes); err != nil {
		return nil, apperrors.BadRequest("invalid duration", err)
	}

	sctx, cancel := s.storeCtx(ctx)
	defer cancel()

	active, err := s.dentists.IsActive(sctx, req.DentistID)
	if err != nil {
		return nil, wrapStoreErr(err)
	}
	if !active {
		return nil, apperrors.DentistInactive(req.DentistID)
	}

	if req.PatientID != nil {
		exists, err := s.patients.Exists(sctx, *req.PatientID)
		if err != nil {
			return nil, wrapStoreErr(err)
		}
		if !exists {
			return nil, apperrors.PatientNotFound(*req.PatientID)
		}
	}

	appointment := &model.Appointment{
		DentistID:       req.DentistID,
		PatientID:       req.PatientID,
		StartTime:       req.StartTime,
		DurationMinutes: req.DurationMinutes,
		Status:          model.AppointmentStatusScheduled,
		Notes:           req.Notes,
	}

	if err := s.repo.Create(sctx, appointment); err != nil {
		return nil, wrapStoreErr(err)
	}

	s.logger.ZL.Info().
		Str("appointment_id", appointment.ID.String()).
		Str("dentist_id", appointment.DentistID.String()).
		Time("start_time", appointment.StartTime).
		Int("duration_minutes", appointment.DurationMinutes).
		Msg("appointment booked")

	return appointment, nil
}

// Reschedule moves an existing appointment to a new interval. The
// appointment's own slot is excluded from the conflict check so it
// never conflicts with itself. Status is left untouched.
func (s *Service) Reschedule(ctx context.Context, id uuid.UUID, req *model.RescheduleAppointmentRequest) (*model.Appointment, error) {
	if _, err := schedule.End(req.StartTime, req.DurationMinutes); err != nil {
		return nil, apperrors.BadRequest("invalid duration", err)
	}

	sctx, cancel := s.storeCtx(ctx)
	defer cancel()

	appointment, err := s.repo.Get(sctx, id)
	if err != nil {
		return nil, wrapStoreErr(err)
	}
	if appointment.Status.Terminal() {
		return nil, apperrors.InvalidTransition(string(appointment.Status), string(appointment.Status))
	}

	appointment.StartTime = req.StartTime
	appointment.DurationMinutes = req.DurationMinutes

	if err := s.repo.Reschedule(sctx, appointment); err != nil {
		return nil, wrapStoreErr(err)
	}

	s.logger.ZL.Info().
		Str("appointment_id", appointment.ID.String()).
		Time("start_time", appointment.StartTime).
		Msg("appointment rescheduled")

	return appointment, nil
}

// Cancel transitions the appointment to cancelled. It is not
// idempotent: cancelling an already-cancelled appointment fails with
// InvalidTransition. History is retained.
func (s *Service) Cancel(ctx context.Context, id uuid.UUID) error {
	_, err := s.UpdateStatus(ctx, id, model.AppointmentStatusCancelled)
	return err
}

// UpdateStatus applies a lifecycle transition, rejecting any edge not
// in the transition table.
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, status model.AppointmentStatus) (*model.Appointment, error) {
	if !status.Valid() {
		return nil, apperrors.BadRequest("unknown status", nil)
	}

	sctx, cancel := s.storeCtx(ctx)
	defer cancel()

	appointment, err := s.repo.Get(sctx, id)
	if err != nil {
		return nil, wrapStoreErr(err)
	}
	if !appointment.Status.CanTransition(status) {
		return nil, apperrors.InvalidTransition(string(appointment.Status), string(status))
	}

	appointment.Status = status
	if err := s.repo.UpdateStatus(sctx, appointment); err != nil {
		return nil, wrapStoreErr(err)
	}

	s.logger.ZL.Info().
		Str("appointment_id", appointment.ID.String()).
		Str("status", string(status)).
		Msg("appointment status updated")

	return appointment, nil
}

// Get loads a single appointment.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	sctx, cancel := s.storeCtx(ctx)
	defer cancel()

	appointment, err := s.repo.Get(sctx, id)
	return appointment, wrapStoreErr(err)
}

// CheckAvailability is a pure dry-run: it reports whether the candidate
// interval is free without persisting anything.
func (s *Service) CheckAvailability(ctx context.Context, dentistID uuid.UUID, start time.Time, durationMinutes int) (bool, error) {
	end, err := schedule.End(start, durationMinutes)
	if err != nil {
		return false, apperrors.BadRequest("invalid duration", err)
	}
	bStart, bEnd := schedule.WithBuffer(start, end, s.buffer())

	sctx, cancel := s.storeCtx(ctx)
	defer cancel()

	conflicts, err := s.repo.FindConflicts(sctx, dentistID, bStart, bEnd, nil)
	if err != nil {
		return false, wrapStoreErr(err)
	}
	return len(conflicts) == 0, nil
}

// ListByDentist returns the dentist's appointments sorted by start time
// ascending, optionally windowed to [from, to).
func (s *Service) ListByDentist(ctx context.Context, dentistID uuid.UUID, from, to *time.Time) ([]*model.Appointment, error) {
	sctx, cancel := s.storeCtx(ctx)
	defer cancel()

	appointments, err := s.repo.List(sctx, &model.AppointmentFilters{
		DentistID: dentistID,
		From:      from,
		To:        to,
	})
	return appointments, wrapStoreErr(err)
}

// Delete removes an appointment record entirely. Only terminal-status
// appointments may be deleted; cancellation alone never destroys
// history.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	sctx, cancel := s.storeCtx(ctx)
	defer cancel()

	appointment, err := s.repo.Get(sctx, id)
	if err != nil {
		return wrapStoreErr(err)
	}
	if !appointment.Status.Terminal() {
		return apperrors.BadRequest("only cancelled or completed appointments can be deleted", nil)
	}

	return wrapStoreErr(s.repo.Delete(sctx, id))
}
