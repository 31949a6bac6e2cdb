// Package memory provides mutex-guarded in-memory implementations of
// the repository interfaces. They honor the same atomic book/reschedule
// contract as the postgres store and back the service tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/scheduler-api/internal/model"
	"github.com/jwalitptl/scheduler-api/internal/repository"
	"github.com/jwalitptl/scheduler-api/internal/schedule"
	apperrors "github.com/jwalitptl/scheduler-api/pkg/errors"
)

type AppointmentRepository struct {
	mu           sync.Mutex
	buffer       time.Duration
	appointments map[uuid.UUID]*model.Appointment
}

func NewAppointmentRepository(buffer time.Duration) *AppointmentRepository {
	return &AppointmentRepository{
		buffer:       buffer,
		appointments: make(map[uuid.UUID]*model.Appointment),
	}
}

var _ repository.AppointmentRepository = (*AppointmentRepository)(nil)

func clone(a *model.Appointment) *model.Appointment {
	cp := *a
	if a.PatientID != nil {
		id := *a.PatientID
		cp.PatientID = &id
	}
	return &cp
}

// conflictsLocked applies the half-open overlap rule over blocking
// appointments. Callers must hold r.mu.
func (r *AppointmentRepository) conflictsLocked(dentistID uuid.UUID, start, end time.Time, excludeID *uuid.UUID) []*model.Appointment {
	var conflicts []*model.Appointment
	for _, a := range r.appointments {
		if a.DentistID != dentistID || !a.Status.Blocking() {
			continue
		}
		if excludeID != nil && a.ID == *excludeID {
			continue
		}
		if schedule.Overlaps(a.StartTime, a.EndTime(), start, end) {
			conflicts = append(conflicts, clone(a))
		}
	}
	sort.Slice(conflicts, func(i, j int) bool {
		return conflicts[i].StartTime.Before(conflicts[j].StartTime)
	})
	return conflicts
}

func conflictIDs(conflicts []*model.Appointment) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(conflicts))
	for _, c := range conflicts {
		ids = append(ids, c.ID)
	}
	return ids
}

func (r *AppointmentRepository) Create(ctx context.Context, appointment *model.Appointment) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	bStart, bEnd := schedule.WithBuffer(appointment.StartTime, appointment.EndTime(), r.buffer)
	conflicts := r.conflictsLocked(appointment.DentistID, bStart, bEnd, nil)
	if len(conflicts) > 0 {
		return apperrors.SchedulingConflict(conflictIDs(conflicts))
	}

	appointment.ID = uuid.New()
	appointment.CreatedAt = time.Now()
	appointment.UpdatedAt = appointment.CreatedAt
	r.appointments[appointment.ID] = clone(appointment)
	return nil
}

func (r *AppointmentRepository) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.appointments[id]
	if !ok {
		return nil, apperrors.NotFound("appointment", nil)
	}
	return clone(a), nil
}

func (r *AppointmentRepository) Reschedule(ctx context.Context, appointment *model.Appointment) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.appointments[appointment.ID]
	if !ok {
		return apperrors.NotFound("appointment", nil)
	}

	bStart, bEnd := schedule.WithBuffer(appointment.StartTime, appointment.EndTime(), r.buffer)
	conflicts := r.conflictsLocked(appointment.DentistID, bStart, bEnd, &appointment.ID)
	if len(conflicts) > 0 {
		return apperrors.SchedulingConflict(conflictIDs(conflicts))
	}

	stored.StartTime = appointment.StartTime
	stored.DurationMinutes = appointment.DurationMinutes
	stored.UpdatedAt = time.Now()
	appointment.UpdatedAt = stored.UpdatedAt
	return nil
}

func (r *AppointmentRepository) UpdateStatus(ctx context.Context, appointment *model.Appointment) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.appointments[appointment.ID]
	if !ok {
		return apperrors.NotFound("appointment", nil)
	}
	stored.Status = appointment.Status
	stored.UpdatedAt = time.Now()
	appointment.UpdatedAt = stored.UpdatedAt
	return nil
}

func (r *AppointmentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.appointments[id]; !ok {
		return apperrors.NotFound("appointment", nil)
	}
	delete(r.appointments, id)
	return nil
}

func (r *AppointmentRepository) List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*model.Appointment
	for _, a := range r.appointments {
		if a.DentistID != filters.DentistID {
			continue
		}
		if filters.Status != "" && a.Status != filters.Status {
			continue
		}
		if filters.From != nil && a.StartTime.Before(*filters.From) {
			continue
		}
		if filters.To != nil && !a.StartTime.Before(*filters.To) {
			continue
		}
		out = append(out, clone(a))
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].StartTime.Before(out[j].StartTime)
	})
	return out, nil
}

func (r *AppointmentRepository) FindConflicts(ctx context.Context, dentistID uuid.UUID, start, end time.Time, excludeID *uuid.UUID) ([]*model.Appointment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	return r.conflictsLocked(dentistID, start, end, excludeID), nil
}

type DentistRepository struct {
	mu       sync.Mutex
	dentists map[uuid.UUID]*model.Dentist
}

func NewDentistRepository() *DentistRepository {
	return &DentistRepository{dentists: make(map[uuid.UUID]*model.Dentist)}
}

var _ repository.DentistRepository = (*DentistRepository)(nil)

func (r *DentistRepository) Create(ctx context.Context, dentist *model.Dentist) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	dentist.ID = uuid.New()
	dentist.CreatedAt = time.Now()
	dentist.UpdatedAt = dentist.CreatedAt
	cp := *dentist
	r.dentists[dentist.ID] = &cp
	return nil
}

func (r *DentistRepository) Get(ctx context.Context, id uuid.UUID) (*model.Dentist, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	d, ok := r.dentists[id]
	if !ok {
		return nil, apperrors.DentistNotFound(id)
	}
	cp := *d
	return &cp, nil
}

func (r *DentistRepository) Update(ctx context.Context, dentist *model.Dentist) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.dentists[dentist.ID]; !ok {
		return apperrors.DentistNotFound(dentist.ID)
	}
	dentist.UpdatedAt = time.Now()
	cp := *dentist
	r.dentists[dentist.ID] = &cp
	return nil
}

func (r *DentistRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.dentists[id]; !ok {
		return apperrors.DentistNotFound(id)
	}
	delete(r.dentists, id)
	return nil
}

func (r *DentistRepository) List(ctx context.Context) ([]*model.Dentist, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*model.Dentist, 0, len(r.dentists))
	for _, d := range r.dentists {
		cp := *d
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

type PatientRepository struct {
	mu       sync.Mutex
	patients map[uuid.UUID]*model.Patient
}

func NewPatientRepository() *PatientRepository {
	return &PatientRepository{patients: make(map[uuid.UUID]*model.Patient)}
}

var _ repository.PatientRepository = (*PatientRepository)(nil)

func (r *PatientRepository) Create(ctx context.Context, patient *model.Patient) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	patient.ID = uuid.New()
	patient.CreatedAt = time.Now()
	patient.UpdatedAt = patient.CreatedAt
	cp := *patient
	r.patients[patient.ID] = &cp
	return nil
}

func (r *PatientRepository) Get(ctx context.Context, id uuid.UUID) (*model.Patient, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.patients[id]
	if !ok {
		return nil, apperrors.PatientNotFound(id)
	}
	cp := *p
	return &cp, nil
}

func (r *PatientRepository) Update(ctx context.Context, patient *model.Patient) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.patients[patient.ID]; !ok {
		return apperrors.PatientNotFound(patient.ID)
	}
	patient.UpdatedAt = time.Now()
	cp := *patient
	r.patients[patient.ID] = &cp
	return nil
}

func (r *PatientRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.patients[id]; !ok {
		return apperrors.PatientNotFound(id)
	}
	delete(r.patients, id)
	return nil
}

func (r *PatientRepository) List(ctx context.Context) ([]*model.Patient, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*model.Patient, 0, len(r.patients))
	for _, p := range r.patients {
		cp := *p
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}
