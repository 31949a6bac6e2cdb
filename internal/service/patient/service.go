package patient

import (
	"context"

	"github.com/google/uuid"

	"github.com/jwalitptl/scheduler-api/internal/model"
	"github.com/jwalitptl/scheduler-api/internal/repository"
	apperrors "github.com/jwalitptl/scheduler-api/pkg/errors"
)

// Service is the patient directory.
type Service struct {
	repo repository.PatientRepository
}

func NewService(repo repository.PatientRepository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Create(ctx context.Context, req *model.CreatePatientRequest) (*model.Patient, error) {
	patient := &model.Patient{
		Name:      req.Name,
		Email:     req.Email,
		Phone:     req.Phone,
		BirthDate: req.BirthDate,
	}
	if err := s.repo.Create(ctx, patient); err != nil {
		return nil, err
	}
	return patient, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.Patient, error) {
	return s.repo.Get(ctx, id)
}

// Exists reports whether the patient id resolves in the directory.
// Store failures propagate; only a not-found answer reads as absent.
func (s *Service) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	if _, err := s.repo.Get(ctx, id); err != nil {
		if apperrors.IsCode(err, apperrors.ErrPatientNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, req *model.UpdatePatientRequest) (*model.Patient, error) {
	patient, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		patient.Name = *req.Name
	}
	if req.Email != nil {
		patient.Email = *req.Email
	}
	if req.Phone != nil {
		patient.Phone = *req.Phone
	}
	if req.BirthDate != nil {
		patient.BirthDate = req.BirthDate
	}

	if err := s.repo.Update(ctx, patient); err != nil {
		return nil, err
	}
	return patient, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]*model.Patient, error) {
	return s.repo.List(ctx)
}
