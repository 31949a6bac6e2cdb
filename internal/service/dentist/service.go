package dentist

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"github.com/jwalitptl/scheduler-api/internal/model"
	"github.com/jwalitptl/scheduler-api/internal/repository"
	apperrors "github.com/jwalitptl/scheduler-api/pkg/errors"
)

// Service is the dentist directory. Lookups on the booking path are
// fronted by a short-TTL cache; writes invalidate the cached entry.
type Service struct {
	repo  repository.DentistRepository
	cache *cache.Cache
}

func NewService(repo repository.DentistRepository) *Service {
	return &Service{
		repo:  repo,
		cache: cache.New(30*time.Second, time.Minute),
	}
}

func (s *Service) Create(ctx context.Context, req *model.CreateDentistRequest) (*model.Dentist, error) {
	dentist := &model.Dentist{
		Name:      req.Name,
		Email:     req.Email,
		Specialty: req.Specialty,
		CRO:       req.CRO,
		Active:    true,
	}
	if err := s.repo.Create(ctx, dentist); err != nil {
		return nil, err
	}
	return dentist, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.Dentist, error) {
	if cached, ok := s.cache.Get(id.String()); ok {
		return cached.(*model.Dentist), nil
	}

	dentist, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	s.cache.SetDefault(id.String(), dentist)
	return dentist, nil
}

// Exists reports whether the dentist id resolves in the directory.
// Store failures propagate; only a not-found answer reads as absent.
func (s *Service) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	if _, err := s.Get(ctx, id); err != nil {
		if apperrors.IsCode(err, apperrors.ErrDentistNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// IsActive reports whether the dentist accepts new bookings.
func (s *Service) IsActive(ctx context.Context, id uuid.UUID) (bool, error) {
	dentist, err := s.Get(ctx, id)
	if err != nil {
		return false, err
	}
	return dentist.Active, nil
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, req *model.UpdateDentistRequest) (*model.Dentist, error) {
	dentist, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		dentist.Name = *req.Name
	}
	if req.Email != nil {
		dentist.Email = *req.Email
	}
	if req.Specialty != nil {
		dentist.Specialty = *req.Specialty
	}
	if req.Active != nil {
		dentist.Active = *req.Active
	}

	if err := s.repo.Update(ctx, dentist); err != nil {
		return nil, err
	}
	s.cache.Delete(id.String())
	return dentist, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.cache.Delete(id.String())
	return nil
}

func (s *Service) List(ctx context.Context) ([]*model.Dentist, error) {
	return s.repo.List(ctx)
}
