package patient

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/scheduler-api/internal/model"
	"github.com/jwalitptl/scheduler-api/internal/repository/memory"
)

type failingRepo struct {
	*memory.PatientRepository
	getErr error
}

func (r *failingRepo) Get(ctx context.Context, id uuid.UUID) (*model.Patient, error) {
	if r.getErr != nil {
		return nil, r.getErr
	}
	return r.PatientRepository.Get(ctx, id)
}

func TestExists(t *testing.T) {
	svc := NewService(memory.NewPatientRepository())

	patient, err := svc.Create(context.Background(), &model.CreatePatientRequest{
		Name:  "Ana Lima",
		Email: "ana@example.com",
	})
	require.NoError(t, err)

	ok, err := svc.Exists(context.Background(), patient.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.Exists(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestExistsPropagatesStoreErrors(t *testing.T) {
	repo := &failingRepo{PatientRepository: memory.NewPatientRepository()}
	svc := NewService(repo)

	repo.getErr = context.DeadlineExceeded
	_, err := svc.Exists(context.Background(), uuid.New())
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
