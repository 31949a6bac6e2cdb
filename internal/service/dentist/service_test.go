package dentist

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/scheduler-api/internal/model"
	"github.com/jwalitptl/scheduler-api/internal/repository/memory"
	apperrors "github.com/jwalitptl/scheduler-api/pkg/errors"
)

// trackingRepo counts store reads and can force every Get to fail, so
// tests can tell cache hits from repository round trips.
type trackingRepo struct {
	*memory.DentistRepository
	gets   int
	getErr error
}

func (r *trackingRepo) Get(ctx context.Context, id uuid.UUID) (*model.Dentist, error) {
	r.gets++
	if r.getErr != nil {
		return nil, r.getErr
	}
	return r.DentistRepository.Get(ctx, id)
}

func newTestService(t *testing.T) (*Service, *trackingRepo, *model.Dentist) {
	t.Helper()

	repo := &trackingRepo{DentistRepository: memory.NewDentistRepository()}
	svc := NewService(repo)

	dentist, err := svc.Create(context.Background(), &model.CreateDentistRequest{Name: "Dr. Souza"})
	require.NoError(t, err)
	return svc, repo, dentist
}

func TestCreateDefaultsToActive(t *testing.T) {
	_, _, dentist := newTestService(t)
	assert.True(t, dentist.Active)
}

func TestExists(t *testing.T) {
	svc, _, dentist := newTestService(t)

	ok, err := svc.Exists(context.Background(), dentist.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.Exists(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestExistsPropagatesStoreErrors(t *testing.T) {
	svc, repo, dentist := newTestService(t)

	// A store failure must not read as an absent dentist.
	repo.getErr = context.DeadlineExceeded
	_, err := svc.Exists(context.Background(), dentist.ID)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestGetCachesLookups(t *testing.T) {
	svc, repo, dentist := newTestService(t)

	before := repo.gets
	for i := 0; i < 3; i++ {
		active, err := svc.IsActive(context.Background(), dentist.ID)
		require.NoError(t, err)
		assert.True(t, active)
	}
	assert.Equal(t, before+1, repo.gets)
}

func TestUpdateInvalidatesCache(t *testing.T) {
	svc, _, dentist := newTestService(t)

	// Warm the cache, then deactivate through the service.
	active, err := svc.IsActive(context.Background(), dentist.ID)
	require.NoError(t, err)
	require.True(t, active)

	inactive := false
	_, err = svc.Update(context.Background(), dentist.ID, &model.UpdateDentistRequest{Active: &inactive})
	require.NoError(t, err)

	active, err = svc.IsActive(context.Background(), dentist.ID)
	require.NoError(t, err)
	assert.False(t, active)
}

func TestDeleteEvictsCache(t *testing.T) {
	svc, _, dentist := newTestService(t)

	_, err := svc.Get(context.Background(), dentist.ID)
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), dentist.ID))

	_, err = svc.Get(context.Background(), dentist.ID)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrDentistNotFound))
}
