package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/scheduler-api/internal/model"
)

func TestClaimPendingEvents(t *testing.T) {
	repo := NewOutboxRepository()

	first := repo.Append("appointment.booked", []byte(`{"id":"a"}`))
	second := repo.Append("appointment.booked", []byte(`{"id":"b"}`))

	claimed, err := repo.ClaimPendingEvents(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, claimed, 2)
	assert.Equal(t, first, claimed[0].ID)
	assert.Equal(t, second, claimed[1].ID)
	for _, event := range claimed {
		assert.Equal(t, model.OutboxStatusProcessing, event.Status)
	}

	// The claim moved the batch out of the pending set, so a second
	// claimer comes up empty.
	again, err := repo.ClaimPendingEvents(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, again)
}

func TestClaimPendingEventsHonorsLimit(t *testing.T) {
	repo := NewOutboxRepository()

	first := repo.Append("appointment.booked", []byte(`{"id":"a"}`))
	second := repo.Append("appointment.booked", []byte(`{"id":"b"}`))

	claimed, err := repo.ClaimPendingEvents(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, claimed, 1)
	assert.Equal(t, first, claimed[0].ID)

	rest, err := repo.ClaimPendingEvents(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, rest, 1)
	assert.Equal(t, second, rest[0].ID)
}

func TestOutboxUpdateStatus(t *testing.T) {
	repo := NewOutboxRepository()
	id := repo.Append("appointment.booked", []byte(`{"id":"a"}`))

	require.NoError(t, repo.UpdateStatus(context.Background(), id, model.OutboxStatusProcessed, nil))
	event, ok := repo.Get(id)
	require.True(t, ok)
	assert.Equal(t, model.OutboxStatusProcessed, event.Status)
	assert.NotNil(t, event.ProcessedAt)

	errMsg := "publish failed"
	require.NoError(t, repo.UpdateStatus(context.Background(), id, model.OutboxStatusFailed, &errMsg))
	event, ok = repo.Get(id)
	require.True(t, ok)
	assert.Equal(t, model.OutboxStatusFailed, event.Status)
	assert.Equal(t, 1, event.RetryCount)
}
