package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/scheduler-api/internal/model"
	"github.com/jwalitptl/scheduler-api/internal/repository"
)

type OutboxRepository struct {
	mu     sync.Mutex
	events map[uuid.UUID]*model.OutboxEvent
}

func NewOutboxRepository() *OutboxRepository {
	return &OutboxRepository{events: make(map[uuid.UUID]*model.OutboxEvent)}
}

var _ repository.OutboxRepository = (*OutboxRepository)(nil)

// Append stores a pending event, taking the place of the outbox insert
// the postgres store runs inside its booking transaction.
func (r *OutboxRepository) Append(eventType string, payload []byte) uuid.UUID {
	r.mu.Lock()
	defer r.mu.Unlock()

	event := &model.OutboxEvent{
		ID:        uuid.New(),
		EventType: eventType,
		Payload:   payload,
		Status:    model.OutboxStatusPending,
		CreatedAt: time.Now(),
	}
	r.events[event.ID] = event
	return event.ID
}

func (r *OutboxRepository) Get(id uuid.UUID) (*model.OutboxEvent, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	event, ok := r.events[id]
	if !ok {
		return nil, false
	}
	cp := *event
	return &cp, true
}

// ClaimPendingEvents flips a batch to PROCESSING under the lock, so a
// second claimer can never see the same events.
func (r *OutboxRepository) ClaimPendingEvents(ctx context.Context, limit int) ([]*model.OutboxEvent, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	var pending []*model.OutboxEvent
	for _, event := range r.events {
		if event.Status == model.OutboxStatusPending {
			pending = append(pending, event)
		}
	}
	sort.Slice(pending, func(i, j int) bool {
		return pending[i].CreatedAt.Before(pending[j].CreatedAt)
	})
	if len(pending) > limit {
		pending = pending[:limit]
	}

	claimed := make([]*model.OutboxEvent, 0, len(pending))
	for _, event := range pending {
		event.Status = model.OutboxStatusProcessing
		cp := *event
		claimed = append(claimed, &cp)
	}
	return claimed, nil
}

func (r *OutboxRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.OutboxStatus, errMsg *string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	event, ok := r.events[id]
	if !ok {
		return nil
	}
	event.Status = status
	event.ErrorMessage = errMsg
	if status == model.OutboxStatusProcessed {
		now := time.Now()
		event.ProcessedAt = &now
	}
	if status == model.OutboxStatusFailed {
		event.RetryCount++
	}
	return nil
}
