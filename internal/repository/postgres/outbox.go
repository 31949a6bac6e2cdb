package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/scheduler-api/internal/model"
)

// ClaimPendingEvents atomically flips a batch of pending events to
// PROCESSING and returns it. The single UPDATE keeps the claim and the
// status flip in one statement, and SKIP LOCKED lets concurrent workers
// drain disjoint batches without ever sharing an event.
func (r *outboxRepository) ClaimPendingEvents(ctx context.Context, limit int) ([]*model.OutboxEvent, error) {
	var events []*model.OutboxEvent
	err := r.db.SelectContext(ctx, &events, `
		UPDATE outbox_events
		SET status = $1
		WHERE id IN (
			SELECT id FROM outbox_events
			WHERE status = $2
			ORDER BY created_at ASC
			LIMIT $3
			FOR UPDATE SKIP LOCKED
		)
		RETURNING id, event_type, payload, status, error_message, created_at, processed_at, retry_count
	`, model.OutboxStatusProcessing, model.OutboxStatusPending, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to claim pending events: %w", err)
	}
	return events, nil
}

func (r *outboxRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.OutboxStatus, errMsg *string) error {
	var processedAt *time.Time
	if status == model.OutboxStatusProcessed {
		now := time.Now()
		processedAt = &now
	}

	_, err := r.db.ExecContext(ctx, `
		UPDATE outbox_events
		SET status = $1,
		    error_message = $2,
		    processed_at = $3,
		    retry_count = retry_count + CASE WHEN $1 = 'FAILED' THEN 1 ELSE 0 END
		WHERE id = $4
	`, status, errMsg, processedAt, id)
	if err != nil {
		return fmt.Errorf("failed to update event status: %w", err)
	}
	return nil
}
