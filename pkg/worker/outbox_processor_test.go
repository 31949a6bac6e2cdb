package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/scheduler-api/internal/model"
	"github.com/jwalitptl/scheduler-api/internal/repository/memory"
	"github.com/jwalitptl/scheduler-api/pkg/logger"
	"github.com/jwalitptl/scheduler-api/pkg/metrics"
)

type published struct {
	channel string
	message interface{}
}

type fakeBroker struct {
	mu         sync.Mutex
	published  []published
	publishErr error
}

func (b *fakeBroker) Publish(ctx context.Context, channel string, message interface{}) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.publishErr != nil {
		return b.publishErr
	}
	b.published = append(b.published, published{channel: channel, message: message})
	return nil
}

func (b *fakeBroker) Subscribe(ctx context.Context, channel string) (<-chan []byte, error) {
	return nil, nil
}

func (b *fakeBroker) Close() error { return nil }

func (b *fakeBroker) count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.published)
}

// testMetrics builds unregistered collectors so parallel tests never
// trip duplicate registration.
func testMetrics() *metrics.Metrics {
	return &metrics.Metrics{
		OutboxEventsProcessed:   prometheus.NewCounter(prometheus.CounterOpts{Name: "test_outbox_events_processed_total"}),
		OutboxEventsFailed:      prometheus.NewCounter(prometheus.CounterOpts{Name: "test_outbox_events_failed_total"}),
		OutboxProcessingLatency: prometheus.NewHistogram(prometheus.HistogramOpts{Name: "test_outbox_processing_duration_seconds"}),
		DatabaseOperations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "test_database_operations_total",
		}, []string{"operation", "status"}),
		EmailsSent:   prometheus.NewCounter(prometheus.CounterOpts{Name: "test_emails_sent_total"}),
		EmailsFailed: prometheus.NewCounter(prometheus.CounterOpts{Name: "test_emails_failed_total"}),
	}
}

func newTestProcessor(repo *memory.OutboxRepository, broker *fakeBroker) *OutboxProcessor {
	return NewOutboxProcessor(repo, broker, OutboxProcessorConfig{
		BatchSize:     10,
		PollInterval:  time.Second,
		RetryAttempts: 2,
		RetryDelay:    time.Millisecond,
	}, &logger.Logger{ZL: zerolog.Nop()}, testMetrics())
}

func TestProcessEventsPublishesBatch(t *testing.T) {
	repo := memory.NewOutboxRepository()
	broker := &fakeBroker{}
	p := newTestProcessor(repo, broker)

	first := repo.Append("appointment.booked", []byte(`{"id":"a"}`))
	second := repo.Append("appointment.cancelled", []byte(`{"id":"b"}`))

	require.NoError(t, p.processEvents(context.Background()))
	assert.Equal(t, 2, broker.count())

	for _, id := range []uuid.UUID{first, second} {
		event, ok := repo.Get(id)
		require.True(t, ok)
		assert.Equal(t, model.OutboxStatusProcessed, event.Status)
		assert.NotNil(t, event.ProcessedAt)
	}
}

func TestProcessEventsClaimsEachEventOnce(t *testing.T) {
	repo := memory.NewOutboxRepository()
	broker := &fakeBroker{}
	p := newTestProcessor(repo, broker)

	repo.Append("appointment.booked", []byte(`{"id":"a"}`))

	require.NoError(t, p.processEvents(context.Background()))
	require.NoError(t, p.processEvents(context.Background()))

	// The second cycle finds nothing pending, so the broker sees the
	// event exactly once.
	assert.Equal(t, 1, broker.count())
}

func TestFailedPublishMarksEventFailed(t *testing.T) {
	repo := memory.NewOutboxRepository()
	broker := &fakeBroker{publishErr: errors.New("broker down")}
	p := newTestProcessor(repo, broker)

	id := repo.Append("appointment.booked", []byte(`{"id":"a"}`))

	require.NoError(t, p.processEvents(context.Background()))

	event, ok := repo.Get(id)
	require.True(t, ok)
	assert.Equal(t, model.OutboxStatusFailed, event.Status)
	require.NotNil(t, event.ErrorMessage)
	assert.Contains(t, *event.ErrorMessage, "broker down")
	assert.Equal(t, 1, event.RetryCount)

	// A failed event stays out of the pending set.
	require.NoError(t, p.processEvents(context.Background()))
	assert.Equal(t, 0, broker.count())
}
