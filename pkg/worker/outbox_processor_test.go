package worker

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/servipro/marketplace-api/internal/model"
	"github.com/servipro/marketplace-api/internal/repository/memory"
	"github.com/servipro/marketplace-api/pkg/logger"
	"github.com/servipro/marketplace-api/pkg/metrics"
)

var testMetrics = metrics.New("worker_test")

type stubBroker struct {
	published []interface{}
	err       error
}

func (b *stubBroker) Publish(_ context.Context, _ string, message interface{}) error {
	if b.err != nil {
		return b.err
	}
	b.published = append(b.published, message)
	return nil
}

func (b *stubBroker) Subscribe(context.Context, string) (<-chan []byte, error) {
	return nil, errors.New("not implemented")
}

func (b *stubBroker) Close() error { return nil }

func newProcessor(t *testing.T, broker *stubBroker, cfg Config) (*OutboxProcessor, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	log := logger.New(&logger.Config{Level: logger.ErrorLevel, Output: io.Discard})
	return NewOutboxProcessor(store.Outbox(), broker, testMetrics, log, cfg), store
}

func seedEvent(t *testing.T, store *memory.Store, eventType string) *model.OutboxEvent {
	t.Helper()
	event := &model.OutboxEvent{
		EventType: eventType,
		Payload:   json.RawMessage(`{"id":"42"}`),
	}
	require.NoError(t, store.Outbox().Create(context.Background(), event))
	return event
}

func TestProcessBatchPublishes(t *testing.T) {
	broker := &stubBroker{}
	processor, store := newProcessor(t, broker, Config{})
	ctx := context.Background()

	seedEvent(t, store, model.EventBookingCreated)
	seedEvent(t, store, model.EventMessageSent)

	processor.ProcessBatch(ctx)

	assert.Len(t, broker.published, 2)
	pending, err := store.Outbox().GetPendingEvents(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestProcessBatchRetriesThenFails(t *testing.T) {
	broker := &stubBroker{err: errors.New("redis down")}
	processor, store := newProcessor(t, broker, Config{MaxRetries: 2})
	ctx := context.Background()

	seedEvent(t, store, model.EventBookingCreated)

	// First failure keeps the event pending for a later cycle.
	processor.ProcessBatch(ctx)
	pending, err := store.Outbox().GetPendingEvents(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, 1, pending[0].RetryCount)
	require.NotNil(t, pending[0].Error)

	// Second failure exhausts the budget and parks it as failed.
	processor.ProcessBatch(ctx)
	pending, err = store.Outbox().GetPendingEvents(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestRunStopsOnCancel(t *testing.T) {
	broker := &stubBroker{}
	processor, _ := newProcessor(t, broker, Config{PollInterval: 5 * time.Millisecond})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		processor.Run(ctx)
		close(done)
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("processor did not stop after cancellation")
	}
}
