package worker

import (
	"context"
	"time"

	"github.com/servipro/marketplace-api/internal/model"
	"github.com/servipro/marketplace-api/internal/repository"
	"github.com/servipro/marketplace-api/pkg/logger"
	"github.com/servipro/marketplace-api/pkg/messaging"
	"github.com/servipro/marketplace-api/pkg/metrics"
)

// Config tunes the outbox drain loop.
type Config struct {
	PollInterval time.Duration `yaml:"poll_interval"`
	BatchSize    int           `yaml:"batch_size"`
	MaxRetries   int           `yaml:"max_retries"`
	Channel      string        `yaml:"channel"`
}

// OutboxProcessor drains pending outbox events to the message broker.
// Events that keep failing past MaxRetries are marked failed and skipped.
type OutboxProcessor struct {
	repo    repository.OutboxRepository
	broker  messaging.Broker
	metrics *metrics.Metrics
	logger  *logger.Logger
	cfg     Config
}

func NewOutboxProcessor(
	repo repository.OutboxRepository,
	broker messaging.Broker,
	m *metrics.Metrics,
	log *logger.Logger,
	cfg Config,
) *OutboxProcessor {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 5 * time.Second
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 100
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if cfg.Channel == "" {
		cfg.Channel = "marketplace.events"
	}
	return &OutboxProcessor{repo: repo, broker: broker, metrics: m, logger: log, cfg: cfg}
}

// Run polls until the context is cancelled.
func (p *OutboxProcessor) Run(ctx context.Context) {
	p.logger.Info("outbox processor started",
		"poll_interval", p.cfg.PollInterval.String(), "batch_size", p.cfg.BatchSize)

	ticker := time.NewTicker(p.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("outbox processor stopped")
			return
		case <-ticker.C:
			p.ProcessBatch(ctx)
		}
	}
}

// ProcessBatch drains one batch of pending events. Exported so tests and
// one-shot invocations can run a cycle without the ticker.
func (p *OutboxProcessor) ProcessBatch(ctx context.Context) {
	start := time.Now()
	defer func() {
		p.metrics.OutboxProcessingLatency.Observe(time.Since(start).Seconds())
	}()

	events, err := p.repo.GetPendingEvents(ctx, p.cfg.BatchSize)
	if err != nil {
		p.logger.Error(err, "failed to fetch pending outbox events")
		return
	}

	for _, event := range events {
		p.process(ctx, event)
	}
}

func (p *OutboxProcessor) process(ctx context.Context, event *model.OutboxEvent) {
	err := p.broker.Publish(ctx, p.cfg.Channel, event)
	if err == nil {
		p.metrics.OutboxEventsProcessed.Inc()
		if uerr := p.repo.UpdateStatus(ctx, event.ID, model.OutboxStatusProcessed, nil); uerr != nil {
			p.logger.Error(uerr, "failed to mark outbox event processed", "event_id", event.ID.String())
		}
		return
	}

	p.metrics.OutboxEventsFailed.Inc()
	p.logger.Error(err, "failed to publish outbox event",
		"event_id", event.ID.String(), "event_type", event.EventType, "retry_count", event.RetryCount)

	msg := err.Error()
	status := model.OutboxStatusPending
	if event.RetryCount+1 >= p.cfg.MaxRetries {
		status = model.OutboxStatusFailed
	}
	if uerr := p.repo.UpdateStatus(ctx, event.ID, status, &msg); uerr != nil {
		p.logger.Error(uerr, "failed to update outbox event status", "event_id", event.ID.String())
	}
}
