package memory

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/servipro/marketplace-api/internal/model"
	"github.com/servipro/marketplace-api/internal/repository"
)

type outboxRepository struct {
	store *Store
}

func (r *outboxRepository) Create(_ context.Context, event *model.OutboxEvent) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	event.ID = uuid.New()
	event.Status = model.OutboxStatusPending
	event.CreatedAt = time.Now()

	clone := *event
	r.store.outbox = append(r.store.outbox, &clone)
	return nil
}

func (r *outboxRepository) GetPendingEvents(_ context.Context, limit int) ([]*model.OutboxEvent, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var pending []*model.OutboxEvent
	for _, event := range r.store.outbox {
		if event.Status != model.OutboxStatusPending {
			continue
		}
		clone := *event
		pending = append(pending, &clone)
		if limit > 0 && len(pending) >= limit {
			break
		}
	}
	return pending, nil
}

func (r *outboxRepository) UpdateStatus(_ context.Context, id uuid.UUID, status model.OutboxStatus, errMsg *string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, event := range r.store.outbox {
		if event.ID == id {
			event.Status = status
			event.Error = errMsg
			event.RetryCount++
			now := time.Now()
			event.ProcessedAt = &now
			return nil
		}
	}
	return repository.ErrNotFound
}

type notificationRepository struct {
	store *Store
}

func (r *notificationRepository) Create(_ context.Context, notification *model.Notification) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	notification.ID = uuid.New()
	notification.Status = model.NotificationStatusPending
	notification.CreatedAt = time.Now()
	notification.UpdatedAt = notification.CreatedAt

	clone := *notification
	r.store.notifications[notification.ID] = &clone
	return nil
}

func (r *notificationRepository) UpdateStatus(_ context.Context, id uuid.UUID, status model.NotificationStatus, errMsg *string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	notification, ok := r.store.notifications[id]
	if !ok {
		return repository.ErrNotFound
	}
	notification.Status = status
	notification.Error = errMsg
	notification.UpdatedAt = time.Now()
	return nil
}
