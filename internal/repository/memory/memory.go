// Package memory is an in-process implementation of the repository
// interfaces, selected by configuration for local development and used as the
// substrate for unit tests. It mirrors the postgres backend's semantics,
// including conditional status updates.
package memory

import (
	"sync"

	"github.com/google/uuid"

	"github.com/servipro/marketplace-api/internal/model"
	"github.com/servipro/marketplace-api/internal/repository"
)

// Store holds every collection behind one mutex. Request volume in dev mode
// never justifies finer locking.
type Store struct {
	mu sync.RWMutex

	users         map[uuid.UUID]*model.User
	usersByEmail  map[string]uuid.UUID
	profiles      map[uuid.UUID]*model.ProfessionalProfile
	services      map[uuid.UUID]*model.Service
	bookings      map[uuid.UUID]*model.Booking
	timeline      map[uuid.UUID][]model.TimelineEntry
	messages      []*model.Message
	reviews       map[uuid.UUID]*model.Review
	reviewByBooking map[uuid.UUID]uuid.UUID
	outbox        []*model.OutboxEvent
	notifications map[uuid.UUID]*model.Notification
}

func NewStore() *Store {
	return &Store{
		users:           make(map[uuid.UUID]*model.User),
		usersByEmail:    make(map[string]uuid.UUID),
		profiles:        make(map[uuid.UUID]*model.ProfessionalProfile),
		services:        make(map[uuid.UUID]*model.Service),
		bookings:        make(map[uuid.UUID]*model.Booking),
		timeline:        make(map[uuid.UUID][]model.TimelineEntry),
		reviews:         make(map[uuid.UUID]*model.Review),
		reviewByBooking: make(map[uuid.UUID]uuid.UUID),
		notifications:   make(map[uuid.UUID]*model.Notification),
	}
}

func (s *Store) Users() repository.UserRepository {
	return &userRepository{store: s}
}

func (s *Store) Services() repository.ServiceRepository {
	return &serviceRepository{store: s}
}

func (s *Store) Bookings() repository.BookingRepository {
	return &bookingRepository{store: s}
}

func (s *Store) Messages() repository.MessageRepository {
	return &messageRepository{store: s}
}

func (s *Store) Reviews() repository.ReviewRepository {
	return &reviewRepository{store: s}
}

func (s *Store) Outbox() repository.OutboxRepository {
	return &outboxRepository{store: s}
}

func (s *Store) Notifications() repository.NotificationRepository {
	return &notificationRepository{store: s}
}

func paginate[T any](items []T, page, pageSize int) []T {
	if pageSize <= 0 {
		return items
	}
	if page <= 0 {
		page = 1
	}
	start := (page - 1) * pageSize
	if start >= len(items) {
		return nil
	}
	end := start + pageSize
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}
