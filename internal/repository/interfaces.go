package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/servipro/marketplace-api/internal/model"
)

// Sentinel errors shared by every backend. Services translate them into the
// API error taxonomy.
var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("already exists")
	// ErrStatusConflict signals a conditional status update that matched no
	// row: the booking moved under the caller's feet.
	ErrStatusConflict = errors.New("status changed concurrently")
)

// All repository interfaces in one file. Backends: postgres (production),
// memory (dev mode and unit tests), selected by configuration.
type (
	UserRepository interface {
		Create(ctx context.Context, user *model.User) error
		Get(ctx context.Context, id uuid.UUID) (*model.User, error)
		GetByEmail(ctx context.Context, email string) (*model.User, error)
		Update(ctx context.Context, user *model.User) error
		Deactivate(ctx context.Context, id uuid.UUID) error
		ListProfessionals(ctx context.Context, filters *model.ProfessionalFilters) ([]*model.User, int64, error)

		CreateProfile(ctx context.Context, profile *model.ProfessionalProfile) error
		GetProfile(ctx context.Context, userID uuid.UUID) (*model.ProfessionalProfile, error)
		UpdateProfile(ctx context.Context, profile *model.ProfessionalProfile) error
		IncrementProfessionalStats(ctx context.Context, userID uuid.UUID, bookings int, revenue float64) error
		SetProfessionalRating(ctx context.Context, userID uuid.UUID, rating float64, reviewCount int) error
	}

	ServiceRepository interface {
		Create(ctx context.Context, service *model.Service) error
		Get(ctx context.Context, id uuid.UUID) (*model.Service, error)
		Update(ctx context.Context, service *model.Service) error
		List(ctx context.Context, filters *model.ServiceFilters) ([]*model.Service, int64, error)
		IncrementBookingCount(ctx context.Context, id uuid.UUID) error
		SetRating(ctx context.Context, id uuid.UUID, rating float64) error
	}

	BookingRepository interface {
		Create(ctx context.Context, booking *model.Booking) error
		Get(ctx context.Context, id uuid.UUID) (*model.Booking, error)
		List(ctx context.Context, filters *model.BookingFilters) ([]*model.Booking, int64, error)
		// UpdateStatus applies a transition conditionally on the expected
		// current status and returns ErrStatusConflict when it matched no row.
		UpdateStatus(ctx context.Context, id uuid.UUID, from, to model.BookingStatus, cancelledBy *model.CancelActor, reason *string) error
		AppendTimeline(ctx context.Context, entry *model.TimelineEntry) error
	}

	MessageRepository interface {
		Create(ctx context.Context, message *model.Message) error
		ListConversation(ctx context.Context, filters *model.MessageFilters) ([]*model.Message, int64, error)
		ListConversations(ctx context.Context, userID uuid.UUID) ([]*model.ConversationSummary, error)
		MarkRead(ctx context.Context, conversationID string, receiverID uuid.UUID) (int64, error)
	}

	ReviewRepository interface {
		Create(ctx context.Context, review *model.Review) error
		GetByBooking(ctx context.Context, bookingID uuid.UUID) (*model.Review, error)
		List(ctx context.Context, filters *model.ReviewFilters) ([]*model.Review, int64, error)
		AggregateForProfessional(ctx context.Context, professionalID uuid.UUID) (float64, int, error)
		AggregateForService(ctx context.Context, serviceID uuid.UUID) (float64, int, error)
	}

	OutboxRepository interface {
		Create(ctx context.Context, event *model.OutboxEvent) error
		GetPendingEvents(ctx context.Context, limit int) ([]*model.OutboxEvent, error)
		UpdateStatus(ctx context.Context, id uuid.UUID, status model.OutboxStatus, errMsg *string) error
	}

	NotificationRepository interface {
		Create(ctx context.Context, notification *model.Notification) error
		UpdateStatus(ctx context.Context, id uuid.UUID, status model.NotificationStatus, errMsg *string) error
	}
)
