package review

import (
	"context"
	"fmt"

	"github.com/servipro/marketplace-api/internal/model"
	"github.com/servipro/marketplace-api/internal/repository"
	"github.com/servipro/marketplace-api/internal/service/event"
	apperrors "github.com/servipro/marketplace-api/pkg/errors"
)

// Service records client reviews of completed bookings and keeps the
// denormalized rating aggregates on professionals and services current.
type Service struct {
	repo     repository.ReviewRepository
	bookings repository.BookingRepository
	users    repository.UserRepository
	services repository.ServiceRepository
	events   *event.Service
}

func NewService(
	repo repository.ReviewRepository,
	bookings repository.BookingRepository,
	users repository.UserRepository,
	services repository.ServiceRepository,
	events *event.Service,
) *Service {
	return &Service{
		repo:     repo,
		bookings: bookings,
		users:    users,
		services: services,
		events:   events,
	}
}

// Create posts a review. The booking must be completed, belong to the caller,
// and not already be reviewed.
func (s *Service) Create(ctx context.Context, client *model.User, req *model.CreateReviewRequest) (*model.Review, error) {
	booking, err := s.bookings.Get(ctx, req.BookingID)
	if err != nil {
		if err == repository.ErrNotFound {
			return nil, apperrors.NotFound("booking", err)
		}
		return nil, apperrors.Internal(err)
	}
	if booking.ClientID != client.ID {
		return nil, apperrors.Forbidden("only the booking's client can review it", nil)
	}
	if booking.Status != model.BookingStatusCompleted {
		return nil, apperrors.BadRequest(
			fmt.Sprintf("cannot review a %s booking, only completed ones", booking.Status), nil)
	}

	review := &model.Review{
		BookingID:      booking.ID,
		ClientID:       booking.ClientID,
		ProfessionalID: booking.ProfessionalID,
		ServiceID:      booking.ServiceID,
		Rating:         req.Rating,
		Comment:        req.Comment,
	}
	if err := s.repo.Create(ctx, review); err != nil {
		if err == repository.ErrDuplicate {
			return nil, apperrors.Conflict("booking already reviewed", err)
		}
		return nil, apperrors.Internal(err)
	}

	if err := s.refreshAggregates(ctx, review); err != nil {
		return nil, err
	}

	s.events.Emit(ctx, model.EventReviewPosted, review)
	return review, nil
}

// List returns reviews newest first, filtered by professional or service.
func (s *Service) List(ctx context.Context, filters *model.ReviewFilters) ([]*model.Review, int64, error) {
	reviews, total, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, 0, apperrors.Internal(err)
	}
	return reviews, total, nil
}

// refreshAggregates recomputes rating averages from the review table rather
// than incrementing, so retries and replays stay idempotent.
func (s *Service) refreshAggregates(ctx context.Context, review *model.Review) error {
	avg, count, err := s.repo.AggregateForProfessional(ctx, review.ProfessionalID)
	if err != nil {
		return apperrors.Internal(err)
	}
	if err := s.users.SetProfessionalRating(ctx, review.ProfessionalID, avg, count); err != nil {
		return apperrors.Internal(err)
	}

	svcAvg, _, err := s.repo.AggregateForService(ctx, review.ServiceID)
	if err != nil {
		return apperrors.Internal(err)
	}
	if err := s.services.SetRating(ctx, review.ServiceID, svcAvg); err != nil {
		return apperrors.Internal(err)
	}
	return nil
}
