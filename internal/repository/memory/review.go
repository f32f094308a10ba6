package memory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/servipro/marketplace-api/internal/model"
	"github.com/servipro/marketplace-api/internal/repository"
)

type reviewRepository struct {
	store *Store
}

func (r *reviewRepository) Create(_ context.Context, review *model.Review) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, exists := r.store.reviewByBooking[review.BookingID]; exists {
		return repository.ErrDuplicate
	}

	review.ID = uuid.New()
	review.CreatedAt = time.Now()
	review.UpdatedAt = review.CreatedAt

	clone := *review
	r.store.reviews[review.ID] = &clone
	r.store.reviewByBooking[review.BookingID] = review.ID
	return nil
}

func (r *reviewRepository) GetByBooking(_ context.Context, bookingID uuid.UUID) (*model.Review, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	id, ok := r.store.reviewByBooking[bookingID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	clone := *r.store.reviews[id]
	return &clone, nil
}

func (r *reviewRepository) List(_ context.Context, filters *model.ReviewFilters) ([]*model.Review, int64, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var matched []*model.Review
	for _, review := range r.store.reviews {
		if filters.ProfessionalID != uuid.Nil && review.ProfessionalID != filters.ProfessionalID {
			continue
		}
		if filters.ServiceID != uuid.Nil && review.ServiceID != filters.ServiceID {
			continue
		}
		clone := *review
		matched = append(matched, &clone)
	}

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := int64(len(matched))
	return paginate(matched, filters.Page, filters.PageSize), total, nil
}

func (r *reviewRepository) AggregateForProfessional(_ context.Context, professionalID uuid.UUID) (float64, int, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var sum, count int
	for _, review := range r.store.reviews {
		if review.ProfessionalID == professionalID {
			sum += review.Rating
			count++
		}
	}
	if count == 0 {
		return 0, 0, nil
	}
	return float64(sum) / float64(count), count, nil
}

func (r *reviewRepository) AggregateForService(_ context.Context, serviceID uuid.UUID) (float64, int, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var sum, count int
	for _, review := range r.store.reviews {
		if review.ServiceID == serviceID {
			sum += review.Rating
			count++
		}
	}
	if count == 0 {
		return 0, 0, nil
	}
	return float64(sum) / float64(count), count, nil
}
