package memory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/servipro/marketplace-api/internal/model"
	"github.com/servipro/marketplace-api/internal/repository"
)

type bookingRepository struct {
	store *Store
}

func (r *bookingRepository) Create(_ context.Context, booking *model.Booking) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	booking.ID = uuid.New()
	booking.CreatedAt = time.Now()
	booking.UpdatedAt = booking.CreatedAt

	clone := *booking
	clone.Timeline = nil
	r.store.bookings[booking.ID] = &clone
	return nil
}

func (r *bookingRepository) Get(_ context.Context, id uuid.UUID) (*model.Booking, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	booking, ok := r.store.bookings[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	clone := *booking
	clone.Timeline = append([]model.TimelineEntry(nil), r.store.timeline[id]...)
	return &clone, nil
}

func (r *bookingRepository) List(_ context.Context, filters *model.BookingFilters) ([]*model.Booking, int64, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var matched []*model.Booking
	for _, booking := range r.store.bookings {
		if filters.ClientID != uuid.Nil && booking.ClientID != filters.ClientID {
			continue
		}
		if filters.ProfessionalID != uuid.Nil && booking.ProfessionalID != filters.ProfessionalID {
			continue
		}
		if filters.Status != "" && booking.Status != filters.Status {
			continue
		}
		clone := *booking
		matched = append(matched, &clone)
	}

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].AppointmentDate.After(matched[j].AppointmentDate)
	})

	total := int64(len(matched))
	return paginate(matched, filters.Page, filters.PageSize), total, nil
}

func (r *bookingRepository) UpdateStatus(_ context.Context, id uuid.UUID, from, to model.BookingStatus, cancelledBy *model.CancelActor, reason *string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	booking, ok := r.store.bookings[id]
	if !ok {
		return repository.ErrNotFound
	}
	if booking.Status != from {
		return repository.ErrStatusConflict
	}
	booking.Status = to
	booking.CancelledBy = cancelledBy
	booking.CancelReason = reason
	booking.UpdatedAt = time.Now()
	return nil
}

func (r *bookingRepository) AppendTimeline(_ context.Context, entry *model.TimelineEntry) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	entry.ID = uuid.New()
	entry.CreatedAt = time.Now()
	r.store.timeline[entry.BookingID] = append(r.store.timeline[entry.BookingID], *entry)
	return nil
}
