package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/servipro/marketplace-api/internal/model"
	"github.com/servipro/marketplace-api/internal/repository"
)

type serviceRepository struct {
	store *Store
}

func (r *serviceRepository) Create(_ context.Context, service *model.Service) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	service.ID = uuid.New()
	service.CreatedAt = time.Now()
	service.UpdatedAt = service.CreatedAt
	service.IsActive = true

	clone := *service
	r.store.services[service.ID] = &clone
	return nil
}

func (r *serviceRepository) Get(_ context.Context, id uuid.UUID) (*model.Service, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	service, ok := r.store.services[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	clone := *service
	return &clone, nil
}

func (r *serviceRepository) Update(_ context.Context, service *model.Service) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	existing, ok := r.store.services[service.ID]
	if !ok {
		return repository.ErrNotFound
	}
	existing.Name = service.Name
	existing.Description = service.Description
	existing.Category = service.Category
	existing.Price = service.Price
	existing.DurationMinutes = service.DurationMinutes
	existing.IsActive = service.IsActive
	existing.UpdatedAt = time.Now()
	service.UpdatedAt = existing.UpdatedAt
	return nil
}

func (r *serviceRepository) List(_ context.Context, filters *model.ServiceFilters) ([]*model.Service, int64, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	query := strings.ToLower(filters.Query)
	var matched []*model.Service
	for _, service := range r.store.services {
		if !filters.IncludeInactive && !service.IsActive {
			continue
		}
		if filters.ProfessionalID != uuid.Nil && service.ProfessionalID != filters.ProfessionalID {
			continue
		}
		if filters.Category != "" && service.Category != filters.Category {
			continue
		}
		if filters.MinPrice > 0 && service.Price < filters.MinPrice {
			continue
		}
		if filters.MaxPrice > 0 && service.Price > filters.MaxPrice {
			continue
		}
		if query != "" &&
			!strings.Contains(strings.ToLower(service.Name), query) &&
			!strings.Contains(strings.ToLower(service.Description), query) {
			continue
		}
		clone := *service
		matched = append(matched, &clone)
	}

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := int64(len(matched))
	return paginate(matched, filters.Page, filters.PageSize), total, nil
}

func (r *serviceRepository) IncrementBookingCount(_ context.Context, id uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	service, ok := r.store.services[id]
	if !ok {
		return repository.ErrNotFound
	}
	service.BookingCount++
	return nil
}

func (r *serviceRepository) SetRating(_ context.Context, id uuid.UUID, rating float64) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	service, ok := r.store.services[id]
	if !ok {
		return repository.ErrNotFound
	}
	service.AverageRating = rating
	return nil
}
