package catalog

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/servipro/marketplace-api/internal/model"
	"github.com/servipro/marketplace-api/internal/repository"
	apperrors "github.com/servipro/marketplace-api/pkg/errors"
)

// Service manages the catalog of offerings. Mutations are restricted to the
// owning professional; reads are public.
type Service struct {
	repo repository.ServiceRepository
}

func NewService(repo repository.ServiceRepository) *Service {
	return &Service{repo: repo}
}

// Create adds an offering owned by the calling professional.
func (s *Service) Create(ctx context.Context, owner *model.User, req *model.CreateServiceRequest) (*model.Service, error) {
	if owner.Role != model.UserRoleProfessional {
		return nil, apperrors.Forbidden("only professionals can create services", nil)
	}
	category := model.ServiceCategory(req.Category)
	if !model.ValidCategory(category) {
		return nil, apperrors.BadRequest(fmt.Sprintf("unknown category %q", req.Category), nil)
	}

	svc := &model.Service{
		ProfessionalID:  owner.ID,
		Name:            req.Name,
		Description:     req.Description,
		Category:        category,
		Price:           req.Price,
		DurationMinutes: req.DurationMinutes,
		IsActive:        true,
	}
	if err := s.repo.Create(ctx, svc); err != nil {
		return nil, apperrors.Internal(err)
	}
	return svc, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.Service, error) {
	svc, err := s.repo.Get(ctx, id)
	if err != nil {
		if err == repository.ErrNotFound {
			return nil, apperrors.NotFound("service", err)
		}
		return nil, apperrors.Internal(err)
	}
	return svc, nil
}

// Update applies non-nil fields. Price changes never touch existing bookings,
// which carry their own snapshot.
func (s *Service) Update(ctx context.Context, caller *model.User, id uuid.UUID, req *model.UpdateServiceRequest) (*model.Service, error) {
	svc, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if svc.ProfessionalID != caller.ID {
		return nil, apperrors.Forbidden("not the owner of this service", nil)
	}

	if req.Name != nil {
		svc.Name = *req.Name
	}
	if req.Description != nil {
		svc.Description = *req.Description
	}
	if req.Category != nil {
		category := model.ServiceCategory(*req.Category)
		if !model.ValidCategory(category) {
			return nil, apperrors.BadRequest(fmt.Sprintf("unknown category %q", *req.Category), nil)
		}
		svc.Category = category
	}
	if req.Price != nil {
		svc.Price = *req.Price
	}
	if req.DurationMinutes != nil {
		svc.DurationMinutes = *req.DurationMinutes
	}
	if req.IsActive != nil {
		svc.IsActive = *req.IsActive
	}

	if err := s.repo.Update(ctx, svc); err != nil {
		return nil, apperrors.Internal(err)
	}
	return svc, nil
}

// Delete soft-deletes by deactivating the offering. Past bookings keep their
// snapshots; the service just stops being bookable.
func (s *Service) Delete(ctx context.Context, caller *model.User, id uuid.UUID) error {
	svc, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if svc.ProfessionalID != caller.ID {
		return apperrors.Forbidden("not the owner of this service", nil)
	}

	svc.IsActive = false
	if err := s.repo.Update(ctx, svc); err != nil {
		return apperrors.Internal(err)
	}
	return nil
}

// List is the public catalog search.
func (s *Service) List(ctx context.Context, filters *model.ServiceFilters) ([]*model.Service, int64, error) {
	if filters.Category != "" && !model.ValidCategory(filters.Category) {
		return nil, 0, apperrors.BadRequest("unknown category", nil)
	}
	if filters.MinPrice < 0 || filters.MaxPrice < 0 || (filters.MaxPrice > 0 && filters.MinPrice > filters.MaxPrice) {
		return nil, 0, apperrors.BadRequest("invalid price range", nil)
	}

	services, total, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, 0, apperrors.Internal(err)
	}
	return services, total, nil
}

// ListMine returns the calling professional's own offerings, inactive included.
func (s *Service) ListMine(ctx context.Context, owner *model.User, page, pageSize int) ([]*model.Service, int64, error) {
	if owner.Role != model.UserRoleProfessional {
		return nil, 0, apperrors.Forbidden("only professionals own services", nil)
	}
	filters := &model.ServiceFilters{
		ProfessionalID:  owner.ID,
		IncludeInactive: true,
		Page:            page,
		PageSize:        pageSize,
	}
	services, total, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, 0, apperrors.Internal(err)
	}
	return services, total, nil
}
