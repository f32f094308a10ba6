package user

import (
	"context"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/servipro/marketplace-api/internal/model"
	"github.com/servipro/marketplace-api/internal/repository"
	apperrors "github.com/servipro/marketplace-api/pkg/errors"
)

// Service covers account profiles and the public professional directory.
type Service struct {
	users repository.UserRepository
}

func NewService(users repository.UserRepository) *Service {
	return &Service{users: users}
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.User, error) {
	user, err := s.users.Get(ctx, id)
	if err != nil {
		if err == repository.ErrNotFound {
			return nil, apperrors.NotFound("user", err)
		}
		return nil, apperrors.Internal(err)
	}
	return user, nil
}

// Update applies the non-nil fields of the request to the caller's account
// and, where relevant, its professional profile.
func (s *Service) Update(ctx context.Context, caller *model.User, req *model.UpdateUserRequest) (*model.User, error) {
	if req.FirstName != nil {
		caller.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		caller.LastName = *req.LastName
	}
	if req.Phone != nil {
		caller.Phone = *req.Phone
	}
	if req.Address != nil {
		caller.Address = *req.Address
	}
	if req.City != nil {
		caller.City = *req.City
	}
	if req.PostalCode != nil {
		caller.PostalCode = *req.PostalCode
	}
	if err := s.users.Update(ctx, caller); err != nil {
		return nil, apperrors.Internal(err)
	}

	if caller.Role == model.UserRoleProfessional && (req.CompanyName != nil || req.Bio != nil || req.Images != nil) {
		profile, err := s.users.GetProfile(ctx, caller.ID)
		if err != nil {
			if err == repository.ErrNotFound {
				return nil, apperrors.NotFound("professional profile", err)
			}
			return nil, apperrors.Internal(err)
		}
		if req.CompanyName != nil {
			profile.CompanyName = *req.CompanyName
		}
		if req.Bio != nil {
			profile.Bio = *req.Bio
		}
		if req.Images != nil {
			profile.Images = pq.StringArray(*req.Images)
		}
		if err := s.users.UpdateProfile(ctx, profile); err != nil {
			return nil, apperrors.Internal(err)
		}
		caller.Profile = profile
	}

	return s.Get(ctx, caller.ID)
}

// Deactivate soft-deletes the caller's account. Existing bookings keep their
// snapshots; the account simply stops authenticating.
func (s *Service) Deactivate(ctx context.Context, id uuid.UUID) error {
	if err := s.users.Deactivate(ctx, id); err != nil {
		if err == repository.ErrNotFound {
			return apperrors.NotFound("user", err)
		}
		return apperrors.Internal(err)
	}
	return nil
}

// ListProfessionals is the public directory, filtered by profession and city.
func (s *Service) ListProfessionals(ctx context.Context, filters *model.ProfessionalFilters) ([]*model.User, int64, error) {
	if filters.Profession != "" && !model.ValidCategory(filters.Profession) {
		return nil, 0, apperrors.BadRequest("unknown profession", nil)
	}
	users, total, err := s.users.ListProfessionals(ctx, filters)
	if err != nil {
		return nil, 0, apperrors.Internal(err)
	}
	return users, total, nil
}
