package memory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/servipro/marketplace-api/internal/model"
	"github.com/servipro/marketplace-api/internal/repository"
)

type userRepository struct {
	store *Store
}

func (r *userRepository) Create(_ context.Context, user *model.User) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, exists := r.store.usersByEmail[user.Email]; exists {
		return repository.ErrDuplicate
	}

	user.ID = uuid.New()
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	user.IsActive = true

	clone := *user
	clone.Profile = nil
	r.store.users[user.ID] = &clone
	r.store.usersByEmail[user.Email] = user.ID
	return nil
}

func (r *userRepository) Get(_ context.Context, id uuid.UUID) (*model.User, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	return r.getLocked(id)
}

func (r *userRepository) getLocked(id uuid.UUID) (*model.User, error) {
	user, ok := r.store.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	clone := *user
	if profile, ok := r.store.profiles[id]; ok {
		p := *profile
		clone.Profile = &p
	}
	return &clone, nil
}

func (r *userRepository) GetByEmail(_ context.Context, email string) (*model.User, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	id, ok := r.store.usersByEmail[email]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return r.getLocked(id)
}

func (r *userRepository) Update(_ context.Context, user *model.User) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	existing, ok := r.store.users[user.ID]
	if !ok {
		return repository.ErrNotFound
	}
	existing.FirstName = user.FirstName
	existing.LastName = user.LastName
	existing.Phone = user.Phone
	existing.Address = user.Address
	existing.City = user.City
	existing.PostalCode = user.PostalCode
	existing.UpdatedAt = time.Now()
	user.UpdatedAt = existing.UpdatedAt
	return nil
}

func (r *userRepository) Deactivate(_ context.Context, id uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	user, ok := r.store.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	user.IsActive = false
	user.UpdatedAt = time.Now()
	return nil
}

func (r *userRepository) ListProfessionals(_ context.Context, filters *model.ProfessionalFilters) ([]*model.User, int64, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var matched []*model.User
	for id, user := range r.store.users {
		if user.Role != model.UserRoleProfessional || !user.IsActive {
			continue
		}
		profile, ok := r.store.profiles[id]
		if !ok {
			continue
		}
		if filters.Profession != "" && profile.Profession != filters.Profession {
			continue
		}
		if filters.City != "" && user.City != filters.City {
			continue
		}
		clone := *user
		p := *profile
		clone.Profile = &p
		matched = append(matched, &clone)
	}

	sort.Slice(matched, func(i, j int) bool {
		if matched[i].Profile.Rating != matched[j].Profile.Rating {
			return matched[i].Profile.Rating > matched[j].Profile.Rating
		}
		return matched[i].CreatedAt.Before(matched[j].CreatedAt)
	})

	total := int64(len(matched))
	return paginate(matched, filters.Page, filters.PageSize), total, nil
}

func (r *userRepository) CreateProfile(_ context.Context, profile *model.ProfessionalProfile) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	clone := *profile
	r.store.profiles[profile.UserID] = &clone
	return nil
}

func (r *userRepository) GetProfile(_ context.Context, userID uuid.UUID) (*model.ProfessionalProfile, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	profile, ok := r.store.profiles[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	clone := *profile
	return &clone, nil
}

func (r *userRepository) UpdateProfile(_ context.Context, profile *model.ProfessionalProfile) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	existing, ok := r.store.profiles[profile.UserID]
	if !ok {
		return repository.ErrNotFound
	}
	existing.CompanyName = profile.CompanyName
	existing.Bio = profile.Bio
	existing.Images = profile.Images
	return nil
}

func (r *userRepository) IncrementProfessionalStats(_ context.Context, userID uuid.UUID, bookings int, revenue float64) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	profile, ok := r.store.profiles[userID]
	if !ok {
		return repository.ErrNotFound
	}
	profile.TotalBookings += bookings
	profile.TotalRevenue += revenue
	return nil
}

func (r *userRepository) SetProfessionalRating(_ context.Context, userID uuid.UUID, rating float64, reviewCount int) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	profile, ok := r.store.profiles[userID]
	if !ok {
		return repository.ErrNotFound
	}
	profile.Rating = rating
	profile.ReviewCount = reviewCount
	return nil
}
