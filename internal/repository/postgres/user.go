package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/servipro/marketplace-api/internal/model"
	"github.com/servipro/marketplace-api/internal/repository"
)

const userColumns = `
	id, email, password_hash, role, first_name, last_name,
	phone, address, city, postal_code, is_active, created_at, updated_at`

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	query := `
		INSERT INTO users (
			id, email, password_hash, role, first_name, last_name,
			phone, address, city, postal_code, is_active, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	user.ID = uuid.New()
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	user.IsActive = true

	_, err := r.db.ExecContext(ctx, query,
		user.ID, user.Email, user.PasswordHash, user.Role,
		user.FirstName, user.LastName, user.Phone,
		user.Address, user.City, user.PostalCode,
		user.IsActive, user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return repository.ErrDuplicate
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *userRepository) Get(ctx context.Context, id uuid.UUID) (*model.User, error) {
	query := `SELECT` + userColumns + ` FROM users WHERE id = $1`
	var user model.User
	if err := r.db.GetContext(ctx, &user, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user.Role == model.UserRoleProfessional {
		profile, err := r.GetProfile(ctx, user.ID)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
		user.Profile = profile
	}
	return &user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	query := `SELECT` + userColumns + ` FROM users WHERE email = $1`
	var user model.User
	if err := r.db.GetContext(ctx, &user, query, email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return &user, nil
}

func (r *userRepository) Update(ctx context.Context, user *model.User) error {
	query := `
		UPDATE users
		SET first_name = $1, last_name = $2, phone = $3, address = $4,
			city = $5, postal_code = $6, updated_at = $7
		WHERE id = $8
	`
	user.UpdatedAt = time.Now()
	result, err := r.db.ExecContext(ctx, query,
		user.FirstName, user.LastName, user.Phone,
		user.Address, user.City, user.PostalCode,
		user.UpdatedAt, user.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	return checkAffected(result)
}

func (r *userRepository) Deactivate(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE users SET is_active = false, updated_at = $1 WHERE id = $2`,
		time.Now(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to deactivate user: %w", err)
	}
	return checkAffected(result)
}

func (r *userRepository) ListProfessionals(ctx context.Context, filters *model.ProfessionalFilters) ([]*model.User, int64, error) {
	where := ` WHERE u.role = 'professional' AND u.is_active = true`
	args := []interface{}{}
	argCount := 1

	if filters.Profession != "" {
		where += fmt.Sprintf(" AND p.profession = $%d", argCount)
		args = append(args, filters.Profession)
		argCount++
	}
	if filters.City != "" {
		where += fmt.Sprintf(" AND u.city = $%d", argCount)
		args = append(args, filters.City)
		argCount++
	}

	var total int64
	countQuery := `
		SELECT COUNT(*) FROM users u
		JOIN professional_profiles p ON p.user_id = u.id` + where
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count professionals: %w", err)
	}

	query := `
		SELECT u.id, u.email, u.password_hash, u.role, u.first_name, u.last_name,
			   u.phone, u.address, u.city, u.postal_code, u.is_active,
			   u.created_at, u.updated_at
		FROM users u
		JOIN professional_profiles p ON p.user_id = u.id` + where +
		fmt.Sprintf(" ORDER BY p.rating DESC, u.created_at ASC LIMIT $%d OFFSET $%d", argCount, argCount+1)
	args = append(args, filters.PageSize, (filters.Page-1)*filters.PageSize)

	var users []*model.User
	if err := r.db.SelectContext(ctx, &users, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list professionals: %w", err)
	}
	for _, u := range users {
		profile, err := r.GetProfile(ctx, u.ID)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return nil, 0, err
		}
		u.Profile = profile
	}
	return users, total, nil
}

func (r *userRepository) CreateProfile(ctx context.Context, profile *model.ProfessionalProfile) error {
	query := `
		INSERT INTO professional_profiles (
			user_id, company_name, siret, profession, bio, images,
			rating, review_count, total_bookings, total_revenue
		) VALUES ($1, $2, $3, $4, $5, $6, 0, 0, 0, 0)
	`
	_, err := r.db.ExecContext(ctx, query,
		profile.UserID, profile.CompanyName, profile.Siret,
		profile.Profession, profile.Bio, profile.Images,
	)
	if err != nil {
		return fmt.Errorf("failed to create professional profile: %w", err)
	}
	return nil
}

func (r *userRepository) GetProfile(ctx context.Context, userID uuid.UUID) (*model.ProfessionalProfile, error) {
	query := `
		SELECT user_id, company_name, siret, profession, bio, images,
			   rating, review_count, total_bookings, total_revenue
		FROM professional_profiles
		WHERE user_id = $1
	`
	var profile model.ProfessionalProfile
	if err := r.db.GetContext(ctx, &profile, query, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get professional profile: %w", err)
	}
	return &profile, nil
}

func (r *userRepository) UpdateProfile(ctx context.Context, profile *model.ProfessionalProfile) error {
	query := `
		UPDATE professional_profiles
		SET company_name = $1, bio = $2, images = $3
		WHERE user_id = $4
	`
	result, err := r.db.ExecContext(ctx, query,
		profile.CompanyName, profile.Bio, profile.Images, profile.UserID,
	)
	if err != nil {
		return fmt.Errorf("failed to update professional profile: %w", err)
	}
	return checkAffected(result)
}

func (r *userRepository) IncrementProfessionalStats(ctx context.Context, userID uuid.UUID, bookings int, revenue float64) error {
	query := `
		UPDATE professional_profiles
		SET total_bookings = total_bookings + $1,
			total_revenue = total_revenue + $2
		WHERE user_id = $3
	`
	result, err := r.db.ExecContext(ctx, query, bookings, revenue, userID)
	if err != nil {
		return fmt.Errorf("failed to increment professional stats: %w", err)
	}
	return checkAffected(result)
}

func (r *userRepository) SetProfessionalRating(ctx context.Context, userID uuid.UUID, rating float64, reviewCount int) error {
	query := `
		UPDATE professional_profiles
		SET rating = $1, review_count = $2
		WHERE user_id = $3
	`
	result, err := r.db.ExecContext(ctx, query, rating, reviewCount, userID)
	if err != nil {
		return fmt.Errorf("failed to set professional rating: %w", err)
	}
	return checkAffected(result)
}

func checkAffected(result sql.Result) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return repository.ErrNotFound
	}
	return nil
}
