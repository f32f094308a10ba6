package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/servipro/marketplace-api/internal/model"
	"github.com/servipro/marketplace-api/internal/repository"
)

const serviceColumns = `
	id, professional_id, name, description, category, price,
	duration_minutes, is_active, booking_count, average_rating,
	created_at, updated_at`

func (r *serviceRepository) Create(ctx context.Context, service *model.Service) error {
	query := `
		INSERT INTO services (
			id, professional_id, name, description, category, price,
			duration_minutes, is_active, booking_count, average_rating,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, 0, 0, $9, $10)
	`
	service.ID = uuid.New()
	service.CreatedAt = time.Now()
	service.UpdatedAt = service.CreatedAt
	service.IsActive = true

	_, err := r.db.ExecContext(ctx, query,
		service.ID, service.ProfessionalID, service.Name, service.Description,
		service.Category, service.Price, service.DurationMinutes,
		service.IsActive, service.CreatedAt, service.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create service: %w", err)
	}
	return nil
}

func (r *serviceRepository) Get(ctx context.Context, id uuid.UUID) (*model.Service, error) {
	query := `SELECT` + serviceColumns + ` FROM services WHERE id = $1`
	var service model.Service
	if err := r.db.GetContext(ctx, &service, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get service: %w", err)
	}
	return &service, nil
}

func (r *serviceRepository) Update(ctx context.Context, service *model.Service) error {
	query := `
		UPDATE services
		SET name = $1, description = $2, category = $3, price = $4,
			duration_minutes = $5, is_active = $6, updated_at = $7
		WHERE id = $8
	`
	service.UpdatedAt = time.Now()
	result, err := r.db.ExecContext(ctx, query,
		service.Name, service.Description, service.Category, service.Price,
		service.DurationMinutes, service.IsActive, service.UpdatedAt, service.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update service: %w", err)
	}
	return checkAffected(result)
}

func (r *serviceRepository) List(ctx context.Context, filters *model.ServiceFilters) ([]*model.Service, int64, error) {
	where := " WHERE 1=1"
	args := []interface{}{}
	argCount := 1

	if !filters.IncludeInactive {
		where += " AND is_active = true"
	}
	if filters.ProfessionalID != uuid.Nil {
		where += fmt.Sprintf(" AND professional_id = $%d", argCount)
		args = append(args, filters.ProfessionalID)
		argCount++
	}
	if filters.Category != "" {
		where += fmt.Sprintf(" AND category = $%d", argCount)
		args = append(args, filters.Category)
		argCount++
	}
	if filters.MinPrice > 0 {
		where += fmt.Sprintf(" AND price >= $%d", argCount)
		args = append(args, filters.MinPrice)
		argCount++
	}
	if filters.MaxPrice > 0 {
		where += fmt.Sprintf(" AND price <= $%d", argCount)
		args = append(args, filters.MaxPrice)
		argCount++
	}
	if filters.Query != "" {
		// Naive substring match over name and description.
		where += fmt.Sprintf(" AND (name ILIKE $%d OR description ILIKE $%d)", argCount, argCount)
		args = append(args, "%"+filters.Query+"%")
		argCount++
	}

	var total int64
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM services"+where, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count services: %w", err)
	}

	query := "SELECT" + serviceColumns + " FROM services" + where +
		fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", argCount, argCount+1)
	args = append(args, filters.PageSize, (filters.Page-1)*filters.PageSize)

	var services []*model.Service
	if err := r.db.SelectContext(ctx, &services, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list services: %w", err)
	}
	return services, total, nil
}

func (r *serviceRepository) IncrementBookingCount(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE services SET booking_count = booking_count + 1 WHERE id = $1`, id,
	)
	if err != nil {
		return fmt.Errorf("failed to increment booking count: %w", err)
	}
	return checkAffected(result)
}

func (r *serviceRepository) SetRating(ctx context.Context, id uuid.UUID, rating float64) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE services SET average_rating = $1 WHERE id = $2`, rating, id,
	)
	if err != nil {
		return fmt.Errorf("failed to set service rating: %w", err)
	}
	return checkAffected(result)
}
