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

func (r *reviewRepository) Create(ctx context.Context, review *model.Review) error {
	query := `
		INSERT INTO reviews (
			id, booking_id, client_id, professional_id, service_id,
			rating, comment, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	review.ID = uuid.New()
	review.CreatedAt = time.Now()
	review.UpdatedAt = review.CreatedAt

	_, err := r.db.ExecContext(ctx, query,
		review.ID, review.BookingID, review.ClientID,
		review.ProfessionalID, review.ServiceID,
		review.Rating, review.Comment, review.CreatedAt, review.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return repository.ErrDuplicate
		}
		return fmt.Errorf("failed to create review: %w", err)
	}
	return nil
}

func (r *reviewRepository) GetByBooking(ctx context.Context, bookingID uuid.UUID) (*model.Review, error) {
	query := `
		SELECT id, booking_id, client_id, professional_id, service_id,
			   rating, comment, created_at, updated_at
		FROM reviews
		WHERE booking_id = $1
	`
	var review model.Review
	if err := r.db.GetContext(ctx, &review, query, bookingID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get review: %w", err)
	}
	return &review, nil
}

func (r *reviewRepository) List(ctx context.Context, filters *model.ReviewFilters) ([]*model.Review, int64, error) {
	where := " WHERE 1=1"
	args := []interface{}{}
	argCount := 1

	if filters.ProfessionalID != uuid.Nil {
		where += fmt.Sprintf(" AND professional_id = $%d", argCount)
		args = append(args, filters.ProfessionalID)
		argCount++
	}
	if filters.ServiceID != uuid.Nil {
		where += fmt.Sprintf(" AND service_id = $%d", argCount)
		args = append(args, filters.ServiceID)
		argCount++
	}

	var total int64
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM reviews"+where, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count reviews: %w", err)
	}

	query := `
		SELECT id, booking_id, client_id, professional_id, service_id,
			   rating, comment, created_at, updated_at
		FROM reviews` + where +
		fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", argCount, argCount+1)
	args = append(args, filters.PageSize, (filters.Page-1)*filters.PageSize)

	var reviews []*model.Review
	if err := r.db.SelectContext(ctx, &reviews, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list reviews: %w", err)
	}
	return reviews, total, nil
}

func (r *reviewRepository) AggregateForProfessional(ctx context.Context, professionalID uuid.UUID) (float64, int, error) {
	return r.aggregate(ctx, "professional_id", professionalID)
}

func (r *reviewRepository) AggregateForService(ctx context.Context, serviceID uuid.UUID) (float64, int, error) {
	return r.aggregate(ctx, "service_id", serviceID)
}

func (r *reviewRepository) aggregate(ctx context.Context, column string, id uuid.UUID) (float64, int, error) {
	query := fmt.Sprintf(
		`SELECT COALESCE(AVG(rating), 0), COUNT(*) FROM reviews WHERE %s = $1`, column)
	var avg float64
	var count int
	if err := r.db.QueryRowxContext(ctx, query, id).Scan(&avg, &count); err != nil {
		return 0, 0, fmt.Errorf("failed to aggregate reviews: %w", err)
	}
	return avg, count, nil
}
