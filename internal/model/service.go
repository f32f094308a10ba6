package model

import "github.com/google/uuid"

// ServiceCategory is the closed set of professions on the marketplace.
type ServiceCategory string

const (
	CategoryAutomobile   ServiceCategory = "automobile"
	CategoryPlumbing     ServiceCategory = "plumbing"
	CategoryLocksmithing ServiceCategory = "locksmithing"
	CategoryElectricity  ServiceCategory = "electricity"
	CategoryCleaning     ServiceCategory = "cleaning"
	CategoryGardening    ServiceCategory = "gardening"
)

// ValidCategory reports whether c belongs to the closed enum.
func ValidCategory(c ServiceCategory) bool {
	switch c {
	case CategoryAutomobile, CategoryPlumbing, CategoryLocksmithing,
		CategoryElectricity, CategoryCleaning, CategoryGardening:
		return true
	}
	return false
}

// Service is an offering owned by exactly one professional.
type Service struct {
	Base
	ProfessionalID  uuid.UUID       `db:"professional_id" json:"professional_id"`
	Name            string          `db:"name" json:"name"`
	Description     string          `db:"description" json:"description"`
	Category        ServiceCategory `db:"category" json:"category"`
	Price           float64         `db:"price" json:"price"`
	DurationMinutes int             `db:"duration_minutes" json:"duration_minutes"`
	IsActive        bool            `db:"is_active" json:"is_active"`
	BookingCount    int             `db:"booking_count" json:"booking_count"`
	AverageRating   float64         `db:"average_rating" json:"average_rating"`
}

type CreateServiceRequest struct {
	Name            string  `json:"name" binding:"required,max=120"`
	Description     string  `json:"description" binding:"max=2000"`
	Category        string  `json:"category" binding:"required"`
	Price           float64 `json:"price" binding:"required,gt=0"`
	DurationMinutes int     `json:"duration_minutes" binding:"required,gt=0"`
}

type UpdateServiceRequest struct {
	Name            *string  `json:"name" binding:"omitempty,max=120"`
	Description     *string  `json:"description" binding:"omitempty,max=2000"`
	Category        *string  `json:"category"`
	Price           *float64 `json:"price" binding:"omitempty,gt=0"`
	DurationMinutes *int     `json:"duration_minutes" binding:"omitempty,gt=0"`
	IsActive        *bool    `json:"is_active"`
}

// ServiceFilters scope the public catalog listing. Query is matched as a
// naive substring against name and description.
type ServiceFilters struct {
	ProfessionalID  uuid.UUID
	Category        ServiceCategory
	MinPrice        float64
	MaxPrice        float64
	Query           string
	IncludeInactive bool
	Page            int
	PageSize        int
}
