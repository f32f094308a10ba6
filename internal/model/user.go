package model

import (
	"github.com/google/uuid"
	"github.com/lib/pq"
)

// UserRole is the account side a user belongs to.
type UserRole string

const (
	UserRoleClient       UserRole = "client"
	UserRoleProfessional UserRole = "professional"
)

// User is a marketplace account. Professionals additionally carry a Profile.
type User struct {
	Base
	Email        string   `db:"email" json:"email"`
	Password     string   `db:"-" json:"password,omitempty"`
	PasswordHash string   `db:"password_hash" json:"-"`
	Role         UserRole `db:"role" json:"role"`
	FirstName    string   `db:"first_name" json:"first_name"`
	LastName     string   `db:"last_name" json:"last_name"`
	Phone        string   `db:"phone" json:"phone"`
	Address      string   `db:"address" json:"address"`
	City         string   `db:"city" json:"city"`
	PostalCode   string   `db:"postal_code" json:"postal_code"`
	IsActive     bool     `db:"is_active" json:"is_active"`

	Profile *ProfessionalProfile `db:"-" json:"profile,omitempty"`
}

// ProfessionalStats are the denormalized aggregates maintained by the booking
// and review services.
type ProfessionalStats struct {
	Rating        float64 `db:"rating" json:"rating"`
	ReviewCount   int     `db:"review_count" json:"review_count"`
	TotalBookings int     `db:"total_bookings" json:"total_bookings"`
	TotalRevenue  float64 `db:"total_revenue" json:"total_revenue"`
}

// ProfessionalProfile is the business half of a professional account.
type ProfessionalProfile struct {
	UserID      uuid.UUID       `db:"user_id" json:"user_id"`
	CompanyName string          `db:"company_name" json:"company_name"`
	Siret       string          `db:"siret" json:"siret"`
	Profession  ServiceCategory `db:"profession" json:"profession"`
	Bio         string          `db:"bio" json:"bio"`
	Images      pq.StringArray  `db:"images" json:"images"`
	ProfessionalStats
}

// RegisterRequest creates an account; profile fields are required for
// professionals and ignored for clients.
type RegisterRequest struct {
	Email       string   `json:"email" binding:"required,email"`
	Password    string   `json:"password" binding:"required,min=8"`
	Role        UserRole `json:"role" binding:"required,oneof=client professional"`
	FirstName   string   `json:"first_name" binding:"required"`
	LastName    string   `json:"last_name" binding:"required"`
	Phone       string   `json:"phone"`
	Address     string   `json:"address"`
	City        string   `json:"city"`
	PostalCode  string   `json:"postal_code"`
	CompanyName string   `json:"company_name"`
	Siret       string   `json:"siret"`
	Profession  string   `json:"profession"`
	Bio         string   `json:"bio"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// UpdateUserRequest mutates profile fields; nil means unchanged.
type UpdateUserRequest struct {
	FirstName   *string   `json:"first_name"`
	LastName    *string   `json:"last_name"`
	Phone       *string   `json:"phone"`
	Address     *string   `json:"address"`
	City        *string   `json:"city"`
	PostalCode  *string   `json:"postal_code"`
	CompanyName *string   `json:"company_name"`
	Bio         *string   `json:"bio"`
	Images      *[]string `json:"images"`
}

// ProfessionalFilters scope the public professional directory.
type ProfessionalFilters struct {
	Profession ServiceCategory
	City       string
	Page       int
	PageSize   int
}
