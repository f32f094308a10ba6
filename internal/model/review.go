package model

import "github.com/google/uuid"

// Review is a client's rating of a completed booking; at most one per booking.
type Review struct {
	Base
	BookingID      uuid.UUID `db:"booking_id" json:"booking_id"`
	ClientID       uuid.UUID `db:"client_id" json:"client_id"`
	ProfessionalID uuid.UUID `db:"professional_id" json:"professional_id"`
	ServiceID      uuid.UUID `db:"service_id" json:"service_id"`
	Rating         int       `db:"rating" json:"rating"`
	Comment        string    `db:"comment" json:"comment"`
}

type CreateReviewRequest struct {
	BookingID uuid.UUID `json:"booking_id" binding:"required"`
	Rating    int       `json:"rating" binding:"required,min=1,max=5"`
	Comment   string    `json:"comment" binding:"max=2000"`
}

type ReviewFilters struct {
	ProfessionalID uuid.UUID
	ServiceID      uuid.UUID
	Page           int
	PageSize       int
}
