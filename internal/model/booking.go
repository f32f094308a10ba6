package model

import (
	"time"

	"github.com/google/uuid"
)

// BookingStatus is the lifecycle state of a booking. Cancellation attribution
// lives in CancelledBy, not in the status itself.
type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCompleted BookingStatus = "completed"
	BookingStatusCancelled BookingStatus = "cancelled"
)

// CancelActor identifies which party cancelled a booking.
type CancelActor string

const (
	CancelledByClient       CancelActor = "client"
	CancelledByProfessional CancelActor = "professional"
)

// Booking links a client, a professional and a service at a date. ServiceName
// and TotalPrice are snapshots taken at creation; later service edits never
// alter an existing booking.
type Booking struct {
	Base
	ClientID        uuid.UUID     `db:"client_id" json:"client_id"`
	ProfessionalID  uuid.UUID     `db:"professional_id" json:"professional_id"`
	ServiceID       uuid.UUID     `db:"service_id" json:"service_id"`
	ServiceName     string        `db:"service_name" json:"service_name"`
	TotalPrice      float64       `db:"total_price" json:"total_price"`
	AppointmentDate time.Time     `db:"appointment_date" json:"appointment_date"`
	Status          BookingStatus `db:"status" json:"status"`
	Notes           string        `db:"notes" json:"notes,omitempty"`
	CancelledBy     *CancelActor  `db:"cancelled_by" json:"cancelled_by,omitempty"`
	CancelReason    *string       `db:"cancel_reason" json:"cancel_reason,omitempty"`

	Timeline []TimelineEntry `db:"-" json:"timeline,omitempty"`
}

// TimelineEntry is one row of a booking's append-only audit log.
type TimelineEntry struct {
	ID        uuid.UUID     `db:"id" json:"id"`
	BookingID uuid.UUID     `db:"booking_id" json:"booking_id"`
	Event     string        `db:"event" json:"event"`
	ToStatus  BookingStatus `db:"to_status" json:"to_status"`
	ActorID   uuid.UUID     `db:"actor_id" json:"actor_id"`
	Note      string        `db:"note" json:"note,omitempty"`
	CreatedAt time.Time     `db:"created_at" json:"created_at"`
}

type CreateBookingRequest struct {
	ServiceID       uuid.UUID `json:"service_id" binding:"required"`
	AppointmentDate time.Time `json:"appointment_date" binding:"required"`
	Notes           string    `json:"notes" binding:"max=1000"`
}

type CancelBookingRequest struct {
	Reason string `json:"reason" binding:"max=500"`
}

// UpdateBookingStatusRequest backs the generic PUT /bookings/:id/status
// endpoint; it routes through the same state machine as the dedicated verbs.
type UpdateBookingStatusRequest struct {
	Status BookingStatus `json:"status" binding:"required,oneof=confirmed completed cancelled"`
	Reason string        `json:"reason" binding:"max=500"`
}

// BookingFilters scope a listing to one side of the caller's bookings.
type BookingFilters struct {
	ClientID       uuid.UUID
	ProfessionalID uuid.UUID
	Status         BookingStatus
	Page           int
	PageSize       int
}
