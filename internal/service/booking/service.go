package booking

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/servipro/marketplace-api/internal/model"
	"github.com/servipro/marketplace-api/internal/repository"
	"github.com/servipro/marketplace-api/internal/service/event"
	"github.com/servipro/marketplace-api/internal/service/notification"
	apperrors "github.com/servipro/marketplace-api/pkg/errors"
	"github.com/servipro/marketplace-api/pkg/metrics"
)

// Transition timeline entries reuse the target status as event name; creation
// gets its own label since no transition produced it.
const timelineEventCreated = "created"

// Service enforces the booking lifecycle: the transition table in state.go
// plus per-operation actor authorization.
type Service struct {
	repo     repository.BookingRepository
	services repository.ServiceRepository
	users    repository.UserRepository
	events   *event.Service
	notifier notification.Service
	metrics  *metrics.Metrics
}

func NewService(
	repo repository.BookingRepository,
	services repository.ServiceRepository,
	users repository.UserRepository,
	events *event.Service,
	notifier notification.Service,
	m *metrics.Metrics,
) *Service {
	return &Service{
		repo:     repo,
		services: services,
		users:    users,
		events:   events,
		notifier: notifier,
		metrics:  m,
	}
}

// Create books an active service for a client. Price and service name are
// snapshotted so later catalog edits never alter the booking.
func (s *Service) Create(ctx context.Context, client *model.User, req *model.CreateBookingRequest) (*model.Booking, error) {
	if client.Role != model.UserRoleClient {
		return nil, apperrors.Forbidden("only clients can create bookings", nil)
	}
	if !req.AppointmentDate.After(time.Now()) {
		return nil, apperrors.BadRequest("appointment date must be in the future", nil)
	}

	svc, err := s.services.Get(ctx, req.ServiceID)
	if err != nil {
		return nil, translate(err, "service")
	}
	if !svc.IsActive {
		return nil, apperrors.BadRequest("service is no longer available", nil)
	}

	professional, err := s.users.Get(ctx, svc.ProfessionalID)
	if err != nil {
		return nil, translate(err, "professional")
	}
	if !professional.IsActive || professional.Role != model.UserRoleProfessional {
		return nil, apperrors.BadRequest("professional is no longer available", nil)
	}

	booking := &model.Booking{
		ClientID:        client.ID,
		ProfessionalID:  svc.ProfessionalID,
		ServiceID:       svc.ID,
		ServiceName:     svc.Name,
		TotalPrice:      svc.Price,
		AppointmentDate: req.AppointmentDate,
		Status:          model.BookingStatusPending,
		Notes:           req.Notes,
	}
	if err := s.repo.Create(ctx, booking); err != nil {
		return nil, apperrors.Internal(err)
	}

	s.appendTimeline(ctx, booking.ID, timelineEventCreated, model.BookingStatusPending, client.ID, "")
	s.metrics.BookingTransitions.WithLabelValues(string(model.BookingStatusPending), "ok").Inc()
	s.events.Emit(ctx, model.EventBookingCreated, booking)
	s.notifier.BookingEvent(ctx, model.EventBookingCreated, booking, professional)

	return s.repo.Get(ctx, booking.ID)
}

// Confirm moves pending -> confirmed; only the booking's professional may.
func (s *Service) Confirm(ctx context.Context, id, actorID uuid.UUID) (*model.Booking, error) {
	booking, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, translate(err, "booking")
	}
	if booking.ProfessionalID != actorID {
		return nil, apperrors.Forbidden("only the professional can confirm a booking", nil)
	}
	return s.transition(ctx, booking, model.BookingStatusConfirmed, actorID, "", nil)
}

// Complete moves confirmed -> completed and credits the professional's
// aggregates with the booked price.
func (s *Service) Complete(ctx context.Context, id, actorID uuid.UUID) (*model.Booking, error) {
	booking, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, translate(err, "booking")
	}
	if booking.ProfessionalID != actorID {
		return nil, apperrors.Forbidden("only the professional can complete a booking", nil)
	}

	updated, err := s.transition(ctx, booking, model.BookingStatusCompleted, actorID, "", nil)
	if err != nil {
		return nil, err
	}

	if err := s.users.IncrementProfessionalStats(ctx, booking.ProfessionalID, 1, booking.TotalPrice); err != nil {
		return nil, apperrors.Internal(fmt.Errorf("failed to update professional stats: %w", err))
	}
	if err := s.services.IncrementBookingCount(ctx, booking.ServiceID); err != nil {
		return nil, apperrors.Internal(fmt.Errorf("failed to update service stats: %w", err))
	}
	return updated, nil
}

// Cancel moves pending|confirmed -> cancelled and records which party did it.
func (s *Service) Cancel(ctx context.Context, id, actorID uuid.UUID, reason string) (*model.Booking, error) {
	booking, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, translate(err, "booking")
	}

	var actor model.CancelActor
	switch actorID {
	case booking.ClientID:
		actor = model.CancelledByClient
	case booking.ProfessionalID:
		actor = model.CancelledByProfessional
	default:
		return nil, apperrors.Forbidden("only a booking party can cancel it", nil)
	}

	return s.transition(ctx, booking, model.BookingStatusCancelled, actorID, reason, &actor)
}

// UpdateStatus backs the generic status endpoint; it dispatches into the same
// operations as the dedicated verbs.
func (s *Service) UpdateStatus(ctx context.Context, id, actorID uuid.UUID, req *model.UpdateBookingStatusRequest) (*model.Booking, error) {
	switch req.Status {
	case model.BookingStatusConfirmed:
		return s.Confirm(ctx, id, actorID)
	case model.BookingStatusCompleted:
		return s.Complete(ctx, id, actorID)
	case model.BookingStatusCancelled:
		return s.Cancel(ctx, id, actorID, req.Reason)
	default:
		return nil, apperrors.BadRequest(fmt.Sprintf("unsupported target status %q", req.Status), nil)
	}
}

// Get returns a booking to one of its two parties.
func (s *Service) Get(ctx context.Context, id uuid.UUID, caller *model.User) (*model.Booking, error) {
	booking, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, translate(err, "booking")
	}
	if booking.ClientID != caller.ID && booking.ProfessionalID != caller.ID {
		return nil, apperrors.Forbidden("not a party to this booking", nil)
	}
	return booking, nil
}

// List returns the caller's side of the ledger: clients see their client
// bookings, professionals their professional ones.
func (s *Service) List(ctx context.Context, caller *model.User, status model.BookingStatus, page, pageSize int) ([]*model.Booking, int64, error) {
	filters := &model.BookingFilters{
		Status:   status,
		Page:     page,
		PageSize: pageSize,
	}
	switch caller.Role {
	case model.UserRoleClient:
		filters.ClientID = caller.ID
	case model.UserRoleProfessional:
		filters.ProfessionalID = caller.ID
	default:
		return nil, 0, apperrors.Forbidden("unknown role", nil)
	}

	bookings, total, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, 0, apperrors.Internal(err)
	}
	return bookings, total, nil
}

func (s *Service) transition(ctx context.Context, booking *model.Booking, to model.BookingStatus, actorID uuid.UUID, reason string, cancelledBy *model.CancelActor) (*model.Booking, error) {
	if !CanTransition(booking.Status, to) {
		s.metrics.BookingTransitions.WithLabelValues(string(to), "rejected").Inc()
		return nil, apperrors.BadRequest(
			fmt.Sprintf("cannot transition booking from %s to %s", booking.Status, to), nil)
	}

	var reasonPtr *string
	if reason != "" {
		reasonPtr = &reason
	}
	err := s.repo.UpdateStatus(ctx, booking.ID, booking.Status, to, cancelledBy, reasonPtr)
	switch {
	case err == nil:
	case err == repository.ErrStatusConflict:
		s.metrics.BookingTransitions.WithLabelValues(string(to), "conflict").Inc()
		return nil, apperrors.Conflict("booking status changed concurrently, retry", err)
	case err == repository.ErrNotFound:
		return nil, apperrors.NotFound("booking", err)
	default:
		return nil, apperrors.Internal(err)
	}

	s.appendTimeline(ctx, booking.ID, string(to), to, actorID, reason)
	s.metrics.BookingTransitions.WithLabelValues(string(to), "ok").Inc()

	updated, err := s.repo.Get(ctx, booking.ID)
	if err != nil {
		return nil, translate(err, "booking")
	}

	eventType, recipientID := s.eventFor(updated, to, actorID)
	s.events.Emit(ctx, eventType, updated)
	if recipient, err := s.users.Get(ctx, recipientID); err == nil {
		s.notifier.BookingEvent(ctx, eventType, updated, recipient)
	}
	return updated, nil
}

// eventFor picks the outbox event type and the counterparty to notify.
func (s *Service) eventFor(booking *model.Booking, to model.BookingStatus, actorID uuid.UUID) (string, uuid.UUID) {
	recipient := booking.ClientID
	if actorID == booking.ClientID {
		recipient = booking.ProfessionalID
	}
	switch to {
	case model.BookingStatusConfirmed:
		return model.EventBookingConfirmed, recipient
	case model.BookingStatusCompleted:
		return model.EventBookingCompleted, recipient
	default:
		return model.EventBookingCancelled, recipient
	}
}

func (s *Service) appendTimeline(ctx context.Context, bookingID uuid.UUID, eventName string, to model.BookingStatus, actorID uuid.UUID, note string) {
	entry := &model.TimelineEntry{
		BookingID: bookingID,
		Event:     eventName,
		ToStatus:  to,
		ActorID:   actorID,
		Note:      note,
	}
	// Timeline failures must not roll back an applied transition.
	_ = s.repo.AppendTimeline(ctx, entry)
}

func translate(err error, resource string) error {
	if err == repository.ErrNotFound {
		return apperrors.NotFound(resource, err)
	}
	return apperrors.Internal(err)
}
