package notification

import (
	"context"
	"fmt"

	"github.com/servipro/marketplace-api/internal/email"
	"github.com/servipro/marketplace-api/internal/model"
	"github.com/servipro/marketplace-api/internal/repository"
	"github.com/servipro/marketplace-api/pkg/logger"
)

// Service renders and queues booking emails for the counterparty of a
// lifecycle event. Delivery is asynchronous and best-effort.
type Service interface {
	BookingEvent(ctx context.Context, eventType string, booking *model.Booking, recipient *model.User)
}

type service struct {
	repo   repository.NotificationRepository
	sender email.Sender
	logger *logger.Logger
}

func NewService(repo repository.NotificationRepository, sender email.Sender, log *logger.Logger) Service {
	return &service{repo: repo, sender: sender, logger: log}
}

func (s *service) BookingEvent(ctx context.Context, eventType string, booking *model.Booking, recipient *model.User) {
	subject, body := renderBookingEmail(eventType, booking, recipient)
	if subject == "" {
		return
	}

	notification := &model.Notification{
		UserID:  recipient.ID,
		Email:   recipient.Email,
		Subject: subject,
		Body:    body,
	}
	if err := s.repo.Create(ctx, notification); err != nil {
		s.logger.Error(err, "failed to queue notification", "event_type", eventType)
		return
	}

	go s.deliver(notification)
}

func (s *service) deliver(notification *model.Notification) {
	ctx := context.Background()
	if err := s.sender.Send(ctx, notification.Email, notification.Subject, notification.Body); err != nil {
		s.logger.Error(err, "failed to send notification", "notification_id", notification.ID.String())
		msg := err.Error()
		if uerr := s.repo.UpdateStatus(ctx, notification.ID, model.NotificationStatusFailed, &msg); uerr != nil {
			s.logger.Error(uerr, "failed to update notification status")
		}
		return
	}
	if err := s.repo.UpdateStatus(ctx, notification.ID, model.NotificationStatusSent, nil); err != nil {
		s.logger.Error(err, "failed to update notification status")
	}
}

func renderBookingEmail(eventType string, booking *model.Booking, recipient *model.User) (string, string) {
	date := booking.AppointmentDate.Format("02/01/2006 15:04")
	switch eventType {
	case model.EventBookingCreated:
		return "New booking request",
			fmt.Sprintf("<p>Hello %s,</p><p>You have a new booking request for <b>%s</b> on %s (%.2f&nbsp;&euro;).</p>",
				recipient.FirstName, booking.ServiceName, date, booking.TotalPrice)
	case model.EventBookingConfirmed:
		return "Your booking is confirmed",
			fmt.Sprintf("<p>Hello %s,</p><p>Your booking for <b>%s</b> on %s has been confirmed.</p>",
				recipient.FirstName, booking.ServiceName, date)
	case model.EventBookingCompleted:
		return "Your booking is completed",
			fmt.Sprintf("<p>Hello %s,</p><p>Your booking for <b>%s</b> has been completed. You can now leave a review.</p>",
				recipient.FirstName, booking.ServiceName)
	case model.EventBookingCancelled:
		reason := ""
		if booking.CancelReason != nil && *booking.CancelReason != "" {
			reason = fmt.Sprintf("<p>Reason: %s</p>", *booking.CancelReason)
		}
		return "Your booking was cancelled",
			fmt.Sprintf("<p>Hello %s,</p><p>The booking for <b>%s</b> on %s was cancelled.</p>%s",
				recipient.FirstName, booking.ServiceName, date, reason)
	}
	return "", ""
}
