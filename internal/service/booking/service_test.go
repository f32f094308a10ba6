package booking

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/servipro/marketplace-api/internal/email"
	"github.com/servipro/marketplace-api/internal/model"
	"github.com/servipro/marketplace-api/internal/repository/memory"
	"github.com/servipro/marketplace-api/internal/service/event"
	"github.com/servipro/marketplace-api/internal/service/notification"
	apperrors "github.com/servipro/marketplace-api/pkg/errors"
	"github.com/servipro/marketplace-api/pkg/logger"
	"github.com/servipro/marketplace-api/pkg/metrics"
)

// One registration per test process; prometheus panics on duplicates.
var testMetrics = metrics.New("booking_test")

type testEnv struct {
	svc     *Service
	store   *memory.Store
	client  *model.User
	pro     *model.User
	offered *model.Service
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()
	log := logger.New(&logger.Config{Level: logger.ErrorLevel, Output: io.Discard})

	client := &model.User{
		Email:     "client@example.com",
		Role:      model.UserRoleClient,
		FirstName: "Claire",
		LastName:  "Martin",
	}
	require.NoError(t, store.Users().Create(ctx, client))

	pro := &model.User{
		Email:     "pro@example.com",
		Role:      model.UserRoleProfessional,
		FirstName: "Paul",
		LastName:  "Durand",
	}
	require.NoError(t, store.Users().Create(ctx, pro))
	require.NoError(t, store.Users().CreateProfile(ctx, &model.ProfessionalProfile{
		UserID:      pro.ID,
		CompanyName: "Durand Plomberie",
		Profession:  model.CategoryPlumbing,
	}))

	offered := &model.Service{
		ProfessionalID:  pro.ID,
		Name:            "Leak repair",
		Category:        model.CategoryPlumbing,
		Price:           89,
		DurationMinutes: 60,
		IsActive:        true,
	}
	require.NoError(t, store.Services().Create(ctx, offered))

	events := event.NewService(store.Outbox(), log)
	notifier := notification.NewService(store.Notifications(), email.NewLogSender(log), log)
	svc := NewService(store.Bookings(), store.Services(), store.Users(), events, notifier, testMetrics)

	return &testEnv{svc: svc, store: store, client: client, pro: pro, offered: offered}
}

func (e *testEnv) createBooking(t *testing.T) *model.Booking {
	t.Helper()
	b, err := e.svc.Create(context.Background(), e.client, &model.CreateBookingRequest{
		ServiceID:       e.offered.ID,
		AppointmentDate: time.Now().Add(48 * time.Hour),
	})
	require.NoError(t, err)
	return b
}

func requireCode(t *testing.T, err error, code apperrors.ErrorCode) {
	t.Helper()
	require.Error(t, err)
	appErr, ok := apperrors.As(err)
	require.True(t, ok, "expected AppError, got %v", err)
	assert.Equal(t, code, appErr.Code)
}

func TestCreateBooking(t *testing.T) {
	env := newTestEnv(t)
	b := env.createBooking(t)

	assert.Equal(t, model.BookingStatusPending, b.Status)
	assert.Equal(t, env.client.ID, b.ClientID)
	assert.Equal(t, env.pro.ID, b.ProfessionalID)
	assert.Equal(t, "Leak repair", b.ServiceName)
	assert.Equal(t, 89.0, b.TotalPrice)
	require.Len(t, b.Timeline, 1)
	assert.Equal(t, "created", b.Timeline[0].Event)
}

func TestCreateBookingSnapshotsPrice(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	b := env.createBooking(t)

	env.offered.Price = 120
	env.offered.Name = "Emergency leak repair"
	require.NoError(t, env.store.Services().Update(ctx, env.offered))

	got, err := env.svc.Get(ctx, b.ID, env.client)
	require.NoError(t, err)
	assert.Equal(t, 89.0, got.TotalPrice)
	assert.Equal(t, "Leak repair", got.ServiceName)
}

func TestCreateBookingRejections(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	future := time.Now().Add(24 * time.Hour)

	t.Run("professional caller", func(t *testing.T) {
		_, err := env.svc.Create(ctx, env.pro, &model.CreateBookingRequest{
			ServiceID: env.offered.ID, AppointmentDate: future,
		})
		requireCode(t, err, apperrors.CodeForbidden)
	})

	t.Run("past date", func(t *testing.T) {
		_, err := env.svc.Create(ctx, env.client, &model.CreateBookingRequest{
			ServiceID: env.offered.ID, AppointmentDate: time.Now().Add(-time.Hour),
		})
		requireCode(t, err, apperrors.CodeBadRequest)
	})

	t.Run("unknown service", func(t *testing.T) {
		_, err := env.svc.Create(ctx, env.client, &model.CreateBookingRequest{
			ServiceID: uuid.New(), AppointmentDate: future,
		})
		requireCode(t, err, apperrors.CodeNotFound)
	})

	t.Run("inactive service", func(t *testing.T) {
		env.offered.IsActive = false
		require.NoError(t, env.store.Services().Update(ctx, env.offered))
		defer func() {
			env.offered.IsActive = true
			require.NoError(t, env.store.Services().Update(ctx, env.offered))
		}()

		_, err := env.svc.Create(ctx, env.client, &model.CreateBookingRequest{
			ServiceID: env.offered.ID, AppointmentDate: future,
		})
		requireCode(t, err, apperrors.CodeBadRequest)
	})
}

func TestLifecycleConfirmComplete(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	b := env.createBooking(t)

	confirmed, err := env.svc.Confirm(ctx, b.ID, env.pro.ID)
	require.NoError(t, err)
	assert.Equal(t, model.BookingStatusConfirmed, confirmed.Status)

	completed, err := env.svc.Complete(ctx, b.ID, env.pro.ID)
	require.NoError(t, err)
	assert.Equal(t, model.BookingStatusCompleted, completed.Status)
	require.Len(t, completed.Timeline, 3)

	profile, err := env.store.Users().GetProfile(ctx, env.pro.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, profile.TotalBookings)
	assert.Equal(t, 89.0, profile.TotalRevenue)

	offered, err := env.store.Services().Get(ctx, env.offered.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, offered.BookingCount)
}

func TestConfirmOnlyProfessional(t *testing.T) {
	env := newTestEnv(t)
	b := env.createBooking(t)

	_, err := env.svc.Confirm(context.Background(), b.ID, env.client.ID)
	requireCode(t, err, apperrors.CodeForbidden)
}

func TestCompleteRequiresConfirmed(t *testing.T) {
	env := newTestEnv(t)
	b := env.createBooking(t)

	_, err := env.svc.Complete(context.Background(), b.ID, env.pro.ID)
	requireCode(t, err, apperrors.CodeBadRequest)
}

func TestCancelByClient(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	b := env.createBooking(t)

	cancelled, err := env.svc.Cancel(ctx, b.ID, env.client.ID, "changed my mind")
	require.NoError(t, err)
	assert.Equal(t, model.BookingStatusCancelled, cancelled.Status)
	require.NotNil(t, cancelled.CancelledBy)
	assert.Equal(t, model.CancelledByClient, *cancelled.CancelledBy)
	require.NotNil(t, cancelled.CancelReason)
	assert.Equal(t, "changed my mind", *cancelled.CancelReason)

	// Terminal: nothing leaves cancelled.
	_, err = env.svc.Confirm(ctx, b.ID, env.pro.ID)
	requireCode(t, err, apperrors.CodeBadRequest)
}

func TestCancelByProfessionalAfterConfirm(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	b := env.createBooking(t)

	_, err := env.svc.Confirm(ctx, b.ID, env.pro.ID)
	require.NoError(t, err)

	cancelled, err := env.svc.Cancel(ctx, b.ID, env.pro.ID, "")
	require.NoError(t, err)
	require.NotNil(t, cancelled.CancelledBy)
	assert.Equal(t, model.CancelledByProfessional, *cancelled.CancelledBy)
	assert.Nil(t, cancelled.CancelReason)
}

func TestCancelNonParty(t *testing.T) {
	env := newTestEnv(t)
	b := env.createBooking(t)

	_, err := env.svc.Cancel(context.Background(), b.ID, uuid.New(), "")
	requireCode(t, err, apperrors.CodeForbidden)
}

func TestUpdateStatusDispatch(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	b := env.createBooking(t)

	// pending -> completed skips confirmation and is rejected.
	_, err := env.svc.UpdateStatus(ctx, b.ID, env.pro.ID, &model.UpdateBookingStatusRequest{
		Status: model.BookingStatusCompleted,
	})
	requireCode(t, err, apperrors.CodeBadRequest)

	got, err := env.svc.UpdateStatus(ctx, b.ID, env.pro.ID, &model.UpdateBookingStatusRequest{
		Status: model.BookingStatusConfirmed,
	})
	require.NoError(t, err)
	assert.Equal(t, model.BookingStatusConfirmed, got.Status)

	got, err = env.svc.UpdateStatus(ctx, b.ID, env.client.ID, &model.UpdateBookingStatusRequest{
		Status: model.BookingStatusCancelled, Reason: "overslept",
	})
	require.NoError(t, err)
	assert.Equal(t, model.BookingStatusCancelled, got.Status)
}

func TestGetRestrictedToParties(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	b := env.createBooking(t)

	stranger := &model.User{Email: "other@example.com", Role: model.UserRoleClient}
	require.NoError(t, env.store.Users().Create(ctx, stranger))

	_, err := env.svc.Get(ctx, b.ID, stranger)
	requireCode(t, err, apperrors.CodeForbidden)

	_, err = env.svc.Get(ctx, b.ID, env.pro)
	require.NoError(t, err)
}

func TestListScopedByRole(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.createBooking(t)
	env.createBooking(t)

	clientView, total, err := env.svc.List(ctx, env.client, "", 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, clientView, 2)

	proView, total, err := env.svc.List(ctx, env.pro, model.BookingStatusPending, 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	for _, b := range proView {
		assert.Equal(t, env.pro.ID, b.ProfessionalID)
	}

	_, total, err = env.svc.List(ctx, env.client, model.BookingStatusCompleted, 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 0, total)
}

func TestOutboxEventsEmitted(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	b := env.createBooking(t)

	_, err := env.svc.Confirm(ctx, b.ID, env.pro.ID)
	require.NoError(t, err)

	events, err := env.store.Outbox().GetPendingEvents(ctx, 10)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, model.EventBookingCreated, events[0].EventType)
	assert.Equal(t, model.EventBookingConfirmed, events[1].EventType)
}
