package review

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/servipro/marketplace-api/internal/model"
	"github.com/servipro/marketplace-api/internal/repository/memory"
	"github.com/servipro/marketplace-api/internal/service/event"
	apperrors "github.com/servipro/marketplace-api/pkg/errors"
	"github.com/servipro/marketplace-api/pkg/logger"
)

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

	client := &model.User{Email: "client@example.com", Role: model.UserRoleClient}
	require.NoError(t, store.Users().Create(ctx, client))

	pro := &model.User{Email: "pro@example.com", Role: model.UserRoleProfessional}
	require.NoError(t, store.Users().Create(ctx, pro))
	require.NoError(t, store.Users().CreateProfile(ctx, &model.ProfessionalProfile{
		UserID: pro.ID, CompanyName: "Pro SARL", Profession: model.CategoryCleaning,
	}))

	offered := &model.Service{
		ProfessionalID: pro.ID, Name: "Deep clean", Category: model.CategoryCleaning,
		Price: 75, DurationMinutes: 120, IsActive: true,
	}
	require.NoError(t, store.Services().Create(ctx, offered))

	svc := NewService(store.Reviews(), store.Bookings(), store.Users(), store.Services(),
		event.NewService(store.Outbox(), log))
	return &testEnv{svc: svc, store: store, client: client, pro: pro, offered: offered}
}

func (e *testEnv) booking(t *testing.T, status model.BookingStatus) *model.Booking {
	t.Helper()
	b := &model.Booking{
		ClientID:        e.client.ID,
		ProfessionalID:  e.pro.ID,
		ServiceID:       e.offered.ID,
		ServiceName:     e.offered.Name,
		TotalPrice:      e.offered.Price,
		AppointmentDate: time.Now().Add(-24 * time.Hour),
		Status:          status,
	}
	require.NoError(t, e.store.Bookings().Create(context.Background(), b))
	return b
}

func requireCode(t *testing.T, err error, code apperrors.ErrorCode) {
	t.Helper()
	appErr, ok := apperrors.As(err)
	require.True(t, ok, "expected AppError, got %v", err)
	assert.Equal(t, code, appErr.Code)
}

func TestCreate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	b := env.booking(t, model.BookingStatusCompleted)

	rv, err := env.svc.Create(ctx, env.client, &model.CreateReviewRequest{
		BookingID: b.ID, Rating: 4, Comment: "solid work",
	})
	require.NoError(t, err)
	assert.Equal(t, env.pro.ID, rv.ProfessionalID)
	assert.Equal(t, env.offered.ID, rv.ServiceID)

	profile, err := env.store.Users().GetProfile(ctx, env.pro.ID)
	require.NoError(t, err)
	assert.Equal(t, 4.0, profile.Rating)
	assert.Equal(t, 1, profile.ReviewCount)

	offered, err := env.store.Services().Get(ctx, env.offered.ID)
	require.NoError(t, err)
	assert.Equal(t, 4.0, offered.AverageRating)
}

func TestCreateAveragesAcrossBookings(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	for _, rating := range []int{5, 2} {
		b := env.booking(t, model.BookingStatusCompleted)
		_, err := env.svc.Create(ctx, env.client, &model.CreateReviewRequest{
			BookingID: b.ID, Rating: rating,
		})
		require.NoError(t, err)
	}

	profile, err := env.store.Users().GetProfile(ctx, env.pro.ID)
	require.NoError(t, err)
	assert.Equal(t, 3.5, profile.Rating)
	assert.Equal(t, 2, profile.ReviewCount)
}

func TestCreateRejections(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	t.Run("pending booking", func(t *testing.T) {
		b := env.booking(t, model.BookingStatusPending)
		_, err := env.svc.Create(ctx, env.client, &model.CreateReviewRequest{BookingID: b.ID, Rating: 5})
		requireCode(t, err, apperrors.CodeBadRequest)
	})

	t.Run("cancelled booking", func(t *testing.T) {
		b := env.booking(t, model.BookingStatusCancelled)
		_, err := env.svc.Create(ctx, env.client, &model.CreateReviewRequest{BookingID: b.ID, Rating: 5})
		requireCode(t, err, apperrors.CodeBadRequest)
	})

	t.Run("not the booking's client", func(t *testing.T) {
		b := env.booking(t, model.BookingStatusCompleted)
		other := &model.User{Email: "other@example.com", Role: model.UserRoleClient}
		require.NoError(t, env.store.Users().Create(ctx, other))
		_, err := env.svc.Create(ctx, other, &model.CreateReviewRequest{BookingID: b.ID, Rating: 5})
		requireCode(t, err, apperrors.CodeForbidden)
	})

	t.Run("duplicate review", func(t *testing.T) {
		b := env.booking(t, model.BookingStatusCompleted)
		_, err := env.svc.Create(ctx, env.client, &model.CreateReviewRequest{BookingID: b.ID, Rating: 5})
		require.NoError(t, err)
		_, err = env.svc.Create(ctx, env.client, &model.CreateReviewRequest{BookingID: b.ID, Rating: 1})
		requireCode(t, err, apperrors.CodeConflict)
	})
}

func TestListForProfessional(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	b := env.booking(t, model.BookingStatusCompleted)
	_, err := env.svc.Create(ctx, env.client, &model.CreateReviewRequest{BookingID: b.ID, Rating: 5})
	require.NoError(t, err)

	reviews, total, err := env.svc.List(ctx, &model.ReviewFilters{
		ProfessionalID: env.pro.ID, Page: 1, PageSize: 10,
	})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, reviews, 1)
	assert.Equal(t, 5, reviews[0].Rating)
}
