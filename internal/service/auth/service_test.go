package auth

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/servipro/marketplace-api/internal/model"
	"github.com/servipro/marketplace-api/internal/repository/memory"
	"github.com/servipro/marketplace-api/pkg/auth"
	apperrors "github.com/servipro/marketplace-api/pkg/errors"
	"github.com/servipro/marketplace-api/pkg/logger"
)

func newTestService(t *testing.T) (*Service, *memory.Store, auth.TokenService) {
	t.Helper()
	store := memory.NewStore()
	log := logger.New(&logger.Config{Level: logger.ErrorLevel, Output: io.Discard})
	tokens := auth.NewTokenService(auth.Config{
		Secret:        "test-secret",
		RefreshSecret: "test-refresh-secret",
		Expiry:        time.Hour,
		RefreshExpiry: 24 * time.Hour,
	})
	return NewService(store.Users(), tokens, log), store, tokens
}

func clientRequest() *model.RegisterRequest {
	return &model.RegisterRequest{
		Email:     "claire@example.com",
		Password:  "supersecret",
		Role:      model.UserRoleClient,
		FirstName: "Claire",
		LastName:  "Martin",
	}
}

func proRequest() *model.RegisterRequest {
	return &model.RegisterRequest{
		Email:       "paul@example.com",
		Password:    "supersecret",
		Role:        model.UserRoleProfessional,
		FirstName:   "Paul",
		LastName:    "Durand",
		CompanyName: "Durand Plomberie",
		Profession:  "plumbing",
	}
}

func requireCode(t *testing.T, err error, code apperrors.ErrorCode) {
	t.Helper()
	appErr, ok := apperrors.As(err)
	require.True(t, ok, "expected AppError, got %v", err)
	assert.Equal(t, code, appErr.Code)
}

func TestRegisterClient(t *testing.T) {
	svc, _, tokens := newTestService(t)

	resp, err := svc.Register(context.Background(), clientRequest())
	require.NoError(t, err)
	require.NotNil(t, resp.User)
	assert.Equal(t, "claire@example.com", resp.User.Email)
	assert.Empty(t, resp.User.Password)
	assert.True(t, resp.User.IsActive)
	assert.Nil(t, resp.User.Profile)

	claims, err := tokens.ValidateAccessToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, claims.UserID)
	assert.Equal(t, "client", claims.Role)
}

func TestRegisterNormalizesEmail(t *testing.T) {
	svc, store, _ := newTestService(t)

	req := clientRequest()
	req.Email = "  Claire@Example.COM "
	resp, err := svc.Register(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "claire@example.com", resp.User.Email)

	_, err = store.Users().GetByEmail(context.Background(), "claire@example.com")
	require.NoError(t, err)
}

func TestRegisterProfessional(t *testing.T) {
	svc, store, _ := newTestService(t)

	resp, err := svc.Register(context.Background(), proRequest())
	require.NoError(t, err)
	require.NotNil(t, resp.User.Profile)
	assert.Equal(t, model.CategoryPlumbing, resp.User.Profile.Profession)

	profile, err := store.Users().GetProfile(context.Background(), resp.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "Durand Plomberie", profile.CompanyName)
}

func TestRegisterProfessionalValidation(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	req := proRequest()
	req.CompanyName = ""
	_, err := svc.Register(ctx, req)
	requireCode(t, err, apperrors.CodeBadRequest)

	req = proRequest()
	req.Profession = "carpentry"
	_, err = svc.Register(ctx, req)
	requireCode(t, err, apperrors.CodeBadRequest)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, clientRequest())
	require.NoError(t, err)

	_, err = svc.Register(ctx, clientRequest())
	requireCode(t, err, apperrors.CodeConflict)
}

func TestLogin(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, clientRequest())
	require.NoError(t, err)

	resp, err := svc.Login(ctx, &model.LoginRequest{Email: "claire@example.com", Password: "supersecret"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.NotEmpty(t, resp.RefreshToken)
}

func TestLoginFailures(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()

	registered, err := svc.Register(ctx, clientRequest())
	require.NoError(t, err)

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Login(ctx, &model.LoginRequest{Email: "claire@example.com", Password: "wrong"})
		requireCode(t, err, apperrors.CodeUnauthorized)
	})

	t.Run("unknown email", func(t *testing.T) {
		_, err := svc.Login(ctx, &model.LoginRequest{Email: "nobody@example.com", Password: "supersecret"})
		requireCode(t, err, apperrors.CodeUnauthorized)
	})

	t.Run("deactivated account", func(t *testing.T) {
		require.NoError(t, store.Users().Deactivate(ctx, registered.User.ID))
		_, err := svc.Login(ctx, &model.LoginRequest{Email: "claire@example.com", Password: "supersecret"})
		requireCode(t, err, apperrors.CodeUnauthorized)
	})
}

func TestRefresh(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	registered, err := svc.Register(ctx, clientRequest())
	require.NoError(t, err)

	refreshed, err := svc.Refresh(ctx, &model.RefreshRequest{RefreshToken: registered.RefreshToken})
	require.NoError(t, err)
	assert.Equal(t, registered.User.ID, refreshed.User.ID)

	_, err = svc.Refresh(ctx, &model.RefreshRequest{RefreshToken: "not-a-token"})
	requireCode(t, err, apperrors.CodeUnauthorized)
}
