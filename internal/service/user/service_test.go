package user

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/servipro/marketplace-api/internal/model"
	"github.com/servipro/marketplace-api/internal/repository/memory"
	apperrors "github.com/servipro/marketplace-api/pkg/errors"
)

func newTestService(t *testing.T) (*Service, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	return NewService(store.Users()), store
}

func createProfessional(t *testing.T, store *memory.Store, email, city string, profession model.ServiceCategory) *model.User {
	t.Helper()
	ctx := context.Background()
	pro := &model.User{Email: email, Role: model.UserRoleProfessional, City: city}
	require.NoError(t, store.Users().Create(ctx, pro))
	require.NoError(t, store.Users().CreateProfile(ctx, &model.ProfessionalProfile{
		UserID: pro.ID, CompanyName: email, Profession: profession,
	}))
	return pro
}

func TestUpdateAppliesOnlySetFields(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	u := &model.User{Email: "claire@example.com", Role: model.UserRoleClient, FirstName: "Claire", City: "Lyon"}
	require.NoError(t, store.Users().Create(ctx, u))

	phone := "0601020304"
	updated, err := svc.Update(ctx, u, &model.UpdateUserRequest{Phone: &phone})
	require.NoError(t, err)
	assert.Equal(t, "0601020304", updated.Phone)
	assert.Equal(t, "Claire", updated.FirstName)
	assert.Equal(t, "Lyon", updated.City)
}

func TestUpdateProfessionalProfile(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	pro := createProfessional(t, store, "pro@example.com", "Paris", model.CategoryElectricity)

	bio := "20 years of experience"
	images := []string{"https://cdn.example.com/1.jpg"}
	updated, err := svc.Update(ctx, pro, &model.UpdateUserRequest{Bio: &bio, Images: &images})
	require.NoError(t, err)
	require.NotNil(t, updated.Profile)
	assert.Equal(t, bio, updated.Profile.Bio)
	require.Len(t, updated.Profile.Images, 1)
}

func TestDeactivate(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	u := &model.User{Email: "claire@example.com", Role: model.UserRoleClient}
	require.NoError(t, store.Users().Create(ctx, u))

	require.NoError(t, svc.Deactivate(ctx, u.ID))

	got, err := svc.Get(ctx, u.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)
}

func TestListProfessionals(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	createProfessional(t, store, "plumber@example.com", "Lyon", model.CategoryPlumbing)
	createProfessional(t, store, "electrician@example.com", "Paris", model.CategoryElectricity)

	// A client never shows up in the directory.
	client := &model.User{Email: "client@example.com", Role: model.UserRoleClient, City: "Lyon"}
	require.NoError(t, store.Users().Create(ctx, client))

	all, total, err := svc.ListProfessionals(ctx, &model.ProfessionalFilters{Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, all, 2)

	plumbers, total, err := svc.ListProfessionals(ctx, &model.ProfessionalFilters{
		Profession: model.CategoryPlumbing, Page: 1, PageSize: 10,
	})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, plumbers, 1)
	assert.Equal(t, "plumber@example.com", plumbers[0].Email)

	_, _, err = svc.ListProfessionals(ctx, &model.ProfessionalFilters{Profession: "astrology"})
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeBadRequest, appErr.Code)
}
