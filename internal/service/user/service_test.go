package user

import (
	"context"
	"testing"

	"github.com/cmlabs-hris/kintai-backend-go/internal/domain/location"
	"github.com/cmlabs-hris/kintai-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/kintai-backend-go/internal/pkg/clock"
	"github.com/cmlabs-hris/kintai-backend-go/internal/repository/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func setup(t *testing.T) (user.UserService, user.UserRepository, location.LocationRepository) {
	t.Helper()
	store := memory.NewStore(nil)
	users := memory.NewUserRepository(store)
	locations := memory.NewLocationRepository(store)
	return NewUserService(users, locations), users, locations
}

func TestCreate_HashesPassword(t *testing.T) {
	svc, users, _ := setup(t)
	ctx := context.Background()

	resp, err := svc.Create(ctx, user.CreateUserRequest{Username: "tanaka", Password: "password123"})
	require.NoError(t, err)
	assert.Equal(t, user.RoleGeneral, resp.Role)
	assert.True(t, resp.IsActive)

	stored, err := users.GetByID(ctx, resp.ID)
	require.NoError(t, err)
	assert.NotEqual(t, "password123", stored.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("password123")))
}

func TestCreate_Errors(t *testing.T) {
	svc, _, _ := setup(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, user.CreateUserRequest{Username: "tanaka", Password: "password123"})
	require.NoError(t, err)

	_, err = svc.Create(ctx, user.CreateUserRequest{Username: "TANAKA", Password: "password123"})
	assert.ErrorIs(t, err, user.ErrUsernameExists)

	_, err = svc.Create(ctx, user.CreateUserRequest{Username: "x", Password: "short"})
	assert.Error(t, err)

	missing := "0190a8f0-0000-7000-8000-000000000000"
	_, err = svc.Create(ctx, user.CreateUserRequest{Username: "sato", Password: "password123", LocationID: &missing})
	assert.ErrorIs(t, err, location.ErrLocationNotFound)
}

func TestAssignLocation(t *testing.T) {
	svc, users, locations := setup(t)
	ctx := context.Background()

	u, err := svc.Create(ctx, user.CreateUserRequest{Username: "tanaka", Password: "password123"})
	require.NoError(t, err)
	l, err := locations.Create(ctx, location.Location{
		Name: "Tokyo", StartTime: clock.MustTimeOfDay("09:00"), EndTime: clock.MustTimeOfDay("18:00"),
	})
	require.NoError(t, err)

	require.NoError(t, svc.AssignLocation(ctx, user.AssignLocationRequest{UserID: u.ID, LocationID: &l.ID}))
	stored, err := users.GetByID(ctx, u.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.LocationID)
	assert.Equal(t, l.ID, *stored.LocationID)

	require.NoError(t, svc.AssignLocation(ctx, user.AssignLocationRequest{UserID: u.ID}))
	stored, err = users.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.LocationID)

	err = svc.AssignLocation(ctx, user.AssignLocationRequest{UserID: "missing", LocationID: &l.ID})
	assert.ErrorIs(t, err, user.ErrUserNotFound)
}

func TestList(t *testing.T) {
	svc, _, _ := setup(t)
	ctx := context.Background()

	for _, name := range []string{"sato", "aoki"} {
		_, err := svc.Create(ctx, user.CreateUserRequest{Username: name, Password: "password123"})
		require.NoError(t, err)
	}

	list, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "aoki", list[0].Username)
}
