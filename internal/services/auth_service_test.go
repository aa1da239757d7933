package services

import (
	"context"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/calisthenix/engine/internal/models"
	appErr "github.com/calisthenix/engine/pkg/errors"
)

var testSecret = []byte("test-secret")

func TestAuthService_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("short password is rejected", func(t *testing.T) {
		svc := NewAuthService(&mockUserRepository{}, testSecret)

		_, err := svc.Register(ctx, "a@b.io", "short", "Alex")
		require.True(t, appErr.IsCode(err, appErr.CodeInvalid))
	})

	t.Run("creates a member with hashed password", func(t *testing.T) {
		users := &mockUserRepository{}
		svc := NewAuthService(users, testSecret)

		users.On("Create", mock.Anything, mock.MatchedBy(func(u *models.User) bool {
			return u.Role == models.RoleMember &&
				u.ExperienceLevel == models.ExperienceBeginner &&
				u.PasswordHash != "hunter2secret"
		})).Return(nil).Once()

		u, err := svc.Register(ctx, "a@b.io", "hunter2secret", "Alex")
		require.NoError(t, err)
		require.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("hunter2secret")))
		users.AssertExpectations(t)
	})

	t.Run("duplicate email", func(t *testing.T) {
		users := &mockUserRepository{}
		svc := NewAuthService(users, testSecret)

		users.On("Create", mock.Anything, mock.Anything).
			Return(appErr.New(appErr.CodeAlreadyExists, "entity already exists")).Once()

		_, err := svc.Register(ctx, "a@b.io", "hunter2secret", "Alex")
		require.True(t, appErr.IsCode(err, appErr.CodeConflict))
	})
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()

	hash, err := bcrypt.GenerateFromPassword([]byte("hunter2secret"), bcrypt.MinCost)
	require.NoError(t, err)
	stored := &models.User{
		ID:           uuid.New(),
		Email:        "a@b.io",
		PasswordHash: string(hash),
		Name:         "Alex",
		Role:         models.RoleAdmin,
	}

	t.Run("token carries subject and role", func(t *testing.T) {
		users := &mockUserRepository{}
		svc := NewAuthService(users, testSecret)

		users.On("GetByEmail", mock.Anything, "a@b.io", mock.AnythingOfType("*models.User")).
			Return(nil, stored).Once()

		tokenString, u, err := svc.Login(ctx, "a@b.io", "hunter2secret")
		require.NoError(t, err)
		require.Equal(t, stored.ID, u.ID)

		parsed, err := jwt.Parse(tokenString, func(*jwt.Token) (any, error) { return testSecret, nil })
		require.NoError(t, err)
		claims := parsed.Claims.(jwt.MapClaims)
		require.Equal(t, stored.ID.String(), claims["sub"])
		require.Equal(t, string(models.RoleAdmin), claims["role"])
	})

	t.Run("wrong password", func(t *testing.T) {
		users := &mockUserRepository{}
		svc := NewAuthService(users, testSecret)

		users.On("GetByEmail", mock.Anything, "a@b.io", mock.AnythingOfType("*models.User")).
			Return(nil, stored).Once()

		_, _, err := svc.Login(ctx, "a@b.io", "nope")
		require.True(t, appErr.IsCode(err, appErr.CodeUnauthorized))
	})

	t.Run("unknown email", func(t *testing.T) {
		users := &mockUserRepository{}
		svc := NewAuthService(users, testSecret)

		users.On("GetByEmail", mock.Anything, "nobody@b.io", mock.AnythingOfType("*models.User")).
			Return(appErr.New(appErr.CodeNotFound, "user not found"), nil).Once()

		_, _, err := svc.Login(ctx, "nobody@b.io", "hunter2secret")
		require.True(t, appErr.IsCode(err, appErr.CodeUnauthorized))
	})
}

func TestAuthService_Profile(t *testing.T) {
	ctx := context.Background()

	t.Run("returns worker-maintained scores", func(t *testing.T) {
		users := &mockUserRepository{}
		svc := NewAuthService(users, testSecret)

		stored := &models.User{
			ID:              uuid.New(),
			Email:           "a@b.io",
			Name:            "Alex",
			PushScore:       12,
			PullScore:       30,
			LegsScore:       5,
			ExperienceLevel: models.ExperienceIntermediate,
			Role:            models.RoleMember,
		}
		users.On("GetByID", mock.Anything, stored.ID, mock.AnythingOfType("*models.User")).
			Return(nil, stored).Once()

		u, err := svc.Profile(ctx, stored.ID)
		require.NoError(t, err)
		require.Equal(t, 30, u.PullScore)
		require.Equal(t, models.ExperienceIntermediate, u.ExperienceLevel)
		users.AssertExpectations(t)
	})

	t.Run("unknown user", func(t *testing.T) {
		users := &mockUserRepository{}
		svc := NewAuthService(users, testSecret)

		id := uuid.New()
		users.On("GetByID", mock.Anything, id, mock.AnythingOfType("*models.User")).
			Return(appErr.New(appErr.CodeNotFound, "entity not found"), nil).Once()

		_, err := svc.Profile(ctx, id)
		require.True(t, appErr.IsCode(err, appErr.CodeNotFound))
	})
}
