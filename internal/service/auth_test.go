package service

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/Rrens/estate-chat/internal/domain"
	"github.com/Rrens/estate-chat/internal/repository/sqlite"
	"github.com/Rrens/estate-chat/internal/security"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newAuthService(t *testing.T) (*AuthService, *security.JWTManager) {
	t.Helper()
	db, err := sqlite.Open(context.Background(), filepath.Join(t.TempDir(), "chat.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	jwtManager := security.NewJWTManager("test-secret-key-with-32-chars!!", 15*time.Minute, time.Hour)
	svc := NewAuthService(sqlite.NewUserRepository(db), jwtManager)
	svc.bcryptCost = bcrypt.MinCost
	return svc, jwtManager
}

func TestAuthService_RegisterLoginRefresh(t *testing.T) {
	ctx := context.Background()
	svc, jwtManager := newAuthService(t)

	user, err := svc.Register(ctx, domain.UserCreate{Email: " Agent@Example.com ", Password: "correct horse"})
	require.NoError(t, err)
	assert.Equal(t, "agent@example.com", user.Email)
	assert.NotEqual(t, "correct horse", user.PasswordHash)

	_, err = svc.Register(ctx, domain.UserCreate{Email: "agent@example.com", Password: "another one"})
	assert.ErrorIs(t, err, ErrEmailTaken)

	tokens, err := svc.Login(ctx, domain.UserLogin{Email: "AGENT@example.com", Password: "correct horse"})
	require.NoError(t, err)

	claims, err := jwtManager.ValidateAccessToken(tokens.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)

	refreshed, err := svc.Refresh(ctx, tokens.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, refreshed.AccessToken)

	got, err := svc.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.Email, got.Email)
}

func TestAuthService_InvalidCredentials(t *testing.T) {
	ctx := context.Background()
	svc, _ := newAuthService(t)

	_, err := svc.Register(ctx, domain.UserCreate{Email: "agent@example.com", Password: "correct horse"})
	require.NoError(t, err)

	_, err = svc.Login(ctx, domain.UserLogin{Email: "agent@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, domain.UserLogin{Email: "nobody@example.com", Password: "correct horse"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Refresh(ctx, "garbage")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}
