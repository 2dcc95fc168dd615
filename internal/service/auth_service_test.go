package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/bureauplan/bureauplan-api/internal/models"
	"github.com/bureauplan/bureauplan-api/pkg/config"
	appErrors "github.com/bureauplan/bureauplan-api/pkg/errors"
)

type stubUsers struct {
	user      *models.User
	lastLogin time.Time
}

func (s *stubUsers) FindByEmail(_ context.Context, email string) (*models.User, error) {
	if s.user == nil || s.user.Email != email {
		return nil, sql.ErrNoRows
	}
	return s.user, nil
}

func (s *stubUsers) UpdateLastLogin(_ context.Context, _ string, at time.Time) error {
	s.lastLogin = at
	return nil
}

func testUser(t *testing.T, password string) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return &models.User{
		ID:           "u1",
		Email:        "planner@example.com",
		FullName:     "Planner One",
		Role:         "editor",
		PasswordHash: string(hash),
		Active:       true,
	}
}

func TestLoginAndValidateToken(t *testing.T) {
	users := &stubUsers{user: testUser(t, "correct horse")}
	svc := NewAuthService(users, config.JWTConfig{Secret: "test-secret", Expiration: time.Hour, Issuer: "bureauplan-api"}, nil)

	resp, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "planner@example.com",
		Password: "correct horse",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, int64(3600), resp.ExpiresIn)
	assert.Equal(t, "u1", resp.User.ID)
	assert.False(t, users.lastLogin.IsZero())

	claims, err := svc.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, "editor", claims.Role)
	assert.Equal(t, "bureauplan-api", claims.Issuer)
}

func TestLoginWrongPassword(t *testing.T) {
	svc := NewAuthService(&stubUsers{user: testUser(t, "correct horse")}, config.JWTConfig{Secret: "s"}, nil)
	_, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "planner@example.com",
		Password: "wrong password",
	})
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestLoginUnknownEmail(t *testing.T) {
	svc := NewAuthService(&stubUsers{}, config.JWTConfig{Secret: "s"}, nil)
	_, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "nobody@example.com",
		Password: "irrelevant",
	})
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestLoginInactiveUser(t *testing.T) {
	user := testUser(t, "correct horse")
	user.Active = false
	svc := NewAuthService(&stubUsers{user: user}, config.JWTConfig{Secret: "s"}, nil)
	_, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "planner@example.com",
		Password: "correct horse",
	})
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestValidateTokenRejectsTampered(t *testing.T) {
	svc := NewAuthService(&stubUsers{user: testUser(t, "correct horse")}, config.JWTConfig{Secret: "secret-a", Expiration: time.Hour}, nil)
	other := NewAuthService(&stubUsers{}, config.JWTConfig{Secret: "secret-b", Expiration: time.Hour}, nil)

	resp, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "planner@example.com",
		Password: "correct horse",
	})
	require.NoError(t, err)

	_, err = other.ValidateToken(resp.AccessToken)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}

func TestValidateTokenExpired(t *testing.T) {
	users := &stubUsers{user: testUser(t, "correct horse")}
	svc := NewAuthService(users, config.JWTConfig{Secret: "s", Expiration: time.Minute}, nil)
	svc.now = func() time.Time { return time.Now().Add(-2 * time.Minute) }

	resp, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "planner@example.com",
		Password: "correct horse",
	})
	require.NoError(t, err)

	_, err = svc.ValidateToken(resp.AccessToken)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}
