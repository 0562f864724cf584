package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/raghad-alharthi/student-management-api/internal/models"
	appErrors "github.com/raghad-alharthi/student-management-api/pkg/errors"
)

type mockAuthRepo struct {
	users map[string]models.User
}

func (m *mockAuthRepo) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	for _, u := range m.users {
		if u.Username == username {
			u := u
			return &u, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockAuthRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	if u, ok := m.users[id]; ok {
		return &u, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockAuthRepo) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	u, ok := m.users[id]
	if !ok {
		return sql.ErrNoRows
	}
	u.PasswordHash = passwordHash
	m.users[id] = u
	return nil
}

func newAuthFixture(t *testing.T) (*AuthService, *mockAuthRepo) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("correct horse"), bcrypt.MinCost)
	require.NoError(t, err)

	repo := &mockAuthRepo{users: map[string]models.User{
		"user-1": {
			ID: "user-1", Username: "rhart", FirstName: "Raghad", LastName: "Alharthi",
			PasswordHash: string(hash), Role: models.RoleTeacher,
		},
	}}
	svc := NewAuthService(repo, nil, nil, AuthConfig{
		Secret:     "test-secret",
		Expiration: time.Hour,
		Issuer:     "student-management-api",
	})
	return svc, repo
}

func TestLoginSuccess(t *testing.T) {
	svc, _ := newAuthFixture(t)

	resp, err := svc.Login(context.Background(), models.LoginRequest{Username: "rhart", Password: "correct horse"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, int64(3600), resp.ExpiresIn)
	assert.Equal(t, "user-1", resp.User.ID)
	assert.Equal(t, models.RoleTeacher, resp.User.Role)
	assert.Equal(t, "Raghad Alharthi", resp.User.FullName)
}

func TestLoginWrongPassword(t *testing.T) {
	svc, _ := newAuthFixture(t)

	_, err := svc.Login(context.Background(), models.LoginRequest{Username: "rhart", Password: "wrong"})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrInvalidCredentials))
}

func TestLoginUnknownUser(t *testing.T) {
	svc, _ := newAuthFixture(t)

	_, err := svc.Login(context.Background(), models.LoginRequest{Username: "ghost", Password: "whatever"})
	require.Error(t, err)
	// Unknown user and bad password are indistinguishable to the caller.
	assert.True(t, appErrors.Is(err, appErrors.ErrInvalidCredentials))
}

func TestLoginMissingFields(t *testing.T) {
	svc, _ := newAuthFixture(t)

	_, err := svc.Login(context.Background(), models.LoginRequest{Username: "rhart"})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
}

func TestChangePassword(t *testing.T) {
	svc, repo := newAuthFixture(t)

	err := svc.ChangePassword(context.Background(), "user-1", models.ChangePasswordRequest{
		OldPassword:     "correct horse",
		NewPassword:     "battery staple",
		ConfirmPassword: "battery staple",
	})
	require.NoError(t, err)

	// The old password no longer logs in, the new one does.
	_, err = svc.Login(context.Background(), models.LoginRequest{Username: "rhart", Password: "correct horse"})
	require.Error(t, err)
	resp, err := svc.Login(context.Background(), models.LoginRequest{Username: "rhart", Password: "battery staple"})
	require.NoError(t, err)
	assert.Equal(t, "user-1", resp.User.ID)
	assert.NotEmpty(t, repo.users["user-1"].PasswordHash)
}

func TestChangePasswordMismatchedConfirmation(t *testing.T) {
	svc, _ := newAuthFixture(t)

	err := svc.ChangePassword(context.Background(), "user-1", models.ChangePasswordRequest{
		OldPassword:     "correct horse",
		NewPassword:     "battery staple",
		ConfirmPassword: "battery stable",
	})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
}

func TestChangePasswordWrongCurrent(t *testing.T) {
	svc, repo := newAuthFixture(t)
	before := repo.users["user-1"].PasswordHash

	err := svc.ChangePassword(context.Background(), "user-1", models.ChangePasswordRequest{
		OldPassword:     "not my password",
		NewPassword:     "battery staple",
		ConfirmPassword: "battery staple",
	})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrInvalidCredentials))
	assert.Equal(t, before, repo.users["user-1"].PasswordHash)
}

func TestChangePasswordTooShort(t *testing.T) {
	svc, _ := newAuthFixture(t)

	err := svc.ChangePassword(context.Background(), "user-1", models.ChangePasswordRequest{
		OldPassword:     "correct horse",
		NewPassword:     "short",
		ConfirmPassword: "short",
	})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
}

func TestValidateTokenRoundTrip(t *testing.T) {
	svc, _ := newAuthFixture(t)

	resp, err := svc.Login(context.Background(), models.LoginRequest{Username: "rhart", Password: "correct horse"})
	require.NoError(t, err)

	claims, err := svc.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, models.RoleTeacher, claims.Role)
}

func TestValidateTokenRejectsTampering(t *testing.T) {
	svc, _ := newAuthFixture(t)

	resp, err := svc.Login(context.Background(), models.LoginRequest{Username: "rhart", Password: "correct horse"})
	require.NoError(t, err)

	_, err = svc.ValidateToken(resp.AccessToken + "x")
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrUnauthorized))

	other := NewAuthService(&mockAuthRepo{}, nil, nil, AuthConfig{Secret: "different-secret", Expiration: time.Hour})
	_, err = other.ValidateToken(resp.AccessToken)
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrUnauthorized))
}
