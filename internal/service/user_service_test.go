package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/raghad-alharthi/student-management-api/internal/models"
	appErrors "github.com/raghad-alharthi/student-management-api/pkg/errors"
)

type mockFullUserRepo struct {
	users   map[string]models.User
	deleted []string
}

func (m *mockFullUserRepo) List(ctx context.Context, filter models.UserFilter) ([]models.User, int, error) {
	var out []models.User
	for _, u := range m.users {
		if filter.Role != nil && u.Role != *filter.Role {
			continue
		}
		out = append(out, u)
	}
	return out, len(out), nil
}

func (m *mockFullUserRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	if u, ok := m.users[id]; ok {
		return &u, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockFullUserRepo) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	for _, u := range m.users {
		if u.Username == username {
			u := u
			return &u, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockFullUserRepo) Create(ctx context.Context, user *models.User) error {
	if m.users == nil {
		m.users = make(map[string]models.User)
	}
	if user.ID == "" {
		user.ID = "new-user"
	}
	m.users[user.ID] = *user
	return nil
}

func (m *mockFullUserRepo) Delete(ctx context.Context, id string) error {
	m.deleted = append(m.deleted, id)
	delete(m.users, id)
	return nil
}

func TestCreateUserHashesPassword(t *testing.T) {
	repo := &mockFullUserRepo{}
	svc := NewUserService(repo, &mockClassRepo{}, nil, nil)

	user, err := svc.Create(context.Background(), CreateUserRequest{
		FirstName: "Aya",
		LastName:  "Nasser",
		Username:  "anasser",
		Password:  "s3cret-pass",
		Role:      "student",
	})
	require.NoError(t, err)
	assert.Equal(t, models.RoleStudent, user.Role)
	assert.NotEqual(t, "s3cret-pass", user.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("s3cret-pass")))
}

func TestCreateUserDuplicateUsername(t *testing.T) {
	repo := &mockFullUserRepo{users: map[string]models.User{
		"user-1": {ID: "user-1", Username: "anasser"},
	}}
	svc := NewUserService(repo, &mockClassRepo{}, nil, nil)

	_, err := svc.Create(context.Background(), CreateUserRequest{
		FirstName: "Aya",
		LastName:  "Nasser",
		Username:  "anasser",
		Password:  "s3cret-pass",
		Role:      "STUDENT",
	})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrConflict))
}

func TestCreateUserUnknownRole(t *testing.T) {
	svc := NewUserService(&mockFullUserRepo{}, &mockClassRepo{}, nil, nil)

	_, err := svc.Create(context.Background(), CreateUserRequest{
		FirstName: "Aya",
		LastName:  "Nasser",
		Username:  "anasser",
		Password:  "s3cret-pass",
		Role:      "PRINCIPAL",
	})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
}

func TestDeleteTeacherUnassignsClasses(t *testing.T) {
	repo := &mockFullUserRepo{users: map[string]models.User{
		"teacher-1": {ID: "teacher-1", Role: models.RoleTeacher},
	}}
	classes := &mockClassRepo{clearedCount: 2}
	svc := NewUserService(repo, classes, nil, nil)

	require.NoError(t, svc.Delete(context.Background(), "teacher-1"))
	assert.Equal(t, "teacher-1", classes.clearedTeacher)
	assert.Equal(t, []string{"teacher-1"}, repo.deleted)
}

func TestDeleteStudentSkipsUnassign(t *testing.T) {
	repo := &mockFullUserRepo{users: map[string]models.User{
		"student-1": {ID: "student-1", Role: models.RoleStudent},
	}}
	classes := &mockClassRepo{}
	svc := NewUserService(repo, classes, nil, nil)

	require.NoError(t, svc.Delete(context.Background(), "student-1"))
	assert.Empty(t, classes.clearedTeacher)
}

func TestDeleteMissingUser(t *testing.T) {
	svc := NewUserService(&mockFullUserRepo{}, &mockClassRepo{}, nil, nil)

	err := svc.Delete(context.Background(), "ghost")
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}
