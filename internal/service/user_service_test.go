package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/educentral-admin-api/internal/models"
	appErrors "github.com/noah-isme/educentral-admin-api/pkg/errors"
)

func newUserService() *UserService {
	svc := NewUserService(seededStores().Users, testIDs(), nil, nil)
	svc.now = fixedClock
	return svc
}

func TestUserServiceListFilters(t *testing.T) {
	svc := newUserService()

	faculty, err := svc.List(context.Background(), models.UserFilter{Role: models.RoleFaculty})
	require.NoError(t, err)
	require.Len(t, faculty, 3)
	assert.Equal(t, "F001", faculty[0].ID)

	found, err := svc.List(context.Background(), models.UserFilter{Search: "ALICE"})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "S001", found[0].ID)
}

func TestUserServiceCreateAppliesDefaults(t *testing.T) {
	svc := newUserService()

	student, err := svc.Create(context.Background(), models.UserRequest{Name: " Dana ", Email: "dana@example.com"})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(student.ID, "NEWS"))
	assert.Equal(t, "Dana", student.Name)
	assert.Equal(t, models.RoleStudent, student.Role)
	assert.Equal(t, models.Fields[0], student.Field)
	assert.Equal(t, models.Batches[0], student.Batch)
	assert.Equal(t, models.Sections[0], student.Section)
	assert.Empty(t, student.Department)

	faculty, err := svc.Create(context.Background(), models.UserRequest{Name: "Prof. X", Email: "x@example.com", Role: models.RoleFaculty})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(faculty.ID, "NEWF"))
	assert.Equal(t, models.Departments[0], faculty.Department)
	assert.Empty(t, faculty.Field)
}

func TestUserServiceCreateRejectsDuplicateEmail(t *testing.T) {
	svc := newUserService()

	_, err := svc.Create(context.Background(), models.UserRequest{Name: "Alice Again", Email: "ALICE@example.com"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrConflict))
}

func TestUserServiceCreateValidatesPayload(t *testing.T) {
	svc := newUserService()

	_, err := svc.Create(context.Background(), models.UserRequest{Name: "No Mail", Email: "not-an-email"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
}

func TestUserServiceUpdateKeepsRoleFields(t *testing.T) {
	svc := newUserService()

	updated, err := svc.Update(context.Background(), "S002", models.UserRequest{Name: "Bob W.", Email: "bob@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "Bob W.", updated.Name)
	assert.Equal(t, "Mechanical Engineering", updated.Field)
	assert.Equal(t, "2022", updated.Batch)
	assert.Equal(t, "B", updated.Section)
	assert.Equal(t, fixedNow, updated.UpdatedAt)
}

func TestUserServiceGetStudentRejectsFaculty(t *testing.T) {
	svc := newUserService()

	_, err := svc.GetStudent(context.Background(), "F001")
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrInvalidStudent))

	student, err := svc.GetStudent(context.Background(), "S001")
	require.NoError(t, err)
	assert.Equal(t, "Alice Johnson", student.Name)
}

func TestUserServiceDeleteMissing(t *testing.T) {
	svc := newUserService()

	require.NoError(t, svc.Delete(context.Background(), "S003"))
	err := svc.Delete(context.Background(), "S003")
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
}
