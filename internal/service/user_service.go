package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/educentral-admin-api/internal/importer"
	"github.com/noah-isme/educentral-admin-api/internal/models"
	appErrors "github.com/noah-isme/educentral-admin-api/pkg/errors"
)

// UserService manages the student and faculty directory.
type UserService struct {
	repo      collection[models.UserRecord]
	validator *validator.Validate
	logger    *zap.Logger
	ids       importer.IDGenerator
	now       func() time.Time
}

// NewUserService creates an instance of UserService.
func NewUserService(repo collection[models.UserRecord], ids importer.IDGenerator, validate *validator.Validate, logger *zap.Logger) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &UserService{repo: repo, validator: validate, logger: logger, ids: defaultIDs(ids), now: time.Now}
}

// List returns users matching filter ordered by id.
func (s *UserService) List(ctx context.Context, filter models.UserFilter) ([]models.UserRecord, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list users")
	}
	out := make([]models.UserRecord, 0, len(all))
	for _, u := range all {
		if filter.Role != "" && u.Role != filter.Role {
			continue
		}
		if !matchesSearch(filter.Search, u.Name, u.Email, u.ID) {
			continue
		}
		out = append(out, u)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Get returns a user by ID.
func (s *UserService) Get(ctx context.Context, id string) (*models.UserRecord, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, loadError(err, "user")
	}
	return user, nil
}

// GetStudent returns the user only when it is a student.
func (s *UserService) GetStudent(ctx context.Context, id string) (*models.UserRecord, error) {
	return lookupStudent(ctx, s.repo, id)
}

// Create adds a user. Students default to the first field, batch and section;
// faculty default to the first department.
func (s *UserService) Create(ctx context.Context, req models.UserRequest) (*models.UserRecord, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid user payload")
	}
	if err := s.ensureUniqueEmail(ctx, req.Email, ""); err != nil {
		return nil, err
	}

	role := req.Role
	if role == "" {
		role = models.RoleStudent
	}
	now := s.now().UTC()
	user := &models.UserRecord{
		ID:        s.ids.Next(role.IDPrefix()),
		Name:      strings.TrimSpace(req.Name),
		Email:     strings.TrimSpace(req.Email),
		Role:      role,
		CreatedAt: now,
		UpdatedAt: now,
	}
	applyRoleFields(user, req)

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create user")
	}
	s.logger.Info("user created", zap.String("id", user.ID), zap.String("role", string(user.Role)))
	return user, nil
}

// Update modifies an existing user. The role cannot change.
func (s *UserService) Update(ctx context.Context, id string, req models.UserRequest) (*models.UserRecord, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid user payload")
	}
	user, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !strings.EqualFold(user.Email, req.Email) {
		if err := s.ensureUniqueEmail(ctx, req.Email, id); err != nil {
			return nil, err
		}
	}

	user.Name = strings.TrimSpace(req.Name)
	user.Email = strings.TrimSpace(req.Email)
	req.Field = firstNonEmpty(req.Field, user.Field)
	req.Batch = firstNonEmpty(req.Batch, user.Batch)
	req.Section = firstNonEmpty(req.Section, user.Section)
	req.Department = firstNonEmpty(req.Department, user.Department)
	applyRoleFields(user, req)
	user.UpdatedAt = s.now().UTC()

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, writeError(err, "update", "user")
	}
	return user, nil
}

// Delete removes a user.
func (s *UserService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return writeError(err, "delete", "user")
	}
	return nil
}

func (s *UserService) ensureUniqueEmail(ctx context.Context, email, exceptID string) error {
	all, err := s.repo.List(ctx)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check email uniqueness")
	}
	for _, u := range all {
		if u.ID != exceptID && strings.EqualFold(u.Email, strings.TrimSpace(email)) {
			return appErrors.Clone(appErrors.ErrConflict, "email already exists")
		}
	}
	return nil
}

func applyRoleFields(user *models.UserRecord, req models.UserRequest) {
	if user.Role == models.RoleFaculty {
		user.Department = firstNonEmpty(req.Department, models.Departments[0])
		user.Field, user.Batch, user.Section = "", "", ""
		return
	}
	user.Field = firstNonEmpty(req.Field, models.Fields[0])
	user.Batch = firstNonEmpty(req.Batch, models.Batches[0])
	user.Section = firstNonEmpty(req.Section, models.Sections[0])
	user.Department = ""
}
