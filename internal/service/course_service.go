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

// CourseService manages the course catalogue.
type CourseService struct {
	repo      collection[models.Course]
	validator *validator.Validate
	logger    *zap.Logger
	ids       importer.IDGenerator
	now       func() time.Time
}

// NewCourseService creates an instance of CourseService.
func NewCourseService(repo collection[models.Course], ids importer.IDGenerator, validate *validator.Validate, logger *zap.Logger) *CourseService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &CourseService{repo: repo, validator: validate, logger: logger, ids: defaultIDs(ids), now: time.Now}
}

// List returns courses matching filter ordered by code.
func (s *CourseService) List(ctx context.Context, filter models.CourseFilter) ([]models.Course, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list courses")
	}
	out := make([]models.Course, 0, len(all))
	for _, c := range all {
		if filter.Department != "" && c.Department != filter.Department {
			continue
		}
		if !matchesSearch(filter.Search, c.Title, c.Code, c.Description) {
			continue
		}
		out = append(out, c)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

// Get returns a course by ID.
func (s *CourseService) Get(ctx context.Context, id string) (*models.Course, error) {
	course, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, loadError(err, "course")
	}
	return course, nil
}

// Create adds a course whose id is its code.
func (s *CourseService) Create(ctx context.Context, req models.CourseRequest) (*models.Course, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid course payload")
	}
	code := strings.TrimSpace(req.Code)
	if err := s.ensureUniqueCode(ctx, code, ""); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	course := &models.Course{
		ID:          importer.Resolve("", code, importer.PrefixCourse, s.ids),
		Code:        code,
		Title:       strings.TrimSpace(req.Title),
		Description: strings.TrimSpace(req.Description),
		Credits:     req.Credits,
		Department:  req.Department,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Create(ctx, course); err != nil {
		return nil, duplicateOr(err, "course", "course code already exists")
	}
	return course, nil
}

// Update modifies an existing course. The id is kept even when the code changes.
func (s *CourseService) Update(ctx context.Context, id string, req models.CourseRequest) (*models.Course, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid course payload")
	}
	course, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	code := strings.TrimSpace(req.Code)
	if code != course.Code {
		if err := s.ensureUniqueCode(ctx, code, id); err != nil {
			return nil, err
		}
	}

	course.Code = code
	course.Title = strings.TrimSpace(req.Title)
	course.Description = strings.TrimSpace(req.Description)
	course.Credits = req.Credits
	course.Department = req.Department
	course.UpdatedAt = s.now().UTC()
	if err := s.repo.Update(ctx, course); err != nil {
		return nil, duplicateOr(err, "course", "course code already exists")
	}
	return course, nil
}

// Delete removes a course.
func (s *CourseService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return writeError(err, "delete", "course")
	}
	return nil
}

func (s *CourseService) ensureUniqueCode(ctx context.Context, code, exceptID string) error {
	all, err := s.repo.List(ctx)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check course code")
	}
	for _, c := range all {
		if c.ID == exceptID {
			continue
		}
		if c.Code == code || c.ID == code {
			return appErrors.Clone(appErrors.ErrConflict, "course code already exists")
		}
	}
	return nil
}
