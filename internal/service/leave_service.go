package service

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/educentral-admin-api/internal/importer"
	"github.com/noah-isme/educentral-admin-api/internal/models"
	appErrors "github.com/noah-isme/educentral-admin-api/pkg/errors"
)

// LeaveService manages faculty leave requests.
type LeaveService struct {
	repo      collection[models.LeaveRequest]
	users     collection[models.UserRecord]
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
	ids       importer.IDGenerator
	now       func() time.Time
}

// NewLeaveService creates an instance of LeaveService.
func NewLeaveService(repo collection[models.LeaveRequest], users collection[models.UserRecord], ids importer.IDGenerator, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *LeaveService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &LeaveService{repo: repo, users: users, cache: cache, validator: validate, logger: logger, ids: defaultIDs(ids), now: time.Now}
}

// List returns requests matching filter. Pending requests come first, newest
// request first; decided requests follow by start date.
func (s *LeaveService) List(ctx context.Context, filter models.LeaveFilter) ([]models.LeaveRequest, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list leave requests")
	}
	out := make([]models.LeaveRequest, 0, len(all))
	for _, l := range all {
		if filter.Status != "" && l.Status != filter.Status {
			continue
		}
		if filter.Department != "" && l.Department != filter.Department {
			continue
		}
		out = append(out, l)
	}
	sortLeaves(out)
	return out, nil
}

func sortLeaves(list []models.LeaveRequest) {
	sort.SliceStable(list, func(i, j int) bool {
		a, b := list[i], list[j]
		ap, bp := a.Status == models.LeavePending, b.Status == models.LeavePending
		switch {
		case ap && !bp:
			return true
		case !ap && bp:
			return false
		case ap && bp:
			return a.RequestedAt.After(b.RequestedAt)
		default:
			return a.StartDate.Before(b.StartDate)
		}
	})
}

// Get returns a leave request by ID.
func (s *LeaveService) Get(ctx context.Context, id string) (*models.LeaveRequest, error) {
	leave, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, loadError(err, "leave request")
	}
	return leave, nil
}

// Create files a pending request for an existing faculty member.
func (s *LeaveService) Create(ctx context.Context, req models.LeaveRequestInput) (*models.LeaveRequest, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid leave request payload")
	}
	if req.EndDate.Before(req.StartDate) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "end date must not be before start date")
	}
	faculty, err := s.users.FindByID(ctx, req.FacultyID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, loadError(err, "faculty")
	}
	if err != nil || faculty.Role != models.RoleFaculty {
		return nil, appErrors.Clone(appErrors.ErrValidation, "faculty "+req.FacultyID+" does not exist")
	}

	leave := &models.LeaveRequest{
		ID:          s.ids.Next(importer.PrefixLeave),
		FacultyID:   faculty.ID,
		FacultyName: faculty.Name,
		Department:  faculty.Department,
		StartDate:   req.StartDate.UTC(),
		EndDate:     req.EndDate.UTC(),
		Reason:      strings.TrimSpace(req.Reason),
		Status:      models.LeavePending,
		RequestedAt: s.now().UTC(),
	}
	if err := s.repo.Create(ctx, leave); err != nil {
		return nil, duplicateOr(err, "leave request", "leave request already exists")
	}
	s.invalidate(ctx)
	return leave, nil
}

// Approve moves a pending request to Approved.
func (s *LeaveService) Approve(ctx context.Context, id string) (*models.LeaveRequest, error) {
	return s.decide(ctx, id, models.LeaveApproved)
}

// Reject moves a pending request to Rejected.
func (s *LeaveService) Reject(ctx context.Context, id string) (*models.LeaveRequest, error) {
	return s.decide(ctx, id, models.LeaveRejected)
}

func (s *LeaveService) decide(ctx context.Context, id string, to models.LeaveStatus) (*models.LeaveRequest, error) {
	var from models.LeaveStatus
	leave, err := s.repo.Modify(ctx, id, func(l *models.LeaveRequest) error {
		from = l.Status
		return l.Transition(to, s.now())
	})
	switch {
	case err == nil:
	case errors.Is(err, models.ErrInvalidLeaveTransition):
		return nil, appErrors.Clone(appErrors.ErrInvalidTransition, "cannot move leave request from "+string(from)+" to "+string(to))
	case errors.Is(err, sql.ErrNoRows):
		return nil, appErrors.Clone(appErrors.ErrNotFound, "leave request not found")
	default:
		return nil, writeError(err, "update", "leave request")
	}
	s.invalidate(ctx)
	s.logger.Info("leave request decided", zap.String("id", leave.ID), zap.String("status", string(leave.Status)))
	return leave, nil
}

func (s *LeaveService) invalidate(ctx context.Context) {
	s.cache.InvalidateDashboard(ctx)
}
