package service

import (
	"context"
	"database/sql"
	"errors"
	"math"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/educentral-admin-api/internal/importer"
	"github.com/noah-isme/educentral-admin-api/internal/models"
	appErrors "github.com/noah-isme/educentral-admin-api/pkg/errors"
)

const monthLayout = "2006-01"

type attendanceStore interface {
	List(ctx context.Context) ([]models.FacultyAttendance, error)
	Upsert(ctx context.Context, record *models.FacultyAttendance) error
}

// AttendanceService records faculty attendance and builds monthly summaries.
type AttendanceService struct {
	repo      attendanceStore
	users     collection[models.UserRecord]
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAttendanceService creates an instance of AttendanceService.
func NewAttendanceService(repo attendanceStore, users collection[models.UserRecord], validate *validator.Validate, logger *zap.Logger) *AttendanceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &AttendanceService{repo: repo, users: users, validator: validate, logger: logger}
}

// Record stores or overwrites one faculty day. Hours only count on present days.
func (s *AttendanceService) Record(ctx context.Context, in models.AttendanceInput) (*models.FacultyAttendance, error) {
	if err := s.validator.Struct(in); err != nil {
		return nil, validationError(err, "invalid attendance payload")
	}
	faculty, err := s.users.FindByID(ctx, in.FacultyID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, loadError(err, "faculty")
	}
	if err != nil || faculty.Role != models.RoleFaculty {
		return nil, appErrors.Clone(appErrors.ErrValidation, "faculty "+in.FacultyID+" does not exist")
	}

	d := in.Date.UTC()
	record := &models.FacultyAttendance{
		FacultyID: in.FacultyID,
		Date:      time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC),
		Status:    in.Status,
	}
	if in.Status == models.AttendancePresent {
		record.HoursTaught = in.HoursTaught
	}
	if err := s.repo.Upsert(ctx, record); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record attendance")
	}
	return record, nil
}

// Summary aggregates one faculty member's month given as YYYY-MM.
func (s *AttendanceService) Summary(ctx context.Context, facultyID, month string) (*models.FacultyAttendanceSummary, error) {
	start, err := time.Parse(monthLayout, month)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "month must use the YYYY-MM format")
	}
	records, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list attendance")
	}

	summary := &models.FacultyAttendanceSummary{
		FacultyID:   facultyID,
		FacultyName: importer.FallbackText,
		Department:  importer.FallbackText,
		Month:       start.Format(monthLayout),
		Records:     []models.FacultyAttendance{},
	}
	faculty, err := s.users.FindByID(ctx, facultyID)
	switch {
	case err == nil:
		summary.FacultyName = faculty.Name
		summary.Department = firstNonEmpty(faculty.Department, importer.FallbackText)
	case !errors.Is(err, sql.ErrNoRows):
		return nil, loadError(err, "faculty")
	}

	end := start.AddDate(0, 1, 0)
	var hours float64
	for _, r := range records {
		if r.FacultyID != facultyID || r.Date.Before(start) || !r.Date.Before(end) {
			continue
		}
		summary.Records = append(summary.Records, r)
		switch r.Status {
		case models.AttendancePresent:
			summary.PresentDays++
			hours += r.HoursTaught
		case models.AttendanceAbsent:
			summary.AbsentDays++
		case models.AttendanceLeave:
			summary.LeaveDays++
		}
	}
	sort.SliceStable(summary.Records, func(i, j int) bool { return summary.Records[i].Date.Before(summary.Records[j].Date) })
	summary.TotalDays = len(summary.Records)
	if summary.PresentDays > 0 {
		summary.AvgHoursTaught = math.Round(hours/float64(summary.PresentDays)*100) / 100
	}
	return summary, nil
}

// Summaries returns the month summary of every faculty member.
func (s *AttendanceService) Summaries(ctx context.Context, month string) ([]models.FacultyAttendanceSummary, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list faculty")
	}
	out := make([]models.FacultyAttendanceSummary, 0)
	for _, u := range users {
		if u.Role != models.RoleFaculty {
			continue
		}
		summary, err := s.Summary(ctx, u.ID, month)
		if err != nil {
			return nil, err
		}
		out = append(out, *summary)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].FacultyID < out[j].FacultyID })
	return out, nil
}
