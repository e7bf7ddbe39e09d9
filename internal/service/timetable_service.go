package service

import (
	"context"

	"github.com/noah-isme/educentral-admin-api/internal/models"
	appErrors "github.com/noah-isme/educentral-admin-api/pkg/errors"
)

type timetableSource interface {
	StudentTimetable(ctx context.Context) ([]models.TimetableEntry, error)
	FacultyTimetable(ctx context.Context) ([]models.FacultyTimetableEntry, error)
	CourseAttendance(ctx context.Context) ([]models.CourseAttendance, error)
}

// TimetableService filters the academic schedule views.
type TimetableService struct {
	source timetableSource
}

// NewTimetableService constructs the timetable service.
func NewTimetableService(source timetableSource) *TimetableService {
	return &TimetableService{source: source}
}

// Students returns the class entries of the cohorts matching filter.
func (s *TimetableService) Students(ctx context.Context, filter models.CohortFilter) ([]models.TimetableEntry, error) {
	entries, err := s.source.StudentTimetable(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timetable")
	}
	out := make([]models.TimetableEntry, 0, len(entries))
	for _, e := range entries {
		if filter.Matches(e.Field, e.Batch, e.Section) {
			out = append(out, e)
		}
	}
	return out, nil
}

// Faculty returns the classes taught by facultyID, or every class when empty.
func (s *TimetableService) Faculty(ctx context.Context, facultyID string) ([]models.FacultyTimetableEntry, error) {
	entries, err := s.source.FacultyTimetable(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load faculty timetable")
	}
	out := make([]models.FacultyTimetableEntry, 0, len(entries))
	for _, e := range entries {
		if facultyID == "" || e.FacultyID == facultyID {
			out = append(out, e)
		}
	}
	return out, nil
}

// CourseAttendance returns the attendance aggregates of the matching cohorts.
func (s *TimetableService) CourseAttendance(ctx context.Context, filter models.CohortFilter) ([]models.CourseAttendance, error) {
	rows, err := s.source.CourseAttendance(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course attendance")
	}
	out := make([]models.CourseAttendance, 0, len(rows))
	for _, r := range rows {
		if filter.Matches(r.Field, r.Batch, r.Section) {
			out = append(out, r)
		}
	}
	return out, nil
}
