package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/educentral-admin-api/internal/models"
	"github.com/noah-isme/educentral-admin-api/internal/repository"
	appErrors "github.com/noah-isme/educentral-admin-api/pkg/errors"
)

func newAttendanceService() *AttendanceService {
	stores := seededStores()
	return NewAttendanceService(repository.NewMemoryStore(repository.AttendanceKey, nil), stores.Users, nil, nil)
}

func julyDay(d int) time.Time {
	return time.Date(2024, time.July, d, 0, 0, 0, 0, time.UTC)
}

func TestAttendanceServiceSummary(t *testing.T) {
	svc := newAttendanceService()
	ctx := context.Background()

	inputs := []models.AttendanceInput{
		{FacultyID: "F001", Date: julyDay(3), Status: models.AttendancePresent, HoursTaught: 3},
		{FacultyID: "F001", Date: julyDay(1), Status: models.AttendancePresent, HoursTaught: 4},
		{FacultyID: "F001", Date: julyDay(2), Status: models.AttendancePresent, HoursTaught: 4},
		{FacultyID: "F001", Date: julyDay(4), Status: models.AttendanceAbsent, HoursTaught: 5},
		{FacultyID: "F001", Date: julyDay(5), Status: models.AttendanceLeave},
		{FacultyID: "F002", Date: julyDay(1), Status: models.AttendancePresent, HoursTaught: 2},
		{FacultyID: "F001", Date: time.Date(2024, time.August, 1, 0, 0, 0, 0, time.UTC), Status: models.AttendancePresent, HoursTaught: 1},
	}
	for _, in := range inputs {
		_, err := svc.Record(ctx, in)
		require.NoError(t, err)
	}

	summary, err := svc.Summary(ctx, "F001", "2024-07")
	require.NoError(t, err)
	assert.Equal(t, "Dr. Eleanor Vance", summary.FacultyName)
	assert.Equal(t, "Physics", summary.Department)
	assert.Equal(t, 5, summary.TotalDays)
	assert.Equal(t, 3, summary.PresentDays)
	assert.Equal(t, 1, summary.AbsentDays)
	assert.Equal(t, 1, summary.LeaveDays)
	assert.Equal(t, 3.67, summary.AvgHoursTaught)
	require.Len(t, summary.Records, 5)
	assert.Equal(t, julyDay(1), summary.Records[0].Date)
	assert.Zero(t, summary.Records[3].HoursTaught)
}

func TestAttendanceServiceRecordOverwritesDay(t *testing.T) {
	svc := newAttendanceService()
	ctx := context.Background()

	_, err := svc.Record(ctx, models.AttendanceInput{FacultyID: "F003", Date: julyDay(8).Add(10 * time.Hour), Status: models.AttendancePresent, HoursTaught: 2})
	require.NoError(t, err)
	_, err = svc.Record(ctx, models.AttendanceInput{FacultyID: "F003", Date: julyDay(8), Status: models.AttendanceAbsent})
	require.NoError(t, err)

	summary, err := svc.Summary(ctx, "F003", "2024-07")
	require.NoError(t, err)
	assert.Equal(t, 1, summary.TotalDays)
	assert.Equal(t, 1, summary.AbsentDays)
	assert.Zero(t, summary.AvgHoursTaught)
}

func TestAttendanceServiceValidation(t *testing.T) {
	svc := newAttendanceService()
	ctx := context.Background()

	_, err := svc.Record(ctx, models.AttendanceInput{FacultyID: "S001", Date: julyDay(1), Status: models.AttendancePresent})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))

	_, err = svc.Summary(ctx, "F001", "July 2024")
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
}

func TestAttendanceServiceUnknownFacultyFallsBack(t *testing.T) {
	svc := newAttendanceService()

	summary, err := svc.Summary(context.Background(), "F999", "2024-07")
	require.NoError(t, err)
	assert.Equal(t, "N/A", summary.FacultyName)
	assert.Equal(t, "N/A", summary.Department)
	assert.Empty(t, summary.Records)
}

func TestAttendanceServiceSummaries(t *testing.T) {
	svc := newAttendanceService()

	all, err := svc.Summaries(context.Background(), "2024-07")
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "F001", all[0].FacultyID)
}
