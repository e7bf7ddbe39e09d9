package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/educentral-admin-api/internal/models"
	appErrors "github.com/noah-isme/educentral-admin-api/pkg/errors"
)

func newCourseService() *CourseService {
	svc := NewCourseService(seededStores().Courses, testIDs(), nil, nil)
	svc.now = fixedClock
	return svc
}

func TestCourseServiceCreateUsesCodeAsID(t *testing.T) {
	svc := newCourseService()

	course, err := svc.Create(context.Background(), models.CourseRequest{Code: " CSE210 ", Title: "Data Structures", Credits: 4, Department: "Computer Science"})
	require.NoError(t, err)
	assert.Equal(t, "CSE210", course.ID)
	assert.Equal(t, "CSE210", course.Code)

	_, err = svc.Create(context.Background(), models.CourseRequest{Code: "CSE210", Title: "Dup", Credits: 1, Department: "Physics"})
	assert.True(t, errors.Is(err, appErrors.ErrConflict))
}

func TestCourseServiceUpdateKeepsID(t *testing.T) {
	svc := newCourseService()

	course, err := svc.Update(context.Background(), "MAT202", models.CourseRequest{Code: "MAT203", Title: "Linear Algebra II", Credits: 4, Department: "Mathematics"})
	require.NoError(t, err)
	assert.Equal(t, "MAT202", course.ID)
	assert.Equal(t, "MAT203", course.Code)

	_, err = svc.Update(context.Background(), "MAT202", models.CourseRequest{Code: "PHY105", Title: "Clash", Credits: 3, Department: "Physics"})
	assert.True(t, errors.Is(err, appErrors.ErrConflict))
}

func TestCourseServiceListFilters(t *testing.T) {
	svc := newCourseService()

	courses, err := svc.List(context.Background(), models.CourseFilter{Department: "Physics"})
	require.NoError(t, err)
	require.Len(t, courses, 1)
	assert.Equal(t, "PHY105", courses[0].Code)

	courses, err = svc.List(context.Background(), models.CourseFilter{Search: "python"})
	require.NoError(t, err)
	require.Len(t, courses, 1)
	assert.Equal(t, "CSE101", courses[0].Code)
}

func TestEventServiceCreateValidatesCategory(t *testing.T) {
	svc := NewEventService(seededStores().Events, testIDs(), nil, nil)
	svc.now = fixedClock
	req := models.EventRequest{Title: "Robotics Day", Date: time.Date(2024, time.December, 1, 0, 0, 0, 0, time.UTC), Location: "Lab 2", Category: "Workshop"}

	event, err := svc.Create(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(event.ID, "EVT"))
	assert.Equal(t, fixedNow, event.CreatedAt)

	req.Category = "Picnic"
	_, err = svc.Create(context.Background(), req)
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
}

func TestEventServiceListNewestFirst(t *testing.T) {
	svc := NewEventService(seededStores().Events, testIDs(), nil, nil)

	events, err := svc.List(context.Background(), models.EventFilter{})
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, "EVT003", events[0].ID)

	cultural, err := svc.List(context.Background(), models.EventFilter{Category: "Cultural"})
	require.NoError(t, err)
	require.Len(t, cultural, 1)
}
