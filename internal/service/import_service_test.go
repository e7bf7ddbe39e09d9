package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/educentral-admin-api/internal/importer"
	"github.com/noah-isme/educentral-admin-api/internal/models"
	"github.com/noah-isme/educentral-admin-api/internal/repository"
	appErrors "github.com/noah-isme/educentral-admin-api/pkg/errors"
)

func newImportService(stores *repository.Stores, policy importer.Policy, cache *CacheService) *ImportService {
	pipeline := importer.NewPipeline(importer.NewNormalizer(fixedClock), testIDs(), policy)
	svc := NewImportService(ImportServiceParams{
		Users:       stores.Users,
		Courses:     stores.Courses,
		Events:      stores.Events,
		Pipeline:    pipeline,
		Metrics:     NewMetricsService(),
		Cache:       cache,
		MaxFileSize: 1024,
	})
	svc.now = fixedClock
	return svc
}

func TestImportCoursesSkipsExistingCodes(t *testing.T) {
	stores := seededStores()
	svc := newImportService(stores, importer.Lenient, nil)

	rows := RowsFromMaps([]map[string]any{
		{"code": "CSE101", "title": "Intro Again", "credits": 3},
		{"code": "CSE305", "title": "Operating Systems", "credits": "4"},
	})
	report, err := svc.ImportCourses(context.Background(), rows, importer.CourseDefaults{Department: "Computer Science"})
	require.NoError(t, err)
	assert.Equal(t, 2, report.Total)
	assert.Equal(t, 1, report.Added)
	assert.Equal(t, 1, report.Skipped)
	assert.Equal(t, report.Total, report.Added+report.Skipped)

	all, err := stores.Courses.List(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 4)
	added := all[3]
	assert.Equal(t, "CSE305", added.ID)
	assert.Equal(t, 4.0, added.Credits)
	assert.Equal(t, "Computer Science", added.Department)
	assert.Equal(t, fixedNow, added.CreatedAt)
}

func TestImportUsersStrictSkipsIncompleteRows(t *testing.T) {
	stores := seededStores()
	svc := newImportService(stores, importer.Strict, nil)

	rows := RowsFromMaps([]map[string]any{
		{"name": "Erin", "email": "erin@example.com"},
		{"name": "No Email"},
		{"id": "S001", "name": "Alice", "email": "alice@example.com"},
	})
	report, err := svc.ImportUsers(context.Background(), rows, importer.UserDefaults{Role: models.RoleStudent})
	require.NoError(t, err)
	assert.Equal(t, 3, report.Total)
	assert.Equal(t, 1, report.Added)
	assert.Equal(t, 2, report.Skipped)

	all, _ := stores.Users.List(context.Background())
	assert.Len(t, all, 7)
}

func TestImportEventsInvalidatesDashboard(t *testing.T) {
	stores := seededStores()
	local := repository.NewLocalCache(nil)
	cache := NewCacheService(local, nil, time.Minute, nil, true)
	require.NoError(t, cache.Set(context.Background(), cacheKeyDashboard, models.DashboardSummary{Events: 3}, 0))
	svc := newImportService(stores, importer.Lenient, cache)

	report, err := svc.ImportEvents(context.Background(), RowsFromMaps([]map[string]any{
		{"title": "Hackathon", "date": "2024-11-02"},
	}), importer.EventDefaults{Category: "Academic"})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Added)

	var cached models.DashboardSummary
	hit, err := cache.Get(context.Background(), cacheKeyDashboard, &cached)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestImportEmptyBatchReportsNothingAdded(t *testing.T) {
	stores := seededStores()
	svc := newImportService(stores, importer.Lenient, nil)
	before, err := stores.Users.List(context.Background())
	require.NoError(t, err)

	report, err := svc.ImportUsers(context.Background(), nil, importer.UserDefaults{Role: models.RoleStudent})
	require.NoError(t, err)
	assert.Equal(t, 0, report.Total)
	assert.Equal(t, 0, report.Added)
	assert.Equal(t, 0, report.Skipped)
	assert.Empty(t, report.SkippedRows)
	assert.Equal(t, "0 users added.", report.Message)

	after, err := stores.Users.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, after, len(before))
}

func TestImportParse(t *testing.T) {
	svc := newImportService(seededStores(), importer.Lenient, nil)

	rows, err := svc.Parse("courses.csv", strings.NewReader("code,title\nCSE900,Thesis\n"), 24)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "CSE900", rows[0].String("code"))

	_, err = svc.Parse("courses.txt", strings.NewReader("x"), 1)
	assert.True(t, errors.Is(err, appErrors.ErrUnsupportedFile))

	_, err = svc.Parse("courses.csv", strings.NewReader("x"), 4096)
	assert.True(t, errors.Is(err, appErrors.ErrPayloadTooLarge))
}
