package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/educentral-admin-api/internal/middleware"
	"github.com/noah-isme/educentral-admin-api/internal/models"
)

type fakeDashboardSrv struct {
	summary *models.DashboardSummary
	hit     bool
	err     error
}

func (f *fakeDashboardSrv) Summary(context.Context) (*models.DashboardSummary, bool, error) {
	return f.summary, f.hit, f.err
}

type fakeAnalyticsSrv struct {
	overview *models.AnalyticsOverview
	hit      bool
}

func (f *fakeAnalyticsSrv) Overview(context.Context) (*models.AnalyticsOverview, bool, error) {
	return f.overview, f.hit, nil
}

func TestDashboardHandlerReportsCacheHit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewDashboardHandler(&fakeDashboardSrv{summary: &models.DashboardSummary{Students: 12}, hit: true}, nil)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/dashboard", nil)

	handler.Summary(c)

	require.Equal(t, http.StatusOK, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.Equal(t, true, env.Meta["cache_hit"])
	var summary models.DashboardSummary
	decodeData(t, env, &summary)
	assert.Equal(t, 12, summary.Students)
}

func TestDashboardHandlerErrors(t *testing.T) {
	gin.SetMode(gin.TestMode)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	NewDashboardHandler(&fakeDashboardSrv{err: errors.New("boom")}, nil).Summary(c)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	rec = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/analytics", nil)
	NewDashboardHandler(nil, nil).Analytics(c)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestAnalyticsHandlerMeta(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewDashboardHandler(nil, &fakeAnalyticsSrv{overview: &models.AnalyticsOverview{}})

	router := gin.New()
	router.Use(middleware.WithResponseMeta())
	router.GET("/analytics", handler.Analytics)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/analytics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.Equal(t, false, env.Meta["cache_hit"])
	assert.Contains(t, env.Meta, "processing_time_ms")
}

func TestPaginateBounds(t *testing.T) {
	gin.SetMode(gin.TestMode)
	items := []int{1, 2, 3, 4, 5}

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/?page=3&page_size=2", nil)
	page, p := paginate(c, items)
	assert.Equal(t, []int{5}, page)
	assert.Equal(t, 5, p.TotalCount)

	c.Request = httptest.NewRequest(http.MethodGet, "/?page=9&page_size=500", nil)
	page, p = paginate(c, items)
	assert.Empty(t, page)
	assert.Equal(t, maxPageSize, p.PageSize)

	c.Request = httptest.NewRequest(http.MethodGet, "/?page=zero", nil)
	_, p = paginate(c, items)
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, defaultPageSize, p.PageSize)
}

func TestQueryListSplitsValues(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/?batch=2023,2024&batch=2021&batch=", nil)
	assert.Equal(t, []string{"2023", "2024", "2021"}, queryList(c, "batch"))
}
