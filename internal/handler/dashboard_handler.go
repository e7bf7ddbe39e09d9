package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/educentral-admin-api/internal/middleware"
	"github.com/noah-isme/educentral-admin-api/internal/models"
	appErrors "github.com/noah-isme/educentral-admin-api/pkg/errors"
	"github.com/noah-isme/educentral-admin-api/pkg/response"
)

type dashboardService interface {
	Summary(ctx context.Context) (*models.DashboardSummary, bool, error)
}

type analyticsService interface {
	Overview(ctx context.Context) (*models.AnalyticsOverview, bool, error)
}

// DashboardHandler serves the dashboard counters and analytics datasets.
type DashboardHandler struct {
	dashboard dashboardService
	analytics analyticsService
}

// NewDashboardHandler constructs the handler.
func NewDashboardHandler(dashboard dashboardService, analytics analyticsService) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard, analytics: analytics}
}

// Summary godoc
// @Summary Dashboard summary
// @Description Counters computed from the live collections
// @Tags Dashboard
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /dashboard [get]
func (h *DashboardHandler) Summary(c *gin.Context) {
	if h.dashboard == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	summary, cacheHit, err := h.dashboard.Summary(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cacheHit)
	response.JSON(c, http.StatusOK, summary, nil, middleware.ResponseMeta(c))
}

// Analytics godoc
// @Summary Analytics datasets
// @Description Enrollment, course popularity, financial and event attendance series
// @Tags Dashboard
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /analytics [get]
func (h *DashboardHandler) Analytics(c *gin.Context) {
	if h.analytics == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	overview, cacheHit, err := h.analytics.Overview(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cacheHit)
	response.JSON(c, http.StatusOK, overview, nil, middleware.ResponseMeta(c))
}
