package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/educentral-admin-api/internal/models"
	"github.com/noah-isme/educentral-admin-api/internal/service"
	appErrors "github.com/noah-isme/educentral-admin-api/pkg/errors"
	"github.com/noah-isme/educentral-admin-api/pkg/response"
)

// AttendanceHandler records faculty attendance and serves monthly summaries.
type AttendanceHandler struct {
	service *service.AttendanceService
	now     func() time.Time
}

// NewAttendanceHandler constructs the handler.
func NewAttendanceHandler(svc *service.AttendanceService) *AttendanceHandler {
	return &AttendanceHandler{service: svc, now: time.Now}
}

// Record godoc
// @Summary Record faculty attendance
// @Description Stores one day of attendance, replacing an earlier record for that day
// @Tags Attendance
// @Accept json
// @Produce json
// @Param payload body models.AttendanceInput true "Attendance payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /attendance/faculty [post]
func (h *AttendanceHandler) Record(c *gin.Context) {
	var req models.AttendanceInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	record, err := h.service.Record(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, record, nil)
}

// Summary godoc
// @Summary Faculty monthly attendance
// @Tags Attendance
// @Produce json
// @Param id path string true "Faculty ID"
// @Param month query string false "Month (YYYY-MM). Defaults to the current month"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /attendance/faculty/{id} [get]
func (h *AttendanceHandler) Summary(c *gin.Context) {
	summary, err := h.service.Summary(c.Request.Context(), c.Param("id"), h.month(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil)
}

// Summaries godoc
// @Summary Monthly attendance for every faculty member
// @Tags Attendance
// @Produce json
// @Param month query string false "Month (YYYY-MM). Defaults to the current month"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /attendance/faculty [get]
func (h *AttendanceHandler) Summaries(c *gin.Context) {
	summaries, err := h.service.Summaries(c.Request.Context(), h.month(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summaries, nil)
}

func (h *AttendanceHandler) month(c *gin.Context) string {
	if month := strings.TrimSpace(c.Query("month")); month != "" {
		return month
	}
	return h.now().UTC().Format("2006-01")
}
