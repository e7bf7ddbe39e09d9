package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/educentral-admin-api/internal/models"
	"github.com/noah-isme/educentral-admin-api/internal/service"
	"github.com/noah-isme/educentral-admin-api/pkg/response"
)

// TimetableHandler serves the academics views and the form option lists.
type TimetableHandler struct {
	service *service.TimetableService
}

// NewTimetableHandler constructs the handler.
func NewTimetableHandler(svc *service.TimetableService) *TimetableHandler {
	return &TimetableHandler{service: svc}
}

func cohortFilter(c *gin.Context) models.CohortFilter {
	return models.CohortFilter{
		Fields:   queryList(c, "field"),
		Batches:  queryList(c, "batch"),
		Sections: queryList(c, "section"),
	}
}

// Students godoc
// @Summary Student timetable
// @Tags Academics
// @Produce json
// @Param field query []string false "Fields" collectionFormat(multi)
// @Param batch query []string false "Batches" collectionFormat(multi)
// @Param section query []string false "Sections" collectionFormat(multi)
// @Success 200 {object} response.Envelope
// @Router /academics/timetable [get]
func (h *TimetableHandler) Students(c *gin.Context) {
	entries, err := h.service.Students(c.Request.Context(), cohortFilter(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entries, nil)
}

// Faculty godoc
// @Summary Faculty timetable
// @Tags Academics
// @Produce json
// @Param faculty_id query string false "Faculty ID"
// @Success 200 {object} response.Envelope
// @Router /academics/faculty-timetable [get]
func (h *TimetableHandler) Faculty(c *gin.Context) {
	entries, err := h.service.Faculty(c.Request.Context(), c.Query("faculty_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entries, nil)
}

// CourseAttendance godoc
// @Summary Course attendance aggregates
// @Tags Academics
// @Produce json
// @Param field query []string false "Fields" collectionFormat(multi)
// @Param batch query []string false "Batches" collectionFormat(multi)
// @Param section query []string false "Sections" collectionFormat(multi)
// @Success 200 {object} response.Envelope
// @Router /academics/course-attendance [get]
func (h *TimetableHandler) CourseAttendance(c *gin.Context) {
	rows, err := h.service.CourseAttendance(c.Request.Context(), cohortFilter(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows, nil)
}

// Options godoc
// @Summary Form option lists
// @Tags Academics
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /options [get]
func (h *TimetableHandler) Options(c *gin.Context) {
	response.JSON(c, http.StatusOK, models.AllOptions(), nil)
}
