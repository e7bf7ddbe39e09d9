package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/educentral-admin-api/internal/importer"
	"github.com/noah-isme/educentral-admin-api/internal/models"
	"github.com/noah-isme/educentral-admin-api/internal/service"
	appErrors "github.com/noah-isme/educentral-admin-api/pkg/errors"
	"github.com/noah-isme/educentral-admin-api/pkg/response"
)

// ImportDefaults are the upload level choices applied to rows leaving a field empty.
type ImportDefaults struct {
	Role       string `json:"role" form:"role"`
	Field      string `json:"field" form:"field"`
	Batch      string `json:"batch" form:"batch"`
	Section    string `json:"section" form:"section"`
	Department string `json:"department" form:"department"`
	Category   string `json:"category" form:"category"`
	Location   string `json:"location" form:"location"`
}

// ImportPayload posts rows as JSON instead of a spreadsheet upload.
type ImportPayload struct {
	ImportDefaults
	Rows []map[string]any `json:"rows"`
}

// ImportHandler accepts spreadsheet uploads and JSON row batches.
type ImportHandler struct {
	service *service.ImportService
}

// NewImportHandler constructs the handler.
func NewImportHandler(svc *service.ImportService) *ImportHandler {
	return &ImportHandler{service: svc}
}

// Import godoc
// @Summary Import records
// @Description Upload a .xlsx, .xls or .csv file (multipart field "file") or post JSON rows. Rows whose id, or course code, already exists are skipped.
// @Tags Imports
// @Accept multipart/form-data
// @Accept json
// @Produce json
// @Param entity path string true "users, courses or events"
// @Param file formData file false "Spreadsheet"
// @Param role formData string false "student or faculty (users only)"
// @Param payload body ImportPayload false "JSON rows"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 413 {object} response.Envelope
// @Failure 415 {object} response.Envelope
// @Router /imports/{entity} [post]
func (h *ImportHandler) Import(c *gin.Context) {
	entity := strings.ToLower(c.Param("entity"))
	if entity != "users" && entity != "courses" && entity != "events" {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "unknown import target"))
		return
	}

	rows, defaults, err := h.readRows(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	ctx := c.Request.Context()
	var report *importer.Report
	switch entity {
	case "users":
		role := models.UserRole(strings.ToLower(strings.TrimSpace(defaults.Role)))
		if role == "" {
			role = models.RoleStudent
		}
		if !role.Valid() {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "role must be student or faculty"))
			return
		}
		report, err = h.service.ImportUsers(ctx, rows, importer.UserDefaults{
			Role:       role,
			Field:      defaults.Field,
			Batch:      defaults.Batch,
			Section:    defaults.Section,
			Department: defaults.Department,
		})
	case "courses":
		report, err = h.service.ImportCourses(ctx, rows, importer.CourseDefaults{Department: defaults.Department})
	case "events":
		report, err = h.service.ImportEvents(ctx, rows, importer.EventDefaults{Category: defaults.Category, Location: defaults.Location})
	}
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report, nil)
}

// Preview godoc
// @Summary Preview spreadsheet
// @Description Parses an upload and returns the normalized header keyed rows without importing
// @Tags Imports
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Spreadsheet"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 415 {object} response.Envelope
// @Router /imports/preview [post]
func (h *ImportHandler) Preview(c *gin.Context) {
	rows, err := h.parseUpload(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows, nil)
}

func (h *ImportHandler) readRows(c *gin.Context) ([]importer.Row, ImportDefaults, error) {
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		var defaults ImportDefaults
		if err := c.ShouldBind(&defaults); err != nil {
			return nil, defaults, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid form")
		}
		rows, err := h.parseUpload(c)
		return rows, defaults, err
	}

	var payload ImportPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		return nil, payload.ImportDefaults, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload")
	}
	return service.RowsFromMaps(payload.Rows), payload.ImportDefaults, nil
}

func (h *ImportHandler) parseUpload(c *gin.Context) ([]importer.Row, error) {
	header, err := c.FormFile("file")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "file is required")
	}
	file, err := header.Open()
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "unable to read upload")
	}
	defer file.Close()
	return h.service.Parse(header.Filename, file, header.Size)
}
