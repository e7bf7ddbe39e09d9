package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/educentral-admin-api/internal/models"
	"github.com/noah-isme/educentral-admin-api/internal/service"
	appErrors "github.com/noah-isme/educentral-admin-api/pkg/errors"
	"github.com/noah-isme/educentral-admin-api/pkg/response"
)

// MessageHandler exposes the broadcast messaging endpoints.
type MessageHandler struct {
	service *service.MessageService
}

// NewMessageHandler constructs the handler.
func NewMessageHandler(svc *service.MessageService) *MessageHandler {
	return &MessageHandler{service: svc}
}

// Recipients godoc
// @Summary Message recipients
// @Description Predefined groups followed by every student and faculty member
// @Tags Messages
// @Produce json
// @Param search query string false "Name filter"
// @Success 200 {object} response.Envelope
// @Router /messages/recipients [get]
func (h *MessageHandler) Recipients(c *gin.Context) {
	recipients, err := h.service.Recipients(c.Request.Context(), c.Query("search"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, recipients, nil)
}

// List godoc
// @Summary Sent messages
// @Tags Messages
// @Produce json
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /messages [get]
func (h *MessageHandler) List(c *gin.Context) {
	messages, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	page, pagination := paginate(c, messages)
	response.JSON(c, http.StatusOK, page, pagination)
}

// Send godoc
// @Summary Send message
// @Description Stores the message and queues mail delivery to every member
// @Tags Messages
// @Accept json
// @Produce json
// @Param payload body models.SendMessageRequest true "Message payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /messages [post]
func (h *MessageHandler) Send(c *gin.Context) {
	var req models.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	msg, err := h.service.Send(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, msg)
}
