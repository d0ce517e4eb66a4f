package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tesseract-integrations/tesseract-api/internal/models"
	"github.com/tesseract-integrations/tesseract-api/internal/services"
	"github.com/tesseract-integrations/tesseract-api/pkg/errors"
)

type ChatHandler struct {
	service services.ChatRelay
}

func NewChatHandler(service services.ChatRelay) *ChatHandler {
	return &ChatHandler{service: service}
}

// RelayMessage handles POST /api/v1/chat. The relay waits for the upstream
// workflow's reply: a timeout becomes 504, any other upstream failure 502.
func (h *ChatHandler) RelayMessage(c *gin.Context) {
	var req models.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondErrorWithDetails(c, http.StatusBadRequest, "Validation failed", ParseValidationErrors(err), err)
		return
	}

	resp, err := h.service.Relay(c.Request.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, context.DeadlineExceeded):
			respondError(c, http.StatusGatewayTimeout, "Chat service timed out", err)
		case errors.Is(err, errors.ErrInternal):
			respondError(c, http.StatusInternalServerError, "Chat service is not configured", err)
		default:
			respondError(c, http.StatusBadGateway, "Chat service is unavailable", err)
		}
		return
	}

	c.JSON(http.StatusOK, resp)
}
