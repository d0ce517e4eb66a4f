package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tesseract-integrations/tesseract-api/internal/models"
	"github.com/tesseract-integrations/tesseract-api/internal/services"
	"github.com/tesseract-integrations/tesseract-api/pkg/errors"
)

type ContactHandler struct {
	service services.ContactSubmitter
}

func NewContactHandler(service services.ContactSubmitter) *ContactHandler {
	return &ContactHandler{service: service}
}

// SubmitContactForm handles POST /api/v1/contact. Validation failures list
// every failing field; a rate-limited caller gets a 429. An accepted
// submission responds immediately, before the email is actually sent.
func (h *ContactHandler) SubmitContactForm(c *gin.Context) {
	var req models.ContactFormRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondErrorWithDetails(c, http.StatusBadRequest, "Validation failed", ParseValidationErrors(err), err)
		return
	}

	resp, err := h.service.Submit(req, c.ClientIP())
	if err != nil {
		if errors.Is(err, errors.ErrRateLimited) {
			respondError(c, http.StatusTooManyRequests, "Too many requests. Please try again later.", err)
			return
		}
		respondError(c, http.StatusInternalServerError, "Internal server error", err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
