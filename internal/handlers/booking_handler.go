package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tesseract-integrations/tesseract-api/internal/models"
	"github.com/tesseract-integrations/tesseract-api/internal/services"
)

type BookingHandler struct {
	service services.BookingProxy
}

func NewBookingHandler(service services.BookingProxy) *BookingHandler {
	return &BookingHandler{service: service}
}

// CheckAvailability handles POST /api/v1/booking/availability. Apart from a
// malformed request this endpoint cannot fail: upstream trouble degrades to
// the default slot set, still delivered as a 200.
func (h *BookingHandler) CheckAvailability(c *gin.Context) {
	var req models.AvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondErrorWithDetails(c, http.StatusBadRequest, "Validation failed", ParseValidationErrors(err), err)
		return
	}

	c.JSON(http.StatusOK, h.service.Availability(c.Request.Context(), req))
}

// CreateBooking handles POST /api/v1/booking/create as a pass-through proxy:
// the request body goes upstream verbatim, and the provider's verdict comes
// back with its original status code.
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	var payload map[string]any
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	status, body := h.service.ProxyCreateBooking(c.Request.Context(), payload)
	c.JSON(status, body)
}

// TriggerFollowup handles POST /api/v1/booking/followup. The sequence fires in
// the background and the response always reports success; a failed
// follow-up is an operations problem, not the visitor's.
func (h *BookingHandler) TriggerFollowup(c *gin.Context) {
	var req models.FollowupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	h.service.SendFollowUp(req)

	c.JSON(http.StatusOK, models.FollowupResponse{
		Success: true,
		Message: "Follow-up sequence initiated",
	})
}
