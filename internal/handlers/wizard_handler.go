package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tesseract-integrations/tesseract-api/internal/booking"
	"github.com/tesseract-integrations/tesseract-api/internal/models"
	"github.com/tesseract-integrations/tesseract-api/internal/wizard"
)

type WizardHandler struct {
	store *wizard.Store
}

func NewWizardHandler(store *wizard.Store) *WizardHandler {
	return &WizardHandler{store: store}
}

type createWizardRequest struct {
	Timezone string `json:"timezone"`
}

// wizardActionRequest is the wire form of a wizard action. Dates arrive as
// RFC3339 timestamps or bare YYYY-MM-DD strings depending on the client's
// date picker.
type wizardActionRequest struct {
	Action      string              `json:"action" binding:"required"`
	MeetingType string              `json:"meetingType"`
	Contact     *models.ContactInfo `json:"contact"`
	Date        string              `json:"date"`
	Time        string              `json:"time"`
	Timezone    string              `json:"timezone"`
}

func wizardResponse(sessionID string, snap booking.Snapshot) gin.H {
	return gin.H{
		"sessionId":      sessionID,
		"state":          snap.State,
		"errors":         snap.Errors,
		"availableSlots": snap.AvailableSlots,
	}
}

// CreateSession handles POST /api/v1/booking/wizard. The body is optional;
// an empty one starts a session in the default timezone.
func (h *WizardHandler) CreateSession(c *gin.Context) {
	var req createWizardRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, http.StatusBadRequest, "Invalid request body", err)
			return
		}
	}

	id, m := h.store.Create(req.Timezone)
	c.JSON(http.StatusCreated, wizardResponse(id, m.Snapshot()))
}

// GetSession handles GET /api/v1/booking/wizard/:id
func (h *WizardHandler) GetSession(c *gin.Context) {
	id := c.Param("id")
	m := h.store.Get(id)
	if m == nil {
		respondError(c, http.StatusNotFound, "Wizard session not found or expired", nil)
		return
	}

	c.JSON(http.StatusOK, wizardResponse(id, m.Snapshot()))
}

// ApplyAction handles POST /api/v1/booking/wizard/:id/action
func (h *WizardHandler) ApplyAction(c *gin.Context) {
	id := c.Param("id")
	m := h.store.Get(id)
	if m == nil {
		respondError(c, http.StatusNotFound, "Wizard session not found or expired", nil)
		return
	}

	var req wizardActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondErrorWithDetails(c, http.StatusBadRequest, "Validation failed", ParseValidationErrors(err), err)
		return
	}

	action := booking.Action{
		Kind:        booking.ActionKind(req.Action),
		MeetingType: req.MeetingType,
		Contact:     req.Contact,
		Time:        req.Time,
		Timezone:    req.Timezone,
	}
	if req.Date != "" {
		parsed, err := parseWizardDate(req.Date)
		if err != nil {
			respondError(c, http.StatusBadRequest, "Invalid date format", err)
			return
		}
		action.Date = &parsed
	}

	snap := m.Apply(c.Request.Context(), action)
	c.JSON(http.StatusOK, wizardResponse(id, snap))
}

func parseWizardDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}
