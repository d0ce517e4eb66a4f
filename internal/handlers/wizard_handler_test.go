package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/tesseract-integrations/tesseract-api/internal/handlers"
	"github.com/tesseract-integrations/tesseract-api/internal/models"
	"github.com/tesseract-integrations/tesseract-api/internal/wizard"
)

// fallbackGateway reports no upstream slots and accepts every booking
type fallbackGateway struct{}

func (fallbackGateway) CheckAvailability(context.Context, models.AvailabilityRequest) []models.TimeSlot {
	return nil
}
func (fallbackGateway) CreateBooking(context.Context, models.BookingState) error { return nil }
func (fallbackGateway) SendFollowUp(models.FollowupRequest)                      {}

type wizardResponse struct {
	SessionID      string              `json:"sessionId"`
	State          models.BookingState `json:"state"`
	Errors         map[string]string   `json:"errors"`
	AvailableSlots []models.TimeSlot   `json:"availableSlots"`
}

func newWizardRouter(ttl time.Duration) *gin.Engine {
	store := wizard.NewStore(fallbackGateway{}, ttl)
	handler := handlers.NewWizardHandler(store)
	router := gin.New()
	router.POST("/api/v1/booking/wizard", handler.CreateSession)
	router.GET("/api/v1/booking/wizard/:id", handler.GetSession)
	router.POST("/api/v1/booking/wizard/:id/action", handler.ApplyAction)
	return router
}

func decodeWizard(t *testing.T, w *httptest.ResponseRecorder) wizardResponse {
	t.Helper()
	var resp wizardResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestWizardHandler_CreateSessionStartsAtStepOne(t *testing.T) {
	router := newWizardRouter(time.Minute)

	w := postJSON(router, "/api/v1/booking/wizard", map[string]string{"timezone": "Europe/Berlin"})

	assert.Equal(t, http.StatusCreated, w.Code)
	resp := decodeWizard(t, w)
	assert.NotEmpty(t, resp.SessionID)
	assert.Equal(t, 1, resp.State.CurrentStep)
	assert.Equal(t, "Europe/Berlin", resp.State.Timezone)
}

func TestWizardHandler_CreateSessionWithEmptyBody(t *testing.T) {
	router := newWizardRouter(time.Minute)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/booking/wizard", http.NoBody)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	resp := decodeWizard(t, w)
	assert.Equal(t, "America/Chicago", resp.State.Timezone)
}

func TestWizardHandler_FullFlowThroughConfirmation(t *testing.T) {
	router := newWizardRouter(time.Minute)

	created := decodeWizard(t, postJSON(router, "/api/v1/booking/wizard", nil))
	base := "/api/v1/booking/wizard/" + created.SessionID + "/action"

	// Step 1: pick a meeting type and advance
	postJSON(router, base, map[string]any{"action": "select_meeting_type", "meetingType": "discovery"})
	resp := decodeWizard(t, postJSON(router, base, map[string]any{"action": "next"}))
	assert.Equal(t, 2, resp.State.CurrentStep)

	// Step 2: contact details
	postJSON(router, base, map[string]any{"action": "update_contact", "contact": map[string]string{
		"name":      "Ada Lovelace",
		"email":     "ada@example.com",
		"company":   "Analytical Engines",
		"role":      "CTO",
		"challenge": "We need to automate our invoice processing pipeline",
	}})
	resp = decodeWizard(t, postJSON(router, base, map[string]any{"action": "next"}))
	assert.Equal(t, 3, resp.State.CurrentStep)

	// Step 3: date brings back the fallback slots, then pick one
	resp = decodeWizard(t, postJSON(router, base, map[string]any{"action": "select_date", "date": "2026-09-14"}))
	assert.Len(t, resp.AvailableSlots, len(models.DefaultSlotTimes))

	postJSON(router, base, map[string]any{"action": "select_time", "time": "10:00 AM"})
	resp = decodeWizard(t, postJSON(router, base, map[string]any{"action": "next"}))
	assert.Equal(t, 4, resp.State.CurrentStep)
	assert.Empty(t, resp.Errors)
}

func TestWizardHandler_ValidationErrorsKeepStep(t *testing.T) {
	router := newWizardRouter(time.Minute)

	created := decodeWizard(t, postJSON(router, "/api/v1/booking/wizard", nil))
	base := "/api/v1/booking/wizard/" + created.SessionID + "/action"

	resp := decodeWizard(t, postJSON(router, base, map[string]any{"action": "next"}))

	assert.Equal(t, 1, resp.State.CurrentStep)
	assert.Equal(t, "Please select a meeting type", resp.Errors["meetingType"])
}

func TestWizardHandler_UnknownSessionIs404(t *testing.T) {
	router := newWizardRouter(time.Minute)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/booking/wizard/wiz_missing", http.NoBody)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestWizardHandler_BadDateIs400(t *testing.T) {
	router := newWizardRouter(time.Minute)

	created := decodeWizard(t, postJSON(router, "/api/v1/booking/wizard", nil))
	base := "/api/v1/booking/wizard/" + created.SessionID + "/action"

	w := postJSON(router, base, map[string]any{"action": "select_date", "date": "next tuesday"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
