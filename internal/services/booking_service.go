package services

import (
	"context"
	"fmt"
	"net/http"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"github.com/tesseract-integrations/tesseract-api/config"
	"github.com/tesseract-integrations/tesseract-api/internal/models"
	"github.com/tesseract-integrations/tesseract-api/pkg/logger"
	"github.com/tesseract-integrations/tesseract-api/pkg/metrics"
	"github.com/tesseract-integrations/tesseract-api/pkg/webhook"
)

// availabilityCacheTTL keeps slot lookups cheap during a wizard session
// without holding on to stale calendars for long.
const availabilityCacheTTL = 60 * time.Second

// BookingService proxies booking operations to the automation platform.
// It also implements booking.Gateway so the wizard state machine can drive
// the same three calls.
type BookingService struct {
	forwarder *webhook.Forwarder
	webhooks  config.WebhookConfig
	cache     *gocache.Cache
}

func NewBookingService(forwarder *webhook.Forwarder, webhooks config.WebhookConfig) *BookingService {
	return &BookingService{
		forwarder: forwarder,
		webhooks:  webhooks,
		cache:     gocache.New(availabilityCacheTTL, 5*time.Minute),
	}
}

// Availability asks the automation platform for open slots. This call never
// fails from the caller's point of view: any transport error, non-2xx
// status, or unusable payload yields the default slot set for the requested
// date, marked successful.
func (s *BookingService) Availability(ctx context.Context, req models.AvailabilityRequest) *models.AvailabilityResponse {
	dateKey := models.DateKey(req.Date)
	cacheKey := fmt.Sprintf("%s|%s", dateKey, req.MeetingType)

	if cached, found := s.cache.Get(cacheKey); found {
		if resp, ok := cached.(*models.AvailabilityResponse); ok {
			return resp
		}
	}

	result, err := s.forwarder.Forward(ctx, "check_availability", s.webhooks.AvailabilityURL, req)
	if err != nil {
		logger.Warn("Availability check failed, using default slots",
			zap.String("date", dateKey),
			zap.Error(err))
		metrics.AvailabilityChecks.WithLabelValues("fallback").Inc()
		return models.DefaultAvailability(dateKey)
	}

	if !result.OK() {
		logger.Warn("Availability webhook returned non-success status, using default slots",
			zap.String("date", dateKey),
			zap.Int("status_code", result.StatusCode))
		metrics.AvailabilityChecks.WithLabelValues("fallback").Inc()
		return models.DefaultAvailability(dateKey)
	}

	var resp models.AvailabilityResponse
	if err := result.DecodeJSON(&resp); err != nil || len(resp.Slots) == 0 {
		logger.Warn("Availability webhook returned unusable payload, using default slots",
			zap.String("date", dateKey),
			zap.Error(err))
		metrics.AvailabilityChecks.WithLabelValues("fallback").Inc()
		return models.DefaultAvailability(dateKey)
	}

	resp.Success = true
	metrics.AvailabilityChecks.WithLabelValues("upstream").Inc()
	s.cache.Set(cacheKey, &resp, availabilityCacheTTL)
	return &resp
}

// ProxyCreateBooking forwards a booking creation payload verbatim and
// returns the HTTP status and body the handler should respond with. On a
// 2xx upstream reply the provider's JSON is merged with success:true; a
// non-2xx reply is passed through with the provider's status code; only a
// transport failure becomes a 500.
func (s *BookingService) ProxyCreateBooking(ctx context.Context, payload map[string]any) (int, map[string]any) {
	result, err := s.forwarder.Forward(ctx, "create_booking", s.webhooks.BookingURL, payload)
	if err != nil {
		metrics.BookingCreations.WithLabelValues("error").Inc()
		logger.Error("Booking creation call failed", zap.Error(err))
		return http.StatusInternalServerError, map[string]any{
			"success": false,
			"message": "Failed to create booking",
		}
	}

	if !result.OK() {
		metrics.BookingCreations.WithLabelValues("upstream_error").Inc()
		return result.StatusCode, map[string]any{
			"success": false,
			"message": "Failed to create booking",
		}
	}

	body := map[string]any{}
	if err := result.DecodeJSON(&body); err != nil {
		// Provider confirmed the booking but sent junk back; the booking
		// still succeeded.
		logger.Warn("Booking webhook returned unparseable body", zap.Error(err))
		body = map[string]any{}
	}
	body["success"] = true
	metrics.BookingCreations.WithLabelValues("success").Inc()
	return http.StatusOK, body
}

// SendFollowUp kicks off the post-booking follow-up sequence without
// waiting for, or caring about, the result.
func (s *BookingService) SendFollowUp(req models.FollowupRequest) {
	s.forwarder.CallAsync("followup_sequence", s.webhooks.FollowupURL, req)
}

// CheckAvailability adapts Availability for the wizard state machine,
// returning just the slots for the requested date.
func (s *BookingService) CheckAvailability(ctx context.Context, req models.AvailabilityRequest) []models.TimeSlot {
	resp := s.Availability(ctx, req)
	if slots, ok := resp.Slots[models.DateKey(req.Date)]; ok && len(slots) > 0 {
		return slots
	}
	return models.DefaultSlots()
}

// CreateBooking adapts ProxyCreateBooking for the wizard state machine.
func (s *BookingService) CreateBooking(ctx context.Context, state models.BookingState) error {
	payload := map[string]any{
		"meetingType":  state.MeetingType,
		"contactInfo":  state.ContactInfo,
		"selectedTime": state.SelectedTime,
		"timezone":     state.Timezone,
	}
	if state.SelectedDate != nil {
		payload["selectedDate"] = state.SelectedDate.UTC().Format(time.RFC3339)
	}

	status, _ := s.ProxyCreateBooking(ctx, payload)
	if status != http.StatusOK {
		return fmt.Errorf("booking creation returned status %d", status)
	}
	return nil
}
