package services

import (
	"context"

	"github.com/tesseract-integrations/tesseract-api/internal/models"
	"github.com/tesseract-integrations/tesseract-api/pkg/jwt"
)

// BookingProxy is the handler-facing surface of the booking service. The
// availability check never fails; booking creation passes the provider's
// verdict through; the follow-up kick-off always reports success.
type BookingProxy interface {
	Availability(ctx context.Context, req models.AvailabilityRequest) *models.AvailabilityResponse
	ProxyCreateBooking(ctx context.Context, payload map[string]any) (int, map[string]any)
	SendFollowUp(req models.FollowupRequest)
}

// ContactSubmitter accepts contact form submissions
type ContactSubmitter interface {
	Submit(req models.ContactFormRequest, callerIP string) (*models.ContactFormResponse, error)
}

// ChatRelay forwards chat messages to the automation platform
type ChatRelay interface {
	Relay(ctx context.Context, req models.ChatRequest) (*models.ChatResponse, error)
}

// Authenticator handles the Google sign-in flow and session tokens
type Authenticator interface {
	AuthCodeURL(state string) string
	HandleCallback(ctx context.Context, code string) (*models.Customer, string, error)
	ValidateSession(token string) (*jwt.SessionClaims, error)
}
