package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tesseract-integrations/tesseract-api/internal/models"
	"github.com/tesseract-integrations/tesseract-api/pkg/errors"
	"github.com/tesseract-integrations/tesseract-api/pkg/httpclient"
	"github.com/tesseract-integrations/tesseract-api/pkg/logger"
	"github.com/tesseract-integrations/tesseract-api/pkg/metrics"
	"github.com/tesseract-integrations/tesseract-api/pkg/webhook"
)

// defaultChatReply covers an upstream that accepted the message but sent
// nothing usable back.
const defaultChatReply = "Thanks for reaching out! We'll get back to you shortly."

// ChatService relays chatbot messages to the automation platform and waits
// synchronously for the reply.
type ChatService struct {
	forwarder  *webhook.Forwarder
	webhookURL string
}

func NewChatService(forwarder *webhook.Forwarder, webhookURL string) *ChatService {
	return &ChatService{
		forwarder:  forwarder,
		webhookURL: webhookURL,
	}
}

// Relay forwards the message and returns the upstream reply. Unlike the
// other webhook routes there is no fallback URL: an unconfigured relay is a
// server error. Timeouts surface as context.DeadlineExceeded so the handler
// can map them to 504 rather than 502.
func (s *ChatService) Relay(ctx context.Context, req models.ChatRequest) (*models.ChatResponse, error) {
	if s.webhookURL == "" {
		return nil, errors.InternalError("chat webhook is not configured")
	}

	conversationID := req.ConversationID
	if conversationID == "" {
		conversationID = "conv_" + uuid.New().String()
	}

	payload := models.ChatWebhookPayload{
		Message:        req.Message,
		ConversationID: conversationID,
		UserID:         req.UserID,
		Timestamp:      time.Now().UTC().Format(time.RFC3339),
		Source:         "website_chat",
	}

	ctx, cancel := context.WithTimeout(ctx, httpclient.DefaultTimeout)
	defer cancel()

	result, err := s.forwarder.Forward(ctx, "chat_relay", s.webhookURL, payload)
	if err != nil {
		metrics.ChatRelayTotal.WithLabelValues("error").Inc()
		if ctx.Err() == context.DeadlineExceeded {
			return nil, context.DeadlineExceeded
		}
		return nil, err
	}

	if !result.OK() {
		metrics.ChatRelayTotal.WithLabelValues("upstream_error").Inc()
		return nil, errors.UpstreamError("chat webhook", result.StatusCode)
	}

	reply, metadata := parseChatReply(result)
	metrics.ChatRelayTotal.WithLabelValues("success").Inc()
	return &models.ChatResponse{
		Reply:          reply,
		ConversationID: conversationID,
		Metadata:       metadata,
	}, nil
}

// parseChatReply extracts the reply text from whatever shape the automation
// workflow returned. Workflows have used "reply", "response", and "output"
// over time; anything else falls back to the default reply.
func parseChatReply(result *webhook.Result) (string, map[string]any) {
	body := map[string]any{}
	if err := result.DecodeJSON(&body); err != nil {
		logger.Warn("Chat webhook returned unparseable body", zap.Error(err))
		return defaultChatReply, nil
	}

	for _, key := range []string{"reply", "response", "output"} {
		if v, ok := body[key].(string); ok && v != "" {
			delete(body, key)
			if len(body) == 0 {
				return v, nil
			}
			return v, body
		}
	}
	return defaultChatReply, nil
}
