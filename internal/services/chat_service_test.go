package services_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tesseract-integrations/tesseract-api/internal/models"
	"github.com/tesseract-integrations/tesseract-api/internal/services"
	"github.com/tesseract-integrations/tesseract-api/pkg/errors"
	"github.com/tesseract-integrations/tesseract-api/pkg/httpclient"
	"github.com/tesseract-integrations/tesseract-api/pkg/webhook"
)

func newChatService(webhookURL string) *services.ChatService {
	forwarder := webhook.NewForwarder(httpclient.NewStandardClient())
	return services.NewChatService(forwarder, webhookURL)
}

func TestChatService_RelayReturnsUpstreamReply(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload models.ChatWebhookPayload
		_ = json.NewDecoder(r.Body).Decode(&payload)
		assert.Equal(t, "hello", payload.Message)
		assert.Equal(t, "website_chat", payload.Source)
		assert.NotEmpty(t, payload.Timestamp)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"reply": "Hi! How can we help?"})
	}))
	defer upstream.Close()

	svc := newChatService(upstream.URL)

	resp, err := svc.Relay(context.Background(), models.ChatRequest{Message: "hello"})

	assert.NoError(t, err)
	assert.Equal(t, "Hi! How can we help?", resp.Reply)
	assert.True(t, strings.HasPrefix(resp.ConversationID, "conv_"), "generated conversation IDs carry the conv_ prefix")
}

func TestChatService_RelayKeepsCallerConversationID(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload models.ChatWebhookPayload
		_ = json.NewDecoder(r.Body).Decode(&payload)
		assert.Equal(t, "conv_existing", payload.ConversationID)
		_ = json.NewEncoder(w).Encode(map[string]any{"response": "still here"})
	}))
	defer upstream.Close()

	svc := newChatService(upstream.URL)

	resp, err := svc.Relay(context.Background(), models.ChatRequest{
		Message:        "follow-up",
		ConversationID: "conv_existing",
	})

	assert.NoError(t, err)
	assert.Equal(t, "conv_existing", resp.ConversationID)
	assert.Equal(t, "still here", resp.Reply)
}

func TestChatService_RelayDefaultsReplyOnEmptyBody(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer upstream.Close()

	svc := newChatService(upstream.URL)

	resp, err := svc.Relay(context.Background(), models.ChatRequest{Message: "hello"})

	assert.NoError(t, err)
	assert.NotEmpty(t, resp.Reply)
}

func TestChatService_RelayUpstreamErrorSurfaces(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer upstream.Close()

	svc := newChatService(upstream.URL)

	resp, err := svc.Relay(context.Background(), models.ChatRequest{Message: "hello"})

	assert.Nil(t, resp)
	assert.ErrorIs(t, err, errors.ErrUpstream)
}

func TestChatService_RelayUnconfiguredWebhookIsInternalError(t *testing.T) {
	svc := newChatService("")

	resp, err := svc.Relay(context.Background(), models.ChatRequest{Message: "hello"})

	assert.Nil(t, resp)
	assert.ErrorIs(t, err, errors.ErrInternal)
}
