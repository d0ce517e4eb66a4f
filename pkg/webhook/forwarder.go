// Package webhook forwards site events to the n8n automation platform.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/tesseract-integrations/tesseract-api/pkg/httpclient"
	"github.com/tesseract-integrations/tesseract-api/pkg/logger"
	"github.com/tesseract-integrations/tesseract-api/pkg/metrics"
	"go.uber.org/zap"
)

// maxResponseBytes caps how much of an upstream body we buffer.
const maxResponseBytes = 1 << 20

// Result holds the raw outcome of a forwarded webhook call.
type Result struct {
	StatusCode int
	Body       []byte
}

// OK reports whether the upstream returned a 2xx status.
func (r *Result) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// DecodeJSON unmarshals the response body into v. An empty body is not an
// error; callers decide what an empty upstream reply means.
func (r *Result) DecodeJSON(v any) error {
	if len(r.Body) == 0 {
		return nil
	}
	return json.Unmarshal(r.Body, v)
}

// Forwarder posts JSON payloads to automation webhook URLs.
type Forwarder struct {
	httpClient httpclient.Client
}

// NewForwarder creates a webhook forwarder backed by the given HTTP client.
func NewForwarder(httpClient httpclient.Client) *Forwarder {
	return &Forwarder{httpClient: httpClient}
}

// Forward posts the payload to the webhook URL and returns the raw result.
// Transport errors are returned; non-2xx statuses are NOT an error here —
// each caller applies its own fallback or failure policy.
func (f *Forwarder) Forward(ctx context.Context, operation, url string, payload any) (*Result, error) {
	start := time.Now()

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s payload: %w", operation, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create %s request: %w", operation, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		metrics.WebhookRequestTotal.WithLabelValues(operation, "error").Inc()
		logger.LogWebhookCall(operation, "error", metrics.MeasureDuration(start), zap.Error(err))
		return nil, fmt.Errorf("failed to call %s webhook: %w", operation, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		metrics.WebhookRequestTotal.WithLabelValues(operation, "error").Inc()
		return nil, fmt.Errorf("failed to read %s response: %w", operation, err)
	}

	status := "success"
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		status = "upstream_error"
	}
	duration := metrics.MeasureDuration(start)
	metrics.WebhookRequestTotal.WithLabelValues(operation, status).Inc()
	metrics.WebhookRequestDuration.WithLabelValues(operation, status).Observe(duration)
	logger.LogWebhookCall(operation, status, duration, zap.Int("status_code", resp.StatusCode))

	return &Result{StatusCode: resp.StatusCode, Body: respBody}, nil
}

// CallAsync posts the payload in a detached goroutine. The result is
// discarded but failures are still logged. Used for the follow-up sequence,
// which must never block or fail the confirmed booking.
func (f *Forwarder) CallAsync(operation, url string, payload any) {
	if url == "" {
		// No webhook URL configured, skip silently
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), httpclient.DefaultTimeout)
		defer cancel()

		result, err := f.Forward(ctx, operation, url, payload)
		if err != nil {
			logger.Error("Async webhook call failed",
				zap.String("operation", operation),
				zap.Error(err))
			return
		}

		if !result.OK() {
			logger.Warn("Async webhook call returned non-success status",
				zap.String("operation", operation),
				zap.Int("status_code", result.StatusCode))
		}
	}()
}
