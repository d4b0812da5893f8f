package webhook

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	webhookapp "github.com/bettstax/backend/internal/application/webhook"
	"github.com/bettstax/backend/internal/domain/webhook"
)

const (
	defaultHTTPTimeout = 10 * time.Second
	userAgent          = "BettsTax-Webhook/1.0"

	// Response bodies are only read for error reporting; cap how much we keep.
	maxErrorBodyBytes = 512
)

// HTTPSender performs one webhook delivery attempt over HTTP. The payload
// and signature were fixed at enqueue time; the sender only adds transport
// headers and the registration's custom headers.
type HTTPSender struct {
	client *http.Client
}

var _ webhookapp.DeliverySender = (*HTTPSender)(nil)

// NewHTTPSender creates a sender with the given per-request timeout.
func NewHTTPSender(timeout time.Duration) *HTTPSender {
	if timeout <= 0 {
		timeout = defaultHTTPTimeout
	}
	return &HTTPSender{
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// Send posts the delivery payload to the registration's target URL. It
// returns the HTTP status of the response (0 when the request never
// completed) and an error for transport failures or non-2xx responses.
func (s *HTTPSender) Send(ctx context.Context, reg *webhook.Registration, delivery *webhook.Delivery) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reg.TargetURL, bytes.NewReader(delivery.Payload))
	if err != nil {
		return 0, fmt.Errorf("webhook: build request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set(webhook.HeaderSignature, delivery.Signature)
	req.Header.Set(webhook.HeaderEventType, delivery.EventType)
	req.Header.Set(webhook.HeaderDelivery, delivery.ID.String())

	custom, err := webhook.ParseHeaders(reg.Headers)
	if err == nil {
		for k, v := range custom {
			req.Header.Set(k, v)
		}
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("webhook: request failed: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp.StatusCode, fmt.Errorf("webhook: target responded %d: %s", resp.StatusCode, string(body))
	}
	return resp.StatusCode, nil
}
