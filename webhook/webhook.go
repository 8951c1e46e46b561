// Package webhook delivers workflow events to external HTTP endpoints.
package webhook

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	apperrors "github.com/jax-labs/apexflow/errors"
	"github.com/jax-labs/apexflow/httpclient"
)

// SignatureHeader carries the hex HMAC-SHA256 of the request body when the
// sender is configured with a signing secret.
const SignatureHeader = "X-Apex-Signature"

// Sender delivers an event payload to a webhook URL. A nil return means the
// endpoint acknowledged the delivery with a 2xx response.
type Sender interface {
	Send(ctx context.Context, url, event string, payload map[string]any) error
}

// SenderFunc adapts a function to the Sender interface.
type SenderFunc func(ctx context.Context, url, event string, payload map[string]any) error

// Send implements Sender.
func (f SenderFunc) Send(ctx context.Context, url, event string, payload map[string]any) error {
	return f(ctx, url, event, payload)
}

// Config configures the HTTP sender.
type Config struct {
	// Timeout bounds each delivery attempt. Defaults to 10s.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
	// Secret enables request signing when non-empty.
	Secret string `yaml:"secret" mapstructure:"secret"`
}

// envelope is the wire format delivered to webhook endpoints.
type envelope struct {
	Event     string         `json:"event"`
	Timestamp time.Time      `json:"timestamp"`
	Data      map[string]any `json:"data"`
}

// HTTPSender posts JSON event envelopes over HTTP.
type HTTPSender struct {
	client  *httpclient.Client
	secret  string
	nowFunc func() time.Time
}

// NewHTTPSender creates a sender. An empty secret disables signing.
func NewHTTPSender(cfg Config) *HTTPSender {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	client, _ := httpclient.New(httpclient.Config{Timeout: cfg.Timeout})
	return &HTTPSender{
		client:  client,
		secret:  cfg.Secret,
		nowFunc: time.Now,
	}
}

// Send delivers one event. Non-2xx responses and transport failures are
// reported as webhook delivery errors naming the URL.
func (s *HTTPSender) Send(ctx context.Context, url, event string, payload map[string]any) error {
	body, err := json.Marshal(envelope{
		Event:     event,
		Timestamp: s.nowFunc().UTC(),
		Data:      payload,
	})
	if err != nil {
		return apperrors.WebhookFailed(url, fmt.Errorf("encode payload: %w", err))
	}

	headers := map[string]string{"Content-Type": "application/json"}
	if s.secret != "" {
		mac := hmac.New(sha256.New, []byte(s.secret))
		mac.Write(body)
		headers[SignatureHeader] = hex.EncodeToString(mac.Sum(nil))
	}

	_, err = s.client.Do(ctx, httpclient.Request{
		Method:  http.MethodPost,
		Path:    url,
		Headers: headers,
		Body:    body,
	})
	if err != nil {
		return apperrors.WebhookFailed(url, err)
	}
	return nil
}
