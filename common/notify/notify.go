// Package notify delivers best-effort notifications for high-severity
// security alerts. Delivery is fire-and-forget: failures are logged by the
// caller, never retried, and carry no durability guarantee. If durable
// notification is ever required it must become its own queued operation.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/telhawk-systems/eventpipe/common/models"
)

// Notifier sends a notification for an envelope.
type Notifier interface {
	Send(ctx context.Context, env *models.Envelope) error
	Type() string
}

// WebhookChannel posts notifications to an HTTP endpoint.
type WebhookChannel struct {
	URL    string
	client *http.Client
}

// NewWebhookChannel creates a webhook notification channel.
func NewWebhookChannel(url string, timeout time.Duration) *WebhookChannel {
	return &WebhookChannel{
		URL: url,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

func (w *WebhookChannel) Type() string {
	return "webhook"
}

// Send posts the alert payload. Any non-2xx response is an error.
func (w *WebhookChannel) Send(ctx context.Context, env *models.Envelope) error {
	payload := map[string]any{
		"event_type": env.EventType,
		"source":     env.Source,
		"severity":   env.Severity,
		"message":    env.Message,
		"timestamp":  env.Timestamp.Format(time.RFC3339),
		"sent_at":    time.Now().UTC().Format(time.RFC3339),
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal notification payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.URL, bytes.NewReader(jsonData))
	if err != nil {
		return fmt.Errorf("create notification request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "EventPipe-Processor/1.0")

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("send notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("notification webhook returned status %d", resp.StatusCode)
	}

	return nil
}

// LogChannel records notifications in the service log only. Used when no
// webhook is configured, and as the placeholder delivery for local setups.
type LogChannel struct {
	Logger *slog.Logger
}

func (l *LogChannel) Type() string {
	return "log"
}

func (l *LogChannel) Send(_ context.Context, env *models.Envelope) error {
	logger := l.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("security notification",
		slog.String("event_type", env.EventType),
		slog.String("source", env.Source),
		slog.String("severity", string(env.Severity)),
	)
	return nil
}
