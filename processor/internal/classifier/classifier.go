// Package classifier applies type-specific enrichment rules to envelopes.
package classifier

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/telhawk-systems/eventpipe/common/logging"
	"github.com/telhawk-systems/eventpipe/common/models"
	"github.com/telhawk-systems/eventpipe/common/notify"
	"github.com/telhawk-systems/eventpipe/processor/internal/metrics"
)

// AlertHighCPU is set on performance_metric envelopes whose cpu_usage
// exceeds the threshold.
const AlertHighCPU = "High CPU Usage"

const cpuUsageThreshold = 90.0

// Classifier dispatches envelopes to enrichment rules by event type.
// Enrichment is a pure function of envelope content, so re-applying it to a
// redelivered envelope yields the same fields; the notification side effect
// is fire-and-forget and may repeat.
type Classifier struct {
	notifier notify.Notifier
	logger   *logging.Logger
}

// New creates a Classifier. notifier receives critical security alerts.
func New(notifier notify.Notifier, logger *logging.Logger) *Classifier {
	if logger == nil {
		logger = logging.Default()
	}
	return &Classifier{
		notifier: notifier,
		logger:   logger,
	}
}

// Classify enriches env in place. A returned error marks the envelope as
// failed; event types without a rule pass through unchanged.
func (c *Classifier) Classify(ctx context.Context, env *models.Envelope) error {
	switch env.EventType {
	case models.EventTypeSecurityAlert:
		c.securityAlert(ctx, env)
		return nil
	case models.EventTypePerformanceMetric:
		return c.performanceMetric(env)
	case models.EventTypeApplicationLog:
		c.applicationLog(env)
		return nil
	default:
		return nil
	}
}

// securityAlert notifies the security channel for critical and high
// severities. Delivery failures are logged and never fail classification.
func (c *Classifier) securityAlert(ctx context.Context, env *models.Envelope) {
	if !env.Severity.Critical() {
		return
	}
	if c.notifier == nil {
		return
	}
	if err := c.notifier.Send(ctx, env); err != nil {
		metrics.NotificationsSent.WithLabelValues("failed").Inc()
		c.logger.WarnContext(ctx, "notification delivery failed",
			logging.EventType(env.EventType),
			logging.Severity(string(env.Severity)),
			logging.Error(err))
		return
	}
	metrics.NotificationsSent.WithLabelValues("sent").Inc()
	c.logger.InfoContext(ctx, "notification sent",
		logging.EventType(env.EventType),
		logging.Source(env.Source))
}

// performanceMetric flags sustained high CPU. A non-numeric cpu_usage value
// is an enrichment error.
func (c *Classifier) performanceMetric(env *models.Envelope) error {
	raw, ok := env.Metrics["cpu_usage"]
	if !ok {
		return nil
	}

	usage, err := toFloat(raw)
	if err != nil {
		return fmt.Errorf("performance_metric cpu_usage: %w", err)
	}

	if usage > cpuUsageThreshold {
		env.Alert = AlertHighCPU
	}
	return nil
}

// applicationLog flags messages containing error markers. Matching is
// case-sensitive by contract.
func (c *Classifier) applicationLog(env *models.Envelope) {
	if strings.Contains(env.Message, "ERROR") || strings.Contains(env.Message, "Exception") {
		env.NeedsAttention = true
	}
}

func toFloat(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case json.Number:
		return n.Float64()
	default:
		return 0, fmt.Errorf("value %v (%T) is not numeric", v, v)
	}
}
