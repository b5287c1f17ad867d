// Package models defines the canonical event envelope shared by the
// ingestor and processor services.
package models

import (
	"encoding/json"
	"time"
)

// Event types with dedicated enrichment rules. Any other type passes
// through the classifier unchanged.
const (
	EventTypeSecurityAlert     = "security_alert"
	EventTypePerformanceMetric = "performance_metric"
	EventTypeApplicationLog    = "application_log"
)

// Severity classifies how urgent an event is. Critical and high severities
// take the synchronous durable-write path at ingestion.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
	SeverityUnset    Severity = "unset"
)

// Critical reports whether the severity requires the synchronous durable
// write at ingestion time.
func (s Severity) Critical() bool {
	return s == SeverityCritical || s == SeverityHigh
}

// Status tracks an envelope through the pipeline. The only legal transitions
// are pending -> processed and pending -> failed; both are terminal.
type Status string

const (
	StatusPending   Status = "pending"
	StatusProcessed Status = "processed"
	StatusFailed    Status = "failed"
)

// MissingFieldError reports the first required field absent from a raw
// submission. Its message is part of the ingestion API contract.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return "Missing field: " + e.Field
}

// Envelope is the canonical, validated representation of one submitted event
// plus pipeline-added metadata. The queue carries the pending copy; the
// processor produces a separate processed record with a terminal status.
type Envelope struct {
	EventType string   `json:"event_type"`
	Source    string   `json:"source"`
	Severity  Severity `json:"severity"`
	Message   string   `json:"message,omitempty"`

	// Metadata and Metrics are caller-supplied nested mappings, passed
	// through unvalidated. Metrics is inspected by the performance rule.
	Metadata map[string]any `json:"metadata,omitempty"`
	Metrics  map[string]any `json:"metrics,omitempty"`

	// Extra holds any unrecognized top-level fields from the submission.
	Extra map[string]any `json:"extra,omitempty"`

	Timestamp     time.Time  `json:"timestamp"`
	IngestionTime time.Time  `json:"ingestion_time"`
	ProcessedAt   *time.Time `json:"processed_at,omitempty"`
	Status        Status     `json:"status"`

	// Classifier-set enrichment fields.
	Alert          string `json:"alert,omitempty"`
	NeedsAttention bool   `json:"needs_attention,omitempty"`
	Error          string `json:"error,omitempty"`
}

// requiredFields are validated, in order, before any side effect occurs.
var requiredFields = []string{"event_type", "source", "severity"}

// NewEnvelope validates and normalizes a raw submission into an Envelope.
// It returns a *MissingFieldError naming the first absent required field.
// On success it stamps the ingestion instant and sets status to pending.
// NewEnvelope performs no I/O.
func NewEnvelope(raw map[string]any) (*Envelope, error) {
	for _, field := range requiredFields {
		if s, ok := raw[field].(string); !ok || s == "" {
			return nil, &MissingFieldError{Field: field}
		}
	}

	env := &Envelope{
		EventType: raw["event_type"].(string),
		Source:    raw["source"].(string),
		Severity:  Severity(raw["severity"].(string)),
		Status:    StatusPending,
	}

	if msg, ok := raw["message"].(string); ok {
		env.Message = msg
	}
	if md, ok := raw["metadata"].(map[string]any); ok {
		env.Metadata = md
	}
	if m, ok := raw["metrics"].(map[string]any); ok {
		env.Metrics = m
	}

	// Unknown top-level fields pass through unvalidated.
	for k, v := range raw {
		switch k {
		case "event_type", "source", "severity", "message", "metadata", "metrics":
		default:
			if env.Extra == nil {
				env.Extra = make(map[string]any)
			}
			env.Extra[k] = v
		}
	}

	// The two stamps are taken separately and may differ by sub-millisecond skew.
	env.Timestamp = time.Now().UTC()
	env.IngestionTime = time.Now().UTC()

	return env, nil
}

// MarkProcessed stamps the processing instant and transitions to processed.
func (e *Envelope) MarkProcessed(at time.Time) {
	at = at.UTC()
	e.ProcessedAt = &at
	e.Status = StatusProcessed
}

// MarkFailed records a logical processing failure. The error detail is kept
// on the envelope; the queue message is still acknowledged by the consumer.
func (e *Envelope) MarkFailed(err error) {
	e.Status = StatusFailed
	e.Error = err.Error()
}

// CacheMap flattens the envelope into field-value pairs for a keyed hash
// store. Nested mappings are JSON-encoded.
func (e *Envelope) CacheMap() map[string]string {
	m := map[string]string{
		"event_type":     e.EventType,
		"source":         e.Source,
		"severity":       string(e.Severity),
		"status":         string(e.Status),
		"timestamp":      e.Timestamp.Format(time.RFC3339Nano),
		"ingestion_time": e.IngestionTime.Format(time.RFC3339Nano),
	}
	if e.Message != "" {
		m["message"] = e.Message
	}
	if e.ProcessedAt != nil {
		m["processed_at"] = e.ProcessedAt.Format(time.RFC3339Nano)
	}
	if e.Alert != "" {
		m["alert"] = e.Alert
	}
	if e.NeedsAttention {
		m["needs_attention"] = "true"
	}
	if e.Error != "" {
		m["error"] = e.Error
	}
	for field, nested := range map[string]map[string]any{"metadata": e.Metadata, "metrics": e.Metrics, "extra": e.Extra} {
		if len(nested) == 0 {
			continue
		}
		if data, err := json.Marshal(nested); err == nil {
			m[field] = string(data)
		}
	}
	return m
}
