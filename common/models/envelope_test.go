package models

import (
	"errors"
	"testing"
	"time"
)

func validRaw() map[string]any {
	return map[string]any{
		"event_type": "application_log",
		"source":     "api-server",
		"severity":   "low",
		"message":    "request completed",
	}
}

func TestNewEnvelope_MissingFields(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(map[string]any)
		wantField string
	}{
		{
			name:      "missing event_type",
			mutate:    func(raw map[string]any) { delete(raw, "event_type") },
			wantField: "event_type",
		},
		{
			name:      "missing source",
			mutate:    func(raw map[string]any) { delete(raw, "source") },
			wantField: "source",
		},
		{
			name:      "missing severity",
			mutate:    func(raw map[string]any) { delete(raw, "severity") },
			wantField: "severity",
		},
		{
			name:      "empty string counts as missing",
			mutate:    func(raw map[string]any) { raw["source"] = "" },
			wantField: "source",
		},
		{
			name:      "non-string counts as missing",
			mutate:    func(raw map[string]any) { raw["severity"] = 3 },
			wantField: "severity",
		},
		{
			name: "event_type reported first when several are missing",
			mutate: func(raw map[string]any) {
				delete(raw, "event_type")
				delete(raw, "severity")
			},
			wantField: "event_type",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := validRaw()
			tt.mutate(raw)

			env, err := NewEnvelope(raw)
			if env != nil {
				t.Fatal("expected nil envelope on validation failure")
			}

			var missing *MissingFieldError
			if !errors.As(err, &missing) {
				t.Fatalf("expected MissingFieldError, got %v", err)
			}
			if missing.Field != tt.wantField {
				t.Errorf("expected field %q, got %q", tt.wantField, missing.Field)
			}
			if want := "Missing field: " + tt.wantField; err.Error() != want {
				t.Errorf("expected message %q, got %q", want, err.Error())
			}
		})
	}
}

func TestNewEnvelope_Stamps(t *testing.T) {
	before := time.Now().UTC()
	env, err := NewEnvelope(validRaw())
	after := time.Now().UTC()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if env.Status != StatusPending {
		t.Errorf("expected pending status, got %q", env.Status)
	}
	if env.Timestamp.Before(before) || env.Timestamp.After(after) {
		t.Errorf("timestamp %v outside [%v, %v]", env.Timestamp, before, after)
	}
	if env.IngestionTime.Before(env.Timestamp) {
		t.Errorf("ingestion time %v precedes timestamp %v", env.IngestionTime, env.Timestamp)
	}
	if env.ProcessedAt != nil {
		t.Error("expected nil ProcessedAt on a pending envelope")
	}
}

func TestNewEnvelope_ExtraFields(t *testing.T) {
	raw := validRaw()
	raw["metadata"] = map[string]any{"host": "web-1"}
	raw["metrics"] = map[string]any{"cpu_usage": 42.0}
	raw["custom_tag"] = "blue"

	env, err := NewEnvelope(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if env.Metadata["host"] != "web-1" {
		t.Errorf("metadata not carried over: %v", env.Metadata)
	}
	if env.Metrics["cpu_usage"] != 42.0 {
		t.Errorf("metrics not carried over: %v", env.Metrics)
	}
	if env.Extra["custom_tag"] != "blue" {
		t.Errorf("unknown field not preserved: %v", env.Extra)
	}
	if _, ok := env.Extra["message"]; ok {
		t.Error("known field leaked into Extra")
	}
}

func TestSeverity_Critical(t *testing.T) {
	if !SeverityCritical.Critical() || !SeverityHigh.Critical() {
		t.Error("critical and high must take the durable path")
	}
	if SeverityMedium.Critical() || SeverityLow.Critical() || Severity("bogus").Critical() {
		t.Error("only critical and high take the durable path")
	}
}

func TestMarkProcessedAndFailed(t *testing.T) {
	env, err := NewEnvelope(validRaw())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	env.MarkProcessed(at)
	if env.Status != StatusProcessed {
		t.Errorf("expected processed, got %q", env.Status)
	}
	if env.ProcessedAt == nil || !env.ProcessedAt.Equal(at) {
		t.Errorf("expected ProcessedAt %v, got %v", at, env.ProcessedAt)
	}

	env.MarkFailed(errors.New("rule blew up"))
	if env.Status != StatusFailed {
		t.Errorf("expected failed, got %q", env.Status)
	}
	if env.Error != "rule blew up" {
		t.Errorf("expected error detail, got %q", env.Error)
	}
}

func TestCacheMap(t *testing.T) {
	raw := validRaw()
	raw["metrics"] = map[string]any{"cpu_usage": 95.5}
	env, err := NewEnvelope(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	env.Alert = "High CPU Usage"
	env.NeedsAttention = true

	m := env.CacheMap()

	if m["event_type"] != "application_log" || m["severity"] != "low" {
		t.Errorf("identity fields wrong: %v", m)
	}
	if m["status"] != string(StatusPending) {
		t.Errorf("expected pending status, got %q", m["status"])
	}
	if m["alert"] != "High CPU Usage" || m["needs_attention"] != "true" {
		t.Errorf("enrichment fields wrong: %v", m)
	}
	if m["metrics"] != `{"cpu_usage":95.5}` {
		t.Errorf("nested mapping not JSON-encoded: %q", m["metrics"])
	}
	if _, ok := m["processed_at"]; ok {
		t.Error("pending envelope must not carry processed_at")
	}
	if _, ok := m["metadata"]; ok {
		t.Error("empty nested mappings must be omitted")
	}
}
