package classifier

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/telhawk-systems/eventpipe/common/models"
)

type mockNotifier struct {
	sent []*models.Envelope
	err  error
}

func (m *mockNotifier) Send(ctx context.Context, env *models.Envelope) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, env)
	return nil
}

func (m *mockNotifier) Type() string { return "mock" }

func envelope(t *testing.T, raw map[string]any) *models.Envelope {
	t.Helper()
	env, err := models.NewEnvelope(raw)
	require.NoError(t, err)
	return env
}

func TestClassify_SecurityAlertNotification(t *testing.T) {
	tests := []struct {
		severity   string
		wantNotify bool
	}{
		{"critical", true},
		{"high", true},
		{"medium", false},
		{"low", false},
	}

	for _, tt := range tests {
		t.Run(tt.severity, func(t *testing.T) {
			notifier := &mockNotifier{}
			c := New(notifier, nil)

			env := envelope(t, map[string]any{
				"event_type": "security_alert",
				"source":     "ids",
				"severity":   tt.severity,
				"message":    "suspicious login",
			})

			require.NoError(t, c.Classify(context.Background(), env))
			if tt.wantNotify {
				assert.Len(t, notifier.sent, 1)
			} else {
				assert.Empty(t, notifier.sent)
			}
		})
	}
}

func TestClassify_SecurityAlertNotifierFailure(t *testing.T) {
	c := New(&mockNotifier{err: errors.New("webhook timeout")}, nil)

	env := envelope(t, map[string]any{
		"event_type": "security_alert",
		"source":     "ids",
		"severity":   "critical",
	})

	assert.NoError(t, c.Classify(context.Background(), env),
		"notification failures must not fail classification")
}

func TestClassify_PerformanceMetric(t *testing.T) {
	tests := []struct {
		name      string
		cpu       any
		wantAlert string
	}{
		{name: "above threshold", cpu: 95.5, wantAlert: AlertHighCPU},
		{name: "at threshold", cpu: 90.0, wantAlert: ""},
		{name: "below threshold", cpu: 12.0, wantAlert: ""},
		{name: "integer above threshold", cpu: 99, wantAlert: AlertHighCPU},
		{name: "json number", cpu: json.Number("97.2"), wantAlert: AlertHighCPU},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(&mockNotifier{}, nil)
			env := envelope(t, map[string]any{
				"event_type": "performance_metric",
				"source":     "host-agent",
				"severity":   "medium",
				"metrics":    map[string]any{"cpu_usage": tt.cpu},
			})

			require.NoError(t, c.Classify(context.Background(), env))
			assert.Equal(t, tt.wantAlert, env.Alert)
		})
	}
}

func TestClassify_PerformanceMetricWithoutCPU(t *testing.T) {
	c := New(&mockNotifier{}, nil)
	env := envelope(t, map[string]any{
		"event_type": "performance_metric",
		"source":     "host-agent",
		"severity":   "medium",
		"metrics":    map[string]any{"memory_usage": 40.0},
	})

	require.NoError(t, c.Classify(context.Background(), env))
	assert.Empty(t, env.Alert)
}

func TestClassify_PerformanceMetricBadValue(t *testing.T) {
	c := New(&mockNotifier{}, nil)
	env := envelope(t, map[string]any{
		"event_type": "performance_metric",
		"source":     "host-agent",
		"severity":   "medium",
		"metrics":    map[string]any{"cpu_usage": "very high"},
	})

	err := c.Classify(context.Background(), env)
	require.Error(t, err)
	assert.ErrorContains(t, err, "cpu_usage")
}

func TestClassify_ApplicationLog(t *testing.T) {
	tests := []struct {
		name    string
		message string
		want    bool
	}{
		{name: "ERROR marker", message: "ERROR failed to connect", want: true},
		{name: "Exception marker", message: "Unhandled Exception in worker", want: true},
		{name: "clean log", message: "request completed", want: false},
		{name: "lowercase error ignored", message: "error occurred", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(&mockNotifier{}, nil)
			env := envelope(t, map[string]any{
				"event_type": "application_log",
				"source":     "api",
				"severity":   "low",
				"message":    tt.message,
			})

			require.NoError(t, c.Classify(context.Background(), env))
			assert.Equal(t, tt.want, env.NeedsAttention)
		})
	}
}

func TestClassify_UnknownTypePassesThrough(t *testing.T) {
	c := New(&mockNotifier{}, nil)
	env := envelope(t, map[string]any{
		"event_type": "audit_trail",
		"source":     "api",
		"severity":   "low",
	})

	require.NoError(t, c.Classify(context.Background(), env))
	assert.Empty(t, env.Alert)
	assert.False(t, env.NeedsAttention)
}

func TestClassify_Idempotent(t *testing.T) {
	c := New(&mockNotifier{}, nil)
	env := envelope(t, map[string]any{
		"event_type": "performance_metric",
		"source":     "host-agent",
		"severity":   "medium",
		"metrics":    map[string]any{"cpu_usage": 95.0},
	})

	require.NoError(t, c.Classify(context.Background(), env))
	first := *env
	require.NoError(t, c.Classify(context.Background(), env))
	assert.Equal(t, first.Alert, env.Alert, "reclassification must yield identical fields")
	assert.Equal(t, first.NeedsAttention, env.NeedsAttention)
}
