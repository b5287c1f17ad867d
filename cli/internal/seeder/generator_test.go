package seeder

import "testing"

func TestGenerateEvent_RequiredFields(t *testing.T) {
	types := []string{"security_alert", "performance_metric", "application_log", ""}

	for _, eventType := range types {
		for i := 0; i < 20; i++ {
			event := GenerateEvent(eventType)

			for _, field := range []string{"event_type", "source", "severity"} {
				s, ok := event[field].(string)
				if !ok || s == "" {
					t.Fatalf("GenerateEvent(%q) missing %q: %v", eventType, field, event)
				}
			}
			if eventType != "" && event["event_type"] != eventType {
				t.Fatalf("expected type %q, got %v", eventType, event["event_type"])
			}
		}
	}
}

func TestGenerateEvent_PerformanceMetricHasCPU(t *testing.T) {
	for i := 0; i < 20; i++ {
		event := GenerateEvent("performance_metric")
		metrics, ok := event["metrics"].(map[string]interface{})
		if !ok {
			t.Fatalf("expected metrics mapping: %v", event)
		}
		cpu, ok := metrics["cpu_usage"].(float64)
		if !ok || cpu < 0 || cpu > 100 {
			t.Fatalf("cpu_usage out of range: %v", metrics["cpu_usage"])
		}
	}
}
