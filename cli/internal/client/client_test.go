package client

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/telhawk-systems/eventpipe/common/httputil"
	"github.com/telhawk-systems/eventpipe/common/store"
)

func TestSendEvent(t *testing.T) {
	var received map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/events" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if r.Method != http.MethodPost {
			t.Errorf("unexpected method %q", r.Method)
		}
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Fatalf("failed to decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusAccepted)
		json.NewEncoder(w).Encode(map[string]string{
			"message":  "Event received successfully",
			"event_id": "event:xyz",
		})
	}))
	defer srv.Close()

	c := New(srv.URL, "")
	resp, err := c.SendEvent(map[string]interface{}{
		"event_type": "application_log",
		"source":     "cli",
		"severity":   "low",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.EventID != "event:xyz" {
		t.Errorf("expected event ID 'event:xyz', got %q", resp.EventID)
	}
	if received["event_type"] != "application_log" {
		t.Errorf("payload not forwarded: %v", received)
	}
}

func TestSendEvent_Rejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"error": "Missing field: severity"})
	}))
	defer srv.Close()

	c := New(srv.URL, "")
	_, err := c.SendEvent(map[string]interface{}{"event_type": "application_log"})
	if err == nil {
		t.Fatal("expected error for rejected event")
	}
	want := "ingest failed with status 400: Missing field: severity"
	if err.Error() != want {
		t.Errorf("expected %q, got %q", want, err.Error())
	}
}

func TestMetrics(t *testing.T) {
	// The fixture serializes the processor's own row type so the decoder is
	// held to the real wire contract.
	rows := []store.MetricRow{
		{EventType: "security_alert", Severity: "critical", Total: 5, Processed: 4, Failed: 1},
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/metrics" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]any{
			"window_seconds": int64(3600),
			"metrics":        rows,
		})
	}))
	defer srv.Close()

	c := New("", srv.URL)
	resp, err := c.Metrics()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.WindowSeconds != 3600 {
		t.Errorf("expected window 3600, got %d", resp.WindowSeconds)
	}
	if len(resp.Metrics) != 1 {
		t.Fatalf("expected 1 row, got %d", len(resp.Metrics))
	}
	got := resp.Metrics[0]
	if got.Total != 5 || got.Processed != 4 || got.Failed != 1 {
		t.Errorf("row not decoded from the processor's payload: %+v", got)
	}
	if got.EventType != "security_alert" || got.Severity != "critical" {
		t.Errorf("row identity fields wrong: %+v", got)
	}
}

func TestHealth_Unhealthy(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		json.NewEncoder(w).Encode(map[string]string{"status": "unavailable"})
	}))
	defer srv.Close()

	c := New(srv.URL, "")
	body, err := c.Health(srv.URL)
	if err == nil {
		t.Fatal("expected error for unhealthy service")
	}
	if body["status"] != "unavailable" {
		t.Errorf("expected body even on failure, got %v", body)
	}
}
