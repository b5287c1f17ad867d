package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/telhawk-systems/eventpipe/common/models"
	"github.com/telhawk-systems/eventpipe/ingestor/internal/service"
)

// Mock service for testing
type mockIngestService struct {
	result *service.Result
	err    error
}

func (m *mockIngestService) Ingest(ctx context.Context, raw map[string]any) (*service.Result, error) {
	return m.result, m.err
}

func postEvent(t *testing.T, handler *EventHandler, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/events", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	handler.HandleEvent(rr, req)
	return rr
}

func TestHandleEvent_Accepted(t *testing.T) {
	ts := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	mockService := &mockIngestService{
		result: &service.Result{EventID: "event:abc-123", Timestamp: ts},
	}
	handler := NewEventHandler(mockService, 1<<20, nil)

	body, _ := json.Marshal(map[string]any{
		"event_type": "application_log",
		"source":     "api",
		"severity":   "low",
	})
	rr := postEvent(t, handler, body)

	if rr.Code != http.StatusAccepted {
		t.Fatalf("Expected status 202, got %d", rr.Code)
	}

	var response map[string]string
	if err := json.NewDecoder(rr.Body).Decode(&response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if response["message"] != "Event received successfully" {
		t.Errorf("Expected acceptance message, got %q", response["message"])
	}
	if response["event_id"] != "event:abc-123" {
		t.Errorf("Expected event_id 'event:abc-123', got %q", response["event_id"])
	}
	if response["timestamp"] != ts.Format(time.RFC3339Nano) {
		t.Errorf("Expected timestamp %q, got %q", ts.Format(time.RFC3339Nano), response["timestamp"])
	}
}

func TestHandleEvent_MissingField(t *testing.T) {
	mockService := &mockIngestService{
		err: &models.MissingFieldError{Field: "severity"},
	}
	handler := NewEventHandler(mockService, 1<<20, nil)

	rr := postEvent(t, handler, []byte(`{"event_type":"application_log","source":"api"}`))

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("Expected status 400, got %d", rr.Code)
	}

	var response map[string]string
	if err := json.NewDecoder(rr.Body).Decode(&response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if response["error"] != "Missing field: severity" {
		t.Errorf("Expected 'Missing field: severity', got %q", response["error"])
	}
}

func TestHandleEvent_InvalidJSON(t *testing.T) {
	handler := NewEventHandler(&mockIngestService{}, 1<<20, nil)

	rr := postEvent(t, handler, []byte("not json at all"))

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("Expected status 400, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "invalid JSON body") {
		t.Errorf("Expected invalid JSON message, got %q", rr.Body.String())
	}
}

func TestHandleEvent_InternalError(t *testing.T) {
	mockService := &mockIngestService{
		err: errors.New("publish envelope: broker unreachable"),
	}
	handler := NewEventHandler(mockService, 1<<20, nil)

	rr := postEvent(t, handler, []byte(`{"event_type":"application_log","source":"api","severity":"low"}`))

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("Expected status 500, got %d", rr.Code)
	}

	var response map[string]string
	if err := json.NewDecoder(rr.Body).Decode(&response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if response["error"] != "Internal server error" {
		t.Errorf("Internal detail must not leak, got %q", response["error"])
	}
}

func TestHandleEvent_MethodNotAllowed(t *testing.T) {
	handler := NewEventHandler(&mockIngestService{}, 1<<20, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/events", nil)
	rr := httptest.NewRecorder()
	handler.HandleEvent(rr, req)

	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("Expected status 405, got %d", rr.Code)
	}
}

func TestHandleEvent_BodyTooLarge(t *testing.T) {
	handler := NewEventHandler(&mockIngestService{}, 32, nil)

	body := fmt.Sprintf(`{"event_type":"application_log","source":%q}`, strings.Repeat("x", 128))
	rr := postEvent(t, handler, []byte(body))

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("Expected status 400, got %d", rr.Code)
	}
}

func TestHealth(t *testing.T) {
	handler := NewEventHandler(&mockIngestService{}, 1<<20, nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rr := httptest.NewRecorder()
	handler.Health(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rr.Code)
	}

	var response map[string]string
	if err := json.NewDecoder(rr.Body).Decode(&response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if response["status"] != "healthy" || response["service"] != ServiceName {
		t.Errorf("Unexpected health body: %v", response)
	}
}

func TestReady(t *testing.T) {
	tests := []struct {
		name       string
		checkErr   error
		wantStatus int
		wantBody   string
	}{
		{
			name:       "all dependencies up",
			checkErr:   nil,
			wantStatus: http.StatusOK,
			wantBody:   "ready",
		},
		{
			name:       "dependency down",
			checkErr:   errors.New("connection refused"),
			wantStatus: http.StatusServiceUnavailable,
			wantBody:   "unavailable",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewEventHandler(&mockIngestService{}, 1<<20, nil, ReadinessCheck{
				Name:  "queue",
				Check: func(ctx context.Context) error { return tt.checkErr },
			})

			req := httptest.NewRequest(http.MethodGet, "/readyz", nil)
			rr := httptest.NewRecorder()
			handler.Ready(rr, req)

			if rr.Code != tt.wantStatus {
				t.Fatalf("Expected status %d, got %d", tt.wantStatus, rr.Code)
			}

			var response map[string]any
			if err := json.NewDecoder(rr.Body).Decode(&response); err != nil {
				t.Fatalf("Failed to decode response: %v", err)
			}
			if response["status"] != tt.wantBody {
				t.Errorf("Expected status %q, got %v", tt.wantBody, response["status"])
			}
		})
	}
}
