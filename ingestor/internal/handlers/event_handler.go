package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/telhawk-systems/eventpipe/common/httputil"
	"github.com/telhawk-systems/eventpipe/common/logging"
	"github.com/telhawk-systems/eventpipe/common/models"
	"github.com/telhawk-systems/eventpipe/ingestor/internal/service"
)

// ServiceName identifies this service in health responses.
const ServiceName = "event-ingestor"

// IngestAPI is the service surface the handler depends on.
type IngestAPI interface {
	Ingest(ctx context.Context, raw map[string]any) (*service.Result, error)
}

// ReadinessCheck probes one external dependency for the readiness endpoint.
type ReadinessCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// EventHandler serves the ingestion API.
type EventHandler struct {
	service      IngestAPI
	maxEventSize int64
	checks       []ReadinessCheck
	logger       *logging.Logger
}

// NewEventHandler creates the handler. maxEventSize bounds request bodies.
func NewEventHandler(svc IngestAPI, maxEventSize int64, logger *logging.Logger, checks ...ReadinessCheck) *EventHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &EventHandler{
		service:      svc,
		maxEventSize: maxEventSize,
		checks:       checks,
		logger:       logger,
	}
}

// HandleEvent accepts one event submission.
// 202 on accept, 400 on validation failure, 500 on internal failure.
func (h *EventHandler) HandleEvent(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httputil.WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var raw map[string]any
	if err := httputil.DecodeJSON(r, &raw, h.maxEventSize); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	result, err := h.service.Ingest(r.Context(), raw)
	if err != nil {
		var missing *models.MissingFieldError
		if errors.As(err, &missing) {
			httputil.WriteError(w, http.StatusBadRequest, missing.Error())
			return
		}
		h.logger.ErrorContext(r.Context(), "failed to ingest event", logging.Error(err))
		httputil.WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	httputil.WriteJSON(w, http.StatusAccepted, map[string]string{
		"message":   "Event received successfully",
		"event_id":  result.EventID,
		"timestamp": result.Timestamp.Format(time.RFC3339Nano),
	})
}

// Health is the liveness endpoint.
func (h *EventHandler) Health(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": ServiceName,
	})
}

// Ready reports whether external dependencies are reachable.
func (h *EventHandler) Ready(w http.ResponseWriter, r *http.Request) {
	status := http.StatusOK
	deps := make(map[string]string, len(h.checks))
	for _, c := range h.checks {
		if err := c.Check(r.Context()); err != nil {
			deps[c.Name] = err.Error()
			status = http.StatusServiceUnavailable
		} else {
			deps[c.Name] = "ok"
		}
	}

	body := map[string]any{"service": ServiceName, "dependencies": deps}
	if status == http.StatusOK {
		body["status"] = "ready"
	} else {
		body["status"] = "unavailable"
	}
	httputil.WriteJSON(w, status, body)
}
