package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/telhawk-systems/eventpipe/common/httputil"
	"github.com/telhawk-systems/eventpipe/common/logging"
	"github.com/telhawk-systems/eventpipe/common/store"
	"github.com/telhawk-systems/eventpipe/processor/internal/consumer"
)

// ServiceName identifies this service in health responses.
const ServiceName = "event-processor"

// MetricsAggregator answers windowed queries over processed records.
type MetricsAggregator interface {
	WindowedCounts(ctx context.Context, window time.Duration) ([]store.MetricRow, error)
}

// ReadinessCheck probes one external dependency for the readiness endpoint.
type ReadinessCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// Handler serves the processor's read-only HTTP surface.
type Handler struct {
	aggregator MetricsAggregator
	window     time.Duration
	stats      func() consumer.Stats
	checks     []ReadinessCheck
	logger     *logging.Logger
}

// NewHandler creates the handler. window is the aggregation lookback.
func NewHandler(aggregator MetricsAggregator, window time.Duration, stats func() consumer.Stats, logger *logging.Logger, checks ...ReadinessCheck) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	if window <= 0 {
		window = time.Hour
	}
	return &Handler{
		aggregator: aggregator,
		window:     window,
		stats:      stats,
		checks:     checks,
		logger:     logger,
	}
}

// Metrics serves the windowed aggregation over processed records.
func (h *Handler) Metrics(w http.ResponseWriter, r *http.Request) {
	rows, err := h.aggregator.WindowedCounts(r.Context(), h.window)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "metrics aggregation failed", logging.Error(err))
		httputil.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"window_seconds": int64(h.window.Seconds()),
		"metrics":        rows,
	})
}

// Health is the liveness endpoint, with consumer telemetry attached.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	body := map[string]any{
		"status":  "healthy",
		"service": ServiceName,
	}
	if h.stats != nil {
		body["stats"] = h.stats()
	}
	httputil.WriteJSON(w, http.StatusOK, body)
}

// Ready reports whether external dependencies are reachable.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
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
