package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/telhawk-systems/eventpipe/common/middleware"
	"github.com/telhawk-systems/eventpipe/processor/internal/handlers"
)

// NewRouter constructs a ServeMux with the processor API routes registered.
// The windowed aggregation owns /metrics; Prometheus exposition lives under
// /metrics/prometheus.
func NewRouter(h *handlers.Handler) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/metrics", h.Metrics)
	mux.Handle("/metrics/prometheus", promhttp.Handler())

	mux.HandleFunc("/health", h.Health)
	mux.HandleFunc("/healthz", h.Health)
	mux.HandleFunc("/readyz", h.Ready)

	return middleware.RequestID(mux)
}
