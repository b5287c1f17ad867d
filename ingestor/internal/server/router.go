package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/telhawk-systems/eventpipe/common/middleware"
	"github.com/telhawk-systems/eventpipe/ingestor/internal/handlers"
)

// NewRouter constructs a ServeMux with the ingestion API routes registered.
func NewRouter(h *handlers.EventHandler) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/events", h.HandleEvent)

	mux.HandleFunc("/health", h.Health)
	mux.HandleFunc("/healthz", h.Health)
	mux.HandleFunc("/readyz", h.Ready)

	mux.Handle("/metrics", promhttp.Handler())

	return middleware.RequestID(mux)
}
