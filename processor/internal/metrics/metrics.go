package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	EventsProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eventpipe_processor_events_total",
			Help: "Total number of consumed events, by terminal status",
		},
		[]string{"status"},
	)

	ProcessingDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "eventpipe_processor_processing_duration_seconds",
			Help:    "Duration of per-message classification and persistence in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	DecodeErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "eventpipe_processor_decode_errors_total",
			Help: "Total number of queue payloads that failed to decode",
		},
	)

	StoreErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "eventpipe_processor_store_errors_total",
			Help: "Total number of failed processed-record writes",
		},
	)

	CacheErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "eventpipe_processor_cache_errors_total",
			Help: "Total number of swallowed cache update errors",
		},
	)

	NotificationsSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eventpipe_processor_notifications_total",
			Help: "Total number of security notifications attempted, by outcome",
		},
		[]string{"outcome"},
	)
)
