package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	EventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eventpipe_ingest_events_total",
			Help: "Total number of events received, by outcome",
		},
		[]string{"status"},
	)

	QueuePublishErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "eventpipe_ingest_queue_publish_errors_total",
			Help: "Total number of failed durable queue publishes",
		},
	)

	QueuePublishDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "eventpipe_ingest_queue_publish_duration_seconds",
			Help:    "Duration of durable queue publishes in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	CacheErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "eventpipe_ingest_cache_errors_total",
			Help: "Total number of swallowed fast-path cache write errors",
		},
	)

	CriticalStoreErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "eventpipe_ingest_critical_store_errors_total",
			Help: "Total number of swallowed synchronous durable write errors",
		},
	)
)
