package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/telhawk-systems/eventpipe/common/cache"
	"github.com/telhawk-systems/eventpipe/common/logging"
	"github.com/telhawk-systems/eventpipe/common/messaging"
	"github.com/telhawk-systems/eventpipe/common/models"
	"github.com/telhawk-systems/eventpipe/ingestor/internal/metrics"
)

// QueuePublisher publishes envelopes to the durable queue.
type QueuePublisher interface {
	Publish(ctx context.Context, subject string, data []byte) error
}

// CacheWriter writes envelopes to the fast-path cache.
type CacheWriter interface {
	Store(ctx context.Context, key string, env *models.Envelope) error
}

// EventStore writes envelopes synchronously to durable storage.
type EventStore interface {
	InsertEvent(ctx context.Context, env *models.Envelope) error
}

// Result describes an accepted submission.
type Result struct {
	EventID   string
	Timestamp time.Time
}

// IngestService runs the ingestion pipeline for one submission: validate,
// cache, enqueue, and synchronously persist critical severities.
type IngestService struct {
	queue  QueuePublisher
	cache  CacheWriter
	store  EventStore
	logger *logging.Logger
}

// NewIngestService wires the pipeline dependencies. cache may be nil when
// Redis is unavailable; the fast path is skipped entirely in that case.
func NewIngestService(queue QueuePublisher, cacheWriter CacheWriter, eventStore EventStore, logger *logging.Logger) *IngestService {
	if logger == nil {
		logger = logging.Default()
	}
	return &IngestService{
		queue:  queue,
		cache:  cacheWriter,
		store:  eventStore,
		logger: logger,
	}
}

// Ingest validates raw into an envelope and runs the accept path. A
// *models.MissingFieldError is returned before any side effect occurs.
// Cache and critical-path storage failures are logged and swallowed:
// availability of the ingestion API is prioritized over durability of those
// writes. A queue publish failure is returned, because the queue is the only
// path to async processing for non-critical events.
func (s *IngestService) Ingest(ctx context.Context, raw map[string]any) (*Result, error) {
	env, err := models.NewEnvelope(raw)
	if err != nil {
		metrics.EventsTotal.WithLabelValues("rejected").Inc()
		return nil, err
	}

	eventID := cache.EventKey()

	if s.cache != nil {
		if err := s.cache.Store(ctx, eventID, env); err != nil {
			metrics.CacheErrors.Inc()
			s.logger.WarnContext(ctx, "fast-path cache write failed",
				logging.EventID(eventID), logging.Error(err))
		}
	}

	data, err := json.Marshal(env)
	if err != nil {
		metrics.EventsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("marshal envelope: %w", err)
	}

	start := time.Now()
	if err := s.queue.Publish(ctx, messaging.SubjectEventQueue, data); err != nil {
		metrics.QueuePublishErrors.Inc()
		metrics.EventsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("publish envelope: %w", err)
	}
	metrics.QueuePublishDuration.Observe(time.Since(start).Seconds())

	if env.Severity.Critical() {
		if err := s.store.InsertEvent(ctx, env); err != nil {
			metrics.CriticalStoreErrors.Inc()
			s.logger.ErrorContext(ctx, "synchronous durable write failed",
				logging.EventID(eventID),
				logging.EventType(env.EventType),
				logging.Severity(string(env.Severity)),
				logging.Error(err))
		}
	}

	metrics.EventsTotal.WithLabelValues("accepted").Inc()
	s.logger.InfoContext(ctx, "event accepted",
		logging.EventID(eventID),
		logging.EventType(env.EventType),
		logging.Severity(string(env.Severity)))

	return &Result{EventID: eventID, Timestamp: env.Timestamp}, nil
}
