// Package consumer runs the async half of the pipeline: it decodes queued
// envelopes, classifies them, and persists the processed record.
package consumer

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/telhawk-systems/eventpipe/common/cache"
	"github.com/telhawk-systems/eventpipe/common/logging"
	"github.com/telhawk-systems/eventpipe/common/messaging"
	"github.com/telhawk-systems/eventpipe/common/models"
	"github.com/telhawk-systems/eventpipe/processor/internal/metrics"
)

// Enricher applies classification rules to an envelope.
type Enricher interface {
	Classify(ctx context.Context, env *models.Envelope) error
}

// ProcessedStore persists the processed record.
type ProcessedStore interface {
	InsertProcessedEvent(ctx context.Context, env *models.Envelope) error
}

// CacheWriter mirrors the processed envelope into the fast-path cache.
type CacheWriter interface {
	Store(ctx context.Context, key string, env *models.Envelope) error
}

// Consumer handles queue deliveries one at a time (the durable consumer is
// configured with a single unacknowledged message in flight).
type Consumer struct {
	classifier Enricher
	store      ProcessedStore
	cache      CacheWriter
	logger     *logging.Logger

	startedAt time.Time
	processed atomic.Uint64
	failed    atomic.Uint64
}

// New wires the consumer. cache may be nil; the mirror write is skipped.
func New(classifier Enricher, store ProcessedStore, cacheWriter CacheWriter, logger *logging.Logger) *Consumer {
	if logger == nil {
		logger = logging.Default()
	}
	return &Consumer{
		classifier: classifier,
		store:      store,
		cache:      cacheWriter,
		logger:     logger,
		startedAt:  time.Now().UTC(),
	}
}

// Handle processes one delivery. A decode failure returns an error so the
// message stays unacknowledged and the broker redelivers it. Everything
// after a successful decode is a logical outcome recorded on the envelope;
// Handle returns nil and the message is acknowledged exactly once.
func (c *Consumer) Handle(ctx context.Context, msg *messaging.Message) error {
	var env models.Envelope
	if err := json.Unmarshal(msg.Data, &env); err != nil {
		metrics.DecodeErrors.Inc()
		c.logger.ErrorContext(ctx, "failed to decode queue payload",
			logging.Subject(msg.Subject), logging.Error(err))
		return fmt.Errorf("decode envelope: %w", err)
	}

	if msg.Deliveries > 1 {
		c.logger.WarnContext(ctx, "reprocessing redelivered envelope",
			logging.EventType(env.EventType),
			"deliveries", msg.Deliveries)
	}

	start := time.Now()
	c.process(ctx, &env)
	metrics.ProcessingDuration.Observe(time.Since(start).Seconds())

	return nil
}

// process transitions the envelope to a terminal status and persists it.
// Classification errors mark it failed; storage and cache errors are logged
// and swallowed, since the message is considered processed either way.
func (c *Consumer) process(ctx context.Context, env *models.Envelope) {
	env.MarkProcessed(time.Now())

	if err := c.classifier.Classify(ctx, env); err != nil {
		env.MarkFailed(err)
	}

	if err := c.store.InsertProcessedEvent(ctx, env); err != nil {
		metrics.StoreErrors.Inc()
		c.logger.ErrorContext(ctx, "failed to persist processed record",
			logging.EventType(env.EventType),
			logging.Status(string(env.Status)),
			logging.Error(err))
	}

	if c.cache != nil {
		if err := c.cache.Store(ctx, cache.ProcessedKey(), env); err != nil {
			metrics.CacheErrors.Inc()
			c.logger.WarnContext(ctx, "cache update failed",
				logging.EventType(env.EventType), logging.Error(err))
		}
	}

	if env.Status == models.StatusFailed {
		c.failed.Add(1)
		metrics.EventsProcessed.WithLabelValues("failed").Inc()
	} else {
		c.processed.Add(1)
		metrics.EventsProcessed.WithLabelValues("processed").Inc()
	}

	c.logger.InfoContext(ctx, "event processed",
		logging.EventType(env.EventType),
		logging.Severity(string(env.Severity)),
		logging.Status(string(env.Status)))
}

// Stats is a snapshot of consumer telemetry.
type Stats struct {
	UptimeSeconds int64  `json:"uptime_seconds"`
	Processed     uint64 `json:"processed"`
	Failed        uint64 `json:"failed"`
}

// Stats returns live counters for health checks.
func (c *Consumer) Stats() Stats {
	return Stats{
		UptimeSeconds: int64(time.Since(c.startedAt).Seconds()),
		Processed:     c.processed.Load(),
		Failed:        c.failed.Load(),
	}
}
