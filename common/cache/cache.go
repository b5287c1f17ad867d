// Package cache implements the fast-path event cache: a TTL-bound, keyed
// mirror of recent envelopes for low-latency lookup. It is a hint, never the
// source of truth; callers treat every write as best-effort.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/telhawk-systems/eventpipe/common/models"
)

// Key prefixes distinguish raw ingestion entries from post-processing entries.
const (
	EventKeyPrefix     = "event:"
	ProcessedKeyPrefix = "processed:"
)

// DefaultTTL bounds how long cache entries live, regardless of processing outcome.
const DefaultTTL = time.Hour

// EventKey returns a collision-resistant key for a raw ingestion entry.
func EventKey() string {
	return EventKeyPrefix + uuid.New().String()
}

// ProcessedKey returns a collision-resistant key for a processed entry.
func ProcessedKey() string {
	return ProcessedKeyPrefix + uuid.New().String()
}

// Writer stores envelopes as hash records with a TTL.
type Writer struct {
	client *redis.Client
	ttl    time.Duration
}

// New connects to Redis at the given URL and verifies the connection.
func New(redisURL string, ttl time.Duration) (*Writer, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}

	return NewWithClient(client, ttl), nil
}

// NewWithClient wraps an existing Redis client. Used by tests.
func NewWithClient(client *redis.Client, ttl time.Duration) *Writer {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Writer{client: client, ttl: ttl}
}

// Store writes the envelope under key as field-value pairs and sets the TTL.
func (w *Writer) Store(ctx context.Context, key string, env *models.Envelope) error {
	if err := w.client.HSet(ctx, key, env.CacheMap()).Err(); err != nil {
		return fmt.Errorf("cache write %s: %w", key, err)
	}
	if err := w.client.Expire(ctx, key, w.ttl).Err(); err != nil {
		return fmt.Errorf("cache expire %s: %w", key, err)
	}
	return nil
}

// Ping verifies the Redis connection for health checks.
func (w *Writer) Ping(ctx context.Context) error {
	return w.client.Ping(ctx).Err()
}

// Close releases the Redis connection.
func (w *Writer) Close() error {
	return w.client.Close()
}
