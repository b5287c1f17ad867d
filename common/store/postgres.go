// Package store persists envelopes to PostgreSQL. Two append-only tables:
// events holds the raw copy written synchronously at ingestion for critical
// and high severities; processed_events holds the enriched record written by
// the processor, with the full envelope serialized for forensic replay.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/telhawk-systems/eventpipe/common/models"
)

// Config holds PostgreSQL connection settings.
type Config struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Database string `mapstructure:"database"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	SSLMode  string `mapstructure:"sslmode"`
}

// DSN builds the PostgreSQL connection string.
func (c Config) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Database, c.SSLMode,
	)
}

// Store writes and aggregates durable event records.
type Store struct {
	pool *pgxpool.Pool
}

// New creates a Store backed by an explicit connection pool. Connections are
// recycled after five minutes and idle ones released after one minute.
func New(ctx context.Context, dsn string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	cfg.MaxConns = 25
	cfg.MinConns = 2
	cfg.MaxConnLifetime = 5 * time.Minute
	cfg.MaxConnIdleTime = 1 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Store{pool: pool}, nil
}

// InsertEvent appends the raw envelope to the events table. Used on the
// critical path at ingestion time.
func (s *Store) InsertEvent(ctx context.Context, env *models.Envelope) error {
	metadata, err := json.Marshal(orEmpty(env.Metadata))
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}

	query := `
		INSERT INTO events (event_type, source, severity, message, metadata, timestamp)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err = s.pool.Exec(ctx, query,
		env.EventType, env.Source, string(env.Severity), env.Message, metadata, env.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("failed to insert event: %w", err)
	}
	return nil
}

// InsertProcessedEvent appends the enriched envelope to processed_events,
// carrying both the original and processing timestamps plus the full
// envelope as a nested document.
func (s *Store) InsertProcessedEvent(ctx context.Context, env *models.Envelope) error {
	if env.ProcessedAt == nil {
		return fmt.Errorf("envelope has no processing timestamp")
	}

	envelope, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal envelope: %w", err)
	}

	query := `
		INSERT INTO processed_events
			(event_type, source, severity, message, envelope,
			 original_timestamp, processed_timestamp, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err = s.pool.Exec(ctx, query,
		env.EventType, env.Source, string(env.Severity), env.Message, envelope,
		env.Timestamp, *env.ProcessedAt, string(env.Status),
	)
	if err != nil {
		return fmt.Errorf("failed to insert processed event: %w", err)
	}
	return nil
}

// MetricRow is one group in the windowed aggregation.
type MetricRow struct {
	EventType string `json:"event_type"`
	Severity  string `json:"severity"`
	Total     int64  `json:"total_events"`
	Processed int64  `json:"processed"`
	Failed    int64  `json:"failed"`
}

// WindowedCounts aggregates processed_events rows newer than the window,
// grouped by event type and severity. Read-only.
func (s *Store) WindowedCounts(ctx context.Context, window time.Duration) ([]MetricRow, error) {
	cutoff := time.Now().UTC().Add(-window)

	query := `
		SELECT
			event_type,
			severity,
			COUNT(*) AS total_events,
			COUNT(*) FILTER (WHERE status = 'processed') AS processed,
			COUNT(*) FILTER (WHERE status = 'failed') AS failed
		FROM processed_events
		WHERE processed_timestamp > $1
		GROUP BY event_type, severity
		ORDER BY event_type, severity
	`
	rows, err := s.pool.Query(ctx, query, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to query metrics: %w", err)
	}
	defer rows.Close()

	metrics := []MetricRow{}
	for rows.Next() {
		var m MetricRow
		if err := rows.Scan(&m.EventType, &m.Severity, &m.Total, &m.Processed, &m.Failed); err != nil {
			return nil, fmt.Errorf("failed to scan metrics row: %w", err)
		}
		metrics = append(metrics, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read metrics rows: %w", err)
	}

	return metrics, nil
}

// Ping verifies the database connection for health checks.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close releases the connection pool.
func (s *Store) Close() {
	s.pool.Close()
}

func orEmpty(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	return m
}
