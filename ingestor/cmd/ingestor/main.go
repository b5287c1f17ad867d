package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/telhawk-systems/eventpipe/common/cache"
	"github.com/telhawk-systems/eventpipe/common/logging"
	"github.com/telhawk-systems/eventpipe/common/messaging"
	natsclient "github.com/telhawk-systems/eventpipe/common/messaging/nats"
	"github.com/telhawk-systems/eventpipe/common/store"
	"github.com/telhawk-systems/eventpipe/ingestor/internal/config"
	"github.com/telhawk-systems/eventpipe/ingestor/internal/handlers"
	"github.com/telhawk-systems/eventpipe/ingestor/internal/server"
	"github.com/telhawk-systems/eventpipe/ingestor/internal/service"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := logging.New(
		logging.ParseLevel(cfg.Logging.Level),
		cfg.Logging.Format,
	).With(logging.Service("ingestor"))
	logging.SetDefault(logger)

	slog.Info("Starting ingestor service",
		slog.Int("port", cfg.Server.Port),
		slog.String("log_level", cfg.Logging.Level),
		slog.String("nats_url", cfg.NATS.URL),
		slog.String("redis_url", cfg.Redis.URL),
	)

	// Schema bootstrap; a no-op when already applied.
	dsn := cfg.Postgres.DSN()
	if err := store.Migrate(dsn); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	eventStore, err := store.New(ctx, dsn)
	cancel()
	if err != nil {
		log.Fatalf("Failed to connect to PostgreSQL: %v", err)
	}
	defer eventStore.Close()

	// The cache is best-effort; the service starts without it.
	var cacheWriter *cache.Writer
	if cw, err := cache.New(cfg.Redis.URL, cfg.Redis.CacheTTL); err != nil {
		slog.Warn("Fast-path cache unavailable, continuing without it", slog.String("error", err.Error()))
	} else {
		cacheWriter = cw
		defer cacheWriter.Close()
	}

	queue, err := natsclient.NewJetStreamClient(natsclient.Config{
		URL:           cfg.NATS.URL,
		Name:          "eventpipe-ingestor",
		MaxReconnects: cfg.NATS.MaxReconnects,
		ReconnectWait: cfg.NATS.ReconnectWait,
		Timeout:       5 * time.Second,
	})
	if err != nil {
		log.Fatalf("Failed to connect to NATS: %v", err)
	}
	defer queue.Close()

	ctx, cancel = context.WithTimeout(context.Background(), 30*time.Second)
	err = queue.EnsureEventQueue(ctx)
	cancel()
	if err != nil {
		log.Fatalf("Failed to declare event queue: %v", err)
	}

	var cw service.CacheWriter
	if cacheWriter != nil {
		cw = cacheWriter
	}
	ingestService := service.NewIngestService(queue, cw, eventStore, logger)

	checks := []handlers.ReadinessCheck{
		{Name: "queue", Check: func(ctx context.Context) error {
			if hs := messaging.CheckQueueHealth(queue); !hs.Connected {
				return errors.New(hs.Error)
			}
			return nil
		}},
		{Name: "database", Check: eventStore.Ping},
	}
	if cacheWriter != nil {
		checks = append(checks, handlers.ReadinessCheck{Name: "cache", Check: cacheWriter.Ping})
	}

	handler := handlers.NewEventHandler(ingestService, cfg.Ingestion.MaxEventSize, logger, checks...)
	router := server.NewRouter(handler)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		slog.Info("Ingestor service listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("Shutting down server...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.WriteTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	slog.Info("Server stopped")
}
