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
	"github.com/telhawk-systems/eventpipe/common/notify"
	"github.com/telhawk-systems/eventpipe/common/store"
	"github.com/telhawk-systems/eventpipe/processor/internal/classifier"
	"github.com/telhawk-systems/eventpipe/processor/internal/config"
	"github.com/telhawk-systems/eventpipe/processor/internal/consumer"
	"github.com/telhawk-systems/eventpipe/processor/internal/handlers"
	"github.com/telhawk-systems/eventpipe/processor/internal/server"
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
	).With(logging.Service("processor"))
	logging.SetDefault(logger)

	slog.Info("Starting processor service",
		slog.Int("port", cfg.Server.Port),
		slog.String("log_level", cfg.Logging.Level),
		slog.String("nats_url", cfg.NATS.URL),
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

	// The processed-record mirror is best-effort; start without it if Redis is down.
	var cacheWriter *cache.Writer
	if cw, err := cache.New(cfg.Redis.URL, cfg.Redis.CacheTTL); err != nil {
		slog.Warn("Fast-path cache unavailable, continuing without it", slog.String("error", err.Error()))
	} else {
		cacheWriter = cw
		defer cacheWriter.Close()
	}

	queue, err := natsclient.NewJetStreamClient(natsclient.Config{
		URL:           cfg.NATS.URL,
		Name:          "eventpipe-processor",
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

	var notifier notify.Notifier
	if cfg.Notifier.WebhookURL != "" {
		notifier = notify.NewWebhookChannel(cfg.Notifier.WebhookURL, cfg.Notifier.Timeout)
		slog.Info("Security notifications via webhook", slog.String("url", cfg.Notifier.WebhookURL))
	} else {
		notifier = &notify.LogChannel{Logger: logger.Logger}
		slog.Info("No notification webhook configured, logging notifications only")
	}

	enricher := classifier.New(notifier, logger)

	var cw consumer.CacheWriter
	if cacheWriter != nil {
		cw = cacheWriter
	}
	cons := consumer.New(enricher, eventStore, cw, logger)

	stop, err := queue.Consume(context.Background(), cons.Handle)
	if err != nil {
		log.Fatalf("Failed to start consumer: %v", err)
	}
	defer stop()
	slog.Info("Event processor started, waiting for messages")

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

	handler := handlers.NewHandler(eventStore, cfg.Metrics.Window, cons.Stats, logger, checks...)
	router := server.NewRouter(handler)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		slog.Info("Processor service listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("Shutting down...")
	stop()
	if err := queue.Drain(); err != nil {
		slog.Warn("Failed to drain broker connection", slog.String("error", err.Error()))
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.WriteTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	slog.Info("Server stopped")
}
