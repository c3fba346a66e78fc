// Command sweep declines every pending swap request past its expiry in one pass.
// It is meant to run periodically, for example from cron.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"swap_store/internal/app"
	"swap_store/internal/config"
	"swap_store/internal/events"
	"swap_store/internal/pkg/logger"
	"swap_store/internal/storage"

	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	l, err := logger.CreateLogger(cfg.LogLevel)
	if err != nil {
		log.Fatal("Failed to create logger:", err)
	}
	defer l.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	storage, err := storage.NewPostgreSQL(cfg.DatabaseURI, l)
	if err != nil {
		log.Fatal(err)
	}
	defer storage.Close()

	opts := []app.Option{app.WithSweepBatch(cfg.Sweep.BatchSize)}
	if cfg.NATS.URL != "" {
		publisher, err := events.NewNATS(cfg.NATS.URL, l)
		if err != nil {
			log.Fatal(err)
		}
		defer publisher.Close()
		opts = append(opts, app.WithPublisher(publisher))
	}

	result, err := app.NewApp(storage, l, opts...).SweepExpired(ctx, time.Now().UTC())
	if err != nil {
		l.Error("expiry sweep failed", zap.Error(err))
		os.Exit(1)
	}
	l.Info("expiry sweep done", zap.Int("expired", result.Expired), zap.Int("skipped", result.Skipped))
}
