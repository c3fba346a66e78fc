package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"swap_store/internal/app"
	"swap_store/internal/cache"
	"swap_store/internal/config"
	"swap_store/internal/events"
	"swap_store/internal/pkg/logger"
	"swap_store/internal/pkg/metrics"
	"swap_store/internal/service"
	"swap_store/internal/storage"

	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	var l *logger.Logger
	if l, err = logger.CreateLogger(cfg.LogLevel); err != nil {
		log.Fatal("Failed to create logger:", err)
	}
	defer l.Sync()

	storage, err := storage.NewPostgreSQL(cfg.DatabaseURI, l)
	if err != nil {
		log.Fatal(err)
	}
	defer storage.Close()

	serverCtx, serverStopCtx := context.WithCancel(context.Background())

	m := metrics.New()
	opts := []app.Option{app.WithMetrics(m), app.WithSweepBatch(cfg.Sweep.BatchSize)}

	if cfg.Redis.Addr != "" {
		client, err := cache.Connect(serverCtx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Fatal(err)
		}
		defer client.Close()
		opts = append(opts, app.WithCache(cache.NewRedis(client, cfg.Redis.ItemTTL)))
	} else {
		l.Info("Redis address not configured, item cache disabled")
	}

	if cfg.NATS.URL != "" {
		publisher, err := events.NewNATS(cfg.NATS.URL, l)
		if err != nil {
			log.Fatal(err)
		}
		defer publisher.Close()
		opts = append(opts, app.WithPublisher(publisher))
	} else {
		l.Info("NATS URL not configured, swap events disabled")
	}

	if err := m.StartServer(serverCtx, cfg.MetricsAddress, l); err != nil {
		log.Fatal(err)
	}

	app := app.NewApp(storage, l, opts...)
	service := service.NewService(app, cfg.ServerRunAddress, []byte(cfg.JWTSecret), cfg.RequestTimeout, l)

	const readHeaderTimeout = 5 * time.Second
	server := &http.Server{Addr: cfg.ServerRunAddress, Handler: service.NewRouter(), ReadHeaderTimeout: readHeaderTimeout}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	go func() {
		<-sig

		const shutdownTimeout = 30 * time.Second
		shutdownCtx, cancel := context.WithTimeout(serverCtx, shutdownTimeout)
		defer cancel()

		go func() {
			<-shutdownCtx.Done()
			if errors.Is(shutdownCtx.Err(), context.DeadlineExceeded) {
				log.Fatal("graceful shutdown timed out.. forcing exit.")
			}
		}()

		err := server.Shutdown(shutdownCtx)
		if err != nil {
			log.Fatal(err)
		}
		serverStopCtx()
	}()

	l.Info("Starting server", zap.String("address", cfg.ServerRunAddress))
	err = server.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}

	<-serverCtx.Done()
}
