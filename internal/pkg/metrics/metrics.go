// Package metrics exposes Prometheus metrics for swap transitions and HTTP traffic.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"swap_store/internal/pkg/logger"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const namespace = "swap_store"

// Transition outcomes.
const (
	OutcomeSuccess  = "success"
	OutcomeRejected = "rejected"
	OutcomeError    = "error"
)

// Metrics holds the store's Prometheus collectors on a private registry.
type Metrics struct {
	Registry           *prometheus.Registry
	SwapTransitions    *prometheus.CounterVec
	ItemsCreated       prometheus.Counter
	RequestsExpired    prometheus.Counter
	HTTPRequestLatency *prometheus.HistogramVec
}

// New creates and registers the collectors.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	swapTransitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "swap_transitions_total",
		Help:      "Swap-request transitions by name and outcome.",
	}, []string{"transition", "outcome"})
	itemsCreated := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "items_created_total",
		Help:      "Items listed.",
	})
	requestsExpired := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "swap_requests_expired_total",
		Help:      "Pending swap requests declined by the expiry sweep.",
	})
	httpRequestLatency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "Latency of HTTP requests by route.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route", "status"})

	registry.MustRegister(
		swapTransitions,
		itemsCreated,
		requestsExpired,
		httpRequestLatency,
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
	)

	return &Metrics{
		Registry:           registry,
		SwapTransitions:    swapTransitions,
		ItemsCreated:       itemsCreated,
		RequestsExpired:    requestsExpired,
		HTTPRequestLatency: httpRequestLatency,
	}
}

// ObserveTransition counts one attempted transition. Client-side failures count as rejected.
func (m *Metrics) ObserveTransition(transition string, err error, clientError func(error) bool) {
	outcome := OutcomeSuccess
	switch {
	case err == nil:
	case clientError(err):
		outcome = OutcomeRejected
	default:
		outcome = OutcomeError
	}
	m.SwapTransitions.WithLabelValues(transition, outcome).Inc()
}

// Middleware records the latency of every request under its chi route pattern.
func (m *Metrics) Middleware() func(h http.Handler) http.Handler {
	return func(h http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			defer func() {
				route := "unmatched"
				if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
					route = rctx.RoutePattern()
				}
				m.HTTPRequestLatency.
					WithLabelValues(r.Method, route, strconv.Itoa(ww.Status())).
					Observe(time.Since(start).Seconds())
			}()
			h.ServeHTTP(ww, r)
		}
		return http.HandlerFunc(fn)
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

// StartServer serves /metrics on addr until ctx is cancelled. An empty addr disables it.
func (m *Metrics) StartServer(ctx context.Context, addr string, l *logger.Logger) error {
	if addr == "" {
		l.Info("Metrics server address not configured, server will not start")
		return nil
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	l.Info("Metrics server starting", zap.String("addr", addr), zap.String("path", "/metrics"))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
