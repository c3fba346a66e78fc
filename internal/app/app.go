// Package app provides the core business logic of the swap store.
// It validates requests, provisions users on first contact, and delegates every ledger
// change and swap transition to the storage layer, which runs them atomically. Around each
// operation it keeps the item cache coherent, publishes swap events and records metrics.
// Cache and event failures are logged and never fail the operation.
package app

import (
	"context"
	"errors"
	"time"

	"swap_store/internal/cache"
	"swap_store/internal/events"
	"swap_store/internal/models"
	"swap_store/internal/pkg/apperr"
	"swap_store/internal/pkg/logger"
	"swap_store/internal/pkg/metrics"
	"swap_store/internal/storage"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultSweepBatch is the number of expired requests loaded per sweep round.
const DefaultSweepBatch = 100

// App encapsulates the application logic and dependencies required to process requests.
type App struct {
	db         storage.Storage  // Persistent ledgers and swap requests.
	cache      cache.ItemCache  // Read-through cache of items by id.
	events     events.Publisher // Swap event sink.
	metrics    *metrics.Metrics // Transition counters.
	log        *logger.Logger   // Logger for application events and errors.
	now        func() time.Time // Clock; replaced in tests.
	sweepBatch int
}

// Option configures an App.
type Option func(*App)

// WithCache sets the item cache.
func WithCache(c cache.ItemCache) Option {
	return func(app *App) { app.cache = c }
}

// WithPublisher sets the event publisher.
func WithPublisher(p events.Publisher) Option {
	return func(app *App) { app.events = p }
}

// WithMetrics sets the metrics collectors.
func WithMetrics(m *metrics.Metrics) Option {
	return func(app *App) { app.metrics = m }
}

// WithClock sets the time source.
func WithClock(now func() time.Time) Option {
	return func(app *App) { app.now = now }
}

// WithSweepBatch sets how many expired requests one sweep round loads.
func WithSweepBatch(n int) Option {
	return func(app *App) {
		if n > 0 {
			app.sweepBatch = n
		}
	}
}

// NewApp creates an App over db. Without options it uses no cache, discards events and
// records metrics on a private registry.
func NewApp(db storage.Storage, log *logger.Logger, opts ...Option) *App {
	app := &App{
		db:         db,
		cache:      cache.Nop{},
		events:     events.Nop{},
		log:        log,
		now:        func() time.Time { return time.Now().UTC() },
		sweepBatch: DefaultSweepBatch,
	}
	for _, opt := range opts {
		opt(app)
	}
	if app.metrics == nil {
		app.metrics = metrics.New()
	}
	return app
}

// Metrics returns the collectors the App records to.
func (app *App) Metrics() *metrics.Metrics {
	return app.metrics
}

// ensureUser provisions the actor on first contact.
func (app *App) ensureUser(ctx context.Context, actor models.Actor) (*models.User, error) {
	if actor.ID == uuid.Nil {
		return nil, apperr.Validation("user id is required")
	}
	return app.db.EnsureUser(ctx, actor.ID, actor.Role, app.now())
}

// loadItem returns the item by id, reading through the cache.
func (app *App) loadItem(ctx context.Context, id uuid.UUID) (*models.Item, error) {
	item, err := app.cache.Get(ctx, id)
	if err == nil {
		return item, nil
	}
	if !errors.Is(err, cache.ErrMiss) {
		app.log.Warn("item cache read failed", zap.String("item_id", id.String()), zap.Error(err))
	}

	item, err = app.db.GetItem(ctx, id)
	if err != nil {
		return nil, err
	}
	app.cacheItem(ctx, item)
	return item, nil
}

func (app *App) cacheItem(ctx context.Context, item *models.Item) {
	if err := app.cache.Set(ctx, item); err != nil {
		app.log.Warn("item cache write failed", zap.String("item_id", item.ID.String()), zap.Error(err))
	}
}

func (app *App) invalidate(ctx context.Context, ids ...uuid.UUID) {
	if err := app.cache.Delete(ctx, ids...); err != nil {
		app.log.Warn("item cache invalidation failed", zap.Error(err))
	}
}

func (app *App) publish(ctx context.Context, subject string, request *models.SwapRequest) {
	if err := app.events.Publish(ctx, subject, events.NewSwapEvent(request)); err != nil {
		app.log.Warn("failed to publish swap event",
			zap.String("subject", subject),
			zap.String("request_id", request.ID.String()),
			zap.Error(err))
	}
}

func (app *App) observe(transition string, err error) {
	app.metrics.ObserveTransition(transition, err, isClientError)
}

// isClientError reports whether err belongs to the error taxonomy rather than the
// infrastructure.
func isClientError(err error) bool {
	return apperr.KindOf(err) != ""
}

func requireAdmin(actor models.Actor) error {
	if !actor.IsAdmin() {
		return apperr.Permission("admin role required")
	}
	return nil
}
