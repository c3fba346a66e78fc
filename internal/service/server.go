package service

import (
	"time"

	"swap_store/internal/app"
	"swap_store/internal/models"
	"swap_store/internal/pkg/auth"
	"swap_store/internal/pkg/logger"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/chi/v5"
)

// Service encapsulates the HTTP server configuration, including the application's business logic,
// HTTP handlers, the server's run address, and a logger for event and error logging.
type Service struct {
	handlers   *handlers
	app        *app.App
	runAddress string
	jwtSecret  []byte
	log        *logger.Logger
}

// NewService creates and initializes a new Service instance.
// Handlers bound every request to requestTimeout; tokens are verified with jwtSecret.
func NewService(app *app.App, runAddress string, jwtSecret []byte, requestTimeout time.Duration, l *logger.Logger) *Service {
	handlers := newHandlers(app, requestTimeout, l)
	return &Service{handlers: handlers, app: app, runAddress: runAddress, jwtSecret: jwtSecret, log: l}
}

// NewRouter sets up and returns a new chi.Router instance with the necessary middleware and routes.
// Item reads accept anonymous callers; every other route requires a valid token and the admin
// routes additionally require the admin role.
func (service *Service) NewRouter() chi.Router {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(service.log.WithLogging())
	router.Use(service.app.Metrics().Middleware())

	router.Group(func(r chi.Router) {
		r.Use(auth.OptionalJWTMiddleware(service.jwtSecret))
		r.Get("/items", service.handlers.listItemsHandler)
		r.Get("/items/{id}", service.handlers.getItemHandler)
		r.Get("/items/category/{category}", service.handlers.categoryHandler)
	})

	router.Group(func(r chi.Router) {
		r.Use(auth.CheckJWTMiddleware(service.jwtSecret))

		r.Post("/items", service.handlers.createItemHandler)
		r.Patch("/items/{id}", service.handlers.updateItemHandler)
		r.Delete("/items/{id}", service.handlers.deleteItemHandler)
		r.Patch("/items/{id}/favorite", service.handlers.favoriteHandler)
		r.Post("/items/{id}/swap-request", service.handlers.createSwapRequestHandler)
		r.Get("/items/user/my-items", service.handlers.myItemsHandler)
		r.Get("/items/user/favorites", service.handlers.favoritesHandler)

		r.Get("/swap-requests/received", service.handlers.listSwapRequestsHandler(models.DirectionReceived))
		r.Get("/swap-requests/sent", service.handlers.listSwapRequestsHandler(models.DirectionSent))
		r.Patch("/swap-requests/{requestId}/respond", service.handlers.respondSwapRequestHandler)
		r.Patch("/swap-requests/{requestId}/cancel", service.handlers.cancelSwapRequestHandler)
		r.Patch("/swap-requests/{requestId}/complete", service.handlers.completeSwapRequestHandler)

		r.Get("/users/me", service.handlers.profileHandler)

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAdmin)
			r.Get("/items/admin/stats", service.handlers.itemStatsHandler)
			r.Get("/swap-requests/expired", service.handlers.expiredHandler)
			r.Post("/swap-requests/expired/sweep", service.handlers.sweepHandler)
			r.Patch("/users/{id}/points", service.handlers.adjustPointsHandler)
		})
	})
	return router
}
