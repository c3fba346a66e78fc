// Package service contains HTTP handler implementations for the swap store API endpoints.
// It orchestrates request parsing, calls the underlying business logic in the app package,
// converts failures into structured error responses and writes JSON responses.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"swap_store/internal/app"
	"swap_store/internal/models"
	"swap_store/internal/pkg/apperr"
	"swap_store/internal/pkg/auth"
	"swap_store/internal/pkg/logger"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// handlers aggregates dependencies needed by HTTP handlers,
// including the application business logic and logger.
type handlers struct {
	app            *app.App
	log            *logger.Logger
	requestTimeout time.Duration
}

// newHandlers initializes a new handlers instance with the provided app and logger dependencies.
func newHandlers(app *app.App, requestTimeout time.Duration, l *logger.Logger) *handlers {
	return &handlers{app: app, log: l, requestTimeout: requestTimeout}
}

// createItemHandler lists a new item owned by the caller.
func (handlers *handlers) createItemHandler(res http.ResponseWriter, req *http.Request) {
	ctx, cancel := context.WithTimeout(req.Context(), handlers.requestTimeout)
	defer cancel()

	actor, ok := auth.ActorFrom(req.Context())
	if !ok {
		writeErrorResponse(res, "unauthorized", http.StatusUnauthorized)
		return
	}

	var createRequest models.CreateItemRequest
	if !readJSON(res, req, &createRequest) {
		return
	}

	item, err := handlers.app.CreateItem(ctx, actor, createRequest)
	if err != nil {
		handlers.writeAppError(res, req, err)
		return
	}
	writeJSON(res, http.StatusCreated, item)
}

// getItemHandler returns an item with similar items and counts a view for non-owners.
func (handlers *handlers) getItemHandler(res http.ResponseWriter, req *http.Request) {
	ctx, cancel := context.WithTimeout(req.Context(), handlers.requestTimeout)
	defer cancel()

	id, ok := urlID(res, req, "id")
	if !ok {
		return
	}

	var viewer *uuid.UUID
	if actor, ok := auth.ActorFrom(req.Context()); ok {
		viewer = &actor.ID
	}

	detail, err := handlers.app.GetItemDetail(ctx, id, viewer)
	if err != nil {
		handlers.writeAppError(res, req, err)
		return
	}
	writeJSON(res, http.StatusOK, detail)
}

// updateItemHandler applies a partial update to an item.
func (handlers *handlers) updateItemHandler(res http.ResponseWriter, req *http.Request) {
	ctx, cancel := context.WithTimeout(req.Context(), handlers.requestTimeout)
	defer cancel()

	actor, ok := auth.ActorFrom(req.Context())
	if !ok {
		writeErrorResponse(res, "unauthorized", http.StatusUnauthorized)
		return
	}
	id, ok := urlID(res, req, "id")
	if !ok {
		return
	}

	var patch models.UpdateItemRequest
	if !readJSON(res, req, &patch) {
		return
	}

	item, err := handlers.app.UpdateItem(ctx, actor, id, patch)
	if err != nil {
		handlers.writeAppError(res, req, err)
		return
	}
	writeJSON(res, http.StatusOK, item)
}

// deleteItemHandler removes an item.
func (handlers *handlers) deleteItemHandler(res http.ResponseWriter, req *http.Request) {
	ctx, cancel := context.WithTimeout(req.Context(), handlers.requestTimeout)
	defer cancel()

	actor, ok := auth.ActorFrom(req.Context())
	if !ok {
		writeErrorResponse(res, "unauthorized", http.StatusUnauthorized)
		return
	}
	id, ok := urlID(res, req, "id")
	if !ok {
		return
	}

	if err := handlers.app.DeleteItem(ctx, actor, id); err != nil {
		handlers.writeAppError(res, req, err)
		return
	}
	res.WriteHeader(http.StatusNoContent)
}

// favoriteHandler toggles the item in the caller's favorites.
func (handlers *handlers) favoriteHandler(res http.ResponseWriter, req *http.Request) {
	ctx, cancel := context.WithTimeout(req.Context(), handlers.requestTimeout)
	defer cancel()

	actor, ok := auth.ActorFrom(req.Context())
	if !ok {
		writeErrorResponse(res, "unauthorized", http.StatusUnauthorized)
		return
	}
	id, ok := urlID(res, req, "id")
	if !ok {
		return
	}

	favorite, err := handlers.app.ToggleFavorite(ctx, actor, id)
	if err != nil {
		handlers.writeAppError(res, req, err)
		return
	}
	writeJSON(res, http.StatusOK, favorite)
}

// listItemsHandler returns one page of available items matching the query string.
func (handlers *handlers) listItemsHandler(res http.ResponseWriter, req *http.Request) {
	ctx, cancel := context.WithTimeout(req.Context(), handlers.requestTimeout)
	defer cancel()

	query, err := parseItemQuery(req)
	if err != nil {
		handlers.writeAppError(res, req, err)
		return
	}

	page, err := handlers.app.ListItems(ctx, query)
	if err != nil {
		handlers.writeAppError(res, req, err)
		return
	}

	projected, err := app.Project(page.Items, query.Fields)
	if err != nil {
		handlers.writeAppError(res, req, err)
		return
	}
	writeJSON(res, http.StatusOK, models.ItemsResponse{
		Results:    len(projected),
		TotalItems: page.Total,
		Page:       page.Page,
		Items:      projected,
	})
}

// categoryHandler returns the newest items of a category and its statistics.
func (handlers *handlers) categoryHandler(res http.ResponseWriter, req *http.Request) {
	ctx, cancel := context.WithTimeout(req.Context(), handlers.requestTimeout)
	defer cancel()

	category := models.Category(chi.URLParam(req, "category"))
	view, err := handlers.app.CategoryView(ctx, category)
	if err != nil {
		handlers.writeAppError(res, req, err)
		return
	}
	writeJSON(res, http.StatusOK, view)
}

// myItemsHandler returns every item the caller owns.
func (handlers *handlers) myItemsHandler(res http.ResponseWriter, req *http.Request) {
	ctx, cancel := context.WithTimeout(req.Context(), handlers.requestTimeout)
	defer cancel()

	actor, ok := auth.ActorFrom(req.Context())
	if !ok {
		writeErrorResponse(res, "unauthorized", http.StatusUnauthorized)
		return
	}

	items, err := handlers.app.MyItems(ctx, actor)
	if err != nil {
		handlers.writeAppError(res, req, err)
		return
	}
	writeItems(res, items)
}

// favoritesHandler returns the caller's favorite items.
func (handlers *handlers) favoritesHandler(res http.ResponseWriter, req *http.Request) {
	ctx, cancel := context.WithTimeout(req.Context(), handlers.requestTimeout)
	defer cancel()

	actor, ok := auth.ActorFrom(req.Context())
	if !ok {
		writeErrorResponse(res, "unauthorized", http.StatusUnauthorized)
		return
	}

	items, err := handlers.app.Favorites(ctx, actor)
	if err != nil {
		handlers.writeAppError(res, req, err)
		return
	}
	writeItems(res, items)
}

// itemStatsHandler returns the admin catalogue breakdown.
func (handlers *handlers) itemStatsHandler(res http.ResponseWriter, req *http.Request) {
	ctx, cancel := context.WithTimeout(req.Context(), handlers.requestTimeout)
	defer cancel()

	actor, _ := auth.ActorFrom(req.Context())
	stats, err := handlers.app.ItemStats(ctx, actor)
	if err != nil {
		handlers.writeAppError(res, req, err)
		return
	}
	writeJSON(res, http.StatusOK, stats)
}

// parseItemQuery reads listing options from the query string.
func parseItemQuery(req *http.Request) (models.ItemQuery, error) {
	values := req.URL.Query()
	query := models.ItemQuery{
		Filter: models.ItemFilter{
			Search:    values.Get("search"),
			Category:  models.Category(values.Get("category")),
			Size:      models.Size(values.Get("size")),
			Condition: models.Condition(values.Get("condition")),
			City:      values.Get("city"),
			State:     values.Get("state"),
		},
		Sort: models.SortKey(values.Get("sort")),
	}

	var err error
	if query.Filter.MinPoints, err = optionalInt(values.Get("minPoints"), "minPoints"); err != nil {
		return query, err
	}
	if query.Filter.MaxPoints, err = optionalInt(values.Get("maxPoints"), "maxPoints"); err != nil {
		return query, err
	}
	if page, err := optionalInt(values.Get("page"), "page"); err != nil {
		return query, err
	} else if page != nil {
		query.Page = *page
	}
	if limit, err := optionalInt(values.Get("limit"), "limit"); err != nil {
		return query, err
	} else if limit != nil {
		query.PageSize = *limit
	}
	if fields := values.Get("fields"); fields != "" {
		query.Fields = strings.Split(fields, ",")
	}
	return query, nil
}

func optionalInt(raw, name string) (*int, error) {
	if raw == "" {
		return nil, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return nil, apperr.Validation("%s must be an integer", name)
	}
	return &value, nil
}

// urlID parses the uuid URL parameter name, writing a 400 response when it is malformed.
func urlID(res http.ResponseWriter, req *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(req, name))
	if err != nil {
		writeErrorResponse(res, "invalid id: "+chi.URLParam(req, name), http.StatusBadRequest)
		return uuid.Nil, false
	}
	return id, true
}

// readJSON decodes the request body into v, writing a 400 response on failure.
func readJSON(res http.ResponseWriter, req *http.Request, v any) bool {
	requestBody, err := io.ReadAll(req.Body)
	if err != nil {
		writeErrorResponse(res, err.Error(), http.StatusBadRequest)
		return false
	}
	if len(requestBody) == 0 {
		requestBody = []byte("{}")
	}
	if err = json.Unmarshal(requestBody, v); err != nil {
		writeErrorResponse(res, err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}

func writeItems(res http.ResponseWriter, items []models.Item) {
	projected, _ := app.Project(items, nil)
	writeJSON(res, http.StatusOK, models.ItemsResponse{
		Results:    len(projected),
		TotalItems: len(projected),
		Items:      projected,
	})
}

func writeJSON(res http.ResponseWriter, statusCode int, v any) {
	result, err := json.Marshal(v)
	if err != nil {
		writeErrorResponse(res, err.Error(), http.StatusInternalServerError)
		return
	}

	res.Header().Set("Content-Type", "application/json")
	res.WriteHeader(statusCode)
	res.Write(result)
}

// writeAppError converts err into a structured error response using its kind.
// Unclassified errors are logged and reported as 500.
func (handlers *handlers) writeAppError(res http.ResponseWriter, req *http.Request, err error) {
	statusCode := apperr.HTTPStatus(err)
	kind := apperr.KindOf(err)

	message := err.Error()
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		message = appErr.Message
	}

	if kind == "" {
		handlers.log.Error("request failed",
			zap.String("request_id", middleware.GetReqID(req.Context())),
			zap.String("method", req.Method),
			zap.String("uri", req.URL.Path),
			zap.Error(err))
	}

	res.Header().Set("Content-Type", "application/json")
	res.WriteHeader(statusCode)
	json.NewEncoder(res).Encode(models.ErrorResponse{Errors: message, Kind: string(kind), Code: statusCode})
}

func writeErrorResponse(res http.ResponseWriter, errorInfo string, statusCode int) {
	res.Header().Set("Content-Type", "application/json")
	res.WriteHeader(statusCode)
	json.NewEncoder(res).Encode(models.ErrorResponse{Errors: errorInfo, Code: statusCode})
}
