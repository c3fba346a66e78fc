package service

import (
	"context"
	"net/http"

	"swap_store/internal/models"
	"swap_store/internal/pkg/auth"
)

// createSwapRequestHandler proposes a swap for the item in the URL.
func (handlers *handlers) createSwapRequestHandler(res http.ResponseWriter, req *http.Request) {
	ctx, cancel := context.WithTimeout(req.Context(), handlers.requestTimeout)
	defer cancel()

	actor, ok := auth.ActorFrom(req.Context())
	if !ok {
		writeErrorResponse(res, "unauthorized", http.StatusUnauthorized)
		return
	}
	itemID, ok := urlID(res, req, "id")
	if !ok {
		return
	}

	var createRequest models.CreateSwapRequest
	if !readJSON(res, req, &createRequest) {
		return
	}

	request, err := handlers.app.CreateSwapRequest(ctx, actor, itemID, createRequest)
	if err != nil {
		handlers.writeAppError(res, req, err)
		return
	}
	writeJSON(res, http.StatusCreated, request)
}

// listSwapRequestsHandler returns the caller's requests in one direction.
func (handlers *handlers) listSwapRequestsHandler(direction models.Direction) http.HandlerFunc {
	return func(res http.ResponseWriter, req *http.Request) {
		ctx, cancel := context.WithTimeout(req.Context(), handlers.requestTimeout)
		defer cancel()

		actor, ok := auth.ActorFrom(req.Context())
		if !ok {
			writeErrorResponse(res, "unauthorized", http.StatusUnauthorized)
			return
		}

		views, err := handlers.app.ListSwapRequests(ctx, actor, direction)
		if err != nil {
			handlers.writeAppError(res, req, err)
			return
		}
		writeJSON(res, http.StatusOK, models.SwapRequestsResponse{Results: len(views), SwapRequests: views})
	}
}

// respondSwapRequestHandler accepts or declines a pending request.
func (handlers *handlers) respondSwapRequestHandler(res http.ResponseWriter, req *http.Request) {
	ctx, cancel := context.WithTimeout(req.Context(), handlers.requestTimeout)
	defer cancel()

	actor, ok := auth.ActorFrom(req.Context())
	if !ok {
		writeErrorResponse(res, "unauthorized", http.StatusUnauthorized)
		return
	}
	id, ok := urlID(res, req, "requestId")
	if !ok {
		return
	}

	var respondRequest models.RespondRequest
	if !readJSON(res, req, &respondRequest) {
		return
	}

	request, err := handlers.app.RespondSwapRequest(ctx, actor, id, respondRequest)
	if err != nil {
		handlers.writeAppError(res, req, err)
		return
	}
	writeJSON(res, http.StatusOK, request)
}

// cancelSwapRequestHandler withdraws a pending request.
func (handlers *handlers) cancelSwapRequestHandler(res http.ResponseWriter, req *http.Request) {
	ctx, cancel := context.WithTimeout(req.Context(), handlers.requestTimeout)
	defer cancel()

	actor, ok := auth.ActorFrom(req.Context())
	if !ok {
		writeErrorResponse(res, "unauthorized", http.StatusUnauthorized)
		return
	}
	id, ok := urlID(res, req, "requestId")
	if !ok {
		return
	}

	request, err := handlers.app.CancelSwapRequest(ctx, actor, id)
	if err != nil {
		handlers.writeAppError(res, req, err)
		return
	}
	writeJSON(res, http.StatusOK, request)
}

// completeSwapRequestHandler finishes an accepted swap.
func (handlers *handlers) completeSwapRequestHandler(res http.ResponseWriter, req *http.Request) {
	ctx, cancel := context.WithTimeout(req.Context(), handlers.requestTimeout)
	defer cancel()

	actor, ok := auth.ActorFrom(req.Context())
	if !ok {
		writeErrorResponse(res, "unauthorized", http.StatusUnauthorized)
		return
	}
	id, ok := urlID(res, req, "requestId")
	if !ok {
		return
	}

	var completeRequest models.CompleteRequest
	if !readJSON(res, req, &completeRequest) {
		return
	}

	request, err := handlers.app.CompleteSwapRequest(ctx, actor, id, completeRequest)
	if err != nil {
		handlers.writeAppError(res, req, err)
		return
	}
	writeJSON(res, http.StatusOK, request)
}

// expiredHandler lists pending requests past their expiry.
func (handlers *handlers) expiredHandler(res http.ResponseWriter, req *http.Request) {
	ctx, cancel := context.WithTimeout(req.Context(), handlers.requestTimeout)
	defer cancel()

	actor, _ := auth.ActorFrom(req.Context())
	requests, err := handlers.app.ListExpired(ctx, actor)
	if err != nil {
		handlers.writeAppError(res, req, err)
		return
	}

	views := make([]models.SwapRequestView, 0, len(requests))
	for _, request := range requests {
		views = append(views, models.SwapRequestView{SwapRequest: request, Direction: models.DirectionReceived})
	}
	writeJSON(res, http.StatusOK, models.SwapRequestsResponse{Results: len(views), SwapRequests: views})
}

// sweepHandler runs one expiry sweep.
func (handlers *handlers) sweepHandler(res http.ResponseWriter, req *http.Request) {
	ctx, cancel := context.WithTimeout(req.Context(), handlers.requestTimeout)
	defer cancel()

	actor, _ := auth.ActorFrom(req.Context())
	result, err := handlers.app.SweepExpiredAs(ctx, actor)
	if err != nil {
		handlers.writeAppError(res, req, err)
		return
	}
	writeJSON(res, http.StatusOK, result)
}
