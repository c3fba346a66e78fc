package service

import (
	"context"
	"net/http"

	"swap_store/internal/models"
	"swap_store/internal/pkg/auth"
)

// profileHandler returns the caller's balance, level and statistics.
func (handlers *handlers) profileHandler(res http.ResponseWriter, req *http.Request) {
	ctx, cancel := context.WithTimeout(req.Context(), handlers.requestTimeout)
	defer cancel()

	actor, ok := auth.ActorFrom(req.Context())
	if !ok {
		writeErrorResponse(res, "unauthorized", http.StatusUnauthorized)
		return
	}

	profile, err := handlers.app.Profile(ctx, actor)
	if err != nil {
		handlers.writeAppError(res, req, err)
		return
	}
	writeJSON(res, http.StatusOK, profile)
}

// adjustPointsHandler credits or debits a user on behalf of an admin.
func (handlers *handlers) adjustPointsHandler(res http.ResponseWriter, req *http.Request) {
	ctx, cancel := context.WithTimeout(req.Context(), handlers.requestTimeout)
	defer cancel()

	actor, _ := auth.ActorFrom(req.Context())
	userID, ok := urlID(res, req, "id")
	if !ok {
		return
	}

	var adjustRequest models.AdjustPointsRequest
	if !readJSON(res, req, &adjustRequest) {
		return
	}

	user, err := handlers.app.AdjustPoints(ctx, actor, userID, adjustRequest)
	if err != nil {
		handlers.writeAppError(res, req, err)
		return
	}
	writeJSON(res, http.StatusOK, user)
}
