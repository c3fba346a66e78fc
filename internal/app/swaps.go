package app

import (
	"context"
	"fmt"
	"time"

	"swap_store/internal/events"
	"swap_store/internal/models"
	"swap_store/internal/pkg/apperr"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Transition names recorded in metrics.
const (
	transitionCreate   = "create"
	transitionAccept   = "accept"
	transitionDecline  = "decline"
	transitionCancel   = "cancel"
	transitionComplete = "complete"
	transitionExpire   = "expire"
)

// CreateSwapRequest proposes a swap for the item on behalf of the actor.
func (app *App) CreateSwapRequest(ctx context.Context, actor models.Actor, itemID uuid.UUID, in models.CreateSwapRequest) (*models.SwapRequest, error) {
	if _, err := app.ensureUser(ctx, actor); err != nil {
		return nil, err
	}

	request, err := app.db.CreateSwapRequest(ctx, actor.ID, itemID, in, app.now())
	app.observe(transitionCreate, err)
	if err != nil {
		return nil, err
	}

	app.log.Info("swap request created",
		zap.String("request_id", request.ID.String()),
		zap.String("actor", actor.ID.String()),
		zap.String("swap_type", string(request.SwapType)))
	app.publish(ctx, events.SubjectSwapCreated, request)
	return request, nil
}

// RespondSwapRequest accepts or declines a pending request on behalf of the item owner.
// Accepting declines every other pending request for the same item.
func (app *App) RespondSwapRequest(ctx context.Context, actor models.Actor, id uuid.UUID, in models.RespondRequest) (*models.SwapRequest, error) {
	name := transitionDecline
	subject := events.SubjectSwapDeclined
	switch in.Action {
	case models.ActionAccept:
		name, subject = transitionAccept, events.SubjectSwapAccepted
	case models.ActionDecline:
	default:
		return nil, apperr.Validation("action must be one of: accept, decline")
	}

	transition, err := app.db.RespondSwapRequest(ctx, id, actor.ID, in, app.now())
	app.observe(name, err)
	if err != nil {
		return nil, err
	}

	request := transition.Request
	app.invalidate(ctx, requestItems(request)...)
	app.log.Info("swap request answered",
		zap.String("request_id", request.ID.String()),
		zap.String("actor", actor.ID.String()),
		zap.String("status", string(request.Status)),
		zap.Int("cascaded", len(transition.Cascaded)))
	app.publish(ctx, subject, request)
	for i := range transition.Cascaded {
		app.publish(ctx, events.SubjectSwapDeclined, &transition.Cascaded[i])
	}
	return request, nil
}

// CancelSwapRequest withdraws a pending request on behalf of its requester.
func (app *App) CancelSwapRequest(ctx context.Context, actor models.Actor, id uuid.UUID) (*models.SwapRequest, error) {
	request, err := app.db.CancelSwapRequest(ctx, id, actor.ID, app.now())
	app.observe(transitionCancel, err)
	if err != nil {
		return nil, err
	}

	app.invalidate(ctx, requestItems(request)...)
	app.log.Info("swap request cancelled", zap.String("request_id", request.ID.String()), zap.String("actor", actor.ID.String()))
	app.publish(ctx, events.SubjectSwapCancelled, request)
	return request, nil
}

// CompleteSwapRequest finishes an accepted swap: items change hands, points move for
// points swaps and the other party optionally receives a rating.
func (app *App) CompleteSwapRequest(ctx context.Context, actor models.Actor, id uuid.UUID, in models.CompleteRequest) (*models.SwapRequest, error) {
	request, err := app.db.CompleteSwapRequest(ctx, id, actor.ID, in, app.now())
	app.observe(transitionComplete, err)
	if err != nil {
		return nil, err
	}

	app.invalidate(ctx, requestItems(request)...)
	app.log.Info("swap completed",
		zap.String("request_id", request.ID.String()),
		zap.String("actor", actor.ID.String()),
		zap.Int("rating", in.Rating))
	app.publish(ctx, events.SubjectSwapCompleted, request)
	return request, nil
}

// ListSwapRequests returns the actor's received or sent requests tagged with the direction.
// Received lists only pending and accepted requests; sent lists every status.
func (app *App) ListSwapRequests(ctx context.Context, actor models.Actor, direction models.Direction) ([]models.SwapRequestView, error) {
	if direction != models.DirectionReceived && direction != models.DirectionSent {
		return nil, apperr.Validation("Invalid direction: %s", direction)
	}

	requests, err := app.db.ListSwapRequests(ctx, actor.ID, direction)
	if err != nil {
		return nil, err
	}
	views := make([]models.SwapRequestView, 0, len(requests))
	for _, request := range requests {
		views = append(views, models.SwapRequestView{SwapRequest: request, Direction: direction})
	}
	return views, nil
}

// ListExpired returns pending requests past their expiry. Admin only.
func (app *App) ListExpired(ctx context.Context, actor models.Actor) ([]models.SwapRequest, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	return app.db.FindExpired(ctx, app.now(), 0)
}

// SweepExpired declines every pending request whose expiry is before now. Requests that
// another transition resolved first are counted as skipped.
func (app *App) SweepExpired(ctx context.Context, now time.Time) (*models.SweepResult, error) {
	result := &models.SweepResult{}
	seen := make(map[uuid.UUID]bool)

	for {
		batch, err := app.db.FindExpired(ctx, now, app.sweepBatch)
		if err != nil {
			return result, fmt.Errorf("failed to find expired swap requests: %w", err)
		}

		progressed := false
		for i := range batch {
			id := batch[i].ID
			if seen[id] {
				continue
			}
			seen[id] = true
			progressed = true

			request, err := app.db.ExpireSwapRequest(ctx, id, now)
			app.observe(transitionExpire, err)
			switch {
			case err == nil:
				result.Expired++
				app.metrics.RequestsExpired.Inc()
				app.invalidate(ctx, requestItems(request)...)
				app.publish(ctx, events.SubjectSwapExpired, request)
			case apperr.KindOf(err) == apperr.KindConflict || apperr.KindOf(err) == apperr.KindNotFound:
				result.Skipped++
			default:
				return result, fmt.Errorf("failed to expire swap request %s: %w", id, err)
			}
		}

		if !progressed || len(batch) < app.sweepBatch {
			break
		}
	}

	app.log.Info("expiry sweep finished", zap.Int("expired", result.Expired), zap.Int("skipped", result.Skipped))
	return result, nil
}

// SweepExpiredAs runs SweepExpired at the current time on behalf of an admin.
func (app *App) SweepExpiredAs(ctx context.Context, actor models.Actor) (*models.SweepResult, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	return app.SweepExpired(ctx, app.now())
}

// requestItems returns the ids of the items a request names.
func requestItems(request *models.SwapRequest) []uuid.UUID {
	ids := []uuid.UUID{request.RequestedItem}
	if request.OfferedItem != nil {
		ids = append(ids, *request.OfferedItem)
	}
	return ids
}
