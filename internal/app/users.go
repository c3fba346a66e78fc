package app

import (
	"context"

	"swap_store/internal/ledger"
	"swap_store/internal/models"
	"swap_store/internal/pkg/apperr"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Profile returns the actor's balance, level, statistics and swap counts by status.
func (app *App) Profile(ctx context.Context, actor models.Actor) (*models.UserProfile, error) {
	user, err := app.ensureUser(ctx, actor)
	if err != nil {
		return nil, err
	}
	stats, err := app.db.UserSwapStats(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	return &models.UserProfile{User: user, Level: ledger.LevelFor(user.Points), SwapStats: stats}, nil
}

// AdjustPoints credits (positive amount) or debits (negative amount) a user. Admin only.
func (app *App) AdjustPoints(ctx context.Context, actor models.Actor, userID uuid.UUID, in models.AdjustPointsRequest) (*models.User, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if in.Amount == 0 {
		return nil, apperr.Validation("amount must not be zero")
	}

	user, err := app.db.AdjustPoints(ctx, userID, in.Amount, app.now())
	if err != nil {
		return nil, err
	}
	app.log.Info("points adjusted",
		zap.String("user_id", userID.String()),
		zap.String("actor", actor.ID.String()),
		zap.Int("amount", in.Amount),
		zap.String("reason", in.Reason))
	return user, nil
}
