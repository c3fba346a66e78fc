package app

import (
	"context"

	"swap_store/internal/ledger"
	"swap_store/internal/models"
	"swap_store/internal/pkg/apperr"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CategoryViewLimit is the number of newest items shown on a category page.
const CategoryViewLimit = 20

// CreateItem lists a new item owned by the actor.
func (app *App) CreateItem(ctx context.Context, actor models.Actor, req models.CreateItemRequest) (*models.Item, error) {
	if _, err := app.ensureUser(ctx, actor); err != nil {
		return nil, err
	}

	item, err := ledger.NewItem(actor.ID, req, app.now())
	if err != nil {
		return nil, err
	}
	if err := app.db.CreateItem(ctx, item); err != nil {
		return nil, err
	}

	app.metrics.ItemsCreated.Inc()
	app.log.Info("item listed",
		zap.String("item_id", item.ID.String()),
		zap.String("owner", actor.ID.String()),
		zap.Int("points_value", item.PointsValue))
	return item, nil
}

// GetItemDetail returns the item with up to six similar available items. A view is counted
// unless viewer is nil or owns the item.
func (app *App) GetItemDetail(ctx context.Context, id uuid.UUID, viewer *uuid.UUID) (*models.ItemDetail, error) {
	item, err := app.loadItem(ctx, id)
	if err != nil {
		return nil, err
	}

	if ledger.ShouldCountView(item, viewer) {
		item, err = app.db.RecordView(ctx, id, viewer)
		if err != nil {
			return nil, err
		}
		app.cacheItem(ctx, item)
	}

	similar, err := app.db.FindSimilar(ctx, item, ledger.SimilarLimit)
	if err != nil {
		return nil, err
	}
	if similar == nil {
		similar = []models.Item{}
	}
	return &models.ItemDetail{Item: item, SimilarItems: similar}, nil
}

// UpdateItem applies patch to the item on behalf of its owner or an admin.
func (app *App) UpdateItem(ctx context.Context, actor models.Actor, id uuid.UUID, patch models.UpdateItemRequest) (*models.Item, error) {
	item, err := app.db.UpdateItem(ctx, id, actor, patch, app.now())
	if err != nil {
		return nil, err
	}
	app.invalidate(ctx, id)
	return item, nil
}

// DeleteItem removes the item on behalf of its owner or an admin.
func (app *App) DeleteItem(ctx context.Context, actor models.Actor, id uuid.UUID) error {
	if err := app.db.DeleteItem(ctx, id, actor, app.now()); err != nil {
		return err
	}
	app.invalidate(ctx, id)
	app.log.Info("item deleted", zap.String("item_id", id.String()), zap.String("actor", actor.ID.String()))
	return nil
}

// ToggleFavorite adds the item to the actor's favorites or removes it.
func (app *App) ToggleFavorite(ctx context.Context, actor models.Actor, id uuid.UUID) (*models.FavoriteResponse, error) {
	if _, err := app.ensureUser(ctx, actor); err != nil {
		return nil, err
	}

	favorited, err := app.db.ToggleFavorite(ctx, actor.ID, id)
	if err != nil {
		return nil, err
	}
	app.invalidate(ctx, id)

	response := &models.FavoriteResponse{Action: models.FavoriteRemoved, Favorited: favorited}
	if favorited {
		response.Action = models.FavoriteAdded
	}
	return response, nil
}

// ListItems returns one page of available items matching query.
func (app *App) ListItems(ctx context.Context, query models.ItemQuery) (*models.ItemPage, error) {
	query, err := NormalizeQuery(query)
	if err != nil {
		return nil, err
	}
	query.Filter.Statuses = []models.ItemStatus{models.ItemAvailable}
	query.Filter.Owner = nil
	return app.db.ListItems(ctx, query)
}

// CategoryView returns the newest available items of a category with its statistics.
func (app *App) CategoryView(ctx context.Context, category models.Category) (*models.CategoryView, error) {
	if !category.Valid() {
		return nil, apperr.Validation("Invalid category: %s", category)
	}

	page, err := app.db.ListItems(ctx, models.ItemQuery{
		Filter:   models.ItemFilter{Category: category, Statuses: []models.ItemStatus{models.ItemAvailable}},
		Sort:     models.SortNewest,
		Page:     1,
		PageSize: CategoryViewLimit,
	})
	if err != nil {
		return nil, err
	}
	stats, err := app.db.CategoryStats(ctx, category)
	if err != nil {
		return nil, err
	}
	return &models.CategoryView{Items: page.Items, Stats: *stats}, nil
}

// MyItems returns every item the actor owns, whatever its status.
func (app *App) MyItems(ctx context.Context, actor models.Actor) ([]models.Item, error) {
	return app.db.ListUserItems(ctx, actor.ID)
}

// Favorites returns the items the actor has favorited.
func (app *App) Favorites(ctx context.Context, actor models.Actor) ([]models.Item, error) {
	return app.db.ListFavorites(ctx, actor.ID)
}

// ItemStats returns the catalogue breakdown by category and status. Admin only.
func (app *App) ItemStats(ctx context.Context, actor models.Actor) (*models.ItemStats, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	return app.db.ItemStats(ctx)
}
