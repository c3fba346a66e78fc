// Package storage persists the item ledger, the user points ledger and swap requests.
// It defines the Storage interface with a PostgreSQL implementation, used by cmd/store and
// cmd/sweep, and an in-memory implementation that backs the package and handler tests only.
// Every swap transition runs as one atomic unit: the records it touches are loaded under
// lock, the swap state machine is applied to them and the result is written back with a
// compare-and-swap on the status.
package storage

import (
	"context"
	"time"

	"swap_store/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

//go:generate mockgen -source=storage.go -destination=mocks/mock_storage.go -package=mocks

// Storage defines the methods required for data storage operations.
type Storage interface {
	// Close releases the underlying resources.
	Close()

	// User methods.
	EnsureUser(ctx context.Context, id uuid.UUID, role models.Role, now time.Time) (*models.User, error)
	GetUser(ctx context.Context, id uuid.UUID) (*models.User, error)
	AdjustPoints(ctx context.Context, id uuid.UUID, amount int, now time.Time) (*models.User, error)
	UserSwapStats(ctx context.Context, id uuid.UUID) (models.SwapStats, error)

	// Item ledger methods.
	CreateItem(ctx context.Context, item *models.Item) error
	GetItem(ctx context.Context, id uuid.UUID) (*models.Item, error)
	UpdateItem(ctx context.Context, id uuid.UUID, actor models.Actor, patch models.UpdateItemRequest, now time.Time) (*models.Item, error)
	DeleteItem(ctx context.Context, id uuid.UUID, actor models.Actor, now time.Time) error
	RecordView(ctx context.Context, id uuid.UUID, viewer *uuid.UUID) (*models.Item, error)
	FindSimilar(ctx context.Context, item *models.Item, limit int) ([]models.Item, error)
	ToggleFavorite(ctx context.Context, userID, itemID uuid.UUID) (bool, error)

	// Listing methods.
	ListItems(ctx context.Context, query models.ItemQuery) (*models.ItemPage, error)
	ListUserItems(ctx context.Context, owner uuid.UUID) ([]models.Item, error)
	ListFavorites(ctx context.Context, userID uuid.UUID) ([]models.Item, error)
	CategoryStats(ctx context.Context, category models.Category) (*models.CategoryStats, error)
	ItemStats(ctx context.Context) (*models.ItemStats, error)

	// Swap request methods.
	CreateSwapRequest(ctx context.Context, requester uuid.UUID, itemID uuid.UUID, in models.CreateSwapRequest, now time.Time) (*models.SwapRequest, error)
	GetSwapRequest(ctx context.Context, id uuid.UUID) (*models.SwapRequest, error)
	ListSwapRequests(ctx context.Context, userID uuid.UUID, direction models.Direction) ([]models.SwapRequest, error)
	RespondSwapRequest(ctx context.Context, id, actor uuid.UUID, in models.RespondRequest, now time.Time) (*Transition, error)
	CancelSwapRequest(ctx context.Context, id, actor uuid.UUID, now time.Time) (*models.SwapRequest, error)
	CompleteSwapRequest(ctx context.Context, id, actor uuid.UUID, in models.CompleteRequest, now time.Time) (*models.SwapRequest, error)
	ExpireSwapRequest(ctx context.Context, id uuid.UUID, now time.Time) (*models.SwapRequest, error)
	FindExpired(ctx context.Context, now time.Time, limit int) ([]models.SwapRequest, error)
}

// Transition is the outcome of responding to a swap request.
// Cascaded holds the other pending requests declined because the item was promised.
type Transition struct {
	Request  *models.SwapRequest
	Cascaded []models.SwapRequest
}

// average returns total/count rounded to two decimal places, or zero for an empty set.
func average(total, count int) float64 {
	if count == 0 {
		return 0
	}
	return decimal.NewFromInt(int64(total)).Div(decimal.NewFromInt(int64(count))).Round(2).InexactFloat64()
}
