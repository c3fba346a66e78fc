// Package cache keeps recently read items close to the HTTP layer.
// Writes always go to storage first; the cache entry for an item is dropped on every
// mutation so a stale entry can live at most one TTL when a delete fails.
package cache

import (
	"context"
	"errors"

	"swap_store/internal/models"

	"github.com/google/uuid"
)

// ErrMiss is returned by Get when the item is not cached.
var ErrMiss = errors.New("cache: miss")

// ItemCache caches items by id.
type ItemCache interface {
	Get(ctx context.Context, id uuid.UUID) (*models.Item, error)
	Set(ctx context.Context, item *models.Item) error
	Delete(ctx context.Context, ids ...uuid.UUID) error
}

// Nop is an ItemCache that caches nothing.
type Nop struct{}

// Get always misses.
func (Nop) Get(context.Context, uuid.UUID) (*models.Item, error) { return nil, ErrMiss }

// Set does nothing.
func (Nop) Set(context.Context, *models.Item) error { return nil }

// Delete does nothing.
func (Nop) Delete(context.Context, ...uuid.UUID) error { return nil }
