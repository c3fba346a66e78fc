package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"swap_store/internal/models"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const itemKeyPrefix = "item:"

// Redis stores items as JSON under item:<id> with a fixed TTL.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedis returns a Redis cache over client.
func NewRedis(client *redis.Client, ttl time.Duration) *Redis {
	return &Redis{client: client, ttl: ttl}
}

// Connect dials the Redis server at addr and verifies the connection with PING.
func Connect(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}
	return client, nil
}

func itemKey(id uuid.UUID) string {
	return itemKeyPrefix + id.String()
}

// Get returns the cached item or ErrMiss.
func (r *Redis) Get(ctx context.Context, id uuid.UUID) (*models.Item, error) {
	val, err := r.client.Get(ctx, itemKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrMiss
		}
		return nil, fmt.Errorf("failed to get item %s from redis: %w", id, err)
	}

	var item models.Item
	if err := json.Unmarshal(val, &item); err != nil {
		_ = r.Delete(ctx, id)
		return nil, fmt.Errorf("failed to unmarshal cached item %s: %w", id, err)
	}
	return &item, nil
}

// Set caches item for the configured TTL.
func (r *Redis) Set(ctx context.Context, item *models.Item) error {
	if item == nil {
		return errors.New("cannot cache a nil item")
	}
	data, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("failed to marshal item %s: %w", item.ID, err)
	}
	if err := r.client.Set(ctx, itemKey(item.ID), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set item %s to redis: %w", item.ID, err)
	}
	return nil
}

// Delete drops the given items from the cache.
func (r *Redis) Delete(ctx context.Context, ids ...uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = itemKey(id)
	}
	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to delete items from redis: %w", err)
	}
	return nil
}
