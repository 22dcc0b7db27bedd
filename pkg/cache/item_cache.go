package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// ItemCacheTTL is the time-to-live for cached items.
	ItemCacheTTL = 24 * time.Hour

	itemCacheKeyPrefix = "item"
)

// CachedItem is the denormalized read model stored in Redis. It carries the
// populated assignee and tag relations so a cache hit never touches Postgres.
type CachedItem struct {
	ID               int64         `json:"id"`
	Version          int64         `json:"version"`
	Description      string        `json:"description"`
	Status           string        `json:"status"`
	AssigneeID       *int64        `json:"assignee_id,omitempty"`
	Assignee         *CachedPerson `json:"assignee,omitempty"`
	Tags             []CachedTag   `json:"tags,omitempty"`
	CreatedDate      time.Time     `json:"created_date"`
	LastModifiedDate time.Time     `json:"last_modified_date"`
}

// CachedPerson is the assignee as embedded in a CachedItem.
type CachedPerson struct {
	ID        int64  `json:"id"`
	Version   int64  `json:"version"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// CachedTag is a tag as embedded in a CachedItem.
type CachedTag struct {
	ID      int64  `json:"id"`
	Version int64  `json:"version"`
	Name    string `json:"name"`
}

// ItemCache provides structured read/write operations for item cache entries.
// Entries are stored as JSON values under "item:{id}" with a 24-hour TTL.
type ItemCache struct {
	client *RedisClient
}

// NewItemCache creates a new ItemCache backed by the given RedisClient.
func NewItemCache(r *RedisClient) *ItemCache {
	return &ItemCache{client: r}
}

// Get retrieves a cached item by ID.
// Returns redis.Nil error when the key does not exist or has expired.
func (c *ItemCache) Get(ctx context.Context, itemID int64) (*CachedItem, error) {
	raw, err := c.client.Client().Get(ctx, c.key(itemID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, redis.Nil
		}
		return nil, fmt.Errorf("cache get: %w", err)
	}

	var item CachedItem
	if err := json.Unmarshal(raw, &item); err != nil {
		return nil, fmt.Errorf("cache decode: %w", err)
	}
	return &item, nil
}

// Set writes a cached item as a JSON value with a 24-hour TTL.
func (c *ItemCache) Set(ctx context.Context, item *CachedItem) error {
	raw, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("cache encode: %w", err)
	}
	if err := c.client.Client().Set(ctx, c.key(item.ID), raw, ItemCacheTTL).Err(); err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}

// Delete removes a cached item.
func (c *ItemCache) Delete(ctx context.Context, itemID int64) error {
	if err := c.client.Client().Del(ctx, c.key(itemID)).Err(); err != nil {
		return fmt.Errorf("cache delete: %w", err)
	}
	return nil
}

// key builds the Redis key: "item:{id}"
func (c *ItemCache) key(itemID int64) string {
	return fmt.Sprintf("%s:%d", itemCacheKeyPrefix, itemID)
}
