package cache

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	dom "github.com/seriessoft-design/spinlist-mobile-app/internal/domain"

	"github.com/redis/go-redis/v9"
)

const keyListPrefix = "lists:owner:"

// ListCache caches the per-owner listing in Redis. It is invalidated on every
// write; a miss just falls through to Postgres.
type ListCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewListCache returns a new ListCache.
func NewListCache(rdb *redis.Client, ttl time.Duration) *ListCache {
	return &ListCache{rdb: rdb, ttl: ttl}
}

func listKey(ownerID int64) string {
	return keyListPrefix + strconv.FormatInt(ownerID, 10)
}

// GetList returns the cached listing or nil on miss.
func (c *ListCache) GetList(ctx context.Context, ownerID int64) ([]dom.List, error) {
	b, err := c.rdb.Get(ctx, listKey(ownerID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var list []dom.List
	if err := json.Unmarshal(b, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// SetList stores the listing.
func (c *ListCache) SetList(ctx context.Context, ownerID int64, list []dom.List) error {
	b, err := json.Marshal(list)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, listKey(ownerID), b, c.ttl).Err()
}

// Invalidate drops the owner's cached listing (cache invalidation on write).
func (c *ListCache) Invalidate(ctx context.Context, ownerID int64) error {
	return c.rdb.Del(ctx, listKey(ownerID)).Err()
}
