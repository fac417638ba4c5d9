package cache

import (
	"context"
	"strconv"

	"github.com/redis/go-redis/v9"
)

const changeChannelPrefix = "lists:changed:"

// Events fans list mutations out to watchers over Redis pub/sub. Every write
// publishes the owner's channel; the SSE watch endpoint subscribes to it and
// re-reads the listing on each message.
type Events struct {
	rdb *redis.Client
}

// NewEvents returns a new Events hub.
func NewEvents(rdb *redis.Client) *Events {
	return &Events{rdb: rdb}
}

func changeChannel(ownerID int64) string {
	return changeChannelPrefix + strconv.FormatInt(ownerID, 10)
}

// ListsChanged signals that the owner's lists changed in some way.
func (e *Events) ListsChanged(ctx context.Context, ownerID int64) {
	// Best-effort: a watcher that misses a ping re-syncs on its next one.
	_ = e.rdb.Publish(ctx, changeChannel(ownerID), "1").Err()
}

// Subscribe opens a subscription for one owner. The caller must Close it when
// the watcher goes away, or the connection leaks.
func (e *Events) Subscribe(ctx context.Context, ownerID int64) *redis.PubSub {
	return e.rdb.Subscribe(ctx, changeChannel(ownerID))
}
