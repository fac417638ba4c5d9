package ads

import (
	"context"
	"strconv"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const actionKeyPrefix = "ads:actions:"

// Counter is the per-user action tally. Redis in production, a map in tests.
type Counter interface {
	Incr(ctx context.Context, key string) (int64, error)
	Reset(ctx context.Context, key string) error
}

// RedisCounter counts in Redis so the tally survives restarts and is shared
// across instances.
type RedisCounter struct {
	rdb *redis.Client
}

func NewRedisCounter(rdb *redis.Client) *RedisCounter { return &RedisCounter{rdb: rdb} }

func (c *RedisCounter) Incr(ctx context.Context, key string) (int64, error) {
	return c.rdb.Incr(ctx, key).Result()
}

func (c *RedisCounter) Reset(ctx context.Context, key string) error {
	return c.rdb.Del(ctx, key).Err()
}

// Gate decides when a free-tier user has earned an interstitial: every Nth
// tracked action. All state lives in the injected counter, keyed per user;
// there are no package globals.
type Gate struct {
	counter   Counter
	provider  Provider
	frequency int
	log       zerolog.Logger
}

// NewGate returns a Gate. frequency is how many actions buy one interstitial.
func NewGate(counter Counter, provider Provider, frequency int, log zerolog.Logger) *Gate {
	if frequency < 1 {
		frequency = 5
	}
	return &Gate{counter: counter, provider: provider, frequency: frequency, log: log}
}

// Interstitial holds what the client needs to show a prepared full-screen ad.
type Interstitial struct {
	Unit string
}

// TrackAction records one user action and reports whether the client should
// show an interstitial now. Pro users are exempt and never counted. The
// counter resets whenever the frequency is hit, whether or not the provider
// came back with an ad: a failed show attempt still spends the window.
// Counter and provider failures are logged and swallowed; ads are best-effort
// and must never break the action that triggered them.
func (g *Gate) TrackAction(ctx context.Context, userID int64, isPro bool) (Interstitial, bool) {
	if isPro {
		return Interstitial{}, false
	}
	key := actionKeyPrefix + strconv.FormatInt(userID, 10)
	n, err := g.counter.Incr(ctx, key)
	if err != nil {
		g.log.Warn().Err(err).Int64("user_id", userID).Msg("ad action counter unavailable")
		return Interstitial{}, false
	}
	if n < int64(g.frequency) {
		return Interstitial{}, false
	}
	if err := g.counter.Reset(ctx, key); err != nil {
		g.log.Warn().Err(err).Int64("user_id", userID).Msg("ad action counter reset failed")
	}
	unit, err := g.provider.Interstitial(ctx)
	if err != nil {
		g.log.Debug().Err(err).Msg("interstitial not available")
		return Interstitial{}, false
	}
	return Interstitial{Unit: unit}, true
}
