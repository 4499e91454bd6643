package bridgefee

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/pal9000i/arb-bot/internal/types"
)

// Cache is a TTL-bounded store for direction bridge-fee quotes, keyed by
// direction. The spec requires re-fetching stale quotes; Get reports a miss
// once a quote's freshness bound has elapsed, even on a backing store with
// no native expiry (NullCache).
type Cache interface {
	Get(ctx context.Context, dir types.Direction) (DirectionQuote, bool)
	Set(ctx context.Context, dir types.Direction, q DirectionQuote, ttl time.Duration)
}

// NullCache is an in-memory fallback used when REDIS_ADDR is unset. It
// exists so the bridge-fee client has a uniform Cache to call regardless of
// deployment, mirroring the stateless-process design note's allowance for
// connection pools as the only shared state.
type NullCache struct {
	mu      sync.Mutex
	entries map[types.Direction]cacheEntry
}

type cacheEntry struct {
	quote     DirectionQuote
	expiresAt time.Time
}

// NewNullCache builds an empty in-process cache.
func NewNullCache() *NullCache {
	return &NullCache{entries: make(map[types.Direction]cacheEntry)}
}

func (c *NullCache) Get(_ context.Context, dir types.Direction) (DirectionQuote, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[dir]
	if !ok || time.Now().After(e.expiresAt) {
		return DirectionQuote{}, false
	}
	return e.quote, true
}

func (c *NullCache) Set(_ context.Context, dir types.Direction, q DirectionQuote, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[dir] = cacheEntry{quote: q, expiresAt: time.Now().Add(ttl)}
}

// RedisCache persists bridge-fee quotes with Redis's native key expiry,
// adapted from the teacher's internal/connectors/redisfeed consumer/
// publisher construction pattern, repurposed here from pair-metadata
// streaming to a simple SETEX/GET quote cache.
type RedisCache struct {
	rdb    *redis.Client
	prefix string
}

// NewRedisCache dials a Redis instance for the bridge-fee quote cache.
func NewRedisCache(addr string) *RedisCache {
	return &RedisCache{
		rdb:    redis.NewClient(&redis.Options{Addr: addr}),
		prefix: "arb-quote:bridgefee:",
	}
}

type redisQuote struct {
	USD     float64 `json:"usd"`
	HasLegs bool    `json:"has_legs"`
}

func (c *RedisCache) key(dir types.Direction) string {
	return fmt.Sprintf("%s%d", c.prefix, dir)
}

func (c *RedisCache) Get(ctx context.Context, dir types.Direction) (DirectionQuote, bool) {
	raw, err := c.rdb.Get(ctx, c.key(dir)).Result()
	if err != nil {
		return DirectionQuote{}, false
	}
	var parsed redisQuote
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return DirectionQuote{}, false
	}
	return DirectionQuote{Direction: dir, USD: parsed.USD}, true
}

func (c *RedisCache) Set(ctx context.Context, dir types.Direction, q DirectionQuote, ttl time.Duration) {
	payload, err := json.Marshal(redisQuote{USD: q.USD})
	if err != nil {
		return
	}
	c.rdb.Set(ctx, c.key(dir), payload, ttl)
}
