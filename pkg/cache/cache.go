package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrMiss is returned when a key is absent or caching is disabled.
var ErrMiss = errors.New("cache miss")

// Cache is a thin JSON wrapper around redis. A nil *Cache is valid and
// behaves as an always-miss cache, so callers never branch on whether
// caching is configured.
type Cache struct {
	conn *redis.Client
}

// New connects to redis at addr. An empty addr disables caching.
func New(addr string) *Cache {
	if addr == "" {
		return nil
	}
	return &Cache{conn: redis.NewClient(&redis.Options{Addr: addr})}
}

// GetJSON loads key into dest. Returns ErrMiss when absent.
func (c *Cache) GetJSON(ctx context.Context, key string, dest interface{}) error {
	if c == nil {
		return ErrMiss
	}
	raw, err := c.conn.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrMiss
		}
		return err
	}
	return json.Unmarshal([]byte(raw), dest)
}

// SetJSON stores value under key with a TTL.
func (c *Cache) SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if c == nil {
		return nil
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.conn.Set(ctx, key, raw, ttl).Err()
}

// Del removes keys. Invalidation failures are for the caller to log, not fail on.
func (c *Cache) Del(ctx context.Context, keys ...string) error {
	if c == nil {
		return nil
	}
	return c.conn.Del(ctx, keys...).Err()
}
