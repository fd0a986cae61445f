package utils

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const defaultCacheTTL = time.Hour

// Cache wraps a Redis client with the small surface the analytics reads
// need. A nil *Cache (or nil client) is valid and behaves as a pass-through:
// every read misses, every write is a no-op. Service tests rely on that.
type Cache struct {
	rc  *redis.Client
	log *zap.SugaredLogger
	ttl time.Duration
}

// NewCache builds a cache with the given TTL for Set operations. ttl <= 0
// falls back to one hour.
func NewCache(rc *redis.Client, log *zap.SugaredLogger, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &Cache{rc: rc, log: log, ttl: ttl}
}

// GetJSON loads a cached value into v. Returns false on miss, error or when
// the cache is disabled.
func (c *Cache) GetJSON(key string, v interface{}) bool {
	if c == nil || c.rc == nil {
		return false
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	b, err := c.rc.Get(ctx, key).Bytes()
	if err != nil {
		if c.log != nil {
			c.log.Debugf("cache get miss key=%s err=%v", key, err)
		}
		return false
	}
	if err := json.Unmarshal(b, v); err != nil {
		if c.log != nil {
			c.log.Warnf("cache decode failed key=%s err=%v", key, err)
		}
		return false
	}
	return true
}

// SetJSON marshals v and stores it under key with the cache TTL.
func (c *Cache) SetJSON(key string, v interface{}) {
	if c == nil || c.rc == nil {
		return
	}
	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := c.rc.Set(ctx, key, b, c.ttl).Err(); err != nil && c.log != nil {
		c.log.Warnf("cache set failed key=%s err=%v", key, err)
	}
}

// InvalidateByPrefix deletes keys matching the prefix using SCAN.
func (c *Cache) InvalidateByPrefix(prefix string) {
	if c == nil || c.rc == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	var cursor uint64
	for i := 0; i < 10; i++ { // limit rounds to avoid long loops
		keys, cur, err := c.rc.Scan(ctx, cursor, prefix+"*", 1000).Result()
		if err != nil {
			break
		}
		cursor = cur
		if len(keys) > 0 {
			pipe := c.rc.Pipeline()
			for _, k := range keys {
				pipe.Del(ctx, k)
			}
			_, _ = pipe.Exec(ctx)
		}
		if cursor == 0 {
			break
		}
	}
}
