// Package cache provides a read-through Redis cache with TTLs and pattern
// invalidation. The cache is an optimization, never a correctness mechanism:
// every operation degrades to a no-op when Redis is unreachable.
package cache

import (
	"context"
	"crypto/md5"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/farmatrack/farmatrack-backend/pkg/config"
	"github.com/farmatrack/farmatrack-backend/pkg/logger"
)

// DefaultTTL is applied to list/item entries when the caller does not override it.
const DefaultTTL = 5 * time.Minute

// StatsTTL is applied to statistics entries, which tolerate less staleness.
const StatsTTL = time.Minute

// Cache wraps a Redis client. A nil inner client means Redis was unavailable
// at startup and all operations silently no-op.
type Cache struct {
	client *redis.Client
	logger *logger.Logger
}

// New connects to Redis. Connection failure is downgraded to a warning and a
// disabled cache rather than an error: the service stays correct without Redis.
func New(cfg *config.RedisConfig, log *logger.Logger) *Cache {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		log.Warn().Err(err).Str("addr", cfg.Addr).Msg("redis unavailable, cache disabled")
		client.Close()
		return &Cache{client: nil, logger: log}
	}

	log.Info().Str("addr", cfg.Addr).Msg("connected to redis")
	return &Cache{client: client, logger: log}
}

// NewWithClient wraps an existing client. Used by tests.
func NewWithClient(client *redis.Client, log *logger.Logger) *Cache {
	return &Cache{client: client, logger: log}
}

// Enabled reports whether a Redis connection is active.
func (c *Cache) Enabled() bool {
	return c != nil && c.client != nil
}

// Close releases the Redis connection.
func (c *Cache) Close() error {
	if !c.Enabled() {
		return nil
	}
	return c.client.Close()
}

// Health returns the health status of the cache
func (c *Cache) Health(ctx context.Context) map[string]string {
	if !c.Enabled() {
		return map[string]string{"status": "disabled"}
	}
	if err := c.client.Ping(ctx).Err(); err != nil {
		return map[string]string{"status": "down", "error": err.Error()}
	}
	return map[string]string{"status": "up"}
}

// Get reads a JSON value into dest. Returns false on miss or any error.
func (c *Cache) Get(ctx context.Context, key string, dest interface{}) bool {
	if !c.Enabled() {
		return false
	}

	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn().Err(err).Str("key", key).Msg("cache get failed")
		}
		return false
	}

	if err := json.Unmarshal(raw, dest); err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("cache entry corrupt, dropping")
		c.client.Del(ctx, key)
		return false
	}

	return true
}

// Set stores a JSON value with a TTL. Failures are logged and swallowed.
func (c *Cache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	if !c.Enabled() {
		return
	}

	raw, err := json.Marshal(value)
	if err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("cache set: marshal failed")
		return
	}

	if err := c.client.Set(ctx, key, raw, ttl).Err(); err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("cache set failed")
	}
}

// Delete removes a single key.
func (c *Cache) Delete(ctx context.Context, key string) {
	if !c.Enabled() {
		return
	}
	if err := c.client.Del(ctx, key).Err(); err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("cache delete failed")
	}
}

// InvalidatePattern deletes every key matching the pattern and returns the
// number of keys removed. Uses SCAN to avoid blocking Redis on large keyspaces.
func (c *Cache) InvalidatePattern(ctx context.Context, pattern string) int {
	if !c.Enabled() {
		return 0
	}

	deleted := 0
	iter := c.client.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err == nil {
			deleted++
		}
	}
	if err := iter.Err(); err != nil {
		c.logger.Warn().Err(err).Str("pattern", pattern).Msg("cache invalidation scan failed")
	}

	if deleted > 0 {
		c.logger.Debug().Str("pattern", pattern).Int("keys", deleted).Msg("cache invalidated")
	}
	return deleted
}

// InvalidateEntity removes every cache entry for an entity class ("lotes", "productos", ...).
func (c *Cache) InvalidateEntity(ctx context.Context, entity string) int {
	return c.InvalidatePattern(ctx, entity+":*")
}

// ListKey builds a cache key for a paginated list with filters. Filter values
// are hashed so the key stays short and opaque.
func ListKey(prefix string, skip, limit int, filters map[string]string) string {
	params := []string{fmt.Sprintf("%d", skip), fmt.Sprintf("%d", limit)}

	keys := make([]string, 0, len(filters))
	for k, v := range filters {
		if v != "" {
			keys = append(keys, k+"="+v)
		}
	}
	sort.Strings(keys)
	params = append(params, keys...)

	joined := ""
	for i, p := range params {
		if i > 0 {
			joined += ":"
		}
		joined += p
	}
	sum := md5.Sum([]byte(joined))
	return fmt.Sprintf("%s:list:%x", prefix, sum[:4])
}

// ItemKey builds a cache key for a single item.
func ItemKey(prefix string, id int64) string {
	return fmt.Sprintf("%s:%d", prefix, id)
}

// StatsKey builds a cache key for entity statistics.
func StatsKey(prefix string) string {
	return prefix + ":stats"
}
