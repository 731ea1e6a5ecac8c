package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"NewsDesk/internal/config"
	"NewsDesk/internal/ports"
)

const (
	keyPrefix  = "newsdesk:seen:"
	defaultTTL = 72 * time.Hour
)

// SeenCache remembers recently stored article links in Redis.
type SeenCache struct {
	rdb redis.Cmdable
	ttl time.Duration
}

var _ ports.SeenCache = (*SeenCache)(nil)

// NewRedisClient connects to the configured Redis and verifies it answers.
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis %s: %w", cfg.Addr, err)
	}
	return rdb, nil
}

// NewSeenCache wraps rdb; a non-positive ttl falls back to 72h.
func NewSeenCache(rdb redis.Cmdable, ttl time.Duration) *SeenCache {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &SeenCache{rdb: rdb, ttl: ttl}
}

func key(link string) string {
	sum := sha1.Sum([]byte(link))
	return keyPrefix + hex.EncodeToString(sum[:])
}

// Seen reports whether link was remembered and has not expired.
func (c *SeenCache) Seen(ctx context.Context, link string) (bool, error) {
	n, err := c.rdb.Exists(ctx, key(link)).Result()
	if err != nil {
		return false, fmt.Errorf("redis exists: %w", err)
	}
	return n > 0, nil
}

// Remember marks link as stored for the cache TTL.
func (c *SeenCache) Remember(ctx context.Context, link string) error {
	if err := c.rdb.Set(ctx, key(link), 1, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Forget evicts links, used when their articles are deleted.
func (c *SeenCache) Forget(ctx context.Context, links ...string) error {
	if len(links) == 0 {
		return nil
	}
	keys := make([]string, len(links))
	for i, l := range links {
		keys[i] = key(l)
	}
	if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}
