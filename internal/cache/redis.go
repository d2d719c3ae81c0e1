// Package cache fronts data blob reads with Redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"example.com/lifetrack/internal/logger"
)

// DefaultTTL bounds how long a cached blob lives without being rewritten.
const DefaultTTL = 10 * time.Minute

// RedisCache stores blobs under lifetrack:data:<user>:<key>.
type RedisCache struct {
	rdb *goredis.Client
	ttl time.Duration
	log *logger.Logger
}

// NewRedisCache dials addr and pings it before returning.
func NewRedisCache(ctx context.Context, addr string, ttl time.Duration, log *logger.Logger) (*RedisCache, error) {
	if addr == "" {
		return nil, fmt.Errorf("missing redis address")
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &RedisCache{rdb: rdb, ttl: ttl, log: log.With("service", "RedisCache")}, nil
}

// Key is the Redis key of one blob.
func Key(userID int64, key string) string {
	return fmt.Sprintf("lifetrack:data:%d:%s", userID, key)
}

func (c *RedisCache) Get(ctx context.Context, userID int64, key string) (json.RawMessage, bool, error) {
	raw, err := c.rdb.Get(ctx, Key(userID, key)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return json.RawMessage(raw), true, nil
}

func (c *RedisCache) Set(ctx context.Context, userID int64, key string, value json.RawMessage) error {
	return c.rdb.Set(ctx, Key(userID, key), []byte(value), c.ttl).Err()
}

func (c *RedisCache) Delete(ctx context.Context, userID int64, key string) error {
	return c.rdb.Del(ctx, Key(userID, key)).Err()
}

func (c *RedisCache) Close() error {
	return c.rdb.Close()
}
