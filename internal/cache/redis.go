// Package cache wraps Redis for read-heavy aggregates like the
// leaderboard. The cache is best-effort: a missing or unreachable Redis
// degrades every call to a miss and callers fall back to the database.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"time"

	"github.com/greenprint-app/greenprint-backend/internal/logger"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

var ErrCacheMiss = errors.New("cache miss")

var client *redis.Client

// Initialize connects to Redis using REDIS_URL (or localhost:6379). A
// failed connection logs a warning and leaves the cache disabled.
func Initialize() {
	url := os.Getenv("REDIS_URL")
	if url == "" {
		url = "redis://localhost:6379/0"
	}

	opts, err := redis.ParseURL(url)
	if err != nil {
		logger.Log.Warn("invalid REDIS_URL, cache disabled", zap.Error(err))
		return
	}

	c := redis.NewClient(opts)
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := c.Ping(ctx).Err(); err != nil {
		logger.Log.Warn("redis unreachable, cache disabled", zap.Error(err))
		return
	}

	client = c
	logger.Log.Info("redis cache connected")
}

// Close shuts the Redis connection down
func Close() {
	if client != nil {
		_ = client.Close()
		client = nil
	}
}

// Enabled reports whether a Redis connection is live
func Enabled() bool {
	return client != nil
}

// GetJSON loads a cached value into dest, returning ErrCacheMiss when the
// key is absent or the cache is disabled.
func GetJSON(ctx context.Context, key string, dest interface{}) error {
	if client == nil {
		return ErrCacheMiss
	}
	raw, err := client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrCacheMiss
		}
		logger.Log.Warn("redis get failed", zap.String("key", key), zap.Error(err))
		return ErrCacheMiss
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return ErrCacheMiss
	}
	return nil
}

// SetJSON stores a value with a TTL, best-effort
func SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	if client == nil {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := client.Set(ctx, key, raw, ttl).Err(); err != nil {
		logger.Log.Warn("redis set failed", zap.String("key", key), zap.Error(err))
	}
}

// Delete drops keys, best-effort. Used to invalidate aggregates after
// writes that change them.
func Delete(ctx context.Context, keys ...string) {
	if client == nil || len(keys) == 0 {
		return
	}
	if err := client.Del(ctx, keys...).Err(); err != nil {
		logger.Log.Warn("redis delete failed", zap.Error(err))
	}
}
