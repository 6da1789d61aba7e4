// Package cache provides an optional redis-backed replay cache for split
// results. The worker stays fully functional without it.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"loopcut/config"
)

// RedisClient is the process-wide redis client, nil when caching is
// disabled.
var RedisClient *redis.Client

// Connect initializes the redis connection when REDIS_ADDR is configured.
func Connect(cfg *config.Config) error {
	if cfg.RedisAddr == "" {
		return nil
	}

	RedisClient = redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := RedisClient.Ping(ctx).Result(); err != nil {
		RedisClient = nil
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return nil
}

// Close closes the redis connection if one was opened.
func Close() error {
	if RedisClient != nil {
		return RedisClient.Close()
	}
	return nil
}
