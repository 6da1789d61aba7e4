package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"loopcut/core/split"
	"loopcut/logger"
)

const resultKeyPrefix = "loopcut:split:"

// ResultCache replays published split results for identical requests, so a
// re-dispatched task skips the download/export/upload work entirely. All
// operations are best effort: a cache failure is logged and treated as a
// miss, never as a task failure.
type ResultCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewResultCache returns a cache over the shared redis client, or nil when
// redis is not connected.
func NewResultCache(ttl time.Duration) *ResultCache {
	if RedisClient == nil {
		return nil
	}
	return &ResultCache{client: RedisClient, ttl: ttl}
}

// RequestKey derives the cache key from the canonical JSON of the request.
func RequestKey(req *split.Request) string {
	raw, err := json.Marshal(req)
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(raw)
	return resultKeyPrefix + hex.EncodeToString(sum[:])
}

// Get returns the cached results for req, reporting a miss on any error.
func (c *ResultCache) Get(ctx context.Context, req *split.Request) ([]split.SegmentResult, bool) {
	key := RequestKey(req)
	if key == "" {
		return nil, false
	}

	opCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	data, err := c.client.Get(opCtx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			logger.Warn("result cache read failed",
				logger.String("key", key),
				logger.ErrorField(err))
		}
		return nil, false
	}

	var results []split.SegmentResult
	if err := json.Unmarshal(data, &results); err != nil {
		logger.Warn("result cache entry corrupt, ignoring",
			logger.String("key", key),
			logger.ErrorField(err))
		return nil, false
	}
	return results, true
}

// Put stores the results for req with the configured TTL.
func (c *ResultCache) Put(ctx context.Context, req *split.Request, results []split.SegmentResult) {
	key := RequestKey(req)
	if key == "" {
		return
	}

	data, err := json.Marshal(results)
	if err != nil {
		return
	}

	opCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := c.client.Set(opCtx, key, data, c.ttl).Err(); err != nil {
		logger.Warn("result cache write failed",
			logger.String("key", key),
			logger.ErrorField(err))
		return
	}
	logger.Debug("result cache updated",
		logger.String("key", key),
		logger.Int("segments", len(results)))
}
