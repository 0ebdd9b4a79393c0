package recommend

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"coursefit-backend/internal/shared/telemetry"
)

const defaultCacheTTL = 10 * time.Minute

// Cache memoizes recommendation responses in Redis. It sits outside
// the pipeline itself: every cache failure is logged and treated as a
// miss, and writes are best effort.
type Cache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewCache(rdb *redis.Client, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &Cache{rdb: rdb, ttl: ttl}
}

func (c *Cache) Get(ctx context.Context, req Request) (Response, bool) {
	if c == nil || c.rdb == nil {
		return Response{}, false
	}
	raw, err := c.rdb.Get(ctx, cacheKey(req)).Result()
	if err != nil {
		if err != redis.Nil {
			telemetry.Warn("recommend cache read failed", map[string]any{"err": err.Error()})
		}
		return Response{}, false
	}
	var resp Response
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		telemetry.Warn("recommend cache decode failed", map[string]any{"err": err.Error()})
		return Response{}, false
	}
	return resp, true
}

func (c *Cache) Set(ctx context.Context, req Request, resp Response) {
	if c == nil || c.rdb == nil {
		return
	}
	payload, err := json.Marshal(resp)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, cacheKey(req), payload, c.ttl).Err(); err != nil {
		telemetry.Warn("recommend cache write failed", map[string]any{"err": err.Error()})
	}
}

func cacheKey(req Request) string {
	sum := sha256.Sum256([]byte(strings.Join([]string{req.Course, req.Grade, req.TargetType}, "|")))
	return "recommend:" + hex.EncodeToString(sum[:])
}
