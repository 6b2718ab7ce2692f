package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const generationKey = "reports:generation"

// ReportCache stores serialized report results under a generation namespace.
// Callers resolve the generation once per request and pass it to Get and Set, so a
// result computed before an invalidation is never written where later reads look.
type ReportCache interface {
	// Generation returns the current namespace.
	Generation(ctx context.Context) (int64, error)
	// Get decodes a cached value into dest and reports whether it was present.
	Get(ctx context.Context, generation int64, key string, dest any) (bool, error)
	Set(ctx context.Context, generation int64, key string, value any) error
	// Invalidate makes every previously cached report unreachable.
	Invalidate(ctx context.Context) error
}

type redisReportCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisReportCache returns a cache whose keys are namespaced by a generation counter.
// Bumping the counter invalidates all reports without scanning keys; old entries expire via ttl.
func NewRedisReportCache(client *redis.Client, ttl time.Duration) ReportCache {
	return &redisReportCache{client: client, ttl: ttl}
}

func (c *redisReportCache) Generation(ctx context.Context) (int64, error) {
	gen, err := c.client.Get(ctx, generationKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

func (c *redisReportCache) Get(ctx context.Context, generation int64, key string, dest any) (bool, error) {
	raw, err := c.client.Get(ctx, Key(generation, key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false, fmt.Errorf("decode cached %s: %w", key, err)
	}
	return true, nil
}

func (c *redisReportCache) Set(ctx context.Context, generation int64, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return c.client.Set(ctx, Key(generation, key), raw, c.ttl).Err()
}

func (c *redisReportCache) Invalidate(ctx context.Context) error {
	return c.client.Incr(ctx, generationKey).Err()
}

// Key builds the namespaced redis key for a report at a generation.
func Key(generation int64, key string) string {
	return fmt.Sprintf("reports:%d:%s", generation, key)
}
