package persistence

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/contract-ledger/internal/config"
)

// Redis holds the client behind the report cache.
type Redis struct {
	Client *redis.Client
}

// NewRedis builds the report cache client, or returns nil when REDIS_ADDR is empty.
// An unreachable server is only logged, since reports fall back to direct queries.
func NewRedis(ctx context.Context, cfg config.RedisConfig, logger *zap.Logger) *Redis {
	if cfg.Addr == "" {
		logger.Info("REDIS_ADDR not provided; report cache disabled")
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("report cache unreachable", zap.String("addr", cfg.Addr), zap.Error(err))
	} else {
		logger.Info("report cache connected", zap.String("addr", cfg.Addr), zap.Int("db", cfg.DB))
	}

	return &Redis{Client: client}
}

// Close releases the report cache connection. It is safe on a nil receiver.
func (r *Redis) Close() {
	if r != nil && r.Client != nil {
		_ = r.Client.Close()
	}
}

// Ping reports whether the report cache is reachable.
func (r *Redis) Ping(ctx context.Context) error {
	if r == nil || r.Client == nil {
		return errors.New("report cache not configured")
	}
	return r.Client.Ping(ctx).Err()
}
