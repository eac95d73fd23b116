// Package cache holds the Redis and in-memory caches: idempotency keys of
// events and async project requests, and resolved research organisations.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/qbic/datamanager/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// NewRedisClient connects to Redis and verifies the connection.
// It returns nil without error when Redis is disabled.
func NewRedisClient(ctx context.Context, cfg *config.RedisConfig, logger *zap.Logger) (*redis.Client, error) {
	if !cfg.Enabled {
		logger.Info("redis disabled, using in-memory caches")
		return nil, nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Addr(), err)
	}
	logger.Info("connected to redis", zap.String("addr", cfg.Addr()))
	return client, nil
}
