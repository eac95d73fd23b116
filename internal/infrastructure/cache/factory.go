package cache

import (
	"github.com/qbic/datamanager/internal/domain/shared"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// NewIdempotencyStore returns a Redis backed store when a client is given,
// otherwise an in-memory one. The in-memory store does not share state
// between server instances.
func NewIdempotencyStore(client *redis.Client, keyPrefix string, logger *zap.Logger) shared.IdempotencyStore {
	if client != nil {
		logger.Info("using redis idempotency store", zap.String("prefix", keyPrefix))
		return NewRedisIdempotencyStore(client, keyPrefix)
	}
	logger.Warn("using in-memory idempotency store, duplicates are only detected per instance")
	return NewInMemoryIdempotencyStore()
}

// NewOrganisationCache returns a Redis backed organisation cache in front of
// the bounded in-memory one when a client is given
func NewOrganisationCache(client *redis.Client, opts OrganisationCacheOptions, logger *zap.Logger) OrganisationCache {
	local := NewInMemoryOrganisationCache(opts.LocalSize)
	if client == nil {
		return local
	}
	return NewTieredOrganisationCache(local, NewRedisOrganisationCache(client, opts.TTL), logger)
}
