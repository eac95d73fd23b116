package shared

import (
	"context"
	"time"
)

// IdempotencyStore remembers keys that were handled: event ids for
// notification handlers, request ids for async project requests
type IdempotencyStore interface {
	// MarkProcessed is atomic. It returns false when key was already marked
	// and its ttl has not expired.
	MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error)
	IsProcessed(ctx context.Context, key string) (bool, error)
	Close() error
}

// IdempotencyConfig controls duplicate suppression of a handler
type IdempotencyConfig struct {
	TTL     time.Duration
	Enabled bool
}

// DefaultIdempotencyConfig suppresses duplicates for a day
func DefaultIdempotencyConfig() IdempotencyConfig {
	return IdempotencyConfig{TTL: 24 * time.Hour, Enabled: true}
}
