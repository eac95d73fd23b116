package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Revocations ends tokens before they expire. Single tokens are revoked on
// logout and refresh; all sessions of a user after a password reset.
type Revocations interface {
	RevokeToken(ctx context.Context, jti string, ttl time.Duration) error
	// RevokeSessions revokes every token of the user issued up to now
	RevokeSessions(ctx context.Context, userID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, claims *Claims) (bool, error)
}

// NewRevocations keeps revocations in Redis, or in process memory when no
// client is configured
func NewRevocations(client *redis.Client) Revocations {
	if client == nil {
		return NewMemoryRevocations()
	}
	return NewRedisRevocations(client)
}

const revocationPrefix = "dm:revoked:"

// RedisRevocations shares revocations between server instances
type RedisRevocations struct {
	client *redis.Client
}

var _ Revocations = (*RedisRevocations)(nil)

// NewRedisRevocations uses an existing client
func NewRedisRevocations(client *redis.Client) *RedisRevocations {
	return &RedisRevocations{client: client}
}

func tokenKey(jti string) string       { return revocationPrefix + "jti:" + jti }
func sessionsKey(userID string) string { return revocationPrefix + "user:" + userID }

func (r *RedisRevocations) RevokeToken(ctx context.Context, jti string, ttl time.Duration) error {
	if err := r.client.Set(ctx, tokenKey(jti), 1, ttl).Err(); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

func (r *RedisRevocations) RevokeSessions(ctx context.Context, userID string, ttl time.Duration) error {
	if err := r.client.Set(ctx, sessionsKey(userID), time.Now().Unix(), ttl).Err(); err != nil {
		return fmt.Errorf("revoke sessions of %s: %w", userID, err)
	}
	return nil
}

// IsRevoked checks the token and the sessions of its user in one round trip
func (r *RedisRevocations) IsRevoked(ctx context.Context, claims *Claims) (bool, error) {
	var exists *redis.IntCmd
	var since *redis.StringCmd
	_, err := r.client.Pipelined(ctx, func(p redis.Pipeliner) error {
		exists = p.Exists(ctx, tokenKey(claims.ID))
		since = p.Get(ctx, sessionsKey(claims.UserID))
		return nil
	})
	if err != nil && !errors.Is(err, redis.Nil) {
		return false, fmt.Errorf("check revocation: %w", err)
	}
	if exists.Val() > 0 {
		return true, nil
	}
	value, err := since.Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check revocation: %w", err)
	}
	revokedAt, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return false, fmt.Errorf("parse revocation time %q: %w", value, err)
	}
	return claims.IssuedAtTime().Unix() <= revokedAt, nil
}

// MemoryRevocations is local to one process
type MemoryRevocations struct {
	mu       sync.Mutex
	tokens   map[string]time.Time
	sessions map[string]time.Time
}

var _ Revocations = (*MemoryRevocations)(nil)

func NewMemoryRevocations() *MemoryRevocations {
	return &MemoryRevocations{
		tokens:   make(map[string]time.Time),
		sessions: make(map[string]time.Time),
	}
}

func (m *MemoryRevocations) RevokeToken(_ context.Context, jti string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	for id, until := range m.tokens {
		if now.After(until) {
			delete(m.tokens, id)
		}
	}
	m.tokens[jti] = now.Add(ttl)
	return nil
}

// RevokeSessions ignores ttl; entries live as long as the process
func (m *MemoryRevocations) RevokeSessions(_ context.Context, userID string, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[userID] = time.Now()
	return nil
}

func (m *MemoryRevocations) IsRevoked(_ context.Context, claims *Claims) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if until, ok := m.tokens[claims.ID]; ok && time.Now().Before(until) {
		return true, nil
	}
	since, ok := m.sessions[claims.UserID]
	return ok && !claims.IssuedAtTime().After(since), nil
}
