package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/qbic/datamanager/internal/infrastructure/auth"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func claimsFor(jti, userID string, issuedAt time.Time) *auth.Claims {
	return &auth.Claims{
		RegisteredClaims: jwt.RegisteredClaims{ID: jti, IssuedAt: jwt.NewNumericDate(issuedAt)},
		UserID:           userID,
	}
}

func TestRevocations(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	stores := map[string]auth.Revocations{
		"memory": auth.NewRevocations(nil),
		"redis":  auth.NewRevocations(client),
	}
	for name, store := range stores {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			earlier := time.Now().Add(-time.Hour)

			revoked, err := store.IsRevoked(ctx, claimsFor("jti-1", "user-1", earlier))
			require.NoError(t, err)
			assert.False(t, revoked)

			require.NoError(t, store.RevokeToken(ctx, "jti-1", time.Hour))
			revoked, err = store.IsRevoked(ctx, claimsFor("jti-1", "user-1", earlier))
			require.NoError(t, err)
			assert.True(t, revoked)

			revoked, err = store.IsRevoked(ctx, claimsFor("jti-2", "user-1", earlier))
			require.NoError(t, err)
			assert.False(t, revoked)

			require.NoError(t, store.RevokeSessions(ctx, "user-1", time.Hour))
			revoked, err = store.IsRevoked(ctx, claimsFor("jti-2", "user-1", earlier))
			require.NoError(t, err)
			assert.True(t, revoked, "issued before the revocation")

			revoked, err = store.IsRevoked(ctx, claimsFor("jti-3", "user-1", time.Now().Add(time.Minute)))
			require.NoError(t, err)
			assert.False(t, revoked, "issued after the revocation")

			revoked, err = store.IsRevoked(ctx, claimsFor("jti-2", "user-2", earlier))
			require.NoError(t, err)
			assert.False(t, revoked)
		})
	}
}

func TestRedisRevocations_Expire(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	store := auth.NewRedisRevocations(client)
	ctx := context.Background()

	require.NoError(t, store.RevokeToken(ctx, "jti-1", time.Minute))
	mr.FastForward(2 * time.Minute)

	revoked, err := store.IsRevoked(ctx, claimsFor("jti-1", "user-1", time.Now()))
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestMemoryRevocations_Expire(t *testing.T) {
	store := auth.NewMemoryRevocations()
	ctx := context.Background()

	require.NoError(t, store.RevokeToken(ctx, "jti-1", time.Millisecond))
	time.Sleep(10 * time.Millisecond)

	revoked, err := store.IsRevoked(ctx, claimsFor("jti-1", "user-1", time.Now()))
	require.NoError(t, err)
	assert.False(t, revoked)
}
