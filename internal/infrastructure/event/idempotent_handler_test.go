package event

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/qbic/datamanager/internal/domain/shared"
	"github.com/qbic/datamanager/internal/infrastructure/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// MockIdempotencyStore is a mock implementation of shared.IdempotencyStore
type MockIdempotencyStore struct {
	mock.Mock
}

func (m *MockIdempotencyStore) MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, key, ttl)
	return args.Bool(0), args.Error(1)
}

func (m *MockIdempotencyStore) IsProcessed(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

func (m *MockIdempotencyStore) Close() error {
	return m.Called().Error(0)
}

func TestIdempotentHandler_Handle(t *testing.T) {
	config := shared.IdempotencyConfig{TTL: time.Hour, Enabled: true}

	t.Run("handles an event once", func(t *testing.T) {
		store := cache.NewInMemoryIdempotencyStore()
		defer store.Close()
		inner := newTestHandler("BatchRegistered")
		h := NewIdempotentHandler(inner, store, config, zap.NewNop())

		event := newTestEvent("BatchRegistered")
		require.NoError(t, h.Handle(context.Background(), event))
		require.NoError(t, h.Handle(context.Background(), event))

		assert.Len(t, inner.getHandled(), 1)
		processed, duplicates, failed := h.Stats()
		assert.Equal(t, int64(1), processed)
		assert.Equal(t, int64(1), duplicates)
		assert.Zero(t, failed)
		assert.Equal(t, []string{"BatchRegistered"}, h.EventTypes())
	})

	t.Run("store errors do not drop the event", func(t *testing.T) {
		store := new(MockIdempotencyStore)
		store.On("MarkProcessed", mock.Anything, mock.Anything, time.Hour).Return(false, errors.New("redis down"))
		inner := newTestHandler("BatchRegistered")
		h := NewIdempotentHandler(inner, store, config, zap.NewNop())

		require.NoError(t, h.Handle(context.Background(), newTestEvent("BatchRegistered")))
		assert.Len(t, inner.getHandled(), 1)
		store.AssertExpectations(t)
	})

	t.Run("handler errors are returned and counted", func(t *testing.T) {
		store := cache.NewInMemoryIdempotencyStore()
		defer store.Close()
		inner := newTestHandler("BatchRegistered")
		inner.err = errors.New("smtp unavailable")
		h := NewIdempotentHandler(inner, store, config, zap.NewNop())

		err := h.Handle(context.Background(), newTestEvent("BatchRegistered"))
		assert.EqualError(t, err, "smtp unavailable")
		_, _, failed := h.Stats()
		assert.Equal(t, int64(1), failed)
	})

	t.Run("disabled checking passes through", func(t *testing.T) {
		store := new(MockIdempotencyStore)
		inner := newTestHandler("BatchRegistered")
		h := NewIdempotentHandler(inner, store, shared.IdempotencyConfig{}, zap.NewNop())

		event := newTestEvent("BatchRegistered")
		require.NoError(t, h.Handle(context.Background(), event))
		require.NoError(t, h.Handle(context.Background(), event))
		assert.Len(t, inner.getHandled(), 2)
		store.AssertNotCalled(t, "MarkProcessed", mock.Anything, mock.Anything, mock.Anything)
	})
}
