package event

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/qbic/datamanager/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// testEvent implements DomainEvent for testing
type testEvent struct {
	shared.BaseDomainEvent
	Data string `json:"data"`
}

func newTestEvent(eventType string) *testEvent {
	return &testEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, "TestAggregate", uuid.New()),
		Data:            "test data",
	}
}

// testHandler records the events it receives
type testHandler struct {
	eventTypes []string
	handled    []shared.DomainEvent
	err        error
	panics     bool
	mu         sync.Mutex
}

func newTestHandler(eventTypes ...string) *testHandler {
	return &testHandler{eventTypes: eventTypes}
}

func (h *testHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.handled = append(h.handled, event)
	if h.panics {
		panic("boom")
	}
	return h.err
}

func (h *testHandler) EventTypes() []string {
	return h.eventTypes
}

func (h *testHandler) getHandled() []shared.DomainEvent {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]shared.DomainEvent(nil), h.handled...)
}

func TestInMemoryEventBus_Publish(t *testing.T) {
	t.Run("delivers to handlers of the event type", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())
		handler := newTestHandler("BatchRegistered")
		other := newTestHandler("ProjectChanged")
		bus.Subscribe(handler)
		bus.Subscribe(other)

		event := newTestEvent("BatchRegistered")
		require.NoError(t, bus.Publish(context.Background(), event, newTestEvent("BatchRegistered")))

		assert.Len(t, handler.getHandled(), 2)
		assert.Equal(t, event, handler.getHandled()[0])
		assert.Empty(t, other.getHandled())
	})

	t.Run("explicit types override the handler's own", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())
		handler := newTestHandler("ProjectChanged")
		bus.Subscribe(handler, "SampleDeleted")

		require.NoError(t, bus.Publish(context.Background(), newTestEvent("ProjectChanged"), newTestEvent("SampleDeleted")))
		assert.Len(t, handler.getHandled(), 1)
	})

	t.Run("wildcard handler receives every event", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())
		wildcard := newTestHandler()
		bus.Subscribe(wildcard)

		require.NoError(t, bus.Publish(context.Background(), newTestEvent("AnyEventType")))
		assert.Len(t, wildcard.getHandled(), 1)
	})

	t.Run("failing and panicking handlers do not stop the others", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())
		failing := newTestHandler("TestEvent")
		failing.err = errors.New("handler error")
		panicking := newTestHandler("TestEvent")
		panicking.panics = true
		healthy := newTestHandler("TestEvent")
		bus.Subscribe(failing)
		bus.Subscribe(panicking)
		bus.Subscribe(healthy)

		require.NoError(t, bus.Publish(context.Background(), newTestEvent("TestEvent")))
		assert.Len(t, failing.getHandled(), 1)
		assert.Len(t, panicking.getHandled(), 1)
		assert.Len(t, healthy.getHandled(), 1)
	})

	t.Run("handler funcs can subscribe", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())
		var calls int
		bus.Subscribe(&HandlerFunc{
			Types: []string{"TestEvent"},
			Fn: func(ctx context.Context, event shared.DomainEvent) error {
				calls++
				return nil
			},
		})

		require.NoError(t, bus.Publish(context.Background(), newTestEvent("TestEvent")))
		assert.Equal(t, 1, calls)
	})
}

func TestInMemoryEventBus_Unsubscribe(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	handler := newTestHandler("TestEvent")
	wildcard := newTestHandler()
	bus.Subscribe(handler)
	bus.Subscribe(wildcard)

	_ = bus.Publish(context.Background(), newTestEvent("TestEvent"))
	bus.Unsubscribe(handler)
	bus.Unsubscribe(wildcard)
	_ = bus.Publish(context.Background(), newTestEvent("TestEvent"))

	assert.Len(t, handler.getHandled(), 1)
	assert.Len(t, wildcard.getHandled(), 1)
}

func TestInMemoryEventBus_StartStop(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	ctx := context.Background()

	require.NoError(t, bus.Start(ctx))
	handler := newTestHandler("TestEvent")
	bus.Subscribe(handler)
	require.NoError(t, bus.Publish(ctx, newTestEvent("TestEvent")))
	require.NoError(t, bus.Stop(ctx))
	assert.Len(t, handler.getHandled(), 1)
}
