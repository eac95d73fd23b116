package event

import (
	"context"
	"sync/atomic"

	"github.com/qbic/datamanager/internal/domain/shared"
	"go.uber.org/zap"
)

// IdempotentHandler wraps a handler so each event id is handled once within
// the configured TTL. Used for handlers with external side effects such as
// queueing notification emails.
type IdempotentHandler struct {
	handler shared.EventHandler
	store   shared.IdempotencyStore
	config  shared.IdempotencyConfig
	logger  *zap.Logger

	processed  atomic.Int64
	duplicates atomic.Int64
	failed     atomic.Int64
}

// NewIdempotentHandler creates a new idempotent handler wrapper
func NewIdempotentHandler(handler shared.EventHandler, store shared.IdempotencyStore, config shared.IdempotencyConfig, logger *zap.Logger) *IdempotentHandler {
	return &IdempotentHandler{
		handler: handler,
		store:   store,
		config:  config,
		logger:  logger,
	}
}

// EventTypes returns the event types of the wrapped handler
func (h *IdempotentHandler) EventTypes() []string {
	return h.handler.EventTypes()
}

// Handle processes the event unless its id was already marked
func (h *IdempotentHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	if !h.config.Enabled {
		return h.handler.Handle(ctx, event)
	}

	key := event.EventType() + ":" + event.EventID().String()
	isNew, err := h.store.MarkProcessed(ctx, key, h.config.TTL)
	switch {
	case err != nil:
		// a store outage must not swallow notifications
		h.logger.Warn("idempotency check failed, handling event anyway",
			zap.String("event_id", event.EventID().String()),
			zap.Error(err),
		)
	case !isNew:
		h.duplicates.Add(1)
		h.logger.Debug("duplicate event skipped",
			zap.String("event_id", event.EventID().String()),
			zap.String("event_type", event.EventType()),
		)
		return nil
	}

	if err := h.handler.Handle(ctx, event); err != nil {
		h.failed.Add(1)
		return err
	}
	h.processed.Add(1)
	return nil
}

// Stats returns processed, duplicate and failed counts
func (h *IdempotentHandler) Stats() (processed, duplicates, failed int64) {
	return h.processed.Load(), h.duplicates.Load(), h.failed.Load()
}

var _ shared.EventHandler = (*IdempotentHandler)(nil)
