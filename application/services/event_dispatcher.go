package services

import (
	"context"

	"go.uber.org/zap"

	"numtree-backend/application/ports"
	"numtree-backend/domain/events"
)

// EventSource is an entity that collects domain events
type EventSource interface {
	GetUncommittedEvents() []events.DomainEvent
	MarkEventsAsCommitted()
}

// EventDispatcher publishes the pending events of stored entities.
// A failed publish is logged and never fails the surrounding command.
type EventDispatcher struct {
	publisher ports.EventPublisher
	logger    *zap.Logger
}

// NewEventDispatcher creates a new dispatcher
func NewEventDispatcher(publisher ports.EventPublisher, logger *zap.Logger) *EventDispatcher {
	return &EventDispatcher{publisher: publisher, logger: logger}
}

// Dispatch publishes and clears the events of every source
func (d *EventDispatcher) Dispatch(ctx context.Context, sources ...EventSource) {
	var pending []events.DomainEvent
	for _, s := range sources {
		pending = append(pending, s.GetUncommittedEvents()...)
	}
	if len(pending) == 0 {
		return
	}

	if err := d.publisher.Publish(ctx, pending); err != nil {
		d.logger.Warn("Failed to publish domain events",
			zap.Int("count", len(pending)),
			zap.Error(err),
		)
	}

	for _, s := range sources {
		s.MarkEventsAsCommitted()
	}
}
