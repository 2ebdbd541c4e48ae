// Package messaging holds event publishers that are independent of a
// particular broker.
package messaging

import (
	"context"

	"numtree-backend/application/ports"
	"numtree-backend/domain/events"

	"go.uber.org/zap"
)

// LoggingPublisher writes events to the log instead of a broker. It is used
// when no event bus is configured.
type LoggingPublisher struct {
	logger *zap.Logger
}

var _ ports.EventPublisher = (*LoggingPublisher)(nil)

// NewLoggingPublisher creates a new LoggingPublisher
func NewLoggingPublisher(logger *zap.Logger) *LoggingPublisher {
	return &LoggingPublisher{logger: logger}
}

// Publish logs each event at debug level
func (p *LoggingPublisher) Publish(_ context.Context, domainEvents []events.DomainEvent) error {
	for _, e := range domainEvents {
		p.logger.Debug("Domain event",
			zap.String("event_type", e.GetEventType()),
			zap.String("aggregate_id", e.GetAggregateID()),
			zap.Time("timestamp", e.GetTimestamp()),
		)
	}
	return nil
}
