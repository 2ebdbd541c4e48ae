package messaging

import (
	"context"

	"numtree-backend/application/ports"
	"numtree-backend/domain/events"
)

// PublishRecorder observes published events
type PublishRecorder interface {
	RecordEventPublished(eventType string, err error)
	RecordOperationAdded(opType string)
}

// InstrumentedPublisher records the outcome of every event it forwards
type InstrumentedPublisher struct {
	next     ports.EventPublisher
	recorder PublishRecorder
}

var _ ports.EventPublisher = (*InstrumentedPublisher)(nil)

// NewInstrumentedPublisher wraps next
func NewInstrumentedPublisher(next ports.EventPublisher, recorder PublishRecorder) *InstrumentedPublisher {
	return &InstrumentedPublisher{next: next, recorder: recorder}
}

// Publish forwards the batch. Counters are bumped whether or not delivery
// succeeds.
func (p *InstrumentedPublisher) Publish(ctx context.Context, domainEvents []events.DomainEvent) error {
	err := p.next.Publish(ctx, domainEvents)
	for _, e := range domainEvents {
		p.recorder.RecordEventPublished(e.GetEventType(), err)
		if added, ok := e.(events.OperationAdded); ok {
			p.recorder.RecordOperationAdded(added.Type)
		}
	}
	return err
}
