package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"numtree-backend/application/ports/mocks"
	"numtree-backend/domain/core/entities"
	"numtree-backend/domain/events"
)

func TestEventDispatcher_PublishFailureIsSwallowed(t *testing.T) {
	ctx := context.Background()
	publisher := new(mocks.MockEventPublisher)
	publisher.On("Publish", ctx, mock.MatchedBy(func(evts []events.DomainEvent) bool {
		return len(evts) == 1 && evts[0].GetEventType() == events.TypeTreeCreated
	})).Return(errors.New("bus down"))

	tree := &entities.Tree{ID: 1, UserID: 2, StartingNumber: 5}
	tree.MarkCreated()

	NewEventDispatcher(publisher, zap.NewNop()).Dispatch(ctx, tree)

	publisher.AssertExpectations(t)
	assert.Empty(t, tree.GetUncommittedEvents())
}

func TestEventDispatcher_NothingPending(t *testing.T) {
	publisher := new(mocks.MockEventPublisher)

	NewEventDispatcher(publisher, zap.NewNop()).Dispatch(context.Background(), &entities.Tree{ID: 1})

	publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
}
