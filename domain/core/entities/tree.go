package entities

import (
	"math"
	"time"

	"numtree-backend/domain/events"
	pkgerrors "numtree-backend/pkg/errors"
)

// Tree is a starting number that operations build upon
type Tree struct {
	ID             int64        `json:"id"`
	StartingNumber float64      `json:"startingNumber"`
	UserID         int64        `json:"userId"`
	CreatedAt      time.Time    `json:"createdAt"`
	User           *UserSummary `json:"user,omitempty"`

	events []events.DomainEvent
}

// NewTree creates a tree owned by userID. The id is assigned on Create,
// after which MarkCreated records the creation event.
func NewTree(startingNumber float64, userID int64) (*Tree, error) {
	if math.IsNaN(startingNumber) || math.IsInf(startingNumber, 0) {
		return nil, pkgerrors.NewValidationError("startingNumber must be a finite number")
	}
	if userID <= 0 {
		return nil, pkgerrors.NewValidationError("userID must be positive")
	}

	return &Tree{
		StartingNumber: startingNumber,
		UserID:         userID,
		CreatedAt:      time.Now().UTC(),
	}, nil
}

// MarkCreated records a TreeCreated event once storage has assigned the id
func (t *Tree) MarkCreated() {
	t.events = append(t.events, events.NewTreeCreated(t.ID, t.UserID, t.StartingNumber, t.CreatedAt))
}

// GetUncommittedEvents returns events raised since the last commit
func (t *Tree) GetUncommittedEvents() []events.DomainEvent {
	return t.events
}

// MarkEventsAsCommitted clears the pending events
func (t *Tree) MarkEventsAsCommitted() {
	t.events = nil
}
