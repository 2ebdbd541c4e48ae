package entities

import (
	"math"
	"time"

	"numtree-backend/domain/core/valueobjects"
	"numtree-backend/domain/events"
	pkgerrors "numtree-backend/pkg/errors"
)

// Operation applies Type with RightNumber to its left operand, which is the
// parent's result or, when ParentID is nil, the tree's starting number.
// Result is computed once at creation and never changes.
type Operation struct {
	ID          int64                      `json:"id"`
	Type        valueobjects.OperationType `json:"type"`
	RightNumber float64                    `json:"rightNumber"`
	Result      float64                    `json:"result"`
	TreeID      int64                      `json:"treeId"`
	UserID      int64                      `json:"userId"`
	ParentID    *int64                     `json:"parentId"`
	CreatedAt   time.Time                  `json:"createdAt"`
	User        *UserSummary               `json:"user,omitempty"`

	events []events.DomainEvent
}

// NewOperation creates an operation whose result has already been evaluated
func NewOperation(
	opType valueobjects.OperationType,
	rightNumber, result float64,
	treeID, userID int64,
	left valueobjects.LeftOperand,
) (*Operation, error) {
	if !opType.IsValid() {
		return nil, pkgerrors.InvalidOperationType(opType.String())
	}
	if math.IsNaN(rightNumber) || math.IsInf(rightNumber, 0) {
		return nil, pkgerrors.NewValidationError("rightNumber must be a finite number")
	}
	if treeID <= 0 {
		return nil, pkgerrors.NewValidationError("treeID must be positive")
	}
	if left == nil {
		left = valueobjects.StartingNumber{}
	}

	return &Operation{
		Type:        opType,
		RightNumber: rightNumber,
		Result:      result,
		TreeID:      treeID,
		UserID:      userID,
		ParentID:    left.ParentID(),
		CreatedAt:   time.Now().UTC(),
	}, nil
}

// LeftOperand returns where this operation took its left operand from
func (o *Operation) LeftOperand() valueobjects.LeftOperand {
	return valueobjects.NewLeftOperand(o.ParentID)
}

// IsRoot reports whether the operation starts from the tree's starting number
func (o *Operation) IsRoot() bool {
	return o.ParentID == nil
}

// MarkCreated records an OperationAdded event once storage has assigned the id
func (o *Operation) MarkCreated() {
	o.events = append(o.events, events.NewOperationAdded(
		o.ID, o.TreeID, o.UserID, o.ParentID, o.Type.String(), o.RightNumber, o.Result, o.CreatedAt,
	))
}

// GetUncommittedEvents returns events raised since the last commit
func (o *Operation) GetUncommittedEvents() []events.DomainEvent {
	return o.events
}

// MarkEventsAsCommitted clears the pending events
func (o *Operation) MarkEventsAsCommitted() {
	o.events = nil
}
