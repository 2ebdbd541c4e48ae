package events

import (
	"strconv"
	"time"
)

// Event types published to the event bus
const (
	TypeTreeCreated    = "tree.created"
	TypeOperationAdded = "operation.added"
)

// DomainEvent is the base interface for all domain events
// Events represent something that has happened in the past
type DomainEvent interface {
	GetAggregateID() string
	GetEventType() string
	GetTimestamp() time.Time
	GetVersion() int
}

// BaseEvent provides common event fields
type BaseEvent struct {
	AggregateID string    `json:"aggregate_id"`
	EventType   string    `json:"event_type"`
	Timestamp   time.Time `json:"timestamp"`
	Version     int       `json:"version"`
}

func (e BaseEvent) GetAggregateID() string  { return e.AggregateID }
func (e BaseEvent) GetEventType() string    { return e.EventType }
func (e BaseEvent) GetTimestamp() time.Time { return e.Timestamp }
func (e BaseEvent) GetVersion() int         { return e.Version }

// TreeCreated is raised when a new tree is stored
type TreeCreated struct {
	BaseEvent
	TreeID         int64   `json:"tree_id"`
	UserID         int64   `json:"user_id"`
	StartingNumber float64 `json:"starting_number"`
}

// NewTreeCreated creates a TreeCreated event
func NewTreeCreated(treeID, userID int64, startingNumber float64, timestamp time.Time) TreeCreated {
	return TreeCreated{
		BaseEvent: BaseEvent{
			AggregateID: strconv.FormatInt(treeID, 10),
			EventType:   TypeTreeCreated,
			Timestamp:   timestamp,
			Version:     1,
		},
		TreeID:         treeID,
		UserID:         userID,
		StartingNumber: startingNumber,
	}
}

// OperationAdded is raised when an operation is appended to a tree.
// The aggregate is the tree.
type OperationAdded struct {
	BaseEvent
	OperationID int64   `json:"operation_id"`
	TreeID      int64   `json:"tree_id"`
	UserID      int64   `json:"user_id"`
	ParentID    *int64  `json:"parent_id"`
	Type        string  `json:"type"`
	RightNumber float64 `json:"right_number"`
	Result      float64 `json:"result"`
}

// NewOperationAdded creates an OperationAdded event
func NewOperationAdded(
	operationID, treeID, userID int64,
	parentID *int64,
	opType string,
	rightNumber, result float64,
	timestamp time.Time,
) OperationAdded {
	return OperationAdded{
		BaseEvent: BaseEvent{
			AggregateID: strconv.FormatInt(treeID, 10),
			EventType:   TypeOperationAdded,
			Timestamp:   timestamp,
			Version:     1,
		},
		OperationID: operationID,
		TreeID:      treeID,
		UserID:      userID,
		ParentID:    parentID,
		Type:        opType,
		RightNumber: rightNumber,
		Result:      result,
	}
}
