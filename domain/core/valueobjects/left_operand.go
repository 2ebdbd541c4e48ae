package valueobjects

import "fmt"

// LeftOperand is where an operation takes its left operand from:
// either the tree's starting number or the result of a parent operation.
type LeftOperand interface {
	isLeftOperand()
	// ParentID returns the parent operation id, or nil for StartingNumber.
	ParentID() *int64
	String() string
}

// StartingNumber selects the tree's starting number
type StartingNumber struct{}

func (StartingNumber) isLeftOperand() {}

// ParentID implements LeftOperand
func (StartingNumber) ParentID() *int64 { return nil }

func (StartingNumber) String() string { return "starting-number" }

// ParentResult selects the result of the operation with OperationID
type ParentResult struct {
	OperationID int64
}

func (ParentResult) isLeftOperand() {}

// ParentID implements LeftOperand
func (p ParentResult) ParentID() *int64 {
	id := p.OperationID
	return &id
}

func (p ParentResult) String() string { return fmt.Sprintf("parent:%d", p.OperationID) }

// NewLeftOperand maps an optional parent id to a LeftOperand.
// Only nil means StartingNumber; zero is a (non-existent) parent reference.
func NewLeftOperand(parentOperationID *int64) LeftOperand {
	if parentOperationID == nil {
		return StartingNumber{}
	}
	return ParentResult{OperationID: *parentOperationID}
}
