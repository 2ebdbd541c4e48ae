package commands

import (
	"numtree-backend/domain/core/valueobjects"
	"numtree-backend/pkg/utils"
)

// CreateTreeCommand stores a new tree with a starting number
type CreateTreeCommand struct {
	UserID         int64   `json:"user_id" validate:"required,gt=0"`
	StartingNumber float64 `json:"startingNumber"`
}

// Validate implements bus.Command
func (c CreateTreeCommand) Validate() error {
	return utils.ValidateStruct(c)
}

// AddOperationCommand appends an operation to a tree. A nil
// ParentOperationID starts from the tree's starting number.
type AddOperationCommand struct {
	TreeID            int64                      `json:"tree_id" validate:"required,gt=0"`
	UserID            int64                      `json:"user_id" validate:"required,gt=0"`
	Type              valueobjects.OperationType `json:"type" validate:"required"`
	RightNumber       float64                    `json:"rightNumber"`
	ParentOperationID *int64                     `json:"parentOperationId"`
}

// Validate implements bus.Command. The operation type is checked by the
// evaluator after the left operand resolves.
func (c AddOperationCommand) Validate() error {
	return utils.ValidateStruct(c)
}

// LeftOperand returns where the new operation takes its left operand from
func (c AddOperationCommand) LeftOperand() valueobjects.LeftOperand {
	return valueobjects.NewLeftOperand(c.ParentOperationID)
}
