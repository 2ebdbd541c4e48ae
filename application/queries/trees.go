package queries

import (
	"time"

	"numtree-backend/application/ports"
	"numtree-backend/domain/core/entities"
	domainservices "numtree-backend/domain/services"
	"numtree-backend/pkg/errors"
)

// GetTreeQuery fetches one tree with its nested operations
type GetTreeQuery struct {
	TreeID int64
}

// Validate implements bus.Query
func (q GetTreeQuery) Validate() error {
	if q.TreeID <= 0 {
		return errors.NewValidationError("tree id must be a positive integer")
	}
	return nil
}

// ListTreesQuery fetches every tree with its nested operations
type ListTreesQuery struct{}

// Validate implements bus.Query
func (ListTreesQuery) Validate() error { return nil }

// TreeDetail is a tree with its operations arranged as a forest
type TreeDetail struct {
	ID             int64                           `json:"id"`
	StartingNumber float64                         `json:"startingNumber"`
	UserID         int64                           `json:"userId"`
	CreatedAt      time.Time                       `json:"createdAt"`
	User           *entities.UserSummary           `json:"user,omitempty"`
	Operations     []*domainservices.OperationNode `json:"operations"`
}

// NewTreeDetail nests a stored tree's operations
func NewTreeDetail(t ports.TreeWithOperations) *TreeDetail {
	return &TreeDetail{
		ID:             t.Tree.ID,
		StartingNumber: t.Tree.StartingNumber,
		UserID:         t.Tree.UserID,
		CreatedAt:      t.Tree.CreatedAt,
		User:           t.Tree.User,
		Operations:     domainservices.BuildForest(t.Operations),
	}
}
