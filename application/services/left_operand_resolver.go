package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"numtree-backend/application/ports"
	"numtree-backend/domain/core/valueobjects"
	pkgerrors "numtree-backend/pkg/errors"
)

// LeftOperandResolver finds the value an operation's left operand refers to
type LeftOperandResolver struct {
	treeRepo      ports.TreeRepository
	operationRepo ports.OperationRepository
	logger        *zap.Logger
}

// NewLeftOperandResolver creates a new resolver
func NewLeftOperandResolver(
	treeRepo ports.TreeRepository,
	operationRepo ports.OperationRepository,
	logger *zap.Logger,
) *LeftOperandResolver {
	return &LeftOperandResolver{
		treeRepo:      treeRepo,
		operationRepo: operationRepo,
		logger:        logger,
	}
}

// Resolve returns the parent's result for ParentResult, or the tree's
// starting number for StartingNumber. A parent that is missing or belongs
// to another tree yields ParentNotFound; a missing tree yields TreeNotFound.
func (r *LeftOperandResolver) Resolve(ctx context.Context, treeID int64, left valueobjects.LeftOperand) (float64, error) {
	switch l := left.(type) {
	case valueobjects.ParentResult:
		parent, err := r.operationRepo.GetByID(ctx, l.OperationID)
		if err != nil {
			if pkgerrors.IsNotFound(err) {
				return 0, pkgerrors.ParentNotFound(l.OperationID)
			}
			return 0, fmt.Errorf("failed to load parent operation: %w", err)
		}
		if parent.TreeID != treeID {
			r.logger.Debug("Parent operation belongs to another tree",
				zap.Int64("parentID", l.OperationID),
				zap.Int64("parentTreeID", parent.TreeID),
				zap.Int64("treeID", treeID),
			)
			return 0, pkgerrors.ParentNotFound(l.OperationID)
		}
		return parent.Result, nil

	case valueobjects.StartingNumber, nil:
		tree, err := r.treeRepo.GetByID(ctx, treeID)
		if err != nil {
			if pkgerrors.IsNotFound(err) {
				return 0, pkgerrors.TreeNotFound(treeID)
			}
			return 0, fmt.Errorf("failed to load tree: %w", err)
		}
		return tree.StartingNumber, nil

	default:
		return 0, pkgerrors.NewInternalError(fmt.Sprintf("unknown left operand %T", left))
	}
}
