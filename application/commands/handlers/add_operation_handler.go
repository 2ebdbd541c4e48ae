package handlers

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"numtree-backend/application/commands"
	"numtree-backend/application/ports"
	"numtree-backend/application/services"
	"numtree-backend/domain/core/entities"
	"numtree-backend/domain/core/validators"
	domainservices "numtree-backend/domain/services"
)

// AddOperationHandler appends evaluated operations to trees
type AddOperationHandler struct {
	operationRepo ports.OperationRepository
	resolver      *services.LeftOperandResolver
	cache         ports.Cache
	events        *services.EventDispatcher
	validator     *validators.Validator
	logger        *zap.Logger
}

// NewAddOperationHandler creates a new add operation handler
func NewAddOperationHandler(
	operationRepo ports.OperationRepository,
	resolver *services.LeftOperandResolver,
	cache ports.Cache,
	events *services.EventDispatcher,
	validator *validators.Validator,
	logger *zap.Logger,
) *AddOperationHandler {
	return &AddOperationHandler{
		operationRepo: operationRepo,
		resolver:      resolver,
		cache:         cache,
		events:        events,
		validator:     validator,
		logger:        logger,
	}
}

// Handle resolves the left operand, evaluates and stores the operation.
// Resolution runs first, so a missing parent or tree is reported before a
// bad operation type or a zero divisor.
func (h *AddOperationHandler) Handle(ctx context.Context, cmd commands.AddOperationCommand) (*entities.Operation, error) {
	left := cmd.LeftOperand()

	leftValue, err := h.resolver.Resolve(ctx, cmd.TreeID, left)
	if err != nil {
		return nil, err
	}

	if err := h.validator.ValidateNumber("rightNumber", cmd.RightNumber); err != nil {
		return nil, err
	}

	count, err := h.operationRepo.CountByTree(ctx, cmd.TreeID)
	if err != nil {
		return nil, fmt.Errorf("failed to count operations: %w", err)
	}
	if err := h.validator.ValidateOperationCount(count); err != nil {
		return nil, err
	}

	result, err := domainservices.Evaluate(leftValue, cmd.RightNumber, cmd.Type)
	if err != nil {
		return nil, err
	}
	if err := h.validator.ValidateNumber("result", result); err != nil {
		return nil, err
	}

	op, err := entities.NewOperation(cmd.Type, cmd.RightNumber, result, cmd.TreeID, cmd.UserID, left)
	if err != nil {
		return nil, err
	}

	if err := h.operationRepo.Create(ctx, op); err != nil {
		return nil, fmt.Errorf("failed to create operation: %w", err)
	}
	op.MarkCreated()

	if err := ports.RetireCacheKeys(ctx, h.cache, ports.TreeCacheKey(cmd.TreeID), ports.TreeListCacheKey); err != nil {
		h.logger.Warn("Failed to invalidate tree cache",
			zap.Int64("treeID", cmd.TreeID),
			zap.Error(err),
		)
	}
	h.events.Dispatch(ctx, op)

	h.logger.Info("Operation added",
		zap.Int64("operationID", op.ID),
		zap.Int64("treeID", op.TreeID),
		zap.String("type", op.Type.String()),
		zap.String("left", left.String()),
		zap.Float64("result", op.Result),
	)

	return op, nil
}
