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
)

// CreateTreeHandler handles tree creation
type CreateTreeHandler struct {
	treeRepo  ports.TreeRepository
	cache     ports.Cache
	events    *services.EventDispatcher
	validator *validators.Validator
	logger    *zap.Logger
}

// NewCreateTreeHandler creates a new create tree handler
func NewCreateTreeHandler(
	treeRepo ports.TreeRepository,
	cache ports.Cache,
	events *services.EventDispatcher,
	validator *validators.Validator,
	logger *zap.Logger,
) *CreateTreeHandler {
	return &CreateTreeHandler{
		treeRepo:  treeRepo,
		cache:     cache,
		events:    events,
		validator: validator,
		logger:    logger,
	}
}

// Handle stores the tree and announces it
func (h *CreateTreeHandler) Handle(ctx context.Context, cmd commands.CreateTreeCommand) (*entities.Tree, error) {
	if err := h.validator.ValidateNumber("startingNumber", cmd.StartingNumber); err != nil {
		return nil, err
	}

	tree, err := entities.NewTree(cmd.StartingNumber, cmd.UserID)
	if err != nil {
		return nil, err
	}

	if err := h.treeRepo.Create(ctx, tree); err != nil {
		return nil, fmt.Errorf("failed to create tree: %w", err)
	}
	tree.MarkCreated()

	if err := ports.RetireCacheKeys(ctx, h.cache, ports.TreeListCacheKey); err != nil {
		h.logger.Warn("Failed to invalidate tree list cache", zap.Error(err))
	}
	h.events.Dispatch(ctx, tree)

	h.logger.Info("Tree created",
		zap.Int64("treeID", tree.ID),
		zap.Int64("userID", tree.UserID),
		zap.Float64("startingNumber", tree.StartingNumber),
	)

	return tree, nil
}
