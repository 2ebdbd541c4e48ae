package handlers

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"numtree-backend/application/commands"
	"numtree-backend/application/ports"
	"numtree-backend/application/queries"
)

// GetCurrentUserHandler serves the authenticated user's profile
type GetCurrentUserHandler struct {
	userRepo ports.UserRepository
	logger   *zap.Logger
}

// NewGetCurrentUserHandler creates a new handler
func NewGetCurrentUserHandler(userRepo ports.UserRepository, logger *zap.Logger) *GetCurrentUserHandler {
	return &GetCurrentUserHandler{userRepo: userRepo, logger: logger}
}

// Handle returns the user without credentials
func (h *GetCurrentUserHandler) Handle(ctx context.Context, query queries.GetCurrentUserQuery) (*commands.UserView, error) {
	user, err := h.userRepo.GetByID(ctx, query.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	view := commands.NewUserView(user)
	return &view, nil
}
