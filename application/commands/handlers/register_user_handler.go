package handlers

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"numtree-backend/application/commands"
	"numtree-backend/application/ports"
)

// RegisterUserHandler promotes users to REGISTERED
type RegisterUserHandler struct {
	userRepo ports.UserRepository
	tokens   ports.TokenIssuer
	logger   *zap.Logger
}

// NewRegisterUserHandler creates a new register handler
func NewRegisterUserHandler(userRepo ports.UserRepository, tokens ports.TokenIssuer, logger *zap.Logger) *RegisterUserHandler {
	return &RegisterUserHandler{
		userRepo: userRepo,
		tokens:   tokens,
		logger:   logger,
	}
}

// Handle promotes the user and issues a token carrying the new role
func (h *RegisterUserHandler) Handle(ctx context.Context, cmd commands.RegisterUserCommand) (*commands.AuthResult, error) {
	user, err := h.userRepo.GetByID(ctx, cmd.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	if user.Register() {
		if err := h.userRepo.Update(ctx, user); err != nil {
			return nil, fmt.Errorf("failed to update user: %w", err)
		}
		h.logger.Info("User registered", zap.Int64("userID", user.ID))
	}

	token, expiresAt, err := h.tokens.Issue(user)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	return &commands.AuthResult{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      commands.NewUserView(user),
	}, nil
}
