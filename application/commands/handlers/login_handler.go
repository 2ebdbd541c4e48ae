package handlers

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"numtree-backend/application/commands"
	"numtree-backend/application/ports"
	pkgerrors "numtree-backend/pkg/errors"
)

// LoginHandler verifies credentials and issues tokens
type LoginHandler struct {
	userRepo ports.UserRepository
	hasher   ports.PasswordHasher
	tokens   ports.TokenIssuer
	logger   *zap.Logger
}

// NewLoginHandler creates a new login handler
func NewLoginHandler(
	userRepo ports.UserRepository,
	hasher ports.PasswordHasher,
	tokens ports.TokenIssuer,
	logger *zap.Logger,
) *LoginHandler {
	return &LoginHandler{
		userRepo: userRepo,
		hasher:   hasher,
		tokens:   tokens,
		logger:   logger,
	}
}

// Handle returns InvalidCredentials for an unknown email and for a wrong
// password alike.
func (h *LoginHandler) Handle(ctx context.Context, cmd commands.LoginCommand) (*commands.AuthResult, error) {
	email := strings.ToLower(strings.TrimSpace(cmd.Email))

	user, err := h.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if pkgerrors.IsNotFound(err) {
			return nil, pkgerrors.InvalidCredentials()
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	if err := h.hasher.Compare(user.PasswordHash, cmd.Password); err != nil {
		h.logger.Debug("Password mismatch", zap.Int64("userID", user.ID))
		return nil, pkgerrors.InvalidCredentials()
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
