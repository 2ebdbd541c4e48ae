package handlers

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"numtree-backend/application/commands"
	"numtree-backend/application/ports"
	"numtree-backend/domain/core/entities"
	"numtree-backend/domain/core/validators"
)

// SignUpHandler handles account creation
type SignUpHandler struct {
	userRepo  ports.UserRepository
	hasher    ports.PasswordHasher
	tokens    ports.TokenIssuer
	validator *validators.Validator
	logger    *zap.Logger
}

// NewSignUpHandler creates a new sign-up handler
func NewSignUpHandler(
	userRepo ports.UserRepository,
	hasher ports.PasswordHasher,
	tokens ports.TokenIssuer,
	validator *validators.Validator,
	logger *zap.Logger,
) *SignUpHandler {
	return &SignUpHandler{
		userRepo:  userRepo,
		hasher:    hasher,
		tokens:    tokens,
		validator: validator,
		logger:    logger,
	}
}

// Handle creates an UNREGISTERED user and issues a token for it
func (h *SignUpHandler) Handle(ctx context.Context, cmd commands.SignUpCommand) (*commands.AuthResult, error) {
	if err := h.validator.ValidateSignUp(cmd.Username, cmd.Email, cmd.Password); err != nil {
		return nil, err
	}

	hash, err := h.hasher.Hash(cmd.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := entities.NewUser(cmd.Username, cmd.Email, hash)
	if err != nil {
		return nil, err
	}

	if err := h.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	token, expiresAt, err := h.tokens.Issue(user)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	h.logger.Info("User signed up",
		zap.Int64("userID", user.ID),
		zap.String("username", user.Username),
	)

	return &commands.AuthResult{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      commands.NewUserView(user),
	}, nil
}
