package commands

import (
	"strings"
	"time"

	"numtree-backend/domain/core/entities"
	"numtree-backend/domain/core/valueobjects"
	"numtree-backend/pkg/errors"
	"numtree-backend/pkg/utils"
)

// SignUpCommand creates a new unregistered account
type SignUpCommand struct {
	Username string `json:"username" validate:"required"`
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Validate implements bus.Command. Length and format rules are applied by
// the handler's domain validator.
func (c SignUpCommand) Validate() error {
	return utils.ValidateStruct(c)
}

// LoginCommand exchanges credentials for a token
type LoginCommand struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Validate implements bus.Command
func (c LoginCommand) Validate() error {
	if strings.TrimSpace(c.Email) == "" || c.Password == "" {
		return errors.NewValidationError("Please provide email and password")
	}
	return nil
}

// RegisterUserCommand promotes an account to REGISTERED
type RegisterUserCommand struct {
	UserID int64 `json:"user_id" validate:"required,gt=0"`
}

// Validate implements bus.Command
func (c RegisterUserCommand) Validate() error {
	return utils.ValidateStruct(c)
}

// AuthResult is returned by every command that issues a session token
type AuthResult struct {
	Token     string
	ExpiresAt time.Time
	User      UserView
}

// UserView is a user without credentials
type UserView struct {
	ID        int64             `json:"id"`
	Username  string            `json:"username"`
	Email     string            `json:"email"`
	Role      valueobjects.Role `json:"role"`
	CreatedAt string            `json:"createdAt"`
	UpdatedAt string            `json:"updatedAt"`
}

// NewUserView maps a user entity to its public view
func NewUserView(u *entities.User) UserView {
	return UserView{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Role:      u.Role,
		CreatedAt: utils.FormatTimestamp(u.CreatedAt),
		UpdatedAt: utils.FormatTimestamp(u.UpdatedAt),
	}
}
