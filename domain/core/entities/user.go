package entities

import (
	"strings"
	"time"

	"numtree-backend/domain/core/valueobjects"
	pkgerrors "numtree-backend/pkg/errors"
)

// User is an account that can own trees and operations
type User struct {
	ID           int64             `json:"id"`
	Username     string            `json:"username"`
	Email        string            `json:"email"`
	PasswordHash string            `json:"-"`
	Role         valueobjects.Role `json:"role"`
	CreatedAt    time.Time         `json:"createdAt"`
	UpdatedAt    time.Time         `json:"updatedAt"`
}

// UserSummary is the author enrichment attached to trees and operations
type UserSummary struct {
	Username string `json:"username"`
}

// NewUser creates an unregistered user. The id is assigned on Create.
func NewUser(username, email, passwordHash string) (*User, error) {
	username = strings.TrimSpace(username)
	email = strings.ToLower(strings.TrimSpace(email))

	if username == "" {
		return nil, pkgerrors.NewValidationError("username cannot be empty")
	}
	if email == "" {
		return nil, pkgerrors.NewValidationError("email cannot be empty")
	}
	if passwordHash == "" {
		return nil, pkgerrors.NewValidationError("password hash cannot be empty")
	}

	now := time.Now().UTC()
	return &User{
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         valueobjects.RoleUnregistered,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// Register promotes the user to REGISTERED. Registering twice is a no-op.
func (u *User) Register() bool {
	if u.Role == valueobjects.RoleRegistered {
		return false
	}
	u.Role = valueobjects.RoleRegistered
	u.UpdatedAt = time.Now().UTC()
	return true
}

// HasRole reports whether the user holds role
func (u *User) HasRole(role valueobjects.Role) bool {
	return u.Role == role
}

// Summary returns the public author view
func (u *User) Summary() *UserSummary {
	return &UserSummary{Username: u.Username}
}
