package queries

import "numtree-backend/pkg/errors"

// GetCurrentUserQuery fetches the authenticated user
type GetCurrentUserQuery struct {
	UserID int64
}

// Validate implements bus.Query
func (q GetCurrentUserQuery) Validate() error {
	if q.UserID <= 0 {
		return errors.NewUnauthorizedError("You are not logged in! Please log in to get access.")
	}
	return nil
}
