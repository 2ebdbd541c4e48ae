package ports

import (
	"context"
	"time"

	"numtree-backend/domain/core/entities"
	"numtree-backend/domain/events"
)

// UserRepository defines the interface for user persistence
// This is a port in hexagonal architecture - the domain doesn't know about the implementation
type UserRepository interface {
	// Create stores a new user and assigns its ID.
	// Returns DuplicateUser when the username or email is taken.
	Create(ctx context.Context, user *entities.User) error

	// GetByID returns UserNotFound when absent
	GetByID(ctx context.Context, id int64) (*entities.User, error)

	// GetByEmail returns UserNotFound when absent
	GetByEmail(ctx context.Context, email string) (*entities.User, error)

	// Update persists role and updatedAt changes
	Update(ctx context.Context, user *entities.User) error
}

// TreeRepository defines the interface for tree persistence
type TreeRepository interface {
	// Create stores a new tree and assigns its ID
	Create(ctx context.Context, tree *entities.Tree) error

	// GetByID returns TreeNotFound when absent
	GetByID(ctx context.Context, id int64) (*entities.Tree, error)

	// GetWithOperations returns the tree and its operations in creation order.
	// Returns TreeNotFound when absent.
	GetWithOperations(ctx context.Context, id int64) (*TreeWithOperations, error)

	// ListWithOperations returns every tree, oldest first, with its operations
	ListWithOperations(ctx context.Context) ([]TreeWithOperations, error)
}

// OperationRepository defines the interface for operation persistence
type OperationRepository interface {
	// Create stores a new operation and assigns its ID
	Create(ctx context.Context, op *entities.Operation) error

	// GetByID returns OperationNotFound when absent
	GetByID(ctx context.Context, id int64) (*entities.Operation, error)

	// CountByTree returns the number of operations stored for a tree
	CountByTree(ctx context.Context, treeID int64) (int, error)
}

// TreeWithOperations is a tree together with its flat operation list
type TreeWithOperations struct {
	Tree       *entities.Tree
	Operations []entities.Operation
}

// HealthChecker reports whether a backing store is reachable
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// Cache stores serialized read models
type Cache interface {
	// Get returns ErrCacheMiss when the key is absent or expired
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// PasswordHasher hashes and verifies passwords
type PasswordHasher interface {
	Hash(password string) (string, error)
	// Compare returns an error when password does not match hash
	Compare(hash, password string) error
}

// TokenIssuer signs session tokens for a user
type TokenIssuer interface {
	Issue(user *entities.User) (token string, expiresAt time.Time, err error)
}

// EventPublisher delivers domain events to subscribers outside the service
type EventPublisher interface {
	Publish(ctx context.Context, events []events.DomainEvent) error
}
