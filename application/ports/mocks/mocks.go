// Package mocks provides testify mocks for the application ports.
package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"numtree-backend/application/ports"
	"numtree-backend/domain/core/entities"
	"numtree-backend/domain/events"
)

// MockUserRepository is a mock of ports.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *entities.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id int64) (*entities.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*entities.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.User), args.Error(1)
}

func (m *MockUserRepository) Update(ctx context.Context, user *entities.User) error {
	return m.Called(ctx, user).Error(0)
}

// MockTreeRepository is a mock of ports.TreeRepository
type MockTreeRepository struct {
	mock.Mock
}

func (m *MockTreeRepository) Create(ctx context.Context, tree *entities.Tree) error {
	return m.Called(ctx, tree).Error(0)
}

func (m *MockTreeRepository) GetByID(ctx context.Context, id int64) (*entities.Tree, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Tree), args.Error(1)
}

func (m *MockTreeRepository) GetWithOperations(ctx context.Context, id int64) (*ports.TreeWithOperations, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ports.TreeWithOperations), args.Error(1)
}

func (m *MockTreeRepository) ListWithOperations(ctx context.Context) ([]ports.TreeWithOperations, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ports.TreeWithOperations), args.Error(1)
}

// MockOperationRepository is a mock of ports.OperationRepository
type MockOperationRepository struct {
	mock.Mock
}

func (m *MockOperationRepository) Create(ctx context.Context, op *entities.Operation) error {
	return m.Called(ctx, op).Error(0)
}

func (m *MockOperationRepository) GetByID(ctx context.Context, id int64) (*entities.Operation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Operation), args.Error(1)
}

func (m *MockOperationRepository) CountByTree(ctx context.Context, treeID int64) (int, error) {
	args := m.Called(ctx, treeID)
	return args.Int(0), args.Error(1)
}

// MockCache is a mock of ports.Cache
type MockCache struct {
	mock.Mock
}

func (m *MockCache) Get(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return m.Called(ctx, key, value, ttl).Error(0)
}

func (m *MockCache) Delete(ctx context.Context, keys ...string) error {
	return m.Called(ctx, keys).Error(0)
}

// MockPasswordHasher is a mock of ports.PasswordHasher
type MockPasswordHasher struct {
	mock.Mock
}

func (m *MockPasswordHasher) Hash(password string) (string, error) {
	args := m.Called(password)
	return args.String(0), args.Error(1)
}

func (m *MockPasswordHasher) Compare(hash, password string) error {
	return m.Called(hash, password).Error(0)
}

// MockTokenIssuer is a mock of ports.TokenIssuer
type MockTokenIssuer struct {
	mock.Mock
}

func (m *MockTokenIssuer) Issue(user *entities.User) (string, time.Time, error) {
	args := m.Called(user)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}

// MockEventPublisher is a mock of ports.EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, evts []events.DomainEvent) error {
	return m.Called(ctx, evts).Error(0)
}

var (
	_ ports.UserRepository      = (*MockUserRepository)(nil)
	_ ports.TreeRepository      = (*MockTreeRepository)(nil)
	_ ports.OperationRepository = (*MockOperationRepository)(nil)
	_ ports.Cache               = (*MockCache)(nil)
	_ ports.PasswordHasher      = (*MockPasswordHasher)(nil)
	_ ports.TokenIssuer         = (*MockTokenIssuer)(nil)
	_ ports.EventPublisher      = (*MockEventPublisher)(nil)
)
