package handlers

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"numtree-backend/application/commands"
	"numtree-backend/application/ports/mocks"
	"numtree-backend/application/services"
	"numtree-backend/domain/core/entities"
	"numtree-backend/domain/core/validators"
	"numtree-backend/domain/core/valueobjects"
	"numtree-backend/domain/events"
	pkgerrors "numtree-backend/pkg/errors"
)

func int64Ptr(v int64) *int64 { return &v }

type operationFixture struct {
	treeRepo  *mocks.MockTreeRepository
	opRepo    *mocks.MockOperationRepository
	cache     *mocks.MockCache
	publisher *mocks.MockEventPublisher
	handler   *AddOperationHandler
}

func newOperationFixture() *operationFixture {
	f := &operationFixture{
		treeRepo:  new(mocks.MockTreeRepository),
		opRepo:    new(mocks.MockOperationRepository),
		cache:     new(mocks.MockCache),
		publisher: new(mocks.MockEventPublisher),
	}
	logger := zap.NewNop()
	f.handler = NewAddOperationHandler(
		f.opRepo,
		services.NewLeftOperandResolver(f.treeRepo, f.opRepo, logger),
		f.cache,
		services.NewEventDispatcher(f.publisher, logger),
		validators.NewValidator(nil),
		logger,
	)
	return f
}

func (f *operationFixture) expectCreate(ctx context.Context, id int64) {
	f.opRepo.On("Create", ctx, mock.AnythingOfType("*entities.Operation")).
		Run(func(args mock.Arguments) {
			args.Get(1).(*entities.Operation).ID = id
		}).
		Return(nil)
}

func TestAddOperationHandler_StartingNumber(t *testing.T) {
	// Arrange
	ctx := context.Background()
	f := newOperationFixture()
	f.treeRepo.On("GetByID", ctx, int64(7)).Return(&entities.Tree{ID: 7, StartingNumber: 5}, nil)
	f.opRepo.On("CountByTree", ctx, int64(7)).Return(0, nil)
	f.expectCreate(ctx, 1)
	f.cache.On("Set", ctx, "tree:7:gen", mock.AnythingOfType("[]uint8"), time.Duration(0)).Return(nil)
	f.cache.On("Set", ctx, "trees:all:gen", mock.AnythingOfType("[]uint8"), time.Duration(0)).Return(nil)
	f.publisher.On("Publish", ctx, mock.MatchedBy(func(evts []events.DomainEvent) bool {
		return len(evts) == 1 && evts[0].GetEventType() == events.TypeOperationAdded
	})).Return(nil)

	cmd := commands.AddOperationCommand{
		TreeID:      7,
		UserID:      2,
		Type:        valueobjects.OperationAdd,
		RightNumber: 3,
	}

	// Act
	op, err := f.handler.Handle(ctx, cmd)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, int64(1), op.ID)
	assert.Equal(t, 8.0, op.Result)
	assert.Nil(t, op.ParentID)
	assert.Equal(t, int64(2), op.UserID)
	f.treeRepo.AssertExpectations(t)
	f.opRepo.AssertExpectations(t)
	f.cache.AssertExpectations(t)
	f.publisher.AssertExpectations(t)
}

func TestAddOperationHandler_ChainedOnParent(t *testing.T) {
	ctx := context.Background()
	f := newOperationFixture()
	f.opRepo.On("GetByID", ctx, int64(1)).Return(&entities.Operation{ID: 1, TreeID: 7, Result: 8}, nil)
	f.opRepo.On("CountByTree", ctx, int64(7)).Return(1, nil)
	f.expectCreate(ctx, 2)
	f.cache.On("Set", ctx, mock.Anything, mock.Anything, time.Duration(0)).Return(nil)
	f.publisher.On("Publish", ctx, mock.Anything).Return(nil)

	op, err := f.handler.Handle(ctx, commands.AddOperationCommand{
		TreeID:            7,
		UserID:            2,
		Type:              valueobjects.OperationMultiply,
		RightNumber:       2,
		ParentOperationID: int64Ptr(1),
	})

	require.NoError(t, err)
	assert.Equal(t, 16.0, op.Result)
	require.NotNil(t, op.ParentID)
	assert.Equal(t, int64(1), *op.ParentID)
	f.treeRepo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestAddOperationHandler_ParentNotFoundBeforeInvalidType(t *testing.T) {
	ctx := context.Background()
	f := newOperationFixture()
	f.opRepo.On("GetByID", ctx, int64(99)).Return(nil, pkgerrors.OperationNotFound(99))

	_, err := f.handler.Handle(ctx, commands.AddOperationCommand{
		TreeID:            7,
		UserID:            2,
		Type:              "MODULO",
		RightNumber:       2,
		ParentOperationID: int64Ptr(99),
	})

	assert.ErrorIs(t, err, pkgerrors.ErrParentNotFound)
	f.opRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestAddOperationHandler_TreeNotFound(t *testing.T) {
	ctx := context.Background()
	f := newOperationFixture()
	f.treeRepo.On("GetByID", ctx, int64(7)).Return(nil, pkgerrors.TreeNotFound(7))

	_, err := f.handler.Handle(ctx, commands.AddOperationCommand{
		TreeID: 7, UserID: 2, Type: valueobjects.OperationAdd, RightNumber: 1,
	})

	assert.ErrorIs(t, err, pkgerrors.ErrTreeNotFound)
}

func TestAddOperationHandler_DivisionByZero(t *testing.T) {
	ctx := context.Background()
	f := newOperationFixture()
	f.treeRepo.On("GetByID", ctx, int64(7)).Return(&entities.Tree{ID: 7, StartingNumber: 5}, nil)
	f.opRepo.On("CountByTree", ctx, int64(7)).Return(0, nil)

	_, err := f.handler.Handle(ctx, commands.AddOperationCommand{
		TreeID: 7, UserID: 2, Type: valueobjects.OperationDivide, RightNumber: 0,
	})

	assert.ErrorIs(t, err, pkgerrors.ErrDivisionByZero)
	f.opRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	f.publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
}

func TestAddOperationHandler_InvalidType(t *testing.T) {
	ctx := context.Background()
	f := newOperationFixture()
	f.treeRepo.On("GetByID", ctx, int64(7)).Return(&entities.Tree{ID: 7, StartingNumber: 5}, nil)
	f.opRepo.On("CountByTree", ctx, int64(7)).Return(0, nil)

	_, err := f.handler.Handle(ctx, commands.AddOperationCommand{
		TreeID: 7, UserID: 2, Type: "add", RightNumber: 1,
	})

	assert.ErrorIs(t, err, pkgerrors.ErrInvalidOperationType)
}

func TestAddOperationHandler_ResultOutOfRange(t *testing.T) {
	ctx := context.Background()
	f := newOperationFixture()
	f.opRepo.On("GetByID", ctx, int64(3)).Return(&entities.Operation{ID: 3, TreeID: 7, Result: 1e15}, nil)
	f.opRepo.On("CountByTree", ctx, int64(7)).Return(3, nil)

	for _, right := range []float64{10, 1e15} {
		op, err := f.handler.Handle(ctx, commands.AddOperationCommand{
			TreeID:            7,
			UserID:            2,
			Type:              valueobjects.OperationMultiply,
			RightNumber:       right,
			ParentOperationID: int64Ptr(3),
		})

		assert.Nil(t, op)
		assert.True(t, pkgerrors.IsValidation(err), "right %g: %v", right, err)
	}
	f.opRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	f.cache.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	f.publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
}

func TestAddOperationHandler_CacheAndPublishFailuresAreTolerated(t *testing.T) {
	ctx := context.Background()
	f := newOperationFixture()
	f.treeRepo.On("GetByID", ctx, int64(7)).Return(&entities.Tree{ID: 7, StartingNumber: 1}, nil)
	f.opRepo.On("CountByTree", ctx, int64(7)).Return(0, nil)
	f.expectCreate(ctx, 4)
	f.cache.On("Set", ctx, mock.Anything, mock.Anything, time.Duration(0)).Return(errors.New("redis down"))
	f.publisher.On("Publish", ctx, mock.Anything).Return(errors.New("bus down"))

	op, err := f.handler.Handle(ctx, commands.AddOperationCommand{
		TreeID: 7, UserID: 2, Type: valueobjects.OperationSubtract, RightNumber: 3,
	})

	require.NoError(t, err)
	assert.Equal(t, -2.0, op.Result)
}

func TestCreateTreeHandler_Handle(t *testing.T) {
	ctx := context.Background()
	treeRepo := new(mocks.MockTreeRepository)
	cache := new(mocks.MockCache)
	publisher := new(mocks.MockEventPublisher)
	logger := zap.NewNop()

	treeRepo.On("Create", ctx, mock.AnythingOfType("*entities.Tree")).
		Run(func(args mock.Arguments) { args.Get(1).(*entities.Tree).ID = 11 }).
		Return(nil)
	cache.On("Set", ctx, "trees:all:gen", mock.AnythingOfType("[]uint8"), time.Duration(0)).Return(nil)
	publisher.On("Publish", ctx, mock.MatchedBy(func(evts []events.DomainEvent) bool {
		return len(evts) == 1 && evts[0].GetAggregateID() == "11"
	})).Return(nil)

	handler := NewCreateTreeHandler(treeRepo, cache, services.NewEventDispatcher(publisher, logger), validators.NewValidator(nil), logger)

	tree, err := handler.Handle(ctx, commands.CreateTreeCommand{UserID: 3, StartingNumber: 0})

	require.NoError(t, err)
	assert.Equal(t, int64(11), tree.ID)
	assert.Equal(t, 0.0, tree.StartingNumber)
	assert.Equal(t, int64(3), tree.UserID)
	treeRepo.AssertExpectations(t)
	cache.AssertExpectations(t)
	publisher.AssertExpectations(t)
}

func TestSignUpHandler_Handle(t *testing.T) {
	ctx := context.Background()
	userRepo := new(mocks.MockUserRepository)
	hasher := new(mocks.MockPasswordHasher)
	tokens := new(mocks.MockTokenIssuer)
	expires := time.Now().Add(time.Hour)

	hasher.On("Hash", "password123").Return("hashed", nil)
	userRepo.On("Create", ctx, mock.MatchedBy(func(u *entities.User) bool {
		return u.Email == "alice@example.com" && u.PasswordHash == "hashed" && u.Role == valueobjects.RoleUnregistered
	})).Run(func(args mock.Arguments) { args.Get(1).(*entities.User).ID = 1 }).Return(nil)
	tokens.On("Issue", mock.AnythingOfType("*entities.User")).Return("tok", expires, nil)

	handler := NewSignUpHandler(userRepo, hasher, tokens, validators.NewValidator(nil), zap.NewNop())

	result, err := handler.Handle(ctx, commands.SignUpCommand{
		Username: "alice",
		Email:    "Alice@Example.com",
		Password: "password123",
	})

	require.NoError(t, err)
	assert.Equal(t, "tok", result.Token)
	assert.Equal(t, expires, result.ExpiresAt)
	assert.Equal(t, int64(1), result.User.ID)
	assert.Equal(t, valueobjects.RoleUnregistered, result.User.Role)
	userRepo.AssertExpectations(t)
	hasher.AssertExpectations(t)
	tokens.AssertExpectations(t)
}

func TestSignUpHandler_Duplicate(t *testing.T) {
	ctx := context.Background()
	userRepo := new(mocks.MockUserRepository)
	hasher := new(mocks.MockPasswordHasher)
	tokens := new(mocks.MockTokenIssuer)

	hasher.On("Hash", "password123").Return("hashed", nil)
	userRepo.On("Create", ctx, mock.Anything).Return(pkgerrors.DuplicateUser("email"))

	handler := NewSignUpHandler(userRepo, hasher, tokens, validators.NewValidator(nil), zap.NewNop())

	_, err := handler.Handle(ctx, commands.SignUpCommand{Username: "alice", Email: "a@example.com", Password: "password123"})

	assert.ErrorIs(t, err, pkgerrors.ErrDuplicateUser)
	tokens.AssertNotCalled(t, "Issue", mock.Anything)
}

func TestSignUpHandler_InvalidDetails(t *testing.T) {
	hasher := new(mocks.MockPasswordHasher)
	handler := NewSignUpHandler(new(mocks.MockUserRepository), hasher, new(mocks.MockTokenIssuer), validators.NewValidator(nil), zap.NewNop())

	_, err := handler.Handle(context.Background(), commands.SignUpCommand{Username: "al", Email: "a@example.com", Password: "password123"})

	assert.True(t, pkgerrors.IsValidation(err))
	hasher.AssertNotCalled(t, "Hash", mock.Anything)
}

func TestLoginHandler_Handle(t *testing.T) {
	ctx := context.Background()
	user := &entities.User{ID: 5, Username: "bob", Email: "bob@example.com", PasswordHash: "hashed", Role: valueobjects.RoleRegistered}

	tests := []struct {
		name    string
		setup   func(users *mocks.MockUserRepository, hasher *mocks.MockPasswordHasher, tokens *mocks.MockTokenIssuer)
		wantErr error
	}{
		{
			name: "success",
			setup: func(users *mocks.MockUserRepository, hasher *mocks.MockPasswordHasher, tokens *mocks.MockTokenIssuer) {
				users.On("GetByEmail", ctx, "bob@example.com").Return(user, nil)
				hasher.On("Compare", "hashed", "secret-pass").Return(nil)
				tokens.On("Issue", user).Return("tok", time.Time{}, nil)
			},
		},
		{
			name: "unknown email",
			setup: func(users *mocks.MockUserRepository, _ *mocks.MockPasswordHasher, _ *mocks.MockTokenIssuer) {
				users.On("GetByEmail", ctx, "bob@example.com").Return(nil, pkgerrors.UserNotFound())
			},
			wantErr: pkgerrors.ErrInvalidCredentials,
		},
		{
			name: "wrong password",
			setup: func(users *mocks.MockUserRepository, hasher *mocks.MockPasswordHasher, _ *mocks.MockTokenIssuer) {
				users.On("GetByEmail", ctx, "bob@example.com").Return(user, nil)
				hasher.On("Compare", "hashed", "secret-pass").Return(errors.New("mismatch"))
			},
			wantErr: pkgerrors.ErrInvalidCredentials,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users := new(mocks.MockUserRepository)
			hasher := new(mocks.MockPasswordHasher)
			tokens := new(mocks.MockTokenIssuer)
			tt.setup(users, hasher, tokens)

			handler := NewLoginHandler(users, hasher, tokens, zap.NewNop())
			result, err := handler.Handle(ctx, commands.LoginCommand{Email: " BOB@example.com ", Password: "secret-pass"})

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, "Incorrect email or password", pkgerrors.GetAppError(err).Message)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "tok", result.Token)
			assert.Equal(t, "bob", result.User.Username)
			users.AssertExpectations(t)
			hasher.AssertExpectations(t)
			tokens.AssertExpectations(t)
		})
	}
}

func TestRegisterUserHandler_Handle(t *testing.T) {
	ctx := context.Background()
	users := new(mocks.MockUserRepository)
	tokens := new(mocks.MockTokenIssuer)
	user := &entities.User{ID: 5, Username: "bob", Role: valueobjects.RoleUnregistered}

	users.On("GetByID", ctx, int64(5)).Return(user, nil)
	users.On("Update", ctx, mock.MatchedBy(func(u *entities.User) bool {
		return u.Role == valueobjects.RoleRegistered
	})).Return(nil).Once()
	tokens.On("Issue", user).Return("tok", time.Time{}, nil)

	handler := NewRegisterUserHandler(users, tokens, zap.NewNop())

	result, err := handler.Handle(ctx, commands.RegisterUserCommand{UserID: 5})
	require.NoError(t, err)
	assert.Equal(t, valueobjects.RoleRegistered, result.User.Role)

	// Registering again issues a token without another update
	_, err = handler.Handle(ctx, commands.RegisterUserCommand{UserID: 5})
	require.NoError(t, err)

	users.AssertNumberOfCalls(t, "Update", 1)
	tokens.AssertNumberOfCalls(t, "Issue", 2)
}
