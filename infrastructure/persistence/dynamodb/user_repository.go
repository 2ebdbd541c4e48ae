package dynamodb

import (
	"context"
	"errors"
	"strings"

	"numtree-backend/application/ports"
	"numtree-backend/domain/core/entities"
	pkgerrors "numtree-backend/pkg/errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"
)

// UserRepository implements ports.UserRepository
type UserRepository struct {
	store *Store
}

var _ ports.UserRepository = (*UserRepository)(nil)

// NewUserRepository creates a new UserRepository
func NewUserRepository(store *Store) *UserRepository {
	return &UserRepository{store: store}
}

// Create writes the profile and both uniqueness guards in one transaction
func (r *UserRepository) Create(ctx context.Context, user *entities.User) error {
	id, err := r.store.nextID(ctx, "user")
	if err != nil {
		return err
	}
	user.ID = id

	profile, err := attributevalue.MarshalMap(newUserItem(user))
	if err != nil {
		return pkgerrors.NewDatabaseError("marshal user", err)
	}
	emailGuard, err := attributevalue.MarshalMap(guardItem{PK: emailPK(user.Email), SK: skUnique, EntityType: entityGuard, UserID: id})
	if err != nil {
		return pkgerrors.NewDatabaseError("marshal user", err)
	}
	nameGuard, err := attributevalue.MarshalMap(guardItem{PK: usernamePK(user.Username), SK: skUnique, EntityType: entityGuard, UserID: id})
	if err != nil {
		return pkgerrors.NewDatabaseError("marshal user", err)
	}

	notExists := aws.String("attribute_not_exists(PK)")
	table := aws.String(r.store.tableName)
	_, err = r.store.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{Put: &types.Put{TableName: table, Item: profile, ConditionExpression: notExists}},
			{Put: &types.Put{TableName: table, Item: emailGuard, ConditionExpression: notExists}},
			{Put: &types.Put{TableName: table, Item: nameGuard, ConditionExpression: notExists}},
		},
	})
	if err != nil {
		user.ID = 0
		var canceled *types.TransactionCanceledException
		if errors.As(err, &canceled) {
			if field := conflictingField(canceled.CancellationReasons); field != "" {
				return pkgerrors.DuplicateUser(field)
			}
		}
		return pkgerrors.NewDatabaseError("create user", err)
	}

	r.store.logger.Debug("User created", zap.Int64("user_id", id))
	return nil
}

// conflictingField maps the failed guard of a canceled create to its field
func conflictingField(reasons []types.CancellationReason) string {
	fields := []string{"", "email", "username"}
	for i, reason := range reasons {
		if i < len(fields) && fields[i] != "" && aws.ToString(reason.Code) == "ConditionalCheckFailed" {
			return fields[i]
		}
	}
	return ""
}

// GetByID returns UserNotFound when absent
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*entities.User, error) {
	var item userItem
	found, err := r.store.getItem(ctx, userPK(id), skProfile, &item)
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("get user", err)
	}
	if !found {
		return nil, pkgerrors.UserNotFound()
	}
	return item.toEntity(), nil
}

// GetByEmail resolves the email guard, then loads the profile
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entities.User, error) {
	var guard guardItem
	found, err := r.store.getItem(ctx, emailPK(strings.ToLower(strings.TrimSpace(email))), skUnique, &guard)
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("get user by email", err)
	}
	if !found {
		return nil, pkgerrors.UserNotFound()
	}
	return r.GetByID(ctx, guard.UserID)
}

// Update persists the role and updated timestamp of an existing user
func (r *UserRepository) Update(ctx context.Context, user *entities.User) error {
	update := expression.Set(expression.Name("Role"), expression.Value(user.Role.String())).
		Set(expression.Name("UpdatedAt"), expression.Value(formatTime(user.UpdatedAt)))
	expr, err := expression.NewBuilder().
		WithUpdate(update).
		WithCondition(expression.AttributeExists(expression.Name(attrPK))).
		Build()
	if err != nil {
		return pkgerrors.NewDatabaseError("build user update", err)
	}

	_, err = r.store.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(r.store.tableName),
		Key: map[string]types.AttributeValue{
			attrPK: &types.AttributeValueMemberS{Value: userPK(user.ID)},
			attrSK: &types.AttributeValueMemberS{Value: skProfile},
		},
		UpdateExpression:          expr.Update(),
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		var conditionalCheckFailed *types.ConditionalCheckFailedException
		if errors.As(err, &conditionalCheckFailed) {
			return pkgerrors.UserNotFound()
		}
		return pkgerrors.NewDatabaseError("update user", err)
	}
	return nil
}

// usernames batch-loads the usernames of the given users. Unknown ids are
// absent from the result.
func (s *Store) usernames(ctx context.Context, ids []int64) (map[int64]string, error) {
	names := make(map[int64]string, len(ids))
	seen := make(map[int64]bool, len(ids))
	var keys []map[string]types.AttributeValue
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		keys = append(keys, map[string]types.AttributeValue{
			attrPK: &types.AttributeValueMemberS{Value: userPK(id)},
			attrSK: &types.AttributeValueMemberS{Value: skProfile},
		})
	}

	proj, err := expression.NewBuilder().
		WithProjection(expression.NamesList(expression.Name("UserID"), expression.Name("Username"))).
		Build()
	if err != nil {
		return nil, err
	}

	for start := 0; start < len(keys); start += batchGetLimit {
		end := min(start+batchGetLimit, len(keys))
		request := map[string]types.KeysAndAttributes{
			s.tableName: {
				Keys:                     keys[start:end],
				ProjectionExpression:     proj.Projection(),
				ExpressionAttributeNames: proj.Names(),
			},
		}
		for len(request) > 0 {
			out, err := s.client.BatchGetItem(ctx, &dynamodb.BatchGetItemInput{RequestItems: request})
			if err != nil {
				return nil, err
			}
			for _, raw := range out.Responses[s.tableName] {
				var item userItem
				if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
					return nil, err
				}
				names[item.UserID] = item.Username
			}
			request = out.UnprocessedKeys
		}
	}
	return names, nil
}
