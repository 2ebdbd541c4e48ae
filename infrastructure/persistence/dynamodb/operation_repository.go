package dynamodb

import (
	"context"

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

// OperationRepository implements ports.OperationRepository
type OperationRepository struct {
	store *Store
}

var _ ports.OperationRepository = (*OperationRepository)(nil)

// NewOperationRepository creates a new OperationRepository
func NewOperationRepository(store *Store) *OperationRepository {
	return &OperationRepository{store: store}
}

// Create allocates an id and writes the operation into its tree partition
func (r *OperationRepository) Create(ctx context.Context, op *entities.Operation) error {
	id, err := r.store.nextID(ctx, "operation")
	if err != nil {
		return err
	}
	op.ID = id

	av, err := attributevalue.MarshalMap(newOperationItem(op))
	if err != nil {
		return pkgerrors.NewDatabaseError("marshal operation", err)
	}
	if _, err := r.store.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.store.tableName),
		Item:                av,
		ConditionExpression: aws.String("attribute_not_exists(PK)"),
	}); err != nil {
		op.ID = 0
		return pkgerrors.NewDatabaseError("create operation", err)
	}

	r.store.logger.Debug("Operation created",
		zap.Int64("operation_id", id),
		zap.Int64("tree_id", op.TreeID),
	)
	return nil
}

// GetByID looks the operation up through GSI1
func (r *OperationRepository) GetByID(ctx context.Context, id int64) (*entities.Operation, error) {
	keyCond := expression.Key(attrGSI1PK).Equal(expression.Value(operationGSI1PK(id)))
	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("build operation query", err)
	}

	out, err := r.store.client.Query(ctx, &dynamodb.QueryInput{
		TableName:                 aws.String(r.store.tableName),
		IndexName:                 aws.String(gsi1),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		Limit:                     aws.Int32(1),
	})
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("get operation", err)
	}
	if len(out.Items) == 0 {
		return nil, pkgerrors.OperationNotFound(id)
	}

	var item operationItem
	if err := attributevalue.UnmarshalMap(out.Items[0], &item); err != nil {
		return nil, pkgerrors.NewDatabaseError("unmarshal operation", err)
	}
	op := item.toEntity()
	return &op, nil
}

// CountByTree counts operation items in the tree partition
func (r *OperationRepository) CountByTree(ctx context.Context, treeID int64) (int, error) {
	keyCond := expression.Key(attrPK).Equal(expression.Value(treePK(treeID))).
		And(expression.Key(attrSK).BeginsWith(skOpPrefix))
	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		return 0, pkgerrors.NewDatabaseError("build operation count", err)
	}

	in := &dynamodb.QueryInput{
		TableName:                 aws.String(r.store.tableName),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		Select:                    types.SelectCount,
	}

	total := 0
	for {
		out, err := r.store.client.Query(ctx, in)
		if err != nil {
			return 0, pkgerrors.NewDatabaseError("count operations", err)
		}
		total += int(out.Count)
		if len(out.LastEvaluatedKey) == 0 {
			return total, nil
		}
		in.ExclusiveStartKey = out.LastEvaluatedKey
	}
}
