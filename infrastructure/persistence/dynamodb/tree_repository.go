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
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// maxParallelTreeLoads bounds concurrent partition queries when listing
const maxParallelTreeLoads = 8

// TreeRepository implements ports.TreeRepository
type TreeRepository struct {
	store *Store
}

var _ ports.TreeRepository = (*TreeRepository)(nil)

// NewTreeRepository creates a new TreeRepository
func NewTreeRepository(store *Store) *TreeRepository {
	return &TreeRepository{store: store}
}

// Create allocates an id and writes the tree metadata item
func (r *TreeRepository) Create(ctx context.Context, tree *entities.Tree) error {
	id, err := r.store.nextID(ctx, "tree")
	if err != nil {
		return err
	}
	tree.ID = id

	av, err := attributevalue.MarshalMap(newTreeItem(tree))
	if err != nil {
		return pkgerrors.NewDatabaseError("marshal tree", err)
	}
	if _, err := r.store.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.store.tableName),
		Item:                av,
		ConditionExpression: aws.String("attribute_not_exists(PK)"),
	}); err != nil {
		tree.ID = 0
		return pkgerrors.NewDatabaseError("create tree", err)
	}

	r.store.logger.Debug("Tree created", zap.Int64("tree_id", id))
	return nil
}

// GetByID returns TreeNotFound when absent
func (r *TreeRepository) GetByID(ctx context.Context, id int64) (*entities.Tree, error) {
	var item treeItem
	found, err := r.store.getItem(ctx, treePK(id), skMetadata, &item)
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("get tree", err)
	}
	if !found {
		return nil, pkgerrors.TreeNotFound(id)
	}

	tree := item.toEntity()
	if err := r.enrich(ctx, []*entities.Tree{tree}, [][]entities.Operation{nil}); err != nil {
		return nil, err
	}
	return tree, nil
}

// GetWithOperations reads the tree partition in one query
func (r *TreeRepository) GetWithOperations(ctx context.Context, id int64) (*ports.TreeWithOperations, error) {
	tree, ops, err := r.loadPartition(ctx, id)
	if err != nil {
		return nil, err
	}
	if tree == nil {
		return nil, pkgerrors.TreeNotFound(id)
	}
	if err := r.enrich(ctx, []*entities.Tree{tree}, [][]entities.Operation{ops}); err != nil {
		return nil, err
	}
	return &ports.TreeWithOperations{Tree: tree, Operations: ops}, nil
}

// ListWithOperations lists trees through GSI1 and loads their partitions
// concurrently.
func (r *TreeRepository) ListWithOperations(ctx context.Context) ([]ports.TreeWithOperations, error) {
	keyCond := expression.Key(attrGSI1PK).Equal(expression.Value(treesPartition))
	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("build tree list query", err)
	}

	raw, err := r.store.queryAll(ctx, &dynamodb.QueryInput{
		TableName:                 aws.String(r.store.tableName),
		IndexName:                 aws.String(gsi1),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ScanIndexForward:          aws.Bool(true),
	})
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("list trees", err)
	}

	trees := make([]*entities.Tree, len(raw))
	for i, av := range raw {
		var item treeItem
		if err := attributevalue.UnmarshalMap(av, &item); err != nil {
			return nil, pkgerrors.NewDatabaseError("unmarshal tree", err)
		}
		trees[i] = item.toEntity()
	}

	ops := make([][]entities.Operation, len(trees))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelTreeLoads)
	for i, tree := range trees {
		g.Go(func() error {
			_, treeOps, err := r.loadPartition(gctx, tree.ID)
			ops[i] = treeOps
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if err := r.enrich(ctx, trees, ops); err != nil {
		return nil, err
	}

	result := make([]ports.TreeWithOperations, len(trees))
	for i := range trees {
		result[i] = ports.TreeWithOperations{Tree: trees[i], Operations: ops[i]}
	}
	return result, nil
}

// loadPartition returns the tree metadata (nil when missing) and its
// operations in id order.
func (r *TreeRepository) loadPartition(ctx context.Context, id int64) (*entities.Tree, []entities.Operation, error) {
	keyCond := expression.Key(attrPK).Equal(expression.Value(treePK(id)))
	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		return nil, nil, pkgerrors.NewDatabaseError("build tree query", err)
	}

	raw, err := r.store.queryAll(ctx, &dynamodb.QueryInput{
		TableName:                 aws.String(r.store.tableName),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ScanIndexForward:          aws.Bool(true),
	})
	if err != nil {
		return nil, nil, pkgerrors.NewDatabaseError("get tree", err)
	}

	var tree *entities.Tree
	ops := []entities.Operation{}
	for _, av := range raw {
		var kind struct {
			EntityType string `dynamodbav:"EntityType"`
		}
		if err := attributevalue.UnmarshalMap(av, &kind); err != nil {
			return nil, nil, pkgerrors.NewDatabaseError("unmarshal tree item", err)
		}
		switch kind.EntityType {
		case entityTree:
			var item treeItem
			if err := attributevalue.UnmarshalMap(av, &item); err != nil {
				return nil, nil, pkgerrors.NewDatabaseError("unmarshal tree", err)
			}
			tree = item.toEntity()
		case entityOperation:
			var item operationItem
			if err := attributevalue.UnmarshalMap(av, &item); err != nil {
				return nil, nil, pkgerrors.NewDatabaseError("unmarshal operation", err)
			}
			ops = append(ops, item.toEntity())
		}
	}
	return tree, ops, nil
}

// enrich attaches author usernames to trees and their operations
func (r *TreeRepository) enrich(ctx context.Context, trees []*entities.Tree, ops [][]entities.Operation) error {
	var ids []int64
	for i, tree := range trees {
		ids = append(ids, tree.UserID)
		for _, op := range ops[i] {
			ids = append(ids, op.UserID)
		}
	}
	if len(ids) == 0 {
		return nil
	}

	names, err := r.store.usernames(ctx, ids)
	if err != nil {
		return pkgerrors.NewDatabaseError("load usernames", err)
	}
	for i, tree := range trees {
		if name, ok := names[tree.UserID]; ok {
			tree.User = &entities.UserSummary{Username: name}
		}
		for j := range ops[i] {
			if name, ok := names[ops[i][j].UserID]; ok {
				ops[i][j].User = &entities.UserSummary{Username: name}
			}
		}
	}
	return nil
}
