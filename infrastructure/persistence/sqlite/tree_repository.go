package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"numtree-backend/application/ports"
	"numtree-backend/domain/core/entities"
	pkgerrors "numtree-backend/pkg/errors"

	"go.uber.org/zap"
)

// TreeRepository implements ports.TreeRepository
type TreeRepository struct {
	db     *DB
	logger *zap.Logger
}

var _ ports.TreeRepository = (*TreeRepository)(nil)

// NewTreeRepository creates a new TreeRepository
func NewTreeRepository(db *DB, logger *zap.Logger) *TreeRepository {
	return &TreeRepository{db: db, logger: logger}
}

const treeSelect = `
SELECT t.id, t.starting_number, t.user_id, t.created_at, u.username
FROM trees t LEFT JOIN users u ON u.id = t.user_id`

// Create inserts the tree and assigns its ID
func (r *TreeRepository) Create(ctx context.Context, tree *entities.Tree) error {
	res, err := r.db.conn.ExecContext(ctx,
		`INSERT INTO trees (starting_number, user_id, created_at) VALUES (?, ?, ?)`,
		tree.StartingNumber, tree.UserID, formatTime(tree.CreatedAt),
	)
	if err != nil {
		return dbError("create tree", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return dbError("create tree", err)
	}
	tree.ID = id

	r.logger.Debug("Tree created", zap.Int64("tree_id", id))
	return nil
}

// GetByID returns TreeNotFound when absent
func (r *TreeRepository) GetByID(ctx context.Context, id int64) (*entities.Tree, error) {
	row := r.db.conn.QueryRowContext(ctx, treeSelect+` WHERE t.id = ?`, id)
	tree, err := scanTree(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, pkgerrors.TreeNotFound(id)
	}
	if err != nil {
		return nil, dbError("get tree", err)
	}
	return tree, nil
}

// GetWithOperations returns the tree with its operations in id order
func (r *TreeRepository) GetWithOperations(ctx context.Context, id int64) (*ports.TreeWithOperations, error) {
	tree, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	rows, err := r.db.conn.QueryContext(ctx, operationSelect+` WHERE o.tree_id = ? ORDER BY o.id`, id)
	if err != nil {
		return nil, dbError("list operations", err)
	}
	defer rows.Close()

	ops := []entities.Operation{}
	for rows.Next() {
		op, err := scanOperation(rows)
		if err != nil {
			return nil, dbError("list operations", err)
		}
		ops = append(ops, *op)
	}
	if err := rows.Err(); err != nil {
		return nil, dbError("list operations", err)
	}

	return &ports.TreeWithOperations{Tree: tree, Operations: ops}, nil
}

// ListWithOperations loads every tree and every operation in two queries
func (r *TreeRepository) ListWithOperations(ctx context.Context) ([]ports.TreeWithOperations, error) {
	treeRows, err := r.db.conn.QueryContext(ctx, treeSelect+` ORDER BY t.id`)
	if err != nil {
		return nil, dbError("list trees", err)
	}
	defer treeRows.Close()

	result := []ports.TreeWithOperations{}
	index := make(map[int64]int)
	for treeRows.Next() {
		tree, err := scanTree(treeRows)
		if err != nil {
			return nil, dbError("list trees", err)
		}
		index[tree.ID] = len(result)
		result = append(result, ports.TreeWithOperations{Tree: tree, Operations: []entities.Operation{}})
	}
	if err := treeRows.Err(); err != nil {
		return nil, dbError("list trees", err)
	}
	if len(result) == 0 {
		return result, nil
	}

	opRows, err := r.db.conn.QueryContext(ctx, operationSelect+` ORDER BY o.tree_id, o.id`)
	if err != nil {
		return nil, dbError("list operations", err)
	}
	defer opRows.Close()

	for opRows.Next() {
		op, err := scanOperation(opRows)
		if err != nil {
			return nil, dbError("list operations", err)
		}
		if i, ok := index[op.TreeID]; ok {
			result[i].Operations = append(result[i].Operations, *op)
		}
	}
	if err := opRows.Err(); err != nil {
		return nil, dbError("list operations", err)
	}
	return result, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTree(s scanner) (*entities.Tree, error) {
	var (
		t         entities.Tree
		createdAt string
		username  sql.NullString
	)
	if err := s.Scan(&t.ID, &t.StartingNumber, &t.UserID, &createdAt, &username); err != nil {
		return nil, err
	}
	t.CreatedAt = parseTime(createdAt)
	if username.Valid {
		t.User = &entities.UserSummary{Username: username.String}
	}
	return &t, nil
}
