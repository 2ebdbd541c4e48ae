package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"numtree-backend/application/ports"
	"numtree-backend/domain/core/entities"
	"numtree-backend/domain/core/valueobjects"
	pkgerrors "numtree-backend/pkg/errors"

	"go.uber.org/zap"
)

// OperationRepository implements ports.OperationRepository
type OperationRepository struct {
	db     *DB
	logger *zap.Logger
}

var _ ports.OperationRepository = (*OperationRepository)(nil)

// NewOperationRepository creates a new OperationRepository
func NewOperationRepository(db *DB, logger *zap.Logger) *OperationRepository {
	return &OperationRepository{db: db, logger: logger}
}

const operationSelect = `
SELECT o.id, o.type, o.right_number, o.result, o.tree_id, o.user_id, o.parent_id, o.created_at, u.username
FROM operations o LEFT JOIN users u ON u.id = o.user_id`

// Create inserts the operation and assigns its ID
func (r *OperationRepository) Create(ctx context.Context, op *entities.Operation) error {
	var parent sql.NullInt64
	if op.ParentID != nil {
		parent = sql.NullInt64{Int64: *op.ParentID, Valid: true}
	}

	res, err := r.db.conn.ExecContext(ctx,
		`INSERT INTO operations (type, right_number, result, tree_id, user_id, parent_id, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		op.Type.String(), op.RightNumber, op.Result, op.TreeID, op.UserID, parent, formatTime(op.CreatedAt),
	)
	if err != nil {
		return dbError("create operation", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return dbError("create operation", err)
	}
	op.ID = id

	r.logger.Debug("Operation created",
		zap.Int64("operation_id", id),
		zap.Int64("tree_id", op.TreeID),
	)
	return nil
}

// GetByID returns OperationNotFound when absent
func (r *OperationRepository) GetByID(ctx context.Context, id int64) (*entities.Operation, error) {
	row := r.db.conn.QueryRowContext(ctx, operationSelect+` WHERE o.id = ?`, id)
	op, err := scanOperation(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, pkgerrors.OperationNotFound(id)
	}
	if err != nil {
		return nil, dbError("get operation", err)
	}
	return op, nil
}

// CountByTree returns how many operations the tree holds
func (r *OperationRepository) CountByTree(ctx context.Context, treeID int64) (int, error) {
	var n int
	if err := r.db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM operations WHERE tree_id = ?`, treeID).Scan(&n); err != nil {
		return 0, dbError("count operations", err)
	}
	return n, nil
}

func scanOperation(s scanner) (*entities.Operation, error) {
	var (
		op        entities.Operation
		opType    string
		parent    sql.NullInt64
		createdAt string
		username  sql.NullString
	)
	if err := s.Scan(&op.ID, &opType, &op.RightNumber, &op.Result, &op.TreeID, &op.UserID,
		&parent, &createdAt, &username); err != nil {
		return nil, err
	}
	op.Type = valueobjects.OperationType(opType)
	if parent.Valid {
		id := parent.Int64
		op.ParentID = &id
	}
	op.CreatedAt = parseTime(createdAt)
	if username.Valid {
		op.User = &entities.UserSummary{Username: username.String}
	}
	return &op, nil
}
