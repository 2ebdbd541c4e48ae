package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"numtree-backend/application/ports"
	"numtree-backend/domain/core/entities"
	"numtree-backend/domain/core/valueobjects"
	pkgerrors "numtree-backend/pkg/errors"

	"go.uber.org/zap"
)

// UserRepository implements ports.UserRepository
type UserRepository struct {
	db     *DB
	logger *zap.Logger
}

var _ ports.UserRepository = (*UserRepository)(nil)

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *DB, logger *zap.Logger) *UserRepository {
	return &UserRepository{db: db, logger: logger}
}

const userColumns = `id, username, email, password, role, created_at, updated_at`

// Create inserts the user and assigns its ID
func (r *UserRepository) Create(ctx context.Context, user *entities.User) error {
	res, err := r.db.conn.ExecContext(ctx,
		`INSERT INTO users (username, email, password, role, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
		user.Username, user.Email, user.PasswordHash, user.Role.String(),
		formatTime(user.CreatedAt), formatTime(user.UpdatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			field := "username"
			if strings.Contains(err.Error(), "users.email") {
				field = "email"
			}
			return pkgerrors.DuplicateUser(field)
		}
		return dbError("create user", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return dbError("create user", err)
	}
	user.ID = id

	r.logger.Debug("User created", zap.Int64("user_id", id))
	return nil
}

// GetByID returns UserNotFound when absent
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*entities.User, error) {
	row := r.db.conn.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	return r.scan(row)
}

// GetByEmail matches case-insensitively; returns UserNotFound when absent
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entities.User, error) {
	row := r.db.conn.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ?`, strings.ToLower(strings.TrimSpace(email)))
	return r.scan(row)
}

// Update persists the role and updated timestamp
func (r *UserRepository) Update(ctx context.Context, user *entities.User) error {
	res, err := r.db.conn.ExecContext(ctx,
		`UPDATE users SET role = ?, updated_at = ? WHERE id = ?`,
		user.Role.String(), formatTime(user.UpdatedAt), user.ID,
	)
	if err != nil {
		return dbError("update user", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return pkgerrors.UserNotFound()
	}
	return nil
}

func (r *UserRepository) scan(row *sql.Row) (*entities.User, error) {
	var (
		u                    entities.User
		role                 string
		createdAt, updatedAt string
	)
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &role, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, pkgerrors.UserNotFound()
	}
	if err != nil {
		return nil, dbError("get user", err)
	}

	u.Role = valueobjects.Role(role)
	u.CreatedAt = parseTime(createdAt)
	u.UpdatedAt = parseTime(updatedAt)
	return &u, nil
}
