// Package sqlite stores users, trees and operations in a SQLite database
// through the pure-Go modernc.org/sqlite driver.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"numtree-backend/infrastructure/persistence/schema"
	pkgerrors "numtree-backend/pkg/errors"
	"numtree-backend/pkg/utils"

	"go.uber.org/zap"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// Migrations is the ordered schema of the service
var Migrations = []schema.Migration{
	{
		Version:     1,
		Description: "create users, trees and operations",
		Up: `
CREATE TABLE users (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	username   TEXT NOT NULL UNIQUE,
	email      TEXT NOT NULL UNIQUE,
	password   TEXT NOT NULL,
	role       TEXT NOT NULL DEFAULT 'UNREGISTERED',
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL
);
CREATE TABLE trees (
	id              INTEGER PRIMARY KEY AUTOINCREMENT,
	starting_number REAL NOT NULL,
	user_id         INTEGER NOT NULL REFERENCES users(id),
	created_at      TEXT NOT NULL
);
CREATE TABLE operations (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	type         TEXT NOT NULL CHECK (type IN ('ADD', 'SUBTRACT', 'MULTIPLY', 'DIVIDE')),
	right_number REAL NOT NULL,
	result       REAL NOT NULL,
	tree_id      INTEGER NOT NULL REFERENCES trees(id) ON DELETE CASCADE,
	user_id      INTEGER NOT NULL REFERENCES users(id),
	parent_id    INTEGER REFERENCES operations(id),
	created_at   TEXT NOT NULL
);`,
	},
	{
		Version:     2,
		Description: "index operations by tree",
		Up:          `CREATE INDEX idx_operations_tree ON operations(tree_id, id);`,
	},
}

// DB wraps the connection pool shared by the repositories
type DB struct {
	conn   *sql.DB
	logger *zap.Logger
}

// Open opens (creating if needed) the database at path with foreign keys,
// WAL journaling and a busy timeout enabled.
func Open(path string, logger *zap.Logger) (*DB, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("sqlite: database path is required")
	}

	q := url.Values{}
	q.Add("_pragma", "foreign_keys(1)")
	q.Add("_pragma", "busy_timeout(5000)")
	q.Add("_pragma", "journal_mode(WAL)")
	dsn := "file:" + path + "?" + q.Encode()

	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %s: %w", path, err)
	}
	// SQLite serializes writers; share one connection.
	conn.SetMaxOpenConns(1)

	return &DB{conn: conn, logger: logger}, nil
}

// Migrate brings the schema up to date and returns how many migrations ran
func (db *DB) Migrate(ctx context.Context) (int, error) {
	evo := schema.NewSchemaEvolution(db.conn, db.logger)
	for _, m := range Migrations {
		if err := evo.RegisterMigration(m); err != nil {
			return 0, err
		}
	}
	return evo.Migrate(ctx)
}

// Ping implements ports.HealthChecker
func (db *DB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

// Close closes the pool
func (db *DB) Close() error {
	return db.conn.Close()
}

// Conn exposes the pool for tooling such as the migrate command
func (db *DB) Conn() *sql.DB {
	return db.conn
}

func isUniqueViolation(err error) bool {
	var se *sqlite.Error
	return errors.As(err, &se) && se.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
}

func formatTime(t time.Time) string {
	return utils.FormatTimestamp(t)
}

func parseTime(s string) time.Time {
	t, err := utils.ParseTimestamp(s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func dbError(op string, err error) error {
	return pkgerrors.NewDatabaseError(op, err)
}
