package schema

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"
)

// SchemaVersion is one applied migration as recorded in the database
type SchemaVersion struct {
	Version     int       `json:"version"`
	Description string    `json:"description"`
	AppliedAt   time.Time `json:"applied_at"`
	Checksum    string    `json:"checksum"`
}

// Migration moves the schema from Version-1 to Version
type Migration struct {
	Version     int
	Description string
	Up          string
}

// Checksum identifies the migration's SQL
func (m Migration) Checksum() string {
	sum := sha256.Sum256([]byte(m.Up))
	return hex.EncodeToString(sum[:])
}

// SchemaEvolution applies ordered migrations to a SQL database and records
// them in the schema_migrations table.
type SchemaEvolution struct {
	db         *sql.DB
	migrations []Migration
	logger     *zap.Logger
}

// NewSchemaEvolution creates a new schema evolution manager
func NewSchemaEvolution(db *sql.DB, logger *zap.Logger) *SchemaEvolution {
	return &SchemaEvolution{db: db, logger: logger}
}

// RegisterMigration registers a new migration
func (s *SchemaEvolution) RegisterMigration(migration Migration) error {
	if migration.Version <= 0 {
		return fmt.Errorf("invalid migration: version must be positive")
	}
	for _, existing := range s.migrations {
		if existing.Version == migration.Version {
			return fmt.Errorf("migration %d already exists", migration.Version)
		}
	}

	s.migrations = append(s.migrations, migration)
	sort.Slice(s.migrations, func(i, j int) bool {
		return s.migrations[i].Version < s.migrations[j].Version
	})
	return nil
}

// LatestVersion returns the highest registered version
func (s *SchemaEvolution) LatestVersion() int {
	if len(s.migrations) == 0 {
		return 0
	}
	return s.migrations[len(s.migrations)-1].Version
}

func (s *SchemaEvolution) ensureTable(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version     INTEGER PRIMARY KEY,
			description TEXT NOT NULL,
			checksum    TEXT NOT NULL,
			applied_at  TEXT NOT NULL
		)`)
	return err
}

// History returns the applied migrations, oldest first
func (s *SchemaEvolution) History(ctx context.Context) ([]SchemaVersion, error) {
	if err := s.ensureTable(ctx); err != nil {
		return nil, fmt.Errorf("create schema_migrations: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT version, description, checksum, applied_at FROM schema_migrations ORDER BY version`)
	if err != nil {
		return nil, fmt.Errorf("read schema history: %w", err)
	}
	defer rows.Close()

	var history []SchemaVersion
	for rows.Next() {
		var v SchemaVersion
		var appliedAt string
		if err := rows.Scan(&v.Version, &v.Description, &v.Checksum, &appliedAt); err != nil {
			return nil, err
		}
		v.AppliedAt, _ = time.Parse(time.RFC3339Nano, appliedAt)
		history = append(history, v)
	}
	return history, rows.Err()
}

// CurrentVersion returns the highest applied version, 0 for a fresh database
func (s *SchemaEvolution) CurrentVersion(ctx context.Context) (int, error) {
	history, err := s.History(ctx)
	if err != nil {
		return 0, err
	}
	if len(history) == 0 {
		return 0, nil
	}
	return history[len(history)-1].Version, nil
}

// Migrate applies every pending migration, each in its own transaction.
// An applied migration whose SQL has since changed is an error.
func (s *SchemaEvolution) Migrate(ctx context.Context) (int, error) {
	history, err := s.History(ctx)
	if err != nil {
		return 0, err
	}
	applied := make(map[int]SchemaVersion, len(history))
	for _, v := range history {
		applied[v.Version] = v
	}

	count := 0
	for _, m := range s.migrations {
		if prev, ok := applied[m.Version]; ok {
			if prev.Checksum != m.Checksum() {
				return count, fmt.Errorf("migration %d (%s) changed after it was applied", m.Version, m.Description)
			}
			continue
		}
		if err := s.apply(ctx, m); err != nil {
			return count, err
		}
		count++
		s.logger.Info("Applied schema migration",
			zap.Int("version", m.Version),
			zap.String("description", m.Description),
		)
	}
	return count, nil
}

func (s *SchemaEvolution) apply(ctx context.Context, m Migration) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin migration %d: %w", m.Version, err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, m.Up); err != nil {
		return fmt.Errorf("migration %d (%s): %w", m.Version, m.Description, err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO schema_migrations (version, description, checksum, applied_at) VALUES (?, ?, ?, ?)`,
		m.Version, m.Description, m.Checksum(), time.Now().UTC().Format(time.RFC3339Nano),
	); err != nil {
		return fmt.Errorf("record migration %d: %w", m.Version, err)
	}
	return tx.Commit()
}
