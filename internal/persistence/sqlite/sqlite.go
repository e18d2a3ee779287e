package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// DB bundles the connection pool with schema management. The repository
// types in this package share a single DB.
type DB struct {
	pool *ConnectionPool
}

// Open opens the SQLite database at the given DSN. Use ":memory:" or a
// file path; the schema is not created until Migrate runs.
func Open(dsn string) (*DB, error) {
	pool, err := NewConnectionPool(dsn)
	if err != nil {
		return nil, err
	}
	return &DB{pool: pool}, nil
}

// Pool returns the underlying connection pool.
func (d *DB) Pool() *ConnectionPool {
	return d.pool
}

// Close releases the database connections.
func (d *DB) Close() error {
	return d.pool.Close()
}

// Ping tests the database connection.
func (d *DB) Ping(ctx context.Context) error {
	return d.pool.Ping(ctx)
}

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		email TEXT NOT NULL UNIQUE,
		display_name TEXT NOT NULL,
		phone_number TEXT NOT NULL DEFAULT '',
		password_hash TEXT NOT NULL,
		is_admin INTEGER NOT NULL DEFAULT 0,
		disabled INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS reservations (
		id TEXT PRIMARY KEY,
		team_name TEXT NOT NULL,
		use_date TEXT NOT NULL,
		start_time TEXT NOT NULL,
		end_time TEXT NOT NULL,
		reason TEXT NOT NULL,
		applicant TEXT NOT NULL,
		phone_number TEXT NOT NULL,
		resource_group TEXT NOT NULL,
		status TEXT NOT NULL CHECK (status IN ('pending', 'approved', 'rejected', 'cancelled')),
		user_id TEXT NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		FOREIGN KEY (user_id) REFERENCES users(id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_reservations_day
		ON reservations(use_date, resource_group)`,
	`CREATE INDEX IF NOT EXISTS idx_reservations_user
		ON reservations(user_id)`,
	`CREATE TABLE IF NOT EXISTS blackout_rules (
		id TEXT PRIMARY KEY,
		reason TEXT NOT NULL,
		resource_group TEXT NOT NULL,
		start_date TEXT NOT NULL,
		end_date TEXT NOT NULL,
		frequency TEXT NOT NULL,
		day_of_week INTEGER NOT NULL DEFAULT 0,
		week_of_month INTEGER NOT NULL DEFAULT 0,
		start_time TEXT NOT NULL,
		end_time TEXT NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_blackout_rules_group
		ON blackout_rules(resource_group)`,
	`CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		token TEXT NOT NULL UNIQUE,
		expires_at TEXT NOT NULL,
		revoked_at TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		FOREIGN KEY (user_id) REFERENCES users(id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_sessions_expires
		ON sessions(expires_at)`,
}

// Migrate creates the schema if it does not already exist. Statements run
// inside a single transaction so a partial bootstrap never persists.
func (d *DB) Migrate(ctx context.Context) error {
	return d.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		for _, stmt := range schemaStatements {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("failed to apply schema statement: %w", err)
			}
		}
		return nil
	})
}

// parseTimePtr parses an RFC 3339 timestamp into a pointer, used for
// nullable timestamp columns.
func parseTimePtr(value string) (*time.Time, error) {
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}
