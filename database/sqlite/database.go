package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Rifqialba/urilaga"

	_ "modernc.org/sqlite" // SQLite driver
)

// DB is an open SQLite metadata backend.
type DB struct {
	db     *sql.DB
	tables urilaga.Tables
}

// Connect opens a SQLite database. The pool is limited to a single
// connection so that ":memory:" databases are shared and writes serialize.
// Tables should be validated before calling Connect.
func Connect(ctx context.Context, dsn string, tables urilaga.Tables) (*DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("connect sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	return &DB{
		db:     db,
		tables: tables,
	}, nil
}

// Ping verifies the database connection is alive.
func (d *DB) Ping(ctx context.Context) error {
	return d.db.PingContext(ctx)
}

// Migrate runs database migrations to create required tables.
func (d *DB) Migrate(ctx context.Context) error {
	if err := Migrate(ctx, d.db, d.tables); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// Validate checks that the database schema matches expected structure.
func (d *DB) Validate(ctx context.Context) error {
	return ValidateSchema(ctx, d.db, d.tables)
}

// GetRepo returns the Repo for database operations.
func (d *DB) GetRepo() urilaga.Repo {
	return &Repo{db: d.db, users: d.tables.Users, images: d.tables.Images}
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.db.Close()
}
