package database

import (
	"context"
	"fmt"

	"github.com/Rifqialba/urilaga"
	"github.com/Rifqialba/urilaga/database/postgres"
	"github.com/Rifqialba/urilaga/database/sqlite"
)

// Config holds the configuration for connecting to a metadata backend.
type Config struct {
	// Type specifies the database type: "sqlite" or "postgres"
	Type string `mapstructure:"type" validate:"required,oneof=sqlite postgres"`
	// DSN is the data source name (connection string)
	DSN string `mapstructure:"dsn" validate:"required"`
	// Tables names the users and images tables
	Tables urilaga.Tables `mapstructure:"tables"`
	// AutoMigrate creates missing tables on startup
	AutoMigrate bool `mapstructure:"auto_migrate"`
}

// Database is an open metadata backend.
type Database interface {
	// Ping verifies the connection is alive.
	Ping(ctx context.Context) error
	// Migrate creates the users and images tables if they do not exist.
	Migrate(ctx context.Context) error
	// Validate checks that the existing tables have the expected columns.
	Validate(ctx context.Context) error
	// GetRepo returns the repository backed by this database.
	GetRepo() urilaga.Repo
	// Close releases the connection.
	Close() error
}

// Connect opens the configured backend. Migrations and schema validation
// are left to the caller.
func Connect(ctx context.Context, cfg Config) (Database, error) {
	if err := cfg.Tables.Validate(); err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}

	switch cfg.Type {
	case "sqlite":
		db, err := sqlite.Connect(ctx, cfg.DSN, cfg.Tables)
		if err != nil {
			return nil, err
		}
		return db, nil
	case "postgres":
		db, err := postgres.Connect(ctx, cfg.DSN, cfg.Tables)
		if err != nil {
			return nil, err
		}
		return db, nil
	default:
		return nil, fmt.Errorf("unsupported database type: %s", cfg.Type)
	}
}
