package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Rifqialba/urilaga"
)

// Migrate creates the users and images tables and their indexes if they do
// not exist.
func Migrate(ctx context.Context, pool *pgxpool.Pool, tables urilaga.Tables) error {
	if err := createUsersTable(ctx, pool, tables.Users); err != nil {
		return err
	}
	if err := createImagesTable(ctx, pool, tables.Images); err != nil {
		return err
	}
	return nil
}

func createUsersTable(ctx context.Context, pool *pgxpool.Pool, tableName string) error {
	quotedTable := pgx.Identifier{tableName}.Sanitize()

	sql := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			username TEXT PRIMARY KEY,
			password TEXT NOT NULL
		);
	`, quotedTable)

	_, err := pool.Exec(ctx, sql)
	if err != nil {
		return fmt.Errorf("create users table: %w", err)
	}
	return nil
}

func createImagesTable(ctx context.Context, pool *pgxpool.Pool, tableName string) error {
	quotedTable := pgx.Identifier{tableName}.Sanitize()
	indexJudul := pgx.Identifier{fmt.Sprintf("idx_%s_judul", tableName)}.Sanitize()
	indexObjectName := pgx.Identifier{fmt.Sprintf("idx_%s_object_name", tableName)}.Sanitize()

	sql := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			image_url TEXT,
			judul TEXT NOT NULL,
			rating TEXT NOT NULL,
			tanggal TEXT NOT NULL,
			"by" TEXT NOT NULL,
			sign TEXT,
			object_name TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE INDEX IF NOT EXISTS %s
		ON %s (judul, id);

		CREATE INDEX IF NOT EXISTS %s
		ON %s (object_name)
		WHERE (object_name IS NOT NULL);
	`,
		quotedTable,
		indexJudul, quotedTable,
		indexObjectName, quotedTable,
	)

	_, err := pool.Exec(ctx, sql)
	if err != nil {
		return fmt.Errorf("create images table: %w", err)
	}
	return nil
}
