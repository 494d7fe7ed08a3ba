package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Rifqialba/urilaga"
	"github.com/Rifqialba/urilaga/database/internal"
)

var (
	usersColumns = map[string]internal.Column{
		"username": {Type: "text"},
		"password": {Type: "text"},
	}
	imagesColumns = map[string]internal.Column{
		"id":          {Type: "uuid"},
		"image_url":   {Type: "text", Nullable: true},
		"judul":       {Type: "text"},
		"rating":      {Type: "text"},
		"tanggal":     {Type: "text"},
		"by":          {Type: "text"},
		"sign":        {Type: "text", Nullable: true},
		"object_name": {Type: "text", Nullable: true},
		"created_at":  {Type: "timestamp with time zone"},
	}
)

// ValidateSchema checks that the users and images tables exist in the current
// schema with the expected columns. Extra columns are allowed.
func ValidateSchema(ctx context.Context, pool *pgxpool.Pool, tables urilaga.Tables) error {
	schemas := []internal.TableSchema{
		{Name: tables.Users, Columns: usersColumns},
		{Name: tables.Images, Columns: imagesColumns},
	}

	for _, want := range schemas {
		got, err := readColumns(ctx, pool, want.Name)
		if err != nil {
			return fmt.Errorf("validate schema: %w", err)
		}
		if err = internal.CheckColumns(want, got); err != nil {
			return fmt.Errorf("validate schema: %w", err)
		}
	}

	return nil
}

func readColumns(ctx context.Context, pool *pgxpool.Pool, table string) (map[string]internal.Column, error) {
	if !urilaga.IsValidTableName(table) {
		return nil, fmt.Errorf("invalid table name: %s", table)
	}

	rows, err := pool.Query(ctx, `
		SELECT column_name, data_type, is_nullable = 'YES'
		FROM information_schema.columns
		WHERE table_schema = current_schema() AND table_name = $1
	`, table)
	if err != nil {
		return nil, fmt.Errorf("read columns of %s: %w", table, err)
	}
	defer rows.Close()

	cols := make(map[string]internal.Column)
	for rows.Next() {
		var (
			name, dataType string
			nullable       bool
		)
		if err = rows.Scan(&name, &dataType, &nullable); err != nil {
			return nil, fmt.Errorf("read columns of %s: %w", table, err)
		}
		cols[name] = internal.Column{Type: strings.ToLower(dataType), Nullable: nullable}
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("read columns of %s: %w", table, err)
	}

	if len(cols) == 0 {
		return nil, fmt.Errorf("%w: %s", internal.ErrTableMissing, table)
	}
	return cols, nil
}
