package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/Rifqialba/urilaga"
	"github.com/Rifqialba/urilaga/database/internal"
)

// SQLite reports declared types, which Migrate writes in upper case.
var (
	usersColumns = map[string]internal.Column{
		"username": {Type: "text"},
		"password": {Type: "text"},
	}
	imagesColumns = map[string]internal.Column{
		"id":          {Type: "text"},
		"image_url":   {Type: "text", Nullable: true},
		"judul":       {Type: "text"},
		"rating":      {Type: "text"},
		"tanggal":     {Type: "text"},
		"by":          {Type: "text"},
		"sign":        {Type: "text", Nullable: true},
		"object_name": {Type: "text", Nullable: true},
		"created_at":  {Type: "text"},
	}
)

// ValidateSchema checks that the users and images tables exist with the
// expected columns. Extra columns are allowed.
func ValidateSchema(ctx context.Context, db *sql.DB, tables urilaga.Tables) error {
	schemas := []internal.TableSchema{
		{Name: tables.Users, Columns: usersColumns},
		{Name: tables.Images, Columns: imagesColumns},
	}

	for _, want := range schemas {
		got, err := readColumns(ctx, db, want.Name)
		if err != nil {
			return fmt.Errorf("validate schema: %w", err)
		}
		if err = internal.CheckColumns(want, got); err != nil {
			return fmt.Errorf("validate schema: %w", err)
		}
	}

	return nil
}

// readColumns loads a table's columns with PRAGMA table_info, which yields no
// rows for a table that does not exist.
func readColumns(ctx context.Context, db *sql.DB, table string) (map[string]internal.Column, error) {
	if !urilaga.IsValidTableName(table) {
		return nil, fmt.Errorf("invalid table name: %s", table)
	}

	rows, err := db.QueryContext(ctx, fmt.Sprintf(`PRAGMA table_info(%s)`, quoteIdentifier(table)))
	if err != nil {
		return nil, fmt.Errorf("read columns of %s: %w", table, err)
	}
	defer func() { _ = rows.Close() }()

	cols := make(map[string]internal.Column)
	for rows.Next() {
		var (
			cid, notNull, pk int
			name, declType   string
			dflt             sql.NullString
		)
		if err = rows.Scan(&cid, &name, &declType, &notNull, &dflt, &pk); err != nil {
			return nil, fmt.Errorf("read columns of %s: %w", table, err)
		}
		cols[name] = internal.Column{Type: strings.ToLower(declType), Nullable: notNull == 0}
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("read columns of %s: %w", table, err)
	}

	if len(cols) == 0 {
		return nil, fmt.Errorf("%w: %s", internal.ErrTableMissing, table)
	}
	return cols, nil
}
