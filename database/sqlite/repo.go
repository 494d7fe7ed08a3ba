// Package sqlite implements the gallery repository using SQLite
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	moderncsqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/Rifqialba/urilaga"
	"github.com/Rifqialba/urilaga/database/internal"
)

var dialect = internal.Dialect{
	Like:        "LIKE",
	Escape:      ` ESCAPE '\'`,
	Placeholder: func(int) string { return "?" },
}

// Repo implements urilaga.Repo on a SQLite database.
type Repo struct {
	db     *sql.DB
	users  string
	images string
}

// NewRepo returns a Repo on the given tables.
func NewRepo(db *sql.DB, tables urilaga.Tables) (*Repo, error) {
	if err := tables.Validate(); err != nil {
		return nil, fmt.Errorf("new repo: %w", err)
	}

	return &Repo{db: db, users: tables.Users, images: tables.Images}, nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr *moderncsqlite.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	code := sqliteErr.Code()
	return code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY || code == sqlite3.SQLITE_CONSTRAINT_UNIQUE
}

func (r *Repo) GetUser(ctx context.Context, username string) (urilaga.User, error) {
	query := fmt.Sprintf( //nolint:gosec // G201: table name is validated
		`SELECT username, password FROM %s WHERE username = ?`, quoteIdentifier(r.users))

	var u urilaga.User
	err := r.db.QueryRowContext(ctx, query, username).Scan(&u.Username, &u.Password)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return urilaga.User{}, fmt.Errorf("get user: %w", urilaga.ErrNotFound)
		}
		return urilaga.User{}, fmt.Errorf("get user: %w", err)
	}

	return u, nil
}

func (r *Repo) CreateUser(ctx context.Context, user urilaga.User) error {
	query := fmt.Sprintf( //nolint:gosec // G201: table name is validated
		`INSERT INTO %s (username, password) VALUES (?, ?)`, quoteIdentifier(r.users))

	_, err := r.db.ExecContext(ctx, query, user.Username, user.Password)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("create user: %w", urilaga.ErrAlreadyExists)
		}
		return fmt.Errorf("create user: %w", err)
	}

	return nil
}

func (r *Repo) InsertImage(ctx context.Context, image urilaga.NewImage) (urilaga.Image, error) {
	query := fmt.Sprintf( //nolint:gosec // G201: table name is validated
		`INSERT INTO %s (id, image_url, judul, rating, tanggal, "by", sign, object_name, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`, quoteIdentifier(r.images))

	now := time.Now().UTC()
	m := urilaga.Image{
		ID:         uuid.New(),
		ImageURL:   image.ImageURL,
		Judul:      image.Judul,
		Rating:     image.Rating,
		Tanggal:    image.Tanggal,
		By:         image.By,
		Sign:       image.Sign,
		ObjectName: image.ObjectName,
		CreatedAt:  now,
	}

	_, err := r.db.ExecContext(ctx, query,
		m.ID.String(), image.ImageURL, image.Judul, image.Rating, image.Tanggal, image.By,
		image.Sign, image.ObjectName, now.Format(time.RFC3339Nano),
	)
	if err != nil {
		return urilaga.Image{}, fmt.Errorf("insert image: %w", err)
	}

	return m, nil
}

func (r *Repo) ListImages(ctx context.Context, q urilaga.ImageQuery) (urilaga.ImagePage, error) {
	where, args := internal.ImageWhere(q, dialect)

	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM %s %s`, quoteIdentifier(r.images), where) //nolint:gosec // G201: table name is validated

	var total int
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return urilaga.ImagePage{}, fmt.Errorf("list images: count: %w", err)
	}

	query := fmt.Sprintf( //nolint:gosec // G201: table name is validated
		`SELECT id, image_url, judul, rating, tanggal, "by", sign, object_name, created_at
		FROM %s
		%s
		ORDER BY judul ASC, id
		LIMIT ? OFFSET ?`, quoteIdentifier(r.images), where)

	rows, err := r.db.QueryContext(ctx, query, append(args, q.RowLimit(), q.Offset())...)
	if err != nil {
		return urilaga.ImagePage{}, fmt.Errorf("list images: %w", err)
	}
	defer func() { _ = rows.Close() }()

	images := make([]urilaga.Image, 0, q.RowLimit())
	for rows.Next() {
		var m urilaga.Image
		var idStr, createdAt string
		var imageURL, sign, objectName sql.NullString

		if scanErr := rows.Scan(&idStr, &imageURL, &m.Judul, &m.Rating, &m.Tanggal, &m.By, &sign, &objectName, &createdAt); scanErr != nil {
			return urilaga.ImagePage{}, fmt.Errorf("list images: scan: %w", scanErr)
		}

		var parseErr error
		m.ID, parseErr = uuid.Parse(idStr)
		if parseErr != nil {
			return urilaga.ImagePage{}, fmt.Errorf("list images: parse uuid: %w", parseErr)
		}

		m.CreatedAt, parseErr = time.Parse(time.RFC3339Nano, createdAt)
		if parseErr != nil {
			return urilaga.ImagePage{}, fmt.Errorf("list images: parse created_at: %w", parseErr)
		}

		m.ImageURL = nullStringPtr(imageURL)
		m.Sign = nullStringPtr(sign)
		m.ObjectName = nullStringPtr(objectName)

		images = append(images, m)
	}

	if err := rows.Err(); err != nil {
		return urilaga.ImagePage{}, fmt.Errorf("list images: rows: %w", err)
	}

	return urilaga.ImagePage{Images: images, Total: total}, nil
}

func (r *Repo) ListObjectNames(ctx context.Context) ([]string, error) {
	query := fmt.Sprintf( //nolint:gosec // G201: table name is validated
		`SELECT object_name FROM %s WHERE object_name IS NOT NULL`, quoteIdentifier(r.images))

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list object names: %w", err)
	}
	defer func() { _ = rows.Close() }()

	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("list object names: scan: %w", err)
		}
		names = append(names, name)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list object names: rows: %w", err)
	}

	return names, nil
}

func nullStringPtr(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	return &s.String
}
