// Package postgres implements the gallery repository on PostgreSQL.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Rifqialba/urilaga"
	"github.com/Rifqialba/urilaga/database/internal"
)

const uniqueViolation = "23505"

var dialect = internal.Dialect{
	Like:        "ILIKE",
	Placeholder: func(n int) string { return fmt.Sprintf("$%d", n) },
}

// Repo implements urilaga.Repo on a pgx pool.
type Repo struct {
	pool   *pgxpool.Pool
	users  string
	images string
}

// NewRepo returns a Repo on the given tables.
func NewRepo(pool *pgxpool.Pool, tables urilaga.Tables) (*Repo, error) {
	if err := tables.Validate(); err != nil {
		return nil, fmt.Errorf("new repo: %w", err)
	}

	return &Repo{pool: pool, users: tables.Users, images: tables.Images}, nil
}

func (r *Repo) usersTable() string {
	return pgx.Identifier{r.users}.Sanitize()
}

func (r *Repo) imagesTable() string {
	return pgx.Identifier{r.images}.Sanitize()
}

func (r *Repo) GetUser(ctx context.Context, username string) (urilaga.User, error) {
	query := fmt.Sprintf(`
		SELECT username, password
		FROM %s
		WHERE username = $1
	`, r.usersTable())

	var u urilaga.User
	err := r.pool.QueryRow(ctx, query, username).Scan(&u.Username, &u.Password)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return urilaga.User{}, fmt.Errorf("get user: %w", urilaga.ErrNotFound)
		}
		return urilaga.User{}, fmt.Errorf("get user: %w", err)
	}

	return u, nil
}

func (r *Repo) CreateUser(ctx context.Context, user urilaga.User) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (username, password)
		VALUES ($1, $2)
	`, r.usersTable())

	_, err := r.pool.Exec(ctx, query, user.Username, user.Password)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return fmt.Errorf("create user: %w", urilaga.ErrAlreadyExists)
		}
		return fmt.Errorf("create user: %w", err)
	}

	return nil
}

func (r *Repo) InsertImage(ctx context.Context, image urilaga.NewImage) (urilaga.Image, error) {
	query := fmt.Sprintf(`
		INSERT INTO %s (image_url, judul, rating, tanggal, "by", sign, object_name)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`, r.imagesTable())

	m := urilaga.Image{
		ImageURL:   image.ImageURL,
		Judul:      image.Judul,
		Rating:     image.Rating,
		Tanggal:    image.Tanggal,
		By:         image.By,
		Sign:       image.Sign,
		ObjectName: image.ObjectName,
	}

	err := r.pool.QueryRow(ctx, query,
		image.ImageURL, image.Judul, image.Rating, image.Tanggal, image.By, image.Sign, image.ObjectName,
	).Scan(&m.ID, &m.CreatedAt)
	if err != nil {
		return urilaga.Image{}, fmt.Errorf("insert image: %w", err)
	}

	return m, nil
}

func (r *Repo) ListImages(ctx context.Context, q urilaga.ImageQuery) (urilaga.ImagePage, error) {
	where, args := internal.ImageWhere(q, dialect)

	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM %s %s`, r.imagesTable(), where)

	var total int
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return urilaga.ImagePage{}, fmt.Errorf("list images: count: %w", err)
	}

	n := len(args)
	query := fmt.Sprintf(`
		SELECT id, image_url, judul, rating, tanggal, "by", sign, object_name, created_at
		FROM %s
		%s
		ORDER BY judul ASC, id
		LIMIT $%d OFFSET $%d
	`, r.imagesTable(), where, n+1, n+2)

	rows, err := r.pool.Query(ctx, query, append(args, q.RowLimit(), q.Offset())...)
	if err != nil {
		return urilaga.ImagePage{}, fmt.Errorf("list images: %w", err)
	}
	defer rows.Close()

	images := make([]urilaga.Image, 0, q.RowLimit())
	for rows.Next() {
		var m urilaga.Image
		if err := rows.Scan(&m.ID, &m.ImageURL, &m.Judul, &m.Rating, &m.Tanggal, &m.By, &m.Sign, &m.ObjectName, &m.CreatedAt); err != nil {
			return urilaga.ImagePage{}, fmt.Errorf("list images: scan: %w", err)
		}
		images = append(images, m)
	}

	if err := rows.Err(); err != nil {
		return urilaga.ImagePage{}, fmt.Errorf("list images: rows: %w", err)
	}

	return urilaga.ImagePage{Images: images, Total: total}, nil
}

func (r *Repo) ListObjectNames(ctx context.Context) ([]string, error) {
	query := fmt.Sprintf(`
		SELECT object_name
		FROM %s
		WHERE object_name IS NOT NULL
	`, r.imagesTable())

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list object names: %w", err)
	}

	names, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("list object names: %w", err)
	}

	return names, nil
}
