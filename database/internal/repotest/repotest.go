// Package repotest holds the behaviour tests every urilaga.Repo backend
// must pass.
package repotest

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rifqialba/urilaga"
)

// Run executes the shared repository tests. newRepo must return a repo on
// freshly migrated, empty tables.
func Run(t *testing.T, newRepo func(t *testing.T) urilaga.Repo) {
	t.Run("GetUser", func(t *testing.T) { testGetUser(t, newRepo(t)) })
	t.Run("CreateUser", func(t *testing.T) { testCreateUser(t, newRepo(t)) })
	t.Run("InsertImage", func(t *testing.T) { testInsertImage(t, newRepo(t)) })
	t.Run("ListImages", func(t *testing.T) { testListImages(t, newRepo(t)) })
	t.Run("ListObjectNames", func(t *testing.T) { testListObjectNames(t, newRepo(t)) })
}

func ptr(s string) *string { return &s }

func testGetUser(t *testing.T, repo urilaga.Repo) {
	ctx := context.Background()

	require.NoError(t, repo.CreateUser(ctx, urilaga.User{Username: "Alba", Password: "secret"}))

	t.Run("found", func(t *testing.T) {
		u, err := repo.GetUser(ctx, "Alba")
		require.NoError(t, err)
		assert.Equal(t, "Alba", u.Username)
		assert.Equal(t, "secret", u.Password)
	})

	t.Run("exact match only", func(t *testing.T) {
		_, err := repo.GetUser(ctx, "alba")
		assert.ErrorIs(t, err, urilaga.ErrNotFound)
	})

	t.Run("not found", func(t *testing.T) {
		_, err := repo.GetUser(ctx, "nobody")
		assert.ErrorIs(t, err, urilaga.ErrNotFound)
	})

	t.Run("empty username", func(t *testing.T) {
		_, err := repo.GetUser(ctx, "")
		assert.ErrorIs(t, err, urilaga.ErrNotFound)
	})
}

func testCreateUser(t *testing.T, repo urilaga.Repo) {
	ctx := context.Background()

	err := repo.CreateUser(ctx, urilaga.User{Username: "Aca", Password: "one"})
	require.NoError(t, err)

	err = repo.CreateUser(ctx, urilaga.User{Username: "Aca", Password: "two"})
	assert.ErrorIs(t, err, urilaga.ErrAlreadyExists)

	u, err := repo.GetUser(ctx, "Aca")
	require.NoError(t, err)
	assert.Equal(t, "one", u.Password, "duplicate insert must not overwrite")
}

func testInsertImage(t *testing.T, repo urilaga.Repo) {
	ctx := context.Background()

	t.Run("with object", func(t *testing.T) {
		img, err := repo.InsertImage(ctx, urilaga.NewImage{
			ImageURL:   ptr("https://cdn.example.com/1-cat.png?sig=x"),
			Judul:      "Cat",
			Rating:     "5",
			Tanggal:    "2024-01-01",
			By:         "Aca",
			Sign:       ptr("paw1.png"),
			ObjectName: ptr("1-cat.png"),
		})
		require.NoError(t, err)

		assert.NotEqual(t, uuid.Nil, img.ID)
		assert.False(t, img.CreatedAt.IsZero())
		assert.Equal(t, "Cat", img.Judul)
		assert.Equal(t, "5", img.Rating)
		assert.Equal(t, "2024-01-01", img.Tanggal)
		assert.Equal(t, "Aca", img.By)
		require.NotNil(t, img.Sign)
		assert.Equal(t, "paw1.png", *img.Sign)
		require.NotNil(t, img.ImageURL)
		require.NotNil(t, img.ObjectName)
		assert.Equal(t, "1-cat.png", *img.ObjectName)
	})

	t.Run("without object", func(t *testing.T) {
		img, err := repo.InsertImage(ctx, urilaga.NewImage{
			Judul:   "Dog",
			Rating:  "4",
			Tanggal: "2024-01-02",
			By:      "Bob",
		})
		require.NoError(t, err)
		assert.Nil(t, img.ImageURL)
		assert.Nil(t, img.Sign)
		assert.Nil(t, img.ObjectName)

		page, err := repo.ListImages(ctx, urilaga.ImageQuery{Page: 1, Limit: 10, Search: "Dog"})
		require.NoError(t, err)
		require.Len(t, page.Images, 1)
		assert.Equal(t, img.ID, page.Images[0].ID)
		assert.Nil(t, page.Images[0].ImageURL)
		assert.Nil(t, page.Images[0].Sign)
	})
}

func seedImages(t *testing.T, repo urilaga.Repo) {
	t.Helper()
	ctx := context.Background()

	rows := []urilaga.NewImage{
		{Judul: "Delta", Rating: "1", Tanggal: "d", By: "Aca"},
		{Judul: "Alpha", Rating: "2", Tanggal: "a", By: "Alba"},
		{Judul: "Golf", Rating: "3", Tanggal: "g", By: "Aca"},
		{Judul: "Charlie", Rating: "4", Tanggal: "c", By: "Bob"},
		{Judul: "Echo 100%", Rating: "5", Tanggal: "e", By: "Alba"},
		{Judul: "Bravo_cat", Rating: "6", Tanggal: "b", By: "Aca"},
		{Judul: "Foxtrot", Rating: "7", Tanggal: "f", By: "bob"},
	}
	for _, r := range rows {
		_, err := repo.InsertImage(ctx, r)
		require.NoError(t, err)
	}
}

func titles(images []urilaga.Image) []string {
	out := make([]string, 0, len(images))
	for _, img := range images {
		out = append(out, img.Judul)
	}
	return out
}

func testListImages(t *testing.T, repo urilaga.Repo) {
	ctx := context.Background()

	empty, err := repo.ListImages(ctx, urilaga.ImageQuery{Page: 1, Limit: 6})
	require.NoError(t, err)
	assert.Empty(t, empty.Images)
	assert.Equal(t, 0, empty.Total)

	seedImages(t, repo)

	tests := []struct {
		name      string
		query     urilaga.ImageQuery
		wantTitle []string
		wantTotal int
	}{
		{
			name:      "first page ordered by judul",
			query:     urilaga.ImageQuery{Page: 1, Limit: 3},
			wantTitle: []string{"Alpha", "Bravo_cat", "Charlie"},
			wantTotal: 7,
		},
		{
			name:      "second page",
			query:     urilaga.ImageQuery{Page: 2, Limit: 3},
			wantTitle: []string{"Delta", "Echo 100%", "Foxtrot"},
			wantTotal: 7,
		},
		{
			name:      "last partial page",
			query:     urilaga.ImageQuery{Page: 3, Limit: 3},
			wantTitle: []string{"Golf"},
			wantTotal: 7,
		},
		{
			name:      "page past the end",
			query:     urilaga.ImageQuery{Page: 5, Limit: 3},
			wantTitle: []string{},
			wantTotal: 7,
		},
		{
			name:      "filter exact author case-insensitive",
			query:     urilaga.ImageQuery{Page: 1, Limit: 10, Filter: "aca"},
			wantTitle: []string{"Bravo_cat", "Delta", "Golf"},
			wantTotal: 3,
		},
		{
			name:      "filter does not match substrings",
			query:     urilaga.ImageQuery{Page: 1, Limit: 10, Filter: "Al"},
			wantTitle: []string{},
			wantTotal: 0,
		},
		{
			name:      "filter accepts wildcards",
			query:     urilaga.ImageQuery{Page: 1, Limit: 10, Filter: "Al%"},
			wantTitle: []string{"Alpha", "Echo 100%"},
			wantTotal: 2,
		},
		{
			name:      "filter bob matches both cases",
			query:     urilaga.ImageQuery{Page: 1, Limit: 10, Filter: "BOB"},
			wantTitle: []string{"Charlie", "Foxtrot"},
			wantTotal: 2,
		},
		{
			name:      "search substring case-insensitive",
			query:     urilaga.ImageQuery{Page: 1, Limit: 10, Search: "LT"},
			wantTitle: []string{"Delta"},
			wantTotal: 1,
		},
		{
			name:      "search percent is literal",
			query:     urilaga.ImageQuery{Page: 1, Limit: 10, Search: "%"},
			wantTitle: []string{"Echo 100%"},
			wantTotal: 1,
		},
		{
			name:      "search underscore is literal",
			query:     urilaga.ImageQuery{Page: 1, Limit: 10, Search: "_"},
			wantTitle: []string{"Bravo_cat"},
			wantTotal: 1,
		},
		{
			name:      "filter and search combined",
			query:     urilaga.ImageQuery{Page: 1, Limit: 1, Filter: "aca", Search: "o"},
			wantTitle: []string{"Bravo_cat"},
			wantTotal: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := repo.ListImages(ctx, tt.query)
			require.NoError(t, err)
			assert.Equal(t, tt.wantTitle, titles(page.Images))
			assert.Equal(t, tt.wantTotal, page.Total)
		})
	}
}

func testListObjectNames(t *testing.T, repo urilaga.Repo) {
	ctx := context.Background()

	names, err := repo.ListObjectNames(ctx)
	require.NoError(t, err)
	assert.Empty(t, names)

	_, err = repo.InsertImage(ctx, urilaga.NewImage{Judul: "a", Rating: "1", Tanggal: "t", By: "x", ObjectName: ptr("1-a.png")})
	require.NoError(t, err)
	_, err = repo.InsertImage(ctx, urilaga.NewImage{Judul: "b", Rating: "1", Tanggal: "t", By: "x"})
	require.NoError(t, err)
	_, err = repo.InsertImage(ctx, urilaga.NewImage{Judul: "c", Rating: "1", Tanggal: "t", By: "x", ObjectName: ptr("2-c.png")})
	require.NoError(t, err)

	names, err = repo.ListObjectNames(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"1-a.png", "2-c.png"}, names)
}
