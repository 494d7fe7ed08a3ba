package postgres_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rifqialba/urilaga"
	"github.com/Rifqialba/urilaga/database/internal/repotest"
	"github.com/Rifqialba/urilaga/database/postgres"
)

func TestConnect(t *testing.T) {
	pool := getSharedTestDatabase(t)
	ctx := context.Background()

	db, err := postgres.Connect(ctx, getDSN(pool), randomTables(t))
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	err = db.Ping(ctx)
	assert.NoError(t, err, "ping should succeed after connect")
}

func TestDatabase_Migrate(t *testing.T) {
	ctx := context.Background()

	t.Run("success - creates tables", func(t *testing.T) {
		db, _ := setupTestDB(t, true)

		repo := db.GetRepo()
		_, err := repo.ListImages(ctx, urilaga.ImageQuery{Page: 1, Limit: 1})
		assert.NoError(t, err, "repo should work after migration")
	})

	t.Run("idempotent - can run multiple times", func(t *testing.T) {
		db, _ := setupTestDB(t, true)

		err := db.Migrate(ctx)
		assert.NoError(t, err, "second migrate should succeed")
	})
}

func TestDatabase_Validate(t *testing.T) {
	ctx := context.Background()

	t.Run("success - valid schema after migrate", func(t *testing.T) {
		db, _ := setupTestDB(t, true)

		err := db.Validate(ctx)
		assert.NoError(t, err, "validate should succeed after migrate")
	})

	t.Run("error - tables do not exist", func(t *testing.T) {
		db, _ := setupTestDB(t, false)

		err := db.Validate(ctx)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "does not exist")
	})

	t.Run("error - missing columns", func(t *testing.T) {
		pool := getSharedTestDatabase(t)
		db, tables := setupTestDB(t, false)

		_, err := pool.Exec(ctx, `CREATE TABLE `+tables.Users+` (username TEXT PRIMARY KEY, password TEXT NOT NULL)`)
		require.NoError(t, err)
		_, err = pool.Exec(ctx, `
			CREATE TABLE `+tables.Images+` (
				id UUID PRIMARY KEY,
				judul TEXT NOT NULL
			)
		`)
		require.NoError(t, err)

		err = db.Validate(ctx)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "missing columns")
	})

	t.Run("error - wrong nullability", func(t *testing.T) {
		pool := getSharedTestDatabase(t)
		db, tables := setupTestDB(t, false)

		_, err := pool.Exec(ctx, `CREATE TABLE `+tables.Users+` (username TEXT PRIMARY KEY, password TEXT)`)
		require.NoError(t, err)

		err = db.Validate(ctx)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "password")
	})
}

func TestDatabase_Close(t *testing.T) {
	pool := getSharedTestDatabase(t)
	ctx := context.Background()

	db, err := postgres.Connect(ctx, getDSN(pool), randomTables(t))
	require.NoError(t, err)

	err = db.Close()
	assert.NoError(t, err)

	err = db.Ping(ctx)
	assert.Error(t, err, "ping should fail after close")
}

func TestNewRepo_InvalidTables(t *testing.T) {
	_, err := postgres.NewRepo(nil, urilaga.Tables{Users: "same", Images: "same"})
	assert.Error(t, err)
}

func TestRepo(t *testing.T) {
	repotest.Run(t, func(t *testing.T) urilaga.Repo {
		db, _ := setupTestDB(t, true)
		return db.GetRepo()
	})
}
