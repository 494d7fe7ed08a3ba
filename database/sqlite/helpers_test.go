package sqlite_test

import (
	"context"
	"crypto/rand"
	"fmt"
	"math"
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Rifqialba/urilaga"
	"github.com/Rifqialba/urilaga/database/sqlite"
)

func getRandomString(t *testing.T) string {
	t.Helper()
	n, err := rand.Int(rand.Reader, big.NewInt(math.MaxInt64))
	require.NoError(t, err, "random string")
	return fmt.Sprintf("test%x", n.Int64())
}

// randomTables returns table names unique to one test.
func randomTables(t *testing.T) urilaga.Tables {
	t.Helper()
	suffix := getRandomString(t)
	return urilaga.Tables{Users: "users_" + suffix, Images: "images_" + suffix}
}

// setupTestDB opens an in-memory database with unique table names.
func setupTestDB(t *testing.T, migrate bool) *sqlite.DB {
	t.Helper()

	ctx := context.Background()

	db, err := sqlite.Connect(ctx, ":memory:", randomTables(t))
	require.NoError(t, err, "failed to connect")

	if migrate {
		require.NoError(t, db.Migrate(ctx), "failed to migrate")
	}

	t.Cleanup(func() { _ = db.Close() })

	return db
}
