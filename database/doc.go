// Package database provides a unified interface for connecting to metadata backends.
//
// The package supports two backends that hold the users and images tables of
// the gallery.
//
// # Supported Backends
//
//   - PostgreSQL: Production backend using a pgx connection pool
//   - SQLite: Lightweight backend suitable for development and single-node deployments
//
// # Usage
//
//	cfg := database.Config{
//	    Type:   "sqlite",
//	    DSN:    "urilaga.db",
//	    Tables: urilaga.Tables{Users: "users", Images: "images"},
//	}
//
//	db, err := database.Connect(ctx, cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer db.Close()
//
//	if err := db.Migrate(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	repo := db.GetRepo()
//
// # Subpackages
//
//   - database/postgres: PostgreSQL implementation using pgx
//   - database/sqlite: SQLite implementation using modernc.org/sqlite
package database
