package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/Rifqialba/urilaga"
	"github.com/Rifqialba/urilaga/config"
	"github.com/Rifqialba/urilaga/database"
	"github.com/Rifqialba/urilaga/filesystem"
	urilagahttp "github.com/Rifqialba/urilaga/http"
	"github.com/Rifqialba/urilaga/keybackend"
	"github.com/Rifqialba/urilaga/s3"
)

// openDatabase connects, migrates when configured and validates the schema.
func openDatabase(ctx context.Context, cfg database.Config) (database.Database, error) {
	db, err := database.Connect(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	if err = db.Ping(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if cfg.AutoMigrate {
		if err = db.Migrate(ctx); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("migrate database: %w", err)
		}
		slog.Debug("database migration complete")
	}

	if err = db.Validate(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("validate database schema: %w", err)
	}

	slog.Info("connected to database", "type", cfg.Type)
	return db, nil
}

// objectBackend is an opened object store plus what the HTTP layer needs to
// serve it.
type objectBackend struct {
	store urilaga.ObjectStore

	// files and verifier are set when this process serves the objects.
	files       urilagahttp.ObjectReader
	verifier    urilagahttp.RequestVerifier
	filesPrefix string

	close func() error
}

// openObjectStore opens the configured storage backend. The filesystem
// backend signs with the configured signing key; the S3 backend presigns
// with its bucket credentials.
func openObjectStore(ctx context.Context, cfg *config.Config) (*objectBackend, error) {
	switch cfg.Storage.Backend {
	case "s3":
		store, err := s3.New(ctx, cfg.Storage.S3)
		if err != nil {
			return nil, fmt.Errorf("open s3 storage: %w", err)
		}
		slog.Info("using s3 storage", "endpoint", cfg.Storage.S3.Endpoint, "bucket", cfg.Storage.S3.Bucket)
		return &objectBackend{store: store, close: func() error { return nil }}, nil

	case "filesystem":
		secrets, err := keybackend.NewSecretStore(cfg.Signing.Keys)
		if err != nil {
			return nil, fmt.Errorf("load signing keys: %w", err)
		}

		key, err := secrets.SigningKey(cfg.Signing.AccessKey)
		if err != nil {
			return nil, err
		}

		if err = os.MkdirAll(cfg.Storage.Path, 0o750); err != nil {
			return nil, fmt.Errorf("create storage directory: %w", err)
		}

		root, err := os.OpenRoot(cfg.Storage.Path)
		if err != nil {
			return nil, fmt.Errorf("open storage root: %w", err)
		}

		presigner := urilaga.NewPresigner(cfg.Server.PublicURL, key.AccessKey, key.SecretKey)
		store := filesystem.NewFileStorage(root, filesystem.WithSigner(presigner, cfg.Storage.URLPrefix))

		slog.Info("using filesystem storage", "path", cfg.Storage.Path, "signing_key", key.AccessKey)
		return &objectBackend{
			store:       store,
			files:       store,
			verifier:    urilaga.NewSignatureVerifier(secrets),
			filesPrefix: store.URLPrefix(),
			close:       root.Close,
		}, nil

	default:
		return nil, errors.New("unsupported storage backend: " + cfg.Storage.Backend)
	}
}

func newGalleryService(cfg *config.Config, repo urilaga.Repo, objects urilaga.ObjectStore) (*urilaga.GalleryService, error) {
	scheme, err := urilaga.ParsePasswordScheme(cfg.Auth.PasswordScheme)
	if err != nil {
		return nil, err
	}
	if scheme == urilaga.PasswordPlain {
		slog.Warn("passwords are stored and compared in plaintext; set auth.password_scheme=bcrypt")
	}

	return urilaga.NewGalleryService(repo, objects, urilaga.ServiceConfig{
		PasswordScheme:   scheme,
		SignedURLTTL:     cfg.Storage.SignedURLTTL,
		CleanupOnFailure: cfg.Upload.CleanupOnFailure,
		CleanupTimeout:   cfg.Service.CleanupTimeout,
	})
}
