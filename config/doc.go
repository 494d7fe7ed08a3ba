// Package config provides configuration loading and validation for urilaga.
//
// The package handles a .env file, YAML configuration files, environment
// variables and CLI flags with automatic merging and validation using
// go-playground/validator.
//
// # Configuration Precedence
//
// Values are loaded in this order (later sources override earlier ones):
//
//  1. Default values
//  2. Configuration file(s) - multiple files merged left-to-right
//  3. Environment variables (URILAGA_ prefix, plus bare PORT), including
//     those set by the .env file
//  4. CLI flags
//
// # Usage
//
//	cfg, err := config.Load([]string{"config.yaml"}, cmd.Flags())
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Store in context for subcommands
//	ctx = config.WithContext(ctx, cfg)
//
//	// Retrieve later
//	cfg, err = config.FromContext(ctx)
//
// # Environment Variables
//
// All config keys map to environment variables with URILAGA_ prefix:
//   - server.port → URILAGA_SERVER_PORT (or PORT)
//   - database.dsn → URILAGA_DATABASE_DSN
//   - storage.s3.secret_key → URILAGA_STORAGE_S3_SECRET_KEY
//
// # Validation
//
// Configuration is validated using struct tags:
//   - Port must be 1-65535
//   - Database type must be sqlite or postgres
//   - Storage backend must be filesystem or s3; filesystem needs a path,
//     s3 needs an endpoint and a bucket
//   - cleanup.schedule, when set, must be a standard cron expression
//   - Password scheme must be plain or bcrypt
//   - Log level must be debug, info, warn, or error
package config
