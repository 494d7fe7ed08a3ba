package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/Rifqialba/urilaga/database"
	urilagahttp "github.com/Rifqialba/urilaga/http"
	"github.com/Rifqialba/urilaga/keybackend"
	"github.com/Rifqialba/urilaga/s3"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "URILAGA"

// DotEnvFile is loaded into the process environment before configuration is
// read, when it exists. Variables already set are not overridden.
var DotEnvFile = ".env"

// configKey is the context key for storing the loaded configuration.
type configKey struct{}

// WithContext returns a new context with the config stored.
func WithContext(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configKey{}, cfg)
}

// FromContext retrieves the config from context.
// Returns an error if config is not found.
func FromContext(ctx context.Context) (*Config, error) {
	cfg, ok := ctx.Value(configKey{}).(*Config)
	if !ok || cfg == nil {
		return nil, errors.New("config not found in context")
	}
	return cfg, nil
}

// Config is the root configuration struct for urilaga.
type Config struct {
	Env      string          `mapstructure:"env" validate:"required,oneof=development prod production"`
	Server   ServerConfig    `mapstructure:"server"`
	Service  ServiceConfig   `mapstructure:"service"`
	Upload   UploadConfig    `mapstructure:"upload"`
	Database database.Config `mapstructure:"database"`
	Storage  StorageConfig   `mapstructure:"storage"`
	Signing  SigningConfig   `mapstructure:"signing"`
	Auth     AuthConfig      `mapstructure:"auth"`
	Cleanup  CleanupConfig   `mapstructure:"cleanup"`
	Log      LogConfig       `mapstructure:"log"`
}

// IsProd reports whether the process runs in production mode.
func (c *Config) IsProd() bool {
	return c.Env == "prod" || c.Env == "production"
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port          int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	MaxUploadSize int64  `mapstructure:"max_upload_size" validate:"min=0"`
	PublicURL     string `mapstructure:"public_url" validate:"omitempty,url"`
	PublicDir     string `mapstructure:"public_dir"`
	TrustProxy    bool   `mapstructure:"trust_proxy"`

	LoginRateLimit float64 `mapstructure:"login_rate_limit" validate:"min=0"`
	LoginBurst     int     `mapstructure:"login_burst" validate:"min=0"`

	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"min=0"`

	CORS urilagahttp.CORSConfig `mapstructure:"cors"`
}

// ServiceConfig holds service-level configuration.
type ServiceConfig struct {
	CleanupTimeout time.Duration `mapstructure:"cleanup_timeout" validate:"min=0"`
}

// UploadConfig controls the upload pipeline.
type UploadConfig struct {
	CleanupOnFailure bool `mapstructure:"cleanup_on_failure"`
}

// StorageConfig selects and configures the object store.
type StorageConfig struct {
	Backend      string        `mapstructure:"backend" validate:"required,oneof=filesystem s3"`
	Path         string        `mapstructure:"path" validate:"required_if=Backend filesystem"`
	URLPrefix    string        `mapstructure:"url_prefix"`
	SignedURLTTL time.Duration `mapstructure:"signed_url_ttl" validate:"min=0"`
	S3           s3.Config     `mapstructure:"s3"`
}

// SigningConfig holds the keys of native presigned URLs. AccessKey picks the
// key that signs new URLs; every key in Keys verifies.
type SigningConfig struct {
	AccessKey string                `mapstructure:"access_key"`
	Keys      keybackend.KeysConfig `mapstructure:"keys"`
}

// AuthConfig holds login configuration.
type AuthConfig struct {
	PasswordScheme string `mapstructure:"password_scheme" validate:"required,oneof=plain bcrypt"`
}

// CleanupConfig controls the orphan sweep. An empty Schedule disables the
// in-process schedule; the cleanup command still works.
type CleanupConfig struct {
	Schedule    string        `mapstructure:"schedule"`
	GracePeriod time.Duration `mapstructure:"grace_period" validate:"min=0"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level string `mapstructure:"level" validate:"required,oneof=debug info warn error"`
}

// flagKeys maps CLI flag names to configuration keys.
var flagKeys = map[string]string{
	"db-type":      "database.type",
	"db-dsn":       "database.dsn",
	"storage-path": "storage.path",
	"port":         "server.port",
	"public-dir":   "server.public_dir",
	"log-level":    "log.level",
}

// defaults lists every key. A key needs a default for AutomaticEnv to see it
// during Unmarshal.
var defaults = map[string]any{
	"env": "development",

	"server.port":             3000,
	"server.max_upload_size":  0, // no limit
	"server.public_url":       "http://localhost:3000",
	"server.public_dir":       "",
	"server.trust_proxy":      false,
	"server.login_rate_limit": 0,
	"server.login_burst":      5,
	"server.shutdown_timeout": 30 * time.Second,
	"server.cors.enabled":     false,

	"service.cleanup_timeout":   30 * time.Second,
	"upload.cleanup_on_failure": false,

	"database.type":          "sqlite",
	"database.dsn":           "urilaga.db",
	"database.auto_migrate":  true,
	"database.tables.users":  "users",
	"database.tables.images": "images",

	"storage.backend":        "filesystem",
	"storage.path":           "./uploads",
	"storage.url_prefix":     "/files/",
	"storage.signed_url_ttl": 87600 * time.Hour,
	"storage.s3.endpoint":    "",
	"storage.s3.access_key":  "",
	"storage.s3.secret_key":  "",
	"storage.s3.bucket":      "",
	"storage.s3.region":      "",

	"signing.access_key": "",
	"signing.keys.file":  "",

	"auth.password_scheme": "plain",

	"cleanup.schedule":     "",
	"cleanup.grace_period": time.Hour,

	"log.level": "info",
}

func loadDotEnv() {
	if DotEnvFile == "" {
		return
	}
	if err := godotenv.Load(DotEnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("error reading env file", "file", DotEnvFile, "err", err)
	}
}

// readConfigFiles merges files in order. Without files, ./config.yaml is read
// when present.
func readConfigFiles(v *viper.Viper, files []string) {
	if len(files) == 0 {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")

		var notFound viper.ConfigFileNotFoundError
		if err := v.ReadInConfig(); err != nil && !errors.As(err, &notFound) {
			slog.Warn("error reading config file", "err", err)
		}
		return
	}

	for i, file := range files {
		v.SetConfigFile(file)
		read := v.MergeInConfig
		if i == 0 {
			read = v.ReadInConfig
		}
		if err := read(); err != nil {
			slog.Warn("error reading config file", "file", file, "err", err)
		}
	}
}

// newViper layers defaults, files, environment and explicitly set flags.
func newViper(configFiles []string, flags *pflag.FlagSet) *viper.Viper {
	loadDotEnv()

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	readConfigFiles(v, configFiles)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// Some platforms inject only a bare PORT.
	_ = v.BindEnv("server.port", EnvPrefix+"_SERVER_PORT", "PORT")

	if flags != nil {
		flags.Visit(func(f *pflag.Flag) {
			if key, ok := flagKeys[f.Name]; ok {
				_ = v.BindPFlag(key, f)
			}
		})
	}

	return v
}

// Load reads and validates the configuration. Precedence from highest to
// lowest: flags, environment, config files (later files win), defaults.
// flags may be nil.
func Load(configFiles []string, flags *pflag.FlagSet) (*Config, error) {
	v := newViper(configFiles, flags)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	if err := cfg.check(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

// check covers rules that span sections or need parsing.
func (c *Config) check() error {
	if err := c.Database.Tables.Validate(); err != nil {
		return err
	}

	if c.Storage.Backend == "s3" {
		var missing []string
		if c.Storage.S3.Endpoint == "" {
			missing = append(missing, "storage.s3.endpoint")
		}
		if c.Storage.S3.Bucket == "" {
			missing = append(missing, "storage.s3.bucket")
		}
		if len(missing) > 0 {
			return fmt.Errorf("s3 backend requires %s", strings.Join(missing, " and "))
		}
	}

	if c.Cleanup.Schedule != "" {
		if _, err := cron.ParseStandard(c.Cleanup.Schedule); err != nil {
			return fmt.Errorf("cleanup.schedule: %w", err)
		}
	}

	return nil
}

// secretKeys are replaced by Redacted in Effective output.
var secretKeys = map[string]bool{
	"secret_key": true,
	"dsn":        true,
}

// Redacted replaces secret values in Effective output.
const Redacted = "<redacted>"

// Effective renders the merged configuration as YAML with secrets redacted.
func Effective(configFiles []string, flags *pflag.FlagSet) ([]byte, error) {
	v := newViper(configFiles, flags)

	settings := v.AllSettings()
	redact(settings)

	out, err := yaml.Marshal(settings)
	if err != nil {
		return nil, fmt.Errorf("marshal config: %w", err)
	}
	return out, nil
}

func redact(node any) {
	switch n := node.(type) {
	case map[string]any:
		for k, child := range n {
			if s, ok := child.(string); ok && secretKeys[k] && s != "" {
				n[k] = Redacted
				continue
			}
			redact(child)
		}
	case []any:
		for _, child := range n {
			redact(child)
		}
	}
}
