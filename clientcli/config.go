package clientcli

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultEndpoint is where a local gallery server listens by default.
const DefaultEndpoint = "http://localhost:3000"

// Environment variables read by the client.
const (
	EnvEndpoint   = "URILAGA_ENDPOINT"
	EnvUsername   = "URILAGA_USERNAME"
	EnvProfile    = "URILAGA_PROFILE"
	EnvConfigPath = "URILAGA_CLIENT_CONFIG"
	EnvPassword   = "URILAGA_PASSWORD"
)

// Profile is a saved gallery server. The password is deliberately absent.
type Profile struct {
	Name     string `yaml:"name"`
	Endpoint string `yaml:"endpoint"`
	Username string `yaml:"username,omitempty"`
	Default  bool   `yaml:"default,omitempty"`
}

// ConfigFile is the on-disk profile list.
type ConfigFile struct {
	Profiles []Profile `yaml:"profiles"`
}

func (c *ConfigFile) indexOf(name string) int {
	for i := range c.Profiles {
		if c.Profiles[i].Name == name {
			return i
		}
	}
	return -1
}

// GetProfile returns the named profile, or the default one for an empty name.
func (c *ConfigFile) GetProfile(name string) (*Profile, error) {
	if name == "" {
		return c.GetDefaultProfile()
	}
	if len(c.Profiles) == 0 {
		return nil, ErrNoProfiles
	}

	i := c.indexOf(name)
	if i < 0 {
		return nil, fmt.Errorf("%w: %s", ErrProfileNotFound, name)
	}
	return &c.Profiles[i], nil
}

// GetDefaultProfile returns the first profile marked default. Without one,
// the first profile is the default.
func (c *ConfigFile) GetDefaultProfile() (*Profile, error) {
	if len(c.Profiles) == 0 {
		return nil, ErrNoProfiles
	}
	for i := range c.Profiles {
		if c.Profiles[i].Default {
			return &c.Profiles[i], nil
		}
	}
	return &c.Profiles[0], nil
}

// AddProfile appends p. Adding a default profile clears the flag elsewhere.
func (c *ConfigFile) AddProfile(p Profile) error {
	if p.Name == "" || strings.ContainsAny(p.Name, " \t\r\n") {
		return fmt.Errorf("%w: %q", ErrProfileName, p.Name)
	}
	if c.indexOf(p.Name) >= 0 {
		return fmt.Errorf("%w: %s", ErrProfileExists, p.Name)
	}

	if p.Default {
		c.clearDefault()
	}
	c.Profiles = append(c.Profiles, p)
	return nil
}

// RemoveProfile deletes the named profile.
func (c *ConfigFile) RemoveProfile(name string) error {
	i := c.indexOf(name)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrProfileNotFound, name)
	}
	c.Profiles = append(c.Profiles[:i], c.Profiles[i+1:]...)
	return nil
}

// SetDefault makes name the only default profile.
func (c *ConfigFile) SetDefault(name string) error {
	i := c.indexOf(name)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrProfileNotFound, name)
	}
	c.clearDefault()
	c.Profiles[i].Default = true
	return nil
}

func (c *ConfigFile) clearDefault() {
	for i := range c.Profiles {
		c.Profiles[i].Default = false
	}
}

// Save writes the profiles to path with owner-only permissions. The file is
// written next to path and renamed into place so a crash never leaves a
// truncated profile list.
func (c *ConfigFile) Save(path string) error {
	path = filepath.Clean(path)
	dir := filepath.Dir(path)

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal profiles: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".client-*.yaml")
	if err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write config file: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	if err = os.Chmod(tmp.Name(), 0o600); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// LoadConfigFile reads a profile list. A missing file is reported with an
// error wrapping os.ErrNotExist.
func LoadConfigFile(path string) (*ConfigFile, error) {
	data, err := os.ReadFile(filepath.Clean(path)) //#nosec G304 -- user-chosen config path
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := &ConfigFile{}
	if err = yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config file %s: %w", path, err)
	}
	return cfg, nil
}

// DefaultConfigPath returns ~/.urilaga/client.yaml, or "" without a home directory.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".urilaga", "client.yaml")
}

// Config is the resolved endpoint and user for one invocation.
type Config struct {
	Endpoint string
	Username string
}

// WithDefaults returns a copy with DefaultEndpoint filled in.
func (c *Config) WithDefaults() *Config {
	out := *c
	if out.Endpoint == "" {
		out.Endpoint = DefaultEndpoint
	}
	return &out
}

// Validate requires an absolute http or https endpoint.
func (c *Config) Validate() error {
	u, err := url.Parse(c.Endpoint)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidEndpoint, err)
	}
	if u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("%w: %q", ErrInvalidEndpoint, c.Endpoint)
	}
	return nil
}

// ConfigFromProfile copies the connection fields of p. A nil profile gives
// an empty Config.
func ConfigFromProfile(p *Profile) *Config {
	if p == nil {
		return &Config{}
	}
	return &Config{Endpoint: p.Endpoint, Username: p.Username}
}

// ConfigFromEnv reads EnvEndpoint and EnvUsername.
func ConfigFromEnv() *Config {
	return &Config{Endpoint: os.Getenv(EnvEndpoint), Username: os.Getenv(EnvUsername)}
}

// ProfileFromEnv returns the profile chosen by EnvProfile.
func ProfileFromEnv() string { return os.Getenv(EnvProfile) }

// ConfigPathFromEnv returns the profile file chosen by EnvConfigPath.
func ConfigPathFromEnv() string { return os.Getenv(EnvConfigPath) }

// PasswordFromEnv returns EnvPassword for non-interactive logins.
func PasswordFromEnv() string { return os.Getenv(EnvPassword) }

// MergeConfig layers configs left to right. A non-empty field overrides the
// layers before it; empty fields never do.
func MergeConfig(layers ...*Config) *Config {
	out := &Config{}
	for _, l := range layers {
		if l == nil {
			continue
		}
		if l.Endpoint != "" {
			out.Endpoint = l.Endpoint
		}
		if l.Username != "" {
			out.Username = l.Username
		}
	}
	return out
}
