package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// KeysConfig holds defaults for key creation.
type KeysConfig struct {
	// Type is the private key type requested by create.
	Type string `toml:"type,omitempty"`

	// Algorithm is the key algorithm requested by create.
	Algorithm string `toml:"algorithm,omitempty"`
}

// RetryConfig bounds retries of remote calls.
type RetryConfig struct {
	// InitialInterval is the wait before the first retry (e.g., "1s").
	InitialInterval string `toml:"initial_interval,omitempty"`

	// MaxElapsed is the total time spent retrying a single call (e.g., "10s").
	MaxElapsed string `toml:"max_elapsed,omitempty"`
}

// LogConfig controls log output.
type LogConfig struct {
	// Level is a zerolog level name: debug, info, warn, error.
	Level string `toml:"level,omitempty"`

	// Dir is where the per-run log file is created. Empty disables the file.
	Dir string `toml:"dir"`
}

// Config represents the keyrotator configuration
type Config struct {
	ProjectID       string `toml:"project_id,omitempty"`
	IAMAccount      string `toml:"iam_account,omitempty"`
	CredentialsFile string `toml:"credentials_file,omitempty"`
	Endpoint        string `toml:"endpoint,omitempty"`

	// NoAuth skips authentication, for API emulators reached via Endpoint.
	NoAuth bool `toml:"no_auth,omitempty"`

	Keys  KeysConfig  `toml:"keys"`
	Retry RetryConfig `toml:"retry"`
	Log   LogConfig   `toml:"log"`
}

// DefaultConfig returns a config with default values
func DefaultConfig() *Config {
	return &Config{
		Keys: KeysConfig{
			Type:      "TYPE_GOOGLE_CREDENTIALS_FILE",
			Algorithm: "KEY_ALG_RSA_2048",
		},
		Retry: RetryConfig{
			InitialInterval: "1s",
			MaxElapsed:      "10s",
		},
		Log: LogConfig{
			Level: "info",
			Dir:   ".",
		},
	}
}

// Load loads configuration from files, with the following precedence:
// 1. Local .keyrotatorrc file (in current directory)
// 2. Global ~/.keyrotatorrc config file
// 3. Default values
func Load() (*Config, error) {
	cfg := DefaultConfig()

	// Try global config first (lower precedence)
	globalPath, err := GlobalConfigPath()
	if err == nil {
		if err := mergeFile(cfg, globalPath); err != nil {
			return nil, err
		}
	}

	// Try local config (higher precedence, overwrites global)
	if err := mergeFile(cfg, LocalConfigPath()); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func mergeFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}

// LocalConfigPath returns the path to the local config file
func LocalConfigPath() string {
	return ".keyrotatorrc"
}

// GlobalConfigPath returns the path to the global config file
func GlobalConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(home, ".keyrotatorrc"), nil
}

// LoadFromFile loads configuration from a specific file
func LoadFromFile(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that are parsed later.
func (c *Config) Validate() error {
	if _, err := c.RetryInitialInterval(); err != nil {
		return err
	}
	if _, err := c.RetryMaxElapsed(); err != nil {
		return err
	}
	return nil
}

// RetryInitialInterval returns the parsed retry.initial_interval.
func (c *Config) RetryInitialInterval() (time.Duration, error) {
	return parseDuration("retry.initial_interval", c.Retry.InitialInterval)
}

// RetryMaxElapsed returns the parsed retry.max_elapsed.
func (c *Config) RetryMaxElapsed() (time.Duration, error) {
	return parseDuration("retry.max_elapsed", c.Retry.MaxElapsed)
}

func parseDuration(key, value string) (time.Duration, error) {
	if value == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("invalid %s %q: must not be negative", key, value)
	}
	return d, nil
}

// Marshal encodes the configuration as TOML.
func (c *Config) Marshal() ([]byte, error) {
	return toml.Marshal(c)
}
