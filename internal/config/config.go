// Package config loads the evolver configuration from a TOML file with
// environment variable overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"github.com/pelletier/go-toml/v2"
)

// Config represents the application configuration.
type Config struct {
	// Profile document configuration
	Profile ProfileConfig `toml:"profile"`

	// Session archive configuration
	Archive ArchiveConfig `toml:"archive"`

	// Profile backup configuration
	Backup BackupConfig `toml:"backup"`

	// Session drop-directory configuration
	Watch WatchConfig `toml:"watch"`

	// Status weight overrides, merged over the built-in table
	Weights map[string]float64 `toml:"weights"`
}

// ProfileConfig contains profile document settings.
type ProfileConfig struct {
	ModID string `toml:"mod_id" env:"EVOLVER_MOD_ID"` // Namespace for generated card ids
	Path  string `toml:"path" env:"EVOLVER_PROFILE_PATH"`
}

// ArchiveConfig contains session archive settings.
type ArchiveConfig struct {
	Enabled bool   `toml:"enabled" env:"EVOLVER_ARCHIVE_ENABLED"`
	Path    string `toml:"path" env:"EVOLVER_ARCHIVE_PATH"`
}

// BackupConfig contains profile backup settings.
type BackupConfig struct {
	Enabled  bool   `toml:"enabled" env:"EVOLVER_BACKUP_ENABLED"`
	Dir      string `toml:"dir" env:"EVOLVER_BACKUP_DIR"`
	Keep     int    `toml:"keep" env:"EVOLVER_BACKUP_KEEP"`         // 0 = keep everything
	Password string `toml:"password" env:"EVOLVER_BACKUP_PASSWORD"` // non-empty enables encryption
}

// WatchConfig contains session drop-directory settings.
type WatchConfig struct {
	Dir         string  `toml:"dir" env:"EVOLVER_WATCH_DIR"`
	RatePerSec  float64 `toml:"rate_per_sec" env:"EVOLVER_WATCH_RATE"` // ingest rate limit
	DeleteAfter bool    `toml:"delete_after" env:"EVOLVER_WATCH_DELETE"`
}

// DefaultConfig returns the default configuration rooted in dataDir.
func DefaultConfig(dataDir string) *Config {
	return &Config{
		Profile: ProfileConfig{
			ModID: "adaptive",
			Path:  filepath.Join(dataDir, "profile.json"),
		},
		Archive: ArchiveConfig{
			Enabled: true,
			Path:    filepath.Join(dataDir, "archive.db"),
		},
		Backup: BackupConfig{
			Enabled: false,
			Dir:     filepath.Join(dataDir, "backups"),
			Keep:    10,
		},
		Watch: WatchConfig{
			Dir:        filepath.Join(dataDir, "sessions"),
			RatePerSec: 4,
		},
		Weights: map[string]float64{},
	}
}

// DefaultDataDir returns the per-user data directory.
func DefaultDataDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".deck-evolver"), nil
}

// DefaultPath returns the default configuration file path.
func DefaultPath() (string, error) {
	dataDir, err := DefaultDataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dataDir, "config.toml"), nil
}

// Load loads the configuration from path. Returns default config if the file
// doesn't exist. Environment overrides are applied last.
func Load(path string) (*Config, error) {
	dataDir, err := DefaultDataDir()
	if err != nil {
		return nil, err
	}
	config := DefaultConfig(dataDir)

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
			// Missing file falls through to defaults.
		case err != nil:
			return nil, fmt.Errorf("read config file: %w", err)
		default:
			if err := toml.Unmarshal(data, config); err != nil {
				return nil, fmt.Errorf("parse config file: %w", err)
			}
		}
	}

	if err := env.Parse(config); err != nil {
		return nil, fmt.Errorf("apply environment overrides: %w", err)
	}

	return config, nil
}

// Save saves the configuration to path.
func (c *Config) Save(path string) error {
	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}

// Validate validates the configuration values.
func (c *Config) Validate() error {
	if c.Profile.ModID == "" {
		return fmt.Errorf("profile mod_id cannot be empty")
	}
	if c.Profile.Path == "" {
		return fmt.Errorf("profile path cannot be empty")
	}
	if c.Backup.Keep < 0 {
		return fmt.Errorf("backup keep cannot be negative: %d", c.Backup.Keep)
	}
	if c.Watch.RatePerSec < 0 {
		return fmt.Errorf("watch rate cannot be negative: %g", c.Watch.RatePerSec)
	}
	for name, weight := range c.Weights {
		if weight < -10 || weight > 10 {
			return fmt.Errorf("status weight %q out of range: %g", name, weight)
		}
	}
	return nil
}
