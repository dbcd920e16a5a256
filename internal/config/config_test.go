package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig("/data")
	if cfg.Profile.ModID != "adaptive" {
		t.Errorf("ModID = %q", cfg.Profile.ModID)
	}
	if cfg.Profile.Path != filepath.Join("/data", "profile.json") {
		t.Errorf("profile path = %q", cfg.Profile.Path)
	}
	if !cfg.Archive.Enabled {
		t.Error("archive should default to enabled")
	}
	if cfg.Backup.Keep != 10 {
		t.Errorf("backup keep = %d", cfg.Backup.Keep)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Profile.ModID != "adaptive" {
		t.Errorf("ModID = %q", cfg.Profile.ModID)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	cfg := DefaultConfig(t.TempDir())
	cfg.Profile.ModID = "custom"
	cfg.Watch.RatePerSec = 2.5
	cfg.Weights = map[string]float64{"vulnerable": 4.5}

	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Profile.ModID != "custom" {
		t.Errorf("ModID = %q", loaded.Profile.ModID)
	}
	if loaded.Watch.RatePerSec != 2.5 {
		t.Errorf("RatePerSec = %v", loaded.Watch.RatePerSec)
	}
	if loaded.Weights["vulnerable"] != 4.5 {
		t.Errorf("Weights = %v", loaded.Weights)
	}
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Setenv("EVOLVER_MOD_ID", "from-env")
	t.Setenv("EVOLVER_BACKUP_KEEP", "3")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Profile.ModID != "from-env" {
		t.Errorf("ModID = %q, want from-env", cfg.Profile.ModID)
	}
	if cfg.Backup.Keep != 3 {
		t.Errorf("Keep = %d, want 3", cfg.Backup.Keep)
	}
}

func TestEnvironmentOverridesBeatFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	cfg := DefaultConfig(t.TempDir())
	cfg.Profile.ModID = "from-file"
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	t.Setenv("EVOLVER_MOD_ID", "from-env")
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Profile.ModID != "from-env" {
		t.Errorf("ModID = %q, want env to win", loaded.Profile.ModID)
	}
}

func TestLoadMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("not [valid toml"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("malformed file accepted")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty mod id", func(c *Config) { c.Profile.ModID = "" }},
		{"empty profile path", func(c *Config) { c.Profile.Path = "" }},
		{"negative keep", func(c *Config) { c.Backup.Keep = -1 }},
		{"negative rate", func(c *Config) { c.Watch.RatePerSec = -1 }},
		{"absurd weight", func(c *Config) { c.Weights = map[string]float64{"vulnerable": 50} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig("/data")
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("invalid config accepted")
			}
		})
	}
}
