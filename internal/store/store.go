// Package store persists the profile document. The profile is written as a
// single JSON snapshot: a full, deterministic overwrite with stable key
// ordering, never a partial or incremental write.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spireforge/evolver/internal/profile"
)

// Store reads and writes a profile document at a fixed path.
type Store struct {
	path string
}

// New creates a store for the given file path, creating the parent
// directory if needed.
func New(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create profile directory: %w", err)
	}
	return &Store{path: path}, nil
}

// Path returns the backing file path.
func (s *Store) Path() string {
	return s.path
}

// Load reads the persisted profile. When no file exists a fresh profile for
// modID is returned. A malformed file surfaces as a parse error; a
// well-formed file with an outdated schema version is normalized to the
// current version and immediately re-saved.
func (s *Store) Load(modID string) (*profile.Profile, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return profile.New(modID), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read profile file: %w", err)
	}
	p := profile.New(modID)
	if err := json.Unmarshal(data, p); err != nil {
		return nil, fmt.Errorf("parse profile file: %w", err)
	}
	if p.SchemaVersion != profile.SchemaVersion {
		p.SchemaVersion = profile.SchemaVersion
		if err := s.Save(p); err != nil {
			return nil, fmt.Errorf("normalize schema version: %w", err)
		}
	}
	return p, nil
}

// Save serializes the entire profile and overwrites the target file.
// encoding/json emits map keys in sorted order, so snapshots of equal state
// are byte-identical.
func (s *Store) Save(p *profile.Profile) error {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal profile: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("write profile file: %w", err)
	}
	return nil
}

// Reset discards all state and persists a fresh empty profile for modID.
func (s *Store) Reset(modID string) (*profile.Profile, error) {
	p := profile.New(modID)
	if err := s.Save(p); err != nil {
		return nil, err
	}
	return p, nil
}
