package store

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// BackupConfig controls profile backups.
type BackupConfig struct {
	// Dir is where backups are written. Empty defaults to a "backups"
	// subdirectory next to the profile file.
	Dir string

	// Keep bounds how many backups are retained; oldest are pruned first.
	// Zero means keep everything.
	Keep int

	// Password enables AES-256-GCM encryption of the backup payload when
	// non-empty.
	Password string
}

// Backup copies the current profile snapshot into the backup directory,
// optionally encrypted, and prunes old backups past the retention bound.
// Backing up a store with no persisted file is an error.
func (s *Store) Backup(cfg BackupConfig) (string, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return "", fmt.Errorf("read profile for backup: %w", err)
	}

	dir := cfg.Dir
	if dir == "" {
		dir = filepath.Join(filepath.Dir(s.path), "backups")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create backup directory: %w", err)
	}

	ext := ".json"
	if cfg.Password != "" {
		if data, err = EncryptData(data, cfg.Password); err != nil {
			return "", err
		}
		ext = ".json.enc"
	}

	name := fmt.Sprintf("profile_%s%s", time.Now().Format("20060102_150405"), ext)
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", fmt.Errorf("write backup file: %w", err)
	}
	if cfg.Keep > 0 {
		if err := pruneBackups(dir, cfg.Keep); err != nil {
			return path, fmt.Errorf("prune old backups: %w", err)
		}
	}
	return path, nil
}

// RestoreBackup replaces the current profile file with the named backup,
// decrypting it when a password is supplied.
func (s *Store) RestoreBackup(backupPath, password string) error {
	data, err := os.ReadFile(backupPath)
	if err != nil {
		return fmt.Errorf("read backup file: %w", err)
	}
	if IsEncrypted(data) {
		if data, err = DecryptData(data, password); err != nil {
			return err
		}
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("restore profile file: %w", err)
	}
	return nil
}

// pruneBackups removes the oldest backup files beyond keep. Timestamped
// names sort lexicographically in creation order.
func pruneBackups(dir string, keep int) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasPrefix(entry.Name(), "profile_") {
			continue
		}
		names = append(names, entry.Name())
	}
	if len(names) <= keep {
		return nil
	}
	sort.Strings(names)
	for _, name := range names[:len(names)-keep] {
		if err := os.Remove(filepath.Join(dir, name)); err != nil {
			return err
		}
	}
	return nil
}
