package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/spireforge/evolver/internal/store"
)

func init() {
	backupCmd := &cobra.Command{
		Use:   "backup",
		Short: "Write a timestamped backup of the profile file",
		Run:   runBackup,
	}
	backupCmd.Flags().String("dir", "", "Backup directory (default: config backup.dir)")
	backupCmd.Flags().String("password", "", "Encrypt the backup with this password")
	RootCmd.AddCommand(backupCmd)

	restoreCmd := &cobra.Command{
		Use:   "restore <backup-file>",
		Short: "Replace the profile file with a backup",
		Args:  cobra.ExactArgs(1),
		Run:   runRestore,
	}
	restoreCmd.Flags().String("password", "", "Password for encrypted backups")
	RootCmd.AddCommand(restoreCmd)
}

func runBackup(cmd *cobra.Command, args []string) {
	cfg, err := loadConfig()
	if err != nil {
		exitErr("load config", err)
	}
	profileStore, err := store.New(cfg.Profile.Path)
	if err != nil {
		exitErr("open profile store", err)
	}

	dir, _ := cmd.Flags().GetString("dir")
	if dir == "" {
		dir = cfg.Backup.Dir
	}
	password, _ := cmd.Flags().GetString("password")
	if password == "" {
		password = cfg.Backup.Password
	}

	path, err := profileStore.Backup(store.BackupConfig{
		Dir:      dir,
		Keep:     cfg.Backup.Keep,
		Password: password,
	})
	if err != nil {
		exitErr("backup", err)
	}
	fmt.Printf("wrote %s\n", path)
}

func runRestore(cmd *cobra.Command, args []string) {
	cfg, err := loadConfig()
	if err != nil {
		exitErr("load config", err)
	}
	profileStore, err := store.New(cfg.Profile.Path)
	if err != nil {
		exitErr("open profile store", err)
	}

	password, _ := cmd.Flags().GetString("password")
	if err := profileStore.RestoreBackup(args[0], password); err != nil {
		exitErr("restore", err)
	}
	fmt.Printf("restored %s\n", cfg.Profile.Path)
}
