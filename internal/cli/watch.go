package cli

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/spireforge/evolver/internal/watch"
)

func init() {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Watch a directory for session files and ingest them as they land",
		Run:   runWatch,
	}
	cmd.Flags().String("dir", "", "Directory to watch (default: config watch.dir)")
	cmd.Flags().Bool("delete", false, "Delete session files after ingest")
	RootCmd.AddCommand(cmd)
}

func runWatch(cmd *cobra.Command, args []string) {
	pipe, cfg, cleanup, err := bootstrap()
	if err != nil {
		exitErr("bootstrap", err)
	}
	defer cleanup()

	dir, _ := cmd.Flags().GetString("dir")
	if dir == "" {
		dir = cfg.Watch.Dir
	}
	deleteAfter, _ := cmd.Flags().GetBool("delete")

	watcher, err := watch.New(pipe, watch.Options{
		Dir:         dir,
		RatePerSec:  cfg.Watch.RatePerSec,
		DeleteAfter: deleteAfter || cfg.Watch.DeleteAfter,
	})
	if err != nil {
		exitErr("create watcher", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fmt.Printf("watching %s (Ctrl-C to stop)\n", dir)
	if err := watcher.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		exitErr("watch", err)
	}
	fmt.Printf("ingested %d sessions\n", watcher.Ingested())
}
