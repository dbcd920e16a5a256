package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/spireforge/evolver/internal/archive"
)

func init() {
	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "List archived sessions, most recent first",
		Run:   runSessions,
	}
	cmd.Flags().IntP("limit", "n", 20, "Maximum sessions to list")
	RootCmd.AddCommand(cmd)
}

func runSessions(cmd *cobra.Command, args []string) {
	cfg, err := loadConfig()
	if err != nil {
		exitErr("load config", err)
	}
	if !cfg.Archive.Enabled {
		exitErr("archive", fmt.Errorf("archive is disabled in config"))
	}

	arc, err := archive.Open(archive.DefaultConfig(cfg.Archive.Path))
	if err != nil {
		exitErr("open archive", err)
	}
	defer arc.Close()

	limit, _ := cmd.Flags().GetInt("limit")
	rows, err := arc.ListSessions(cmd.Context(), limit)
	if err != nil {
		exitErr("list sessions", err)
	}

	total, err := arc.SessionCount(cmd.Context())
	if err != nil {
		exitErr("count sessions", err)
	}
	plans, err := arc.PlanCount(cmd.Context())
	if err != nil {
		exitErr("count plans", err)
	}

	fmt.Printf("%d sessions archived, %d plans\n", total, plans)
	for _, row := range rows {
		outcome := "defeat"
		if row.Victory {
			outcome = "victory"
		}
		fmt.Printf("  %s  floor %2d  %-20s %-7s  %2d turns  %3d events  hp %.0f -> %.0f\n",
			row.RecordedAt.Format("2006-01-02 15:04"),
			row.Floor, row.Enemy, outcome, row.TurnCount, row.EventCount,
			row.PlayerHPStart, row.PlayerHPEnd)
	}
}
