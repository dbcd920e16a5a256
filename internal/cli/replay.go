package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/spireforge/evolver/internal/telemetry"
)

func init() {
	cmd := &cobra.Command{
		Use:   "replay <session.json> [more...]",
		Short: "Replay recorded session files through the analytics pipeline",
		Args:  cobra.MinimumNArgs(1),
		Run:   runReplay,
	}
	RootCmd.AddCommand(cmd)
}

func runReplay(cmd *cobra.Command, args []string) {
	pipe, _, cleanup, err := bootstrap()
	if err != nil {
		exitErr("bootstrap", err)
	}
	defer cleanup()

	for _, path := range args {
		data, err := os.ReadFile(path)
		if err != nil {
			exitErr("read session file", err)
		}
		session := &telemetry.Session{}
		if err := json.Unmarshal(data, session); err != nil {
			exitErr(fmt.Sprintf("parse %s", path), err)
		}

		plan, err := pipe.ReplaySession(cmd.Context(), session)
		if err != nil {
			exitErr(fmt.Sprintf("replay %s", path), err)
		}

		fmt.Printf("%s: %d mutations, %d new cards, %d unlockables\n",
			path, len(plan.Mutations), len(plan.NewCards), len(plan.Unlockables))
		for _, note := range plan.Notes {
			fmt.Printf("  %s\n", note)
		}
	}

	if style := pipe.Profile().LatestStyle(); style != nil {
		fmt.Printf("style: %s (%s)\n", style.DominantArchetype(), style.Summary)
	}
}
