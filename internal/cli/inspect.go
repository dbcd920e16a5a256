package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/spireforge/evolver/internal/profile"
)

func init() {
	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Show the recorded profile: record, style, top cards and combos",
		Run:   runInspect,
	}
	cmd.Flags().Int("cards", 10, "Number of ranked cards to show")
	cmd.Flags().Int("combos", 5, "Number of top combos to show")
	RootCmd.AddCommand(cmd)
}

// deckSummary formats the collection line: GeneratedCards is a running
// counter, not a map like Deck and Unlockables.
func deckSummary(prof *profile.Profile) string {
	return fmt.Sprintf("deck: %d cards, %d generated, %d unlockables",
		len(prof.Deck), prof.GeneratedCards, len(prof.Unlockables))
}

func runInspect(cmd *cobra.Command, args []string) {
	pipe, _, cleanup, err := bootstrap()
	if err != nil {
		exitErr("bootstrap", err)
	}
	defer cleanup()

	cardLimit, _ := cmd.Flags().GetInt("cards")
	comboLimit, _ := cmd.Flags().GetInt("combos")

	prof := pipe.Profile()
	fmt.Printf("profile %s: %d fights (%d wins / %d losses)\n",
		prof.ModID, prof.FightsRecorded, prof.Wins, prof.Losses)
	fmt.Println(deckSummary(prof))

	if style := prof.LatestStyle(); style != nil {
		fmt.Printf("style: %s\n", style.DominantArchetype())
		fmt.Printf("  %s\n", style.Summary)
		if len(style.DominantCombo) > 0 {
			fmt.Printf("  favourite combo: %s\n", strings.Join(style.DominantCombo, " -> "))
		}
	} else {
		fmt.Println("style: no data yet")
	}

	heuristic := pipe.Heuristic()
	if ranked := heuristic.RankCards(cardLimit); len(ranked) > 0 {
		fmt.Println("cards:")
		for _, card := range ranked {
			fmt.Printf("  %-24s score %6.2f  plays %3d  wins %3d\n",
				card.CardID, card.Score, card.Stats.Plays, card.Stats.Victories)
		}
	}

	if combos := heuristic.TopCombos(comboLimit, 2); len(combos) > 0 {
		fmt.Println("combos:")
		for _, combo := range combos {
			fmt.Printf("  %-32s score %6.2f  plays %3d\n",
				strings.Join(combo.Stats.Key, " -> "), combo.Score, combo.Stats.Plays)
		}
	}

	if plan := pipe.LatestPlan(); plan != nil && !plan.IsEmpty() {
		fmt.Printf("latest plan: %d mutations, %d new cards (session %s)\n",
			len(plan.Mutations), len(plan.NewCards), plan.SourceSession)
	}
}
