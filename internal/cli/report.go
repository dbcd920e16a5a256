package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/spireforge/evolver/internal/report"
)

func init() {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Render style-history and card-performance charts to HTML",
		Run:   runReport,
	}
	cmd.Flags().StringP("out", "o", ".", "Output directory for chart files")
	cmd.Flags().Int("cards", 15, "Number of cards in the performance chart")
	RootCmd.AddCommand(cmd)
}

func runReport(cmd *cobra.Command, args []string) {
	pipe, _, cleanup, err := bootstrap()
	if err != nil {
		exitErr("bootstrap", err)
	}
	defer cleanup()

	outDir, _ := cmd.Flags().GetString("out")
	cardLimit, _ := cmd.Flags().GetInt("cards")
	config := report.DefaultChartConfig()

	stylePath := filepath.Join(outDir, "style_history.html")
	if err := report.RenderStyleHistory(pipe.Profile(), config, stylePath); err != nil {
		exitErr("render style history", err)
	}
	fmt.Printf("wrote %s\n", stylePath)

	cardsPath := filepath.Join(outDir, "card_performance.html")
	if err := report.RenderCardPerformance(pipe.Heuristic(), config, cardLimit, cardsPath); err != nil {
		exitErr("render card performance", err)
	}
	fmt.Printf("wrote %s\n", cardsPath)
}
