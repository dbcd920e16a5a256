// Package report renders interactive HTML charts over the recorded profile:
// style-axis history across fights and per-card performance.
package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/spireforge/evolver/internal/analysis"
	"github.com/spireforge/evolver/internal/profile"
)

// ChartConfig holds configuration for charts.
type ChartConfig struct {
	Title    string // Chart title
	Subtitle string // Chart subtitle
	Width    string // Chart width (e.g., "900px")
	Height   string // Chart height (e.g., "500px")
	Theme    string // Chart theme
}

// DefaultChartConfig returns default chart configuration.
func DefaultChartConfig() ChartConfig {
	return ChartConfig{
		Width:  "900px",
		Height: "500px",
		Theme:  "light",
	}
}

// styleAxes are the chart series drawn from each style snapshot, in draw order.
var styleAxes = []struct {
	name  string
	value func(profile.StyleVector) float64
}{
	{"Aggression", func(s profile.StyleVector) float64 { return s.Aggression }},
	{"Defense", func(s profile.StyleVector) float64 { return s.Defense }},
	{"Control", func(s profile.StyleVector) float64 { return s.Control }},
	{"Combo", func(s profile.StyleVector) float64 { return s.Combo }},
}

// RenderStyleHistory creates a line chart of the style axes across the
// retained style snapshots.
func RenderStyleHistory(prof *profile.Profile, config ChartConfig, outputPath string) error {
	if len(prof.StyleHistory) == 0 {
		return fmt.Errorf("profile has no style history")
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			Width:  config.Width,
			Height: config.Height,
			Theme:  config.Theme,
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    orDefault(config.Title, "Play-style history"),
			Subtitle: config.Subtitle,
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show:    opts.Bool(true),
			Trigger: "axis",
		}),
		charts.WithLegendOpts(opts.Legend{
			Show: opts.Bool(true),
		}),
	)

	xLabels := make([]string, len(prof.StyleHistory))
	for i := range prof.StyleHistory {
		xLabels[i] = fmt.Sprintf("#%d", i+1)
	}
	line.SetXAxis(xLabels)

	for _, axis := range styleAxes {
		series := make([]opts.LineData, len(prof.StyleHistory))
		for i, snapshot := range prof.StyleHistory {
			series[i] = opts.LineData{Value: axis.value(snapshot)}
		}
		line.AddSeries(axis.name, series)
	}
	line.SetSeriesOptions(
		charts.WithLineChartOpts(opts.LineChart{
			Smooth: opts.Bool(true),
		}),
		charts.WithLabelOpts(opts.Label{
			Show: opts.Bool(false),
		}),
	)

	return renderToFile(line, outputPath)
}

// RenderCardPerformance creates a bar chart of average effectiveness for the
// most-played cards.
func RenderCardPerformance(heuristic *analysis.Heuristic, config ChartConfig, limit int, outputPath string) error {
	ranked := heuristic.RankCards(limit)
	if len(ranked) == 0 {
		return fmt.Errorf("profile has no card usage")
	}
	// RankCards orders by score; the chart reads better by play volume.
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Stats.Plays > ranked[j].Stats.Plays
	})

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			Width:  config.Width,
			Height: config.Height,
			Theme:  config.Theme,
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    orDefault(config.Title, "Card performance"),
			Subtitle: config.Subtitle,
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show: opts.Bool(true),
		}),
	)

	xLabels := make([]string, len(ranked))
	scores := make([]opts.BarData, len(ranked))
	plays := make([]opts.BarData, len(ranked))
	for i, card := range ranked {
		xLabels[i] = card.CardID
		scores[i] = opts.BarData{Value: card.Score}
		plays[i] = opts.BarData{Value: card.Stats.Plays}
	}
	bar.SetXAxis(xLabels).
		AddSeries("Avg effectiveness", scores).
		AddSeries("Plays", plays)

	return renderToFile(bar, outputPath)
}

type renderer interface {
	Render(w io.Writer) error
}

func renderToFile(chart renderer, outputPath string) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return fmt.Errorf("create report directory: %w", err)
	}
	f, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("create chart file: %w", err)
	}
	defer f.Close()

	if err := chart.Render(f); err != nil {
		return fmt.Errorf("render chart: %w", err)
	}
	return nil
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
