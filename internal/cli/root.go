// Package cli implements the evolver CLI commands.
package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/spireforge/evolver/internal/archive"
	"github.com/spireforge/evolver/internal/config"
	"github.com/spireforge/evolver/internal/hooks"
	"github.com/spireforge/evolver/internal/pipeline"
	"github.com/spireforge/evolver/internal/profile"
	"github.com/spireforge/evolver/internal/registry"
	"github.com/spireforge/evolver/internal/store"
	"github.com/spireforge/evolver/internal/telemetry"
)

var (
	configPath string
	deckPath   string
)

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   "evolver",
	Short: "Adaptive deck analytics and evolution planner",
	Long: "Records card-play telemetry per combat session, derives a play-style " +
		"profile, and plans card mutations and generated cards that lean into it.",
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file path (default: ~/.deck-evolver/config.toml)")
	RootCmd.PersistentFlags().StringVar(&deckPath, "deck", "", "JSON file with base deck card specs to register")
}

func loadConfig() (*config.Config, error) {
	path := configPath
	if path == "" {
		defaultPath, err := config.DefaultPath()
		if err != nil {
			return nil, err
		}
		path = defaultPath
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// bootstrap loads the config, opens the profile store and archive, and wires
// the pipeline with the built-in registry content. The returned cleanup
// closes the archive connection.
func bootstrap() (*pipeline.Pipeline, *config.Config, func(), error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, nil, err
	}

	profileStore, err := store.New(cfg.Profile.Path)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("open profile store: %w", err)
	}

	cleanup := func() {}
	var archiver pipeline.Archiver
	if cfg.Archive.Enabled {
		arc, err := archive.Open(archive.DefaultConfig(cfg.Archive.Path))
		if err != nil {
			return nil, nil, nil, fmt.Errorf("open archive: %w", err)
		}
		archiver = arc
		cleanup = func() { _ = arc.Close() }
	}

	pipe, err := pipeline.New(pipeline.Options{
		ModID:    cfg.Profile.ModID,
		Store:    profileStore,
		Archive:  archiver,
		Weights:  telemetry.StatusWeights(cfg.Weights),
		Autosave: true,
	})
	if err != nil {
		cleanup()
		return nil, nil, nil, err
	}

	reg, err := builtinRegistry()
	if err != nil {
		cleanup()
		return nil, nil, nil, err
	}
	for _, hook := range reg.Hooks() {
		pipe.RegisterHook(hook)
	}
	if specs := reg.DeckSpecs(); len(specs) > 0 {
		if err := pipe.RegisterBaseDeck(specs); err != nil {
			cleanup()
			return nil, nil, nil, fmt.Errorf("register base deck: %w", err)
		}
	}
	if specs := reg.UnlockableSpecs(); len(specs) > 0 {
		if err := pipe.RegisterUnlockables(specs); err != nil {
			cleanup()
			return nil, nil, nil, fmt.Errorf("register unlockables: %w", err)
		}
	}

	return pipe, cfg, cleanup, nil
}

// builtinRegistry assembles the default content registrations plus any deck
// file supplied on the command line.
func builtinRegistry() (*registry.Registry, error) {
	reg := registry.New()
	if err := reg.RegisterHook("telemetry-core", registry.HookRecord{
		Namespace: "evolver",
		Factory:   func() hooks.Hook { return hooks.NewTelemetryCore() },
	}); err != nil {
		return nil, err
	}

	if deckPath != "" {
		data, err := os.ReadFile(deckPath)
		if err != nil {
			return nil, fmt.Errorf("read deck file: %w", err)
		}
		var specs []profile.CardSpec
		if err := json.Unmarshal(data, &specs); err != nil {
			return nil, fmt.Errorf("parse deck file: %w", err)
		}
		for i := range specs {
			spec := specs[i]
			err := reg.RegisterCard(spec.Identifier, registry.CardRecord{
				Namespace: "deck-file",
				Kind:      registry.KindDeck,
				Factory:   func() profile.CardSpec { return spec },
			})
			if err != nil {
				return nil, err
			}
		}
	}
	return reg, nil
}

func exitErr(msg string, err error) {
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
	os.Exit(1)
}
