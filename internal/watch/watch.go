// Package watch ingests session documents dropped into a directory. Host
// processes write one JSON session file per completed encounter; the watcher
// replays each file through the analytics pipeline as it appears.
package watch

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/time/rate"

	"github.com/spireforge/evolver/internal/pipeline"
	"github.com/spireforge/evolver/internal/telemetry"
)

// Options configures a Watcher.
type Options struct {
	// Dir is the directory to watch for session files.
	Dir string

	// RatePerSec limits how many files are ingested per second.
	// Zero disables the limit.
	RatePerSec float64

	// DeleteAfter removes session files once ingested.
	DeleteAfter bool
}

// Watcher feeds dropped session files into the pipeline.
type Watcher struct {
	dir         string
	pipe        *pipeline.Pipeline
	limiter     *rate.Limiter
	deleteAfter bool
	ingested    int
}

// New creates a Watcher bound to the given pipeline.
func New(pipe *pipeline.Pipeline, opts Options) (*Watcher, error) {
	if pipe == nil {
		return nil, fmt.Errorf("watcher requires a pipeline")
	}
	if opts.Dir == "" {
		return nil, fmt.Errorf("watcher requires a directory")
	}
	if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create watch directory: %w", err)
	}
	limiter := rate.NewLimiter(rate.Inf, 1)
	if opts.RatePerSec > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RatePerSec), 1)
	}
	return &Watcher{
		dir:         opts.Dir,
		pipe:        pipe,
		limiter:     limiter,
		deleteAfter: opts.DeleteAfter,
	}, nil
}

// Ingested returns how many session files have been replayed.
func (w *Watcher) Ingested() int {
	return w.ingested
}

// Run drains any session files already present, then blocks watching for new
// ones until the context is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	notifier, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create file watcher: %w", err)
	}
	defer notifier.Close()

	if err := notifier.Add(w.dir); err != nil {
		return fmt.Errorf("watch directory %s: %w", w.dir, err)
	}

	if err := w.DrainExisting(ctx); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-notifier.Events:
			if !ok {
				return nil
			}
			// Writers are expected to write to a temp name and rename into
			// place; Create fires on the rename. Write covers direct writes.
			if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			if !isSessionFile(event.Name) {
				continue
			}
			if err := w.ingest(ctx, event.Name); err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				log.Printf("[Watch] ingest %s: %v", event.Name, err)
			}
		case err, ok := <-notifier.Errors:
			if !ok {
				return nil
			}
			log.Printf("[Watch] watcher error: %v", err)
		}
	}
}

// DrainExisting ingests every session file already present in the directory,
// in name order.
func (w *Watcher) DrainExisting(ctx context.Context) error {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		return fmt.Errorf("list watch directory: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() || !isSessionFile(entry.Name()) {
			continue
		}
		path := filepath.Join(w.dir, entry.Name())
		if err := w.ingest(ctx, path); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.Printf("[Watch] ingest %s: %v", path, err)
		}
	}
	return nil
}

func (w *Watcher) ingest(ctx context.Context, path string) error {
	if err := w.limiter.Wait(ctx); err != nil {
		return err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read session file: %w", err)
	}
	session := &telemetry.Session{}
	if err := json.Unmarshal(data, session); err != nil {
		return fmt.Errorf("parse session file: %w", err)
	}
	if _, err := w.pipe.ReplaySession(ctx, session); err != nil {
		return fmt.Errorf("replay session: %w", err)
	}
	w.ingested++
	if w.deleteAfter {
		if err := os.Remove(path); err != nil {
			log.Printf("[Watch] remove %s: %v", path, err)
		}
	}
	return nil
}

func isSessionFile(name string) bool {
	return strings.HasSuffix(strings.ToLower(name), ".json")
}
