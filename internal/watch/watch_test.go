package watch

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/spireforge/evolver/internal/pipeline"
	"github.com/spireforge/evolver/internal/store"
	"github.com/spireforge/evolver/internal/telemetry"
)

func newTestPipeline(t *testing.T) *pipeline.Pipeline {
	t.Helper()
	s, err := store.New(filepath.Join(t.TempDir(), "profile.json"))
	if err != nil {
		t.Fatal(err)
	}
	pipe, err := pipeline.New(pipeline.Options{ModID: "testmod", Store: s})
	if err != nil {
		t.Fatal(err)
	}
	return pipe
}

func writeSession(t *testing.T, dir, name, id string) {
	t.Helper()
	session := &telemetry.Session{
		ID:      id,
		Enemy:   "Cultist",
		Victory: true,
		Events: []telemetry.PlayEvent{
			{CardID: "strike", Turn: 1, DamageDealt: 6},
		},
	}
	data, err := json.Marshal(session)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestNewValidation(t *testing.T) {
	if _, err := New(nil, Options{Dir: t.TempDir()}); err == nil {
		t.Error("nil pipeline accepted")
	}
	if _, err := New(newTestPipeline(t), Options{}); err == nil {
		t.Error("empty directory accepted")
	}
}

func TestDrainExistingIngestsSessionFiles(t *testing.T) {
	pipe := newTestPipeline(t)
	dir := t.TempDir()
	writeSession(t, dir, "a.json", "fight-a")
	writeSession(t, dir, "b.json", "fight-b")
	if err := os.WriteFile(filepath.Join(dir, "readme.txt"), []byte("skip me"), 0o644); err != nil {
		t.Fatal(err)
	}

	w, err := New(pipe, Options{Dir: dir})
	if err != nil {
		t.Fatal(err)
	}
	if err := w.DrainExisting(context.Background()); err != nil {
		t.Fatalf("DrainExisting: %v", err)
	}

	if w.Ingested() != 2 {
		t.Errorf("Ingested() = %d, want 2", w.Ingested())
	}
	if pipe.Profile().FightsRecorded != 2 {
		t.Errorf("fights = %d, want 2", pipe.Profile().FightsRecorded)
	}
	// Files stay put unless deletion is requested.
	if _, err := os.Stat(filepath.Join(dir, "a.json")); err != nil {
		t.Errorf("session file removed: %v", err)
	}
}

func TestDrainExistingDeleteAfter(t *testing.T) {
	pipe := newTestPipeline(t)
	dir := t.TempDir()
	writeSession(t, dir, "a.json", "fight-a")

	w, err := New(pipe, Options{Dir: dir, DeleteAfter: true})
	if err != nil {
		t.Fatal(err)
	}
	if err := w.DrainExisting(context.Background()); err != nil {
		t.Fatalf("DrainExisting: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "a.json")); !os.IsNotExist(err) {
		t.Error("session file should be deleted after ingest")
	}
}

func TestDrainExistingSkipsMalformedFiles(t *testing.T) {
	pipe := newTestPipeline(t)
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "bad.json"), []byte("{broken"), 0o644); err != nil {
		t.Fatal(err)
	}
	writeSession(t, dir, "good.json", "fight-good")

	w, err := New(pipe, Options{Dir: dir})
	if err != nil {
		t.Fatal(err)
	}
	// Malformed files are logged and skipped, not fatal.
	if err := w.DrainExisting(context.Background()); err != nil {
		t.Fatalf("DrainExisting: %v", err)
	}
	if w.Ingested() != 1 {
		t.Errorf("Ingested() = %d, want 1", w.Ingested())
	}
}

func TestDrainExistingHonorsCancellation(t *testing.T) {
	pipe := newTestPipeline(t)
	dir := t.TempDir()
	writeSession(t, dir, "a.json", "fight-a")

	// A throttled limiter forces ingest to block on the context.
	w, err := New(pipe, Options{Dir: dir, RatePerSec: 0.0001})
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := w.DrainExisting(ctx); err == nil {
		t.Error("cancelled context should surface an error")
	}
}
