package hooks

import (
	"fmt"
	"strings"

	"github.com/spireforge/evolver/internal/profile"
)

// TelemetryCore is a shipped relic-like hook that amplifies evolution
// feedback: it annotates each session at start and enriches finalized plans
// with synergy-focused notes and metadata.
type TelemetryCore struct {
	counter int
}

// NewTelemetryCore returns a fresh hook instance.
func NewTelemetryCore() *TelemetryCore {
	return &TelemetryCore{}
}

// Name implements Hook.
func (t *TelemetryCore) Name() string {
	return "TelemetryCore"
}

// SessionStarted implements Hook.
func (t *TelemetryCore) SessionStarted(session SessionNotes) error {
	t.counter++
	session.AddNote("Adaptive Telemetry Core calibrates to the encounter.")
	return nil
}

// PlanFinalized implements Hook. It appends deduplicated notes to the plan
// and every mutation, bumps the style vector's combo score, extends its
// summary, and backfills the plan's source-session id when unset.
func (t *TelemetryCore) PlanFinalized(plan *profile.MutationPlan) error {
	plan.Notes = appendUnique(plan.Notes, "Telemetry Core prioritised synergy lines")
	for i := range plan.Mutations {
		mutation := &plan.Mutations[i]
		mutation.Notes = appendUnique(mutation.Notes, "Telemetry Core reinforcement")
		if mutation.Metadata == nil {
			mutation.Metadata = map[string]any{}
		}
		if _, ok := mutation.Metadata["telemetry_core_boost"]; !ok {
			mutation.Metadata["telemetry_core_boost"] = true
		}
	}
	if plan.StyleVector != nil {
		plan.StyleVector.Combo += 0.35
		if plan.StyleVector.Summary == "" {
			plan.StyleVector.Summary = "Telemetry Core boost"
		} else if !strings.Contains(plan.StyleVector.Summary, "Telemetry Core") {
			plan.StyleVector.Summary += " | Telemetry Core boost"
		}
	}
	if plan.SourceSession == "" {
		plan.SourceSession = fmt.Sprintf("telemetry_core:%d", t.counter)
	}
	return nil
}

func appendUnique(notes []string, note string) []string {
	for _, existing := range notes {
		if existing == note {
			return notes
		}
	}
	return append(notes, note)
}
