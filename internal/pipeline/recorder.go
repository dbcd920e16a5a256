package pipeline

import (
	"github.com/spireforge/evolver/internal/telemetry"
)

// Recorder buffers telemetry for a single in-progress combat session. Each
// session accumulates its own event buffer until finalized; recorders never
// touch the shared profile.
type Recorder struct {
	id            string
	enemy         string
	floor         int
	playerHPStart float64
	relics        []string
	notes         []string
	events        []telemetry.PlayEvent
}

// ID returns the session identifier.
func (r *Recorder) ID() string {
	return r.id
}

// AddNote appends a human-readable note to the in-progress session.
func (r *Recorder) AddNote(note string) {
	r.notes = append(r.notes, note)
}

// RecordPlay appends one card-play event to the session buffer in recording
// order. Status effect scope and effect names are lower-cased and a missing
// timestamp is filled in.
func (r *Recorder) RecordPlay(event telemetry.PlayEvent) {
	event.StatusEffects = telemetry.NormalizeStatusEffects(event.StatusEffects)
	if event.Timestamp == 0 {
		event.Timestamp = telemetry.Now()
	}
	r.events = append(r.events, event)
}

// finalize seals the buffer into an immutable session snapshot.
func (r *Recorder) finalize(victory bool, playerHPEnd float64, rewardCards, notes []string) telemetry.Session {
	turnCount := 0
	for i := range r.events {
		if r.events[i].Turn > turnCount {
			turnCount = r.events[i].Turn
		}
	}
	combined := make([]string, 0, len(r.notes)+len(notes))
	combined = append(combined, r.notes...)
	combined = append(combined, notes...)
	return telemetry.Session{
		ID:            r.id,
		Enemy:         r.enemy,
		Floor:         r.floor,
		Victory:       victory,
		TurnCount:     turnCount,
		PlayerHPStart: r.playerHPStart,
		PlayerHPEnd:   playerHPEnd,
		Events:        r.events,
		Relics:        r.relics,
		RewardCards:   rewardCards,
		Notes:         combined,
		Timestamp:     telemetry.Now(),
	}
}
