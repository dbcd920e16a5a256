package profile

import (
	"fmt"

	"github.com/spireforge/evolver/internal/telemetry"
)

// SchemaVersion is the current persisted document version. A loaded profile
// with a different version is normalized to this one and re-saved.
const SchemaVersion = 1

// Bounded history windows. Oldest entries are evicted first.
const (
	StyleHistoryLimit    = 20
	MutationHistoryLimit = 50
)

// Profile is the durable root aggregate: all usage statistics, the evolving
// deck and unlockable card maps, and bounded style/mutation histories.
type Profile struct {
	ModID             string                 `json:"mod_id"`
	SchemaVersion     int                    `json:"schema_version"`
	FightsRecorded    int                    `json:"fights_recorded"`
	Wins              int                    `json:"wins"`
	Losses            int                    `json:"losses"`
	CardStats         map[string]*UsageStats `json:"card_stats"`
	ComboStats        map[string]*ComboStats `json:"combo_stats"`
	Deck              map[string]*CardSpec   `json:"deck"`
	Unlockables       map[string]*CardSpec   `json:"unlockables"`
	StyleHistory      []StyleVector          `json:"style_history"`
	EnergySpentTotal  float64                `json:"energy_spent_total"`
	EnergyWastedTotal float64                `json:"energy_wasted_total"`
	DamageDealtTotal  float64                `json:"damage_dealt_total"`
	BlockGainedTotal  float64                `json:"block_gained_total"`
	StatusValueTotal  float64                `json:"status_value_total"`
	GeneratedCards    int                    `json:"generated_cards"`
	MutationHistory   []MutationPlan         `json:"mutation_history"`
}

// New returns an empty profile for the given mod identifier at the current
// schema version.
func New(modID string) *Profile {
	return &Profile{
		ModID:           modID,
		SchemaVersion:   SchemaVersion,
		CardStats:       map[string]*UsageStats{},
		ComboStats:      map[string]*ComboStats{},
		Deck:            map[string]*CardSpec{},
		Unlockables:     map[string]*CardSpec{},
		StyleHistory:    []StyleVector{},
		MutationHistory: []MutationPlan{},
	}
}

// CardUsage returns the usage stats for a card id, creating them on first
// use.
func (p *Profile) CardUsage(cardID string) *UsageStats {
	stats, ok := p.CardStats[cardID]
	if !ok {
		stats = NewUsageStats(cardID)
		p.CardStats[cardID] = stats
	}
	return stats
}

// ComboUsage returns the combo stats for an ordered key, creating them on
// first use.
func (p *Profile) ComboUsage(key []string) *ComboStats {
	joined := MapKey(key)
	stats, ok := p.ComboStats[joined]
	if !ok {
		stats = NewComboStats(key)
		p.ComboStats[joined] = stats
	}
	return stats
}

// RegisterCard inserts or replaces a card in the evolving deck map.
func (p *Profile) RegisterCard(spec *CardSpec) {
	p.Deck[spec.Identifier] = spec
}

// RegisterUnlockable inserts or replaces a card in the unlockables map.
func (p *Profile) RegisterUnlockable(spec *CardSpec) {
	p.Unlockables[spec.Identifier] = spec
}

// AccumulateSession folds session-level counters and running totals into
// the profile. Called before the style vector for the session is derived so
// the per-fight rates include the session being ingested.
func (p *Profile) AccumulateSession(session *telemetry.Session) {
	p.FightsRecorded++
	if session.Victory {
		p.Wins++
	} else {
		p.Losses++
	}
	for i := range session.Events {
		event := &session.Events[i]
		p.EnergySpentTotal += event.EnergySpent
		if event.EnergyRemaining > 0 {
			p.EnergyWastedTotal += event.EnergyRemaining
		}
		p.DamageDealtTotal += event.DamageDealt
		p.BlockGainedTotal += event.BlockGained
		for _, amount := range event.StatusEffects[telemetry.ScopeEnemy] {
			p.StatusValueTotal += amount
		}
	}
}

// AppendStyle pushes a derived style vector onto the bounded history,
// evicting the oldest entry past the limit.
func (p *Profile) AppendStyle(style StyleVector) {
	p.StyleHistory = append(p.StyleHistory, style)
	if len(p.StyleHistory) > StyleHistoryLimit {
		p.StyleHistory = p.StyleHistory[len(p.StyleHistory)-StyleHistoryLimit:]
	}
}

// AllocateCardID increments the generated-card counter and returns a new
// globally unique identifier. The counter never decreases.
func (p *Profile) AllocateCardID(prefix string) string {
	p.GeneratedCards++
	return fmt.Sprintf("%s_%s_%03d", p.ModID, prefix, p.GeneratedCards)
}

// RecordMutationPlan archives an applied plan into the bounded history.
func (p *Profile) RecordMutationPlan(plan MutationPlan) {
	p.MutationHistory = append(p.MutationHistory, plan)
	if len(p.MutationHistory) > MutationHistoryLimit {
		p.MutationHistory = p.MutationHistory[len(p.MutationHistory)-MutationHistoryLimit:]
	}
}

// LatestStyle returns the newest style vector in the history, or nil when no
// session has been recorded yet.
func (p *Profile) LatestStyle() *StyleVector {
	if len(p.StyleHistory) == 0 {
		return nil
	}
	return &p.StyleHistory[len(p.StyleHistory)-1]
}
