// Package telemetry defines the per-play combat records fed into the
// analytics pipeline and the effectiveness heuristic that scores them.
package telemetry

import (
	"strings"
	"time"
)

// Turn buckets classify the turn number of a play into a fixed range table.
// Any turn past the last upper bound falls into the final bucket.
var (
	TurnBucketRanges = [][2]int{{1, 2}, {3, 5}, {6, 9}, {10, 99}}
	TurnBucketNames  = []string{"early", "mid", "late", "endurance"}
)

// Status effect scopes accepted in PlayEvent.StatusEffects.
const (
	ScopeEnemy       = "enemy"
	ScopePlayer      = "player"
	ScopeEnvironment = "environment"
)

// StatusWeights maps a lower-cased status effect name to a signed weight
// used by the effectiveness heuristic.
type StatusWeights map[string]float64

// PlayEvent represents a single card play recorded during combat.
// Events are immutable once recorded.
type PlayEvent struct {
	CardID          string                        `json:"card_id"`
	Turn            int                           `json:"turn"`
	EnergyBefore    float64                       `json:"energy_before"`
	EnergySpent     float64                       `json:"energy_spent"`
	EnergyRemaining float64                       `json:"energy_remaining"`
	DamageDealt     float64                       `json:"damage_dealt"`
	BlockGained     float64                       `json:"block_gained"`
	PlayerHPChange  float64                       `json:"player_hp_change"`
	EnemyHPChange   float64                       `json:"enemy_hp_change"`
	StatusEffects   map[string]map[string]float64 `json:"status_effects,omitempty"`
	CardsDrawn      int                           `json:"cards_drawn"`
	CardsDiscarded  int                           `json:"cards_discarded"`
	Exhausted       bool                          `json:"exhausted"`
	Retained        bool                          `json:"retained"`
	EnergyGenerated float64                       `json:"energy_generated"`
	Tags            []string                      `json:"tags,omitempty"`
	Timestamp       float64                       `json:"timestamp"`
}

// NormalizeStatusEffects lower-cases scope and effect names so that lookups
// against a StatusWeights table behave consistently regardless of how the
// recorder capitalized them.
func NormalizeStatusEffects(effects map[string]map[string]float64) map[string]map[string]float64 {
	if len(effects) == 0 {
		return nil
	}
	normalized := make(map[string]map[string]float64, len(effects))
	for scope, byName := range effects {
		target := make(map[string]float64, len(byName))
		for name, amount := range byName {
			target[strings.ToLower(name)] = amount
		}
		normalized[strings.ToLower(scope)] = target
	}
	return normalized
}

// Effectiveness returns a heuristic score describing how successful the play
// was. Enemy-scoped effects score weight*amount, self-inflicted effects are
// always a penalty, and environment effects use a lower 0.5 default weight.
func (e *PlayEvent) Effectiveness(weights StatusWeights) float64 {
	statusScore := 0.0
	for status, amount := range e.StatusEffects[ScopeEnemy] {
		weight, ok := weights[strings.ToLower(status)]
		if !ok {
			weight = 1.0
		}
		statusScore += weight * amount
	}
	for status, amount := range e.StatusEffects[ScopePlayer] {
		weight, ok := weights[strings.ToLower(status)]
		if !ok {
			weight = 1.0
		}
		statusScore -= abs(weight) * abs(amount)
	}
	for status, amount := range e.StatusEffects[ScopeEnvironment] {
		weight, ok := weights[strings.ToLower(status)]
		if !ok {
			weight = 0.5
		}
		statusScore += weight * amount
	}

	damageScore := e.DamageDealt
	blockScore := e.BlockGained * 0.65
	cardFlow := float64(e.CardsDrawn-e.CardsDiscarded) * 0.4
	energyDelta := (e.EnergyGenerated - e.EnergySpent) * 0.35
	energyWastePenalty := max(e.EnergyRemaining, 0) * 0.15

	hpPenalty := 0.0
	if e.PlayerHPChange < 0 {
		hpPenalty += abs(e.PlayerHPChange) * 1.4
	}
	if e.EnemyHPChange > 0 {
		hpPenalty += abs(e.EnemyHPChange) * 0.6
	}

	comboBonus := 0.0
	if e.Retained {
		comboBonus = 0.35
	}
	exhaustBonus := 0.0
	if e.Exhausted {
		exhaustBonus = 0.55
	}

	return damageScore + blockScore + statusScore + cardFlow + energyDelta +
		comboBonus + exhaustBonus - energyWastePenalty - hpPenalty
}

// TurnBucket classifies the event's turn number into one of the fixed
// buckets, falling back to the final ("endurance") bucket for late turns.
func (e *PlayEvent) TurnBucket() string {
	return TurnBucketFor(e.Turn)
}

// TurnBucketFor returns the bucket name for a raw turn number.
func TurnBucketFor(turn int) string {
	for i, r := range TurnBucketRanges {
		if turn >= r[0] && turn <= r[1] {
			return TurnBucketNames[i]
		}
	}
	return TurnBucketNames[len(TurnBucketNames)-1]
}

// Now returns the current time as the float timestamp format used on events.
func Now() float64 {
	return float64(time.Now().UnixNano()) / float64(time.Second)
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
