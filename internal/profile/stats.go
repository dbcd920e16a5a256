// Package profile holds the durable analytics aggregates: per-card and
// per-combination usage statistics, derived style vectors, card
// specifications, and the root Profile document they live in.
package profile

import (
	"strings"

	"github.com/spireforge/evolver/internal/telemetry"
)

// ComboKeySeparator joins the ordered card ids of a combo into the map key
// used by Profile.ComboStats. Order matters: (A,B) and (B,A) are distinct.
const ComboKeySeparator = "::"

// UsageStats aggregates lifetime metrics for a single card id.
type UsageStats struct {
	CardID              string         `json:"card_id"`
	Plays               int            `json:"plays"`
	Victories           int            `json:"victories"`
	Defeats             int            `json:"defeats"`
	TotalScore          float64        `json:"total_score"`
	PositiveScore       float64        `json:"positive_score"`
	NegativeScore       float64        `json:"negative_score"`
	DamageTotal         float64        `json:"damage_total"`
	BlockTotal          float64        `json:"block_total"`
	StatusTotal         float64        `json:"status_total"`
	EnergySpent         float64        `json:"energy_spent"`
	EnergyGenerated     float64        `json:"energy_generated"`
	EnergyWasted        float64        `json:"energy_wasted"`
	AverageEnergyBefore float64        `json:"average_energy_before"`
	TurnBuckets         map[string]int `json:"turn_buckets"`
	ComboFollowers      map[string]int `json:"combo_followers"`
	ComboPredecessors   map[string]int `json:"combo_predecessors"`
	DrawTriggers        int            `json:"draw_triggers"`
	ExhaustTriggers     int            `json:"exhaust_triggers"`
	RetentionTriggers   int            `json:"retention_triggers"`
	LastPlayed          float64        `json:"last_played"`
}

// NewUsageStats returns zeroed stats for a card id with every turn bucket
// present so histograms serialize completely.
func NewUsageStats(cardID string) *UsageStats {
	buckets := make(map[string]int, len(telemetry.TurnBucketNames))
	for _, name := range telemetry.TurnBucketNames {
		buckets[name] = 0
	}
	return &UsageStats{
		CardID:            cardID,
		TurnBuckets:       buckets,
		ComboFollowers:    map[string]int{},
		ComboPredecessors: map[string]int{},
	}
}

// RecordEvent folds one scored play into the aggregate. The follower and
// predecessor are the card ids played immediately after and before this one
// in the session sequence; empty strings mean none.
func (s *UsageStats) RecordEvent(event *telemetry.PlayEvent, score float64, victory bool, follower, predecessor string) {
	s.Plays++
	s.TotalScore += score
	if score >= 0 {
		s.PositiveScore += score
	} else {
		s.NegativeScore += score
	}
	if victory {
		s.Victories++
	} else {
		s.Defeats++
	}
	s.DamageTotal += event.DamageDealt
	s.BlockTotal += event.BlockGained
	for _, amount := range event.StatusEffects[telemetry.ScopeEnemy] {
		s.StatusTotal += amount
	}
	for _, amount := range event.StatusEffects[telemetry.ScopePlayer] {
		if amount < 0 {
			amount = -amount
		}
		s.StatusTotal -= amount
	}
	s.EnergySpent += event.EnergySpent
	s.EnergyGenerated += event.EnergyGenerated
	if event.EnergyRemaining > 0 {
		s.EnergyWasted += event.EnergyRemaining
	}
	s.AverageEnergyBefore += event.EnergyBefore
	s.TurnBuckets[event.TurnBucket()]++
	if event.CardsDrawn > 0 {
		s.DrawTriggers += event.CardsDrawn
	}
	if event.Exhausted {
		s.ExhaustTriggers++
	}
	if event.Retained {
		s.RetentionTriggers++
	}
	if event.Timestamp > s.LastPlayed {
		s.LastPlayed = event.Timestamp
	}
	if follower != "" {
		s.ComboFollowers[follower]++
	}
	if predecessor != "" {
		s.ComboPredecessors[predecessor]++
	}
}

// AverageScore returns the mean effectiveness score per play, 0 when the
// card has never been played.
func (s *UsageStats) AverageScore() float64 {
	if s.Plays == 0 {
		return 0
	}
	return s.TotalScore / float64(s.Plays)
}

// EnergyEfficiency relates energy put to use against energy left on the
// table. The result is clamped to [-2, 2].
func (s *UsageStats) EnergyEfficiency() float64 {
	spent := s.EnergySpent
	if spent == 0 {
		spent = 1
	}
	efficiency := (s.EnergyGenerated + (s.EnergySpent - s.EnergyWasted)) / spent
	return clamp(efficiency, -2, 2)
}

// PreferredTurnBucket returns the most frequent turn bucket for this card,
// or "unknown" when it has never been played. Ties resolve in bucket order
// (early, mid, late, endurance).
func (s *UsageStats) PreferredTurnBucket() string {
	if s.Plays == 0 {
		return "unknown"
	}
	best := ""
	bestCount := -1
	for _, name := range telemetry.TurnBucketNames {
		if count := s.TurnBuckets[name]; count > bestCount {
			best = name
			bestCount = count
		}
	}
	return best
}

// ComboStats aggregates lifetime metrics for one ordered combination of
// 2 or 3 card ids.
type ComboStats struct {
	Key         []string `json:"key"`
	Plays       int      `json:"plays"`
	Victories   int      `json:"victories"`
	Defeats     int      `json:"defeats"`
	TotalScore  float64  `json:"total_score"`
	DamageTotal float64  `json:"damage_total"`
	BlockTotal  float64  `json:"block_total"`
	EnergyTotal float64  `json:"energy_total"`
	AverageTurn float64  `json:"average_turn"`
}

// NewComboStats returns zeroed stats for an ordered key.
func NewComboStats(key []string) *ComboStats {
	copied := make([]string, len(key))
	copy(copied, key)
	return &ComboStats{Key: copied}
}

// MapKey returns the joined form of an ordered combo key.
func MapKey(key []string) string {
	return strings.Join(key, ComboKeySeparator)
}

// Record folds one occurrence of the combo window into the aggregate. The
// events are the window members in play order; the average turn is a
// weighted mean across all recorded occurrences.
func (c *ComboStats) Record(events []telemetry.PlayEvent, victory bool, weights telemetry.StatusWeights) {
	if len(events) == 0 {
		return
	}
	c.Plays++
	if victory {
		c.Victories++
	} else {
		c.Defeats++
	}
	turnSum := 0.0
	for i := range events {
		c.TotalScore += events[i].Effectiveness(weights)
		c.DamageTotal += events[i].DamageDealt
		c.BlockTotal += events[i].BlockGained
		c.EnergyTotal += events[i].EnergySpent
		turnSum += float64(events[i].Turn)
	}
	turnAverage := turnSum / float64(len(events))
	c.AverageTurn = ((c.AverageTurn * float64(c.Plays-1)) + turnAverage) / float64(c.Plays)
}

// AverageScore returns the mean summed window score per occurrence, 0 when
// the combo has never been recorded.
func (c *ComboStats) AverageScore() float64 {
	if c.Plays == 0 {
		return 0
	}
	return c.TotalScore / float64(c.Plays)
}

// EnergyCost returns the average energy spent per occurrence.
func (c *ComboStats) EnergyCost() float64 {
	if c.Plays == 0 {
		return 0
	}
	return c.EnergyTotal / float64(c.Plays)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
