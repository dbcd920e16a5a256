package analysis

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spireforge/evolver/internal/profile"
	"github.com/spireforge/evolver/internal/telemetry"
)

// RankedCard pairs a card id with its synergy-adjusted score.
type RankedCard struct {
	CardID string
	Score  float64
	Stats  *profile.UsageStats
}

// RankedCombo pairs an ordered combo key with its average score.
type RankedCombo struct {
	Key   []string
	Score float64
	Stats *profile.ComboStats
}

// Heuristic interprets combat sessions and produces fighting style
// analytics over a profile's aggregates.
type Heuristic struct {
	profile *profile.Profile
	weights telemetry.StatusWeights
	latest  *profile.StyleVector
}

// NewHeuristic creates a heuristic bound to a profile. A nil weights map
// uses the default status weight table.
func NewHeuristic(p *profile.Profile, weights telemetry.StatusWeights) *Heuristic {
	if weights == nil {
		weights = DefaultStatusWeights
	}
	h := &Heuristic{profile: p, weights: weights}
	h.latest = p.LatestStyle()
	return h
}

// StyleVector returns the most recently computed style vector, or nil when
// no session has been ingested yet.
func (h *Heuristic) StyleVector() *profile.StyleVector {
	return h.latest
}

// IngestSession folds a completed session into the profile aggregates and
// returns the freshly derived style vector. Aggregation is a genuine
// two-pass algorithm: a per-event pass first, then a windowed combo scan
// over the same finalized sequence.
func (h *Heuristic) IngestSession(session *telemetry.Session) profile.StyleVector {
	events := session.Events
	for i := range events {
		event := &events[i]
		follower := ""
		if i+1 < len(events) {
			follower = events[i+1].CardID
		}
		predecessor := ""
		if i > 0 {
			predecessor = events[i-1].CardID
		}
		score := event.Effectiveness(h.weights)
		h.profile.CardUsage(event.CardID).RecordEvent(event, score, session.Victory, follower, predecessor)
	}
	h.recordCombos(events, session.Victory)
	h.profile.AccumulateSession(session)
	style := h.computeStyleVector()
	h.profile.AppendStyle(style)
	h.latest = h.profile.LatestStyle()
	return style
}

// ScoreCard returns a card's average score plus a synergy bonus derived
// from the cards that tend to follow it.
func (h *Heuristic) ScoreCard(cardID string) float64 {
	stats, ok := h.profile.CardStats[cardID]
	if !ok || stats.Plays == 0 {
		return 0
	}
	score := stats.AverageScore()
	for follower, count := range stats.ComboFollowers {
		followerStats, ok := h.profile.CardStats[follower]
		if !ok || followerStats.Plays == 0 {
			continue
		}
		plays := stats.Plays
		if plays < 1 {
			plays = 1
		}
		score += followerStats.AverageScore() * (float64(count) / float64(plays)) * 0.2
	}
	return score
}

// RankCards returns up to limit cards ordered by descending synergy score.
// Ties order by card id so results are stable across runs.
func (h *Heuristic) RankCards(limit int) []RankedCard {
	ranked := make([]RankedCard, 0, len(h.profile.CardStats))
	for cardID, stats := range h.profile.CardStats {
		ranked = append(ranked, RankedCard{CardID: cardID, Score: h.ScoreCard(cardID), Stats: stats})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].CardID < ranked[j].CardID
	})
	if limit < len(ranked) {
		ranked = ranked[:limit]
	}
	return ranked
}

// TopCombos returns up to limit combos with at least minPlays recorded
// occurrences, ordered by descending average score with a stable key
// tie-break.
func (h *Heuristic) TopCombos(limit, minPlays int) []RankedCombo {
	combos := make([]RankedCombo, 0, len(h.profile.ComboStats))
	for _, stats := range h.profile.ComboStats {
		if stats.Plays < minPlays {
			continue
		}
		combos = append(combos, RankedCombo{Key: stats.Key, Score: stats.AverageScore(), Stats: stats})
	}
	sort.Slice(combos, func(i, j int) bool {
		if combos[i].Score != combos[j].Score {
			return combos[i].Score > combos[j].Score
		}
		return profile.MapKey(combos[i].Key) < profile.MapKey(combos[j].Key)
	})
	if limit < len(combos) {
		combos = combos[:limit]
	}
	return combos
}

// recordCombos slides overlapping windows of length 2 and 3 across the
// finalized event sequence. Windows are never deduplicated; order matters.
func (h *Heuristic) recordCombos(events []telemetry.PlayEvent, victory bool) {
	if len(events) < 2 {
		return
	}
	for _, length := range []int{2, 3} {
		if len(events) < length {
			continue
		}
		for start := 0; start+length <= len(events); start++ {
			window := events[start : start+length]
			key := make([]string, length)
			for i := range window {
				key[i] = window[i].CardID
			}
			h.profile.ComboUsage(key).Record(window, victory, h.weights)
		}
	}
}

func (h *Heuristic) computeStyleVector() profile.StyleVector {
	fights := float64(h.profile.FightsRecorded)
	if fights < 1 {
		fights = 1
	}
	damageRate := h.profile.DamageDealtTotal / fights
	blockRate := h.profile.BlockGainedTotal / fights
	controlRate := h.profile.StatusValueTotal / fights

	energySpent := h.profile.EnergySpentTotal
	if energySpent < 1 {
		energySpent = 1
	}
	energyEfficiency := 1 - (h.profile.EnergyWastedTotal / energySpent)
	if energyEfficiency > 1 {
		energyEfficiency = 1
	} else if energyEfficiency < -1 {
		energyEfficiency = -1
	}

	var dominantCombo []string
	comboScore := 0.0
	if best := h.bestCombo(); best != nil {
		dominantCombo = best.Key
		comboScore = best.AverageScore()
	}

	drawBias := h.drawBias()
	turnWindow := h.preferredTurnWindow()

	aggression := damageRate + comboScore*0.2
	defense := blockRate + drawBias*0.15
	control := controlRate + comboScore*0.1
	combo := comboScore + drawBias*0.05

	summary := strings.Join([]string{
		fmt.Sprintf("Aggression %.2f", aggression),
		fmt.Sprintf("Defense %.2f", defense),
		fmt.Sprintf("Control %.2f", control),
		fmt.Sprintf("Combo %.2f", combo),
		fmt.Sprintf("Energy %.2f", energyEfficiency),
		fmt.Sprintf("Draw %.2f", drawBias),
		fmt.Sprintf("Turns %s", turnWindow),
	}, " | ")

	return profile.StyleVector{
		Aggression:          aggression,
		Defense:             defense,
		Control:             control,
		Combo:               combo,
		EnergyEfficiency:    energyEfficiency,
		DrawBias:            drawBias,
		PreferredTurnWindow: turnWindow,
		DominantCombo:       dominantCombo,
		Summary:             summary,
	}
}

// bestCombo selects the single best-scoring combo with at least one play,
// tie-broken by average score, then play count, then key.
func (h *Heuristic) bestCombo() *profile.ComboStats {
	var best *profile.ComboStats
	for _, stats := range h.profile.ComboStats {
		if stats.Plays == 0 {
			continue
		}
		if best == nil {
			best = stats
			continue
		}
		a, b := stats.AverageScore(), best.AverageScore()
		switch {
		case a > b:
			best = stats
		case a == b && stats.Plays > best.Plays:
			best = stats
		case a == b && stats.Plays == best.Plays &&
			profile.MapKey(stats.Key) < profile.MapKey(best.Key):
			best = stats
		}
	}
	return best
}

func (h *Heuristic) drawBias() float64 {
	draws, plays := 0, 0
	for _, stats := range h.profile.CardStats {
		draws += stats.DrawTriggers
		plays += stats.Plays
	}
	if plays == 0 {
		return 0
	}
	return float64(draws) / float64(plays)
}

// preferredTurnWindow returns the most frequent turn bucket across all
// cards, tie-broken in fixed bucket order, or "unknown" with no data.
func (h *Heuristic) preferredTurnWindow() string {
	counts := map[string]int{}
	total := 0
	for _, stats := range h.profile.CardStats {
		for bucket, count := range stats.TurnBuckets {
			counts[bucket] += count
			total += count
		}
	}
	if total == 0 {
		return "unknown"
	}
	best := ""
	bestCount := -1
	for _, bucket := range telemetry.TurnBucketNames {
		if counts[bucket] > bestCount {
			best = bucket
			bestCount = counts[bucket]
		}
	}
	return best
}
