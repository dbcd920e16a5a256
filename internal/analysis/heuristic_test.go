package analysis

import (
	"math"
	"reflect"
	"testing"

	"github.com/spireforge/evolver/internal/profile"
	"github.com/spireforge/evolver/internal/telemetry"
)

// aggressiveSession is three straight damage plays with a small status rider:
// each event scores 14 under a bare weight table, the full three-card window
// scores 42, and the resulting aggression axis outscores every other.
func aggressiveSession() *telemetry.Session {
	event := func(id string, turn int) telemetry.PlayEvent {
		return telemetry.PlayEvent{
			CardID:      id,
			Turn:        turn,
			DamageDealt: 12,
			StatusEffects: map[string]map[string]float64{
				telemetry.ScopeEnemy: {"vulnerable": 2},
			},
		}
	}
	return &telemetry.Session{
		ID:      "fight-1",
		Victory: true,
		Events: []telemetry.PlayEvent{
			event("a", 1),
			event("b", 2),
			event("c", 3),
		},
	}
}

func TestIngestSessionDerivesAggressiveStyle(t *testing.T) {
	p := profile.New("testmod")
	h := NewHeuristic(p, telemetry.StatusWeights{})

	style := h.IngestSession(aggressiveSession())

	if math.Abs(style.Aggression-44.4) > 1e-9 {
		t.Errorf("Aggression = %v, want 44.4", style.Aggression)
	}
	if math.Abs(style.Combo-42) > 1e-9 {
		t.Errorf("Combo = %v, want 42", style.Combo)
	}
	if got := style.DominantArchetype(); got != profile.ArchetypeAggressive {
		t.Errorf("DominantArchetype() = %q, want aggressive", got)
	}
	if !reflect.DeepEqual(style.DominantCombo, []string{"a", "b", "c"}) {
		t.Errorf("DominantCombo = %v", style.DominantCombo)
	}
	if style.PreferredTurnWindow != "early" {
		t.Errorf("PreferredTurnWindow = %q, want early", style.PreferredTurnWindow)
	}
	if style.EnergyEfficiency != 1 {
		t.Errorf("EnergyEfficiency = %v, want 1", style.EnergyEfficiency)
	}

	// Aggregation happens before style derivation, so the session's own
	// totals are included in the per-fight rates.
	if p.FightsRecorded != 1 || p.DamageDealtTotal != 36 {
		t.Errorf("profile totals = %d fights, %v damage", p.FightsRecorded, p.DamageDealtTotal)
	}
	if len(p.StyleHistory) != 1 {
		t.Errorf("StyleHistory length = %d, want 1", len(p.StyleHistory))
	}
	if h.StyleVector() == nil {
		t.Error("StyleVector() should return the derived vector")
	}
}

func TestIngestSessionRecordsOverlappingWindows(t *testing.T) {
	p := profile.New("testmod")
	h := NewHeuristic(p, telemetry.StatusWeights{})
	h.IngestSession(aggressiveSession())

	wantKeys := []string{"a::b", "b::c", "a::b::c"}
	if len(p.ComboStats) != len(wantKeys) {
		t.Fatalf("combo count = %d, want %d: %v", len(p.ComboStats), len(wantKeys), p.ComboStats)
	}
	for _, key := range wantKeys {
		stats, ok := p.ComboStats[key]
		if !ok {
			t.Fatalf("missing combo %q", key)
		}
		if stats.Plays != 1 {
			t.Errorf("combo %q plays = %d, want 1", key, stats.Plays)
		}
	}
	if math.Abs(p.ComboStats["a::b::c"].AverageScore()-42) > 1e-9 {
		t.Errorf("full window score = %v, want 42", p.ComboStats["a::b::c"].AverageScore())
	}

	// Followers and predecessors come from the adjacent plays.
	if p.CardStats["b"].ComboFollowers["c"] != 1 || p.CardStats["b"].ComboPredecessors["a"] != 1 {
		t.Errorf("adjacency = %v / %v",
			p.CardStats["b"].ComboFollowers, p.CardStats["b"].ComboPredecessors)
	}
}

func TestIngestSessionTooShortForCombos(t *testing.T) {
	p := profile.New("testmod")
	h := NewHeuristic(p, telemetry.StatusWeights{})
	h.IngestSession(&telemetry.Session{
		Events: []telemetry.PlayEvent{{CardID: "solo", Turn: 1, DamageDealt: 5}},
	})
	if len(p.ComboStats) != 0 {
		t.Errorf("single-event session recorded combos: %v", p.ComboStats)
	}
}

func TestScoreCardSynergyBonus(t *testing.T) {
	p := profile.New("testmod")
	h := NewHeuristic(p, telemetry.StatusWeights{})

	p.CardUsage("a").RecordEvent(&telemetry.PlayEvent{CardID: "a", Turn: 1}, 2, true, "b", "")
	p.CardUsage("b").RecordEvent(&telemetry.PlayEvent{CardID: "b", Turn: 1}, 10, true, "", "a")

	// 2 + 10 * (1/1) * 0.2
	if got := h.ScoreCard("a"); math.Abs(got-4) > 1e-9 {
		t.Errorf("ScoreCard(a) = %v, want 4", got)
	}
	if got := h.ScoreCard("b"); math.Abs(got-10) > 1e-9 {
		t.Errorf("ScoreCard(b) = %v, want 10", got)
	}
	if got := h.ScoreCard("missing"); got != 0 {
		t.Errorf("ScoreCard(missing) = %v, want 0", got)
	}
}

func TestRankCardsDeterministicOrder(t *testing.T) {
	p := profile.New("testmod")
	h := NewHeuristic(p, telemetry.StatusWeights{})

	p.CardUsage("zeta").RecordEvent(&telemetry.PlayEvent{CardID: "zeta", Turn: 1}, 5, true, "", "")
	p.CardUsage("alpha").RecordEvent(&telemetry.PlayEvent{CardID: "alpha", Turn: 1}, 5, true, "", "")
	p.CardUsage("mid").RecordEvent(&telemetry.PlayEvent{CardID: "mid", Turn: 1}, 7, true, "", "")

	ranked := h.RankCards(10)
	got := make([]string, len(ranked))
	for i, r := range ranked {
		got[i] = r.CardID
	}
	if !reflect.DeepEqual(got, []string{"mid", "alpha", "zeta"}) {
		t.Errorf("rank order = %v", got)
	}

	if limited := h.RankCards(2); len(limited) != 2 {
		t.Errorf("limit ignored, got %d entries", len(limited))
	}
}

func TestTopCombosMinPlaysFilter(t *testing.T) {
	p := profile.New("testmod")
	h := NewHeuristic(p, telemetry.StatusWeights{})

	frequent := p.ComboUsage([]string{"a", "b"})
	frequent.Plays = 3
	frequent.TotalScore = 15
	rare := p.ComboUsage([]string{"c", "d"})
	rare.Plays = 1
	rare.TotalScore = 100

	combos := h.TopCombos(5, 2)
	if len(combos) != 1 {
		t.Fatalf("combo count = %d, want 1", len(combos))
	}
	if !reflect.DeepEqual(combos[0].Key, []string{"a", "b"}) {
		t.Errorf("combo key = %v", combos[0].Key)
	}
	if combos[0].Score != 5 {
		t.Errorf("combo score = %v, want 5", combos[0].Score)
	}
}

func TestDrawBiasInfluencesDefense(t *testing.T) {
	p := profile.New("testmod")
	h := NewHeuristic(p, telemetry.StatusWeights{})
	h.IngestSession(&telemetry.Session{
		Victory: true,
		Events: []telemetry.PlayEvent{
			{CardID: "cycle", Turn: 1, CardsDrawn: 2, BlockGained: 4},
			{CardID: "cycle", Turn: 2, CardsDrawn: 2, BlockGained: 4},
		},
	})
	style := *p.LatestStyle()
	if style.DrawBias != 2 {
		t.Errorf("DrawBias = %v, want 2", style.DrawBias)
	}
	// defense = blockRate + drawBias*0.15 = 8 + 0.3
	if math.Abs(style.Defense-8.3) > 1e-9 {
		t.Errorf("Defense = %v, want 8.3", style.Defense)
	}
}

func TestMergeWeights(t *testing.T) {
	merged := MergeWeights(telemetry.StatusWeights{"vulnerable": 9, "custom": 1.5})
	if merged["vulnerable"] != 9 {
		t.Errorf("override lost: %v", merged["vulnerable"])
	}
	if merged["weak"] != DefaultStatusWeights["weak"] {
		t.Errorf("default lost: %v", merged["weak"])
	}
	if merged["custom"] != 1.5 {
		t.Errorf("new entry lost: %v", merged["custom"])
	}
	if DefaultStatusWeights["vulnerable"] != 3.5 {
		t.Error("MergeWeights mutated the default table")
	}
	if got := MergeWeights(nil); !reflect.DeepEqual(got, DefaultStatusWeights) {
		t.Error("nil overrides should return the defaults")
	}
}
