package telemetry

import (
	"math"
	"testing"
)

func TestEffectiveness(t *testing.T) {
	tests := []struct {
		name    string
		event   PlayEvent
		weights StatusWeights
		want    float64
	}{
		{
			name:  "damage only",
			event: PlayEvent{DamageDealt: 10, EnergySpent: 1},
			want:  10 - 1*0.35,
		},
		{
			name:  "block and card flow",
			event: PlayEvent{BlockGained: 8, CardsDrawn: 2, CardsDiscarded: 1},
			want:  8*0.65 + 1*0.4,
		},
		{
			name: "enemy status uses default weight",
			event: PlayEvent{
				StatusEffects: map[string]map[string]float64{
					ScopeEnemy: {"shackled": 3},
				},
			},
			weights: StatusWeights{},
			want:    3,
		},
		{
			name: "enemy status uses table weight",
			event: PlayEvent{
				StatusEffects: map[string]map[string]float64{
					ScopeEnemy: {"vulnerable": 2},
				},
			},
			weights: StatusWeights{"vulnerable": 3.5},
			want:    7,
		},
		{
			name: "self inflicted status is always a penalty",
			event: PlayEvent{
				StatusEffects: map[string]map[string]float64{
					ScopePlayer: {"frail": 2},
				},
			},
			weights: StatusWeights{"frail": 2.2},
			want:    -4.4,
		},
		{
			name: "environment status uses half default weight",
			event: PlayEvent{
				StatusEffects: map[string]map[string]float64{
					ScopeEnvironment: {"darkness": 4},
				},
			},
			weights: StatusWeights{},
			want:    2,
		},
		{
			name:  "waste and hp penalties",
			event: PlayEvent{EnergyRemaining: 2, PlayerHPChange: -3, EnemyHPChange: 5},
			want:  -2*0.15 - 3*1.4 - 5*0.6,
		},
		{
			name:  "retain and exhaust bonuses",
			event: PlayEvent{Retained: true, Exhausted: true},
			want:  0.35 + 0.55,
		},
		{
			name:  "energy generation offsets spend",
			event: PlayEvent{EnergyGenerated: 2, EnergySpent: 1},
			want:  (2 - 1) * 0.35,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.event.Effectiveness(tt.weights)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Effectiveness() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTurnBucketFor(t *testing.T) {
	tests := []struct {
		turn int
		want string
	}{
		{1, "early"},
		{2, "early"},
		{3, "mid"},
		{5, "mid"},
		{6, "late"},
		{9, "late"},
		{10, "endurance"},
		{99, "endurance"},
		{150, "endurance"},
	}
	for _, tt := range tests {
		if got := TurnBucketFor(tt.turn); got != tt.want {
			t.Errorf("TurnBucketFor(%d) = %q, want %q", tt.turn, got, tt.want)
		}
	}
}

func TestNormalizeStatusEffects(t *testing.T) {
	got := NormalizeStatusEffects(map[string]map[string]float64{
		"Enemy": {"Vulnerable": 2, "WEAK": 1},
	})
	enemy, ok := got["enemy"]
	if !ok {
		t.Fatalf("scope not lower-cased: %v", got)
	}
	if enemy["vulnerable"] != 2 || enemy["weak"] != 1 {
		t.Errorf("effect names not lower-cased: %v", enemy)
	}

	if NormalizeStatusEffects(nil) != nil {
		t.Error("nil input should stay nil")
	}
	if NormalizeStatusEffects(map[string]map[string]float64{}) != nil {
		t.Error("empty input should normalize to nil")
	}
}

func TestSessionDamageTaken(t *testing.T) {
	s := &Session{PlayerHPStart: 80, PlayerHPEnd: 60}
	if got := s.DamageTaken(); got != 20 {
		t.Errorf("DamageTaken() = %v, want 20", got)
	}
	healed := &Session{PlayerHPStart: 50, PlayerHPEnd: 60}
	if got := healed.DamageTaken(); got != 0 {
		t.Errorf("DamageTaken() with net heal = %v, want 0", got)
	}
}
