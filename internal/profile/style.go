package profile

// Archetype labels produced by StyleVector.DominantArchetype.
const (
	ArchetypeAggressive = "aggressive"
	ArchetypeDefensive  = "defensive"
	ArchetypeControl    = "control"
	ArchetypeCombo      = "combo"
)

// StyleVector is a point-in-time summary of the play style detected for a
// profile. Instances are appended to the profile's bounded history.
type StyleVector struct {
	Aggression          float64  `json:"aggression"`
	Defense             float64  `json:"defense"`
	Control             float64  `json:"control"`
	Combo               float64  `json:"combo"`
	EnergyEfficiency    float64  `json:"energy_efficiency"`
	DrawBias            float64  `json:"draw_bias"`
	PreferredTurnWindow string   `json:"preferred_turn_window"`
	DominantCombo       []string `json:"dominant_combo"`
	Summary             string   `json:"summary"`
}

// DominantArchetype returns the label of the highest-scoring axis. Axes are
// evaluated in a fixed order (aggressive, defensive, control, combo) and the
// first strict maximum wins a tie.
func (v *StyleVector) DominantArchetype() string {
	labels := []string{ArchetypeAggressive, ArchetypeDefensive, ArchetypeControl, ArchetypeCombo}
	scores := []float64{v.Aggression, v.Defense, v.Control, v.Combo}
	best := 0
	for i := 1; i < len(scores); i++ {
		if scores[i] > scores[best] {
			best = i
		}
	}
	return labels[best]
}
