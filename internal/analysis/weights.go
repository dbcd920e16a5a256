// Package analysis interprets combat telemetry, maintains the per-card and
// per-combination aggregates, and derives style vectors from them.
package analysis

import "github.com/spireforge/evolver/internal/telemetry"

// DefaultStatusWeights scores status effect applications by name. Positive
// weights reward applying the effect to enemies; negative weights mark
// effects that are valuable on the player, so stripping them from an enemy
// scores accordingly. Unlisted effects default to 1.0 on the enemy and
// player scopes and 0.5 on the environment scope.
var DefaultStatusWeights = telemetry.StatusWeights{
	"vulnerable":  3.5,
	"weak":        2.75,
	"frail":       2.2,
	"poison":      1.9,
	"burn":        1.4,
	"bleed":       2.1,
	"strength":    -3.0,
	"dexterity":   -2.8,
	"artifact":    -1.5,
	"focus":       -2.5,
	"draw":        1.25,
	"energy":      1.8,
	"retain":      0.9,
	"platedarmor": 1.7,
	"metallicize": 1.4,
	"clarity":     1.1,
	"slow":        1.6,
	"lockon":      1.8,
	"mark":        1.5,
}

// MergeWeights overlays overrides onto the default table without mutating
// it. A nil or empty override map returns the defaults as-is.
func MergeWeights(overrides telemetry.StatusWeights) telemetry.StatusWeights {
	if len(overrides) == 0 {
		return DefaultStatusWeights
	}
	merged := make(telemetry.StatusWeights, len(DefaultStatusWeights)+len(overrides))
	for name, weight := range DefaultStatusWeights {
		merged[name] = weight
	}
	for name, weight := range overrides {
		merged[name] = weight
	}
	return merged
}
