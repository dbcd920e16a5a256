// Package evolution turns heuristic signals into deck mutation plans:
// corrective edits for underperforming cards, rewards for standouts, and
// brand-new cards synthesized from successful combinations.
package evolution

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/spireforge/evolver/internal/analysis"
	"github.com/spireforge/evolver/internal/profile"
	"github.com/spireforge/evolver/internal/telemetry"
)

// Planner thresholds. The values are load-bearing: they reproduce the
// behavior the aggregates were tuned against.
const (
	minPlaysForMutation   = 3
	underperformThreshold = -0.45
	energyPressureLimit   = 0.3
	masteryScoreFloor     = 1.0
	comboMinPlays         = 3
	comboCandidateLimit   = 4
	generationLimit       = 3
	deckWorthyScore       = 4.5
)

// Engine generates and applies deck evolution plans from combat heuristics.
type Engine struct {
	profile   *profile.Profile
	heuristic *analysis.Heuristic
}

// NewEngine creates an engine over a profile and its heuristic.
func NewEngine(p *profile.Profile, h *analysis.Heuristic) *Engine {
	return &Engine{profile: p, heuristic: h}
}

// PlanEvolution computes a mutation plan for the given style vector. A nil
// style falls back to the heuristic's latest vector, and with no data at all
// a neutral vector is used; the resulting plan may be empty.
func (e *Engine) PlanEvolution(style *profile.StyleVector) profile.MutationPlan {
	if style == nil {
		style = e.heuristic.StyleVector()
	}
	if style == nil {
		style = &profile.StyleVector{
			PreferredTurnWindow: "unknown",
			Summary:             "No data yet",
		}
	}
	mutations := e.identifyCardMutations(style)
	newCards, unlockables := e.generateNewCards(style)
	notes := []string{
		fmt.Sprintf("Dominant archetype: %s", style.DominantArchetype()),
		fmt.Sprintf("Energy efficiency: %.2f", style.EnergyEfficiency),
		fmt.Sprintf("Combo focus: %.2f", style.Combo),
	}
	return profile.MutationPlan{
		Mutations:   mutations,
		NewCards:    newCards,
		Unlockables: unlockables,
		StyleVector: style,
		Notes:       notes,
		Timestamp:   telemetry.Now(),
	}
}

// Apply folds a non-empty plan back into the profile: mutations patch their
// target cards (missing targets are skipped), generated cards register into
// the deck and unlockable maps, and the plan is archived into the bounded
// history. Empty plans are ignored entirely.
func (e *Engine) Apply(plan profile.MutationPlan) {
	if plan.IsEmpty() {
		return
	}
	for i := range plan.Mutations {
		mutation := &plan.Mutations[i]
		card, ok := e.profile.Deck[mutation.CardID]
		if !ok {
			continue
		}
		card.Apply(mutation)
	}
	for i := range plan.NewCards {
		spec := plan.NewCards[i]
		e.profile.RegisterCard(&spec)
	}
	for i := range plan.Unlockables {
		spec := plan.Unlockables[i]
		e.profile.RegisterUnlockable(&spec)
	}
	e.profile.RecordMutationPlan(plan)
}

// ApplyToCatalog mirrors a plan's field changes onto the live card catalog.
// Unknown card ids are skipped; unlockables are intentionally not inserted,
// they stay in the profile for a separate unlock-delivery mechanism.
func (e *Engine) ApplyToCatalog(catalog Catalog, plan *profile.MutationPlan) error {
	if catalog == nil || plan.IsEmpty() {
		return nil
	}
	for i := range plan.Mutations {
		mutation := &plan.Mutations[i]
		if _, err := catalog.ApplyEdit(mutation.CardID, EditFromMutation(mutation)); err != nil {
			return fmt.Errorf("apply edit to %s: %w", mutation.CardID, err)
		}
	}
	for i := range plan.NewCards {
		if err := catalog.AddCard(plan.NewCards[i]); err != nil {
			return fmt.Errorf("add card %s: %w", plan.NewCards[i].Identifier, err)
		}
	}
	return nil
}

// identifyCardMutations runs the correction-and-reward phase: boost
// underperforming cards along the dominant archetype, relieve energy
// pressure with cost cuts, then reward standout cards with extra upgrade
// value.
func (e *Engine) identifyCardMutations(style *profile.StyleVector) []profile.Mutation {
	archetype := style.DominantArchetype()
	energyPressure := style.EnergyEfficiency < energyPressureLimit

	candidates := make([]*profile.UsageStats, 0, len(e.profile.CardStats))
	for _, stats := range e.profile.CardStats {
		if stats.Plays >= minPlaysForMutation {
			candidates = append(candidates, stats)
		}
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Plays != candidates[j].Plays {
			return candidates[i].Plays > candidates[j].Plays
		}
		return candidates[i].CardID < candidates[j].CardID
	})

	var mutations []profile.Mutation
	mutated := map[string]bool{}
	for _, stats := range candidates {
		card, ok := e.profile.Deck[stats.CardID]
		if !ok {
			continue
		}
		avg := stats.AverageScore()
		var notes []string
		mutation := profile.Mutation{
			CardID: card.Identifier,
			Role:   archetype,
			Metadata: map[string]any{
				"average_score": avg,
				"plays":         stats.Plays,
				"reason":        "underperforming_card",
			},
		}
		if avg < underperformThreshold {
			switch archetype {
			case profile.ArchetypeAggressive:
				delta := maxInt(2, int(math.Abs(avg)*1.8))
				mutation.NewValue = intPtr(card.Value + delta)
				mutation.NewUpgradeValue = intPtr(card.UpgradeValue + maxInt(1, delta/2))
				notes = append(notes, fmt.Sprintf("Aggressive boost: +%d base damage", delta))
			case profile.ArchetypeDefensive:
				delta := maxInt(3, int(math.Abs(avg)*2.5))
				base := card.Value
				if card.SecondaryValue != nil && *card.SecondaryValue != 0 {
					base = *card.SecondaryValue
				}
				mutation.NewSecondaryValue = intPtr(base + delta)
				mutation.NewSecondaryUpgrade = intPtr(card.SecondaryUpgrade + maxInt(1, delta/2))
				notes = append(notes, fmt.Sprintf("Defensive reinforcement: +%d block/secondary value", delta))
			case profile.ArchetypeControl:
				mutation.KeywordAdjustments = []profile.KeywordAdjustment{
					{Keyword: "weak", Amount: intPtr(1), Upgrade: intPtr(1)},
				}
				mutation.NewUpgradeValue = intPtr(card.UpgradeValue + 1)
				notes = append(notes, "Control focus: added Weak keyword")
			default:
				delta := maxInt(2, int(math.Abs(avg)*1.5))
				mutation.NewValue = intPtr(card.Value + delta)
				mutation.NewUpgradeValue = intPtr(card.UpgradeValue + maxInt(1, delta/2))
				notes = append(notes, fmt.Sprintf("General boost: +%d value", delta))
			}
		}
		if energyPressure && card.Cost > 1 {
			mutation.NewCost = intPtr(maxInt(card.Cost-1, 0))
			notes = append(notes, "Reduced cost to relieve energy pressure")
		}
		if len(notes) == 0 {
			continue
		}
		mutation.Notes = notes
		mutations = append(mutations, mutation)
		mutated[card.Identifier] = true
	}

	// Reward standout cards that the correction pass left untouched.
	for _, ranked := range e.heuristic.RankCards(5) {
		if ranked.Score <= masteryScoreFloor || mutated[ranked.CardID] {
			continue
		}
		card, ok := e.profile.Deck[ranked.CardID]
		if !ok {
			continue
		}
		boost := maxInt(1, int(ranked.Score/1.5))
		mutations = append(mutations, profile.Mutation{
			CardID:          ranked.CardID,
			NewUpgradeValue: intPtr(card.UpgradeValue + boost),
			Role:            archetype,
			Notes:           []string{fmt.Sprintf("Rewarding mastery: +%d upgrade value", boost)},
			Metadata: map[string]any{
				"reason": "top_performer",
				"score":  ranked.Score,
			},
		})
	}
	return mutations
}

// generateNewCards runs the generation phase over the best combos. A combo
// whose provenance token already exists on a deck or unlockable card is
// skipped, which keeps generation idempotent.
func (e *Engine) generateNewCards(style *profile.StyleVector) ([]profile.CardSpec, []profile.CardSpec) {
	combos := e.heuristic.TopCombos(comboCandidateLimit, comboMinPlays)
	if len(combos) == 0 {
		return nil, nil
	}
	archetype := style.DominantArchetype()

	existing := map[string]bool{}
	for _, card := range e.profile.Deck {
		if card.GeneratedBy != "" {
			existing[card.GeneratedBy] = true
		}
	}
	for _, card := range e.profile.Unlockables {
		if card.GeneratedBy != "" {
			existing[card.GeneratedBy] = true
		}
	}

	var deckCards, unlockables []profile.CardSpec
	for _, combo := range combos {
		token := ProvenanceToken(combo.Key)
		if existing[token] {
			continue
		}
		stats, ok := e.profile.ComboStats[profile.MapKey(combo.Key)]
		if !ok {
			continue
		}
		card := e.buildCardFromCombo(combo.Key, stats, archetype, token)
		if combo.Score > deckWorthyScore {
			deckCards = append(deckCards, card)
		} else {
			unlockables = append(unlockables, card)
		}
		existing[token] = true
		if len(deckCards)+len(unlockables) >= generationLimit {
			break
		}
	}
	return deckCards, unlockables
}

// ProvenanceToken derives the deterministic duplicate-prevention token for
// an ordered combo key.
func ProvenanceToken(key []string) string {
	return "combo:" + strings.Join(key, "->")
}

func (e *Engine) buildCardFromCombo(combo []string, stats *profile.ComboStats, archetype, token string) profile.CardSpec {
	plays := stats.Plays
	if plays < 1 {
		plays = 1
	}
	energyCost := int(math.Round(stats.EnergyCost()))
	if energyCost < 0 {
		energyCost = 0
	}
	damage := int(stats.DamageTotal / float64(plays))
	if damage < 0 {
		damage = 0
	}
	block := int(stats.BlockTotal / float64(plays))
	if block < 0 {
		block = 0
	}
	if damage == 0 && block == 0 {
		damage = 6
	}
	if archetype == profile.ArchetypeDefensive && block < damage {
		block = maxInt(block, damage/2)
	}
	if archetype == profile.ArchetypeControl && damage < 4 {
		damage = 4
	}

	rarity := profile.RarityUncommon
	if stats.AverageScore() > 7 {
		rarity = profile.RarityRare
	} else if stats.AverageScore() < 3 {
		rarity = profile.RarityCommon
	}

	var keywords []string
	keywordValues := map[string]int{}
	keywordUpgrades := map[string]int{}
	if archetype == profile.ArchetypeControl {
		keywords = append(keywords, "weak")
		keywordValues["weak"] = 1
		keywordUpgrades["weak"] = 1
	}
	if archetype == profile.ArchetypeDefensive && block > 0 {
		keywords = append(keywords, "retain")
	}

	cardType := profile.CardTypeSkill
	target := profile.TargetSelf
	var effect *string
	var secondaryValue *int
	secondaryUpgrade := 0
	if damage >= block {
		cardType = profile.CardTypeAttack
		target = profile.TargetEnemy
	} else {
		blockEffect := "block"
		effect = &blockEffect
		if block != 0 {
			secondaryValue = intPtr(block)
			secondaryUpgrade = maxInt(1, block/3)
		}
	}

	upgradeDescription := fmt.Sprintf("Improved synergy from %s", strings.Join(combo, " and "))
	return profile.CardSpec{
		Identifier:         e.profile.AllocateCardID("combo"),
		Title:              fmt.Sprintf("%s Synergy", titleCase(combo[0])),
		Description:        composeDescription(archetype, damage, block, stats, combo),
		UpgradeDescription: &upgradeDescription,
		CardType:           cardType,
		Target:             target,
		Rarity:             rarity,
		Cost:               energyCost,
		Value:              maxInt(damage, 4),
		UpgradeValue:       maxInt(maxInt(1, damage/3), 2),
		Effect:             effect,
		SecondaryValue:     secondaryValue,
		SecondaryUpgrade:   secondaryUpgrade,
		Keywords:           keywords,
		KeywordValues:      keywordValues,
		KeywordUpgrades:    keywordUpgrades,
		AttackEffect:       "SLASH_DIAGONAL",
		Role:               archetype,
		GeneratedBy:        token,
		Notes:              []string{fmt.Sprintf("Generated from combo %s", strings.Join(combo, " -> "))},
	}
}

func composeDescription(archetype string, damage, block int, stats *profile.ComboStats, combo []string) string {
	parts := []string{fmt.Sprintf("Inspired by %s.", strings.Join(combo, " -> "))}
	switch archetype {
	case profile.ArchetypeAggressive:
		parts = append(parts, fmt.Sprintf("Deal %d damage twice.", maxInt(damage, 6)))
	case profile.ArchetypeDefensive:
		parts = append(parts, fmt.Sprintf("Gain %d Block and Retain this turn.", maxInt(block, 6)))
	case profile.ArchetypeControl:
		parts = append(parts, fmt.Sprintf("Apply 1 Weak and deal %d damage.", maxInt(damage, 4)))
	default:
		parts = append(parts, fmt.Sprintf("Deal %d damage and gain %d Block.", maxInt(damage, 6), maxInt(block, 4)))
	}
	if stats.AverageTurn != 0 {
		parts = append(parts, fmt.Sprintf("Optimised for turn %.1f.", stats.AverageTurn))
	}
	return strings.Join(parts, " ")
}

func titleCase(id string) string {
	if id == "" {
		return id
	}
	return strings.ToUpper(id[:1]) + id[1:]
}

func intPtr(v int) *int { return &v }

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
