package profile

import "sort"

// Card type, target, and rarity labels mirror the host game's vocabulary.
const (
	CardTypeAttack = "ATTACK"
	CardTypeSkill  = "SKILL"

	TargetEnemy = "ENEMY"
	TargetSelf  = "SELF"

	RarityCommon   = "COMMON"
	RarityUncommon = "UNCOMMON"
	RarityRare     = "RARE"

	RoleGeneralist = "generalist"

	defaultAttackEffect = "SLASH_DIAGONAL"
)

// CardSpec is a mutable card definition, either a registered base card or
// one generated by the planner. Generated cards carry a provenance token in
// GeneratedBy that keeps generation idempotent.
type CardSpec struct {
	Identifier         string         `json:"identifier"`
	Title              string         `json:"title"`
	Description        string         `json:"description"`
	UpgradeDescription *string        `json:"upgrade_description"`
	CardType           string         `json:"card_type"`
	Target             string         `json:"target"`
	Rarity             string         `json:"rarity"`
	Cost               int            `json:"cost"`
	Value              int            `json:"value"`
	UpgradeValue       int            `json:"upgrade_value"`
	Effect             *string        `json:"effect"`
	SecondaryValue     *int           `json:"secondary_value"`
	SecondaryUpgrade   int            `json:"secondary_upgrade"`
	Keywords           []string       `json:"keywords"`
	KeywordValues      map[string]int `json:"keyword_values"`
	KeywordUpgrades    map[string]int `json:"keyword_upgrades"`
	AttackEffect       string         `json:"attack_effect"`
	CardUses           *int           `json:"card_uses"`
	CardUsesUpgrade    int            `json:"card_uses_upgrade"`
	Role               string         `json:"role"`
	GeneratedBy        string         `json:"generated_by,omitempty"`
	Notes              []string       `json:"notes"`
}

// NewCardSpec returns a spec with the defaults expected for a base card.
func NewCardSpec(identifier string) *CardSpec {
	return &CardSpec{
		Identifier:      identifier,
		CardType:        CardTypeAttack,
		Target:          TargetEnemy,
		Rarity:          RarityCommon,
		Cost:            1,
		Value:           6,
		UpgradeValue:    3,
		Keywords:        []string{},
		KeywordValues:   map[string]int{},
		KeywordUpgrades: map[string]int{},
		AttackEffect:    defaultAttackEffect,
		Role:            RoleGeneralist,
		Notes:           []string{},
	}
}

// KeywordAdjustment describes a keyword change to apply to a card. Nil
// fields are left untouched on the target.
type KeywordAdjustment struct {
	Keyword         string `json:"keyword"`
	Amount          *int   `json:"amount"`
	Upgrade         *int   `json:"upgrade"`
	CardUses        *int   `json:"card_uses"`
	CardUsesUpgrade *int   `json:"card_uses_upgrade"`
}

// Mutation is a targeted modification to an existing card. Only the non-nil
// fields are applied.
type Mutation struct {
	CardID              string              `json:"card_id"`
	NewValue            *int                `json:"new_value"`
	NewUpgradeValue     *int                `json:"new_upgrade_value"`
	NewCost             *int                `json:"new_cost"`
	NewSecondaryValue   *int                `json:"new_secondary_value"`
	NewSecondaryUpgrade *int                `json:"new_secondary_upgrade"`
	Description         *string             `json:"description"`
	UpgradeDescription  *string             `json:"upgrade_description"`
	KeywordAdjustments  []KeywordAdjustment `json:"keyword_adjustments"`
	Role                string              `json:"role"`
	Notes               []string            `json:"notes"`
	Metadata            map[string]any      `json:"metadata"`
}

// Apply overwrites only the fields the mutation specifies. Keyword
// adjustments merge by keyword name with the later adjustment winning, and
// notes merge as a deduplicated sorted union.
func (c *CardSpec) Apply(m *Mutation) {
	if m.NewValue != nil {
		c.Value = *m.NewValue
	}
	if m.NewUpgradeValue != nil {
		c.UpgradeValue = *m.NewUpgradeValue
	}
	if m.NewCost != nil {
		c.Cost = *m.NewCost
	}
	if m.NewSecondaryValue != nil {
		v := *m.NewSecondaryValue
		c.SecondaryValue = &v
	}
	if m.NewSecondaryUpgrade != nil {
		c.SecondaryUpgrade = *m.NewSecondaryUpgrade
	}
	if m.Description != nil {
		c.Description = *m.Description
	}
	if m.UpgradeDescription != nil {
		d := *m.UpgradeDescription
		c.UpgradeDescription = &d
	}
	if m.Role != "" {
		c.Role = m.Role
	}
	if len(m.KeywordAdjustments) > 0 {
		keywords := make(map[string]bool, len(c.Keywords))
		for _, kw := range c.Keywords {
			keywords[kw] = true
		}
		if c.KeywordValues == nil {
			c.KeywordValues = map[string]int{}
		}
		if c.KeywordUpgrades == nil {
			c.KeywordUpgrades = map[string]int{}
		}
		for _, adj := range m.KeywordAdjustments {
			keywords[adj.Keyword] = true
			if adj.Amount != nil {
				c.KeywordValues[adj.Keyword] = *adj.Amount
			}
			if adj.Upgrade != nil {
				c.KeywordUpgrades[adj.Keyword] = *adj.Upgrade
			}
			if adj.CardUses != nil {
				uses := *adj.CardUses
				c.CardUses = &uses
			}
			if adj.CardUsesUpgrade != nil {
				c.CardUsesUpgrade = *adj.CardUsesUpgrade
			}
		}
		merged := make([]string, 0, len(keywords))
		for kw := range keywords {
			merged = append(merged, kw)
		}
		sort.Strings(merged)
		c.Keywords = merged
	}
	if len(m.Notes) > 0 {
		c.Notes = mergeNotes(c.Notes, m.Notes)
	}
}

// MutationPlan is the atomic output of one planning pass: card edits plus
// any newly generated deck and unlockable cards.
type MutationPlan struct {
	Mutations     []Mutation   `json:"mutations"`
	NewCards      []CardSpec   `json:"new_cards"`
	Unlockables   []CardSpec   `json:"unlockables"`
	StyleVector   *StyleVector `json:"style_vector"`
	Notes         []string     `json:"notes"`
	Timestamp     float64      `json:"timestamp"`
	SourceSession string       `json:"source_session,omitempty"`
}

// IsEmpty reports whether the plan proposes nothing. Empty plans are valid,
// inert results: they are neither applied nor recorded.
func (p *MutationPlan) IsEmpty() bool {
	return len(p.Mutations) == 0 && len(p.NewCards) == 0 && len(p.Unlockables) == 0
}

func mergeNotes(existing, added []string) []string {
	seen := make(map[string]bool, len(existing)+len(added))
	for _, note := range existing {
		seen[note] = true
	}
	for _, note := range added {
		seen[note] = true
	}
	merged := make([]string, 0, len(seen))
	for note := range seen {
		merged = append(merged, note)
	}
	sort.Strings(merged)
	return merged
}
