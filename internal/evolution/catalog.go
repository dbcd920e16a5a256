package evolution

import "github.com/spireforge/evolver/internal/profile"

// Edit carries the permitted field overwrites for a live catalog card. Nil
// fields are left untouched. Catalog implementations copy these values onto
// their own card objects; they never receive a reference to profile state.
type Edit struct {
	Value            *int
	UpgradeValue     *int
	Cost             *int
	SecondaryValue   *int
	SecondaryUpgrade *int
	Description      *string
	Keywords         []profile.KeywordAdjustment
}

// Catalog is the external card-catalog collaborator. ApplyEdit validates
// and copies only the permitted fields onto the card with the given id;
// editing an unknown id is reported via the bool return, not an error, so
// the planner can tolerate a partially stale catalog. AddCard inserts a
// newly generated card into the live catalog.
type Catalog interface {
	ApplyEdit(cardID string, edit Edit) (bool, error)
	AddCard(spec profile.CardSpec) error
}

// EditFromMutation converts a planner mutation into the catalog edit shape.
func EditFromMutation(m *profile.Mutation) Edit {
	return Edit{
		Value:            m.NewValue,
		UpgradeValue:     m.NewUpgradeValue,
		Cost:             m.NewCost,
		SecondaryValue:   m.NewSecondaryValue,
		SecondaryUpgrade: m.NewSecondaryUpgrade,
		Description:      m.Description,
		Keywords:         m.KeywordAdjustments,
	}
}
