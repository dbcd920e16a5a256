// Package registry holds explicit content registrations: card specs and
// extension hooks are supplied as typed records by the host at bootstrap,
// never as side effects of a type declaration.
package registry

import (
	"fmt"
	"sort"

	"github.com/spireforge/evolver/internal/hooks"
	"github.com/spireforge/evolver/internal/profile"
)

// CardKind distinguishes how a registered card enters play.
type CardKind string

const (
	// KindDeck cards seed the starting deck.
	KindDeck CardKind = "deck"
	// KindUnlockable cards wait in the unlockable pool until a plan grants them.
	KindUnlockable CardKind = "unlockable"
)

// CardRecord is one explicit card registration.
type CardRecord struct {
	// Namespace groups registrations by contributing mod or content pack.
	Namespace string
	// Kind selects deck versus unlockable placement.
	Kind CardKind
	// Factory builds a fresh spec per lookup so callers cannot alias
	// registry-held state.
	Factory func() profile.CardSpec
}

// HookRecord is one explicit hook registration.
type HookRecord struct {
	Namespace string
	Factory   func() hooks.Hook
}

// Registry collects card and hook registrations keyed by identifier.
type Registry struct {
	cards     map[string]CardRecord
	hookNames map[string]HookRecord
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{
		cards:     map[string]CardRecord{},
		hookNames: map[string]HookRecord{},
	}
}

// RegisterCard records a card under its identifier. Duplicate identifiers are
// rejected, including across namespaces.
func (r *Registry) RegisterCard(identifier string, record CardRecord) error {
	if identifier == "" {
		return fmt.Errorf("card identifier cannot be empty")
	}
	if record.Factory == nil {
		return fmt.Errorf("card %q: factory cannot be nil", identifier)
	}
	if existing, ok := r.cards[identifier]; ok {
		return fmt.Errorf("card %q already registered by namespace %q", identifier, existing.Namespace)
	}
	if record.Kind != KindDeck && record.Kind != KindUnlockable {
		return fmt.Errorf("card %q: unknown kind %q", identifier, record.Kind)
	}
	r.cards[identifier] = record
	return nil
}

// RegisterHook records a hook under its name. Duplicates are rejected.
func (r *Registry) RegisterHook(name string, record HookRecord) error {
	if name == "" {
		return fmt.Errorf("hook name cannot be empty")
	}
	if record.Factory == nil {
		return fmt.Errorf("hook %q: factory cannot be nil", name)
	}
	if existing, ok := r.hookNames[name]; ok {
		return fmt.Errorf("hook %q already registered by namespace %q", name, existing.Namespace)
	}
	r.hookNames[name] = record
	return nil
}

// DeckSpecs builds the registered starting-deck specs, ordered by identifier.
func (r *Registry) DeckSpecs() []profile.CardSpec {
	return r.specs(KindDeck)
}

// UnlockableSpecs builds the registered unlockable specs, ordered by identifier.
func (r *Registry) UnlockableSpecs() []profile.CardSpec {
	return r.specs(KindUnlockable)
}

func (r *Registry) specs(kind CardKind) []profile.CardSpec {
	ids := make([]string, 0, len(r.cards))
	for id, record := range r.cards {
		if record.Kind == kind {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)

	specs := make([]profile.CardSpec, 0, len(ids))
	for _, id := range ids {
		spec := r.cards[id].Factory()
		// The registration key wins over whatever the factory set.
		spec.Identifier = id
		specs = append(specs, spec)
	}
	return specs
}

// Hooks builds the registered hooks, ordered by name.
func (r *Registry) Hooks() []hooks.Hook {
	names := make([]string, 0, len(r.hookNames))
	for name := range r.hookNames {
		names = append(names, name)
	}
	sort.Strings(names)

	built := make([]hooks.Hook, 0, len(names))
	for _, name := range names {
		built = append(built, r.hookNames[name].Factory())
	}
	return built
}
