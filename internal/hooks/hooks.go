// Package hooks defines the optional extension points invoked around the
// analytics pipeline: at session start and at plan finalization. Hook
// failures never abort the pipeline; errors and panics are logged and
// discarded, and the pipeline continues with whatever partial changes the
// hook managed to apply.
package hooks

import (
	"fmt"
	"log"

	"github.com/spireforge/evolver/internal/profile"
)

// SessionNotes is the narrow surface a session-start hook receives: it may
// append human-readable notes to the in-progress session and nothing else.
type SessionNotes interface {
	AddNote(note string)
}

// Hook is an extension collaborator, e.g. a relic-like effect.
type Hook interface {
	// Name identifies the hook in logs.
	Name() string

	// SessionStarted runs when a session begins recording.
	SessionStarted(session SessionNotes) error

	// PlanFinalized runs after a plan is computed and before it is
	// applied. The hook may adjust the plan's notes, its mutations, and
	// the style vector's combo score and summary.
	PlanFinalized(plan *profile.MutationPlan) error
}

// Dispatcher fans pipeline events out to registered hooks.
type Dispatcher struct {
	hooks []Hook
}

// NewDispatcher returns an empty dispatcher.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{}
}

// Register adds a hook. Hooks run in registration order.
func (d *Dispatcher) Register(hook Hook) {
	d.hooks = append(d.hooks, hook)
	log.Printf("[Hooks] Registered hook: %s", hook.Name())
}

// EmitSessionStarted notifies every hook that a session began.
func (d *Dispatcher) EmitSessionStarted(session SessionNotes) {
	for _, hook := range d.hooks {
		if err := call(func() error { return hook.SessionStarted(session) }); err != nil {
			log.Printf("[Hooks] %s session-start failed: %v", hook.Name(), err)
		}
	}
}

// EmitPlanFinalized notifies every hook that a plan was computed.
func (d *Dispatcher) EmitPlanFinalized(plan *profile.MutationPlan) {
	for _, hook := range d.hooks {
		if err := call(func() error { return hook.PlanFinalized(plan) }); err != nil {
			log.Printf("[Hooks] %s plan-finalized failed: %v", hook.Name(), err)
		}
	}
}

// call converts a hook panic into an error so a misbehaving extension
// cannot take the pipeline down with it.
func call(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("hook panic: %v", r)
		}
	}()
	return fn()
}
