// Package pipeline orchestrates the analytics flow: sessions are recorded
// under distinct identifiers, and at completion the events run through
// aggregation, style derivation, planning, plan application, and
// persistence — all inline, single-threaded, in recording order.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/spireforge/evolver/internal/analysis"
	"github.com/spireforge/evolver/internal/evolution"
	"github.com/spireforge/evolver/internal/hooks"
	"github.com/spireforge/evolver/internal/profile"
	"github.com/spireforge/evolver/internal/store"
	"github.com/spireforge/evolver/internal/telemetry"
)

// ErrSessionNotFound is returned when completing a session whose identifier
// was never registered. This is a usage defect, not recoverable by retry.
var ErrSessionNotFound = errors.New("session not found")

// Archiver receives completed sessions and applied plans for long-term
// archival. The JSON profile store remains the source of truth; archival
// failures are logged, never fatal.
type Archiver interface {
	RecordSession(ctx context.Context, session *telemetry.Session) error
	RecordPlan(ctx context.Context, sessionID string, plan *profile.MutationPlan) error
}

// Options configures a Pipeline.
type Options struct {
	// ModID namespaces the profile and generated card identifiers.
	ModID string

	// Store persists the profile document. Required.
	Store *store.Store

	// Catalog is the live card-catalog collaborator. Optional.
	Catalog evolution.Catalog

	// Archive receives completed sessions and plans. Optional.
	Archive Archiver

	// Weights overrides the default status weight table. Optional.
	Weights telemetry.StatusWeights

	// Autosave persists the profile after every completed session.
	Autosave bool
}

// Pipeline is the top-level façade over the analytics core.
type Pipeline struct {
	modID     string
	store     *store.Store
	profile   *profile.Profile
	heuristic *analysis.Heuristic
	engine    *evolution.Engine
	hooks     *hooks.Dispatcher
	catalog   evolution.Catalog
	archive   Archiver
	weights   telemetry.StatusWeights
	autosave  bool
	recorders map[string]*Recorder
	baseIDs   map[string]bool
	entropy   *rand.Rand
	latest    *profile.MutationPlan
}

// New loads the profile from the store and wires up the analytics core.
func New(opts Options) (*Pipeline, error) {
	if opts.Store == nil {
		return nil, fmt.Errorf("pipeline requires a profile store")
	}
	modID := opts.ModID
	if modID == "" {
		modID = "adaptive"
	}
	prof, err := opts.Store.Load(modID)
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}
	weights := analysis.MergeWeights(opts.Weights)
	heuristic := analysis.NewHeuristic(prof, weights)
	p := &Pipeline{
		modID:     modID,
		store:     opts.Store,
		profile:   prof,
		heuristic: heuristic,
		engine:    evolution.NewEngine(prof, heuristic),
		hooks:     hooks.NewDispatcher(),
		catalog:   opts.Catalog,
		archive:   opts.Archive,
		weights:   weights,
		autosave:  opts.Autosave,
		recorders: map[string]*Recorder{},
		baseIDs:   map[string]bool{},
		entropy:   rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for id := range prof.Deck {
		p.baseIDs[id] = true
	}
	return p, nil
}

// Profile returns the live root aggregate.
func (p *Pipeline) Profile() *profile.Profile {
	return p.profile
}

// Heuristic returns the style heuristic bound to the profile.
func (p *Pipeline) Heuristic() *analysis.Heuristic {
	return p.heuristic
}

// LatestPlan returns the most recently applied plan, or nil.
func (p *Pipeline) LatestPlan() *profile.MutationPlan {
	return p.latest
}

// RegisterHook adds an extension hook.
func (p *Pipeline) RegisterHook(hook hooks.Hook) {
	p.hooks.Register(hook)
}

// RegisterBaseDeck seeds the profile's deck map with the given card specs.
// Cards already present keep their evolved state.
func (p *Pipeline) RegisterBaseDeck(specs []profile.CardSpec) error {
	ids := map[string]bool{}
	for i := range specs {
		spec := specs[i]
		ids[spec.Identifier] = true
		if _, ok := p.profile.Deck[spec.Identifier]; !ok {
			p.profile.RegisterCard(&spec)
		}
	}
	if len(ids) > 0 {
		p.baseIDs = ids
		if p.autosave {
			return p.store.Save(p.profile)
		}
	}
	return nil
}

// RegisterUnlockables seeds the profile's unlockable map.
func (p *Pipeline) RegisterUnlockables(specs []profile.CardSpec) error {
	for i := range specs {
		spec := specs[i]
		p.profile.RegisterUnlockable(&spec)
	}
	if p.autosave {
		return p.store.Save(p.profile)
	}
	return nil
}

// DynamicCards lists the cards a host should register beyond the base deck:
// generated or non-base deck cards, followed by all unlockables.
func (p *Pipeline) DynamicCards() []profile.CardSpec {
	var specs []profile.CardSpec
	for id, spec := range p.profile.Deck {
		if !p.baseIDs[id] || spec.GeneratedBy != "" {
			specs = append(specs, *spec)
		}
	}
	for _, spec := range p.profile.Unlockables {
		specs = append(specs, *spec)
	}
	return specs
}

// SessionParams describes a combat encounter at the moment it begins.
type SessionParams struct {
	// ID is the session identifier; a fresh ULID is allocated when empty.
	ID            string
	Enemy         string
	Floor         int
	PlayerHPStart float64
	Relics        []string
	Notes         []string
}

// SessionResult describes a combat encounter at the moment it ends.
type SessionResult struct {
	Victory     bool
	PlayerHPEnd float64
	RewardCards []string
	Notes       []string
}

// BeginSession opens a recorder for a new session. Multiple sessions may be
// open concurrently under distinct identifiers without cross-contamination.
func (p *Pipeline) BeginSession(params SessionParams) *Recorder {
	id := params.ID
	if id == "" {
		id = ulid.MustNew(ulid.Timestamp(time.Now()), p.entropy).String()
	}
	recorder := &Recorder{
		id:            id,
		enemy:         params.Enemy,
		floor:         params.Floor,
		playerHPStart: params.PlayerHPStart,
		relics:        params.Relics,
		notes:         append([]string(nil), params.Notes...),
	}
	p.recorders[id] = recorder
	p.hooks.EmitSessionStarted(recorder)
	return recorder
}

// RecordPlay appends one event to an open session's buffer.
func (p *Pipeline) RecordPlay(sessionID string, event telemetry.PlayEvent) error {
	recorder, ok := p.recorders[sessionID]
	if !ok {
		return fmt.Errorf("%w: %q", ErrSessionNotFound, sessionID)
	}
	recorder.RecordPlay(event)
	return nil
}

// CompleteSession finalizes a session and runs the full analytics pass:
// aggregation, style derivation, planning, hook finalization, application,
// archival, and autosave. The applied plan is returned; it may be empty.
func (p *Pipeline) CompleteSession(ctx context.Context, sessionID string, result SessionResult) (profile.MutationPlan, error) {
	recorder, ok := p.recorders[sessionID]
	if !ok {
		return profile.MutationPlan{}, fmt.Errorf("%w: %q", ErrSessionNotFound, sessionID)
	}
	delete(p.recorders, sessionID)

	session := recorder.finalize(result.Victory, result.PlayerHPEnd, result.RewardCards, result.Notes)
	style := p.heuristic.IngestSession(&session)
	plan := p.engine.PlanEvolution(&style)
	plan.SourceSession = session.ID
	p.hooks.EmitPlanFinalized(&plan)
	p.engine.Apply(plan)
	if err := p.engine.ApplyToCatalog(p.catalog, &plan); err != nil {
		return plan, fmt.Errorf("mirror plan onto catalog: %w", err)
	}
	if p.archive != nil {
		if err := p.archive.RecordSession(ctx, &session); err != nil {
			log.Printf("[Pipeline] archive session %s: %v", session.ID, err)
		}
		if !plan.IsEmpty() {
			if err := p.archive.RecordPlan(ctx, session.ID, &plan); err != nil {
				log.Printf("[Pipeline] archive plan for %s: %v", session.ID, err)
			}
		}
	}
	p.latest = &plan
	if p.autosave {
		if err := p.store.Save(p.profile); err != nil {
			return plan, fmt.Errorf("autosave profile: %w", err)
		}
	}
	return plan, nil
}

// ReplaySession ingests an already-complete session document, running the
// same analytics pass that CompleteSession performs for live recordings.
func (p *Pipeline) ReplaySession(ctx context.Context, session *telemetry.Session) (profile.MutationPlan, error) {
	if session == nil {
		return profile.MutationPlan{}, fmt.Errorf("session cannot be nil")
	}
	recorder := p.BeginSession(SessionParams{
		ID:            session.ID,
		Enemy:         session.Enemy,
		Floor:         session.Floor,
		PlayerHPStart: session.PlayerHPStart,
		Relics:        session.Relics,
		Notes:         session.Notes,
	})
	for _, event := range session.Events {
		recorder.RecordPlay(event)
	}
	return p.CompleteSession(ctx, recorder.ID(), SessionResult{
		Victory:     session.Victory,
		PlayerHPEnd: session.PlayerHPEnd,
		RewardCards: session.RewardCards,
	})
}

// Save persists the profile document.
func (p *Pipeline) Save() error {
	return p.store.Save(p.profile)
}

// ResetProfile discards all recorded state and persists a fresh profile.
func (p *Pipeline) ResetProfile() error {
	prof, err := p.store.Reset(p.modID)
	if err != nil {
		return err
	}
	p.profile = prof
	p.heuristic = analysis.NewHeuristic(prof, p.weights)
	p.engine = evolution.NewEngine(prof, p.heuristic)
	p.baseIDs = map[string]bool{}
	p.latest = nil
	return nil
}
