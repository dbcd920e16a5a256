package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spireforge/evolver/internal/evolution"
	"github.com/spireforge/evolver/internal/hooks"
	"github.com/spireforge/evolver/internal/profile"
	"github.com/spireforge/evolver/internal/store"
	"github.com/spireforge/evolver/internal/telemetry"
)

type memoryArchive struct {
	sessions []*telemetry.Session
	plans    map[string]*profile.MutationPlan
}

func newMemoryArchive() *memoryArchive {
	return &memoryArchive{plans: map[string]*profile.MutationPlan{}}
}

func (m *memoryArchive) RecordSession(ctx context.Context, session *telemetry.Session) error {
	m.sessions = append(m.sessions, session)
	return nil
}

func (m *memoryArchive) RecordPlan(ctx context.Context, sessionID string, plan *profile.MutationPlan) error {
	m.plans[sessionID] = plan
	return nil
}

type memoryCatalog struct {
	edits map[string]evolution.Edit
	added []profile.CardSpec
}

func newMemoryCatalog() *memoryCatalog {
	return &memoryCatalog{edits: map[string]evolution.Edit{}}
}

func (m *memoryCatalog) ApplyEdit(cardID string, edit evolution.Edit) (bool, error) {
	m.edits[cardID] = edit
	return true, nil
}

func (m *memoryCatalog) AddCard(spec profile.CardSpec) error {
	m.added = append(m.added, spec)
	return nil
}

func newTestPipeline(t *testing.T, opts Options) (*Pipeline, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "profile.json")
	s, err := store.New(path)
	require.NoError(t, err)
	opts.Store = s
	if opts.ModID == "" {
		opts.ModID = "testmod"
	}
	p, err := New(opts)
	require.NoError(t, err)
	return p, path
}

func damageEvent(id string, turn int, damage float64) telemetry.PlayEvent {
	return telemetry.PlayEvent{CardID: id, Turn: turn, DamageDealt: damage, EnergySpent: 1}
}

func TestPipelineRequiresStore(t *testing.T) {
	_, err := New(Options{})
	require.Error(t, err)
}

func TestCompleteSessionRunsFullPass(t *testing.T) {
	arc := newMemoryArchive()
	catalog := newMemoryCatalog()
	pipe, path := newTestPipeline(t, Options{
		Archive:  arc,
		Catalog:  catalog,
		Autosave: true,
	})
	require.NoError(t, pipe.RegisterBaseDeck([]profile.CardSpec{*profile.NewCardSpec("strike")}))

	recorder := pipe.BeginSession(SessionParams{
		Enemy:         "Cultist",
		Floor:         1,
		PlayerHPStart: 75,
	})
	require.NotEmpty(t, recorder.ID())

	require.NoError(t, pipe.RecordPlay(recorder.ID(), damageEvent("strike", 1, 6)))
	require.NoError(t, pipe.RecordPlay(recorder.ID(), damageEvent("strike", 2, 6)))

	plan, err := pipe.CompleteSession(context.Background(), recorder.ID(), SessionResult{
		Victory:     true,
		PlayerHPEnd: 70,
	})
	require.NoError(t, err)
	assert.Equal(t, recorder.ID(), plan.SourceSession)

	prof := pipe.Profile()
	assert.Equal(t, 1, prof.FightsRecorded)
	assert.Equal(t, 1, prof.Wins)
	assert.Equal(t, 2, prof.CardStats["strike"].Plays)
	require.Len(t, prof.StyleHistory, 1)
	assert.NotNil(t, pipe.LatestPlan())

	// Session archived with its finalized metadata.
	require.Len(t, arc.sessions, 1)
	assert.Equal(t, "Cultist", arc.sessions[0].Enemy)
	assert.Equal(t, 2, arc.sessions[0].TurnCount)

	// Autosave left a loadable snapshot on disk.
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"fights_recorded": 1`)

	// The recorder is consumed; completing again fails.
	_, err = pipe.CompleteSession(context.Background(), recorder.ID(), SessionResult{})
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestRecordPlayUnknownSession(t *testing.T) {
	pipe, _ := newTestPipeline(t, Options{})
	err := pipe.RecordPlay("ghost", damageEvent("strike", 1, 6))
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestConcurrentSessionsStayIsolated(t *testing.T) {
	pipe, _ := newTestPipeline(t, Options{})

	first := pipe.BeginSession(SessionParams{ID: "first", Enemy: "Cultist"})
	second := pipe.BeginSession(SessionParams{ID: "second", Enemy: "Jaw Worm"})

	require.NoError(t, pipe.RecordPlay(first.ID(), damageEvent("strike", 1, 6)))
	require.NoError(t, pipe.RecordPlay(second.ID(), damageEvent("defend", 1, 0)))

	_, err := pipe.CompleteSession(context.Background(), first.ID(), SessionResult{Victory: true})
	require.NoError(t, err)

	prof := pipe.Profile()
	assert.Equal(t, 1, prof.FightsRecorded)
	assert.Contains(t, prof.CardStats, "strike")
	assert.NotContains(t, prof.CardStats, "defend")

	// The second session is still open and completes independently.
	_, err = pipe.CompleteSession(context.Background(), second.ID(), SessionResult{Victory: false})
	require.NoError(t, err)
	assert.Equal(t, 2, pipe.Profile().FightsRecorded)
	assert.Contains(t, pipe.Profile().CardStats, "defend")
}

func TestSessionHooksRun(t *testing.T) {
	arc := newMemoryArchive()
	pipe, _ := newTestPipeline(t, Options{Archive: arc})
	pipe.RegisterHook(hooks.NewTelemetryCore())

	recorder := pipe.BeginSession(SessionParams{ID: "hooked", Enemy: "Cultist"})
	require.NoError(t, pipe.RecordPlay(recorder.ID(), damageEvent("strike", 1, 6)))
	_, err := pipe.CompleteSession(context.Background(), recorder.ID(), SessionResult{Victory: true})
	require.NoError(t, err)

	require.Len(t, arc.sessions, 1)
	assert.Contains(t, arc.sessions[0].Notes, "Adaptive Telemetry Core calibrates to the encounter.")
}

func TestReplaySession(t *testing.T) {
	pipe, _ := newTestPipeline(t, Options{})

	session := &telemetry.Session{
		ID:            "replayed",
		Enemy:         "Hexaghost",
		Floor:         16,
		Victory:       true,
		PlayerHPStart: 60,
		PlayerHPEnd:   48,
		Events: []telemetry.PlayEvent{
			damageEvent("strike", 1, 6),
			damageEvent("bash", 2, 8),
		},
	}
	plan, err := pipe.ReplaySession(context.Background(), session)
	require.NoError(t, err)
	assert.Equal(t, "replayed", plan.SourceSession)
	assert.Equal(t, 1, pipe.Profile().FightsRecorded)
	assert.Contains(t, pipe.Profile().CardStats, "bash")

	_, err = pipe.ReplaySession(context.Background(), nil)
	require.Error(t, err)
}

func TestRegisterBaseDeckKeepsEvolvedCards(t *testing.T) {
	pipe, _ := newTestPipeline(t, Options{})

	evolved := profile.NewCardSpec("strike")
	evolved.Value = 11
	require.NoError(t, pipe.RegisterBaseDeck([]profile.CardSpec{*evolved}))

	// Re-registering the base version must not clobber the evolved state.
	require.NoError(t, pipe.RegisterBaseDeck([]profile.CardSpec{*profile.NewCardSpec("strike")}))
	assert.Equal(t, 11, pipe.Profile().Deck["strike"].Value)
}

func TestDynamicCards(t *testing.T) {
	pipe, _ := newTestPipeline(t, Options{})
	require.NoError(t, pipe.RegisterBaseDeck([]profile.CardSpec{*profile.NewCardSpec("strike")}))
	require.NoError(t, pipe.RegisterUnlockables([]profile.CardSpec{*profile.NewCardSpec("bonus")}))

	generated := profile.NewCardSpec("testmod_combo_001")
	generated.GeneratedBy = "combo:a->b"
	pipe.Profile().RegisterCard(generated)

	dynamic := pipe.DynamicCards()
	ids := map[string]bool{}
	for _, spec := range dynamic {
		ids[spec.Identifier] = true
	}
	assert.True(t, ids["testmod_combo_001"], "generated card should be dynamic")
	assert.True(t, ids["bonus"], "unlockables should be dynamic")
	assert.False(t, ids["strike"], "base cards are not dynamic")
}

func TestResetProfile(t *testing.T) {
	pipe, _ := newTestPipeline(t, Options{})
	recorder := pipe.BeginSession(SessionParams{ID: "fight"})
	require.NoError(t, pipe.RecordPlay(recorder.ID(), damageEvent("strike", 1, 6)))
	_, err := pipe.CompleteSession(context.Background(), recorder.ID(), SessionResult{Victory: true})
	require.NoError(t, err)
	require.Equal(t, 1, pipe.Profile().FightsRecorded)

	require.NoError(t, pipe.ResetProfile())
	assert.Zero(t, pipe.Profile().FightsRecorded)
	assert.Nil(t, pipe.LatestPlan())
	assert.Empty(t, pipe.Profile().CardStats)
}

func TestCompleteSessionEmptyPlanNotArchived(t *testing.T) {
	arc := newMemoryArchive()
	pipe, _ := newTestPipeline(t, Options{Archive: arc})

	recorder := pipe.BeginSession(SessionParams{ID: "quiet"})
	require.NoError(t, pipe.RecordPlay(recorder.ID(), damageEvent("strike", 1, 6)))
	plan, err := pipe.CompleteSession(context.Background(), recorder.ID(), SessionResult{Victory: true})
	require.NoError(t, err)

	if plan.IsEmpty() {
		assert.NotContains(t, arc.plans, "quiet")
	} else {
		assert.Contains(t, arc.plans, "quiet")
	}
	assert.Len(t, arc.sessions, 1)
}
