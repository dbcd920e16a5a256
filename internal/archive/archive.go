package archive

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/spireforge/evolver/internal/profile"
	"github.com/spireforge/evolver/internal/telemetry"
)

// SessionRow is the archive's view of one completed session.
type SessionRow struct {
	ID            string
	SessionID     string
	Enemy         string
	Floor         int
	Victory       bool
	TurnCount     int
	PlayerHPStart float64
	PlayerHPEnd   float64
	EventCount    int
	RecordedAt    time.Time
}

// RecordSession archives a completed session with its full event payload.
func (a *Archive) RecordSession(ctx context.Context, session *telemetry.Session) error {
	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal session payload: %w", err)
	}
	_, err = a.conn.ExecContext(ctx, `
		INSERT INTO sessions (id, session_id, enemy, floor, victory, turn_count,
			player_hp_start, player_hp_end, event_count, payload)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		uuid.NewString(),
		session.ID,
		session.Enemy,
		session.Floor,
		session.Victory,
		session.TurnCount,
		session.PlayerHPStart,
		session.PlayerHPEnd,
		len(session.Events),
		string(payload),
	)
	if err != nil {
		return fmt.Errorf("insert session row: %w", err)
	}
	return nil
}

// RecordPlan archives an applied mutation plan against its source session.
func (a *Archive) RecordPlan(ctx context.Context, sessionID string, plan *profile.MutationPlan) error {
	payload, err := json.Marshal(plan)
	if err != nil {
		return fmt.Errorf("marshal plan payload: %w", err)
	}
	_, err = a.conn.ExecContext(ctx, `
		INSERT INTO plans (id, session_id, mutation_count, new_card_count, unlockable_count, payload)
		VALUES (?, ?, ?, ?, ?, ?)`,
		uuid.NewString(),
		sessionID,
		len(plan.Mutations),
		len(plan.NewCards),
		len(plan.Unlockables),
		string(payload),
	)
	if err != nil {
		return fmt.Errorf("insert plan row: %w", err)
	}
	return nil
}

// ListSessions returns the newest archived sessions, most recent first.
func (a *Archive) ListSessions(ctx context.Context, limit int) ([]*SessionRow, error) {
	rows, err := a.conn.QueryContext(ctx, `
		SELECT id, session_id, enemy, floor, victory, turn_count,
			player_hp_start, player_hp_end, event_count, recorded_at
		FROM sessions
		ORDER BY recorded_at DESC, id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*SessionRow
	for rows.Next() {
		row := &SessionRow{}
		if err := rows.Scan(
			&row.ID,
			&row.SessionID,
			&row.Enemy,
			&row.Floor,
			&row.Victory,
			&row.TurnCount,
			&row.PlayerHPStart,
			&row.PlayerHPEnd,
			&row.EventCount,
			&row.RecordedAt,
		); err != nil {
			return nil, fmt.Errorf("scan session row: %w", err)
		}
		sessions = append(sessions, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate session rows: %w", err)
	}
	return sessions, nil
}

// LoadSessionPayload returns the full session document for an archive row.
func (a *Archive) LoadSessionPayload(ctx context.Context, rowID string) (*telemetry.Session, error) {
	var payload string
	err := a.conn.QueryRowContext(ctx,
		`SELECT payload FROM sessions WHERE id = ?`, rowID).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("session row %s not found", rowID)
	}
	if err != nil {
		return nil, fmt.Errorf("query session payload: %w", err)
	}
	session := &telemetry.Session{}
	if err := json.Unmarshal([]byte(payload), session); err != nil {
		return nil, fmt.Errorf("parse session payload: %w", err)
	}
	return session, nil
}

// SessionCount returns the total number of archived sessions.
func (a *Archive) SessionCount(ctx context.Context) (int, error) {
	var count int
	if err := a.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM sessions`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count sessions: %w", err)
	}
	return count, nil
}

// PlanCount returns the total number of archived plans.
func (a *Archive) PlanCount(ctx context.Context) (int, error) {
	var count int
	if err := a.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM plans`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count plans: %w", err)
	}
	return count, nil
}
