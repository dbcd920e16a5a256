package telemetry

// Session is a snapshot describing a completed combat encounter together
// with its ordered card-play event log. Sessions are consumed exactly once
// by the aggregation pipeline and are not retained afterwards.
type Session struct {
	ID            string      `json:"id"`
	Enemy         string      `json:"enemy"`
	Floor         int         `json:"floor"`
	Victory       bool        `json:"victory"`
	TurnCount     int         `json:"turn_count"`
	PlayerHPStart float64     `json:"player_hp_start"`
	PlayerHPEnd   float64     `json:"player_hp_end"`
	Events        []PlayEvent `json:"events"`
	Relics        []string    `json:"relics,omitempty"`
	RewardCards   []string    `json:"reward_cards,omitempty"`
	Notes         []string    `json:"notes,omitempty"`
	Timestamp     float64     `json:"timestamp"`
}

// DamageTaken returns the net hit points lost over the encounter, never
// negative (healing past the starting total counts as zero).
func (s *Session) DamageTaken() float64 {
	if taken := s.PlayerHPStart - s.PlayerHPEnd; taken > 0 {
		return taken
	}
	return 0
}
