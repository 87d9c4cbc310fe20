package models

import "time"

// MatchPick is a participant's predicted winner for one match. Correct and
// RoundScore are caches recomputed by the scoring engine from the owning
// match; they are never authoritative.
type MatchPick struct {
	ID            int       `json:"id" db:"id"`
	ParticipantID int       `json:"participant_id" db:"participant_id"`
	MatchID       int       `json:"match_id" db:"match_id"`
	TeamID        int       `json:"team_id" db:"team_id"`
	Correct       bool      `json:"correct" db:"correct"`
	RoundScore    int       `json:"round_score" db:"round_score"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`

	Match *Match `json:"match,omitempty" db:"-"`
	Team  *Team  `json:"team,omitempty" db:"-"`
}

// Pre-tournament pick shape: fixed counts locked in before the Round of 64.
const (
	FinalFourPickCount  = 4
	FinalsPickCount     = 2
	CinderellaPickCount = 2
)

// PreTournamentPick is a participant's one-time bracket speculation. Score and
// CinderellaScore are caches maintained by the scoring engine.
type PreTournamentPick struct {
	ID              int       `json:"id" db:"id"`
	ParticipantID   int       `json:"participant_id" db:"participant_id"`
	FinalFourIDs    []int     `json:"final_four_team_ids" db:"-"`
	FinalsIDs       []int     `json:"finals_team_ids" db:"-"`
	ChampionID      int       `json:"champion_team_id" db:"champion_team_id"`
	CinderellaIDs   []int     `json:"cinderella_team_ids" db:"-"`
	Score           int       `json:"score" db:"score"`
	CinderellaScore int       `json:"cinderella_score" db:"cinderella_score"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
}
