package models

import (
	"fmt"
	"time"
)

// RegionNational is the region recorded for Final Four and Championship
// matches, which sit outside the four regional brackets.
const RegionNational = "National"

// Match is one bracket contest. Team references are nullable until the feeding
// matches resolve; once Completed is set with a winner the match is immutable
// as far as scoring is concerned.
type Match struct {
	ID           int       `json:"id" db:"id"`
	TournamentID int       `json:"tournament_id" db:"tournament_id"`
	Round        Round     `json:"round" db:"round"`
	Region       string    `json:"region" db:"region"`
	Slot         int       `json:"slot" db:"slot"`
	Team1ID      *int      `json:"team1_id,omitempty" db:"team1_id"`
	Team2ID      *int      `json:"team2_id,omitempty" db:"team2_id"`
	Team1Score   *int      `json:"team1_score,omitempty" db:"team1_score"`
	Team2Score   *int      `json:"team2_score,omitempty" db:"team2_score"`
	WinnerID     *int      `json:"winner_id,omitempty" db:"winner_id"`
	Completed    bool      `json:"completed" db:"completed"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`

	Team1  *Team `json:"team1,omitempty" db:"-"`
	Team2  *Team `json:"team2,omitempty" db:"-"`
	Winner *Team `json:"winner,omitempty" db:"-"`
}

// Decidable reports whether both team slots are filled, i.e. a result can be
// recorded for the match.
func (m *Match) Decidable() bool {
	return m.Team1ID != nil && m.Team2ID != nil
}

// Decided reports whether the match has a recorded winner and counts for
// scoring.
func (m *Match) Decided() bool {
	return m.Completed && m.WinnerID != nil
}

// HasTeam reports whether teamID occupies either slot of the match.
func (m *Match) HasTeam(teamID int) bool {
	return (m.Team1ID != nil && *m.Team1ID == teamID) ||
		(m.Team2ID != nil && *m.Team2ID == teamID)
}

// LoserID returns the id of the losing team for a decided match with both
// slots filled, or nil.
func (m *Match) LoserID() *int {
	if !m.Decided() || !m.Decidable() {
		return nil
	}
	if *m.WinnerID == *m.Team1ID {
		return m.Team2ID
	}
	if *m.WinnerID == *m.Team2ID {
		return m.Team1ID
	}
	return nil
}

// PositionLabel renders the structural address of the match for display and
// logs. The tuple (Region, Round, Slot) stays authoritative.
func (m *Match) PositionLabel() string {
	return fmt.Sprintf("%s-R%d-S%d", m.Region, int(m.Round), m.Slot)
}

// MatchResultPatch lists exactly the mutable fields of a match. Nil fields are
// left untouched by the update.
type MatchResultPatch struct {
	WinnerID   *int  `json:"winner_id,omitempty"`
	Team1Score *int  `json:"team1_score,omitempty"`
	Team2Score *int  `json:"team2_score,omitempty"`
	Completed  *bool `json:"completed,omitempty"`
}
