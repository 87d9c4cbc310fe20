package models

import "time"

// Participant is one pool entry. Email is unique per tournament. TotalScore is
// a cache recomputed by the scoring engine. EntryToken is the opaque handle a
// self-registered participant uses to manage their own picks.
type Participant struct {
	ID           int       `json:"id" db:"id"`
	TournamentID int       `json:"tournament_id" db:"tournament_id"`
	Name         string    `json:"name" db:"name"`
	Email        string    `json:"email" db:"email"`
	Paid         bool      `json:"paid" db:"paid"`
	TotalScore   int       `json:"total_score" db:"total_score"`
	EntryToken   string    `json:"-" db:"entry_token"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}
