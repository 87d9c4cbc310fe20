package models

import "time"

// ScheduledTransition is a deferred round advance. At most one exists per
// tournament; scheduling again replaces the previous one. FromRound is the
// optimistic guard: if the tournament has drifted past it by the time the
// poller runs, the transition is discarded.
type ScheduledTransition struct {
	ID           int       `json:"id" db:"id"`
	TournamentID int       `json:"tournament_id" db:"tournament_id"`
	FromRound    Round     `json:"from_round" db:"from_round"`
	ToRound      Round     `json:"to_round" db:"to_round"`
	ScheduledAt  time.Time `json:"scheduled_at" db:"scheduled_at"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// Due reports whether the transition should be applied at the given instant.
func (t *ScheduledTransition) Due(now time.Time) bool {
	return !t.ScheduledAt.After(now)
}
