package models

import "time"

// Tournament is a single year's pool. CurrentRound is mutated only by the
// transition service; every other field is set at creation and rarely touched.
type Tournament struct {
	ID            int       `json:"id" db:"id"`
	Name          string    `json:"name" db:"name"`
	Year          int       `json:"year" db:"year"`
	EntryFeeCents int       `json:"entry_fee_cents" db:"entry_fee_cents"`
	CurrentRound  Round     `json:"current_round" db:"current_round"`
	Regions       []string  `json:"regions" db:"regions"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`

	Participants []Participant `json:"participants,omitempty" db:"-"`
	Matches      []Match       `json:"matches,omitempty" db:"-"`
}
