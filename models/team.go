package models

import "time"

const (
	// Seeds outside this range never qualify for the cinderella bonus.
	CinderellaMinSeed = 11
	CinderellaMaxSeed = 16

	TeamsPerRegion = 16
)

type Team struct {
	ID           int       `json:"id" db:"id"`
	TournamentID int       `json:"tournament_id" db:"tournament_id"`
	Name         string    `json:"name" db:"name"`
	Seed         int       `json:"seed" db:"seed"`
	Region       string    `json:"region" db:"region"`
	Eliminated   bool      `json:"eliminated" db:"eliminated"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`

	LogoKey *string `json:"-" db:"logo_key"`
	LogoURL *string `json:"logo_url,omitempty" db:"-"`
}

// CinderellaEligible reports whether the team's seed qualifies it for the
// doubled cinderella bonus.
func (t *Team) CinderellaEligible() bool {
	return t.Seed >= CinderellaMinSeed && t.Seed <= CinderellaMaxSeed
}
