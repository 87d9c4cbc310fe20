package models

import (
	"encoding/json"
	"fmt"
)

// Round is the ordered tournament stage. The zero value is Pre-Tournament;
// playable rounds carry ranks 1 through 6 which double as the round column in
// the matches table.
type Round int

const (
	RoundPreTournament Round = iota
	RoundOf64
	RoundOf32
	RoundSweet16
	RoundElite8
	RoundFinalFour
	RoundChampionship
)

var roundNames = [...]string{
	RoundPreTournament: "Pre-Tournament",
	RoundOf64:          "Round of 64",
	RoundOf32:          "Round of 32",
	RoundSweet16:       "Sweet 16",
	RoundElite8:        "Elite 8",
	RoundFinalFour:     "Final Four",
	RoundChampionship:  "Championship",
}

// roundPoints is the base award for a correct pick in each playable round.
var roundPoints = [...]int{
	RoundOf64:         1,
	RoundOf32:         2,
	RoundSweet16:      4,
	RoundElite8:       8,
	RoundFinalFour:    15,
	RoundChampionship: 25,
}

func (r Round) Valid() bool {
	return r >= RoundPreTournament && r <= RoundChampionship
}

func (r Round) String() string {
	if !r.Valid() {
		return fmt.Sprintf("Round(%d)", int(r))
	}
	return roundNames[r]
}

// ParseRound converts a stored or user-supplied round name to its enum value.
// This is the only place round names are interpreted.
func ParseRound(name string) (Round, error) {
	for r, n := range roundNames {
		if n == name {
			return Round(r), nil
		}
	}
	return 0, fmt.Errorf("unknown round name %q", name)
}

// Next returns the following round. ok is false for Championship, which is
// terminal, and for invalid values.
func (r Round) Next() (next Round, ok bool) {
	if !r.Valid() || r == RoundChampionship {
		return 0, false
	}
	return r + 1, true
}

// BasePoints returns the point value of a correct pick in this round.
// Pre-Tournament has no matches and scores zero.
func (r Round) BasePoints() int {
	if r < RoundOf64 || r > RoundChampionship {
		return 0
	}
	return roundPoints[r]
}

func (r Round) MarshalJSON() ([]byte, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("cannot marshal invalid round %d", int(r))
	}
	return json.Marshal(r.String())
}

func (r *Round) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	parsed, err := ParseRound(name)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}
