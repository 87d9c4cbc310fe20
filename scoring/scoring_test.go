package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hoopshq/madness-pool/models"
)

func intPtr(v int) *int { return &v }

func decidedMatch(round models.Round, team1, team2, winner int) *models.Match {
	return &models.Match{
		Round:     round,
		Team1ID:   &team1,
		Team2ID:   &team2,
		WinnerID:  &winner,
		Completed: true,
	}
}

func TestScoreMatchPick(t *testing.T) {
	pick := &models.MatchPick{TeamID: 10}

	tests := []struct {
		name  string
		match *models.Match
		want  MatchPickResult
	}{
		{
			name:  "correct pick earns round base points",
			match: decidedMatch(models.RoundSweet16, 10, 20, 10),
			want:  MatchPickResult{Correct: true, Points: 4},
		},
		{
			name:  "wrong pick scores zero",
			match: decidedMatch(models.RoundSweet16, 10, 20, 20),
			want:  MatchPickResult{},
		},
		{
			name:  "undecided match scores zero",
			match: &models.Match{Round: models.RoundSweet16, Team1ID: intPtr(10), Team2ID: intPtr(20)},
			want:  MatchPickResult{},
		},
		{
			name:  "missing match scores zero",
			match: nil,
			want:  MatchPickResult{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ScoreMatchPick(pick, tt.match))
		})
	}
}

func TestScoreMatchPickPointsGrowByRound(t *testing.T) {
	pick := &models.MatchPick{TeamID: 10}
	wantByRound := map[models.Round]int{
		models.RoundOf64:         1,
		models.RoundOf32:         2,
		models.RoundSweet16:      4,
		models.RoundElite8:       8,
		models.RoundFinalFour:    15,
		models.RoundChampionship: 25,
	}
	for round, want := range wantByRound {
		got := ScoreMatchPick(pick, decidedMatch(round, 10, 20, 10))
		assert.Equal(t, want, got.Points, "round %s", round)
	}
}

func TestScorePreTournament(t *testing.T) {
	// Teams 1-4 reach the Final Four; 1 and 3 reach the Championship; 1 wins.
	matches := []*models.Match{
		decidedMatch(models.RoundFinalFour, 1, 2, 1),
		decidedMatch(models.RoundFinalFour, 3, 4, 3),
		decidedMatch(models.RoundChampionship, 1, 3, 1),
	}

	t.Run("perfect slate", func(t *testing.T) {
		pick := &models.PreTournamentPick{
			FinalFourIDs: []int{1, 2, 3, 4},
			FinalsIDs:    []int{1, 3},
			ChampionID:   1,
		}
		// 4x5 + 2x10 + 25
		assert.Equal(t, 65, ScorePreTournament(pick, matches))
	})

	t.Run("partial hits", func(t *testing.T) {
		pick := &models.PreTournamentPick{
			FinalFourIDs: []int{1, 9, 10, 11},
			FinalsIDs:    []int{3, 9},
			ChampionID:   9,
		}
		assert.Equal(t, 15, ScorePreTournament(pick, matches))
	})

	t.Run("champion needs a decided championship", func(t *testing.T) {
		undecided := []*models.Match{
			decidedMatch(models.RoundFinalFour, 1, 2, 1),
			{Round: models.RoundChampionship, Team1ID: intPtr(1), Team2ID: intPtr(3)},
		}
		pick := &models.PreTournamentPick{
			FinalFourIDs: []int{1},
			FinalsIDs:    []int{1},
			ChampionID:   1,
		}
		// Reaching awards apply, the champion award does not.
		assert.Equal(t, 15, ScorePreTournament(pick, undecided))
	})

	t.Run("nil pick", func(t *testing.T) {
		assert.Zero(t, ScorePreTournament(nil, matches))
	})
}

func TestScoreCinderella(t *testing.T) {
	teamsByID := map[int]*models.Team{
		12: {ID: 12, Seed: 12},
		15: {ID: 15, Seed: 15},
		3:  {ID: 3, Seed: 3},
	}
	// Team 12 wins a Round of 64 and a Round of 32 match.
	matches := []*models.Match{
		decidedMatch(models.RoundOf64, 12, 5, 12),
		decidedMatch(models.RoundOf32, 12, 4, 12),
		decidedMatch(models.RoundOf64, 15, 2, 2),
	}

	t.Run("doubled base points per win", func(t *testing.T) {
		pick := &models.PreTournamentPick{CinderellaIDs: []int{12, 15}}
		// 2x1 + 2x2 for team 12, nothing for team 15's loss.
		assert.Equal(t, 6, ScoreCinderella(pick, matches, teamsByID))
	})

	t.Run("ineligible seed is worth nothing", func(t *testing.T) {
		pick := &models.PreTournamentPick{CinderellaIDs: []int{3}}
		winning := []*models.Match{decidedMatch(models.RoundOf64, 3, 14, 3)}
		assert.Zero(t, ScoreCinderella(pick, winning, teamsByID))
	})

	t.Run("unknown team is worth nothing", func(t *testing.T) {
		pick := &models.PreTournamentPick{CinderellaIDs: []int{99}}
		assert.Zero(t, ScoreCinderella(pick, matches, teamsByID))
	})

	t.Run("idempotent over unchanged state", func(t *testing.T) {
		pick := &models.PreTournamentPick{CinderellaIDs: []int{12, 15}}
		first := ScoreCinderella(pick, matches, teamsByID)
		assert.Equal(t, first, ScoreCinderella(pick, matches, teamsByID))
	})
}

func TestTotalCombinesLedgers(t *testing.T) {
	// A cinderella win can also be a correct round pick: one point in the
	// round ledger, doubled bonus in the cinderella ledger, both counted.
	assert.Equal(t, 9, Total(3, 0, 6))
	assert.Zero(t, Total(0, 0, 0))
}
