package brackets

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hoopshq/madness-pool/models"
)

var testRegions = []string{"East", "West", "South", "Midwest"}

// fullField builds a 64-team field: region r, seed s gets ID r*100+s.
func fullField() []*models.Team {
	var teams []*models.Team
	for r, region := range testRegions {
		for seed := 1; seed <= models.TeamsPerRegion; seed++ {
			teams = append(teams, &models.Team{
				ID:     (r+1)*100 + seed,
				Name:   fmt.Sprintf("%s %d", region, seed),
				Seed:   seed,
				Region: region,
			})
		}
	}
	return teams
}

func seedOf(teamID int) int { return teamID % 100 }

func TestFirstRoundFullBracket(t *testing.T) {
	matches, err := FirstRound(1, testRegions, fullField())
	require.NoError(t, err)
	require.Len(t, matches, 32)

	perRegion := make(map[string]int)
	for _, m := range matches {
		perRegion[m.Region]++
		assert.Equal(t, models.RoundOf64, m.Round)
		require.NotNil(t, m.Team1ID)
		require.NotNil(t, m.Team2ID)
		// Canonical bracket: every first-round pairing's seeds sum to 17.
		assert.Equal(t, 17, seedOf(*m.Team1ID)+seedOf(*m.Team2ID),
			"match %s pairs seeds %d and %d", m.PositionLabel(), seedOf(*m.Team1ID), seedOf(*m.Team2ID))
	}
	for _, region := range testRegions {
		assert.Equal(t, 8, perRegion[region])
	}
}

func TestFirstRoundSlotOrder(t *testing.T) {
	matches, err := FirstRound(1, testRegions, fullField())
	require.NoError(t, err)

	// Slot 1 of every region is the 1-16 game, slot 8 the 2-15 game.
	for _, m := range matches {
		switch m.Slot {
		case 1:
			assert.Equal(t, 1, seedOf(*m.Team1ID))
			assert.Equal(t, 16, seedOf(*m.Team2ID))
		case 8:
			assert.Equal(t, 2, seedOf(*m.Team1ID))
			assert.Equal(t, 15, seedOf(*m.Team2ID))
		}
	}
}

func TestFirstRoundRejectsBadSeeding(t *testing.T) {
	t.Run("missing team", func(t *testing.T) {
		teams := fullField()
		_, err := FirstRound(1, testRegions, teams[:len(teams)-1])
		assert.ErrorIs(t, err, ErrInvalidSeeding)
	})

	t.Run("duplicate seed", func(t *testing.T) {
		teams := fullField()
		teams[1].Seed = teams[0].Seed
		_, err := FirstRound(1, testRegions, teams)
		assert.ErrorIs(t, err, ErrInvalidSeeding)
	})

	t.Run("seed out of range", func(t *testing.T) {
		teams := fullField()
		teams[0].Seed = 17
		_, err := FirstRound(1, testRegions, teams)
		assert.ErrorIs(t, err, ErrInvalidSeeding)
	})

	t.Run("unknown region", func(t *testing.T) {
		teams := fullField()
		teams[0].Region = "North"
		_, err := FirstRound(1, testRegions, teams)
		assert.ErrorIs(t, err, ErrInvalidSeeding)
	})

	t.Run("no regions", func(t *testing.T) {
		_, err := FirstRound(1, nil, fullField())
		assert.ErrorIs(t, err, ErrInvalidSeeding)
	})
}

// completeAll records every match's Team1 as winner.
func completeAll(matches []*models.Match) []*models.Match {
	for _, m := range matches {
		w := *m.Team1ID
		m.WinnerID = &w
		m.Completed = true
	}
	return matches
}

func TestNextRoundPairsAdjacentSlots(t *testing.T) {
	first, err := FirstRound(1, testRegions, fullField())
	require.NoError(t, err)
	completeAll(first)

	second, err := NextRound(first, models.RoundOf64)
	require.NoError(t, err)
	require.Len(t, second, 16)

	for _, m := range second {
		assert.Equal(t, models.RoundOf32, m.Round)
	}

	// When favorites win, slot 1 of the Round of 32 is seed 1 against the 8-9
	// winner in every region.
	for _, m := range second {
		if m.Slot == 1 {
			assert.Equal(t, 1, seedOf(*m.Team1ID))
			assert.Equal(t, 8, seedOf(*m.Team2ID))
		}
	}
}

func TestNextRoundRequiresDecidedMatches(t *testing.T) {
	first, err := FirstRound(1, testRegions, fullField())
	require.NoError(t, err)
	completeAll(first)
	first[5].WinnerID = nil
	first[5].Completed = false

	_, err = NextRound(first, models.RoundOf64)
	assert.ErrorIs(t, err, ErrIncompleteRound)
}

func TestNextRoundRejectsWrongRound(t *testing.T) {
	first, err := FirstRound(1, testRegions, fullField())
	require.NoError(t, err)
	completeAll(first)

	_, err = NextRound(first, models.RoundOf32)
	assert.ErrorIs(t, err, ErrAmbiguousPairing)
}

func TestNextRoundRejectsEmptyInput(t *testing.T) {
	_, err := NextRound(nil, models.RoundOf64)
	assert.ErrorIs(t, err, ErrIncompleteRound)
}

// elite8 fabricates one decided Elite 8 match per region; winner is the
// region's 1 seed.
func elite8(regions []string) []*models.Match {
	var matches []*models.Match
	for r, region := range regions {
		t1 := (r+1)*100 + 1
		t2 := (r+1)*100 + 2
		w := t1
		matches = append(matches, &models.Match{
			TournamentID: 1,
			Round:        models.RoundElite8,
			Region:       region,
			Slot:         1,
			Team1ID:      &t1,
			Team2ID:      &t2,
			WinnerID:     &w,
			Completed:    true,
		})
	}
	return matches
}

func TestNextRoundFinalFourCrossesRegions(t *testing.T) {
	semis, err := NextRound(elite8(testRegions), models.RoundElite8)
	require.NoError(t, err)
	require.Len(t, semis, 2)

	// Region input order decides the pairing: East-West, then South-Midwest.
	assert.Equal(t, models.RegionNational, semis[0].Region)
	assert.Equal(t, 101, *semis[0].Team1ID)
	assert.Equal(t, 201, *semis[0].Team2ID)
	assert.Equal(t, 301, *semis[1].Team1ID)
	assert.Equal(t, 401, *semis[1].Team2ID)
	for _, m := range semis {
		assert.Equal(t, models.RoundFinalFour, m.Round)
	}
}

func TestNextRoundFinalFourNeedsFourRegions(t *testing.T) {
	_, err := NextRound(elite8(testRegions[:3]), models.RoundElite8)
	assert.ErrorIs(t, err, ErrAmbiguousPairing)
}

func TestNextRoundFinalFourRejectsDuplicateRegion(t *testing.T) {
	matches := elite8(testRegions)
	matches[3].Region = matches[0].Region
	_, err := NextRound(matches, models.RoundElite8)
	assert.ErrorIs(t, err, ErrAmbiguousPairing)
}

func TestNextRoundChampionship(t *testing.T) {
	semis, err := NextRound(elite8(testRegions), models.RoundElite8)
	require.NoError(t, err)
	completeAll(semis)

	final, err := NextRound(semis, models.RoundFinalFour)
	require.NoError(t, err)
	require.Len(t, final, 1)
	assert.Equal(t, models.RoundChampionship, final[0].Round)
	assert.Equal(t, models.RegionNational, final[0].Region)
	assert.Equal(t, 101, *final[0].Team1ID)
	assert.Equal(t, 301, *final[0].Team2ID)
}

func TestNextRoundChampionshipIsTerminal(t *testing.T) {
	w := 101
	final := []*models.Match{{
		TournamentID: 1,
		Round:        models.RoundChampionship,
		Region:       models.RegionNational,
		Slot:         1,
		Team1ID:      &w,
		Team2ID:      intPtr(301),
		WinnerID:     &w,
		Completed:    true,
	}}
	_, err := NextRound(final, models.RoundChampionship)
	assert.ErrorIs(t, err, ErrAmbiguousPairing)
}

func TestFullBracketPlaythrough(t *testing.T) {
	matches, err := FirstRound(7, testRegions, fullField())
	require.NoError(t, err)

	wantCounts := []int{16, 8, 4, 2, 1}
	round := models.RoundOf64
	for _, want := range wantCounts {
		completeAll(matches)
		next, err := NextRound(matches, round)
		require.NoError(t, err)
		require.Len(t, next, want)
		for _, m := range next {
			assert.Equal(t, 7, m.TournamentID)
		}
		matches = next
		round, _ = round.Next()
	}
}

func intPtr(v int) *int { return &v }
