package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hoopshq/madness-pool/models"
)

type scoreFixture struct {
	service      ScoreService
	participants *fakeParticipantRepo
	matchPicks   *fakeMatchPickRepo
	prePicks     *fakePrePickRepo
	matches      *fakeMatchRepo
	broadcaster  *spyBroadcaster
}

func newScoreFixture(
	t *testing.T,
	tournament *models.Tournament,
	teams []*models.Team,
	matches []*models.Match,
	participants []*models.Participant,
	matchPicks []*models.MatchPick,
	prePicks []*models.PreTournamentPick,
) *scoreFixture {
	t.Helper()
	tournamentRepo := newFakeTournamentRepo(tournament)
	teamRepo := newFakeTeamRepo(teams...)
	matchRepo := newFakeMatchRepo(matches...)
	participantRepo := newFakeParticipantRepo(participants...)
	matchPickRepo := newFakeMatchPickRepo(matchPicks...)
	prePickRepo := newFakePrePickRepo(prePicks...)
	broadcaster := &spyBroadcaster{}

	service := NewScoreService(
		tournamentRepo, teamRepo, matchRepo, participantRepo,
		matchPickRepo, prePickRepo, passThroughTx{}, broadcaster, testLogger)

	return &scoreFixture{
		service:      service,
		participants: participantRepo,
		matchPicks:   matchPickRepo,
		prePicks:     prePickRepo,
		matches:      matchRepo,
		broadcaster:  broadcaster,
	}
}

func decided(id int, round models.Round, region string, slot, team1, team2, winner int) *models.Match {
	return &models.Match{
		ID:           id,
		TournamentID: 1,
		Round:        round,
		Region:       region,
		Slot:         slot,
		Team1ID:      &team1,
		Team2ID:      &team2,
		WinnerID:     &winner,
		Completed:    true,
	}
}

func TestRecalculate(t *testing.T) {
	ctx := context.Background()
	tournament := testTournament(models.RoundOf32)

	// Team 112 is a 12 seed that won its Round of 64 game and its Round of 32
	// game; team 101 is the 1 seed cruising along.
	teams := []*models.Team{
		{ID: 101, TournamentID: 1, Name: "East 1", Seed: 1, Region: "East"},
		{ID: 105, TournamentID: 1, Name: "East 5", Seed: 5, Region: "East"},
		{ID: 112, TournamentID: 1, Name: "East 12", Seed: 12, Region: "East"},
		{ID: 116, TournamentID: 1, Name: "East 16", Seed: 16, Region: "East"},
	}
	matches := []*models.Match{
		decided(1, models.RoundOf64, "East", 1, 101, 116, 101),
		decided(2, models.RoundOf64, "East", 3, 105, 112, 112),
		decided(3, models.RoundOf32, "East", 1, 101, 112, 112),
	}

	t.Run("combines round picks and cinderella bonus", func(t *testing.T) {
		participant := &models.Participant{ID: 1, TournamentID: 1, Name: "Dana"}
		picks := []*models.MatchPick{
			{ID: 1, ParticipantID: 1, MatchID: 1, TeamID: 101}, // correct, 1pt
			{ID: 2, ParticipantID: 1, MatchID: 2, TeamID: 112}, // correct, 1pt
			{ID: 3, ParticipantID: 1, MatchID: 3, TeamID: 101}, // wrong
		}
		prePick := &models.PreTournamentPick{
			ParticipantID: 1,
			FinalFourIDs:  []int{101, 105, 112, 116},
			FinalsIDs:     []int{101, 112},
			ChampionID:    101,
			CinderellaIDs: []int{112, 116},
		}
		f := newScoreFixture(t, tournament, teams, matches,
			[]*models.Participant{participant}, picks, []*models.PreTournamentPick{prePick})

		require.NoError(t, f.service.Recalculate(ctx, 1))

		// Round ledger: 2. Fixed awards: none yet. Cinderella: team 112 won a
		// Round of 64 game (2x1) and a Round of 32 game (2x2) = 6.
		stored, err := f.participants.GetByID(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, 8, stored.TotalScore)

		storedPicks, err := f.matchPicks.ListByParticipant(ctx, 1)
		require.NoError(t, err)
		require.Len(t, storedPicks, 3)
		assert.True(t, storedPicks[0].Correct)
		assert.Equal(t, 1, storedPicks[0].RoundScore)
		assert.False(t, storedPicks[2].Correct)
		assert.Zero(t, storedPicks[2].RoundScore)

		storedPre, err := f.prePicks.GetByParticipant(ctx, 1)
		require.NoError(t, err)
		assert.Zero(t, storedPre.Score)
		assert.Equal(t, 6, storedPre.CinderellaScore)

		assert.Contains(t, f.broadcaster.sent(), "SCORES_UPDATED")
	})

	t.Run("recalculation is idempotent", func(t *testing.T) {
		participant := &models.Participant{ID: 1, TournamentID: 1, Name: "Dana"}
		picks := []*models.MatchPick{
			{ID: 1, ParticipantID: 1, MatchID: 1, TeamID: 101},
		}
		f := newScoreFixture(t, tournament, teams, matches,
			[]*models.Participant{participant}, picks, nil)

		require.NoError(t, f.service.Recalculate(ctx, 1))
		first, err := f.participants.GetByID(ctx, 1)
		require.NoError(t, err)

		require.NoError(t, f.service.Recalculate(ctx, 1))
		second, err := f.participants.GetByID(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, first.TotalScore, second.TotalScore)
	})

	t.Run("overwrites stale caches after a result change", func(t *testing.T) {
		participant := &models.Participant{ID: 1, TournamentID: 1, Name: "Dana", TotalScore: 99}
		picks := []*models.MatchPick{
			{ID: 1, ParticipantID: 1, MatchID: 3, TeamID: 101, Correct: true, RoundScore: 2},
		}
		f := newScoreFixture(t, tournament, teams, matches,
			[]*models.Participant{participant}, picks, nil)

		require.NoError(t, f.service.Recalculate(ctx, 1))

		stored, err := f.participants.GetByID(ctx, 1)
		require.NoError(t, err)
		assert.Zero(t, stored.TotalScore, "stale total replaced, not accumulated")

		storedPicks, err := f.matchPicks.ListByParticipant(ctx, 1)
		require.NoError(t, err)
		assert.False(t, storedPicks[0].Correct)
		assert.Zero(t, storedPicks[0].RoundScore)
	})

	t.Run("participant without picks scores zero", func(t *testing.T) {
		participant := &models.Participant{ID: 1, TournamentID: 1, Name: "Newcomer", TotalScore: 5}
		f := newScoreFixture(t, tournament, teams, matches,
			[]*models.Participant{participant}, nil, nil)

		require.NoError(t, f.service.Recalculate(ctx, 1))
		stored, err := f.participants.GetByID(ctx, 1)
		require.NoError(t, err)
		assert.Zero(t, stored.TotalScore)
	})

	t.Run("scores every participant", func(t *testing.T) {
		participants := []*models.Participant{
			{ID: 1, TournamentID: 1, Name: "Dana"},
			{ID: 2, TournamentID: 1, Name: "Sam"},
			{ID: 3, TournamentID: 1, Name: "Lee"},
		}
		picks := []*models.MatchPick{
			{ID: 1, ParticipantID: 1, MatchID: 1, TeamID: 101},
			{ID: 2, ParticipantID: 2, MatchID: 3, TeamID: 112},
			{ID: 3, ParticipantID: 3, MatchID: 1, TeamID: 116},
		}
		f := newScoreFixture(t, tournament, teams, matches, participants, picks, nil)

		require.NoError(t, f.service.Recalculate(ctx, 1))

		wantTotals := map[int]int{1: 1, 2: 2, 3: 0}
		for id, want := range wantTotals {
			stored, err := f.participants.GetByID(ctx, id)
			require.NoError(t, err)
			assert.Equal(t, want, stored.TotalScore, "participant %d", id)
		}
	})

	t.Run("unknown tournament", func(t *testing.T) {
		f := newScoreFixture(t, tournament, nil, nil, nil, nil, nil)
		assert.ErrorIs(t, f.service.Recalculate(ctx, 42), ErrTournamentNotFound)
	})

	t.Run("championship pays the fixed awards", func(t *testing.T) {
		finalMatches := []*models.Match{
			decided(10, models.RoundFinalFour, models.RegionNational, 1, 101, 105, 101),
			decided(11, models.RoundFinalFour, models.RegionNational, 2, 112, 116, 112),
			decided(12, models.RoundChampionship, models.RegionNational, 1, 101, 112, 101),
		}
		participant := &models.Participant{ID: 1, TournamentID: 1, Name: "Dana"}
		prePick := &models.PreTournamentPick{
			ParticipantID: 1,
			FinalFourIDs:  []int{101, 105, 112, 116},
			FinalsIDs:     []int{101, 112},
			ChampionID:    101,
			CinderellaIDs: []int{112, 116},
		}
		f := newScoreFixture(t, testTournament(models.RoundChampionship), teams, finalMatches,
			[]*models.Participant{participant}, nil, []*models.PreTournamentPick{prePick})

		require.NoError(t, f.service.Recalculate(ctx, 1))

		// Fixed awards: 4x5 + 2x10 + 25 = 65.
		// Cinderella: 112 won a Final Four game, 2x15 = 30.
		storedPre, err := f.prePicks.GetByParticipant(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, 65, storedPre.Score)
		assert.Equal(t, 30, storedPre.CinderellaScore)

		stored, err := f.participants.GetByID(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, 95, stored.TotalScore)
	})
}
