package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/hoopshq/madness-pool/models"
	"github.com/hoopshq/madness-pool/repositories"
)

type SubmitMatchPickInput struct {
	MatchID int `json:"match_id"`
	TeamID  int `json:"team_id"`
}

type SubmitPreTournamentPickInput struct {
	FinalFourTeamIDs  []int `json:"final_four_team_ids"`
	FinalsTeamIDs     []int `json:"finals_team_ids"`
	ChampionTeamID    int   `json:"champion_team_id"`
	CinderellaTeamIDs []int `json:"cinderella_team_ids"`
}

// ParticipantPicks bundles everything a participant has submitted.
type ParticipantPicks struct {
	MatchPicks        []*models.MatchPick       `json:"match_picks"`
	PreTournamentPick *models.PreTournamentPick `json:"pre_tournament_pick,omitempty"`
}

type PickService interface {
	// SubmitMatchPick records or replaces the participant's predicted winner
	// for one match. Picks lock the moment the match completes.
	SubmitMatchPick(ctx context.Context, participantID int, input SubmitMatchPickInput) (*models.MatchPick, error)
	// SubmitPreTournamentPick records or replaces the participant's one-time
	// bracket speculation. Only allowed while the tournament is still in
	// Pre-Tournament.
	SubmitPreTournamentPick(ctx context.Context, participantID int, input SubmitPreTournamentPickInput) (*models.PreTournamentPick, error)
	ListForParticipant(ctx context.Context, participantID int) (*ParticipantPicks, error)
	// ListPublicForParticipant serves other people's picks. Hidden until the
	// tournament leaves Pre-Tournament so entries cannot be copied.
	ListPublicForParticipant(ctx context.Context, participantID int) (*ParticipantPicks, error)
}

type pickService struct {
	participantRepo repositories.ParticipantRepository
	tournamentRepo  repositories.TournamentRepository
	matchRepo       repositories.MatchRepository
	teamRepo        repositories.TeamRepository
	matchPickRepo   repositories.MatchPickRepository
	prePickRepo     repositories.PreTournamentPickRepository
	tx              repositories.TxManager
}

func NewPickService(
	participantRepo repositories.ParticipantRepository,
	tournamentRepo repositories.TournamentRepository,
	matchRepo repositories.MatchRepository,
	teamRepo repositories.TeamRepository,
	matchPickRepo repositories.MatchPickRepository,
	prePickRepo repositories.PreTournamentPickRepository,
	tx repositories.TxManager,
) PickService {
	return &pickService{
		participantRepo: participantRepo,
		tournamentRepo:  tournamentRepo,
		matchRepo:       matchRepo,
		teamRepo:        teamRepo,
		matchPickRepo:   matchPickRepo,
		prePickRepo:     prePickRepo,
		tx:              tx,
	}
}

func (s *pickService) SubmitMatchPick(ctx context.Context, participantID int, input SubmitMatchPickInput) (*models.MatchPick, error) {
	participant, err := s.participantRepo.GetByID(ctx, participantID)
	if err != nil {
		return nil, mapParticipantRepoError(err)
	}
	match, err := s.matchRepo.GetByID(ctx, input.MatchID)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, err
	}
	if match.TournamentID != participant.TournamentID {
		return nil, ErrPickWrongTournament
	}
	if match.Completed {
		return nil, ErrPickMatchCompleted
	}
	if !match.HasTeam(input.TeamID) {
		return nil, ErrPickTeamNotInMatch
	}

	pick := &models.MatchPick{
		ParticipantID: participantID,
		MatchID:       input.MatchID,
		TeamID:        input.TeamID,
	}
	err = s.tx.WithTx(ctx, func(exec repositories.SQLExecutor) error {
		return s.matchPickRepo.Upsert(ctx, exec, pick)
	})
	if err != nil {
		return nil, err
	}
	return pick, nil
}

func (s *pickService) SubmitPreTournamentPick(ctx context.Context, participantID int, input SubmitPreTournamentPickInput) (*models.PreTournamentPick, error) {
	participant, err := s.participantRepo.GetByID(ctx, participantID)
	if err != nil {
		return nil, mapParticipantRepoError(err)
	}
	tournament, err := s.tournamentRepo.GetByID(ctx, participant.TournamentID)
	if err != nil {
		return nil, mapTournamentRepoError(err)
	}
	if tournament.CurrentRound != models.RoundPreTournament {
		return nil, ErrPicksLocked
	}

	if len(input.FinalFourTeamIDs) != models.FinalFourPickCount ||
		len(input.FinalsTeamIDs) != models.FinalsPickCount ||
		input.ChampionTeamID == 0 ||
		len(input.CinderellaTeamIDs) != models.CinderellaPickCount {
		return nil, ErrPreTournamentPickShape
	}

	// Cinderella picks must actually be cinderella seeds; the other
	// selections only need to be real teams of this tournament.
	teams, err := s.teamRepo.ListByTournament(ctx, tournament.ID, nil)
	if err != nil {
		return nil, err
	}
	teamsByID := make(map[int]*models.Team, len(teams))
	for _, t := range teams {
		teamsByID[t.ID] = t
	}
	allPicked := make([]int, 0, models.FinalFourPickCount+models.FinalsPickCount+models.CinderellaPickCount+1)
	allPicked = append(allPicked, input.FinalFourTeamIDs...)
	allPicked = append(allPicked, input.FinalsTeamIDs...)
	allPicked = append(allPicked, input.ChampionTeamID)
	allPicked = append(allPicked, input.CinderellaTeamIDs...)
	for _, teamID := range allPicked {
		if teamsByID[teamID] == nil {
			return nil, fmt.Errorf("%w: team %d", ErrTeamNotFound, teamID)
		}
	}
	for _, teamID := range input.CinderellaTeamIDs {
		if !teamsByID[teamID].CinderellaEligible() {
			return nil, fmt.Errorf("%w: %s is seeded %d",
				ErrCinderellaSeedOutOfRange, teamsByID[teamID].Name, teamsByID[teamID].Seed)
		}
	}

	pick := &models.PreTournamentPick{
		ParticipantID: participantID,
		FinalFourIDs:  input.FinalFourTeamIDs,
		FinalsIDs:     input.FinalsTeamIDs,
		ChampionID:    input.ChampionTeamID,
		CinderellaIDs: input.CinderellaTeamIDs,
	}
	err = s.tx.WithTx(ctx, func(exec repositories.SQLExecutor) error {
		return s.prePickRepo.Upsert(ctx, exec, pick)
	})
	if err != nil {
		return nil, err
	}
	return pick, nil
}

func (s *pickService) ListForParticipant(ctx context.Context, participantID int) (*ParticipantPicks, error) {
	if _, err := s.participantRepo.GetByID(ctx, participantID); err != nil {
		return nil, mapParticipantRepoError(err)
	}

	matchPicks, err := s.matchPickRepo.ListByParticipant(ctx, participantID)
	if err != nil {
		return nil, err
	}
	prePick, err := s.prePickRepo.GetByParticipant(ctx, participantID)
	if err != nil && !errors.Is(err, repositories.ErrPreTournamentPickNotFound) {
		return nil, err
	}

	return &ParticipantPicks{
		MatchPicks:        matchPicks,
		PreTournamentPick: prePick,
	}, nil
}

func (s *pickService) ListPublicForParticipant(ctx context.Context, participantID int) (*ParticipantPicks, error) {
	participant, err := s.participantRepo.GetByID(ctx, participantID)
	if err != nil {
		return nil, mapParticipantRepoError(err)
	}
	tournament, err := s.tournamentRepo.GetByID(ctx, participant.TournamentID)
	if err != nil {
		return nil, mapTournamentRepoError(err)
	}
	if tournament.CurrentRound == models.RoundPreTournament {
		return nil, ErrPicksNotVisible
	}
	return s.ListForParticipant(ctx, participantID)
}
