package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hoopshq/madness-pool/models"
	"github.com/hoopshq/madness-pool/repositories"
	"github.com/hoopshq/madness-pool/scoring"
	"golang.org/x/sync/errgroup"
)

// Broadcaster pushes events to websocket watchers of a tournament. Satisfied
// by *realtime.Hub.
type Broadcaster interface {
	Broadcast(tournamentID int, eventType string, payload interface{})
}

// scoreWorkers caps how many participants are rescored concurrently. Each
// worker holds one transaction.
const scoreWorkers = 8

// EventScoresUpdated mirrors realtime.EventScoresUpdated without importing
// the realtime package into the service layer.
const eventScoresUpdated = "SCORES_UPDATED"

type ScoreService interface {
	// Recalculate recomputes every cached score of the tournament from match
	// state. Idempotent: rerunning against unchanged state writes identical
	// values. Participants are scored independently and concurrently; each
	// participant's updates commit atomically.
	Recalculate(ctx context.Context, tournamentID int) error
}

type scoreService struct {
	tournamentRepo  repositories.TournamentRepository
	teamRepo        repositories.TeamRepository
	matchRepo       repositories.MatchRepository
	participantRepo repositories.ParticipantRepository
	matchPickRepo   repositories.MatchPickRepository
	prePickRepo     repositories.PreTournamentPickRepository
	tx              repositories.TxManager
	broadcaster     Broadcaster
	logger          *slog.Logger
}

func NewScoreService(
	tournamentRepo repositories.TournamentRepository,
	teamRepo repositories.TeamRepository,
	matchRepo repositories.MatchRepository,
	participantRepo repositories.ParticipantRepository,
	matchPickRepo repositories.MatchPickRepository,
	prePickRepo repositories.PreTournamentPickRepository,
	tx repositories.TxManager,
	broadcaster Broadcaster,
	logger *slog.Logger,
) ScoreService {
	return &scoreService{
		tournamentRepo:  tournamentRepo,
		teamRepo:        teamRepo,
		matchRepo:       matchRepo,
		participantRepo: participantRepo,
		matchPickRepo:   matchPickRepo,
		prePickRepo:     prePickRepo,
		tx:              tx,
		broadcaster:     broadcaster,
		logger:          logger,
	}
}

func (s *scoreService) Recalculate(ctx context.Context, tournamentID int) error {
	tournament, err := s.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		return mapTournamentRepoError(err)
	}

	matches, err := s.matchRepo.ListByTournament(ctx, tournamentID, nil, nil)
	if err != nil {
		return fmt.Errorf("failed to list matches for tournament %d: %w", tournamentID, err)
	}
	teams, err := s.teamRepo.ListByTournament(ctx, tournamentID, nil)
	if err != nil {
		return fmt.Errorf("failed to list teams for tournament %d: %w", tournamentID, err)
	}
	participants, err := s.participantRepo.ListByTournament(ctx, tournamentID)
	if err != nil {
		return fmt.Errorf("failed to list participants for tournament %d: %w", tournamentID, err)
	}

	matchesByID := make(map[int]*models.Match, len(matches))
	for _, m := range matches {
		matchesByID[m.ID] = m
	}
	teamsByID := make(map[int]*models.Team, len(teams))
	for _, t := range teams {
		teamsByID[t.ID] = t
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(scoreWorkers)
	for _, p := range participants {
		p := p
		g.Go(func() error {
			if err := s.recalculateParticipant(gCtx, p, matches, matchesByID, teamsByID); err != nil {
				return fmt.Errorf("participant %d: %w", p.ID, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	s.logger.Info("scores recalculated",
		slog.Int("tournament_id", tournamentID),
		slog.Int("participants", len(participants)))
	if s.broadcaster != nil {
		s.broadcaster.Broadcast(tournament.ID, eventScoresUpdated, nil)
	}
	return nil
}

// recalculateParticipant recomputes one participant's ledgers and persists
// them in a single transaction so the totals never go out of sync with the
// per-pick caches.
func (s *scoreService) recalculateParticipant(
	ctx context.Context,
	participant *models.Participant,
	matches []*models.Match,
	matchesByID map[int]*models.Match,
	teamsByID map[int]*models.Team,
) error {
	picks, err := s.matchPickRepo.ListByParticipant(ctx, participant.ID)
	if err != nil {
		return fmt.Errorf("failed to list match picks: %w", err)
	}

	prePick, err := s.prePickRepo.GetByParticipant(ctx, participant.ID)
	if err != nil {
		// No pre-tournament pick simply contributes zero.
		if !errors.Is(err, repositories.ErrPreTournamentPickNotFound) {
			return fmt.Errorf("failed to load pre-tournament pick: %w", err)
		}
		prePick = nil
	}

	matchPoints := 0
	results := make([]scoring.MatchPickResult, len(picks))
	for i, pick := range picks {
		// A pick whose match is missing scores zero; partially seeded data is
		// tolerated, not fatal.
		results[i] = scoring.ScoreMatchPick(pick, matchesByID[pick.MatchID])
		matchPoints += results[i].Points
	}

	preScore := scoring.ScorePreTournament(prePick, matches)
	cinderellaScore := scoring.ScoreCinderella(prePick, matches, teamsByID)
	total := scoring.Total(matchPoints, preScore, cinderellaScore)

	return s.tx.WithTx(ctx, func(exec repositories.SQLExecutor) error {
		for i, pick := range picks {
			if err := s.matchPickRepo.UpdateScore(ctx, exec, pick.ID, results[i].Correct, results[i].Points); err != nil {
				return err
			}
		}
		if prePick != nil {
			if err := s.prePickRepo.UpdateScores(ctx, exec, prePick.ID, preScore, cinderellaScore); err != nil {
				return err
			}
		}
		return s.participantRepo.UpdateTotalScore(ctx, exec, participant.ID, total)
	})
}
