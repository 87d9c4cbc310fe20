package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hoopshq/madness-pool/models"
	"github.com/hoopshq/madness-pool/repositories"
)

const eventMatchUpdated = "MATCH_UPDATED"

type MatchService interface {
	ListByTournament(ctx context.Context, tournamentID int, round *models.Round, region *string) ([]*models.Match, error)
	// RecordResult applies an admin result patch to a match, marks the loser
	// eliminated once the match completes, and triggers a rescore.
	RecordResult(ctx context.Context, matchID int, patch models.MatchResultPatch) (*models.Match, error)
}

type matchService struct {
	matchRepo    repositories.MatchRepository
	teamRepo     repositories.TeamRepository
	tx           repositories.TxManager
	scoreService ScoreService
	broadcaster  Broadcaster
	logger       *slog.Logger
}

func NewMatchService(
	matchRepo repositories.MatchRepository,
	teamRepo repositories.TeamRepository,
	tx repositories.TxManager,
	scoreService ScoreService,
	broadcaster Broadcaster,
	logger *slog.Logger,
) MatchService {
	return &matchService{
		matchRepo:    matchRepo,
		teamRepo:     teamRepo,
		tx:           tx,
		scoreService: scoreService,
		broadcaster:  broadcaster,
		logger:       logger,
	}
}

func (s *matchService) ListByTournament(ctx context.Context, tournamentID int, round *models.Round, region *string) ([]*models.Match, error) {
	return s.matchRepo.ListByTournament(ctx, tournamentID, round, region)
}

func (s *matchService) RecordResult(ctx context.Context, matchID int, patch models.MatchResultPatch) (*models.Match, error) {
	match, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, err
	}
	if match.Completed {
		return nil, ErrMatchAlreadyCompleted
	}
	if !match.Decidable() {
		return nil, ErrMatchNotDecidable
	}
	if patch.WinnerID != nil && !match.HasTeam(*patch.WinnerID) {
		return nil, ErrWinnerNotInMatch
	}
	completing := patch.Completed != nil && *patch.Completed
	if completing && patch.WinnerID == nil && match.WinnerID == nil {
		return nil, fmt.Errorf("%w: cannot complete a match without a winner", ErrValidationFailed)
	}

	err = s.tx.WithTx(ctx, func(exec repositories.SQLExecutor) error {
		if err := s.matchRepo.ApplyResult(ctx, exec, matchID, patch); err != nil {
			return err
		}
		if !completing {
			return nil
		}
		// Uniform elimination: losing any completed match knocks the team out.
		winnerID := match.WinnerID
		if patch.WinnerID != nil {
			winnerID = patch.WinnerID
		}
		loserID := match.Team1ID
		if *winnerID == *match.Team1ID {
			loserID = match.Team2ID
		}
		return s.teamRepo.SetEliminated(ctx, exec, *loserID, true)
	})
	if err != nil {
		return nil, err
	}

	updated, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		return nil, err
	}

	if completing {
		if err := s.scoreService.Recalculate(ctx, match.TournamentID); err != nil {
			// The result is recorded; a failed rescore is recoverable by the
			// next recalculation, so log and carry on.
			s.logger.Error("rescore after match result failed",
				slog.Int("match_id", matchID),
				slog.Int("tournament_id", match.TournamentID),
				slog.Any("error", err))
		}
	}
	if s.broadcaster != nil {
		s.broadcaster.Broadcast(match.TournamentID, eventMatchUpdated, updated)
	}
	return updated, nil
}
