package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hoopshq/madness-pool/brackets"
	"github.com/hoopshq/madness-pool/models"
	"github.com/hoopshq/madness-pool/repositories"
)

// BracketService wraps the pure generator in brackets with persistence. The
// transition service calls GenerateFirstRoundTx inside its own transaction;
// admins drive later rounds through GenerateNextRound.
type BracketService interface {
	GenerateFirstRoundTx(ctx context.Context, exec repositories.SQLExecutor, tournament *models.Tournament) ([]*models.Match, error)
	GenerateNextRound(ctx context.Context, tournamentID int, fromRound models.Round) ([]*models.Match, error)
}

type bracketService struct {
	teamRepo       repositories.TeamRepository
	matchRepo      repositories.MatchRepository
	tournamentRepo repositories.TournamentRepository
	tx             repositories.TxManager
	logger         *slog.Logger
}

func NewBracketService(
	teamRepo repositories.TeamRepository,
	matchRepo repositories.MatchRepository,
	tournamentRepo repositories.TournamentRepository,
	tx repositories.TxManager,
	logger *slog.Logger,
) BracketService {
	return &bracketService{
		teamRepo:       teamRepo,
		matchRepo:      matchRepo,
		tournamentRepo: tournamentRepo,
		tx:             tx,
		logger:         logger,
	}
}

func (s *bracketService) GenerateFirstRoundTx(ctx context.Context, exec repositories.SQLExecutor, tournament *models.Tournament) ([]*models.Match, error) {
	teams, err := s.teamRepo.ListByTournament(ctx, tournament.ID, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams for tournament %d: %w", tournament.ID, err)
	}

	matches, err := brackets.FirstRound(tournament.ID, tournament.Regions, teams)
	if err != nil {
		return nil, err
	}

	for _, match := range matches {
		if err := s.matchRepo.Create(ctx, exec, match); err != nil {
			return nil, fmt.Errorf("failed to create match %s: %w", match.PositionLabel(), err)
		}
	}
	s.logger.Info("generated first round",
		slog.Int("tournament_id", tournament.ID),
		slog.Int("matches", len(matches)))
	return matches, nil
}

func (s *bracketService) GenerateNextRound(ctx context.Context, tournamentID int, fromRound models.Round) ([]*models.Match, error) {
	if _, err := s.tournamentRepo.GetByID(ctx, tournamentID); err != nil {
		return nil, mapTournamentRepoError(err)
	}

	// Generating the same target round twice would double the bracket, so
	// refuse when any match for it is already persisted.
	if toRound, ok := fromRound.Next(); ok {
		existing, err := s.matchRepo.ListByTournament(ctx, tournamentID, &toRound, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to list %s matches for tournament %d: %w", toRound, tournamentID, err)
		}
		if len(existing) > 0 {
			return nil, ErrRoundAlreadyGenerated
		}
	}

	completed, err := s.matchRepo.ListByTournament(ctx, tournamentID, &fromRound, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s matches for tournament %d: %w", fromRound, tournamentID, err)
	}

	matches, err := brackets.NextRound(completed, fromRound)
	if err != nil {
		return nil, err
	}

	err = s.tx.WithTx(ctx, func(exec repositories.SQLExecutor) error {
		for _, match := range matches {
			if err := s.matchRepo.Create(ctx, exec, match); err != nil {
				if errors.Is(err, repositories.ErrMatchSlotConflict) {
					return ErrRoundAlreadyGenerated
				}
				return fmt.Errorf("failed to create match %s: %w", match.PositionLabel(), err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("generated next round",
		slog.Int("tournament_id", tournamentID),
		slog.String("from", fromRound.String()),
		slog.Int("matches", len(matches)))
	return matches, nil
}

// IsBracketError reports whether err comes from the pure generator rather
// than persistence; handlers map these to 400-class responses.
func IsBracketError(err error) bool {
	return errors.Is(err, brackets.ErrInvalidSeeding) ||
		errors.Is(err, brackets.ErrIncompleteRound) ||
		errors.Is(err, brackets.ErrAmbiguousPairing)
}
