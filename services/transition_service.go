package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hoopshq/madness-pool/models"
	"github.com/hoopshq/madness-pool/repositories"
)

const eventRoundAdvanced = "ROUND_ADVANCED"

type ScheduleTransitionInput struct {
	ToRound     models.Round `json:"to_round"`
	ScheduledAt time.Time    `json:"scheduled_at"`
}

// TransitionService is the round state machine. Rounds only ever advance to
// their immediate successor, either right away or at a scheduled time.
type TransitionService interface {
	Schedule(ctx context.Context, tournamentID int, input ScheduleTransitionInput) (*models.ScheduledTransition, error)
	// Cancel removes the tournament's pending transition; cancelling when
	// none exists is a no-op.
	Cancel(ctx context.Context, tournamentID int) error
	Get(ctx context.Context, tournamentID int) (*models.ScheduledTransition, error)
	// AdvanceImmediately moves the tournament to nextRound without touching
	// the schedule. Entering the Round of 64 generates the first-round
	// bracket; for later rounds the admin generates matches separately.
	AdvanceImmediately(ctx context.Context, tournamentID int, nextRound models.Round) (*models.Tournament, error)
	// ProcessDue applies every scheduled transition whose time has come and
	// returns how many tournaments actually advanced. Transitions whose
	// tournament drifted away from fromRound are discarded. A failing
	// transition is logged and left in place for the next poll; it never
	// blocks the rest of the batch.
	ProcessDue(ctx context.Context, now time.Time) (int, error)
}

type transitionService struct {
	tournamentRepo repositories.TournamentRepository
	transitionRepo repositories.TransitionRepository
	bracketService BracketService
	tx             repositories.TxManager
	broadcaster    Broadcaster
	logger         *slog.Logger
}

func NewTransitionService(
	tournamentRepo repositories.TournamentRepository,
	transitionRepo repositories.TransitionRepository,
	bracketService BracketService,
	tx repositories.TxManager,
	broadcaster Broadcaster,
	logger *slog.Logger,
) TransitionService {
	return &transitionService{
		tournamentRepo: tournamentRepo,
		transitionRepo: transitionRepo,
		bracketService: bracketService,
		tx:             tx,
		broadcaster:    broadcaster,
		logger:         logger,
	}
}

func (s *transitionService) Schedule(ctx context.Context, tournamentID int, input ScheduleTransitionInput) (*models.ScheduledTransition, error) {
	if !input.ScheduledAt.After(time.Now()) {
		return nil, ErrTransitionTimeNotFuture
	}
	tournament, err := s.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		return nil, mapTournamentRepoError(err)
	}
	next, ok := tournament.CurrentRound.Next()
	if !ok {
		return nil, ErrRoundTerminal
	}
	if input.ToRound != next {
		return nil, fmt.Errorf("%w: current round is %s, next is %s",
			ErrRoundNotAdjacent, tournament.CurrentRound, next)
	}

	transition := &models.ScheduledTransition{
		TournamentID: tournamentID,
		FromRound:    tournament.CurrentRound,
		ToRound:      input.ToRound,
		ScheduledAt:  input.ScheduledAt,
	}
	err = s.tx.WithTx(ctx, func(exec repositories.SQLExecutor) error {
		return s.transitionRepo.Upsert(ctx, exec, transition)
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("transition scheduled",
		slog.Int("tournament_id", tournamentID),
		slog.String("from", transition.FromRound.String()),
		slog.String("to", transition.ToRound.String()),
		slog.Time("at", transition.ScheduledAt))
	return transition, nil
}

func (s *transitionService) Cancel(ctx context.Context, tournamentID int) error {
	err := s.tx.WithTx(ctx, func(exec repositories.SQLExecutor) error {
		return s.transitionRepo.DeleteByTournament(ctx, exec, tournamentID)
	})
	if errors.Is(err, repositories.ErrTransitionNotFound) {
		return nil
	}
	return err
}

func (s *transitionService) Get(ctx context.Context, tournamentID int) (*models.ScheduledTransition, error) {
	transition, err := s.transitionRepo.GetByTournament(ctx, tournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrTransitionNotFound) {
			return nil, ErrTransitionNotFound
		}
		return nil, err
	}
	return transition, nil
}

func (s *transitionService) AdvanceImmediately(ctx context.Context, tournamentID int, nextRound models.Round) (*models.Tournament, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		return nil, mapTournamentRepoError(err)
	}
	next, ok := tournament.CurrentRound.Next()
	if !ok {
		return nil, ErrRoundTerminal
	}
	if nextRound != next {
		return nil, fmt.Errorf("%w: current round is %s, next is %s",
			ErrRoundNotAdjacent, tournament.CurrentRound, next)
	}

	if err := s.advance(ctx, tournament, nextRound); err != nil {
		return nil, err
	}
	tournament.CurrentRound = nextRound
	return tournament, nil
}

func (s *transitionService) ProcessDue(ctx context.Context, now time.Time) (int, error) {
	due, err := s.transitionRepo.ListDue(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("failed to list due transitions: %w", err)
	}

	processed := 0
	for _, transition := range due {
		applied, err := s.processOne(ctx, transition)
		if err != nil {
			// Leave the transition in place; the next poll retries it.
			s.logger.Error("scheduled transition failed",
				slog.Int("tournament_id", transition.TournamentID),
				slog.String("to", transition.ToRound.String()),
				slog.Any("error", err))
			continue
		}
		if applied {
			processed++
		}
	}
	return processed, nil
}

func (s *transitionService) processOne(ctx context.Context, transition *models.ScheduledTransition) (applied bool, err error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, transition.TournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			// Tournament is gone; drop the orphaned transition.
			return false, s.deleteTransition(ctx, transition.TournamentID)
		}
		return false, err
	}

	// Optimistic guard: if the round moved underneath the schedule (manual
	// override), the transition is stale and is discarded without touching
	// tournament state.
	if tournament.CurrentRound != transition.FromRound {
		s.logger.Info("discarding stale transition",
			slog.Int("tournament_id", tournament.ID),
			slog.String("expected", transition.FromRound.String()),
			slog.String("actual", tournament.CurrentRound.String()))
		return false, s.deleteTransition(ctx, tournament.ID)
	}

	if err := s.advanceAndDelete(ctx, tournament, transition.ToRound); err != nil {
		return false, err
	}
	return true, nil
}

// advance moves the tournament to nextRound in one transaction, generating
// the Round of 64 bracket when leaving Pre-Tournament.
func (s *transitionService) advance(ctx context.Context, tournament *models.Tournament, nextRound models.Round) error {
	err := s.tx.WithTx(ctx, func(exec repositories.SQLExecutor) error {
		return s.applyAdvance(ctx, exec, tournament, nextRound, false)
	})
	if err != nil {
		return err
	}
	s.broadcastAdvance(tournament.ID, tournament.CurrentRound, nextRound)
	return nil
}

// advanceAndDelete additionally removes the consumed transition row inside
// the same transaction.
func (s *transitionService) advanceAndDelete(ctx context.Context, tournament *models.Tournament, nextRound models.Round) error {
	err := s.tx.WithTx(ctx, func(exec repositories.SQLExecutor) error {
		return s.applyAdvance(ctx, exec, tournament, nextRound, true)
	})
	if err != nil {
		return err
	}
	s.broadcastAdvance(tournament.ID, tournament.CurrentRound, nextRound)
	return nil
}

func (s *transitionService) applyAdvance(ctx context.Context, exec repositories.SQLExecutor, tournament *models.Tournament, nextRound models.Round, deleteTransition bool) error {
	if err := s.tournamentRepo.UpdateCurrentRound(ctx, exec, tournament.ID, nextRound); err != nil {
		return err
	}
	if tournament.CurrentRound == models.RoundPreTournament && nextRound == models.RoundOf64 {
		if _, err := s.bracketService.GenerateFirstRoundTx(ctx, exec, tournament); err != nil {
			return fmt.Errorf("failed to generate first round: %w", err)
		}
	}
	if deleteTransition {
		if err := s.transitionRepo.DeleteByTournament(ctx, exec, tournament.ID); err != nil &&
			!errors.Is(err, repositories.ErrTransitionNotFound) {
			return err
		}
	}
	return nil
}

func (s *transitionService) deleteTransition(ctx context.Context, tournamentID int) error {
	err := s.tx.WithTx(ctx, func(exec repositories.SQLExecutor) error {
		return s.transitionRepo.DeleteByTournament(ctx, exec, tournamentID)
	})
	if errors.Is(err, repositories.ErrTransitionNotFound) {
		return nil
	}
	return err
}

func (s *transitionService) broadcastAdvance(tournamentID int, from, to models.Round) {
	s.logger.Info("round advanced",
		slog.Int("tournament_id", tournamentID),
		slog.String("from", from.String()),
		slog.String("to", to.String()))
	if s.broadcaster != nil {
		s.broadcaster.Broadcast(tournamentID, eventRoundAdvanced, map[string]string{
			"from": from.String(),
			"to":   to.String(),
		})
	}
}
