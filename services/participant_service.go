package services

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/hoopshq/madness-pool/models"
	"github.com/hoopshq/madness-pool/repositories"
)

type RegisterParticipantInput struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type ParticipantService interface {
	// Register creates a pool entry. The returned participant carries a fresh
	// entry token the caller must hand back to the registrant; it is their
	// only credential for managing picks.
	Register(ctx context.Context, tournamentID int, input RegisterParticipantInput) (*models.Participant, error)
	GetByID(ctx context.Context, id int) (*models.Participant, error)
	GetByEntryToken(ctx context.Context, token string) (*models.Participant, error)
	ListByTournament(ctx context.Context, tournamentID int) ([]*models.Participant, error)
	Leaderboard(ctx context.Context, tournamentID int) ([]*models.Participant, error)
	SetPaid(ctx context.Context, id int, paid bool) (*models.Participant, error)
}

type participantService struct {
	participantRepo repositories.ParticipantRepository
	tournamentRepo  repositories.TournamentRepository
	tx              repositories.TxManager
}

func NewParticipantService(
	participantRepo repositories.ParticipantRepository,
	tournamentRepo repositories.TournamentRepository,
	tx repositories.TxManager,
) ParticipantService {
	return &participantService{
		participantRepo: participantRepo,
		tournamentRepo:  tournamentRepo,
		tx:              tx,
	}
}

func (s *participantService) Register(ctx context.Context, tournamentID int, input RegisterParticipantInput) (*models.Participant, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, ErrParticipantNameRequired
	}
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" {
		return nil, ErrParticipantEmailRequired
	}
	if _, err := s.tournamentRepo.GetByID(ctx, tournamentID); err != nil {
		return nil, mapTournamentRepoError(err)
	}

	participant := &models.Participant{
		TournamentID: tournamentID,
		Name:         strings.TrimSpace(input.Name),
		Email:        email,
		EntryToken:   uuid.NewString(),
	}
	err := s.tx.WithTx(ctx, func(exec repositories.SQLExecutor) error {
		return s.participantRepo.Create(ctx, exec, participant)
	})
	if err != nil {
		if errors.Is(err, repositories.ErrParticipantEmailConflict) {
			return nil, ErrParticipantEmailConflict
		}
		return nil, err
	}
	return participant, nil
}

func (s *participantService) GetByID(ctx context.Context, id int) (*models.Participant, error) {
	participant, err := s.participantRepo.GetByID(ctx, id)
	if err != nil {
		return nil, mapParticipantRepoError(err)
	}
	return participant, nil
}

func (s *participantService) GetByEntryToken(ctx context.Context, token string) (*models.Participant, error) {
	participant, err := s.participantRepo.GetByEntryToken(ctx, token)
	if err != nil {
		return nil, mapParticipantRepoError(err)
	}
	return participant, nil
}

func (s *participantService) ListByTournament(ctx context.Context, tournamentID int) ([]*models.Participant, error) {
	return s.participantRepo.ListByTournament(ctx, tournamentID)
}

func (s *participantService) Leaderboard(ctx context.Context, tournamentID int) ([]*models.Participant, error) {
	if _, err := s.tournamentRepo.GetByID(ctx, tournamentID); err != nil {
		return nil, mapTournamentRepoError(err)
	}
	return s.participantRepo.ListLeaderboard(ctx, tournamentID)
}

func (s *participantService) SetPaid(ctx context.Context, id int, paid bool) (*models.Participant, error) {
	participant, err := s.participantRepo.GetByID(ctx, id)
	if err != nil {
		return nil, mapParticipantRepoError(err)
	}
	err = s.tx.WithTx(ctx, func(exec repositories.SQLExecutor) error {
		return s.participantRepo.SetPaid(ctx, exec, id, paid)
	})
	if err != nil {
		return nil, err
	}
	participant.Paid = paid
	return participant, nil
}

func mapParticipantRepoError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repositories.ErrParticipantNotFound):
		return ErrParticipantNotFound
	default:
		return err
	}
}
