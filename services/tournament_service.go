package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hoopshq/madness-pool/models"
	"github.com/hoopshq/madness-pool/repositories"
)

type CreateTournamentInput struct {
	Name          string   `json:"name"`
	Year          int      `json:"year"`
	EntryFeeCents int      `json:"entry_fee_cents"`
	Regions       []string `json:"regions"`
}

type UpdateTournamentInput struct {
	Name          *string `json:"name,omitempty"`
	EntryFeeCents *int    `json:"entry_fee_cents,omitempty"`
}

type TournamentService interface {
	Create(ctx context.Context, input CreateTournamentInput) (*models.Tournament, error)
	GetByID(ctx context.Context, id int) (*models.Tournament, error)
	GetMostRecent(ctx context.Context) (*models.Tournament, error)
	List(ctx context.Context) ([]*models.Tournament, error)
	Update(ctx context.Context, id int, input UpdateTournamentInput) (*models.Tournament, error)
	Delete(ctx context.Context, id int) error
}

type tournamentService struct {
	tournamentRepo repositories.TournamentRepository
	tx             repositories.TxManager
}

func NewTournamentService(tournamentRepo repositories.TournamentRepository, tx repositories.TxManager) TournamentService {
	return &tournamentService{tournamentRepo: tournamentRepo, tx: tx}
}

func (s *tournamentService) Create(ctx context.Context, input CreateTournamentInput) (*models.Tournament, error) {
	if input.Name == "" {
		return nil, ErrTournamentNameRequired
	}
	if input.Year < 1939 || input.Year > time.Now().Year()+1 {
		return nil, fmt.Errorf("%w: %d", ErrTournamentInvalidYear, input.Year)
	}
	if err := validateRegions(input.Regions); err != nil {
		return nil, err
	}

	tournament := &models.Tournament{
		Name:          input.Name,
		Year:          input.Year,
		EntryFeeCents: input.EntryFeeCents,
		CurrentRound:  models.RoundPreTournament,
		Regions:       input.Regions,
	}
	err := s.tx.WithTx(ctx, func(exec repositories.SQLExecutor) error {
		return s.tournamentRepo.Create(ctx, exec, tournament)
	})
	if err != nil {
		return nil, mapTournamentRepoError(err)
	}
	return tournament, nil
}

func (s *tournamentService) GetByID(ctx context.Context, id int) (*models.Tournament, error) {
	t, err := s.tournamentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, mapTournamentRepoError(err)
	}
	return t, nil
}

func (s *tournamentService) GetMostRecent(ctx context.Context) (*models.Tournament, error) {
	t, err := s.tournamentRepo.GetMostRecent(ctx)
	if err != nil {
		return nil, mapTournamentRepoError(err)
	}
	return t, nil
}

func (s *tournamentService) List(ctx context.Context) ([]*models.Tournament, error) {
	return s.tournamentRepo.List(ctx)
}

func (s *tournamentService) Update(ctx context.Context, id int, input UpdateTournamentInput) (*models.Tournament, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, mapTournamentRepoError(err)
	}
	if input.Name != nil {
		if *input.Name == "" {
			return nil, ErrTournamentNameRequired
		}
		tournament.Name = *input.Name
	}
	if input.EntryFeeCents != nil {
		tournament.EntryFeeCents = *input.EntryFeeCents
	}
	err = s.tx.WithTx(ctx, func(exec repositories.SQLExecutor) error {
		return s.tournamentRepo.Update(ctx, exec, tournament)
	})
	if err != nil {
		return nil, mapTournamentRepoError(err)
	}
	return tournament, nil
}

func (s *tournamentService) Delete(ctx context.Context, id int) error {
	err := s.tx.WithTx(ctx, func(exec repositories.SQLExecutor) error {
		return s.tournamentRepo.Delete(ctx, exec, id)
	})
	return mapTournamentRepoError(err)
}

// validateRegions requires exactly four distinct non-empty region names: the
// bracket generator needs four regional champions for the Final Four.
func validateRegions(regions []string) error {
	if len(regions) != 4 {
		return ErrTournamentInvalidRegions
	}
	seen := make(map[string]struct{}, len(regions))
	for _, region := range regions {
		if region == "" {
			return ErrTournamentInvalidRegions
		}
		if _, dup := seen[region]; dup {
			return fmt.Errorf("%w: %q listed twice", ErrTournamentInvalidRegions, region)
		}
		seen[region] = struct{}{}
	}
	return nil
}

func mapTournamentRepoError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repositories.ErrTournamentNotFound):
		return ErrTournamentNotFound
	case errors.Is(err, repositories.ErrTournamentNameConflict):
		return ErrTournamentNameConflict
	default:
		return err
	}
}
