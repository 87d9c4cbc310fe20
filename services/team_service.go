package services

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/hoopshq/madness-pool/models"
	"github.com/hoopshq/madness-pool/repositories"
	"github.com/hoopshq/madness-pool/storage"
)

type SeedTeamInput struct {
	Name string `json:"name"`
	Seed int    `json:"seed"`
}

type TeamService interface {
	// SeedRegion creates all sixteen teams of one region in a single
	// transaction; partial regions are rejected up front.
	SeedRegion(ctx context.Context, tournamentID int, region string, teams []SeedTeamInput) ([]*models.Team, error)
	ListByTournament(ctx context.Context, tournamentID int, region *string) ([]*models.Team, error)
	UploadLogo(ctx context.Context, teamID int, contentType string, r io.Reader) (*models.Team, error)
}

type teamService struct {
	teamRepo       repositories.TeamRepository
	tournamentRepo repositories.TournamentRepository
	tx             repositories.TxManager
	uploader       storage.FileUploader
}

func NewTeamService(
	teamRepo repositories.TeamRepository,
	tournamentRepo repositories.TournamentRepository,
	tx repositories.TxManager,
	uploader storage.FileUploader,
) TeamService {
	return &teamService{
		teamRepo:       teamRepo,
		tournamentRepo: tournamentRepo,
		tx:             tx,
		uploader:       uploader,
	}
}

func (s *teamService) SeedRegion(ctx context.Context, tournamentID int, region string, inputs []SeedTeamInput) ([]*models.Team, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		return nil, mapTournamentRepoError(err)
	}
	if tournament.CurrentRound != models.RoundPreTournament {
		return nil, ErrTournamentAlreadyStarted
	}
	if !containsRegion(tournament.Regions, region) {
		return nil, fmt.Errorf("%w: %q is not a region of tournament %d",
			ErrValidationFailed, region, tournamentID)
	}
	if len(inputs) != models.TeamsPerRegion {
		return nil, fmt.Errorf("%w: region needs exactly %d teams, got %d",
			ErrValidationFailed, models.TeamsPerRegion, len(inputs))
	}
	seen := make(map[int]struct{}, len(inputs))
	for _, in := range inputs {
		if in.Name == "" {
			return nil, fmt.Errorf("%w: team name is required", ErrValidationFailed)
		}
		if in.Seed < 1 || in.Seed > models.TeamsPerRegion {
			return nil, fmt.Errorf("%w: seed %d outside 1-%d", ErrValidationFailed, in.Seed, models.TeamsPerRegion)
		}
		if _, dup := seen[in.Seed]; dup {
			return nil, fmt.Errorf("%w: seed %d listed twice", ErrValidationFailed, in.Seed)
		}
		seen[in.Seed] = struct{}{}
	}

	teams := make([]*models.Team, 0, len(inputs))
	err = s.tx.WithTx(ctx, func(exec repositories.SQLExecutor) error {
		for _, in := range inputs {
			team := &models.Team{
				TournamentID: tournamentID,
				Name:         in.Name,
				Seed:         in.Seed,
				Region:       region,
			}
			if err := s.teamRepo.Create(ctx, exec, team); err != nil {
				return err
			}
			teams = append(teams, team)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, repositories.ErrTeamSeedConflict) {
			return nil, ErrTeamSeedConflict
		}
		return nil, err
	}
	return teams, nil
}

func (s *teamService) ListByTournament(ctx context.Context, tournamentID int, region *string) ([]*models.Team, error) {
	teams, err := s.teamRepo.ListByTournament(ctx, tournamentID, region)
	if err != nil {
		return nil, err
	}
	for _, team := range teams {
		s.populateLogoURL(team)
	}
	return teams, nil
}

func (s *teamService) UploadLogo(ctx context.Context, teamID int, contentType string, r io.Reader) (*models.Team, error) {
	if s.uploader == nil {
		return nil, ErrLogoStorageDisabled
	}
	team, err := s.teamRepo.GetByID(ctx, teamID)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, err
	}

	key := fmt.Sprintf("teams/%d/logo", team.ID)
	if _, err := s.uploader.Upload(ctx, key, contentType, r); err != nil {
		return nil, fmt.Errorf("failed to upload team logo: %w", err)
	}

	err = s.tx.WithTx(ctx, func(exec repositories.SQLExecutor) error {
		return s.teamRepo.UpdateLogoKey(ctx, exec, team.ID, &key)
	})
	if err != nil {
		return nil, err
	}
	team.LogoKey = &key
	s.populateLogoURL(team)
	return team, nil
}

func (s *teamService) populateLogoURL(team *models.Team) {
	if s.uploader == nil || team.LogoKey == nil || *team.LogoKey == "" {
		return
	}
	if url := s.uploader.GetPublicURL(*team.LogoKey); url != "" {
		team.LogoURL = &url
	}
}

func containsRegion(regions []string, region string) bool {
	for _, r := range regions {
		if r == region {
			return true
		}
	}
	return false
}
