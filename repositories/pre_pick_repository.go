package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/hoopshq/madness-pool/models"
	"github.com/lib/pq"
)

var (
	ErrPreTournamentPickNotFound = errors.New("pre-tournament pick not found")
	ErrPreTournamentPickInvalid  = errors.New("pre-tournament pick references an unknown team or participant")
)

// Selection kinds in the pre_pick_selections table.
const (
	selectionFinalFour  = "final_four"
	selectionFinals     = "finals"
	selectionCinderella = "cinderella"
)

type PreTournamentPickRepository interface {
	// Upsert replaces the participant's pre-tournament pick wholesale,
	// including its selections. Must run inside a transaction.
	Upsert(ctx context.Context, exec SQLExecutor, pick *models.PreTournamentPick) error
	GetByParticipant(ctx context.Context, participantID int) (*models.PreTournamentPick, error)
	UpdateScores(ctx context.Context, exec SQLExecutor, id int, score, cinderellaScore int) error
}

type postgresPreTournamentPickRepository struct {
	db *sql.DB
}

func NewPostgresPreTournamentPickRepository(db *sql.DB) PreTournamentPickRepository {
	return &postgresPreTournamentPickRepository{db: db}
}

func (r *postgresPreTournamentPickRepository) Upsert(ctx context.Context, exec SQLExecutor, pick *models.PreTournamentPick) error {
	query := `
		INSERT INTO pre_tournament_picks (participant_id, champion_team_id)
		VALUES ($1, $2)
		ON CONFLICT (participant_id)
		DO UPDATE SET champion_team_id = EXCLUDED.champion_team_id, score = 0, cinderella_score = 0
		RETURNING id, score, cinderella_score, created_at`

	err := exec.QueryRowContext(ctx, query, pick.ParticipantID, pick.ChampionID).
		Scan(&pick.ID, &pick.Score, &pick.CinderellaScore, &pick.CreatedAt)
	if err != nil {
		return r.handleError(err)
	}

	if _, err := exec.ExecContext(ctx,
		`DELETE FROM pre_pick_selections WHERE pick_id = $1`, pick.ID); err != nil {
		return fmt.Errorf("failed to clear selections for pick %d: %w", pick.ID, err)
	}

	insert := func(kind string, teamIDs []int) error {
		for _, teamID := range teamIDs {
			if _, err := exec.ExecContext(ctx,
				`INSERT INTO pre_pick_selections (pick_id, kind, team_id) VALUES ($1, $2, $3)`,
				pick.ID, kind, teamID); err != nil {
				return r.handleError(err)
			}
		}
		return nil
	}
	if err := insert(selectionFinalFour, pick.FinalFourIDs); err != nil {
		return err
	}
	if err := insert(selectionFinals, pick.FinalsIDs); err != nil {
		return err
	}
	return insert(selectionCinderella, pick.CinderellaIDs)
}

func (r *postgresPreTournamentPickRepository) GetByParticipant(ctx context.Context, participantID int) (*models.PreTournamentPick, error) {
	query := `
		SELECT id, participant_id, champion_team_id, score, cinderella_score, created_at
		FROM pre_tournament_picks
		WHERE participant_id = $1`

	pick := &models.PreTournamentPick{}
	err := r.db.QueryRowContext(ctx, query, participantID).Scan(
		&pick.ID, &pick.ParticipantID, &pick.ChampionID,
		&pick.Score, &pick.CinderellaScore, &pick.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPreTournamentPickNotFound
		}
		return nil, fmt.Errorf("failed to scan pre-tournament pick for participant %d: %w", participantID, err)
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT kind, team_id FROM pre_pick_selections WHERE pick_id = $1 ORDER BY id ASC`, pick.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to query selections for pick %d: %w", pick.ID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var kind string
		var teamID int
		if err := rows.Scan(&kind, &teamID); err != nil {
			return nil, fmt.Errorf("failed to scan selection row: %w", err)
		}
		switch kind {
		case selectionFinalFour:
			pick.FinalFourIDs = append(pick.FinalFourIDs, teamID)
		case selectionFinals:
			pick.FinalsIDs = append(pick.FinalsIDs, teamID)
		case selectionCinderella:
			pick.CinderellaIDs = append(pick.CinderellaIDs, teamID)
		default:
			return nil, fmt.Errorf("unknown selection kind %q for pick %d", kind, pick.ID)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during selection rows iteration: %w", err)
	}
	return pick, nil
}

func (r *postgresPreTournamentPickRepository) UpdateScores(ctx context.Context, exec SQLExecutor, id int, score, cinderellaScore int) error {
	result, err := exec.ExecContext(ctx,
		`UPDATE pre_tournament_picks SET score = $1, cinderella_score = $2 WHERE id = $3`,
		score, cinderellaScore, id)
	if err != nil {
		return fmt.Errorf("failed to update scores for pre-tournament pick %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrPreTournamentPickNotFound)
}

func (r *postgresPreTournamentPickRepository) handleError(err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Constraint {
		case "pre_tournament_picks_participant_id_fkey",
			"pre_tournament_picks_champion_team_id_fkey",
			"pre_pick_selections_team_id_fkey":
			return ErrPreTournamentPickInvalid
		}
	}
	return err
}
