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
	ErrMatchPickNotFound = errors.New("match pick not found")
	ErrMatchPickInvalid  = errors.New("match pick references an unknown match, team, or participant")
)

type MatchPickRepository interface {
	// Upsert inserts a pick or replaces the participant's existing pick for
	// the same match. The (participant, match) pair is unique.
	Upsert(ctx context.Context, exec SQLExecutor, pick *models.MatchPick) error
	ListByParticipant(ctx context.Context, participantID int) ([]*models.MatchPick, error)
	UpdateScore(ctx context.Context, exec SQLExecutor, id int, correct bool, roundScore int) error
}

type postgresMatchPickRepository struct {
	db *sql.DB
}

func NewPostgresMatchPickRepository(db *sql.DB) MatchPickRepository {
	return &postgresMatchPickRepository{db: db}
}

func (r *postgresMatchPickRepository) Upsert(ctx context.Context, exec SQLExecutor, pick *models.MatchPick) error {
	query := `
		INSERT INTO match_picks (participant_id, match_id, team_id)
		VALUES ($1, $2, $3)
		ON CONFLICT (participant_id, match_id)
		DO UPDATE SET team_id = EXCLUDED.team_id, correct = FALSE, round_score = 0
		RETURNING id, correct, round_score, created_at`

	err := exec.QueryRowContext(ctx, query,
		pick.ParticipantID, pick.MatchID, pick.TeamID,
	).Scan(&pick.ID, &pick.Correct, &pick.RoundScore, &pick.CreatedAt)
	return r.handleError(err)
}

func (r *postgresMatchPickRepository) ListByParticipant(ctx context.Context, participantID int) ([]*models.MatchPick, error) {
	query := `
		SELECT id, participant_id, match_id, team_id, correct, round_score, created_at
		FROM match_picks
		WHERE participant_id = $1
		ORDER BY id ASC`

	rows, err := r.db.QueryContext(ctx, query, participantID)
	if err != nil {
		return nil, fmt.Errorf("failed to query picks for participant %d: %w", participantID, err)
	}
	defer rows.Close()

	picks := make([]*models.MatchPick, 0)
	for rows.Next() {
		pick := &models.MatchPick{}
		if err := rows.Scan(&pick.ID, &pick.ParticipantID, &pick.MatchID, &pick.TeamID,
			&pick.Correct, &pick.RoundScore, &pick.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan match pick row: %w", err)
		}
		picks = append(picks, pick)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during match pick rows iteration: %w", err)
	}
	return picks, nil
}

func (r *postgresMatchPickRepository) UpdateScore(ctx context.Context, exec SQLExecutor, id int, correct bool, roundScore int) error {
	result, err := exec.ExecContext(ctx,
		`UPDATE match_picks SET correct = $1, round_score = $2 WHERE id = $3`,
		correct, roundScore, id)
	if err != nil {
		return fmt.Errorf("failed to update score for match pick %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrMatchPickNotFound)
}

func (r *postgresMatchPickRepository) handleError(err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Constraint {
		case "match_picks_participant_id_fkey", "match_picks_match_id_fkey", "match_picks_team_id_fkey":
			return ErrMatchPickInvalid
		}
	}
	return err
}
