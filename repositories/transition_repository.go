package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/hoopshq/madness-pool/models"
)

var ErrTransitionNotFound = errors.New("scheduled transition not found")

type TransitionRepository interface {
	// Upsert replaces any existing transition for the tournament; the
	// tournament_id column is unique, which is also the concurrency guard
	// keeping at most one pending transition per tournament.
	Upsert(ctx context.Context, exec SQLExecutor, tr *models.ScheduledTransition) error
	GetByTournament(ctx context.Context, tournamentID int) (*models.ScheduledTransition, error)
	ListDue(ctx context.Context, now time.Time) ([]*models.ScheduledTransition, error)
	DeleteByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) error
}

type postgresTransitionRepository struct {
	db *sql.DB
}

func NewPostgresTransitionRepository(db *sql.DB) TransitionRepository {
	return &postgresTransitionRepository{db: db}
}

func (r *postgresTransitionRepository) Upsert(ctx context.Context, exec SQLExecutor, tr *models.ScheduledTransition) error {
	query := `
		INSERT INTO scheduled_transitions (tournament_id, from_round, to_round, scheduled_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (tournament_id)
		DO UPDATE SET from_round = EXCLUDED.from_round,
		              to_round = EXCLUDED.to_round,
		              scheduled_at = EXCLUDED.scheduled_at
		RETURNING id, created_at`

	err := exec.QueryRowContext(ctx, query,
		tr.TournamentID, tr.FromRound, tr.ToRound, tr.ScheduledAt,
	).Scan(&tr.ID, &tr.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert transition for tournament %d: %w", tr.TournamentID, err)
	}
	return nil
}

func (r *postgresTransitionRepository) GetByTournament(ctx context.Context, tournamentID int) (*models.ScheduledTransition, error) {
	query := `
		SELECT id, tournament_id, from_round, to_round, scheduled_at, created_at
		FROM scheduled_transitions
		WHERE tournament_id = $1`

	tr := &models.ScheduledTransition{}
	err := r.db.QueryRowContext(ctx, query, tournamentID).Scan(
		&tr.ID, &tr.TournamentID, &tr.FromRound, &tr.ToRound, &tr.ScheduledAt, &tr.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTransitionNotFound
		}
		return nil, fmt.Errorf("failed to scan transition for tournament %d: %w", tournamentID, err)
	}
	return tr, nil
}

func (r *postgresTransitionRepository) ListDue(ctx context.Context, now time.Time) ([]*models.ScheduledTransition, error) {
	query := `
		SELECT id, tournament_id, from_round, to_round, scheduled_at, created_at
		FROM scheduled_transitions
		WHERE scheduled_at <= $1
		ORDER BY scheduled_at ASC`

	rows, err := r.db.QueryContext(ctx, query, now)
	if err != nil {
		return nil, fmt.Errorf("failed to query due transitions: %w", err)
	}
	defer rows.Close()

	transitions := make([]*models.ScheduledTransition, 0)
	for rows.Next() {
		tr := &models.ScheduledTransition{}
		if err := rows.Scan(&tr.ID, &tr.TournamentID, &tr.FromRound, &tr.ToRound,
			&tr.ScheduledAt, &tr.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan transition row: %w", err)
		}
		transitions = append(transitions, tr)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during transition rows iteration: %w", err)
	}
	return transitions, nil
}

func (r *postgresTransitionRepository) DeleteByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) error {
	result, err := exec.ExecContext(ctx,
		`DELETE FROM scheduled_transitions WHERE tournament_id = $1`, tournamentID)
	if err != nil {
		return fmt.Errorf("failed to delete transition for tournament %d: %w", tournamentID, err)
	}
	return checkAffectedRows(result, ErrTransitionNotFound)
}
