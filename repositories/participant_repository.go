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
	ErrParticipantNotFound      = errors.New("participant not found")
	ErrParticipantEmailConflict = errors.New("email already registered for this tournament")
)

type ParticipantRepository interface {
	Create(ctx context.Context, exec SQLExecutor, p *models.Participant) error
	GetByID(ctx context.Context, id int) (*models.Participant, error)
	GetByEntryToken(ctx context.Context, token string) (*models.Participant, error)
	ListByTournament(ctx context.Context, tournamentID int) ([]*models.Participant, error)
	// ListLeaderboard returns participants ordered by total score descending,
	// ties broken by name.
	ListLeaderboard(ctx context.Context, tournamentID int) ([]*models.Participant, error)
	SetPaid(ctx context.Context, exec SQLExecutor, id int, paid bool) error
	UpdateTotalScore(ctx context.Context, exec SQLExecutor, id int, totalScore int) error
}

type postgresParticipantRepository struct {
	db *sql.DB
}

func NewPostgresParticipantRepository(db *sql.DB) ParticipantRepository {
	return &postgresParticipantRepository{db: db}
}

const participantColumns = `id, tournament_id, name, email, paid, total_score, entry_token, created_at`

func (r *postgresParticipantRepository) Create(ctx context.Context, exec SQLExecutor, p *models.Participant) error {
	query := `
		INSERT INTO participants (tournament_id, name, email, entry_token)
		VALUES ($1, $2, $3, $4)
		RETURNING id, paid, total_score, created_at`

	err := exec.QueryRowContext(ctx, query,
		p.TournamentID, p.Name, p.Email, p.EntryToken,
	).Scan(&p.ID, &p.Paid, &p.TotalScore, &p.CreatedAt)
	return r.handleError(err)
}

func (r *postgresParticipantRepository) GetByID(ctx context.Context, id int) (*models.Participant, error) {
	query := `SELECT ` + participantColumns + ` FROM participants WHERE id = $1`
	return r.scanParticipant(r.db.QueryRowContext(ctx, query, id))
}

func (r *postgresParticipantRepository) GetByEntryToken(ctx context.Context, token string) (*models.Participant, error) {
	query := `SELECT ` + participantColumns + ` FROM participants WHERE entry_token = $1`
	return r.scanParticipant(r.db.QueryRowContext(ctx, query, token))
}

func (r *postgresParticipantRepository) ListByTournament(ctx context.Context, tournamentID int) ([]*models.Participant, error) {
	query := `SELECT ` + participantColumns + ` FROM participants WHERE tournament_id = $1 ORDER BY name ASC`
	return r.queryParticipants(ctx, query, tournamentID)
}

func (r *postgresParticipantRepository) ListLeaderboard(ctx context.Context, tournamentID int) ([]*models.Participant, error) {
	query := `SELECT ` + participantColumns + ` FROM participants
		WHERE tournament_id = $1
		ORDER BY total_score DESC, name ASC`
	return r.queryParticipants(ctx, query, tournamentID)
}

func (r *postgresParticipantRepository) SetPaid(ctx context.Context, exec SQLExecutor, id int, paid bool) error {
	result, err := exec.ExecContext(ctx,
		`UPDATE participants SET paid = $1 WHERE id = $2`, paid, id)
	if err != nil {
		return fmt.Errorf("failed to update paid flag for participant %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrParticipantNotFound)
}

func (r *postgresParticipantRepository) UpdateTotalScore(ctx context.Context, exec SQLExecutor, id int, totalScore int) error {
	result, err := exec.ExecContext(ctx,
		`UPDATE participants SET total_score = $1 WHERE id = $2`, totalScore, id)
	if err != nil {
		return fmt.Errorf("failed to update total score for participant %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrParticipantNotFound)
}

func (r *postgresParticipantRepository) queryParticipants(ctx context.Context, query string, args ...interface{}) ([]*models.Participant, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query participants: %w", err)
	}
	defer rows.Close()

	participants := make([]*models.Participant, 0)
	for rows.Next() {
		p := &models.Participant{}
		if err := rows.Scan(&p.ID, &p.TournamentID, &p.Name, &p.Email,
			&p.Paid, &p.TotalScore, &p.EntryToken, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan participant row: %w", err)
		}
		participants = append(participants, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during participant rows iteration: %w", err)
	}
	return participants, nil
}

func (r *postgresParticipantRepository) scanParticipant(row *sql.Row) (*models.Participant, error) {
	p := &models.Participant{}
	err := row.Scan(&p.ID, &p.TournamentID, &p.Name, &p.Email,
		&p.Paid, &p.TotalScore, &p.EntryToken, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrParticipantNotFound
		}
		return nil, fmt.Errorf("failed to scan participant: %w", err)
	}
	return p, nil
}

func (r *postgresParticipantRepository) handleError(err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Constraint == "participants_tournament_id_email_key" {
		return ErrParticipantEmailConflict
	}
	return err
}
