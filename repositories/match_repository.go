package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/hoopshq/madness-pool/models"
	"github.com/lib/pq"
)

var (
	ErrMatchNotFound     = errors.New("match not found")
	ErrMatchTeamInvalid  = errors.New("match references an unknown team")
	ErrMatchSlotConflict = errors.New("match slot already exists for this round")
)

type MatchRepository interface {
	Create(ctx context.Context, exec SQLExecutor, match *models.Match) error
	GetByID(ctx context.Context, id int) (*models.Match, error)
	ListByTournament(ctx context.Context, tournamentID int, round *models.Round, region *string) ([]*models.Match, error)
	ApplyResult(ctx context.Context, exec SQLExecutor, id int, patch models.MatchResultPatch) error
}

type postgresMatchRepository struct {
	db *sql.DB
}

func NewPostgresMatchRepository(db *sql.DB) MatchRepository {
	return &postgresMatchRepository{db: db}
}

const matchColumns = `id, tournament_id, round, region, slot, team1_id, team2_id,
	team1_score, team2_score, winner_id, completed, created_at`

func (r *postgresMatchRepository) Create(ctx context.Context, exec SQLExecutor, match *models.Match) error {
	query := `
		INSERT INTO matches (tournament_id, round, region, slot, team1_id, team2_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`

	err := exec.QueryRowContext(ctx, query,
		match.TournamentID, match.Round, match.Region, match.Slot,
		match.Team1ID, match.Team2ID,
	).Scan(&match.ID, &match.CreatedAt)
	return r.handleError(err)
}

func (r *postgresMatchRepository) GetByID(ctx context.Context, id int) (*models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches WHERE id = $1`
	match := &models.Match{}
	err := r.scanMatch(r.db.QueryRowContext(ctx, query, id), match)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to scan match %d: %w", id, err)
	}
	return match, nil
}

func (r *postgresMatchRepository) ListByTournament(ctx context.Context, tournamentID int, round *models.Round, region *string) ([]*models.Match, error) {
	var b strings.Builder
	b.WriteString(`SELECT ` + matchColumns + ` FROM matches WHERE tournament_id = $1`)

	args := []interface{}{tournamentID}
	placeholder := 2
	if round != nil {
		b.WriteString(` AND round = $` + strconv.Itoa(placeholder))
		args = append(args, *round)
		placeholder++
	}
	if region != nil {
		b.WriteString(` AND region = $` + strconv.Itoa(placeholder))
		args = append(args, *region)
	}
	b.WriteString(` ORDER BY round ASC, region ASC, slot ASC`)

	rows, err := r.db.QueryContext(ctx, b.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query matches for tournament %d: %w", tournamentID, err)
	}
	defer rows.Close()

	matches := make([]*models.Match, 0)
	for rows.Next() {
		match := &models.Match{}
		if err := r.scanMatch(rows, match); err != nil {
			return nil, fmt.Errorf("failed to scan match row: %w", err)
		}
		matches = append(matches, match)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during match rows iteration: %w", err)
	}
	return matches, nil
}

// ApplyResult updates only the fields set in the patch.
func (r *postgresMatchRepository) ApplyResult(ctx context.Context, exec SQLExecutor, id int, patch models.MatchResultPatch) error {
	sets := make([]string, 0, 4)
	args := make([]interface{}, 0, 5)
	add := func(column string, value interface{}) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if patch.WinnerID != nil {
		add("winner_id", *patch.WinnerID)
	}
	if patch.Team1Score != nil {
		add("team1_score", *patch.Team1Score)
	}
	if patch.Team2Score != nil {
		add("team2_score", *patch.Team2Score)
	}
	if patch.Completed != nil {
		add("completed", *patch.Completed)
	}
	if len(sets) == 0 {
		return nil
	}

	args = append(args, id)
	query := fmt.Sprintf(`UPDATE matches SET %s WHERE id = $%d`,
		strings.Join(sets, ", "), len(args))

	result, err := exec.ExecContext(ctx, query, args...)
	if err != nil {
		return r.handleError(err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (r *postgresMatchRepository) scanMatch(row rowScanner, match *models.Match) error {
	return row.Scan(
		&match.ID, &match.TournamentID, &match.Round, &match.Region, &match.Slot,
		&match.Team1ID, &match.Team2ID, &match.Team1Score, &match.Team2Score,
		&match.WinnerID, &match.Completed, &match.CreatedAt)
}

func (r *postgresMatchRepository) handleError(err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Constraint {
		case "matches_team1_id_fkey", "matches_team2_id_fkey", "matches_winner_id_fkey":
			return ErrMatchTeamInvalid
		case "matches_tournament_id_round_region_slot_key":
			return ErrMatchSlotConflict
		}
	}
	return err
}
