package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/mukhoplus/Masked-StarCraft/models"
)

var (
	ErrMatchNotFound       = errors.New("match not found")
	ErrMatchPlayerInvalid  = errors.New("match references an invalid player")
	ErrMatchMapInvalid     = errors.New("match references an invalid map")
	ErrMatchRoundConflict  = errors.New("match round conflict within tournament")
	ErrMatchAlreadyDecided = errors.New("match winner already set")
)

type MatchOrder string

const (
	RoundAsc  MatchOrder = "ASC"
	RoundDesc MatchOrder = "DESC"
)

// MatchRepository is the append-only match ledger. Rows are created once,
// updated exactly once (to set the winner), never deleted.
type MatchRepository interface {
	Create(ctx context.Context, exec SQLExecutor, match *models.Match) error
	ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int, order MatchOrder) ([]models.Match, error)
	SetWinner(ctx context.Context, exec SQLExecutor, matchID, winnerID int) error
}

type postgresMatchRepository struct {
	db *sql.DB
}

func NewPostgresMatchRepository(db *sql.DB) MatchRepository {
	return &postgresMatchRepository{db: db}
}

func (r *postgresMatchRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresMatchRepository) Create(ctx context.Context, exec SQLExecutor, match *models.Match) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO matches (tournament_id, map_id, player1_id, player2_id, round)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`

	err := executor.QueryRowContext(ctx, query,
		match.TournamentID,
		match.MapID,
		match.Player1ID,
		match.Player2ID,
		match.Round,
	).Scan(&match.ID, &match.CreatedAt)

	return r.handleMatchError(err)
}

func (r *postgresMatchRepository) ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int, order MatchOrder) ([]models.Match, error) {
	executor := r.getExecutor(exec)

	direction := "ASC"
	if order == RoundDesc {
		direction = "DESC"
	}
	query := fmt.Sprintf(`
		SELECT id, tournament_id, map_id, player1_id, player2_id, winner_id, round, created_at
		FROM matches
		WHERE tournament_id = $1
		ORDER BY round %s`, direction)

	rows, err := executor.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query matches for tournament %d: %w", tournamentID, err)
	}
	defer rows.Close()

	matches := make([]models.Match, 0)
	for rows.Next() {
		var m models.Match
		if scanErr := rows.Scan(
			&m.ID,
			&m.TournamentID,
			&m.MapID,
			&m.Player1ID,
			&m.Player2ID,
			&m.WinnerID,
			&m.Round,
			&m.CreatedAt,
		); scanErr != nil {
			return nil, fmt.Errorf("failed to scan match row: %w", scanErr)
		}
		matches = append(matches, m)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during match rows iteration: %w", err)
	}
	return matches, nil
}

// SetWinner resolves a match. The winner_id IS NULL guard makes the single
// permitted mutation idempotent-hostile on purpose: resolving twice is a
// sequencing bug and surfaces as ErrMatchAlreadyDecided.
func (r *postgresMatchRepository) SetWinner(ctx context.Context, exec SQLExecutor, matchID, winnerID int) error {
	executor := r.getExecutor(exec)
	query := `UPDATE matches SET winner_id = $1 WHERE id = $2 AND winner_id IS NULL`

	result, err := executor.ExecContext(ctx, query, winnerID, matchID)
	if err != nil {
		return r.handleMatchError(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if rowsAffected == 0 {
		// Either the row is missing or the winner was already set.
		return ErrMatchAlreadyDecided
	}
	return nil
}

func (r *postgresMatchRepository) handleMatchError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		switch pqErr.Constraint {
		case "matches_player1_id_fkey", "matches_player2_id_fkey", "matches_winner_id_fkey":
			return ErrMatchPlayerInvalid
		case "matches_map_id_fkey":
			return ErrMatchMapInvalid
		case "matches_tournament_id_round_key":
			return ErrMatchRoundConflict
		}
	}
	return err
}
