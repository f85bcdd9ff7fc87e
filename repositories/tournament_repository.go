package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mukhoplus/Masked-StarCraft/models"
)

var ErrTournamentNotFound = errors.New("tournament not found")

// TournamentRepository holds at most one non-FINISHED tournament plus
// history. FindActive and FindLatestFinished return (nil, nil) when there is
// no matching row. Absence is not an error at this layer.
type TournamentRepository interface {
	Create(ctx context.Context, exec SQLExecutor, tournament *models.Tournament) error
	GetByID(ctx context.Context, id int) (*models.Tournament, error)
	FindActive(ctx context.Context, exec SQLExecutor) (*models.Tournament, error)
	FindLatestFinished(ctx context.Context, exec SQLExecutor) (*models.Tournament, error)
	ListFinished(ctx context.Context) ([]models.Tournament, error)
	// Begin transitions a PREPARING tournament to IN_PROGRESS.
	Begin(ctx context.Context, exec SQLExecutor, id int) error
	// Finish transitions the tournament to FINISHED and records the
	// champion and the persisted max-streak representative.
	Finish(ctx context.Context, exec SQLExecutor, id, winnerID, maxStreakPlayerID int) error
}

type postgresTournamentRepository struct {
	db *sql.DB
}

func NewPostgresTournamentRepository(db *sql.DB) TournamentRepository {
	return &postgresTournamentRepository{db: db}
}

func (r *postgresTournamentRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const tournamentColumns = `id, status, winner_id, max_streak_player_id, created_at`

func (r *postgresTournamentRepository) Create(ctx context.Context, exec SQLExecutor, t *models.Tournament) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO tournaments (status)
		VALUES ($1)
		RETURNING id, created_at`

	if err := executor.QueryRowContext(ctx, query, t.Status).Scan(&t.ID, &t.CreatedAt); err != nil {
		return fmt.Errorf("failed to create tournament: %w", err)
	}
	return nil
}

func (r *postgresTournamentRepository) GetByID(ctx context.Context, id int) (*models.Tournament, error) {
	query := `SELECT ` + tournamentColumns + ` FROM tournaments WHERE id = $1`

	t := &models.Tournament{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&t.ID, &t.Status, &t.WinnerID, &t.MaxStreakPlayerID, &t.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to scan tournament by id %d: %w", id, err)
	}
	return t, nil
}

// FindActive returns the single tournament in {PREPARING, IN_PROGRESS}, if
// any. The one-active-tournament invariant makes LIMIT 1 sufficient.
func (r *postgresTournamentRepository) FindActive(ctx context.Context, exec SQLExecutor) (*models.Tournament, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT ` + tournamentColumns + `
		FROM tournaments
		WHERE status IN ($1, $2)
		ORDER BY created_at DESC
		LIMIT 1`

	t := &models.Tournament{}
	err := executor.QueryRowContext(ctx, query, models.TournamentPreparing, models.TournamentInProgress).Scan(
		&t.ID, &t.Status, &t.WinnerID, &t.MaxStreakPlayerID, &t.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find active tournament: %w", err)
	}
	return t, nil
}

func (r *postgresTournamentRepository) FindLatestFinished(ctx context.Context, exec SQLExecutor) (*models.Tournament, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT ` + tournamentColumns + `
		FROM tournaments
		WHERE status = $1
		ORDER BY created_at DESC, id DESC
		LIMIT 1`

	t := &models.Tournament{}
	err := executor.QueryRowContext(ctx, query, models.TournamentFinished).Scan(
		&t.ID, &t.Status, &t.WinnerID, &t.MaxStreakPlayerID, &t.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find latest finished tournament: %w", err)
	}
	return t, nil
}

func (r *postgresTournamentRepository) ListFinished(ctx context.Context) ([]models.Tournament, error) {
	query := `
		SELECT ` + tournamentColumns + `
		FROM tournaments
		WHERE status = $1
		ORDER BY created_at DESC, id DESC`

	rows, err := r.db.QueryContext(ctx, query, models.TournamentFinished)
	if err != nil {
		return nil, fmt.Errorf("failed to query finished tournaments: %w", err)
	}
	defer rows.Close()

	tournaments := make([]models.Tournament, 0)
	for rows.Next() {
		var t models.Tournament
		if scanErr := rows.Scan(&t.ID, &t.Status, &t.WinnerID, &t.MaxStreakPlayerID, &t.CreatedAt); scanErr != nil {
			return nil, fmt.Errorf("failed to scan tournament row: %w", scanErr)
		}
		tournaments = append(tournaments, t)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during tournament rows iteration: %w", err)
	}
	return tournaments, nil
}

func (r *postgresTournamentRepository) Begin(ctx context.Context, exec SQLExecutor, id int) error {
	executor := r.getExecutor(exec)
	query := `UPDATE tournaments SET status = $1 WHERE id = $2 AND status = $3`

	result, err := executor.ExecContext(ctx, query, models.TournamentInProgress, id, models.TournamentPreparing)
	if err != nil {
		return fmt.Errorf("failed to begin tournament %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) Finish(ctx context.Context, exec SQLExecutor, id, winnerID, maxStreakPlayerID int) error {
	executor := r.getExecutor(exec)
	query := `
		UPDATE tournaments
		SET status = $1, winner_id = $2, max_streak_player_id = $3
		WHERE id = $4 AND status = $5`

	result, err := executor.ExecContext(ctx, query,
		models.TournamentFinished, winnerID, maxStreakPlayerID, id, models.TournamentInProgress,
	)
	if err != nil {
		return fmt.Errorf("failed to finish tournament %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}
