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
	ErrPlayerNotFound         = errors.New("player not found")
	ErrPlayerNicknameConflict = errors.New("player nickname conflict")
)

// PlayerRepository is the roster provider. Listing contracts filter by
// status themselves; callers never re-derive visibility. Retirement is a
// soft delete because finished matches keep referencing the row.
type PlayerRepository interface {
	Create(ctx context.Context, player *models.Player) error
	GetByID(ctx context.Context, id int) (*models.Player, error)
	GetByIDs(ctx context.Context, ids []int) ([]models.Player, error)
	GetActiveByNickname(ctx context.Context, nickname string) (*models.Player, error)
	NicknameTaken(ctx context.Context, nickname string) (bool, error)
	// ListActive returns active PLAYER-role players ordered by join time.
	ListActive(ctx context.Context) ([]models.Player, error)
	Retire(ctx context.Context, id int) error
	RetireAllPlayers(ctx context.Context) error
}

type postgresPlayerRepository struct {
	db *sql.DB
}

func NewPostgresPlayerRepository(db *sql.DB) PlayerRepository {
	return &postgresPlayerRepository{db: db}
}

const playerColumns = `id, name, nickname, password_hash, race, role, status, created_at`

func (r *postgresPlayerRepository) Create(ctx context.Context, player *models.Player) error {
	query := `
		INSERT INTO players (name, nickname, password_hash, race, role, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		player.Name,
		player.Nickname,
		player.PasswordHash,
		player.Race,
		player.Role,
		player.Status,
	).Scan(&player.ID, &player.CreatedAt)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			// players_nickname_active_key is a partial unique index over
			// active rows, so retired nicknames can be reissued.
			if pqErr.Constraint == "players_nickname_active_key" {
				return ErrPlayerNicknameConflict
			}
		}
		return err
	}
	return nil
}

func (r *postgresPlayerRepository) GetByID(ctx context.Context, id int) (*models.Player, error) {
	query := `SELECT ` + playerColumns + ` FROM players WHERE id = $1`

	player := &models.Player{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&player.ID,
		&player.Name,
		&player.Nickname,
		&player.PasswordHash,
		&player.Race,
		&player.Role,
		&player.Status,
		&player.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPlayerNotFound
		}
		return nil, fmt.Errorf("failed to scan player by id %d: %w", id, err)
	}
	return player, nil
}

// GetByIDs loads players regardless of status; the match ledger references
// retired players too.
func (r *postgresPlayerRepository) GetByIDs(ctx context.Context, ids []int) ([]models.Player, error) {
	if len(ids) == 0 {
		return []models.Player{}, nil
	}
	query := `SELECT ` + playerColumns + ` FROM players WHERE id = ANY($1)`

	rows, err := r.db.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to query players by ids: %w", err)
	}
	defer rows.Close()

	return scanPlayers(rows)
}

func (r *postgresPlayerRepository) GetActiveByNickname(ctx context.Context, nickname string) (*models.Player, error) {
	query := `SELECT ` + playerColumns + ` FROM players WHERE nickname = $1 AND status = $2`

	player := &models.Player{}
	err := r.db.QueryRowContext(ctx, query, nickname, models.PlayerActive).Scan(
		&player.ID,
		&player.Name,
		&player.Nickname,
		&player.PasswordHash,
		&player.Race,
		&player.Role,
		&player.Status,
		&player.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPlayerNotFound
		}
		return nil, fmt.Errorf("failed to scan player by nickname: %w", err)
	}
	return player, nil
}

func (r *postgresPlayerRepository) NicknameTaken(ctx context.Context, nickname string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM players WHERE nickname = $1 AND status = $2)`

	var taken bool
	if err := r.db.QueryRowContext(ctx, query, nickname, models.PlayerActive).Scan(&taken); err != nil {
		return false, fmt.Errorf("failed to check nickname: %w", err)
	}
	return taken, nil
}

func (r *postgresPlayerRepository) ListActive(ctx context.Context) ([]models.Player, error) {
	query := `
		SELECT ` + playerColumns + `
		FROM players
		WHERE status = $1 AND role = $2
		ORDER BY created_at ASC, id ASC`

	rows, err := r.db.QueryContext(ctx, query, models.PlayerActive, models.RolePlayer)
	if err != nil {
		return nil, fmt.Errorf("failed to query active players: %w", err)
	}
	defer rows.Close()

	return scanPlayers(rows)
}

func (r *postgresPlayerRepository) Retire(ctx context.Context, id int) error {
	query := `UPDATE players SET status = $1 WHERE id = $2 AND status = $3`
	result, err := r.db.ExecContext(ctx, query, models.PlayerRetired, id, models.PlayerActive)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrPlayerNotFound)
}

func (r *postgresPlayerRepository) RetireAllPlayers(ctx context.Context) error {
	query := `UPDATE players SET status = $1 WHERE status = $2 AND role = $3`
	_, err := r.db.ExecContext(ctx, query, models.PlayerRetired, models.PlayerActive, models.RolePlayer)
	if err != nil {
		return fmt.Errorf("failed to retire all players: %w", err)
	}
	return nil
}

func scanPlayers(rows *sql.Rows) ([]models.Player, error) {
	players := make([]models.Player, 0)
	for rows.Next() {
		var p models.Player
		if err := rows.Scan(
			&p.ID,
			&p.Name,
			&p.Nickname,
			&p.PasswordHash,
			&p.Race,
			&p.Role,
			&p.Status,
			&p.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan player row: %w", err)
		}
		players = append(players, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during player rows iteration: %w", err)
	}
	return players, nil
}
