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
	ErrGameMapNotFound     = errors.New("map not found")
	ErrGameMapNameConflict = errors.New("map name conflict")
)

type GameMapRepository interface {
	Create(ctx context.Context, gameMap *models.GameMap) error
	GetByID(ctx context.Context, id int) (*models.GameMap, error)
	GetByIDs(ctx context.Context, ids []int) ([]models.GameMap, error)
	NameTaken(ctx context.Context, name string) (bool, error)
	// ListActive returns active maps ordered by creation time.
	ListActive(ctx context.Context) ([]models.GameMap, error)
	Retire(ctx context.Context, id int) error
}

type postgresGameMapRepository struct {
	db *sql.DB
}

func NewPostgresGameMapRepository(db *sql.DB) GameMapRepository {
	return &postgresGameMapRepository{db: db}
}

func (r *postgresGameMapRepository) Create(ctx context.Context, gameMap *models.GameMap) error {
	query := `
		INSERT INTO game_maps (name, status)
		VALUES ($1, $2)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query, gameMap.Name, gameMap.Status).
		Scan(&gameMap.ID, &gameMap.CreatedAt)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			if pqErr.Constraint == "game_maps_name_active_key" {
				return ErrGameMapNameConflict
			}
		}
		return err
	}
	return nil
}

func (r *postgresGameMapRepository) GetByID(ctx context.Context, id int) (*models.GameMap, error) {
	query := `SELECT id, name, status, created_at FROM game_maps WHERE id = $1`

	gameMap := &models.GameMap{}
	err := r.db.QueryRowContext(ctx, query, id).
		Scan(&gameMap.ID, &gameMap.Name, &gameMap.Status, &gameMap.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrGameMapNotFound
		}
		return nil, fmt.Errorf("failed to scan map by id %d: %w", id, err)
	}
	return gameMap, nil
}

func (r *postgresGameMapRepository) GetByIDs(ctx context.Context, ids []int) ([]models.GameMap, error) {
	if len(ids) == 0 {
		return []models.GameMap{}, nil
	}
	query := `SELECT id, name, status, created_at FROM game_maps WHERE id = ANY($1)`

	rows, err := r.db.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to query maps by ids: %w", err)
	}
	defer rows.Close()

	return scanGameMaps(rows)
}

func (r *postgresGameMapRepository) NameTaken(ctx context.Context, name string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM game_maps WHERE name = $1 AND status = $2)`

	var taken bool
	if err := r.db.QueryRowContext(ctx, query, name, models.GameMapActive).Scan(&taken); err != nil {
		return false, fmt.Errorf("failed to check map name: %w", err)
	}
	return taken, nil
}

func (r *postgresGameMapRepository) ListActive(ctx context.Context) ([]models.GameMap, error) {
	query := `
		SELECT id, name, status, created_at
		FROM game_maps
		WHERE status = $1
		ORDER BY created_at ASC, id ASC`

	rows, err := r.db.QueryContext(ctx, query, models.GameMapActive)
	if err != nil {
		return nil, fmt.Errorf("failed to query active maps: %w", err)
	}
	defer rows.Close()

	return scanGameMaps(rows)
}

func (r *postgresGameMapRepository) Retire(ctx context.Context, id int) error {
	query := `UPDATE game_maps SET status = $1 WHERE id = $2 AND status = $3`
	result, err := r.db.ExecContext(ctx, query, models.GameMapRetired, id, models.GameMapActive)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrGameMapNotFound)
}

func scanGameMaps(rows *sql.Rows) ([]models.GameMap, error) {
	maps := make([]models.GameMap, 0)
	for rows.Next() {
		var m models.GameMap
		if err := rows.Scan(&m.ID, &m.Name, &m.Status, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan map row: %w", err)
		}
		maps = append(maps, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during map rows iteration: %w", err)
	}
	return maps, nil
}
