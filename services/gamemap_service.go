package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/mukhoplus/Masked-StarCraft/models"
	"github.com/mukhoplus/Masked-StarCraft/repositories"
)

type GameMapService struct {
	gameMaps repositories.GameMapRepository
	notifier Notifier
	logger   *slog.Logger
}

func NewGameMapService(gameMaps repositories.GameMapRepository, notifier Notifier, logger *slog.Logger) *GameMapService {
	return &GameMapService{
		gameMaps: gameMaps,
		notifier: notifier,
		logger:   logger,
	}
}

func (s *GameMapService) Create(ctx context.Context, name string) (*models.GameMap, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("map name is required")
	}

	gameMap := &models.GameMap{
		Name:   name,
		Status: models.GameMapActive,
	}
	if err := s.gameMaps.Create(ctx, gameMap); err != nil {
		if errors.Is(err, repositories.ErrGameMapNameConflict) {
			return nil, ErrGameMapNameTaken
		}
		return nil, err
	}

	s.logger.Info("map added", slog.Int("map_id", gameMap.ID), slog.String("name", gameMap.Name))
	return gameMap, nil
}

func (s *GameMapService) List(ctx context.Context) ([]models.GameMap, error) {
	return s.gameMaps.ListActive(ctx)
}

// Retire removes a map from the draw pool. Matches already played on it
// keep their reference.
func (s *GameMapService) Retire(ctx context.Context, id int) error {
	if err := s.gameMaps.Retire(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrGameMapNotFound) {
			return ErrGameMapNotFound
		}
		return err
	}
	s.logger.Info("map retired", slog.Int("map_id", id))
	s.notifier.Publish(TopicTournament, Event{Type: EventStateChanged})
	return nil
}
