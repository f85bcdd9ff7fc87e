package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/mukhoplus/Masked-StarCraft/models"
	"github.com/mukhoplus/Masked-StarCraft/repositories"
)

type PlayerService struct {
	players  repositories.PlayerRepository
	notifier Notifier
	logger   *slog.Logger
}

func NewPlayerService(players repositories.PlayerRepository, notifier Notifier, logger *slog.Logger) *PlayerService {
	return &PlayerService{
		players:  players,
		notifier: notifier,
		logger:   logger,
	}
}

// List returns the active roster in join order.
func (s *PlayerService) List(ctx context.Context, includeNames bool) ([]PlayerView, error) {
	players, err := s.players.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	views := make([]PlayerView, 0, len(players))
	for _, p := range players {
		views = append(views, playerView(p, includeNames))
	}
	return views, nil
}

// Retire soft-deletes a player. Retired players stop appearing on rosters
// and are never drawn as challengers, but the match ledger keeps
// referencing them. Admin accounts cannot be retired.
func (s *PlayerService) Retire(ctx context.Context, id int) error {
	player, err := s.players.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrPlayerNotFound) {
			return ErrPlayerNotFound
		}
		return err
	}
	if player.Role == models.RoleAdmin {
		return ErrAdminNotRetirable
	}

	if err = s.players.Retire(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrPlayerNotFound) {
			return ErrPlayerNotFound
		}
		return err
	}

	s.logger.Info("player retired", slog.Int("player_id", id), slog.String("nickname", player.Nickname))
	s.notifier.Publish(TopicTournament, Event{Type: EventStateChanged})
	return nil
}

// RetireAll clears the roster between seasons. Admin accounts survive.
func (s *PlayerService) RetireAll(ctx context.Context) error {
	if err := s.players.RetireAllPlayers(ctx); err != nil {
		return err
	}
	s.logger.Info("roster cleared")
	s.notifier.Publish(TopicTournament, Event{Type: EventStateChanged})
	return nil
}
