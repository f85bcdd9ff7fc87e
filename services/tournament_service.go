package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mukhoplus/Masked-StarCraft/gauntlet"
	"github.com/mukhoplus/Masked-StarCraft/models"
	"github.com/mukhoplus/Masked-StarCraft/repositories"
)

// TournamentService drives the gauntlet state machine: starting a run,
// projecting its state and recording results. All mutations happen in a
// single transaction; websocket events are published only after commit.
type TournamentService struct {
	db          *sql.DB
	tournaments repositories.TournamentRepository
	matches     repositories.MatchRepository
	players     repositories.PlayerRepository
	gameMaps    repositories.GameMapRepository
	engine      *gauntlet.Engine
	notifier    Notifier
	logger      *slog.Logger
}

func NewTournamentService(
	db *sql.DB,
	tournaments repositories.TournamentRepository,
	matches repositories.MatchRepository,
	players repositories.PlayerRepository,
	gameMaps repositories.GameMapRepository,
	engine *gauntlet.Engine,
	notifier Notifier,
	logger *slog.Logger,
) *TournamentService {
	return &TournamentService{
		db:          db,
		tournaments: tournaments,
		matches:     matches,
		players:     players,
		gameMaps:    gameMaps,
		engine:      engine,
		notifier:    notifier,
		logger:      logger,
	}
}

// Start opens a new tournament and seats its opening match. Fails when a
// tournament is already running, when fewer than two active players exist,
// or when no active map exists.
func (s *TournamentService) Start(ctx context.Context, includeNames bool) (*TournamentView, error) {
	// A live run wins over every other precondition: the roster and map
	// checks only apply once no tournament is active.
	active, err := s.tournaments.FindActive(ctx, nil)
	if err != nil {
		return nil, err
	}
	if active != nil {
		return nil, ErrTournamentAlreadyInProgress
	}

	roster, err := s.players.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	if len(roster) < 2 {
		return nil, ErrInsufficientPlayers
	}
	mapPool, err := s.gameMaps.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	if len(mapPool) == 0 {
		return nil, ErrInsufficientMaps
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// Re-checked inside the transaction to close the race with a
	// concurrent Start.
	active, err = s.tournaments.FindActive(ctx, tx)
	if err != nil {
		return nil, err
	}
	if active != nil {
		return nil, ErrTournamentAlreadyInProgress
	}

	tournament := &models.Tournament{Status: models.TournamentPreparing}
	if err = s.tournaments.Create(ctx, tx, tournament); err != nil {
		return nil, err
	}

	pairing := s.engine.OpeningMatch(roster, mapPool)
	opening := &models.Match{
		TournamentID: tournament.ID,
		MapID:        pairing.GameMap.ID,
		Player1ID:    pairing.Player1.ID,
		Player2ID:    pairing.Player2.ID,
		Round:        pairing.Round,
	}
	if err = s.matches.Create(ctx, tx, opening); err != nil {
		return nil, err
	}

	if err = s.tournaments.Begin(ctx, tx, tournament.ID); err != nil {
		return nil, err
	}
	tournament.Status = models.TournamentInProgress

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.logger.Info("tournament started",
		slog.Int("tournament_id", tournament.ID),
		slog.Int("roster_size", len(roster)),
	)

	data, err := loadTournamentData(ctx, s.matches, s.players, s.gameMaps, tournament)
	if err != nil {
		return nil, err
	}
	s.notifier.Publish(TopicTournament, Event{
		Type:    EventTournamentStarted,
		Payload: buildTournamentView(data, false),
	})
	return buildTournamentView(data, includeNames), nil
}

// Current projects the tournament a viewer should see: the active one if a
// run is underway, otherwise the most recently finished one. Returns
// (nil, nil) when no tournament has ever been played.
func (s *TournamentService) Current(ctx context.Context, includeNames bool) (*TournamentView, error) {
	tournament, err := s.tournaments.FindActive(ctx, nil)
	if err != nil {
		return nil, err
	}
	if tournament == nil {
		tournament, err = s.tournaments.FindLatestFinished(ctx, nil)
		if err != nil {
			return nil, err
		}
	}
	if tournament == nil {
		return nil, nil
	}

	data, err := loadTournamentData(ctx, s.matches, s.players, s.gameMaps, tournament)
	if err != nil {
		return nil, err
	}
	return buildTournamentView(data, includeNames), nil
}

// RecordResult resolves the match in progress. The winner stays on; a fresh
// challenger is drawn from the active players who have not yet appeared in
// this run. When no challenger remains the tournament finishes and the
// max-streak tie set is computed from the full ledger.
func (s *TournamentService) RecordResult(ctx context.Context, winnerID int, includeNames bool) (*TournamentView, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	tournament, err := s.tournaments.FindActive(ctx, tx)
	if err != nil {
		return nil, err
	}
	if tournament == nil {
		return nil, ErrTournamentNotFound
	}

	history, err := s.matches.ListByTournament(ctx, tx, tournament.ID, repositories.RoundAsc)
	if err != nil {
		return nil, err
	}
	currentIdx := -1
	for i := range history {
		if !history[i].Resolved() {
			currentIdx = i
			break
		}
	}
	if currentIdx == -1 {
		return nil, ErrNoActiveMatch
	}
	current := history[currentIdx]

	winner, err := s.players.GetByID(ctx, winnerID)
	if err != nil {
		if errors.Is(err, repositories.ErrPlayerNotFound) {
			return nil, ErrUnknownPlayer
		}
		return nil, err
	}
	if !current.HasSeat(winner.ID) {
		return nil, ErrNotAParticipant
	}

	if err = s.matches.SetWinner(ctx, tx, current.ID, winner.ID); err != nil {
		return nil, err
	}
	history[currentIdx].WinnerID = &winner.ID

	roster, err := s.players.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	mapPool, err := s.gameMaps.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	finished := false
	pairing, ok := s.engine.NextMatch(roster, mapPool, history, *winner)
	if ok {
		next := &models.Match{
			TournamentID: tournament.ID,
			MapID:        pairing.GameMap.ID,
			Player1ID:    pairing.Player1.ID,
			Player2ID:    pairing.Player2.ID,
			Round:        pairing.Round,
		}
		if err = s.matches.Create(ctx, tx, next); err != nil {
			return nil, err
		}
	} else {
		ids, _ := gauntlet.MaxStreaks(history)
		// The lowest id represents the tie set in the tournaments row;
		// projections recompute the full set.
		if err = s.tournaments.Finish(ctx, tx, tournament.ID, winner.ID, ids[0]); err != nil {
			return nil, err
		}
		finished = true
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	tournament, err = s.tournaments.GetByID(ctx, tournament.ID)
	if err != nil {
		return nil, err
	}
	data, err := loadTournamentData(ctx, s.matches, s.players, s.gameMaps, tournament)
	if err != nil {
		return nil, err
	}

	eventType := EventMatchResult
	if finished {
		eventType = EventTournamentFinished
		s.logger.Info("tournament finished",
			slog.Int("tournament_id", tournament.ID),
			slog.String("champion", winner.Nickname),
		)
	}
	s.notifier.Publish(TopicTournament, Event{Type: EventStateChanged})
	s.notifier.Publish(TopicTournament, Event{
		Type:    eventType,
		Payload: buildTournamentView(data, false),
	})
	return buildTournamentView(data, includeNames), nil
}

// loadTournamentData gathers everything a projection needs in three queries:
// the match ledger plus batch loads of the referenced players and maps.
func loadTournamentData(
	ctx context.Context,
	matchRepo repositories.MatchRepository,
	playerRepo repositories.PlayerRepository,
	gameMapRepo repositories.GameMapRepository,
	tournament *models.Tournament,
) (*tournamentData, error) {
	matches, err := matchRepo.ListByTournament(ctx, nil, tournament.ID, repositories.RoundAsc)
	if err != nil {
		return nil, err
	}

	playerIDs := make([]int, 0, len(matches)*2)
	mapIDs := make([]int, 0, len(matches))
	seenPlayers := make(map[int]bool)
	seenMaps := make(map[int]bool)
	for _, m := range matches {
		for _, id := range []int{m.Player1ID, m.Player2ID} {
			if !seenPlayers[id] {
				seenPlayers[id] = true
				playerIDs = append(playerIDs, id)
			}
		}
		if !seenMaps[m.MapID] {
			seenMaps[m.MapID] = true
			mapIDs = append(mapIDs, m.MapID)
		}
	}

	players, err := playerRepo.GetByIDs(ctx, playerIDs)
	if err != nil {
		return nil, err
	}
	gameMaps, err := gameMapRepo.GetByIDs(ctx, mapIDs)
	if err != nil {
		return nil, err
	}

	data := &tournamentData{
		tournament: tournament,
		matches:    matches,
		players:    make(map[int]models.Player, len(players)),
		gameMaps:   make(map[int]models.GameMap, len(gameMaps)),
	}
	for _, p := range players {
		data.players[p.ID] = p
	}
	for _, m := range gameMaps {
		data.gameMaps[m.ID] = m
	}
	return data, nil
}
