package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mukhoplus/Masked-StarCraft/gauntlet"
	"github.com/mukhoplus/Masked-StarCraft/models"
	"github.com/mukhoplus/Masked-StarCraft/repositories"
	"github.com/mukhoplus/Masked-StarCraft/storage"
)

// Only finished tournaments have logs; lists fan out across tournaments
// with a bounded errgroup.
const logBuildConcurrency = 4

// GameDetailView is one match in a tournament log, both seats visible.
type GameDetailView struct {
	Round   int        `json:"round"`
	Map     string     `json:"map"`
	Player1 PlayerView `json:"player1"`
	Player2 PlayerView `json:"player2"`
	Winner  PlayerView `json:"winner"`
	Streak  int        `json:"streak"`
}

type TournamentStatsView struct {
	TotalGames        int    `json:"total_games"`
	TotalParticipants int    `json:"total_participants"`
	MaxStreak         int    `json:"max_streak"`
	Duration          string `json:"duration"`
}

type TournamentLogView struct {
	TournamentID     int                 `json:"tournament_id"`
	Winner           PlayerView          `json:"winner"`
	MaxStreakPlayers []PlayerView        `json:"max_streak_players"`
	Stats            TournamentStatsView `json:"stats"`
	Games            []GameDetailView    `json:"games"`
	CreatedAt        time.Time           `json:"created_at"`
}

type LogService struct {
	tournaments repositories.TournamentRepository
	matches     repositories.MatchRepository
	players     repositories.PlayerRepository
	gameMaps    repositories.GameMapRepository
	uploader    storage.FileUploader
	logger      *slog.Logger
}

// NewLogService builds the report service. uploader may be nil; Archive
// then fails with ErrArchiveUnavailable.
func NewLogService(
	tournaments repositories.TournamentRepository,
	matches repositories.MatchRepository,
	players repositories.PlayerRepository,
	gameMaps repositories.GameMapRepository,
	uploader storage.FileUploader,
	logger *slog.Logger,
) *LogService {
	return &LogService{
		tournaments: tournaments,
		matches:     matches,
		players:     players,
		gameMaps:    gameMaps,
		uploader:    uploader,
		logger:      logger,
	}
}

// List builds logs for every finished tournament, newest first.
func (s *LogService) List(ctx context.Context, includeNames bool) ([]TournamentLogView, error) {
	finished, err := s.tournaments.ListFinished(ctx)
	if err != nil {
		return nil, err
	}

	logs := make([]TournamentLogView, len(finished))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(logBuildConcurrency)
	for i := range finished {
		i := i
		g.Go(func() error {
			view, buildErr := s.buildLog(gctx, &finished[i], includeNames)
			if buildErr != nil {
				return buildErr
			}
			logs[i] = *view
			return nil
		})
	}
	if err = g.Wait(); err != nil {
		return nil, err
	}
	return logs, nil
}

// Get builds the log of one finished tournament.
func (s *LogService) Get(ctx context.Context, tournamentID int, includeNames bool) (*TournamentLogView, error) {
	tournament, err := s.tournaments.GetByID(ctx, tournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}
	if !tournament.Finished() {
		return nil, ErrTournamentNotFinished
	}
	return s.buildLog(ctx, tournament, includeNames)
}

// Render produces the downloadable plaintext report.
func (s *LogService) Render(ctx context.Context, tournamentID int, includeNames bool) (string, []byte, error) {
	log, err := s.Get(ctx, tournamentID, includeNames)
	if err != nil {
		return "", nil, err
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "Tournament #%d\n", log.TournamentID)
	fmt.Fprintf(&buf, "Date: %s\n", log.CreatedAt.Format("2006-01-02 15:04"))
	fmt.Fprintf(&buf, "Champion: %s\n", displayName(log.Winner, includeNames))
	fmt.Fprintf(&buf, "Max streak: %d by %s\n", log.Stats.MaxStreak, joinNames(log.MaxStreakPlayers, includeNames))
	fmt.Fprintf(&buf, "Games: %d, participants: %d, duration: %s\n\n",
		log.Stats.TotalGames, log.Stats.TotalParticipants, log.Stats.Duration)
	for _, game := range log.Games {
		fmt.Fprintf(&buf, "[Round %d] %s vs %s on %s -> %s (streak %d)\n",
			game.Round,
			displayName(game.Player1, includeNames),
			displayName(game.Player2, includeNames),
			game.Map,
			displayName(game.Winner, includeNames),
			game.Streak,
		)
	}

	filename := fmt.Sprintf("tournament-%d.txt", log.TournamentID)
	return filename, buf.Bytes(), nil
}

// Archive renders the masked report and stores it in the object store.
func (s *LogService) Archive(ctx context.Context, tournamentID int) (*storage.UploadResult, error) {
	if s.uploader == nil {
		return nil, ErrArchiveUnavailable
	}
	filename, content, err := s.Render(ctx, tournamentID, false)
	if err != nil {
		return nil, err
	}

	key := "logs/" + filename
	result, err := s.uploader.Upload(ctx, key, "text/plain; charset=utf-8", bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("failed to archive tournament log: %w", err)
	}
	s.logger.Info("tournament log archived",
		slog.Int("tournament_id", tournamentID),
		slog.String("key", result.Key),
	)
	return result, nil
}

func (s *LogService) buildLog(ctx context.Context, tournament *models.Tournament, includeNames bool) (*TournamentLogView, error) {
	data, err := loadTournamentData(ctx, s.matches, s.players, s.gameMaps, tournament)
	if err != nil {
		return nil, err
	}

	games := make([]GameDetailView, 0, len(data.matches))
	for _, m := range data.matches {
		if !m.Resolved() {
			continue
		}
		games = append(games, GameDetailView{
			Round:   m.Round,
			Map:     data.gameMaps[m.MapID].Name,
			Player1: playerView(data.players[m.Player1ID], includeNames),
			Player2: playerView(data.players[m.Player2ID], includeNames),
			Winner:  playerView(data.players[*m.WinnerID], includeNames),
			Streak:  gauntlet.StreakAtMatch(m, data.matches),
		})
	}

	ids, max := gauntlet.MaxStreaks(data.matches)
	holders := make([]PlayerView, 0, len(ids))
	for _, id := range ids {
		holders = append(holders, playerView(data.players[id], includeNames))
	}

	view := &TournamentLogView{
		TournamentID:     tournament.ID,
		MaxStreakPlayers: holders,
		Games:            games,
		CreatedAt:        tournament.CreatedAt,
		Stats: TournamentStatsView{
			TotalGames:        len(games),
			TotalParticipants: len(data.players),
			MaxStreak:         max,
			Duration:          matchSpan(data.matches),
		},
	}
	if tournament.WinnerID != nil {
		view.Winner = playerView(data.players[*tournament.WinnerID], includeNames)
	}
	return view, nil
}

func displayName(p PlayerView, includeNames bool) string {
	if includeNames && p.Name != "" {
		return fmt.Sprintf("%s (%s)", p.Nickname, p.Name)
	}
	return p.Nickname
}

func joinNames(players []PlayerView, includeNames bool) string {
	var buf bytes.Buffer
	for i, p := range players {
		if i > 0 {
			buf.WriteString(", ")
		}
		buf.WriteString(displayName(p, includeNames))
	}
	return buf.String()
}

// matchSpan measures first match creation to last match resolution, rounded
// to the second.
func matchSpan(matches []models.Match) string {
	if len(matches) == 0 {
		return "0s"
	}
	span := matches[len(matches)-1].CreatedAt.Sub(matches[0].CreatedAt)
	if span < 0 {
		span = 0
	}
	return span.Round(time.Second).String()
}
