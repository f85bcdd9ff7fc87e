package services

import (
	"github.com/mukhoplus/Masked-StarCraft/gauntlet"
	"github.com/mukhoplus/Masked-StarCraft/models"
)

// PlayerView is the outward representation of a player. Name is only set
// when the caller is allowed to see through the mask.
type PlayerView struct {
	ID       int    `json:"id"`
	Nickname string `json:"nickname"`
	Name     string `json:"name,omitempty"`
	Race     string `json:"race"`
}

// GameView describes the match currently being played. No winner, no
// streaks: those would leak who is on a run.
type GameView struct {
	Player1 PlayerView `json:"player1"`
	Player2 PlayerView `json:"player2"`
	Map     string     `json:"map"`
	Round   int        `json:"round"`
}

// GameLogView is one resolved match in the history. Streak is the winner's
// streak as of that game, recomputed from the ledger.
type GameLogView struct {
	Round  int        `json:"round"`
	Map    string     `json:"map"`
	Winner PlayerView `json:"winner"`
	Loser  PlayerView `json:"loser"`
	Streak int        `json:"streak"`
}

// ResultView summarises a finished tournament. MaxStreakPlayers is the full
// tie set recomputed from the matches, not the single persisted
// representative.
type ResultView struct {
	Winner           PlayerView   `json:"winner"`
	WinnerStreak     int          `json:"winner_streak"`
	MaxStreakPlayers []PlayerView `json:"max_streak_players"`
	MaxStreak        int          `json:"max_streak"`
}

type TournamentView struct {
	ID                int                     `json:"id"`
	Status            models.TournamentStatus `json:"status"`
	CurrentGame       *GameView               `json:"current_game,omitempty"`
	PreviousGames     []GameLogView           `json:"previous_games"`
	Result            *ResultView             `json:"result,omitempty"`
	ShowPreviousGames bool                    `json:"show_previous_games"`
}

func playerView(p models.Player, includeNames bool) PlayerView {
	v := PlayerView{ID: p.ID, Nickname: p.Nickname, Race: p.Race}
	if includeNames {
		v.Name = p.Name
	}
	return v
}

// tournamentData is everything needed to project one tournament: the row,
// its matches in round order, and the referenced players and maps keyed by
// id. Loaded once, projected per audience.
type tournamentData struct {
	tournament *models.Tournament
	matches    []models.Match
	players    map[int]models.Player
	gameMaps   map[int]models.GameMap
}

// buildTournamentView projects tournament state for one audience. For an
// in-progress tournament the unresolved match becomes CurrentGame and
// ShowPreviousGames is false; once finished the history is open and Result
// carries the recomputed max-streak tie set.
func buildTournamentView(data *tournamentData, includeNames bool) *TournamentView {
	t := data.tournament
	view := &TournamentView{
		ID:                t.ID,
		Status:            t.Status,
		PreviousGames:     []GameLogView{},
		ShowPreviousGames: t.Finished(),
	}

	// History is rendered newest first.
	for i := len(data.matches) - 1; i >= 0; i-- {
		m := data.matches[i]
		if !m.Resolved() {
			view.CurrentGame = &GameView{
				Player1: playerView(data.players[m.Player1ID], includeNames),
				Player2: playerView(data.players[m.Player2ID], includeNames),
				Map:     data.gameMaps[m.MapID].Name,
				Round:   m.Round,
			}
			continue
		}
		loserID, _ := m.LoserID()
		view.PreviousGames = append(view.PreviousGames, GameLogView{
			Round:  m.Round,
			Map:    data.gameMaps[m.MapID].Name,
			Winner: playerView(data.players[*m.WinnerID], includeNames),
			Loser:  playerView(data.players[loserID], includeNames),
			Streak: gauntlet.StreakAtMatch(m, data.matches),
		})
	}

	if t.Finished() && t.WinnerID != nil {
		ids, max := gauntlet.MaxStreaks(data.matches)
		holders := make([]PlayerView, 0, len(ids))
		for _, id := range ids {
			holders = append(holders, playerView(data.players[id], includeNames))
		}
		view.Result = &ResultView{
			Winner:           playerView(data.players[*t.WinnerID], includeNames),
			WinnerStreak:     gauntlet.CurrentStreak(*t.WinnerID, data.matches),
			MaxStreakPlayers: holders,
			MaxStreak:        max,
		}
	}
	return view
}
