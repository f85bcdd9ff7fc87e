package models

import "time"

// Match is one game of a tournament. WinnerID stays nil while the game is
// being played; exactly one match per IN_PROGRESS tournament is unresolved.
// Rounds are 1-based and contiguous within a tournament.
type Match struct {
	ID           int       `json:"id" db:"id"`
	TournamentID int       `json:"tournament_id" db:"tournament_id"`
	MapID        int       `json:"map_id" db:"map_id"`
	Player1ID    int       `json:"player1_id" db:"player1_id"`
	Player2ID    int       `json:"player2_id" db:"player2_id"`
	WinnerID     *int      `json:"winner_id,omitempty" db:"winner_id"`
	Round        int       `json:"round" db:"round"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

func (m Match) Resolved() bool {
	return m.WinnerID != nil
}

// HasSeat reports whether the player occupies either seat of the match.
func (m Match) HasSeat(playerID int) bool {
	return m.Player1ID == playerID || m.Player2ID == playerID
}

// LoserID returns the seat that did not win. ok is false while the match is
// unresolved.
func (m Match) LoserID() (int, bool) {
	if m.WinnerID == nil {
		return 0, false
	}
	if *m.WinnerID == m.Player1ID {
		return m.Player2ID, true
	}
	return m.Player1ID, true
}
