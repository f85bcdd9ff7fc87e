package models

import "time"

// TournamentStatus matches the status ENUM in the database.
type TournamentStatus string

const (
	TournamentPreparing  TournamentStatus = "PREPARING"
	TournamentInProgress TournamentStatus = "IN_PROGRESS"
	TournamentFinished   TournamentStatus = "FINISHED"
)

// Tournament is one king-of-the-hill run. At most one tournament may be
// non-FINISHED at any time.
//
// MaxStreakPlayerID persists a single representative of the max-streak tie
// set (the lowest player id). It is a lossy projection; display paths
// recompute the full set from the match ledger.
type Tournament struct {
	ID                int              `json:"id" db:"id"`
	Status            TournamentStatus `json:"status" db:"status"`
	WinnerID          *int             `json:"winner_id,omitempty" db:"winner_id"`
	MaxStreakPlayerID *int             `json:"max_streak_player_id,omitempty" db:"max_streak_player_id"`
	CreatedAt         time.Time        `json:"created_at" db:"created_at"`
}

func (t Tournament) Finished() bool {
	return t.Status == TournamentFinished
}
