package models

import "time"

type GameMapStatus string

const (
	GameMapActive  GameMapStatus = "active"
	GameMapRetired GameMapStatus = "retired"
)

// GameMap is a playable map. Name is unique among active maps only, so a
// retired name can be reissued.
type GameMap struct {
	ID        int           `json:"id" db:"id"`
	Name      string        `json:"name" db:"name"`
	Status    GameMapStatus `json:"-" db:"status"`
	CreatedAt time.Time     `json:"created_at" db:"created_at"`
}
