package models

import "time"

// PlayerRole matches the role ENUM in the database.
type PlayerRole string

const (
	RoleAdmin  PlayerRole = "ADMIN"
	RolePlayer PlayerRole = "PLAYER"
)

type PlayerStatus string

const (
	PlayerActive  PlayerStatus = "active"
	PlayerRetired PlayerStatus = "retired"
)

// Player is a registered contestant. Name is the real identity behind the
// mask and is only exposed to admins; Nickname is the public handle.
// Retired players stay in the table because finished matches reference them.
type Player struct {
	ID           int          `json:"id" db:"id"`
	Name         string       `json:"name,omitempty" db:"name"`
	Nickname     string       `json:"nickname" db:"nickname"`
	PasswordHash string       `json:"-" db:"password_hash"`
	Race         string       `json:"race" db:"race"`
	Role         PlayerRole   `json:"role" db:"role"`
	Status       PlayerStatus `json:"-" db:"status"`
	CreatedAt    time.Time    `json:"created_at" db:"created_at"`
}

func (p Player) Active() bool {
	return p.Status == PlayerActive
}
