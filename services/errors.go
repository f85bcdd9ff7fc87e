package services

import "errors"

// Business errors shared across services and the HTTP error mapping. These
// are user-facing; infrastructure faults from the repositories propagate
// unchanged and fall through to a 500.
var (
	// Tournament state machine
	ErrTournamentAlreadyInProgress = errors.New("a tournament is already in progress")
	ErrInsufficientPlayers         = errors.New("at least two active players are required to start a tournament")
	ErrInsufficientMaps            = errors.New("at least one active map is required to start a tournament")
	ErrTournamentNotFound          = errors.New("no tournament is in progress")
	ErrNoActiveMatch               = errors.New("no match is currently in progress")
	ErrUnknownPlayer               = errors.New("winner does not resolve to a known player")
	ErrNotAParticipant             = errors.New("player is not a participant of the current match")
	ErrTournamentNotFinished       = errors.New("only finished tournaments have logs")

	// Roster
	ErrPlayerNotFound     = errors.New("player not found")
	ErrAdminNotRetirable  = errors.New("admins cannot be retired")
	ErrNicknameTaken      = errors.New("nickname is already in use")
	ErrGameMapNotFound    = errors.New("map not found")
	ErrGameMapNameTaken   = errors.New("map name is already in use")
	ErrInvalidCredentials = errors.New("invalid nickname or password")

	// Storage
	ErrArchiveUnavailable = errors.New("log archive storage is not configured")
)
