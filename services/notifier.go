package services

import (
	"log/slog"

	"github.com/mukhoplus/Masked-StarCraft/gauntlet"
)

// TopicTournament is the single broadcast topic: every client watching the
// arena subscribes to it.
const TopicTournament = "tournament"

const (
	EventTournamentStarted  = "TOURNAMENT_STARTED"
	EventMatchResult        = "MATCH_RESULT"
	EventTournamentFinished = "TOURNAMENT_FINISHED"
	EventStateChanged       = "STATE_CHANGED"
)

// Event is the wire envelope pushed to websocket subscribers.
type Event struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
}

// Notifier is fire-and-forget: Publish never returns an error and must
// never block a controller operation. Dispatch happens after the database
// transaction commits.
type Notifier interface {
	Publish(topic string, event Event)
}

type hubNotifier struct {
	hub    *gauntlet.Hub
	logger *slog.Logger
}

func NewHubNotifier(hub *gauntlet.Hub, logger *slog.Logger) Notifier {
	return &hubNotifier{hub: hub, logger: logger}
}

func (n *hubNotifier) Publish(topic string, event Event) {
	defer func() {
		if r := recover(); r != nil {
			n.logger.Error("notifier panic swallowed", slog.Any("panic", r))
		}
	}()
	n.hub.Publish(topic, event)
}

// NopNotifier discards every event. Used in tests and when the hub is not
// running.
type NopNotifier struct{}

func (NopNotifier) Publish(string, Event) {}
