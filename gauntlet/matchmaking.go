// Package gauntlet holds the king-of-the-hill progression core: matchmaking
// decisions, streak arithmetic and the websocket hub that fans out state
// changes. The matchmaking and streak code is pure; all validation happens in
// the services layer before it is called.
package gauntlet

import (
	"github.com/mukhoplus/Masked-StarCraft/models"
)

// Pairing is a decided matchup: who sits in each seat, on which map, at
// which round. Seat assignment carries no information about who is the
// reigning winner.
type Pairing struct {
	Player1 models.Player
	Player2 models.Player
	GameMap models.GameMap
	Round   int
}

// Engine decides pairings and termination for a gauntlet run. It never
// raises business errors: callers guarantee the preconditions documented on
// each method.
type Engine struct {
	rnd RandSource
}

func NewEngine(rnd RandSource) *Engine {
	return &Engine{rnd: rnd}
}

// OpeningMatch picks the round-1 matchup: two distinct players uniformly at
// random from the roster, seats assigned by an independent coin flip so the
// roster order carries no positional bias, and a uniform random map.
//
// Requires len(roster) >= 2 and len(maps) >= 1.
func (e *Engine) OpeningMatch(roster []models.Player, maps []models.GameMap) Pairing {
	i := e.rnd.NextIndex(len(roster))
	j := e.rnd.NextIndex(len(roster) - 1)
	if j >= i {
		j++
	}

	p := Pairing{
		Player1: roster[i],
		Player2: roster[j],
		GameMap: maps[e.rnd.NextIndex(len(maps))],
		Round:   1,
	}
	if e.rnd.FlipCoin() {
		p.Player1, p.Player2 = p.Player2, p.Player1
	}
	return p
}

// NextMatch decides what follows a recorded result. The challenger pool is
// the active roster minus everyone who has already appeared in this
// tournament minus the reigning winner; tracking "played" rather than
// "played the winner" bounds a run to len(roster)-1 matches. A challenger
// and a map are picked uniformly at random and seats are coin-flipped.
//
// ok is false when the pool is empty: the run is over and the reigning
// winner is champion.
//
// Requires len(maps) >= 1 and a history whose matches all belong to one
// tournament, ordered by round ascending.
func (e *Engine) NextMatch(roster []models.Player, maps []models.GameMap, history []models.Match, winner models.Player) (Pairing, bool) {
	played := make(map[int]struct{}, 2*len(history))
	for _, m := range history {
		played[m.Player1ID] = struct{}{}
		played[m.Player2ID] = struct{}{}
	}

	pool := make([]models.Player, 0, len(roster))
	for _, p := range roster {
		if p.ID == winner.ID {
			continue
		}
		if _, ok := played[p.ID]; ok {
			continue
		}
		pool = append(pool, p)
	}
	if len(pool) == 0 {
		return Pairing{}, false
	}

	p := Pairing{
		Player1: winner,
		Player2: pool[e.rnd.NextIndex(len(pool))],
		GameMap: maps[e.rnd.NextIndex(len(maps))],
		Round:   len(history) + 1,
	}
	if e.rnd.FlipCoin() {
		p.Player1, p.Player2 = p.Player2, p.Player1
	}
	return p, true
}
