package gauntlet

import (
	"sort"

	"github.com/mukhoplus/Masked-StarCraft/models"
)

// CurrentStreak counts the player's consecutive wins ending at the most
// recent match, scanning backward until a match the player did not win.
// Matches must be ordered by round ascending.
func CurrentStreak(playerID int, ascending []models.Match) int {
	streak := 0
	for i := len(ascending) - 1; i >= 0; i-- {
		m := ascending[i]
		if m.WinnerID == nil || *m.WinnerID != playerID {
			break
		}
		streak++
	}
	return streak
}

// StreakAtMatch replays the history up to and including the target round and
// returns the streak the target's winner held at that moment. The counter
// resets only on matches the target winner sat in and lost; matches between
// other players leave it untouched.
func StreakAtMatch(target models.Match, ascending []models.Match) int {
	if target.WinnerID == nil {
		return 0
	}
	winnerID := *target.WinnerID

	streak := 0
	for _, m := range ascending {
		if m.Round > target.Round {
			break
		}
		if m.WinnerID == nil {
			continue
		}
		switch {
		case *m.WinnerID == winnerID:
			streak++
		case m.HasSeat(winnerID):
			streak = 0
		}
	}
	return streak
}

// MaxStreaks computes the tournament's best streak and every player who
// reached it. One forward pass: a win extends the winner's running streak,
// a loss resets the loser's. Ties are not broken; the returned ids are
// sorted ascending. The champion and the max-streak holders are independent
// awards and may differ.
func MaxStreaks(ascending []models.Match) ([]int, int) {
	current := make(map[int]int)
	best := make(map[int]int)

	for _, m := range ascending {
		if m.WinnerID == nil {
			continue
		}
		w := *m.WinnerID
		current[w]++
		if current[w] > best[w] {
			best[w] = current[w]
		}
		if loser, ok := m.LoserID(); ok {
			current[loser] = 0
		}
	}

	if len(best) == 0 {
		return nil, 0
	}

	max := 0
	for _, v := range best {
		if v > max {
			max = v
		}
	}
	ids := make([]int, 0, len(best))
	for id, v := range best {
		if v == max {
			ids = append(ids, id)
		}
	}
	sort.Ints(ids)
	return ids, max
}
