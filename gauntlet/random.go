package gauntlet

import (
	"math/rand"
	"time"
)

// RandSource supplies every random decision the matchmaking engine makes.
// It is injected so tests can script exact pairings.
type RandSource interface {
	// NextIndex returns a uniform value in [0, bound). bound must be > 0.
	NextIndex(bound int) int
	// FlipCoin returns true or false with equal probability.
	FlipCoin() bool
}

type mathRandSource struct {
	r *rand.Rand
}

// NewRandSource returns a RandSource backed by math/rand, seeded from the
// clock. Not safe for concurrent use; the tournament controller is
// single-writer, which is the only place it runs.
func NewRandSource() RandSource {
	return &mathRandSource{r: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

func (s *mathRandSource) NextIndex(bound int) int {
	return s.r.Intn(bound)
}

func (s *mathRandSource) FlipCoin() bool {
	return s.r.Intn(2) == 0
}
