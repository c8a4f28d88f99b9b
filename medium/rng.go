package medium

import "math/rand"

// randStreams holds one pseudorandom stream per semantic source of
// randomness. Separate streams keep unrelated decisions decoupled, so the
// order in which one kind of draw is consumed cannot perturb another.
type randStreams struct {
	loss     *rand.Rand
	tieBreak *rand.Rand
	jitter   *rand.Rand
}

func newRandStreams(seed int64) *randStreams {
	return &randStreams{
		loss:     rand.New(rand.NewSource(seed)),
		tieBreak: rand.New(rand.NewSource(seed + 1)),
		jitter:   rand.New(rand.NewSource(seed + 2)),
	}
}
