// Package mosh copies the samples of a container into a new one in an order
// that breaks inter-frame prediction.
package mosh

import (
	"math"
	"math/rand/v2"
	"sort"
)

// Shuffler permutes n elements through swap. *rand.Rand satisfies it.
type Shuffler interface {
	Shuffle(n int, swap func(i, j int))
}

// FreshRand returns an independently seeded generator for every track.
func FreshRand(int) Shuffler {
	return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())) //nolint:gosec
}

// SeededRand returns a source of reproducible generators, one stream per track.
func SeededRand(seed uint64) func(track int) Shuffler {
	return func(track int) Shuffler {
		return rand.New(rand.NewPCG(seed, uint64(track))) //nolint:gosec
	}
}

// SplitIndex returns the 1-based index of the first sample whose position may
// change: round(count*fraction)+1 clamped to count. The fraction is clamped to
// [0, 1] and NaN counts as 0. An empty track yields 0.
func SplitIndex(count uint32, fraction float64) uint32 {
	if math.IsNaN(fraction) {
		fraction = 0
	}
	fraction = min(max(fraction, 0), 1)
	s := min(uint32(math.Round(float64(count)*fraction)), count) + 1
	return min(s, count)
}

// Plan returns the order in which the samples of a track are emitted. The
// samples before the split index keep their place, the rest are shuffled. The
// first sample never moves.
func Plan(count uint32, fraction float64, rng Shuffler) []uint32 {
	order := make([]uint32, count)
	for i := range order {
		order[i] = uint32(i + 1) //nolint:gosec
	}
	start := max(SplitIndex(count, fraction), 2)
	if start <= count {
		suffix := order[start-1:]
		rng.Shuffle(len(suffix), func(i, j int) {
			suffix[i], suffix[j] = suffix[j], suffix[i]
		})
	}
	return order
}

// FollowPlan orders the samples of a track along the plan of a reference
// track. Every sample joins the reference sample whose decode time is the
// latest one not after its own; groups are emitted in reference plan order and
// keep their internal order. Times must be in the same unit and ascending.
func FollowPlan(refPlan []uint32, refTimes, times []uint64) []uint32 {
	if len(refTimes) == 0 {
		order := make([]uint32, len(times))
		for i := range order {
			order[i] = uint32(i + 1) //nolint:gosec
		}
		return order
	}

	groups := make([][]uint32, len(refTimes))
	for i, tm := range times {
		g := sort.Search(len(refTimes), func(k int) bool { return refTimes[k] > tm }) - 1
		g = max(g, 0)
		groups[g] = append(groups[g], uint32(i+1)) //nolint:gosec
	}

	order := make([]uint32, 0, len(times))
	for _, ref := range refPlan {
		order = append(order, groups[ref-1]...)
	}
	return order
}
