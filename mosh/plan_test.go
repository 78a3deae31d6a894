package mosh

import (
	"math"
	"slices"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSplitIndex(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		count    uint32
		fraction float64
		want     uint32
	}{
		{name: "fifth_of_hundred", count: 100, fraction: 0.2, want: 21},
		{name: "half_of_ten", count: 10, fraction: 0.5, want: 6},
		{name: "zero", count: 100, fraction: 0, want: 1},
		{name: "one_clamps_to_count", count: 100, fraction: 1, want: 100},
		{name: "above_one", count: 10, fraction: 3, want: 10},
		{name: "negative", count: 10, fraction: -0.5, want: 1},
		{name: "nan", count: 10, fraction: math.NaN(), want: 1},
		{name: "rounds_half_away", count: 5, fraction: 0.5, want: 4},
		{name: "single_sample", count: 1, fraction: 0, want: 1},
		{name: "empty_track", count: 0, fraction: 0.5, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.want, SplitIndex(tt.count, tt.fraction))
		})
	}
}

func identity(n int) []uint32 {
	order := make([]uint32, n)
	for i := range order {
		order[i] = uint32(i + 1)
	}
	return order
}

func TestPlan(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		count    uint32
		fraction float64
		fixed    int // Leading samples that keep their place.
	}{
		{name: "fifth_of_hundred", count: 100, fraction: 0.2, fixed: 20},
		{name: "zero_keeps_first", count: 50, fraction: 0, fixed: 1},
		{name: "one_is_identity", count: 50, fraction: 1, fixed: 50},
		{name: "single_sample", count: 1, fraction: 0, fixed: 1},
		{name: "empty_track", count: 0, fraction: 0.3, fixed: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			plan := Plan(tt.count, tt.fraction, SeededRand(7)(0))
			require.Len(t, plan, int(tt.count))
			require.Equal(t, identity(tt.fixed), plan[:tt.fixed])

			sorted := slices.Clone(plan)
			slices.Sort(sorted)
			require.Equal(t, identity(int(tt.count)), sorted)
		})
	}
}

func TestPlanShufflesSuffix(t *testing.T) {
	t.Parallel()

	plan := Plan(1000, 0.1, SeededRand(42)(0))
	require.NotEqual(t, identity(1000)[100:], plan[100:])
}

func TestSeededRandReproducible(t *testing.T) {
	t.Parallel()

	rnd := SeededRand(99)
	require.Equal(t, Plan(200, 0, rnd(3)), Plan(200, 0, rnd(3)))
	require.NotEqual(t, Plan(200, 0, rnd(0)), Plan(200, 0, rnd(1)))
}

func TestFollowPlan(t *testing.T) {
	t.Parallel()

	refPlan := []uint32{1, 3, 2}
	refTimes := []uint64{0, 100, 200}
	times := []uint64{0, 40, 80, 120, 160, 200, 240}

	require.Equal(t, []uint32{1, 2, 3, 6, 7, 4, 5}, FollowPlan(refPlan, refTimes, times))
	require.Equal(t, []uint32{1, 2}, FollowPlan(nil, nil, []uint64{0, 10}))

	// Samples before the first reference sample join the first group.
	require.Equal(t, []uint32{1, 2, 3}, FollowPlan([]uint32{1, 2}, []uint64{50, 100}, []uint64{0, 60, 120}))
}
