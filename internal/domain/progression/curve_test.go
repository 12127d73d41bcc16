package progression

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestThresholdFor_TierBoundaries(t *testing.T) {
	tests := []struct {
		name  string
		level int
		want  int
	}{
		{"level zero", 0, 0},
		{"negative level clamps to zero", -3, 0},
		{"first level", 1, 100},
		{"end of tier one", 10, 1000},
		{"start of tier two", 11, 1250},
		{"end of tier two", 25, 4750},
		{"start of tier three", 26, 5250},
		{"end of tier three", 50, 17250},
		{"start of tier four", 51, 18250},
		{"prestige level", 100, 67250},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ThresholdFor(tt.level))
		})
	}
}

func TestThresholdFor_StrictlyIncreasing(t *testing.T) {
	prev := ThresholdFor(0)
	for level := 1; level <= 150; level++ {
		cur := ThresholdFor(level)
		require.Greater(t, cur, prev, "threshold must strictly increase at level %d", level)
		prev = cur
	}
}

func TestLevelFor(t *testing.T) {
	tests := []struct {
		name string
		xp   int
		want int
	}{
		{"zero xp", 0, 0},
		{"below first threshold", 99, 0},
		{"exactly first threshold", 100, 1},
		{"fifteen xp stays level zero", 15, 0},
		{"one below level ten", 999, 9},
		{"exactly level ten", 1000, 10},
		{"mid tier two", 1250, 11},
		{"exactly level fifty", 17250, 50},
		{"exactly level hundred", 67250, 100},
		{"beyond the reference curve", 68250, 101},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := LevelFor(tt.xp)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLevelFor_NegativeRejected(t *testing.T) {
	_, err := LevelFor(-1)
	assert.ErrorIs(t, err, ErrNegativeExperience)
}

func TestCurve_RoundTripStability(t *testing.T) {
	// levelFor(thresholdFor(levelFor(e))) == levelFor(e) for a spread of XP values.
	for _, xp := range []int{0, 1, 99, 100, 101, 999, 1000, 1249, 4750, 17249, 17250, 67250, 123456} {
		level, err := LevelFor(xp)
		require.NoError(t, err)

		again, err := LevelFor(ThresholdFor(level))
		require.NoError(t, err)
		assert.Equal(t, level, again, "round trip unstable at xp=%d", xp)
	}
}

func TestXPToNextLevel(t *testing.T) {
	remaining, err := XPToNextLevel(0)
	require.NoError(t, err)
	assert.Equal(t, 100, remaining)

	remaining, err = XPToNextLevel(950)
	require.NoError(t, err)
	assert.Equal(t, 50, remaining)

	// Right at a threshold the full next-level cost remains.
	remaining, err = XPToNextLevel(1000)
	require.NoError(t, err)
	assert.Equal(t, 250, remaining)
}

func TestProgressWithinLevel(t *testing.T) {
	progress, err := ProgressWithinLevel(50)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, progress, 1e-9)

	progress, err = ProgressWithinLevel(1000)
	require.NoError(t, err)
	assert.InDelta(t, 0.0, progress, 1e-9)
}
