// SPDX-License-Identifier: MIT

package player

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRandomSeekTargetStaysInWindow(t *testing.T) {
	durations := []float64{36, 60, 120, 600, 1800, 3600, 7200, 86400}
	for _, d := range durations {
		lo := math.Max(20, 0.05*d)
		hi := math.Min(d-5, 0.9*d)
		for i := 0; i < 200; i++ {
			target := randomSeekTarget(d, rand.Float64)
			assert.GreaterOrEqual(t, target, lo, "duration %v", d)
			assert.LessOrEqual(t, target, hi, "duration %v", d)
		}
	}
}

func TestRandomSeekTargetShortMedia(t *testing.T) {
	// Media too short for a window degrades to the deterministic midpoint.
	for _, d := range []float64{1, 10, 24, 30, 35} {
		got := randomSeekTarget(d, func() float64 { t.Fatal("rng must not be used"); return 0 })
		assert.Equal(t, clamp(d/2, 20, 300), got, "duration %v", d)
	}
}

func TestRandomSeekTargetUniformEndpoints(t *testing.T) {
	// D=3600: window [180, 3240].
	assert.InDelta(t, 180, randomSeekTarget(3600, func() float64 { return 0 }), 0.001)
	assert.InDelta(t, 3239.9, randomSeekTarget(3600, func() float64 { return 0.99996 }), 0.2)
}

func TestEffectiveDuration(t *testing.T) {
	assert.Equal(t, 3600.0, effectiveDuration(3600, 100), "authoritative duration wins")
	assert.Equal(t, 250.0, effectiveDuration(0, 250), "buffered range stands in")
	assert.Equal(t, 1800.0, effectiveDuration(0, 0), "conservative default")
	assert.Equal(t, 1800.0, effectiveDuration(math.Inf(1), 0))
	assert.Equal(t, 1800.0, effectiveDuration(math.NaN(), 0))
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 20.0, clamp(5, 20, 300))
	assert.Equal(t, 300.0, clamp(900, 20, 300))
	assert.Equal(t, 42.0, clamp(42, 20, 300))
}
