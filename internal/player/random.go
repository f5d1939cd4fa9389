// SPDX-License-Identifier: MIT

package player

import "math"

const (
	// fallbackDuration stands in when neither the decoder nor the buffer
	// has produced a usable duration yet. Conservative half hour.
	fallbackDuration = 30 * 60

	windowFloor    = 20  // never seek into the first seconds
	windowTailGap  = 5   // keep clear of the end
	windowLowFrac  = 0.05
	windowHighFrac = 0.9

	degenerateMin = 20
	degenerateMax = 300

	// minRandomDuration is the shortest media that still gets a random
	// window; anything shorter seeks to a deterministic midpoint.
	minRandomDuration = 35
)

// effectiveDuration picks the duration to randomize over: the authoritative
// value when finite, else the buffered range, else the conservative default.
// Random seeking must never block on duration metadata that has not arrived.
func effectiveDuration(duration, buffered float64) float64 {
	if duration > 0 && !math.IsInf(duration, 1) && !math.IsNaN(duration) {
		return duration
	}
	if buffered > 0 {
		return buffered
	}
	return fallbackDuration
}

// randomSeekTarget draws a uniform target from the statistically safe window
// [max(20, 0.05*D), min(D-5, 0.9*D)]. For media too short to hold a window it
// degrades to a deterministic midpoint instead of failing.
// unit must return a value in [0, 1).
func randomSeekTarget(duration float64, unit func() float64) float64 {
	lo := math.Max(windowFloor, windowLowFrac*duration)
	hi := math.Min(duration-windowTailGap, windowHighFrac*duration)
	if duration <= minRandomDuration || lo >= hi {
		return clamp(duration/2, degenerateMin, degenerateMax)
	}
	return lo + unit()*(hi-lo)
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}
