// SPDX-License-Identifier: EPL-2.0

package dsp

import "math"

// EqualPowerGains returns the left and right gains for pan in [-1,1] scaled
// by volume. Centre gives cos(π/4) on both sides.
func EqualPowerGains(pan, volume float64) (float32, float32) {
	pan = max(-1, min(pan, 1))
	angle := (pan + 1) * 0.5 * math.Pi * 0.5

	return float32(math.Cos(angle) * volume), float32(math.Sin(angle) * volume)
}

// MixIn adds src·gain into dst. It never overwrites.
func MixIn(dst, src []float32, gain float32) {
	n := min(len(dst), len(src))
	for i := range n {
		dst[i] += src[i] * gain
	}
}
