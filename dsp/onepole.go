// SPDX-License-Identifier: EPL-2.0

package dsp

import dspcore "github.com/cwbudde/algo-dsp/dsp/core"

// SmoothingThreshold is the smoothing amount above which the post filter runs.
const SmoothingThreshold = 0.5

// OnePole is a one-pole low-pass, y[n] = α·x[n] + (1-α)·y[n-1], whose state
// carries across calls.
type OnePole struct {
	y float32
}

// SmoothingAlpha maps a smoothing amount in [0,1] to the filter coefficient.
func SmoothingAlpha(smoothing float64) float32 {
	return float32(max(0.1, 1-smoothing*0.5))
}

// Process filters buf in place.
func (f *OnePole) Process(buf []float32, alpha float32) {
	y := f.y
	for i, x := range buf {
		y = float32(dspcore.FlushDenormals(float64(x*alpha + y*(1-alpha))))
		buf[i] = y
	}
	f.y = y
}

// Reset clears the filter memory.
func (f *OnePole) Reset() { f.y = 0 }
