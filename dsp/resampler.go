// SPDX-License-Identifier: EPL-2.0

package dsp

import (
	"math"

	"github.com/ik5/audgrain/utils"
)

// LinearResampler reads frames out of per-channel rings at a fixed ratio of
// source frames per output frame, interpolating linearly between neighbours.
// The fractional read position is kept between calls.
type LinearResampler struct {
	ratio float64
	pos   float64
}

func NewLinearResampler(ratio float64) *LinearResampler {
	r := &LinearResampler{}
	r.Reset(ratio)

	return r
}

// Reset rewinds the read position and sets a new ratio.
func (r *LinearResampler) Reset(ratio float64) {
	if !(ratio > 0) || math.IsInf(ratio, 0) {
		ratio = 1
	}
	r.ratio = ratio
	r.pos = 0
}

func (r *LinearResampler) Ratio() float64 { return r.ratio }

// Needed returns how many buffered frames are required to produce n output
// frames without running dry.
func (r *LinearResampler) Needed(n int) int {
	if n <= 0 {
		return 0
	}

	return int(r.pos+float64(n-1)*r.ratio) + 2
}

// Process writes up to n frames per channel into out and consumes the source
// frames it has moved past. When flush is set the last buffered frame is
// used on its own instead of waiting for a successor. It returns the number
// of frames written, which is short only when the rings run dry.
func (r *LinearResampler) Process(rings []*Ring, out [][]float32, n int, flush bool) int {
	if len(rings) == 0 {
		return 0
	}

	avail := rings[0].Len()
	written := 0
	pos := r.pos

	for written < n {
		i := int(pos)
		if i+1 >= avail && !(flush && i < avail) {
			break
		}

		frac := float32(pos - float64(i))
		for c, ring := range rings {
			y0 := ring.At(i)
			y1 := y0
			if i+1 < avail {
				y1 = ring.At(i + 1)
			}
			out[c][written] = utils.LinearInterpolate(y0, y1, frac)
		}

		written++
		pos += r.ratio
	}

	consumed := min(int(pos), avail)
	for _, ring := range rings {
		ring.Discard(consumed)
	}
	r.pos = pos - float64(consumed)

	return written
}
