// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"fmt"

	dspresample "github.com/cwbudde/algo-dsp/dsp/resample"
)

// resampleBest converts interleaved samples from one rate to another one
// channel at a time. Channels are trimmed to the shortest result.
func resampleBest(samples []float32, channels, from, to int) ([]float32, error) {
	frames := len(samples) / channels
	in := make([]float64, frames)
	planes := make([][]float64, channels)
	outFrames := -1

	for c := range channels {
		for i := range frames {
			in[i] = float64(samples[i*channels+c])
		}

		r, err := dspresample.NewForRates(
			float64(from),
			float64(to),
			dspresample.WithQuality(dspresample.QualityBest),
		)
		if err != nil {
			return nil, fmt.Errorf("resample %d to %d Hz: %w", from, to, err)
		}
		planes[c] = r.Process(in)

		if outFrames < 0 || len(planes[c]) < outFrames {
			outFrames = len(planes[c])
		}
	}

	out := make([]float32, outFrames*channels)
	for c, plane := range planes {
		for i := range outFrames {
			out[i*channels+c] = float32(plane[i])
		}
	}

	return out, nil
}
