// SPDX-License-Identifier: EPL-2.0

package audio

import "fmt"

// MaxChannels is the largest interleaved layout a Deinterleaver accepts.
const MaxChannels = 8

// Deinterleaver splits interleaved frames into one slice per channel.
type Deinterleaver struct {
	channels int
}

func NewDeinterleaver(channels int) (*Deinterleaver, error) {
	if channels <= 0 || channels > MaxChannels {
		return nil, fmt.Errorf("deinterleaver for %d channels: %w", channels, ErrInvalidChannels)
	}

	return &Deinterleaver{channels: channels}, nil
}

func (d *Deinterleaver) Channels() int { return d.channels }

// Process copies whole frames of interleaved into planar. Only the first
// len(planar) channels are written; the rest are discarded. It returns the
// number of frames written, bounded by the shortest planar slice.
func (d *Deinterleaver) Process(interleaved []float32, planar [][]float32) int {
	frames := len(interleaved) / d.channels
	outs := min(len(planar), d.channels)
	for c := range outs {
		frames = min(frames, len(planar[c]))
	}

	switch {
	case d.channels == 1 && outs == 1:
		copy(planar[0][:frames], interleaved[:frames])
	case d.channels == 2 && outs == 2:
		l, r := planar[0], planar[1]
		for f := range frames {
			l[f] = interleaved[f<<1]
			r[f] = interleaved[f<<1+1]
		}
	default:
		for c := range outs {
			dst := planar[c]
			for f := range frames {
				dst[f] = interleaved[f*d.channels+c]
			}
		}
	}

	return frames
}
