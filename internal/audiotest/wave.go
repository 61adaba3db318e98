// SPDX-License-Identifier: EPL-2.0

package audiotest

import (
	"errors"
	"fmt"
	"math"
	"sync/atomic"

	"github.com/ik5/audgrain/audio"
)

// ErrOpen is returned by FailingWave readers configured to refuse opening.
var ErrOpen = errors.New("audiotest: reader open refused")

// NewWave builds an in-memory wave from fn. It panics on invalid input.
func NewWave(name string, sampleRate, channels, frames int, fn func(frame, channel int) float32) *audio.PCMWave {
	samples := make([]float32, frames*channels)
	for f := range frames {
		for c := range channels {
			samples[f*channels+c] = fn(f, c)
		}
	}

	w, err := audio.NewPCMWave(name, sampleRate, channels, samples)
	if err != nil {
		panic(fmt.Sprintf("audiotest: %v", err))
	}

	return w
}

// NewConstantWave is a wave whose every sample is v.
func NewConstantWave(sampleRate, channels, frames int, v float32) *audio.PCMWave {
	return NewWave("constant", sampleRate, channels, frames, func(int, int) float32 { return v })
}

// NewSineWave is a sine at freq Hz on every channel.
func NewSineWave(sampleRate, channels, frames int, freq float64) *audio.PCMWave {
	return NewWave("sine", sampleRate, channels, frames, func(f, _ int) float32 {
		return float32(math.Sin(2 * math.Pi * freq * float64(f) / float64(sampleRate)))
	})
}

// NewRampWave is a mono wave where sample i holds i/frames, so a sample's
// value identifies where in the wave it came from.
func NewRampWave(sampleRate, frames int) *audio.PCMWave {
	return NewWave("ramp", sampleRate, 1, frames, func(f, _ int) float32 {
		return float32(f) / float32(frames)
	})
}

// FailingWave wraps a wave and lets tests inject reader faults.
type FailingWave struct {
	*audio.PCMWave

	// Invalid makes Valid report false.
	Invalid bool

	// RefuseOpen makes NewReader return ErrOpen.
	RefuseOpen bool

	// FailAfter makes readers fail once they have produced this many frames.
	// Negative disables it.
	FailAfter int

	// PanicOnPop makes readers panic instead of failing.
	PanicOnPop bool

	// ReportChannels, when non-zero, overrides the reader channel count.
	ReportChannels int

	opened atomic.Int32
}

// NewFailingWave wraps w with faults disabled.
func NewFailingWave(w *audio.PCMWave) *FailingWave {
	return &FailingWave{PCMWave: w, FailAfter: -1}
}

// Opened reports how many readers were created.
func (w *FailingWave) Opened() int { return int(w.opened.Load()) }

func (w *FailingWave) Valid() bool {
	return !w.Invalid && w.PCMWave.Valid()
}

func (w *FailingWave) NewReader(s audio.ReaderSettings) (audio.Reader, error) {
	if w.RefuseOpen {
		return nil, ErrOpen
	}

	r, err := w.PCMWave.NewReader(s)
	if err != nil {
		return nil, err
	}
	w.opened.Add(1)

	return &failingReader{Reader: r, wave: w}, nil
}

type failingReader struct {
	audio.Reader

	wave   *FailingWave
	popped int
	failed bool
}

func (r *failingReader) NumChannels() int {
	if r.wave.ReportChannels != 0 {
		return r.wave.ReportChannels
	}

	return r.Reader.NumChannels()
}

func (r *failingReader) HasFailed() bool { return r.failed || r.Reader.HasFailed() }

func (r *failingReader) PopAudio(dst []float32) int {
	if r.wave.FailAfter >= 0 && r.popped >= r.wave.FailAfter {
		if r.wave.PanicOnPop {
			panic("audiotest: reader exploded")
		}
		r.failed = true

		return 0
	}

	n := r.Reader.PopAudio(dst)
	if r.wave.FailAfter >= 0 && r.popped+n > r.wave.FailAfter {
		n = r.wave.FailAfter - r.popped
	}
	r.popped += n

	return n
}
