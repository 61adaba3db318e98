// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"errors"
	"fmt"
	"io"
	"math"
	"sync/atomic"
)

// ReaderSettings configure a Reader opened on a Wave.
type ReaderSettings struct {
	// StartSeconds is the initial read position. Values outside the wave are
	// clamped to its bounds.
	StartSeconds float64
	// Looping wraps the read position to the start at the end of the wave.
	Looping bool
	// MaxDecodeFrames caps the frames returned by a single PopAudio call.
	// Zero means no cap beyond the destination size.
	MaxDecodeFrames int
}

// Reader is a random-access, non-blocking reader over a Wave.
type Reader interface {
	// PopAudio fills dst with interleaved samples and returns the number of
	// frames written. Zero means end of stream or failure; HasFailed
	// distinguishes the two.
	PopAudio(dst []float32) int
	NumFrames() int
	SampleRate() int
	NumChannels() int
	HasFailed() bool
}

// Wave is a playable audio asset. Engines tell assets apart with ==, so
// implementations should be pointer types.
type Wave interface {
	Name() string
	// Valid reports whether readers can be opened on the wave.
	Valid() bool
	NewReader(s ReaderSettings) (Reader, error)
}

// LoadOptions control how LoadWave converts a Source.
type LoadOptions struct {
	// SampleRate resamples the source when non-zero and different.
	SampleRate int
	// Mono averages all channels into one.
	Mono bool
	// HighQuality resamples the decoded wave with a windowed-sinc filter
	// instead of the streaming cubic Resampler.
	HighQuality bool
}

// PCMWave is a fully decoded wave held in memory as interleaved float32.
// Readers copy out of it without locking or blocking.
type PCMWave struct {
	name       string
	sampleRate int
	channels   int
	samples    []float32

	released atomic.Bool
}

// NewPCMWave wraps interleaved samples. The slice is retained, not copied.
func NewPCMWave(name string, sampleRate, channels int, samples []float32) (*PCMWave, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("wave %q: %w", name, ErrInvalidSampleRate)
	}
	if channels <= 0 || channels > MaxChannels {
		return nil, fmt.Errorf("wave %q: %d channels: %w", name, channels, ErrInvalidChannels)
	}
	if len(samples) < channels {
		return nil, fmt.Errorf("wave %q: %w", name, ErrEmptyWave)
	}

	return &PCMWave{
		name:       name,
		sampleRate: sampleRate,
		channels:   channels,
		samples:    samples[:len(samples)-len(samples)%channels],
	}, nil
}

// LoadWave decodes src completely into a PCMWave and closes it.
func LoadWave(name string, src Source, opts LoadOptions) (*PCMWave, error) {
	defer src.Close()

	if src.Channels() <= 0 {
		return nil, fmt.Errorf("wave %q: %w", name, ErrInvalidChannels)
	}
	if src.SampleRate() <= 0 {
		return nil, fmt.Errorf("wave %q: %w", name, ErrInvalidSampleRate)
	}

	var s Source = src
	convert := opts.SampleRate > 0 && opts.SampleRate != src.SampleRate()
	if convert && !opts.HighQuality {
		s = NewResampler(s, opts.SampleRate)
	}
	if opts.Mono && s.Channels() > 1 {
		s = NewMonoMixer(s)
	}

	channels := s.Channels()
	size := max(s.BufSize(), 4096)
	buf := make([]float32, size-size%channels)

	var samples []float32
	if l, ok := s.(Lengther); ok && l.NumFrames() > 0 {
		samples = make([]float32, 0, l.NumFrames()*channels)
	}

	for {
		n, err := s.ReadSamples(buf)
		samples = append(samples, buf[:n]...)

		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("wave %q: decode: %w", name, err)
		}
		if n == 0 {
			break
		}
	}

	rate := s.SampleRate()
	if convert && opts.HighQuality {
		var err error
		if samples, err = resampleBest(samples, channels, rate, opts.SampleRate); err != nil {
			return nil, fmt.Errorf("wave %q: %w", name, err)
		}
		rate = opts.SampleRate
	}

	return NewPCMWave(name, rate, channels, samples)
}

func (w *PCMWave) Name() string    { return w.name }
func (w *PCMWave) SampleRate() int { return w.sampleRate }
func (w *PCMWave) Channels() int   { return w.channels }
func (w *PCMWave) NumFrames() int  { return len(w.samples) / w.channels }
func (w *PCMWave) Valid() bool     { return !w.released.Load() }

// Samples exposes the interleaved data. Callers must not modify it.
func (w *PCMWave) Samples() []float32 { return w.samples }

// Duration in seconds.
func (w *PCMWave) Duration() float64 {
	return float64(w.NumFrames()) / float64(w.sampleRate)
}

// Release invalidates the wave. Open readers fail on their next PopAudio.
func (w *PCMWave) Release() {
	w.released.Store(true)
}

func (w *PCMWave) NewReader(s ReaderSettings) (Reader, error) {
	if w.released.Load() {
		return nil, fmt.Errorf("wave %q: %w", w.name, ErrWaveReleased)
	}
	if math.IsNaN(s.StartSeconds) || math.IsInf(s.StartSeconds, 0) {
		return nil, fmt.Errorf("wave %q: %w", w.name, ErrInvalidStart)
	}

	frames := w.NumFrames()
	pos := int(s.StartSeconds * float64(w.sampleRate))
	pos = max(0, min(pos, frames))
	if s.Looping && pos == frames {
		pos = 0
	}

	return &pcmReader{
		wave:      w,
		pos:       pos,
		looping:   s.Looping,
		maxFrames: s.MaxDecodeFrames,
	}, nil
}

type pcmReader struct {
	wave      *PCMWave
	pos       int
	looping   bool
	maxFrames int
	failed    bool
}

func (r *pcmReader) NumFrames() int   { return r.wave.NumFrames() }
func (r *pcmReader) SampleRate() int  { return r.wave.sampleRate }
func (r *pcmReader) NumChannels() int { return r.wave.channels }
func (r *pcmReader) HasFailed() bool  { return r.failed }

func (r *pcmReader) PopAudio(dst []float32) int {
	if r.failed {
		return 0
	}
	if r.wave.released.Load() {
		r.failed = true
		return 0
	}

	ch := r.wave.channels
	want := len(dst) / ch
	if r.maxFrames > 0 {
		want = min(want, r.maxFrames)
	}

	total := r.wave.NumFrames()
	written := 0
	for written < want {
		if r.pos >= total {
			if !r.looping {
				break
			}
			r.pos = 0
		}

		n := min(want-written, total-r.pos)
		copy(dst[written*ch:(written+n)*ch], r.wave.samples[r.pos*ch:(r.pos+n)*ch])
		written += n
		r.pos += n
	}

	return written
}
