// SPDX-License-Identifier: EPL-2.0

// Package audiotest holds sources and waves for tests.
package audiotest

import (
	"io"
	"math"
)

// MockSource is a test helper that generates audio data for testing.
// It implements audio.Source and audio.Lengther.
type MockSource struct {
	sampleRate  int
	channels    int
	totalFrames int
	generated   int
	waveform    func(frame int, channel int) float32

	// Err, when set, is returned once the source has produced FailAfter frames.
	Err       error
	FailAfter int
	Closed    bool
}

// NewMockSource creates a new mock audio source producing totalFrames frames
// from waveform.
func NewMockSource(sampleRate, channels, totalFrames int, waveform func(frame int, channel int) float32) *MockSource {
	return &MockSource{
		sampleRate:  sampleRate,
		channels:    channels,
		totalFrames: totalFrames,
		waveform:    waveform,
	}
}

// NewSilentSource creates a mock source that generates silence.
func NewSilentSource(sampleRate, channels, totalFrames int) *MockSource {
	return NewConstantSource(sampleRate, channels, totalFrames, 0)
}

// NewSineSource creates a mock source that generates a sine wave.
func NewSineSource(sampleRate, channels, totalFrames int, frequency float64) *MockSource {
	return NewMockSource(sampleRate, channels, totalFrames, func(frame int, _ int) float32 {
		t := float64(frame) / float64(sampleRate)
		return float32(math.Sin(2 * math.Pi * frequency * t))
	})
}

// NewConstantSource creates a mock source with constant value.
func NewConstantSource(sampleRate, channels, totalFrames int, value float32) *MockSource {
	return NewMockSource(sampleRate, channels, totalFrames, func(int, int) float32 {
		return value
	})
}

func (m *MockSource) SampleRate() int { return m.sampleRate }
func (m *MockSource) Channels() int   { return m.channels }
func (m *MockSource) BufSize() int    { return 4096 }
func (m *MockSource) NumFrames() int  { return m.totalFrames }

func (m *MockSource) Close() error {
	m.Closed = true
	return nil
}

// Reset rewinds the source.
func (m *MockSource) Reset() {
	m.generated = 0
}

func (m *MockSource) ReadSamples(dst []float32) (int, error) {
	if m.Err != nil && m.generated >= m.FailAfter {
		return 0, m.Err
	}
	if m.generated >= m.totalFrames {
		return 0, io.EOF
	}

	frames := min(len(dst)/m.channels, m.totalFrames-m.generated)
	if m.Err != nil {
		frames = min(frames, m.FailAfter-m.generated)
	}

	for f := range frames {
		for ch := range m.channels {
			dst[f*m.channels+ch] = m.waveform(m.generated+f, ch)
		}
	}
	m.generated += frames

	if m.generated >= m.totalFrames {
		return frames * m.channels, io.EOF
	}

	return frames * m.channels, nil
}
