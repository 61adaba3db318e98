// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"io"
)

// mockSource generates frames from a waveform function.
type mockSource struct {
	sampleRate  int
	channels    int
	totalFrames int
	generated   int
	waveform    func(frame int, channel int) float32
	err         error
}

func newMockSource(sampleRate, channels, totalFrames int, waveform func(frame int, channel int) float32) *mockSource {
	return &mockSource{
		sampleRate:  sampleRate,
		channels:    channels,
		totalFrames: totalFrames,
		waveform:    waveform,
	}
}

func newConstantSource(sampleRate, channels, totalFrames int, value float32) *mockSource {
	return newMockSource(sampleRate, channels, totalFrames, func(int, int) float32 { return value })
}

func (m *mockSource) SampleRate() int { return m.sampleRate }
func (m *mockSource) Channels() int   { return m.channels }
func (m *mockSource) BufSize() int    { return 4096 }
func (m *mockSource) Close() error    { return nil }

func (m *mockSource) ReadSamples(dst []float32) (int, error) {
	if m.err != nil {
		return 0, m.err
	}
	if m.generated >= m.totalFrames {
		return 0, io.EOF
	}

	frames := min(len(dst)/m.channels, m.totalFrames-m.generated)
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

// drain reads src until EOF and returns everything it produced.
func drain(src Source, bufSize int) ([]float32, error) {
	buf := make([]float32, bufSize)
	var out []float32
	for {
		n, err := src.ReadSamples(buf)
		out = append(out, buf[:n]...)
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return out, err
		}
	}
}
