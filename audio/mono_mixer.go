// SPDX-License-Identifier: EPL-2.0

package audio

import "fmt"

// MonoMixer averages every channel of src into a single channel.
type MonoMixer struct {
	src Source
	tmp []float32
}

func NewMonoMixer(src Source) *MonoMixer {
	return &MonoMixer{
		src: src,
		tmp: make([]float32, 4096),
	}
}

func (m *MonoMixer) SampleRate() int { return m.src.SampleRate() }
func (m *MonoMixer) Channels() int   { return 1 }
func (m *MonoMixer) BufSize() int    { return m.src.BufSize() }

func (m *MonoMixer) Close() error {
	if err := m.src.Close(); err != nil {
		return fmt.Errorf("mono mixer: %w", err)
	}

	return nil
}

// NumFrames forwards the length of src when it is known.
func (m *MonoMixer) NumFrames() int {
	if l, ok := m.src.(Lengther); ok {
		return l.NumFrames()
	}

	return -1
}

func (m *MonoMixer) ReadSamples(dst []float32) (int, error) {
	if len(dst) == 0 {
		return 0, nil
	}

	channels := m.src.Channels()
	if channels == 1 {
		return m.src.ReadSamples(dst)
	}

	need := len(dst) * channels
	if cap(m.tmp) < need {
		m.tmp = make([]float32, need)
	}
	m.tmp = m.tmp[:need]

	n, err := m.src.ReadSamples(m.tmp)
	frames := n / channels

	if channels == 2 {
		for f := range frames {
			dst[f] = (m.tmp[f<<1] + m.tmp[f<<1+1]) * 0.5
		}

		return frames, err
	}

	inv := 1 / float32(channels)
	for f := range frames {
		var sum float32
		for _, v := range m.tmp[f*channels : (f+1)*channels] {
			sum += v
		}
		dst[f] = sum * inv
	}

	return frames, err
}
