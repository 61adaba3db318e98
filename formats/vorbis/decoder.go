// SPDX-License-Identifier: EPL-2.0

package vorbis

import (
	"fmt"
	"io"

	"github.com/ik5/audgrain/audio"
	"github.com/jfreymuth/oggvorbis"
)

// oggReader is an interface for oggvorbis.Reader to allow testing
type oggReader interface {
	SampleRate() int
	Channels() int
	Read([]float32) (int, error)
	Length() int64
}

type source struct {
	dec        oggReader
	sampleRate int
	channels   int
}

func (s *source) SampleRate() int { return s.sampleRate }
func (s *source) Channels() int   { return s.channels }
func (s *source) Close() error    { return nil }
func (s *source) BufSize() int    { return 4096 }

// NumFrames reports the stream length, or -1 when the container does not
// carry it.
func (s *source) NumFrames() int {
	if l := s.dec.Length(); l > 0 {
		return int(l)
	}

	return -1
}

// ReadSamples decodes straight into dst. oggvorbis counts interleaved
// values, not frames, so only whole frames are requested.
func (s *source) ReadSamples(dst []float32) (int, error) {
	whole := len(dst) - len(dst)%s.channels
	if whole == 0 {
		return 0, nil
	}

	n, err := s.dec.Read(dst[:whole])
	if err != nil && err != io.EOF {
		return n, fmt.Errorf("vorbis: %w", err)
	}

	return n, err
}

type Decoder struct{}

func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	dec, err := oggvorbis.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("vorbis: %w", err)
	}

	return &source{
		dec:        dec,
		sampleRate: dec.SampleRate(),
		channels:   dec.Channels(),
	}, nil
}
