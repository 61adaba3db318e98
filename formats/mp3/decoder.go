// SPDX-License-Identifier: EPL-2.0

package mp3

import (
	"encoding/binary"
	"fmt"
	"io"

	gomp3 "github.com/hajimehoshi/go-mp3"
	"github.com/ik5/audgrain/audio"
)

// go-mp3 always produces 16-bit little-endian stereo.
const (
	channels       = 2
	bytesPerSample = 2
	bytesPerFrame  = channels * bytesPerSample
)

// mp3Reader is an interface for gomp3.Decoder to allow testing
type mp3Reader interface {
	Read([]byte) (int, error)
	SampleRate() int
	Length() int64
}

type source struct {
	dec        mp3Reader
	sampleRate int
	buf        []byte
	pending    int // bytes of a split sample carried to the next read
}

func (s *source) SampleRate() int { return s.sampleRate }
func (s *source) Channels() int   { return channels }
func (s *source) Close() error    { return nil }
func (s *source) BufSize() int    { return cap(s.buf) / bytesPerSample }

// NumFrames reports the decoded length, or -1 for unseekable input.
func (s *source) NumFrames() int {
	l := s.dec.Length()
	if l < 0 {
		return -1
	}

	return int(l / bytesPerFrame)
}

func (s *source) ReadSamples(dst []float32) (int, error) {
	if len(dst) == 0 {
		return 0, nil
	}

	need := len(dst) * bytesPerSample
	if cap(s.buf) < need {
		buf := make([]byte, need)
		copy(buf, s.buf[:s.pending])
		s.buf = buf
	}
	s.buf = s.buf[:need]

	n, err := s.dec.Read(s.buf[s.pending:])
	n += s.pending

	samples := n / bytesPerSample
	for i := range samples {
		dst[i] = float32(int16(binary.LittleEndian.Uint16(s.buf[2*i:]))) / 32768.0
	}

	s.pending = n % bytesPerSample
	if s.pending > 0 {
		s.buf[0] = s.buf[n-1]
	}

	if err != nil && err != io.EOF {
		return samples, fmt.Errorf("mp3: %w", err)
	}
	if samples == 0 && err == nil {
		// go-mp3 may return zero bytes between frames; report it as a short read.
		return 0, nil
	}

	return samples, err
}

type Decoder struct{}

func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	dec, err := gomp3.NewDecoder(r)
	if err != nil {
		return nil, fmt.Errorf("mp3: %w", err)
	}

	return &source{
		dec:        dec,
		sampleRate: dec.SampleRate(),
		buf:        make([]byte, 8192),
	}, nil
}
