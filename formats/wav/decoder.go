// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"bytes"
	"fmt"
	"io"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/ik5/audgrain/audio"
	"github.com/ik5/audgrain/utils"
)

const formatPCM = 1

// pcmReader is the part of wav.Decoder the source needs, so tests can fake it.
type pcmReader interface {
	PCMBuffer(buf *goaudio.IntBuffer) (int, error)
}

type source struct {
	dec        pcmReader
	sampleRate int
	channels   int
	bitDepth   int
	frames     int
	intBuf     *goaudio.IntBuffer
}

func (s *source) SampleRate() int { return s.sampleRate }
func (s *source) Channels() int   { return s.channels }
func (s *source) NumFrames() int  { return s.frames }
func (s *source) Close() error    { return nil }

func (s *source) BufSize() int {
	if s.intBuf != nil {
		return cap(s.intBuf.Data)
	}

	return 4096
}

func (s *source) ReadSamples(dst []float32) (int, error) {
	if len(dst) == 0 {
		return 0, nil
	}

	if s.intBuf == nil || cap(s.intBuf.Data) < len(dst) {
		s.intBuf = &goaudio.IntBuffer{
			Data:           make([]int, len(dst)),
			Format:         &goaudio.Format{NumChannels: s.channels, SampleRate: s.sampleRate},
			SourceBitDepth: s.bitDepth,
		}
	}
	s.intBuf.Data = s.intBuf.Data[:len(dst)]

	n, err := s.dec.PCMBuffer(s.intBuf)
	if err != nil && err != io.EOF {
		return 0, fmt.Errorf("wav: %w", err)
	}
	if n == 0 {
		return 0, io.EOF
	}

	for i, v := range s.intBuf.Data[:n] {
		dst[i] = utils.IntToFloat32(v, s.bitDepth)
	}

	if n < len(dst) || err == io.EOF {
		return n, io.EOF
	}

	return n, nil
}

// Decoder reads integer PCM WAV files of 16, 24 or 32 bits.
type Decoder struct{}

func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	rs, ok := r.(io.ReadSeeker)
	if !ok {
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("reading wav data: %w", err)
		}
		rs = bytes.NewReader(data)
	}

	dec := wav.NewDecoder(rs)
	if !dec.IsValidFile() {
		return nil, ErrNotWavFile
	}

	dec.ReadInfo()
	if err := dec.Err(); err != nil {
		return nil, fmt.Errorf("wav header: %w", err)
	}

	if dec.WavAudioFormat != formatPCM {
		return nil, fmt.Errorf("format tag %d: %w", dec.WavAudioFormat, ErrUnsupportedEncoding)
	}

	bitDepth := int(dec.BitDepth)
	switch bitDepth {
	case 16, 24, 32:
	default:
		return nil, fmt.Errorf("%d bits: %w", bitDepth, ErrUnsupportedBitDepth)
	}

	channels := int(dec.NumChans)
	if channels <= 0 || dec.SampleRate == 0 {
		return nil, ErrUnsupportedLayout
	}

	if err := dec.FwdToPCM(); err != nil {
		return nil, fmt.Errorf("wav data chunk: %w", err)
	}

	return &source{
		dec:        dec,
		sampleRate: int(dec.SampleRate),
		channels:   channels,
		bitDepth:   bitDepth,
		frames:     dec.PCMSize / (channels * bitDepth / 8),
	}, nil
}
