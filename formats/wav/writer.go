// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"fmt"
	"io"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/ik5/audgrain/utils"
)

const writeChunk = 8192

// WriteWAV16 writes interleaved 16-bit PCM as a WAV file. The writer must
// seek so the header sizes can be patched on close.
func WriteWAV16(w io.WriteSeeker, sampleRate, channels int, samples []int16) error {
	return encode(w, sampleRate, channels, len(samples), func(dst []int, off int) {
		for i := range dst {
			dst[i] = int(samples[off+i])
		}
	})
}

// WriteFloat32 clamps interleaved float samples and writes them as 16-bit PCM.
func WriteFloat32(w io.WriteSeeker, sampleRate, channels int, samples []float32) error {
	return encode(w, sampleRate, channels, len(samples), func(dst []int, off int) {
		utils.Float32sToInts(dst, samples[off:off+len(dst)])
	})
}

func encode(w io.WriteSeeker, sampleRate, channels, total int, fill func(dst []int, off int)) error {
	if channels <= 0 || total%channels != 0 {
		return fmt.Errorf("%d samples over %d channels: %w", total, channels, ErrUnsupportedLayout)
	}

	enc := wav.NewEncoder(w, sampleRate, 16, channels, formatPCM)

	chunk := writeChunk - writeChunk%channels
	buf := &goaudio.IntBuffer{
		Data:           make([]int, min(chunk, max(total, channels))),
		Format:         &goaudio.Format{NumChannels: channels, SampleRate: sampleRate},
		SourceBitDepth: 16,
	}

	for off := 0; off < total; off += chunk {
		n := min(chunk, total-off)
		buf.Data = buf.Data[:n]
		fill(buf.Data, off)

		if err := enc.Write(buf); err != nil {
			return fmt.Errorf("wav write: %w", err)
		}
	}

	if err := enc.Close(); err != nil {
		return fmt.Errorf("wav close: %w", err)
	}

	return nil
}
