// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"fmt"
	"io"

	"github.com/ik5/audgrain/utils"
)

// Resampler streams src at a new sample rate using cubic interpolation.
// It works on interleaved samples and preserves the channel count. When
// downsampling, input frames pass through a one-pole low-pass first.
//
// It is used when an asset is loaded, not on the render path.
type Resampler struct {
	src      Source
	dstRate  int
	step     float64 // source frames per output frame
	channels int

	// win holds four frames for interpolation, oldest first: t-1, t0, t+1, t+2.
	win    []float32
	has    [4]bool
	primed bool
	frac   float64

	buf    []float32
	bufPos int
	bufLen int
	eof    bool

	lowpass bool
	lpInit  bool
	lpAlpha float32
	lp      []float32
}

func NewResampler(src Source, dstRate int) *Resampler {
	channels := src.Channels()
	step := float64(src.SampleRate()) / float64(dstRate)

	bufFrames := max(1, 4096/max(1, channels))

	return &Resampler{
		src:      src,
		dstRate:  dstRate,
		step:     step,
		channels: channels,
		win:      make([]float32, 4*channels),
		buf:      make([]float32, bufFrames*channels),
		lowpass:  step > 1,
		lpAlpha:  0.5,
		lp:       make([]float32, channels),
	}
}

func (r *Resampler) SampleRate() int { return r.dstRate }
func (r *Resampler) Channels() int   { return r.channels }
func (r *Resampler) BufSize() int    { return r.src.BufSize() }

func (r *Resampler) Close() error {
	if err := r.src.Close(); err != nil {
		return fmt.Errorf("resampler: %w", err)
	}

	return nil
}

// NumFrames estimates the output length from a source that knows its own.
func (r *Resampler) NumFrames() int {
	l, ok := r.src.(Lengther)
	if !ok || l.NumFrames() < 0 {
		return -1
	}

	return int(float64(l.NumFrames()) / r.step)
}

// next copies one source frame into dst. It reports false once src is
// exhausted.
func (r *Resampler) next(dst []float32) (bool, error) {
	if r.bufPos >= r.bufLen {
		if r.eof {
			return false, nil
		}

		n, err := r.src.ReadSamples(r.buf)
		r.bufPos, r.bufLen = 0, n-n%r.channels

		switch {
		case err == io.EOF:
			r.eof = true
		case err != nil:
			return false, fmt.Errorf("resampler read: %w", err)
		case n == 0:
			// A source with nothing to give and no error is treated as done.
			r.eof = true
		}

		if r.bufLen == 0 {
			return false, nil
		}
	}

	copy(dst, r.buf[r.bufPos:r.bufPos+r.channels])
	r.bufPos += r.channels

	if r.lowpass {
		if !r.lpInit {
			copy(r.lp, dst)
			r.lpInit = true
		}
		for c := range dst {
			dst[c] = r.lpAlpha*dst[c] + (1-r.lpAlpha)*r.lp[c]
			r.lp[c] = dst[c]
		}
	}

	return true, nil
}

func (r *Resampler) frame(i int) []float32 {
	return r.win[i*r.channels : (i+1)*r.channels]
}

func (r *Resampler) prime() (bool, error) {
	ok, err := r.next(r.frame(1))
	if err != nil || !ok {
		return false, err
	}
	copy(r.frame(0), r.frame(1))
	r.has[0], r.has[1] = true, true

	for i := 2; i < 4; i++ {
		ok, err := r.next(r.frame(i))
		if err != nil {
			return false, err
		}
		if !ok {
			copy(r.frame(i), r.frame(i-1))
		}
		r.has[i] = ok
	}
	r.primed = true

	return true, nil
}

func (r *Resampler) advance() error {
	copy(r.win, r.win[r.channels:])
	r.has[0], r.has[1], r.has[2] = r.has[1], r.has[2], r.has[3]

	ok, err := r.next(r.frame(3))
	if err != nil {
		return err
	}
	if !ok {
		copy(r.frame(3), r.frame(2))
	}
	r.has[3] = ok

	return nil
}

// ReadSamples produces interleaved samples at the destination rate.
// len(dst) must be a multiple of Channels().
func (r *Resampler) ReadSamples(dst []float32) (int, error) {
	if len(dst)%r.channels != 0 {
		return 0, ErrInvalidDstSize
	}

	if !r.primed {
		ok, err := r.prime()
		if err != nil {
			return 0, err
		}
		if !ok {
			return 0, io.EOF
		}
	}

	ch := r.channels
	frames := len(dst) / ch
	written := 0

	for written < frames {
		for r.frac >= 1 {
			r.frac--
			if err := r.advance(); err != nil {
				return written * ch, err
			}
		}

		if !r.has[1] {
			return written * ch, io.EOF
		}

		x := float32(r.frac)
		out := dst[written*ch : (written+1)*ch]
		for c := range out {
			out[c] = utils.CubicInterpolate(r.win[c], r.win[ch+c], r.win[2*ch+c], r.win[3*ch+c], x)
		}

		written++
		r.frac += r.step
	}

	return written * ch, nil
}
