// SPDX-License-Identifier: EPL-2.0

package grain

import (
	"fmt"
	"math"
	"slices"

	"github.com/ik5/audgrain/audio"
	"github.com/ik5/audgrain/dsp"
)

// mixChannels is the number of source channels that feed the mono downmix.
const mixChannels = 2

// Voice plays one grain. All buffers are allocated by the Pool; starting a
// grain only opens a reader.
type Voice struct {
	active bool

	reader    audio.Reader
	deint     *audio.Deinterleaver
	resampler *dsp.LinearResampler
	rings     [mixChannels]*dsp.Ring
	srcCh     int
	mixCh     int
	chunk     int
	sub       int
	exhausted bool

	scratch []float32
	planar  [mixChannels][]float32
	out     [mixChannels][]float32
	view    [mixChannels][]float32
	mono    []float32

	reversed bool
	reverse  []float32
	revPos   int
	revLen   int

	samplesRemaining int
	samplesPlayed    int
	totalSamples     int
	pan              float64
	volume           float64
	offset           int
	env              dsp.EnvelopeConfig
}

func newVoice(cfg Config) *Voice {
	v := &Voice{
		resampler: dsp.NewLinearResampler(1),
		chunk:     cfg.ChunkFrames,
		scratch:   make([]float32, cfg.ChunkFrames*audio.MaxChannels),
		mono:      make([]float32, cfg.MaxBlockSize),
		reverse:   make([]float32, cfg.MaxReverseFrames),
	}
	for c := range mixChannels {
		v.rings[c] = dsp.NewRing(cfg.ringCapacity())
		v.planar[c] = make([]float32, cfg.ChunkFrames)
		v.out[c] = make([]float32, cfg.MaxBlockSize)
	}

	return v
}

// Active reports whether the voice is playing a grain.
func (v *Voice) Active() bool { return v.active }

// Remaining returns the output samples left in the current grain.
func (v *Voice) Remaining() int { return v.samplesRemaining }

// start opens the grain described by g. The voice turns active only when
// every step succeeded. frame delays the first output sample within the
// current block. A reversed segment longer than the reverse buffer keeps
// its last frames; g is updated to the part actually played.
func (v *Voice) start(g *GrainParameters, env dsp.EnvelopeConfig, ses *session, sampleRate, frame int) error {
	if g.Reversed && g.SourceFrames > len(v.reverse) {
		skip := g.SourceFrames - len(v.reverse)
		g.StartTime += float64(skip) / float64(ses.sampleRate)
		g.SourceFrames = len(v.reverse)
	}

	r, err := ses.wave.NewReader(audio.ReaderSettings{
		StartSeconds:    g.StartTime,
		MaxDecodeFrames: v.chunk,
	})
	if err != nil {
		return fmt.Errorf("open reader at %.4fs: %w: %w", g.StartTime, ErrDecodeFailure, err)
	}
	ch := r.NumChannels()
	if ch != ses.channels {
		return fmt.Errorf("reader reports %d channels, asset has %d: %w", ch, ses.channels, ErrDecodeFailure)
	}

	ratio := g.Ratio * float64(ses.sampleRate) / float64(sampleRate)
	total := int(math.Round(g.Duration * float64(sampleRate)))

	v.reader = r
	v.deint = ses.deint
	v.srcCh = ch
	v.mixCh = min(ch, mixChannels)
	v.exhausted = false
	v.reversed = g.Reversed
	v.revPos, v.revLen = 0, 0
	for _, ring := range v.rings {
		ring.Reset()
	}
	v.resampler.Reset(ratio)
	v.sub = max(1, int(float64(v.rings[0].Cap()-3)/ratio))

	if g.Reversed {
		frames, err := v.readReversed(g.SourceFrames)
		if err != nil {
			v.reader = nil
			return err
		}
		total = min(total, int(math.Ceil(float64(frames)/ratio)))
		g.Duration = min(g.Duration, float64(total)/float64(sampleRate))
	}
	if total <= 0 {
		v.reader = nil
		return fmt.Errorf("grain of %d samples: %w", total, ErrDegenerateGrain)
	}

	v.totalSamples = total
	v.samplesRemaining = total
	v.samplesPlayed = 0
	v.pan = g.Pan
	v.volume = g.Volume
	v.env = env
	v.offset = frame
	v.active = true

	return nil
}

// readReversed decodes the segment, downmixes it into the reverse buffer
// and flips it. The voice then streams one channel from that buffer. It
// returns the frames read.
func (v *Voice) readReversed(frames int) (int, error) {
	frames = min(frames, len(v.reverse))

	read := 0
	for read < frames {
		want := min(v.chunk, frames-read)
		n := v.reader.PopAudio(v.scratch[:want*v.srcCh])
		if n == 0 {
			if v.reader.HasFailed() {
				return 0, fmt.Errorf("reverse segment after %d frames: %w", read, ErrDecodeFailure)
			}
			break
		}

		v.deint.Process(v.scratch[:n*v.srcCh], v.planar[:v.mixCh])
		dst := v.reverse[read : read+n]
		if v.mixCh == 1 {
			copy(dst, v.planar[0][:n])
		} else {
			l, r := v.planar[0], v.planar[1]
			for i := range dst {
				dst[i] = (l[i] + r[i]) * 0.5
			}
		}
		read += n
	}
	if read == 0 {
		return 0, fmt.Errorf("empty reverse segment: %w", ErrDegenerateGrain)
	}

	slices.Reverse(v.reverse[:read])
	v.revLen = read
	v.mixCh = 1

	return read, nil
}

// pull moves up to want frames from the source into the rings.
func (v *Voice) pull(want int) (int, error) {
	if v.reversed {
		n := min(want, v.revLen-v.revPos)
		v.rings[0].Push(v.reverse[v.revPos : v.revPos+n])
		v.revPos += n

		return n, nil
	}

	n := v.reader.PopAudio(v.scratch[:want*v.srcCh])
	if n == 0 {
		if v.reader.HasFailed() {
			return 0, ErrDecodeFailure
		}
		return 0, nil
	}

	v.deint.Process(v.scratch[:n*v.srcCh], v.planar[:v.mixCh])
	for c := range v.mixCh {
		v.rings[c].Push(v.planar[c][:n])
	}

	return n, nil
}

// fill tops the rings up to need frames unless the source runs out.
func (v *Voice) fill(need int) error {
	for !v.exhausted && v.rings[0].Len() < need {
		want := min(v.chunk, v.rings[0].Free())
		if want == 0 {
			return nil
		}
		n, err := v.pull(want)
		if err != nil {
			return err
		}
		if n == 0 {
			v.exhausted = true
		}
	}

	return nil
}

// render mixes up to frames samples of the grain into left and right.
// Once the source is exhausted the rest of the grain is silent. A decode
// failure keeps what was rendered before it and deactivates the voice.
func (v *Voice) render(left, right []float32, frames int) error {
	from := min(v.offset, frames)
	v.offset = 0
	n := min(frames-from, v.samplesRemaining)
	if n <= 0 {
		return nil
	}

	done := 0
	var err error
	for done < n {
		k := min(v.sub, n-done)
		if err = v.fill(v.resampler.Needed(k)); err != nil {
			break
		}
		for c := range v.mixCh {
			v.view[c] = v.out[c][done:]
		}
		got := v.resampler.Process(v.rings[:v.mixCh], v.view[:v.mixCh], k, v.exhausted)
		done += got
		if got < k {
			break
		}
	}

	mono := v.mono[:n]
	if v.mixCh == 1 {
		copy(mono[:done], v.out[0][:done])
	} else {
		l, r := v.out[0], v.out[1]
		for i := range done {
			mono[i] = (l[i] + r[i]) * 0.5
		}
	}
	clear(mono[done:])

	if err != nil {
		n = done
		mono = mono[:n]
	}

	dsp.ApplyEnvelope(mono, v.samplesPlayed, v.totalSamples, &v.env)
	gl, gr := dsp.EqualPowerGains(v.pan, v.volume)
	dsp.MixIn(left[from:from+n], mono, gl)
	dsp.MixIn(right[from:from+n], mono, gr)

	v.samplesPlayed += n
	v.samplesRemaining -= n
	if err != nil {
		v.stop()
		return fmt.Errorf("at sample %d of %d: %w", v.samplesPlayed, v.totalSamples, err)
	}
	if v.samplesRemaining <= 0 {
		v.stop()
	}

	return nil
}

// stop deactivates the voice and drops its reader.
func (v *Voice) stop() {
	v.active = false
	v.reader = nil
	v.deint = nil
	v.samplesRemaining = 0
	v.offset = 0
}
