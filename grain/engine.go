// SPDX-License-Identifier: EPL-2.0

package grain

import (
	"errors"
	"fmt"
	"math"

	"github.com/decred/slog"
	"github.com/ik5/audgrain/audio"
	"github.com/ik5/audgrain/dsp"
)

// scrubJump is the frozen playhead move, in seconds, that retriggers grains
// immediately.
const scrubJump = 0.01

// State is the playback state of an Engine.
type State int

const (
	Stopped State = iota
	Playing
)

func (s State) String() string {
	if s == Playing {
		return "playing"
	}

	return "stopped"
}

// session is the asset bound by a successful Play.
type session struct {
	wave       audio.Wave
	duration   float64
	channels   int
	sampleRate int
	deint      *audio.Deinterleaver
	position   float64
	frozen     bool
}

// Engine renders grains block by block. It is not safe for concurrent use;
// see the host package for a thread-safe wrapper.
type Engine struct {
	cfg   Config
	log   slog.Logger
	sched *Scheduler
	pool  *Pool
	state State
	ses   *session

	left     []float32
	right    []float32
	filterL  dsp.OnePole
	filterR  dsp.OnePole
	minFrame int
	out      Output
}

func New(cfg Config) (*Engine, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cfg = cfg.withDefaults()

	e := &Engine{
		cfg:   cfg,
		log:   cfg.Logger,
		sched: NewScheduler(cfg.SampleRate, cfg.MaxVoices, cfg.Seed),
		pool:  NewPool(cfg),
		left:  make([]float32, cfg.MaxBlockSize),
		right: make([]float32, cfg.MaxBlockSize),
	}
	e.out.Events = Events{
		OnPlay:     make([]int, 0, 4),
		OnFinished: make([]int, 0, 4),
		OnGrain:    make([]GrainEvent, 0, cfg.MaxVoices),
	}

	return e, nil
}

func (e *Engine) Config() Config    { return e.cfg }
func (e *Engine) State() State      { return e.state }
func (e *Engine) ActiveVoices() int { return e.pool.Active() }

// Position returns the playhead in seconds, or zero when stopped.
func (e *Engine) Position() float64 {
	if e.ses == nil {
		return 0
	}

	return e.ses.position
}

// Frozen reports whether the playhead is parked at the scrub position.
func (e *Engine) Frozen() bool {
	return e.ses != nil && e.ses.frozen
}

// Reset drops all voices and returns the engine to its constructed state.
func (e *Engine) Reset() {
	e.halt()
	e.filterL.Reset()
	e.filterR.Reset()
	e.out.Events.reset()
}

// ProcessBlock renders in.Frames samples. The returned Output is reused by
// the next call. An out-of-range block size stops playback and returns
// ErrInvalidBlockSize with an empty output; later valid blocks render
// normally.
func (e *Engine) ProcessBlock(in *Input) (*Output, error) {
	out := &e.out
	out.Events.reset()
	e.minFrame = 0

	n := in.Frames
	if n <= 0 || n > e.cfg.MaxBlockSize {
		e.log.Errorf("Block of %d frames outside 1..%d", n, e.cfg.MaxBlockSize)
		if e.state == Playing {
			out.Events.OnFinished = append(out.Events.OnFinished, 0)
		}
		e.halt()
		e.finish(0)

		return out, fmt.Errorf("%d frames: %w", n, ErrInvalidBlockSize)
	}

	clear(e.left[:n])
	clear(e.right[:n])
	p := &in.Params

	switch {
	case len(in.Play) > 0:
		if len(in.Stop) > 0 {
			e.stop(clampFrame(in.Stop[0], n))
		}
		e.play(p, clampFrame(in.Play[0], n))
	case len(in.Stop) > 0:
		e.stop(clampFrame(in.Stop[0], n))
	case e.state == Playing && (!sameWave(p.Wave, e.ses.wave) || !p.Wave.Valid()):
		e.rebind(p)
	}

	if e.state == Playing {
		e.advance(p, n)
		for _, f := range e.sched.Advance(p, n, e.pool.Active()) {
			e.spawn(p, max(f, e.minFrame))
		}
		e.renderVoices(n)

		if sm := p.smoothing(); sm > dsp.SmoothingThreshold {
			alpha := dsp.SmoothingAlpha(sm)
			e.filterL.Process(e.left[:n], alpha)
			e.filterR.Process(e.right[:n], alpha)
		}
	}

	e.finish(n)

	return out, nil
}

func (e *Engine) finish(n int) {
	e.out.Left = e.left[:n]
	e.out.Right = e.right[:n]
	e.out.Position = e.Position()
	e.out.ActiveVoices = e.pool.Active()
}

// sameWave reports whether a and b are the same asset. Implementations that
// cannot be compared count as different, so the engine rebinds.
func sameWave(a, b audio.Wave) (same bool) {
	defer func() {
		if recover() != nil {
			same = false
		}
	}()

	return a == b
}

func clampFrame(f, n int) int {
	return max(0, min(f, n-1))
}

// halt drops every voice and the session.
func (e *Engine) halt() {
	e.pool.Reset()
	e.sched.Reset()
	e.ses = nil
	e.state = Stopped
}

func (e *Engine) stop(frame int) {
	if e.state != Playing {
		return
	}
	e.log.Infof("Stopped at frame %d", frame)
	e.halt()
	e.out.Events.OnFinished = append(e.out.Events.OnFinished, frame)
}

func (e *Engine) play(p *Params, frame int) {
	ses, err := e.bind(p.Wave)
	if err != nil {
		e.log.Warnf("Play at frame %d: %v", frame, err)
		e.halt()
		e.out.Events.OnFinished = append(e.out.Events.OnFinished, frame)

		return
	}

	e.pool.Reset()
	e.sched.Reset()
	ses.frozen = p.frozen()
	e.ses = ses
	e.state = Playing
	e.minFrame = frame
	e.out.Events.OnPlay = append(e.out.Events.OnPlay, frame)
	e.log.Infof("Playing %q (%.3fs, %d ch, %d Hz) at frame %d",
		ses.wave.Name(), ses.duration, ses.channels, ses.sampleRate, frame)

	if p.WarmStart {
		e.warmStart(p, frame)
	}
}

// warmStart fills the pool with the number of grains the overlap setting
// would keep alive, so playback does not fade in one grain at a time.
func (e *Engine) warmStart(p *Params, frame int) {
	av := p.ActiveVoices
	if !(av > 0) {
		return
	}
	count := int(math.Floor(av))
	if av < 1 {
		count = 1
	}
	count = min(count, e.cfg.MaxVoices)

	for range count {
		e.spawn(p, frame)
	}
	e.sched.Delay(p.interval(float64(e.cfg.SampleRate)))
}

// rebind switches a playing engine to a new asset. Running voices keep
// reading the old one.
func (e *Engine) rebind(p *Params) {
	ses, err := e.bind(p.Wave)
	if err != nil {
		e.log.Warnf("Asset change: %v", err)
		e.stop(0)

		return
	}

	ses.position = wrap(e.ses.position, ses.duration)
	ses.frozen = e.ses.frozen
	e.ses = ses
	e.log.Debugf("Rebound to %q (%.3fs, %d ch)", ses.wave.Name(), ses.duration, ses.channels)
}

// bind validates w with a probe reader and builds the session for it.
func (e *Engine) bind(w audio.Wave) (ses *session, err error) {
	defer func() {
		if r := recover(); r != nil {
			ses, err = nil, fmt.Errorf("%w: %v", ErrInvalidAsset, r)
		}
	}()

	if w == nil {
		return nil, fmt.Errorf("%w: no wave", ErrInvalidAsset)
	}
	if !w.Valid() {
		return nil, fmt.Errorf("%w: %q is not valid", ErrInvalidAsset, w.Name())
	}

	probe, err := w.NewReader(audio.ReaderSettings{MaxDecodeFrames: e.cfg.ChunkFrames})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidAsset, err)
	}

	ch, sr, frames := probe.NumChannels(), probe.SampleRate(), probe.NumFrames()
	if ch <= 0 || sr <= 0 || frames <= 0 {
		return nil, fmt.Errorf("%w: %q reports %d channels, %d Hz, %d frames",
			ErrInvalidAsset, w.Name(), ch, sr, frames)
	}

	dur := float64(frames) / float64(sr)
	if dur < MinGrainDuration {
		return nil, fmt.Errorf("%w: %q is %.4fs long", ErrInvalidAsset, w.Name(), dur)
	}

	deint, err := audio.NewDeinterleaver(ch)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidAsset, err)
	}

	return &session{
		wave:       w,
		duration:   dur,
		channels:   ch,
		sampleRate: sr,
		deint:      deint,
	}, nil
}

// advance moves the playhead by one block and tracks freeze transitions.
func (e *Engine) advance(p *Params, n int) {
	ses := e.ses
	if p.Positioning != PositionPlayhead {
		ses.frozen = false
		ses.position = clamp(p.StartPoint, 0, ses.duration)

		return
	}

	frozen := p.frozen()
	changed := frozen != ses.frozen
	if changed {
		ses.frozen = frozen
		e.sched.Reset()
		e.log.Debugf("Freeze %v at %.3fs", frozen, ses.position)
	}

	if frozen {
		base, rnd := p.grainSeconds()
		maxValid := max(0, ses.duration-(base+rnd))
		pos := min(clamp(p.ScrubPosition, 0, 100)/100, maxValid/ses.duration) * ses.duration
		if math.Abs(pos-ses.position) > scrubJump {
			e.sched.Reset()
		}
		ses.position = pos

		return
	}

	if !changed {
		step := float64(n) / float64(e.cfg.SampleRate) * p.speed()
		ses.position = wrap(ses.position+step, ses.duration)
	}
}

// spawn starts one grain at frame. Grains that cannot be placed are dropped.
func (e *Engine) spawn(p *Params, frame int) {
	v := e.pool.Acquire()
	if v == nil {
		e.log.Tracef("Grain dropped: %v", ErrVoicePoolExhausted)
		return
	}

	g, err := e.sched.Resolve(p, e.ses)
	if err != nil {
		e.log.Tracef("Grain dropped: %v", err)
		return
	}

	if err := e.startVoice(v, &g, p, frame); err != nil {
		e.logVoiceErr(err)
		return
	}

	e.out.Events.OnGrain = append(e.out.Events.OnGrain, GrainEvent{Frame: frame, GrainParameters: g})
	if e.log.Level() <= slog.LevelTrace {
		e.log.Tracef("Grain at frame %d: start %.4fs dur %.4fs st %.2f pan %.2f vol %.2f rev %v",
			frame, g.StartTime, g.Duration, g.Semitones, g.Pan, g.Volume, g.Reversed)
	}
}

func (e *Engine) startVoice(v *Voice, g *GrainParameters, p *Params, frame int) (err error) {
	defer func() {
		if r := recover(); r != nil {
			v.stop()
			err = fmt.Errorf("start: %v: %w", r, ErrVoicePanic)
		}
	}()

	return v.start(g, p.envelope(g.phaseOffset), e.ses, e.cfg.SampleRate, frame)
}

func (e *Engine) renderVoices(n int) {
	for _, v := range e.pool.voices {
		if !v.active {
			continue
		}
		if err := e.renderVoice(v, n); err != nil {
			e.logVoiceErr(err)
		}
	}
}

func (e *Engine) renderVoice(v *Voice, n int) (err error) {
	defer func() {
		if r := recover(); r != nil {
			v.stop()
			err = fmt.Errorf("render: %v: %w", r, ErrVoicePanic)
		}
	}()

	return v.render(e.left[:n], e.right[:n], n)
}

func (e *Engine) logVoiceErr(err error) {
	if errors.Is(err, ErrVoicePanic) {
		e.log.Errorf("Voice: %v", err)
		return
	}
	e.log.Debugf("Voice: %v", err)
}
