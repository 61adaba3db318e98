// SPDX-License-Identifier: EPL-2.0

package grain

import (
	"fmt"
	"math"
	"math/rand/v2"
)

const (
	// freezeJitter is the least start-time spread around a frozen playhead.
	freezeJitter = 0.0005
	// smoothingShift is the start-time shift, in seconds, at full smoothing.
	smoothingShift = 0.010
	maxPhaseOffset = 0.05
	minSegment     = 1e-6
)

// Scheduler decides when grains fire and resolves their parameters. It
// keeps a floating count of samples until the next grain.
type Scheduler struct {
	sampleRate float64
	maxVoices  int
	rng        *rand.Rand
	counter    float64
	slots      []int
}

func NewScheduler(sampleRate, maxVoices int, seed uint64) *Scheduler {
	return &Scheduler{
		sampleRate: float64(sampleRate),
		maxVoices:  maxVoices,
		rng:        rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		slots:      make([]int, 0, maxVoices),
	}
}

// Reset makes the next grain due immediately.
func (s *Scheduler) Reset() { s.counter = 0 }

// Counter returns the samples left until the next grain.
func (s *Scheduler) Counter() float64 { return s.counter }

// Delay sets the samples left until the next grain.
func (s *Scheduler) Delay(samples float64) { s.counter = samples }

// Advance consumes elapsed samples and returns the block frames of the
// grains that should start, given active voices already playing. Slots
// dropped by density gating still consume their interval. The returned
// slice is reused by the next call.
func (s *Scheduler) Advance(p *Params, elapsed, active int) []int {
	s.slots = s.slots[:0]

	base := p.interval(s.sampleRate)
	if math.IsNaN(base) || math.IsInf(base, 0) {
		base = s.sampleRate
	}
	jitter := clamp(p.TimeJitterPercent, 0, 100) / 100
	gated := p.Density > 0
	density := p.density(s.maxVoices)
	chance := float64(density) / float64(s.maxVoices)

	e := float64(elapsed)
	fired := 0
	for s.counter <= e {
		slot := fired
		fired++

		next := base
		if jitter > 0 {
			next = max(minInterval, base+s.uniform(-1, 1)*base*jitter)
		}
		s.counter += next

		if gated {
			if active+len(s.slots) >= density {
				continue
			}
			if p.ProbabilityGate && s.rng.Float64() > chance {
				continue
			}
		}
		// Beyond this the pool cannot take more grains anyway.
		if len(s.slots) == cap(s.slots) {
			continue
		}
		s.slots = append(s.slots, slot)
	}
	s.counter -= e

	// Frames are placed back from the remaining counter at the base
	// interval, which is only an estimate when jitter is on or several
	// grains fire together.
	for i, slot := range s.slots {
		f := e - (s.counter + float64(fired-1-slot)*base)
		s.slots[i] = int(clamp(f, 0, max(0, e-1)))
	}

	return s.slots
}

// Resolve draws the parameters of one grain from p around the playhead of
// ses. It returns ErrDegenerateGrain when the asset cannot hold the grain.
func (s *Scheduler) Resolve(p *Params, ses *session) (GrainParameters, error) {
	dur := ses.duration
	baseDur, durRand := p.grainSeconds()

	g := GrainParameters{assetDuration: dur}
	g.Duration = max(MinGrainDuration, baseDur+s.uniform(0, durRand))
	g.Semitones = clamp(p.Pitch+s.uniform(-p.PitchRand, p.PitchRand), -MaxAbsPitch, MaxAbsPitch)
	g.Ratio = math.Abs(math.Pow(2, g.Semitones/12))
	if g.Duration*g.Ratio > dur {
		g.Duration = dur / g.Ratio
	}
	if g.Duration < MinGrainDuration {
		return g, fmt.Errorf("%.4fs at ratio %.3f: %w", g.Duration, g.Ratio, ErrDegenerateGrain)
	}

	g.Pan = clamp(p.Pan+s.uniform(-1, 1)*clamp(p.PanRand, 0, 1), -1, 1)
	g.Volume = 1 - s.uniform(0, clamp(p.VolumeRand, 0, 100)/100)
	g.Reversed = s.rng.Float64() < clamp(p.ReverseChance, 0, 100)/100

	startRand := max(0, p.StartPointRandMs) / 1000
	var start float64
	if ses.frozen {
		j := max(freezeJitter, startRand/2)
		start = ses.position + s.uniform(-j, j)
	} else {
		start = max(0, p.StartPoint) + s.uniform(0, startRand)
		if p.Positioning == PositionPlayhead {
			start += ses.position
		}
		start = wrap(start, dur)
	}

	if sm := p.smoothing(); sm > 0 {
		start += s.uniform(0, sm*smoothingShift)
		g.phaseOffset = s.uniform(0, maxPhaseOffset*sm)
	}

	span := g.Duration * g.Ratio
	if !g.Reversed {
		g.StartTime = clamp(start, 0, max(0, dur-max(MinGrainDuration, span)))
		return g, nil
	}

	end := wrap(start, dur)
	segStart := max(0, end-span)
	if segStart == 0 {
		end = min(dur, span)
	}
	if end-segStart < minSegment {
		return g, fmt.Errorf("reverse segment at %.4fs: %w", end, ErrDegenerateGrain)
	}
	g.StartTime = segStart
	g.SourceFrames = int(math.Ceil((end - segStart) * float64(ses.sampleRate)))

	return g, nil
}

func (s *Scheduler) uniform(lo, hi float64) float64 {
	return lo + s.rng.Float64()*(hi-lo)
}

// wrap folds v into [0, d).
func wrap(v, d float64) float64 {
	if d <= 0 {
		return 0
	}
	m := math.Mod(v, d)
	if m < 0 {
		m += d
	}
	if m >= d || math.IsNaN(m) {
		return 0
	}

	return m
}
