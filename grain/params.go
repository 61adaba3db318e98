// SPDX-License-Identifier: EPL-2.0

package grain

import (
	"math"

	"github.com/ik5/audgrain/audio"
	"github.com/ik5/audgrain/dsp"
)

// Scheduling selects how the interval between grains is derived.
type Scheduling int

const (
	// ScheduleOverlap spaces grains so that ActiveVoices of them overlap.
	ScheduleOverlap Scheduling = iota
	// ScheduleRate fires GrainsPerSecond grains each second.
	ScheduleRate
)

func (s Scheduling) String() string {
	if s == ScheduleRate {
		return "rate"
	}

	return "overlap"
}

// Positioning selects where grains are read from.
type Positioning int

const (
	// PositionFixed reads around StartPoint.
	PositionFixed Positioning = iota
	// PositionPlayhead reads around a playhead that moves at Speed and
	// freezes at ScrubPosition when Speed is zero.
	PositionPlayhead
)

func (p Positioning) String() string {
	if p == PositionPlayhead {
		return "playhead"
	}

	return "fixed"
}

const (
	maxSpeedPercent = 800.0
	freezeSpeed     = 0.001
	minActiveVoices = 0.01
	minGrainsPerSec = 0.1
	minInterval     = 1.0
)

// Params is the per-block parameter snapshot. Percent fields take 0..100,
// Attack and Decay are fractions of the grain.
type Params struct {
	Wave audio.Wave

	GrainDurationMs float64
	DurationRandMs  float64

	Scheduling      Scheduling
	ActiveVoices    float64
	GrainsPerSecond float64
	// Density caps the voices the scheduler keeps alive. Zero disables it.
	Density int
	// ProbabilityGate additionally drops slots with probability
	// 1-Density/MaxVoices.
	ProbabilityGate   bool
	TimeJitterPercent float64

	Positioning      Positioning
	StartPoint       float64 // seconds
	StartPointRandMs float64
	Speed            float64
	ScrubPosition    float64

	ReverseChance float64

	Attack      float64
	Decay       float64
	AttackCurve float64
	DecayCurve  float64
	WindowShape int
	Crossfade   int
	Overlap     float64
	Smoothing   float64

	Pitch     float64
	PitchRand float64
	Pan       float64
	PanRand   float64

	VolumeRand float64

	// WarmStart spawns the expected number of overlapping grains on Play.
	WarmStart bool
}

// DefaultParams returns a dense, centred cloud of 100 ms Hann grains.
func DefaultParams() Params {
	return Params{
		GrainDurationMs: 100,
		Scheduling:      ScheduleOverlap,
		ActiveVoices:    4,
		GrainsPerSecond: 20,
		Positioning:     PositionPlayhead,
		Speed:           100,
		Attack:          0.25,
		Decay:           0.25,
		AttackCurve:     1,
		DecayCurve:      1,
		WindowShape:     int(dsp.Hann),
		Overlap:         1,
	}
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}

	return max(lo, min(v, hi))
}

// grainSeconds returns the base duration and its random range.
func (p *Params) grainSeconds() (float64, float64) {
	return max(0, p.GrainDurationMs) / 1000, max(0, p.DurationRandMs) / 1000
}

func (p *Params) speed() float64 {
	return clamp(p.Speed, 0, maxSpeedPercent) / 100
}

func (p *Params) smoothing() float64 {
	return clamp(p.Smoothing, 0, 100) / 100
}

// frozen reports whether the playhead is parked at the scrub position.
func (p *Params) frozen() bool {
	return p.Positioning == PositionPlayhead && math.Abs(p.speed()) < freezeSpeed
}

func (p *Params) density(maxVoices int) int {
	return max(1, min(p.Density, maxVoices))
}

// interval returns the base spacing between grains in samples.
func (p *Params) interval(sampleRate float64) float64 {
	if p.Scheduling == ScheduleRate {
		return max(minInterval, sampleRate/max(minGrainsPerSec, p.GrainsPerSecond))
	}

	base, _ := p.grainSeconds()

	return max(minInterval, base/max(minActiveVoices, p.ActiveVoices)*sampleRate)
}

func (p *Params) envelope(phaseOffset float64) dsp.EnvelopeConfig {
	return dsp.EnvelopeConfig{
		Shape:       dsp.ClampShape(p.WindowShape),
		Crossfade:   dsp.ClampCrossfade(p.Crossfade),
		Attack:      clamp(p.Attack, 0, 1),
		Decay:       clamp(p.Decay, 0, 1),
		AttackCurve: p.AttackCurve,
		DecayCurve:  p.DecayCurve,
		Overlap:     clamp(p.Overlap, 1, 5),
		Smoothing:   p.smoothing(),
		PhaseOffset: phaseOffset,
	}
}
