// SPDX-License-Identifier: EPL-2.0

package dsp

import "math"

// WindowShape selects the grain envelope.
type WindowShape int

const (
	Linear WindowShape = iota
	Parabolic
	Gaussian
	Cosine
	Hann
	Blackman
	Triangular
	Rectangular
)

var shapeNames = [...]string{"linear", "parabolic", "gaussian", "cosine", "hann", "blackman", "triangular", "rectangular"}

func (s WindowShape) String() string {
	if s < 0 || int(s) >= len(shapeNames) {
		return "unknown"
	}

	return shapeNames[s]
}

// ClampShape maps an arbitrary selector onto a valid shape.
func ClampShape(v int) WindowShape {
	return WindowShape(max(int(Linear), min(v, int(Rectangular))))
}

// Crossfade selects the curve used by the Hann shape.
type Crossfade int

const (
	CrossfadeLinear Crossfade = iota
	CrossfadeEqualPower
	CrossfadeSmooth
)

// ClampCrossfade maps an arbitrary selector onto a valid crossfade.
func ClampCrossfade(v int) Crossfade {
	return Crossfade(max(int(CrossfadeLinear), min(v, int(CrossfadeSmooth))))
}

// minCurve keeps pow() well defined for zero or negative curve factors.
const minCurve = 1e-8

// EnvelopeConfig describes a grain envelope. Percent fields are fractions
// in [0,1].
type EnvelopeConfig struct {
	Shape     WindowShape
	Crossfade Crossfade

	Attack      float64
	Decay       float64
	AttackCurve float64
	DecayCurve  float64

	// Overlap above 1 shortens attack and decay proportionally.
	Overlap float64

	// Smoothing in [0,1] widens the Gaussian, bends the smooth Hann curve and
	// softens every shape's slopes.
	Smoothing float64

	// PhaseOffset shifts the Hann phase by PhaseOffset·π/4.
	PhaseOffset float64
}

// ramps returns the attack and decay lengths in samples.
func (c *EnvelopeConfig) ramps(total int) (int, int) {
	a := clamp01(c.Attack)
	d := min(clamp01(c.Decay), 1-a)
	if c.Overlap > 1 {
		a /= c.Overlap
		d /= c.Overlap
	}

	return int(math.Ceil(float64(total) * a)), int(math.Ceil(float64(total) * d))
}

// Envelope returns the gain at sample pos of a grain total samples long.
// The result is always in [0,1].
func Envelope(pos, total int, c *EnvelopeConfig) float64 {
	if total <= 0 {
		return 0
	}

	p := float64(pos)
	n := float64(total)
	x := p / n

	var env float64
	switch c.Shape {
	case Linear, Parabolic:
		attack, decay := c.ramps(total)
		env = 1
		switch {
		case pos < attack:
			t := p / float64(attack)
			if c.Shape == Parabolic {
				env = t * t
			} else {
				env = math.Pow(t, max(minCurve, c.AttackCurve))
			}
		case pos >= total-decay:
			t := 0.0
			if decay > 0 {
				t = float64(total-pos) / float64(decay)
			}
			if c.Shape == Parabolic {
				env = t * t
			} else {
				env = math.Pow(t, max(minCurve, c.DecayCurve))
			}
		}

	case Gaussian:
		center := n * (0.5 + c.Smoothing*0.1)
		width := n * (0.25 + c.Smoothing*0.1)
		d := (p - center) / width
		env = math.Exp(-0.5 * d * d)

	case Cosine:
		env = 0.5 * (1 - math.Cos(2*math.Pi*x))

	case Hann:
		phase := math.Pi*x + c.PhaseOffset*math.Pi*0.25
		switch c.Crossfade {
		case CrossfadeEqualPower:
			s := math.Sin(phase)
			env = s * s
		case CrossfadeSmooth:
			env = math.Pow(0.5*(1-math.Cos(2*phase)), 0.7+0.6*c.Smoothing)
		default:
			env = 0.5 * (1 - math.Cos(2*phase))
		}

	case Blackman:
		env = 0.42 - 0.5*math.Cos(2*math.Pi*x) + 0.08*math.Cos(4*math.Pi*x)

	case Triangular:
		env = 1 - math.Abs(2*x-1)

	default:
		env = 1
	}

	if c.Smoothing > 0 && env > 0 && env < 1 {
		env = math.Pow(env, 1-c.Smoothing*0.3)
	}

	return clamp01(env)
}

// ApplyEnvelope scales buf in place, treating buf[0] as sample first of a
// grain total samples long.
func ApplyEnvelope(buf []float32, first, total int, c *EnvelopeConfig) {
	for i := range buf {
		buf[i] *= float32(Envelope(first+i, total, c))
	}
}

func clamp01(v float64) float64 {
	switch {
	case v < 0 || math.IsNaN(v):
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
