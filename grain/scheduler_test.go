// SPDX-License-Identifier: EPL-2.0

package grain

import (
	"errors"
	"math"
	"testing"
)

func oneSecond() *session {
	return &session{duration: 1, sampleRate: testRate, channels: 1}
}

func TestScheduler_Resolve(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		modify func(p *Params)
		ses    *session
		check  func(t *testing.T, g GrainParameters)
	}{
		{
			name:   "forward start clamped before the end",
			modify: func(p *Params) { p.StartPoint = 0.99 },
			check: func(t *testing.T, g GrainParameters) {
				if math.Abs(g.StartTime-0.9) > 1e-12 {
					t.Errorf("StartTime = %v, want 0.9", g.StartTime)
				}
			},
		},
		{
			name: "pitch widens the source span",
			modify: func(p *Params) {
				p.StartPoint = 0.95
				p.Pitch = 12
			},
			check: func(t *testing.T, g GrainParameters) {
				if g.Ratio != 2 || math.Abs(g.StartTime-0.8) > 1e-12 {
					t.Errorf("ratio %v start %v, want 2 and 0.8", g.Ratio, g.StartTime)
				}
			},
		},
		{
			name: "duration truncated to the asset",
			modify: func(p *Params) {
				p.GrainDurationMs = 800
				p.Pitch = 12
			},
			check: func(t *testing.T, g GrainParameters) {
				if math.Abs(g.Duration-0.5) > 1e-12 || g.StartTime != 0 {
					t.Errorf("duration %v start %v, want 0.5 and 0", g.Duration, g.StartTime)
				}
			},
		},
		{
			name:   "pitch clamped",
			modify: func(p *Params) { p.Pitch = 100 },
			ses:    &session{duration: 100, sampleRate: testRate},
			check: func(t *testing.T, g GrainParameters) {
				if g.Semitones != MaxAbsPitch || g.Ratio != 32 {
					t.Errorf("semitones %v ratio %v, want %v and 32", g.Semitones, g.Ratio, MaxAbsPitch)
				}
			},
		},
		{
			name: "pan and volume",
			modify: func(p *Params) {
				p.Pan = 2
				p.VolumeRand = 0
			},
			check: func(t *testing.T, g GrainParameters) {
				if g.Pan != 1 || g.Volume != 1 {
					t.Errorf("pan %v volume %v, want 1 and 1", g.Pan, g.Volume)
				}
			},
		},
		{
			name: "reverse segment ends at the position",
			modify: func(p *Params) {
				p.StartPoint = 0.75
				p.ReverseChance = 100
			},
			check: func(t *testing.T, g GrainParameters) {
				start, end := g.Region()
				if !g.Reversed || math.Abs(start-0.65) > 1e-12 || math.Abs(end-0.75) > 1e-12 {
					t.Errorf("reversed %v region [%v, %v], want [0.65, 0.75]", g.Reversed, start, end)
				}
				if g.SourceFrames != 4800 {
					t.Errorf("SourceFrames = %d, want 4800", g.SourceFrames)
				}
			},
		},
		{
			name: "reverse segment at the start extends forward",
			modify: func(p *Params) {
				p.StartPoint = 0.02
				p.ReverseChance = 100
			},
			check: func(t *testing.T, g GrainParameters) {
				if g.StartTime != 0 || g.SourceFrames != 4800 {
					t.Errorf("start %v frames %d, want 0 and 4800", g.StartTime, g.SourceFrames)
				}
			},
		},
		{
			name: "playhead offsets the start point",
			modify: func(p *Params) {
				p.Positioning = PositionPlayhead
				p.StartPoint = 0.2
			},
			ses: &session{duration: 1, sampleRate: testRate, position: 0.3},
			check: func(t *testing.T, g GrainParameters) {
				if math.Abs(g.StartTime-0.5) > 1e-12 {
					t.Errorf("StartTime = %v, want 0.5", g.StartTime)
				}
			},
		},
		{
			name: "playhead wraps",
			modify: func(p *Params) {
				p.Positioning = PositionPlayhead
				p.StartPoint = 0.5
			},
			ses: &session{duration: 1, sampleRate: testRate, position: 0.75},
			check: func(t *testing.T, g GrainParameters) {
				if math.Abs(g.StartTime-0.25) > 1e-12 {
					t.Errorf("StartTime = %v, want 0.25", g.StartTime)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			p := flatParams(nil)
			tt.modify(&p)
			ses := tt.ses
			if ses == nil {
				ses = oneSecond()
			}

			g, err := NewScheduler(testRate, 32, 1).Resolve(&p, ses)
			if err != nil {
				t.Fatalf("Resolve() error = %v", err)
			}
			tt.check(t, g)
		})
	}
}

func TestScheduler_ResolveDegenerate(t *testing.T) {
	t.Parallel()

	p := flatParams(nil)
	p.Pitch = 24
	ses := &session{duration: 0.006, sampleRate: testRate}

	if _, err := NewScheduler(testRate, 32, 1).Resolve(&p, ses); !errors.Is(err, ErrDegenerateGrain) {
		t.Errorf("Resolve() error = %v, want %v", err, ErrDegenerateGrain)
	}
}

func TestScheduler_ResolveRandomRanges(t *testing.T) {
	t.Parallel()

	p := flatParams(nil)
	p.StartPoint = 0.2
	p.StartPointRandMs = 100
	p.DurationRandMs = 50
	p.PitchRand = 5
	p.PanRand = 0.5
	p.VolumeRand = 40

	s := NewScheduler(testRate, 32, 7)
	ses := &session{duration: 10, sampleRate: testRate}
	for range 1000 {
		g, err := s.Resolve(&p, ses)
		if err != nil {
			t.Fatalf("Resolve() error = %v", err)
		}
		switch {
		case g.StartTime < 0.2 || g.StartTime > 0.3:
			t.Fatalf("StartTime %v outside [0.2, 0.3]", g.StartTime)
		case g.Duration < 0.1 || g.Duration > 0.15:
			t.Fatalf("Duration %v outside [0.1, 0.15]", g.Duration)
		case math.Abs(g.Semitones) > 5:
			t.Fatalf("Semitones %v outside ±5", g.Semitones)
		case math.Abs(g.Pan) > 0.5:
			t.Fatalf("Pan %v outside ±0.5", g.Pan)
		case g.Volume < 0.6 || g.Volume > 1:
			t.Fatalf("Volume %v outside [0.6, 1]", g.Volume)
		}
	}
}

func TestScheduler_AdvanceJitterBounds(t *testing.T) {
	t.Parallel()

	p := flatParams(nil)
	p.TimeJitterPercent = 50
	base := p.interval(testRate)

	s := NewScheduler(testRate, 32, 3)
	for range 500 {
		s.Reset()
		if slots := s.Advance(&p, 0, 0); len(slots) != 1 {
			t.Fatalf("Advance() = %v, want one slot", slots)
		}
		if c := s.Counter(); c < base*0.5 || c > base*1.5 {
			t.Fatalf("jittered interval %v outside [%v, %v]", c, base*0.5, base*1.5)
		}
	}
}

func TestScheduler_AdvanceFrames(t *testing.T) {
	t.Parallel()

	p := flatParams(nil)
	p.Scheduling = ScheduleRate
	p.GrainsPerSecond = 400 // every 120 samples

	s := NewScheduler(testRate, 32, 1)
	slots := s.Advance(&p, testBlock, 0)
	if len(slots) != 5 {
		t.Fatalf("Advance() = %v, want 5 slots", slots)
	}
	for i, f := range slots {
		if f < 0 || f >= testBlock {
			t.Errorf("slot %d at frame %d", i, f)
		}
		if i > 0 && f < slots[i-1] {
			t.Errorf("slots out of order: %v", slots)
		}
	}
	if c := s.Counter(); c != 600-testBlock {
		t.Errorf("Counter() = %v, want %v", c, 600-testBlock)
	}
}

func TestScheduler_ProbabilityGate(t *testing.T) {
	t.Parallel()

	p := flatParams(nil)
	p.Scheduling = ScheduleRate
	p.GrainsPerSecond = 4800 // every 10 samples
	p.Density = 8
	p.ProbabilityGate = true

	s := NewScheduler(testRate, 32, 11)
	total := 0
	for range 200 {
		total += len(s.Advance(&p, 100, 0))
	}

	// 2000 slots, each kept with probability 8/32.
	if total < 400 || total > 600 {
		t.Errorf("%d of 2000 slots passed a 25%% gate", total)
	}
}

func TestWrap(t *testing.T) {
	t.Parallel()

	tests := []struct {
		v, d, want float64
	}{
		{0.5, 1, 0.5},
		{1.25, 1, 0.25},
		{-0.25, 1, 0.75},
		{3, 0, 0},
		{math.NaN(), 1, 0},
	}

	for _, tt := range tests {
		if got := wrap(tt.v, tt.d); math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("wrap(%v, %v) = %v, want %v", tt.v, tt.d, got, tt.want)
		}
	}
}
