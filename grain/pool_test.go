// SPDX-License-Identifier: EPL-2.0

package grain

import (
	"testing"

	"github.com/ik5/audgrain/internal/audiotest"
)

func TestPool_AcquireFirstFree(t *testing.T) {
	t.Parallel()

	cfg := Config{SampleRate: testRate, MaxVoices: 4}
	p := NewPool(cfg)
	if p.Len() != 4 {
		t.Fatalf("Len() = %d, want 4", p.Len())
	}

	ses := oneSecondWave(t)
	g := GrainParameters{StartTime: 0, Duration: 0.1, Ratio: 1, Volume: 1}
	fp := flatParams(nil)
	env := fp.envelope(0)

	for i := range 4 {
		v := p.Acquire()
		if v != p.Voices()[i] {
			t.Fatalf("Acquire() #%d did not return slot %d", i, i)
		}
		if err := v.start(&g, env, ses, testRate, 0); err != nil {
			t.Fatalf("start() error = %v", err)
		}
	}
	if v := p.Acquire(); v != nil {
		t.Error("Acquire() on a full pool returned a voice")
	}
	if p.Active() != 4 {
		t.Errorf("Active() = %d, want 4", p.Active())
	}

	p.Voices()[2].stop()
	if v := p.Acquire(); v != p.Voices()[2] {
		t.Error("Acquire() did not reuse the freed slot")
	}

	p.Reset()
	if p.Active() != 0 {
		t.Errorf("Active() after Reset = %d, want 0", p.Active())
	}
}

func TestVoice_RunsForItsDuration(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		ratio float64
	}{
		{"unity", 1},
		{"octave up", 2},
		{"octave down", 0.5},
		{"extreme", 32},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := Config{SampleRate: testRate}.withDefaults()
			v := newVoice(cfg)
			ses := oneSecondWave(t)
			g := GrainParameters{Duration: 0.02, Ratio: tt.ratio, Volume: 1}
			fp := flatParams(nil)
			if err := v.start(&g, fp.envelope(0), ses, testRate, 0); err != nil {
				t.Fatalf("start() error = %v", err)
			}

			left := make([]float32, testBlock)
			right := make([]float32, testBlock)
			blocks := 0
			for v.Active() {
				clear(left)
				clear(right)
				if err := v.render(left, right, testBlock); err != nil {
					t.Fatalf("render() error = %v", err)
				}
				blocks++
				if blocks > 10 {
					t.Fatal("voice outlived its duration")
				}
			}

			// 960 samples span two blocks of 512.
			if blocks != 2 {
				t.Errorf("voice ran %d blocks, want 2", blocks)
			}
			if v.Remaining() != 0 {
				t.Errorf("Remaining() = %d, want 0", v.Remaining())
			}
		})
	}
}

func oneSecondWave(t *testing.T) *session {
	t.Helper()

	wave := audiotest.NewConstantWave(testRate, 2, testRate, 1)
	ses, err := (&Engine{cfg: Config{ChunkFrames: DefaultChunkFrames}}).bind(wave)
	if err != nil {
		t.Fatalf("bind() error = %v", err)
	}

	return ses
}
