// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"errors"
	"io"
	"math"
	"testing"
)

func TestMonoMixer_ReadSamples(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		channels int
		value    func(frame, ch int) float32
		want     float32
	}{
		{name: "mono passthrough", channels: 1, value: func(int, int) float32 { return 0.5 }, want: 0.5},
		{name: "stereo average", channels: 2, value: func(_, ch int) float32 { return []float32{0.4, 0.6}[ch] }, want: 0.5},
		{name: "cancelling stereo", channels: 2, value: func(_, ch int) float32 { return []float32{1, -1}[ch] }, want: 0},
		{name: "six channels", channels: 6, value: func(_, ch int) float32 { return float32(ch) / 10 }, want: 0.25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			mixer := NewMonoMixer(newMockSource(8000, tt.channels, 64, tt.value))
			if mixer.Channels() != 1 {
				t.Errorf("Channels() = %d, want 1", mixer.Channels())
			}
			if mixer.SampleRate() != 8000 {
				t.Errorf("SampleRate() = %d, want 8000", mixer.SampleRate())
			}

			buf := make([]float32, 16)
			n, err := mixer.ReadSamples(buf)
			if err != nil {
				t.Fatalf("ReadSamples() error = %v", err)
			}
			if n != 16 {
				t.Fatalf("ReadSamples() n = %d, want 16", n)
			}

			for i := range n {
				if math.Abs(float64(buf[i]-tt.want)) > 1e-6 {
					t.Fatalf("buf[%d] = %v, want %v", i, buf[i], tt.want)
				}
			}
		})
	}
}

func TestMonoMixer_EOFAndErrors(t *testing.T) {
	t.Parallel()

	mixer := NewMonoMixer(newConstantSource(8000, 2, 10, 0.1))
	out, err := drain(mixer, 4)
	if err != nil {
		t.Fatalf("drain() error = %v", err)
	}
	if len(out) != 10 {
		t.Errorf("drained %d frames, want 10", len(out))
	}

	n, err := mixer.ReadSamples(make([]float32, 4))
	if n != 0 || err != io.EOF {
		t.Errorf("ReadSamples() after EOF = (%d, %v), want (0, EOF)", n, err)
	}

	boom := errors.New("boom")
	src := newConstantSource(8000, 2, 10, 0)
	src.err = boom
	if _, err := NewMonoMixer(src).ReadSamples(make([]float32, 4)); !errors.Is(err, boom) {
		t.Errorf("ReadSamples() error = %v, want %v", err, boom)
	}
}

func TestMonoMixer_EmptyDst(t *testing.T) {
	t.Parallel()

	n, err := NewMonoMixer(newConstantSource(8000, 2, 10, 0)).ReadSamples(nil)
	if n != 0 || err != nil {
		t.Errorf("ReadSamples(nil) = (%d, %v), want (0, nil)", n, err)
	}
}

func BenchmarkMonoMixer_Stereo(b *testing.B) {
	b.ReportAllocs()

	src := newConstantSource(48000, 2, math.MaxInt32, 0.25)
	mixer := NewMonoMixer(src)
	buf := make([]float32, 1024)

	for b.Loop() {
		mixer.ReadSamples(buf)
	}
}
