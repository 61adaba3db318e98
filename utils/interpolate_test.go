// SPDX-License-Identifier: EPL-2.0

package utils

import (
	"math"
	"testing"
)

func TestCubicInterpolate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		y0, y1, y2, y3 float32
		x              float32
		want           float32
		tolerance      float32
	}{
		{name: "start returns y1", y0: 0, y1: 1, y2: 2, y3: 3, x: 0, want: 1, tolerance: 1e-6},
		{name: "end returns y2", y0: 0, y1: 1, y2: 2, y3: 3, x: 1, want: 2, tolerance: 1e-6},
		{name: "linear data stays linear", y0: 1, y1: 2, y2: 3, y3: 4, x: 0.25, want: 2.25, tolerance: 1e-5},
		{name: "symmetric around zero", y0: -1, y1: -0.5, y2: 0.5, y3: 1, x: 0.5, want: 0, tolerance: 1e-5},
		{name: "flat", y0: 0.3, y1: 0.3, y2: 0.3, y3: 0.3, x: 0.7, want: 0.3, tolerance: 1e-6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := CubicInterpolate(tt.y0, tt.y1, tt.y2, tt.y3, tt.x)
			if math.Abs(float64(got-tt.want)) > float64(tt.tolerance) {
				t.Errorf("CubicInterpolate() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLinearInterpolate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		y0, y1 float32
		x      float32
		want   float32
	}{
		{name: "start", y0: -1, y1: 1, x: 0, want: -1},
		{name: "end", y0: -1, y1: 1, x: 1, want: 1},
		{name: "midpoint", y0: -1, y1: 1, x: 0.5, want: 0},
		{name: "quarter", y0: 0, y1: 0.8, x: 0.25, want: 0.2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := LinearInterpolate(tt.y0, tt.y1, tt.x)
			if math.Abs(float64(got-tt.want)) > 1e-6 {
				t.Errorf("LinearInterpolate() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestInterpolate_ZeroAllocs(t *testing.T) {
	var sink float32
	allocs := testing.AllocsPerRun(1000, func() {
		sink += CubicInterpolate(0.1, 0.2, 0.3, 0.4, 0.5)
		sink += LinearInterpolate(0.1, 0.2, 0.5)
	})

	if allocs != 0 {
		t.Errorf("interpolation allocated %v times, want 0", allocs)
	}
	_ = sink
}

func BenchmarkLinearInterpolate(b *testing.B) {
	b.ReportAllocs()

	var sink float32
	for i := 0; b.Loop(); i++ {
		sink += LinearInterpolate(float32(i&7), float32(i&3), 0.37)
	}
	_ = sink
}

func BenchmarkCubicInterpolate(b *testing.B) {
	b.ReportAllocs()

	var sink float32
	for i := 0; b.Loop(); i++ {
		sink += CubicInterpolate(0.1, float32(i&7), float32(i&3), 0.4, 0.37)
	}
	_ = sink
}
