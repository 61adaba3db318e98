// SPDX-License-Identifier: EPL-2.0

package dsp

import "testing"

func TestRing_PushWrapDiscard(t *testing.T) {
	t.Parallel()

	r := NewRing(4)
	if n := r.Push([]float32{1, 2, 3}); n != 3 {
		t.Fatalf("Push() = %d, want 3", n)
	}

	r.Discard(2)
	if n := r.Push([]float32{4, 5, 6, 7}); n != 3 {
		t.Fatalf("Push() = %d, want 3 (capacity bound)", n)
	}

	if r.Len() != 4 || r.Free() != 0 || r.Cap() != 4 {
		t.Fatalf("Len/Free/Cap = %d/%d/%d, want 4/0/4", r.Len(), r.Free(), r.Cap())
	}

	want := []float32{3, 4, 5, 6}
	for i, w := range want {
		if got := r.At(i); got != w {
			t.Errorf("At(%d) = %v, want %v", i, got, w)
		}
	}

	r.Discard(10)
	if r.Len() != 0 {
		t.Errorf("Len() after over-discard = %d, want 0", r.Len())
	}

	r.Push([]float32{9})
	r.Reset()
	if r.Len() != 0 || r.Free() != 4 {
		t.Errorf("after Reset Len/Free = %d/%d, want 0/4", r.Len(), r.Free())
	}
}

func TestRing_ZeroAllocs(t *testing.T) {
	r := NewRing(1024)
	chunk := make([]float32, 256)

	allocs := testing.AllocsPerRun(100, func() {
		r.Push(chunk)
		r.Discard(200)
	})
	if allocs != 0 {
		t.Errorf("ring allocated %v times, want 0", allocs)
	}
}
