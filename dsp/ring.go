// SPDX-License-Identifier: EPL-2.0

package dsp

// Ring is a fixed-capacity FIFO of samples for one channel.
type Ring struct {
	buf  []float32
	head int
	size int
}

func NewRing(capacity int) *Ring {
	return &Ring{buf: make([]float32, max(1, capacity))}
}

func (r *Ring) Len() int  { return r.size }
func (r *Ring) Cap() int  { return len(r.buf) }
func (r *Ring) Free() int { return len(r.buf) - r.size }

// Push appends as much of src as fits and returns how many samples it took.
func (r *Ring) Push(src []float32) int {
	n := min(len(src), r.Free())
	tail := (r.head + r.size) % len(r.buf)

	first := min(n, len(r.buf)-tail)
	copy(r.buf[tail:tail+first], src[:first])
	copy(r.buf[:n-first], src[first:n])
	r.size += n

	return n
}

// At returns the i-th oldest sample. i must be below Len.
func (r *Ring) At(i int) float32 {
	return r.buf[(r.head+i)%len(r.buf)]
}

// Discard drops the n oldest samples.
func (r *Ring) Discard(n int) {
	n = max(0, min(n, r.size))
	r.head = (r.head + n) % len(r.buf)
	r.size -= n
}

func (r *Ring) Reset() {
	r.head = 0
	r.size = 0
}
