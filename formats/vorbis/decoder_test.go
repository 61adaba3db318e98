// SPDX-License-Identifier: EPL-2.0

package vorbis

import (
	"bytes"
	"errors"
	"io"
	"testing"
)

// mockOggReader returns interleaved values like oggvorbis.Reader.
type mockOggReader struct {
	channels int
	data     []float32
	off      int
	length   int64
	err      error
}

func (m *mockOggReader) SampleRate() int { return 48000 }
func (m *mockOggReader) Channels() int   { return m.channels }
func (m *mockOggReader) Length() int64   { return m.length }

func (m *mockOggReader) Read(p []float32) (int, error) {
	if m.err != nil {
		return 0, m.err
	}
	if m.off >= len(m.data) {
		return 0, io.EOF
	}
	n := copy(p, m.data[m.off:])
	m.off += n

	return n, nil
}

func TestSource_ReadSamplesCountsValues(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		channels int
		data     []float32
		dst      int
		want     int
	}{
		{name: "mono", channels: 1, data: []float32{0.1, 0.2, 0.3}, dst: 8, want: 3},
		{name: "stereo", channels: 2, data: []float32{0.1, -0.1, 0.2, -0.2}, dst: 8, want: 4},
		{name: "stereo odd dst trims to frames", channels: 2, data: []float32{0.1, -0.1, 0.2, -0.2}, dst: 3, want: 2},
		{name: "six channels", channels: 6, data: make([]float32, 12), dst: 12, want: 12},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			src := &source{dec: &mockOggReader{channels: tt.channels, data: tt.data}, sampleRate: 48000, channels: tt.channels}

			dst := make([]float32, tt.dst)
			n, err := src.ReadSamples(dst)
			if err != nil {
				t.Fatalf("ReadSamples() error = %v", err)
			}
			if n != tt.want {
				t.Fatalf("ReadSamples() n = %d, want %d", n, tt.want)
			}
			for i := range n {
				if dst[i] != tt.data[i] {
					t.Errorf("dst[%d] = %v, want %v", i, dst[i], tt.data[i])
				}
			}
		})
	}
}

func TestSource_EOFAndErrors(t *testing.T) {
	t.Parallel()

	src := &source{dec: &mockOggReader{channels: 1}, channels: 1}
	if n, err := src.ReadSamples(make([]float32, 4)); n != 0 || err != io.EOF {
		t.Errorf("ReadSamples() = (%d, %v), want (0, EOF)", n, err)
	}

	boom := errors.New("boom")
	src = &source{dec: &mockOggReader{channels: 1, err: boom}, channels: 1}
	if _, err := src.ReadSamples(make([]float32, 4)); !errors.Is(err, boom) {
		t.Errorf("ReadSamples() error = %v, want %v", err, boom)
	}

	src = &source{dec: &mockOggReader{channels: 2}, channels: 2}
	if n, err := src.ReadSamples(make([]float32, 1)); n != 0 || err != nil {
		t.Errorf("ReadSamples(1 value on stereo) = (%d, %v), want (0, nil)", n, err)
	}
}

func TestSource_NumFrames(t *testing.T) {
	t.Parallel()

	known := &source{dec: &mockOggReader{channels: 2, length: 480}, channels: 2}
	if known.NumFrames() != 480 {
		t.Errorf("NumFrames() = %d, want 480", known.NumFrames())
	}

	unknown := &source{dec: &mockOggReader{channels: 2}, channels: 2}
	if unknown.NumFrames() != -1 {
		t.Errorf("NumFrames() = %d, want -1", unknown.NumFrames())
	}
}

func TestDecoder_InvalidInput(t *testing.T) {
	t.Parallel()

	for _, data := range [][]byte{nil, []byte("OggS but not really")} {
		if _, err := (Decoder{}).Decode(bytes.NewReader(data)); err == nil {
			t.Errorf("Decode(%q) error = nil, want error", data)
		}
	}
}
