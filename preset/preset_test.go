// SPDX-License-Identifier: EPL-2.0

package preset

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ik5/audgrain/dsp"
	"github.com/ik5/audgrain/grain"
)

func TestDecode_OverlaysDefaults(t *testing.T) {
	t.Parallel()

	p, err := Decode(strings.NewReader(`{
		"grain_duration_ms": 80,
		"scheduling": "rate",
		"grains_per_second": 30,
		"positioning": "fixed",
		"window_shape": "Gaussian",
		"crossfade": "equal_power",
		"pitch": -7,
		"warm_start": true,
		"density": 4
	}`))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	want := grain.DefaultParams()
	want.GrainDurationMs = 80
	want.Scheduling = grain.ScheduleRate
	want.GrainsPerSecond = 30
	want.Positioning = grain.PositionFixed
	want.WindowShape = int(dsp.Gaussian)
	want.Crossfade = int(dsp.CrossfadeEqualPower)
	want.Pitch = -7
	want.WarmStart = true
	want.Density = 4

	if p.Params != want {
		t.Errorf("Params = %+v\nwant %+v", p.Params, want)
	}
}

func TestDecode_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		json string
	}{
		{"syntax", `{"pitch": }`},
		{"unknown field", `{"pich": 3}`},
		{"attack above one", `{"attack": 1.5}`},
		{"negative duration", `{"grain_duration_ms": -10}`},
		{"speed too high", `{"speed": 900}`},
		{"pitch out of range", `{"pitch": 72}`},
		{"negative density", `{"density": -1}`},
		{"bad scheduling", `{"scheduling": "random"}`},
		{"bad positioning", `{"positioning": "loop"}`},
		{"bad window", `{"window_shape": "kaiser"}`},
		{"bad crossfade", `{"crossfade": "cubic"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if _, err := Decode(strings.NewReader(tt.json)); !errors.Is(err, ErrInvalidPreset) {
				t.Errorf("Decode(%s) error = %v, want %v", tt.json, err, ErrInvalidPreset)
			}
		})
	}
}

func TestApplyFile_NilInputs(t *testing.T) {
	t.Parallel()

	if err := ApplyFile(nil, &File{}); !errors.Is(err, ErrInvalidPreset) {
		t.Errorf("ApplyFile(nil) error = %v", err)
	}

	p := grain.DefaultParams()
	if err := ApplyFile(&p, nil); err != nil || p != grain.DefaultParams() {
		t.Errorf("ApplyFile(nil file) changed params or failed: %v", err)
	}
}

func TestLoadJSON_ResolvesWavePath(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "cloud.json")
	if err := os.WriteFile(path, []byte(`{"wave_path": "sounds/texture.wav", "speed": 50}`), 0o644); err != nil {
		t.Fatal(err)
	}

	p, err := LoadJSON(path)
	if err != nil {
		t.Fatalf("LoadJSON() error = %v", err)
	}
	if want := filepath.Join(dir, "sounds", "texture.wav"); p.WavePath != want {
		t.Errorf("WavePath = %q, want %q", p.WavePath, want)
	}
	if p.Params.Speed != 50 {
		t.Errorf("Speed = %v, want 50", p.Params.Speed)
	}

	if _, err := LoadJSON(filepath.Join(dir, "missing.json")); err == nil {
		t.Error("LoadJSON() of a missing file succeeded")
	}
}

func TestFromParams_RoundTrip(t *testing.T) {
	t.Parallel()

	src := grain.DefaultParams()
	src.Scheduling = grain.ScheduleRate
	src.WindowShape = int(dsp.Blackman)
	src.Crossfade = int(dsp.CrossfadeSmooth)
	src.ReverseChance = 25
	src.Pan = -0.5
	src.WarmStart = true

	var buf bytes.Buffer
	if err := Encode(&buf, FromParams(&src, "a.wav")); err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	got, err := Decode(&buf)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if got.Params != src || got.WavePath != "a.wav" {
		t.Errorf("round trip = %+v %q\nwant %+v", got.Params, got.WavePath, src)
	}
}

func TestSaveJSON(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "out.json")
	want := &Preset{Params: grain.DefaultParams(), WavePath: "/tmp/x.wav"}
	want.Params.Pitch = 5

	if err := SaveJSON(path, want); err != nil {
		t.Fatalf("SaveJSON() error = %v", err)
	}
	got, err := LoadJSON(path)
	if err != nil {
		t.Fatalf("LoadJSON() error = %v", err)
	}
	if got.Params != want.Params || got.WavePath != want.WavePath {
		t.Errorf("loaded %+v, want %+v", got, want)
	}
}
