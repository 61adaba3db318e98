// SPDX-License-Identifier: EPL-2.0

package preset

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ik5/audgrain/dsp"
	"github.com/ik5/audgrain/grain"
)

var ErrInvalidPreset = errors.New("invalid preset")

// File is the JSON schema for grain presets. Absent fields keep the value
// of the params the file is applied to.
type File struct {
	WavePath string `json:"wave_path"`

	GrainDurationMs *float64 `json:"grain_duration_ms"`
	DurationRandMs  *float64 `json:"duration_rand_ms"`

	Scheduling        *string  `json:"scheduling"`
	ActiveVoices      *float64 `json:"active_voices"`
	GrainsPerSecond   *float64 `json:"grains_per_second"`
	Density           *int     `json:"density"`
	ProbabilityGate   *bool    `json:"probability_gate"`
	TimeJitterPercent *float64 `json:"time_jitter_percent"`

	Positioning      *string  `json:"positioning"`
	StartPoint       *float64 `json:"start_point"`
	StartPointRandMs *float64 `json:"start_point_rand_ms"`
	Speed            *float64 `json:"speed"`
	ScrubPosition    *float64 `json:"scrub_position"`

	ReverseChance *float64 `json:"reverse_chance"`

	Attack      *float64 `json:"attack"`
	Decay       *float64 `json:"decay"`
	AttackCurve *float64 `json:"attack_curve"`
	DecayCurve  *float64 `json:"decay_curve"`
	WindowShape *string  `json:"window_shape"`
	Crossfade   *string  `json:"crossfade"`
	Overlap     *float64 `json:"overlap"`
	Smoothing   *float64 `json:"smoothing"`

	Pitch      *float64 `json:"pitch"`
	PitchRand  *float64 `json:"pitch_rand"`
	Pan        *float64 `json:"pan"`
	PanRand    *float64 `json:"pan_rand"`
	VolumeRand *float64 `json:"volume_rand"`

	WarmStart *bool `json:"warm_start"`
}

// Preset is a loaded preset: engine params plus the asset it names.
type Preset struct {
	Params grain.Params
	// WavePath is absolute or relative to the working directory.
	WavePath string
}

// LoadJSON loads a preset file and applies it on top of the default params.
// A relative wave_path is resolved against the preset's directory.
func LoadJSON(path string) (*Preset, error) {
	fd, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fd.Close()

	p, err := Decode(fd)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	if p.WavePath != "" && !filepath.IsAbs(p.WavePath) {
		p.WavePath = filepath.Clean(filepath.Join(filepath.Dir(path), p.WavePath))
	}

	return p, nil
}

// Decode reads one preset from r on top of the default params.
func Decode(r io.Reader) (*Preset, error) {
	var f File
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPreset, err)
	}

	p := &Preset{Params: grain.DefaultParams()}
	if err := ApplyFile(&p.Params, &f); err != nil {
		return nil, err
	}
	p.WavePath = strings.TrimSpace(f.WavePath)

	return p, nil
}

// ApplyFile applies a parsed preset onto dst, validating every field set.
func ApplyFile(dst *grain.Params, f *File) error {
	if dst == nil {
		return fmt.Errorf("%w: nil destination params", ErrInvalidPreset)
	}
	if f == nil {
		return nil
	}

	a := applier{}
	a.rng(&dst.GrainDurationMs, f.GrainDurationMs, "grain_duration_ms", 1, 10000)
	a.rng(&dst.DurationRandMs, f.DurationRandMs, "duration_rand_ms", 0, 10000)
	a.rng(&dst.ActiveVoices, f.ActiveVoices, "active_voices", 0, 128)
	a.rng(&dst.GrainsPerSecond, f.GrainsPerSecond, "grains_per_second", 0, 1000)
	a.rng(&dst.TimeJitterPercent, f.TimeJitterPercent, "time_jitter_percent", 0, 100)
	a.rng(&dst.StartPoint, f.StartPoint, "start_point", 0, 1e6)
	a.rng(&dst.StartPointRandMs, f.StartPointRandMs, "start_point_rand_ms", 0, 1e6)
	a.rng(&dst.Speed, f.Speed, "speed", 0, 800)
	a.rng(&dst.ScrubPosition, f.ScrubPosition, "scrub_position", 0, 100)
	a.rng(&dst.ReverseChance, f.ReverseChance, "reverse_chance", 0, 100)
	a.rng(&dst.Attack, f.Attack, "attack", 0, 1)
	a.rng(&dst.Decay, f.Decay, "decay", 0, 1)
	a.rng(&dst.AttackCurve, f.AttackCurve, "attack_curve", 0.01, 10)
	a.rng(&dst.DecayCurve, f.DecayCurve, "decay_curve", 0.01, 10)
	a.rng(&dst.Overlap, f.Overlap, "overlap", 1, 5)
	a.rng(&dst.Smoothing, f.Smoothing, "smoothing", 0, 100)
	a.rng(&dst.Pitch, f.Pitch, "pitch", -grain.MaxAbsPitch, grain.MaxAbsPitch)
	a.rng(&dst.PitchRand, f.PitchRand, "pitch_rand", 0, grain.MaxAbsPitch)
	a.rng(&dst.Pan, f.Pan, "pan", -1, 1)
	a.rng(&dst.PanRand, f.PanRand, "pan_rand", 0, 1)
	a.rng(&dst.VolumeRand, f.VolumeRand, "volume_rand", 0, 100)
	if a.err != nil {
		return a.err
	}

	if f.Density != nil {
		if *f.Density < 0 {
			return fmt.Errorf("%w: density must be >= 0", ErrInvalidPreset)
		}
		dst.Density = *f.Density
	}
	if f.ProbabilityGate != nil {
		dst.ProbabilityGate = *f.ProbabilityGate
	}
	if f.WarmStart != nil {
		dst.WarmStart = *f.WarmStart
	}

	if f.Scheduling != nil {
		s, err := ParseScheduling(*f.Scheduling)
		if err != nil {
			return err
		}
		dst.Scheduling = s
	}
	if f.Positioning != nil {
		p, err := ParsePositioning(*f.Positioning)
		if err != nil {
			return err
		}
		dst.Positioning = p
	}
	if f.WindowShape != nil {
		s, err := ParseWindowShape(*f.WindowShape)
		if err != nil {
			return err
		}
		dst.WindowShape = int(s)
	}
	if f.Crossfade != nil {
		c, err := ParseCrossfade(*f.Crossfade)
		if err != nil {
			return err
		}
		dst.Crossfade = int(c)
	}

	return nil
}

// applier records the first range violation.
type applier struct {
	err error
}

func (a *applier) rng(dst *float64, v *float64, name string, lo, hi float64) {
	if a.err != nil || v == nil {
		return
	}
	if !(*v >= lo && *v <= hi) {
		a.err = fmt.Errorf("%w: %s must be in [%g, %g], got %g", ErrInvalidPreset, name, lo, hi, *v)
		return
	}
	*dst = *v
}

func ParseScheduling(s string) (grain.Scheduling, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "overlap":
		return grain.ScheduleOverlap, nil
	case "rate":
		return grain.ScheduleRate, nil
	}

	return 0, fmt.Errorf("%w: scheduling %q (expected overlap or rate)", ErrInvalidPreset, s)
}

func ParsePositioning(s string) (grain.Positioning, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "fixed":
		return grain.PositionFixed, nil
	case "playhead":
		return grain.PositionPlayhead, nil
	}

	return 0, fmt.Errorf("%w: positioning %q (expected fixed or playhead)", ErrInvalidPreset, s)
}

func ParseWindowShape(s string) (dsp.WindowShape, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for shape := dsp.Linear; shape <= dsp.Rectangular; shape++ {
		if shape.String() == name {
			return shape, nil
		}
	}

	return 0, fmt.Errorf("%w: window_shape %q", ErrInvalidPreset, s)
}

func ParseCrossfade(s string) (dsp.Crossfade, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "linear":
		return dsp.CrossfadeLinear, nil
	case "equal_power", "equal-power", "equalpower":
		return dsp.CrossfadeEqualPower, nil
	case "smooth":
		return dsp.CrossfadeSmooth, nil
	}

	return 0, fmt.Errorf("%w: crossfade %q (expected linear, equal_power or smooth)", ErrInvalidPreset, s)
}
