// SPDX-License-Identifier: EPL-2.0

package preset

import (
	"encoding/json"
	"io"
	"os"

	"github.com/ik5/audgrain/dsp"
	"github.com/ik5/audgrain/grain"
)

// FromParams builds a File that sets every field of p.
func FromParams(p *grain.Params, wavePath string) *File {
	ptr := func(v float64) *float64 { return &v }
	scheduling := p.Scheduling.String()
	positioning := p.Positioning.String()
	shape := dsp.ClampShape(p.WindowShape).String()
	crossfade := [...]string{"linear", "equal_power", "smooth"}[dsp.ClampCrossfade(p.Crossfade)]
	density, gate, warm := p.Density, p.ProbabilityGate, p.WarmStart

	return &File{
		WavePath:          wavePath,
		GrainDurationMs:   ptr(p.GrainDurationMs),
		DurationRandMs:    ptr(p.DurationRandMs),
		Scheduling:        &scheduling,
		ActiveVoices:      ptr(p.ActiveVoices),
		GrainsPerSecond:   ptr(p.GrainsPerSecond),
		Density:           &density,
		ProbabilityGate:   &gate,
		TimeJitterPercent: ptr(p.TimeJitterPercent),
		Positioning:       &positioning,
		StartPoint:        ptr(p.StartPoint),
		StartPointRandMs:  ptr(p.StartPointRandMs),
		Speed:             ptr(p.Speed),
		ScrubPosition:     ptr(p.ScrubPosition),
		ReverseChance:     ptr(p.ReverseChance),
		Attack:            ptr(p.Attack),
		Decay:             ptr(p.Decay),
		AttackCurve:       ptr(p.AttackCurve),
		DecayCurve:        ptr(p.DecayCurve),
		WindowShape:       &shape,
		Crossfade:         &crossfade,
		Overlap:           ptr(p.Overlap),
		Smoothing:         ptr(p.Smoothing),
		Pitch:             ptr(p.Pitch),
		PitchRand:         ptr(p.PitchRand),
		Pan:               ptr(p.Pan),
		PanRand:           ptr(p.PanRand),
		VolumeRand:        ptr(p.VolumeRand),
		WarmStart:         &warm,
	}
}

// Encode writes f as indented JSON.
func Encode(w io.Writer, f *File) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(f)
}

// SaveJSON writes p to path, creating or truncating it.
func SaveJSON(path string, p *Preset) error {
	fd, err := os.Create(path)
	if err != nil {
		return err
	}

	if err := Encode(fd, FromParams(&p.Params, p.WavePath)); err != nil {
		fd.Close()
		return err
	}

	return fd.Close()
}
