// SPDX-License-Identifier: EPL-2.0

// Command grainrender renders a granular texture from an audio file into a
// stereo 16-bit WAV file.
//
//	grainrender -in voice.wav -out cloud.wav -duration 10 -preset slow.json
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/decred/slog"
	"github.com/ik5/audgrain"
	"github.com/ik5/audgrain/audio"
	"github.com/ik5/audgrain/formats/wav"
	"github.com/ik5/audgrain/grain"
	"github.com/ik5/audgrain/preset"
)

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintln(os.Stderr, "grainrender:", err)
		}
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("grainrender", flag.ContinueOnError)
	fs.SetOutput(stderr)

	in := fs.String("in", "", "Source audio file (wav, mp3, ogg, aiff); overrides the preset wave_path")
	out := fs.String("out", "grains.wav", "Output WAV file path")
	presetPath := fs.String("preset", "", "Preset JSON file path (optional)")
	duration := fs.Float64("duration", 5, "Render length in seconds")
	sampleRate := fs.Int("sample-rate", grain.DefaultSampleRate, "Render sample rate in Hz")
	blockFrames := fs.Int("block", 512, "Frames per engine block")
	voices := fs.Int("max-voices", grain.DefaultMaxVoices, "Size of the voice pool")
	hq := fs.Bool("hq", false, "Resample the source with a windowed-sinc filter")
	seed := fs.Uint64("seed", 1, "Random seed")
	logLevel := fs.String("loglevel", "info", "Log level: trace, debug, info, warn, error")
	pitch := fs.Float64("pitch", 0, "Pitch shift in semitones, added to the preset")
	speed := fs.Float64("speed", -1, "Playhead speed in percent; negative keeps the preset value")
	if err := fs.Parse(args); err != nil {
		return err
	}

	log := slog.NewBackend(stderr).Logger("GRAN")
	lvl, ok := slog.LevelFromString(*logLevel)
	if !ok {
		return fmt.Errorf("unknown log level %q", *logLevel)
	}
	log.SetLevel(lvl)

	p := &preset.Preset{Params: grain.DefaultParams()}
	if *presetPath != "" {
		var err error
		if p, err = preset.LoadJSON(*presetPath); err != nil {
			return err
		}
	}
	if *in != "" {
		p.WavePath = *in
	}
	if p.WavePath == "" {
		return errors.New("no source: pass -in or a preset with wave_path")
	}
	p.Params.Pitch += *pitch
	if *speed >= 0 {
		p.Params.Speed = *speed
	}

	wave, err := audgrain.LoadFile(nil, p.WavePath, audio.LoadOptions{SampleRate: *sampleRate, HighQuality: *hq})
	if err != nil {
		return err
	}
	p.Params.Wave = wave
	log.Infof("Loaded %s: %.2fs, %d ch", wave.Name(), wave.Duration(), wave.Channels())

	eng, err := grain.New(grain.Config{
		SampleRate:   *sampleRate,
		MaxBlockSize: *blockFrames,
		MaxVoices:    *voices,
		Seed:         *seed,
		Logger:       log,
	})
	if err != nil {
		return err
	}

	frames := int(*duration * float64(*sampleRate))
	pcm, err := audgrain.RenderToStereo16(eng, p.Params, frames, *blockFrames)
	if err != nil {
		return err
	}

	fd, err := os.Create(*out)
	if err != nil {
		return err
	}
	if err := wav.WriteWAV16(fd, *sampleRate, 2, pcm); err != nil {
		fd.Close()
		return err
	}
	if err := fd.Close(); err != nil {
		return err
	}

	fmt.Fprintf(stdout, "Wrote %s: %.2fs stereo at %d Hz\n", *out, float64(frames)/float64(*sampleRate), *sampleRate)

	return nil
}
