// SPDX-License-Identifier: EPL-2.0

// Command grainplay plays a granular texture on the default audio device and
// lets parameters be changed live from a prompt.
//
//	grainplay -in voice.wav -autoplay
//	> set pitch_rand 5
//	> set speed 0
//	> set scrub_position 40
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/chzyer/readline"
	"github.com/decred/slog"
	"github.com/ebitengine/oto/v3"
	"github.com/ik5/audgrain"
	"github.com/ik5/audgrain/audio"
	"github.com/ik5/audgrain/grain"
	"github.com/ik5/audgrain/host"
	"github.com/ik5/audgrain/preset"
	"golang.org/x/sync/errgroup"
)

func main() {
	if err := run(os.Args[1:]); err != nil && !errors.Is(err, flag.ErrHelp) {
		fmt.Fprintln(os.Stderr, "grainplay:", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	fs := flag.NewFlagSet("grainplay", flag.ContinueOnError)
	in := fs.String("in", "", "Source audio file; overrides the preset wave_path")
	presetPath := fs.String("preset", "", "Preset JSON file path (optional)")
	sampleRate := fs.Int("sample-rate", grain.DefaultSampleRate, "Device sample rate in Hz")
	blockFrames := fs.Int("block", 256, "Frames per engine block")
	voices := fs.Int("max-voices", grain.DefaultMaxVoices, "Size of the voice pool")
	hq := fs.Bool("hq", false, "Resample the source with a windowed-sinc filter")
	bufferMs := fs.Int("buffer-ms", 40, "Device buffer length in milliseconds")
	seed := fs.Uint64("seed", uint64(time.Now().UnixNano()), "Random seed")
	logLevel := fs.String("loglevel", "warn", "Log level: trace, debug, info, warn, error")
	autoplay := fs.Bool("autoplay", false, "Start playing immediately")
	if err := fs.Parse(args); err != nil {
		return err
	}

	log := slog.NewBackend(os.Stderr).Logger("GRAN")
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

	wave, err := audgrain.LoadFile(nil, p.WavePath, audio.LoadOptions{SampleRate: *sampleRate, HighQuality: *hq})
	if err != nil {
		return err
	}
	p.Params.Wave = wave

	node, err := host.NewNode(grain.Config{
		SampleRate:   *sampleRate,
		MaxBlockSize: *blockFrames,
		MaxVoices:    *voices,
		Seed:         *seed,
		Logger:       log,
	}, *blockFrames)
	if err != nil {
		return err
	}
	node.SetParams(p.Params)

	otoCtx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   *sampleRate,
		ChannelCount: 2,
		Format:       oto.FormatFloat32LE,
		BufferSize:   time.Duration(*bufferMs) * time.Millisecond,
	})
	if err != nil {
		return fmt.Errorf("audio device: %w", err)
	}
	<-ready

	player := otoCtx.NewPlayer(node)
	player.Play()
	defer player.Close()

	rl, err := readline.New("grain> ")
	if err != nil {
		return err
	}

	sh := &shell{node: node, wavePath: p.WavePath, out: rl.Stdout()}
	if *autoplay {
		node.Play()
	}
	log.Infof("Loaded %s (%.2fs); type help for commands", wave.Name(), wave.Duration())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer stop()
		return repl(rl, sh)
	})
	g.Go(func() error {
		return watch(gctx, node, rl.Stdout())
	})
	g.Go(func() error {
		<-gctx.Done()
		rl.Close()
		return node.Close()
	})

	if err := g.Wait(); err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, host.ErrClosed) {
		return err
	}

	return nil
}

// repl runs commands until quit, EOF or interrupt.
func repl(rl *readline.Instance, sh *shell) error {
	for !sh.quit {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) || errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		result, err := sh.eval(line)
		if err != nil {
			fmt.Fprintln(rl.Stderr(), err)
			continue
		}
		if result != "" {
			fmt.Fprintln(rl.Stdout(), result)
		}
	}

	return nil
}

// watch prints playback notifications until ctx is done.
func watch(ctx context.Context, node *host.Node, w io.Writer) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-node.Events():
			fmt.Fprintf(w, "[%s at block %d]\n", ev.Kind, ev.Block)
		}
	}
}
