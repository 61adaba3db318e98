// SPDX-License-Identifier: EPL-2.0

package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/ik5/audgrain"
	"github.com/ik5/audgrain/audio"
	"github.com/ik5/audgrain/grain"
	"github.com/ik5/audgrain/host"
	"github.com/ik5/audgrain/preset"
)

var errUsage = errors.New("usage")

type shell struct {
	node     *host.Node
	wavePath string
	out      io.Writer
	quit     bool
}

type command struct {
	name  string
	usage string
	arity int
	run   func(*shell, []string) (string, error)
}

var commands []command

func init() {
	commands = []command{
		{"play", "play", 0, playCommand},
		{"stop", "stop", 0, stopCommand},
		{"set", "set <parameter> <value>", 2, setCommand},
		{"show", "show", 0, showCommand},
		{"stats", "stats", 0, statsCommand},
		{"load", "load <preset.json>", 1, loadCommand},
		{"save", "save <preset.json>", 1, saveCommand},
		{"help", "help", 0, helpCommand},
		{"quit", "quit", 0, quitCommand},
	}
}

func (s *shell) eval(line string) (string, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return "", nil
	}

	name, args := fields[0], fields[1:]
	for _, cmd := range commands {
		if cmd.name != name {
			continue
		}
		if len(args) != cmd.arity {
			return "", fmt.Errorf("%w: %s", errUsage, cmd.usage)
		}
		result, err := cmd.run(s, args)
		if err != nil {
			return "", fmt.Errorf("%s: %w", name, err)
		}

		return result, nil
	}

	return "", fmt.Errorf("unknown command %q (try help)", name)
}

func playCommand(s *shell, _ []string) (string, error) {
	s.node.Play()
	return "", nil
}

func stopCommand(s *shell, _ []string) (string, error) {
	s.node.Stop()
	return "", nil
}

func setCommand(s *shell, args []string) (string, error) {
	var err error
	s.node.UpdateParams(func(p *grain.Params) {
		err = setParam(p, args[0], args[1])
	})

	return "", err
}

// setParam applies one preset field given as text, so the shell accepts the
// same names and ranges as preset files.
func setParam(p *grain.Params, field, value string) error {
	raw := value
	if _, err := strconv.ParseFloat(value, 64); err != nil && value != "true" && value != "false" {
		b, err := json.Marshal(value)
		if err != nil {
			return err
		}
		raw = string(b)
	}

	name, err := json.Marshal(field)
	if err != nil {
		return err
	}

	var f preset.File
	dec := json.NewDecoder(strings.NewReader("{" + string(name) + ":" + raw + "}"))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&f); err != nil {
		return fmt.Errorf("%s: %w", field, err)
	}
	if f.WavePath != "" {
		return errors.New("wave_path cannot be set live; use load")
	}

	return preset.ApplyFile(p, &f)
}

func showCommand(s *shell, _ []string) (string, error) {
	p := s.node.Params()
	var buf bytes.Buffer
	if err := preset.Encode(&buf, preset.FromParams(&p, s.wavePath)); err != nil {
		return "", err
	}

	return strings.TrimSpace(buf.String()), nil
}

func statsCommand(s *shell, _ []string) (string, error) {
	state := grain.Stopped
	if s.node.Playing() {
		state = grain.Playing
	}

	return fmt.Sprintf("%s position %.3fs voices %d grains %d blocks %d",
		state, s.node.Position(), s.node.ActiveVoices(), s.node.GrainsStarted(), s.node.Blocks()), nil
}

func loadCommand(s *shell, args []string) (string, error) {
	pr, err := preset.LoadJSON(args[0])
	if err != nil {
		return "", err
	}

	wave := s.node.Params().Wave
	if pr.WavePath != "" && pr.WavePath != s.wavePath {
		w, err := audgrain.LoadFile(nil, pr.WavePath, audio.LoadOptions{SampleRate: s.node.SampleRate()})
		if err != nil {
			return "", err
		}
		wave = w
		s.wavePath = pr.WavePath
	}
	pr.Params.Wave = wave
	s.node.SetParams(pr.Params)

	return "loaded " + args[0], nil
}

func saveCommand(s *shell, args []string) (string, error) {
	p := s.node.Params()
	if err := preset.SaveJSON(args[0], &preset.Preset{Params: p, WavePath: s.wavePath}); err != nil {
		return "", err
	}

	return "saved " + args[0], nil
}

func helpCommand(*shell, []string) (string, error) {
	var b strings.Builder
	for _, cmd := range commands {
		fmt.Fprintf(&b, "  %s\n", cmd.usage)
	}
	b.WriteString("parameters use the preset field names, e.g. set grain_duration_ms 80")

	return b.String(), nil
}

func quitCommand(s *shell, _ []string) (string, error) {
	s.quit = true
	return "", nil
}
