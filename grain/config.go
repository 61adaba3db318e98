// SPDX-License-Identifier: EPL-2.0

package grain

import (
	"fmt"

	"github.com/decred/slog"
)

const (
	DefaultSampleRate   = 48000
	DefaultMaxBlockSize = 1024
	DefaultMaxVoices    = 32
	DefaultChunkFrames  = 256

	// MinGrainDuration is the shortest grain, in seconds, the engine will play.
	MinGrainDuration = 0.005
	// MaxAbsPitch bounds the resolved pitch shift in semitones.
	MaxAbsPitch = 60.0
)

// Config fixes the resources of an Engine for its whole lifetime.
type Config struct {
	SampleRate int
	// MaxBlockSize is the largest Input.Frames accepted by ProcessBlock.
	MaxBlockSize int
	MaxVoices    int
	// ChunkFrames is the number of source frames pulled per reader call.
	ChunkFrames int
	// MaxReverseFrames is the longest reversed segment, in source frames, a
	// voice holds. Zero means two seconds at SampleRate.
	MaxReverseFrames int
	// Seed makes grain randomisation reproducible.
	Seed   uint64
	Logger slog.Logger
}

func (c Config) withDefaults() Config {
	if c.SampleRate == 0 {
		c.SampleRate = DefaultSampleRate
	}
	if c.MaxBlockSize == 0 {
		c.MaxBlockSize = DefaultMaxBlockSize
	}
	if c.MaxVoices == 0 {
		c.MaxVoices = DefaultMaxVoices
	}
	if c.ChunkFrames == 0 {
		c.ChunkFrames = DefaultChunkFrames
	}
	if c.MaxReverseFrames == 0 {
		c.MaxReverseFrames = 2 * c.SampleRate
	}
	if c.Logger == nil {
		c.Logger = slog.Disabled
	}

	return c
}

func (c Config) validate() error {
	switch {
	case c.SampleRate < 0:
		return fmt.Errorf("sample rate %d: %w", c.SampleRate, ErrInvalidConfig)
	case c.MaxBlockSize < 0:
		return fmt.Errorf("max block size %d: %w", c.MaxBlockSize, ErrInvalidConfig)
	case c.MaxVoices < 0:
		return fmt.Errorf("max voices %d: %w", c.MaxVoices, ErrInvalidConfig)
	case c.ChunkFrames < 0:
		return fmt.Errorf("chunk frames %d: %w", c.ChunkFrames, ErrInvalidConfig)
	case c.MaxReverseFrames < 0:
		return fmt.Errorf("max reverse frames %d: %w", c.MaxReverseFrames, ErrInvalidConfig)
	}

	return nil
}

// ringCapacity is the per-channel buffer size of a voice.
func (c Config) ringCapacity() int {
	return c.ChunkFrames + 4*c.MaxBlockSize
}
