// SPDX-License-Identifier: EPL-2.0

// Package grain is a block-based granular synthesis engine.
//
// An Engine takes an audio.Wave and, once per audio block, decides which
// grains start, streams each active grain from its own reader through a
// linear resampler, shapes it with an envelope, pans it and mixes it into a
// stereo output.
//
// Usage:
//
//	eng, err := grain.New(grain.Config{SampleRate: 48000, MaxBlockSize: 512})
//	if err != nil {
//		return err
//	}
//	params := grain.DefaultParams()
//	params.Wave = wave
//	out, err := eng.ProcessBlock(&grain.Input{Frames: 512, Play: []int{0}, Params: params})
//
// The engine is single threaded: all calls must come from the goroutine that
// renders audio. It does not block and, once voices are running, does not
// allocate apart from one reader per new grain.
//
// Grains are placed either around a fixed StartPoint or around a playhead
// that advances at Speed percent of real time. A playhead speed of zero
// freezes it at ScrubPosition. The number of grains follows the overlap
// (ActiveVoices) or a fixed rate (GrainsPerSecond), optionally limited by
// Density.
package grain
