// SPDX-License-Identifier: EPL-2.0

// Package audgrain is a real-time granular synthesizer.
//
// A source asset is split into short, overlapping grains. Each grain gets
// its own position, pitch, envelope and pan, and the grains are mixed into
// a stereo stream one audio block at a time.
//
// # Packages
//
//   - grain: the engine (scheduler, voice pool, playback state machine)
//   - dsp: envelopes, panning, ring buffers, the grain resampler
//   - audio: sources, decoders registry, in-memory waves and readers
//   - formats/wav, formats/mp3, formats/vorbis, formats/aiff: decoders
//   - host: a goroutine-safe wrapper that exposes the engine as an io.Reader
//   - preset: JSON presets
//
// # Quick Start
//
//	wave, err := audgrain.LoadFile(nil, "texture.wav", audio.LoadOptions{SampleRate: 48000})
//	if err != nil {
//		return err
//	}
//	eng, _ := grain.New(grain.Config{SampleRate: 48000})
//	params := grain.DefaultParams()
//	params.Wave = wave
//	pcm, err := audgrain.RenderToStereo16(eng, params, 48000*10, 512)
//
// For live playback wrap the engine in a host.Node and hand it to an audio
// device as a float32 stream; see cmd/grainplay.
package audgrain
