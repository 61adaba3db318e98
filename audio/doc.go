// SPDX-License-Identifier: EPL-2.0

// Package audio holds the asset side of the granular engine.
//
// A decoded file arrives as a Source, a pull-based stream of interleaved
// float32 samples. LoadWave drains a Source into a PCMWave, resampling it
// with the cubic Resampler and downmixing it with MonoMixer on the way in
// when asked to.
//
// The engine never touches a Source. It opens Readers on a Wave:
//
//	r, err := wave.NewReader(audio.ReaderSettings{
//	    StartSeconds:    1.25,
//	    MaxDecodeFrames: 256,
//	})
//	n := r.PopAudio(buf) // frames, never blocks
//
// PopAudio copies straight out of memory, so it is safe to call from a
// real-time render loop. A zero return means the reader reached the end of
// the wave or failed; HasFailed tells which. Releasing a wave fails every
// reader open on it.
//
// Deinterleaver splits the interleaved chunks a Reader returns into one
// slice per channel.
package audio
