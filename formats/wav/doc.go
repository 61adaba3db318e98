// SPDX-License-Identifier: EPL-2.0

// Package wav decodes integer PCM WAV files into audio.Source values and
// writes 16-bit PCM WAV files, both on top of github.com/go-audio/wav.
//
// Decoding supports 16, 24 and 32-bit samples in any channel layout. Input
// that does not implement io.Seeker is buffered in memory first.
//
//	src, err := wav.Decoder{}.Decode(f)
//
// Writing needs an io.WriteSeeker because the RIFF sizes are patched when
// the encoder closes:
//
//	err := wav.WriteFloat32(out, 48000, 2, interleaved)
package wav
