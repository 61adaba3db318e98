// SPDX-License-Identifier: EPL-2.0

// Package mp3 decodes MPEG-1/2 Layer III streams into audio.Source values
// using github.com/hajimehoshi/go-mp3.
//
// The decoder always yields two channels. Length is known when the input
// implements io.Seeker.
package mp3
