// SPDX-License-Identifier: EPL-2.0

// Package vorbis decodes Ogg Vorbis streams into audio.Source values using
// github.com/jfreymuth/oggvorbis. Samples are already float32, so reads go
// straight into the caller's buffer.
package vorbis
