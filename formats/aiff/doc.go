// SPDX-License-Identifier: EPL-2.0

// Package aiff decodes AIFF files into audio.Source values using
// github.com/go-audio/aiff.
//
// Samples of 8, 16, 24 and 32 bits are normalized to [-1,1). The go-audio
// decoder needs to seek, so input that does not implement io.Seeker is read
// into memory first.
package aiff
