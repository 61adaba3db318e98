// SPDX-License-Identifier: EPL-2.0

package audio

import "errors"

var (
	ErrInvalidDstSize = errors.New("dst size must be multiple of channels")

	// ErrInvalidChannels is returned for channel counts outside [1, MaxChannels].
	ErrInvalidChannels = errors.New("invalid channel count")

	// ErrInvalidSampleRate is returned for non-positive sample rates.
	ErrInvalidSampleRate = errors.New("invalid sample rate")

	// ErrEmptyWave is returned when a source decodes to zero frames.
	ErrEmptyWave = errors.New("wave has no frames")

	// ErrWaveReleased is returned when opening a reader on a released wave.
	ErrWaveReleased = errors.New("wave has been released")

	// ErrInvalidStart is returned for a reader start time that is not a number.
	ErrInvalidStart = errors.New("invalid reader start time")
)
