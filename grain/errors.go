// SPDX-License-Identifier: EPL-2.0

package grain

import "errors"

var (
	ErrInvalidAsset       = errors.New("invalid or unavailable asset")
	ErrDecodeFailure      = errors.New("source decode failed")
	ErrVoicePoolExhausted = errors.New("voice pool exhausted")
	ErrDegenerateGrain    = errors.New("degenerate grain region")
	ErrInvalidBlockSize   = errors.New("invalid block size")
	ErrVoicePanic         = errors.New("voice panicked")
	ErrInvalidConfig      = errors.New("invalid engine configuration")
)
