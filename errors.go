// SPDX-License-Identifier: EPL-2.0

package audgrain

import "errors"

var (
	ErrUnknownFormat = errors.New("unknown audio format")
	ErrInvalidLength = errors.New("invalid render length")
)
