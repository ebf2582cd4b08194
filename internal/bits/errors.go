// SPDX-License-Identifier: EPL-2.0

package bits

import "errors"

var (
	ErrNotByteAligned = errors.New("bits: raw byte read on unaligned reader")
)
