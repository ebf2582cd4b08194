// SPDX-License-Identifier: EPL-2.0

package aiff

import "errors"

// ErrUnsupportedBitDepth is returned for sample sizes the AIFF PCM encoding
// cannot carry as whole bytes.
var ErrUnsupportedBitDepth = errors.New("aiff: unsupported bit depth")
