// SPDX-License-Identifier: EPL-2.0

package wav

import "errors"

// ErrUnsupportedBitDepth is returned for sample sizes the RIFF/WAVE PCM
// encoding cannot carry as whole bytes.
var ErrUnsupportedBitDepth = errors.New("wav: unsupported bit depth")
