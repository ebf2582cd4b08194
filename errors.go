// SPDX-License-Identifier: EPL-2.0

package audflac

import "errors"

var (
	// ErrDigestMismatch is reported at end of stream when the MD5 digest of
	// the decoded audio differs from the digest recorded in STREAMINFO.
	ErrDigestMismatch = errors.New("audflac: decoded audio MD5 digest mismatch")
)
