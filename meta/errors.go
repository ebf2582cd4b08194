// SPDX-License-Identifier: EPL-2.0

package meta

import "errors"

var (
	ErrInvalidMarker       = errors.New("meta: invalid stream marker, not a FLAC stream")
	ErrMissingStreamInfo   = errors.New("meta: metadata ended without a STREAMINFO block")
	ErrMisplacedStreamInfo = errors.New("meta: STREAMINFO block must be the first metadata block")
	ErrInvalidStreamInfo   = errors.New("meta: STREAMINFO field out of range")
)
