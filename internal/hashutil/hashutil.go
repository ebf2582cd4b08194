// SPDX-License-Identifier: EPL-2.0

// Package hashutil defines the common interfaces of the narrow CRC hashes
// used by FLAC frame integrity checking.
package hashutil

import "hash"

// Hash8 is the common interface implemented by 8-bit hash functions.
type Hash8 interface {
	hash.Hash
	// Sum8 returns the 8-bit checksum of the data written so far.
	Sum8() uint8
}

// Hash16 is the common interface implemented by 16-bit hash functions.
type Hash16 interface {
	hash.Hash
	// Sum16 returns the 16-bit checksum of the data written so far.
	Sum16() uint16
}
