// SPDX-License-Identifier: EPL-2.0

package frame

import "errors"

var (
	// ErrLostSync is reported when the 14-bit sync pattern is not found at
	// the expected stream position. The decoder never resynchronizes on its
	// own; whether to abort or scan forward is the caller's policy.
	ErrLostSync = errors.New("frame: lost synchronization, sync code not found")

	// ErrHeaderChecksum is reported when the CRC-8 over the frame header
	// does not match the stored value.
	ErrHeaderChecksum = errors.New("frame: header CRC-8 mismatch")

	// ErrChecksum is reported when the CRC-16 over the complete frame does
	// not match the stored value.
	ErrChecksum = errors.New("frame: CRC-16 mismatch")

	ErrInvalidPosition        = errors.New("frame: malformed frame/sample position encoding")
	ErrReservedBlockSize      = errors.New("frame: reserved block size bit pattern")
	ErrInvalidBlockSize       = errors.New("frame: block size exceeds 65535 samples")
	ErrInvalidWastedBits      = errors.New("frame: wasted bits exhaust the sample depth")
	ErrInvalidSampleRate      = errors.New("frame: invalid sample rate bit pattern")
	ErrReservedChannels       = errors.New("frame: reserved channel assignment bit pattern")
	ErrReservedSampleSize     = errors.New("frame: reserved sample size bit pattern")
	ErrReservedSubframeType   = errors.New("frame: reserved subframe type")
	ErrReservedResidualCoding = errors.New("frame: reserved residual coding method")
	ErrInvalidLPCPrecision    = errors.New("frame: invalid LPC coefficient precision")
	ErrInvalidLPCShift        = errors.New("frame: negative LPC coefficient shift")
	ErrInvalidPartitionOrder  = errors.New("frame: partition count does not divide block size")
)
