// SPDX-License-Identifier: EPL-2.0

package meta

import (
	"fmt"

	"github.com/ik5/audflac/internal/bits"
)

// StreamInfo holds the stream-wide decoding parameters from the mandatory
// STREAMINFO metadata block. It is parsed once and never mutated afterwards.
type StreamInfo struct {
	// Minimum and maximum block size (in samples) used in the stream.
	BlockSizeMin uint16
	BlockSizeMax uint16
	// Minimum and maximum frame size (in bytes); 0 means unknown.
	FrameSizeMin uint32
	FrameSizeMax uint32
	// Sample rate in Hz.
	SampleRate uint32
	// Number of channels, 1-8.
	NChannels uint8
	// Sample size in bits, 4-32.
	BitsPerSample uint8
	// Total number of inter-channel samples; 0 means unknown (streaming).
	NSamples uint64
	// MD5 digest of the unencoded audio data.
	MD5sum [16]byte
}

// HasMD5 reports whether the stream records an audio digest; an all-zero
// MD5sum means the encoder did not compute one.
func (info *StreamInfo) HasMD5() bool {
	for _, b := range info.MD5sum {
		if b != 0 {
			return true
		}
	}
	return false
}

// parseStreamInfo reads the 34-byte STREAMINFO block body.
func parseStreamInfo(br *bits.Reader) (*StreamInfo, error) {
	info := new(StreamInfo)

	x, err := br.Read(16)
	if err != nil {
		return nil, unexpected(err)
	}
	info.BlockSizeMin = uint16(x)

	if x, err = br.Read(16); err != nil {
		return nil, unexpected(err)
	}
	info.BlockSizeMax = uint16(x)

	if x, err = br.Read(24); err != nil {
		return nil, unexpected(err)
	}
	info.FrameSizeMin = uint32(x)

	if x, err = br.Read(24); err != nil {
		return nil, unexpected(err)
	}
	info.FrameSizeMax = uint32(x)

	if x, err = br.Read(20); err != nil {
		return nil, unexpected(err)
	}
	info.SampleRate = uint32(x)

	// 3 bits: (number of channels) - 1.
	if x, err = br.Read(3); err != nil {
		return nil, unexpected(err)
	}
	info.NChannels = uint8(x) + 1

	// 5 bits: (bits per sample) - 1.
	if x, err = br.Read(5); err != nil {
		return nil, unexpected(err)
	}
	info.BitsPerSample = uint8(x) + 1

	if x, err = br.Read(36); err != nil {
		return nil, unexpected(err)
	}
	info.NSamples = x

	if err = br.ReadBytes(info.MD5sum[:]); err != nil {
		return nil, unexpected(err)
	}

	if err := info.validate(); err != nil {
		return nil, err
	}
	return info, nil
}

func (info *StreamInfo) validate() error {
	if info.BlockSizeMin > info.BlockSizeMax {
		return fmt.Errorf("%w: minimum block size %d exceeds maximum %d",
			ErrInvalidStreamInfo, info.BlockSizeMin, info.BlockSizeMax)
	}
	if info.BitsPerSample < 4 {
		return fmt.Errorf("%w: bits per sample %d below 4",
			ErrInvalidStreamInfo, info.BitsPerSample)
	}
	if info.SampleRate == 0 {
		return fmt.Errorf("%w: sample rate is 0", ErrInvalidStreamInfo)
	}
	return nil
}
