// SPDX-License-Identifier: EPL-2.0

package frame

import (
	"encoding/binary"
	"fmt"
	"hash"
	"io"

	"github.com/ik5/audflac/internal/bits"
	"github.com/ik5/audflac/internal/hashutil"
	"github.com/ik5/audflac/internal/hashutil/crc16"
	"github.com/ik5/audflac/internal/hashutil/crc8"
	"github.com/ik5/audflac/meta"
)

// Channels specifies the number of channels (subframes) in a frame, their
// order, and whether a stereo pair is stored decorrelated.
type Channels uint8

// Channel assignments. The first eight are independent channels in
// SMPTE/ITU-R order; the last three are decorrelated stereo pairs.
const (
	ChannelsMono           Channels = iota // 1 channel: mono
	ChannelsLR                             // 2 channels: left, right
	ChannelsLRC                            // 3 channels: left, right, center
	ChannelsLRLsRs                         // 4 channels: left, right, left surround, right surround
	ChannelsLRCLsRs                        // 5 channels
	ChannelsLRCLfeLsRs                     // 6 channels
	ChannelsLRCLfeCsSlSr                   // 7 channels
	ChannelsLRCLfeLsRsSlSr                 // 8 channels
	ChannelsLeftSide                       // 2 channels: left, side
	ChannelsSideRight                      // 2 channels: side, right
	ChannelsMidSide                        // 2 channels: mid, side
)

var nChannels = [...]int{
	ChannelsMono:           1,
	ChannelsLR:             2,
	ChannelsLRC:            3,
	ChannelsLRLsRs:         4,
	ChannelsLRCLsRs:        5,
	ChannelsLRCLfeLsRs:     6,
	ChannelsLRCLfeCsSlSr:   7,
	ChannelsLRCLfeLsRsSlSr: 8,
	ChannelsLeftSide:       2,
	ChannelsSideRight:      2,
	ChannelsMidSide:        2,
}

// Count returns the number of channels of the assignment.
func (channels Channels) Count() int {
	return nChannels[channels]
}

// Header holds the decoding parameters of one frame, with stream defaults
// from STREAMINFO already applied.
type Header struct {
	// Specifies if the stream declares a fixed block size.
	HasFixedBlockSize bool
	// Samples per channel in this frame.
	BlockSize uint16
	// Sample rate in Hz.
	SampleRate uint32
	// Channel assignment of the frame's subframes.
	Channels Channels
	// Sample size in bits.
	BitsPerSample uint8
	// Frame number for fixed block size streams, first sample number
	// otherwise.
	Num uint64
}

// SampleNumber returns the stream position, in samples, of the frame's first
// sample.
func (h *Header) SampleNumber() uint64 {
	if h.HasFixedBlockSize {
		return h.Num * uint64(h.BlockSize)
	}
	return h.Num
}

// Frame is one decoded unit of audio: a header and one subframe per channel.
// After Parse returns, each subframe holds final per-channel sample values
// (decorrelation already reversed).
type Frame struct {
	Header
	Subframes []*Subframe

	info *meta.StreamInfo
	// Underlying reader and its CRC-16 tee; header and subframe bytes are
	// read through hr so the running hash covers everything up to the
	// checksum field, which is read from r directly.
	r   io.Reader
	hr  io.Reader
	crc hashutil.Hash16
}

// New reads and parses the header of the next frame of r. The returned frame
// has no samples yet; call Frame.Parse to decode its subframes. A clean end
// of stream before the first header byte is reported as io.EOF.
func New(r io.Reader, info *meta.StreamInfo) (*Frame, error) {
	crc := crc16.NewIBM()
	f := &Frame{
		info: info,
		r:    r,
		hr:   io.TeeReader(r, crc),
		crc:  crc,
	}
	if err := f.parseHeader(); err != nil {
		return nil, err
	}
	return f, nil
}

// Parse reads and parses the next frame of r: header, all subframes, padding
// to byte alignment and the trailing CRC-16. Stream defaults (sample rate,
// sample size) are taken from info where the header says so.
func Parse(r io.Reader, info *meta.StreamInfo) (*Frame, error) {
	f, err := New(r, info)
	if err != nil {
		return nil, err
	}
	if err := f.Parse(); err != nil {
		return f, err
	}
	return f, nil
}

// Parse decodes the subframes of the frame, reverses inter-channel
// decorrelation and verifies the frame checksum.
func (f *Frame) Parse() error {
	br := bits.NewReader(f.hr)
	f.Subframes = make([]*Subframe, f.Channels.Count())
	for channel := range f.Subframes {
		// Side channels carry one extra bit per sample.
		bps := uint(f.BitsPerSample)
		switch f.Channels {
		case ChannelsSideRight:
			if channel == 0 {
				bps++
			}
		case ChannelsLeftSide, ChannelsMidSide:
			if channel == 1 {
				bps++
			}
		}
		sf, err := parseSubframe(br, bps, int(f.BlockSize))
		if err != nil {
			return fmt.Errorf("frame %d: %w", f.Num, err)
		}
		f.Subframes[channel] = sf
	}

	// Zero padding up to the next byte boundary is covered by the CRC-16;
	// the bit reader has already pulled that byte through the hash tee.
	br.Align()

	var want uint16
	if err := binary.Read(f.r, binary.BigEndian, &want); err != nil {
		return fmt.Errorf("frame %d: %w", f.Num, unexpected(err))
	}
	if got := f.crc.Sum16(); got != want {
		return fmt.Errorf("frame %d: %w (expected %#04x, got %#04x)", f.Num, ErrChecksum, want, got)
	}

	f.decorrelate()
	return nil
}

// decorrelate reverses the encoder's stereo decorrelation, leaving actual
// left/right sample values in the subframes.
func (f *Frame) decorrelate() {
	switch f.Channels {
	case ChannelsLeftSide:
		// ch0 holds left, ch1 holds side = left - right.
		left := f.Subframes[0].Samples
		side := f.Subframes[1].Samples
		for i := range side {
			side[i] = left[i] - side[i]
		}
	case ChannelsSideRight:
		// ch0 holds side = left - right, ch1 holds right.
		side := f.Subframes[0].Samples
		right := f.Subframes[1].Samples
		for i := range side {
			side[i] = right[i] + side[i]
		}
	case ChannelsMidSide:
		// ch0 holds mid = (left + right) >> 1, ch1 holds side = left - right.
		// The bit dropped from mid is recovered from side's parity: a sum and
		// a difference of two integers share their least significant bit.
		mid := f.Subframes[0].Samples
		side := f.Subframes[1].Samples
		for i := range side {
			sum := mid[i]<<1 | side[i]&1
			mid[i] = (sum + side[i]) >> 1
			side[i] = (sum - side[i]) >> 1
		}
	}
}

// Hash writes the frame's decoded samples to a running MD5 hash, interleaved
// by channel, little endian, at the byte width covering the frame's sample
// size. Use with meta.StreamInfo.MD5sum to verify the decoded audio.
func (f *Frame) Hash(md5sum hash.Hash) {
	var buf [4]byte
	nbytes := (int(f.BitsPerSample) + 7) / 8
	for i := 0; i < int(f.BlockSize); i++ {
		for _, sf := range f.Subframes {
			sample := sf.Samples[i]
			for b := 0; b < nbytes; b++ {
				buf[b] = uint8(sample >> (8 * b))
			}
			md5sum.Write(buf[:nbytes])
		}
	}
}

// parseHeader reads one frame header: sync code, parameter fields, position,
// conditional block size / sample rate bytes and the CRC-8.
func (f *Frame) parseHeader() error {
	// Everything up to the CRC-8 field feeds a running CRC-8 hash.
	h := crc8.NewATM()
	hr := io.TeeReader(f.hr, h)
	br := bits.NewReader(hr)

	// 14 bits: sync code.
	x, err := br.Read(14)
	if err != nil {
		return err // io.EOF here is a clean end of stream
	}
	if x != 0x3FFE {
		return fmt.Errorf("%w (got %#b)", ErrLostSync, x)
	}

	// 1 bit: reserved, must be 0.
	if x, err = br.Read(1); err != nil {
		return unexpected(err)
	}
	if x != 0 {
		return fmt.Errorf("%w (non-zero reserved bit)", ErrLostSync)
	}

	// 1 bit: blocking strategy; 0 means fixed block size.
	if x, err = br.Read(1); err != nil {
		return unexpected(err)
	}
	f.HasFixedBlockSize = x == 0

	// 4 bits: block size code, resolved below after the position field.
	blockSizeCode, err := br.Read(4)
	if err != nil {
		return unexpected(err)
	}

	// 4 bits: sample rate code, resolved below.
	sampleRateCode, err := br.Read(4)
	if err != nil {
		return unexpected(err)
	}

	// 4 bits: channel assignment.
	if x, err = br.Read(4); err != nil {
		return unexpected(err)
	}
	if x >= 0xB {
		return fmt.Errorf("%w (%04b)", ErrReservedChannels, x)
	}
	f.Channels = Channels(x)

	// 3 bits: sample size.
	if x, err = br.Read(3); err != nil {
		return unexpected(err)
	}
	switch x {
	case 0x0:
		f.BitsPerSample = f.info.BitsPerSample
	case 0x1:
		f.BitsPerSample = 8
	case 0x2:
		f.BitsPerSample = 12
	case 0x4:
		f.BitsPerSample = 16
	case 0x5:
		f.BitsPerSample = 20
	case 0x6:
		f.BitsPerSample = 24
	default:
		return fmt.Errorf("%w (%03b)", ErrReservedSampleSize, x)
	}

	// 1 bit: reserved, must be 0.
	if x, err = br.Read(1); err != nil {
		return unexpected(err)
	}
	if x != 0 {
		return fmt.Errorf("%w (non-zero reserved bit)", ErrLostSync)
	}

	// 1-7 bytes: UTF-8 style extended integer holding the frame number
	// (fixed block size) or the first sample number (variable block size).
	if f.Num, err = decodeUTF8Int(br); err != nil {
		return err
	}

	// Resolve the block size code.
	switch {
	case blockSizeCode == 0x0:
		return ErrReservedBlockSize
	case blockSizeCode == 0x1:
		f.BlockSize = 192
	case blockSizeCode <= 0x5:
		f.BlockSize = 576 << (blockSizeCode - 2)
	case blockSizeCode == 0x6:
		// 8 bits: (block size) - 1 follows the position field.
		if x, err = br.Read(8); err != nil {
			return unexpected(err)
		}
		f.BlockSize = uint16(x) + 1
	case blockSizeCode == 0x7:
		// 16 bits: (block size) - 1 follows the position field. The format
		// caps block size at 65535, so the all-ones value cannot be stored.
		if x, err = br.Read(16); err != nil {
			return unexpected(err)
		}
		if x == 0xFFFF {
			return fmt.Errorf("%w (65536 samples)", ErrInvalidBlockSize)
		}
		f.BlockSize = uint16(x) + 1
	default:
		f.BlockSize = 256 << (blockSizeCode - 8)
	}

	// Resolve the sample rate code.
	switch sampleRateCode {
	case 0x0:
		f.SampleRate = f.info.SampleRate
	case 0x1:
		f.SampleRate = 88200
	case 0x2:
		f.SampleRate = 176400
	case 0x3:
		f.SampleRate = 192000
	case 0x4:
		f.SampleRate = 8000
	case 0x5:
		f.SampleRate = 16000
	case 0x6:
		f.SampleRate = 22050
	case 0x7:
		f.SampleRate = 24000
	case 0x8:
		f.SampleRate = 32000
	case 0x9:
		f.SampleRate = 44100
	case 0xA:
		f.SampleRate = 48000
	case 0xB:
		f.SampleRate = 96000
	case 0xC:
		// 8 bits: sample rate in kHz.
		if x, err = br.Read(8); err != nil {
			return unexpected(err)
		}
		f.SampleRate = uint32(x) * 1000
	case 0xD:
		// 16 bits: sample rate in Hz.
		if x, err = br.Read(16); err != nil {
			return unexpected(err)
		}
		f.SampleRate = uint32(x)
	case 0xE:
		// 16 bits: sample rate in daHz.
		if x, err = br.Read(16); err != nil {
			return unexpected(err)
		}
		f.SampleRate = uint32(x) * 10
	default:
		return ErrInvalidSampleRate
	}

	// 1 byte: CRC-8 over all preceding header bytes. Read from f.hr so it
	// feeds the frame's CRC-16 but not its own hash.
	var want uint8
	if err := binary.Read(f.hr, binary.BigEndian, &want); err != nil {
		return unexpected(err)
	}
	if got := h.Sum8(); got != want {
		return fmt.Errorf("frame %d: %w (expected %#02x, got %#02x)", f.Num, ErrHeaderChecksum, want, got)
	}
	return nil
}

// decodeUTF8Int reads a UTF-8 style extended integer of 1-7 total bytes; the
// leading byte's high bits give the length, continuation bytes carry 6 value
// bits each. Unlike real UTF-8 it extends to 36-bit values.
func decodeUTF8Int(br *bits.Reader) (uint64, error) {
	x, err := br.Read(8)
	if err != nil {
		return 0, unexpected(err)
	}
	if x < 0x80 {
		return x, nil
	}

	// Count leading ones for the total byte count.
	var n uint
	for mask := uint64(0x80); x&mask != 0 && n < 8; mask >>= 1 {
		n++
	}
	if n < 2 || n > 7 {
		return 0, fmt.Errorf("%w (leading byte %#02x)", ErrInvalidPosition, x)
	}

	v := x & (0x7F >> n)
	for i := uint(1); i < n; i++ {
		c, err := br.Read(8)
		if err != nil {
			return 0, unexpected(err)
		}
		if c&0xC0 != 0x80 {
			return 0, fmt.Errorf("%w (continuation byte %#02x)", ErrInvalidPosition, c)
		}
		v = v<<6 | c&0x3F
	}

	// Reject overlong encodings: a value below the length's minimum would
	// have fit in fewer bytes.
	min := uint64(0x80)
	if n > 2 {
		min = 1 << (5*(n-1) + 1)
	}
	if v < min {
		return 0, fmt.Errorf("%w (overlong %d-byte encoding of %d)", ErrInvalidPosition, n, v)
	}
	return v, nil
}

// unexpected maps io.EOF to io.ErrUnexpectedEOF; once a frame has started,
// running out of bytes means the stream was truncated.
func unexpected(err error) error {
	if err == io.EOF {
		return io.ErrUnexpectedEOF
	}
	return err
}
