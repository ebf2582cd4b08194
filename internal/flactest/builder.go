// SPDX-License-Identifier: EPL-2.0

// Package flactest builds synthetic FLAC streams bit by bit, so decoder
// tests can assemble known-good (and deliberately corrupted) inputs without
// shipping binary fixtures.
package flactest

import (
	"github.com/ik5/audflac/internal/bits"
	"github.com/ik5/audflac/internal/hashutil/crc16"
	"github.com/ik5/audflac/internal/hashutil/crc8"
	"github.com/ik5/audflac/meta"
)

// BitWriter accumulates values most-significant-bit first, mirroring the
// read order of the decoder's bit reader.
type BitWriter struct {
	data []byte
	cur  uint8
	n    uint // bits held in cur (0-7)
}

// WriteBits appends the low n bits of v, MSB first.
func (bw *BitWriter) WriteBits(v uint64, n uint) {
	for i := n; i > 0; i-- {
		bit := uint8(v>>(i-1)) & 1
		bw.cur = bw.cur<<1 | bit
		bw.n++
		if bw.n == 8 {
			bw.data = append(bw.data, bw.cur)
			bw.cur, bw.n = 0, 0
		}
	}
}

// WriteBytes appends whole bytes; the writer must be byte aligned.
func (bw *BitWriter) WriteBytes(p []byte) {
	if bw.n != 0 {
		panic("flactest: WriteBytes on unaligned writer")
	}
	bw.data = append(bw.data, p...)
}

// WriteUnary appends q zero bits and a terminating one bit.
func (bw *BitWriter) WriteUnary(q uint64) {
	for ; q > 0; q-- {
		bw.WriteBits(0, 1)
	}
	bw.WriteBits(1, 1)
}

// WriteRice appends one Rice code with parameter k for the signed value v.
func (bw *BitWriter) WriteRice(v int64, k uint) {
	u := bits.EncodeZigZag(v)
	bw.WriteUnary(u >> k)
	bw.WriteBits(u, k)
}

// WriteUTF8Int appends v in the frame header's UTF-8 style extended integer
// encoding (1-7 bytes).
func (bw *BitWriter) WriteUTF8Int(v uint64) {
	if v < 0x80 {
		bw.WriteBits(v, 8)
		return
	}
	// Continuation bytes carry 6 bits each; find how many are needed.
	n := uint(2)
	for lim := uint64(1) << 11; v >= lim && n < 7; n++ {
		lim <<= 5 // one more continuation byte: 6 payload bits, 1 fewer in the lead
	}
	shift := 6 * (n - 1)
	lead := uint64(0xFF<<(8-n))&0xFF | v>>shift
	bw.WriteBits(lead, 8)
	for i := uint(1); i < n; i++ {
		shift -= 6
		bw.WriteBits(0x80|v>>shift&0x3F, 8)
	}
}

// Align pads with zero bits to the next byte boundary.
func (bw *BitWriter) Align() {
	for bw.n != 0 {
		bw.WriteBits(0, 1)
	}
}

// Bytes returns the accumulated bytes; the writer must be byte aligned.
func (bw *BitWriter) Bytes() []byte {
	if bw.n != 0 {
		panic("flactest: Bytes on unaligned writer")
	}
	return bw.data
}

// CRC8 computes the FLAC header checksum (polynomial 0x07) of data.
func CRC8(data []byte) uint8 {
	h := crc8.NewATM()
	h.Write(data)
	return h.Sum8()
}

// CRC16 computes the FLAC frame checksum (polynomial 0x8005) of data.
func CRC16(data []byte) uint16 {
	h := crc16.NewIBM()
	h.Write(data)
	return h.Sum16()
}

// StreamHeader serializes the stream marker and a single, last STREAMINFO
// metadata block for info.
func StreamHeader(info *meta.StreamInfo) []byte {
	bw := new(BitWriter)
	bw.WriteBytes([]byte(meta.Marker))
	bw.WriteBits(1, 1)  // last metadata block
	bw.WriteBits(0, 7)  // type: STREAMINFO
	bw.WriteBits(34, 24)
	bw.WriteBits(uint64(info.BlockSizeMin), 16)
	bw.WriteBits(uint64(info.BlockSizeMax), 16)
	bw.WriteBits(uint64(info.FrameSizeMin), 24)
	bw.WriteBits(uint64(info.FrameSizeMax), 24)
	bw.WriteBits(uint64(info.SampleRate), 20)
	bw.WriteBits(uint64(info.NChannels-1), 3)
	bw.WriteBits(uint64(info.BitsPerSample-1), 5)
	bw.WriteBits(info.NSamples, 36)
	bw.WriteBytes(info.MD5sum[:])
	return bw.Bytes()
}

// MetadataBlock serializes one non-STREAMINFO metadata block.
func MetadataBlock(typ meta.Type, body []byte, last bool) []byte {
	bw := new(BitWriter)
	if last {
		bw.WriteBits(1, 1)
	} else {
		bw.WriteBits(0, 1)
	}
	bw.WriteBits(uint64(typ), 7)
	bw.WriteBits(uint64(len(body)), 24)
	bw.WriteBytes(body)
	return bw.Bytes()
}

// Frame assembles one complete audio frame: header serializes the fields
// after the sync code (it must end byte aligned, before the CRC-8), body
// serializes the subframes (padded to byte alignment). Both checksums are
// computed and appended.
func Frame(header, body func(bw *BitWriter)) []byte {
	hw := new(BitWriter)
	hw.WriteBits(0x3FFE, 14) // sync code
	header(hw)
	headerBytes := hw.Bytes()

	fw := new(BitWriter)
	fw.WriteBytes(headerBytes)
	fw.WriteBits(uint64(CRC8(headerBytes)), 8)
	body(fw)
	fw.Align()
	frameBytes := fw.Bytes()

	fw.WriteBits(uint64(CRC16(frameBytes)), 16)
	return fw.Bytes()
}
