// SPDX-License-Identifier: EPL-2.0

package bits

import "io"

// Reader reads bit-granular values from an io.Reader, most significant bit
// first. It is strictly forward-only and fetches one byte at a time from the
// underlying reader, so a Reader that stops at a byte boundary never consumes
// bytes past that boundary. This matters both for CRC computation (the
// underlying reader is usually an io.TeeReader feeding a running hash) and
// for handing the same underlying stream from one frame to the next.
type Reader struct {
	r   io.Reader
	x   uint8 // current byte
	n   uint  // unread bits left in x (0-8)
	buf [1]byte
}

// NewReader returns a bit reader that consumes r.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: r}
}

func (br *Reader) readByte() (uint8, error) {
	if _, err := io.ReadFull(br.r, br.buf[:]); err != nil {
		return 0, err
	}
	return br.buf[0], nil
}

// Read returns the next n bits (0 <= n <= 64) as an unsigned integer.
//
// A clean end of the underlying stream at a byte boundary, with no bits of
// the current request consumed, is reported as io.EOF. Running out of bytes
// anywhere else is reported as io.ErrUnexpectedEOF, since it means the
// stream was truncated mid-structure.
func (br *Reader) Read(n uint) (uint64, error) {
	if n > 64 {
		panic("bits: Read bit count out of range")
	}
	var v uint64
	read := uint(0)
	for read < n {
		if br.n == 0 {
			x, err := br.readByte()
			if err != nil {
				if err == io.EOF && read > 0 {
					err = io.ErrUnexpectedEOF
				}
				return 0, err
			}
			br.x = x
			br.n = 8
		}
		take := n - read
		if take > br.n {
			take = br.n
		}
		v = v<<take | uint64(br.x>>(br.n-take))&(1<<take-1)
		br.n -= take
		read += take
	}
	return v, nil
}

// ReadSigned returns the next n bits (1 <= n <= 64) sign extended as a
// two's-complement integer.
func (br *Reader) ReadSigned(n uint) (int64, error) {
	x, err := br.Read(n)
	if err != nil {
		return 0, err
	}
	return IntN(x, n), nil
}

// ReadUnary decodes a unary coded integer: the count of consecutive 0-bits
// before a terminating 1-bit. Exhausting the stream mid-code is always a
// truncation, so io.EOF never escapes from here.
func (br *Reader) ReadUnary() (uint64, error) {
	var x uint64
	for {
		bit, err := br.Read(1)
		if err != nil {
			if err == io.EOF {
				err = io.ErrUnexpectedEOF
			}
			return 0, err
		}
		if bit == 1 {
			return x, nil
		}
		x++
	}
}

// Align discards any partially consumed byte, leaving the reader at the next
// byte boundary. It is a no-op on an already aligned reader.
func (br *Reader) Align() {
	br.n = 0
}

// Aligned reports whether the reader sits at a byte boundary.
func (br *Reader) Aligned() bool {
	return br.n == 0
}

// ReadBytes fills p with raw bytes from the stream. The reader must be byte
// aligned; interleaving raw byte reads with partial bit reads would silently
// skew every field that follows.
func (br *Reader) ReadBytes(p []byte) error {
	if !br.Aligned() {
		return ErrNotByteAligned
	}
	_, err := io.ReadFull(br.r, p)
	return err
}

// IntN interprets the low n bits of x as a signed n-bit two's-complement
// integer and sign extends it to 64 bits.
func IntN(x uint64, n uint) int64 {
	if n == 0 {
		return 0
	}
	if x&(1<<(n-1)) != 0 {
		return int64(x | ^uint64(0)<<n)
	}
	return int64(x)
}

// DecodeZigZag maps an unsigned zigzag coded value to its signed form;
// even values are non-negative, odd values negative.
func DecodeZigZag(x uint64) int64 {
	return int64(x>>1) ^ -int64(x&1)
}

// EncodeZigZag is the inverse of DecodeZigZag.
func EncodeZigZag(x int64) uint64 {
	return uint64(x<<1) ^ uint64(x>>63)
}
