// SPDX-License-Identifier: EPL-2.0

package meta

import (
	"fmt"
	"io"

	"github.com/ik5/audflac/internal/bits"
)

// Marker is present at the beginning of every native FLAC stream.
const Marker = "fLaC"

// Type identifies the kind of a metadata block.
type Type uint8

// Metadata block types. Types above TypePicture are reserved by the format;
// they are skipped like any other non-STREAMINFO block.
const (
	TypeStreamInfo Type = iota
	TypePadding
	TypeApplication
	TypeSeekTable
	TypeVorbisComment
	TypeCueSheet
	TypePicture
)

// header is the 4-byte header preceding every metadata block.
type header struct {
	last   bool
	typ    Type
	length int // block body length in bytes
}

func parseHeader(br *bits.Reader) (header, error) {
	var h header
	x, err := br.Read(1)
	if err != nil {
		return h, unexpected(err)
	}
	h.last = x != 0

	if x, err = br.Read(7); err != nil {
		return h, unexpected(err)
	}
	h.typ = Type(x)

	if x, err = br.Read(24); err != nil {
		return h, unexpected(err)
	}
	h.length = int(x)
	return h, nil
}

// Parse reads the stream marker and the full metadata section from r,
// returning the parsed STREAMINFO. All other blocks are skipped by their
// declared length. When Parse returns without error, r is positioned at the
// first byte of the first audio frame.
func Parse(r io.Reader) (*StreamInfo, error) {
	br := bits.NewReader(r)

	marker, err := br.Read(32)
	if err != nil {
		return nil, unexpected(err)
	}
	if marker != 0x664C6143 { // "fLaC"
		return nil, ErrInvalidMarker
	}

	var info *StreamInfo
	for i := 0; ; i++ {
		h, err := parseHeader(br)
		if err != nil {
			return nil, err
		}
		switch {
		case h.typ == TypeStreamInfo && i == 0:
			if info, err = parseStreamInfo(br); err != nil {
				return nil, err
			}
		case h.typ == TypeStreamInfo:
			return nil, ErrMisplacedStreamInfo
		default:
			if err := skip(br, h.length); err != nil {
				return nil, fmt.Errorf("meta: skipping block type %d: %w", h.typ, err)
			}
		}
		if h.last {
			break
		}
	}
	if info == nil {
		return nil, ErrMissingStreamInfo
	}
	return info, nil
}

// skip discards exactly n bytes of block body.
func skip(br *bits.Reader, n int) error {
	var scratch [4096]byte
	for n > 0 {
		chunk := n
		if chunk > len(scratch) {
			chunk = len(scratch)
		}
		if err := br.ReadBytes(scratch[:chunk]); err != nil {
			return unexpected(err)
		}
		n -= chunk
	}
	return nil
}

// unexpected maps io.EOF to io.ErrUnexpectedEOF; the metadata section can
// never end cleanly mid-structure.
func unexpected(err error) error {
	if err == io.EOF {
		return io.ErrUnexpectedEOF
	}
	return err
}
