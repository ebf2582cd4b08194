// SPDX-License-Identifier: EPL-2.0

// Package meta parses the metadata section at the start of a native FLAC
// stream.
//
// A FLAC stream opens with the 4-byte marker "fLaC" followed by one or more
// metadata blocks. The first block must be STREAMINFO, which carries the
// stream-wide decoding parameters (sample rate, channel count, bit depth,
// block-size bounds and the MD5 digest of the decoded audio). Every other
// block type — padding, application data, seek tables, Vorbis comments, cue
// sheets, pictures and reserved types — is skipped by its declared length
// without interpretation.
//
// # Usage
//
//	info, err := meta.Parse(r)
//	if err != nil {
//	    // Handle error
//	}
//	fmt.Println(info.SampleRate, info.NChannels, info.BitsPerSample)
//
// After Parse returns, r is positioned at the first audio frame.
//
// # Error Handling
//
// The package defines the following errors:
//   - ErrInvalidMarker: the stream does not start with "fLaC"
//   - ErrMissingStreamInfo: the metadata section ended without a STREAMINFO block
//   - ErrMisplacedStreamInfo: a STREAMINFO block appeared after the first position
//   - ErrInvalidStreamInfo: STREAMINFO fields violate format-defined ranges
package meta
