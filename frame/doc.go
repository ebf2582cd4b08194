// SPDX-License-Identifier: EPL-2.0

// Package frame decodes the audio frames of a native FLAC stream.
//
// A FLAC encoder splits the audio into blocks and stores each block as one
// self-delimited frame: a header (sync code, block size, sample rate, channel
// assignment, sample size, position, CRC-8), one subframe per channel, and a
// closing CRC-16 over the whole frame. Each subframe carries a channel's
// samples under one of four encodings — constant, verbatim, fixed-order
// polynomial prediction, or quantized LPC — with prediction residuals stored
// as partitioned Rice codes.
//
// Stereo frames may store decorrelated channel pairs (left/side, right/side
// or mid/side); Parse reverses the decorrelation so Subframes always hold
// final per-channel sample values.
//
// # Usage
//
//	f, err := frame.Parse(r, info)
//	if err == io.EOF {
//	    // Clean end of stream.
//	}
//
// Frames are decoded strictly in stream order; the packing of one frame
// determines where the next one starts, so r must not be repositioned
// between calls.
//
// # Error Handling
//
// Integrity failures (ErrHeaderChecksum, ErrChecksum) and bitstream errors
// (ErrLostSync, ErrReservedSubframeType, ErrReservedResidualCoding,
// ErrInvalidLPCPrecision, ErrInvalidPartitionOrder) are wrapped with the
// frame position where it is known; classify with errors.Is.
package frame
