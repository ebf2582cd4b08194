// SPDX-License-Identifier: EPL-2.0

// Package pcm defines how decoded audio leaves the decoder.
//
// Two delivery styles are supported:
//
//   - Sink: push-based. The decoder calls StreamInfo once, then WriteBlock
//     for every decoded frame, in stream order. Container writers
//     (formats/wav, formats/aiff) are Sinks.
//   - Source: pull-based. Interleaved integer samples are read on demand,
//     with frames decoded lazily under the hood.
//
// Block is the unit of delivery: per-channel sample slices for one frame.
// It converts to github.com/go-audio/audio.IntBuffer for interoperability
// with go-audio encoders and processing tools.
//
// The Registry maps format keys to Decoder implementations, so callers can
// select a decoder by file extension or probed magic bytes.
package pcm
