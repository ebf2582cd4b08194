// SPDX-License-Identifier: EPL-2.0

// Package aiff writes decoded audio into AIFF containers.
//
// The Writer implements pcm.Sink, mirroring the wav package for the
// big-endian Apple container. It uses the github.com/go-audio library for
// container handling.
//
// # Writing AIFF Files
//
//	file, _ := os.Create("output.aiff")
//	w := aiff.NewWriter(file)
//	if err := stream.Decode(w); err != nil {
//	    // Handle error
//	}
//	if err := w.Close(); err != nil {
//	    // Handle error
//	}
//
// The destination must support seeking; chunk sizes are patched on Close.
//
// # Error Handling
//
//   - ErrUnsupportedBitDepth: the stream's sample size has no PCM AIFF
//     representation (e.g. 12 bit)
//   - pcm.ErrNoStreamInfo: WriteBlock called before StreamInfo
package aiff
