// SPDX-License-Identifier: EPL-2.0

// Package wav writes decoded audio into RIFF/WAVE containers.
//
// The Writer implements pcm.Sink, so a decoded stream can be piped into a
// WAV file block by block. It uses the github.com/go-audio library for
// container handling.
//
// # Supported Formats
//
//   - PCM 16, 24 and 32 bit
//   - 1-8 channels
//   - Any sample rate
//
// # Writing WAV Files
//
// Create a Writer over a seekable destination, feed it a stream, then close
// it to finalize the container header:
//
//	file, _ := os.Create("output.wav")
//	w := wav.NewWriter(file)
//	if err := stream.Decode(w); err != nil {
//	    // Handle error
//	}
//	if err := w.Close(); err != nil {
//	    // Handle error
//	}
//
// The destination must support seeking: the RIFF chunk sizes are only known
// once the last sample has been written, and Close seeks back to patch them.
//
// # Error Handling
//
//   - ErrUnsupportedBitDepth: the stream's sample size has no PCM WAV
//     representation (e.g. 12 bit)
//   - pcm.ErrNoStreamInfo: WriteBlock called before StreamInfo
package wav
