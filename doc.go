// SPDX-License-Identifier: EPL-2.0

// Package audflac decodes native FLAC (Free Lossless Audio Codec) streams
// into raw PCM, reconstructing the exact samples the encoder saw.
//
// The decoder handles the complete native stream format: metadata parsing,
// frame and subframe decoding (constant, verbatim, fixed-order and LPC
// prediction), partitioned Rice residual coding, inter-channel
// decorrelation, and integrity verification (per-header CRC-8, per-frame
// CRC-16, stream-wide MD5).
//
// # Quick Start
//
// Decode a whole stream into memory:
//
//	file, _ := os.Open("audio.flac")
//	buf, err := audflac.DecodeAll(file)
//	if err != nil {
//	    // Handle error
//	}
//	// buf is a *audio.IntBuffer of interleaved samples
//
// # Streaming
//
// For frame-at-a-time decoding, drive a Stream yourself:
//
//	s, err := audflac.NewStream(file)
//	for {
//	    f, err := s.Next()
//	    if err == io.EOF {
//	        break
//	    }
//	    if err != nil {
//	        // Handle error
//	    }
//	    // f.Subframes hold per-channel samples
//	}
//
// or push into a sink (formats/wav and formats/aiff provide container
// writers implementing pcm.Sink):
//
//	out, _ := os.Create("audio.wav")
//	w := wav.NewWriter(out)
//	s, _ := audflac.NewStream(file)
//	if err := s.Decode(w); err != nil {
//	    // Handle error
//	}
//	w.Close()
//
// For pull-based consumption, Decoder implements pcm.Decoder and returns a
// pcm.Source of interleaved integer samples.
//
// # Integrity
//
// Every frame header carries a CRC-8 and every frame a CRC-16; both are
// always verified. The stream-wide MD5 digest is verified at end of stream
// when STREAMINFO records one; disable with WithMD5Check(false).
//
// # Error Handling
//
// Errors are sentinel values wrapped with position context; classify with
// errors.Is. Malformed containers surface meta errors, bitstream and
// integrity failures surface frame errors, and a truncated stream surfaces
// io.ErrUnexpectedEOF. The decoder never resynchronizes after
// frame.ErrLostSync on its own; that policy belongs to the caller.
//
// # Scope
//
// Only the native FLAC elementary stream is handled; Ogg-encapsulated FLAC
// is not. Seek tables, pictures and vendor tags are skipped, not
// interpreted. Encoding is out of scope.
package audflac
