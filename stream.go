// SPDX-License-Identifier: EPL-2.0

package audflac

import (
	"bytes"
	"crypto/md5"
	"fmt"
	"hash"
	"io"

	"github.com/ik5/audflac/frame"
	"github.com/ik5/audflac/meta"
	"github.com/ik5/audflac/pcm"
)

// Option configures a Stream.
type Option func(*Stream)

// WithMD5Check enables or disables verification of the decoded audio against
// the MD5 digest recorded in STREAMINFO. Enabled by default; disabling it
// saves the hashing cost when the caller does its own verification.
func WithMD5Check(enabled bool) Option {
	return func(s *Stream) {
		if enabled && s.md5 == nil {
			s.md5 = md5.New()
		} else if !enabled {
			s.md5 = nil
		}
	}
}

// Stream drives the decoding of one FLAC stream: metadata first, then frames
// in stream order until the byte source is exhausted.
type Stream struct {
	// Parsed STREAMINFO of the stream.
	Info *meta.StreamInfo

	r   io.Reader
	md5 hash.Hash // nil when digest verification is disabled
	pos uint64    // inter-channel samples decoded so far
}

// NewStream reads the stream marker and metadata section of r and prepares
// frame decoding. The reader must deliver a native FLAC elementary stream;
// it is consumed strictly forward and never repositioned.
func NewStream(r io.Reader, opts ...Option) (*Stream, error) {
	info, err := meta.Parse(r)
	if err != nil {
		return nil, err
	}
	s := &Stream{
		Info: info,
		r:    r,
		md5:  md5.New(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Next decodes and returns the next audio frame. It returns io.EOF at the
// clean end of the stream, after verifying the sample count and audio digest
// against STREAMINFO where those are known. Any other error is terminal for
// the frame it names; the caller decides whether to keep pulling.
func (s *Stream) Next() (*frame.Frame, error) {
	f, err := frame.Parse(s.r, s.Info)
	if err != nil {
		if err == io.EOF {
			return nil, s.finish()
		}
		return f, err
	}
	if s.md5 != nil {
		f.Hash(s.md5)
	}
	s.pos += uint64(f.BlockSize)
	return f, nil
}

// finish runs the end-of-stream checks and returns io.EOF when they pass.
func (s *Stream) finish() error {
	if s.Info.NSamples > 0 && s.pos != s.Info.NSamples {
		return fmt.Errorf("audflac: stream ended after %d of %d samples: %w",
			s.pos, s.Info.NSamples, io.ErrUnexpectedEOF)
	}
	if s.md5 != nil && s.Info.HasMD5() {
		if got := s.md5.Sum(nil); !bytes.Equal(got, s.Info.MD5sum[:]) {
			return fmt.Errorf("%w (expected %x, got %x)", ErrDigestMismatch, s.Info.MD5sum, got)
		}
	}
	return io.EOF
}

// Decode pushes the whole stream into sink: StreamInfo once, then every
// decoded block in stream order. It returns nil on clean end of stream.
func (s *Stream) Decode(sink pcm.Sink) error {
	if err := sink.StreamInfo(s.Info); err != nil {
		return fmt.Errorf("audflac: sink rejected stream info: %w", err)
	}
	for {
		f, err := s.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if err := sink.WriteBlock(blockOf(f)); err != nil {
			return fmt.Errorf("audflac: sink rejected block at sample %d: %w", f.SampleNumber(), err)
		}
	}
}

// blockOf wraps a decoded frame's samples as a delivery block. The slices
// are shared, not copied; frames are not retained after delivery.
func blockOf(f *frame.Frame) *pcm.Block {
	data := make([][]int64, len(f.Subframes))
	for i, sf := range f.Subframes {
		data[i] = sf.Samples
	}
	return &pcm.Block{
		SampleRate: int(f.SampleRate),
		BitDepth:   int(f.BitsPerSample),
		Data:       data,
	}
}
