// SPDX-License-Identifier: EPL-2.0

package audflac

import (
	"io"

	goaudio "github.com/go-audio/audio"

	"github.com/ik5/audflac/pcm"
)

// Decoder decodes native FLAC streams. It implements pcm.Decoder, so it can
// be registered in a pcm.Registry under a format key such as "flac".
type Decoder struct{}

// Decode parses the metadata of r and returns a streaming source over its
// decoded samples. Frames are decoded lazily as samples are pulled.
func (Decoder) Decode(r io.Reader) (pcm.Source, error) {
	s, err := NewStream(r)
	if err != nil {
		return nil, err
	}
	return &source{s: s}, nil
}

// DecodeAll decodes the complete stream into a single go-audio buffer of
// interleaved samples. For long streams prefer the streaming APIs; this
// holds every decoded sample in memory at once.
func DecodeAll(r io.Reader) (*goaudio.IntBuffer, error) {
	s, err := NewStream(r)
	if err != nil {
		return nil, err
	}
	sink := new(pcm.BufferSink)
	if err := s.Decode(sink); err != nil {
		return nil, err
	}
	return sink.Buf, nil
}

// source adapts a Stream to the pull-based pcm.Source interface, holding the
// interleaved remainder of the most recently decoded frame.
type source struct {
	s     *Stream
	queue []int
	off   int
	err   error // terminal condition, held until the queue drains
}

func (src *source) SampleRate() int { return int(src.s.Info.SampleRate) }
func (src *source) Channels() int   { return int(src.s.Info.NChannels) }
func (src *source) BitDepth() int   { return int(src.s.Info.BitsPerSample) }
func (src *source) Close() error    { return nil }

// ReadSamples fills dst with interleaved samples, decoding further frames as
// needed. dst should hold a multiple of Channels() values so blocks split on
// frame boundaries only.
func (src *source) ReadSamples(dst []int) (int, error) {
	if len(dst)%src.Channels() != 0 {
		return 0, pcm.ErrInvalidDstSize
	}
	n := 0
	for n < len(dst) {
		if src.off == len(src.queue) {
			if src.err != nil {
				break
			}
			f, err := src.s.Next()
			if err != nil {
				src.err = err
				break
			}
			src.queue = blockOf(f).Interleave(src.queue[:0])
			src.off = 0
		}
		c := copy(dst[n:], src.queue[src.off:])
		n += c
		src.off += c
	}
	if n == 0 && src.err != nil {
		return 0, src.err
	}
	return n, nil
}
