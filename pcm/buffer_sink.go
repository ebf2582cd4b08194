// SPDX-License-Identifier: EPL-2.0

package pcm

import (
	goaudio "github.com/go-audio/audio"

	"github.com/ik5/audflac/meta"
)

// BufferSink collects every delivered block into a single go-audio buffer.
// Useful for decoding a whole stream into memory.
type BufferSink struct {
	// Buf holds the collected samples; valid after StreamInfo has been
	// delivered.
	Buf *goaudio.IntBuffer
}

func (s *BufferSink) StreamInfo(info *meta.StreamInfo) error {
	var capacity int
	if info.NSamples > 0 {
		capacity = int(info.NSamples) * int(info.NChannels)
	}
	s.Buf = &goaudio.IntBuffer{
		Format: &goaudio.Format{
			NumChannels: int(info.NChannels),
			SampleRate:  int(info.SampleRate),
		},
		Data:           make([]int, 0, capacity),
		SourceBitDepth: int(info.BitsPerSample),
	}
	return nil
}

func (s *BufferSink) WriteBlock(blk *Block) error {
	if s.Buf == nil {
		return ErrNoStreamInfo
	}
	s.Buf.Data = blk.Interleave(s.Buf.Data)
	return nil
}
