// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"fmt"
	"io"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/ik5/audflac/meta"
	"github.com/ik5/audflac/pcm"
)

// wavFormat is the RIFF audio format tag for linear PCM.
const wavFormat = 1

// Writer is a pcm.Sink that encodes delivered audio into a RIFF/WAVE
// container. The container header is finalized by Close, which must be
// called after the last block.
type Writer struct {
	ws  io.WriteSeeker
	enc *wav.Encoder
	buf *goaudio.IntBuffer
}

// NewWriter returns a sink writing a WAV file to ws. The encoder seeks back
// to patch chunk sizes on Close, so ws cannot be a plain streaming writer.
func NewWriter(ws io.WriteSeeker) *Writer {
	return &Writer{ws: ws}
}

// StreamInfo configures the container from the stream parameters.
func (w *Writer) StreamInfo(info *meta.StreamInfo) error {
	switch info.BitsPerSample {
	case 16, 24, 32:
	default:
		return fmt.Errorf("%w (%d bits)", ErrUnsupportedBitDepth, info.BitsPerSample)
	}
	w.enc = wav.NewEncoder(w.ws,
		int(info.SampleRate), int(info.BitsPerSample), int(info.NChannels), wavFormat)
	w.buf = &goaudio.IntBuffer{
		Format: &goaudio.Format{
			NumChannels: int(info.NChannels),
			SampleRate:  int(info.SampleRate),
		},
		SourceBitDepth: int(info.BitsPerSample),
	}
	return nil
}

// WriteBlock appends one decoded block to the data chunk.
func (w *Writer) WriteBlock(blk *pcm.Block) error {
	if w.enc == nil {
		return pcm.ErrNoStreamInfo
	}
	w.buf.Data = blk.Interleave(w.buf.Data[:0])
	if err := w.enc.Write(w.buf); err != nil {
		return fmt.Errorf("wav: %w", err)
	}
	return nil
}

// Close finalizes the container header. The Writer cannot be used afterwards.
func (w *Writer) Close() error {
	if w.enc == nil {
		return nil
	}
	if err := w.enc.Close(); err != nil {
		return fmt.Errorf("wav: %w", err)
	}
	w.enc = nil
	return nil
}
