// SPDX-License-Identifier: EPL-2.0

package pcm

import (
	"io"
	"sync"

	goaudio "github.com/go-audio/audio"

	"github.com/ik5/audflac/meta"
)

// Block is one decoded unit of audio as delivered to a Sink: the samples of
// all channels for one frame, already decorrelated and in channel order.
type Block struct {
	// Sample rate of the block in Hz.
	SampleRate int
	// Sample size in bits.
	BitDepth int
	// Per-channel sample sequences, all of equal length (the block size).
	Data [][]int64
}

// Channels returns the number of channels in the block.
func (b *Block) Channels() int { return len(b.Data) }

// Len returns the number of samples per channel.
func (b *Block) Len() int {
	if len(b.Data) == 0 {
		return 0
	}
	return len(b.Data[0])
}

// Interleave appends the block's samples to dst in channel-interleaved
// order and returns the extended slice.
func (b *Block) Interleave(dst []int) []int {
	n := b.Len()
	for i := 0; i < n; i++ {
		for _, ch := range b.Data {
			dst = append(dst, int(ch[i]))
		}
	}
	return dst
}

// IntBuffer converts the block to a go-audio buffer with interleaved
// samples, the interchange type of the go-audio encoders.
func (b *Block) IntBuffer() *goaudio.IntBuffer {
	return &goaudio.IntBuffer{
		Format: &goaudio.Format{
			NumChannels: b.Channels(),
			SampleRate:  b.SampleRate,
		},
		Data:           b.Interleave(make([]int, 0, b.Len()*b.Channels())),
		SourceBitDepth: b.BitDepth,
	}
}

// Sink receives decoded audio in stream order: the stream's parameters once,
// before any samples, then one block per decoded frame.
type Sink interface {
	// StreamInfo is called once, before the first block, so the sink can
	// configure an output container ahead of streaming samples.
	StreamInfo(info *meta.StreamInfo) error
	// WriteBlock receives the next decoded block. Blocks arrive in the same
	// order their samples appear in the audio.
	WriteBlock(blk *Block) error
}

// Source is a pull-based view of decoded audio.
type Source interface {
	// SampleRate of the PCM stream in Hz.
	SampleRate() int
	// Channels count (e.g., 1=mono, 2=stereo).
	Channels() int
	// BitDepth is the sample size in bits.
	BitDepth() int
	// ReadSamples fills dst with interleaved samples at the stream's bit
	// depth. Returns the number of values written; n == 0 with io.EOF
	// means the stream is finished.
	ReadSamples(dst []int) (n int, err error)
	// Close releases any resources.
	Close() error
}

// Decoder constructs a Source from an input reader.
type Decoder interface {
	Decode(r io.Reader) (Source, error)
}

// Registry maps format keys (e.g., "flac") to decoders.
type Registry struct {
	codecs map[string]Decoder

	mtx *sync.Mutex
}

func NewRegistry() *Registry {
	return &Registry{
		codecs: make(map[string]Decoder),
		mtx:    &sync.Mutex{},
	}
}

func (r *Registry) Register(format string, d Decoder) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	r.codecs[format] = d
}

func (r *Registry) Get(format string) (Decoder, bool) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	d, ok := r.codecs[format]
	return d, ok
}
