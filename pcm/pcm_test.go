// SPDX-License-Identifier: EPL-2.0

package pcm_test

import (
	"errors"
	"io"
	"reflect"
	"testing"

	"github.com/ik5/audflac/meta"
	"github.com/ik5/audflac/pcm"
)

func stereoBlock() *pcm.Block {
	return &pcm.Block{
		SampleRate: 44100,
		BitDepth:   16,
		Data: [][]int64{
			{1, 2, 3},
			{-1, -2, -3},
		},
	}
}

func TestBlockInterleave(t *testing.T) {
	t.Parallel()

	b := stereoBlock()
	if b.Channels() != 2 || b.Len() != 3 {
		t.Fatalf("Channels() = %d, Len() = %d, want 2, 3", b.Channels(), b.Len())
	}

	got := b.Interleave(nil)
	want := []int{1, -1, 2, -2, 3, -3}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Interleave = %d, want %d", got, want)
	}

	// Appending to an existing slice keeps the prefix.
	got = b.Interleave([]int{9})
	if !reflect.DeepEqual(got, append([]int{9}, want...)) {
		t.Errorf("Interleave with prefix = %d", got)
	}
}

func TestBlockIntBuffer(t *testing.T) {
	t.Parallel()

	buf := stereoBlock().IntBuffer()
	if buf.Format.NumChannels != 2 || buf.Format.SampleRate != 44100 {
		t.Errorf("Format = %+v", buf.Format)
	}
	if buf.SourceBitDepth != 16 {
		t.Errorf("SourceBitDepth = %d, want 16", buf.SourceBitDepth)
	}
	if want := []int{1, -1, 2, -2, 3, -3}; !reflect.DeepEqual(buf.Data, want) {
		t.Errorf("Data = %d, want %d", buf.Data, want)
	}
}

func TestBufferSink(t *testing.T) {
	t.Parallel()

	sink := new(pcm.BufferSink)
	if err := sink.WriteBlock(stereoBlock()); !errors.Is(err, pcm.ErrNoStreamInfo) {
		t.Errorf("WriteBlock before StreamInfo: err = %v, want %v", err, pcm.ErrNoStreamInfo)
	}

	info := &meta.StreamInfo{
		SampleRate:    44100,
		NChannels:     2,
		BitsPerSample: 16,
		NSamples:      6,
	}
	if err := sink.StreamInfo(info); err != nil {
		t.Fatalf("StreamInfo: %v", err)
	}
	if err := sink.WriteBlock(stereoBlock()); err != nil {
		t.Fatalf("WriteBlock: %v", err)
	}
	if err := sink.WriteBlock(stereoBlock()); err != nil {
		t.Fatalf("WriteBlock: %v", err)
	}

	want := []int{1, -1, 2, -2, 3, -3, 1, -1, 2, -2, 3, -3}
	if !reflect.DeepEqual(sink.Buf.Data, want) {
		t.Errorf("Buf.Data = %d, want %d", sink.Buf.Data, want)
	}
	if sink.Buf.Format.NumChannels != 2 || sink.Buf.SourceBitDepth != 16 {
		t.Errorf("Buf format = %+v, bit depth %d", sink.Buf.Format, sink.Buf.SourceBitDepth)
	}
}

// silence is a trivial Decoder for registry tests.
type silence struct{}

func (silence) Decode(r io.Reader) (pcm.Source, error) { return nil, nil }

func TestRegistry(t *testing.T) {
	t.Parallel()

	reg := pcm.NewRegistry()
	if _, ok := reg.Get("flac"); ok {
		t.Error("Get on empty registry reported ok")
	}
	reg.Register("flac", silence{})
	d, ok := reg.Get("flac")
	if !ok {
		t.Fatal("Get after Register reported not ok")
	}
	if _, ok := d.(silence); !ok {
		t.Errorf("Get returned %T, want silence", d)
	}
}
