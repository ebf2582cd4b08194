// SPDX-License-Identifier: EPL-2.0

package frame_test

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/ik5/audflac/frame"
	"github.com/ik5/audflac/internal/flactest"
	"github.com/ik5/audflac/meta"
)

func testInfo() *meta.StreamInfo {
	return &meta.StreamInfo{
		BlockSizeMin:  16,
		BlockSizeMax:  4096,
		SampleRate:    44100,
		NChannels:     2,
		BitsPerSample: 16,
		NSamples:      4096,
	}
}

// hdr describes the header fields after the sync code for test frames.
type hdr struct {
	variable       bool
	blockSizeCode  uint64
	sampleRateCode uint64
	channels       frame.Channels
	sampleSizeCode uint64
	num            uint64
	// End-of-header block size / sample rate fields, when the codes call
	// for them.
	extra func(bw *flactest.BitWriter)
}

func (h hdr) write(bw *flactest.BitWriter) {
	bw.WriteBits(0, 1) // reserved
	if h.variable {
		bw.WriteBits(1, 1)
	} else {
		bw.WriteBits(0, 1)
	}
	bw.WriteBits(h.blockSizeCode, 4)
	bw.WriteBits(h.sampleRateCode, 4)
	bw.WriteBits(uint64(h.channels), 4)
	bw.WriteBits(h.sampleSizeCode, 3)
	bw.WriteBits(0, 1) // reserved
	bw.WriteUTF8Int(h.num)
	if h.extra != nil {
		h.extra(bw)
	}
}

// stereo16 is a fixed-block-size stereo header at the stream's rate and
// sample size, with the block size in an 8-bit end-of-header field.
func stereo16(channels frame.Channels, blockSize int) hdr {
	return hdr{
		blockSizeCode:  0x6,
		sampleSizeCode: 0x4, // 16 bits
		channels:       channels,
		extra:          func(bw *flactest.BitWriter) { bw.WriteBits(uint64(blockSize-1), 8) },
	}
}

func writeVerbatim(bw *flactest.BitWriter, samples []int64, bps uint) {
	bw.WriteBits(0, 1)    // padding
	bw.WriteBits(0x01, 6) // verbatim
	bw.WriteBits(0, 1)    // no wasted bits
	for _, s := range samples {
		bw.WriteBits(uint64(s), bps)
	}
}

// fixedResiduals computes the residuals the fixed predictor of the given
// order produces for samples.
func fixedResiduals(samples []int64, order int) []int64 {
	coeffs := [5][]int64{1: {1}, 2: {2, -1}, 3: {3, -3, 1}, 4: {4, -6, 4, -1}}[order]
	res := make([]int64, 0, len(samples)-order)
	for i := order; i < len(samples); i++ {
		var pred int64
		for j, c := range coeffs {
			pred += c * samples[i-1-j]
		}
		res = append(res, samples[i]-pred)
	}
	return res
}

// writeFixed emits a fixed-predictor subframe: warm-up samples, then Rice
// coded residuals in 2^partOrder partitions all using parameter k.
func writeFixed(bw *flactest.BitWriter, samples []int64, order int, bps, partOrder, k uint) {
	bw.WriteBits(0, 1)                  // padding
	bw.WriteBits(0x08|uint64(order), 6) // fixed, given order
	bw.WriteBits(0, 1)                  // no wasted bits
	for _, s := range samples[:order] {
		bw.WriteBits(uint64(s), bps)
	}
	res := fixedResiduals(samples, order)
	bw.WriteBits(0, 2) // Rice coding, 4-bit parameters
	bw.WriteBits(uint64(partOrder), 4)
	nparts := 1 << partOrder
	pos := 0
	for p := 0; p < nparts; p++ {
		n := len(samples) / nparts
		if p == 0 {
			n -= order
		}
		bw.WriteBits(uint64(k), 4)
		for j := 0; j < n; j++ {
			bw.WriteRice(res[pos], k)
			pos++
		}
	}
}

func TestParseConstant(t *testing.T) {
	t.Parallel()

	const blockSize = 16
	h := stereo16(frame.ChannelsMono, blockSize)
	data := flactest.Frame(h.write, func(bw *flactest.BitWriter) {
		bw.WriteBits(0, 1) // padding
		bw.WriteBits(0, 6) // constant
		bw.WriteBits(1, 1) // wasted bits follow
		bw.WriteUnary(2)   // wasted = 3
		bw.WriteBits(5, 13)
	})

	f, err := frame.Parse(bytes.NewReader(data), testInfo())
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	sf := f.Subframes[0]
	if sf.Pred != frame.PredConstant {
		t.Errorf("Pred = %v, want %v", sf.Pred, frame.PredConstant)
	}
	if sf.Wasted != 3 {
		t.Errorf("Wasted = %d, want 3", sf.Wasted)
	}
	for i, s := range sf.Samples {
		// The stripped bits are restored by left shift.
		if s != 5<<3 {
			t.Fatalf("Samples[%d] = %d, want %d", i, s, 5<<3)
		}
	}
}

func TestParseVerbatim(t *testing.T) {
	t.Parallel()

	want := []int64{0, 127, -128, 32767, -32768, 1, -1, 42}
	h := stereo16(frame.ChannelsMono, len(want))
	data := flactest.Frame(h.write, func(bw *flactest.BitWriter) {
		writeVerbatim(bw, want, 16)
	})

	f, err := frame.Parse(bytes.NewReader(data), testInfo())
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got := f.Subframes[0].Samples; !equal(got, want) {
		t.Errorf("Samples = %d, want %d", got, want)
	}
}

func TestParseFixedEscapedPartition(t *testing.T) {
	t.Parallel()

	want := []int64{-60, 60, -33, 33}
	h := stereo16(frame.ChannelsMono, len(want))
	data := flactest.Frame(h.write, func(bw *flactest.BitWriter) {
		bw.WriteBits(0, 1)    // padding
		bw.WriteBits(0x08, 6) // fixed, order 0
		bw.WriteBits(0, 1)    // no wasted bits
		bw.WriteBits(0, 2)    // Rice coding, 4-bit parameters
		bw.WriteBits(0, 4)    // partition order 0
		bw.WriteBits(0xF, 4)  // escape code
		bw.WriteBits(7, 5)    // raw residual width
		for _, s := range want {
			bw.WriteBits(uint64(s), 7)
		}
	})

	f, err := frame.Parse(bytes.NewReader(data), testInfo())
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got := f.Subframes[0].Samples; !equal(got, want) {
		t.Errorf("Samples = %d, want %d", got, want)
	}
}

func TestParseLPC(t *testing.T) {
	t.Parallel()

	// Order-1 predictor with coefficient 1 and shift 0: each sample is the
	// previous one plus its residual, i.e. a running sum.
	residuals := []int64{3, -2, 7, 0, -5, 1, 1}
	want := make([]int64, 0, 8)
	want = append(want, 10)
	for _, r := range residuals {
		want = append(want, want[len(want)-1]+r)
	}

	h := stereo16(frame.ChannelsMono, len(want))
	data := flactest.Frame(h.write, func(bw *flactest.BitWriter) {
		bw.WriteBits(0, 1)              // padding
		bw.WriteBits(0x20, 6)           // LPC, order 1
		bw.WriteBits(0, 1)              // no wasted bits
		bw.WriteBits(uint64(want[0]), 16) // warm-up
		bw.WriteBits(3, 4)              // coefficient precision 4
		bw.WriteBits(0, 5)              // shift 0
		bw.WriteBits(1, 4)              // coefficient 1
		bw.WriteBits(0, 2)              // Rice coding, 4-bit parameters
		bw.WriteBits(0, 4)              // partition order 0
		bw.WriteBits(2, 4)              // Rice parameter 2
		for _, r := range residuals {
			bw.WriteRice(r, 2)
		}
	})

	f, err := frame.Parse(bytes.NewReader(data), testInfo())
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	sf := f.Subframes[0]
	if sf.Pred != frame.PredLPC || sf.Order != 1 {
		t.Errorf("Pred = %v order %d, want %v order 1", sf.Pred, sf.Order, frame.PredLPC)
	}
	if !equal(sf.Samples, want) {
		t.Errorf("Samples = %d, want %d", sf.Samples, want)
	}
}

// TestParseMidSideFixed decodes a full-size mid/side frame with order-2
// fixed predictors and two Rice partitions per channel, and checks the
// reconstructed left/right samples.
func TestParseMidSideFixed(t *testing.T) {
	t.Parallel()

	const blockSize = 4096
	left := make([]int64, blockSize)
	right := make([]int64, blockSize)
	mid := make([]int64, blockSize)
	side := make([]int64, blockSize)
	for i := range left {
		left[i] = int64((i*7)%201 - 100)
		right[i] = int64((i*13)%157 - 78)
		mid[i] = (left[i] + right[i]) >> 1
		side[i] = left[i] - right[i]
	}

	h := hdr{
		blockSizeCode:  0xC, // 4096
		sampleRateCode: 0x9, // 44100 Hz
		channels:       frame.ChannelsMidSide,
		sampleSizeCode: 0x4, // 16 bits
	}
	data := flactest.Frame(h.write, func(bw *flactest.BitWriter) {
		writeFixed(bw, mid, 2, 16, 1, 6)
		// The side channel carries one extra bit.
		writeFixed(bw, side, 2, 17, 1, 6)
	})

	f, err := frame.Parse(bytes.NewReader(data), testInfo())
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if f.BlockSize != blockSize {
		t.Errorf("BlockSize = %d, want %d", f.BlockSize, blockSize)
	}
	if f.SampleRate != 44100 {
		t.Errorf("SampleRate = %d, want 44100", f.SampleRate)
	}
	if !equal(f.Subframes[0].Samples, left) {
		t.Error("left channel mismatch")
	}
	if !equal(f.Subframes[1].Samples, right) {
		t.Error("right channel mismatch")
	}
}

func TestParseStereoDecorrelation(t *testing.T) {
	t.Parallel()

	// Odd differences exercise the shared-parity bit of mid/side.
	left := []int64{100, -3, 50, 7}
	right := []int64{99, 4, -50, 7}

	cases := []struct {
		name     string
		channels frame.Channels
		ch0, ch1 []int64 // stored subframe samples
	}{
		{"left side", frame.ChannelsLeftSide, left, diff(left, right)},
		{"side right", frame.ChannelsSideRight, diff(left, right), right},
		{"mid side", frame.ChannelsMidSide, midOf(left, right), diff(left, right)},
		{"independent", frame.ChannelsLR, left, right},
	}
	for _, c := range cases {
		c := c
		t.Run(c.name, func(t *testing.T) {
			t.Parallel()
			bps0, bps1 := uint(16), uint(16)
			switch c.channels {
			case frame.ChannelsLeftSide, frame.ChannelsMidSide:
				bps1 = 17
			case frame.ChannelsSideRight:
				bps0 = 17
			}
			h := stereo16(c.channels, len(left))
			data := flactest.Frame(h.write, func(bw *flactest.BitWriter) {
				writeVerbatim(bw, c.ch0, bps0)
				writeVerbatim(bw, c.ch1, bps1)
			})

			f, err := frame.Parse(bytes.NewReader(data), testInfo())
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			if !equal(f.Subframes[0].Samples, left) {
				t.Errorf("left = %d, want %d", f.Subframes[0].Samples, left)
			}
			if !equal(f.Subframes[1].Samples, right) {
				t.Errorf("right = %d, want %d", f.Subframes[1].Samples, right)
			}
		})
	}
}

func TestParseHeaderFields(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name       string
		h          hdr
		blockSize  uint16
		sampleRate uint32
		bps        uint8
		sampleNum  uint64
	}{
		{
			name:       "stream defaults",
			h:          hdr{blockSizeCode: 0xC, num: 3},
			blockSize:  4096,
			sampleRate: 44100,
			bps:        16,
			sampleNum:  3 * 4096,
		},
		{
			name: "sixteen bit block size",
			h: hdr{
				blockSizeCode: 0x7,
				extra:         func(bw *flactest.BitWriter) { bw.WriteBits(4607, 16) },
			},
			blockSize:  4608,
			sampleRate: 44100,
			bps:        16,
		},
		{
			name: "sample rate in kHz",
			h: hdr{
				blockSizeCode:  0x8, // 256
				sampleRateCode: 0xC,
				extra:          func(bw *flactest.BitWriter) { bw.WriteBits(96, 8) },
			},
			blockSize:  256,
			sampleRate: 96000,
			bps:        16,
		},
		{
			name: "sample rate in daHz",
			h: hdr{
				blockSizeCode:  0x1, // 192
				sampleRateCode: 0xE,
				extra:          func(bw *flactest.BitWriter) { bw.WriteBits(4410, 16) },
			},
			blockSize:  192,
			sampleRate: 44100,
			bps:        16,
		},
		{
			name:       "eight bit samples at 48 kHz",
			h:          hdr{blockSizeCode: 0x9, sampleRateCode: 0xA, sampleSizeCode: 0x1},
			blockSize:  512,
			sampleRate: 48000,
			bps:        8,
		},
		{
			name:      "variable block size with multi byte position",
			h:         hdr{variable: true, blockSizeCode: 0xC, num: 0x12345},
			blockSize: 4096, sampleRate: 44100, bps: 16,
			sampleNum: 0x12345,
		},
	}
	for _, c := range cases {
		c := c
		t.Run(c.name, func(t *testing.T) {
			t.Parallel()
			h := c.h
			h.channels = frame.ChannelsMono
			data := flactest.Frame(h.write, func(bw *flactest.BitWriter) {
				bw.WriteBits(0, 1)
				bw.WriteBits(0, 6) // constant
				bw.WriteBits(0, 1)
				bw.WriteBits(0, uint(c.bps))
			})

			f, err := frame.Parse(bytes.NewReader(data), testInfo())
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			if f.BlockSize != c.blockSize {
				t.Errorf("BlockSize = %d, want %d", f.BlockSize, c.blockSize)
			}
			if f.SampleRate != c.sampleRate {
				t.Errorf("SampleRate = %d, want %d", f.SampleRate, c.sampleRate)
			}
			if f.BitsPerSample != c.bps {
				t.Errorf("BitsPerSample = %d, want %d", f.BitsPerSample, c.bps)
			}
			if got := f.SampleNumber(); got != c.sampleNum {
				t.Errorf("SampleNumber() = %d, want %d", got, c.sampleNum)
			}
			if f.HasFixedBlockSize == c.h.variable {
				t.Errorf("HasFixedBlockSize = %v, want %v", f.HasFixedBlockSize, !c.h.variable)
			}
		})
	}
}

func validMonoFrame() []byte {
	h := stereo16(frame.ChannelsMono, 8)
	return flactest.Frame(h.write, func(bw *flactest.BitWriter) {
		writeVerbatim(bw, []int64{1, 2, 3, 4, 5, 6, 7, 8}, 16)
	})
}

func TestParseErrors(t *testing.T) {
	t.Parallel()

	reserved := func(channels frame.Channels, sampleSizeCode, sampleRateCode, blockSizeCode uint64) []byte {
		bw := new(flactest.BitWriter)
		bw.WriteBits(0x3FFE, 14)
		h := hdr{
			blockSizeCode:  blockSizeCode,
			sampleRateCode: sampleRateCode,
			channels:       channels,
			sampleSizeCode: sampleSizeCode,
		}
		h.write(bw)
		return bw.Bytes()
	}

	// Sync code and header fields with the position field replaced by an
	// overlong two-byte encoding of zero.
	overlongPosition := func() []byte {
		bw := new(flactest.BitWriter)
		bw.WriteBits(0x3FFE, 14)
		bw.WriteBits(0, 1)
		bw.WriteBits(0, 1)
		bw.WriteBits(0xC, 4) // block size 4096
		bw.WriteBits(0x9, 4) // 44100 Hz
		bw.WriteBits(uint64(frame.ChannelsMono), 4)
		bw.WriteBits(0x4, 3) // 16 bits
		bw.WriteBits(0, 1)
		bw.WriteBits(0xC080, 16)
		return bw.Bytes()
	}()

	oversizeBlock := func() []byte {
		bw := new(flactest.BitWriter)
		bw.WriteBits(0x3FFE, 14)
		h := hdr{
			blockSizeCode:  0x7,
			sampleRateCode: 0x9,
			channels:       frame.ChannelsMono,
			sampleSizeCode: 0x4,
			extra:          func(bw *flactest.BitWriter) { bw.WriteBits(0xFFFF, 16) },
		}
		h.write(bw)
		return bw.Bytes()
	}()

	headerCorrupt := validMonoFrame()
	headerCorrupt[4] ^= 0x01 // frame number byte; still valid UTF-8

	bodyCorrupt := validMonoFrame()
	bodyCorrupt[len(bodyCorrupt)-3] ^= 0x40 // sample data before the CRC-16

	badSubframeType := flactest.Frame(stereo16(frame.ChannelsMono, 8).write,
		func(bw *flactest.BitWriter) {
			bw.WriteBits(0, 1)
			bw.WriteBits(0x02, 6) // reserved type
			bw.WriteBits(0, 1)
		})

	// Block size 10 cannot be split into 4 partitions.
	badPartitions := flactest.Frame(stereo16(frame.ChannelsMono, 10).write,
		func(bw *flactest.BitWriter) {
			bw.WriteBits(0, 1)
			bw.WriteBits(0x08, 6) // fixed, order 0
			bw.WriteBits(0, 1)
			bw.WriteBits(0, 2)
			bw.WriteBits(2, 4) // partition order 2
		})

	// 2-sample partitions cannot hold an order-4 predictor's warm-up.
	shortFirstPartition := flactest.Frame(stereo16(frame.ChannelsMono, 16).write,
		func(bw *flactest.BitWriter) {
			bw.WriteBits(0, 1)
			bw.WriteBits(0x0C, 6) // fixed, order 4
			bw.WriteBits(0, 1)
			for i := 0; i < 4; i++ {
				bw.WriteBits(0, 16) // warm-up
			}
			bw.WriteBits(0, 2)
			bw.WriteBits(3, 4) // partition order 3
		})

	reservedResidual := flactest.Frame(stereo16(frame.ChannelsMono, 8).write,
		func(bw *flactest.BitWriter) {
			bw.WriteBits(0, 1)
			bw.WriteBits(0x08, 6) // fixed, order 0
			bw.WriteBits(0, 1)
			bw.WriteBits(2, 2) // reserved coding method
		})

	badLPCPrecision := flactest.Frame(stereo16(frame.ChannelsMono, 8).write,
		func(bw *flactest.BitWriter) {
			bw.WriteBits(0, 1)
			bw.WriteBits(0x20, 6) // LPC, order 1
			bw.WriteBits(0, 1)
			bw.WriteBits(0, 16)  // warm-up
			bw.WriteBits(0xF, 4) // invalid precision
		})

	badLPCShift := flactest.Frame(stereo16(frame.ChannelsMono, 8).write,
		func(bw *flactest.BitWriter) {
			bw.WriteBits(0, 1)
			bw.WriteBits(0x20, 6) // LPC, order 1
			bw.WriteBits(0, 1)
			bw.WriteBits(0, 16)   // warm-up
			bw.WriteBits(3, 4)    // precision 4
			bw.WriteBits(0x1F, 5) // shift -1
		})

	// Sixteen wasted bits leave no sample bits at a 16-bit depth.
	wastedExhaustsDepth := flactest.Frame(stereo16(frame.ChannelsMono, 8).write,
		func(bw *flactest.BitWriter) {
			bw.WriteBits(0, 1)
			bw.WriteBits(0, 6) // constant
			bw.WriteBits(1, 1)
			bw.WriteUnary(15)
		})

	cases := []struct {
		name string
		data []byte
		want error
	}{
		{"lost sync", []byte{0xFF, 0xFF, 0xFF, 0xFF}, frame.ErrLostSync},
		{"reserved channels", reserved(frame.Channels(0xB), 0x4, 0x9, 0xC), frame.ErrReservedChannels},
		{"reserved sample size", reserved(frame.ChannelsMono, 0x3, 0x9, 0xC), frame.ErrReservedSampleSize},
		{"reserved block size", reserved(frame.ChannelsMono, 0x4, 0x9, 0x0), frame.ErrReservedBlockSize},
		{"invalid sample rate", reserved(frame.ChannelsMono, 0x4, 0xF, 0xC), frame.ErrInvalidSampleRate},
		{"invalid position", append(reserved(frame.ChannelsMono, 0x4, 0x9, 0xC)[:4], 0xFF), frame.ErrInvalidPosition},
		{"overlong position", overlongPosition, frame.ErrInvalidPosition},
		{"oversize block", oversizeBlock, frame.ErrInvalidBlockSize},
		{"header checksum", headerCorrupt, frame.ErrHeaderChecksum},
		{"frame checksum", bodyCorrupt, frame.ErrChecksum},
		{"reserved subframe type", badSubframeType, frame.ErrReservedSubframeType},
		{"reserved residual coding", reservedResidual, frame.ErrReservedResidualCoding},
		{"invalid LPC precision", badLPCPrecision, frame.ErrInvalidLPCPrecision},
		{"invalid LPC shift", badLPCShift, frame.ErrInvalidLPCShift},
		{"wasted bits exhaust depth", wastedExhaustsDepth, frame.ErrInvalidWastedBits},
		{"invalid partition order", badPartitions, frame.ErrInvalidPartitionOrder},
		{"short first partition", shortFirstPartition, frame.ErrInvalidPartitionOrder},
		{"truncated", validMonoFrame()[:9], io.ErrUnexpectedEOF},
	}
	for _, c := range cases {
		c := c
		t.Run(c.name, func(t *testing.T) {
			t.Parallel()
			_, err := frame.Parse(bytes.NewReader(c.data), testInfo())
			if !errors.Is(err, c.want) {
				t.Errorf("err = %v, want %v", err, c.want)
			}
		})
	}
}

func TestNewCleanEOF(t *testing.T) {
	t.Parallel()

	_, err := frame.New(bytes.NewReader(nil), testInfo())
	if err != io.EOF {
		t.Errorf("err = %v, want io.EOF", err)
	}
}

func equal(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func diff(a, b []int64) []int64 {
	out := make([]int64, len(a))
	for i := range a {
		out[i] = a[i] - b[i]
	}
	return out
}

func midOf(a, b []int64) []int64 {
	out := make([]int64, len(a))
	for i := range a {
		out[i] = (a[i] + b[i]) >> 1
	}
	return out
}
