// SPDX-License-Identifier: EPL-2.0

package frame

import (
	"fmt"

	"github.com/ik5/audflac/internal/bits"
)

// Pred specifies the prediction method of a subframe. The format fixes this
// set; no other variants can appear without a format revision.
type Pred uint8

// Prediction methods.
const (
	// PredConstant stores a single sample value replicated over the whole
	// block.
	PredConstant Pred = iota
	// PredVerbatim stores every sample unencoded at full width.
	PredVerbatim
	// PredFixed predicts each sample with one of five fixed polynomial
	// predictors (orders 0-4) and stores the residuals.
	PredFixed
	// PredLPC predicts each sample with quantized coefficients transmitted
	// in the subframe (orders 1-32) and stores the residuals.
	PredLPC
)

// Subframe holds one channel's decoded samples and the parameters they were
// encoded with. It belongs to exactly one Frame and is discarded with it.
type Subframe struct {
	// Prediction method.
	Pred Pred
	// Predictor order; 0 for constant and verbatim subframes.
	Order int
	// Wasted bits per sample, restored by left shift after reconstruction.
	Wasted uint
	// Quantized coefficient precision in bits (LPC only).
	CoeffPrec uint
	// Coefficient right-shift amount (LPC only).
	CoeffShift uint
	// Quantized predictor coefficients (LPC only).
	Coeffs []int32
	// Decoded samples. During decoding the tail past Order temporarily
	// holds residuals; restore turns them into sample values in place.
	Samples []int64
}

// parseSubframe decodes one channel's subframe of blockSize samples at bps
// bits per sample (already adjusted for side channels).
func parseSubframe(br *bits.Reader, bps uint, blockSize int) (*Subframe, error) {
	sf := &Subframe{Samples: make([]int64, 0, blockSize)}
	if err := sf.parseHeader(br); err != nil {
		return nil, err
	}

	// Wasted bits are stripped before prediction and restored after.
	if sf.Wasted >= bps {
		return nil, fmt.Errorf("%w (%d wasted bits at depth %d)", ErrInvalidWastedBits, sf.Wasted, bps)
	}
	bps -= sf.Wasted

	var err error
	switch sf.Pred {
	case PredConstant:
		err = sf.decodeConstant(br, bps, blockSize)
	case PredVerbatim:
		err = sf.decodeVerbatim(br, bps, blockSize)
	case PredFixed:
		err = sf.decodeFixed(br, bps, blockSize)
	case PredLPC:
		err = sf.decodeLPC(br, bps, blockSize)
	}
	if err != nil {
		return nil, err
	}

	if sf.Wasted > 0 {
		for i := range sf.Samples {
			sf.Samples[i] <<= sf.Wasted
		}
	}
	return sf, nil
}

// parseHeader reads the subframe header: padding bit, 6-bit type code and the
// optional wasted-bits count.
func (sf *Subframe) parseHeader(br *bits.Reader) error {
	// 1 bit: zero padding, guards against sync-fooling runs of ones.
	x, err := br.Read(1)
	if err != nil {
		return unexpected(err)
	}
	if x != 0 {
		return fmt.Errorf("subframe: %w (non-zero padding bit)", ErrLostSync)
	}

	// 6 bits: subframe type.
	//    000000: constant
	//    000001: verbatim
	//    001xxx: fixed, xxx = order if order <= 4
	//    1xxxxx: LPC, xxxxx = order - 1
	//    anything else: reserved
	if x, err = br.Read(6); err != nil {
		return unexpected(err)
	}
	switch {
	case x == 0x00:
		sf.Pred = PredConstant
	case x == 0x01:
		sf.Pred = PredVerbatim
	case x >= 0x08 && x <= 0x0C:
		sf.Pred = PredFixed
		sf.Order = int(x & 0x07)
	case x >= 0x20:
		sf.Pred = PredLPC
		sf.Order = int(x&0x1F) + 1
	default:
		return fmt.Errorf("%w (%06b)", ErrReservedSubframeType, x)
	}

	// 1 bit: wasted-bits flag; if set, k-1 follows unary coded.
	if x, err = br.Read(1); err != nil {
		return unexpected(err)
	}
	if x != 0 {
		k, err := br.ReadUnary()
		if err != nil {
			return err
		}
		sf.Wasted = uint(k) + 1
	}
	return nil
}

// decodeConstant reads a single sample value replicated over the block.
func (sf *Subframe) decodeConstant(br *bits.Reader, bps uint, blockSize int) error {
	sample, err := br.ReadSigned(bps)
	if err != nil {
		return unexpected(err)
	}
	for i := 0; i < blockSize; i++ {
		sf.Samples = append(sf.Samples, sample)
	}
	return nil
}

// decodeVerbatim reads blockSize unencoded samples.
func (sf *Subframe) decodeVerbatim(br *bits.Reader, bps uint, blockSize int) error {
	for i := 0; i < blockSize; i++ {
		sample, err := br.ReadSigned(bps)
		if err != nil {
			return unexpected(err)
		}
		sf.Samples = append(sf.Samples, sample)
	}
	return nil
}

// fixedCoeffs are the coefficients of the five fixed polynomial predictors.
// Order 0 is the identity: the residual is the sample.
var fixedCoeffs = [5][]int32{
	1: {1},
	2: {2, -1},
	3: {3, -3, 1},
	4: {4, -6, 4, -1},
}

// decodeFixed reads warm-up samples and residuals, then reconstructs the
// block with the fixed predictor of the subframe's order.
func (sf *Subframe) decodeFixed(br *bits.Reader, bps uint, blockSize int) error {
	if err := sf.readWarmUp(br, bps); err != nil {
		return err
	}
	if err := sf.decodeResidual(br, blockSize); err != nil {
		return err
	}
	sf.restore(fixedCoeffs[sf.Order], 0)
	return nil
}

// decodeLPC reads warm-up samples, the quantized coefficients and residuals,
// then reconstructs the block with the transmitted predictor.
func (sf *Subframe) decodeLPC(br *bits.Reader, bps uint, blockSize int) error {
	if err := sf.readWarmUp(br, bps); err != nil {
		return err
	}

	// 4 bits: (coefficient precision) - 1; 1111 is invalid.
	x, err := br.Read(4)
	if err != nil {
		return unexpected(err)
	}
	if x == 0xF {
		return ErrInvalidLPCPrecision
	}
	sf.CoeffPrec = uint(x) + 1

	// 5 bits: signed coefficient shift.
	shift, err := br.ReadSigned(5)
	if err != nil {
		return unexpected(err)
	}
	if shift < 0 {
		return fmt.Errorf("%w (%d)", ErrInvalidLPCShift, shift)
	}
	sf.CoeffShift = uint(shift)

	sf.Coeffs = make([]int32, sf.Order)
	for i := range sf.Coeffs {
		c, err := br.ReadSigned(sf.CoeffPrec)
		if err != nil {
			return unexpected(err)
		}
		sf.Coeffs[i] = int32(c)
	}

	if err := sf.decodeResidual(br, blockSize); err != nil {
		return err
	}
	sf.restore(sf.Coeffs, sf.CoeffShift)
	return nil
}

func (sf *Subframe) readWarmUp(br *bits.Reader, bps uint) error {
	for i := 0; i < sf.Order; i++ {
		sample, err := br.ReadSigned(bps)
		if err != nil {
			return unexpected(err)
		}
		sf.Samples = append(sf.Samples, sample)
	}
	return nil
}

// restore turns the residuals at Samples[Order:] into sample values:
// each sample is its residual plus the shifted dot product of coeffs with
// the preceding already-reconstructed samples. The accumulation runs in
// 64-bit arithmetic; up to 32 terms of 32-bit samples times 15-bit
// coefficients do not fit anything narrower.
func (sf *Subframe) restore(coeffs []int32, shift uint) {
	for i := sf.Order; i < len(sf.Samples); i++ {
		var sum int64
		for j, c := range coeffs {
			sum += int64(c) * sf.Samples[i-1-j]
		}
		sf.Samples[i] += sum >> shift
	}
}
