// SPDX-License-Identifier: EPL-2.0

package frame

import (
	"fmt"

	"github.com/ik5/audflac/internal/bits"
)

// decodeResidual reads the prediction residuals of a subframe: a 2-bit
// coding method, a 4-bit partition order, and 2^order Rice partitions each
// with its own parameter. Residuals are appended to sf.Samples after the
// warm-up samples.
func (sf *Subframe) decodeResidual(br *bits.Reader, blockSize int) error {
	// 2 bits: coding method.
	//    00: Rice coding with 4-bit parameters.
	//    01: Rice coding with 5-bit parameters.
	x, err := br.Read(2)
	if err != nil {
		return unexpected(err)
	}
	var paramSize uint
	switch x {
	case 0x0:
		paramSize = 4
	case 0x1:
		paramSize = 5
	default:
		return fmt.Errorf("%w (%02b)", ErrReservedResidualCoding, x)
	}
	escape := uint64(1)<<paramSize - 1

	// 4 bits: partition order.
	if x, err = br.Read(4); err != nil {
		return unexpected(err)
	}
	partOrder := uint(x)
	nparts := 1 << partOrder

	// 2^order partitions must split the block evenly, and the warm-up
	// samples must fit inside the first one.
	if blockSize%nparts != 0 {
		return fmt.Errorf("%w (block size %d, partition order %d)", ErrInvalidPartitionOrder, blockSize, partOrder)
	}
	if blockSize/nparts < sf.Order {
		return fmt.Errorf("%w (partition of %d samples, predictor order %d)", ErrInvalidPartitionOrder, blockSize/nparts, sf.Order)
	}

	for i := 0; i < nparts; i++ {
		nsamples := blockSize / nparts
		if i == 0 {
			// Warm-up samples take the place of the first residuals.
			nsamples -= sf.Order
		}

		param, err := br.Read(paramSize)
		if err != nil {
			return unexpected(err)
		}
		if param == escape {
			// Escaped partition: 5 bits give a raw sample width, residuals
			// follow as fixed-width two's complement.
			width, err := br.Read(5)
			if err != nil {
				return unexpected(err)
			}
			for j := 0; j < nsamples; j++ {
				residual, err := br.ReadSigned(uint(width))
				if err != nil {
					return unexpected(err)
				}
				sf.Samples = append(sf.Samples, residual)
			}
			continue
		}

		for j := 0; j < nsamples; j++ {
			residual, err := sf.decodeRice(br, uint(param))
			if err != nil {
				return err
			}
			sf.Samples = append(sf.Samples, residual)
		}
	}
	return nil
}

// decodeRice reads one Rice coded residual: unary quotient, k remainder
// bits, zigzag decoded to signed.
func (sf *Subframe) decodeRice(br *bits.Reader, k uint) (int64, error) {
	q, err := br.ReadUnary()
	if err != nil {
		return 0, err
	}
	r, err := br.Read(k)
	if err != nil {
		return 0, unexpected(err)
	}
	return bits.DecodeZigZag(q<<k | r), nil
}
