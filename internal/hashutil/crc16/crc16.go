// SPDX-License-Identifier: EPL-2.0

// Package crc16 implements the 16-bit cyclic redundancy check of FLAC
// frames.
package crc16

import "github.com/ik5/audflac/internal/hashutil"

// Size of a CRC-16 checksum in bytes.
const Size = 2

// IBM is the generator polynomial of the IBM Bisync CRC-16,
// x^16 + x^15 + x^2 + 1, the polynomial FLAC frames use. Left-shifting,
// zero initial value, no reflection.
const IBM = 0x8005

// Table is a 256-entry lookup table of a CRC-16 polynomial.
type Table [256]uint16

func makeTable(poly uint16) *Table {
	t := new(Table)
	for i := range t {
		crc := uint16(i) << 8
		for bit := 0; bit < 8; bit++ {
			if crc&0x8000 != 0 {
				crc = crc<<1 ^ poly
			} else {
				crc <<= 1
			}
		}
		t[i] = crc
	}
	return t
}

var ibmTable = makeTable(IBM)

type digest struct {
	crc uint16
	tab *Table
}

// NewIBM returns a running hash computing the CRC-16 IBM checksum.
func NewIBM() hashutil.Hash16 {
	return &digest{tab: ibmTable}
}

func (d *digest) Write(p []byte) (int, error) {
	for _, b := range p {
		d.crc = d.crc<<8 ^ d.tab[uint8(d.crc>>8)^b]
	}
	return len(p), nil
}

func (d *digest) Sum16() uint16 {
	return d.crc
}

func (d *digest) Sum(in []byte) []byte {
	return append(in, uint8(d.crc>>8), uint8(d.crc))
}

func (d *digest) Reset() {
	d.crc = 0
}

func (d *digest) Size() int {
	return Size
}

func (d *digest) BlockSize() int {
	return 1
}
