// SPDX-License-Identifier: EPL-2.0

// Package crc8 implements the 8-bit cyclic redundancy check of FLAC frame
// headers.
package crc8

import "github.com/ik5/audflac/internal/hashutil"

// Size of a CRC-8 checksum in bytes.
const Size = 1

// ATM is the generator polynomial of the ATM header error control CRC-8,
// x^8 + x^2 + x + 1, the polynomial FLAC frame headers use. Left-shifting,
// zero initial value, no reflection.
const ATM = 0x07

// Table is a 256-entry lookup table of a CRC-8 polynomial.
type Table [256]uint8

func makeTable(poly uint8) *Table {
	t := new(Table)
	for i := range t {
		crc := uint8(i)
		for bit := 0; bit < 8; bit++ {
			if crc&0x80 != 0 {
				crc = crc<<1 ^ poly
			} else {
				crc <<= 1
			}
		}
		t[i] = crc
	}
	return t
}

var atmTable = makeTable(ATM)

type digest struct {
	crc uint8
	tab *Table
}

// NewATM returns a running hash computing the CRC-8 ATM checksum.
func NewATM() hashutil.Hash8 {
	return &digest{tab: atmTable}
}

func (d *digest) Write(p []byte) (int, error) {
	for _, b := range p {
		d.crc = d.tab[d.crc^b]
	}
	return len(p), nil
}

func (d *digest) Sum8() uint8 {
	return d.crc
}

func (d *digest) Sum(in []byte) []byte {
	return append(in, d.crc)
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
