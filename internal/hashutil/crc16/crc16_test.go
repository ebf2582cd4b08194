// SPDX-License-Identifier: EPL-2.0

package crc16

import (
	"bytes"
	"testing"
)

func TestIBM(t *testing.T) {
	t.Parallel()

	// Published check value of CRC-16 poly 0x8005, init 0, unreflected
	// (CRC-16/UMTS).
	tests := []struct {
		data string
		want uint16
	}{
		{"", 0x0000},
		{"123456789", 0xFEE3},
	}
	for _, tt := range tests {
		h := NewIBM()
		h.Write([]byte(tt.data))
		if got := h.Sum16(); got != tt.want {
			t.Errorf("Sum16(%q) = %#04x, want %#04x", tt.data, got, tt.want)
		}
	}
}

func TestIBMIncremental(t *testing.T) {
	t.Parallel()

	h := NewIBM()
	h.Write([]byte("12345"))
	h.Write([]byte("6789"))
	if got := h.Sum16(); got != 0xFEE3 {
		t.Errorf("incremental Sum16 = %#04x, want 0xfee3", got)
	}
	if got := h.Sum(nil); !bytes.Equal(got, []byte{0xFE, 0xE3}) {
		t.Errorf("Sum = %x, want fee3", got)
	}
}
