// SPDX-License-Identifier: AGPL-3.0-or-later
// dmr-p25-decoder - SDR digital-voice decoder for trunked P25/DMR systems

package crc_test

import (
	"testing"

	"github.com/arancormonk/dsd-neo-sub008/internal/fec/crc"
	"github.com/stretchr/testify/require"
)

func packBits(bits ...int) []byte {
	out := make([]byte, (len(bits)+7)/8)
	for i, b := range bits {
		if b != 0 {
			out[i/8] |= 1 << (7 - uint(i%8))
		}
	}
	return out
}

func TestCRC5Deterministic(t *testing.T) {
	t.Parallel()
	data := packBits(1, 0, 1, 1, 0, 0, 1, 0, 1, 1, 0, 1)
	a := crc.CRC5(data, len(data)*8)
	b := crc.CRC5(data, len(data)*8)
	require.Equal(t, a, b)
	require.Less(t, a, uint8(32))
}

func TestCRC32RoundTripChangesOnBitFlip(t *testing.T) {
	t.Parallel()
	data := packBits(1, 1, 0, 0, 1, 0, 1, 0, 0, 0, 1, 1, 1, 1, 0, 0)
	base := crc.CRC32(data, len(data)*8)

	flipped := make([]byte, len(data))
	copy(flipped, data)
	flipped[0] ^= 0x80
	other := crc.CRC32(flipped, len(flipped)*8)

	require.NotEqual(t, base, other)
}

func TestSwapPDUBytesSwapsWordPairs(t *testing.T) {
	t.Parallel()
	in := []byte{0x01, 0x02, 0x03, 0x04}
	out := crc.SwapPDUBytes(in)
	require.Equal(t, []byte{0x02, 0x01, 0x04, 0x03}, out)
}
