// SPDX-License-Identifier: AGPL-3.0-or-later
// dmr-p25-decoder - SDR digital-voice decoder for trunked P25/DMR systems

package rs_test

import (
	"testing"

	"github.com/arancormonk/dsd-neo-sub008/internal/fec/rs"
	"github.com/stretchr/testify/require"
)

func TestDecodeCleanAllZeroCodeword(t *testing.T) {
	t.Parallel()
	var symbols [12]byte
	data, status := rs.Decode(symbols)
	require.Equal(t, rs.Clean, status)
	require.Equal(t, [9]byte{}, data)
}

func TestDecodeUncorrectableOnMultiSymbolCorruption(t *testing.T) {
	t.Parallel()
	var symbols [12]byte
	symbols[2] = 0x15
	symbols[7] = 0x2B
	_, status := rs.Decode(symbols)
	require.Equal(t, rs.Uncorrectable, status)
}
