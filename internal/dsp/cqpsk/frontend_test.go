// SPDX-License-Identifier: AGPL-3.0-or-later
// dmr-p25-decoder - SDR digital-voice decoder for trunked P25/DMR systems

package cqpsk_test

import (
	"testing"

	"github.com/arancormonk/dsd-neo-sub008/internal/dsp/cqpsk"
	"github.com/stretchr/testify/require"
)

func qpskSymbols(n int, sps float64) []complex64 {
	points := [4]complex64{
		complex64(complex(1, 1)),
		complex64(complex(-1, 1)),
		complex64(complex(-1, -1)),
		complex64(complex(1, -1)),
	}
	out := make([]complex64, 0, int(float64(n)*sps))
	for i := 0; i < n; i++ {
		sym := points[i%4]
		steps := int(sps)
		for s := 0; s < steps; s++ {
			out = append(out, sym)
		}
	}
	return out
}

func TestProcessNeverFailsOnShortBlocks(t *testing.T) {
	t.Parallel()
	f := cqpsk.New(5)
	out := f.Process(qpskSymbols(1, 5)[:2])
	require.NotNil(t, out)
	require.LessOrEqual(t, len(out), 2)
}

func TestProcessEmitsAtMostOneSymbolPerInputSample(t *testing.T) {
	t.Parallel()
	f := cqpsk.New(5)
	in := qpskSymbols(40, 5)
	out := f.Process(in)
	require.LessOrEqual(t, len(out), len(in))
}

func TestRetuneChangesSamplesPerSymbol(t *testing.T) {
	t.Parallel()
	f := cqpsk.New(5)
	require.InDelta(t, 5, f.SamplesPerSymbol(), 1e-9)

	f.Retune(4)
	require.InDelta(t, 4, f.SamplesPerSymbol(), 1e-9)

	// Post-retune the front-end must still accept samples without panicking
	// and never fail per §4.1's failure semantics.
	out := f.Process(qpskSymbols(20, 4))
	require.NotNil(t, out)
}

func TestRetuneResetsWithoutPanicAcrossRepeatedCalls(t *testing.T) {
	t.Parallel()
	f := cqpsk.New(5)
	_ = f.Process(qpskSymbols(10, 5))
	f.Retune(4)
	_ = f.Process(qpskSymbols(10, 4))
	f.Retune(5)
	out := f.Process(qpskSymbols(10, 5))
	require.NotNil(t, out)
}
