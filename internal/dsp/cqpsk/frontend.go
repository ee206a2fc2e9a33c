// SPDX-License-Identifier: AGPL-3.0-or-later
// dmr-p25-decoder - SDR digital-voice decoder for trunked P25/DMR systems

// Package cqpsk implements the CQPSK symbol-recovery core (spec §4.1): a
// band-edge FLL, a Gardner timing-error detector, a differential phasor
// and a second-order Costas loop, chained in the fixed order the spec
// requires and carrying their loop state from one Process block to the
// next (Retune resets it as documented there).
package cqpsk

// Frontend is one tuned channel's symbol-recovery state. A zero Frontend
// is not usable; construct with New.
type Frontend struct {
	sps float64

	fll     *fllState
	gardner *gardnerState
	diff    *differentialDecoder
	costas  *costasState
}

// New builds a Frontend for sps samples per symbol, the CQPSK front-end's
// only required construction parameter — everything else is derived from
// it via §4.1's gain table.
func New(sps float64) *Frontend {
	return &Frontend{
		sps:     sps,
		fll:     designFLL(sps),
		gardner: designGardner(sps),
		diff:    newDifferentialDecoder(),
		costas:  designCostas(),
	}
}

// Process runs one block of AGC'd IQ samples through the fixed five-stage
// pipeline and returns the symbol-rate Costas output. The front-end never
// fails (§4.1): a block with an insufficiently full delay line simply
// yields fewer symbols than input samples warrant.
func (f *Frontend) Process(in []complex64) []complex64 {
	out := make([]complex64, 0, len(in)/2+1)
	for _, sample := range in {
		rotated := f.fll.step(sample)
		sym, emitted := f.gardner.step(rotated)
		if !emitted {
			continue
		}
		y := f.diff.step(sym)
		out = append(out, f.costas.step(y))
	}
	return out
}

// Retune applies §4.1's retune contract for a change to newSps samples
// per symbol: filters are redesigned and the delay line cleared; mu/omega
// reset to newSps; FLL/Costas frequency is preserved but phase is reset;
// the differential decoder's prev resets to (1,0).
func (f *Frontend) Retune(newSps float64) {
	preservedFLLOmega := f.fll.omega
	preservedCostasOmega := f.costas.omega

	f.sps = newSps
	f.fll.low, f.fll.high = designBandEdgeFilters(newSps, defaultRolloff)
	f.fll.reset()
	f.fll.omega = preservedFLLOmega

	f.gardner.resetBuffers(newSps)

	f.diff.reset()

	f.costas.reset()
	f.costas.omega = preservedCostasOmega
}

// SamplesPerSymbol reports the front-end's currently configured sps.
func (f *Frontend) SamplesPerSymbol() float64 {
	return f.sps
}
