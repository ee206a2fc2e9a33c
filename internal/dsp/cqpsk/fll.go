// SPDX-License-Identifier: AGPL-3.0-or-later
// dmr-p25-decoder - SDR digital-voice decoder for trunked P25/DMR systems

package cqpsk

import "math"

// bandEdgeTaps is the length of each of the two FIR kernels the band-edge
// FLL filters the rotated stream through. Short enough to stay cheap per
// sample, long enough to separate the sideband energy the FLL error term
// needs.
const bandEdgeTaps = 8

// defaultRolloff is the excess-bandwidth factor the band-edge filters are
// designed around. Spec §4.1 names the edge frequency as a function of
// this rolloff but does not fix its value; 0.2 matches the common P25/DMR
// root-raised-cosine convention and is documented as an implementation
// choice in DESIGN.md.
const defaultRolloff = 0.2

// fllState carries the band-edge FLL's NCO and filter-history state across
// calls to Process, per §4.1's "loops carry their complete state" ordering
// guarantee.
type fllState struct {
	omega, phi     float64
	alpha, beta    float64
	low, high      []complex64 // FIR taps, lower/upper sideband
	history        []complex64 // rotated-sample ring for the FIR convolution
	historyWritten int
}

// designFLL builds the band-edge FIR kernels and loop gains for sps
// samples per symbol, per §4.1's "FLL B = 2π/(sps·350)".
func designFLL(sps float64) *fllState {
	const criticallyDamped = 1.0 // spec gives only B for the FLL; a critically-damped second-order loop is the standard band-edge convention
	bandwidth := 2 * math.Pi / (sps * 350)
	alpha, beta := secondOrderGains(bandwidth, criticallyDamped)
	low, high := designBandEdgeFilters(sps, defaultRolloff)
	return &fllState{
		alpha: alpha, beta: beta,
		low: low, high: high,
		history: make([]complex64, bandEdgeTaps),
	}
}

// designBandEdgeFilters builds the lower/upper-sideband FIR kernels
// centered at ±(1+rolloff)/(2·sps), a short Hann-windowed complex
// exponential per edge.
func designBandEdgeFilters(sps, rolloff float64) (low, high []complex64) {
	freq := (1 + rolloff) / (2 * sps)
	low = make([]complex64, bandEdgeTaps)
	high = make([]complex64, bandEdgeTaps)
	for n := 0; n < bandEdgeTaps; n++ {
		t := float64(n) - float64(bandEdgeTaps-1)/2
		w := 0.5 - 0.5*math.Cos(2*math.Pi*float64(n)/float64(bandEdgeTaps-1))
		low[n] = complex64(complex(w*math.Cos(-2*math.Pi*freq*t), w*math.Sin(-2*math.Pi*freq*t)))
		high[n] = complex64(complex(w*math.Cos(2*math.Pi*freq*t), w*math.Sin(2*math.Pi*freq*t)))
	}
	return low, high
}

// reset clears the FLL's filter history and phase, preserving frequency,
// per §4.1's retune contract ("FLL/Costas frequency preserved, phases
// reset").
func (s *fllState) reset() {
	s.phi = 0
	for i := range s.history {
		s.history[i] = 0
	}
	s.historyWritten = 0
}

// step advances the NCO, rotates one sample, filters the rotated stream
// through both band-edge kernels, and updates (omega, phi) from the
// sideband-energy error, per §4.1 step 2.
func (s *fllState) step(in complex64) complex64 {
	rot := rotate(in, s.phi)

	copy(s.history, s.history[1:])
	s.history[len(s.history)-1] = rot
	if s.historyWritten < len(s.history) {
		s.historyWritten++
	}

	var upper, lower complex64
	if s.historyWritten == len(s.history) {
		upper = firComplex(s.high, s.history)
		lower = firComplex(s.low, s.history)
	}
	e := absSq(upper) - absSq(lower) // GNU-Radio-style swapped output convention

	s.omega = clip(s.omega+s.beta*e, -math.Pi, math.Pi)
	s.phi = wrap2Pi(s.phi + s.omega + s.alpha*e)

	return rot
}

// rotate multiplies s by exp(+j*phi).
func rotate(s complex64, phi float64) complex64 {
	sinP, cosP := math.Sincos(phi)
	return s * complex64(complex(cosP, sinP))
}

// firComplex convolves taps against the most recent len(taps) samples of
// history (history[0] oldest, history[len-1] newest).
func firComplex(taps, history []complex64) complex64 {
	var acc complex64
	for i, tap := range taps {
		acc += tap * history[i]
	}
	return acc
}

// absSq returns |c|^2 without the sqrt cmplxAbs takes.
func absSq(c complex64) float64 {
	r, i := float64(real(c)), float64(imag(c))
	return r*r + i*i
}
