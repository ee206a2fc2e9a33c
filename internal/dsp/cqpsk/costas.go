// SPDX-License-Identifier: AGPL-3.0-or-later
// dmr-p25-decoder - SDR digital-voice decoder for trunked P25/DMR systems

package cqpsk

import "math"

// costasState is the second-order QPSK Costas loop that locks the residual
// carrier phase on the already-differentially-decoded symbol stream.
type costasState struct {
	omega, phi  float64
	alpha, beta float64
	fMax        float64
}

// designCostas builds the Costas loop gains, per §4.1's "Costas B = 0.008,
// ζ=√2/2".
func designCostas() *costasState {
	const bandwidth = 0.008
	const damping = math.Sqrt2 / 2
	alpha, beta := secondOrderGains(bandwidth, damping)
	return &costasState{
		alpha: alpha, beta: beta,
		fMax: math.Pi / 2,
	}
}

// reset clears the Costas phase, preserving frequency, per §4.1's retune
// contract.
func (s *costasState) reset() {
	s.phi = 0
}

// step rotates one differential phasor by exp(-j*phi), slices the QPSK
// error, and updates (omega, phi). Unlike the FLL, phi is clamped rather
// than wrapped — §4.1: "φ_C is clamped, not wrapped, to ±π/2 because the
// signal is already differentially decoded".
func (s *costasState) step(in complex64) complex64 {
	rotated := rotate(in, -s.phi)

	re, im := float64(real(rotated)), float64(imag(rotated))
	e := clip(math.Copysign(1, re)*im-math.Copysign(1, im)*re, -1, 1)

	s.omega = clip(s.omega+s.beta*e, -s.fMax, s.fMax)
	s.phi = clip(s.phi+s.omega+s.alpha*e, -math.Pi/2, math.Pi/2)

	return rotated
}

// differentialDecoder computes y[n] = x[n]*conj(x[n-1]) at symbol rate,
// carrying prev across calls to Process. Per §4.1's retune contract, prev
// resets to (1,0), not (0,0), so the first post-retune symbol passes
// through unrotated.
type differentialDecoder struct {
	prev complex64
}

func newDifferentialDecoder() *differentialDecoder {
	return &differentialDecoder{prev: complex64(complex(1, 0))}
}

func (d *differentialDecoder) reset() {
	d.prev = complex64(complex(1, 0))
}

func (d *differentialDecoder) step(x complex64) complex64 {
	y := x * complexConj(d.prev)
	d.prev = x
	return y
}

func complexConj(c complex64) complex64 {
	return complex64(complex(real(c), -imag(c)))
}
