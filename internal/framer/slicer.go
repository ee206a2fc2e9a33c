// SPDX-License-Identifier: AGPL-3.0-or-later
// dmr-p25-decoder - SDR digital-voice decoder for trunked P25/DMR systems

package framer

import "math/cmplx"

// Dibit is a post-Costas symbol's quadrant decision: one of {00,01,10,11}
// per spec §3's "Symbol (post-Costas)... after slicing they map to one of
// four dibits".
type Dibit uint8

// Sliced is one symbol's hard decision plus its 0..255 reliability, the
// two values every soft decoder in internal/fec consumes.
type Sliced struct {
	Bits        Dibit
	Reliability uint8
}

// Slice maps Costas-recovered symbols onto dibits by quadrant, deriving a
// reliability value from the symbol's magnitude relative to the sqrt(2)
// magnitude of the four diagonal constellation points (spec §3: "expected
// values lie on diagonals ±45°/±135°"); the angle does not affect it.
func Slice(symbols []complex64) []Sliced {
	out := make([]Sliced, len(symbols))
	for i, s := range symbols {
		out[i] = sliceOne(s)
	}
	return out
}

func sliceOne(s complex64) Sliced {
	re, im := real(s), imag(s)

	var bits Dibit
	switch {
	case re >= 0 && im >= 0:
		bits = 0b00
	case re < 0 && im >= 0:
		bits = 0b01
	case re < 0 && im < 0:
		bits = 0b11
	default:
		bits = 0b10
	}

	mag := cmplx.Abs(complex128(s))
	// Reliability grows with distance from the origin towards the unit
	// diagonal magnitude (sqrt(2)); a symbol sitting exactly on the
	// constellation point scores the full 255.
	const fullScale = 1.4142135623730951 // sqrt(2)
	rel := mag / fullScale
	if rel > 1 {
		rel = 1
	}
	if rel < 0 {
		rel = 0
	}
	return Sliced{Bits: bits, Reliability: uint8(rel * 255)}
}
