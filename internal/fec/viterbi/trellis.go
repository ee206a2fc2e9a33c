// SPDX-License-Identifier: AGPL-3.0-or-later
// dmr-p25-decoder - SDR digital-voice decoder for trunked P25/DMR systems

package viterbi

// Rate1_2 is the rate-1/2, constraint-length-4 convolutional code used for
// P25/DMR short control payloads (8 states, 2 output bits per input bit),
// generator polynomials 0x19/0x1B over a 4-bit shift register.
func Rate1_2() Trellis {
	const (
		g0 = 0x19
		g1 = 0x1B
		k  = 4
	)
	return Trellis{
		NumStates:     1 << (k - 1),
		InputAlphabet: 2,
		OutputBits:    2,
		NextState: func(state, input int) int {
			reg := (state << 1) | input
			return reg & ((1 << (k - 1)) - 1)
		},
		Output: func(state, input int) uint32 {
			reg := (state << 1) | input
			return (uint32(parity(reg&g0)) << 1) | uint32(parity(reg&g1))
		},
	}
}

// Rate3_4 is the 4-state trellis code used for DMR/P25 voice superframes:
// 98 input dibits map through 4 states to 196 output bits (18 bytes after
// the trailing 4 bits are dropped), 2 input bits producing 4 output bits
// per step.
func Rate3_4() Trellis {
	// nextStateTable and outputTable follow the standard 4-state
	// constellation trellis: state advances by the raw 2-bit input, and
	// the 4-bit output XORs the input dibit against the current state's
	// fixed constellation point.
	constellation := [4]uint32{0x0, 0x9, 0x6, 0xF}
	return Trellis{
		NumStates:     4,
		InputAlphabet: 4,
		OutputBits:    4,
		NextState: func(state, input int) int {
			return input
		},
		Output: func(state, input int) uint32 {
			return constellation[state] ^ uint32(input)<<2 ^ uint32(input)
		},
	}
}

func parity(v int) int {
	p := 0
	for v != 0 {
		p ^= v & 1
		v >>= 1
	}
	return p
}

// LegacyTableDecode is the non-trellis fallback decoder: it treats each
// OutputBits-wide group of channel bits as a direct index into a
// nearest-codeword table rather than running the add-compare-select
// recursion, the last-resort path when neither the soft nor the hard
// Viterbi decode is available for a burst.
func LegacyTableDecode(t Trellis, bits []int, numSymbols int) []int {
	out := make([]int, numSymbols)
	for step := 0; step < numSymbols; step++ {
		offset := step * t.OutputBits
		bestIn := 0
		bestDist := -1
		for in := 0; in < t.InputAlphabet; in++ {
			o := t.Output(0, in)
			dist := 0
			for b := 0; b < t.OutputBits; b++ {
				idx := offset + b
				if idx >= len(bits) {
					continue
				}
				expected := int(o>>(uint(t.OutputBits-1-b))) & 1
				if bits[idx] != expected {
					dist++
				}
			}
			if bestDist < 0 || dist < bestDist {
				bestDist = dist
				bestIn = in
			}
		}
		out[step] = bestIn
	}
	return out
}
