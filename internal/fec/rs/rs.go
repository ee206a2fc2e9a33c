// SPDX-License-Identifier: AGPL-3.0-or-later
// dmr-p25-decoder - SDR digital-voice decoder for trunked P25/DMR systems

// Package rs implements the Reed-Solomon(12,9) single-symbol-error
// correction spec §4.2 calls for link-control BPTC payloads: 12 six-bit
// symbols over GF(2^6) (primitive polynomial x^6+x+1, 0x43), 9 of them
// data, the remaining 3 parity symbols giving a minimum distance of 4 and
// single-symbol-error correction via direct syndrome solving.
package rs

const (
	// fieldSize is the number of nonzero elements of GF(2^6).
	fieldSize = 63
	// primPoly is x^6+x+1 including its leading x^6 term (bit 6), so
	// XORing it in after a shift clears bit 6 and adds x+1.
	primPoly = 0x43
	symbolMask = 0x3F
	n          = 12
	k          = 9
)

var expTable [2 * fieldSize]byte
var logTable [64]int

func init() {
	x := 1
	for i := 0; i < fieldSize; i++ {
		expTable[i] = byte(x)
		logTable[x] = i
		x <<= 1
		if x&0x40 != 0 {
			x ^= primPoly
		}
		x &= symbolMask
	}
	for i := fieldSize; i < 2*fieldSize; i++ {
		expTable[i] = expTable[i-fieldSize]
	}
}

func gfMul(a, b byte) byte {
	if a == 0 || b == 0 {
		return 0
	}
	return expTable[logTable[a]+logTable[b]]
}

func gfDiv(a, b byte) byte {
	if a == 0 {
		return 0
	}
	return expTable[(logTable[a]-logTable[b]+fieldSize)%fieldSize]
}

func gfPow(a byte, e int) byte {
	if a == 0 {
		if e == 0 {
			return 1
		}
		return 0
	}
	ee := (logTable[a] * e) % fieldSize
	if ee < 0 {
		ee += fieldSize
	}
	return expTable[ee]
}

// Status mirrors the other FEC packages' 0/1/2 convention: clean,
// corrected, uncorrectable.
type Status int

const (
	Clean Status = iota
	Corrected
	Uncorrectable
)

// Decode corrects a single symbol error in a 12-symbol RS(12,9) codeword
// (symbols 0..11, each 0..63, generator roots alpha^1..alpha^3) and
// returns the 9 data symbols.
func Decode(symbols [n]byte) (data [k]byte, status Status) {
	var synd [3]byte
	for j := 1; j <= 3; j++ {
		var s byte
		for i := 0; i < n; i++ {
			s ^= gfMul(symbols[i], gfPow(alpha(), i*j))
		}
		synd[j-1] = s
	}

	copy(data[:], symbols[:k])
	if synd[0] == 0 && synd[1] == 0 && synd[2] == 0 {
		return data, Clean
	}

	if synd[0] == 0 {
		return data, Uncorrectable
	}

	// Single-error locator: alpha^p = S2/S1.
	ratio := gfDiv(synd[1], synd[0])
	p := -1
	for i := 0; i < fieldSize; i++ {
		if expTable[i] == ratio {
			p = i
			break
		}
	}
	if p < 0 || p >= n {
		return data, Uncorrectable
	}

	mag := gfDiv(synd[0], gfPow(alpha(), p))
	// Verify against the third syndrome before trusting the correction.
	if gfMul(mag, gfPow(alpha(), 3*p)) != synd[2] {
		return data, Uncorrectable
	}

	corrected := symbols
	corrected[p] ^= mag
	copy(data[:], corrected[:k])
	return data, Corrected
}

func alpha() byte { return 2 }
