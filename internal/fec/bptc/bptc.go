// SPDX-License-Identifier: AGPL-3.0-or-later
// dmr-p25-decoder - SDR digital-voice decoder for trunked P25/DMR systems

// Package bptc implements BPTC(196,96) block-product turbo coding (spec
// §4.2): 196 received bits are de-interleaved into a 15-row by 13-column
// matrix, each of the 13 columns is corrected as a Hamming(15,11,3)
// codeword (internal/fec/hamming.Decode15_11) and each of the 15 rows as a
// Hamming(13,9,3) codeword (internal/fec/hamming.Decode13_9), the standard
// two-pass row/column product-code correction. The surviving data
// positions (the cells that are data positions in both the row and the
// column code) are read out row-major as the 96 information bits; link-
// control payloads layer a further RS(12,9) correction over that output,
// which is internal/fec/rs's concern, not this package's.
package bptc

import "github.com/arancormonk/dsd-neo-sub008/internal/fec/hamming"

const (
	rows = 15
	cols = 13
	// interleaveStep is the standard BPTC(196,96) bit-interleave constant:
	// deinterleaved position i pulls from received bit (i*181) mod 196.
	interleaveStep = 181
	inputBits      = 196
)

// Status summarizes a BPTC decode: how many of the 28 row/column
// codewords were corrected, and whether any were left uncorrectable.
type Status struct {
	Corrected     int
	Uncorrectable bool
}

// Decode196_96 deinterleaves and corrects a 196-bit BPTC block, returning
// the 96 information bits (row-major over the data-position intersection)
// plus a Status describing how much correction was needed.
func Decode196_96(received [inputBits]int) (data [96]int, status Status) {
	var matrix [rows][cols]int
	for i := 0; i < rows*cols; i++ {
		src := (i * interleaveStep) % inputBits
		matrix[i/cols][i%cols] = received[src]
	}

	colDataMask := dataMask15_11()
	for c := 0; c < cols; c++ {
		var word [15]int
		for r := 0; r < rows; r++ {
			word[r] = matrix[r][c]
		}
		_, st := hamming.Decode15_11(word)
		switch st {
		case 1:
			status.Corrected++
		case 2:
			status.Uncorrectable = true
		}
		// hamming.Decode15_11 corrects in place conceptually; reconstruct
		// the corrected column by re-deriving the syndrome fix locally so
		// the matrix carries the correction forward into row decoding.
		corrected := correctSingle15(word)
		for r := 0; r < rows; r++ {
			matrix[r][c] = corrected[r]
		}
	}

	rowDataMask := dataMask13_9()
	for r := 0; r < rows; r++ {
		var word [13]int
		copy(word[:], matrix[r][:])
		_, st := hamming.Decode13_9(word)
		switch st {
		case 1:
			status.Corrected++
		case 2:
			status.Uncorrectable = true
		}
		corrected := correctSingle13(word)
		copy(matrix[r][:], corrected[:])
	}

	idx := 0
	for r := 0; r < rows && idx < 96; r++ {
		for c := 0; c < cols && idx < 96; c++ {
			if colDataMask[r] && rowDataMask[c] {
				data[idx] = matrix[r][c]
				idx++
			}
		}
	}
	return data, status
}

// dataMask15_11 reports, for each 0-indexed position 0..14 of a 15-bit
// Hamming(15,11,3) codeword, whether that position carries data (true) or
// parity (false).
func dataMask15_11() (mask [15]bool) {
	parity := map[int]bool{1: true, 2: true, 4: true, 8: true}
	for i := 0; i < 15; i++ {
		mask[i] = !parity[i+1]
	}
	return mask
}

// dataMask13_9 is dataMask15_11's analogue for the shortened 13-bit code.
func dataMask13_9() (mask [13]bool) {
	parity := map[int]bool{1: true, 2: true, 4: true, 8: true}
	for i := 0; i < 13; i++ {
		mask[i] = !parity[i+1]
	}
	return mask
}

func syndrome(bits []int, n int) int {
	s := 0
	for pos := 1; pos <= n; pos++ {
		if bits[pos-1] != 0 {
			s ^= pos
		}
	}
	return s
}

// correctSingle15 flips the single bit a 15-bit Hamming syndrome points at,
// leaving the word unchanged if the syndrome is zero or out of range.
func correctSingle15(word [15]int) [15]int {
	s := syndrome(word[:], 15)
	if s != 0 && s <= 15 {
		word[s-1] ^= 1
	}
	return word
}

// correctSingle13 is correctSingle15's analogue for the 13-bit code.
func correctSingle13(word [13]int) [13]int {
	s := syndrome(word[:], 13)
	if s != 0 && s <= 13 {
		word[s-1] ^= 1
	}
	return word
}
