// SPDX-License-Identifier: AGPL-3.0-or-later
// dmr-p25-decoder - SDR digital-voice decoder for trunked P25/DMR systems

// Package golay implements the soft-decision Golay(24,12) and Golay(24,6)
// decoders spec §4.2 calls for. Both are extended binary Golay codes built
// from the classical (12,12) "B matrix" quadratic-residue construction;
// Golay(24,6) is Golay(24,12) used at a lower rate (6 message bits mapped
// through a fixed 12-bit intermediate codeword), decoded the same way.
package golay

// bMatrix is the 12x12 B matrix of the extended binary Golay code: B = I -
// A where A is built from quadratic residues mod 11, the standard
// generator-matrix construction G = [I12 | B] (B is self-inverse, B = B^T).
var bMatrix = [12][12]int{
	{1, 1, 0, 1, 1, 1, 0, 0, 0, 1, 0, 1},
	{1, 0, 1, 1, 1, 0, 0, 0, 1, 0, 1, 1},
	{0, 1, 1, 1, 0, 0, 0, 1, 0, 1, 1, 1},
	{1, 1, 1, 0, 0, 0, 1, 0, 1, 1, 0, 1},
	{1, 1, 0, 0, 0, 1, 0, 1, 1, 0, 1, 1},
	{1, 0, 0, 0, 1, 0, 1, 1, 0, 1, 1, 1},
	{0, 0, 0, 1, 0, 1, 1, 0, 1, 1, 1, 1},
	{0, 0, 1, 0, 1, 1, 0, 1, 1, 1, 0, 1},
	{0, 1, 0, 1, 1, 0, 1, 1, 1, 0, 0, 1},
	{1, 0, 1, 1, 0, 1, 1, 1, 0, 0, 0, 1},
	{0, 1, 1, 0, 1, 1, 1, 0, 0, 0, 1, 1},
	{1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 0},
}

// encode12 returns the 24-bit extended Golay codeword for a 12-bit message,
// msg[0] the most significant.
func encode12(msg [12]int) (word [24]int) {
	copy(word[:12], msg[:])
	for col := 0; col < 12; col++ {
		p := 0
		for row := 0; row < 12; row++ {
			p ^= msg[row] & bMatrix[row][col]
		}
		word[12+col] = p
	}
	return word
}

// weight returns the Hamming weight of a 24-bit vector.
func weight(v [24]int) int {
	n := 0
	for _, b := range v {
		n += b
	}
	return n
}

func xorVec(a, b [24]int) (out [24]int) {
	for i := range out {
		out[i] = a[i] ^ b[i]
	}
	return out
}

// leastReliable returns the indices, in increasing unreliability, of the k
// smallest entries of rel.
func leastReliable(rel [24]uint8, k int) []int {
	idx := make([]int, 24)
	for i := range idx {
		idx[i] = i
	}
	for i := 1; i < 24; i++ {
		for j := i; j > 0 && rel[idx[j]] < rel[idx[j-1]]; j-- {
			idx[j], idx[j-1] = idx[j-1], idx[j]
		}
	}
	return idx[:k]
}

// decodeSoft runs a Chase-style soft search for the nearest valid Golay(24,12)
// codeword: generate flip patterns of weight 1..maxWeight over the
// numPositions least-reliable bits, accept the first candidate whose
// resulting 12-bit message re-encodes back to itself (i.e. the candidate IS
// a codeword), tracking the minimum-penalty hit. Penalty is Σ(255-rel[i])
// over flipped positions; ties broken by fewer flips.
func decodeSoft(bits [24]int, rel [24]uint8, numPositions, maxWeight int) (msg [12]int, status int) {
	var recv [24]int
	copy(recv[:], bits[:])

	positions := leastReliable(rel, numPositions)

	bestPenalty := -1
	bestFlips := 0
	var best [12]int
	found := false

	tryCandidate := func(cand [24]int, penalty, flips int) {
		var m [12]int
		copy(m[:], cand[:12])
		re := encode12(m)
		if re != cand {
			return
		}
		if !found || penalty < bestPenalty || (penalty == bestPenalty && flips < bestFlips) {
			best = m
			bestPenalty = penalty
			bestFlips = flips
			found = true
		}
	}

	// weight 0: the word as received.
	tryCandidate(recv, 0, 0)

	for w := 1; w <= maxWeight; w++ {
		combos(positions, w, func(subset []int) {
			cand := recv
			penalty := 0
			for _, p := range subset {
				cand[p] ^= 1
				penalty += int(255 - rel[p])
			}
			tryCandidate(cand, penalty, w)
		})
	}

	if !found {
		return msg, 2
	}
	status = 1
	if bestFlips == 0 {
		status = 0
	}
	return best, status
}

// combos calls fn once per w-sized subset of idx, in index order.
func combos(idx []int, w int, fn func(subset []int)) {
	n := len(idx)
	if w > n {
		return
	}
	comb := make([]int, w)
	var rec func(start, depth int)
	rec = func(start, depth int) {
		if depth == w {
			subset := make([]int, w)
			for i, c := range comb {
				subset[i] = idx[c]
			}
			fn(subset)
			return
		}
		for i := start; i < n; i++ {
			comb[depth] = i
			rec(i+1, depth+1)
		}
	}
	rec(0, 0)
}

// Decode24_12 is the soft decoder for Golay(24,12): weight-1..4 candidates
// over the 6 least-reliable positions, per §4.2 and §8's scenario S2.
func Decode24_12(bits [24]int, rel [24]uint8) (msg [12]int, status int) {
	return decodeSoft(bits, rel, 6, 4)
}

// Decode24_6 is the soft decoder for Golay(24,6): weight-1..3 candidates
// over the 5 least-reliable positions. The low-rate 6-bit message is the
// top 6 bits of the 12-bit Golay(24,12) message space.
func Decode24_6(bits [24]int, rel [24]uint8) (msg [6]int, status int) {
	full, s := decodeSoft(bits, rel, 5, 3)
	copy(msg[:], full[:6])
	return msg, s
}
