// SPDX-License-Identifier: AGPL-3.0-or-later
// dmr-p25-decoder - SDR digital-voice decoder for trunked P25/DMR systems

package cqpsk

import "math"

const (
	mmseTapCount = 8  // taps per polyphase row
	mmsePhases   = 16 // 1/16-step resolution between rows
)

// gardnerState is the pure-timing Gardner TED: a circular delay line
// written twice per input sample (so any 8-tap interpolation window stays
// contiguous) plus the fractional-index/frequency pair (mu, omega).
type gardnerState struct {
	sps float64

	delay     []complex64 // length 2*twiceSps, each input written at idx and idx+twiceSps
	twiceSps  int
	writeIdx  int
	filled    int

	mu, omega       float64
	omegaMid        float64
	omegaRel        float64
	gMu, gOmega     float64
	lastSym         complex64
	haveLastSym     bool
	mmseTable       [mmsePhases + 1][mmseTapCount]float64
}

// designGardner builds the Gardner TED state for sps samples per symbol,
// per §4.1's "Gardner g_μ = 0.025, g_ω = 0.1·g_μ², ω_rel = 0.002".
func designGardner(sps float64) *gardnerState {
	g := &gardnerState{
		sps:      sps,
		twiceSps: int(math.Round(2 * sps)),
		gMu:      0.025,
		omegaRel: 0.002,
	}
	g.gOmega = 0.1 * g.gMu * g.gMu
	g.mmseTable = buildMMSETable()
	g.resetBuffers(sps)
	return g
}

// resetBuffers clears the delay line and resets mu/omega to sps, per
// §4.1's retune contract; it does not touch gMu/gOmega/omegaRel, which
// are fixed loop constants rather than per-channel state.
func (g *gardnerState) resetBuffers(sps float64) {
	g.twiceSps = int(math.Round(2 * sps))
	g.delay = make([]complex64, 2*g.twiceSps)
	g.writeIdx = 0
	g.filled = 0
	g.mu = sps
	g.omega = sps
	g.omegaMid = sps
	g.haveLastSym = false
}

// buildMMSETable constructs the mmsePhases+1 polyphase rows of an 8-tap
// MMSE interpolation filter, one row per 1/16 fractional-sample phase,
// as a windowed-sinc low-pass design centered on the desired fractional
// delay.
func buildMMSETable() [mmsePhases + 1][mmseTapCount]float64 {
	var table [mmsePhases + 1][mmseTapCount]float64
	for phase := 0; phase <= mmsePhases; phase++ {
		frac := float64(phase) / float64(mmsePhases)
		for tap := 0; tap < mmseTapCount; tap++ {
			x := float64(tap) - float64(mmseTapCount)/2 + 1 - frac
			table[phase][tap] = sinc(x) * hann(tap, mmseTapCount)
		}
	}
	return table
}

func sinc(x float64) float64 {
	if x == 0 {
		return 1
	}
	px := math.Pi * x
	return math.Sin(px) / px
}

func hann(n, length int) float64 {
	return 0.5 - 0.5*math.Cos(2*math.Pi*float64(n)/float64(length-1))
}

// push writes s into the delay line at both the current index and
// current index + twiceSps, so an 8-tap interpolation window starting
// anywhere within the next twiceSps samples stays contiguous.
func (g *gardnerState) push(s complex64) {
	idx := g.writeIdx % g.twiceSps
	g.delay[idx] = s
	g.delay[idx+g.twiceSps] = s
	g.writeIdx++
	if g.filled < 2*g.twiceSps {
		g.filled++
	}
}

// interpolate returns the MMSE-filtered sample at fractional offset
// mu within the delay line, reading mmseTapCount taps starting at base.
// ok is false if the read would exceed the delay line (wrap guard, per
// §4.1's failure semantics).
func (g *gardnerState) interpolate(base int, mu float64) (sample complex64, ok bool) {
	if base < 0 || base+mmseTapCount > len(g.delay) {
		return 0, false
	}
	phase := mu - math.Floor(mu)
	row := phase * float64(mmsePhases)
	lo := int(math.Floor(row))
	hi := lo + 1
	if hi > mmsePhases {
		hi = mmsePhases
	}
	frac := row - float64(lo)

	var acc complex64
	for tap := 0; tap < mmseTapCount; tap++ {
		coeff := g.mmseTable[lo][tap]*(1-frac) + g.mmseTable[hi][tap]*frac
		acc += complex64(complex(coeff, 0)) * g.delay[base+tap]
	}
	return acc, true
}

// step pushes one rotated sample and, if mu crosses 1.0, emits the
// interpolated symbol and its midpoint, updating (mu, omega) from the
// Gardner timing-error formula. It never rotates by an NCO phase — per
// §4.1, "no NCO rotation is applied inside Gardner".
func (g *gardnerState) step(rotated complex64) (sym complex64, emitted bool) {
	g.push(rotated)
	g.mu--
	if g.mu >= 1 {
		return 0, false
	}

	base := (g.writeIdx - 1 - mmseTapCount) % g.twiceSps
	if base < 0 {
		base += g.twiceSps
	}
	symFrac := g.mu
	midFrac := g.mu - 0.5*g.omega
	for midFrac < 0 {
		midFrac += g.omega
		base--
	}

	s, ok1 := g.interpolate(base, symFrac)
	mid, ok2 := g.interpolate(base, midFrac)
	if !ok1 || !ok2 {
		g.mu += g.omega
		return 0, false
	}

	if g.haveLastSym {
		gardnerErr := (complex128(g.lastSym) - complex128(s)) * complex128(mid)
		errVal := real(gardnerErr)
		g.omega = clip(g.omega+g.gOmega*errVal*cmplxAbs(s), g.omegaMid-g.omegaMid*g.omegaRel, g.omegaMid+g.omegaMid*g.omegaRel)
		g.mu += g.omega + g.gMu*errVal
	} else {
		g.mu += g.omega
	}

	g.lastSym = s
	g.haveLastSym = true
	return s, true
}

func cmplxAbs(c complex64) float64 {
	return math.Sqrt(absSq(c))
}
