// SPDX-License-Identifier: AGPL-3.0-or-later
// dmr-p25-decoder - SDR digital-voice decoder for trunked P25/DMR systems

package trunking

import "sync"

// CandidateList is the ordered, deduplicated set of control-channel LO
// frequencies the SM hunts across, with a round-robin cursor per §4.4's
// `next_cc_candidate`.
type CandidateList struct {
	mu     sync.Mutex
	freqs  []uint64
	seen   map[uint64]bool
	cursor int
}

// NewCandidateList builds an empty candidate list.
func NewCandidateList() *CandidateList {
	return &CandidateList{seen: make(map[uint64]bool)}
}

// Merge appends freqs not already present, preserving first-seen order,
// per §4.4's `on_neighbor_update` ("merges into candidate list, dedupe,
// preserve order").
func (c *CandidateList) Merge(freqs []uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, f := range freqs {
		if f == 0 || c.seen[f] {
			continue
		}
		c.seen[f] = true
		c.freqs = append(c.freqs, f)
	}
}

// Next advances the round-robin cursor and returns the next candidate.
// Returns false once every candidate has been tried in this pass.
func (c *CandidateList) Next() (freq uint64, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cursor >= len(c.freqs) {
		c.cursor = 0
		return 0, false
	}
	freq = c.freqs[c.cursor]
	c.cursor++
	return freq, true
}

// Reset rewinds the cursor to the start of the list without discarding it.
func (c *CandidateList) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cursor = 0
}

// Len reports the number of distinct candidates merged so far.
func (c *CandidateList) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.freqs)
}
