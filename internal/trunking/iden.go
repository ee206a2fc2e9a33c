// SPDX-License-Identifier: AGPL-3.0-or-later
// dmr-p25-decoder - SDR digital-voice decoder for trunked P25/DMR systems

// Package trunking implements the P25 trunking state machine (spec §4.4):
// the control/voice-channel tuner, the IDEN/neighbor/patch/affiliation
// tables, and the grant/release/hang policy the protocol router drives.
package trunking

import (
	"sync"

	"github.com/arancormonk/dsd-neo-sub008/internal/bandplan"
)

// TrustLevel is an IDEN table entry's provenance, per spec §3's "a channel
// number resolves to a frequency only via a trusted entry whose provenance
// matches the current site, or via an explicitly trusted hard-set".
type TrustLevel int

const (
	TrustUntrusted TrustLevel = iota
	TrustObserved
	TrustConfirmed
)

// SiteIdentity is the (wacn, sysid, rfss, site) tuple an IDEN_UP's
// provenance is checked against.
type SiteIdentity struct {
	WACN  uint32
	SysID uint16
	RFSS  uint8
	Site  uint8
}

// IdenEntry is one 4-bit-channel-identifier row, wrapping the same
// frequency-resolution arithmetic as the built-in hard-set.
type IdenEntry struct {
	bandplan.Entry
	Trust  TrustLevel
	Source SiteIdentity
}

// IdenTable is the P25 trunking SM's live identifier-update table, falling
// back to the configured hard-set when a channel identifier has never been
// observed live.
type IdenTable struct {
	mu      sync.RWMutex
	site    SiteIdentity
	entries map[uint8]IdenEntry
	hardset *bandplan.Table[bandplan.Entry]
}

// NewIdenTable builds an empty live table backed by hardset for entries
// never observed on the current control channel.
func NewIdenTable(site SiteIdentity, hardset *bandplan.Table[bandplan.Entry]) *IdenTable {
	return &IdenTable{
		site:    site,
		entries: make(map[uint8]IdenEntry),
		hardset: hardset,
	}
}

// SetSite updates the site identity new IDEN_UP PDUs are trust-checked
// against, e.g. once the control channel's RFSS/NETWORK/ADJ status is
// observed.
func (t *IdenTable) SetSite(site SiteIdentity) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.site = site
}

// ObserveIdenUp records or updates a channel identifier's entry. An update
// whose provenance does not match the current site identity is ignored
// rather than overwriting a previously-trusted entry, per §7's "on IDEN
// mismatch the core ignores the update".
func (t *IdenTable) ObserveIdenUp(channelID uint8, e bandplan.Entry, src SiteIdentity) {
	t.mu.Lock()
	defer t.mu.Unlock()

	trust := TrustUntrusted
	if src == t.site {
		trust = TrustConfirmed
	}

	if existing, ok := t.entries[channelID]; ok && existing.Trust == TrustConfirmed && trust != TrustConfirmed {
		return
	}
	t.entries[channelID] = IdenEntry{Entry: e, Trust: trust, Source: src}
}

// ResolveChannel applies the §6 channel-to-frequency arithmetic: channel's
// top 4 bits select the identifier, the low 12 bits are chan_num.
// Untrusted live entries fall back to the hard-set; an entry found nowhere
// resolves to 0 (§8 invariant 3's contrapositive, and §7's
// ChannelUnmappable path).
func (t *IdenTable) ResolveChannel(channel uint16) uint64 {
	t.mu.RLock()
	defer t.mu.RUnlock()

	channelID := uint8(channel>>12) & 0xF
	chanNum := channel & 0x0FFF

	if e, ok := t.entries[channelID]; ok && e.Trust != TrustUntrusted {
		return e.ResolveFrequency(chanNum)
	}
	if t.hardset == nil {
		return 0
	}
	if e, ok := t.hardset.Get(bandplan.Key(t.site.WACN, t.site.SysID, channelID)); ok {
		return e.ResolveFrequency(chanNum)
	}
	return 0
}

// ResolveUplink applies the §6 uplink arithmetic: freq_up = freq_down +
// transmit_offset, for implementations that need to tune the subscriber
// uplink half of a duplex channel.
func (t *IdenTable) ResolveUplink(channel uint16) uint64 {
	down := t.ResolveChannel(channel)
	if down == 0 {
		return 0
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	channelID := uint8(channel>>12) & 0xF
	if e, ok := t.entries[channelID]; ok && e.Trust != TrustUntrusted {
		return uint64(int64(down) + e.TxOffsetHz)
	}
	if t.hardset != nil {
		if e, ok := t.hardset.Get(bandplan.Key(t.site.WACN, t.site.SysID, channelID)); ok {
			return uint64(int64(down) + e.TxOffsetHz)
		}
	}
	return down
}

// Len reports how many channel identifiers have been live-observed.
func (t *IdenTable) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.entries)
}

// Restore installs e directly, bypassing the provenance-mismatch guard
// ObserveIdenUp applies to live PDUs — used only to rehydrate a
// previously-persisted entry at startup, which is trusted by construction.
func (t *IdenTable) Restore(channelID uint8, e IdenEntry) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries[channelID] = e
}

// Range calls fn once per live-observed channel identifier, for callers
// that need to export the table (e.g. internal/persistence's flush job).
func (t *IdenTable) Range(fn func(channelID uint8, e IdenEntry)) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	for id, e := range t.entries {
		fn(id, e)
	}
}
