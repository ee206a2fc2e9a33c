// SPDX-License-Identifier: AGPL-3.0-or-later
// dmr-p25-decoder - SDR digital-voice decoder for trunked P25/DMR systems

package p25mac

// TGMode is the talkgroup hold classification the admission algorithm
// assigns a grant candidate before deciding whether to act on it.
type TGMode string

const (
	ModeNormal TGMode = ""
	ModeA      TGMode = "A" // the held talkgroup: always admitted
	ModeB      TGMode = "B" // a different talkgroup while one is held: ignored
	ModeDE     TGMode = "DE" // encryption-locked-out: ignored, recorded once
)

// ServiceBits mirrors the low service-options bits a grant PDU carries.
type ServiceBits uint8

const (
	SvcEmergency ServiceBits = 1 << 0
	SvcEncrypted ServiceBits = 1 << 6
	SvcDuplex    ServiceBits = 1 << 5
)

// CallKind classifies a grant candidate for the trunk-policy gates.
type CallKind int

const (
	CallGroup CallKind = iota
	CallPrivate
	CallData
)

// Policy carries the trunk-tune gates the admission algorithm consults,
// mirroring config.Trunking's tunables without importing internal/config
// (kept import-free so it is trivially testable with literal values).
type Policy struct {
	TuneGroupCalls   bool
	TunePrivateCalls bool
	TuneDataCalls    bool
	TuneEncCalls     bool
}

// ChannelResolver resolves a 16-bit P25 channel number to a tunable
// frequency, returning 0 when it cannot (§6's "untrusted entries never
// resolve").
type ChannelResolver func(channel uint16) uint64

// SM is the subset of the trunking state machine the grant algorithm
// drives; internal/trunking.Machine implements it.
type SM interface {
	OnGroupGrant(channel uint16, svc ServiceBits, tg uint32, src uint32)
	OnIndivGrant(channel uint16, svc ServiceBits, dst uint32, src uint32)
	IsOnControlChannel() bool
	IsTuned() bool
}

// GroupTable records talkgroups the operator has encryption-locked-out or
// is holding, the state the admission algorithm consults for mode
// classification and the lockout-once invariant.
type GroupTable struct {
	tgHold uint32
	encLO  map[uint32]bool
}

// NewGroupTable builds an empty table with no TG hold active.
func NewGroupTable() *GroupTable {
	return &GroupTable{encLO: make(map[uint32]bool)}
}

// SetHold pins the SM to a single talkgroup (0 clears the hold).
func (g *GroupTable) SetHold(tg uint32) { g.tgHold = tg }

func (g *GroupTable) mode(target uint32) TGMode {
	switch {
	case g.tgHold != 0 && g.tgHold == target:
		return ModeA
	case g.tgHold != 0:
		return ModeB
	default:
		return ModeNormal
	}
}

// IsLockedOut reports whether target has already been recorded as
// encryption-locked-out.
func (g *GroupTable) IsLockedOut(target uint32) bool { return g.encLO[target] }

// LockOut records target as encryption-locked-out, a no-op if already set.
func (g *GroupTable) LockOut(target uint32) { g.encLO[target] = true }

// Candidate is one (channel, target, service-bits) grant entry within a
// PDU, the admission algorithm's unit of work.
type Candidate struct {
	Channel  uint16
	Target   uint32
	Source   uint32
	Svc      ServiceBits
	Kind     CallKind
}

// LockoutEvent is emitted exactly once per newly-locked-out target.
type LockoutEvent struct {
	Target    uint32
	Algorithm uint8
}

// Admit runs the grant admission algorithm (§4.4) over candidates in
// order, stopping at the first one that is acted upon (tuned, displayed,
// or locked out), matching the source's for/break/continue structure.
func Admit(candidates []Candidate, resolve ChannelResolver, policy Policy, groups *GroupTable, sm SM) (lockout *LockoutEvent, vcFreq uint64, acted bool) {
	for _, c := range candidates {
		freq := resolve(c.Channel)
		if freq == 0 {
			continue
		}

		mode := groups.mode(c.Target)
		if groups.IsLockedOut(c.Target) {
			mode = ModeDE
		}

		switch c.Kind {
		case CallGroup:
			if !policy.TuneGroupCalls {
				return nil, 0, false
			}
		case CallPrivate:
			if !policy.TunePrivateCalls {
				return nil, 0, false
			}
		case CallData:
			if !policy.TuneDataCalls {
				return nil, 0, false
			}
		}

		if c.Svc&SvcEncrypted != 0 && !policy.TuneEncCalls {
			wasLocked := groups.IsLockedOut(c.Target)
			groups.LockOut(c.Target)
			if !wasLocked {
				return &LockoutEvent{Target: c.Target, Algorithm: uint8(c.Svc)}, 0, true
			}
			return nil, 0, true
		}

		if mode == ModeDE || mode == ModeB {
			continue
		}

		if sm.IsOnControlChannel() && !sm.IsTuned() {
			switch c.Kind {
			case CallGroup:
				sm.OnGroupGrant(c.Channel, c.Svc, c.Target, c.Source)
			default:
				sm.OnIndivGrant(c.Channel, c.Svc, c.Target, c.Source)
			}
		} else {
			vcFreq = freq
		}
		acted = true
		break
	}
	return nil, vcFreq, acted
}
