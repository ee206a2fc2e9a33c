// SPDX-License-Identifier: AGPL-3.0-or-later
// dmr-p25-decoder - SDR digital-voice decoder for trunked P25/DMR systems

package trunking

import (
	"context"
	"sync"
	"time"

	"github.com/arancormonk/dsd-neo-sub008/internal/bandplan"
	"github.com/arancormonk/dsd-neo-sub008/internal/config"
	"github.com/arancormonk/dsd-neo-sub008/internal/eventbus"
	"github.com/arancormonk/dsd-neo-sub008/internal/events"
	"github.com/arancormonk/dsd-neo-sub008/internal/persistence"
	"github.com/arancormonk/dsd-neo-sub008/internal/protocol/p25mac"
	"github.com/arancormonk/dsd-neo-sub008/internal/tuner"
)

// eventsTopic mirrors eventapi's subscriber topic name; the trunking SM is
// the one thing in this repo that originates events onto the bus.
const eventsTopic = "events"

// tuneTimeout bounds how long the SM waits for a tuner.Tuner.Tune call,
// matching the O(10ms) budget spec §5 grants the tuner.
const tuneTimeout = 50 * time.Millisecond

// Snapshot is the JSON-rendered view eventapi's /snapshot endpoint exposes.
type Snapshot struct {
	OnControlChannel bool      `json:"on_control_channel"`
	Tuned            bool      `json:"tuned"`
	CurrentFreqHz    uint64    `json:"current_freq_hz,omitempty"`
	CurrentTG        uint32    `json:"current_tg,omitempty"`
	IdenCount        int       `json:"iden_count"`
	CandidateCount   int       `json:"candidate_count"`
	AffiliationCount int       `json:"affiliation_count"`
}

// Machine is the P25 trunking state machine (spec §4.4): it owns the tuned
// state, drives grant admission and release, and renders the snapshot the
// event API serves. It implements eventapi.SnapshotProvider (without
// importing eventapi) and p25mac.SM; neither eventapi nor p25mac imports
// this package.
type Machine struct {
	cfg   *config.Config
	bus   eventbus.Bus
	tuner tuner.Tuner

	Iden         *IdenTable
	Candidates   *CandidateList
	Patches      *PatchTable
	Affiliations *AffiliationTable
	Aliases      *AliasCache
	Groups       *p25mac.GroupTable

	mu               sync.Mutex
	onControlChannel bool
	tuned            bool
	currentFreq      uint64
	currentTG        uint32
	lastActive       [2]time.Time
	audioAllowed     [2]bool
}

// New builds a trunking state machine that starts parked on the control
// channel, backed by t for retunes and hardset as the IDEN fallback table.
func New(cfg *config.Config, bus eventbus.Bus, t tuner.Tuner, site SiteIdentity, hardset *bandplan.Table[bandplan.Entry]) *Machine {
	m := &Machine{
		cfg:              cfg,
		bus:              bus,
		tuner:            t,
		Iden:             NewIdenTable(site, hardset),
		Candidates:       NewCandidateList(),
		Patches:          NewPatchTable(),
		Affiliations:     NewAffiliationTable(),
		Aliases:          NewAliasCache(),
		Groups:           p25mac.NewGroupTable(),
		onControlChannel: true,
	}
	m.Groups.SetHold(cfg.Trunking.TGHold)
	return m
}

// policy renders the configured trunk policy into p25mac's import-free type.
func (m *Machine) policy() p25mac.Policy {
	return p25mac.Policy{
		TuneGroupCalls:   m.cfg.Trunking.TuneGroupCalls,
		TunePrivateCalls: m.cfg.Trunking.TunePrivateCalls,
		TuneDataCalls:    m.cfg.Trunking.TuneDataCalls,
		TuneEncCalls:     m.cfg.Trunking.TuneEncCalls,
	}
}

// Snapshot implements eventapi.SnapshotProvider.
func (m *Machine) Snapshot() any {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Snapshot{
		OnControlChannel: m.onControlChannel,
		Tuned:            m.tuned,
		CurrentFreqHz:    m.currentFreq,
		CurrentTG:        m.currentTG,
		IdenCount:        m.Iden.Len(),
		CandidateCount:   m.Candidates.Len(),
		AffiliationCount: m.Affiliations.Len(),
	}
}

// IsOnControlChannel implements p25mac.SM.
func (m *Machine) IsOnControlChannel() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.onControlChannel
}

// IsTuned implements p25mac.SM.
func (m *Machine) IsTuned() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tuned
}

// tune retunes to freqHz and marks the SM as parked on a voice channel,
// publishing failures as a CRC-failure-shaped diagnostic event would be the
// wrong Kind, so a retune error simply keeps the SM on the control channel.
func (m *Machine) tune(freqHz uint64) bool {
	ctx, cancel := context.WithTimeout(context.Background(), tuneTimeout)
	defer cancel()
	if err := m.tuner.Tune(ctx, freqHz); err != nil {
		return false
	}
	m.mu.Lock()
	m.onControlChannel = false
	m.tuned = true
	m.currentFreq = freqHz
	m.mu.Unlock()
	return true
}

// OnGroupGrant implements p25mac.SM: Admit calls it when the SM is on the
// control channel and not yet tuned, and it tunes to the group voice
// channel.
func (m *Machine) OnGroupGrant(channel uint16, svc p25mac.ServiceBits, tg uint32, src uint32) {
	freq := m.Iden.ResolveChannel(channel)
	if freq == 0 || !m.tune(freq) {
		return
	}
	m.mu.Lock()
	m.currentTG = tg
	m.lastActive[0] = time.Now()
	m.audioAllowed[0] = true
	m.mu.Unlock()
	m.publish(events.GroupGrant(tg, src, channel, freq, 0, uint8(svc)))
}

// OnIndivGrant implements p25mac.SM for private/data grants.
func (m *Machine) OnIndivGrant(channel uint16, svc p25mac.ServiceBits, dst uint32, src uint32) {
	freq := m.Iden.ResolveChannel(channel)
	if freq == 0 || !m.tune(freq) {
		return
	}
	m.mu.Lock()
	m.currentTG = dst
	m.lastActive[0] = time.Now()
	m.audioAllowed[0] = true
	m.mu.Unlock()
	m.publish(events.GroupGrant(dst, src, channel, freq, 0, uint8(svc)))
}

// HandleGrant runs the §4.4 grant admission algorithm over candidates
// parsed from a single MAC VPDU, tuning, displaying or locking out as
// Admit decides, and publishing the resulting event.
func (m *Machine) HandleGrant(candidates []p25mac.Candidate) {
	lockout, vcFreq, acted := p25mac.Admit(candidates, m.Iden.ResolveChannel, m.policy(), m.Groups, m)
	if !acted {
		return
	}
	if lockout != nil {
		m.publish(events.EncryptionLocked(lockout.Target, lockout.Algorithm))
		return
	}
	if vcFreq != 0 {
		// Display-only candidate: SM was not on the control channel to act,
		// or the candidate was a re-grant resolved for UI display.
		return
	}
}

// OnRelease marks the SM as back on the control channel, per §4.4's
// on_release: clears the tuned/voice-channel state and both audio gates
// and publishes a release event. It does not call the tuner.
func (m *Machine) OnRelease(reason string) {
	m.mu.Lock()
	m.onControlChannel = true
	m.tuned = false
	m.currentFreq = 0
	m.currentTG = 0
	m.audioAllowed = [2]bool{}
	m.mu.Unlock()
	m.publish(events.Release(reason))
}

// OnNeighborUpdate merges freqs into the candidate list, per §4.4's
// on_neighbor_update.
func (m *Machine) OnNeighborUpdate(freqs []uint64) {
	m.Candidates.Merge(freqs)
}

// NextCCCandidate advances the control-channel hunt, per §4.4's
// next_cc_candidate.
func (m *Machine) NextCCCandidate() (uint64, bool) {
	return m.Candidates.Next()
}

// Tick runs the hang-timer-driven auto-release, per §4.4's hang-timer
// described alongside on_release: once the SM is tuned and every slot with
// recorded activity has been idle for longer than the configured hang
// time, it calls OnRelease.
func (m *Machine) Tick(now time.Time) {
	hang := time.Duration(m.cfg.Trunking.HangTimeSeconds * float64(time.Second))
	m.mu.Lock()
	tuned := m.tuned
	hangExpired := false
	for _, last := range m.lastActive {
		if last.IsZero() {
			continue
		}
		if now.Sub(last) <= hang {
			hangExpired = false
			break
		}
		hangExpired = true
	}
	m.mu.Unlock()

	if tuned && hangExpired {
		m.OnRelease("hang_timer")
	}
}

// MarkActive refreshes slot's last-activity timestamp, keeping the hang
// timer from firing while traffic is still flowing.
func (m *Machine) MarkActive(slot uint8) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastActive[slot&1] = time.Now()
}

// AudioGateOpen reports whether slot's currently-classified traffic should
// be handed to the audio sink, applying p25mac's per-slot gating formula.
func (m *Machine) AudioGateOpen(slot uint8, class p25mac.Classification, alg p25mac.Algorithm, keyPresent bool) bool {
	open := p25mac.AudioGateOpen(class, alg, keyPresent)
	m.mu.Lock()
	m.audioAllowed[slot&1] = open
	m.mu.Unlock()
	return open
}

// FlushTo exports the IDEN, patch and affiliation tables into store,
// the callback internal/persistence.Scheduler's recurring job drives.
func (m *Machine) FlushTo(store *persistence.Store) error {
	var firstErr error
	record := func(err error) {
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}

	m.Iden.Range(func(channelID uint8, e IdenEntry) {
		record(store.SaveIden(persistence.IdenRecord{
			WACN:             e.Source.WACN,
			SysID:            e.Source.SysID,
			ChannelID:        channelID,
			BandwidthClass:   e.BandwidthClass,
			BaseFrequencyHz:  e.BaseFrequencyHz,
			ChannelSpacingHz: e.ChannelSpacingHz,
			TxOffsetHz:       e.TxOffsetHz,
			TDMA:             e.TDMA,
			Trust:            int(e.Trust),
		}))
	})
	m.Patches.Range(func(sg uint32, e PatchEntry) {
		record(store.SavePatch(persistence.PatchRecord{
			SuperGroupID: sg,
			Kind:         int(e.Kind),
			Active:       e.Active,
			KeyID:        e.KeyID,
			AlgID:        e.AlgID,
			SSN:          e.SSN,
		}))
	})
	m.Affiliations.Range(func(rid uint32) {
		record(store.SaveAffiliation(persistence.AffiliationRecord{RID: rid}))
	})
	return firstErr
}

// LoadFrom hydrates the IDEN and affiliation tables from store, for
// restart recovery of previously-observed trunking state.
func (m *Machine) LoadFrom(store *persistence.Store) error {
	idens, err := store.LoadIdens()
	if err != nil {
		return err
	}
	for _, r := range idens {
		m.Iden.Restore(r.ChannelID, IdenEntry{
			Entry: bandplan.Entry{
				WACN: r.WACN, SysID: r.SysID, ChannelID: r.ChannelID,
				BandwidthClass: r.BandwidthClass, BaseFrequencyHz: r.BaseFrequencyHz,
				ChannelSpacingHz: r.ChannelSpacingHz, TxOffsetHz: r.TxOffsetHz, TDMA: r.TDMA,
			},
			Trust:  TrustLevel(r.Trust),
			Source: SiteIdentity{WACN: r.WACN, SysID: r.SysID},
		})
	}

	affiliations, err := store.LoadAffiliations()
	if err != nil {
		return err
	}
	for _, r := range affiliations {
		m.Affiliations.Register(r.RID)
	}
	return nil
}

// ReportCRCFailure publishes a CRC-failure diagnostic event for kind (e.g.
// "BurstCSBK"), the one event §6's "Exit/diagnostic outputs" names for
// rejected frames that the framer/FEC stage — not the trunking SM itself —
// detects.
func (m *Machine) ReportCRCFailure(kind string) {
	m.publish(events.CRCFailure(kind))
}

func (m *Machine) publish(e events.Event) {
	if m.bus == nil {
		return
	}
	data, err := events.Render(e)
	if err != nil {
		return
	}
	_ = m.bus.Publish(eventsTopic, data)
}
