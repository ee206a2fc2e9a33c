// SPDX-License-Identifier: AGPL-3.0-or-later
// dmr-p25-decoder - SDR digital-voice decoder for trunked P25/DMR systems

package trunking_test

import (
	"context"
	"testing"
	"time"

	"github.com/arancormonk/dsd-neo-sub008/internal/bandplan"
	"github.com/arancormonk/dsd-neo-sub008/internal/config"
	"github.com/arancormonk/dsd-neo-sub008/internal/eventbus"
	"github.com/arancormonk/dsd-neo-sub008/internal/protocol/p25mac"
	"github.com/arancormonk/dsd-neo-sub008/internal/trunking"
	"github.com/arancormonk/dsd-neo-sub008/internal/tuner"
	"github.com/stretchr/testify/require"
)

func newTestMachine(t *testing.T) (*trunking.Machine, *[]uint64) {
	t.Helper()
	cfg := &config.Config{}
	cfg.Trunking.TuneGroupCalls = true
	cfg.Trunking.TunePrivateCalls = true
	cfg.Trunking.HangTimeSeconds = 1.0

	bus, err := eventbus.New(context.Background(), &config.Config{})
	require.NoError(t, err)

	var tuned []uint64
	tn := tuner.Func(func(_ context.Context, freqHz uint64) error {
		tuned = append(tuned, freqHz)
		return nil
	})

	site := trunking.SiteIdentity{WACN: 0xBEE00, SysID: 0x1A2, RFSS: 1, Site: 1}
	m := trunking.New(cfg, bus, tn, site, nil)

	e := bandplan.Entry{
		WACN: site.WACN, SysID: site.SysID, ChannelID: 1,
		BaseFrequencyHz: 851006250, ChannelSpacingHz: 12500, TxOffsetHz: -45000000,
	}
	m.Iden.ObserveIdenUp(1, e, site)

	return m, &tuned
}

func TestOnGroupGrantTunesAndPublishes(t *testing.T) {
	t.Parallel()
	m, tuned := newTestMachine(t)

	cand := []p25mac.Candidate{{Channel: 0x1042, Target: 100, Source: 200, Kind: p25mac.CallGroup}}
	m.HandleGrant(cand)

	require.True(t, m.IsTuned())
	require.False(t, m.IsOnControlChannel())
	require.Len(t, *tuned, 1)
}

func TestOnReleaseReturnsToControlChannel(t *testing.T) {
	t.Parallel()
	m, _ := newTestMachine(t)

	cand := []p25mac.Candidate{{Channel: 0x1042, Target: 100, Source: 200, Kind: p25mac.CallGroup}}
	m.HandleGrant(cand)
	require.True(t, m.IsTuned())

	m.OnRelease("mac_release")
	require.False(t, m.IsTuned())
	require.True(t, m.IsOnControlChannel())
}

func TestTickReleasesAfterHangTimer(t *testing.T) {
	t.Parallel()
	m, _ := newTestMachine(t)

	cand := []p25mac.Candidate{{Channel: 0x1042, Target: 100, Source: 200, Kind: p25mac.CallGroup}}
	m.HandleGrant(cand)
	require.True(t, m.IsTuned())

	m.Tick(time.Now().Add(2 * time.Second))
	require.False(t, m.IsTuned())
}

func TestSnapshotReflectsTunedState(t *testing.T) {
	t.Parallel()
	m, _ := newTestMachine(t)

	snap, ok := m.Snapshot().(trunking.Snapshot)
	require.True(t, ok)
	require.False(t, snap.Tuned)
	require.True(t, snap.OnControlChannel)
}

func TestNeighborUpdateFeedsCCCandidates(t *testing.T) {
	t.Parallel()
	m, _ := newTestMachine(t)

	m.OnNeighborUpdate([]uint64{851006250, 851018750})
	freq, ok := m.NextCCCandidate()
	require.True(t, ok)
	require.Equal(t, uint64(851006250), freq)
}
