// SPDX-License-Identifier: AGPL-3.0-or-later
// dmr-p25-decoder - SDR digital-voice decoder for trunked P25/DMR systems

package persistence_test

import (
	"path/filepath"
	"testing"

	"github.com/arancormonk/dsd-neo-sub008/internal/config"
	"github.com/arancormonk/dsd-neo-sub008/internal/persistence"
	"github.com/stretchr/testify/require"
)

func newTestConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := &config.Config{}
	cfg.Persistence.DSN = filepath.Join(t.TempDir(), "test.sqlite3")
	return cfg
}

func TestOpenCreatesAndSeedsDatabase(t *testing.T) {
	t.Parallel()
	cfg := newTestConfig(t)

	store, err := persistence.Open(cfg)
	require.NoError(t, err)
	require.NotNil(t, store)
	defer func() { require.NoError(t, store.Close()) }()
}

func TestOpenTwiceFindsExistingSettingsRow(t *testing.T) {
	t.Parallel()
	cfg := newTestConfig(t)

	store1, err := persistence.Open(cfg)
	require.NoError(t, err)
	require.NoError(t, store1.Close())

	store2, err := persistence.Open(cfg)
	require.NoError(t, err)
	defer func() { require.NoError(t, store2.Close()) }()
}

func TestSaveAndLoadIdenRoundTrips(t *testing.T) {
	t.Parallel()
	cfg := newTestConfig(t)
	store, err := persistence.Open(cfg)
	require.NoError(t, err)
	defer func() { require.NoError(t, store.Close()) }()

	rec := persistence.IdenRecord{
		WACN: 0xBEE00, SysID: 0x1A2, ChannelID: 1,
		BaseFrequencyHz: 851006250, ChannelSpacingHz: 12500, Trust: 2,
	}
	require.NoError(t, store.SaveIden(rec))

	rows, err := store.LoadIdens()
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, rec.BaseFrequencyHz, rows[0].BaseFrequencyHz)
}

func TestSaveAndLoadAffiliationRoundTrips(t *testing.T) {
	t.Parallel()
	cfg := newTestConfig(t)
	store, err := persistence.Open(cfg)
	require.NoError(t, err)
	defer func() { require.NoError(t, store.Close()) }()

	require.NoError(t, store.SaveAffiliation(persistence.AffiliationRecord{RID: 100}))

	rows, err := store.LoadAffiliations()
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, uint32(100), rows[0].RID)
}

func TestSaveAndLoadPatchRoundTrips(t *testing.T) {
	t.Parallel()
	cfg := newTestConfig(t)
	store, err := persistence.Open(cfg)
	require.NoError(t, err)
	defer func() { require.NoError(t, store.Close()) }()

	require.NoError(t, store.SavePatch(persistence.PatchRecord{SuperGroupID: 5000, Active: true}))

	rows, err := store.LoadPatches()
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.True(t, rows[0].Active)
}
