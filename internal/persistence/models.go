// SPDX-License-Identifier: AGPL-3.0-or-later
// dmr-p25-decoder - SDR digital-voice decoder for trunked P25/DMR systems

package persistence

// Settings is the single-row table recording whether the seeder has run,
// the same AppSettings shape the teacher's db package keeps.
type Settings struct {
	ID        uint `gorm:"primaryKey"`
	HasSeeded bool
}

// IdenRecord persists one trunking.IdenEntry row, keyed by the same
// (wacn, sysid, channel_id) triple internal/bandplan.Key packs.
type IdenRecord struct {
	WACN             uint32 `gorm:"primaryKey"`
	SysID            uint16 `gorm:"primaryKey"`
	ChannelID        uint8  `gorm:"primaryKey"`
	BandwidthClass   string
	BaseFrequencyHz  uint64
	ChannelSpacingHz uint32
	TxOffsetHz       int64
	TDMA             bool
	Trust            int
}

// PatchRecord persists one trunking.PatchEntry super-group row.
type PatchRecord struct {
	SuperGroupID uint32 `gorm:"primaryKey"`
	Kind         int
	Active       bool
	KeyID        uint16
	AlgID        uint8
	SSN          uint8
}

// AffiliationRecord persists one currently-registered RID.
type AffiliationRecord struct {
	RID uint32 `gorm:"primaryKey"`
}
