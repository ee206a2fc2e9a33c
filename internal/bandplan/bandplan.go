// SPDX-License-Identifier: AGPL-3.0-or-later
// dmr-p25-decoder - SDR digital-voice decoder for trunked P25/DMR systems

package bandplan

import (
	// embed the default, xz-compressed band-plan dataset into the binary.
	_ "embed"
	"encoding/json"

	"github.com/puzpuzpuz/xsync/v4"
)

//go:embed default_table.json.xz
var defaultTableXZ []byte

const builtInDate = "2026-01-01T00:00:00Z"

// Entry is one explicitly-trusted IDEN_UP channel-to-frequency mapping,
// keyed by (WACN, SysID, channel identifier). Callers use these as the
// "explicitly trusted hard-set" the spec allows in place of a live,
// site-matched IDEN_UP observation.
type Entry struct {
	WACN             uint32 `json:"wacn"`
	SysID            uint16 `json:"sysid"`
	ChannelID        uint8  `json:"channel_id"`
	BandwidthClass   string `json:"bandwidth_class"`
	BaseFrequencyHz  uint64 `json:"base_freq_hz"`
	ChannelSpacingHz uint32 `json:"channel_spacing_hz"`
	TxOffsetHz       int64  `json:"tx_offset_hz"`
	TDMA             bool   `json:"tdma"`
}

// Key packs a (wacn, sysid, channel identifier) triple into the composite
// key Table uses, keeping the 4-bit P25 channel identifier in the low byte.
func Key(wacn uint32, sysid uint16, channelID uint8) uint64 {
	return uint64(wacn)<<24 | uint64(sysid)<<8 | uint64(channelID)
}

// ResolveFrequency applies the IDEN_UP arithmetic (base + channel·spacing)
// to a channel number within the identifier's band, per spec §6's worked
// example: freq = base + (channel & 0xFFF)·spacing.
func (e Entry) ResolveFrequency(channel uint16) uint64 {
	offset := uint64(channel&0x0FFF) * uint64(e.ChannelSpacingHz)
	return e.BaseFrequencyHz + offset
}

func decodeEntries(dec *json.Decoder, m *xsync.Map[uint64, Entry]) (int, error) {
	var doc struct {
		Entries []Entry `json:"entries"`
	}
	if err := dec.Decode(&doc); err != nil {
		return 0, ErrDecodingDB
	}
	count := 0
	for _, e := range doc.Entries {
		m.Store(Key(e.WACN, e.SysID, e.ChannelID), e)
		count++
	}
	return count, nil
}

// Default returns the decoder's built-in hard-set of trusted IDEN_UP
// entries, lazily unpacked from the embedded xz archive on first use.
func Default() *Table[Entry] {
	return defaultTable
}

var defaultTable = New(Config[Entry]{
	CompressedData: defaultTableXZ,
	BuiltInDateStr: builtInDate,
	Presize:        32,
	Decode:         decodeEntries,
	EntityName:     "iden-hard-set",
})
