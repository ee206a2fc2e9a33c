// SPDX-License-Identifier: AGPL-3.0-or-later
// dmr-p25-decoder - SDR digital-voice decoder for trunked P25/DMR systems

package framer

import "github.com/arancormonk/dsd-neo-sub008/internal/fec/crc"

const maxMBCContinuations = 4

// MBCAssembler reassembles a multi-block-control PDU: one header block plus
// up to 4 continuation blocks, the last carrying a stop flag in byte 0 bit
// 7, the whole span CRC-16 checked before being handed to the CSBK
// decoder, per §4.3's "MBC variant".
type MBCAssembler struct {
	blocks [][]byte
	done   bool
}

// NewMBC starts a fresh MBC assembly with the header block already parsed
// out of the caller's dispatch pass.
func NewMBC() *MBCAssembler {
	return &MBCAssembler{blocks: make([][]byte, 0, 1+maxMBCContinuations)}
}

// AddContinuation appends one continuation block. It returns true once the
// last-block flag (byte 0, bit 7) is set or the block cap is reached.
func (m *MBCAssembler) AddContinuation(block []byte) bool {
	if m.done || len(m.blocks) >= maxMBCContinuations {
		return m.done
	}
	m.blocks = append(m.blocks, block)
	if len(block) > 0 && block[0]&0x80 != 0 {
		m.done = true
	}
	if len(m.blocks) >= maxMBCContinuations {
		m.done = true
	}
	return m.done
}

// Verify concatenates the continuation blocks (header excluded) and checks
// the CRC-16 covering them, returning the info payload with the trailing
// CRC bytes stripped plus whether the protect-flag-gated CSBK dispatch may
// proceed (protectFlag==0, per §4.3).
func (m *MBCAssembler) Verify(protectFlag uint8) (payload []byte, crcOK bool, dispatchToCSBK bool) {
	var span []byte
	for _, b := range m.blocks {
		span = append(span, b...)
	}
	if len(span) < 2 {
		return span, false, false
	}
	extracted := uint16(span[len(span)-2])<<8 | uint16(span[len(span)-1])
	info := span[:len(span)-2]
	computed := crc.CRC16(info, len(info)*8)
	crcOK = computed == extracted
	dispatchToCSBK = crcOK && protectFlag == 0
	return info, crcOK, dispatchToCSBK
}
