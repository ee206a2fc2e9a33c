// SPDX-License-Identifier: AGPL-3.0-or-later
// dmr-p25-decoder - SDR digital-voice decoder for trunked P25/DMR systems

// Package framer classifies recovered info frames by burst type, runs the
// matching FEC path, verifies/masks the CRC, and either hands the payload
// straight to a protocol handler or feeds it into the multi-block data-PDU
// assembler (spec §4.3). The dispatch table below is the single source of
// truth for each burst type's FEC path, CRC width/mask and payload length;
// internal/fec/crc's raw CRC functions stay mask-free so the protocol-
// specific XOR values live here, next to the rest of a burst's shape.
package framer

// FECPath identifies which FEC kernel a burst type runs through.
type FECPath int

const (
	FECNone FECPath = iota
	FECBPTC196
	FECBPTC196RS
	FECViterbiHalf
	FECViterbiThreeQuarter
	FECBPTC128x77
)

// BurstType enumerates the DMR/P25 burst classifications spec §3 lists.
type BurstType int

const (
	BurstPI BurstType = iota
	BurstVLC
	BurstTLC
	BurstCSBK
	BurstMBCHeader
	BurstMBCContinuation
	BurstDataHeader
	BurstRate1_2Unconfirmed
	BurstRate1_2Confirmed
	BurstRate3_4Unconfirmed
	BurstRate3_4Confirmed
	BurstRate1Unconfirmed
	BurstRate1Confirmed
	BurstUSBD
	BurstEMB
	BurstIdle
)

// Shape is one row of the burst-type dispatch table.
type Shape struct {
	FEC           FECPath
	CRCBits       int
	CRCMask       uint32
	PayloadBytes  int
	PDUStart      int // bit offset into the payload where confirmed-data info begins
	ReportOnly    bool // CRC not actually checked against a mask, reported OK (R1/2 unc)
	CheckAtAssembly bool // CRC verified only once the assembler has the full PDU (MBC-Cont)
}

// dispatch is the burst-type table spec §4.3 names, keyed by BurstType.
var dispatch = map[BurstType]Shape{
	BurstPI:                 {FEC: FECBPTC196, CRCBits: 16, CRCMask: 0x6969, PayloadBytes: 12},
	BurstVLC:                {FEC: FECBPTC196RS, CRCBits: 24, CRCMask: 0x969696, PayloadBytes: 12},
	BurstTLC:                {FEC: FECBPTC196RS, CRCBits: 24, CRCMask: 0x999999, PayloadBytes: 12},
	BurstCSBK:               {FEC: FECBPTC196, CRCBits: 16, CRCMask: 0xA5A5, PayloadBytes: 12},
	BurstMBCHeader:          {FEC: FECBPTC196, CRCBits: 16, CRCMask: 0xA5A5, PayloadBytes: 12},
	BurstMBCContinuation:    {FEC: FECBPTC196, CheckAtAssembly: true, PayloadBytes: 12},
	BurstDataHeader:         {FEC: FECBPTC196, CRCBits: 16, CRCMask: 0xCCCC, PayloadBytes: 12},
	BurstRate1_2Unconfirmed: {FEC: FECBPTC196, ReportOnly: true, PayloadBytes: 12},
	BurstRate1_2Confirmed:   {FEC: FECBPTC196, CRCBits: 9, CRCMask: 0x0F0, PayloadBytes: 10, PDUStart: 2},
	BurstRate3_4Unconfirmed: {FEC: FECViterbiThreeQuarter, PayloadBytes: 18},
	BurstRate3_4Confirmed:   {FEC: FECViterbiThreeQuarter, CRCBits: 9, CRCMask: 0x1FF, PayloadBytes: 16, PDUStart: 2},
	BurstRate1Unconfirmed:   {FEC: FECNone, PayloadBytes: 24},
	BurstRate1Confirmed:     {FEC: FECNone, CRCBits: 9, CRCMask: 0x10F, PayloadBytes: 22, PDUStart: 2},
	BurstUSBD:               {FEC: FECBPTC196, CRCBits: 16, CRCMask: 0x3333, PayloadBytes: 12},
	BurstEMB:                {FEC: FECBPTC128x77, CRCBits: 5, PayloadBytes: 9},
}

// Lookup returns the Shape for a burst type and whether it is known.
func Lookup(t BurstType) (Shape, bool) {
	s, ok := dispatch[t]
	return s, ok
}

// crc9Span returns the number of confirmed-data information bits the CRC-9
// covers (excluding the DBSN), per §4.3's normative span table.
func crc9Span(t BurstType) (bits int, ok bool) {
	switch t {
	case BurstRate1_2Confirmed:
		return 80, true
	case BurstRate3_4Confirmed:
		return 128, true
	case BurstRate1Confirmed:
		return 176, true
	default:
		return 0, false
	}
}
