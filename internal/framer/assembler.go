// SPDX-License-Identifier: AGPL-3.0-or-later
// dmr-p25-decoder - SDR digital-voice decoder for trunked P25/DMR systems

package framer

import (
	"github.com/arancormonk/dsd-neo-sub008/internal/config"
	"github.com/arancormonk/dsd-neo-sub008/internal/events"
	"github.com/arancormonk/dsd-neo-sub008/internal/fec/crc"
)

// State is one slot's assembler state, §4.3's IDLE → HEADER_RECEIVED →
// COLLECTING → COMPLETE progression.
type State int

const (
	StateIdle State = iota
	StateHeaderReceived
	StateCollecting
	StateComplete
)

const (
	maxBlocksToFollow = 127
	maxBlockLen       = 24
)

// Header is the parsed Data-Hdr payload that seeds an Assembler run.
type Header struct {
	DPF             uint8
	SAP             uint8
	BlocksToFollow  int
	PadOctetCount   int
	Source          uint32
	Target          uint32
	Confirmed       bool
	BlockLen        int // 12, 18 or 24 depending on the rate in use (confirmed PDUs also accept 10, 16 or 22)
	FirstDBSN       uint8
}

// Assembler reassembles one slot's multi-block PDU, per §4.3. It is not
// safe for concurrent use; each protocol-thread slot owns one instance.
type Assembler struct {
	cfg   *config.Decoder
	state State

	hdr          Header
	superframe   []byte
	blockCounter int
	expectedDBSN uint8
	haveDBSN     bool
}

// New builds an idle assembler bound to the decoder's relaxed-mode and CRC
// span configuration.
func New(cfg *config.Decoder) *Assembler {
	return &Assembler{cfg: cfg, state: StateIdle}
}

// State reports the assembler's current state.
func (a *Assembler) State() State { return a.state }

// OnHeader starts a new PDU after a Data-Hdr with a verified CRC, per
// §4.3's "store {...}; clear DBSN expectation; go to COLLECTING".
func (a *Assembler) OnHeader(h Header) {
	if h.BlocksToFollow > maxBlocksToFollow {
		h.BlocksToFollow = maxBlocksToFollow
	}
	a.hdr = h
	a.superframe = make([]byte, 0, h.BlocksToFollow*h.BlockLen)
	a.blockCounter = 0
	a.haveDBSN = false
	a.state = StateCollecting
}

// BlockResult reports what OnBlock did with one data block.
type BlockResult struct {
	Event     *events.Event
	Completed bool
	PDU       []byte
}

// OnBlock appends one data block to the superframe, optionally verifying
// its DBSN and CRC-9 when the PDU is confirmed, per §4.3's assembler
// transitions. dbsn and bits are only meaningful when the header declared
// a confirmed PDU.
func (a *Assembler) OnBlock(payload []byte, dbsn uint8, infoBits []byte, crcExtracted uint16) BlockResult {
	if a.state != StateCollecting {
		return BlockResult{}
	}
	if a.blockCounter >= a.hdr.BlocksToFollow || len(a.superframe)+a.hdr.BlockLen > maxBlockLen*maxBlocksToFollow {
		a.reset()
		return BlockResult{}
	}

	if a.hdr.Confirmed {
		if !a.haveDBSN {
			// §9 Open Question 3, resolved normatively: the initial
			// expectation is the first observed DBSN plus one, not 1.
			a.expectedDBSN = (dbsn + 1) & 0x7F
			a.haveDBSN = true
		} else {
			if dbsn != a.expectedDBSN {
				ev := events.CRCFailure("out_of_sequence")
				if !a.cfg.RelaxedMode {
					a.reset()
					return BlockResult{Event: &ev}
				}
			}
			a.expectedDBSN = (a.expectedDBSN + 1) & 0x7F
		}

		if span, ok := crc9Span(burstTypeForBlockLen(a.hdr.BlockLen)); ok {
			computed := crc.CRC9(infoBits, span)
			if computed != crcExtracted && !a.cfg.RelaxedMode {
				ev := events.CRCFailure("crc9_mismatch")
				a.reset()
				return BlockResult{Event: &ev}
			}
		}
	}

	a.superframe = append(a.superframe, payload...)
	a.blockCounter++

	if a.blockCounter == a.hdr.BlocksToFollow {
		pdu := crc.SwapPDUBytes(a.superframe)
		a.state = StateComplete
		result := BlockResult{Completed: true, PDU: pdu}
		a.reset()
		return result
	}
	return BlockResult{}
}

// BlockCounter exposes the current block counter for §8 invariant 2
// ("non-decreasing and bounded by blocks_to_follow").
func (a *Assembler) BlockCounter() int { return a.blockCounter }

func (a *Assembler) reset() {
	a.state = StateIdle
	a.superframe = nil
	a.blockCounter = 0
	a.haveDBSN = false
}

// burstTypeForBlockLen maps a confirmed-data block length back to the
// burst type whose CRC-9 span applies. It accepts either the full block
// length (12, 18, 24) or the dispatch table's PayloadBytes value for the
// three confirmed rates (10, 16, 22).
func burstTypeForBlockLen(blockLen int) BurstType {
	switch blockLen {
	case 10, 12:
		return BurstRate1_2Confirmed
	case 16, 18:
		return BurstRate3_4Confirmed
	case 22, 24:
		return BurstRate1Confirmed
	default:
		return BurstRate1_2Confirmed
	}
}
