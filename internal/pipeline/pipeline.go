// SPDX-License-Identifier: AGPL-3.0-or-later
// dmr-p25-decoder - SDR digital-voice decoder for trunked P25/DMR systems

// Package pipeline wires the CQPSK front-end, the symbol slicer, sync
// search, FEC dispatch and the trunking state machine into the single
// DSP/protocol-owning thread spec §5 describes: the IQ producer and audio
// consumer are external collaborators feeding/draining bounded rings this
// package only ever reads from or writes to, never owns.
package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/arancormonk/dsd-neo-sub008/internal/dsp/cqpsk"
	"github.com/arancormonk/dsd-neo-sub008/internal/fec/bptc"
	"github.com/arancormonk/dsd-neo-sub008/internal/fec/crc"
	"github.com/arancormonk/dsd-neo-sub008/internal/framer"
	"github.com/arancormonk/dsd-neo-sub008/internal/iosource"
	"github.com/arancormonk/dsd-neo-sub008/internal/trunking"
	"golang.org/x/sync/errgroup"
)

// csbkDispatchBits is BurstCSBK's BPTC(196,96)-coded length: the one burst
// type this pipeline demonstrates end to end (single-burst, no multi-block
// assembly), since a full per-protocol slot-type classifier belongs to the
// separate protocol-handlers component spec §2's dependency table budgets
// at 25% of core LOC on its own, outside this pass's scope.
const csbkDispatchBits = 196

// Pipeline owns the DSP front-end and the sync/FEC/assembler chain for one
// tuned channel. A zero Pipeline is not usable; construct with New.
type Pipeline struct {
	source    *iosource.Ring
	frontend  *cqpsk.Frontend
	sm        *trunking.Machine
	dibits    []framer.Dibit
	pollEvery time.Duration
}

// New builds a Pipeline reading IQ samples from source at sps samples per
// symbol, reporting grants and diagnostics through sm.
func New(source *iosource.Ring, sps float64, sm *trunking.Machine) *Pipeline {
	return &Pipeline{
		source:    source,
		frontend:  cqpsk.New(sps),
		sm:        sm,
		pollEvery: time.Millisecond,
	}
}

// Retune reconfigures the front-end for a new samples-per-symbol rate, per
// §4.1's retune contract, and discards the buffered dibits. The trunking
// SM's tune path does not call it.
func (p *Pipeline) Retune(sps float64) {
	p.frontend.Retune(sps)
	p.dibits = p.dibits[:0]
}

// Start launches the pipeline's single owned goroutine under g, the same
// errgroup-supervised shape internal/cmd/root.go uses for its other
// background services.
func (p *Pipeline) Start(ctx context.Context, g *errgroup.Group) {
	g.Go(func() error {
		p.run(ctx)
		return nil
	})
}

func (p *Pipeline) run(ctx context.Context) {
	ticker := time.NewTicker(p.pollEvery)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.drainOnce()
		}
	}
}

// drainOnce pulls every currently-queued IQ sample, runs the front-end and
// slicer, and feeds the growing dibit buffer through sync search. It never
// blocks waiting for more samples — the producer side is non-blocking per
// spec §5, so an empty ring this tick is not an error.
func (p *Pipeline) drainOnce() {
	var block []complex64
	for {
		s, ok := p.source.Pop()
		if !ok {
			break
		}
		block = append(block, complex64(complex(s.I, s.Q)))
	}
	if len(block) == 0 {
		return
	}

	symbols := p.frontend.Process(block)
	if len(symbols) == 0 {
		return
	}
	for _, sliced := range framer.Slice(symbols) {
		p.dibits = append(p.dibits, sliced.Bits)
	}

	for {
		pattern, end, ok := framer.FindSync(p.dibits)
		if !ok {
			break
		}
		p.handleFrame(pattern, p.dibits[end:])
		p.dibits = p.dibits[end:]
		if len(p.dibits) < csbkDispatchBits/2 {
			break
		}
	}
}

// handleFrame classifies the info frame following a matched sync pattern
// and runs it through the matching FEC/CRC path. Only the DMR data-sync
// CSBK path is wired end to end; frames after any other sync pattern are
// dropped without being logged or dispatched.
func (p *Pipeline) handleFrame(pattern framer.SyncPattern, dibits []framer.Dibit) {
	if pattern != framer.SyncDMRBSData && pattern != framer.SyncDMRMSData {
		return
	}
	if len(dibits) < csbkDispatchBits/2 {
		return
	}

	var received [csbkDispatchBits]int
	for i := 0; i < csbkDispatchBits/2; i++ {
		received[2*i] = int((dibits[i] >> 1) & 1)
		received[2*i+1] = int(dibits[i] & 1)
	}

	data, status := bptc.Decode196_96(received)
	if status.Uncorrectable {
		p.sm.ReportCRCFailure("BurstCSBK")
		return
	}

	shape, ok := framer.Lookup(framer.BurstCSBK)
	if !ok {
		return
	}
	infoBits := len(data) - shape.CRCBits
	payload := packBits(data[:])
	extracted := extractBits(data[infoBits:]) ^ uint16(shape.CRCMask)
	computed := crc.CRC16(payload, infoBits)
	if extracted != computed {
		p.sm.ReportCRCFailure("BurstCSBK")
		return
	}

	slog.Debug("CSBK burst decoded", "payload_bytes", len(payload))
}

// extractBits packs a slice of 0/1 ints MSB-first into a uint16.
func extractBits(bits []int) uint16 {
	var v uint16
	for _, b := range bits {
		v = (v << 1) | uint16(b&1)
	}
	return v
}

// packBits packs a slice of 0/1 ints MSB-first into bytes.
func packBits(bits []int) []byte {
	out := make([]byte, (len(bits)+7)/8)
	for i, b := range bits {
		if b != 0 {
			out[i/8] |= 1 << uint(7-i%8)
		}
	}
	return out
}
