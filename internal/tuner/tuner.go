// SPDX-License-Identifier: AGPL-3.0-or-later
// dmr-p25-decoder - SDR digital-voice decoder for trunked P25/DMR systems

// Package tuner defines the capability seam between the trunking state
// machine and the out-of-scope RTL-SDR device driver (spec §1's "external
// collaborators specified only by the contract the core consumes"). The
// core only ever calls Tune; it never owns or configures the device.
package tuner

import "context"

// Tuner retunes the SDR front-end to a new center frequency. Tune is
// permitted to block up to O(10ms) (spec §5); callers must tolerate a
// bounded IQ sample gap across the call rather than treating it as an
// error path.
type Tuner interface {
	Tune(ctx context.Context, freqHz uint64) error
}

// Func adapts a plain function to the Tuner interface, the shape tests use
// to substitute a fake without a full struct.
type Func func(ctx context.Context, freqHz uint64) error

// Tune calls f.
func (f Func) Tune(ctx context.Context, freqHz uint64) error { return f(ctx, freqHz) }
