// SPDX-License-Identifier: AGPL-3.0-or-later
// dmr-p25-decoder - SDR digital-voice decoder for trunked P25/DMR systems

package events_test

import (
	"encoding/json"
	"testing"

	"github.com/arancormonk/dsd-neo-sub008/internal/events"
)

func TestGroupGrantRendersExpectedFields(t *testing.T) {
	t.Parallel()
	e := events.GroupGrant(100, 9001, 0x1042, 851825000, 0, 0)

	raw, err := events.Render(e)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	if decoded["kind"] != string(events.KindGroupGrant) {
		t.Errorf("expected kind %q, got %v", events.KindGroupGrant, decoded["kind"])
	}
	if decoded["tgid"] != float64(100) {
		t.Errorf("expected tgid 100, got %v", decoded["tgid"])
	}
	if decoded["frequency_hz"] != float64(851825000) {
		t.Errorf("expected frequency_hz 851825000, got %v", decoded["frequency_hz"])
	}
}

func TestEncryptionLockedOmitsUnsetFields(t *testing.T) {
	t.Parallel()
	e := events.EncryptionLocked(500, 0x40)

	raw, err := events.Render(e)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	if _, present := decoded["frequency_hz"]; present {
		t.Error("expected frequency_hz to be omitted for an encryption-lockout event")
	}
	if decoded["algorithm"] != float64(0x40) {
		t.Errorf("expected algorithm 0x40, got %v", decoded["algorithm"])
	}
}

func TestReleaseCarriesReason(t *testing.T) {
	t.Parallel()
	e := events.Release("mac_release")
	if e.Kind != events.KindRelease {
		t.Errorf("expected KindRelease, got %v", e.Kind)
	}
	if e.Reason != "mac_release" {
		t.Errorf("expected reason mac_release, got %v", e.Reason)
	}
}
