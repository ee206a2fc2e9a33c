// SPDX-License-Identifier: AGPL-3.0-or-later
// dmr-p25-decoder - SDR digital-voice decoder for trunked P25/DMR systems

// Package events defines the decoder's diagnostic/exit event variants and
// their JSON rendering. This replaces the C-string event formatting of the
// system this core's protocol handling is modeled on with a typed Event
// variant and a pure rendering function, so the event bus and eventapi
// package never format strings themselves.
package events

import (
	"encoding/json"
	"time"
)

// Kind identifies which Event variant a message carries.
type Kind string

const (
	KindGroupGrant      Kind = "group_grant"
	KindPrivateGrant    Kind = "private_grant"
	KindDataGrant       Kind = "data_grant"
	KindEncryptionLock  Kind = "encryption_locked"
	KindRelease         Kind = "release"
	KindNeighborUpdate  Kind = "neighbor_update"
	KindAffiliation     Kind = "affiliation"
	KindTalkerAlias     Kind = "talker_alias"
	KindCRCFailure      Kind = "crc_failure"
	KindFECIrrecoverable Kind = "fec_irrecoverable"
	KindOutOfSequence   Kind = "out_of_sequence"
)

// Event is the single wire format every decoder event renders to. Fields
// irrelevant to a given Kind are simply omitted by the zero value.
type Event struct {
	Kind      Kind      `json:"kind"`
	Timestamp time.Time `json:"timestamp"`

	TalkgroupID  uint32 `json:"tgid,omitempty"`
	SourceID     uint32 `json:"source_id,omitempty"`
	ChannelID    uint16 `json:"channel_id,omitempty"`
	FrequencyHz  uint64 `json:"frequency_hz,omitempty"`
	Slot         uint8  `json:"slot,omitempty"`
	ServiceFlags uint8  `json:"service_flags,omitempty"`
	Algorithm    uint8  `json:"algorithm,omitempty"`
	Alias        string `json:"alias,omitempty"`
	Reason       string `json:"reason,omitempty"`
}

// Render is the pure JSON emitter every caller uses instead of formatting
// its own event strings.
func Render(e Event) ([]byte, error) {
	return json.Marshal(e)
}

// GroupGrant builds a KindGroupGrant event for a resolved voice channel.
func GroupGrant(tgid, src uint32, channelID uint16, freqHz uint64, slot uint8, svc uint8) Event {
	return Event{
		Kind:         KindGroupGrant,
		Timestamp:    time.Now(),
		TalkgroupID:  tgid,
		SourceID:     src,
		ChannelID:    channelID,
		FrequencyHz:  freqHz,
		Slot:         slot,
		ServiceFlags: svc,
	}
}

// EncryptionLocked builds the event emitted when a grant is refused because
// the operator has not opted in to tuning encrypted traffic.
func EncryptionLocked(tgid uint32, algorithm uint8) Event {
	return Event{
		Kind:        KindEncryptionLock,
		Timestamp:   time.Now(),
		TalkgroupID: tgid,
		Algorithm:   algorithm,
	}
}

// Release builds the event emitted when the SM returns to the control channel.
func Release(reason string) Event {
	return Event{
		Kind:      KindRelease,
		Timestamp: time.Now(),
		Reason:    reason,
	}
}

// CRCFailure builds the event emitted when a burst's CRC fails validation.
func CRCFailure(kind string) Event {
	return Event{
		Kind:      KindCRCFailure,
		Timestamp: time.Now(),
		Reason:    kind,
	}
}
