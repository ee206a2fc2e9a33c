// SPDX-License-Identifier: AGPL-3.0-or-later
// dmr-p25-decoder - SDR digital-voice decoder for trunked P25/DMR systems

// Package config defines the decoder's runtime configuration, loaded via
// configulator from flags, environment and file. Only the tunables the
// spec's function surface doesn't already carry live here: site identity,
// trunking policy, the soft-erasure threshold, and the observability
// surfaces (metrics, pprof, event API, persistence, keystore).
package config

// Config is the root decoder configuration.
type Config struct {
	LogLevel LogLevel `yaml:"log_level" default:"info"`

	Site        Site        `yaml:"site"`
	Trunking    Trunking    `yaml:"trunking"`
	Decoder     Decoder     `yaml:"decoder"`
	EventAPI    EventAPI    `yaml:"event_api"`
	Metrics     Metrics     `yaml:"metrics"`
	PProf       PProf       `yaml:"pprof"`
	Persistence Persistence `yaml:"persistence"`
	Redis       Redis       `yaml:"redis"`
}

// Site identifies the trunked system this decoder is following, used to
// trust IDEN_UP updates per spec §6.
type Site struct {
	WACN  uint32 `yaml:"wacn"`
	SysID uint16 `yaml:"sysid"`
	RFSS  uint8  `yaml:"rfss"`
	Site  uint8  `yaml:"site"`
}

// Trunking carries the P25 trunking state machine's admission policy, §4.4.
type Trunking struct {
	TuneGroupCalls   bool    `yaml:"tune_group_calls" default:"true"`
	TunePrivateCalls bool    `yaml:"tune_private_calls" default:"true"`
	TuneDataCalls    bool    `yaml:"tune_data_calls" default:"false"`
	TuneEncCalls     bool    `yaml:"tune_enc_calls" default:"false"`
	HangTimeSeconds  float64 `yaml:"hang_time_seconds" default:"1.0"`
	TGHold           uint32  `yaml:"tg_hold"`
}

// Decoder carries framer/FEC tunables not fixed by the dispatch table.
type Decoder struct {
	// SoftErasureThreshold holds the soft-decision erasure threshold.
	// Overridable by the DECODER_ERASURE_THRESHOLD env var per spec §4.6.
	// No decoder in internal/fec reads it: viterbi.DecodeSoft treats only
	// a reliability of 0 as an erasure.
	SoftErasureThreshold uint8 `yaml:"soft_erasure_threshold" default:"64"`

	// CRC16Span selects between the two historical P25 Phase 2 LCCH/SACCH
	// CRC-16 span interpretations (spec §9 Open Question 1).
	CRC16Span CRC16SpanMode `yaml:"crc16_span" default:"fixed164"`

	// UDTReservedUAB selects the handling of a UDT header with format 0x05
	// and a reserved UAB field (spec §9 Open Question 2).
	UDTReservedUAB UDTReservedMode `yaml:"udt_reserved_uab" default:"dynamic"`

	// RelaxedMode tolerates CRC/DBSN failures on confirmed data blocks
	// instead of resetting the slot to IDLE, per spec §4.3/§7.
	RelaxedMode bool `yaml:"relaxed_mode" default:"false"`

	// DMRCRCRelaxedDefault tolerates DMR header CRC mismatches for frame
	// types that the spec calls out as tolerant in relaxed mode.
	DMRCRCRelaxedDefault bool `yaml:"dmr_crc_relaxed_default" default:"false"`

	// ControlChannelSPS is the CQPSK front-end's samples-per-symbol rate
	// while parked on the control channel (spec §4.1's "CC 5 sps → VC 4
	// sps" retune example); cmd/root.go starts the pipeline at this rate.
	// The trunking SM's tune calls do not call Pipeline.Retune, so the
	// rate stays as configured after startup.
	ControlChannelSPS float64 `yaml:"control_channel_sps" default:"5"`

	// IQRingCapacity bounds the SPSC ring the external IQ-capture thread
	// feeds (spec §5's "bounded SPSC ring with non-blocking producer").
	IQRingCapacity int `yaml:"iq_ring_capacity" default:"65536"`
}

// EventAPI is the machine-readable event stream / snapshot surface.
type EventAPI struct {
	Enabled        bool     `yaml:"enabled" default:"true"`
	Bind           string   `yaml:"bind" default:"127.0.0.1"`
	Port           int      `yaml:"port" default:"8980"`
	TrustedProxies []string `yaml:"trusted_proxies"`
}

// Metrics configures the Prometheus metrics server.
type Metrics struct {
	Enabled      bool   `yaml:"enabled" default:"true"`
	Bind         string `yaml:"bind" default:"127.0.0.1"`
	Port         int    `yaml:"port" default:"9965"`
	OTLPEndpoint string `yaml:"otlp_endpoint"`
}

// PProf configures the profiling server mounted alongside the event API.
type PProf struct {
	Enabled bool   `yaml:"enabled" default:"false"`
	Bind    string `yaml:"bind" default:"127.0.0.1"`
	Port    int    `yaml:"port" default:"6065"`
}

// Persistence configures the optional durable store for the IDEN table,
// patch/regroup table and affiliation table.
type Persistence struct {
	Enabled bool           `yaml:"enabled" default:"false"`
	Driver  DatabaseDriver `yaml:"driver" default:"sqlite"`
	DSN     string         `yaml:"dsn" default:"dmr-p25-decoder.sqlite3"`
}

// Redis configures the keystore.Provider backend, indexed by Key ID.
type Redis struct {
	Enabled  bool   `yaml:"enabled" default:"false"`
	Host     string `yaml:"host" default:"localhost:6379"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db" default:"0"`
}
