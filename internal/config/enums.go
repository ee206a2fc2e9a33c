// SPDX-License-Identifier: AGPL-3.0-or-later
// dmr-p25-decoder - SDR digital-voice decoder for trunked P25/DMR systems

package config

// LogLevel represents the logging level for the application.
type LogLevel string

const (
	// LogLevelDebug is the debug logging level, providing detailed information.
	LogLevelDebug LogLevel = "debug"
	// LogLevelInfo is the informational logging level, providing general information.
	LogLevelInfo LogLevel = "info"
	// LogLevelWarn is the warning logging level, indicating potential issues.
	LogLevelWarn LogLevel = "warn"
	// LogLevelError is the error logging level, indicating serious issues.
	LogLevelError LogLevel = "error"
)

// DatabaseDriver represents the persistence backend in use.
type DatabaseDriver string

// DatabaseDriverSQLite is the only supported persistence backend; see
// DESIGN.md for why the teacher's mysql/postgres drivers were dropped.
const DatabaseDriverSQLite DatabaseDriver = "sqlite"

// CRC16SpanMode selects the LCCH/SACCH CRC-16 span interpretation.
type CRC16SpanMode string

const (
	// CRC16SpanFixed164 covers a fixed 164-bit span.
	CRC16SpanFixed164 CRC16SpanMode = "fixed164"
	// CRC16SpanMCO covers 16+8*MCO bits.
	CRC16SpanMCO CRC16SpanMode = "mco"
)

// UDTReservedMode selects UDT reserved-UAB handling.
type UDTReservedMode string

const (
	// UDTReservedDynamic detects end-of-message via CRC-16 match (recommended).
	UDTReservedDynamic UDTReservedMode = "dynamic"
	// UDTReservedFixed3 assumes exactly 3 appended blocks (legacy behavior).
	UDTReservedFixed3 UDTReservedMode = "fixed3"
)
