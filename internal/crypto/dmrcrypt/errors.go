// SPDX-License-Identifier: AGPL-3.0-or-later
// dmr-p25-decoder - SDR digital-voice decoder for trunked P25/DMR systems

package dmrcrypt

import "errors"

var (
	// ErrKeyNotFound is returned when the KeyProvider has no key for the
	// requested (algorithm, key-id) pair.
	ErrKeyNotFound = errors.New("dmrcrypt: key not found")
	// ErrUnsupportedAlgorithm is returned for an algorithm id outside §4.5.
	ErrUnsupportedAlgorithm = errors.New("dmrcrypt: unsupported algorithm")
)
