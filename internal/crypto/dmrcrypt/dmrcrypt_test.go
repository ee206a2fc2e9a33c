// SPDX-License-Identifier: AGPL-3.0-or-later
// dmr-p25-decoder - SDR digital-voice decoder for trunked P25/DMR systems

package dmrcrypt_test

import (
	"testing"

	"github.com/arancormonk/dsd-neo-sub008/internal/crypto/dmrcrypt"
	"github.com/stretchr/testify/require"
)

type staticKeys struct {
	key []byte
}

func (s staticKeys) Key(alg dmrcrypt.Algorithm, keyID uint16) ([]byte, bool) {
	return s.key, true
}

func TestDecryptMotorolaBPIsInvolutory(t *testing.T) {
	t.Parallel()
	keys := staticKeys{key: []byte{0xAB, 0xCD}}
	payload := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	window := dmrcrypt.Window{DataKSStart: 0, TotalBytes: len(payload), PadOctets: 0}

	original := append([]byte(nil), payload...)
	enc, err := dmrcrypt.Decrypt(dmrcrypt.AlgMotorolaBP, keys, 1, nil, append([]byte(nil), payload...), window)
	require.NoError(t, err)
	require.NotEqual(t, original, enc)

	dec, err := dmrcrypt.Decrypt(dmrcrypt.AlgMotorolaBP, keys, 1, nil, enc, window)
	require.NoError(t, err)
	require.Equal(t, original, dec)
}

func TestDecryptRC4IsInvolutory(t *testing.T) {
	t.Parallel()
	keys := staticKeys{key: []byte{1, 2, 3, 4, 5}}
	mi := []byte{0xAA, 0xBB, 0xCC, 0xDD}
	payload := make([]byte, 16)
	for i := range payload {
		payload[i] = byte(i)
	}
	window := dmrcrypt.Window{DataKSStart: 0, TotalBytes: len(payload), PadOctets: 0}

	enc, err := dmrcrypt.Decrypt(dmrcrypt.AlgRC4, keys, 1, mi, append([]byte(nil), payload...), window)
	require.NoError(t, err)

	dec, err := dmrcrypt.Decrypt(dmrcrypt.AlgRC4, keys, 1, mi, enc, window)
	require.NoError(t, err)
	require.Equal(t, payload, dec)
}

func TestDecryptAES128OFBIsInvolutory(t *testing.T) {
	t.Parallel()
	keys := staticKeys{key: make([]byte, 16)}
	mi := []byte{0x01, 0x02, 0x03, 0x04}
	payload := make([]byte, 32)
	for i := range payload {
		payload[i] = byte(i * 3)
	}
	window := dmrcrypt.Window{DataKSStart: 0, TotalBytes: len(payload), PadOctets: 0}

	enc, err := dmrcrypt.Decrypt(dmrcrypt.AlgAES128OFB, keys, 1, mi, append([]byte(nil), payload...), window)
	require.NoError(t, err)

	dec, err := dmrcrypt.Decrypt(dmrcrypt.AlgAES128OFB, keys, 1, mi, enc, window)
	require.NoError(t, err)
	require.Equal(t, payload, dec)
}

func TestDecryptWindowExcludesPadAndCRCTail(t *testing.T) {
	t.Parallel()
	keys := staticKeys{key: []byte{1, 2}}
	payload := make([]byte, 20)
	window := dmrcrypt.Window{DataKSStart: 2, TotalBytes: 20, PadOctets: 2}

	before := append([]byte(nil), payload...)
	out, err := dmrcrypt.Decrypt(dmrcrypt.AlgMotorolaBP, keys, 1, nil, payload, window)
	require.NoError(t, err)

	require.Equal(t, before[:2], out[:2])
	require.Equal(t, before[14:], out[14:])
}
