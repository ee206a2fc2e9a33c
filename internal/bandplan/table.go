// SPDX-License-Identifier: AGPL-3.0-or-later
// dmr-p25-decoder - SDR digital-voice decoder for trunked P25/DMR systems

// Package bandplan provides the generic table type backing the decoder's
// explicitly-trusted hard-set of IDEN_UP channel-to-frequency mappings.
// It follows the teacher's pattern for shipping large reference datasets:
// an xz-compressed JSON blob embedded in the binary, decoded lazily into
// a lock-free map, with room for a live update from an operator-supplied
// URL.
package bandplan

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/puzpuzpuz/xsync/v4"
	"github.com/ulikunitz/xz"
)

var (
	ErrUpdateFailed = errors.New("update failed")
	ErrUnmarshal    = errors.New("unmarshal failed")
	ErrLoading      = errors.New("error loading table")
	ErrNoEntries    = errors.New("no entries found in table")
	ErrParsingDate  = errors.New("error parsing built-in date")
	ErrXZReader     = errors.New("error creating xz reader")
	ErrDecodingDB   = errors.New("error decoding table")
)

const waitTime = 100 * time.Millisecond

type tableMetadata struct {
	Count int
	Date  time.Time
}

// StreamDecoder populates m from dec, returning the number of entries decoded.
type StreamDecoder[T any] func(dec *json.Decoder, m *xsync.Map[uint64, T]) (int, error)

// Config holds the initialization parameters for a Table instance.
type Config[T any] struct {
	// CompressedData is the xz-compressed JSON table embedded in the binary.
	CompressedData []byte
	// BuiltInDateStr is the RFC3339 date string for when the embedded table was built.
	BuiltInDateStr string
	// Presize is the initial capacity hint for the map.
	Presize int
	// Decode is the streaming JSON decoder that populates the map.
	Decode StreamDecoder[T]
	// EntityName is a human-readable name for log messages (e.g. "iden-table").
	EntityName string
}

// Table is a generic, lock-free keyed table supporting initial unpack from
// an embedded xz archive and live HTTP updates, keyed by a caller-defined
// composite uint64 (see Key).
type Table[T any] struct {
	metadata    atomic.Value // stores tableMetadata
	dataMap     *xsync.Map[uint64, T]
	updatingMap *xsync.Map[uint64, T]

	builtInDate time.Time
	isInited    atomic.Bool
	isDone      atomic.Bool

	config Config[T]
}

// New creates a Table with the given configuration.
func New[T any](cfg Config[T]) *Table[T] {
	return &Table[T]{config: cfg}
}

// Unpack decompresses the embedded table and loads it into memory. It is
// safe for concurrent use; only the first caller performs the actual unpack.
func (t *Table[T]) Unpack() error {
	lastInit := t.isInited.Swap(true)
	if !lastInit {
		t.updatingMap = xsync.NewMap[uint64, T](xsync.WithPresize(t.config.Presize), xsync.WithGrowOnly())

		var err error
		t.builtInDate, err = time.Parse(time.RFC3339, t.config.BuiltInDateStr)
		if err != nil {
			return ErrParsingDate
		}
		reader, err := xz.NewReader(bytes.NewReader(t.config.CompressedData))
		if err != nil {
			return ErrXZReader
		}

		count, err := t.config.Decode(json.NewDecoder(reader), t.updatingMap)
		if err != nil {
			return err
		}
		if count == 0 {
			slog.Error("no entries found in table", "entity", t.config.EntityName)
			return ErrNoEntries
		}

		t.metadata.Store(tableMetadata{Count: count, Date: t.builtInDate})
		t.dataMap = t.updatingMap
		t.updatingMap = xsync.NewMap[uint64, T]()
		t.isDone.Store(true)
	}

	for !t.isDone.Load() {
		time.Sleep(waitTime)
	}

	meta, ok := t.metadata.Load().(tableMetadata)
	if !ok {
		slog.Error("error loading table", "entity", t.config.EntityName)
		return ErrLoading
	}
	if meta.Count == 0 {
		slog.Error("no entries found in table", "entity", t.config.EntityName)
		return ErrNoEntries
	}
	return nil
}

func (t *Table[T]) ensureLoaded() error {
	if !t.isDone.Load() {
		return t.Unpack()
	}
	return nil
}

// Len returns the number of entries in the table.
func (t *Table[T]) Len() int {
	if err := t.ensureLoaded(); err != nil {
		slog.Error("error unpacking table", "entity", t.config.EntityName, "error", err)
		return 0
	}
	meta, ok := t.metadata.Load().(tableMetadata)
	if !ok {
		slog.Error("error loading table", "entity", t.config.EntityName)
		return 0
	}
	return meta.Count
}

// Get retrieves an entry by its composite key.
func (t *Table[T]) Get(key uint64) (T, bool) {
	if err := t.ensureLoaded(); err != nil {
		slog.Error("error unpacking table", "entity", t.config.EntityName, "error", err)
		var zero T
		return zero, false
	}
	return t.dataMap.Load(key)
}

// Update fetches a fresh copy of the table from the given URL and replaces
// the in-memory map.
func (t *Table[T]) Update(url string) error {
	if err := t.ensureLoaded(); err != nil {
		slog.Error("error unpacking table", "entity", t.config.EntityName, "error", err)
		return ErrUpdateFailed
	}

	const updateTimeout = 10 * time.Minute
	ctx, cancel := context.WithTimeout(context.Background(), updateTimeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimSpace(url), nil)
	if err != nil {
		return ErrUpdateFailed
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return ErrUpdateFailed
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			slog.Error("error closing response body", "error", err)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return ErrUpdateFailed
	}

	t.updatingMap = xsync.NewMap[uint64, T](xsync.WithPresize(t.Len()), xsync.WithGrowOnly())
	count, err := t.config.Decode(json.NewDecoder(resp.Body), t.updatingMap)
	if err != nil {
		slog.Error("error decoding table", "entity", t.config.EntityName, "error", err)
		return ErrUpdateFailed
	}

	if count == 0 {
		slog.Error("no entries found in table", "entity", t.config.EntityName)
		return ErrUpdateFailed
	}

	t.metadata.Store(tableMetadata{Count: count, Date: time.Now()})
	t.dataMap = t.updatingMap
	t.updatingMap = xsync.NewMap[uint64, T]()

	slog.Info("table update complete", "entity", t.config.EntityName, "loaded", t.Len())

	return nil
}

// GetDate returns the date of the currently loaded table.
func (t *Table[T]) GetDate() (time.Time, error) {
	if err := t.ensureLoaded(); err != nil {
		return time.Time{}, err
	}
	meta, ok := t.metadata.Load().(tableMetadata)
	if !ok {
		slog.Error("error loading table", "entity", t.config.EntityName)
		return time.Time{}, ErrLoading
	}
	return meta.Date, nil
}

// GetBuiltInDate returns the built-in date of the embedded table.
func (t *Table[T]) GetBuiltInDate() time.Time {
	return t.builtInDate
}

// ResetForBenchmark resets internal state so Unpack can be called again.
// Intended for benchmark use only.
func (t *Table[T]) ResetForBenchmark() {
	t.isInited.Store(false)
	t.isDone.Store(false)
	t.metadata.Store(tableMetadata{})
}
