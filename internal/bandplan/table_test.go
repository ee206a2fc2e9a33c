// SPDX-License-Identifier: AGPL-3.0-or-later
// dmr-p25-decoder - SDR digital-voice decoder for trunked P25/DMR systems

package bandplan

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/puzpuzpuz/xsync/v4"
	"github.com/ulikunitz/xz"
)

type testEntry struct {
	ID   uint64 `json:"id"`
	Name string `json:"name"`
}

func createCompressedJSON(t *testing.T, items []testEntry) []byte {
	t.Helper()

	data := struct {
		Items []testEntry `json:"items"`
	}{Items: items}
	jsonBytes, err := json.Marshal(data)
	if err != nil {
		t.Fatalf("json.Marshal: %v", err)
	}

	var buf bytes.Buffer
	w, err := xz.NewWriter(&buf)
	if err != nil {
		t.Fatalf("xz.NewWriter: %v", err)
	}
	if _, err := w.Write(jsonBytes); err != nil {
		t.Fatalf("xz write: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("xz close: %v", err)
	}
	return buf.Bytes()
}

func testDecoder(dec *json.Decoder, m *xsync.Map[uint64, testEntry]) (int, error) {
	var doc struct {
		Items []testEntry `json:"items"`
	}
	if err := dec.Decode(&doc); err != nil {
		return 0, ErrDecodingDB
	}
	for _, e := range doc.Items {
		m.Store(e.ID, e)
	}
	return len(doc.Items), nil
}

func newTestTable(t *testing.T, items []testEntry) *Table[testEntry] {
	t.Helper()
	dateStr := time.Now().Format(time.RFC3339)
	compressed := createCompressedJSON(t, items)
	return New(Config[testEntry]{
		CompressedData: compressed,
		BuiltInDateStr: dateStr,
		Presize:        len(items),
		Decode:         testDecoder,
		EntityName:     "test",
	})
}

func TestUnpack(t *testing.T) {
	t.Parallel()
	items := []testEntry{
		{ID: 1, Name: "Alice"},
		{ID: 2, Name: "Bob"},
		{ID: 3, Name: "Charlie"},
	}
	table := newTestTable(t, items)

	if err := table.Unpack(); err != nil {
		t.Fatalf("Unpack: %v", err)
	}
	if table.Len() != 3 {
		t.Errorf("expected Len() == 3, got %d", table.Len())
	}
}

func TestGet(t *testing.T) {
	t.Parallel()
	items := []testEntry{{ID: 42, Name: "TestEntry"}}
	table := newTestTable(t, items)

	if err := table.Unpack(); err != nil {
		t.Fatalf("Unpack: %v", err)
	}

	entry, ok := table.Get(42)
	if !ok {
		t.Fatal("expected to find entry with ID 42")
	}
	if entry.Name != "TestEntry" {
		t.Errorf("expected Name == TestEntry, got %s", entry.Name)
	}

	if _, ok := table.Get(999); ok {
		t.Error("expected not to find entry with ID 999")
	}
}

func TestGetDate(t *testing.T) {
	t.Parallel()
	table := newTestTable(t, []testEntry{{ID: 1, Name: "A"}})

	if err := table.Unpack(); err != nil {
		t.Fatalf("Unpack: %v", err)
	}

	date, err := table.GetDate()
	if err != nil {
		t.Fatalf("GetDate: %v", err)
	}
	if date.IsZero() {
		t.Error("expected non-zero date")
	}
	if !date.Equal(table.GetBuiltInDate()) {
		t.Error("expected GetDate to return built-in date before any update")
	}
}

func TestUnpackEmpty(t *testing.T) {
	t.Parallel()
	table := newTestTable(t, []testEntry{})

	err := table.Unpack()
	if err == nil {
		t.Fatal("expected error for empty table")
	}
	if !errors.Is(err, ErrNoEntries) {
		t.Errorf("expected ErrNoEntries, got %v", err)
	}
}

func TestUnpackBadDate(t *testing.T) {
	t.Parallel()
	compressed := createCompressedJSON(t, []testEntry{{ID: 1, Name: "A"}})
	table := New(Config[testEntry]{
		CompressedData: compressed,
		BuiltInDateStr: "not-a-date",
		Presize:        1,
		Decode:         testDecoder,
		EntityName:     "test",
	})

	err := table.Unpack()
	if err == nil {
		t.Fatal("expected error for bad date")
	}
	if !errors.Is(err, ErrParsingDate) {
		t.Errorf("expected ErrParsingDate, got %v", err)
	}
}

func TestResetForBenchmark(t *testing.T) {
	t.Parallel()
	table := newTestTable(t, []testEntry{{ID: 1, Name: "A"}})

	if err := table.Unpack(); err != nil {
		t.Fatalf("Unpack: %v", err)
	}
	if table.Len() != 1 {
		t.Fatalf("expected Len() == 1, got %d", table.Len())
	}

	table.ResetForBenchmark()

	entry, ok := table.Get(1)
	if !ok {
		t.Fatal("expected to find entry after reset + lazy unpack")
	}
	if entry.Name != "A" {
		t.Errorf("expected Name == A, got %s", entry.Name)
	}
}

func TestConcurrentUnpack(t *testing.T) {
	t.Parallel()
	items := []testEntry{{ID: 1, Name: "A"}, {ID: 2, Name: "B"}}
	table := newTestTable(t, items)

	errs := make(chan error, 10)
	for i := 0; i < 10; i++ {
		go func() {
			errs <- table.Unpack()
		}()
	}

	for i := 0; i < 10; i++ {
		if err := <-errs; err != nil {
			t.Errorf("concurrent Unpack: %v", err)
		}
	}

	if table.Len() != 2 {
		t.Errorf("expected Len() == 2 after concurrent unpack, got %d", table.Len())
	}
}
