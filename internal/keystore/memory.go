// SPDX-License-Identifier: AGPL-3.0-or-later
// dmr-p25-decoder - SDR digital-voice decoder for trunked P25/DMR systems

package keystore

import (
	"context"
	"fmt"
	"path"
	"sync"
	"time"

	"github.com/puzpuzpuz/xsync/v4"
)

func newMemoryProvider() Provider {
	return &memoryProvider{
		entries: xsync.NewMap[string, *memoryEntry](),
	}
}

type memoryEntry struct {
	mu     sync.Mutex
	values [][]byte
	expiry time.Time
}

func (e *memoryEntry) expired() bool {
	return !e.expiry.IsZero() && e.expiry.Before(time.Now())
}

type memoryProvider struct {
	entries *xsync.Map[string, *memoryEntry]
}

func (m *memoryProvider) Has(_ context.Context, key string) (bool, error) {
	entry, ok := m.entries.Load(key)
	if !ok {
		return false, nil
	}
	if entry.expired() {
		m.entries.Delete(key)
		return false, nil
	}
	return true, nil
}

func (m *memoryProvider) Get(_ context.Context, key string) ([]byte, error) {
	entry, ok := m.entries.Load(key)
	if !ok {
		return nil, fmt.Errorf("key %s not found", key)
	}
	if entry.expired() {
		m.entries.Delete(key)
		return nil, fmt.Errorf("key %s has expired", key)
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	if len(entry.values) == 0 {
		return nil, fmt.Errorf("key %s has no values", key)
	}
	return entry.values[0], nil
}

func (m *memoryProvider) Set(_ context.Context, key string, value []byte) error {
	m.entries.Store(key, &memoryEntry{values: [][]byte{value}})
	return nil
}

func (m *memoryProvider) Delete(_ context.Context, key string) error {
	m.entries.Delete(key)
	return nil
}

func (m *memoryProvider) Expire(_ context.Context, key string, ttl time.Duration) error {
	entry, ok := m.entries.Load(key)
	if !ok {
		return fmt.Errorf("key %s not found", key)
	}
	if ttl <= 0 {
		m.entries.Delete(key)
		return nil
	}
	entry.mu.Lock()
	entry.expiry = time.Now().Add(ttl)
	entry.mu.Unlock()
	return nil
}

func (m *memoryProvider) Scan(_ context.Context, _ uint64, match string, _ int64) ([]string, uint64, error) {
	keys := make([]string, 0)
	m.entries.Range(func(key string, entry *memoryEntry) bool {
		if entry.expired() {
			m.entries.Delete(key)
			return true
		}
		if match == "" || match == key {
			keys = append(keys, key)
			return true
		}
		if ok, err := path.Match(match, key); err == nil && ok {
			keys = append(keys, key)
		}
		return true
	})
	return keys, 0, nil
}

func (m *memoryProvider) RPush(_ context.Context, key string, value []byte) (int64, error) {
	entry, _ := m.entries.LoadOrStore(key, &memoryEntry{})
	entry.mu.Lock()
	entry.values = append(entry.values, value)
	n := int64(len(entry.values))
	entry.mu.Unlock()
	return n, nil
}

func (m *memoryProvider) LDrain(_ context.Context, key string) ([][]byte, error) {
	entry, ok := m.entries.LoadAndDelete(key)
	if !ok {
		return nil, nil
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	return entry.values, nil
}

func (m *memoryProvider) Close() error {
	return nil
}
