// SPDX-License-Identifier: AGPL-3.0-or-later
// dmr-p25-decoder - SDR digital-voice decoder for trunked P25/DMR systems

// Package keystore provides Provider, a small key-value store backed by
// either an in-process map or Redis. It mirrors the interface the teacher
// uses for its own key-value abstraction. cmd/root.go opens one at startup
// and closes it on shutdown; no other package reads from or writes to it.
package keystore

import (
	"context"
	"fmt"
	"time"

	"github.com/arancormonk/dsd-neo-sub008/internal/config"
)

// Provider is a small key-value store with TTL support and list semantics.
type Provider interface {
	Has(ctx context.Context, key string) (bool, error)
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Expire(ctx context.Context, key string, ttl time.Duration) error
	Scan(ctx context.Context, cursor uint64, match string, count int64) ([]string, uint64, error)
	// RPush appends a value to a list stored under key. Returns the new length.
	RPush(ctx context.Context, key string, value []byte) (int64, error)
	// LDrain atomically returns all elements of the list and deletes the key.
	LDrain(ctx context.Context, key string) ([][]byte, error)
	Close() error
}

// New creates a Provider backed by Redis when enabled, or an in-process map.
func New(ctx context.Context, cfg *config.Config) (Provider, error) {
	if cfg.Redis.Enabled {
		store, err := newRedisProvider(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to create redis keystore: %w", err)
		}
		return store, nil
	}
	return newMemoryProvider(), nil
}
