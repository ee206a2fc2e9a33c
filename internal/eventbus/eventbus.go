// SPDX-License-Identifier: AGPL-3.0-or-later
// dmr-p25-decoder - SDR digital-voice decoder for trunked P25/DMR systems

// Package eventbus fans decoder events (grants, affiliations, encryption
// lockouts, alias updates) out to every websocket client connected to the
// event API, the same publish/subscribe shape the teacher uses to fan
// repeater traffic out to its web UI.
package eventbus

import (
	"context"
	"fmt"

	"github.com/arancormonk/dsd-neo-sub008/internal/config"
)

// Bus publishes byte-encoded events to a named topic and lets callers
// subscribe to receive them.
type Bus interface {
	Publish(topic string, message []byte) error
	Subscribe(topic string) Subscription
	Close() error
}

// Subscription is a live feed of messages published to one topic.
type Subscription interface {
	Close() error
	Channel() <-chan []byte
}

// New creates a Bus backed by Redis when enabled, or an in-process registry.
func New(ctx context.Context, cfg *config.Config) (Bus, error) {
	if cfg.Redis.Enabled {
		bus, err := newRedisBus(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to create redis eventbus: %w", err)
		}
		return bus, nil
	}
	return newMemoryBus(), nil
}
