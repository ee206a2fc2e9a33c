// SPDX-License-Identifier: AGPL-3.0-or-later
// dmr-p25-decoder - SDR digital-voice decoder for trunked P25/DMR systems

package eventbus_test

import (
	"context"
	"testing"
	"time"

	"github.com/arancormonk/dsd-neo-sub008/internal/config"
	"github.com/arancormonk/dsd-neo-sub008/internal/eventbus"
	"github.com/USA-RedDragon/configulator"
)

func makeTestBus(t *testing.T) eventbus.Bus {
	t.Helper()
	defConfig, err := configulator.New[config.Config]().Default()
	if err != nil {
		t.Fatalf("failed to create default config: %v", err)
	}
	bus, err := eventbus.New(context.Background(), &defConfig)
	if err != nil {
		t.Fatalf("failed to create eventbus: %v", err)
	}
	t.Cleanup(func() {
		_ = bus.Close()
	})
	return bus
}

func TestPublishAndSubscribe(t *testing.T) {
	t.Parallel()
	bus := makeTestBus(t)

	sub := bus.Subscribe("grants")
	defer func() { _ = sub.Close() }()

	msg := []byte(`{"type":"grant","tgid":1001}`)
	if err := bus.Publish("grants", msg); err != nil {
		t.Fatalf("publish failed: %v", err)
	}

	select {
	case received := <-sub.Channel():
		if string(received) != string(msg) {
			t.Errorf("expected %q, got %q", msg, received)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for message")
	}
}

func TestMultipleMessages(t *testing.T) {
	t.Parallel()
	bus := makeTestBus(t)

	sub := bus.Subscribe("affiliations")
	defer func() { _ = sub.Close() }()

	messages := []string{"unit:1001", "unit:1002", "unit:1003"}
	for _, m := range messages {
		if err := bus.Publish("affiliations", []byte(m)); err != nil {
			t.Fatalf("publish failed: %v", err)
		}
	}

	for _, expected := range messages {
		select {
		case received := <-sub.Channel():
			if string(received) != expected {
				t.Errorf("expected %q, got %q", expected, received)
			}
		case <-time.After(time.Second):
			t.Fatalf("timed out waiting for %q", expected)
		}
	}
}

func TestDifferentTopics(t *testing.T) {
	t.Parallel()
	bus := makeTestBus(t)

	sub1 := bus.Subscribe("grants")
	defer func() { _ = sub1.Close() }()
	sub2 := bus.Subscribe("lockouts")
	defer func() { _ = sub2.Close() }()

	_ = bus.Publish("grants", []byte("for-grants"))
	_ = bus.Publish("lockouts", []byte("for-lockouts"))

	select {
	case received := <-sub1.Channel():
		if string(received) != "for-grants" {
			t.Errorf("grants: expected 'for-grants', got %q", received)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out on grants")
	}

	select {
	case received := <-sub2.Channel():
		if string(received) != "for-lockouts" {
			t.Errorf("lockouts: expected 'for-lockouts', got %q", received)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out on lockouts")
	}
}

func TestClose(t *testing.T) {
	t.Parallel()
	defConfig, err := configulator.New[config.Config]().Default()
	if err != nil {
		t.Fatalf("failed to create default config: %v", err)
	}
	bus, err := eventbus.New(context.Background(), &defConfig)
	if err != nil {
		t.Fatalf("failed to create eventbus: %v", err)
	}
	_ = bus.Subscribe("topic")
	if err := bus.Close(); err != nil {
		t.Errorf("close failed: %v", err)
	}
}

func TestSubscribeBeforePublish(t *testing.T) {
	t.Parallel()
	bus := makeTestBus(t)

	sub := bus.Subscribe("pre-sub")
	defer func() { _ = sub.Close() }()

	_ = bus.Publish("pre-sub", []byte("data"))

	select {
	case received := <-sub.Channel():
		if string(received) != "data" {
			t.Errorf("expected 'data', got %q", received)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out")
	}
}

func TestBinaryData(t *testing.T) {
	t.Parallel()
	bus := makeTestBus(t)

	sub := bus.Subscribe("binary")
	defer func() { _ = sub.Close() }()

	data := []byte{0x00, 0xFF, 0xAB, 0xCD, 0xEF}
	_ = bus.Publish("binary", data)

	select {
	case received := <-sub.Channel():
		if len(received) != len(data) {
			t.Fatalf("expected %d bytes, got %d", len(data), len(received))
		}
		for i, b := range data {
			if received[i] != b {
				t.Errorf("byte %d: expected %x, got %x", i, b, received[i])
			}
		}
	case <-time.After(time.Second):
		t.Fatal("timed out")
	}
}
