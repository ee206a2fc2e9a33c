// SPDX-License-Identifier: AGPL-3.0-or-later
// dmr-p25-decoder - SDR digital-voice decoder for trunked P25/DMR systems

package ringbuffer_test

import (
	"testing"

	"github.com/arancormonk/dsd-neo-sub008/internal/ringbuffer"
)

func TestNewRoundsCapacityUpToPowerOfTwo(t *testing.T) {
	t.Parallel()
	r := ringbuffer.New[int](5)
	for i := 0; i < 8; i++ {
		r.Push(i)
	}
	if !r.Full() {
		t.Fatalf("expected ring rounded to capacity 8 to be full after 8 pushes")
	}
}

func TestPushAndPop(t *testing.T) {
	t.Parallel()
	r := ringbuffer.New[complex64](4)

	r.Push(complex(1, 0))
	r.Push(complex(2, 0))

	v, ok := r.Pop()
	if !ok || v != complex(1, 0) {
		t.Fatalf("expected first push back, got %v ok=%v", v, ok)
	}
	v, ok = r.Pop()
	if !ok || v != complex(2, 0) {
		t.Fatalf("expected second push back, got %v ok=%v", v, ok)
	}
	if _, ok := r.Pop(); ok {
		t.Fatalf("expected empty ring after draining")
	}
}

func TestPushOnFullDropsOldest(t *testing.T) {
	t.Parallel()
	r := ringbuffer.New[int](2)
	r.Push(1)
	r.Push(2)
	dropped := r.Push(3)
	if !dropped {
		t.Fatalf("expected push on full ring to report a drop")
	}

	values := r.Drain()
	if len(values) != 2 || values[0] != 2 || values[1] != 3 {
		t.Fatalf("expected [2 3] after drop-oldest, got %v", values)
	}
}

func TestEmptyAndFull(t *testing.T) {
	t.Parallel()
	r := ringbuffer.New[byte](4)
	if !r.Empty() {
		t.Fatalf("expected new ring to be empty")
	}
	for i := 0; i < 4; i++ {
		r.Push(byte(i))
	}
	if !r.Full() {
		t.Fatalf("expected ring to be full at capacity")
	}
}

func TestDrainReturnsInOrder(t *testing.T) {
	t.Parallel()
	r := ringbuffer.New[int](8)
	for i := 0; i < 5; i++ {
		r.Push(i)
	}
	values := r.Drain()
	for i, v := range values {
		if v != i {
			t.Errorf("index %d: expected %d, got %d", i, i, v)
		}
	}
	if !r.Empty() {
		t.Fatalf("expected ring empty after drain")
	}
}
