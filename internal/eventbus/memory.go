// SPDX-License-Identifier: AGPL-3.0-or-later
// dmr-p25-decoder - SDR digital-voice decoder for trunked P25/DMR systems

package eventbus

import (
	"sync"

	"github.com/puzpuzpuz/xsync/v4"
)

const subscriberBuffer = 16

func newMemoryBus() Bus {
	return &memoryBus{
		topics: xsync.NewMap[string, *topicSubscribers](),
	}
}

type topicSubscribers struct {
	mu   sync.Mutex
	subs map[int]chan []byte
	next int
}

type memoryBus struct {
	topics *xsync.Map[string, *topicSubscribers]
}

func (b *memoryBus) Publish(topic string, message []byte) error {
	t, ok := b.topics.Load(topic)
	if !ok {
		return nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, ch := range t.subs {
		select {
		case ch <- message:
		default:
			// Slow subscriber, drop rather than block the publisher.
		}
	}
	return nil
}

func (b *memoryBus) Subscribe(topic string) Subscription {
	t, _ := b.topics.LoadOrStore(topic, &topicSubscribers{subs: make(map[int]chan []byte)})
	t.mu.Lock()
	id := t.next
	t.next++
	ch := make(chan []byte, subscriberBuffer)
	t.subs[id] = ch
	t.mu.Unlock()

	return &memorySubscription{
		topic:  t,
		id:     id,
		ch:     ch,
	}
}

func (b *memoryBus) Close() error {
	return nil
}

type memorySubscription struct {
	topic *topicSubscribers
	id    int
	ch    chan []byte
}

func (s *memorySubscription) Close() error {
	s.topic.mu.Lock()
	delete(s.topic.subs, s.id)
	s.topic.mu.Unlock()
	close(s.ch)
	return nil
}

func (s *memorySubscription) Channel() <-chan []byte {
	return s.ch
}
