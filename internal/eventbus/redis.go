// SPDX-License-Identifier: AGPL-3.0-or-later
// dmr-p25-decoder - SDR digital-voice decoder for trunked P25/DMR systems

package eventbus

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/arancormonk/dsd-neo-sub008/internal/config"
	"github.com/redis/go-redis/v9"
)

const (
	connsPerCPU = 10
	maxIdleTime = 10 * time.Minute
)

func newRedisBus(ctx context.Context, cfg *config.Config) (Bus, error) {
	client := redis.NewClient(&redis.Options{
		Addr:            cfg.Redis.Host,
		Password:        cfg.Redis.Password,
		DB:              cfg.Redis.DB,
		PoolFIFO:        true,
		PoolSize:        runtime.GOMAXPROCS(0) * connsPerCPU,
		MinIdleConns:    runtime.GOMAXPROCS(0),
		ConnMaxIdleTime: maxIdleTime,
	})
	if _, err := client.Ping(ctx).Result(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return &redisBus{client: client}, nil
}

type redisBus struct {
	client *redis.Client
}

func (b *redisBus) Publish(topic string, message []byte) error {
	ctx := context.Background()
	if err := b.client.Publish(ctx, topic, message).Err(); err != nil {
		return fmt.Errorf("failed to publish message to topic %s: %w", topic, err)
	}
	return nil
}

func (b *redisBus) Subscribe(topic string) Subscription {
	ctx := context.Background()
	sub := b.client.Subscribe(ctx, topic)
	ch := make(chan []byte)
	go func() {
		defer close(ch)
		for msg := range sub.Channel() {
			ch <- []byte(msg.Payload)
		}
	}()
	return &redisSubscription{ch: ch, sub: sub}
}

func (b *redisBus) Close() error {
	if err := b.client.Close(); err != nil {
		return fmt.Errorf("failed to close redis client: %w", err)
	}
	return nil
}

type redisSubscription struct {
	ch  chan []byte
	sub *redis.PubSub
}

func (s *redisSubscription) Close() error {
	if err := s.sub.Close(); err != nil {
		return fmt.Errorf("failed to close redis subscription: %w", err)
	}
	return nil
}

func (s *redisSubscription) Channel() <-chan []byte {
	return s.ch
}
