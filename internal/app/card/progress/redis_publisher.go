package progress

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/light-bringer/cardsync-service/internal/pkg/logger"
)

const publishTimeout = 2 * time.Second

// RedisPublisher fans progress events out on a Redis pub/sub channel so that
// several admin consoles can follow the same run.
type RedisPublisher struct {
	log     *logger.Logger
	rdb     *redis.Client
	channel string
}

// NewRedisPublisher connects to addr and verifies the connection.
func NewRedisPublisher(ctx context.Context, addr, channel string, log *logger.Logger) (*RedisPublisher, error) {
	if addr == "" {
		return nil, fmt.Errorf("missing redis address")
	}
	if channel == "" {
		channel = "cardsync.progress"
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return NewRedisPublisherWithClient(rdb, channel, log), nil
}

// NewRedisPublisherWithClient wraps an existing client.
func NewRedisPublisherWithClient(rdb *redis.Client, channel string, log *logger.Logger) *RedisPublisher {
	return &RedisPublisher{
		log:     log.With("service", "RedisPublisher", "channel", channel),
		rdb:     rdb,
		channel: channel,
	}
}

// Publish sends one event. It is meant to be registered with
// Tracker.AddListener; failures are logged, never returned.
func (p *RedisPublisher) Publish(event Event) {
	raw, err := json.Marshal(event)
	if err != nil {
		p.log.Warn("failed to encode progress event", "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()
	if err := p.rdb.Publish(ctx, p.channel, raw).Err(); err != nil {
		p.log.Warn("failed to publish progress event", "kind", event.Kind, "error", err)
	}
}

// Client returns the underlying Redis client so other publishers can share
// the connection pool.
func (p *RedisPublisher) Client() *redis.Client {
	return p.rdb
}

// Close releases the Redis connection.
func (p *RedisPublisher) Close() error {
	if p == nil || p.rdb == nil {
		return nil
	}
	return p.rdb.Close()
}
