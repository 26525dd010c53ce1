// Package events delivers committed outbox events to subscribers.
package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/light-bringer/cardsync-service/internal/models/m_outbox"
)

// DefaultChannelPrefix is prepended to the event type to form the channel.
const DefaultChannelPrefix = "cardsync.events."

// Message is the JSON body published for one outbox event.
type Message struct {
	EventID     string          `json:"eventId"`
	EventType   string          `json:"eventType"`
	AggregateID string          `json:"aggregateId"`
	Payload     json.RawMessage `json:"payload,omitempty"`
	CreatedAt   string          `json:"createdAt"`
}

// RedisPublisher publishes outbox events on a per-event-type channel.
type RedisPublisher struct {
	rdb    *redis.Client
	prefix string
}

// NewRedisPublisher wraps an existing client.
func NewRedisPublisher(rdb *redis.Client, prefix string) *RedisPublisher {
	if prefix == "" {
		prefix = DefaultChannelPrefix
	}
	return &RedisPublisher{rdb: rdb, prefix: prefix}
}

// Channel returns the channel an event type is published on.
func (p *RedisPublisher) Channel(eventType string) string {
	return p.prefix + eventType
}

// Publish sends one event.
func (p *RedisPublisher) Publish(ctx context.Context, event *m_outbox.Data) error {
	raw, err := json.Marshal(NewMessage(event))
	if err != nil {
		return fmt.Errorf("failed to encode event %s: %w", event.EventID, err)
	}
	if err := p.rdb.Publish(ctx, p.Channel(event.EventType), raw).Err(); err != nil {
		return fmt.Errorf("failed to publish event %s: %w", event.EventID, err)
	}
	return nil
}

// NewMessage converts a stored event to its published form.
func NewMessage(event *m_outbox.Data) *Message {
	msg := &Message{
		EventID:     event.EventID,
		EventType:   event.EventType,
		AggregateID: event.AggregateID,
		CreatedAt:   event.CreatedAt.UTC().Format("2006-01-02T15:04:05.000Z07:00"),
	}
	if event.Payload.Valid {
		if raw, err := json.Marshal(event.Payload.Value); err == nil {
			msg.Payload = raw
		}
	}
	return msg
}
