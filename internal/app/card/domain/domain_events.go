package domain

import "time"

// DomainEvent is the base interface for all domain events.
type DomainEvent interface {
	EventType() string
	AggregateID() string
}

// EventCardFieldsUpdated is the outbox event type written with every field update.
const EventCardFieldsUpdated = "card.fields_updated"

// CardFieldsUpdatedEvent is emitted when fields of a card are persisted.
type CardFieldsUpdatedEvent struct {
	EntityKey string            `json:"entityKey"`
	CardType  CardType          `json:"cardType"`
	CardID    int64             `json:"cardId"`
	Fields    map[string]string `json:"fields"`
	UpdatedAt time.Time         `json:"updatedAt"`
}

func (e *CardFieldsUpdatedEvent) EventType() string {
	return EventCardFieldsUpdated
}

func (e *CardFieldsUpdatedEvent) AggregateID() string {
	return e.EntityKey
}
