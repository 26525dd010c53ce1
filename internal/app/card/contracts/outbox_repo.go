package contracts

import (
	"cloud.google.com/go/spanner"

	"github.com/light-bringer/cardsync-service/internal/app/card/domain"
)

// OutboxEvent is a domain event ready to be written to the outbox table.
type OutboxEvent struct {
	EventID     string
	EventType   string
	AggregateID string
	Payload     string // JSON
	Status      string
}

// OutboxRepository builds outbox mutations. It never applies them.
type OutboxRepository interface {
	InsertMut(event *OutboxEvent) *spanner.Mutation

	// EnrichEvent wraps a domain event with an id and initial status.
	EnrichEvent(event domain.DomainEvent, payload string) *OutboxEvent
}
