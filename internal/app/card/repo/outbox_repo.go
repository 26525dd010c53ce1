package repo

import (
	"encoding/json"

	"cloud.google.com/go/spanner"
	"github.com/google/uuid"

	"github.com/light-bringer/cardsync-service/internal/app/card/contracts"
	"github.com/light-bringer/cardsync-service/internal/app/card/domain"
	"github.com/light-bringer/cardsync-service/internal/models/m_outbox"
)

// OutboxRepo implements OutboxRepository for Spanner.
type OutboxRepo struct {
	model *m_outbox.Model
}

// NewOutboxRepo creates a new OutboxRepo.
func NewOutboxRepo() *OutboxRepo {
	return &OutboxRepo{model: m_outbox.NewModel()}
}

// InsertMut creates a mutation for inserting an outbox event.
func (r *OutboxRepo) InsertMut(event *contracts.OutboxEvent) *spanner.Mutation {
	return r.model.InsertMut(&m_outbox.Data{
		EventID:     event.EventID,
		EventType:   event.EventType,
		AggregateID: event.AggregateID,
		Payload:     spanner.NullJSON{Value: jsonRaw(event.Payload), Valid: event.Payload != ""},
		Status:      event.Status,
	})
}

// EnrichEvent converts a domain event to a pending outbox event.
func (r *OutboxRepo) EnrichEvent(event domain.DomainEvent, payload string) *contracts.OutboxEvent {
	return &contracts.OutboxEvent{
		EventID:     uuid.New().String(),
		EventType:   event.EventType(),
		AggregateID: event.AggregateID(),
		Payload:     payload,
		Status:      m_outbox.StatusPending,
	}
}

// CompletedMut marks an event as delivered.
func (r *OutboxRepo) CompletedMut(eventID string) *spanner.Mutation {
	return r.model.CompletedMut(eventID)
}

// RetryMut records a failed delivery attempt.
func (r *OutboxRepo) RetryMut(eventID string, retryCount int64, errMsg string) *spanner.Mutation {
	return r.model.RetryMut(eventID, retryCount, errMsg)
}

// jsonRaw keeps the payload as a JSON document rather than a quoted string.
func jsonRaw(payload string) json.RawMessage {
	if payload == "" {
		return nil
	}
	return json.RawMessage(payload)
}
