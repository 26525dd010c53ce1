package list_events

import (
	"context"
	"time"

	"github.com/light-bringer/cardsync-service/internal/models/m_outbox"
)

const (
	defaultLimit = 100
	maxLimit     = 1000
)

// Request contains filtering parameters for listing events.
type Request struct {
	EventType   *string    // e.g. "card.fields_updated"
	AggregateID *string    // entity key, e.g. "work_42"
	Status      *string    // "pending", "completed", "failed"
	Since       *time.Time // created_at lower bound
	Limit       int
}

// EventsReadModel defines the interface for reading events.
type EventsReadModel interface {
	ListEvents(ctx context.Context, req *Request) ([]*m_outbox.Data, int64, error)
}

// Query handles the list events query use case.
type Query struct {
	readModel EventsReadModel
}

// NewQuery creates a new list events query.
func NewQuery(readModel EventsReadModel) *Query {
	return &Query{
		readModel: readModel,
	}
}

// Execute retrieves events matching the filters, newest first, plus the
// total number of matches.
func (q *Query) Execute(ctx context.Context, req *Request) ([]*m_outbox.Data, int64, error) {
	if req.Limit <= 0 {
		req.Limit = defaultLimit
	}
	if req.Limit > maxLimit {
		req.Limit = maxLimit
	}

	return q.readModel.ListEvents(ctx, req)
}
