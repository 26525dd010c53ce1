package repo

import (
	"context"
	"fmt"

	"cloud.google.com/go/spanner"
	"google.golang.org/api/iterator"

	"github.com/light-bringer/cardsync-service/internal/app/card/queries/list_events"
	"github.com/light-bringer/cardsync-service/internal/models/m_outbox"
	"github.com/light-bringer/cardsync-service/internal/pkg/query"
)

// EventsReadModel reads the outbox_events table.
type EventsReadModel struct {
	client *spanner.Client
}

// NewEventsReadModel creates a new EventsReadModel.
func NewEventsReadModel(client *spanner.Client) *EventsReadModel {
	return &EventsReadModel{
		client: client,
	}
}

// EventsFilter builds the filtered base query shared by the row and count
// statements.
func EventsFilter(req *list_events.Request) *query.Builder {
	b := query.From(m_outbox.TableName)
	if req.EventType != nil {
		b = b.Where(query.Eq(m_outbox.EventType, *req.EventType))
	}
	if req.AggregateID != nil {
		b = b.Where(query.Eq(m_outbox.AggregateID, *req.AggregateID))
	}
	if req.Status != nil {
		b = b.Where(query.Eq(m_outbox.Status, *req.Status))
	}
	if req.Since != nil {
		b = b.Where(query.Gte(m_outbox.CreatedAt, *req.Since))
	}
	return b
}

// ListEvents returns matching events newest first and the total match count.
func (r *EventsReadModel) ListEvents(ctx context.Context, req *list_events.Request) ([]*m_outbox.Data, int64, error) {
	base := EventsFilter(req)

	// one snapshot for both statements so the count matches the rows
	txn := r.client.ReadOnlyTransaction()
	defer txn.Close()

	stmt := base.Select(m_outbox.ReadColumns()...).
		OrderBy(m_outbox.CreatedAt, query.Desc).
		Limit(int64(req.Limit)).
		Build()

	events, err := scanEvents(txn.Query(ctx, stmt))
	if err != nil {
		return nil, 0, err
	}

	var total int64
	countIter := txn.Query(ctx, base.Count().Build())
	defer countIter.Stop()
	row, err := countIter.Next()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count events: %w", err)
	}
	if err := row.Column(0, &total); err != nil {
		return nil, 0, fmt.Errorf("failed to parse event count: %w", err)
	}

	return events, total, nil
}

// PendingEvents returns the oldest undelivered events.
func (r *EventsReadModel) PendingEvents(ctx context.Context, limit int) ([]*m_outbox.Data, error) {
	stmt := query.From(m_outbox.TableName).
		Select(m_outbox.ReadColumns()...).
		Where(query.Eq(m_outbox.Status, m_outbox.StatusPending)).
		OrderBy(m_outbox.CreatedAt, query.Asc).
		Limit(int64(limit)).
		Build()

	return scanEvents(r.client.Single().Query(ctx, stmt))
}

func scanEvents(iter *spanner.RowIterator) ([]*m_outbox.Data, error) {
	defer iter.Stop()

	var events []*m_outbox.Data
	for {
		row, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate events: %w", err)
		}

		var event m_outbox.Data
		if err := row.ToStruct(&event); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, &event)
	}
	return events, nil
}
