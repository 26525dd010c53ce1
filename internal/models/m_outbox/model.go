package m_outbox

import (
	"cloud.google.com/go/spanner"
)

// Model provides type-safe mutations for the outbox_events table.
type Model struct{}

// NewModel creates a new Model instance.
func NewModel() *Model {
	return &Model{}
}

// InsertMut creates a mutation inserting a new event. created_at is the
// commit timestamp of the transaction that carries the card update.
func (m *Model) InsertMut(data *Data) *spanner.Mutation {
	return spanner.Insert(
		TableName,
		[]string{EventID, EventType, AggregateID, Payload, Status, CreatedAt, RetryCount},
		[]interface{}{data.EventID, data.EventType, data.AggregateID, data.Payload, data.Status, spanner.CommitTimestamp, data.RetryCount},
	)
}

// CompletedMut marks an event as delivered.
func (m *Model) CompletedMut(eventID string) *spanner.Mutation {
	return spanner.Update(
		TableName,
		[]string{EventID, Status, ProcessedAt, ErrorMessage},
		[]interface{}{eventID, StatusCompleted, spanner.CommitTimestamp, spanner.NullString{}},
	)
}

// RetryMut records a failed delivery attempt. Once retries reach MaxRetries
// the event is marked failed and stops being picked up.
func (m *Model) RetryMut(eventID string, retryCount int64, errMsg string) *spanner.Mutation {
	if retryCount >= MaxRetries {
		return spanner.Update(
			TableName,
			[]string{EventID, Status, ProcessedAt, RetryCount, ErrorMessage},
			[]interface{}{eventID, StatusFailed, spanner.CommitTimestamp, retryCount, errMsg},
		)
	}
	return spanner.Update(
		TableName,
		[]string{EventID, RetryCount, ErrorMessage},
		[]interface{}{eventID, retryCount, errMsg},
	)
}

// DeleteMut creates a mutation for deleting an event.
func (m *Model) DeleteMut(eventID string) *spanner.Mutation {
	return spanner.Delete(TableName, spanner.Key{eventID})
}
