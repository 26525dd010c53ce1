package m_outbox

// Field name constants for the outbox_events table.
const (
	TableName = "outbox_events"

	EventID      = "event_id"
	EventType    = "event_type"
	AggregateID  = "aggregate_id"
	Payload      = "payload"
	Status       = "status"
	CreatedAt    = "created_at"
	ProcessedAt  = "processed_at"
	RetryCount   = "retry_count"
	ErrorMessage = "error_message"
)

// Event status values. Pending events are picked up by the relay.
const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// MaxRetries is how many publish attempts an event gets before it is failed.
const MaxRetries = 5

// ReadColumns lists the columns scanned into Data, in struct order.
func ReadColumns() []string {
	return []string{EventID, EventType, AggregateID, Payload, Status, CreatedAt, ProcessedAt, RetryCount, ErrorMessage}
}
