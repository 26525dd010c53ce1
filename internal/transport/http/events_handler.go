package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/light-bringer/cardsync-service/internal/app/card/queries/list_events"
	"github.com/light-bringer/cardsync-service/internal/models/m_outbox"
)

// Event represents an audit event in the HTTP response.
type Event struct {
	EventID      string          `json:"event_id"`
	EventType    string          `json:"event_type"`
	AggregateID  string          `json:"aggregate_id"`
	Payload      json.RawMessage `json:"payload,omitempty"`
	Status       string          `json:"status"`
	CreatedAt    string          `json:"created_at"`
	ProcessedAt  *string         `json:"processed_at,omitempty"`
	RetryCount   int64           `json:"retry_count"`
	ErrorMessage *string         `json:"error_message,omitempty"`
}

// ListEventsResponse represents the HTTP response for listing events.
type ListEventsResponse struct {
	Events     []Event `json:"events"`
	TotalCount int64   `json:"total_count"`
}

// events handles GET /api/v1/events.
func (h *Handler) events(c *gin.Context) {
	req := &list_events.Request{}

	if eventType := c.Query("event_type"); eventType != "" {
		req.EventType = &eventType
	}
	if aggregateID := c.Query("aggregate_id"); aggregateID != "" {
		req.AggregateID = &aggregateID
	}
	if status := c.Query("status"); status != "" {
		req.Status = &status
	}
	if sinceStr := c.Query("since"); sinceStr != "" {
		since, err := time.Parse(time.RFC3339, sinceStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "since must be an RFC3339 timestamp"})
			return
		}
		req.Since = &since
	}
	if limitStr := c.Query("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil && limit > 0 {
			req.Limit = limit
		}
	}

	events, total, err := h.listEvents.Execute(c.Request.Context(), req)
	if err != nil {
		h.writeError(c, err)
		return
	}

	resp := ListEventsResponse{
		Events:     make([]Event, 0, len(events)),
		TotalCount: total,
	}
	for _, e := range events {
		resp.Events = append(resp.Events, toEvent(e))
	}
	c.JSON(http.StatusOK, resp)
}

func toEvent(e *m_outbox.Data) Event {
	event := Event{
		EventID:     e.EventID,
		EventType:   e.EventType,
		AggregateID: e.AggregateID,
		Status:      e.Status,
		CreatedAt:   e.CreatedAt.Format(time.RFC3339),
		RetryCount:  e.RetryCount,
	}
	if e.Payload.Valid {
		if raw, err := json.Marshal(e.Payload.Value); err == nil {
			event.Payload = raw
		}
	}
	if e.ProcessedAt.Valid {
		processedAt := e.ProcessedAt.Time.Format(time.RFC3339)
		event.ProcessedAt = &processedAt
	}
	if e.ErrorMessage.Valid {
		msg := e.ErrorMessage.StringVal
		event.ErrorMessage = &msg
	}
	return event
}
