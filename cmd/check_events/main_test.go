package main

import (
	"bytes"
	"testing"
	"time"

	"cloud.google.com/go/spanner"
	"github.com/stretchr/testify/assert"

	"github.com/light-bringer/cardsync-service/internal/models/m_outbox"
)

func TestPrintEvents(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		var out bytes.Buffer
		printEvents(&out, nil, 0)
		assert.Equal(t, "No events found!\n", out.String())
	})

	t.Run("with failures", func(t *testing.T) {
		created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
		events := []*m_outbox.Data{
			{EventID: "e1", EventType: "card.fields_updated", AggregateID: "work_1", Status: m_outbox.StatusCompleted, CreatedAt: created},
			{EventID: "e2", EventType: "card.fields_updated", AggregateID: "about_1", Status: m_outbox.StatusFailed, CreatedAt: created,
				RetryCount: 2, ErrorMessage: spanner.NullString{StringVal: "redis down", Valid: true}},
		}

		var out bytes.Buffer
		printEvents(&out, events, 7)

		assert.Contains(t, out.String(), "1. card.fields_updated - e1 (aggregate: work_1, status: completed, created: 2026-01-02T03:04:05Z)\n")
		assert.Contains(t, out.String(), "retries: 2 error: redis down")
		assert.Contains(t, out.String(), "Showing 2 of 7 events")
	})
}

func TestOptional(t *testing.T) {
	assert.Nil(t, optional(""))
	assert.Equal(t, "x", *optional("x"))
}
