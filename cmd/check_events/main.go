package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"cloud.google.com/go/spanner"

	"github.com/light-bringer/cardsync-service/internal/app/card/queries/list_events"
	"github.com/light-bringer/cardsync-service/internal/app/card/repo"
	"github.com/light-bringer/cardsync-service/internal/models/m_outbox"
	"github.com/light-bringer/cardsync-service/internal/pkg/logger"
)

func main() {
	database := flag.String("database", getEnvOrDefault("CARDSYNC_SPANNER_DATABASE", "projects/test-project/instances/test-instance/databases/cardsync-db"), "Spanner database")
	eventType := flag.String("type", "", "Only events of this type")
	aggregate := flag.String("aggregate", "", "Only events for this entity key, e.g. work_1")
	status := flag.String("status", "", "Only events with this status (pending, completed, failed)")
	limit := flag.Int("limit", 10, "Maximum events to show")
	flag.Parse()

	log, err := logger.New("dev")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx := context.Background()
	client, err := spanner.NewClient(ctx, *database)
	if err != nil {
		log.Fatal("failed to create spanner client", "error", err)
	}
	defer client.Close()

	req := &list_events.Request{
		EventType:   optional(*eventType),
		AggregateID: optional(*aggregate),
		Status:      optional(*status),
		Limit:       *limit,
	}
	events, total, err := list_events.NewQuery(repo.NewEventsReadModel(client)).Execute(ctx, req)
	if err != nil {
		log.Fatal("failed to list events", "error", err)
	}

	printEvents(os.Stdout, events, total)
}

func printEvents(w io.Writer, events []*m_outbox.Data, total int64) {
	if len(events) == 0 {
		fmt.Fprintln(w, "No events found!")
		return
	}

	fmt.Fprintln(w, "Events in outbox_events table:")
	for i, e := range events {
		line := fmt.Sprintf("%d. %s - %s (aggregate: %s, status: %s, created: %s)",
			i+1, e.EventType, e.EventID, e.AggregateID, e.Status, e.CreatedAt.Format(time.RFC3339))
		if e.RetryCount > 0 {
			line += fmt.Sprintf(" retries: %d", e.RetryCount)
		}
		if e.ErrorMessage.Valid {
			line += " error: " + e.ErrorMessage.StringVal
		}
		fmt.Fprintln(w, line)
	}
	fmt.Fprintf(w, "\nShowing %d of %d events\n", len(events), total)
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
