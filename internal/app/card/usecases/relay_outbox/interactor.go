package relay_outbox

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/spanner"

	"github.com/light-bringer/cardsync-service/internal/models/m_outbox"
	"github.com/light-bringer/cardsync-service/internal/pkg/clock"
	"github.com/light-bringer/cardsync-service/internal/pkg/committer"
	"github.com/light-bringer/cardsync-service/internal/pkg/logger"
)

const defaultBatchSize = 100

// EventSource reads events that still need delivery.
type EventSource interface {
	PendingEvents(ctx context.Context, limit int) ([]*m_outbox.Data, error)
}

// Publisher delivers one event.
type Publisher interface {
	Publish(ctx context.Context, event *m_outbox.Data) error
}

// StatusMarker builds the delivery bookkeeping mutations.
type StatusMarker interface {
	CompletedMut(eventID string) *spanner.Mutation
	RetryMut(eventID string, retryCount int64, errMsg string) *spanner.Mutation
}

// PlanApplier applies a commit plan.
type PlanApplier interface {
	Apply(ctx context.Context, plan *committer.CommitPlan) error
}

// Request configures one relay pass.
type Request struct {
	BatchSize int
}

// Response reports what one pass did.
type Response struct {
	Published int
	Failed    int
}

// Interactor moves pending outbox events to the publisher.
type Interactor struct {
	source    EventSource
	publisher Publisher
	marker    StatusMarker
	applier   PlanApplier
	clock     clock.Clock
	log       *logger.Logger
}

// NewInteractor creates a new relay interactor.
func NewInteractor(source EventSource, publisher Publisher, marker StatusMarker, applier PlanApplier, clk clock.Clock, log *logger.Logger) *Interactor {
	return &Interactor{
		source:    source,
		publisher: publisher,
		marker:    marker,
		applier:   applier,
		clock:     clk,
		log:       log.With("service", "RelayOutbox"),
	}
}

// Execute publishes one batch of pending events and records the outcome of
// each delivery in a single commit.
func (i *Interactor) Execute(ctx context.Context, req *Request) (*Response, error) {
	limit := req.BatchSize
	if limit <= 0 {
		limit = defaultBatchSize
	}

	pending, err := i.source.PendingEvents(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to read pending events: %w", err)
	}

	resp := &Response{}
	plan := committer.NewPlan()
	for _, event := range pending {
		if err := i.publisher.Publish(ctx, event); err != nil {
			resp.Failed++
			retries := event.RetryCount + 1
			i.log.Warn("failed to publish event", "event_id", event.EventID, "retry_count", retries, "error", err)
			plan.Add(i.marker.RetryMut(event.EventID, retries, err.Error()))
			continue
		}
		resp.Published++
		plan.Add(i.marker.CompletedMut(event.EventID))
	}

	if err := i.applier.Apply(ctx, plan); err != nil {
		return resp, fmt.Errorf("failed to record delivery status: %w", err)
	}

	if len(pending) > 0 {
		i.log.Info("relayed outbox events", "published", resp.Published, "failed", resp.Failed)
	}
	return resp, nil
}

// Run repeats Execute every interval until ctx is done.
func (i *Interactor) Run(ctx context.Context, interval time.Duration, req *Request) {
	for {
		if _, err := i.Execute(ctx, req); err != nil && ctx.Err() == nil {
			i.log.Error("outbox relay pass failed", "error", err)
		}
		if err := i.clock.Sleep(ctx, interval); err != nil {
			return
		}
	}
}
