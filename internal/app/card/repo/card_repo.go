package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"cloud.google.com/go/spanner"

	"github.com/light-bringer/cardsync-service/internal/app/card/contracts"
	"github.com/light-bringer/cardsync-service/internal/app/card/domain"
	"github.com/light-bringer/cardsync-service/internal/pkg/clock"
	"github.com/light-bringer/cardsync-service/internal/pkg/committer"
)

// CardRepo is the Spanner implementation of the write contract. Each update
// commits the row change and its outbox event together.
type CardRepo struct {
	committer  *committer.Committer
	outboxRepo contracts.OutboxRepository
	clock      clock.Clock
}

// NewCardRepo creates a new CardRepo.
func NewCardRepo(comm *committer.Committer, outboxRepo contracts.OutboxRepository, clk clock.Clock) *CardRepo {
	return &CardRepo{
		committer:  comm,
		outboxRepo: outboxRepo,
		clock:      clk,
	}
}

// UpdateMut builds the row mutation for a partial update. Validation errors
// are returned as domain errors.
func (r *CardRepo) UpdateMut(ct domain.CardType, id int64, fields map[string]string) (*spanner.Mutation, error) {
	t, ok := cardTables[ct]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownCardType, string(ct))
	}
	values, err := columnValues(ct, fields)
	if err != nil {
		return nil, err
	}
	return t.model.UpdateMut(id, values), nil
}

// BuildPlan collects the row mutation and the outbox event for one update.
func (r *CardRepo) BuildPlan(req *contracts.WriteRequest) (*committer.CommitPlan, error) {
	if len(req.Fields) == 0 {
		return nil, fmt.Errorf("%w: no fields to update", domain.ErrInvalidFieldValue)
	}
	if req.ID <= 0 {
		return nil, fmt.Errorf("%w: got %d", domain.ErrInvalidEntityID, req.ID)
	}

	mut, err := r.UpdateMut(req.CardType, req.ID, req.Fields)
	if err != nil {
		return nil, err
	}

	plan := committer.NewPlan()
	plan.Add(mut)

	event := &domain.CardFieldsUpdatedEvent{
		EntityKey: domain.EntityKey(req.CardType, req.ID),
		CardType:  req.CardType,
		CardID:    req.ID,
		Fields:    req.Fields,
		UpdatedAt: r.clock.Now(),
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize event: %w", err)
	}
	plan.Add(r.outboxRepo.InsertMut(r.outboxRepo.EnrichEvent(event, string(payload))))

	return plan, nil
}

// UpdateFields implements contracts.CardWriter. Invalid requests and missing
// rows are reported as unsuccessful results; only store failures are errors.
func (r *CardRepo) UpdateFields(ctx context.Context, req *contracts.WriteRequest) (*contracts.WriteResult, error) {
	plan, err := r.BuildPlan(req)
	if err != nil {
		return &contracts.WriteResult{Success: false, Error: err.Error()}, nil
	}

	table, _ := TableFor(req.CardType)
	if err := r.committer.ApplyIfExists(ctx, table, spanner.Key{req.ID}, plan); err != nil {
		if errors.Is(err, committer.ErrRowNotFound) {
			return &contracts.WriteResult{
				Success: false,
				Error:   fmt.Sprintf("%s: %s %d", domain.ErrCardNotFound, req.CardType, req.ID),
			}, nil
		}
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return &contracts.WriteResult{Success: true}, nil
}
