// Package committer implements the Golden Mutation Pattern for Spanner writes.
//
// Repositories never apply changes themselves. They return mutations, the
// caller collects them into a CommitPlan together with any outbox events, and
// the Committer applies the whole plan in one transaction:
//
//	plan := committer.NewPlan()
//	plan.Add(cardRepo.UpdateFieldsMut(cardType, id, columns))
//	plan.Add(outboxRepo.InsertMut(event))
//	return committer.ApplyIfExists(ctx, table, spanner.Key{id}, plan)
//
// Either every mutation in the plan lands or none does.
package committer

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/spanner"
	"google.golang.org/grpc/codes"
)

// ErrRowNotFound is returned by ApplyIfExists when the guarded row is missing.
var ErrRowNotFound = errors.New("row not found")

// CommitPlan collects Spanner mutations to be applied atomically.
type CommitPlan struct {
	mutations []*spanner.Mutation
}

// NewPlan creates a new empty CommitPlan.
func NewPlan() *CommitPlan {
	return &CommitPlan{
		mutations: make([]*spanner.Mutation, 0),
	}
}

// Add adds a mutation to the plan. Nil mutations are ignored.
func (cp *CommitPlan) Add(mut *spanner.Mutation) {
	if mut != nil {
		cp.mutations = append(cp.mutations, mut)
	}
}

// AddMultiple adds multiple mutations to the plan.
func (cp *CommitPlan) AddMultiple(muts []*spanner.Mutation) {
	for _, mut := range muts {
		cp.Add(mut)
	}
}

// Mutations returns all collected mutations.
func (cp *CommitPlan) Mutations() []*spanner.Mutation {
	return cp.mutations
}

// IsEmpty returns true if the plan has no mutations.
func (cp *CommitPlan) IsEmpty() bool {
	return len(cp.mutations) == 0
}

// Count returns the number of mutations in the plan.
func (cp *CommitPlan) Count() int {
	return len(cp.mutations)
}

// Committer applies CommitPlans against a Spanner client.
type Committer struct {
	client *spanner.Client
}

// NewCommitter creates a new Committer.
func NewCommitter(client *spanner.Client) *Committer {
	return &Committer{client: client}
}

// Apply executes the plan atomically.
func (c *Committer) Apply(ctx context.Context, plan *CommitPlan) error {
	if plan.IsEmpty() {
		return nil
	}

	if _, err := c.client.Apply(ctx, plan.Mutations()); err != nil {
		return fmt.Errorf("failed to apply commit plan: %w", err)
	}
	return nil
}

// ApplyIfExists applies the plan inside a read-write transaction that first
// checks the row at key in table still exists. A missing row aborts the
// transaction with ErrRowNotFound instead of a raw NotFound status.
func (c *Committer) ApplyIfExists(ctx context.Context, table string, key spanner.Key, plan *CommitPlan) error {
	if plan.IsEmpty() {
		return nil
	}

	_, err := c.client.ReadWriteTransaction(ctx, func(ctx context.Context, txn *spanner.ReadWriteTransaction) error {
		if _, err := txn.ReadRow(ctx, table, key, []string{"id"}); err != nil {
			if spanner.ErrCode(err) == codes.NotFound {
				return ErrRowNotFound
			}
			return fmt.Errorf("failed to read %s row: %w", table, err)
		}
		return txn.BufferWrite(plan.Mutations())
	})
	if err != nil {
		if errors.Is(err, ErrRowNotFound) {
			return ErrRowNotFound
		}
		return fmt.Errorf("failed to apply commit plan: %w", err)
	}
	return nil
}
