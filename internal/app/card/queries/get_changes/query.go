package get_changes

import (
	"context"

	"github.com/light-bringer/cardsync-service/internal/app/card/domain"
	"github.com/light-bringer/cardsync-service/internal/app/card/planner"
)

// Snapshotter is the read side of the registry.
type Snapshotter interface {
	Snapshot() []domain.DirtyEntry
}

// Result is the pending set as shown by the editor.
type Result struct {
	Entries           []domain.DirtyEntry
	HasPendingChanges bool
	Total             int
	Summary           string
}

// Query returns the pending changes and what a commit would do with them.
type Query struct {
	registry Snapshotter
}

// NewQuery creates a new get changes query.
func NewQuery(registry Snapshotter) *Query {
	return &Query{registry: registry}
}

// Execute takes one snapshot and plans it without running anything.
func (q *Query) Execute(ctx context.Context) *Result {
	entries := q.registry.Snapshot()
	plan := planner.Flatten(entries)

	return &Result{
		Entries:           entries,
		HasPendingChanges: len(entries) > 0,
		Total:             plan.Total,
		Summary:           plan.Summary,
	}
}
