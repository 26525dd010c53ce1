package get_progress

import (
	"context"

	"github.com/light-bringer/cardsync-service/internal/app/card/domain"
)

// StateSource exposes the current run state.
type StateSource interface {
	Snapshot() domain.ProgressState
}

// Result is the progress view shown by the admin console.
type Result struct {
	State        domain.ProgressState
	Percent      float64
	ShownErrors  []string
	HiddenErrors int
	ErrorCount   int
}

// Query builds the display view of the run state.
type Query struct {
	source StateSource
}

// NewQuery creates a new get progress query.
func NewQuery(source StateSource) *Query {
	return &Query{source: source}
}

// Execute returns the state with at most limit errors shown. Zero shows none
// and counts them all as hidden; a negative limit uses
// domain.DefaultDisplayErrors.
func (q *Query) Execute(ctx context.Context, limit int) *Result {
	if limit < 0 {
		limit = domain.DefaultDisplayErrors
	}

	state := q.source.Snapshot()
	shown, hidden := state.DisplayErrors(limit)

	return &Result{
		State:        state,
		Percent:      state.PercentComplete(),
		ShownErrors:  shown,
		HiddenErrors: hidden,
		ErrorCount:   len(state.Errors),
	}
}
