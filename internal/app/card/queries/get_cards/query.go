package get_cards

import (
	"context"
	"time"

	"github.com/light-bringer/cardsync-service/internal/app/card/domain"
)

// CardSource is the reconciler's held copy of the cards.
type CardSource interface {
	Current() (*domain.CardSet, time.Time, error)
	Finalize(ctx context.Context) error
}

// Request controls whether to reload before answering.
type Request struct {
	Refresh bool
}

// Result is the reconciled card set.
type Result struct {
	Cards          *domain.CardSet
	RefreshedAt    time.Time
	ReconcileError string
}

// Query returns the last reconciled cards, loading them on first use.
type Query struct {
	source CardSource
}

// NewQuery creates a new get cards query.
func NewQuery(source CardSource) *Query {
	return &Query{source: source}
}

// Execute returns the held card set. A read failure is reported in the
// result, not as an error, so the caller can still show the stale copy.
func (q *Query) Execute(ctx context.Context, req *Request) *Result {
	cards, _, _ := q.source.Current()
	if req.Refresh || cards == nil {
		_ = q.source.Finalize(ctx)
	}

	cards, at, err := q.source.Current()
	res := &Result{Cards: cards, RefreshedAt: at}
	if err != nil {
		res.ReconcileError = err.Error()
	}
	return res
}
