package contracts

import (
	"context"

	"github.com/light-bringer/cardsync-service/internal/app/card/domain"
)

// WriteRequest is a partial field update of one card.
type WriteRequest struct {
	ID       int64             `json:"id"`
	CardType domain.CardType   `json:"cardType"`
	Fields   map[string]string `json:"fields"`
}

// WriteResult is the outcome of a write. Success false with an Error message
// is a field-level failure, not a transport failure.
type WriteResult struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// ReadResult carries the full authoritative card set.
type ReadResult struct {
	Success bool            `json:"success"`
	Data    *domain.CardSet `json:"data,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// CardWriter applies partial updates. A returned error means the call itself
// failed (network, store unavailable).
type CardWriter interface {
	UpdateFields(ctx context.Context, req *WriteRequest) (*WriteResult, error)
}

// CardReader loads every card.
type CardReader interface {
	LoadAll(ctx context.Context) (*ReadResult, error)
}

// CardStore is both contracts, as served by Spanner or a remote deployment.
type CardStore interface {
	CardWriter
	CardReader
}
