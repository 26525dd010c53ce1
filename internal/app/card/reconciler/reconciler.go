// Package reconciler re-reads the authoritative card set after a commit run.
package reconciler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/light-bringer/cardsync-service/internal/app/card/contracts"
	"github.com/light-bringer/cardsync-service/internal/app/card/domain"
	"github.com/light-bringer/cardsync-service/internal/pkg/clock"
	"github.com/light-bringer/cardsync-service/internal/pkg/logger"
)

// ErrReadFailed wraps every reconciliation failure.
var ErrReadFailed = errors.New("failed to reload cards")

// Reconciler keeps the last good copy of the card set.
type Reconciler struct {
	reader contracts.CardReader
	clock  clock.Clock
	log    *logger.Logger

	mu          sync.RWMutex
	cards       *domain.CardSet
	refreshedAt time.Time
	lastErr     error
}

// New creates a Reconciler with no cards loaded yet.
func New(reader contracts.CardReader, clk clock.Clock, log *logger.Logger) *Reconciler {
	return &Reconciler{
		reader: reader,
		clock:  clk,
		log:    log.With("component", "reconciler"),
	}
}

// Finalize issues one read and replaces the held card set on success. On
// failure the previous set is kept and the error is returned and remembered.
func (r *Reconciler) Finalize(ctx context.Context) error {
	res, err := r.reader.LoadAll(ctx)
	switch {
	case err != nil:
		err = fmt.Errorf("%w: %w", ErrReadFailed, err)
	case res == nil:
		err = fmt.Errorf("%w: empty response", ErrReadFailed)
	case !res.Success:
		reason := res.Error
		if reason == "" {
			reason = "unknown error"
		}
		err = fmt.Errorf("%w: %s", ErrReadFailed, reason)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err != nil {
		r.lastErr = err
		r.log.Warn("reconciliation failed", "error", err)
		return err
	}

	cards := res.Data
	if cards == nil {
		cards = &domain.CardSet{}
	}
	r.cards = cards
	r.refreshedAt = r.clock.Now()
	r.lastErr = nil
	r.log.Debug("cards reconciled", "count", cards.Count())
	return nil
}

// Current returns the last good card set (nil before the first successful
// read), when it was loaded, and the error of the latest attempt if it failed.
func (r *Reconciler) Current() (*domain.CardSet, time.Time, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.cards, r.refreshedAt, r.lastErr
}
