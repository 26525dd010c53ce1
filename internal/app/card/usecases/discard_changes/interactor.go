package discard_changes

import (
	"context"
	"strings"

	"github.com/light-bringer/cardsync-service/internal/app/card/contracts"
	"github.com/light-bringer/cardsync-service/internal/app/card/domain"
)

// Request discards pending edits of one entity, or of all entities when
// EntityKey is empty.
type Request struct {
	EntityKey string
}

// Interactor drops pending edits without writing them.
type Interactor struct {
	registry contracts.ChangeRegistry
}

// NewInteractor creates a new discard changes interactor.
func NewInteractor(registry contracts.ChangeRegistry) *Interactor {
	return &Interactor{registry: registry}
}

// Execute clears the requested entries and reports whether anything is still
// pending.
func (i *Interactor) Execute(ctx context.Context, req *Request) (bool, error) {
	if req == nil || req.EntityKey == "" {
		i.registry.ClearAll()
		return i.registry.HasPendingChanges(), nil
	}

	key := strings.TrimSpace(req.EntityKey)
	if key == "" {
		return false, domain.ErrEmptyEntityKey
	}
	i.registry.Clear(key)
	return i.registry.HasPendingChanges(), nil
}
