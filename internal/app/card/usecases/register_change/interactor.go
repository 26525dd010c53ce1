package register_change

import (
	"context"
	"fmt"
	"strings"

	"github.com/light-bringer/cardsync-service/internal/app/card/contracts"
	"github.com/light-bringer/cardsync-service/internal/app/card/domain"
)

// Request is one edit coming from the admin console.
type Request struct {
	EntityKey string // derived from CardType and EntityID when empty
	CardType  string
	EntityID  int64
	Fields    map[string]string
	Label     string // optional display name
}

// Response describes the pending set after the edit.
type Response struct {
	EntityKey         string
	Registered        bool // false when the edit carried no fields
	PendingEntities   int
	HasPendingChanges bool
}

// Interactor validates an edit against the card schema and records it.
type Interactor struct {
	registry contracts.ChangeRegistry
}

// NewInteractor creates a new register change interactor.
func NewInteractor(registry contracts.ChangeRegistry) *Interactor {
	return &Interactor{registry: registry}
}

// Execute registers the edit. Unknown card types and fields are rejected
// before anything is stored.
func (i *Interactor) Execute(ctx context.Context, req *Request) (*Response, error) {
	ct, err := domain.ParseCardType(req.CardType)
	if err != nil {
		return nil, err
	}
	if req.EntityID <= 0 {
		return nil, fmt.Errorf("%w: got %d", domain.ErrInvalidEntityID, req.EntityID)
	}
	if err := ct.ValidateFields(req.Fields); err != nil {
		return nil, err
	}

	key := domain.EntityKey(ct, req.EntityID)
	if req.EntityKey != "" {
		key = strings.TrimSpace(req.EntityKey)
		if key == "" {
			return nil, domain.ErrEmptyEntityKey
		}
	}

	existing, exists := i.registry.Get(key)
	if exists && (existing.EntityType != ct || existing.EntityID != req.EntityID) {
		return nil, fmt.Errorf("%w: %s belongs to %s %d", domain.ErrEntityKeyConflict, key, existing.EntityType, existing.EntityID)
	}

	label := domain.NamingLabel(ct, req.Label, req.Fields)
	if label == "" && !exists {
		label = domain.DeriveLabel(ct, req.EntityID, "", nil)
	}

	registered := i.registry.Register(key, ct, req.EntityID, domain.FieldsFromMap(req.Fields), label)

	return &Response{
		EntityKey:         key,
		Registered:        registered,
		PendingEntities:   i.registry.Len(),
		HasPendingChanges: i.registry.HasPendingChanges(),
	}, nil
}
