package contracts

import "github.com/light-bringer/cardsync-service/internal/app/card/domain"

// DirtyStore is the registry as seen by a commit run.
type DirtyStore interface {
	// Snapshot returns an ordered point-in-time copy of pending entries.
	Snapshot() []domain.DirtyEntry

	// Release drops the committed field values of one entity.
	Release(key string, committed []domain.FieldChange)
}

// ChangeRegistry is the registry as seen by the editing surface.
type ChangeRegistry interface {
	DirtyStore

	Register(key string, entityType domain.CardType, entityID int64, fields []domain.FieldChange, label string) bool
	Get(key string) (domain.DirtyEntry, bool)
	Clear(key string)
	ClearAll()
	HasPendingChanges() bool
	Len() int
}
