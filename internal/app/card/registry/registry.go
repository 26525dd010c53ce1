// Package registry holds the pending, not yet committed field edits per card.
package registry

import (
	"sync"

	"github.com/light-bringer/cardsync-service/internal/app/card/domain"
)

// Registry is an ordered, concurrency-safe map from entity key to its dirty
// entry. Entities keep the order of their first registration.
type Registry struct {
	mu        sync.RWMutex
	order     []string
	entries   map[string]*domain.DirtyEntry
	listeners []func(hasPending bool)
}

// New creates an empty Registry.
func New() *Registry {
	return &Registry{
		entries: make(map[string]*domain.DirtyEntry),
	}
}

// OnChange adds a listener called with the has-pending flag after every
// mutation. Listeners run outside the lock.
func (r *Registry) OnChange(fn func(hasPending bool)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listeners = append(r.listeners, fn)
}

// Register merges fields into the entry for key, creating it if needed.
// Registering no fields is a no-op and returns false.
func (r *Registry) Register(key string, entityType domain.CardType, entityID int64, fields []domain.FieldChange, label string) bool {
	if len(fields) == 0 {
		return false
	}

	r.mu.Lock()
	entry, ok := r.entries[key]
	if !ok {
		entry = &domain.DirtyEntry{
			EntityKey:  key,
			EntityType: entityType,
			EntityID:   entityID,
		}
		r.entries[key] = entry
		r.order = append(r.order, key)
	}
	if label != "" {
		entry.Label = label
	}
	for _, f := range fields {
		entry.Set(f.Name, f.Value)
	}
	r.mu.Unlock()

	r.notify()
	return true
}

// Clear removes one entry.
func (r *Registry) Clear(key string) {
	r.mu.Lock()
	r.removeLocked(key)
	r.mu.Unlock()

	r.notify()
}

// ClearAll empties the registry.
func (r *Registry) ClearAll() {
	r.mu.Lock()
	r.order = nil
	r.entries = make(map[string]*domain.DirtyEntry)
	r.mu.Unlock()

	r.notify()
}

// Release removes the committed fields of key whose pending value is still
// the one that was committed. Fields edited again since the snapshot stay
// pending. The entry is dropped once it has no fields left.
func (r *Registry) Release(key string, committed []domain.FieldChange) {
	r.mu.Lock()
	entry, ok := r.entries[key]
	if !ok {
		r.mu.Unlock()
		return
	}
	for _, f := range committed {
		if v, ok := entry.Value(f.Name); ok && v == f.Value {
			entry.Remove(f.Name)
		}
	}
	if len(entry.Fields) == 0 {
		r.removeLocked(key)
	}
	r.mu.Unlock()

	r.notify()
}

// Snapshot returns a point-in-time deep copy of all entries in registration
// order.
func (r *Registry) Snapshot() []domain.DirtyEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.DirtyEntry, 0, len(r.order))
	for _, key := range r.order {
		out = append(out, r.entries[key].Clone())
	}
	return out
}

// Get returns a copy of one entry.
func (r *Registry) Get(key string) (domain.DirtyEntry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.entries[key]
	if !ok {
		return domain.DirtyEntry{}, false
	}
	return entry.Clone(), true
}

// HasPendingChanges reports whether any entry is registered.
func (r *Registry) HasPendingChanges() bool {
	return r.Len() > 0
}

// Len returns the number of entries.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

func (r *Registry) removeLocked(key string) {
	if _, ok := r.entries[key]; !ok {
		return
	}
	delete(r.entries, key)
	for i, k := range r.order {
		if k == key {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}

func (r *Registry) notify() {
	r.mu.RLock()
	pending := len(r.order) > 0
	listeners := make([]func(bool), len(r.listeners))
	copy(listeners, r.listeners)
	r.mu.RUnlock()

	for _, fn := range listeners {
		fn(pending)
	}
}
