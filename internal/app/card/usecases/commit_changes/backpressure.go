package commit_changes

import "time"

// Backpressure paces writes against the store.
type Backpressure struct {
	// OpDelay is waited after every field write.
	OpDelay time.Duration
	// EntityDelay is waited after every entity.
	EntityDelay time.Duration
	// CallTimeout bounds one write call. Zero means no timeout.
	CallTimeout time.Duration
}

// DefaultBackpressure returns 100ms between fields, 200ms between entities
// and no per-call timeout.
func DefaultBackpressure() Backpressure {
	return Backpressure{
		OpDelay:     100 * time.Millisecond,
		EntityDelay: 200 * time.Millisecond,
	}
}

// NoDelay is used in tests.
func NoDelay() Backpressure {
	return Backpressure{}
}
