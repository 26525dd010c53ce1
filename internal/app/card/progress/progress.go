// Package progress holds and publishes the state of the current commit run.
package progress

import (
	"sync"
	"time"

	"github.com/light-bringer/cardsync-service/internal/app/card/domain"
	"github.com/light-bringer/cardsync-service/internal/pkg/clock"
)

// EventKind names a state transition.
type EventKind string

const (
	EventStarted    EventKind = "started"
	EventOperation  EventKind = "operation"
	EventError      EventKind = "error"
	EventAdvanced   EventKind = "advanced"
	EventFinished   EventKind = "finished"
	EventReconciled EventKind = "reconciled"
	EventReset      EventKind = "reset"
)

// Event is sent to listeners on every transition.
type Event struct {
	Kind      EventKind            `json:"kind"`
	State     domain.ProgressState `json:"state"`
	Timestamp time.Time            `json:"timestamp"`
}

// Tracker is the mutex-guarded holder of the run's ProgressState.
type Tracker struct {
	mu        sync.RWMutex
	clock     clock.Clock
	state     domain.ProgressState
	listeners []func(Event)

	nextSub int
	subs    map[int]chan Event
}

// NewTracker creates an idle Tracker.
func NewTracker(clk clock.Clock) *Tracker {
	return &Tracker{
		clock:     clk,
		state:     domain.IdleState(),
		listeners: make([]func(Event), 0),
		subs:      make(map[int]chan Event),
	}
}

// AddListener adds a progress event listener.
func (t *Tracker) AddListener(listener func(Event)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.listeners = append(t.listeners, listener)
}

// Subscribe returns a channel receiving every event until unsubscribe is
// called. A subscriber whose buffer is full misses intermediate events, but
// finished and reconciled events always arrive: the oldest buffered event is
// evicted to make room for them.
func (t *Tracker) Subscribe(buffer int) (<-chan Event, func()) {
	if buffer < 1 {
		buffer = 1
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	id := t.nextSub
	t.nextSub++
	ch := make(chan Event, buffer)
	t.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			t.mu.Lock()
			defer t.mu.Unlock()
			delete(t.subs, id)
			close(ch)
		})
	}
}

// Begin starts a fresh run: processing, zero progress, no errors.
func (t *Tracker) Begin(runID string, total int, summary string) {
	now := t.clock.Now()
	t.update(EventStarted, func(s *domain.ProgressState) {
		*s = domain.ProgressState{
			RunID:     runID,
			Total:     total,
			Summary:   summary,
			Status:    domain.StatusProcessing,
			Errors:    []string{},
			StartedAt: &now,
		}
	})
}

// SetLabels describes the in-flight operation.
func (t *Tracker) SetLabels(entity, field string) {
	t.update(EventOperation, func(s *domain.ProgressState) {
		s.CurrentEntityLabel = entity
		s.CurrentFieldLabel = field
	})
}

// AppendError records one failure description.
func (t *Tracker) AppendError(msg string) {
	t.update(EventError, func(s *domain.ProgressState) {
		s.Errors = append(s.Errors, msg)
	})
}

// Advance counts one attempted operation.
func (t *Tracker) Advance() {
	t.update(EventAdvanced, func(s *domain.ProgressState) {
		if s.Current < s.Total {
			s.Current++
		}
	})
}

// Finish sets the final status and clears the in-flight labels.
func (t *Tracker) Finish(status domain.Status) {
	now := t.clock.Now()
	t.update(EventFinished, func(s *domain.ProgressState) {
		s.Status = status
		s.CurrentEntityLabel = ""
		s.CurrentFieldLabel = ""
		s.FinishedAt = &now
	})
}

// SetReconcileError records the outcome of the post-run re-read. An empty
// message clears a previous failure.
func (t *Tracker) SetReconcileError(msg string) {
	t.update(EventReconciled, func(s *domain.ProgressState) {
		s.ReconcileError = msg
	})
}

// Reset returns the tracker to idle.
func (t *Tracker) Reset() {
	t.update(EventReset, func(s *domain.ProgressState) {
		*s = domain.IdleState()
	})
}

// Snapshot returns a copy of the current state.
func (t *Tracker) Snapshot() domain.ProgressState {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.state.Clone()
}

func (t *Tracker) update(kind EventKind, fn func(s *domain.ProgressState)) {
	t.mu.Lock()
	fn(&t.state)
	event := Event{Kind: kind, State: t.state.Clone(), Timestamp: t.clock.Now()}
	listeners := make([]func(Event), len(t.listeners))
	copy(listeners, t.listeners)
	for _, ch := range t.subs {
		deliver(ch, event)
	}
	t.mu.Unlock()

	for _, listener := range listeners {
		listener(event)
	}
}

// deliver never blocks. Called with t.mu held, so it is the only sender.
func deliver(ch chan Event, event Event) {
	for {
		select {
		case ch <- event:
			return
		default:
		}
		if event.Kind != EventFinished && event.Kind != EventReconciled {
			return
		}
		select {
		case <-ch:
		default:
		}
	}
}
