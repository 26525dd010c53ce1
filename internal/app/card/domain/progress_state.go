package domain

import "time"

// Status is the lifecycle state of a commit run.
type Status string

const (
	StatusIdle       Status = "idle"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusError      Status = "error"
)

// Terminal reports whether the run has finished.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusError
}

// DefaultDisplayErrors is how many errors the UI shows before collapsing the
// rest into a count.
const DefaultDisplayErrors = 3

// ProgressState is the observable state of one commit run.
type ProgressState struct {
	RunID              string     `json:"runId,omitempty"`
	Current            int        `json:"current"`
	Total              int        `json:"total"`
	CurrentEntityLabel string     `json:"currentEntityLabel"`
	CurrentFieldLabel  string     `json:"currentFieldLabel"`
	Status             Status     `json:"status"`
	Errors             []string   `json:"errors"`
	Summary            string     `json:"summary"`
	StartedAt          *time.Time `json:"startedAt,omitempty"`
	FinishedAt         *time.Time `json:"finishedAt,omitempty"`

	// ReconcileError is set when the post-run re-read failed. It is kept
	// apart from Errors and never changes Status.
	ReconcileError string `json:"reconcileError,omitempty"`
}

// IdleState is the state before any run and after Reset.
func IdleState() ProgressState {
	return ProgressState{Status: StatusIdle, Errors: []string{}}
}

// PercentComplete returns Current/Total as a percentage, 0 when nothing is
// planned.
func (s ProgressState) PercentComplete() float64 {
	if s.Total <= 0 {
		return 0
	}
	return float64(s.Current) / float64(s.Total) * 100
}

// DisplayErrors returns the first limit errors and how many were left out.
// The full list stays in Errors.
func (s ProgressState) DisplayErrors(limit int) ([]string, int) {
	if limit < 0 {
		limit = 0
	}
	if len(s.Errors) <= limit {
		return append([]string(nil), s.Errors...), 0
	}
	return append([]string(nil), s.Errors[:limit]...), len(s.Errors) - limit
}

// Clone returns a deep copy safe to hand to readers.
func (s ProgressState) Clone() ProgressState {
	c := s
	c.Errors = append([]string{}, s.Errors...)
	if s.StartedAt != nil {
		t := *s.StartedAt
		c.StartedAt = &t
	}
	if s.FinishedAt != nil {
		t := *s.FinishedAt
		c.FinishedAt = &t
	}
	return c
}
