package commit_changes

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/light-bringer/cardsync-service/internal/app/card/contracts"
	"github.com/light-bringer/cardsync-service/internal/app/card/domain"
	"github.com/light-bringer/cardsync-service/internal/app/card/planner"
	"github.com/light-bringer/cardsync-service/internal/app/card/progress"
	"github.com/light-bringer/cardsync-service/internal/pkg/clock"
	"github.com/light-bringer/cardsync-service/internal/pkg/logger"
)

// Finalizer re-reads the authoritative state after a run.
type Finalizer interface {
	Finalize(ctx context.Context) error
}

// Request starts a commit run.
type Request struct {
	RunID string // generated when empty
}

// Interactor runs the pending changes against the store one field at a time.
// At most one run is active at any moment.
type Interactor struct {
	registry   contracts.DirtyStore
	writer     contracts.CardWriter
	tracker    *progress.Tracker
	reconciler Finalizer
	clock      clock.Clock
	policy     Backpressure
	log        *logger.Logger

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewInteractor creates a new commit changes interactor.
func NewInteractor(
	registry contracts.DirtyStore,
	writer contracts.CardWriter,
	tracker *progress.Tracker,
	reconciler Finalizer,
	clock clock.Clock,
	policy Backpressure,
	log *logger.Logger,
) *Interactor {
	return &Interactor{
		registry:   registry,
		writer:     writer,
		tracker:    tracker,
		reconciler: reconciler,
		clock:      clock,
		policy:     policy,
		log:        log.With("usecase", "commit_changes"),
	}
}

// Execute runs a commit synchronously and returns the final state. Cancelling
// ctx stops issuing writes; the rest of the plan is recorded as failed.
func (i *Interactor) Execute(ctx context.Context, req *Request) (domain.ProgressState, error) {
	runCtx, runID, done, err := i.acquire(ctx, req)
	if err != nil {
		return domain.ProgressState{}, err
	}
	defer i.release(done)

	return i.run(runCtx, runID), nil
}

// Start launches a commit in the background and returns its run id. The run
// is detached from ctx's cancellation; stop it with Cancel.
func (i *Interactor) Start(ctx context.Context, req *Request) (string, error) {
	runCtx, runID, done, err := i.acquire(context.WithoutCancel(ctx), req)
	if err != nil {
		return "", err
	}

	go func() {
		defer i.release(done)
		i.run(runCtx, runID)
	}()
	return runID, nil
}

// Cancel stops the active run.
func (i *Interactor) Cancel() error {
	i.mu.Lock()
	defer i.mu.Unlock()

	if !i.running {
		return domain.ErrNoActiveRun
	}
	i.cancel()
	return nil
}

// Reset returns the progress state to idle. It is refused while a run is
// active.
func (i *Interactor) Reset() error {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.running {
		return domain.ErrCommitInProgress
	}
	i.tracker.Reset()
	return nil
}

// Running reports whether a run is active.
func (i *Interactor) Running() bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.running
}

// Wait blocks until the active run, if any, has finished.
func (i *Interactor) Wait() {
	i.mu.Lock()
	done := i.done
	i.mu.Unlock()

	if done != nil {
		<-done
	}
}

func (i *Interactor) acquire(ctx context.Context, req *Request) (context.Context, string, chan struct{}, error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.running {
		return nil, "", nil, domain.ErrCommitInProgress
	}

	runID := ""
	if req != nil {
		runID = req.RunID
	}
	if runID == "" {
		runID = uuid.New().String()
	}

	runCtx, cancel := context.WithCancel(ctx)
	i.running = true
	i.cancel = cancel
	i.done = make(chan struct{})
	return runCtx, runID, i.done, nil
}

func (i *Interactor) release(done chan struct{}) {
	i.mu.Lock()
	i.running = false
	if i.cancel != nil {
		i.cancel()
		i.cancel = nil
	}
	i.mu.Unlock()
	close(done)
}

func (i *Interactor) run(ctx context.Context, runID string) domain.ProgressState {
	log := i.log.With("run_id", runID)

	plan := planner.Flatten(i.registry.Snapshot())
	i.tracker.Begin(runID, plan.Total, plan.Summary)
	log.Info("commit run started", "summary", plan.Summary)

	errs := &errorList{}
	for gi, group := range plan.Groups {
		var (
			failed    []string
			attempted []domain.FieldChange
		)
		for _, op := range group.Operations {
			i.tracker.SetLabels(group.Label, op.Preview())

			// Once cancelled no call is made; the edit stays pending.
			if err := ctx.Err(); err != nil {
				msg := FormatError(group.Label, op.FieldName, err.Error())
				errs.Add(msg)
				i.tracker.AppendError(msg)
				i.tracker.Advance()
				continue
			}

			attempted = append(attempted, op.Change())
			if reason, ok := i.write(ctx, op); !ok {
				msg := FormatError(group.Label, op.FieldName, reason)
				errs.Add(msg)
				i.tracker.AppendError(msg)
				failed = append(failed, op.FieldName)
				log.Warn("field write failed", "entity", group.EntityKey, "field", op.FieldName, "reason", reason)
			}

			i.tracker.Advance()
			i.pause(ctx, i.policy.OpDelay)
		}

		// Failed writes are released too: the edit is dropped from the
		// pending set and the re-read shows the stored value.
		if len(failed) > 0 {
			log.Warn("dropping failed edits from pending changes", "entity", group.EntityKey, "fields", failed)
		}
		if len(attempted) < len(group.Operations) {
			log.Info("keeping unsent edits pending", "entity", group.EntityKey, "unsent", len(group.Operations)-len(attempted))
		}
		if len(attempted) > 0 {
			i.registry.Release(group.EntityKey, attempted)
		}

		if gi < len(plan.Groups)-1 {
			i.pause(ctx, i.policy.EntityDelay)
		}
	}

	status := domain.StatusCompleted
	if errs.Len() > 0 {
		status = domain.StatusError
	}
	i.tracker.Finish(status)
	log.Info("commit run finished", "status", status, "total", plan.Total, "errors", errs.Len())

	i.reconcile(ctx, log)
	return i.tracker.Snapshot()
}

// write issues exactly one single-field call. It returns the failure reason
// and false when the field was not persisted.
func (i *Interactor) write(ctx context.Context, op domain.CommitOperation) (string, bool) {
	callCtx := ctx
	if i.policy.CallTimeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, i.policy.CallTimeout)
		defer cancel()
	}

	res, err := i.writer.UpdateFields(callCtx, &contracts.WriteRequest{
		ID:       op.EntityID,
		CardType: op.EntityType,
		Fields:   map[string]string{op.FieldName: op.Value},
	})
	if err != nil {
		return err.Error(), false
	}
	if res == nil {
		return "empty response", false
	}
	if !res.Success {
		if res.Error == "" {
			return "unknown error", false
		}
		return res.Error, false
	}
	return "", true
}

func (i *Interactor) pause(ctx context.Context, d time.Duration) {
	if d <= 0 || ctx.Err() != nil {
		return
	}
	_ = i.clock.Sleep(ctx, d)
}

// reconcile always runs, on a context that survives cancellation of the run.
// Its outcome is always published so observers know the run is fully done.
func (i *Interactor) reconcile(ctx context.Context, log *logger.Logger) {
	rctx := context.WithoutCancel(ctx)
	if i.policy.CallTimeout > 0 {
		var cancel context.CancelFunc
		rctx, cancel = context.WithTimeout(rctx, i.policy.CallTimeout)
		defer cancel()
	}

	if err := i.reconciler.Finalize(rctx); err != nil {
		i.tracker.SetReconcileError(err.Error())
		log.Error("reconciliation failed", "error", err)
		return
	}
	i.tracker.SetReconcileError("")
}
