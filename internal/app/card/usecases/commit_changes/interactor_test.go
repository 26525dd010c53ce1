package commit_changes

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/light-bringer/cardsync-service/internal/app/card/contracts"
	"github.com/light-bringer/cardsync-service/internal/app/card/domain"
	"github.com/light-bringer/cardsync-service/internal/app/card/progress"
	"github.com/light-bringer/cardsync-service/internal/app/card/reconciler"
	"github.com/light-bringer/cardsync-service/internal/app/card/registry"
	"github.com/light-bringer/cardsync-service/internal/app/card/storetest"
	"github.com/light-bringer/cardsync-service/internal/pkg/clock"
	"github.com/light-bringer/cardsync-service/internal/pkg/logger"
)

type harness struct {
	registry *registry.Registry
	store    *storetest.FakeStore
	tracker  *progress.Tracker
	clock    *clock.MockClock
	uc       *Interactor
}

func newHarness(policy Backpressure) *harness {
	clk := clock.NewMockClock(time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC))
	reg := registry.New()
	store := storetest.New()
	tracker := progress.NewTracker(clk)
	rec := reconciler.New(store, clk, logger.NewNop())

	return &harness{
		registry: reg,
		store:    store,
		tracker:  tracker,
		clock:    clk,
		uc:       NewInteractor(reg, store, tracker, rec, clk, policy, logger.NewNop()),
	}
}

func (h *harness) register(key string, ct domain.CardType, id int64, label string, kv ...string) {
	var fields []domain.FieldChange
	for i := 0; i+1 < len(kv); i += 2 {
		fields = append(fields, domain.FieldChange{Name: kv[i], Value: kv[i+1]})
	}
	h.registry.Register(key, ct, id, fields, label)
}

func TestExecute_ScenarioA_OneEntityTwoFields(t *testing.T) {
	h := newHarness(DefaultBackpressure())
	h.register("work_1", domain.CardWorkExperience, 1, "Acme", "company_name", "Acme")
	h.register("work_1", domain.CardWorkExperience, 1, "", "year", "2024")

	snap := h.registry.Snapshot()
	require.Len(t, snap, 1)
	require.Len(t, snap[0].Fields, 2)

	state, err := h.uc.Execute(context.Background(), &Request{RunID: "run-a"})
	require.NoError(t, err)

	writes := h.store.Writes()
	require.Len(t, writes, 2)
	assert.Equal(t, contracts.WriteRequest{ID: 1, CardType: domain.CardWorkExperience, Fields: map[string]string{"company_name": "Acme"}}, writes[0])
	assert.Equal(t, contracts.WriteRequest{ID: 1, CardType: domain.CardWorkExperience, Fields: map[string]string{"year": "2024"}}, writes[1])

	assert.Equal(t, "run-a", state.RunID)
	assert.Equal(t, domain.StatusCompleted, state.Status)
	assert.Empty(t, state.Errors)
	assert.Equal(t, 2, state.Current)
	assert.Equal(t, 2, state.Total)
	assert.Equal(t, "1 card with 2 fields in total", state.Summary)
	assert.Empty(t, state.CurrentEntityLabel)
	assert.Empty(t, state.CurrentFieldLabel)

	assert.False(t, h.registry.HasPendingChanges())
	assert.Equal(t, []time.Duration{100 * time.Millisecond, 100 * time.Millisecond}, h.clock.Sleeps(), "no entity pause after the last card")
	assert.Equal(t, 1, h.store.Reads())
}

func TestExecute_EntityPauseOnlyBetweenCards(t *testing.T) {
	h := newHarness(Backpressure{EntityDelay: 200 * time.Millisecond})
	h.register("work_1", domain.CardWorkExperience, 1, "Acme", "company_name", "Acme")
	h.register("education_2", domain.CardEducation, 2, "MIT", "degree", "BSc")
	h.register("about_1", domain.CardAboutMe, 1, "Ada", "bio", "hi")

	_, err := h.uc.Execute(context.Background(), nil)
	require.NoError(t, err)

	assert.Equal(t, []time.Duration{200 * time.Millisecond, 200 * time.Millisecond}, h.clock.Sleeps())
}

func TestExecute_ScenarioB_FirstWriteFails(t *testing.T) {
	h := newHarness(NoDelay())
	h.register("work_1", domain.CardWorkExperience, 1, "Acme", "company_name", "Acme")
	h.register("education_2", domain.CardEducation, 2, "MIT", "degree", "BSc")
	h.store.FailCalls("row locked", 0)

	state, err := h.uc.Execute(context.Background(), nil)
	require.NoError(t, err)

	assert.Equal(t, domain.StatusError, state.Status)
	assert.Equal(t, []string{"Error in Acme - company_name: row locked"}, state.Errors)
	assert.Equal(t, 2, state.Current)
	assert.Equal(t, 2, state.Total)
	assert.Len(t, h.store.Writes(), 2)
	assert.NotEmpty(t, state.RunID)

	// failed entities are still cleared from the pending set
	assert.False(t, h.registry.HasPendingChanges())
}

func TestExecute_ScenarioC_EmptyRegistry(t *testing.T) {
	h := newHarness(DefaultBackpressure())

	state, err := h.uc.Execute(context.Background(), nil)
	require.NoError(t, err)

	assert.Equal(t, domain.StatusCompleted, state.Status)
	assert.Zero(t, state.Total)
	assert.Zero(t, state.Current)
	assert.Empty(t, h.store.Writes())
	assert.Equal(t, 1, h.store.Reads())
	assert.Empty(t, h.clock.Sleeps())
	assert.Equal(t, 0.0, state.PercentComplete())
}

func TestExecute_KFailuresGiveKErrors(t *testing.T) {
	for k := 0; k <= 3; k++ {
		t.Run(string(rune('0'+k))+" failures", func(t *testing.T) {
			h := newHarness(NoDelay())
			h.register("about_1", domain.CardAboutMe, 1, "Ada", "full_name", "Ada", "bio", "hi", "email", "a@b.c")

			calls := make([]int, k)
			for i := range calls {
				calls[i] = i
			}
			h.store.FailCalls("nope", calls...)

			state, err := h.uc.Execute(context.Background(), nil)
			require.NoError(t, err)

			assert.Len(t, state.Errors, k)
			assert.Equal(t, 3, state.Current)
			if k == 0 {
				assert.Equal(t, domain.StatusCompleted, state.Status)
			} else {
				assert.Equal(t, domain.StatusError, state.Status)
			}
		})
	}
}

func TestExecute_TransportErrorIsRecordedAndRunContinues(t *testing.T) {
	h := newHarness(NoDelay())
	h.register("project_3", domain.CardPortfolioProject, 3, "cardsync", "title", "cardsync", "url", "https://example.com")
	h.store.OnWrite(func(_ context.Context, call int, _ *contracts.WriteRequest) (*contracts.WriteResult, error) {
		if call == 0 {
			return nil, errors.New("dial tcp: connection refused")
		}
		return nil, nil
	})

	state, err := h.uc.Execute(context.Background(), nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"Error in cardsync - title: dial tcp: connection refused"}, state.Errors)
	assert.Len(t, h.store.Writes(), 2)
	assert.Equal(t, domain.StatusError, state.Status)
}

func TestExecute_EmptyFailureReasonGetsDefault(t *testing.T) {
	h := newHarness(NoDelay())
	h.register("about_1", domain.CardAboutMe, 1, "Ada", "bio", "x")
	h.store.FailCalls("", 0)

	state, err := h.uc.Execute(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"Error in Ada - bio: unknown error"}, state.Errors)
}

func TestExecute_EditsDuringRunSurvive(t *testing.T) {
	h := newHarness(NoDelay())
	h.register("work_1", domain.CardWorkExperience, 1, "Acme", "company_name", "Acme", "year", "2024")
	h.store.OnWrite(func(_ context.Context, call int, _ *contracts.WriteRequest) (*contracts.WriteResult, error) {
		if call == 0 {
			h.register("work_1", domain.CardWorkExperience, 1, "", "year", "2025")
			h.register("education_9", domain.CardEducation, 9, "", "degree", "PhD")
		}
		return nil, nil
	})

	state, err := h.uc.Execute(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, 2, state.Total, "later edits are not part of this run")

	writes := h.store.Writes()
	require.Len(t, writes, 2)
	assert.Equal(t, "2024", writes[1].Fields["year"])

	snap := h.registry.Snapshot()
	require.Len(t, snap, 2)
	assert.Equal(t, []domain.FieldChange{{Name: "year", Value: "2025"}}, snap[0].Fields)
	assert.Equal(t, "education_9", snap[1].EntityKey)
}

func TestExecute_ProgressLabels(t *testing.T) {
	h := newHarness(NoDelay())
	long := strings.Repeat("a", 40)
	h.register("project_3", domain.CardPortfolioProject, 3, "cardsync", "description", long)

	var labels [][2]string
	h.tracker.AddListener(func(e progress.Event) {
		if e.Kind == progress.EventOperation {
			labels = append(labels, [2]string{e.State.CurrentEntityLabel, e.State.CurrentFieldLabel})
		}
	})

	_, err := h.uc.Execute(context.Background(), nil)
	require.NoError(t, err)

	require.Len(t, labels, 1)
	assert.Equal(t, "cardsync", labels[0][0])
	assert.Equal(t, "description: "+strings.Repeat("a", 30)+"...", labels[0][1])
}

func TestExecute_CurrentIsMonotonic(t *testing.T) {
	h := newHarness(NoDelay())
	h.register("work_1", domain.CardWorkExperience, 1, "A", "year", "1", "position", "p")
	h.register("work_2", domain.CardWorkExperience, 2, "B", "year", "2")
	h.store.FailCalls("x", 1)

	var seen []int
	h.tracker.AddListener(func(e progress.Event) { seen = append(seen, e.State.Current) })

	_, err := h.uc.Execute(context.Background(), nil)
	require.NoError(t, err)

	for i := 1; i < len(seen); i++ {
		assert.GreaterOrEqual(t, seen[i], seen[i-1])
	}
	assert.Equal(t, 3, seen[len(seen)-1])
}

func TestExecute_CancellationRecordsRemainingOperations(t *testing.T) {
	h := newHarness(DefaultBackpressure())
	h.register("work_1", domain.CardWorkExperience, 1, "Acme", "company_name", "Acme", "year", "2024")
	h.register("education_2", domain.CardEducation, 2, "MIT", "degree", "BSc")

	ctx, cancel := context.WithCancel(context.Background())
	h.store.OnWrite(func(_ context.Context, call int, _ *contracts.WriteRequest) (*contracts.WriteResult, error) {
		if call == 0 {
			cancel()
		}
		return nil, nil
	})

	state, err := h.uc.Execute(ctx, nil)
	require.NoError(t, err)

	assert.Len(t, h.store.Writes(), 1)
	assert.Equal(t, []string{
		"Error in Acme - year: context canceled",
		"Error in MIT - degree: context canceled",
	}, state.Errors)
	assert.Equal(t, 3, state.Current)
	assert.Equal(t, 3, state.Total)
	assert.Equal(t, domain.StatusError, state.Status)
	assert.Equal(t, 1, h.store.Reads(), "reconciliation still runs")
	assert.Empty(t, h.clock.Sleeps(), "no pacing once cancelled")

	// only the sent field is released; unsent edits stay pending
	assert.True(t, h.registry.HasPendingChanges())
	work, ok := h.registry.Get("work_1")
	require.True(t, ok)
	assert.Equal(t, []domain.FieldChange{{Name: "year", Value: "2024"}}, work.Fields)
	edu, ok := h.registry.Get("education_2")
	require.True(t, ok)
	assert.Equal(t, []domain.FieldChange{{Name: "degree", Value: "BSc"}}, edu.Fields)

	// the next run sends exactly the edits that were left
	state, err = h.uc.Execute(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, state.Status)
	assert.Equal(t, 2, state.Total)
	assert.Len(t, h.store.Writes(), 3)
	assert.False(t, h.registry.HasPendingChanges())
}

func TestExecute_CallTimeout(t *testing.T) {
	h := newHarness(Backpressure{CallTimeout: 20 * time.Millisecond})
	h.register("about_1", domain.CardAboutMe, 1, "Ada", "bio", "hi")
	h.store.OnWrite(func(ctx context.Context, _ int, _ *contracts.WriteRequest) (*contracts.WriteResult, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})

	state, err := h.uc.Execute(context.Background(), nil)
	require.NoError(t, err)

	require.Len(t, state.Errors, 1)
	assert.Equal(t, "Error in Ada - bio: context deadline exceeded", state.Errors[0])
}

func TestExecute_ReconcileFailureIsSeparate(t *testing.T) {
	h := newHarness(NoDelay())
	h.register("about_1", domain.CardAboutMe, 1, "Ada", "bio", "hi")
	h.store.SetReadFailure("database offline")

	state, err := h.uc.Execute(context.Background(), nil)
	require.NoError(t, err)

	assert.Equal(t, domain.StatusCompleted, state.Status)
	assert.Empty(t, state.Errors)
	assert.Contains(t, state.ReconcileError, "database offline")
}

func TestInteractor_OnlyOneRunAtATime(t *testing.T) {
	h := newHarness(NoDelay())
	h.register("about_1", domain.CardAboutMe, 1, "Ada", "bio", "hi")

	entered := make(chan struct{})
	unblock := make(chan struct{})
	h.store.OnWrite(func(context.Context, int, *contracts.WriteRequest) (*contracts.WriteResult, error) {
		close(entered)
		<-unblock
		return nil, nil
	})

	runID, err := h.uc.Start(context.Background(), nil)
	require.NoError(t, err)
	assert.NotEmpty(t, runID)
	<-entered

	assert.True(t, h.uc.Running())
	_, err = h.uc.Execute(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrCommitInProgress)
	_, err = h.uc.Start(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrCommitInProgress)
	assert.ErrorIs(t, h.uc.Reset(), domain.ErrCommitInProgress)

	close(unblock)
	h.uc.Wait()

	assert.False(t, h.uc.Running())
	state := h.tracker.Snapshot()
	assert.Equal(t, runID, state.RunID)
	assert.Equal(t, domain.StatusCompleted, state.Status)

	require.NoError(t, h.uc.Reset())
	assert.Equal(t, domain.StatusIdle, h.tracker.Snapshot().Status)
}

func TestInteractor_CancelBackgroundRun(t *testing.T) {
	h := newHarness(NoDelay())
	h.register("about_1", domain.CardAboutMe, 1, "Ada", "bio", "hi", "email", "a@b.c")

	entered := make(chan struct{})
	h.store.OnWrite(func(ctx context.Context, call int, _ *contracts.WriteRequest) (*contracts.WriteResult, error) {
		if call == 0 {
			close(entered)
			<-ctx.Done()
			return nil, ctx.Err()
		}
		return nil, nil
	})

	_, err := h.uc.Start(context.Background(), nil)
	require.NoError(t, err)
	<-entered

	require.NoError(t, h.uc.Cancel())
	h.uc.Wait()

	state := h.tracker.Snapshot()
	assert.Equal(t, domain.StatusError, state.Status)
	assert.Len(t, state.Errors, 2)
	assert.Equal(t, 2, state.Current)
	assert.ErrorIs(t, h.uc.Cancel(), domain.ErrNoActiveRun)
}

func TestFormatError(t *testing.T) {
	assert.Equal(t, "Error in Acme - year: boom", FormatError("Acme", "year", "boom"))
}
