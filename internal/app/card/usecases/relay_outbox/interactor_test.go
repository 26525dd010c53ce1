package relay_outbox

import (
	"context"
	"errors"
	"testing"
	"time"

	"cloud.google.com/go/spanner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/light-bringer/cardsync-service/internal/models/m_outbox"
	"github.com/light-bringer/cardsync-service/internal/pkg/clock"
	"github.com/light-bringer/cardsync-service/internal/pkg/committer"
	"github.com/light-bringer/cardsync-service/internal/pkg/logger"
)

type fakeSource struct {
	events []*m_outbox.Data
	err    error
	limits []int
}

func (f *fakeSource) PendingEvents(_ context.Context, limit int) ([]*m_outbox.Data, error) {
	f.limits = append(f.limits, limit)
	return f.events, f.err
}

type fakePublisher struct {
	fail      map[string]bool
	published []string
}

func (f *fakePublisher) Publish(_ context.Context, event *m_outbox.Data) error {
	if f.fail[event.EventID] {
		return errors.New("broker down")
	}
	f.published = append(f.published, event.EventID)
	return nil
}

type markCall struct {
	eventID   string
	completed bool
	retries   int64
	errMsg    string
}

type fakeMarker struct {
	calls []markCall
}

func (f *fakeMarker) CompletedMut(eventID string) *spanner.Mutation {
	f.calls = append(f.calls, markCall{eventID: eventID, completed: true})
	return m_outbox.NewModel().CompletedMut(eventID)
}

func (f *fakeMarker) RetryMut(eventID string, retryCount int64, errMsg string) *spanner.Mutation {
	f.calls = append(f.calls, markCall{eventID: eventID, retries: retryCount, errMsg: errMsg})
	return m_outbox.NewModel().RetryMut(eventID, retryCount, errMsg)
}

type fakeApplier struct {
	plans []*committer.CommitPlan
	err   error
}

func (f *fakeApplier) Apply(_ context.Context, plan *committer.CommitPlan) error {
	f.plans = append(f.plans, plan)
	return f.err
}

func newInteractor(src *fakeSource, pub *fakePublisher, marker *fakeMarker, app *fakeApplier, clk clock.Clock) *Interactor {
	return NewInteractor(src, pub, marker, app, clk, logger.NewNop())
}

func TestInteractor_Execute(t *testing.T) {
	src := &fakeSource{events: []*m_outbox.Data{
		{EventID: "e1"},
		{EventID: "e2", RetryCount: 2},
		{EventID: "e3"},
	}}
	pub := &fakePublisher{fail: map[string]bool{"e2": true}}
	marker := &fakeMarker{}
	app := &fakeApplier{}

	resp, err := newInteractor(src, pub, marker, app, clock.NewMockClock(time.Now())).Execute(context.Background(), &Request{})
	require.NoError(t, err)

	assert.Equal(t, 2, resp.Published)
	assert.Equal(t, 1, resp.Failed)
	assert.Equal(t, []int{defaultBatchSize}, src.limits)
	assert.Equal(t, []string{"e1", "e3"}, pub.published)
	assert.Equal(t, []markCall{
		{eventID: "e1", completed: true},
		{eventID: "e2", retries: 3, errMsg: "broker down"},
		{eventID: "e3", completed: true},
	}, marker.calls)

	require.Len(t, app.plans, 1)
	assert.Equal(t, 3, app.plans[0].Count())
}

func TestInteractor_Execute_Errors(t *testing.T) {
	t.Run("source failure", func(t *testing.T) {
		src := &fakeSource{err: errors.New("spanner down")}
		app := &fakeApplier{}

		_, err := newInteractor(src, &fakePublisher{}, &fakeMarker{}, app, clock.NewMockClock(time.Now())).Execute(context.Background(), &Request{BatchSize: 5})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "spanner down")
		assert.Empty(t, app.plans)
	})

	t.Run("apply failure keeps counts", func(t *testing.T) {
		src := &fakeSource{events: []*m_outbox.Data{{EventID: "e1"}}}
		app := &fakeApplier{err: errors.New("aborted")}

		resp, err := newInteractor(src, &fakePublisher{}, &fakeMarker{}, app, clock.NewMockClock(time.Now())).Execute(context.Background(), &Request{})
		require.Error(t, err)
		assert.Equal(t, 1, resp.Published)
	})
}

func TestInteractor_Run_StopsOnCancel(t *testing.T) {
	src := &fakeSource{}
	ctx, cancel := context.WithCancel(context.Background())
	clk := &cancelAfterClock{MockClock: clock.NewMockClock(time.Now()), after: 2, cancel: cancel}

	newInteractor(src, &fakePublisher{}, &fakeMarker{}, &fakeApplier{}, clk).Run(ctx, time.Second, &Request{})

	assert.Len(t, src.limits, 2)
}

// cancelAfterClock cancels the run loop after a number of sleeps.
type cancelAfterClock struct {
	*clock.MockClock
	after  int
	cancel context.CancelFunc
}

func (c *cancelAfterClock) Sleep(ctx context.Context, d time.Duration) error {
	if len(c.Sleeps())+1 >= c.after {
		c.cancel()
	}
	return c.MockClock.Sleep(ctx, d)
}
