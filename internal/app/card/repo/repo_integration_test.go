//go:build integration

package repo

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/light-bringer/cardsync-service/internal/app/card/contracts"
	"github.com/light-bringer/cardsync-service/internal/app/card/domain"
	"github.com/light-bringer/cardsync-service/internal/app/card/queries/list_events"
	"github.com/light-bringer/cardsync-service/internal/models/m_outbox"
	"github.com/light-bringer/cardsync-service/internal/pkg/clock"
	"github.com/light-bringer/cardsync-service/internal/pkg/committer"
	"github.com/light-bringer/cardsync-service/internal/pkg/testutil"
)

func TestCardRepo_UpdateFields_Integration(t *testing.T) {
	client, cleanup := testutil.SetupSpannerTest(t)
	defer cleanup()

	ctx := context.Background()
	r := NewCardRepo(committer.NewCommitter(client), NewOutboxRepo(), clock.NewMockClock(time.Now()))

	testutil.CreateWorkExperience(t, client, 1, "Acme", 0)

	t.Run("updates row and writes outbox event", func(t *testing.T) {
		res, err := r.UpdateFields(ctx, &contracts.WriteRequest{
			ID:       1,
			CardType: domain.CardWorkExperience,
			Fields:   map[string]string{"company_name": "Globex", "sort_order": "3"},
		})
		require.NoError(t, err)
		assert.True(t, res.Success)

		row := testutil.GetWorkExperience(t, client, 1)
		assert.Equal(t, "Globex", row.CompanyName)
		assert.Equal(t, int64(3), row.SortOrder)
		assert.Equal(t, "Engineer", row.Position)

		testutil.AssertRowCount(t, client, m_outbox.TableName, 1)
	})

	t.Run("missing row is unsuccessful and writes nothing", func(t *testing.T) {
		res, err := r.UpdateFields(ctx, &contracts.WriteRequest{
			ID:       99,
			CardType: domain.CardWorkExperience,
			Fields:   map[string]string{"company_name": "Nobody"},
		})
		require.NoError(t, err)
		assert.False(t, res.Success)
		assert.Equal(t, "card not found: work_experience 99", res.Error)

		testutil.AssertRowCount(t, client, m_outbox.TableName, 1)
		testutil.AssertRowCount(t, client, "work_experience", 1)
	})
}

func TestReadModel_LoadAll_Integration(t *testing.T) {
	client, cleanup := testutil.SetupSpannerTest(t)
	defer cleanup()

	testutil.CreateWorkExperience(t, client, 1, "Second", 2)
	testutil.CreateWorkExperience(t, client, 2, "First", 1)
	testutil.CreateEducation(t, client, 1, "MIT")
	testutil.CreateAboutMe(t, client, 1, "Ada Lovelace")

	res, err := NewReadModel(client).LoadAll(context.Background())
	require.NoError(t, err)
	require.True(t, res.Success)

	cards := res.Data
	require.Len(t, cards.WorkExperience, 2)
	assert.Equal(t, "First", cards.WorkExperience[0].CompanyName)
	assert.Equal(t, "Second", cards.WorkExperience[1].CompanyName)
	assert.Len(t, cards.Education, 1)
	assert.Empty(t, cards.PortfolioProjects)
	require.NotNil(t, cards.AboutMe)
	assert.Equal(t, "Ada Lovelace", cards.AboutMe.FullName)
}

func TestEventsReadModel_Integration(t *testing.T) {
	client, cleanup := testutil.SetupSpannerTest(t)
	defer cleanup()

	ctx := context.Background()
	r := NewCardRepo(committer.NewCommitter(client), NewOutboxRepo(), clock.NewMockClock(time.Now()))

	testutil.CreateWorkExperience(t, client, 1, "Acme", 0)
	testutil.CreateAboutMe(t, client, 1, "Ada")

	for _, req := range []*contracts.WriteRequest{
		{ID: 1, CardType: domain.CardWorkExperience, Fields: map[string]string{"position": "Lead"}},
		{ID: 1, CardType: domain.CardWorkExperience, Fields: map[string]string{"year": "2024"}},
		{ID: 1, CardType: domain.CardAboutMe, Fields: map[string]string{"bio": "hello"}},
	} {
		res, err := r.UpdateFields(ctx, req)
		require.NoError(t, err)
		require.True(t, res.Success)
	}

	rm := NewEventsReadModel(client)

	t.Run("filter by aggregate", func(t *testing.T) {
		key := "work_1"
		events, total, err := rm.ListEvents(ctx, &list_events.Request{AggregateID: &key, Limit: 10})
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
		assert.Len(t, events, 2)
		for _, e := range events {
			assert.Equal(t, domain.EventCardFieldsUpdated, e.EventType)
		}
	})

	t.Run("limit does not change total", func(t *testing.T) {
		events, total, err := rm.ListEvents(ctx, &list_events.Request{Limit: 1})
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
		assert.Len(t, events, 1)
	})

	t.Run("pending events oldest first", func(t *testing.T) {
		events, err := rm.PendingEvents(ctx, 10)
		require.NoError(t, err)
		require.Len(t, events, 3)
		assert.False(t, events[0].CreatedAt.After(events[2].CreatedAt))
	})
}
