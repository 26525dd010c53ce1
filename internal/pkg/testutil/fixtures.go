package testutil

import (
	"context"
	"testing"
	"time"

	"cloud.google.com/go/spanner"
	"github.com/stretchr/testify/require"

	"github.com/light-bringer/cardsync-service/internal/models/m_about_me"
	"github.com/light-bringer/cardsync-service/internal/models/m_education"
	"github.com/light-bringer/cardsync-service/internal/models/m_outbox"
	"github.com/light-bringer/cardsync-service/internal/models/m_portfolio_project"
	"github.com/light-bringer/cardsync-service/internal/models/m_work_experience"
)

func apply(t *testing.T, client *spanner.Client, mut *spanner.Mutation) {
	t.Helper()
	_, err := client.Apply(context.Background(), []*spanner.Mutation{mut})
	require.NoError(t, err, "failed to apply fixture")
}

// CreateWorkExperience inserts a work-experience row.
func CreateWorkExperience(t *testing.T, client *spanner.Client, id int64, company string, sortOrder int64) {
	t.Helper()
	now := time.Now()
	apply(t, client, m_work_experience.NewModel().InsertMut(&m_work_experience.Data{
		ID:          id,
		CompanyName: company,
		Position:    "Engineer",
		Year:        "2020",
		SortOrder:   sortOrder,
		CreatedAt:   now,
		UpdatedAt:   now,
	}))
}

// CreateEducation inserts an education row.
func CreateEducation(t *testing.T, client *spanner.Client, id int64, institution string) {
	t.Helper()
	now := time.Now()
	apply(t, client, m_education.NewModel().InsertMut(&m_education.Data{
		ID:          id,
		Institution: institution,
		Degree:      "BSc",
		CreatedAt:   now,
		UpdatedAt:   now,
	}))
}

// CreatePortfolioProject inserts a project row.
func CreatePortfolioProject(t *testing.T, client *spanner.Client, id int64, title string) {
	t.Helper()
	now := time.Now()
	apply(t, client, m_portfolio_project.NewModel().InsertMut(&m_portfolio_project.Data{
		ID:        id,
		Title:     title,
		CreatedAt: now,
		UpdatedAt: now,
	}))
}

// CreateAboutMe inserts the profile row.
func CreateAboutMe(t *testing.T, client *spanner.Client, id int64, fullName string) {
	t.Helper()
	now := time.Now()
	apply(t, client, m_about_me.NewModel().InsertMut(&m_about_me.Data{
		ID:        id,
		FullName:  fullName,
		CreatedAt: now,
		UpdatedAt: now,
	}))
}

// GetWorkExperience reads one work-experience row back.
func GetWorkExperience(t *testing.T, client *spanner.Client, id int64) *m_work_experience.Data {
	t.Helper()

	row, err := client.Single().ReadRow(context.Background(), m_work_experience.TableName, spanner.Key{id}, m_work_experience.ReadColumns())
	require.NoError(t, err, "failed to read work experience")

	var data m_work_experience.Data
	require.NoError(t, row.ToStruct(&data))
	return &data
}

// GetOutboxEvent reads one outbox event back.
func GetOutboxEvent(t *testing.T, client *spanner.Client, eventID string) *m_outbox.Data {
	t.Helper()

	row, err := client.Single().ReadRow(context.Background(), m_outbox.TableName, spanner.Key{eventID}, m_outbox.ReadColumns())
	require.NoError(t, err, "failed to read outbox event")

	var data m_outbox.Data
	require.NoError(t, row.ToStruct(&data))
	return &data
}
