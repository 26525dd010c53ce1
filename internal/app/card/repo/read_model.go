package repo

import (
	"context"
	"fmt"

	"cloud.google.com/go/spanner"
	"golang.org/x/sync/errgroup"
	"google.golang.org/api/iterator"

	"github.com/light-bringer/cardsync-service/internal/app/card/contracts"
	"github.com/light-bringer/cardsync-service/internal/app/card/domain"
	"github.com/light-bringer/cardsync-service/internal/models/m_about_me"
	"github.com/light-bringer/cardsync-service/internal/models/m_education"
	"github.com/light-bringer/cardsync-service/internal/models/m_portfolio_project"
	"github.com/light-bringer/cardsync-service/internal/models/m_work_experience"
	"github.com/light-bringer/cardsync-service/internal/pkg/query"
)

// ReadModel is the Spanner implementation of the read contract.
type ReadModel struct {
	client *spanner.Client
}

// NewReadModel creates a new ReadModel.
func NewReadModel(client *spanner.Client) *ReadModel {
	return &ReadModel{
		client: client,
	}
}

// CardQueries returns the statements LoadAll runs, keyed by table.
func CardQueries() map[string]spanner.Statement {
	sorted := func(table string, cols []string) spanner.Statement {
		return query.From(table).
			Select(cols...).
			OrderBy("sort_order", query.Asc).
			ThenBy("id", query.Asc).
			Build()
	}

	return map[string]spanner.Statement{
		m_work_experience.TableName:   sorted(m_work_experience.TableName, m_work_experience.ReadColumns()),
		m_education.TableName:         sorted(m_education.TableName, m_education.ReadColumns()),
		m_portfolio_project.TableName: sorted(m_portfolio_project.TableName, m_portfolio_project.ReadColumns()),
		m_about_me.TableName: query.From(m_about_me.TableName).
			Select(m_about_me.ReadColumns()...).
			OrderBy(m_about_me.ID, query.Asc).
			Limit(1).
			Build(),
	}
}

// LoadAll reads the four card tables concurrently from one snapshot.
func (rm *ReadModel) LoadAll(ctx context.Context) (*contracts.ReadResult, error) {
	stmts := CardQueries()

	txn := rm.client.ReadOnlyTransaction()
	defer txn.Close()

	var (
		work     []domain.WorkExperience
		edu      []domain.Education
		projects []domain.PortfolioProject
		about    []domain.AboutMe
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return scanRows(txn.Query(gctx, stmts[m_work_experience.TableName]), func(d *m_work_experience.Data) {
			work = append(work, workToDomain(d))
		})
	})
	g.Go(func() error {
		return scanRows(txn.Query(gctx, stmts[m_education.TableName]), func(d *m_education.Data) {
			edu = append(edu, educationToDomain(d))
		})
	})
	g.Go(func() error {
		return scanRows(txn.Query(gctx, stmts[m_portfolio_project.TableName]), func(d *m_portfolio_project.Data) {
			projects = append(projects, projectToDomain(d))
		})
	})
	g.Go(func() error {
		return scanRows(txn.Query(gctx, stmts[m_about_me.TableName]), func(d *m_about_me.Data) {
			about = append(about, aboutToDomain(d))
		})
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to load cards: %w", err)
	}

	cards := &domain.CardSet{
		WorkExperience:    nonNil(work),
		PortfolioProjects: nonNil(projects),
		Education:         nonNil(edu),
	}
	if len(about) > 0 {
		cards.AboutMe = &about[0]
	}

	return &contracts.ReadResult{Success: true, Data: cards}, nil
}

func scanRows[T any](iter *spanner.RowIterator, fn func(*T)) error {
	defer iter.Stop()
	for {
		row, err := iter.Next()
		if err == iterator.Done {
			return nil
		}
		if err != nil {
			return err
		}
		var data T
		if err := row.ToStruct(&data); err != nil {
			return err
		}
		fn(&data)
	}
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

func workToDomain(d *m_work_experience.Data) domain.WorkExperience {
	return domain.WorkExperience{
		ID:           d.ID,
		CompanyName:  d.CompanyName,
		Position:     d.Position,
		Year:         d.Year,
		Location:     d.Location,
		Description:  d.Description,
		Technologies: d.Technologies,
		SortOrder:    d.SortOrder,
		UpdatedAt:    d.UpdatedAt,
	}
}

func educationToDomain(d *m_education.Data) domain.Education {
	return domain.Education{
		ID:           d.ID,
		Institution:  d.Institution,
		Degree:       d.Degree,
		FieldOfStudy: d.FieldOfStudy,
		Year:         d.Year,
		Description:  d.Description,
		SortOrder:    d.SortOrder,
		UpdatedAt:    d.UpdatedAt,
	}
}

func projectToDomain(d *m_portfolio_project.Data) domain.PortfolioProject {
	return domain.PortfolioProject{
		ID:            d.ID,
		Title:         d.Title,
		Description:   d.Description,
		URL:           d.URL,
		RepositoryURL: d.RepositoryURL,
		ImageURL:      d.ImageURL,
		Technologies:  d.Technologies,
		SortOrder:     d.SortOrder,
		UpdatedAt:     d.UpdatedAt,
	}
}

func aboutToDomain(d *m_about_me.Data) domain.AboutMe {
	return domain.AboutMe{
		ID:        d.ID,
		FullName:  d.FullName,
		Headline:  d.Headline,
		Bio:       d.Bio,
		Email:     d.Email,
		Location:  d.Location,
		AvatarURL: d.AvatarURL,
		UpdatedAt: d.UpdatedAt,
	}
}
