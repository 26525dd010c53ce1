package m_portfolio_project

import "time"

// Data represents the database model for the portfolio_projects table.
type Data struct {
	ID            int64     `spanner:"id"`
	Title         string    `spanner:"title"`
	Description   string    `spanner:"description"`
	URL           string    `spanner:"url"`
	RepositoryURL string    `spanner:"repository_url"`
	ImageURL      string    `spanner:"image_url"`
	Technologies  string    `spanner:"technologies"`
	SortOrder     int64     `spanner:"sort_order"`
	CreatedAt     time.Time `spanner:"created_at"`
	UpdatedAt     time.Time `spanner:"updated_at"`
}
