package m_portfolio_project

// Field name constants for the portfolio_projects table.
const (
	TableName = "portfolio_projects"

	ID            = "id"
	Title         = "title"
	Description   = "description"
	URL           = "url"
	RepositoryURL = "repository_url"
	ImageURL      = "image_url"
	Technologies  = "technologies"
	SortOrder     = "sort_order"
	CreatedAt     = "created_at"
	UpdatedAt     = "updated_at"
)

// ReadColumns lists the columns scanned into Data, in struct order.
func ReadColumns() []string {
	return []string{ID, Title, Description, URL, RepositoryURL, ImageURL, Technologies, SortOrder, CreatedAt, UpdatedAt}
}
