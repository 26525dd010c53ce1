package m_work_experience

import "time"

// Data represents the database model for the work_experience table.
type Data struct {
	ID           int64     `spanner:"id"`
	CompanyName  string    `spanner:"company_name"`
	Position     string    `spanner:"position"`
	Year         string    `spanner:"year"`
	Location     string    `spanner:"location"`
	Description  string    `spanner:"description"`
	Technologies string    `spanner:"technologies"`
	SortOrder    int64     `spanner:"sort_order"`
	CreatedAt    time.Time `spanner:"created_at"`
	UpdatedAt    time.Time `spanner:"updated_at"`
}
