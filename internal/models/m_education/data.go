package m_education

import "time"

// Data represents the database model for the education table.
type Data struct {
	ID           int64     `spanner:"id"`
	Institution  string    `spanner:"institution"`
	Degree       string    `spanner:"degree"`
	FieldOfStudy string    `spanner:"field_of_study"`
	Year         string    `spanner:"year"`
	Description  string    `spanner:"description"`
	SortOrder    int64     `spanner:"sort_order"`
	CreatedAt    time.Time `spanner:"created_at"`
	UpdatedAt    time.Time `spanner:"updated_at"`
}
