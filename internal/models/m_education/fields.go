package m_education

// Field name constants for the education table.
const (
	TableName = "education"

	ID           = "id"
	Institution  = "institution"
	Degree       = "degree"
	FieldOfStudy = "field_of_study"
	Year         = "year"
	Description  = "description"
	SortOrder    = "sort_order"
	CreatedAt    = "created_at"
	UpdatedAt    = "updated_at"
)

// ReadColumns lists the columns scanned into Data, in struct order.
func ReadColumns() []string {
	return []string{ID, Institution, Degree, FieldOfStudy, Year, Description, SortOrder, CreatedAt, UpdatedAt}
}
