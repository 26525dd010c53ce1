package m_work_experience

// Field name constants for the work_experience table. Editable column names
// match the card field names.
const (
	TableName = "work_experience"

	ID           = "id"
	CompanyName  = "company_name"
	Position     = "position"
	Year         = "year"
	Location     = "location"
	Description  = "description"
	Technologies = "technologies"
	SortOrder    = "sort_order"
	CreatedAt    = "created_at"
	UpdatedAt    = "updated_at"
)

// ReadColumns lists the columns scanned into Data, in struct order.
func ReadColumns() []string {
	return []string{ID, CompanyName, Position, Year, Location, Description, Technologies, SortOrder, CreatedAt, UpdatedAt}
}
