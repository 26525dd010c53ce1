package m_about_me

// Field name constants for the about_me table.
const (
	TableName = "about_me"

	ID        = "id"
	FullName  = "full_name"
	Headline  = "headline"
	Bio       = "bio"
	Email     = "email"
	Location  = "location"
	AvatarURL = "avatar_url"
	CreatedAt = "created_at"
	UpdatedAt = "updated_at"
)

// ReadColumns lists the columns scanned into Data, in struct order.
func ReadColumns() []string {
	return []string{ID, FullName, Headline, Bio, Email, Location, AvatarURL, CreatedAt, UpdatedAt}
}
