package m_about_me

import "time"

// Data represents the database model for the about_me table.
type Data struct {
	ID        int64     `spanner:"id"`
	FullName  string    `spanner:"full_name"`
	Headline  string    `spanner:"headline"`
	Bio       string    `spanner:"bio"`
	Email     string    `spanner:"email"`
	Location  string    `spanner:"location"`
	AvatarURL string    `spanner:"avatar_url"`
	CreatedAt time.Time `spanner:"created_at"`
	UpdatedAt time.Time `spanner:"updated_at"`
}
