package domain

import "time"

// WorkExperience is one row of the work-experience timeline.
type WorkExperience struct {
	ID           int64     `json:"id"`
	CompanyName  string    `json:"companyName"`
	Position     string    `json:"position"`
	Year         string    `json:"year"`
	Location     string    `json:"location"`
	Description  string    `json:"description"`
	Technologies string    `json:"technologies"`
	SortOrder    int64     `json:"sortOrder"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Education is one education entry.
type Education struct {
	ID           int64     `json:"id"`
	Institution  string    `json:"institution"`
	Degree       string    `json:"degree"`
	FieldOfStudy string    `json:"fieldOfStudy"`
	Year         string    `json:"year"`
	Description  string    `json:"description"`
	SortOrder    int64     `json:"sortOrder"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// PortfolioProject is one showcased project.
type PortfolioProject struct {
	ID            int64     `json:"id"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	URL           string    `json:"url"`
	RepositoryURL string    `json:"repositoryUrl"`
	ImageURL      string    `json:"imageUrl"`
	Technologies  string    `json:"technologies"`
	SortOrder     int64     `json:"sortOrder"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// AboutMe is the single profile card.
type AboutMe struct {
	ID        int64     `json:"id"`
	FullName  string    `json:"fullName"`
	Headline  string    `json:"headline"`
	Bio       string    `json:"bio"`
	Email     string    `json:"email"`
	Location  string    `json:"location"`
	AvatarURL string    `json:"avatarUrl"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// CardSet is the authoritative set of cards returned by the read contract.
type CardSet struct {
	AboutMe           *AboutMe           `json:"aboutMe"`
	WorkExperience    []WorkExperience   `json:"workExperience"`
	PortfolioProjects []PortfolioProject `json:"portfolioProjects"`
	Education         []Education        `json:"education"`
}

// Count returns how many cards the set holds.
func (cs *CardSet) Count() int {
	if cs == nil {
		return 0
	}
	n := len(cs.WorkExperience) + len(cs.PortfolioProjects) + len(cs.Education)
	if cs.AboutMe != nil {
		n++
	}
	return n
}
