package model

// Repository is a public GitHub repository summary.
type Repository struct {
	Name        string `json:"name"`
	URL         string `json:"url"`
	Description string `json:"description,omitempty"`
	Language    string `json:"language,omitempty"`
	Stars       int    `json:"stars"`
}

// GitHubProfile is the GitHub account data gathered for a target.
// It is created once per lookup and not modified afterwards.
type GitHubProfile struct {
	Username    string `json:"username"`
	DisplayName string `json:"display_name,omitempty"`
	Bio         string `json:"bio,omitempty"`
	Blog        string `json:"blog,omitempty"`
	Company     string `json:"company,omitempty"`
	Location    string `json:"location,omitempty"`
	ProfileURL  string `json:"profile_url,omitempty"`
	PublicRepos int    `json:"public_repos"`
	Followers   int    `json:"followers"`
	Following   int    `json:"following"`

	// TopRepos is ordered by star count, highest first.
	TopRepos []Repository `json:"top_repos,omitempty"`

	// LinkedInFromBio is a LinkedIn URL found anywhere on the profile's
	// textual surface (bio, blog, company, READMEs, repository descriptions,
	// profile page).
	LinkedInFromBio string `json:"linkedin_from_bio,omitempty"`

	// EmailFromBio is an email address found on the same surface.
	EmailFromBio string `json:"email_from_bio,omitempty"`
}

// Record converts the profile into a CandidateRecord so it can be listed
// alongside the LinkedIn records.
func (p *GitHubProfile) Record() CandidateRecord {
	return CandidateRecord{
		Source:    SourceGitHubProfile,
		Origin:    OriginGitHubAPI,
		URL:       p.ProfileURL,
		FullName:  p.DisplayName,
		AboutText: p.Bio,
	}
}
