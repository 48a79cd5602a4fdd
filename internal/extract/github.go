package extract

import (
	"encoding/json"
	"fmt"
	"net/url"
	"slices"
	"strings"

	"github.com/nao1215/harvey/internal/model"
)

// GitHubUser is the subset of the GitHub users API payload the tool uses.
type GitHubUser struct {
	Login       string `json:"login"`
	Name        string `json:"name"`
	Bio         string `json:"bio"`
	Blog        string `json:"blog"`
	Company     string `json:"company"`
	Location    string `json:"location"`
	Email       string `json:"email"`
	HTMLURL     string `json:"html_url"`
	PublicRepos int    `json:"public_repos"`
	Followers   int    `json:"followers"`
	Following   int    `json:"following"`
}

type gitHubRepo struct {
	Name        string `json:"name"`
	HTMLURL     string `json:"html_url"`
	Description string `json:"description"`
	Language    string `json:"language"`
	Stars       int    `json:"stargazers_count"`
}

type gitHubSearch struct {
	TotalCount int `json:"total_count"`
	Items      []struct {
		Login string `json:"login"`
	} `json:"items"`
}

// ParseGitHubUser decodes a GET /users/{username} payload.
func ParseGitHubUser(data []byte) (GitHubUser, error) {
	var u GitHubUser
	if err := json.Unmarshal(data, &u); err != nil {
		return GitHubUser{}, fmt.Errorf("failed to parse github user: %w", err)
	}
	if u.Login == "" {
		return GitHubUser{}, fmt.Errorf("failed to parse github user: missing login")
	}
	return u, nil
}

// ParseGitHubRepos decodes a GET /users/{username}/repos payload.
func ParseGitHubRepos(data []byte) ([]model.Repository, error) {
	var raw []gitHubRepo
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse github repos: %w", err)
	}
	repos := make([]model.Repository, 0, len(raw))
	for _, r := range raw {
		repos = append(repos, model.Repository{
			Name:        r.Name,
			URL:         r.HTMLURL,
			Description: r.Description,
			Language:    r.Language,
			Stars:       r.Stars,
		})
	}
	return repos, nil
}

// ParseGitHubSearch decodes a GET /search/users payload and returns the
// login of the best match, or "" when there is none.
func ParseGitHubSearch(data []byte) (string, error) {
	var s gitHubSearch
	if err := json.Unmarshal(data, &s); err != nil {
		return "", fmt.Errorf("failed to parse github search: %w", err)
	}
	if len(s.Items) == 0 {
		return "", nil
	}
	return s.Items[0].Login, nil
}

// GitHubLogin extracts a username from a hint that is either a bare login
// ("octocat", "@octocat") or a profile URL ("https://github.com/octocat").
func GitHubLogin(hint string) string {
	hint = strings.TrimSpace(hint)
	if i := strings.Index(strings.ToLower(hint), "github.com/"); i >= 0 {
		rest := hint[i+len("github.com/"):]
		if u, err := url.Parse("https://github.com/" + rest); err == nil {
			rest = u.Path
		}
		rest = strings.Trim(rest, "/")
		login, _, _ := strings.Cut(rest, "/")
		return login
	}
	return strings.TrimPrefix(hint, "@")
}

// NewGitHubProfile assembles a GitHubProfile. Repositories are ordered by
// star count (highest first, ties keep API order) and cut to maxRepos when
// maxRepos is positive. The LinkedIn URL and email are searched for across
// the profile fields, every repository description, and extra texts such as
// READMEs and the rendered profile page.
func NewGitHubProfile(user GitHubUser, repos []model.Repository, maxRepos int, extra ...string) *model.GitHubProfile {
	sorted := slices.Clone(repos)
	slices.SortStableFunc(sorted, func(a, b model.Repository) int {
		return b.Stars - a.Stars
	})

	surface := []string{user.Bio, user.Blog, user.Company, user.Email}
	for _, r := range sorted {
		surface = append(surface, r.Description)
	}
	surface = append(surface, extra...)
	text := strings.Join(surface, "\n")

	if maxRepos > 0 && len(sorted) > maxRepos {
		sorted = sorted[:maxRepos]
	}

	profileURL := user.HTMLURL
	if profileURL == "" {
		profileURL = "https://github.com/" + user.Login
	}

	return &model.GitHubProfile{
		Username:        user.Login,
		DisplayName:     collapseSpace(user.Name),
		Bio:             strings.TrimSpace(user.Bio),
		Blog:            strings.TrimSpace(user.Blog),
		Company:         strings.TrimSpace(user.Company),
		Location:        strings.TrimSpace(user.Location),
		ProfileURL:      profileURL,
		PublicRepos:     user.PublicRepos,
		Followers:       user.Followers,
		Following:       user.Following,
		TopRepos:        sorted,
		LinkedInFromBio: FindLinkedInURL(text),
		EmailFromBio:    FindEmail(text),
	}
}
