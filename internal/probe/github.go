package probe

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/nao1215/harvey/internal/extract"
	"github.com/nao1215/harvey/internal/fetch"
	"github.com/nao1215/harvey/internal/model"
)

const (
	// DefaultGitHubAPIURL is the GitHub REST API root.
	DefaultGitHubAPIURL = "https://api.github.com"

	// DefaultGitHubWebURL is the root of rendered GitHub profile pages.
	DefaultGitHubWebURL = "https://github.com"

	// DefaultMaxRepos is the number of top repositories kept on a profile.
	DefaultMaxRepos = 5
)

// GitHubClient looks up GitHub accounts through the REST API.
// Rate limiting and missing accounts degrade to an error kind, never to a
// returned error.
type GitHubClient struct {
	getter      Getter
	apiURL      string
	webURL      string
	token       string
	maxRepos    int
	profilePage bool
	logger      *slog.Logger
}

// GitHubOption configures a GitHubClient.
type GitHubOption func(*GitHubClient)

// WithAPIURL overrides the API root.
func WithAPIURL(u string) GitHubOption {
	return func(c *GitHubClient) {
		c.apiURL = strings.TrimRight(u, "/")
	}
}

// WithWebURL overrides the root used for rendered profile pages.
func WithWebURL(u string) GitHubOption {
	return func(c *GitHubClient) {
		c.webURL = strings.TrimRight(u, "/")
	}
}

// WithToken authenticates API calls with a personal access token.
func WithToken(token string) GitHubOption {
	return func(c *GitHubClient) {
		c.token = strings.TrimSpace(token)
	}
}

// WithMaxRepos sets how many top repositories a profile keeps.
func WithMaxRepos(n int) GitHubOption {
	return func(c *GitHubClient) {
		if n > 0 {
			c.maxRepos = n
		}
	}
}

// WithProfilePage controls whether the rendered profile page is fetched as
// additional contact surface.
func WithProfilePage(enabled bool) GitHubOption {
	return func(c *GitHubClient) {
		c.profilePage = enabled
	}
}

// WithGitHubLogger sets the logger.
func WithGitHubLogger(logger *slog.Logger) GitHubOption {
	return func(c *GitHubClient) {
		c.logger = logger
	}
}

// NewGitHubClient creates a client that issues requests through getter.
func NewGitHubClient(getter Getter, opts ...GitHubOption) *GitHubClient {
	c := &GitHubClient{
		getter:      getter,
		apiURL:      DefaultGitHubAPIURL,
		webURL:      DefaultGitHubWebURL,
		maxRepos:    DefaultMaxRepos,
		profilePage: true,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	return c
}

// Authenticated reports whether a token is configured.
func (c *GitHubClient) Authenticated() bool {
	return c.token != ""
}

// Lookup resolves the account for a person and fetches its profile. When
// hint is non-empty it is taken as the login (or profile URL) and the user
// search is skipped. The returned login is empty when no account was found.
func (c *GitHubClient) Lookup(ctx context.Context, name, hint string) (string, *model.GitHubProfile, model.ErrorKind) {
	login := extract.GitHubLogin(hint)
	if login == "" {
		var kind model.ErrorKind
		login, kind = c.FindUser(ctx, name)
		if kind != model.ErrorNone {
			return "", nil, kind
		}
	}

	profile, kind := c.Profile(ctx, login)
	return login, profile, kind
}

// FindUser returns the login of the best user-search match for name.
func (c *GitHubClient) FindUser(ctx context.Context, name string) (string, model.ErrorKind) {
	res := c.get(ctx, c.apiURL+"/search/users?q="+url.QueryEscape(name), "")
	if kind := classifyGitHub(res); kind != model.ErrorNone {
		c.logger.Warn("github user search failed", "name", name, "code", res.StatusCode, "error", string(kind))
		return "", kind
	}

	login, err := extract.ParseGitHubSearch(res.Body)
	if err != nil {
		c.logger.Warn("github user search unreadable", "name", name, "error", err)
		return "", model.ErrorParseFailure
	}
	if login == "" {
		c.logger.Debug("no github user found", "name", name)
		return "", model.ErrorNotFound
	}
	return login, model.ErrorNone
}

// Profile fetches the account, its repositories, the profile README and
// optionally the rendered profile page, and assembles a GitHubProfile.
// Only the account itself is required; the rest only widens the contact
// surface.
func (c *GitHubClient) Profile(ctx context.Context, login string) (*model.GitHubProfile, model.ErrorKind) {
	escaped := url.PathEscape(login)

	res := c.get(ctx, c.apiURL+"/users/"+escaped, "")
	if kind := classifyGitHub(res); kind != model.ErrorNone {
		c.logger.Warn("github profile unavailable", "login", login, "code", res.StatusCode, "error", string(kind))
		return nil, kind
	}
	user, err := extract.ParseGitHubUser(res.Body)
	if err != nil {
		c.logger.Warn("github profile unreadable", "login", login, "error", err)
		return nil, model.ErrorParseFailure
	}

	repos := make([]model.Repository, 0)
	res = c.get(ctx, c.apiURL+"/users/"+escaped+"/repos?per_page=100&type=owner&sort=updated", "")
	if classifyGitHub(res) == model.ErrorNone {
		if parsed, err := extract.ParseGitHubRepos(res.Body); err == nil {
			repos = parsed
		} else {
			c.logger.Debug("github repositories unreadable", "login", login, "error", err)
		}
	}

	extra := make([]string, 0, 2)
	res = c.get(ctx, c.apiURL+"/repos/"+escaped+"/"+escaped+"/readme", "application/vnd.github.raw")
	if classifyGitHub(res) == model.ErrorNone {
		extra = append(extra, string(res.Body))
	}

	if c.profilePage {
		page := c.getter.Get(ctx, c.webURL+"/"+escaped, nil)
		if page.HTTPSuccess() {
			extra = append(extra, extract.PageText(page.Body))
		}
	}

	profile := extract.NewGitHubProfile(user, repos, c.maxRepos, extra...)
	c.logger.Debug("github profile fetched",
		"login", login,
		"repos", len(repos),
		"linkedin", profile.LinkedInFromBio,
	)
	return profile, model.ErrorNone
}

func (c *GitHubClient) get(ctx context.Context, rawURL, accept string) fetch.Result {
	if accept == "" {
		accept = "application/vnd.github+json"
	}
	header := http.Header{}
	header.Set("Accept", accept)
	if c.token != "" {
		header.Set("Authorization", "token "+c.token)
	}
	return c.getter.Get(ctx, rawURL, header)
}

// classifyGitHub maps a GitHub response to an error kind from the status
// code alone. Bios, repository descriptions and READMEs are user text, so a
// challenge-phrase match in the body is not treated as a block.
func classifyGitHub(res fetch.Result) model.ErrorKind {
	switch {
	case res.Failed():
		return model.ErrorTransportFailure
	case res.StatusCode == http.StatusForbidden, res.StatusCode == http.StatusTooManyRequests:
		return model.ErrorRateLimited
	case res.StatusCode == http.StatusNotFound, res.StatusCode == http.StatusUnprocessableEntity:
		return model.ErrorNotFound
	case !res.HTTPSuccess():
		return model.ErrorTransportFailure
	default:
		return model.ErrorNone
	}
}
