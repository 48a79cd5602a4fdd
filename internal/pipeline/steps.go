package pipeline

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/nao1215/harvey/internal/config"
	"github.com/nao1215/harvey/internal/model"
	"github.com/nao1215/harvey/internal/probe"
	"github.com/nao1215/harvey/internal/reconcile"
)

// FootprintSearcher finds LinkedIn profile candidates for a name.
// *probe.Searcher implements it.
type FootprintSearcher interface {
	LinkedInFootprints(ctx context.Context, name string) ([]model.CandidateRecord, model.ErrorKind)
}

// GitHubLookup resolves and fetches a GitHub account for a name.
// *probe.GitHubClient implements it.
type GitHubLookup interface {
	Lookup(ctx context.Context, name, hint string) (string, *model.GitHubProfile, model.ErrorKind)
}

// LinkedInSearchStep runs the LinkedIn footprint search.
type LinkedInSearchStep struct {
	searcher FootprintSearcher
	logger   *slog.Logger
}

// NewLinkedInSearchStep creates a footprint search step.
func NewLinkedInSearchStep(searcher FootprintSearcher, logger *slog.Logger) *LinkedInSearchStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &LinkedInSearchStep{searcher: searcher, logger: logger}
}

// Name returns the step name.
func (s *LinkedInSearchStep) Name() string {
	return "linkedin_search"
}

// Do stores the candidates on inv.
func (s *LinkedInSearchStep) Do(ctx context.Context, inv *model.Investigation) error {
	candidates, kind := s.searcher.LinkedInFootprints(ctx, inv.Target)
	inv.SearchCandidates = candidates
	inv.SearchError = kind

	s.logger.Debug("linkedin search finished",
		"target", inv.Target,
		"candidates", len(candidates),
		"error", string(kind),
	)
	return ctx.Err()
}

// LinkedInScrapeStep scrapes every search candidate, pausing between
// requests.
type LinkedInScrapeStep struct {
	scraper reconcile.Scraper
	delay   time.Duration
	logger  *slog.Logger
}

// ScrapeStepOption configures a LinkedInScrapeStep.
type ScrapeStepOption func(*LinkedInScrapeStep)

// WithScrapeDelay sets the base pause between two profile requests. The
// actual pause is picked at random between delay and twice delay. Zero
// disables it.
func WithScrapeDelay(delay time.Duration) ScrapeStepOption {
	return func(s *LinkedInScrapeStep) {
		if delay >= 0 {
			s.delay = delay
		}
	}
}

// WithScrapeLogger sets the logger.
func WithScrapeLogger(logger *slog.Logger) ScrapeStepOption {
	return func(s *LinkedInScrapeStep) {
		s.logger = logger
	}
}

// NewLinkedInScrapeStep creates a scrape step.
func NewLinkedInScrapeStep(scraper reconcile.Scraper, opts ...ScrapeStepOption) *LinkedInScrapeStep {
	s := &LinkedInScrapeStep{
		scraper: scraper,
		delay:   config.DefaultScrapeDelay,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// Name returns the step name.
func (s *LinkedInScrapeStep) Name() string {
	return "linkedin_scrape"
}

// Do scrapes each distinct candidate URL once, in candidate order. Records
// scraped before a cancellation are kept.
func (s *LinkedInScrapeStep) Do(ctx context.Context, inv *model.Investigation) error {
	seen := make(map[string]bool)
	scraped := 0

	for _, u := range inv.SearchURLs() {
		if seen[u] {
			continue
		}
		seen[u] = true

		if scraped > 0 {
			if err := pause(ctx, jitter(s.delay)); err != nil {
				return err
			}
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		record := s.scraper.Scrape(ctx, u)
		inv.ScrapedRecords = append(inv.ScrapedRecords, record)
		scraped++

		if record.HasError() {
			s.logger.Warn("linkedin scrape degraded",
				"target", inv.Target,
				"url", u,
				"error", string(record.Error),
			)
		}
	}
	return ctx.Err()
}

// GitHubStep looks up the target's GitHub account.
type GitHubStep struct {
	lookup GitHubLookup
	logger *slog.Logger
}

// NewGitHubStep creates a GitHub step.
func NewGitHubStep(lookup GitHubLookup, logger *slog.Logger) *GitHubStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &GitHubStep{lookup: lookup, logger: logger}
}

// Name returns the step name.
func (s *GitHubStep) Name() string {
	return "github"
}

// Do stores the login, profile and error kind on inv. The investigation's
// GitHubHint, when set, replaces the user search.
func (s *GitHubStep) Do(ctx context.Context, inv *model.Investigation) error {
	login, profile, kind := s.lookup.Lookup(ctx, inv.Target, inv.GitHubHint)
	inv.GitHubLogin = login
	inv.GitHub = profile
	inv.GitHubError = kind

	if kind != model.ErrorNone {
		s.logger.Warn("github lookup degraded",
			"target", inv.Target,
			"login", login,
			"error", string(kind),
		)
	}
	return ctx.Err()
}

// ReconcileStep builds the snapshot from the probe output.
type ReconcileStep struct {
	engine *reconcile.Engine
}

// NewReconcileStep creates a reconcile step.
func NewReconcileStep(engine *reconcile.Engine) *ReconcileStep {
	return &ReconcileStep{engine: engine}
}

// Name returns the step name.
func (s *ReconcileStep) Name() string {
	return "reconcile"
}

// Do sets inv.Snapshot.
func (s *ReconcileStep) Do(ctx context.Context, inv *model.Investigation) error {
	inv.Snapshot = s.engine.Reconcile(ctx, reconcile.InputFrom(inv))
	return nil
}

// jitter returns a random duration in [d, 2d].
func jitter(d time.Duration) time.Duration {
	if d <= 0 {
		return 0
	}
	return d + rand.N(d+1) //nolint:gosec // politeness jitter
}

// pause waits for d or until ctx is done.
func pause(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// DefaultPipelineConfig holds configuration for the default pipeline.
type DefaultPipelineConfig struct {
	// MaxResults caps the LinkedIn candidates per engine.
	MaxResults int

	// MaxPeopleResults caps the people-search fallback links.
	MaxPeopleResults int

	// MaxRepos is the number of top repositories kept on a GitHub profile.
	MaxRepos int

	// GuessSlug offers a direct profile URL guess when every engine fails.
	GuessSlug bool

	// ScrapeDelay is the base pause between LinkedIn profile requests.
	ScrapeDelay time.Duration

	// GitHubToken authenticates GitHub API calls. Empty means anonymous.
	GitHubToken string

	// GitHubAPIURL and GitHubWebURL override the GitHub endpoints.
	GitHubAPIURL string
	GitHubWebURL string

	// ProfilePage fetches the rendered GitHub profile page as contact surface.
	ProfilePage bool

	// Engines overrides the search engine cascade.
	Engines []probe.Engine

	// Logger is handed to every probe.
	Logger *slog.Logger
}

// DefaultPipelineOption configures a DefaultPipelineConfig.
type DefaultPipelineOption func(*DefaultPipelineConfig)

// WithPipelineMaxResults sets the LinkedIn candidate cap.
func WithPipelineMaxResults(n int) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.MaxResults = n
	}
}

// WithPipelineMaxPeopleResults sets the people-search cap.
func WithPipelineMaxPeopleResults(n int) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.MaxPeopleResults = n
	}
}

// WithPipelineMaxRepos sets the number of top repositories kept.
func WithPipelineMaxRepos(n int) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.MaxRepos = n
	}
}

// WithPipelineGuessSlug enables the direct profile URL guess.
func WithPipelineGuessSlug(enabled bool) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.GuessSlug = enabled
	}
}

// WithPipelineScrapeDelay sets the base pause between profile scrapes.
func WithPipelineScrapeDelay(d time.Duration) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.ScrapeDelay = d
	}
}

// WithPipelineGitHubToken sets the GitHub token.
func WithPipelineGitHubToken(token string) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.GitHubToken = token
	}
}

// WithPipelineGitHubURLs overrides the GitHub API and web roots.
func WithPipelineGitHubURLs(apiURL, webURL string) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.GitHubAPIURL = apiURL
		c.GitHubWebURL = webURL
	}
}

// WithPipelineProfilePage controls the GitHub profile page fetch.
func WithPipelineProfilePage(enabled bool) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.ProfilePage = enabled
	}
}

// WithPipelineEngines overrides the search engine cascade.
func WithPipelineEngines(engines ...probe.Engine) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.Engines = engines
	}
}

// WithPipelineLogger sets the logger handed to the probes.
func WithPipelineLogger(logger *slog.Logger) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.Logger = logger
	}
}

// DefaultPipeline creates the standard investigation pipeline. The
// LinkedIn branch (search then scrape) and the GitHub lookup run
// concurrently; reconciliation runs once both are done.
//
// All probes issue their requests through getter.
func DefaultPipeline(getter probe.Getter, pipelineOpts []Option, configOpts ...DefaultPipelineOption) *Pipeline {
	cfg := &DefaultPipelineConfig{
		MaxResults:       config.DefaultMaxResults,
		MaxPeopleResults: config.DefaultMaxPeopleResults,
		MaxRepos:         config.DefaultMaxRepos,
		ScrapeDelay:      config.DefaultScrapeDelay,
		GitHubAPIURL:     probe.DefaultGitHubAPIURL,
		GitHubWebURL:     probe.DefaultGitHubWebURL,
		ProfilePage:      true,
	}
	for _, opt := range configOpts {
		opt(cfg)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	searchOpts := []probe.SearcherOption{
		probe.WithMaxResults(cfg.MaxResults),
		probe.WithMaxPeopleResults(cfg.MaxPeopleResults),
		probe.WithSlugGuess(cfg.GuessSlug),
		probe.WithSearchLogger(logger),
	}
	if len(cfg.Engines) > 0 {
		searchOpts = append(searchOpts, probe.WithEngines(cfg.Engines...))
	}
	searcher := probe.NewSearcher(getter, searchOpts...)
	scraper := probe.NewLinkedInScraper(getter, logger)
	github := probe.NewGitHubClient(getter,
		probe.WithAPIURL(cfg.GitHubAPIURL),
		probe.WithWebURL(cfg.GitHubWebURL),
		probe.WithToken(cfg.GitHubToken),
		probe.WithMaxRepos(cfg.MaxRepos),
		probe.WithProfilePage(cfg.ProfilePage),
		probe.WithGitHubLogger(logger),
	)
	engine := reconcile.New(scraper, searcher, reconcile.WithLogger(logger))

	p := New(pipelineOpts...)
	p.AddSteps(
		Parallel("probe",
			Sequence("linkedin",
				NewLinkedInSearchStep(searcher, logger),
				NewLinkedInScrapeStep(scraper,
					WithScrapeDelay(cfg.ScrapeDelay),
					WithScrapeLogger(logger),
				),
			),
			NewGitHubStep(github, logger),
		),
		NewReconcileStep(engine),
	)

	return p
}
