package reconcile

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nao1215/harvey/internal/extract"
	"github.com/nao1215/harvey/internal/model"
)

// Scraper fetches one LinkedIn profile and extracts its fields.
// *probe.LinkedInScraper implements it.
type Scraper interface {
	Scrape(ctx context.Context, profileURL string) model.CandidateRecord
}

// PeopleSearcher runs the broad people search used when no LinkedIn
// candidate exists. *probe.Searcher implements it.
type PeopleSearcher interface {
	SearchPeople(ctx context.Context, name string) []model.CandidateRecord
}

// Input is everything the probes gathered for one person.
type Input struct {
	TargetName string

	// SearchCandidates are the footprint search results in relevance order.
	SearchCandidates []model.CandidateRecord

	// ScrapedRecords are the scrape results for the candidates. It may be
	// shorter than SearchCandidates.
	ScrapedRecords []model.CandidateRecord

	// GitHub is nil when no profile was found.
	GitHub *model.GitHubProfile
}

// InputFrom collects the reconciliation input from an investigation.
func InputFrom(inv *model.Investigation) Input {
	return Input{
		TargetName:       inv.Target,
		SearchCandidates: inv.SearchCandidates,
		ScrapedRecords:   inv.ScrapedRecords,
		GitHub:           inv.GitHub,
	}
}

// Engine reconciles probe output into snapshots.
type Engine struct {
	scraper Scraper
	people  PeopleSearcher
	logger  *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// New creates an Engine. scraper resolves GitHub-derived LinkedIn URLs that
// disagree with the search; people provides the fallback search. Either
// may be nil, which skips the corresponding step.
func New(scraper Scraper, people PeopleSearcher, opts ...Option) *Engine {
	e := &Engine{
		scraper: scraper,
		people:  people,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	return e
}

// Reconcile builds the Snapshot for in. It always returns a non-nil
// Snapshot and never modifies in.
func (e *Engine) Reconcile(ctx context.Context, in Input) *model.Snapshot {
	snap := model.NewSnapshot(in.TargetName)
	snap.GitHubProfile = in.GitHub

	snap.LinkedInCandidates, snap.LinkedInRecords = alignCandidates(in.SearchCandidates, in.ScrapedRecords)

	e.validate(ctx, snap)

	if len(snap.LinkedInCandidates) == 0 {
		e.fallback(ctx, snap)
	}

	snap.PortfolioURL = resolvePortfolio(in.GitHub, snap.LinkedInRecords)

	e.logger.Debug("snapshot reconciled",
		"target", snap.TargetName,
		"candidates", len(snap.LinkedInCandidates),
		"status", string(snap.ValidationStatus),
		"portfolio", snap.PortfolioURL,
	)
	return snap
}

// validate cross-checks the LinkedIn URL found on the GitHub profile
// against the candidates.
func (e *Engine) validate(ctx context.Context, snap *model.Snapshot) {
	if snap.GitHubProfile == nil || snap.GitHubProfile.LinkedInFromBio == "" {
		return
	}

	ghURL := canonicalURL(snap.GitHubProfile.LinkedInFromBio)
	if ghURL == "" {
		return
	}

	for _, candidate := range snap.LinkedInCandidates {
		if candidate == ghURL {
			snap.ValidationStatus = model.StatusGitHubValidated
			snap.Notes = append(snap.Notes, "linkedin profile confirmed by github: "+ghURL)
			return
		}
	}

	if e.scraper == nil {
		snap.Notes = append(snap.Notes, "github linkedin could not be validated: no scraper configured")
		return
	}

	record := e.scraper.Scrape(ctx, ghURL)
	if !record.HasName() {
		reason := string(record.Error)
		if reason == "" {
			reason = "no name on profile"
		}
		e.logger.Info("github linkedin could not be validated", "url", ghURL, "reason", reason)
		snap.Notes = append(snap.Notes, fmt.Sprintf("github linkedin could not be validated: %s (%s)", ghURL, reason))
		return
	}

	record.URL = ghURL
	snap.LinkedInCandidates = []string{ghURL}
	snap.LinkedInRecords = []model.CandidateRecord{record}
	snap.ValidationStatus = model.StatusGitHubValidated
	snap.Notes = append(snap.Notes, "search candidates replaced by linkedin profile from github: "+ghURL)
}

// fallback fills an empty candidate list with people-search links.
func (e *Engine) fallback(ctx context.Context, snap *model.Snapshot) {
	if e.people == nil {
		snap.Notes = append(snap.Notes, string(model.ErrorLinkedInNotFound))
		return
	}

	seen := make(map[string]bool)
	for _, r := range e.people.SearchPeople(ctx, snap.TargetName) {
		u := canonicalURL(r.URL)
		if u == "" || seen[u] {
			continue
		}
		seen[u] = true

		r.URL = u
		r.Source = model.SourcePeopleSearchFallback
		r.Error = model.ErrorLinkedInNotFound
		snap.LinkedInCandidates = append(snap.LinkedInCandidates, u)
		snap.LinkedInRecords = append(snap.LinkedInRecords, r)
	}

	if len(snap.LinkedInCandidates) == 0 {
		snap.Notes = append(snap.Notes, string(model.ErrorLinkedInNotFound)+": people search returned nothing")
		return
	}
	snap.Notes = append(snap.Notes, string(model.ErrorLinkedInNotFound)+": showing people search results")
}

// alignCandidates deduplicates the search candidates and pairs each with
// the first scraped record for the same URL. Candidates without a record
// keep their place; records matching no candidate are dropped.
func alignCandidates(candidates, scraped []model.CandidateRecord) ([]string, []model.CandidateRecord) {
	urls := make([]string, 0, len(candidates))
	seen := make(map[string]bool, len(candidates))
	for _, c := range candidates {
		u := canonicalURL(c.URL)
		if u == "" || seen[u] {
			continue
		}
		seen[u] = true
		urls = append(urls, u)
	}

	byURL := make(map[string]model.CandidateRecord, len(scraped))
	for _, r := range scraped {
		u := canonicalURL(r.URL)
		if u == "" {
			continue
		}
		if _, ok := byURL[u]; !ok {
			r.URL = u
			byURL[u] = r
		}
	}

	records := make([]model.CandidateRecord, 0, len(urls))
	for _, u := range urls {
		if r, ok := byURL[u]; ok {
			records = append(records, r)
		}
	}
	return urls, records
}

// canonicalURL normalizes raw once at ingestion so that every later
// comparison is an exact string match. Scheme-less input is read as https.
func canonicalURL(raw string) string {
	if u := extract.NormalizeURL(raw); u != "" {
		return u
	}
	if raw != "" && !extract.IsAbsoluteURL(raw) {
		return extract.NormalizeURL("https://" + raw)
	}
	return ""
}
