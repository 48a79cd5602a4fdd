package probe

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/nao1215/harvey/internal/extract"
	"github.com/nao1215/harvey/internal/fetch"
	"github.com/nao1215/harvey/internal/model"
)

const (
	// DefaultMaxResults is the number of LinkedIn candidates kept per search.
	DefaultMaxResults = 3

	// DefaultMaxPeopleResults is the number of links kept by the people search.
	DefaultMaxPeopleResults = 5
)

// Engine is a search engine that serves a plain HTML result page.
type Engine struct {
	// Name is recorded as the origin of every result.
	Name string

	// BaseURL is the search URL up to and including the query parameter
	// name, e.g. "https://www.bing.com/search?q=".
	BaseURL string
}

// SearchURL returns the result page URL for query.
func (e Engine) SearchURL(query string) string {
	return e.BaseURL + url.QueryEscape(query)
}

// DefaultEngines returns the engines tried in order: DuckDuckGo's HTML
// endpoint first, then Bing.
func DefaultEngines() []Engine {
	return []Engine{
		{Name: model.OriginDuckDuckGo, BaseURL: "https://html.duckduckgo.com/html/?q="},
		{Name: model.OriginBing, BaseURL: "https://www.bing.com/search?q="},
	}
}

// Searcher runs footprint searches against a cascade of engines. An engine
// that fails, is blocked or returns nothing falls through to the next one.
type Searcher struct {
	getter     Getter
	engines    []Engine
	maxResults int
	maxPeople  int
	guessSlug  bool
	logger     *slog.Logger
}

// SearcherOption configures a Searcher.
type SearcherOption func(*Searcher)

// WithEngines replaces the engine cascade.
func WithEngines(engines ...Engine) SearcherOption {
	return func(s *Searcher) {
		s.engines = engines
	}
}

// WithMaxResults limits the number of LinkedIn candidates returned.
func WithMaxResults(n int) SearcherOption {
	return func(s *Searcher) {
		if n > 0 {
			s.maxResults = n
		}
	}
}

// WithMaxPeopleResults limits the number of people-search links returned.
func WithMaxPeopleResults(n int) SearcherOption {
	return func(s *Searcher) {
		if n > 0 {
			s.maxPeople = n
		}
	}
}

// WithSlugGuess makes LinkedInFootprints offer a profile URL derived from
// the name when every engine came back empty.
func WithSlugGuess(enabled bool) SearcherOption {
	return func(s *Searcher) {
		s.guessSlug = enabled
	}
}

// WithSearchLogger sets the logger.
func WithSearchLogger(logger *slog.Logger) SearcherOption {
	return func(s *Searcher) {
		s.logger = logger
	}
}

// NewSearcher creates a Searcher that issues requests through getter.
func NewSearcher(getter Getter, opts ...SearcherOption) *Searcher {
	s := &Searcher{
		getter:     getter,
		engines:    DefaultEngines(),
		maxResults: DefaultMaxResults,
		maxPeople:  DefaultMaxPeopleResults,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// LinkedInQuery returns the footprint query for name.
func LinkedInQuery(name string) string {
	return fmt.Sprintf("site:linkedin.com/in %q", name)
}

// PeopleQuery returns the broad people-search query for name.
func PeopleQuery(name string) string {
	return fmt.Sprintf("%q (portfolio OR resume OR CV OR developer OR engineer OR designer)", name)
}

// LinkedInFootprints searches for LinkedIn profile URLs of name. It returns
// the candidates of the first engine that produced any, each tagged with
// that engine as origin, and the error kind of the last engine that failed
// (ErrorNotFound when engines answered but found nothing).
func (s *Searcher) LinkedInFootprints(ctx context.Context, name string) ([]model.CandidateRecord, model.ErrorKind) {
	query := LinkedInQuery(name)

	lastErr := model.ErrorNotFound
	for _, engine := range s.engines {
		body, kind := s.search(ctx, engine, query)
		if kind != model.ErrorNone {
			lastErr = kind
			continue
		}

		links := extract.LinkedInProfileLinks(body, engine.SearchURL(query), s.maxResults)
		if len(links) == 0 {
			s.logger.Debug("no linkedin results", "engine", engine.Name, "name", name)
			continue
		}

		s.logger.Debug("linkedin results found", "engine", engine.Name, "name", name, "count", len(links))
		return candidateRecords(model.SourceLinkedInSearch, engine.Name, links, model.ErrorNone), model.ErrorNone
	}

	if s.guessSlug {
		if slug := extract.Slug(name); slug != "" {
			guess := extract.LinkedInProfileURL(slug)
			s.logger.Debug("falling back to slug guess", "name", name, "url", guess)
			return candidateRecords(model.SourceLinkedInSearch, model.OriginDirectSlug, []string{guess}, model.ErrorNone), model.ErrorNone
		}
	}

	s.logger.Warn("linkedin search found nothing", "name", name, "error", string(lastErr))
	return []model.CandidateRecord{}, lastErr
}

// SearchPeople runs the broad people search for name. Every returned
// record is tagged ErrorLinkedInNotFound since it is not a LinkedIn profile.
func (s *Searcher) SearchPeople(ctx context.Context, name string) []model.CandidateRecord {
	query := PeopleQuery(name)

	for _, engine := range s.engines {
		body, kind := s.search(ctx, engine, query)
		if kind != model.ErrorNone {
			continue
		}

		links := extract.ResultLinks(body, engine.SearchURL(query), s.maxPeople)
		if len(links) == 0 {
			continue
		}

		s.logger.Debug("people search results found", "engine", engine.Name, "name", name, "count", len(links))
		return candidateRecords(model.SourcePeopleSearchFallback, engine.Name, links, model.ErrorLinkedInNotFound)
	}

	s.logger.Warn("people search found nothing", "name", name)
	return []model.CandidateRecord{}
}

func (s *Searcher) search(ctx context.Context, engine Engine, query string) ([]byte, model.ErrorKind) {
	header := http.Header{}
	header.Set("Accept", "text/html,application/xhtml+xml")

	res := s.getter.Get(ctx, engine.SearchURL(query), header)
	kind := classifySearch(res)
	if kind != model.ErrorNone {
		s.logger.Warn("search engine unavailable",
			"engine", engine.Name,
			"status", res.Status.String(),
			"code", res.StatusCode,
			"error", string(kind),
		)
		return nil, kind
	}
	return res.Body, model.ErrorNone
}

// classifySearch maps a search engine response to an error kind.
func classifySearch(res fetch.Result) model.ErrorKind {
	switch {
	case res.Failed():
		return model.ErrorTransportFailure
	case res.Blocked():
		return model.ErrorBlocked
	case res.StatusCode == http.StatusTooManyRequests:
		return model.ErrorRateLimited
	case res.StatusCode == http.StatusForbidden:
		return model.ErrorBlocked
	case !res.Success():
		return model.ErrorTransportFailure
	default:
		return model.ErrorNone
	}
}

func candidateRecords(source model.SourceKind, origin string, links []string, kind model.ErrorKind) []model.CandidateRecord {
	records := make([]model.CandidateRecord, 0, len(links))
	for _, link := range links {
		records = append(records, model.CandidateRecord{
			Source: source,
			Origin: origin,
			URL:    link,
			Error:  kind,
		})
	}
	return records
}
