package probe

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/nao1215/harvey/internal/extract"
	"github.com/nao1215/harvey/internal/fetch"
	"github.com/nao1215/harvey/internal/model"
)

// statusLinkedInDenied is the non-standard code LinkedIn returns to clients
// it considers automated.
const statusLinkedInDenied = 999

// LinkedInScraper fetches LinkedIn profile pages and extracts their fields.
type LinkedInScraper struct {
	getter Getter
	logger *slog.Logger
}

// NewLinkedInScraper creates a scraper that issues requests through getter.
func NewLinkedInScraper(getter Getter, logger *slog.Logger) *LinkedInScraper {
	if logger == nil {
		logger = slog.Default()
	}
	return &LinkedInScraper{getter: getter, logger: logger}
}

// Scrape fetches profileURL and returns the extracted record. The record
// always carries the URL; when the page could not be read its Error says why.
func (s *LinkedInScraper) Scrape(ctx context.Context, profileURL string) model.CandidateRecord {
	header := http.Header{}
	header.Set("Accept", "text/html,application/xhtml+xml")

	res := s.getter.Get(ctx, profileURL, header)
	if kind := classifyLinkedIn(res); kind != model.ErrorNone {
		s.logger.Debug("linkedin profile unavailable",
			"url", profileURL,
			"status", res.Status.String(),
			"code", res.StatusCode,
			"error", string(kind),
		)
		return model.CandidateRecord{
			Source: model.SourceLinkedInScrape,
			Origin: model.OriginLinkedIn,
			URL:    profileURL,
			Error:  kind,
		}
	}

	record := extract.ExtractLinkedIn(profileURL, res.Body)
	s.logger.Debug("linkedin profile scraped",
		"url", profileURL,
		"name", record.FullName,
		"error", string(record.Error),
	)
	return record
}

// classifyLinkedIn maps a LinkedIn response to an error kind.
func classifyLinkedIn(res fetch.Result) model.ErrorKind {
	switch {
	case res.Failed():
		return model.ErrorTransportFailure
	case res.Blocked(),
		res.StatusCode == statusLinkedInDenied,
		res.StatusCode == http.StatusTooManyRequests:
		return model.ErrorBlocked
	case res.StatusCode == http.StatusNotFound, res.StatusCode == http.StatusGone:
		return model.ErrorNotFound
	case res.StatusCode == http.StatusUnauthorized, res.StatusCode == http.StatusForbidden:
		return model.ErrorLoginRequired
	case !res.Success():
		return model.ErrorParseFailure
	default:
		return model.ErrorNone
	}
}
