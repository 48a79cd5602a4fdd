// Package probe implements the per-source lookups of an investigation.
//
// Each probe issues GETs through a Getter (normally *fetch.Fetcher) and
// turns the responses into model.CandidateRecord values or a
// model.GitHubProfile. Probes never return errors: a failed lookup yields
// an empty or partial result tagged with a model.ErrorKind, so that the
// investigation can always run to completion.
//
// The probes are:
//
//   - Searcher: LinkedIn footprint search and the broad people search,
//     cascading over DuckDuckGo HTML and Bing
//   - LinkedInScraper: fetches a LinkedIn profile page and extracts fields
//   - GitHubClient: user search, profile, repositories, profile README and
//     the rendered profile page
package probe
