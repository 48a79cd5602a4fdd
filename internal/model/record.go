package model

// SourceKind identifies which kind of lookup produced a CandidateRecord.
type SourceKind string

const (
	// SourceLinkedInSearch is a LinkedIn profile URL found by a search engine footprint query.
	SourceLinkedInSearch SourceKind = "linkedin_search"

	// SourceLinkedInScrape is the field data scraped from a LinkedIn profile page.
	SourceLinkedInScrape SourceKind = "linkedin_scrape"

	// SourceGitHubSearch is a GitHub login found by the user-search API.
	SourceGitHubSearch SourceKind = "github_search"

	// SourceGitHubProfile is a GitHub account fetched from the users API.
	SourceGitHubProfile SourceKind = "github_profile"

	// SourcePeopleSearchFallback is a generic link returned by the broad
	// people search that runs when no LinkedIn footprint was found.
	SourcePeopleSearchFallback SourceKind = "people_search"
)

// Well-known origins. Origin records which engine or API produced a record.
const (
	OriginDuckDuckGo = "DuckDuckGo"
	OriginBing       = "Bing"
	OriginDirectSlug = "DirectSlug"
	OriginLinkedIn   = "LinkedIn"
	OriginGitHubAPI  = "GitHubAPI"
	OriginGitHubBio  = "GitHubBio"
)

// ErrorKind classifies why a probe produced no (or only partial) data.
// The zero value means no error.
type ErrorKind string

const (
	// ErrorNone means the lookup succeeded.
	ErrorNone ErrorKind = ""

	// ErrorTransportFailure means no response was received.
	ErrorTransportFailure ErrorKind = "transport_failure"

	// ErrorBlocked means the server answered with an anti-automation challenge.
	ErrorBlocked ErrorKind = "blocked"

	// ErrorNotFound means the search or API returned nothing for the query.
	ErrorNotFound ErrorKind = "not_found"

	// ErrorParseFailure means a response arrived but the expected fields were absent.
	ErrorParseFailure ErrorKind = "parse_failure"

	// ErrorRateLimited means the API quota is exhausted.
	ErrorRateLimited ErrorKind = "rate_limited"

	// ErrorLoginRequired is the parse failure specific to LinkedIn: neither a
	// name nor a headline was visible, which almost always means the page is
	// behind the login wall.
	ErrorLoginRequired ErrorKind = "login_required_or_profile_not_found"

	// ErrorLinkedInNotFound tags people-search fallback links so readers know
	// they are not LinkedIn profiles.
	ErrorLinkedInNotFound ErrorKind = "linkedin_not_found"
)

// CandidateRecord is one observation about a person from one source.
// Records are values; once built they are never modified.
type CandidateRecord struct {
	// Source is the kind of lookup that produced the record.
	Source SourceKind `json:"source"`

	// Origin names the engine or API, e.g. "Bing" or "GitHubAPI".
	Origin string `json:"origin,omitempty"`

	// URL is the profile or result URL the record describes.
	URL string `json:"url,omitempty"`

	FullName  string `json:"full_name,omitempty"`
	Title     string `json:"title,omitempty"`
	JobTitle  string `json:"job_title,omitempty"`
	AboutText string `json:"about_text,omitempty"`

	// Error is set when the lookup failed or yielded nothing usable.
	Error ErrorKind `json:"error,omitempty"`
}

// HasError reports whether the record carries an error kind.
func (r CandidateRecord) HasError() bool {
	return r.Error != ErrorNone
}

// HasName reports whether a full name was recovered.
func (r CandidateRecord) HasName() bool {
	return r.FullName != ""
}
