package model

// ValidationStatus marks how much a Snapshot's LinkedIn identity can be trusted.
type ValidationStatus string

const (
	// StatusSearchBased means the LinkedIn candidates come from search
	// engine inference only.
	StatusSearchBased ValidationStatus = "search_based"

	// StatusGitHubValidated means the LinkedIn identity was corroborated by a
	// LinkedIn URL on the target's GitHub profile.
	StatusGitHubValidated ValidationStatus = "github_validated"
)

// String returns a human-readable label for the status.
func (s ValidationStatus) String() string {
	switch s {
	case StatusGitHubValidated:
		return "GitHub validated"
	case StatusSearchBased:
		return "Search based"
	default:
		return "Unknown"
	}
}

// Snapshot is the reconciled professional snapshot for one target name.
// It is built once per investigation; report generation only reads it.
type Snapshot struct {
	TargetName string `json:"target_name"`

	// LinkedInCandidates are deduplicated profile URLs in relevance order.
	LinkedInCandidates []string `json:"linkedin_candidates"`

	// LinkedInRecords hold the scraped detail for the candidates, in the
	// same order. There may be fewer records than candidates.
	LinkedInRecords []CandidateRecord `json:"linkedin_records"`

	GitHubProfile *GitHubProfile `json:"github_profile,omitempty"`

	// PortfolioURL is empty when no portfolio link was found.
	PortfolioURL string `json:"portfolio_url,omitempty"`

	ValidationStatus ValidationStatus `json:"validation_status"`

	// Notes are diagnostics gathered during reconciliation. They never
	// influence any decision.
	Notes []string `json:"notes,omitempty"`
}

// NewSnapshot returns an empty search-based Snapshot for name.
func NewSnapshot(name string) *Snapshot {
	return &Snapshot{
		TargetName:         name,
		LinkedInCandidates: []string{},
		LinkedInRecords:    []CandidateRecord{},
		ValidationStatus:   StatusSearchBased,
	}
}

// IsValidated reports whether the LinkedIn identity was corroborated by GitHub.
func (s *Snapshot) IsValidated() bool {
	return s.ValidationStatus == StatusGitHubValidated
}

// HasLinkedIn reports whether any LinkedIn profile candidate exists.
// People-search fallback links do not count.
func (s *Snapshot) HasLinkedIn() bool {
	fallback := make(map[string]bool)
	for _, r := range s.LinkedInRecords {
		if r.Source == SourcePeopleSearchFallback {
			fallback[r.URL] = true
		}
	}
	for _, c := range s.LinkedInCandidates {
		if !fallback[c] {
			return true
		}
	}
	return false
}

// Records returns every record in the snapshot: the LinkedIn records followed
// by the GitHub profile, if any.
func (s *Snapshot) Records() []CandidateRecord {
	records := make([]CandidateRecord, 0, len(s.LinkedInRecords)+1)
	records = append(records, s.LinkedInRecords...)
	if s.GitHubProfile != nil {
		records = append(records, s.GitHubProfile.Record())
	}
	return records
}

// SourceCount returns the number of independent data points in the snapshot.
func (s *Snapshot) SourceCount() int {
	n := len(s.LinkedInCandidates)
	if s.GitHubProfile != nil {
		n++
	}
	if s.PortfolioURL != "" {
		n++
	}
	return n
}
