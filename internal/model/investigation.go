package model

import (
	"time"

	"github.com/google/uuid"
)

// Investigation holds everything gathered while researching one target:
// the raw probe output and the Snapshot reconciled from it.
//
// The pipeline fills an Investigation step by step. Probe steps that run
// concurrently write disjoint fields.
type Investigation struct {
	// ID uniquely identifies the investigation across runs.
	ID string `json:"id"`

	// Target is the person's name as supplied by the caller.
	Target string `json:"target"`

	// GitHubHint is an optional GitHub username or profile URL that skips
	// the user search.
	GitHubHint string `json:"github_hint,omitempty"`

	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at,omitzero"`

	// SearchCandidates are the LinkedIn footprint search results in engine order.
	SearchCandidates []CandidateRecord `json:"search_candidates"`

	// SearchError explains an empty footprint search.
	SearchError ErrorKind `json:"search_error,omitempty"`

	// ScrapedRecords are the scrape results for the search candidates.
	ScrapedRecords []CandidateRecord `json:"scraped_records"`

	// GitHubLogin is the login found by the user search or taken from the hint.
	GitHubLogin string `json:"github_login,omitempty"`

	// GitHub is nil when no profile could be fetched.
	GitHub *GitHubProfile `json:"github,omitempty"`

	// GitHubError explains a missing GitHub profile.
	GitHubError ErrorKind `json:"github_error,omitempty"`

	// Snapshot is the reconciled result. It is set by the reconcile step.
	Snapshot *Snapshot `json:"snapshot,omitempty"`

	// PerformedSteps lists the pipeline steps that ran.
	PerformedSteps []string `json:"performed_steps"`

	// Errors holds messages of steps that failed.
	Errors []string `json:"errors,omitempty"`

	// TimedOut is true when the run was cancelled before it finished.
	TimedOut bool `json:"timed_out"`
}

// NewInvestigation creates an Investigation for target with a fresh ID.
func NewInvestigation(target string) *Investigation {
	return &Investigation{
		ID:               uuid.NewString(),
		Target:           target,
		StartedAt:        time.Now(),
		SearchCandidates: make([]CandidateRecord, 0),
		ScrapedRecords:   make([]CandidateRecord, 0),
		PerformedSteps:   make([]string, 0),
	}
}

// SearchURLs returns the URLs of the search candidates in order.
func (inv *Investigation) SearchURLs() []string {
	urls := make([]string, 0, len(inv.SearchCandidates))
	for _, c := range inv.SearchCandidates {
		if c.URL != "" {
			urls = append(urls, c.URL)
		}
	}
	return urls
}

// EnsureSnapshot returns the Snapshot, creating an empty one if the
// reconcile step never ran.
func (inv *Investigation) EnsureSnapshot() *Snapshot {
	if inv.Snapshot == nil {
		inv.Snapshot = NewSnapshot(inv.Target)
	}
	return inv.Snapshot
}

// Duration returns how long the investigation took.
func (inv *Investigation) Duration() time.Duration {
	if inv.FinishedAt.IsZero() {
		return 0
	}
	return inv.FinishedAt.Sub(inv.StartedAt)
}
