package model

import (
	"testing"

	"github.com/google/uuid"
)

func TestSnapshotHasLinkedIn(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		snapshot *Snapshot
		want     bool
	}{
		{
			name:     "empty snapshot",
			snapshot: NewSnapshot("Jane Doe"),
			want:     false,
		},
		{
			name: "search candidate without record",
			snapshot: &Snapshot{
				LinkedInCandidates: []string{"https://www.linkedin.com/in/janedoe"},
			},
			want: true,
		},
		{
			name: "only people search fallback links",
			snapshot: &Snapshot{
				LinkedInCandidates: []string{"https://janedoe.dev"},
				LinkedInRecords: []CandidateRecord{
					{Source: SourcePeopleSearchFallback, URL: "https://janedoe.dev", Error: ErrorLinkedInNotFound},
				},
			},
			want: false,
		},
		{
			name: "scraped profile",
			snapshot: &Snapshot{
				LinkedInCandidates: []string{"https://www.linkedin.com/in/janedoe"},
				LinkedInRecords: []CandidateRecord{
					{Source: SourceLinkedInScrape, URL: "https://www.linkedin.com/in/janedoe", FullName: "Jane Doe"},
				},
			},
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := tt.snapshot.HasLinkedIn(); got != tt.want {
				t.Errorf("HasLinkedIn() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSnapshotRecords(t *testing.T) {
	t.Parallel()

	s := NewSnapshot("Jane Doe")
	s.LinkedInRecords = []CandidateRecord{{Source: SourceLinkedInScrape, FullName: "Jane Doe"}}
	s.GitHubProfile = &GitHubProfile{Username: "janedoe", DisplayName: "Jane Doe", Bio: "Go developer", ProfileURL: "https://github.com/janedoe"}

	records := s.Records()
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[1].Source != SourceGitHubProfile {
		t.Errorf("expected github record last, got %s", records[1].Source)
	}
	if records[1].AboutText != "Go developer" {
		t.Errorf("expected bio as about text, got %q", records[1].AboutText)
	}
}

func TestSnapshotSourceCount(t *testing.T) {
	t.Parallel()

	s := NewSnapshot("Jane Doe")
	if s.SourceCount() != 0 {
		t.Errorf("expected 0 sources, got %d", s.SourceCount())
	}

	s.LinkedInCandidates = []string{"https://www.linkedin.com/in/a", "https://www.linkedin.com/in/b"}
	s.GitHubProfile = &GitHubProfile{Username: "janedoe"}
	s.PortfolioURL = "https://janedoe.dev"
	if s.SourceCount() != 4 {
		t.Errorf("expected 4 sources, got %d", s.SourceCount())
	}
}

func TestValidationStatusString(t *testing.T) {
	t.Parallel()

	if StatusGitHubValidated.String() != "GitHub validated" {
		t.Errorf("unexpected label %q", StatusGitHubValidated.String())
	}
	if StatusSearchBased.String() != "Search based" {
		t.Errorf("unexpected label %q", StatusSearchBased.String())
	}
	if ValidationStatus("other").String() != "Unknown" {
		t.Errorf("unexpected label %q", ValidationStatus("other").String())
	}
}

func TestNewInvestigation(t *testing.T) {
	t.Parallel()

	inv := NewInvestigation("Jane Doe")
	if _, err := uuid.Parse(inv.ID); err != nil {
		t.Errorf("expected uuid id, got %q: %v", inv.ID, err)
	}
	if inv.StartedAt.IsZero() {
		t.Error("expected start time to be set")
	}
	if inv.Snapshot != nil {
		t.Error("expected no snapshot before reconciliation")
	}

	s := inv.EnsureSnapshot()
	if s == nil || s.TargetName != "Jane Doe" {
		t.Fatalf("unexpected snapshot %+v", s)
	}
	if s.ValidationStatus != StatusSearchBased {
		t.Errorf("expected search based status, got %s", s.ValidationStatus)
	}
	if inv.EnsureSnapshot() != s {
		t.Error("expected EnsureSnapshot to reuse the existing snapshot")
	}
}

func TestInvestigationSearchURLs(t *testing.T) {
	t.Parallel()

	inv := NewInvestigation("Jane Doe")
	inv.SearchCandidates = []CandidateRecord{
		{Source: SourceLinkedInSearch, URL: "https://www.linkedin.com/in/a"},
		{Source: SourceLinkedInSearch},
		{Source: SourceLinkedInSearch, URL: "https://www.linkedin.com/in/b"},
	}

	urls := inv.SearchURLs()
	if len(urls) != 2 || urls[0] != "https://www.linkedin.com/in/a" || urls[1] != "https://www.linkedin.com/in/b" {
		t.Errorf("unexpected urls %v", urls)
	}
}
