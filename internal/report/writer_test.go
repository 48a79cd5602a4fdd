package report

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/nao1215/harvey/internal/config"
	"github.com/nao1215/harvey/internal/model"
)

var fixedTime = time.Date(2026, 10, 19, 9, 30, 15, 0, time.UTC)

func fixedNow() time.Time { return fixedTime }

// validatedInvestigation returns a finished investigation whose LinkedIn
// identity was corroborated by GitHub.
func validatedInvestigation() *model.Investigation {
	inv := model.NewInvestigation("Jane Doe")
	inv.SearchCandidates = []model.CandidateRecord{{
		Source: model.SourceLinkedInSearch,
		Origin: model.OriginDuckDuckGo,
		URL:    "https://www.linkedin.com/in/janedoe",
	}}
	inv.PerformedSteps = []string{"linkedin_search", "linkedin_scrape", "github", "reconcile"}

	gh := &model.GitHubProfile{
		Username:        "janedoe",
		DisplayName:     "Jane Doe",
		Bio:             "Systems engineer",
		Location:        "Berlin",
		ProfileURL:      "https://github.com/janedoe",
		PublicRepos:     12,
		Followers:       40,
		Following:       3,
		LinkedInFromBio: "https://www.linkedin.com/in/janedoe",
		TopRepos: []model.Repository{
			{Name: "raft", URL: "https://github.com/janedoe/raft", Language: "Go", Stars: 120},
		},
	}
	inv.GitHub = gh

	inv.Snapshot = &model.Snapshot{
		TargetName:         "Jane Doe",
		LinkedInCandidates: []string{"https://www.linkedin.com/in/janedoe"},
		LinkedInRecords: []model.CandidateRecord{{
			Source:    model.SourceLinkedInScrape,
			Origin:    model.OriginLinkedIn,
			URL:       "https://www.linkedin.com/in/janedoe",
			FullName:  "Jane Doe",
			Title:     "Engineer at Acme",
			JobTitle:  "Senior Engineer",
			AboutText: "Building reliable systems.",
		}},
		GitHubProfile:    gh,
		PortfolioURL:     "https://janedoe.dev",
		ValidationStatus: model.StatusGitHubValidated,
		Notes:            []string{"github linkedin matches search candidate"},
	}
	inv.FinishedAt = inv.StartedAt.Add(time.Second)
	return inv
}

// emptyInvestigation returns an investigation in which every source failed.
func emptyInvestigation() *model.Investigation {
	inv := model.NewInvestigation("Jane Doe")
	inv.SearchError = model.ErrorBlocked
	inv.GitHubError = model.ErrorRateLimited
	inv.Snapshot = model.NewSnapshot("Jane Doe")
	return inv
}

func TestNewSummary(t *testing.T) {
	t.Parallel()

	fallback := emptyInvestigation()
	fallback.Snapshot.LinkedInCandidates = []string{"https://janedoe.dev"}
	fallback.Snapshot.LinkedInRecords = []model.CandidateRecord{{
		Source: model.SourcePeopleSearchFallback,
		URL:    "https://janedoe.dev",
		Error:  model.ErrorLinkedInNotFound,
	}}

	githubOnly := emptyInvestigation()
	githubOnly.Snapshot.GitHubProfile = &model.GitHubProfile{Username: "janedoe"}

	cancelled := model.NewInvestigation("Jane Doe")
	cancelled.TimedOut = true

	failed := validatedInvestigation()
	failed.Errors = []string{"github: boom"}

	tests := []struct {
		name           string
		inv            *model.Investigation
		wantSources    int
		wantConfidence string
		wantRecommend  string
		wantStatus     string
	}{
		{"validated", validatedInvestigation(), 3, ConfidenceHigh, RecommendFurther, "Complete"},
		{"every source failed", emptyInvestigation(), 0, ConfidenceLow, RecommendLimited, "Complete"},
		{"people search links only", fallback, 1, ConfidenceLow, RecommendLimited, "Complete"},
		{"github only", githubOnly, 1, ConfidenceHigh, RecommendFurther, "Complete"},
		{"cancelled before reconciliation", cancelled, 0, ConfidenceLow, RecommendLimited, "Timed out (partial results)"},
		{"step errors", failed, 3, ConfidenceHigh, RecommendFurther, "Completed with errors"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			s := NewSummary(tt.inv, fixedTime)

			if s.TotalSources != tt.wantSources {
				t.Errorf("TotalSources = %d, want %d", s.TotalSources, tt.wantSources)
			}
			if s.Confidence != tt.wantConfidence {
				t.Errorf("Confidence = %q, want %q", s.Confidence, tt.wantConfidence)
			}
			if s.Recommendation != tt.wantRecommend {
				t.Errorf("Recommendation = %q, want %q", s.Recommendation, tt.wantRecommend)
			}
			if s.Status != tt.wantStatus {
				t.Errorf("Status = %q, want %q", s.Status, tt.wantStatus)
			}
			if !s.GeneratedAt.Equal(fixedTime) {
				t.Errorf("GeneratedAt = %v", s.GeneratedAt)
			}
		})
	}
}

func TestSimpleWriter(t *testing.T) {
	t.Parallel()

	t.Run("validated investigation", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewSimpleWriter(&buf)
		w.now = fixedNow

		n, err := w.Write(validatedInvestigation())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if n != buf.Len() {
			t.Errorf("returned %d bytes, wrote %d", n, buf.Len())
		}

		out := buf.String()
		for _, want := range []string{
			"COMPREHENSIVE OSINT REPORT",
			"Target:     Jane Doe",
			"Generated:  2026-10-19 09:30:15 UTC",
			"Profiles Found: 1",
			"1. https://www.linkedin.com/in/janedoe",
			"LINKEDIN VALIDATED VIA GITHUB",
			"Username:            janedoe",
			"Public Repositories: 12",
			"LinkedIn in GitHub:  https://www.linkedin.com/in/janedoe",
			"[*] raft (120 stars) Go",
			"Found: https://janedoe.dev",
			"Job Title: Senior Engineer",
			"[i] github linkedin matches search candidate",
			"Total Data Sources: 3",
			"Confidence Level:   High",
			"Recommendation:     Further investigation recommended",
			"Report generated from public sources only.",
		} {
			if !strings.Contains(out, want) {
				t.Errorf("output missing %q", want)
			}
		}
		if strings.Contains(out, "RAW SEARCH RESULTS") {
			t.Error("raw search results should only appear in verbose mode")
		}
	})

	t.Run("every source failed", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf).Write(emptyInvestigation()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		out := buf.String()
		for _, want := range []string{
			"No LinkedIn profiles found (blocked)",
			"No GitHub profile found (rate_limited)",
			"No portfolio website found",
			"Confidence Level:   Low",
			"Recommendation:     Limited public data available",
		} {
			if !strings.Contains(out, want) {
				t.Errorf("output missing %q", want)
			}
		}
		if strings.Contains(out, "VALIDATED") {
			t.Error("unexpected validation marker")
		}
	})

	t.Run("verbose adds raw search results", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf, WithVerbose(true)).Write(validatedInvestigation()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		out := buf.String()
		if !strings.Contains(out, "[DuckDuckGo] https://www.linkedin.com/in/janedoe") {
			t.Error("missing raw search result")
		}
		if !strings.Contains(out, "Steps: linkedin_search, linkedin_scrape, github, reconcile") {
			t.Error("missing performed steps")
		}
	})

	t.Run("investigation without snapshot", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf).Write(model.NewInvestigation("Jane Doe")); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "Total Data Sources: 0") {
			t.Error("expected an empty summary")
		}
	})
}

func TestMarkdownWriter(t *testing.T) {
	t.Parallel()

	t.Run("validated investigation", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewMarkdownWriter(&buf)
		w.now = fixedNow

		if _, err := w.Write(validatedInvestigation()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		out := buf.String()
		for _, want := range []string{
			"# Comprehensive OSINT Report",
			"## Summary",
			"## LinkedIn Findings",
			"## GitHub Findings",
			"## Portfolio/Website",
			"```mermaid",
			"[!IMPORTANT]",
			"Senior Engineer",
			"raft",
			"Found: https://janedoe.dev",
			"Report generated from public sources only.",
		} {
			if !strings.Contains(out, want) {
				t.Errorf("output missing %q", want)
			}
		}
	})

	t.Run("every source failed", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewMarkdownWriter(&buf).Write(emptyInvestigation()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		out := buf.String()
		if strings.Contains(out, "```mermaid") {
			t.Error("no chart expected without sources")
		}
		for _, want := range []string{"[!WARNING]", "No GitHub profile found (rate_limited)."} {
			if !strings.Contains(out, want) {
				t.Errorf("output missing %q", want)
			}
		}
	})
}

func TestJSONWriter(t *testing.T) {
	t.Parallel()

	t.Run("includes summary and snapshot", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf, WithPrettyPrint(), WithVersion("v1.2.3")).Write(validatedInvestigation()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var got struct {
			Version string `json:"version"`
			Summary struct {
				Confidence   string `json:"confidence"`
				TotalSources int    `json:"total_sources"`
			} `json:"summary"`
			Snapshot struct {
				ValidationStatus string `json:"validation_status"`
				PortfolioURL     string `json:"portfolio_url"`
			} `json:"snapshot"`
		}
		if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}

		if got.Version != "v1.2.3" {
			t.Errorf("Version = %q", got.Version)
		}
		if got.Summary.Confidence != ConfidenceHigh || got.Summary.TotalSources != 3 {
			t.Errorf("Summary = %+v", got.Summary)
		}
		if got.Snapshot.ValidationStatus != string(model.StatusGitHubValidated) {
			t.Errorf("ValidationStatus = %q", got.Snapshot.ValidationStatus)
		}
		if got.Snapshot.PortfolioURL != "https://janedoe.dev" {
			t.Errorf("PortfolioURL = %q", got.Snapshot.PortfolioURL)
		}
		if !strings.Contains(buf.String(), "\n  ") {
			t.Error("expected indented output")
		}
	})

	t.Run("snapshot is never null", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf).Write(model.NewInvestigation("Jane Doe")); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var got map[string]json.RawMessage
		if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if string(got["snapshot"]) == "null" {
			t.Error("snapshot should not be null")
		}
		if bytes.Count(buf.Bytes(), []byte("\n")) != 1 {
			t.Error("expected compact output")
		}
	})
}

func TestRows(t *testing.T) {
	t.Parallel()

	t.Run("records then github", func(t *testing.T) {
		t.Parallel()

		rows := Rows(validatedInvestigation())
		if len(rows) != 2 {
			t.Fatalf("expected 2 rows, got %d", len(rows))
		}
		if rows[0][0] != string(model.SourceLinkedInScrape) || rows[0][2] != "Jane Doe" || rows[0][4] != "Senior Engineer" {
			t.Errorf("unexpected linkedin row: %v", rows[0])
		}
		if rows[1][0] != "github" || rows[1][1] != "https://github.com/janedoe" {
			t.Errorf("unexpected github row: %v", rows[1])
		}
	})

	t.Run("unscraped candidates and github error", func(t *testing.T) {
		t.Parallel()

		inv := emptyInvestigation()
		inv.Snapshot.LinkedInCandidates = []string{"https://www.linkedin.com/in/a", "https://www.linkedin.com/in/b"}
		inv.Snapshot.LinkedInRecords = []model.CandidateRecord{{
			Source: model.SourceLinkedInScrape,
			URL:    "https://www.linkedin.com/in/a",
			Error:  model.ErrorLoginRequired,
		}}

		rows := Rows(inv)
		want := [][]string{
			{"linkedin_scrape", "https://www.linkedin.com/in/a", "", "", "", "", string(model.ErrorLoginRequired)},
			{"linkedin_search", "https://www.linkedin.com/in/b", "", "", "", "", ""},
			{"github", "", "", "", "", "", "rate_limited"},
		}
		if len(rows) != len(want) {
			t.Fatalf("expected %d rows, got %d: %v", len(want), len(rows), rows)
		}
		for i := range want {
			if !slices.Equal(rows[i], want[i]) {
				t.Errorf("row %d = %v, want %v", i, rows[i], want[i])
			}
		}
	})
}

func TestCSVWriter(t *testing.T) {
	t.Parallel()

	inv := validatedInvestigation()
	inv.Snapshot.LinkedInRecords[0].AboutText = "Builds things, \"reliably\"."

	var buf bytes.Buffer
	if _, err := NewCSVWriter(&buf).Write(inv); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("invalid CSV: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected header and 2 rows, got %d", len(records))
	}
	if !slices.Equal(records[0], Columns) {
		t.Errorf("header = %v", records[0])
	}
	if records[1][5] != "Builds things, \"reliably\"." {
		t.Errorf("about = %q", records[1][5])
	}
}

func TestTableWriter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if _, err := NewTableWriter(&buf).Write(validatedInvestigation()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"https://www.linkedin.com/in/janedoe", "github", "Engineer at Acme"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
}

func TestHTMLWriter(t *testing.T) {
	t.Parallel()

	inv := validatedInvestigation()
	inv.Snapshot.LinkedInRecords[0].AboutText = `<script>alert("x")</script>Hello`

	var buf bytes.Buffer
	if _, err := NewHTMLWriter(&buf).Write(inv); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out := buf.String()
	if !strings.HasPrefix(out, "<!DOCTYPE html>") {
		t.Error("expected an HTML document")
	}
	for _, want := range []string{"<title>OSINT Report: Jane Doe</title>", "<h1", "Comprehensive OSINT Report", "<table>"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
	if strings.Contains(out, "<script>") {
		t.Error("script tag was not sanitized")
	}
}

func TestNewWriter(t *testing.T) {
	t.Parallel()

	for _, format := range config.Formats() {
		t.Run(format, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			w, err := NewWriter(format, &buf, "v1.0.0")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if _, err := w.Write(validatedInvestigation()); err != nil {
				t.Fatalf("Write() error: %v", err)
			}
			if buf.Len() == 0 {
				t.Error("expected output")
			}
		})
	}

	t.Run("unknown format", func(t *testing.T) {
		t.Parallel()

		if _, err := NewWriter("yaml", &bytes.Buffer{}, ""); !errors.Is(err, ErrUnknownFormat) {
			t.Errorf("expected ErrUnknownFormat, got %v", err)
		}
	})
}

// failingWriter rejects every report.
type failingWriter struct{}

func (failingWriter) Write(*model.Investigation) (int, error) {
	return 0, errors.New("disk full")
}

func TestMultiWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes to all writers", func(t *testing.T) {
		t.Parallel()

		var text, csvOut bytes.Buffer
		mw := NewMultiWriter(NewSimpleWriter(&text), NewCSVWriter(&csvOut))

		n, err := mw.Write(validatedInvestigation())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if n != text.Len()+csvOut.Len() {
			t.Errorf("returned %d bytes, wrote %d", n, text.Len()+csvOut.Len())
		}
	})

	t.Run("stops at first error", func(t *testing.T) {
		t.Parallel()

		var after bytes.Buffer
		mw := NewMultiWriter(failingWriter{}, NewSimpleWriter(&after))

		if _, err := mw.Write(validatedInvestigation()); err == nil {
			t.Fatal("expected error")
		}
		if after.Len() != 0 {
			t.Error("writer after the failure should not run")
		}
	})
}

func TestStore(t *testing.T) {
	t.Parallel()

	t.Run("artifact name", func(t *testing.T) {
		t.Parallel()

		tests := []struct {
			target string
			want   string
		}{
			{"Jane Doe", "jane-doe_20261019_093015.txt"},
			{"José Díaz", "jose-diaz_20261019_093015.txt"},
			{"???", "unknown_20261019_093015.txt"},
		}
		for _, tt := range tests {
			if got := ArtifactName(tt.target, fixedTime, "txt"); got != tt.want {
				t.Errorf("ArtifactName(%q) = %q, want %q", tt.target, got, tt.want)
			}
		}
	})

	t.Run("never overwrites", func(t *testing.T) {
		t.Parallel()

		dir := filepath.Join(t.TempDir(), "reports")
		store := NewStore(dir, "v1.0.0")
		store.now = fixedNow

		first, err := store.Save(validatedInvestigation(), config.FormatText)
		if err != nil {
			t.Fatalf("first save: %v", err)
		}
		second, err := store.Save(emptyInvestigation(), config.FormatText)
		if err != nil {
			t.Fatalf("second save: %v", err)
		}

		if filepath.Base(first) != "jane-doe_20261019_093015.txt" {
			t.Errorf("first = %s", first)
		}
		if filepath.Base(second) != "jane-doe_20261019_093015_1.txt" {
			t.Errorf("second = %s", second)
		}

		data, err := os.ReadFile(first) //nolint:gosec // test file
		if err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(string(data), "LINKEDIN VALIDATED VIA GITHUB") {
			t.Error("first artifact was overwritten")
		}

		info, err := os.Stat(second)
		if err != nil {
			t.Fatal(err)
		}
		if perm := info.Mode().Perm(); perm != 0o600 {
			t.Errorf("permissions = %o, want 600", perm)
		}
	})

	t.Run("format decides extension", func(t *testing.T) {
		t.Parallel()

		store := NewStore(t.TempDir(), "")
		store.now = fixedNow

		path, err := store.Save(validatedInvestigation(), config.FormatCSV)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if filepath.Ext(path) != ".csv" {
			t.Errorf("path = %s", path)
		}
	})

	t.Run("unknown format leaves no file", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		store := NewStore(dir, "")

		if _, err := store.Save(validatedInvestigation(), "yaml"); !errors.Is(err, ErrUnknownFormat) {
			t.Fatalf("expected ErrUnknownFormat, got %v", err)
		}
		entries, err := os.ReadDir(dir)
		if err != nil {
			t.Fatal(err)
		}
		if len(entries) != 0 {
			t.Errorf("unexpected files: %v", entries)
		}
	})
}

func TestTruncateString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"short", 10, "short"},
		{"exactly10!", 10, "exactly10!"},
		{"this is too long", 10, "this is..."},
		{"abcdef", 3, "abc"},
		{"äöüäöüäöü", 5, "äö..."},
	}
	for _, tt := range tests {
		if got := truncateString(tt.in, tt.max); got != tt.want {
			t.Errorf("truncateString(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
		}
	}
}
