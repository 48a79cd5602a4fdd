package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/nao1215/harvey/internal/model"
)

func TestCompareInvestigations(t *testing.T) {
	t.Parallel()

	base := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)

	t.Run("candidate and field changes", func(t *testing.T) {
		t.Parallel()

		previous := storedInvestigation("Jane Doe", base,
			"https://www.linkedin.com/in/janedoe",
			"https://www.linkedin.com/in/jane-doe-42",
		)
		current := storedInvestigation("Jane Doe", base.Add(24*time.Hour),
			"https://www.linkedin.com/in/janedoe",
			"https://www.linkedin.com/in/jdoe",
		)
		current.Snapshot.ValidationStatus = model.StatusGitHubValidated
		current.Snapshot.GitHubProfile = &model.GitHubProfile{Username: "janedoe"}
		current.Snapshot.PortfolioURL = "https://jane.dev"

		result := compareInvestigations(previous, current)

		if len(result.NewCandidates) != 1 || result.NewCandidates[0] != "https://www.linkedin.com/in/jdoe" {
			t.Errorf("unexpected new candidates %v", result.NewCandidates)
		}
		if len(result.RemovedCandidates) != 1 || result.RemovedCandidates[0] != "https://www.linkedin.com/in/jane-doe-42" {
			t.Errorf("unexpected removed candidates %v", result.RemovedCandidates)
		}
		if result.UnchangedCount != 1 {
			t.Errorf("expected 1 unchanged candidate, got %d", result.UnchangedCount)
		}

		fields := make(map[string]FieldChange)
		for _, c := range result.Changes {
			fields[c.Field] = c
		}
		if c, ok := fields[fieldValidation]; !ok || c.Current != "GitHub validated" {
			t.Errorf("expected validation change, got %+v", result.Changes)
		}
		if c, ok := fields[fieldGitHub]; !ok || c.Previous != "" || c.Current != "janedoe" {
			t.Errorf("expected github change, got %+v", result.Changes)
		}
		if _, ok := fields[fieldPortfolio]; !ok {
			t.Errorf("expected portfolio change, got %+v", result.Changes)
		}
		if _, ok := fields[fieldEmail]; ok {
			t.Errorf("unchanged email reported as change: %+v", result.Changes)
		}
		if result.Current.TotalSources-result.Previous.TotalSources != 2 {
			t.Errorf("expected two more sources, got %d -> %d", result.Previous.TotalSources, result.Current.TotalSources)
		}
	})

	t.Run("identical runs", func(t *testing.T) {
		t.Parallel()

		previous := storedInvestigation("Jane Doe", base, "https://www.linkedin.com/in/janedoe")
		current := storedInvestigation("Jane Doe", base.Add(time.Hour), "https://www.linkedin.com/in/janedoe")

		result := compareInvestigations(previous, current)
		if len(result.Changes) != 0 || len(result.NewCandidates) != 0 || len(result.RemovedCandidates) != 0 {
			t.Errorf("expected no changes, got %+v", result)
		}

		var buf bytes.Buffer
		outputComparisonText(&buf, result)
		if !strings.Contains(buf.String(), "No changes.") {
			t.Errorf("expected 'No changes.', got %q", buf.String())
		}
	})
}

func TestFormatDelta(t *testing.T) {
	t.Parallel()

	tests := map[int]string{3: "+3", 0: "0", -2: "-2"}
	for in, want := range tests {
		if got := formatDelta(in); got != want {
			t.Errorf("formatDelta(%d) = %q, want %q", in, got, want)
		}
	}
}

func TestRunHistoryCmd(t *testing.T) {
	t.Parallel()

	base := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	older := storedInvestigation("Jane Doe", base, "https://www.linkedin.com/in/jane-doe-42")
	newer := storedInvestigation("Jane Doe", base.Add(time.Hour), "https://www.linkedin.com/in/janedoe")
	other := storedInvestigation("John Smith", base, "https://www.linkedin.com/in/johnsmith")
	dir := seedDB(t, older, newer, other)

	// Subtests share one database file and run sequentially.

	t.Run("lists people", func(t *testing.T) {
		out, err := runRoot(t, "history", "--db-dir", dir)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(out, "Investigated people (2)") {
			t.Errorf("unexpected output %q", out)
		}
		if !strings.Contains(out, "Jane Doe") || !strings.Contains(out, "John Smith") {
			t.Errorf("expected both people listed, got %q", out)
		}
	})

	t.Run("lists investigations of a person", func(t *testing.T) {
		out, err := runRoot(t, "history", "--db-dir", dir, "--list", "jane doe")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(out, "(2)") {
			t.Errorf("expected two investigations, got %q", out)
		}
	})

	t.Run("compares latest two as JSON", func(t *testing.T) {
		out, err := runRoot(t, "history", "--db-dir", dir, "--json", "Jane Doe")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var result ComparisonResult
		if err := json.Unmarshal([]byte(out), &result); err != nil {
			t.Fatalf("invalid JSON: %v\n%s", err, out)
		}
		if result.Current.ID != newer.ID || result.Previous.ID != older.ID {
			t.Errorf("compared wrong runs: %+v", result)
		}
		if len(result.NewCandidates) != 1 || len(result.RemovedCandidates) != 1 {
			t.Errorf("unexpected candidate diff: %+v", result)
		}
	})

	t.Run("markdown comparison", func(t *testing.T) {
		out, err := runRoot(t, "history", "--db-dir", dir, "--markdown", "Jane Doe")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(out, "# Investigation Comparison: Jane Doe") {
			t.Errorf("unexpected output %q", out)
		}
		if !strings.Contains(out, "~~https://www.linkedin.com/in/jane-doe-42~~") {
			t.Errorf("expected removed candidate struck through, got %q", out)
		}
	})

	t.Run("one investigation is not enough", func(t *testing.T) {
		if _, err := runRoot(t, "history", "--db-dir", dir, "John Smith"); err == nil {
			t.Error("expected error with a single investigation")
		}
	})

	t.Run("with-id of another person is rejected", func(t *testing.T) {
		// Row 3 is John Smith.
		_, err := runRoot(t, "history", "--db-dir", dir, "--with-id", "3", "Jane Doe")
		if err == nil || !strings.Contains(err.Error(), "belongs to") {
			t.Errorf("expected 'belongs to' error, got %v", err)
		}
	})

	t.Run("lookup", func(t *testing.T) {
		out, err := runRoot(t, "history", "--db-dir", dir, "--lookup", "https://www.linkedin.com/in/janedoe")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(out, "Jane Doe (linkedin)") {
			t.Errorf("unexpected output %q", out)
		}
	})

	t.Run("empty database directory", func(t *testing.T) {
		out, err := runRoot(t, "history", "--db-dir", t.TempDir())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(out, "No investigations stored yet.") {
			t.Errorf("unexpected output %q", out)
		}
	})

	t.Run("list requires a name", func(t *testing.T) {
		if _, err := runRoot(t, "history", "--db-dir", dir, "--list"); err == nil {
			t.Error("expected error without a name")
		}
	})
}
