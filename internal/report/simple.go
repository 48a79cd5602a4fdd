package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/nao1215/harvey/internal/model"
)

// maxListedProfiles caps the LinkedIn profiles listed in text reports.
const maxListedProfiles = 5

// timeLayout formats timestamps in human-readable reports.
const timeLayout = "2006-01-02 15:04:05 MST"

// SimpleWriter outputs human-readable plain text reports.
type SimpleWriter struct {
	baseWriter

	// verbose adds the raw search results and the completed steps.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithVerbose enables verbose output with additional details.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the report in human-readable format.
func (w *SimpleWriter) Write(inv *model.Investigation) (int, error) {
	var sb strings.Builder
	snap := snapshotOf(inv)
	summary := w.summary(inv)

	w.writeHeader(&sb, summary)
	w.writeLinkedIn(&sb, inv, snap)
	w.writeGitHub(&sb, inv, snap)
	w.writePortfolio(&sb, snap)
	w.writeProfiles(&sb, snap)
	if w.verbose {
		w.writeSearch(&sb, inv)
	}
	w.writeNotes(&sb, inv, snap)
	w.writeSummary(&sb, summary)
	w.writeFooter(&sb)

	return io.WriteString(w.output, sb.String())
}

func section(sb *strings.Builder, title string) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString(title)
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")
}

func (w *SimpleWriter) writeHeader(sb *strings.Builder, summary *Summary) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                     COMPREHENSIVE OSINT REPORT\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	fmt.Fprintf(sb, "Target:     %s\n", summary.Target)
	fmt.Fprintf(sb, "Generated:  %s\n", summary.GeneratedAt.Format(timeLayout))
	fmt.Fprintf(sb, "Status:     %s\n", summary.Status)
	fmt.Fprintf(sb, "Validation: %s\n", summary.ValidationStatus)
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeLinkedIn(sb *strings.Builder, inv *model.Investigation, snap *model.Snapshot) {
	section(sb, "LINKEDIN FINDINGS")

	if !snap.HasLinkedIn() {
		sb.WriteString("  No LinkedIn profiles found")
		if inv.SearchError != model.ErrorNone {
			fmt.Fprintf(sb, " (%s)", inv.SearchError)
		}
		sb.WriteString("\n")
		if len(snap.LinkedInCandidates) > 0 {
			sb.WriteString("\n  Other public links:\n")
			for i, u := range snap.LinkedInCandidates {
				fmt.Fprintf(sb, "  %d. %s\n", i+1, u)
			}
		}
		sb.WriteString("\n")
		return
	}

	fmt.Fprintf(sb, "  Profiles Found: %d\n", len(snap.LinkedInCandidates))
	for i, u := range snap.LinkedInCandidates {
		if i == maxListedProfiles {
			break
		}
		fmt.Fprintf(sb, "  %d. %s\n", i+1, u)
	}

	if snap.IsValidated() {
		sb.WriteString("\n  ** LINKEDIN VALIDATED VIA GITHUB **\n")
		sb.WriteString("  Using authoritative LinkedIn from GitHub profile\n")
	}
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeGitHub(sb *strings.Builder, inv *model.Investigation, snap *model.Snapshot) {
	section(sb, "GITHUB FINDINGS")

	gh := snap.GitHubProfile
	if gh == nil {
		sb.WriteString("  No GitHub profile found")
		if inv.GitHubError != model.ErrorNone {
			fmt.Fprintf(sb, " (%s)", inv.GitHubError)
		}
		sb.WriteString("\n\n")
		return
	}

	fmt.Fprintf(sb, "  Username:            %s\n", gh.Username)
	fmt.Fprintf(sb, "  Name:                %s\n", orDefault(gh.DisplayName, "Not provided"))
	fmt.Fprintf(sb, "  Bio:                 %s\n", orDefault(gh.Bio, "Not provided"))
	fmt.Fprintf(sb, "  Location:            %s\n", orDefault(gh.Location, "Not provided"))
	fmt.Fprintf(sb, "  Public Repositories: %d\n", gh.PublicRepos)
	fmt.Fprintf(sb, "  Followers:           %d\n", gh.Followers)
	fmt.Fprintf(sb, "  Following:           %d\n", gh.Following)
	if gh.LinkedInFromBio != "" {
		fmt.Fprintf(sb, "  LinkedIn in GitHub:  %s\n", gh.LinkedInFromBio)
	}
	if gh.EmailFromBio != "" {
		fmt.Fprintf(sb, "  Email:               %s\n", gh.EmailFromBio)
	}

	if len(gh.TopRepos) > 0 {
		sb.WriteString("\n  Top Repositories:\n")
		for _, r := range gh.TopRepos {
			fmt.Fprintf(sb, "  [*] %s (%d stars)", r.Name, r.Stars)
			if r.Language != "" {
				fmt.Fprintf(sb, " %s", r.Language)
			}
			sb.WriteString("\n")
			if r.Description != "" {
				fmt.Fprintf(sb, "      %s\n", truncateString(r.Description, 80))
			}
		}
	}
	sb.WriteString("\n")
}

func (w *SimpleWriter) writePortfolio(sb *strings.Builder, snap *model.Snapshot) {
	section(sb, "PORTFOLIO/WEBSITE")

	if snap.PortfolioURL == "" {
		sb.WriteString("  No portfolio website found\n\n")
		return
	}
	fmt.Fprintf(sb, "  Found: %s\n\n", snap.PortfolioURL)
}

func (w *SimpleWriter) writeProfiles(sb *strings.Builder, snap *model.Snapshot) {
	if len(snap.LinkedInRecords) == 0 {
		return
	}

	section(sb, "PROFILE DETAILS")

	for _, r := range snap.LinkedInRecords {
		fmt.Fprintf(sb, "  [%s] %s\n", r.Source, r.URL)
		if r.FullName != "" {
			fmt.Fprintf(sb, "    Name:      %s\n", r.FullName)
		}
		if r.Title != "" {
			fmt.Fprintf(sb, "    Title:     %s\n", r.Title)
		}
		if r.JobTitle != "" {
			fmt.Fprintf(sb, "    Job Title: %s\n", r.JobTitle)
		}
		if r.AboutText != "" {
			fmt.Fprintf(sb, "    About:     %s\n", truncateString(r.AboutText, 200))
		}
		if r.HasError() {
			fmt.Fprintf(sb, "    Error:     %s\n", r.Error)
		}
		sb.WriteString("\n")
	}
}

func (w *SimpleWriter) writeSearch(sb *strings.Builder, inv *model.Investigation) {
	section(sb, "RAW SEARCH RESULTS")

	if len(inv.SearchCandidates) == 0 {
		sb.WriteString("  No search results\n")
	}
	for _, c := range inv.SearchCandidates {
		fmt.Fprintf(sb, "  [%s] %s\n", c.Origin, c.URL)
	}
	if len(inv.PerformedSteps) > 0 {
		fmt.Fprintf(sb, "\n  Steps: %s\n", strings.Join(inv.PerformedSteps, ", "))
	}
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeNotes(sb *strings.Builder, inv *model.Investigation, snap *model.Snapshot) {
	if len(snap.Notes) == 0 && len(inv.Errors) == 0 {
		return
	}

	section(sb, "NOTES")

	for _, n := range snap.Notes {
		fmt.Fprintf(sb, "  [i] %s\n", n)
	}
	for _, e := range inv.Errors {
		fmt.Fprintf(sb, "  [!] %s\n", e)
	}
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeSummary(sb *strings.Builder, summary *Summary) {
	section(sb, "SUMMARY")

	fmt.Fprintf(sb, "  Total Data Sources: %d\n", summary.TotalSources)
	fmt.Fprintf(sb, "  Confidence Level:   %s\n", summary.Confidence)
	fmt.Fprintf(sb, "  Recommendation:     %s\n", summary.Recommendation)
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeFooter(sb *strings.Builder) {
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("Report generated from public sources only.\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
}
