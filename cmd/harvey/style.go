package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/nao1215/harvey/internal/model"
	"github.com/nao1215/harvey/internal/report"
)

// Console styles for progress and summary output.
var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("99"))

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	urlStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")).
			Underline(true)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Padding(0, 1)
)

// renderSummary formats the console summary shown after an investigation.
// artifact is the saved report path, if any.
func renderSummary(inv *model.Investigation, s *report.Summary, artifact string) string {
	snap := inv.EnsureSnapshot()

	lines := []string{headerStyle.Render(s.Target)}
	lines = append(lines, field("Status", statusStyle(s.Status).Render(s.Status)))
	lines = append(lines, field("Validation", validationStyle(snap.ValidationStatus).Render(snap.ValidationStatus.String())))
	lines = append(lines, field("Sources", fmt.Sprintf("%d", s.TotalSources)))
	lines = append(lines, field("Confidence", s.Confidence))

	if snap.HasLinkedIn() {
		lines = append(lines, field("LinkedIn", urlStyle.Render(snap.LinkedInCandidates[0])))
	}
	if gh := snap.GitHubProfile; gh != nil {
		lines = append(lines, field("GitHub", urlStyle.Render(gh.ProfileURL)))
	}
	if snap.PortfolioURL != "" {
		lines = append(lines, field("Portfolio", urlStyle.Render(snap.PortfolioURL)))
	}
	if artifact != "" {
		lines = append(lines, field("Saved", artifact))
	}

	return boxStyle.Render(strings.Join(lines, "\n"))
}

func field(label, value string) string {
	return labelStyle.Render(fmt.Sprintf("%-11s", label+":")) + " " + value
}

func statusStyle(status string) lipgloss.Style {
	if status == "Complete" {
		return successStyle
	}
	return warningStyle
}

func validationStyle(status model.ValidationStatus) lipgloss.Style {
	if status == model.StatusGitHubValidated {
		return successStyle
	}
	return warningStyle
}

// formatError formats an error line for the console.
func formatError(msg string) string {
	return errorStyle.Render("error: ") + msg
}
