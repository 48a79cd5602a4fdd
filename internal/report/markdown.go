package report

import (
	"io"
	"strconv"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/nao1215/harvey/internal/model"
)

// MarkdownWriter outputs reports in GitHub-flavored Markdown.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the report in Markdown format.
func (w *MarkdownWriter) Write(inv *model.Investigation) (int, error) {
	md := markdown.NewMarkdown(w.output)
	snap := snapshotOf(inv)
	summary := w.summary(inv)

	w.writeHeader(md, summary)
	w.writeSummary(md, summary, snap)
	w.writeLinkedIn(md, inv, snap)
	w.writeGitHub(md, inv, snap)
	w.writePortfolio(md, snap)
	w.writeNotes(md, inv, snap)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, summary *Summary) {
	md.H1("Comprehensive OSINT Report")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Target", summary.Target},
			{"Generated", summary.GeneratedAt.Format(timeLayout)},
			{"Status", summary.Status},
			{"Validation", summary.ValidationStatus.String()},
		},
	})
	md.PlainText("")
}

func (w *MarkdownWriter) writeSummary(md *markdown.Markdown, summary *Summary, snap *model.Snapshot) {
	md.H2("Summary")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Metric", "Value"},
		Rows: [][]string{
			{"Total Data Sources", strconv.Itoa(summary.TotalSources)},
			{"Confidence Level", summary.Confidence},
			{"Recommendation", summary.Recommendation},
		},
	})
	md.PlainText("")

	if summary.TotalSources > 0 {
		w.writePieChart(md, snap)
	}
	w.writeAlert(md, summary, snap)
}

// writePieChart writes a mermaid pie chart of the data sources.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, snap *model.Snapshot) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Data Sources"),
		piechart.WithShowData(true),
	)

	if n := len(snap.LinkedInCandidates); n > 0 {
		label := "LinkedIn"
		if !snap.HasLinkedIn() {
			label = "Public links"
		}
		chart.LabelAndIntValue(label, uint64(n))
	}
	if snap.GitHubProfile != nil {
		chart.LabelAndIntValue("GitHub", 1)
	}
	if snap.PortfolioURL != "" {
		chart.LabelAndIntValue("Portfolio", 1)
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, summary *Summary, snap *model.Snapshot) {
	switch {
	case snap.IsValidated():
		md.Importantf("LinkedIn validated via GitHub: %s", snap.LinkedInCandidates[0])
	case summary.Confidence == ConfidenceHigh:
		md.Note("LinkedIn candidates are inferred from search results and have not been corroborated.")
	default:
		md.Warningf("%s for %s.", RecommendLimited, summary.Target)
	}
	md.PlainText("")
}

func (w *MarkdownWriter) writeLinkedIn(md *markdown.Markdown, inv *model.Investigation, snap *model.Snapshot) {
	md.H2("LinkedIn Findings")
	md.PlainText("")

	if !snap.HasLinkedIn() {
		msg := "No LinkedIn profiles found."
		if inv.SearchError != model.ErrorNone {
			msg = "No LinkedIn profiles found (" + string(inv.SearchError) + ")."
		}
		md.PlainText(msg)
		md.PlainText("")
		if len(snap.LinkedInCandidates) > 0 {
			md.PlainText("Other public links:")
			md.PlainText("")
			md.BulletList(snap.LinkedInCandidates...)
			md.PlainText("")
		}
		return
	}

	md.PlainTextf("Profiles Found: %d", len(snap.LinkedInCandidates))
	md.PlainText("")

	rows := make([][]string, 0, len(snap.LinkedInRecords))
	for _, r := range snap.LinkedInRecords {
		rows = append(rows, []string{
			r.URL,
			orDefault(r.FullName, "-"),
			truncateString(orDefault(r.Title, "-"), 50),
			orDefault(r.JobTitle, "-"),
			orDefault(string(r.Error), "-"),
		})
	}
	if len(rows) == 0 {
		md.BulletList(snap.LinkedInCandidates...)
		md.PlainText("")
	} else {
		md.Table(markdown.TableSet{
			Header: []string{"Profile", "Name", "Title", "Job Title", "Error"},
			Rows:   rows,
		})
		md.PlainText("")
	}

	for _, r := range snap.LinkedInRecords {
		if r.AboutText != "" {
			md.Details(orDefault(r.FullName, r.URL), r.AboutText)
		}
	}
	md.PlainText("")
}

func (w *MarkdownWriter) writeGitHub(md *markdown.Markdown, inv *model.Investigation, snap *model.Snapshot) {
	md.H2("GitHub Findings")
	md.PlainText("")

	gh := snap.GitHubProfile
	if gh == nil {
		msg := "No GitHub profile found."
		if inv.GitHubError != model.ErrorNone {
			msg = "No GitHub profile found (" + string(inv.GitHubError) + ")."
		}
		md.PlainText(msg)
		md.PlainText("")
		return
	}

	rows := [][]string{
		{"Username", gh.Username},
		{"Name", orDefault(gh.DisplayName, "Not provided")},
		{"Bio", orDefault(gh.Bio, "Not provided")},
		{"Location", orDefault(gh.Location, "Not provided")},
		{"Public Repositories", strconv.Itoa(gh.PublicRepos)},
		{"Followers", strconv.Itoa(gh.Followers)},
		{"Following", strconv.Itoa(gh.Following)},
	}
	if gh.LinkedInFromBio != "" {
		rows = append(rows, []string{"LinkedIn in GitHub", gh.LinkedInFromBio})
	}
	if gh.EmailFromBio != "" {
		rows = append(rows, []string{"Email", gh.EmailFromBio})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Field", "Value"},
		Rows:   rows,
	})
	md.PlainText("")

	if len(gh.TopRepos) == 0 {
		return
	}

	repos := make([][]string, len(gh.TopRepos))
	for i, r := range gh.TopRepos {
		repos[i] = []string{
			r.Name,
			strconv.Itoa(r.Stars),
			orDefault(r.Language, "-"),
			truncateString(orDefault(r.Description, "-"), 60),
		}
	}
	md.PlainText("### Top Repositories")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Repository", "Stars", "Language", "Description"},
		Rows:   repos,
	})
	md.PlainText("")
}

func (w *MarkdownWriter) writePortfolio(md *markdown.Markdown, snap *model.Snapshot) {
	md.H2("Portfolio/Website")
	md.PlainText("")

	if snap.PortfolioURL == "" {
		md.PlainText("No portfolio website found.")
	} else {
		md.PlainTextf("Found: %s", snap.PortfolioURL)
	}
	md.PlainText("")
}

func (w *MarkdownWriter) writeNotes(md *markdown.Markdown, inv *model.Investigation, snap *model.Snapshot) {
	if len(snap.Notes) == 0 && len(inv.Errors) == 0 {
		return
	}

	md.H2("Notes")
	md.PlainText("")
	if len(snap.Notes) > 0 {
		md.BulletList(snap.Notes...)
		md.PlainText("")
	}
	if len(inv.Errors) > 0 {
		md.Cautionf("%d step(s) failed: %s", len(inv.Errors), inv.Errors[0])
		md.PlainText("")
	}
}

func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainText("*Report generated from public sources only.*")
}
