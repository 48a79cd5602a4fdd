package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/nao1215/harvey/internal/database"
	"github.com/nao1215/harvey/internal/model"
)

const historyTimeLayout = "2006-01-02 15:04:05"

// NewHistoryCmd creates the history command.
// It lists stored investigations and compares the latest two of a person.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [NAME]",
		Short: "List past investigations and show what changed",
		Long: `History shows investigations stored in the database.

Without a name it lists every investigated person. With a name it compares
the latest two investigations of that person and shows:
- LinkedIn candidates that appeared or disappeared
- Changes of the validation status, GitHub account and portfolio

Examples:
  # List investigated people
  harvey history

  # Compare the latest two investigations of a person
  harvey history "Jane Doe"

  # List every investigation of a person
  harvey history --list "Jane Doe"

  # Compare the latest investigation with a specific one
  harvey history --with-id 3 "Jane Doe"

  # Find which investigations uncovered an identifier
  harvey history --lookup https://www.linkedin.com/in/janedoe`,
		Args: cobra.ArbitraryArgs,
		RunE: runHistoryCmd,
	}

	cmd.Flags().BoolP("list", "l", false,
		"List all investigations of the specified person")
	cmd.Flags().Int64P("with-id", "i", 0,
		"Compare with a specific investigation by ID (use --list to see available IDs)")
	cmd.Flags().String("lookup", "",
		"Find investigations that uncovered this LinkedIn URL, GitHub login, email or portfolio URL")

	cmd.Flags().BoolP("json", "j", false,
		"Output comparison result in JSON format")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output comparison result in Markdown format")

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, args []string) error {
	lookup, err := cmd.Flags().GetString("lookup")
	if err != nil {
		return err
	}
	listRuns, err := cmd.Flags().GetBool("list")
	if err != nil {
		return err
	}
	withID, err := cmd.Flags().GetInt64("with-id")
	if err != nil {
		return err
	}
	jsonOutput, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}
	markdownOutput, err := cmd.Flags().GetBool("markdown")
	if err != nil {
		return err
	}
	if jsonOutput && markdownOutput {
		return errors.New("--json and --markdown are mutually exclusive")
	}

	target := strings.Join(normalizeTargets(args), " ")
	if target == "" && (listRuns || withID != 0) {
		return errors.New("a name is required with --list and --with-id")
	}

	out := cmd.OutOrStdout()

	db, err := database.Open(dbDir(cmd), database.Options{EnableWAL: true})
	if errors.Is(err, database.ErrDatabaseNotFound) {
		fmt.Fprintln(out, "No investigations stored yet.")
		fmt.Fprintln(out, "\nUse 'harvey investigate <name>' to research someone.")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	ctx := cmd.Context()

	switch {
	case lookup != "":
		return lookupIdentifier(ctx, out, db, lookup)
	case target == "":
		return listTargets(ctx, out, db)
	case listRuns:
		return listHistory(ctx, out, db, target)
	}

	result, err := runComparison(ctx, db, target, withID)
	if err != nil {
		return err
	}
	switch {
	case jsonOutput:
		return outputComparisonJSON(out, result)
	case markdownOutput:
		outputComparisonMarkdown(out, result)
	default:
		outputComparisonText(out, result)
	}
	return nil
}

// listTargets lists every investigated person.
func listTargets(ctx context.Context, out io.Writer, db *database.SnapshotDB) error {
	targets, err := db.ListTargets(ctx)
	if err != nil {
		return err
	}

	if len(targets) == 0 {
		fmt.Fprintln(out, "No investigations stored yet.")
		fmt.Fprintln(out, "\nUse 'harvey investigate <name>' to research someone.")
		return nil
	}

	fmt.Fprintf(out, "Investigated people (%d):\n\n", len(targets))
	for _, t := range targets {
		fmt.Fprintf(out, "  • %s\n", t)
	}
	fmt.Fprintln(out, "\nUse 'harvey history --list <name>' to see the investigations of a person.")
	return nil
}

// listHistory lists every investigation of target.
func listHistory(ctx context.Context, out io.Writer, db *database.SnapshotDB, target string) error {
	runs, err := db.HistoryMetadata(ctx, target)
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Fprintf(out, "No investigations found for %s\n", target)
		return nil
	}

	fmt.Fprintf(out, "Investigations of %s (%d):\n\n", target, len(runs))
	fmt.Fprintf(out, "  %-6s  %-20s  %-18s  %-8s  %s\n", "ID", "Date", "Validation", "Sources", "Portfolio")
	fmt.Fprintln(out, "  "+strings.Repeat("-", 70))

	for _, run := range runs {
		portfolio := run.PortfolioURL
		if portfolio == "" {
			portfolio = "-"
		}
		status := run.ValidationStatus.String()
		if run.TimedOut {
			status += "*"
		}
		fmt.Fprintf(out, "  %-6d  %-20s  %-18s  %-8d  %s\n",
			run.ID,
			run.StartedAt.Local().Format(historyTimeLayout),
			status,
			run.SourceCount,
			portfolio,
		)
	}

	fmt.Fprintln(out, "\n* timed out, partial results")
	fmt.Fprintln(out, "Use 'harvey history <name>' to compare the latest two investigations.")
	fmt.Fprintln(out, "Use 'harvey history --with-id <id> <name>' to compare with a specific one.")
	return nil
}

// lookupIdentifier lists the investigations that uncovered value.
func lookupIdentifier(ctx context.Context, out io.Writer, db *database.SnapshotDB, value string) error {
	matches, err := db.FindIdentifier(ctx, strings.TrimSpace(value))
	if err != nil {
		return err
	}

	if len(matches) == 0 {
		fmt.Fprintf(out, "No investigation uncovered %s\n", value)
		return nil
	}

	fmt.Fprintf(out, "%s was found in %d investigation(s):\n\n", value, len(matches))
	for _, m := range matches {
		fmt.Fprintf(out, "  [%d] %s (%s)\n", m.InvestigationID, m.Target, m.Kind)
	}
	return nil
}

// runComparison compares the latest investigation of target with the
// previous one, or with the investigation withID when it is non-zero.
func runComparison(ctx context.Context, db *database.SnapshotDB, target string, withID int64) (*ComparisonResult, error) {
	history, err := db.History(ctx, target, 2)
	if err != nil {
		return nil, err
	}

	if len(history) == 0 {
		return nil, fmt.Errorf("no investigations found for %s", target)
	}

	current := history[0]
	var previous *model.Investigation

	if withID > 0 {
		previous, err = db.GetInvestigation(ctx, withID)
		if err != nil {
			return nil, fmt.Errorf("failed to get investigation %d: %w", withID, err)
		}
		if previous == nil {
			return nil, fmt.Errorf("investigation %d not found", withID)
		}
		if database.TargetKey(previous.Target) != database.TargetKey(target) {
			return nil, fmt.Errorf("investigation %d belongs to %s, not %s", withID, previous.Target, target)
		}
	} else {
		if len(history) < 2 {
			return nil, fmt.Errorf("at least 2 investigations are required for comparison (found %d)", len(history))
		}
		previous = history[1]
	}

	return compareInvestigations(previous, current), nil
}

// ComparisonResult holds the result of comparing two investigations of
// the same person.
type ComparisonResult struct {
	Target string `json:"target"`

	Previous RunMetadata `json:"previous"`
	Current  RunMetadata `json:"current"`

	// NewCandidates are LinkedIn candidates only the current run found.
	NewCandidates []string `json:"new_candidates,omitempty"`

	// RemovedCandidates are LinkedIn candidates only the previous run found.
	RemovedCandidates []string `json:"removed_candidates,omitempty"`

	// UnchangedCount is the number of candidates both runs found.
	UnchangedCount int `json:"unchanged_count"`

	// Changes lists the snapshot fields whose value differs.
	Changes []FieldChange `json:"changes,omitempty"`
}

// RunMetadata describes one side of a comparison.
type RunMetadata struct {
	ID               string                 `json:"id"`
	StartedAt        time.Time              `json:"started_at"`
	ValidationStatus model.ValidationStatus `json:"validation_status"`
	TotalSources     int                    `json:"total_sources"`
}

// FieldChange is a snapshot field that differs between two runs.
type FieldChange struct {
	Field    string `json:"field"`
	Previous string `json:"previous"`
	Current  string `json:"current"`
}

// Compared snapshot fields.
const (
	fieldValidation = "validation"
	fieldGitHub     = "github"
	fieldPortfolio  = "portfolio"
	fieldEmail      = "email"
)

// compareInvestigations compares two investigations.
func compareInvestigations(previous, current *model.Investigation) *ComparisonResult {
	prevSnap := previous.EnsureSnapshot()
	curSnap := current.EnsureSnapshot()

	result := &ComparisonResult{
		Target:   current.Target,
		Previous: runMetadata(previous),
		Current:  runMetadata(current),
	}

	previousSet := make(map[string]bool, len(prevSnap.LinkedInCandidates))
	for _, u := range prevSnap.LinkedInCandidates {
		previousSet[u] = true
	}
	currentSet := make(map[string]bool, len(curSnap.LinkedInCandidates))
	for _, u := range curSnap.LinkedInCandidates {
		currentSet[u] = true
	}

	for _, u := range curSnap.LinkedInCandidates {
		if !previousSet[u] {
			result.NewCandidates = append(result.NewCandidates, u)
		}
	}
	for _, u := range prevSnap.LinkedInCandidates {
		if currentSet[u] {
			result.UnchangedCount++
		} else {
			result.RemovedCandidates = append(result.RemovedCandidates, u)
		}
	}

	result.Changes = diffFields(
		[]FieldChange{
			{Field: fieldValidation, Previous: prevSnap.ValidationStatus.String(), Current: curSnap.ValidationStatus.String()},
			{Field: fieldGitHub, Previous: githubLogin(prevSnap), Current: githubLogin(curSnap)},
			{Field: fieldPortfolio, Previous: prevSnap.PortfolioURL, Current: curSnap.PortfolioURL},
			{Field: fieldEmail, Previous: githubEmail(prevSnap), Current: githubEmail(curSnap)},
		},
	)

	return result
}

func runMetadata(inv *model.Investigation) RunMetadata {
	snap := inv.EnsureSnapshot()
	return RunMetadata{
		ID:               inv.ID,
		StartedAt:        inv.StartedAt,
		ValidationStatus: snap.ValidationStatus,
		TotalSources:     snap.SourceCount(),
	}
}

// diffFields keeps the pairs whose values differ.
func diffFields(pairs []FieldChange) []FieldChange {
	changes := make([]FieldChange, 0, len(pairs))
	for _, p := range pairs {
		if p.Previous != p.Current {
			changes = append(changes, p)
		}
	}
	return changes
}

func githubLogin(snap *model.Snapshot) string {
	if snap.GitHubProfile == nil {
		return ""
	}
	return snap.GitHubProfile.Username
}

func githubEmail(snap *model.Snapshot) string {
	if snap.GitHubProfile == nil {
		return ""
	}
	return snap.GitHubProfile.EmailFromBio
}

// outputComparisonJSON outputs the comparison result in JSON format.
func outputComparisonJSON(out io.Writer, result *ComparisonResult) error {
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

// outputComparisonMarkdown outputs the comparison result in Markdown format.
func outputComparisonMarkdown(out io.Writer, result *ComparisonResult) {
	fmt.Fprintf(out, "# Investigation Comparison: %s\n\n", result.Target)

	fmt.Fprintln(out, "## Summary")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "| Metric | Previous | Current | Change |")
	fmt.Fprintln(out, "|--------|----------|---------|--------|")
	fmt.Fprintf(out, "| Date | %s | %s | - |\n",
		result.Previous.StartedAt.Format("2006-01-02 15:04"),
		result.Current.StartedAt.Format("2006-01-02 15:04"))
	fmt.Fprintf(out, "| Validation | %s | %s | - |\n",
		result.Previous.ValidationStatus, result.Current.ValidationStatus)
	fmt.Fprintf(out, "| **Sources** | **%d** | **%d** | **%s** |\n",
		result.Previous.TotalSources, result.Current.TotalSources,
		formatDelta(result.Current.TotalSources-result.Previous.TotalSources))

	if len(result.Changes) > 0 {
		fmt.Fprintf(out, "\n## Changed Fields (%d)\n\n", len(result.Changes))
		for _, c := range result.Changes {
			fmt.Fprintf(out, "- **%s**: %s → %s\n", c.Field, orNone(c.Previous), orNone(c.Current))
		}
	}

	if len(result.NewCandidates) > 0 {
		fmt.Fprintf(out, "\n## New LinkedIn Candidates (%d)\n\n", len(result.NewCandidates))
		for _, u := range result.NewCandidates {
			fmt.Fprintf(out, "- %s\n", u)
		}
	}

	if len(result.RemovedCandidates) > 0 {
		fmt.Fprintf(out, "\n## Removed LinkedIn Candidates (%d)\n\n", len(result.RemovedCandidates))
		for _, u := range result.RemovedCandidates {
			fmt.Fprintf(out, "- ~~%s~~\n", u)
		}
	}

	if result.UnchangedCount > 0 {
		fmt.Fprintf(out, "\n---\n\n*%d candidates unchanged*\n", result.UnchangedCount)
	}
}

// outputComparisonText outputs the comparison result in human-readable text format.
func outputComparisonText(out io.Writer, result *ComparisonResult) {
	fmt.Fprintf(out, "Investigation Comparison: %s\n", result.Target)
	fmt.Fprintln(out, strings.Repeat("=", 60))

	fmt.Fprintf(out, "\nPrevious run: %s\n", result.Previous.StartedAt.Local().Format(historyTimeLayout))
	fmt.Fprintf(out, "Current run:  %s\n", result.Current.StartedAt.Local().Format(historyTimeLayout))

	fmt.Fprintf(out, "\nSources: %d -> %d (%s)\n",
		result.Previous.TotalSources, result.Current.TotalSources,
		formatDelta(result.Current.TotalSources-result.Previous.TotalSources))

	if len(result.Changes) > 0 {
		fmt.Fprintf(out, "\nChanged Fields (%d):\n", len(result.Changes))
		for _, c := range result.Changes {
			fmt.Fprintf(out, "  %-10s  %s -> %s\n", c.Field, orNone(c.Previous), orNone(c.Current))
		}
	}

	if len(result.NewCandidates) > 0 {
		fmt.Fprintf(out, "\nNew LinkedIn Candidates (%d):\n", len(result.NewCandidates))
		for _, u := range result.NewCandidates {
			fmt.Fprintf(out, "  [+] %s\n", u)
		}
	}

	if len(result.RemovedCandidates) > 0 {
		fmt.Fprintf(out, "\nRemoved LinkedIn Candidates (%d):\n", len(result.RemovedCandidates))
		for _, u := range result.RemovedCandidates {
			fmt.Fprintf(out, "  [-] %s\n", u)
		}
	}

	if len(result.Changes) == 0 && len(result.NewCandidates) == 0 && len(result.RemovedCandidates) == 0 {
		fmt.Fprintln(out, "\nNo changes.")
	}

	if result.UnchangedCount > 0 {
		fmt.Fprintf(out, "\nUnchanged: %d candidates\n", result.UnchangedCount)
	}
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}

// formatDelta formats a numeric delta with sign for display.
func formatDelta(delta int) string {
	if delta > 0 {
		return "+" + strconv.Itoa(delta)
	}
	return strconv.Itoa(delta)
}
