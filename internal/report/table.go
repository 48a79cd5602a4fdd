package report

import (
	"bytes"
	"encoding/csv"
	"io"

	"github.com/olekukonko/tablewriter"

	"github.com/nao1215/harvey/internal/model"
)

// Columns are the columns of the tabular report.
var Columns = []string{"source", "profile_url", "full_name", "title", "job_title", "about", "error"}

// Rows flattens inv into one row per record: the LinkedIn records (or the
// bare candidates when nothing was scraped) followed by a github row.
func Rows(inv *model.Investigation) [][]string {
	snap := snapshotOf(inv)
	rows := make([][]string, 0, len(snap.LinkedInCandidates)+1)

	scraped := make(map[string]bool, len(snap.LinkedInRecords))
	for _, r := range snap.LinkedInRecords {
		scraped[r.URL] = true
		rows = append(rows, recordRow(string(r.Source), r))
	}
	for _, u := range snap.LinkedInCandidates {
		if !scraped[u] {
			rows = append(rows, recordRow(string(model.SourceLinkedInSearch), model.CandidateRecord{URL: u}))
		}
	}

	if gh := snap.GitHubProfile; gh != nil {
		rows = append(rows, recordRow("github", gh.Record()))
	} else if inv.GitHubError != model.ErrorNone {
		rows = append(rows, recordRow("github", model.CandidateRecord{Error: inv.GitHubError}))
	}

	return rows
}

func recordRow(source string, r model.CandidateRecord) []string {
	return []string{source, r.URL, r.FullName, r.Title, r.JobTitle, r.AboutText, string(r.Error)}
}

// CSVWriter outputs the tabular report as CSV with a header row.
type CSVWriter struct {
	baseWriter
}

// NewCSVWriter creates a CSVWriter that outputs to the given writer.
func NewCSVWriter(output io.Writer) *CSVWriter {
	return &CSVWriter{baseWriter: newBaseWriter(output)}
}

// Write outputs the report rows as CSV.
func (w *CSVWriter) Write(inv *model.Investigation) (int, error) {
	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)

	if err := cw.Write(Columns); err != nil {
		return 0, err
	}
	if err := cw.WriteAll(Rows(inv)); err != nil {
		return 0, err
	}

	return w.output.Write(buf.Bytes())
}

// TableWriter outputs the tabular report as a terminal table.
type TableWriter struct {
	baseWriter
}

// NewTableWriter creates a TableWriter that outputs to the given writer.
func NewTableWriter(output io.Writer) *TableWriter {
	return &TableWriter{baseWriter: newBaseWriter(output)}
}

// Write renders the report rows as a table. Long cells are truncated.
func (w *TableWriter) Write(inv *model.Investigation) (int, error) {
	var buf bytes.Buffer

	table := tablewriter.NewWriter(&buf)
	header := make([]any, len(Columns))
	for i, c := range Columns {
		header[i] = c
	}
	table.Header(header...)

	for _, row := range Rows(inv) {
		cells := make([]any, len(row))
		for i, cell := range row {
			cells[i] = truncateString(cell, 40)
		}
		if err := table.Append(cells...); err != nil {
			return 0, err
		}
	}
	if err := table.Render(); err != nil {
		return 0, err
	}

	return w.output.Write(buf.Bytes())
}
