// Package report renders investigations into documents and stores them as
// report artifacts.
//
// Writers exist for plain text (SimpleWriter), Markdown (MarkdownWriter),
// JSON (JSONWriter), CSV (CSVWriter), terminal tables (TableWriter) and
// sanitized HTML (HTMLWriter). All of them render the same Summary, so the
// confidence level and recommendation read the same in every format.
//
// Writers only read the investigation. Store places rendered documents in
// the report directory under a timestamped name and never overwrites an
// existing file.
package report
