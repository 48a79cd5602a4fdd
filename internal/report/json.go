package report

import (
	"encoding/json"
	"io"

	"github.com/nao1215/harvey/internal/model"
)

// JSONWriter outputs reports in JSON format for tool integration.
type JSONWriter struct {
	baseWriter

	// indent enables pretty-printed JSON output.
	indent bool

	indentPrefix string
	indentString string

	// version is the harvey version recorded in the document.
	version string
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithIndent enables pretty-printed JSON output.
// The prefix is prepended to each line, and indent is used for each level.
func WithIndent(prefix, indent string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
		w.indentPrefix = prefix
		w.indentString = indent
	}
}

// WithPrettyPrint enables pretty-printed JSON with two-space indentation.
func WithPrettyPrint() JSONWriterOption {
	return WithIndent("", "  ")
}

// WithVersion records the generating version in the document.
func WithVersion(version string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.version = version
	}
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// JSONReport is the document written by JSONWriter.
type JSONReport struct {
	// Version is the harvey version that generated this report.
	Version string `json:"version,omitempty"`

	Summary *Summary `json:"summary"`

	// Snapshot is never null, even for an investigation that was cancelled
	// before reconciliation.
	Snapshot *model.Snapshot `json:"snapshot"`

	// Investigation holds the raw probe output.
	Investigation *model.Investigation `json:"investigation"`
}

// NewJSONReport builds the JSON document for inv.
func NewJSONReport(inv *model.Investigation, summary *Summary, version string) *JSONReport {
	return &JSONReport{
		Version:       version,
		Summary:       summary,
		Snapshot:      snapshotOf(inv),
		Investigation: inv,
	}
}

// Write outputs the report in JSON format.
func (w *JSONWriter) Write(inv *model.Investigation) (int, error) {
	return w.writeJSON(NewJSONReport(inv, w.summary(inv), w.version))
}

func (w *JSONWriter) writeJSON(v any) (int, error) {
	var (
		data []byte
		err  error
	)

	if w.indent {
		data, err = json.MarshalIndent(v, w.indentPrefix, w.indentString)
	} else {
		data, err = json.Marshal(v)
	}
	if err != nil {
		return 0, err
	}

	data = append(data, '\n')
	return w.output.Write(data)
}
