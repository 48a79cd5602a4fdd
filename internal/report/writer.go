package report

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/nao1215/harvey/internal/config"
	"github.com/nao1215/harvey/internal/model"
)

// ErrUnknownFormat is returned by NewWriter for an unsupported format.
var ErrUnknownFormat = errors.New("unknown report format")

// Writer renders investigations.
type Writer interface {
	// Write renders inv to the writer's destination and returns the number
	// of bytes written.
	Write(inv *model.Investigation) (int, error)
}

// MultiWriter writes to multiple Writers in order.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write renders inv with every writer and stops at the first error.
func (m *MultiWriter) Write(inv *model.Investigation) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.Write(inv)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer

	// now stamps the summary.
	now func() time.Time
}

func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output, now: time.Now}
}

func (b baseWriter) summary(inv *model.Investigation) *Summary {
	return NewSummary(inv, b.now())
}

// NewWriter returns the writer for format. version is embedded in formats
// that carry metadata.
func NewWriter(format string, output io.Writer, version string) (Writer, error) {
	switch format {
	case config.FormatText:
		return NewSimpleWriter(output), nil
	case config.FormatMarkdown:
		return NewMarkdownWriter(output), nil
	case config.FormatJSON:
		return NewJSONWriter(output, WithPrettyPrint(), WithVersion(version)), nil
	case config.FormatCSV:
		return NewCSVWriter(output), nil
	case config.FormatTable:
		return NewTableWriter(output), nil
	case config.FormatHTML:
		return NewHTMLWriter(output), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// Extension returns the artifact file extension for format.
func Extension(format string) string {
	switch format {
	case config.FormatMarkdown:
		return "md"
	case config.FormatJSON:
		return "json"
	case config.FormatCSV:
		return "csv"
	case config.FormatHTML:
		return "html"
	default:
		return "txt"
	}
}

// orDefault returns s, or def when s is empty.
func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

// truncateString truncates s to maxLen runes with an ellipsis.
func truncateString(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}
