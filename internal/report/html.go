package report

import (
	"bytes"
	"html"
	"io"

	"github.com/gomarkdown/markdown"
	mdhtml "github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"github.com/microcosm-cc/bluemonday"

	"github.com/nao1215/harvey/internal/model"
)

// HTMLWriter outputs a standalone HTML page rendered from the Markdown
// report. Scraped text is untrusted, so the rendered body is sanitized
// before it is embedded.
type HTMLWriter struct {
	baseWriter
	policy *bluemonday.Policy
}

// NewHTMLWriter creates an HTMLWriter that outputs to the given writer.
func NewHTMLWriter(output io.Writer) *HTMLWriter {
	return &HTMLWriter{
		baseWriter: newBaseWriter(output),
		policy:     bluemonday.UGCPolicy(),
	}
}

// Write outputs the report as an HTML document.
func (w *HTMLWriter) Write(inv *model.Investigation) (int, error) {
	var src bytes.Buffer
	mw := NewMarkdownWriter(&src)
	mw.now = w.now
	if _, err := mw.Write(inv); err != nil {
		return 0, err
	}

	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	renderer := mdhtml.NewRenderer(mdhtml.RendererOptions{
		Flags: mdhtml.CommonFlags | mdhtml.HrefTargetBlank,
	})
	doc := p.Parse(src.Bytes())
	body := w.policy.SanitizeBytes(markdown.Render(doc, renderer))

	var page bytes.Buffer
	page.WriteString("<!DOCTYPE html>\n<html lang=\"en\">\n<head>\n<meta charset=\"utf-8\">\n")
	page.WriteString("<title>OSINT Report: " + html.EscapeString(inv.Target) + "</title>\n")
	page.WriteString("</head>\n<body>\n")
	page.Write(body)
	page.WriteString("</body>\n</html>\n")

	return w.output.Write(page.Bytes())
}
