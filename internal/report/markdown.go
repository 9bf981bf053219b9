package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/nao1215/markdown"

	"github.com/osintnator/osintnator/internal/query"
)

// MarkdownWriter outputs a numbered, human-readable report: one section per
// hit with its title, link, and snippet.
type MarkdownWriter struct {
	baseWriter
	now func() time.Time
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{baseWriter: newBaseWriter(output), now: time.Now}
}

// Write renders the hit list as Markdown.
func (w *MarkdownWriter) Write(hits []query.Hit) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("Osintnator report")
	md.PlainText("")
	md.PlainTextf("Generated %s", w.now().UTC().Format(time.RFC3339))
	md.PlainText("")

	if len(hits) == 0 {
		md.PlainText("(no results)")
		md.PlainText("")
		return len(md.String()), md.Build()
	}

	for i, h := range hits {
		md.H2(fmt.Sprintf("%d. %s", i+1, h.Site))
		md.PlainText("")
		md.PlainTextf("**%s**", h.Title)
		md.PlainText("")
		if h.URL != "" && h.URL != "#" {
			md.PlainText(markdown.Link(h.URL, h.URL))
			md.PlainText("")
		}
		if snip := collapse(h.Snippet); snip != "" {
			md.PlainText(snip)
			md.PlainText("")
		}
	}

	md.HorizontalRule()
	md.PlainTextf("%d result(s)", len(hits))
	return len(md.String()), md.Build()
}

func collapse(s string) string {
	return strings.TrimSpace(strings.Join(strings.Fields(s), " "))
}
