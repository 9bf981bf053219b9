// Package report renders the merged hit list of a lookup run into the
// persisted artifact formats: CSV for spreadsheets, JSON for tooling, and
// Markdown for human review.
package report

import (
	"io"

	"github.com/osintnator/osintnator/internal/query"
)

// Writer outputs a hit list in one format.
type Writer interface {
	// Write renders the hits to the configured destination. Returns the
	// number of bytes written and any error encountered.
	Write(hits []query.Hit) (int, error)
}

// MultiWriter writes the same hit list through several Writers. It is a
// separate type rather than io.MultiWriter because Writers consume hit
// lists, not raw bytes.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write outputs the hits to every configured Writer, stopping on the first
// error. Returns the total bytes written.
func (m *MultiWriter) Write(hits []query.Hit) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.Write(hits)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

type baseWriter struct {
	output io.Writer
}

func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}
