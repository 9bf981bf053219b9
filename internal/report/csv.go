package report

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"

	"github.com/osintnator/osintnator/internal/query"
)

// CSVWriter outputs one row per hit with a fixed header, the layout
// spreadsheet users expect to pivot on.
type CSVWriter struct {
	baseWriter
}

// NewCSVWriter creates a CSVWriter that outputs to the given writer.
func NewCSVWriter(output io.Writer) *CSVWriter {
	return &CSVWriter{baseWriter: newBaseWriter(output)}
}

// Write renders the hit list as CSV.
func (w *CSVWriter) Write(hits []query.Hit) (int, error) {
	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)
	if err := cw.Write([]string{"site", "title", "snippet", "url"}); err != nil {
		return 0, fmt.Errorf("write csv header: %w", err)
	}
	for _, h := range hits {
		if err := cw.Write([]string{h.Site, h.Title, h.Snippet, h.URL}); err != nil {
			return 0, fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return 0, fmt.Errorf("flush csv: %w", err)
	}
	n, err := w.output.Write(buf.Bytes())
	if err != nil {
		return n, fmt.Errorf("write csv report: %w", err)
	}
	return n, nil
}
