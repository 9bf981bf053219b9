package report

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/osintnator/osintnator/internal/query"
)

// JSONWriter outputs the full hit list, including raw metadata, for
// downstream tooling.
type JSONWriter struct {
	baseWriter
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer) *JSONWriter {
	return &JSONWriter{baseWriter: newBaseWriter(output)}
}

// Write renders the hit list as indented JSON. An empty list renders as
// [] rather than null so consumers can always range over it.
func (w *JSONWriter) Write(hits []query.Hit) (int, error) {
	if hits == nil {
		hits = []query.Hit{}
	}
	data, err := json.MarshalIndent(hits, "", "  ")
	if err != nil {
		return 0, fmt.Errorf("marshal json report: %w", err)
	}
	data = append(data, '\n')
	n, err := w.output.Write(data)
	if err != nil {
		return n, fmt.Errorf("write json report: %w", err)
	}
	return n, nil
}
