package report

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/osintnator/osintnator/internal/query"
)

const timestampLayout = "2006-01-02_150405"

// Saver persists the report trio for a run into a reports directory.
type Saver struct {
	dir    string
	logger *zap.Logger
	now    func() time.Time
}

// NewSaver validates and creates the reports directory.
func NewSaver(dir string, logger *zap.Logger) (*Saver, error) {
	if dir == "" {
		return nil, fmt.Errorf("reports dir is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve reports dir: %w", err)
	}
	if err := os.MkdirAll(abs, 0o750); err != nil {
		return nil, fmt.Errorf("create reports dir: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("stat reports dir: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("reports path %s is not a directory", abs)
	}
	return &Saver{dir: abs, logger: logger, now: time.Now}, nil
}

// Save writes the CSV, JSON, and Markdown artifacts for the hit list and
// returns their paths in that order.
func (s *Saver) Save(hits []query.Hit) ([]string, error) {
	ts := s.now().UTC().Format(timestampLayout)
	paths := []string{
		filepath.Join(s.dir, "osint_"+ts+".csv"),
		filepath.Join(s.dir, "osint_"+ts+".json"),
		filepath.Join(s.dir, "osint_"+ts+".md"),
	}

	builders := []func(f *os.File) Writer{
		func(f *os.File) Writer { return NewCSVWriter(f) },
		func(f *os.File) Writer { return NewJSONWriter(f) },
		func(f *os.File) Writer { return NewMarkdownWriter(f) },
	}
	for i, path := range paths {
		if err := s.writeFile(path, builders[i], hits); err != nil {
			return nil, err
		}
	}
	s.logger.Debug("saved reports",
		zap.String("csv", paths[0]), zap.String("json", paths[1]), zap.String("markdown", paths[2]))
	return paths, nil
}

func (s *Saver) writeFile(path string, build func(f *os.File) Writer, hits []query.Hit) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("create report %s: %w", path, err)
	}
	if _, err := build(f).Write(hits); err != nil {
		f.Close() //nolint:errcheck,gosec // write error takes precedence
		return fmt.Errorf("render report %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close report %s: %w", path, err)
	}
	return nil
}
