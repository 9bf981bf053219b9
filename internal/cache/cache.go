// Package cache implements the per-query result cache: one JSON file per
// canonical query hash under an injected base directory.
package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/osintnator/osintnator/internal/query"
)

// Store persists ordered hit lists keyed by the canonical query hash.
// It is safe for concurrent use across distinct keys; callers coordinating
// writes to the same key must serialize themselves (the engine does).
type Store struct {
	baseDir string
	logger  *zap.Logger
}

// New validates and prepares the cache directory, creating it if needed.
func New(baseDir string, logger *zap.Logger) (*Store, error) {
	if strings.TrimSpace(baseDir) == "" {
		return nil, fmt.Errorf("cache base directory is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	info, err := os.Stat(baseDir)
	switch {
	case os.IsNotExist(err):
		if mkErr := os.MkdirAll(baseDir, 0o750); mkErr != nil {
			return nil, fmt.Errorf("create cache directory: %w", mkErr)
		}
	case err != nil:
		return nil, fmt.Errorf("stat cache directory: %w", err)
	case !info.IsDir():
		return nil, fmt.Errorf("cache path %q is not a directory", baseDir)
	}

	return &Store{baseDir: baseDir, logger: logger}, nil
}

// Path returns the storage location for the query's cache entry.
func (s *Store) Path(q query.Query) string {
	return filepath.Join(s.baseDir, q.CacheKey()+".json")
}

// Lookup loads the cached hit list for the query. A missing, unreadable, or
// corrupt entry is a miss, never an error.
func (s *Store) Lookup(q query.Query) ([]query.Hit, bool) {
	path := s.Path(q)
	data, err := os.ReadFile(path) // #nosec G304 -- path is derived from a hex digest
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn("cache read failed; treating as miss",
				zap.String("path", path), zap.Error(err))
		}
		return nil, false
	}

	var hits []query.Hit
	if err := json.Unmarshal(data, &hits); err != nil {
		s.logger.Warn("cache entry corrupt; treating as miss",
			zap.String("path", path), zap.Error(err))
		return nil, false
	}
	if len(hits) == 0 {
		return nil, false
	}
	return hits, true
}

// Save atomically overwrites the query's cache entry with the hit list and
// returns the entry path. The write goes through a temp file plus rename so a
// concurrent reader never observes a half-written entry.
func (s *Store) Save(q query.Query, hits []query.Hit) (string, error) {
	path := s.Path(q)
	data, err := json.MarshalIndent(hits, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode cache entry: %w", err)
	}

	tmp, err := os.CreateTemp(s.baseDir, ".cache-*")
	if err != nil {
		return "", fmt.Errorf("create temp cache file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return "", fmt.Errorf("write temp cache file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("close temp cache file: %w", err)
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("chmod temp cache file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("replace cache entry: %w", err)
	}
	return path, nil
}

// Invalidate removes the query's cache entry. It reports true only when an
// entry existed and was removed.
func (s *Store) Invalidate(q query.Query) bool {
	err := os.Remove(s.Path(q))
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn("cache invalidation failed", zap.String("path", s.Path(q)), zap.Error(err))
		}
		return false
	}
	return true
}
