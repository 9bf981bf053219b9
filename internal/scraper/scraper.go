// Package scraper holds the per-site collectors. Each scraper knows how to
// interrogate one source for a query; the registry maps catalog source
// labels to scrapers and treats everything unregistered as a zero-hit
// source so the scheduler can fall back to link synthesis.
package scraper

import (
	"context"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/osintnator/osintnator/internal/query"
	"github.com/osintnator/osintnator/internal/session"
)

// Scraper interrogates a single source. Implementations return only the
// hits they found; returning an empty slice is an ordinary miss, not an
// error. Errors are reserved for faults worth logging.
type Scraper interface {
	Site() string
	Scrape(ctx context.Context, sess *session.Session, q query.Query) ([]query.Hit, error)
}

// Func adapts a function to the Scraper interface.
type Func struct {
	Name string
	Run  func(ctx context.Context, sess *session.Session, q query.Query) ([]query.Hit, error)
}

func (f Func) Site() string { return f.Name }

func (f Func) Scrape(ctx context.Context, sess *session.Session, q query.Query) ([]query.Hit, error) {
	return f.Run(ctx, sess, q)
}

// Registry is a concurrency-safe map of source label to scraper.
type Registry struct {
	mu       sync.RWMutex
	scrapers map[string]Scraper
	logger   *zap.Logger
}

// NewRegistry builds an empty registry.
func NewRegistry(logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{scrapers: make(map[string]Scraper), logger: logger}
}

// Register adds or replaces the scraper for its site label.
func (r *Registry) Register(s Scraper) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.scrapers[s.Site()] = s
	r.logger.Debug("registered scraper", zap.String("site", s.Site()))
}

// Lookup returns the scraper for a source label, if one is registered.
func (r *Registry) Lookup(site string) (Scraper, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.scrapers[site]
	return s, ok
}

// Sources returns the registered source labels in sorted order.
func (r *Registry) Sources() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.scrapers))
	for site := range r.scrapers {
		out = append(out, site)
	}
	sort.Strings(out)
	return out
}

// Run executes the scraper registered for site. An unregistered site or a
// scraper error both yield zero hits so callers can synthesize fallbacks.
func (r *Registry) Run(ctx context.Context, sess *session.Session, site string, q query.Query) []query.Hit {
	s, ok := r.Lookup(site)
	if !ok {
		r.logger.Debug("no scraper registered", zap.String("site", site))
		return nil
	}
	hits, err := s.Scrape(ctx, sess, q)
	if err != nil {
		r.logger.Debug("scraper failed", zap.String("site", site), zap.Error(err))
		return nil
	}
	r.logger.Debug("scraper finished", zap.String("site", site), zap.Int("hits", len(hits)))
	return hits
}
