// Package scheduler dispatches source lookups across a bounded worker pool,
// enforcing a wall-clock budget per task and synthesizing link fallbacks for
// sources that produce nothing.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/osintnator/osintnator/internal/catalog"
	"github.com/osintnator/osintnator/internal/progress"
	"github.com/osintnator/osintnator/internal/query"
	"github.com/osintnator/osintnator/internal/scraper"
	"github.com/osintnator/osintnator/internal/session"
)

// usernamePackFloor is the minimum budget for the username panel; its
// fan-out over two dozen services is legitimately slower than one page.
const usernamePackFloor = 20 * time.Second

// Config sizes the pool and the per-task budget.
type Config struct {
	Workers int
	Timeout time.Duration
	Engine  string
	Logger  *zap.Logger
}

// Scheduler runs one batch of source tasks per lookup run.
type Scheduler struct {
	cfg      Config
	registry *scraper.Registry
	sess     *session.Session
	logger   *zap.Logger
}

// New builds a Scheduler over the registry and shared session.
func New(cfg Config, registry *scraper.Registry, sess *session.Session) *Scheduler {
	if cfg.Workers <= 0 {
		cfg.Workers = 8
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 12 * time.Second
	}
	if cfg.Engine == "" {
		cfg.Engine = catalog.DefaultEngine
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{cfg: cfg, registry: registry, sess: sess, logger: logger}
}

// Order partitions sources into the priority panel followed by the rest,
// preserving the original relative order within each partition.
func Order(sources []string) []string {
	inPanel := make(map[string]bool, len(catalog.PrioritySources))
	for _, p := range catalog.PrioritySources {
		inPanel[p] = true
	}
	out := make([]string, 0, len(sources))
	for _, s := range sources {
		if inPanel[s] {
			out = append(out, s)
		}
	}
	for _, s := range sources {
		if !inPanel[s] {
			out = append(out, s)
		}
	}
	return out
}

// effectiveTimeout applies the username-panel floor; never below the
// configured default.
func effectiveTimeout(site string, def time.Duration) time.Duration {
	if site == catalog.SourceUsernamePack && def < usernamePackFloor {
		return usernamePackFloor
	}
	return def
}

// Run executes every source task and returns the collected hits in task
// completion order. Each task produces an outcome (hits, fallback pair, or
// tagged fallback pair) and exactly one TASK_DONE event; one failing task
// never aborts the run. Run returns early only when ctx itself is canceled.
func (s *Scheduler) Run(ctx context.Context, runID uuid.UUID, q query.Query, sources []string, emitter progress.Emitter) ([]query.Hit, int, error) {
	ordered := Order(sources)
	total := len(ordered)
	if total == 0 {
		return nil, 0, nil
	}

	var (
		mu        sync.Mutex
		results   []query.Hit
		completed atomic.Int64
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Workers)
	for _, site := range ordered {
		site := site
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			hits := s.runTask(gctx, site, q)
			done := int(completed.Add(1))

			mu.Lock()
			results = append(results, hits...)
			mu.Unlock()

			for i := range hits {
				emitter.Emit(progress.Event{
					RunID: runID, TS: time.Now().UTC(), Kind: progress.KindHit,
					Site: site, Hit: &hits[i],
				})
			}
			emitter.Emit(progress.Event{
				RunID: runID, TS: time.Now().UTC(), Kind: progress.KindTaskDone,
				Site: site, Completed: done, Total: total,
			})
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, int(completed.Load()), err
	}
	return results, total, nil
}

type taskOutcome struct {
	hits []query.Hit
	err  error
}

// runTask isolates one scraper invocation under its budget. The invocation
// runs in its own goroutine and is raced against the deadline, so a scraper
// that ignores its context cannot wedge a worker slot past the budget.
func (s *Scheduler) runTask(ctx context.Context, site string, q query.Query) []query.Hit {
	budget := effectiveTimeout(site, s.cfg.Timeout)
	taskCtx, cancel := context.WithTimeout(ctx, budget)
	defer cancel()

	outcomeCh := make(chan taskOutcome, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				outcomeCh <- taskOutcome{err: fmt.Errorf("scraper panic: %v", r)}
			}
		}()
		sc, ok := s.registry.Lookup(site)
		if !ok {
			outcomeCh <- taskOutcome{}
			return
		}
		hits, err := sc.Scrape(taskCtx, s.sess, q)
		outcomeCh <- taskOutcome{hits: hits, err: err}
	}()

	select {
	case out := <-outcomeCh:
		switch {
		case out.err != nil:
			s.logger.Debug("task failed", zap.String("site", site), zap.Error(out.err))
			return s.fallback(site, q, map[string]any{query.RawError: truncateErr(out.err)})
		case len(out.hits) > 0:
			s.logger.Debug("task produced hits", zap.String("site", site), zap.Int("hits", len(out.hits)))
			return out.hits
		default:
			return s.fallback(site, q, nil)
		}
	case <-taskCtx.Done():
		if ctx.Err() != nil {
			// Whole run canceled; no fallback synthesis.
			return nil
		}
		s.logger.Debug("task timed out", zap.String("site", site), zap.Duration("budget", budget))
		return s.fallbackTimeout(site, q, budget)
	}
}

// fallback synthesizes the link pair for a source that produced nothing: a
// home link when the source has a base URL, and always a search dork.
func (s *Scheduler) fallback(site string, q query.Query, tags map[string]any) []query.Hit {
	var hits []query.Hit
	dork := catalog.DorkURL(site, q, s.cfg.Engine)

	titleSuffix, snippet := "", ""
	switch {
	case tags == nil:
		titleSuffix, snippet = "", "No scraper results, open site."
	case tags[query.RawError] != nil:
		titleSuffix, snippet = "error, ", fmt.Sprint(tags[query.RawError])
	}

	if home := catalog.BaseURL(site); home != "" {
		hits = append(hits, fallbackHit(site, fmt.Sprintf("%s (%sopen site)", site, titleSuffix), snippet, home, query.FallbackHome, tags))
	}
	dorkSnippet := snippet
	if tags == nil {
		dorkSnippet = "No scraper results, try search."
	}
	hits = append(hits, fallbackHit(site, fmt.Sprintf("%s (%ssearch dork)", site, titleSuffix), dorkSnippet, dork, query.FallbackDork, tags))
	return hits
}

func (s *Scheduler) fallbackTimeout(site string, q query.Query, budget time.Duration) []query.Hit {
	tags := map[string]any{query.RawTimeout: true}
	snippet := fmt.Sprintf("Timed out after %s", budget)
	dork := catalog.DorkURL(site, q, s.cfg.Engine)

	var hits []query.Hit
	if home := catalog.BaseURL(site); home != "" {
		hits = append(hits, fallbackHit(site, site+" (timeout, open site)", snippet, home, query.FallbackHome, tags))
	}
	hits = append(hits, fallbackHit(site, site+" (timeout, search dork)", snippet, dork, query.FallbackDork, tags))
	return hits
}

func fallbackHit(site, title, snippet, url, kind string, tags map[string]any) query.Hit {
	raw := map[string]any{query.RawFallback: kind}
	for k, v := range tags {
		raw[k] = v
	}
	return query.Hit{Site: site, Title: title, Snippet: snippet, URL: url, Raw: raw}
}

func truncateErr(err error) string {
	msg := err.Error()
	if len(msg) > 300 {
		msg = msg[:300]
	}
	return msg
}
