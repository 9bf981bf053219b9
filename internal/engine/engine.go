// Package engine orchestrates a full lookup run: cache short-circuit,
// dataset prefilter, scheduled scraping, and persistence of the merged
// results.
package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/osintnator/osintnator/internal/cache"
	"github.com/osintnator/osintnator/internal/catalog"
	"github.com/osintnator/osintnator/internal/datasets"
	"github.com/osintnator/osintnator/internal/progress"
	"github.com/osintnator/osintnator/internal/query"
	"github.com/osintnator/osintnator/internal/report"
	"github.com/osintnator/osintnator/internal/scheduler"
	"github.com/osintnator/osintnator/internal/scraper"
	"github.com/osintnator/osintnator/internal/session"
)

const (
	minWorkers = 2
	maxWorkers = 40
	minTimeout = 3 * time.Second
	maxTimeout = 60 * time.Second
)

// Options tune one lookup run. Zero values select the defaults; out-of-range
// values are clamped rather than rejected.
type Options struct {
	Engine      string
	Workers     int
	Timeout     time.Duration
	BypassCache bool
	Sources     []string
}

func (o Options) normalized() Options {
	o.Engine = catalog.EngineGuard(o.Engine)
	if o.Workers == 0 {
		o.Workers = 8
	}
	if o.Workers < minWorkers {
		o.Workers = minWorkers
	}
	if o.Workers > maxWorkers {
		o.Workers = maxWorkers
	}
	if o.Timeout == 0 {
		o.Timeout = 12 * time.Second
	}
	if o.Timeout < minTimeout {
		o.Timeout = minTimeout
	}
	if o.Timeout > maxTimeout {
		o.Timeout = maxTimeout
	}
	if len(o.Sources) == 0 {
		o.Sources = append([]string(nil), catalog.PrioritySources...)
	}
	return o
}

// Summary describes how a run concluded.
type Summary struct {
	RunID       uuid.UUID
	Completed   int
	Total       int
	FromCache   bool
	ReportPaths []string
}

// Engine wires the run pipeline together. All collaborators are injected;
// the engine owns only the per-key serialization and the run lifecycle.
type Engine struct {
	cache     *cache.Store
	registry  *scraper.Registry
	prefilter *datasets.Prefilter
	sess      *session.Session
	emitter   progress.Emitter
	reports   *report.Saver
	logger    *zap.Logger
	locks     *keyLock
}

// New assembles an Engine.
func New(cacheStore *cache.Store, registry *scraper.Registry, prefilter *datasets.Prefilter,
	sess *session.Session, emitter progress.Emitter, reports *report.Saver, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		cache:     cacheStore,
		registry:  registry,
		prefilter: prefilter,
		sess:      sess,
		emitter:   emitter,
		reports:   reports,
		logger:    logger,
		locks:     newKeyLock(),
	}
}

// Run executes one lookup. Identical queries running concurrently are
// serialized on their canonical key so the second run can ride the first
// one's cache write.
func (e *Engine) Run(ctx context.Context, q query.Query, opts Options) ([]query.Hit, *Summary, error) {
	opts = opts.normalized()
	release := e.locks.acquire(q.CacheKey())
	defer release()

	runID := uuid.New()
	logger := e.logger.With(zap.String("run_id", runID.String()))

	if opts.BypassCache {
		if e.cache.Invalidate(q) {
			logger.Debug("cache invalidated on request")
		}
	} else if cached, ok := e.cache.Lookup(q); ok {
		return e.replayCached(runID, cached, logger)
	}

	ordered := scheduler.Order(dedupe(opts.Sources))
	total := len(ordered)
	e.emit(progress.Event{RunID: runID, TS: time.Now().UTC(), Kind: progress.KindRunStart, Total: total})
	logger.Info("run started", zap.Int("sources", total), zap.String("engine", opts.Engine))

	prefilterResult, err := e.runPrefilter(ctx, runID, q, ordered)
	if err != nil {
		return nil, nil, err
	}

	remaining := prefilterResult.Remaining(ordered)
	sched := scheduler.New(scheduler.Config{
		Workers: opts.Workers,
		Timeout: opts.Timeout,
		Engine:  opts.Engine,
		Logger:  logger,
	}, e.registry, e.sess)
	scheduled, completed, err := sched.Run(ctx, runID, q, remaining, e.runEmitter())
	if err != nil {
		return nil, nil, fmt.Errorf("scheduler: %w", err)
	}

	merged := append(append([]query.Hit(nil), prefilterResult.Hits...), scheduled...)

	if len(merged) > 0 {
		if _, saveErr := e.cache.Save(q, merged); saveErr != nil {
			logger.Warn("cache save failed", zap.Error(saveErr))
		}
	}
	var paths []string
	if e.reports != nil {
		paths, err = e.reports.Save(merged)
		if err != nil {
			logger.Warn("report save failed", zap.Error(err))
			paths = nil
		}
	}

	summary := &Summary{
		RunID:       runID,
		Completed:   completed + len(prefilterResult.Satisfied),
		Total:       total,
		ReportPaths: paths,
	}
	e.emit(progress.Event{
		RunID: runID, TS: time.Now().UTC(), Kind: progress.KindRunDone,
		Completed: summary.Completed, Total: total,
	})
	logger.Info("run finished",
		zap.Int("hits", len(merged)), zap.Int("completed", summary.Completed), zap.Int("total", total))
	return merged, summary, nil
}

// replayCached short-circuits a run entirely from the cache store: no
// dataset calls, no scrapers, no report rewrite.
func (e *Engine) replayCached(runID uuid.UUID, cached []query.Hit, logger *zap.Logger) ([]query.Hit, *Summary, error) {
	e.emit(progress.Event{RunID: runID, TS: time.Now().UTC(), Kind: progress.KindRunStart})
	e.emit(progress.Event{
		RunID: runID, TS: time.Now().UTC(), Kind: progress.KindNote,
		Note: fmt.Sprintf("loaded %d cached result(s)", len(cached)),
	})
	for i := range cached {
		e.emit(progress.Event{
			RunID: runID, TS: time.Now().UTC(), Kind: progress.KindHit,
			Site: cached[i].Site, Hit: &cached[i],
		})
	}
	e.emit(progress.Event{RunID: runID, TS: time.Now().UTC(), Kind: progress.KindRunDone})
	logger.Info("run served from cache", zap.Int("hits", len(cached)))
	return cached, &Summary{RunID: runID, FromCache: true}, nil
}

func (e *Engine) runPrefilter(ctx context.Context, runID uuid.UUID, q query.Query, ordered []string) (*datasets.Result, error) {
	if e.prefilter == nil {
		return &datasets.Result{Satisfied: map[string]bool{}}, nil
	}
	// Shallow copy so per-run callbacks never race a concurrent run.
	pf := *e.prefilter
	pf.OnHit = func(h query.Hit) {
		e.emit(progress.Event{
			RunID: runID, TS: time.Now().UTC(), Kind: progress.KindHit,
			Site: h.Site, Hit: &h,
		})
	}
	pf.OnNote = func(note string) {
		e.emit(progress.Event{RunID: runID, TS: time.Now().UTC(), Kind: progress.KindNote, Note: note})
	}
	res, err := pf.Run(ctx, q, ordered)
	if err != nil {
		return nil, fmt.Errorf("dataset prefilter: %w", err)
	}
	return res, nil
}

func (e *Engine) emit(evt progress.Event) {
	if e.emitter != nil {
		e.emitter.Emit(evt)
	}
}

func (e *Engine) runEmitter() progress.Emitter {
	if e.emitter != nil {
		return e.emitter
	}
	return nopEmitter{}
}

type nopEmitter struct{}

func (nopEmitter) Emit(progress.Event) {}

func dedupe(sources []string) []string {
	seen := make(map[string]bool, len(sources))
	out := make([]string, 0, len(sources))
	for _, s := range sources {
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
