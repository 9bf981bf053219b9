package sinks

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/osintnator/osintnator/internal/progress"
	"github.com/osintnator/osintnator/internal/query"
)

// PrometheusSink exports lookup-run progress via Prometheus. It owns all
// collectors for runs started/completed/running, task completions, and hits
// partitioned by origin.
type PrometheusSink struct {
	runsStarted   prometheus.Counter
	runsCompleted prometheus.Counter
	runsRunning   prometheus.Gauge
	tasksDone     prometheus.Counter
	hits          *prometheus.CounterVec

	tracker *runTracker
}

// NewPrometheusSink registers the collectors against the provided registry.
func NewPrometheusSink(reg prometheus.Registerer) (*PrometheusSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	s := &PrometheusSink{
		runsStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "osintnator_runs_started_total",
			Help: "Total lookup runs that have started.",
		}),
		runsCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "osintnator_runs_completed_total",
			Help: "Total lookup runs completed.",
		}),
		runsRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "osintnator_runs_running",
			Help: "Current number of in-flight lookup runs.",
		}),
		tasksDone: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "osintnator_tasks_completed_total",
			Help: "Source tasks that have produced an outcome.",
		}),
		hits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "osintnator_hits_total",
			Help: "Hits surfaced, partitioned by origin.",
		}, []string{"origin"}),
		tracker: newRunTracker(),
	}
	for _, collector := range []prometheus.Collector{
		s.runsStarted,
		s.runsCompleted,
		s.runsRunning,
		s.tasksDone,
		s.hits,
	} {
		if err := reg.Register(collector); err != nil {
			return nil, fmt.Errorf("register progress collector: %w", err)
		}
	}
	return s, nil
}

// Consume updates the collectors from the batch. Safe for concurrent use.
func (s *PrometheusSink) Consume(_ context.Context, batch []progress.Event) error {
	for _, evt := range batch {
		s.consumeEvent(evt)
	}
	return nil
}

func (s *PrometheusSink) consumeEvent(evt progress.Event) {
	switch evt.Kind {
	case progress.KindRunStart:
		s.runsStarted.Inc()
		if s.tracker.start(evt.RunID) {
			s.runsRunning.Inc()
		}
	case progress.KindRunDone:
		s.runsCompleted.Inc()
		if s.tracker.complete(evt.RunID) {
			s.runsRunning.Dec()
		}
	case progress.KindTaskDone:
		s.tasksDone.Inc()
	case progress.KindHit:
		s.hits.WithLabelValues(hitOrigin(evt.Hit)).Inc()
	}
}

// hitOrigin classifies a hit by where it came from: the dataset prefilter,
// scheduler fallback synthesis, or a live scraper.
func hitOrigin(h *query.Hit) string {
	if h == nil {
		return "unknown"
	}
	if _, ok := h.Raw[query.RawDataset]; ok {
		return "dataset"
	}
	if _, ok := h.Raw[query.RawFallback]; ok {
		return "fallback"
	}
	return "scraped"
}

// Close implements the Sink interface; it performs no action.
func (s *PrometheusSink) Close(context.Context) error {
	return nil
}

type runTracker struct {
	mu      sync.Mutex
	running map[uuid.UUID]struct{}
}

func newRunTracker() *runTracker {
	return &runTracker{running: make(map[uuid.UUID]struct{})}
}

func (t *runTracker) start(id uuid.UUID) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.running[id]; ok {
		return false
	}
	t.running[id] = struct{}{}
	return true
}

func (t *runTracker) complete(id uuid.UUID) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.running[id]; !ok {
		return false
	}
	delete(t.running, id)
	return true
}
