// Package app initializes and holds the long-lived lookup services, acting
// as the CLI's dependency container.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/osintnator/osintnator/internal/cache"
	"github.com/osintnator/osintnator/internal/config"
	"github.com/osintnator/osintnator/internal/datasets"
	"github.com/osintnator/osintnator/internal/engine"
	"github.com/osintnator/osintnator/internal/logging"
	"github.com/osintnator/osintnator/internal/progress"
	"github.com/osintnator/osintnator/internal/progress/sinks"
	"github.com/osintnator/osintnator/internal/report"
	"github.com/osintnator/osintnator/internal/scraper"
	"github.com/osintnator/osintnator/internal/session"
)

// App wires the engine, session, progress hub, and persistence together from
// a loaded Config. It is built once per invocation and closed by a Cobra
// hook after the command finishes.
type App struct {
	cfg       config.Config
	logger    *zap.Logger
	sess      *session.Session
	hub       *progress.Hub
	collector *sinks.Collector
	engine    *engine.Engine
	metrics   *http.Server
}

// New initializes every service the lookup pipeline needs, failing fast when
// a directory or the renderer cannot be prepared.
func New(cfg config.Config) (*App, error) {
	logger, err := logging.New(cfg.Logging.Verbose)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	sess, err := session.New(cfg.SessionSettings(), logger.Named("session"))
	if err != nil {
		return nil, fmt.Errorf("init session: %w", err)
	}

	cacheStore, err := cache.New(cfg.Cache.Dir, logger.Named("cache"))
	if err != nil {
		return nil, fmt.Errorf("init cache: %w", err)
	}
	saver, err := report.NewSaver(cfg.Reports.Dir, logger.Named("reports"))
	if err != nil {
		return nil, fmt.Errorf("init reports: %w", err)
	}

	registry := scraper.DefaultRegistry(cfg.HIBP.APIKey, logger.Named("scraper"))
	prefilter := datasets.NewPrefilter(nil, sess, nil, 0, logger.Named("datasets"))

	collector := sinks.NewCollector()
	sinkList := []progress.Sink{collector, sinks.NewLogSink(logger.Named("progress"))}

	a := &App{
		cfg:       cfg,
		logger:    logger,
		sess:      sess,
		collector: collector,
	}

	if cfg.Metrics.Enabled {
		reg := prometheus.NewRegistry()
		promSink, err := sinks.NewPrometheusSink(reg)
		if err != nil {
			return nil, fmt.Errorf("init prometheus sink: %w", err)
		}
		sinkList = append(sinkList, promSink)
		a.metrics = startMetricsServer(cfg.Metrics.Addr, reg, logger)
	}

	a.hub = progress.NewHub(progress.Config{Logger: logger.Named("hub")}, sinkList...)
	a.engine = engine.New(cacheStore, registry, prefilter, sess, a.hub, saver, logger.Named("engine"))

	return a, nil
}

// Logger returns the root zap logger.
func (a *App) Logger() *zap.Logger { return a.logger }

// Engine returns the lookup engine.
func (a *App) Engine() *engine.Engine { return a.engine }

// Collector exposes the ordered event capture so commands can stream hits as
// they arrive. Set OnEvent before starting a run.
func (a *App) Collector() *sinks.Collector { return a.collector }

// Options derives the engine options from the loaded configuration.
func (a *App) Options() engine.Options { return a.cfg.RunOptions() }

// Close drains the progress hub, releases the session (including any headless
// browser), stops the metrics endpoint, and flushes the logger.
func (a *App) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if a.hub != nil {
		if err := a.hub.Close(ctx); err != nil {
			a.logger.Warn("progress hub close failed", zap.Error(err))
		}
	}
	if a.sess != nil {
		if err := a.sess.Close(); err != nil {
			a.logger.Warn("session close failed", zap.Error(err))
		}
	}
	if a.metrics != nil {
		if err := a.metrics.Shutdown(ctx); err != nil {
			a.logger.Warn("metrics server shutdown failed", zap.Error(err))
		}
	}
	// Sync flushes buffered log entries; stderr sync errors are expected on
	// some platforms and not actionable.
	_ = a.logger.Sync()
}

func startMetricsServer(addr string, reg *prometheus.Registry, logger *zap.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logger.Info("metrics server started", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", zap.Error(err))
		}
	}()
	return srv
}
