package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadWithFileOverrides(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	configYAML := `
run:
  workers: 12
  timeout_seconds: 20
  engine: Bing
  sources: ["FamilyTreeNow", "WhoCallsMe"]
session:
  jitter_min_ms: 50
  jitter_max_ms: 100
  retry_attempts: 3
  backoff_initial_ms: 100
  backoff_max_ms: 800
  timeout_seconds: 30
  min_html_bytes: 2000
  block_markers: ["press & hold"]
render:
  enabled: true
  timeout_seconds: 25
  max_concurrency: 3
  domain_qps: 1.5
reports:
  dir: out/reports
cache:
  dir: out/cache
hibp:
  api_key: secret
metrics:
  enabled: true
  addr: ":9100"
logging:
  verbose: true
`
	if err := os.WriteFile(path, []byte(configYAML), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Run.Workers != 12 || cfg.Run.Engine != "Bing" {
		t.Fatalf("expected run overrides to apply, got %+v", cfg.Run)
	}
	if len(cfg.Run.Sources) != 2 || cfg.Run.Sources[0] != "FamilyTreeNow" {
		t.Fatalf("expected sources to be loaded: %+v", cfg.Run.Sources)
	}
	if cfg.HIBP.APIKey != "secret" {
		t.Fatalf("expected hibp key to be loaded")
	}
	if !cfg.Render.Enabled || cfg.Render.MaxConcurrency != 3 {
		t.Fatalf("expected render overrides to apply, got %+v", cfg.Render)
	}
	if !cfg.Metrics.Enabled || cfg.Metrics.Addr != ":9100" {
		t.Fatalf("expected metrics overrides to apply, got %+v", cfg.Metrics)
	}

	sess := cfg.SessionSettings()
	if sess.JitterMin != 50*time.Millisecond || sess.JitterMax != 100*time.Millisecond {
		t.Fatalf("expected jitter conversion, got %v/%v", sess.JitterMin, sess.JitterMax)
	}
	if !sess.RemoteRender || sess.RenderDomainQPS != 1.5 {
		t.Fatalf("expected render settings to carry over: %+v", sess)
	}
	if len(sess.ExtraBlockMarkers) != 1 {
		t.Fatalf("expected block markers to carry over: %+v", sess.ExtraBlockMarkers)
	}

	opts := cfg.RunOptions()
	if opts.Workers != 12 || opts.Timeout != 20*time.Second || opts.Engine != "Bing" {
		t.Fatalf("expected run options conversion, got %+v", opts)
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Run.Workers != 8 || cfg.Run.TimeoutSeconds != 12 {
		t.Fatalf("unexpected run defaults: %+v", cfg.Run)
	}
	if cfg.Run.Engine != "DuckDuckGo" {
		t.Fatalf("unexpected engine default: %q", cfg.Run.Engine)
	}
	if cfg.Reports.Dir != "reports" || cfg.Cache.Dir != filepath.Join("reports", "cache") {
		t.Fatalf("unexpected directory defaults: %+v %+v", cfg.Reports, cfg.Cache)
	}
	if cfg.Render.Enabled {
		t.Fatalf("rendering should default to off")
	}
}

func TestConfigValidateErrors(t *testing.T) {
	t.Parallel()

	base := Config{
		Run:     RunConfig{Workers: 8, TimeoutSeconds: 12},
		Session: SessionConfig{TimeoutSeconds: 15, JitterMinMs: 100, JitterMaxMs: 200},
		Reports: ReportsConfig{Dir: "reports"},
		Cache:   CacheConfig{Dir: "cache"},
	}

	tests := []struct {
		name string
		cfg  func() Config
		want string
	}{
		{
			name: "invalid workers",
			cfg: func() Config {
				c := base
				c.Run.Workers = 0
				return c
			},
			want: "run.workers",
		},
		{
			name: "invalid run timeout",
			cfg: func() Config {
				c := base
				c.Run.TimeoutSeconds = 0
				return c
			},
			want: "run.timeout_seconds",
		},
		{
			name: "invalid session timeout",
			cfg: func() Config {
				c := base
				c.Session.TimeoutSeconds = 0
				return c
			},
			want: "session.timeout_seconds",
		},
		{
			name: "inverted jitter",
			cfg: func() Config {
				c := base
				c.Session.JitterMinMs = 500
				return c
			},
			want: "jitter_min_ms",
		},
		{
			name: "missing reports dir",
			cfg: func() Config {
				c := base
				c.Reports.Dir = ""
				return c
			},
			want: "reports.dir",
		},
		{
			name: "missing cache dir",
			cfg: func() Config {
				c := base
				c.Cache.Dir = ""
				return c
			},
			want: "cache.dir",
		},
		{
			name: "render missing concurrency",
			cfg: func() Config {
				c := base
				c.Render.Enabled = true
				return c
			},
			want: "render.max_concurrency",
		},
		{
			name: "metrics missing addr",
			cfg: func() Config {
				c := base
				c.Metrics.Enabled = true
				return c
			},
			want: "metrics.addr",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.cfg().Validate()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}
