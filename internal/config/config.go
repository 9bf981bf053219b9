// Package config loads and validates lookup configuration via Viper.
package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/osintnator/osintnator/internal/engine"
	"github.com/osintnator/osintnator/internal/session"
)

// Config captures every knob the CLI exposes, loaded via Viper from a YAML
// file and OSINTNATOR_* environment variables.
type Config struct {
	Run     RunConfig     `mapstructure:"run"`
	Session SessionConfig `mapstructure:"session"`
	Render  RenderConfig  `mapstructure:"render"`
	Reports ReportsConfig `mapstructure:"reports"`
	Cache   CacheConfig   `mapstructure:"cache"`
	HIBP    HIBPConfig    `mapstructure:"hibp"`
	Metrics MetricsConfig `mapstructure:"metrics"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// RunConfig governs scheduler sizing and dork synthesis.
type RunConfig struct {
	Workers        int      `mapstructure:"workers"`
	TimeoutSeconds int      `mapstructure:"timeout_seconds"`
	Engine         string   `mapstructure:"engine"`
	Sources        []string `mapstructure:"sources"`
}

// SessionConfig configures the shared HTTP layer: pacing, retries, and block
// detection.
type SessionConfig struct {
	JitterMinMs      int      `mapstructure:"jitter_min_ms"`
	JitterMaxMs      int      `mapstructure:"jitter_max_ms"`
	RetryAttempts    int      `mapstructure:"retry_attempts"`
	BackoffInitialMs int      `mapstructure:"backoff_initial_ms"`
	BackoffMaxMs     int      `mapstructure:"backoff_max_ms"`
	TimeoutSeconds   int      `mapstructure:"timeout_seconds"`
	MinHTMLBytes     int      `mapstructure:"min_html_bytes"`
	BlockMarkers     []string `mapstructure:"block_markers"`
}

// RenderConfig configures the headless rendering fallback.
type RenderConfig struct {
	Enabled        bool    `mapstructure:"enabled"`
	TimeoutSeconds int     `mapstructure:"timeout_seconds"`
	MaxConcurrency int     `mapstructure:"max_concurrency"`
	DomainQPS      float64 `mapstructure:"domain_qps"`
}

// ReportsConfig sets where run artifacts land.
type ReportsConfig struct {
	Dir string `mapstructure:"dir"`
}

// CacheConfig sets where per-query result caches land.
type CacheConfig struct {
	Dir string `mapstructure:"dir"`
}

// HIBPConfig carries the Have I Been Pwned API key. The conventional
// HIBP_API_KEY environment variable is honored alongside the prefixed form.
type HIBPConfig struct {
	APIKey string `mapstructure:"api_key"`
}

// MetricsConfig controls the optional Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Addr    string `mapstructure:"addr"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Verbose bool `mapstructure:"verbose"`
}

// Load builds a Config from disk/environment. An empty path skips the file
// and relies on defaults plus environment overrides.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("OSINTNATOR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("hibp.api_key", "HIBP_API_KEY", "OSINTNATOR_HIBP_API_KEY"); err != nil {
		return Config{}, fmt.Errorf("bind hibp env: %w", err)
	}

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("run.workers", 8)
	v.SetDefault("run.timeout_seconds", 12)
	v.SetDefault("run.engine", "DuckDuckGo")
	v.SetDefault("session.jitter_min_ms", 150)
	v.SetDefault("session.jitter_max_ms", 450)
	v.SetDefault("session.retry_attempts", 2)
	v.SetDefault("session.backoff_initial_ms", 500)
	v.SetDefault("session.backoff_max_ms", 4000)
	v.SetDefault("session.timeout_seconds", 15)
	v.SetDefault("session.min_html_bytes", 0)
	v.SetDefault("render.enabled", false)
	v.SetDefault("render.timeout_seconds", 15)
	v.SetDefault("render.max_concurrency", 2)
	v.SetDefault("render.domain_qps", 0.5)
	v.SetDefault("reports.dir", "reports")
	v.SetDefault("cache.dir", filepath.Join("reports", "cache"))
	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.addr", ":9090")
	v.SetDefault("logging.verbose", false)
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Run.Workers <= 0 {
		return fmt.Errorf("run.workers must be > 0")
	}
	if c.Run.TimeoutSeconds <= 0 {
		return fmt.Errorf("run.timeout_seconds must be > 0")
	}
	if c.Session.TimeoutSeconds <= 0 {
		return fmt.Errorf("session.timeout_seconds must be > 0")
	}
	if c.Session.JitterMinMs > c.Session.JitterMaxMs {
		return fmt.Errorf("session.jitter_min_ms must not exceed session.jitter_max_ms")
	}
	if c.Reports.Dir == "" {
		return fmt.Errorf("reports.dir must be set")
	}
	if c.Cache.Dir == "" {
		return fmt.Errorf("cache.dir must be set")
	}
	if c.Render.Enabled && c.Render.MaxConcurrency <= 0 {
		return fmt.Errorf("render.max_concurrency must be > 0 when rendering is enabled")
	}
	if c.Metrics.Enabled && c.Metrics.Addr == "" {
		return fmt.Errorf("metrics.addr must be set when metrics are enabled")
	}
	return nil
}

// SessionSettings converts the session and render sections into the session
// layer's native config.
func (c Config) SessionSettings() session.Config {
	return session.Config{
		JitterMin:            time.Duration(c.Session.JitterMinMs) * time.Millisecond,
		JitterMax:            time.Duration(c.Session.JitterMaxMs) * time.Millisecond,
		RetryAttempts:        c.Session.RetryAttempts,
		BackoffBase:          time.Duration(c.Session.BackoffInitialMs) * time.Millisecond,
		BackoffCap:           time.Duration(c.Session.BackoffMaxMs) * time.Millisecond,
		Timeout:              time.Duration(c.Session.TimeoutSeconds) * time.Second,
		RemoteRender:         c.Render.Enabled,
		RenderTimeout:        time.Duration(c.Render.TimeoutSeconds) * time.Second,
		RenderMaxConcurrency: c.Render.MaxConcurrency,
		RenderDomainQPS:      c.Render.DomainQPS,
		ExtraBlockMarkers:    c.Session.BlockMarkers,
		MinHTMLBytes:         c.Session.MinHTMLBytes,
	}
}

// RunOptions converts the run section into engine options. The engine clamps
// out-of-range values on its own.
func (c Config) RunOptions() engine.Options {
	return engine.Options{
		Engine:  c.Run.Engine,
		Workers: c.Run.Workers,
		Timeout: time.Duration(c.Run.TimeoutSeconds) * time.Second,
		Sources: append([]string(nil), c.Run.Sources...),
	}
}
