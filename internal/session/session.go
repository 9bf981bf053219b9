// Package session provides the shared HTTP layer used by every scraper and
// dataset provider: a colly-backed client with user-agent rotation, polite
// jittered pacing, selective retries, and an optional headless-render
// fallback for JS-gated pages.
package session

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/gocolly/colly/v2"
	"go.uber.org/zap"
)

// Config controls session behavior. Zero values fall back to defaults
// suitable for low-volume person lookups.
type Config struct {
	UserAgents    []string
	JitterMin     time.Duration
	JitterMax     time.Duration
	RetryAttempts int
	BackoffBase   time.Duration
	BackoffCap    time.Duration
	Timeout       time.Duration

	RemoteRender         bool
	RenderTimeout        time.Duration
	RenderMaxConcurrency int
	RenderDomainQPS      float64

	ExtraBlockMarkers []string
	MinHTMLBytes      int
}

// Response is the outcome of a single fetch, after any retries and optional
// rendering. Rendered is true when the body came from the headless fallback.
type Response struct {
	StatusCode int
	Body       []byte
	FinalURL   string
	Headers    http.Header
	Rendered   bool
}

// Session is safe for concurrent use. Each request clones the base collector
// so per-request headers and user agents never leak between scrapers.
type Session struct {
	cfg           Config
	baseCollector *colly.Collector
	retry         *retryPolicy
	detector      *blockDetector
	renderer      *Renderer
	logger        *zap.Logger
	uaIndex       chan int
}

// New builds a Session. The headless renderer is only started when remote
// rendering is enabled; otherwise blocked pages are returned as-is.
func New(cfg Config, logger *zap.Logger) (*Session, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(cfg.UserAgents) == 0 {
		cfg.UserAgents = defaultUserAgents
	}
	if cfg.JitterMin <= 0 {
		cfg.JitterMin = 150 * time.Millisecond
	}
	if cfg.JitterMax < cfg.JitterMin {
		cfg.JitterMax = cfg.JitterMin + 300*time.Millisecond
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}

	c := colly.NewCollector(colly.Async(false))
	c.IgnoreRobotsTxt = true
	c.AllowURLRevisit = true
	c.ParseHTTPErrorResponse = true
	c.WithTransport(newHTTPTransport())

	s := &Session{
		cfg:           cfg,
		baseCollector: c,
		retry:         newRetryPolicy(cfg.RetryAttempts, cfg.BackoffBase, cfg.BackoffCap),
		detector:      newBlockDetector(cfg.ExtraBlockMarkers, cfg.MinHTMLBytes),
		logger:        logger,
		uaIndex:       make(chan int, 1),
	}
	s.uaIndex <- 0

	if cfg.RemoteRender {
		renderer, err := NewRenderer(RendererConfig{
			UserAgent:      cfg.UserAgents[0],
			Timeout:        cfg.RenderTimeout,
			MaxConcurrency: cfg.RenderMaxConcurrency,
			DomainQPS:      cfg.RenderDomainQPS,
		}, logger)
		if err != nil && !errors.Is(err, ErrRendererDisabled) {
			return nil, fmt.Errorf("start renderer: %w", err)
		}
		s.renderer = renderer
	}

	return s, nil
}

// Close releases the headless browser, if one was started.
func (s *Session) Close() error {
	if s.renderer != nil {
		return s.renderer.Close()
	}
	return nil
}

// Fetch performs a GET with pacing, user-agent rotation, and retries on
// throttling or server errors. When the result looks like a challenge wall
// and rendering is enabled, the rendered DOM replaces the body.
func (s *Session) Fetch(ctx context.Context, rawURL string) (*Response, error) {
	resp, err := s.do(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	if s.renderer != nil && s.detector.LooksBlocked(resp.StatusCode, resp.Body) {
		s.logger.Debug("page looks blocked, rendering", zap.String("url", rawURL))
		body, renderErr := s.renderer.Render(ctx, rawURL)
		if renderErr != nil {
			s.logger.Warn("render fallback failed", zap.String("url", rawURL), zap.Error(renderErr))
			return resp, nil
		}
		resp.Body = body
		resp.StatusCode = http.StatusOK
		resp.Rendered = true
	}
	return resp, nil
}

// FetchWithHeaders performs a GET with extra request headers. No render
// fallback applies; header-authenticated APIs return JSON, not HTML walls.
func (s *Session) FetchWithHeaders(ctx context.Context, rawURL string, headers map[string]string) (*Response, error) {
	return s.do(ctx, http.MethodGet, rawURL, headers)
}

// FetchExistence answers "does this page exist" as cheaply as possible: a
// HEAD first, falling back to GET when the host rejects HEAD or when the
// caller needs a body a HEAD cannot carry.
func (s *Session) FetchExistence(ctx context.Context, rawURL string) (*Response, error) {
	resp, err := s.do(ctx, http.MethodHead, rawURL, nil)
	if err == nil &&
		resp.StatusCode != http.StatusMethodNotAllowed &&
		resp.StatusCode != http.StatusForbidden &&
		!(resp.StatusCode == http.StatusOK && len(resp.Body) == 0) {
		return resp, nil
	}
	return s.do(ctx, http.MethodGet, rawURL, nil)
}

func (s *Session) do(ctx context.Context, method, rawURL string, headers map[string]string) (*Response, error) {
	var lastErr error
	for attempt := 0; ; attempt++ {
		if err := s.pause(ctx); err != nil {
			return nil, err
		}

		resp, err := s.once(ctx, method, rawURL, headers)
		switch {
		case err != nil:
			if s.retry.RetryError(err, attempt) {
				lastErr = err
				s.logger.Debug("retrying after transport error",
					zap.String("url", rawURL), zap.Int("attempt", attempt), zap.Error(err))
				if waitErr := sleepCtx(ctx, s.retry.Backoff(attempt)); waitErr != nil {
					return nil, waitErr
				}
				continue
			}
			if lastErr != nil {
				return nil, fmt.Errorf("fetch %s: %w (after %v)", rawURL, err, lastErr)
			}
			return nil, fmt.Errorf("fetch %s: %w", rawURL, err)
		case s.retry.RetryStatus(resp.StatusCode, attempt):
			s.logger.Debug("retrying after status",
				zap.String("url", rawURL), zap.Int("status", resp.StatusCode), zap.Int("attempt", attempt))
			if waitErr := sleepCtx(ctx, s.retry.Backoff(attempt)); waitErr != nil {
				return nil, waitErr
			}
			continue
		default:
			return resp, nil
		}
	}
}

// once runs a single colly request on a cloned collector. Colly has no
// context plumbing of its own, so the visit runs in a goroutine raced
// against ctx the same way a hung connection would be abandoned.
func (s *Session) once(ctx context.Context, method, rawURL string, headers map[string]string) (*Response, error) {
	collector := s.baseCollector.Clone()
	collector.IgnoreRobotsTxt = true
	collector.AllowURLRevisit = true
	collector.ParseHTTPErrorResponse = true
	collector.UserAgent = s.nextUserAgent()
	collector.SetRequestTimeout(s.cfg.Timeout)

	var (
		result   *Response
		fetchErr error
	)
	collector.OnRequest(func(r *colly.Request) {
		for key, value := range headers {
			r.Headers.Set(key, value)
		}
	})
	collector.OnResponse(func(r *colly.Response) {
		result = &Response{
			StatusCode: r.StatusCode,
			Body:       append([]byte(nil), r.Body...),
			FinalURL:   r.Request.URL.String(),
			Headers:    r.Headers.Clone(),
		}
	})
	collector.OnError(func(r *colly.Response, err error) {
		if r != nil && r.StatusCode != 0 {
			result = &Response{
				StatusCode: r.StatusCode,
				Body:       append([]byte(nil), r.Body...),
				FinalURL:   r.Request.URL.String(),
			}
			if r.Headers != nil {
				result.Headers = r.Headers.Clone()
			}
			return
		}
		fetchErr = err
	})

	done := make(chan error, 1)
	go func() {
		if method == http.MethodGet {
			done <- collector.Visit(rawURL)
			return
		}
		done <- collector.Request(method, rawURL, nil, nil, nil)
	}()

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("fetch canceled: %w", ctx.Err())
	case err := <-done:
		if result != nil {
			return result, nil
		}
		if fetchErr != nil {
			return nil, fetchErr
		}
		if err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("no response for %s", rawURL)
	}
}

// pause sleeps a random interval inside the configured jitter window so
// bursts of lookups do not arrive in lockstep.
func (s *Session) pause(ctx context.Context) error {
	window := s.cfg.JitterMax - s.cfg.JitterMin
	return sleepCtx(ctx, s.cfg.JitterMin+randomJitter(window))
}

func (s *Session) nextUserAgent() string {
	i := <-s.uaIndex
	ua := s.cfg.UserAgents[i%len(s.cfg.UserAgents)]
	if i == math.MaxInt {
		i = -1
	}
	s.uaIndex <- i + 1
	return ua
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// IsTemporary reports whether a fetch error is a transient network fault
// rather than a hard failure. Scrapers use it to phrase miss reasons.
func IsTemporary(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return strings.Contains(err.Error(), "connection reset")
}

func newHTTPTransport() *http.Transport {
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   15 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
	}
}
