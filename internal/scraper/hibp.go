package scraper

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/osintnator/osintnator/internal/query"
	"github.com/osintnator/osintnator/internal/session"
)

const (
	hibpSite        = "HaveIBeenPwned"
	hibpBaseURL     = "https://haveibeenpwned.com"
	hibpRatePause   = 1700 * time.Millisecond
	hibpMaxBreaches = 10
)

// HIBP queries the Have I Been Pwned breach API for the query's email, or
// username when no email is present. Without an API key it reports nothing;
// the API rejects unauthenticated account lookups.
type HIBP struct {
	apiKey  string
	baseURL string
	pause   time.Duration
	logger  *zap.Logger
}

type hibpBreach struct {
	Name   string `json:"Name"`
	Domain string `json:"Domain"`
}

// NewHIBP builds the breach scraper. apiKey may be empty.
func NewHIBP(apiKey string, logger *zap.Logger) *HIBP {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HIBP{apiKey: strings.TrimSpace(apiKey), baseURL: hibpBaseURL, pause: hibpRatePause, logger: logger}
}

func (h *HIBP) Site() string { return hibpSite }

func (h *HIBP) Scrape(ctx context.Context, sess *session.Session, q query.Query) ([]query.Hit, error) {
	account := strings.TrimSpace(q.Email)
	if account == "" {
		account = strings.TrimSpace(q.Username)
	}
	if h.apiKey == "" || account == "" {
		return nil, nil
	}

	// The API throttles aggressively; wait out its rate window up front.
	if err := waitCtx(ctx, h.pause); err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("%s/api/v3/breachedaccount/%s?truncateResponse=true",
		h.baseURL, url.QueryEscape(account))
	resp, err := sess.FetchWithHeaders(ctx, endpoint, map[string]string{
		"hibp-api-key": h.apiKey,
		"Accept":       "application/json",
	})
	if err != nil {
		return nil, fmt.Errorf("hibp lookup: %w", err)
	}
	if resp.StatusCode == http.StatusNotFound {
		h.logger.Debug("hibp: account not in any breach")
		return nil, nil
	}
	if resp.StatusCode >= 400 {
		h.logger.Debug("hibp error", zap.Int("status", resp.StatusCode))
		return nil, nil
	}

	var breaches []hibpBreach
	if len(strings.TrimSpace(string(resp.Body))) > 0 {
		if err := json.Unmarshal(resp.Body, &breaches); err != nil {
			return nil, fmt.Errorf("hibp decode: %w", err)
		}
	}

	accountURL := fmt.Sprintf("%s/account/%s", h.baseURL, url.QueryEscape(account))
	var hits []query.Hit
	for i, b := range breaches {
		if i >= hibpMaxBreaches {
			break
		}
		name := b.Name
		if name == "" {
			name = "Breach"
		}
		domain := b.Domain
		if domain == "" {
			domain = "haveibeenpwned.com"
		}
		hits = append(hits, query.Hit{
			Site:    hibpSite,
			Title:   "HIBP: " + name,
			Snippet: "Domain: " + domain,
			URL:     accountURL,
			Raw:     map[string]any{query.RawExists: true},
		})
	}
	return hits, nil
}

func waitCtx(ctx context.Context, d time.Duration) error {
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
