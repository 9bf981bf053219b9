package scraper

import (
	"bytes"
	"context"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/osintnator/osintnator/internal/query"
	"github.com/osintnator/osintnator/internal/session"
)

var whitespaceRun = regexp.MustCompile(`\s+`)

// probeTerms fetches each probe URL in order and records a hit when any
// query token appears in the page body, or the username appears in the
// page title. It stops once maxHits hits have been collected. Failed or
// empty probes are skipped silently; a probe miss is not news.
func probeTerms(ctx context.Context, sess *session.Session, site string, q query.Query, probes []string, maxHits int) ([]query.Hit, error) {
	tokens := probeTokens(q)
	if len(tokens) == 0 || len(probes) == 0 {
		return nil, nil
	}
	if maxHits <= 0 {
		maxHits = 2
	}

	var hits []query.Hit
	for _, probeURL := range probes {
		if err := ctx.Err(); err != nil {
			return hits, err
		}
		resp, err := sess.Fetch(ctx, probeURL)
		if err != nil || resp.StatusCode >= 400 || len(resp.Body) == 0 {
			continue
		}

		lower := bytes.ToLower(resp.Body)
		found := false
		for _, tok := range tokens {
			if bytes.Contains(lower, []byte(tok)) {
				found = true
				break
			}
		}
		if !found && q.Username != "" {
			title := pageTitle(resp.Body)
			found = strings.Contains(strings.ToLower(title), strings.ToLower(q.Username))
		}
		if !found {
			continue
		}

		hits = append(hits, query.Hit{
			Site:    site,
			Title:   "probe: " + probeURL,
			Snippet: collapseSnippet(resp.Body, 300),
			URL:     probeURL,
			Raw:     map[string]any{query.RawProbed: true},
		})
		if len(hits) >= maxHits {
			break
		}
	}
	return hits, nil
}

// probeTokens picks the query fields worth matching inside a result page.
// Address fields are deliberately absent: street names false-positive on
// nearly every people-search result list.
func probeTokens(q query.Query) []string {
	var tokens []string
	if q.Username != "" {
		tokens = append(tokens, strings.ToLower(q.Username))
	}
	for _, part := range strings.Fields(q.FullName()) {
		tokens = append(tokens, strings.ToLower(part))
	}
	if q.Email != "" {
		tokens = append(tokens, strings.ToLower(q.Email))
	}
	if d := query.DigitsOnly(q.Phone); d != "" {
		tokens = append(tokens, d)
	}
	return tokens
}

func pageTitle(body []byte) string {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(doc.Find("title").First().Text())
}

func collapseSnippet(body []byte, limit int) string {
	s := whitespaceRun.ReplaceAllString(string(body), " ")
	if len(s) > limit {
		s = strings.ToValidUTF8(s[:limit], "")
	}
	return s
}
