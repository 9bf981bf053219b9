package datasets

import (
	"context"
	"net/url"
	"strings"

	"github.com/osintnator/osintnator/internal/query"
	"github.com/osintnator/osintnator/internal/session"
)

// SearchLinks constructs ready-to-open search-engine dork links for a
// source. It performs no network calls of its own; the links are handed to
// the operator as quick lookups.
type SearchLinks struct{}

var linkEngines = []struct {
	name string
	base string
}{
	{"DuckDuckGo", "https://duckduckgo.com/?q="},
	{"Google", "https://www.google.com/search?q="},
	{"Bing", "https://www.bing.com/search?q="},
	{"GitHub code", "https://github.com/search?q="},
}

func (s *SearchLinks) Name() string { return "Search Links" }

func (s *SearchLinks) Search(_ context.Context, _ *session.Session, src SourceEntry, fields map[string]string) ([]query.Hit, error) {
	tokens := linkTokens(fields)

	var dork string
	switch {
	case src.Domain != "" && len(tokens) > 0:
		dork = "site:" + src.Domain + " " + strings.Join(tokens, " ")
	case src.Domain != "":
		dork = "site:" + src.Domain
	case len(tokens) > 0:
		dork = strings.Join(tokens, " ")
	default:
		dork = src.Label
	}

	var hits []query.Hit
	for _, engine := range linkEngines {
		q := dork
		// Code search has no site: operator worth using; raw tokens only.
		if engine.name == "GitHub code" {
			q = strings.Join(tokens, " ")
		}
		hits = append(hits, query.Hit{
			Site:    src.Label + " (Search link)",
			Title:   engine.name + " search",
			Snippet: dork,
			URL:     engine.base + url.QueryEscape(q),
			Raw:     map[string]any{query.RawEngine: engine.name},
		})
	}
	hits = append(hits, query.Hit{
		Site:    src.Label + " (Search link)",
		Title:   "Common Crawl (index) / BigQuery hint",
		Snippet: "Use the Common Crawl index or BigQuery to fetch page text for this dork",
		URL:     "https://commoncrawl.org/",
		Raw:     map[string]any{query.RawEngine: "Common Crawl"},
	})
	return hits, nil
}

// linkTokens builds the dork terms from a tailored field map: quoted full
// name first, then username, email, and phone digits.
func linkTokens(fields map[string]string) []string {
	var tokens []string
	fullName := strings.TrimSpace(strings.TrimSpace(fields["first"]) + " " + strings.TrimSpace(fields["last"]))
	if fullName != "" {
		tokens = append(tokens, `"`+fullName+`"`)
	}
	if u := strings.TrimSpace(fields["username"]); u != "" {
		tokens = append(tokens, u)
	}
	if e := strings.TrimSpace(fields["email"]); e != "" {
		tokens = append(tokens, e)
	}
	if d := query.DigitsOnly(fields["phone"]); d != "" {
		tokens = append(tokens, d)
	}
	return tokens
}
