package catalog

import (
	"net/url"
	"strings"

	"github.com/osintnator/osintnator/internal/query"
)

// DefaultEngine is used whenever the configured engine is unrecognized.
const DefaultEngine = "DuckDuckGo"

// Engines maps an engine name to its search URL prefix.
var Engines = map[string]string{
	"DuckDuckGo": "https://duckduckgo.com/?q=",
	"Google":     "https://www.google.com/search?q=",
	"Brave":      "https://search.brave.com/search?q=",
	"Bing":       "https://www.bing.com/search?q=",
	"Yandex":     "https://yandex.com/search/?text=",
	"Baidu":      "https://www.baidu.com/s?wd=",
	"ZoomEye":    "https://www.zoomeye.ai/search?q=",
	"DogPile":    "https://www.dogpile.com/serp?q=",
}

// EngineBase returns the URL prefix for the named engine, falling back to
// the default when the name is unknown.
func EngineBase(engine string) string {
	if base, ok := Engines[engine]; ok {
		return base
	}
	return Engines[DefaultEngine]
}

// EngineGuard normalizes an engine name to a recognized one.
func EngineGuard(engine string) string {
	if _, ok := Engines[engine]; ok {
		return engine
	}
	return DefaultEngine
}

// DorkURL builds a site-scoped search-engine link for the source. Property
// sources prefer address tokens, reverse-phone sources prefer phone tokens,
// everything else leads with name/username/email.
func DorkURL(source string, q query.Query, engine string) string {
	domain := DomainFor(source)
	toks := dorkTokens(source, q)

	parts := make([]string, 0, len(toks)+1)
	if domain != "" {
		parts = append(parts, "site:"+domain)
	}
	parts = append(parts, toks...)

	queryStr := strings.Join(parts, " ")
	if queryStr == "" {
		queryStr = domain
		if queryStr == "" {
			queryStr = source
		}
	}
	return EngineBase(engine) + url.QueryEscape(queryStr)
}

func dorkTokens(source string, q query.Query) []string {
	var toks []string
	add := func(s string) {
		if s != "" {
			toks = append(toks, s)
		}
	}
	quoted := func(s string) string {
		if s == "" {
			return ""
		}
		return `"` + s + `"`
	}

	switch {
	case IsProperty(source):
		add(quoted(q.Address1))
		add(q.City)
		add(q.State)
		add(q.Zip)
		add(quoted(q.FullName()))
		add(query.DigitsOnly(q.Phone))
		add(q.Email)
		add(q.Username)
	case IsReversePhone(source):
		add(query.DigitsOnly(q.Phone))
		add(quoted(q.FullName()))
		add(quoted(q.Address1))
		add(q.City)
		add(q.State)
		add(q.Zip)
		add(q.Email)
		add(q.Username)
	default:
		add(quoted(q.FullName()))
		add(q.Username)
		add(q.Email)
		add(query.DigitsOnly(q.Phone))
		add(quoted(q.Address1))
		add(q.City)
		add(q.State)
		add(q.Zip)
	}
	return toks
}
