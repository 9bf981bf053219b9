package catalog

import (
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/osintnator/osintnator/internal/query"
)

func TestBaseURL(t *testing.T) {
	t.Parallel()

	// Explicit home URL wins over the derived domain form.
	require.Equal(t, "https://s.weibo.com/", BaseURL("Weibo"))
	// Derived from the domain root.
	require.Equal(t, "https://familytreenow.com", BaseURL("FamilyTreeNow"))
	// No domain, no home page.
	require.Empty(t, BaseURL("NeighborReport"))
	require.Empty(t, BaseURL(SourceUsernamePack))
}

func TestEngineGuardFallsBack(t *testing.T) {
	t.Parallel()

	require.Equal(t, "Google", EngineGuard("Google"))
	require.Equal(t, DefaultEngine, EngineGuard("AltaVista"))
	require.Equal(t, Engines[DefaultEngine], EngineBase("AltaVista"))
}

func TestAllSourcesCoversPriorityPanel(t *testing.T) {
	t.Parallel()

	all := AllSources()
	for _, p := range PrioritySources {
		require.Contains(t, all, p)
	}
}

func TestDorkURLPropertyPrefersAddress(t *testing.T) {
	t.Parallel()

	q := query.Query{First: "Ada", Last: "Lovelace", Address1: "12 Main St", City: "Springfield", Phone: "555-0102"}
	dork := DorkURL("Zillow", q, "DuckDuckGo")
	require.True(t, strings.HasPrefix(dork, Engines["DuckDuckGo"]))

	decoded := decode(t, dork)
	require.Contains(t, decoded, "site:zillow.com")
	// Address tokens come before the name for property sources.
	require.Less(t, strings.Index(decoded, "12 Main St"), strings.Index(decoded, "Ada Lovelace"))
}

func TestDorkURLReversePhonePrefersDigits(t *testing.T) {
	t.Parallel()

	q := query.Query{First: "Ada", Last: "Lovelace", Phone: "(555) 010-2345"}
	decoded := decode(t, DorkURL("WhoCallsMe", q, "Bing"))
	require.Contains(t, decoded, "site:whocallsme.com")
	require.Less(t, strings.Index(decoded, "5550102345"), strings.Index(decoded, "Ada Lovelace"))
}

func TestDorkURLDefaultLeadsWithName(t *testing.T) {
	t.Parallel()

	q := query.Query{First: "Ada", Last: "Lovelace", Username: "ada123"}
	decoded := decode(t, DorkURL("PeekYou", q, "DuckDuckGo"))
	require.Less(t, strings.Index(decoded, `"Ada Lovelace"`), strings.Index(decoded, "ada123"))
}

func TestDorkURLEmptyQueryUsesDomain(t *testing.T) {
	t.Parallel()

	decoded := decode(t, DorkURL("Radaris", query.Query{}, "DuckDuckGo"))
	require.Contains(t, decoded, "site:radaris.com")

	// A source with no domain falls back to its label.
	decoded = decode(t, DorkURL("CallerName", query.Query{}, "DuckDuckGo"))
	require.Contains(t, decoded, "CallerName")
}

func decode(t *testing.T, dork string) string {
	t.Helper()
	idx := strings.LastIndexAny(dork, "=")
	require.Positive(t, idx)
	decoded, err := url.QueryUnescape(dork[idx+1:])
	require.NoError(t, err)
	return decoded
}
