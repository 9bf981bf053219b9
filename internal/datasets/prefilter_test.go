package datasets

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/osintnator/osintnator/internal/query"
	"github.com/osintnator/osintnator/internal/session"
)

type stubProvider struct {
	name  string
	calls atomic.Int32
	hits  func(src SourceEntry, fields map[string]string) []query.Hit
	err   error
}

func (s *stubProvider) Name() string { return s.name }

func (s *stubProvider) Search(_ context.Context, _ *session.Session, src SourceEntry, fields map[string]string) ([]query.Hit, error) {
	s.calls.Add(1)
	if s.err != nil {
		return nil, s.err
	}
	if s.hits == nil {
		return nil, nil
	}
	return s.hits(src, fields), nil
}

func newTestPrefilter(providers ...Provider) *Prefilter {
	return NewPrefilter(providers, nil, nil, time.Millisecond, zap.NewNop())
}

func TestPrefilterEmptyQuerySkipsProviders(t *testing.T) {
	t.Parallel()

	stub := &stubProvider{name: "stub"}
	p := newTestPrefilter(stub)

	res, err := p.Run(context.Background(), query.Query{}, []string{"FamilyTreeNow", "WhoCallsMe"})
	require.NoError(t, err)
	require.Empty(t, res.Hits)
	require.Empty(t, res.Satisfied)
	require.Zero(t, stub.calls.Load())
	require.Equal(t, []string{"FamilyTreeNow", "WhoCallsMe"}, res.Remaining([]string{"FamilyTreeNow", "WhoCallsMe"}))
}

func TestPrefilterSatisfiesSourceOnRelevantHit(t *testing.T) {
	t.Parallel()

	stub := &stubProvider{name: "stub", hits: func(src SourceEntry, _ map[string]string) []query.Hit {
		if src.Label != "FamilyTreeNow" {
			return nil
		}
		return []query.Hit{{
			Site:    src.Label + " (Wayback)",
			Title:   "snapshot",
			Snippet: "record for ada lovelace",
			URL:     "https://example.org/a",
		}}
	}}
	p := newTestPrefilter(stub)

	var seen []query.Hit
	p.OnHit = func(h query.Hit) { seen = append(seen, h) }

	sources := []string{"FamilyTreeNow", "WhoCallsMe"}
	res, err := p.Run(context.Background(), query.Query{First: "Ada", Last: "Lovelace"}, sources)
	require.NoError(t, err)
	require.Len(t, res.Hits, 1)
	require.Equal(t, "FamilyTreeNow", res.Hits[0].Site)
	require.Equal(t, "stub", res.Hits[0].Raw[query.RawDataset])
	require.True(t, res.Satisfied["FamilyTreeNow"])
	require.Equal(t, []string{"WhoCallsMe"}, res.Remaining(sources))
	require.Len(t, seen, 1)
}

func TestPrefilterRejectsIrrelevantHits(t *testing.T) {
	t.Parallel()

	stub := &stubProvider{name: "stub", hits: func(src SourceEntry, _ map[string]string) []query.Hit {
		return []query.Hit{{
			Site:    src.Label + " (crt.sh)",
			Title:   "Certificate: unrelated.example.net",
			Snippet: "cert id=12345",
			URL:     "https://crt.sh/?id=12345",
		}}
	}}
	p := newTestPrefilter(stub)

	res, err := p.Run(context.Background(), query.Query{First: "Ada", Last: "Lovelace"}, []string{"FamilyTreeNow"})
	require.NoError(t, err)
	require.Empty(t, res.Hits)
	require.Empty(t, res.Satisfied)
}

func TestPrefilterIsolatesProviderFailure(t *testing.T) {
	t.Parallel()

	broken := &stubProvider{name: "broken", err: errors.New("upstream down")}
	working := &stubProvider{name: "working", hits: func(src SourceEntry, _ map[string]string) []query.Hit {
		return []query.Hit{{Site: src.Label, Title: "found ada_l", URL: "https://example.org"}}
	}}
	p := newTestPrefilter(broken, working)

	res, err := p.Run(context.Background(), query.Query{Username: "ada_l"}, []string{"PeekYou", "Radaris"})
	require.NoError(t, err)
	require.Len(t, res.Hits, 2)
	require.Equal(t, int32(2), broken.calls.Load())
	require.Equal(t, int32(2), working.calls.Load())
}

func TestPrefilterTailoredFields(t *testing.T) {
	t.Parallel()

	q := query.Query{
		First: "Ada", Last: "Lovelace", Username: "ada_l", Email: "ada@example.org",
		Phone: "212-555-0100", Address1: "12 Analytical Way", City: "Albany", State: "NY", Zip: "12207",
	}

	prop := tailoredFields("NETR Online", q)
	require.Equal(t, "12 Analytical Way", prop["address1"])
	require.NotContains(t, prop, "username")
	require.NotContains(t, prop, "email")

	rev := tailoredFields("WhoCallsMe", q)
	require.Equal(t, "212-555-0100", rev["phone"])
	require.NotContains(t, rev, "city")

	full := tailoredFields("FamilyTreeNow", q)
	require.Len(t, full, 9)
	require.Equal(t, "ada_l", full["username"])
}

func TestDefaultRelevance(t *testing.T) {
	t.Parallel()

	tokens := []string{"ada lovelace", "ada", "lovelace", "ada_l"}
	require.True(t, DefaultRelevance(tokens, query.Hit{Title: "profile of Ada Lovelace"}))
	require.True(t, DefaultRelevance(tokens, query.Hit{URL: "https://example.org/ada_l"}))
	require.True(t, DefaultRelevance(tokens, query.Hit{Raw: map[string]any{"original": "https://x.test/ADA_L"}}))
	require.False(t, DefaultRelevance(tokens, query.Hit{Title: "Certificate: www.example.net", Snippet: "cert id=1"}))
}

func TestSearchLinksBuildsDorks(t *testing.T) {
	t.Parallel()

	sl := &SearchLinks{}
	hits, err := sl.Search(context.Background(), nil, SourceEntry{Label: "FamilyTreeNow", Domain: "familytreenow.com"},
		map[string]string{"first": "Ada", "last": "Lovelace", "username": "ada_l", "phone": "(212) 555-0100"})
	require.NoError(t, err)
	require.Len(t, hits, 5)

	require.Equal(t, "DuckDuckGo search", hits[0].Title)
	require.Contains(t, hits[0].Snippet, `site:familytreenow.com "Ada Lovelace" ada_l 2125550100`)
	require.Contains(t, hits[0].URL, "duckduckgo.com")

	// The code-search link drops the site: operator.
	require.Equal(t, "GitHub code search", hits[3].Title)
	require.NotContains(t, hits[3].URL, "site%3A")

	require.Contains(t, hits[4].Title, "Common Crawl")
}

func TestSearchLinksEmptyFieldsFallsBackToLabel(t *testing.T) {
	t.Parallel()

	sl := &SearchLinks{}
	hits, err := sl.Search(context.Background(), nil, SourceEntry{Label: "NeighborReport"}, map[string]string{})
	require.NoError(t, err)
	require.Equal(t, "NeighborReport", hits[0].Snippet)
}
