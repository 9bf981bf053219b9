package datasets

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/osintnator/osintnator/internal/catalog"
	"github.com/osintnator/osintnator/internal/query"
	"github.com/osintnator/osintnator/internal/session"
)

// RelevanceFilter decides whether a candidate dataset hit actually concerns
// the query. The default accepts a hit when any query token appears as a
// case-insensitive substring of the hit's combined text fields.
type RelevanceFilter func(tokens []string, h query.Hit) bool

// DefaultRelevance matches tokens against title, snippet, URL, and the
// serialized raw metadata.
func DefaultRelevance(tokens []string, h query.Hit) bool {
	rawText := ""
	if len(h.Raw) > 0 {
		if b, err := json.Marshal(h.Raw); err == nil {
			rawText = string(b)
		}
	}
	combined := strings.ToLower(strings.Join([]string{h.Title, h.Snippet, h.URL, rawText}, " "))
	for _, tok := range tokens {
		if tok != "" && strings.Contains(combined, tok) {
			return true
		}
	}
	return false
}

// Prefilter runs the provider chain over candidate sources before any live
// scraping. Sources that accrue at least one relevant hit are satisfied and
// excluded from the scrape set.
type Prefilter struct {
	providers []Provider
	sess      *session.Session
	filter    RelevanceFilter
	pause     time.Duration
	logger    *zap.Logger

	// OnHit, when set, observes each accepted hit as it is found.
	OnHit func(query.Hit)
	// OnNote, when set, receives human-readable progress notes.
	OnNote func(string)
}

// Result carries the prefilter outcome for one run.
type Result struct {
	Hits      []query.Hit
	Satisfied map[string]bool
}

// NewPrefilter builds a prefilter over the given providers. A nil filter
// selects DefaultRelevance; pause <= 0 selects the standard half-second gap
// between sources.
func NewPrefilter(providers []Provider, sess *session.Session, filter RelevanceFilter, pause time.Duration, logger *zap.Logger) *Prefilter {
	if len(providers) == 0 {
		providers = DefaultProviders()
	}
	if filter == nil {
		filter = DefaultRelevance
	}
	if pause <= 0 {
		pause = 500 * time.Millisecond
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Prefilter{providers: providers, sess: sess, filter: filter, pause: pause, logger: logger}
}

// Run queries each source in order, serially, with a polite pause between
// sources. An empty query short-circuits with zero provider calls. Provider
// failures are contained to their source.
func (p *Prefilter) Run(ctx context.Context, q query.Query, sources []string) (*Result, error) {
	res := &Result{Satisfied: make(map[string]bool)}

	tokens := q.Tokens()
	if len(tokens) == 0 {
		p.note("skipping dataset lookups: query has no searchable tokens")
		return res, nil
	}

	for i, source := range sources {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if i > 0 {
			if err := pauseCtx(ctx, p.pause); err != nil {
				return res, err
			}
		}

		entry := SourceEntry{Label: source, Domain: catalog.DomainFor(source)}
		fields := tailoredFields(source, q)

		for _, provider := range p.providers {
			hits, err := provider.Search(ctx, p.sess, entry, fields)
			if err != nil {
				p.logger.Debug("dataset provider failed",
					zap.String("provider", provider.Name()), zap.String("source", source), zap.Error(err))
				continue
			}
			for _, h := range hits {
				if !p.filter(tokens, h) {
					p.logger.Debug("dataset hit rejected",
						zap.String("source", source), zap.String("url", h.URL))
					continue
				}
				h.Site = baseLabel(h.Site, source)
				if h.Raw == nil {
					h.Raw = map[string]any{}
				}
				h.Raw[query.RawDataset] = provider.Name()
				res.Hits = append(res.Hits, h)
				res.Satisfied[h.Site] = true
				if p.OnHit != nil {
					p.OnHit(h)
				}
			}
		}
	}

	if len(res.Satisfied) > 0 {
		p.note("datasets satisfied " + strings.Join(sortedKeys(res.Satisfied), ", "))
	} else {
		p.note("no dataset hits found, proceeding to scrapers")
	}
	return res, nil
}

// Remaining filters the ordered source list down to sources the prefilter
// did not satisfy, preserving order.
func (r *Result) Remaining(sources []string) []string {
	if len(r.Satisfied) == 0 {
		return sources
	}
	out := make([]string, 0, len(sources))
	for _, s := range sources {
		if !r.Satisfied[s] {
			out = append(out, s)
		}
	}
	return out
}

// tailoredFields picks the query fields a source can actually use: address
// leads for property-record sources, phone leads for reverse lookups, and
// everything else gets the full field map.
func tailoredFields(source string, q query.Query) map[string]string {
	switch {
	case catalog.IsProperty(source):
		return map[string]string{
			"address1": q.Address1, "city": q.City, "state": q.State, "zip": q.Zip,
			"first": q.First, "last": q.Last,
		}
	case catalog.IsReversePhone(source):
		return map[string]string{
			"phone": q.Phone, "first": q.First, "last": q.Last, "address1": q.Address1,
		}
	default:
		return map[string]string{
			"first": q.First, "last": q.Last, "username": q.Username,
			"email": q.Email, "phone": q.Phone,
			"address1": q.Address1, "city": q.City, "state": q.State, "zip": q.Zip,
		}
	}
}

// baseLabel strips a provider suffix like " (Wayback)" back to the catalog
// source label.
func baseLabel(site, fallback string) string {
	if i := strings.Index(site, " ("); i > 0 {
		return site[:i]
	}
	if site == "" {
		return fallback
	}
	return site
}

func (p *Prefilter) note(msg string) {
	if p.OnNote != nil {
		p.OnNote(msg)
	}
	p.logger.Debug(msg)
}

func pauseCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func sortedKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
