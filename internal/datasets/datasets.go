// Package datasets queries cheap public indices (archival snapshots,
// certificate transparency, search-engine link construction) before any
// live scraping happens. A source whose dataset results already answer the
// query is dropped from the scrape set entirely.
package datasets

import (
	"context"

	"github.com/osintnator/osintnator/internal/query"
	"github.com/osintnator/osintnator/internal/session"
)

// SourceEntry identifies one catalog source for a provider call. Domain may
// be empty; providers that need one return nothing in that case.
type SourceEntry struct {
	Label  string
	Domain string
}

// Provider is one external dataset collaborator. Search returns candidate
// hits for the source; relevance filtering happens in the prefilter, so
// providers report everything they find.
type Provider interface {
	Name() string
	Search(ctx context.Context, sess *session.Session, src SourceEntry, fields map[string]string) ([]query.Hit, error)
}

// DefaultProviders is the standard provider chain, in query order.
func DefaultProviders() []Provider {
	return []Provider{
		&Wayback{Limit: 4},
		&CrtSh{Limit: 4},
		&SearchLinks{},
	}
}
