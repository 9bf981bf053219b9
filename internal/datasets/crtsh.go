package datasets

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/osintnator/osintnator/internal/query"
	"github.com/osintnator/osintnator/internal/session"
)

const crtshBase = "https://crt.sh/"

// CrtSh searches certificate transparency logs for a source's domain. The
// wildcard form surfaces subdomains that often host older, less guarded
// copies of profile data.
type CrtSh struct {
	Limit   int
	BaseURL string
}

type crtshRecord struct {
	ID         int64  `json:"id"`
	MinCertID  int64  `json:"min_cert_id"`
	CommonName string `json:"common_name"`
	NameValue  string `json:"name_value"`
	NotBefore  string `json:"not_before"`
	LoggedAt   string `json:"entry_timestamp"`
}

func (c *CrtSh) Name() string { return "crt.sh" }

func (c *CrtSh) Search(ctx context.Context, sess *session.Session, src SourceEntry, _ map[string]string) ([]query.Hit, error) {
	if src.Domain == "" {
		return nil, nil
	}
	limit := c.Limit
	if limit <= 0 {
		limit = 6
	}
	base := c.BaseURL
	if base == "" {
		base = crtshBase
	}

	q := src.Domain
	if strings.Contains(q, ".") {
		q = "%." + q
	}
	params := url.Values{}
	params.Set("q", q)
	params.Set("output", "json")

	resp, err := sess.Fetch(ctx, base+"?"+params.Encode())
	if err != nil {
		return nil, fmt.Errorf("crtsh: %w", err)
	}
	if resp.StatusCode != 200 {
		return nil, nil
	}

	var records []crtshRecord
	if err := json.Unmarshal(resp.Body, &records); err != nil {
		return nil, nil
	}

	seen := make(map[int64]bool)
	var hits []query.Hit
	for _, rec := range records {
		certID := rec.MinCertID
		if certID == 0 {
			certID = rec.ID
		}
		if certID == 0 || seen[certID] {
			continue
		}
		seen[certID] = true

		name := rec.CommonName
		if name == "" {
			name = rec.NameValue
		}
		issued := rec.NotBefore
		if issued == "" {
			issued = rec.LoggedAt
		}
		hits = append(hits, query.Hit{
			Site:    src.Label + " (crt.sh)",
			Title:   fmt.Sprintf("Certificate: %s (%s)", name, issued),
			Snippet: fmt.Sprintf("cert id=%d name_value=%s", certID, rec.NameValue),
			URL:     fmt.Sprintf("%s?id=%d", base, certID),
			Raw:     map[string]any{"id": certID, "common_name": rec.CommonName, "name_value": rec.NameValue},
		})
		if len(hits) >= limit {
			break
		}
	}
	return hits, nil
}
