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

const waybackCDX = "https://web.archive.org/cdx/search/cdx"

// Wayback lists recent archived snapshots for a source's domain via the
// CDX API. Snapshots tell us whether a source ever published pages about
// the subject even when the live site now blocks crawlers.
type Wayback struct {
	Limit   int
	BaseURL string
}

func (w *Wayback) Name() string { return "Wayback" }

func (w *Wayback) Search(ctx context.Context, sess *session.Session, src SourceEntry, _ map[string]string) ([]query.Hit, error) {
	if src.Domain == "" {
		return nil, nil
	}
	limit := w.Limit
	if limit <= 0 {
		limit = 6
	}
	base := w.BaseURL
	if base == "" {
		base = waybackCDX
	}

	params := url.Values{}
	params.Set("url", src.Domain+"/*")
	params.Set("output", "json")
	params.Set("filter", "statuscode:200")
	params.Set("limit", fmt.Sprint(limit))
	params.Set("from", "1996")
	params.Set("collapse", "digest")

	resp, err := sess.Fetch(ctx, base+"?"+params.Encode())
	if err != nil {
		return nil, fmt.Errorf("wayback cdx: %w", err)
	}
	if resp.StatusCode != 200 {
		return nil, nil
	}

	hits := w.parseJSON(src, resp.Body)
	if hits == nil {
		hits = w.parseLines(src, resp.Body, limit)
	}
	if len(hits) > limit {
		hits = hits[:limit]
	}
	return hits, nil
}

// parseJSON handles the documented CDX JSON shape: a header row of field
// names followed by one row per snapshot.
func (w *Wayback) parseJSON(src SourceEntry, body []byte) []query.Hit {
	var rows [][]string
	if err := json.Unmarshal(body, &rows); err != nil || len(rows) < 2 {
		return nil
	}
	fields := rows[0]
	var hits []query.Hit
	for _, row := range rows[1:] {
		rec := make(map[string]any, len(fields))
		for i, f := range fields {
			if i < len(row) {
				rec[f] = row[i]
			}
		}
		ts, _ := rec["timestamp"].(string)
		orig, _ := rec["original"].(string)
		hits = append(hits, snapshotHit(src, ts, orig, rec))
	}
	return hits
}

// parseLines is the fallback for the plain text CDX response.
func (w *Wayback) parseLines(src SourceEntry, body []byte, limit int) []query.Hit {
	var hits []query.Hit
	for _, line := range strings.Split(strings.TrimSpace(string(body)), "\n") {
		parts := strings.Fields(line)
		if len(parts) < 3 {
			continue
		}
		hits = append(hits, snapshotHit(src, parts[1], parts[2], map[string]any{"line": line}))
		if len(hits) >= limit {
			break
		}
	}
	return hits
}

func snapshotHit(src SourceEntry, ts, original string, raw map[string]any) query.Hit {
	return query.Hit{
		Site:    src.Label + " (Wayback)",
		Title:   "Wayback snapshot " + ts,
		Snippet: original,
		URL:     fmt.Sprintf("https://web.archive.org/web/%s/%s", ts, original),
		Raw:     raw,
	}
}
