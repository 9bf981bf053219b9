package query

import "strconv"

// Raw metadata keys attached to hits for provenance.
const (
	RawExists   = "exists"
	RawFallback = "fallback" // "home" or "dork"
	RawTimeout  = "timeout"
	RawError    = "error"
	RawCode     = "code"
	RawProbed   = "probed"
	RawReason   = "reason"
	RawCount    = "count"
	RawEngine   = "engine"
	RawDataset  = "dataset"
)

// Fallback flavors stored under RawFallback.
const (
	FallbackHome = "home"
	FallbackDork = "dork"
)

// Hit is a single lookup result row. Hits are immutable once created; the
// aggregator and report writers only ever read them.
type Hit struct {
	Site    string         `json:"site"`
	Title   string         `json:"title"`
	Snippet string         `json:"snippet"`
	URL     string         `json:"url"`
	Raw     map[string]any `json:"raw"`
}

// Negative builds an explicit not-found hit for a probed service. Expected
// failure conditions surface as rows like this rather than as errors.
func Negative(site, url, reason string, code int) Hit {
	snippet := reason
	raw := map[string]any{RawExists: false, RawReason: reason}
	if code != 0 {
		snippet += " (HTTP " + strconv.Itoa(code) + ")"
		raw[RawCode] = code
	}
	return Hit{
		Site:    site,
		Title:   site + ": not found",
		Snippet: snippet,
		URL:     url,
		Raw:     raw,
	}
}
