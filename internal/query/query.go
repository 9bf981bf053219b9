// Package query defines the immutable search criteria value object and its
// canonical, cache-addressable form.
package query

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"
)

// Query holds the identity fragments a run searches for. All fields are
// optional; an all-empty Query is valid but produces no searchable tokens.
type Query struct {
	First    string `json:"first"`
	Last     string `json:"last"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Address1 string `json:"address1"`
	City     string `json:"city"`
	State    string `json:"state"`
	Zip      string `json:"zip"`
}

// FullName joins the trimmed first and last names with a single space,
// omitting whichever is empty.
func (q Query) FullName() string {
	parts := make([]string, 0, 2)
	for _, p := range []string{strings.TrimSpace(q.First), strings.TrimSpace(q.Last)} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}

// Canonical returns the deterministic serialization used for cache keys: all
// nine fields, empty string for unset, encoded as JSON with sorted keys.
// Encoding a map is what guarantees key order; struct tag order would not.
func (q Query) Canonical() []byte {
	m := map[string]string{
		"first":    q.First,
		"last":     q.Last,
		"username": q.Username,
		"email":    q.Email,
		"phone":    q.Phone,
		"address1": q.Address1,
		"city":     q.City,
		"state":    q.State,
		"zip":      q.Zip,
	}
	// json.Marshal sorts map keys, and string values cannot fail to encode.
	b, _ := json.Marshal(m)
	return b
}

// CacheKey returns the hex SHA-256 digest of the canonical form.
func (q Query) CacheKey() string {
	sum := sha256.Sum256(q.Canonical())
	return hex.EncodeToString(sum[:])
}

// Tokens returns the lower-cased, de-duplicated searchable tokens contributed
// by the query: full name plus its parts, username, email, phone digits,
// address line, city, state and zip. An empty slice means the query carries
// nothing worth matching against.
func (q Query) Tokens() []string {
	candidates := make([]string, 0, 10)
	if full := q.FullName(); full != "" {
		candidates = append(candidates, strings.ToLower(full))
		if f := strings.TrimSpace(q.First); f != "" {
			candidates = append(candidates, strings.ToLower(f))
		}
		if l := strings.TrimSpace(q.Last); l != "" {
			candidates = append(candidates, strings.ToLower(l))
		}
	}
	for _, v := range []string{q.Username, q.Email} {
		if v = strings.TrimSpace(v); v != "" {
			candidates = append(candidates, strings.ToLower(v))
		}
	}
	if d := DigitsOnly(q.Phone); d != "" {
		candidates = append(candidates, d)
	}
	for _, v := range []string{q.Address1, q.City, q.State, q.Zip} {
		if v = strings.TrimSpace(v); v != "" {
			candidates = append(candidates, strings.ToLower(v))
		}
	}

	seen := make(map[string]struct{}, len(candidates))
	out := make([]string, 0, len(candidates))
	for _, tok := range candidates {
		if _, ok := seen[tok]; ok {
			continue
		}
		seen[tok] = struct{}{}
		out = append(out, tok)
	}
	return out
}

// DigitsOnly strips everything but ASCII digits from s.
func DigitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
