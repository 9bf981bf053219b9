package query

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestCanonicalFieldOrderIndependent verifies queries built with fields
// assigned in different orders share one canonical form and cache key.
func TestCanonicalFieldOrderIndependent(t *testing.T) {
	t.Parallel()

	a := Query{First: "Ada", Last: "Lovelace", Email: "ada@example.com"}
	b := Query{}
	b.Email = "ada@example.com"
	b.Last = "Lovelace"
	b.First = "Ada"

	require.Equal(t, a.Canonical(), b.Canonical())
	require.Equal(t, a.CacheKey(), b.CacheKey())
}

// TestCanonicalIncludesAllFields ensures every field participates in the
// canonical form, empty string for unset.
func TestCanonicalIncludesAllFields(t *testing.T) {
	t.Parallel()

	var m map[string]string
	require.NoError(t, json.Unmarshal(Query{}.Canonical(), &m))
	require.Len(t, m, 9)
	for _, key := range []string{"first", "last", "username", "email", "phone", "address1", "city", "state", "zip"} {
		v, ok := m[key]
		require.True(t, ok, "missing key %q", key)
		require.Empty(t, v)
	}
}

func TestCacheKeyDiffersByField(t *testing.T) {
	t.Parallel()

	base := Query{Username: "alice123"}
	other := Query{Username: "alice124"}
	require.NotEqual(t, base.CacheKey(), other.CacheKey())
}

func TestFullName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		query Query
		want  string
	}{
		{name: "both", query: Query{First: "Ada", Last: "Lovelace"}, want: "Ada Lovelace"},
		{name: "first only", query: Query{First: " Ada "}, want: "Ada"},
		{name: "last only", query: Query{Last: "Lovelace"}, want: "Lovelace"},
		{name: "neither", query: Query{}, want: ""},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tc.want, tc.query.FullName())
		})
	}
}

func TestTokens(t *testing.T) {
	t.Parallel()

	q := Query{
		First:    "Ada",
		Last:     "Lovelace",
		Username: "ada",
		Email:    "ADA@example.com",
		Phone:    "(555) 010-2345",
		City:     "London",
	}
	toks := q.Tokens()
	require.Contains(t, toks, "ada lovelace")
	require.Contains(t, toks, "lovelace")
	require.Contains(t, toks, "ada@example.com")
	require.Contains(t, toks, "5550102345")
	require.Contains(t, toks, "london")

	// "ada" appears as first name and username but must be emitted once.
	count := 0
	for _, tok := range toks {
		if tok == "ada" {
			count++
		}
	}
	require.Equal(t, 1, count)
}

func TestTokensEmptyQuery(t *testing.T) {
	t.Parallel()
	require.Empty(t, Query{}.Tokens())
}

func TestDigitsOnly(t *testing.T) {
	t.Parallel()

	require.Equal(t, "5550102345", DigitsOnly("+1 (555) 010-2345")[1:])
	require.Equal(t, "", DigitsOnly("no digits"))
}

func TestNegativeHit(t *testing.T) {
	t.Parallel()

	h := Negative("GitHub", "https://github.com/nobody", "not found", 404)
	require.Equal(t, "GitHub: not found", h.Title)
	require.Equal(t, "not found (HTTP 404)", h.Snippet)
	require.Equal(t, false, h.Raw[RawExists])
	require.Equal(t, 404, h.Raw[RawCode])

	h = Negative("GitHub", "https://github.com/nobody", "error", 0)
	require.Equal(t, "error", h.Snippet)
	require.NotContains(t, h.Raw, RawCode)
}
