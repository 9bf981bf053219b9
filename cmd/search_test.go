package cmd

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/osintnator/osintnator/internal/catalog"
	"github.com/osintnator/osintnator/internal/engine"
)

func TestQueryFlagsTrimFields(t *testing.T) {
	t.Parallel()

	qf := queryFlags{first: " Ada ", last: "Lovelace", phone: "555-0102"}
	q := qf.toQuery()
	require.Equal(t, "Ada", q.First)
	require.Equal(t, "Ada Lovelace", q.FullName())
	require.Equal(t, "555-0102", q.Phone)
}

func TestApplyFlagsKeepsConfigForUnsetFlags(t *testing.T) {
	t.Parallel()

	base := engine.Options{Workers: 8, Timeout: 12 * time.Second, Engine: "Bing", Sources: []string{"FamilyTreeNow"}}
	changed := map[string]bool{"workers": true}

	got := applyFlags(base, searchFlags{workers: 20, timeout: time.Second, engine: "Google"},
		func(name string) bool { return changed[name] })

	require.Equal(t, 20, got.Workers)
	require.Equal(t, 12*time.Second, got.Timeout)
	require.Equal(t, "Bing", got.Engine)
	require.Equal(t, []string{"FamilyTreeNow"}, got.Sources)
	require.False(t, got.BypassCache)
}

func TestApplyFlagsQuickUsername(t *testing.T) {
	t.Parallel()

	base := engine.Options{Sources: []string{"FamilyTreeNow", "WhoCallsMe"}}
	got := applyFlags(base, searchFlags{quickUsername: true}, func(string) bool { return false })

	require.Equal(t, []string{catalog.SourceUsernamePack}, got.Sources)
	require.True(t, got.BypassCache)
}

func TestApplyFlagsBypassCache(t *testing.T) {
	t.Parallel()

	got := applyFlags(engine.Options{}, searchFlags{bypassCache: true}, func(string) bool { return false })
	require.True(t, got.BypassCache)
}
