// Package cmd defines and implements the CLI commands for the osintnator
// executable.
package cmd

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/osintnator/osintnator/internal/catalog"
	"github.com/osintnator/osintnator/internal/engine"
	"github.com/osintnator/osintnator/internal/progress"
	"github.com/osintnator/osintnator/internal/query"
)

// queryFlags collects the identity fragment flags for the search command.
type queryFlags struct {
	first, last, username, email, phone string
	address1, city, state, zip          string
}

func (f queryFlags) toQuery() query.Query {
	return query.Query{
		First:    strings.TrimSpace(f.first),
		Last:     strings.TrimSpace(f.last),
		Username: strings.TrimSpace(f.username),
		Email:    strings.TrimSpace(f.email),
		Phone:    strings.TrimSpace(f.phone),
		Address1: strings.TrimSpace(f.address1),
		City:     strings.TrimSpace(f.city),
		State:    strings.TrimSpace(f.state),
		Zip:      strings.TrimSpace(f.zip),
	}
}

// searchFlags carries the run-shaping flags.
type searchFlags struct {
	sources       []string
	workers       int
	timeout       time.Duration
	engine        string
	bypassCache   bool
	quickUsername bool
}

// applyFlags layers explicit flag values over the config-derived options.
// The changed set comes from cobra so config values survive unset flags.
func applyFlags(opts engine.Options, f searchFlags, changed func(string) bool) engine.Options {
	if changed("sources") {
		opts.Sources = f.sources
	}
	if changed("workers") {
		opts.Workers = f.workers
	}
	if changed("timeout") {
		opts.Timeout = f.timeout
	}
	if changed("engine") {
		opts.Engine = f.engine
	}
	if f.bypassCache {
		opts.BypassCache = true
	}
	if f.quickUsername {
		// The quick panel is a point-in-time availability check; a cached
		// answer defeats its purpose.
		opts.Sources = []string{catalog.SourceUsernamePack}
		opts.BypassCache = true
	}
	return opts
}

func newSearchCmd() *cobra.Command {
	var (
		qf queryFlags
		sf searchFlags
	)

	cmd := &cobra.Command{
		Use:   "search",
		Short: "Run an identity lookup across the source catalog",
		Long: `Runs the full lookup pipeline for the given identity fragments:
dataset prefilter, concurrent scrapers with link fallbacks, and report
persistence. Results stream to the terminal as sources complete.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSearch(cmd, qf, sf)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&qf.first, "first", "", "first name")
	flags.StringVar(&qf.last, "last", "", "last name")
	flags.StringVarP(&qf.username, "username", "u", "", "username or handle")
	flags.StringVar(&qf.email, "email", "", "email address")
	flags.StringVar(&qf.phone, "phone", "", "phone number")
	flags.StringVar(&qf.address1, "address1", "", "street address")
	flags.StringVar(&qf.city, "city", "", "city")
	flags.StringVar(&qf.state, "state", "", "state or province")
	flags.StringVar(&qf.zip, "zip", "", "postal code")

	flags.StringSliceVar(&sf.sources, "sources", nil, "source labels to query (default: priority panel)")
	flags.IntVar(&sf.workers, "workers", 0, "concurrent source workers")
	flags.DurationVar(&sf.timeout, "timeout", 0, "per-source time budget")
	flags.StringVar(&sf.engine, "engine", "", "search engine for dork links")
	flags.BoolVar(&sf.bypassCache, "bypass-cache", false, "ignore and replace any cached result")
	flags.BoolVar(&sf.quickUsername, "quick-username", false, "run only the username panel, uncached")

	return cmd
}

func runSearch(cmd *cobra.Command, qf queryFlags, sf searchFlags) error {
	appInstance, err := resolveApp(cmd.Context())
	if err != nil {
		return err
	}

	q := qf.toQuery()
	if len(q.Tokens()) == 0 {
		return fmt.Errorf("at least one query field is required (try --first/--last or --username)")
	}
	if sf.quickUsername && q.Username == "" {
		return fmt.Errorf("--quick-username requires --username")
	}

	opts := applyFlags(appInstance.Options(), sf, cmd.Flags().Changed)

	out := cmd.OutOrStdout()
	appInstance.Collector().OnEvent = func(evt progress.Event) {
		printEvent(out, evt)
	}

	hits, summary, err := appInstance.Engine().Run(cmd.Context(), q, opts)
	if err != nil {
		return fmt.Errorf("run lookup: %w", err)
	}

	if summary.FromCache {
		fmt.Fprintf(out, "\n%d result(s) served from cache (use --bypass-cache to refresh)\n", len(hits))
	} else {
		fmt.Fprintf(out, "\n%d result(s), %d/%d source(s) completed\n", len(hits), summary.Completed, summary.Total)
	}
	for _, p := range summary.ReportPaths {
		fmt.Fprintf(out, "report: %s\n", p)
	}

	appInstance.Logger().Debug("search finished",
		zap.Int("hits", len(hits)), zap.Bool("from_cache", summary.FromCache))
	return nil
}

// printEvent renders one progress event for the terminal stream.
func printEvent(out io.Writer, evt progress.Event) {
	switch evt.Kind {
	case progress.KindHit:
		if evt.Hit != nil {
			fmt.Fprintf(out, "[%s] %s\n        %s\n", evt.Hit.Site, evt.Hit.Title, evt.Hit.URL)
		}
	case progress.KindNote:
		fmt.Fprintf(out, "-- %s\n", evt.Note)
	case progress.KindTaskDone:
		fmt.Fprintf(out, "-- %s done (%d/%d)\n", evt.Site, evt.Completed, evt.Total)
	}
}

func newSourcesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sources",
		Short: "List every known source by category",
		// The catalog is static, so this command does not need the runtime.
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			for _, cat := range catalog.Categories {
				fmt.Fprintf(out, "%s:\n", cat.Name)
				for _, s := range cat.Sources {
					marker := " "
					for _, p := range catalog.PrioritySources {
						if p == s {
							marker = "*"
							break
						}
					}
					fmt.Fprintf(out, "  %s %s\n", marker, s)
				}
			}
			fmt.Fprintln(out, "\n* dispatched first on every run")
			return nil
		},
	}
}
