package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/osintnator/osintnator/internal/app"
	"github.com/osintnator/osintnator/internal/config"
	"github.com/osintnator/osintnator/internal/engine"
	"github.com/osintnator/osintnator/internal/progress/sinks"
)

var (
	cfgFile string
	verbose bool
)

// appKeyType is the key for storing the App in the context.
type appKeyType string

const appKey appKeyType = "app"

// App defines the runtime slice commands use. It is an interface so tests
// can inject a stub factory.
type App interface {
	Close()
	Logger() *zap.Logger
	Engine() *engine.Engine
	Collector() *sinks.Collector
	Options() engine.Options
}

// newApp is the application factory. It is a variable so tests can replace
// it with a stub.
var newApp = func(cfg config.Config) (App, error) {
	return app.New(cfg)
}

// newRootCmd creates and configures the root command.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "osintnator",
		Short: "A person-lookup aggregator over public record sites and open datasets.",
		Long: `osintnator fans an identity query out across people-search sites, a
username availability panel, breach data, and public datasets like the
Wayback Machine and certificate transparency logs, then aggregates every
lead into cached, exportable reports.`,

		// Runs after flags are parsed but before the subcommand's RunE, so
		// every subcommand finds a fully wired runtime in its context.
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if cmd.Flags().Changed("verbose") {
				cfg.Logging.Verbose = verbose
			}

			appInstance, err := newApp(cfg)
			if err != nil {
				return fmt.Errorf("initialize services: %w", err)
			}

			ctx := context.WithValue(cmd.Context(), appKey, appInstance)
			cmd.SetContext(ctx)
			return nil
		},

		PersistentPostRun: func(cmd *cobra.Command, _ []string) {
			if appInstance, ok := cmd.Context().Value(appKey).(App); ok && appInstance != nil {
				appInstance.Close()
			}
		},
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default searches ./config.yaml)")
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	cmd.AddCommand(newSearchCmd())
	cmd.AddCommand(newSourcesCmd())

	return cmd
}

func resolveApp(ctx context.Context) (App, error) {
	appInstance, ok := ctx.Value(appKey).(App)
	if !ok || appInstance == nil {
		return nil, fmt.Errorf("application services not initialized")
	}
	return appInstance, nil
}

// Execute is the main entry point.
func Execute() error {
	return newRootCmd().Execute()
}
