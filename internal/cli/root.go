// Package cli provides the command-line interface for covidframe.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

// Version information (set at build time).
var (
	Version   = "0.1.0"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

type configKey struct{}

type loggerKey struct{}

// NewRootCmd creates and returns the root command.
func NewRootCmd() *cobra.Command {
	var cfgFile string

	rootCmd := &cobra.Command{
		Use:   "covidframe",
		Short: "Fetch and reshape COVID-19 case tables",
		Long: `covidframe downloads the Johns Hopkins CSSE and New York Times COVID-19
case files, normalizes them into long or wide tables and derives daily
changes, rolling means, threshold-aligned day counts and top-region
selections from them.

Every command reads its input either from a provider (--source, --format,
--data-type, --region) or from a local CSV file (--input).`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "help" || cmd.Name() == "version" || cmd.Name() == "__complete" {
				return nil
			}

			cfg, err := LoadConfig(cfgFile, cmd.Root().PersistentFlags())
			if err != nil {
				return err
			}

			level := slog.LevelInfo
			if cfg.Verbose {
				level = slog.LevelDebug
			}
			logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
			if cfg.File != "" {
				logger.Debug("using config file", "path", cfg.File)
			}

			ctx := context.WithValue(cmd.Context(), configKey{}, cfg)
			ctx = context.WithValue(ctx, loggerKey{}, logger)
			cmd.SetContext(ctx)
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.SetVersionTemplate("{{.Name}} {{.Version}}\n")

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default: ./covidframe.yaml)")
	pf.String("source", "", "data provider (jhu|nyt)")
	pf.String("format", "", "table layout to fetch (long|wide)")
	pf.String("data-type", "", "data to fetch (all|cases|deaths|recovered)")
	pf.String("region", "", "JHU region (global|us)")
	pf.Bool("counties", false, "NYT county-level data")
	pf.Bool("update", true, "download fresh data; false reads the cache only")
	pf.String("cache-dir", "", "download cache directory")
	pf.Duration("timeout", 0, "HTTP timeout per download")
	pf.StringP("input", "i", "", "read a local CSV file instead of fetching")
	pf.String("input-layout", "", "layout of the --input file (long|wide)")
	pf.String("input-metric", "", "metric held by a wide --input file")
	pf.String("input-keys", "", "comma separated region key columns of the --input file")
	pf.StringP("output", "o", "", "output format (table|csv|json)")
	pf.Int("limit", 0, "rows shown in table output (0 shows all)")
	pf.BoolP("verbose", "v", false, "verbose logging")

	_ = rootCmd.RegisterFlagCompletionFunc("output", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{OutputTable, OutputCSV, OutputJSON}, cobra.ShellCompDirectiveNoFileComp
	})
	_ = rootCmd.RegisterFlagCompletionFunc("source", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"jhu", "nyt"}, cobra.ShellCompDirectiveNoFileComp
	})

	rootCmd.AddCommand(NewVersionCommand(Version))
	rootCmd.AddCommand(NewFetchCommand())
	rootCmd.AddCommand(NewWideCommand())
	rootCmd.AddCommand(NewLongCommand())
	rootCmd.AddCommand(NewDailyCommand())
	rootCmd.AddCommand(NewRollingCommand())
	rootCmd.AddCommand(NewBucketsCommand())
	rootCmd.AddCommand(NewSinceCommand())
	rootCmd.AddCommand(NewTopCommand())
	rootCmd.AddCommand(NewSelectCommand())
	rootCmd.AddCommand(NewPlotCommand())
	rootCmd.AddCommand(NewExportCommand())

	return rootCmd
}

// ExecuteContext runs the root command.
func ExecuteContext(ctx context.Context) error {
	rootCmd := NewRootCmd()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}

// GetConfig retrieves the config from the command context.
func GetConfig(ctx context.Context) *Config {
	if c, ok := ctx.Value(configKey{}).(*Config); ok {
		return c
	}
	return DefaultConfig()
}

// GetLogger retrieves the logger from the command context.
func GetLogger(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return l
	}
	return slog.New(slog.DiscardHandler)
}

// NewVersionCommand creates the version command.
func NewVersionCommand(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  `Display covidframe version and build information.`,
		Run: func(cmd *cobra.Command, _ []string) {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "covidframe v%s\n", version)
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "commit %s, built %s\n", GitCommit, BuildDate)
		},
	}
}
