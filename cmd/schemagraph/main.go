package main

import (
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/AaronLay10/schemagraph/internal/events"
)

type globalOptions struct {
	site      string
	settings  string
	types     string
	postgres  bool
	siteID    string
	logLevel  string
	logFormat string
}

func newRootCommand() *cobra.Command {
	opts := &globalOptions{}

	cmd := &cobra.Command{
		Use:           "schemagraph",
		Short:         "Build schema.org JSON-LD graphs for site pages",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.CompletionOptions.DisableDefaultCmd = true
	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.site, "site", "site.yaml", "site content file")
	flags.StringVar(&opts.settings, "settings", "settings.yaml", "settings file")
	flags.StringVar(&opts.types, "types", "", "custom type definitions file")
	flags.BoolVar(&opts.postgres, "postgres", false, "read settings and custom types from Postgres and persist events there")
	flags.StringVar(&opts.siteID, "site-id", "default", "site id used for Postgres rows")
	flags.StringVar(&opts.logLevel, "log-level", "info", "log level: debug, info, warn, error")
	flags.StringVar(&opts.logFormat, "log-format", "json", "log format: json or console")

	cmd.AddCommand(
		newRenderCommand(opts),
		newServeCommand(opts),
		newValidateCommand(opts),
		newVersionCommand(),
	)
	return cmd
}

// newLogger builds the process logger. Logs go to stderr so rendered
// documents on stdout stay clean.
func newLogger(level, format string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, err
	}

	cfg := zap.NewProductionConfig()
	if format == "console" {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	return cfg.Build()
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		events.Emit("error", "system.error", err.Error(), nil)
		os.Stderr.WriteString("Error: " + err.Error() + "\n")
		os.Exit(1)
	}
}
