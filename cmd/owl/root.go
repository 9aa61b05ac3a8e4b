package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/leofalp/owlgebra/internal/config"
	"github.com/leofalp/owlgebra/providers/observability"
	"github.com/leofalp/owlgebra/providers/observability/slogobs"
	"github.com/leofalp/owlgebra/providers/prover"
)

// app carries the state shared by all subcommands. It is filled in by the
// root command's PersistentPreRunE.
type app struct {
	flags rootFlags

	config   config.Config
	observer *slogobs.Observer
	client   *prover.Client
	logFile  *os.File
}

type rootFlags struct {
	apiURL    string
	envFile   string
	logLevel  string
	logFormat string
	logFile   string
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "owl",
		Short: "Parse Lean theorems and drive the owlgebra proving backend",
		Long: `owl extracts the name, hypotheses and goal of a Lean theorem declaration
and submits it to the owlgebra proving backend, then follows the proof job.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.close()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.flags.apiURL, "api-url", "", "backend base URL (overrides OWLGEBRA_API_URL)")
	flags.StringVar(&a.flags.envFile, "env-file", config.DefaultEnvFile, "dotenv file to load")
	flags.StringVar(&a.flags.logLevel, "log-level", "", "log level: debug, info, warn, error (default from OWLGEBRA_LOG_LEVEL)")
	flags.StringVar(&a.flags.logFormat, "log-format", "", "log format: compact or json (default from OWLGEBRA_LOG_FORMAT)")
	flags.StringVar(&a.flags.logFile, "log-file", "", "also append JSON logs to this file")

	root.AddCommand(
		newParseCmd(a),
		newSubmitCmd(a),
		newTasksCmd(a),
		newStatusCmd(a),
		newWatchCmd(a),
		newLogsCmd(a),
		newOptionsCmd(a),
	)
	return root
}

// setup loads the configuration, then builds the logger and the client.
func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.flags.envFile)
	if err != nil {
		return err
	}
	if a.flags.apiURL != "" {
		cfg.APIURL = a.flags.apiURL
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("--api-url: %w", err)
		}
	}
	a.config = cfg

	// Read after config.Load so values from the env file apply.
	level := slogobs.GetLogLevelFromEnv()
	if a.flags.logLevel != "" {
		level = slogobs.ParseLogLevel(a.flags.logLevel)
	}
	opts := []slogobs.Option{
		slogobs.WithLevel(level),
		slogobs.WithOutput(cmd.ErrOrStderr()),
	}
	if a.flags.logFormat != "" {
		opts = append(opts, slogobs.WithFormat(slogobs.ParseFormat(a.flags.logFormat)))
	}
	if a.flags.logFile != "" {
		file, err := os.OpenFile(a.flags.logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		a.logFile = file
		opts = append(opts, slogobs.WithHandlers(slog.NewJSONHandler(file, &slog.HandlerOptions{Level: level})))
	}

	a.observer = slogobs.New(opts...)
	slog.SetDefault(a.observer.Logger())

	a.client = prover.NewClient().
		WithBaseURL(cfg.APIURL).
		WithAPIKey(cfg.APIKey).
		WithObserver(a.observer)

	slog.Debug("Configuration loaded", "api_url", cfg.APIURL, "poll_interval", cfg.PollInterval)
	return nil
}

func (a *app) close() error {
	if a.observer != nil {
		if requests := a.observer.CounterValue(observability.MetricRequests); requests > 0 {
			latency := a.observer.HistogramValue(observability.MetricRequestSeconds)
			slog.Debug("Backend usage",
				"requests", requests,
				"errors", a.observer.CounterValue(observability.MetricRequestErrors),
				"mean_seconds", latency.Mean(),
				"max_seconds", latency.Max,
			)
		}
	}
	if a.logFile == nil {
		return nil
	}
	err := a.logFile.Close()
	a.logFile = nil
	return err
}
