package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

const appName = "marketpulse"

type globalFlags struct {
	configPath string
	envFile    string
	logLevel   string
	jsonLogs   bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		log.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}
	root := &cobra.Command{
		Use:           appName,
		Short:         "Market trend and sector strength reports for Taiwan and US equities",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return setupLogging(cmd.ErrOrStderr(), flags.logLevel, flags.jsonLogs)
		},
	}

	defaultConfig := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		defaultConfig = v
	}
	pf := root.PersistentFlags()
	pf.StringVar(&flags.configPath, "config", defaultConfig, "Path to the YAML config file")
	pf.StringVar(&flags.envFile, "env-file", ".env", "Path to a .env file loaded before the config")
	pf.StringVar(&flags.logLevel, "log-level", "info", "Log level (debug|info|warn|error)")
	pf.BoolVar(&flags.jsonLogs, "json-logs", false, "Emit JSON logs instead of console output")

	root.AddCommand(
		newRunCmd(flags),
		newPrintCmd(flags),
		newScheduleCmd(flags),
		newPredictCmd(flags),
		newWatchlistCmd(flags),
	)
	return root
}

// setupLogging configures the global logger and makes it the default for
// contexts that carry none.
func setupLogging(w io.Writer, level string, jsonLogs bool) error {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("parse log level: %w", err)
	}
	zerolog.SetGlobalLevel(lvl)
	zerolog.TimeFieldFormat = time.RFC3339
	if jsonLogs {
		log.Logger = zerolog.New(w).With().Timestamp().Logger()
	} else {
		log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}).With().Timestamp().Logger()
	}
	zerolog.DefaultContextLogger = &log.Logger
	return nil
}
