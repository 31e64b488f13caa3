// Package main provides the semprov binary entry point.
// Semprov turns dealer stock-book records into a provenance ledger of
// Linked Art documents and resolves which sale records describe the same
// object.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/c360studio/semprov/config"
)

const (
	Version   = "0.1.0"
	BuildTime = "dev"
	appName   = "semprov"
)

func main() {
	// Add panic recovery
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// globalFlags are shared by every subcommand.
type globalFlags struct {
	configPath string
	logLevel   string
}

func rootCmd() *cobra.Command {
	flags := &globalFlags{}

	cmd := &cobra.Command{
		Use:   appName,
		Short: "Provenance ledger builder",
		Long: `Semprov reads normalized dealer stock-book records and writes a
provenance ledger as Linked Art JSON-LD documents.

It provides:
- ingest: build the ledger, resolve post-sale citations and persist state
- rewrite: point every exported document at canonical object URIs
- graph dot: dump the resolved post-sale components for inspection
- config init: write the default user config`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "", "Config file path (YAML)")
	cmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "Log level (debug, info, warn, error)")

	cmd.AddCommand(ingestCmd(flags))
	cmd.AddCommand(rewriteCmd(flags))
	cmd.AddCommand(graphCmd(flags))
	cmd.AddCommand(configCmd())

	// Version command
	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s version %s (build: %s)\n", appName, Version, BuildTime)
		},
	})

	return cmd
}

// setup loads the configuration and installs the default logger.
func setup(flags *globalFlags) (*config.Config, *slog.Logger, error) {
	cfg, err := config.NewLoader(slog.Default()).Load(flags.configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	if flags.logLevel != "" {
		cfg.Log.Level = flags.logLevel
	}
	logger := newLogger(cfg.Log)
	slog.SetDefault(logger)
	return cfg, logger, nil
}

func newLogger(lc config.LogConfig) *slog.Logger {
	level := slog.LevelInfo
	switch strings.ToLower(lc.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	opts := &slog.HandlerOptions{Level: level}
	if lc.Format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}
