// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the ppi-curator CLI.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/ppi-curator/internal/store"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the ppi-curator CLI.
var rootCmd = &cobra.Command{
	Use:   "ppi-curator",
	Short: "Curate STRING protein interaction snapshots into training datasets",
	Long: `ppi-curator turns a STRING snapshot (protein info, interaction links, and
cluster files) into a curated dataset: quality-scored proteins, high-confidence
interactions restricted to the largest connected component, and expert groups
derived from the cluster hierarchy.

The curate subcommand runs every stage. score, filter, and clusters run a
single stage on their own; export re-writes the artifacts of a stored run.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger, err := newLogger(viper.GetString("log_level"), viper.GetString("log_format"))
		if err != nil {
			return err
		}
		slog.SetDefault(logger)
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "config file (default: ./ppi-curator.yaml or ~/.config/ppi-curator/ppi-curator.yaml)")
	pf.String("log-level", "info", "log level: debug, info, warn, error")
	pf.String("log-format", "text", "log format: text or json")
	pf.String("data-dir", "data", "directory holding the STRING snapshot files")
	pf.String("output-dir", filepath.Join("data", "filtered"), "directory receiving exported artifacts")
	pf.String("db", filepath.Join("data", store.DefaultDBFile), "SQLite run store (empty disables persistence)")

	bindFlags(pf, []flagKey{
		{"log_level", "log-level"},
		{"log_format", "log-format"},
		{"data_dir", "data-dir"},
		{"output_dir", "output-dir"},
		{"db_path", "db"},
	})
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("ppi-curator")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "ppi-curator"))
		}
	}

	viper.SetEnvPrefix("PPI_CURATOR")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// newLogger builds the process logger. Logs go to stderr so stdout carries
// only status lines and results.
func newLogger(level, format string) (*slog.Logger, error) {
	var lvl slog.Level
	if level == "" {
		level = "info"
	}
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	opts := &slog.HandlerOptions{Level: lvl}
	switch format {
	case "text", "":
		return slog.New(slog.NewTextHandler(os.Stderr, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(os.Stderr, opts)), nil
	default:
		return nil, fmt.Errorf("unsupported log format %q: use text or json", format)
	}
}

// signalContext returns a context canceled on interrupt.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
