// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/ppi-curator/internal/fetch"
	"github.com/pdiddy/ppi-curator/internal/source"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Download STRING snapshot files into the data directory",
	Long: `Fetch downloads the protein info, detailed links, and cluster files of a
STRING release into --data-dir. Files that already exist are skipped, so an
interrupted fetch can be resumed. Use --species to fetch the files of a
single organism (NCBI taxon id) and --basic-links to also fetch the
three-column links file used by the filter command.`,
	RunE: runFetch,
}

func runFetch(cmd *cobra.Command, args []string) error {
	cfg := fetch.DefaultConfig()
	cfg.BaseURL, _ = cmd.Flags().GetString("base-url")
	cfg.Version, _ = cmd.Flags().GetString("release")
	cfg.Species, _ = cmd.Flags().GetString("species")
	cfg.Delay, _ = cmd.Flags().GetDuration("delay")
	cfg.MaxRetries, _ = cmd.Flags().GetInt("max-retries")
	timeout, _ := cmd.Flags().GetDuration("timeout")

	if basic, _ := cmd.Flags().GetBool("basic-links"); basic {
		cfg.Inputs = append(append([]source.Input{}, cfg.Inputs...), source.Links)
	}

	ctx, stop := signalContext()
	defer stop()

	client := &http.Client{Timeout: timeout}
	res, err := fetch.New(client, cfg, slog.Default()).Fetch(ctx, viper.GetString("data_dir"), cmd.OutOrStdout())
	if err != nil {
		return err
	}
	if res.HasFailures() {
		return fmt.Errorf("%d file(s) failed to download", res.Failed)
	}
	return nil
}

func init() {
	fetchCmd.Flags().String("base-url", fetch.DefaultBaseURL, "STRING download host")
	fetchCmd.Flags().String("release", fetch.DefaultVersion, "STRING release")
	fetchCmd.Flags().String("species", "", "NCBI taxon id to fetch (default: all species)")
	fetchCmd.Flags().Bool("basic-links", false, "also fetch the three-column protein.links file")
	fetchCmd.Flags().Duration("delay", time.Second, "pause between downloads")
	fetchCmd.Flags().Int("max-retries", 0, "retries on throttled responses (0 = default)")
	fetchCmd.Flags().Duration("timeout", 2*time.Hour, "per-download HTTP timeout")

	rootCmd.AddCommand(fetchCmd)
}
