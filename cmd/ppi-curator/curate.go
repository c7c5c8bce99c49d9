// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pdiddy/ppi-curator/internal/metrics"
	"github.com/pdiddy/ppi-curator/internal/pipeline"
	"github.com/pdiddy/ppi-curator/internal/store"
	"github.com/pdiddy/ppi-curator/pkg/types"
)

var curateCmd = &cobra.Command{
	Use:   "curate",
	Short: "Run the full curation pipeline over a STRING snapshot",
	Long: `Curate scores every protein, filters interactions by confidence and by the
retained protein set, reduces the network to its largest connected component,
and derives expert groups from the cluster hierarchy.

Artifacts (CSV tables, expert_groups.json, statistics.json/.yaml) are written
to the output directory, the run is stored in the SQLite run store, and
gauges are written to --metrics-file when set. Missing cluster files degrade
grouping to flat or random mode instead of failing the run.`,
	RunE: runCurate,
}

func runCurate(cmd *cobra.Command, args []string) error {
	cfg, err := curateConfig()
	if err != nil {
		return err
	}
	ctx, stop := signalContext()
	defer stop()
	return curate(ctx, cfg, slog.Default(), cmd.OutOrStdout())
}

func curate(ctx context.Context, cfg types.CurateConfig, logger *slog.Logger, w io.Writer) error {
	p, err := pipeline.New(cfg, logger, w)
	if err != nil {
		return err
	}

	res, err := p.Run(ctx)
	if err != nil {
		var ee *pipeline.EmptyResultError
		if errors.As(err, &ee) {
			path := filepath.Join(cfg.OutputDir, store.StatisticsJSONFile)
			if werr := writePartialStatistics(cfg.OutputDir, ee.Stats); werr != nil {
				logger.Error("writing partial statistics", "error", werr)
			} else {
				fmt.Fprintf(w, "Partial statistics written to %s\n", path)
			}
		}
		return err
	}

	paths, err := store.WriteArtifacts(cfg.OutputDir, res)
	if err != nil {
		return err
	}
	fmt.Fprintln(w, "\nArtifacts:")
	for _, path := range paths {
		fmt.Fprintf(w, "  %s\n", path)
	}

	if cfg.DBPath != "" {
		s, err := store.Open(cfg.DBPath)
		if err != nil {
			return err
		}
		defer s.Close()
		id, err := s.SaveRun(ctx, cfg, res)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "Stored run %s in %s\n", id, cfg.DBPath)
		logger.Info("run stored", "run_id", id, "db", cfg.DBPath)
	}

	if cfg.MetricsFile != "" {
		if err := metrics.WriteStatistics(cfg.MetricsFile, res.Stats); err != nil {
			return err
		}
		fmt.Fprintf(w, "Metrics written to %s\n", cfg.MetricsFile)
	}
	return nil
}

func writePartialStatistics(dir string, st *pipeline.Statistics) error {
	if st == nil {
		return nil
	}
	if err := ensureDir(dir); err != nil {
		return err
	}
	return store.WriteJSON(filepath.Join(dir, store.StatisticsJSONFile), st)
}

func init() {
	f := curateCmd.Flags()
	f.String("metrics-file", "", "write Prometheus textfile metrics to this path")
	f.Int("protein-batch-size", types.DefaultProteinBatchSize, "protein records per batch")
	f.Int("interaction-batch-size", types.DefaultInteractionBatchSize, "interaction records per batch")

	f.String("protein-info", "", "protein info file (default: newest *protein.info.* in --data-dir)")
	f.String("links", "", "interaction links file (default: newest detailed or basic links in --data-dir)")
	f.String("cluster-info", "", "cluster info file")
	f.String("cluster-proteins", "", "cluster membership file")
	f.String("cluster-tree", "", "cluster tree file")

	f.Float64("quality-threshold", types.DefaultPipelineQualityThreshold, "minimum protein quality score")
	f.String("rules", "", "YAML file overriding the annotation and species rule tables")

	f.Float64("confidence", types.DefaultDetailedConfidence, "minimum combined score in [0,1] (basic links default 0.95)")
	f.Bool("basic-links", false, "read the three-column protein.links file instead of the detailed one")

	f.String("grouping", string(types.GroupingHierarchical), "grouping mode: hierarchical, flat, random")
	f.Int("min-cluster-size", 100, "minimum members of a flat-mode cluster")
	f.Int("max-experts", 50, "maximum flat-mode clusters and number of random groups")
	f.Int("target-depth", 2, "cluster tree depth used for hierarchical groups")
	f.Uint64("seed", 42, "seed of the random grouping fallback")

	bindFlags(curateCmd.Flags(), []flagKey{
		{"metrics_file", "metrics-file"},
		{"protein_batch_size", "protein-batch-size"},
		{"interaction_batch_size", "interaction-batch-size"},
		{"inputs.protein_info", "protein-info"},
		{"inputs.interactions", "links"},
		{"inputs.cluster_info", "cluster-info"},
		{"inputs.cluster_membership", "cluster-proteins"},
		{"inputs.cluster_tree", "cluster-tree"},
		{"quality.threshold", "quality-threshold"},
		{"quality.rules_file", "rules"},
		{"filter.confidence", "confidence"},
		{"filter.basic_links", "basic-links"},
		{"grouping.mode", "grouping"},
		{"grouping.min_cluster_size", "min-cluster-size"},
		{"grouping.max_experts", "max-experts"},
		{"grouping.target_depth", "target-depth"},
		{"grouping.seed", "seed"},
	})

	rootCmd.AddCommand(curateCmd)
}
