// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/pdiddy/ppi-curator/internal/quality"
	"github.com/pdiddy/ppi-curator/pkg/types"
)

// flagKey ties a config key to the flag that overrides it.
type flagKey struct {
	key  string
	flag string
}

// boundFlag is one applied binding.
type boundFlag struct {
	key  string
	flag *pflag.Flag
}

// bound lists every binding made by bindFlags.
var bound []boundFlag

func bindFlags(fs *pflag.FlagSet, keys []flagKey) {
	for _, k := range keys {
		f := fs.Lookup(k.flag)
		if err := viper.BindPFlag(k.key, f); err != nil {
			panic(fmt.Sprintf("binding flag %s: %v", k.flag, err))
		}
		bound = append(bound, boundFlag{key: k.key, flag: f})
	}
}

// setIf copies the value under key into dst when the key was set by a
// flag, the environment, or the config file.
func setIf[T any](dst *T, key string, get func(string) T) {
	if viper.IsSet(key) {
		*dst = get(key)
	}
}

// applyRules loads a YAML rule file into cfg. An empty path is a no-op.
func applyRules(cfg *types.QualityConfig, path string) error {
	if path == "" {
		return nil
	}
	rf, err := quality.ReadRuleFile(path)
	if err != nil {
		return err
	}
	rf.Apply(cfg)
	return nil
}

// curateConfig assembles the run configuration from defaults, the config
// file, the environment, and flags, in increasing precedence.
func curateConfig() (types.CurateConfig, error) {
	cfg := types.DefaultCurateConfig()

	setIf(&cfg.DataDir, "data_dir", viper.GetString)
	setIf(&cfg.OutputDir, "output_dir", viper.GetString)
	cfg.DBPath = viper.GetString("db_path")
	setIf(&cfg.MetricsFile, "metrics_file", viper.GetString)
	setIf(&cfg.ProteinBatchSize, "protein_batch_size", viper.GetInt)
	setIf(&cfg.InteractionBatchSize, "interaction_batch_size", viper.GetInt)

	setIf(&cfg.Inputs.ProteinInfo, "inputs.protein_info", viper.GetString)
	setIf(&cfg.Inputs.Interactions, "inputs.interactions", viper.GetString)
	setIf(&cfg.Inputs.ClusterInfo, "inputs.cluster_info", viper.GetString)
	setIf(&cfg.Inputs.ClusterMembership, "inputs.cluster_membership", viper.GetString)
	setIf(&cfg.Inputs.ClusterTree, "inputs.cluster_tree", viper.GetString)

	setIf(&cfg.Quality.Threshold, "quality.threshold", viper.GetFloat64)
	if err := applyRules(&cfg.Quality, viper.GetString("quality.rules_file")); err != nil {
		return cfg, err
	}

	if viper.GetBool("filter.basic_links") {
		cfg.Filter = types.FilterConfig{ConfidenceThreshold: types.DefaultBasicConfidence}
	}
	setIf(&cfg.Filter.ConfidenceThreshold, "filter.confidence", viper.GetFloat64)

	var mode string
	setIf(&mode, "grouping.mode", viper.GetString)
	if mode != "" {
		cfg.Grouping.Mode = types.GroupingMode(mode)
	}
	setIf(&cfg.Grouping.MinClusterSize, "grouping.min_cluster_size", viper.GetInt)
	setIf(&cfg.Grouping.MaxExperts, "grouping.max_experts", viper.GetInt)
	setIf(&cfg.Grouping.TargetDepth, "grouping.target_depth", viper.GetInt)
	setIf(&cfg.Grouping.Seed, "grouping.seed", viper.GetUint64)

	if cfg.ProteinBatchSize <= 0 || cfg.InteractionBatchSize <= 0 {
		return cfg, fmt.Errorf("batch sizes must be positive (proteins %d, interactions %d)",
			cfg.ProteinBatchSize, cfg.InteractionBatchSize)
	}
	return cfg, nil
}
