// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/ppi-curator/internal/hierarchy"
	"github.com/pdiddy/ppi-curator/internal/pipeline"
	"github.com/pdiddy/ppi-curator/internal/store"
	"github.com/pdiddy/ppi-curator/pkg/types"
)

// clusterReportFile is written by the clusters command.
const clusterReportFile = "cluster_statistics.yaml"

var clustersCmd = &cobra.Command{
	Use:   "clusters",
	Short: "Analyze the cluster hierarchy and derive expert groups",
	Long: `Clusters reads the cluster info, membership, and tree files, reports cluster
and forest statistics, and derives expert groups over every clustered protein.
Groups are written to expert_groups.json and the statistics to
cluster_statistics.yaml in the output directory.`,
	RunE: runClusters,
}

// clusterReport is the YAML document written by the clusters command.
type clusterReport struct {
	Missing  []string                `yaml:"missing,omitempty"`
	Clusters *hierarchy.ClusterStats `yaml:"clusters,omitempty"`
	Forest   *hierarchy.ForestStats  `yaml:"forest,omitempty"`
	Grouping hierarchy.GroupStats    `yaml:"grouping"`
}

func runClusters(cmd *cobra.Command, args []string) error {
	mode, _ := cmd.Flags().GetString("grouping")
	cfg := types.DefaultGroupingConfig()
	cfg.Mode = types.GroupingMode(mode)
	cfg.TargetDepth, _ = cmd.Flags().GetInt("target-depth")
	cfg.MinClusterSize, _ = cmd.Flags().GetInt("min-cluster-size")
	cfg.MaxExperts, _ = cmd.Flags().GetInt("max-experts")
	cfg.Seed, _ = cmd.Flags().GetUint64("seed")

	var inputs types.InputPaths
	inputs.ClusterInfo, _ = cmd.Flags().GetString("cluster-info")
	inputs.ClusterMembership, _ = cmd.Flags().GetString("cluster-proteins")
	inputs.ClusterTree, _ = cmd.Flags().GetString("cluster-tree")

	cd, err := pipeline.LoadClusters(viper.GetString("data_dir"), inputs)
	if err != nil {
		return err
	}
	if cd.Membership == nil && cd.Forest == nil && cd.Info == nil {
		return errors.New("no cluster files found in the data directory")
	}

	report := clusterReport{Missing: cd.Missing}
	if cd.Membership != nil || cd.Info != nil {
		cs := hierarchy.ClusterStatistics(cd.Info, cd.Membership)
		report.Clusters = &cs
	}
	if cd.Forest != nil {
		fs := cd.Forest.Stats()
		report.Forest = &fs
	}

	var universe []string
	if cd.Membership != nil {
		universe = cd.Membership.Proteins()
	}
	groups, gs, err := hierarchy.ExpertGroups(cfg, hierarchy.GroupInput{
		Membership: cd.Membership,
		Forest:     cd.Forest,
		Universe:   universe,
	})
	if err != nil {
		return err
	}
	report.Grouping = gs

	outDir := viper.GetString("output_dir")
	if err := ensureDir(outDir); err != nil {
		return err
	}
	if err := store.WriteGroupsJSON(filepath.Join(outDir, store.GroupsFile), groups); err != nil {
		return err
	}
	if err := store.WriteYAML(filepath.Join(outDir, clusterReportFile), report); err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	for _, m := range cd.Missing {
		fmt.Fprintf(w, "missing: %s\n", m)
	}
	if cs := report.Clusters; cs != nil {
		fmt.Fprintf(w, "Clusters: %s total, %s with proteins, %s proteins mapped (%s mappings)\n",
			humanize.Comma(int64(cs.TotalClusters)), humanize.Comma(int64(cs.ClustersWithProteins)),
			humanize.Comma(int64(cs.ProteinsWithClusters)), humanize.Comma(int64(cs.Mappings)))
	}
	if fs := report.Forest; fs != nil {
		fmt.Fprintf(w, "Forest: %s nodes, %d roots, %s leaves, max depth %d, %d unreachable\n",
			humanize.Comma(int64(fs.Nodes)), fs.Roots, humanize.Comma(int64(fs.Leaves)), fs.MaxDepth, fs.Unreachable)
	}
	for _, d := range gs.Degradations {
		fmt.Fprintf(w, "degraded: %s\n", d)
	}
	fmt.Fprintf(w, "Expert groups: %d (%s mode), %s members\n",
		gs.Summary.Groups, gs.Mode, humanize.Comma(int64(gs.Summary.Members)))
	fmt.Fprintf(w, "\nWrote %s and %s to %s\n", store.GroupsFile, clusterReportFile, outDir)
	return nil
}

func init() {
	clustersCmd.Flags().String("grouping", string(types.GroupingHierarchical), "grouping mode: hierarchical, flat, random")
	clustersCmd.Flags().Int("target-depth", 2, "cluster tree depth used for hierarchical groups")
	clustersCmd.Flags().Int("min-cluster-size", 100, "minimum members of a flat-mode cluster")
	clustersCmd.Flags().Int("max-experts", 50, "maximum flat-mode clusters and number of random groups")
	clustersCmd.Flags().Uint64("seed", 42, "seed of the random grouping fallback")
	clustersCmd.Flags().String("cluster-info", "", "cluster info file")
	clustersCmd.Flags().String("cluster-proteins", "", "cluster membership file")
	clustersCmd.Flags().String("cluster-tree", "", "cluster tree file")

	rootCmd.AddCommand(clustersCmd)
}
