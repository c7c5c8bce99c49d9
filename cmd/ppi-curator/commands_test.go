// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/ppi-curator/internal/store"
	"github.com/pdiddy/ppi-curator/pkg/types"
)

// resetFlags restores every flag of cmd and its subcommands to its default
// and clears the changed mark.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.PersistentFlags().VisitAll(reset)
	cmd.Flags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

// resetConfig clears viper and the command flags, then re-applies the flag
// bindings. It runs again when the test ends.
func resetConfig(t *testing.T) {
	t.Helper()
	restore := func() {
		viper.Reset()
		resetFlags(rootCmd)
		for _, b := range bound {
			viper.BindPFlag(b.key, b.flag)
		}
	}
	restore()
	t.Cleanup(restore)
}

// execute runs the CLI with args and returns its stdout and stderr.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetConfig(t)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append(args, "--log-level=error"))
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.Execute()
	return out.String(), err
}

// writeSnapshot writes protein info, both links files, and optionally the
// cluster files. 9606.X scores about 0.485: kept at the pipeline threshold
// (0.4), dropped at the standalone one (0.5).
func writeSnapshot(t *testing.T, withClusters bool) string {
	t.Helper()
	dir := t.TempDir()

	writeLines(t, filepath.Join(dir, "9606.protein.info.v12.0.txt"),
		"#string_protein_id\tpreferred_name\tprotein_size\tannotation",
		"9606.A\tARF5\t500\tADP-ribosylation factor kinase",
		"9606.B\tHSP70\t400\tHeat shock protein",
		"9606.C\tMAPK1\t360\tMitogen-activated protein kinase 1",
		"9606.X\t\t75\tHypothetical protein",
	)
	writeLines(t, filepath.Join(dir, "9606.protein.links.v12.0.txt"),
		"protein1 protein2 combined_score",
		"9606.A 9606.B 960",
		"9606.B 9606.C 800",
	)
	writeLines(t, filepath.Join(dir, "9606.protein.links.detailed.v12.0.txt"),
		"protein1 protein2 neighborhood fusion cooccurence coexpression experimental database textmining combined_score",
		"9606.A 9606.B 0 0 0 0 900 0 0 900",
		"9606.B 9606.C 0 0 0 120 800 0 300 800",
	)
	if withClusters {
		writeLines(t, filepath.Join(dir, "9606.clusters.info.v12.0.txt"),
			"cluster_id\tcluster_name\tcluster_description\tcluster_size",
			"CL:0\troot\tall\t3",
			"CL:1\tgtpases\tsmall GTPases\t2",
			"CL:2\tkinases\tkinases\t1",
		)
		writeLines(t, filepath.Join(dir, "9606.clusters.proteins.v12.0.txt"),
			"cluster_id\tprotein_id",
			"CL:1\t9606.A",
			"CL:1\t9606.B",
			"CL:2\t9606.C",
		)
		writeLines(t, filepath.Join(dir, "9606.clusters.tree.v12.0.txt"),
			"child_cluster_id\tparent_cluster_id\tdistance",
			"CL:1\tCL:0\t0.5",
			"CL:2\tCL:0\t0.5",
		)
	}
	return dir
}

func readJSON(t *testing.T, path string, v any) {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, v))
}

// --- score ---

func TestScoreCommand(t *testing.T) {
	for _, tt := range []struct {
		name          string
		args          []string
		wantThreshold float64
		wantRetained  int
	}{
		{"standalone default", nil, types.DefaultStandaloneQualityThreshold, 3},
		{"explicit threshold", []string{"--threshold", "0.4"}, 0.4, 4},
	} {
		t.Run(tt.name, func(t *testing.T) {
			dir := writeSnapshot(t, false)
			outDir := filepath.Join(dir, "out")

			args := append([]string{"score", "--data-dir", dir, "--output-dir", outDir}, tt.args...)
			out, err := execute(t, args...)
			require.NoError(t, err)
			assert.Contains(t, out, "Wrote "+store.ProteinsFile)

			var report scoreReport
			readJSON(t, filepath.Join(outDir, qualityReportFile), &report)
			assert.Equal(t, tt.wantThreshold, report.Quality.Threshold)
			assert.Equal(t, 4, report.Quality.Initial)
			assert.Equal(t, tt.wantRetained, report.Quality.Retained)

			rows := readLinesOf(t, filepath.Join(outDir, store.ProteinsFile))
			assert.Len(t, rows, tt.wantRetained+1)
		})
	}
}

func TestScoreDumpRules(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	out, err := execute(t, "score", "--dump-rules", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Rule tables written")
	assert.FileExists(t, path)
}

// --- filter ---

func TestFilterCommand(t *testing.T) {
	for _, tt := range []struct {
		name          string
		args          []string
		wantThreshold float64
		wantKept      int
	}{
		{"basic links default", nil, types.DefaultBasicConfidence, 1},
		{"detailed switches default", []string{"--detailed"}, types.DefaultDetailedConfidence, 2},
		{"detailed with explicit confidence", []string{"--detailed", "--confidence", "0.85"}, 0.85, 1},
		{"basic with explicit confidence", []string{"--confidence", "0.8"}, 0.8, 2},
	} {
		t.Run(tt.name, func(t *testing.T) {
			dir := writeSnapshot(t, false)
			outDir := filepath.Join(dir, "out")

			args := append([]string{"filter", "--data-dir", dir, "--output-dir", outDir}, tt.args...)
			_, err := execute(t, args...)
			require.NoError(t, err)

			var report filterReport
			readJSON(t, filepath.Join(outDir, interactionReportFile), &report)
			assert.Equal(t, tt.wantThreshold, report.Interactions.Threshold)
			assert.Equal(t, 2, report.Interactions.Raw)
			assert.Equal(t, tt.wantKept, report.Interactions.AfterProteins)
			assert.Equal(t, 4, report.Valid)

			rows := readLinesOf(t, filepath.Join(outDir, store.InteractionsFile))
			assert.Len(t, rows, tt.wantKept+1)
		})
	}
}

func TestFilterCommandRejectsNaN(t *testing.T) {
	dir := writeSnapshot(t, false)
	_, err := execute(t, "filter", "--data-dir", dir, "--output-dir", filepath.Join(dir, "out"), "--confidence", "NaN")
	assert.Error(t, err)
}

// --- clusters ---

func TestClustersCommand(t *testing.T) {
	for _, tt := range []struct {
		name       string
		args       []string
		wantMode   types.GroupingMode
		wantGroups []string
	}{
		{"hierarchical", []string{"--target-depth", "1"}, types.GroupingHierarchical,
			[]string{"expert_hierarchical_CL:1", "expert_hierarchical_CL:2"}},
		{"depth without clusters falls back to flat", nil, types.GroupingFlat,
			[]string{types.ExpertOthers}},
		{"flat", []string{"--grouping", "flat", "--min-cluster-size", "2"}, types.GroupingFlat,
			[]string{"expert_CL:1", types.ExpertOthers}},
	} {
		t.Run(tt.name, func(t *testing.T) {
			dir := writeSnapshot(t, true)
			outDir := filepath.Join(dir, "out")

			args := append([]string{"clusters", "--data-dir", dir, "--output-dir", outDir}, tt.args...)
			out, err := execute(t, args...)
			require.NoError(t, err)
			assert.Contains(t, out, "Expert groups:")

			groups, err := store.ReadGroupsJSON(filepath.Join(outDir, store.GroupsFile))
			require.NoError(t, err)
			var names []string
			for _, g := range groups {
				names = append(names, g.Name)
			}
			assert.ElementsMatch(t, tt.wantGroups, names)

			data, err := os.ReadFile(filepath.Join(outDir, clusterReportFile))
			require.NoError(t, err)
			var report clusterReport
			require.NoError(t, yaml.Unmarshal(data, &report))
			assert.Equal(t, tt.wantMode, report.Grouping.Mode)
			require.NotNil(t, report.Clusters)
			assert.Equal(t, 3, report.Clusters.TotalClusters)
			require.NotNil(t, report.Forest)
			assert.Equal(t, 1, report.Forest.Roots)
		})
	}
}

func TestClustersCommandWithoutClusterFiles(t *testing.T) {
	dir := writeSnapshot(t, false)
	_, err := execute(t, "clusters", "--data-dir", dir, "--output-dir", filepath.Join(dir, "out"))
	assert.ErrorContains(t, err, "no cluster files")
}

// --- export ---

func TestExportCommand(t *testing.T) {
	dir := writeSnapshot(t, false)
	dbPath := filepath.Join(dir, "runs.db")

	_, err := execute(t, "curate", "--data-dir", dir, "--output-dir", filepath.Join(dir, "first"), "--db", dbPath)
	require.NoError(t, err)

	exportDir := filepath.Join(dir, "exported")
	out, err := execute(t, "export", "--output-dir", exportDir, "--db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Exported run")
	for _, name := range []string{
		store.ProteinsFile, store.InteractionsFile, store.GroupsFile,
		store.StatisticsJSONFile, store.StatisticsYAMLFile,
	} {
		assert.FileExists(t, filepath.Join(exportDir, name))
	}

	first, err := os.ReadFile(filepath.Join(dir, "first", store.ProteinsFile))
	require.NoError(t, err)
	again, err := os.ReadFile(filepath.Join(exportDir, store.ProteinsFile))
	require.NoError(t, err)
	assert.Equal(t, string(first), string(again))

	out, err = execute(t, "export", "--list", "--db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, "1 runs")
}

func TestExportCommandMissingStore(t *testing.T) {
	_, err := execute(t, "export", "--db", filepath.Join(t.TempDir(), "absent.db"))
	assert.ErrorContains(t, err, "opening run store")
}

// readLinesOf returns the non-empty lines of path.
func readLinesOf(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var lines []string
	for _, l := range bytes.Split(data, []byte("\n")) {
		if len(bytes.TrimSpace(l)) > 0 {
			lines = append(lines, string(l))
		}
	}
	return lines
}
