// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/ppi-curator/internal/pipeline"
	"github.com/pdiddy/ppi-curator/internal/store"
	"github.com/pdiddy/ppi-curator/pkg/types"
)

// --- test helpers ---

func writeLines(t *testing.T, path string, lines ...string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644))
}

// testSetup writes a three-protein snapshot without cluster files and
// returns a config that stores runs and metrics under the temp dir.
func testSetup(t *testing.T) types.CurateConfig {
	t.Helper()
	dir := t.TempDir()

	writeLines(t, filepath.Join(dir, "9606.protein.info.v12.0.txt"),
		"#string_protein_id\tpreferred_name\tprotein_size\tannotation",
		"9606.A\tARF5\t500\tADP-ribosylation factor kinase",
		"9606.B\tHSP70\t400\tHeat shock protein",
		"9606.C\tMAPK1\t360\tMitogen-activated protein kinase 1",
	)
	writeLines(t, filepath.Join(dir, "9606.protein.links.detailed.v12.0.txt"),
		"protein1 protein2 neighborhood fusion cooccurence coexpression experimental database textmining combined_score",
		"9606.A 9606.B 0 0 0 0 900 0 0 900",
		"9606.B 9606.C 0 0 0 120 800 0 300 800",
	)

	cfg := types.DefaultCurateConfig()
	cfg.DataDir = dir
	cfg.OutputDir = filepath.Join(dir, "filtered")
	cfg.DBPath = filepath.Join(dir, store.DefaultDBFile)
	cfg.MetricsFile = filepath.Join(dir, "metrics", "ppi_curator.prom")
	return cfg
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
}

// --- logging ---

func TestNewLogger(t *testing.T) {
	for _, tt := range []struct {
		level, format string
		wantErr       bool
	}{
		{"info", "text", false},
		{"debug", "json", false},
		{"", "", false},
		{"WARN", "text", false},
		{"loud", "text", true},
		{"info", "xml", true},
	} {
		_, err := newLogger(tt.level, tt.format)
		if tt.wantErr {
			assert.Error(t, err, "%s/%s", tt.level, tt.format)
		} else {
			assert.NoError(t, err, "%s/%s", tt.level, tt.format)
		}
	}
}

// --- configuration ---

func TestCurateConfigOverrides(t *testing.T) {
	resetConfig(t)

	rules := filepath.Join(t.TempDir(), "rules.yaml")
	writeLines(t, rules,
		"annotation_rules:",
		"  - keyword: chaperone",
		"    delta: 0.3",
	)

	viper.Set("data_dir", "/snapshots/v12")
	viper.Set("filter.basic_links", true)
	viper.Set("quality.threshold", 0.6)
	viper.Set("quality.rules_file", rules)
	viper.Set("grouping.mode", "flat")
	viper.Set("grouping.seed", 7)

	cfg, err := curateConfig()
	require.NoError(t, err)
	assert.Equal(t, "/snapshots/v12", cfg.DataDir)
	assert.Equal(t, types.DefaultCurateConfig().OutputDir, cfg.OutputDir)
	assert.False(t, cfg.Filter.Detailed)
	assert.Equal(t, types.DefaultBasicConfidence, cfg.Filter.ConfidenceThreshold)
	assert.Equal(t, 0.6, cfg.Quality.Threshold)
	assert.Equal(t, []types.KeywordRule{{Keyword: "chaperone", Delta: 0.3}}, cfg.Quality.AnnotationRules)
	assert.Equal(t, types.GroupingFlat, cfg.Grouping.Mode)
	assert.Equal(t, uint64(7), cfg.Grouping.Seed)
	assert.Equal(t, filepath.Join("data", store.DefaultDBFile), cfg.DBPath)
}

func TestCurateConfigExplicitConfidence(t *testing.T) {
	resetConfig(t)

	viper.Set("filter.basic_links", true)
	viper.Set("filter.confidence", 0.9)

	cfg, err := curateConfig()
	require.NoError(t, err)
	assert.Equal(t, 0.9, cfg.Filter.ConfidenceThreshold)
}

func TestCurateConfigRejectsBatchSize(t *testing.T) {
	resetConfig(t)

	viper.Set("protein_batch_size", 0)
	_, err := curateConfig()
	assert.Error(t, err)
}

// --- curate ---

func TestCurate(t *testing.T) {
	cfg := testSetup(t)
	var out bytes.Buffer
	require.NoError(t, curate(context.Background(), cfg, discardLogger(), &out))

	for _, name := range []string{
		store.ProteinsFile, store.InteractionsFile, store.GroupsFile,
		store.StatisticsJSONFile, store.StatisticsYAMLFile,
	} {
		assert.FileExists(t, filepath.Join(cfg.OutputDir, name))
	}
	assert.FileExists(t, cfg.MetricsFile)
	assert.Contains(t, out.String(), "Run summary:")
	assert.Contains(t, out.String(), "Stored run")

	s, err := store.Open(cfg.DBPath)
	require.NoError(t, err)
	defer s.Close()
	latest, err := s.LatestRun(context.Background())
	require.NoError(t, err)
	res, err := s.LoadRun(context.Background(), latest.ID)
	require.NoError(t, err)
	assert.Len(t, res.Proteins, 3)
	assert.Len(t, res.Interactions, 2)
	assert.Equal(t, types.GroupingRandom, res.Stats.Grouping.Mode)
}

func TestCurateEmptyWritesPartialStatistics(t *testing.T) {
	cfg := testSetup(t)
	cfg.Quality.Threshold = 1

	var out bytes.Buffer
	err := curate(context.Background(), cfg, discardLogger(), &out)
	require.ErrorIs(t, err, pipeline.ErrEmptyResult)
	assert.FileExists(t, filepath.Join(cfg.OutputDir, store.StatisticsJSONFile))
	assert.NoFileExists(t, filepath.Join(cfg.OutputDir, store.ProteinsFile))
	assert.NoFileExists(t, cfg.DBPath)
}
