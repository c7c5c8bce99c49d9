// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package metrics

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/ppi-curator/internal/connectivity"
	"github.com/pdiddy/ppi-curator/internal/filter"
	"github.com/pdiddy/ppi-curator/internal/hierarchy"
	"github.com/pdiddy/ppi-curator/internal/parse"
	"github.com/pdiddy/ppi-curator/internal/pipeline"
	"github.com/pdiddy/ppi-curator/internal/quality"
	"github.com/pdiddy/ppi-curator/internal/source"
	"github.com/pdiddy/ppi-curator/internal/stats"
	"github.com/pdiddy/ppi-curator/pkg/types"
)

func sampleStatistics() *pipeline.Statistics {
	return &pipeline.Statistics{
		Inputs: []pipeline.InputFile{
			{Input: source.ProteinInfo, File: "9606.protein.info.v12.0.txt", Found: true, Read: parse.ReadStats{Malformed: 3}},
			{Input: source.ClusterTree},
		},
		Quality: &quality.Stats{
			Initial: 10, Retained: 8, RetentionRate: 0.8,
			Scores: stats.Summary{Count: 10, Mean: 0.7, Percentiles: []stats.Percentile{{P: 50, Value: 0.72}}},
		},
		Interactions: &filter.Stats{Raw: 20, AfterConfidence: 12, AfterProteins: 9, OverallRetention: 0.45},
		Connectivity: &connectivity.Stats{Components: 3, LargestFraction: 0.75},
		Reduction:    &connectivity.ReduceStats{ProteinsAfter: 6, InteractionsAfter: 7},
		Grouping:     &hierarchy.GroupStats{Mode: types.GroupingFlat},
		ExpertGroups: &hierarchy.GroupSummary{Groups: 4},
		Degradations: []string{"tree missing"},
	}
}

func TestObserve(t *testing.T) {
	r := NewRecorder()
	r.Observe(sampleStatistics())

	assert.Equal(t, 8.0, testutil.ToFloat64(r.records.WithLabelValues(pipeline.StageQuality, "retained")))
	assert.Equal(t, 9.0, testutil.ToFloat64(r.records.WithLabelValues(pipeline.StageInteractions, "retained")))
	assert.Equal(t, 0.45, testutil.ToFloat64(r.retention.WithLabelValues(pipeline.StageInteractions)))
	assert.Equal(t, 3.0, testutil.ToFloat64(r.malformed.WithLabelValues(string(source.ProteinInfo))))
	assert.Equal(t, 0.72, testutil.ToFloat64(r.qualityScore.WithLabelValues("p50")))
	assert.Equal(t, 3.0, testutil.ToFloat64(r.components))
	assert.Equal(t, 4.0, testutil.ToFloat64(r.groups.WithLabelValues(string(types.GroupingFlat))))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.degradations))

	// Inputs that were not found get no malformed series.
	assert.Equal(t, 1, testutil.CollectAndCount(r.malformed))
}

func TestObservePartial(t *testing.T) {
	r := NewRecorder()
	r.Observe(&pipeline.Statistics{Quality: &quality.Stats{Initial: 5}})
	r.Observe(nil)

	assert.Equal(t, 2, testutil.CollectAndCount(r.records))
	assert.Equal(t, 0, testutil.CollectAndCount(r.groups))
}

func TestWriteStatistics(t *testing.T) {
	path := filepath.Join(t.TempDir(), "textfile", "ppi_curator.prom")
	require.NoError(t, WriteStatistics(path, sampleStatistics()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)
	assert.Contains(t, text, "# TYPE ppi_curator_records gauge")
	assert.Contains(t, text, `ppi_curator_records{stage="quality",state="initial"} 10`)
	assert.Contains(t, text, "ppi_curator_largest_component_fraction 0.75")
}
