// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package metrics exposes run statistics as Prometheus gauges and writes
// them in the node-exporter textfile format.
package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/pdiddy/ppi-curator/internal/pipeline"
)

const namespace = "ppi_curator"

// Recorder holds the gauges of one run in a private registry.
type Recorder struct {
	reg *prometheus.Registry

	records      *prometheus.GaugeVec
	retention    *prometheus.GaugeVec
	malformed    *prometheus.GaugeVec
	qualityScore *prometheus.GaugeVec
	components   prometheus.Gauge
	largest      prometheus.Gauge
	groups       *prometheus.GaugeVec
	degradations prometheus.Gauge
}

// NewRecorder registers every gauge on a fresh registry.
func NewRecorder() *Recorder {
	r := &Recorder{
		reg: prometheus.NewRegistry(),
		records: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "records",
			Help:      "Record counts at each point of the pipeline.",
		}, []string{"stage", "state"}),
		retention: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "retention_ratio",
			Help:      "Fraction of records kept by a stage.",
		}, []string{"stage"}),
		malformed: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "malformed_lines",
			Help:      "Lines skipped as malformed per input.",
		}, []string{"input"}),
		qualityScore: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "quality_score",
			Help:      "Distribution of the overall protein quality score.",
		}, []string{"stat"}),
		components: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "connected_components",
			Help:      "Connected components of the filtered interaction graph.",
		}),
		largest: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "largest_component_fraction",
			Help:      "Share of graph vertices in the largest component.",
		}),
		groups: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "expert_groups",
			Help:      "Expert groups produced, by grouping mode actually used.",
		}, []string{"mode"}),
		degradations: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "degradations",
			Help:      "Fallbacks taken during the run.",
		}),
	}
	r.reg.MustRegister(r.records, r.retention, r.malformed, r.qualityScore,
		r.components, r.largest, r.groups, r.degradations)
	return r
}

// Registry returns the registry the gauges live in.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.reg
}

// Observe sets the gauges from st. Sections that are nil leave their
// gauges unset.
func (r *Recorder) Observe(st *pipeline.Statistics) {
	if st == nil {
		return
	}
	for _, in := range st.Inputs {
		if in.Found {
			r.malformed.WithLabelValues(string(in.Input)).Set(float64(in.Read.Malformed))
		}
	}
	if q := st.Quality; q != nil {
		r.records.WithLabelValues(pipeline.StageQuality, "initial").Set(float64(q.Initial))
		r.records.WithLabelValues(pipeline.StageQuality, "retained").Set(float64(q.Retained))
		r.retention.WithLabelValues(pipeline.StageQuality).Set(q.RetentionRate)

		s := q.Scores
		r.qualityScore.WithLabelValues("mean").Set(s.Mean)
		r.qualityScore.WithLabelValues("std").Set(s.Std)
		r.qualityScore.WithLabelValues("min").Set(s.Min)
		r.qualityScore.WithLabelValues("max").Set(s.Max)
		for _, p := range s.Percentiles {
			r.qualityScore.WithLabelValues("p" + strconv.FormatFloat(p.P, 'f', -1, 64)).Set(p.Value)
		}
	}
	if f := st.Interactions; f != nil {
		r.records.WithLabelValues(pipeline.StageInteractions, "raw").Set(float64(f.Raw))
		r.records.WithLabelValues(pipeline.StageInteractions, "confident").Set(float64(f.AfterConfidence))
		r.records.WithLabelValues(pipeline.StageInteractions, "retained").Set(float64(f.AfterProteins))
		r.retention.WithLabelValues(pipeline.StageInteractions).Set(f.OverallRetention)
	}
	if c := st.Connectivity; c != nil {
		r.components.Set(float64(c.Components))
		r.largest.Set(c.LargestFraction)
	}
	if red := st.Reduction; red != nil {
		r.records.WithLabelValues(pipeline.StageConnectivity, "proteins").Set(float64(red.ProteinsAfter))
		r.records.WithLabelValues(pipeline.StageConnectivity, "interactions").Set(float64(red.InteractionsAfter))
	}
	if g := st.Grouping; g != nil && st.ExpertGroups != nil {
		r.groups.WithLabelValues(string(g.Mode)).Set(float64(st.ExpertGroups.Groups))
	}
	r.degradations.Set(float64(len(st.Degradations)))
}

// WriteFile writes the registry to path in the textfile collector format.
func (r *Recorder) WriteFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating metrics directory: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, r.reg); err != nil {
		return fmt.Errorf("writing metrics %s: %w", path, err)
	}
	return nil
}

// WriteStatistics records st and writes it to path.
func WriteStatistics(path string, st *pipeline.Statistics) error {
	r := NewRecorder()
	r.Observe(st)
	return r.WriteFile(path)
}
