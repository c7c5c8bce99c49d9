// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package filter keeps interactions whose combined score meets a confidence
// threshold and whose endpoints are both in the quality-filtered protein set.
// Pair order is preserved as read: (A,B) and (B,A) are distinct records.
package filter

import (
	"fmt"

	"github.com/pdiddy/ppi-curator/internal/stats"
	"github.com/pdiddy/ppi-curator/pkg/types"
)

// Stats describes one interaction filtering pass.
type Stats struct {
	Threshold    float64 `json:"confidence_threshold" yaml:"confidence_threshold"`
	RawThreshold int     `json:"raw_threshold" yaml:"raw_threshold"`

	Raw             int `json:"raw_interactions" yaml:"raw_interactions"`
	AfterConfidence int `json:"after_confidence_filter" yaml:"after_confidence_filter"`
	AfterProteins   int `json:"after_protein_filter" yaml:"after_protein_filter"`

	// RejectedUnknownProtein counts confident interactions dropped because an
	// endpoint is not in the valid protein set.
	RejectedUnknownProtein int `json:"rejected_unknown_protein" yaml:"rejected_unknown_protein"`

	ConfidenceRetention float64 `json:"confidence_retention_rate" yaml:"confidence_retention_rate"`
	ProteinRetention    float64 `json:"protein_retention_rate" yaml:"protein_retention_rate"`
	OverallRetention    float64 `json:"overall_retention_rate" yaml:"overall_retention_rate"`
}

// Filter accumulates retained interactions across batches.
type Filter struct {
	valid  types.IDSet
	minRaw int
	st     Stats
	kept   []types.InteractionRecord
}

// New returns a Filter for the valid protein set and a confidence threshold
// in [0,1]. The threshold is compared on the raw 0-1000 scale.
func New(valid types.IDSet, threshold float64) (*Filter, error) {
	if !(threshold >= 0 && threshold <= 1) {
		return nil, fmt.Errorf("confidence threshold %v outside [0,1]", threshold)
	}
	if valid == nil {
		return nil, fmt.Errorf("valid protein set is nil")
	}
	minRaw := types.Raw(threshold)
	return &Filter{
		valid:  valid,
		minRaw: minRaw,
		st:     Stats{Threshold: threshold, RawThreshold: minRaw},
	}, nil
}

// Confident reports whether rec meets the confidence threshold.
func (f *Filter) Confident(rec types.InteractionRecord) bool {
	return types.Raw(rec.Combined) >= f.minRaw
}

// Add filters one batch and returns how many of its records were kept.
func (f *Filter) Add(batch []types.InteractionRecord) int {
	n := 0
	for _, rec := range batch {
		f.st.Raw++
		if !f.Confident(rec) {
			continue
		}
		f.st.AfterConfidence++
		if !f.valid.Has(rec.Protein1) || !f.valid.Has(rec.Protein2) {
			continue
		}
		f.st.AfterProteins++
		f.kept = append(f.kept, rec)
		n++
	}
	return n
}

// Result returns the retained interactions in input order and the stats.
func (f *Filter) Result() ([]types.InteractionRecord, Stats) {
	st := f.st
	st.RejectedUnknownProtein = st.AfterConfidence - st.AfterProteins
	st.ConfidenceRetention = stats.Rate(st.AfterConfidence, st.Raw)
	st.ProteinRetention = stats.Rate(st.AfterProteins, st.AfterConfidence)
	st.OverallRetention = stats.Rate(st.AfterProteins, st.Raw)
	return f.kept, st
}

// Apply filters records in one pass.
func Apply(valid types.IDSet, threshold float64, records []types.InteractionRecord) ([]types.InteractionRecord, Stats, error) {
	f, err := New(valid, threshold)
	if err != nil {
		return nil, Stats{}, err
	}
	f.Add(records)
	kept, st := f.Result()
	return kept, st, nil
}
