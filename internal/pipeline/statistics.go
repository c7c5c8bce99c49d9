// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"errors"
	"fmt"

	"github.com/pdiddy/ppi-curator/internal/connectivity"
	"github.com/pdiddy/ppi-curator/internal/filter"
	"github.com/pdiddy/ppi-curator/internal/hierarchy"
	"github.com/pdiddy/ppi-curator/internal/parse"
	"github.com/pdiddy/ppi-curator/internal/quality"
	"github.com/pdiddy/ppi-curator/internal/source"
)

// InputFile records how one snapshot file was read.
type InputFile struct {
	Input source.Input `json:"input" yaml:"input"`

	// File is the base name of the file read; empty when it was not found.
	File  string          `json:"file,omitempty" yaml:"file,omitempty"`
	Found bool            `json:"found" yaml:"found"`
	Read  parse.ReadStats `json:"read" yaml:"read"`
}

// Summary holds the end-to-end counts of a run.
type Summary struct {
	InitialProteins      int     `json:"initial_proteins" yaml:"initial_proteins"`
	FinalProteins        int     `json:"final_proteins" yaml:"final_proteins"`
	ProteinRetention     float64 `json:"protein_retention_rate" yaml:"protein_retention_rate"`
	InitialInteractions  int     `json:"initial_interactions" yaml:"initial_interactions"`
	FinalInteractions    int     `json:"final_interactions" yaml:"final_interactions"`
	InteractionRetention float64 `json:"interaction_retention_rate" yaml:"interaction_retention_rate"`
	ExpertGroups         int     `json:"expert_groups" yaml:"expert_groups"`
	MalformedLines       int     `json:"malformed_lines" yaml:"malformed_lines"`
}

// Statistics accumulates the report of a run. Each stage fills its own
// section exactly once; a section is never rewritten. Nil sections belong to
// stages that did not run. No timestamps or run ids are kept so identical
// runs serialize identically.
type Statistics struct {
	Inputs       []InputFile                `json:"inputs" yaml:"inputs"`
	Quality      *quality.Stats             `json:"quality,omitempty" yaml:"quality,omitempty"`
	Interactions *filter.Stats              `json:"interactions,omitempty" yaml:"interactions,omitempty"`
	Connectivity *connectivity.Stats        `json:"connectivity,omitempty" yaml:"connectivity,omitempty"`
	Reduction    *connectivity.ReduceStats  `json:"reduction,omitempty" yaml:"reduction,omitempty"`
	Clusters     *hierarchy.ClusterStats    `json:"clusters,omitempty" yaml:"clusters,omitempty"`
	Forest       *hierarchy.ForestStats     `json:"forest,omitempty" yaml:"forest,omitempty"`
	Grouping     *hierarchy.GroupStats      `json:"grouping,omitempty" yaml:"grouping,omitempty"`
	Validation   *hierarchy.ValidationStats `json:"validation,omitempty" yaml:"validation,omitempty"`
	ExpertGroups *hierarchy.GroupSummary    `json:"expert_groups,omitempty" yaml:"expert_groups,omitempty"`
	Degradations []string                   `json:"degradations,omitempty" yaml:"degradations,omitempty"`
	Summary      *Summary                   `json:"summary,omitempty" yaml:"summary,omitempty"`
}

// ErrStatsSealed is returned when a stage tries to rewrite its section.
var ErrStatsSealed = errors.New("statistics section already recorded")

func setOnce[T any](slot **T, section string, v T) error {
	if *slot != nil {
		return fmt.Errorf("%s: %w", section, ErrStatsSealed)
	}
	*slot = &v
	return nil
}

func (s *Statistics) addInput(f InputFile) {
	s.Inputs = append(s.Inputs, f)
}

func (s *Statistics) degrade(reason string) {
	s.Degradations = append(s.Degradations, reason)
}

// MalformedLines totals the malformed lines of every input read.
func (s *Statistics) MalformedLines() int {
	n := 0
	for _, in := range s.Inputs {
		n += in.Read.Malformed
	}
	return n
}

// ErrEmptyResult is matched by every EmptyResultError.
var ErrEmptyResult = errors.New("empty result")

// EmptyResultError reports a stage that left nothing for the stages after
// it. Stats holds everything recorded up to and including that stage.
type EmptyResultError struct {
	Stage  string
	Reason string
	Stats  *Statistics
}

func (e *EmptyResultError) Error() string {
	return fmt.Sprintf("%s stage produced no records: %s", e.Stage, e.Reason)
}

func (e *EmptyResultError) Unwrap() error { return ErrEmptyResult }
