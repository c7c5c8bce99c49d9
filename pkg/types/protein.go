// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"math"
	"sort"
)

// RawScale is the integer scale STRING uses for evidence and combined scores.
const RawScale = 1000

// UnknownSpecies is the species id assigned when the protein identifier has
// no numeric prefix.
const UnknownSpecies = -1

// QualityScores holds the sub-scores computed for a protein. Every field is
// in [0,1].
type QualityScores struct {
	Length     float64 `json:"length_score" yaml:"length_score"`
	Annotation float64 `json:"annotation_score" yaml:"annotation_score"`
	Name       float64 `json:"name_score" yaml:"name_score"`
	Species    float64 `json:"species_score" yaml:"species_score"`

	// Overall is the weighted sum of the four sub-scores.
	Overall float64 `json:"quality_score" yaml:"quality_score"`
}

// ProteinRecord is one row of a protein.info file. The parser fills the
// identity fields; the quality scorer attaches Scores once.
type ProteinRecord struct {
	// ID is the STRING identifier, e.g. "9606.ENSP00000000233". The part
	// before the first '.' is the NCBI taxonomy id.
	ID string `json:"protein_id" yaml:"protein_id"`

	Name string `json:"protein_name" yaml:"protein_name"`

	// Size is the sequence length in amino acids.
	Size int `json:"protein_size" yaml:"protein_size"`

	Annotation string `json:"annotation" yaml:"annotation"`

	// SpeciesID is parsed from the identifier prefix, or UnknownSpecies.
	SpeciesID int `json:"species_id" yaml:"species_id"`

	Scores QualityScores `json:"scores" yaml:"scores"`
}

// Channel identifies one of the seven STRING evidence channels.
type Channel int

const (
	ChannelNeighborhood Channel = iota
	ChannelFusion
	ChannelCooccurrence
	ChannelCoexpression
	ChannelExperimental
	ChannelDatabase
	ChannelTextmining

	NumChannels = 7
)

var channelNames = [NumChannels]string{
	"neighborhood",
	"fusion",
	"cooccurence",
	"coexpression",
	"experimental",
	"database",
	"textmining",
}

// String returns the column name used in the STRING detailed links header.
func (c Channel) String() string {
	if c < 0 || int(c) >= NumChannels {
		return "unknown"
	}
	return channelNames[c]
}

// Channels lists every evidence channel in file column order.
func Channels() []Channel {
	out := make([]Channel, NumChannels)
	for i := range out {
		out[i] = Channel(i)
	}
	return out
}

// InteractionRecord is one row of a protein.links file. Scores are
// normalized to [0,1]. Combined is the only score used for filtering.
type InteractionRecord struct {
	Protein1 string `json:"protein1" yaml:"protein1"`
	Protein2 string `json:"protein2" yaml:"protein2"`

	// Evidence holds the per-channel scores in Channel order. It is nil for
	// records read from the basic links file.
	Evidence []float64 `json:"evidence,omitempty" yaml:"evidence,omitempty"`

	Combined float64 `json:"combined_score" yaml:"combined_score"`
}

// Detailed reports whether the record carries per-channel evidence.
func (r InteractionRecord) Detailed() bool {
	return len(r.Evidence) == NumChannels
}

// Channel returns the normalized score of a single evidence channel, or 0
// for basic records.
func (r InteractionRecord) Channel(c Channel) float64 {
	if !r.Detailed() || c < 0 || int(c) >= NumChannels {
		return 0
	}
	return r.Evidence[c]
}

// Normalize converts a raw 0-1000 score to [0,1].
func Normalize(raw int) float64 {
	return float64(raw) / RawScale
}

// Raw converts a normalized score back to the 0-1000 integer scale.
func Raw(score float64) int {
	return int(math.Round(score * RawScale))
}

// IDSet is a set of protein or cluster identifiers.
type IDSet map[string]struct{}

// NewIDSet returns a set holding ids.
func NewIDSet(ids ...string) IDSet {
	s := make(IDSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Add inserts id.
func (s IDSet) Add(id string) { s[id] = struct{}{} }

// Has reports whether id is in the set.
func (s IDSet) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// Sorted returns the members in ascending order.
func (s IDSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
