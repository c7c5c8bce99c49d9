// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package quality

import (
	"sort"

	"github.com/pdiddy/ppi-curator/internal/stats"
	"github.com/pdiddy/ppi-curator/pkg/types"
)

// Category buckets an overall score for reporting.
type Category string

const (
	CategoryHigh    Category = "high"
	CategoryMedium  Category = "medium"
	CategoryLow     Category = "low"
	CategoryVeryLow Category = "very_low"
)

// Categorize returns the bucket of an overall score: high >= 0.8,
// medium >= 0.6, low >= 0.4, very low below that.
func Categorize(overall float64) Category {
	switch {
	case overall >= 0.8:
		return CategoryHigh
	case overall >= 0.6:
		return CategoryMedium
	case overall >= 0.4:
		return CategoryLow
	default:
		return CategoryVeryLow
	}
}

// CategoryCounts counts scored proteins per category.
type CategoryCounts struct {
	High    int `json:"high" yaml:"high"`
	Medium  int `json:"medium" yaml:"medium"`
	Low     int `json:"low" yaml:"low"`
	VeryLow int `json:"very_low" yaml:"very_low"`
}

func (c *CategoryCounts) add(cat Category) {
	switch cat {
	case CategoryHigh:
		c.High++
	case CategoryMedium:
		c.Medium++
	case CategoryLow:
		c.Low++
	default:
		c.VeryLow++
	}
}

// SubScoreMeans holds the mean of each sub-score over all scored proteins.
type SubScoreMeans struct {
	Length     float64 `json:"length" yaml:"length"`
	Annotation float64 `json:"annotation" yaml:"annotation"`
	Name       float64 `json:"name" yaml:"name"`
	Species    float64 `json:"species" yaml:"species"`
}

// SpeciesQuality summarizes the scores of one species.
type SpeciesQuality struct {
	SpeciesID  int     `json:"species_id" yaml:"species_id"`
	Count      int     `json:"count" yaml:"count"`
	MeanScore  float64 `json:"mean_score" yaml:"mean_score"`
	StdScore   float64 `json:"std_score" yaml:"std_score"`
	MinScore   float64 `json:"min_score" yaml:"min_score"`
	MaxScore   float64 `json:"max_score" yaml:"max_score"`
	MeanLength float64 `json:"mean_length" yaml:"mean_length"`
}

// TopSpeciesLimit caps the species listed in Stats.TopSpecies.
const TopSpeciesLimit = 10

// Stats describes one quality filtering pass.
type Stats struct {
	Threshold     float64 `json:"threshold" yaml:"threshold"`
	Initial       int     `json:"initial_proteins" yaml:"initial_proteins"`
	Retained      int     `json:"retained_proteins" yaml:"retained_proteins"`
	RetentionRate float64 `json:"retention_rate" yaml:"retention_rate"`

	// DuplicateIDs counts records dropped because their protein id was
	// already scored; the first occurrence wins.
	DuplicateIDs int `json:"duplicate_ids" yaml:"duplicate_ids"`

	// Scores summarizes the overall score of every scored protein;
	// RetainedScores only those kept.
	Scores         stats.Summary `json:"score_distribution" yaml:"score_distribution"`
	RetainedScores stats.Summary `json:"retained_score_distribution" yaml:"retained_score_distribution"`

	SubScores  SubScoreMeans    `json:"sub_score_means" yaml:"sub_score_means"`
	Categories CategoryCounts   `json:"categories" yaml:"categories"`
	TopSpecies []SpeciesQuality `json:"top_species,omitempty" yaml:"top_species,omitempty"`
}

type speciesAcc struct {
	scores    []float64
	lengthSum int
}

// Filter scores protein batches and keeps those meeting the threshold,
// accumulating statistics across batches. Only the overall scores and the
// ids seen are retained between batches, not the records.
type Filter struct {
	scorer   *Scorer
	seen     types.IDSet
	dups     int
	all      []float64
	retained []float64
	sub      SubScoreMeans
	cats     CategoryCounts
	species  map[int]*speciesAcc
}

// NewFilter returns a Filter using scorer and its threshold.
func NewFilter(scorer *Scorer) *Filter {
	return &Filter{scorer: scorer, seen: types.NewIDSet(), species: make(map[int]*speciesAcc)}
}

// Add scores batch and returns the retained records with Scores attached.
// A protein id seen in an earlier record, in this batch or a previous one,
// is skipped and counted as a duplicate. The input slice is not modified.
func (f *Filter) Add(batch []types.ProteinRecord) []types.ProteinRecord {
	var kept []types.ProteinRecord
	for _, p := range batch {
		if f.seen.Has(p.ID) {
			f.dups++
			continue
		}
		f.seen.Add(p.ID)
		p.Scores = f.scorer.Score(p)
		q := p.Scores

		f.all = append(f.all, q.Overall)
		f.sub.Length += q.Length
		f.sub.Annotation += q.Annotation
		f.sub.Name += q.Name
		f.sub.Species += q.Species
		f.cats.add(Categorize(q.Overall))

		acc := f.species[p.SpeciesID]
		if acc == nil {
			acc = &speciesAcc{}
			f.species[p.SpeciesID] = acc
		}
		acc.scores = append(acc.scores, q.Overall)
		acc.lengthSum += p.Size

		if f.scorer.Retain(q.Overall) {
			f.retained = append(f.retained, q.Overall)
			kept = append(kept, p)
		}
	}
	return kept
}

// Stats returns the statistics of everything added so far.
func (f *Filter) Stats() Stats {
	n := len(f.all)
	st := Stats{
		Threshold:      f.scorer.Threshold(),
		Initial:        n,
		Retained:       len(f.retained),
		RetentionRate:  stats.Rate(len(f.retained), n),
		DuplicateIDs:   f.dups,
		Scores:         stats.Summarize(f.all, stats.QualityPercentiles...),
		RetainedScores: stats.Summarize(f.retained),
		Categories:     f.cats,
		TopSpecies:     topSpecies(f.species, TopSpeciesLimit),
	}
	if n > 0 {
		st.SubScores = SubScoreMeans{
			Length:     f.sub.Length / float64(n),
			Annotation: f.sub.Annotation / float64(n),
			Name:       f.sub.Name / float64(n),
			Species:    f.sub.Species / float64(n),
		}
	}
	return st
}

// topSpecies ranks species by protein count, ties by ascending id.
func topSpecies(species map[int]*speciesAcc, limit int) []SpeciesQuality {
	out := make([]SpeciesQuality, 0, len(species))
	for id, acc := range species {
		s := stats.Summarize(acc.scores)
		out = append(out, SpeciesQuality{
			SpeciesID:  id,
			Count:      s.Count,
			MeanScore:  s.Mean,
			StdScore:   s.Std,
			MinScore:   s.Min,
			MaxScore:   s.Max,
			MeanLength: float64(acc.lengthSum) / float64(s.Count),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].SpeciesID < out[j].SpeciesID
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Apply scores and filters records in one pass.
func Apply(scorer *Scorer, records []types.ProteinRecord) ([]types.ProteinRecord, Stats) {
	f := NewFilter(scorer)
	kept := f.Add(records)
	return kept, f.Stats()
}
