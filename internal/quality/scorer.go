// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package quality scores proteins on sequence length, annotation text, name
// shape, and species, and filters them against a retention threshold.
package quality

import (
	"fmt"
	"math"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/pdiddy/ppi-curator/pkg/types"
)

type rule struct {
	keyword string
	delta   float64
}

// Scorer computes quality scores under one QualityConfig. It holds no
// mutable state and is safe for concurrent use.
type Scorer struct {
	cfg        types.QualityConfig
	rules      []rule
	geneSymbol *regexp.Regexp
	accession  *regexp.Regexp
}

// NewScorer validates cfg and compiles its name patterns.
func NewScorer(cfg types.QualityConfig) (*Scorer, error) {
	if !(cfg.Threshold >= 0 && cfg.Threshold <= 1) {
		return nil, fmt.Errorf("quality threshold %v outside [0,1]", cfg.Threshold)
	}
	l := cfg.Length
	if l.Min < 0 || l.Min > l.OptimalMin || l.OptimalMin > l.OptimalMax || l.OptimalMax > l.Max {
		return nil, fmt.Errorf("length limits must satisfy 0 <= min <= optimal_min <= optimal_max <= max, got %d/%d/%d/%d",
			l.Min, l.OptimalMin, l.OptimalMax, l.Max)
	}
	w := cfg.Weights
	if w.Length < 0 || w.Annotation < 0 || w.Name < 0 || w.Species < 0 {
		return nil, fmt.Errorf("quality weights must be non-negative")
	}
	if sum := w.Length + w.Annotation + w.Name + w.Species; math.Abs(sum-1) > 1e-9 {
		return nil, fmt.Errorf("quality weights sum to %v, want 1", sum)
	}

	s := &Scorer{cfg: cfg}
	for _, r := range cfg.AnnotationRules {
		if r.Keyword == "" {
			continue
		}
		s.rules = append(s.rules, rule{keyword: strings.ToLower(r.Keyword), delta: r.Delta})
	}

	var err error
	if cfg.GeneSymbolPattern != "" {
		if s.geneSymbol, err = regexp.Compile(cfg.GeneSymbolPattern); err != nil {
			return nil, fmt.Errorf("compiling gene symbol pattern: %w", err)
		}
	}
	if cfg.AccessionPattern != "" {
		if s.accession, err = regexp.Compile(cfg.AccessionPattern); err != nil {
			return nil, fmt.Errorf("compiling accession pattern: %w", err)
		}
	}
	return s, nil
}

// Config returns the configuration the scorer was built with.
func (s *Scorer) Config() types.QualityConfig { return s.cfg }

// Threshold returns the retention threshold.
func (s *Scorer) Threshold() float64 { return s.cfg.Threshold }

func clamp(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

// LengthScore is 0 outside [Min, Max], 1 inside [OptimalMin, OptimalMax],
// and ramps linearly from 0.5 at the hard limit to 1 at the optimal limit.
func (s *Scorer) LengthScore(length int) float64 {
	l := s.cfg.Length
	switch {
	case length < l.Min || length > l.Max:
		return 0
	case length >= l.OptimalMin && length <= l.OptimalMax:
		return 1
	case length < l.OptimalMin:
		return 0.5 + 0.5*float64(length-l.Min)/float64(l.OptimalMin-l.Min)
	default:
		return 0.5 + 0.5*float64(l.Max-length)/float64(l.Max-l.OptimalMax)
	}
}

// AnnotationScore starts from the base score and applies every matching
// keyword rule plus the first matching long-annotation bonus. The bonus
// counts the characters of annotation as given, surrounding whitespace
// included. A blank annotation scores EmptyAnnotationScore with no further
// adjustment.
func (s *Scorer) AnnotationScore(annotation string) float64 {
	if strings.TrimSpace(annotation) == "" {
		return s.cfg.EmptyAnnotationScore
	}

	lower := strings.ToLower(annotation)
	score := s.cfg.AnnotationBase
	for _, r := range s.rules {
		if strings.Contains(lower, r.keyword) {
			score += r.delta
		}
	}

	n := utf8.RuneCountInString(annotation)
	for _, b := range s.cfg.LongAnnotationBonuses {
		if n > b.MinChars {
			score += b.Bonus
			break
		}
	}
	return clamp(score)
}

// NameScore rewards compact gene symbols and penalizes accession-style
// names. An empty name scores EmptyNameScore.
func (s *Scorer) NameScore(name string) float64 {
	name = strings.TrimSpace(name)
	if name == "" {
		return s.cfg.EmptyNameScore
	}

	lower := strings.ToLower(name)
	score := s.cfg.NameBase
	if s.geneSymbol != nil && s.geneSymbol.MatchString(lower) {
		score += s.cfg.GeneSymbolBonus
	}
	if s.accession != nil && s.accession.MatchString(lower) {
		score += s.cfg.AccessionPenalty
	}
	return clamp(score)
}

// SpeciesScore looks speciesID up in the model-organism table.
func (s *Scorer) SpeciesScore(speciesID int) float64 {
	if v, ok := s.cfg.SpeciesScores[speciesID]; ok {
		return v
	}
	return s.cfg.DefaultSpeciesScore
}

// Score computes all sub-scores of p and their weighted sum.
func (s *Scorer) Score(p types.ProteinRecord) types.QualityScores {
	q := types.QualityScores{
		Length:     s.LengthScore(p.Size),
		Annotation: s.AnnotationScore(p.Annotation),
		Name:       s.NameScore(p.Name),
		Species:    s.SpeciesScore(p.SpeciesID),
	}
	w := s.cfg.Weights
	q.Overall = clamp(w.Length*q.Length + w.Annotation*q.Annotation + w.Name*q.Name + w.Species*q.Species)
	return q
}

// Retain reports whether an overall score meets the threshold.
func (s *Scorer) Retain(overall float64) bool {
	return overall >= s.cfg.Threshold
}
