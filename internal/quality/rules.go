// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package quality

import (
	"fmt"
	"os"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/ppi-curator/pkg/types"
)

// RuleFile is the on-disk form of the tunable scoring tables. Sections left
// out of the file keep their configured values.
type RuleFile struct {
	AnnotationRules       []types.KeywordRule `yaml:"annotation_rules,omitempty"`
	LongAnnotationBonuses []types.LengthBonus `yaml:"long_annotation_bonuses,omitempty"`
	SpeciesScores         map[int]float64     `yaml:"species_scores,omitempty"`
	DefaultSpeciesScore   *float64            `yaml:"default_species_score,omitempty"`
}

// ReadRuleFile loads a rule file from path.
func ReadRuleFile(path string) (RuleFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return RuleFile{}, fmt.Errorf("reading rule file: %w", err)
	}
	var rf RuleFile
	if err := yaml.Unmarshal(data, &rf); err != nil {
		return RuleFile{}, fmt.Errorf("parsing rule file %s: %w", path, err)
	}
	for i, r := range rf.AnnotationRules {
		if r.Keyword == "" {
			return RuleFile{}, fmt.Errorf("rule file %s: annotation rule %d has no keyword", path, i)
		}
	}
	return rf, nil
}

// Apply overrides the matching sections of cfg.
func (rf RuleFile) Apply(cfg *types.QualityConfig) {
	if len(rf.AnnotationRules) > 0 {
		cfg.AnnotationRules = rf.AnnotationRules
	}
	if len(rf.LongAnnotationBonuses) > 0 {
		cfg.LongAnnotationBonuses = rf.LongAnnotationBonuses
	}
	if len(rf.SpeciesScores) > 0 {
		cfg.SpeciesScores = rf.SpeciesScores
	}
	if rf.DefaultSpeciesScore != nil {
		cfg.DefaultSpeciesScore = *rf.DefaultSpeciesScore
	}
}

// WriteRuleFile saves the scoring tables of cfg to path so they can be
// edited and loaded back with ReadRuleFile.
func WriteRuleFile(path string, cfg types.QualityConfig) error {
	def := cfg.DefaultSpeciesScore
	rf := RuleFile{
		AnnotationRules:       cfg.AnnotationRules,
		LongAnnotationBonuses: cfg.LongAnnotationBonuses,
		SpeciesScores:         cfg.SpeciesScores,
		DefaultSpeciesScore:   &def,
	}
	data, err := yaml.Marshal(&rf)
	if err != nil {
		return fmt.Errorf("marshaling rule file: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing rule file: %w", err)
	}
	return nil
}
