// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Quality thresholds differ per call site: the standalone scorer is stricter
// than the end-to-end pipeline, which relies on connectivity reduction as a
// second filter.
const (
	DefaultStandaloneQualityThreshold = 0.5
	DefaultPipelineQualityThreshold   = 0.4
)

// Confidence thresholds for the basic links file and the detailed links file.
const (
	DefaultBasicConfidence    = 0.95
	DefaultDetailedConfidence = 0.7
)

// Batch sizes for streaming inputs.
const (
	DefaultProteinBatchSize     = 10000
	DefaultInteractionBatchSize = 50000
)

// KeywordRule adjusts the annotation score by Delta when Keyword occurs in
// the annotation (case-insensitive substring match).
type KeywordRule struct {
	Keyword string  `json:"keyword" yaml:"keyword"`
	Delta   float64 `json:"delta" yaml:"delta"`
}

// LengthBonus adds Bonus to the annotation score when the annotation is
// longer than MinChars characters.
type LengthBonus struct {
	MinChars int     `json:"min_chars" yaml:"min_chars"`
	Bonus    float64 `json:"bonus" yaml:"bonus"`
}

// LengthLimits bounds the sequence length score. Outside [Min, Max] the
// score is 0; inside [OptimalMin, OptimalMax] it is 1.
type LengthLimits struct {
	Min        int `json:"min_length" yaml:"min_length"`
	Max        int `json:"max_length" yaml:"max_length"`
	OptimalMin int `json:"optimal_min" yaml:"optimal_min"`
	OptimalMax int `json:"optimal_max" yaml:"optimal_max"`
}

// QualityWeights combines the sub-scores into the overall score. The
// weights sum to 1 so the overall score stays in [0,1].
type QualityWeights struct {
	Length     float64 `json:"length" yaml:"length"`
	Annotation float64 `json:"annotation" yaml:"annotation"`
	Name       float64 `json:"name" yaml:"name"`
	Species    float64 `json:"species" yaml:"species"`
}

// QualityConfig holds settings for protein quality scoring and filtering.
type QualityConfig struct {
	// Threshold is the minimum overall score a protein needs to be retained.
	Threshold float64 `json:"threshold" yaml:"threshold"`

	Length  LengthLimits   `json:"length" yaml:"length"`
	Weights QualityWeights `json:"weights" yaml:"weights"`

	AnnotationBase       float64       `json:"annotation_base" yaml:"annotation_base"`
	EmptyAnnotationScore float64       `json:"empty_annotation_score" yaml:"empty_annotation_score"`
	AnnotationRules      []KeywordRule `json:"annotation_rules" yaml:"annotation_rules"`

	// LongAnnotationBonuses are checked in order; the first match applies.
	LongAnnotationBonuses []LengthBonus `json:"long_annotation_bonuses" yaml:"long_annotation_bonuses"`

	NameBase       float64 `json:"name_base" yaml:"name_base"`
	EmptyNameScore float64 `json:"empty_name_score" yaml:"empty_name_score"`

	// GeneSymbolPattern matches compact gene symbols such as "acsa" or
	// "hsp70". It is applied to the lower-cased name.
	GeneSymbolPattern string  `json:"gene_symbol_pattern" yaml:"gene_symbol_pattern"`
	GeneSymbolBonus   float64 `json:"gene_symbol_bonus" yaml:"gene_symbol_bonus"`

	// AccessionPattern matches generic accession-style names such as "abc123.1".
	AccessionPattern string  `json:"accession_pattern" yaml:"accession_pattern"`
	AccessionPenalty float64 `json:"accession_penalty" yaml:"accession_penalty"`

	// SpeciesScores maps NCBI taxonomy ids of model organisms to scores.
	SpeciesScores       map[int]float64 `json:"species_scores" yaml:"species_scores"`
	DefaultSpeciesScore float64         `json:"default_species_score" yaml:"default_species_score"`
}

// DefaultAnnotationRules returns the keyword table used for annotation
// scoring: low-quality markers, well-characterized markers, and markers of
// purely computational predictions.
func DefaultAnnotationRules() []KeywordRule {
	var rules []KeywordRule
	for _, k := range []string{
		"hypothetical protein", "uncharacterized protein", "putative", "fragment",
		"incomplete", "too short", "missing start", "missing stop", "partial", "truncated",
	} {
		rules = append(rules, KeywordRule{Keyword: k, Delta: -0.15})
	}
	for _, k := range []string{
		"characterized", "crystal structure", "experimentally verified", "well-studied",
		"enzyme", "kinase", "ligase", "reductase", "transferase", "hydrolase",
	} {
		rules = append(rules, KeywordRule{Keyword: k, Delta: 0.2})
	}
	for _, k := range []string{
		"derived by automated computational analysis", "gene prediction method",
		"protein homology", "genemark", "similarity",
	} {
		rules = append(rules, KeywordRule{Keyword: k, Delta: -0.05})
	}
	return rules
}

// DefaultSpeciesScores returns the model-organism score table.
func DefaultSpeciesScores() map[int]float64 {
	return map[int]float64{
		9606:   1.0, // Homo sapiens
		10090:  1.0, // Mus musculus
		7227:   0.9, // Drosophila melanogaster
		6239:   0.9, // Caenorhabditis elegans
		3702:   0.9, // Arabidopsis thaliana
		4932:   0.9, // Saccharomyces cerevisiae
		511145: 0.8, // Escherichia coli
		83333:  0.8, // Escherichia coli K-12
	}
}

// DefaultQualityConfig returns the scoring configuration with the given
// retention threshold.
func DefaultQualityConfig(threshold float64) QualityConfig {
	return QualityConfig{
		Threshold: threshold,
		Length: LengthLimits{
			Min:        50,
			Max:        5000,
			OptimalMin: 100,
			OptimalMax: 1000,
		},
		Weights: QualityWeights{
			Length:     0.3,
			Annotation: 0.4,
			Name:       0.2,
			Species:    0.1,
		},
		AnnotationBase:       0.5,
		EmptyAnnotationScore: 0.1,
		AnnotationRules:      DefaultAnnotationRules(),
		LongAnnotationBonuses: []LengthBonus{
			{MinChars: 200, Bonus: 0.15},
			{MinChars: 100, Bonus: 0.1},
		},
		NameBase:            0.5,
		EmptyNameScore:      0.1,
		GeneSymbolPattern:   `^[a-z]{2,5}\d*[a-z]*$`,
		GeneSymbolBonus:     0.2,
		AccessionPattern:    `^[a-z]+\d+\.\d+$`,
		AccessionPenalty:    -0.1,
		SpeciesScores:       DefaultSpeciesScores(),
		DefaultSpeciesScore: 0.6,
	}
}

// FilterConfig holds settings for the interaction filter.
type FilterConfig struct {
	// ConfidenceThreshold is the minimum combined score in [0,1].
	ConfidenceThreshold float64 `json:"confidence_threshold" yaml:"confidence_threshold"`

	// Detailed selects the protein.links.detailed input (ten columns) over
	// the basic protein.links input (three columns).
	Detailed bool `json:"detailed" yaml:"detailed"`
}

// GroupingMode selects how expert groups are derived from cluster data.
type GroupingMode string

const (
	GroupingHierarchical GroupingMode = "hierarchical"
	GroupingFlat         GroupingMode = "flat"
	GroupingRandom       GroupingMode = "random"
)

// GroupingConfig holds settings for expert-group derivation.
type GroupingConfig struct {
	// Mode is the requested strategy. Missing cluster data degrades
	// hierarchical to flat, and flat to random.
	Mode GroupingMode `json:"mode" yaml:"mode"`

	// MinClusterSize is the minimum member count for a flat-mode cluster.
	MinClusterSize int `json:"min_cluster_size" yaml:"min_cluster_size"`

	// MaxExperts caps the number of flat-mode clusters and sets the number
	// of random groups.
	MaxExperts int `json:"max_experts" yaml:"max_experts"`

	// TargetDepth is the forest depth whose nodes become hierarchical
	// groups. Roots are depth 0.
	TargetDepth int `json:"target_depth" yaml:"target_depth"`

	// Seed drives the random fallback partition.
	Seed uint64 `json:"seed" yaml:"seed"`
}

// DefaultGroupingConfig returns the grouping defaults.
func DefaultGroupingConfig() GroupingConfig {
	return GroupingConfig{
		Mode:           GroupingHierarchical,
		MinClusterSize: 100,
		MaxExperts:     50,
		TargetDepth:    2,
		Seed:           42,
	}
}

// InputPaths overrides file discovery in the data directory. Empty fields
// are located by pattern.
type InputPaths struct {
	ProteinInfo       string `json:"protein_info,omitempty" yaml:"protein_info,omitempty"`
	Interactions      string `json:"interactions,omitempty" yaml:"interactions,omitempty"`
	ClusterInfo       string `json:"cluster_info,omitempty" yaml:"cluster_info,omitempty"`
	ClusterMembership string `json:"cluster_membership,omitempty" yaml:"cluster_membership,omitempty"`
	ClusterTree       string `json:"cluster_tree,omitempty" yaml:"cluster_tree,omitempty"`
}

// CurateConfig groups the settings for an end-to-end curation run.
type CurateConfig struct {
	// DataDir holds the STRING snapshot files.
	DataDir string `json:"data_dir" yaml:"data_dir"`

	// OutputDir receives the exported tables and statistics.
	OutputDir string `json:"output_dir" yaml:"output_dir"`

	// DBPath is the SQLite run store. Empty disables persistence.
	DBPath string `json:"db_path,omitempty" yaml:"db_path,omitempty"`

	// MetricsFile receives Prometheus textfile metrics. Empty disables it.
	MetricsFile string `json:"metrics_file,omitempty" yaml:"metrics_file,omitempty"`

	ProteinBatchSize     int `json:"protein_batch_size" yaml:"protein_batch_size"`
	InteractionBatchSize int `json:"interaction_batch_size" yaml:"interaction_batch_size"`

	Inputs   InputPaths     `json:"inputs" yaml:"inputs"`
	Quality  QualityConfig  `json:"quality" yaml:"quality"`
	Filter   FilterConfig   `json:"filter" yaml:"filter"`
	Grouping GroupingConfig `json:"grouping" yaml:"grouping"`
}

// DefaultCurateConfig returns the configuration of the detailed pipeline.
func DefaultCurateConfig() CurateConfig {
	return CurateConfig{
		DataDir:              "data",
		OutputDir:            "data/filtered",
		ProteinBatchSize:     DefaultProteinBatchSize,
		InteractionBatchSize: DefaultInteractionBatchSize,
		Quality:              DefaultQualityConfig(DefaultPipelineQualityThreshold),
		Filter: FilterConfig{
			ConfidenceThreshold: DefaultDetailedConfidence,
			Detailed:            true,
		},
		Grouping: DefaultGroupingConfig(),
	}
}
