// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/ppi-curator/internal/parse"
	"github.com/pdiddy/ppi-curator/internal/pipeline"
	"github.com/pdiddy/ppi-curator/internal/quality"
	"github.com/pdiddy/ppi-curator/internal/source"
	"github.com/pdiddy/ppi-curator/internal/stats"
	"github.com/pdiddy/ppi-curator/internal/store"
	"github.com/pdiddy/ppi-curator/pkg/types"
)

// qualityReportFile is written by the score command.
const qualityReportFile = "quality_statistics.json"

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Score protein quality and keep proteins above a threshold",
	Long: `Score reads the protein info file, scores each protein from its sequence
length, annotation, preferred name, and species, and writes the retained
proteins to filtered_proteins.csv with a quality_statistics.json report.

Use --dump-rules to write the active rule tables to a YAML file that can be
edited and passed back with --rules.`,
	RunE: runScore,
}

// scoreReport is the JSON document written by the score command.
type scoreReport struct {
	Input   parse.ReadStats `json:"input"`
	Quality quality.Stats   `json:"quality"`
}

func runScore(cmd *cobra.Command, args []string) error {
	threshold, _ := cmd.Flags().GetFloat64("threshold")
	rules, _ := cmd.Flags().GetString("rules")
	dump, _ := cmd.Flags().GetString("dump-rules")
	input, _ := cmd.Flags().GetString("input")
	batch, _ := cmd.Flags().GetInt("batch-size")

	cfg := types.DefaultQualityConfig(threshold)
	if err := applyRules(&cfg, rules); err != nil {
		return err
	}
	w := cmd.OutOrStdout()

	if dump != "" {
		if err := quality.WriteRuleFile(dump, cfg); err != nil {
			return err
		}
		fmt.Fprintf(w, "Rule tables written to %s\n", dump)
		return nil
	}

	scorer, err := quality.NewScorer(cfg)
	if err != nil {
		return err
	}
	path, err := source.Resolve(viper.GetString("data_dir"), input, source.ProteinInfo)
	if err != nil {
		return err
	}
	kept, qs, rs, err := pipeline.ScoreProteins(path, scorer, batch)
	if err != nil {
		return err
	}

	outDir := viper.GetString("output_dir")
	if err := ensureDir(outDir); err != nil {
		return err
	}
	if err := store.WriteProteinsCSV(filepath.Join(outDir, store.ProteinsFile), kept); err != nil {
		return err
	}
	if err := store.WriteJSON(filepath.Join(outDir, qualityReportFile), scoreReport{Input: rs, Quality: qs}); err != nil {
		return err
	}

	printQuality(w, qs, rs)
	fmt.Fprintf(w, "\nWrote %s and %s to %s\n", store.ProteinsFile, qualityReportFile, outDir)
	return nil
}

func printQuality(w io.Writer, qs quality.Stats, rs parse.ReadStats) {
	fmt.Fprintf(w, "Proteins: %s scored, %s retained (%s) at threshold %.2f\n",
		humanize.Comma(int64(qs.Initial)), humanize.Comma(int64(qs.Retained)),
		stats.FormatPercent(qs.RetentionRate), qs.Threshold)
	if rs.Malformed > 0 {
		fmt.Fprintf(w, "Malformed lines skipped: %s\n", humanize.Comma(int64(rs.Malformed)))
	}
	s := qs.Scores
	fmt.Fprintf(w, "Score: mean %.3f, std %.3f, min %.3f, max %.3f\n", s.Mean, s.Std, s.Min, s.Max)

	c := qs.Categories
	fmt.Fprintf(w, "Categories: high %s, medium %s, low %s, very low %s\n",
		humanize.Comma(int64(c.High)), humanize.Comma(int64(c.Medium)),
		humanize.Comma(int64(c.Low)), humanize.Comma(int64(c.VeryLow)))

	if len(qs.TopSpecies) == 0 {
		return
	}
	fmt.Fprintf(w, "\n%-10s  %10s  %10s  %10s\n", "Species", "Proteins", "Mean", "Length")
	for _, sp := range qs.TopSpecies {
		fmt.Fprintf(w, "%-10d  %10s  %10.3f  %10.1f\n",
			sp.SpeciesID, humanize.Comma(int64(sp.Count)), sp.MeanScore, sp.MeanLength)
	}
}

func init() {
	scoreCmd.Flags().Float64("threshold", types.DefaultStandaloneQualityThreshold, "minimum quality score to retain a protein")
	scoreCmd.Flags().String("rules", "", "YAML file overriding the annotation and species rule tables")
	scoreCmd.Flags().String("dump-rules", "", "write the active rule tables to this YAML file and exit")
	scoreCmd.Flags().String("input", "", "protein info file (default: newest *protein.info.* in --data-dir)")
	scoreCmd.Flags().Int("batch-size", types.DefaultProteinBatchSize, "protein records per batch")

	rootCmd.AddCommand(scoreCmd)
}
