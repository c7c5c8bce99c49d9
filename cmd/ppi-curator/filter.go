// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/ppi-curator/internal/filter"
	"github.com/pdiddy/ppi-curator/internal/parse"
	"github.com/pdiddy/ppi-curator/internal/pipeline"
	"github.com/pdiddy/ppi-curator/internal/quality"
	"github.com/pdiddy/ppi-curator/internal/source"
	"github.com/pdiddy/ppi-curator/internal/stats"
	"github.com/pdiddy/ppi-curator/internal/store"
	"github.com/pdiddy/ppi-curator/pkg/types"
)

// interactionReportFile is written by the filter command.
const interactionReportFile = "interaction_statistics.json"

var filterCmd = &cobra.Command{
	Use:   "filter",
	Short: "Keep high-confidence interactions between known proteins",
	Long: `Filter streams the interaction links file and keeps each interaction whose
combined score reaches --confidence and whose two proteins appear in the
protein info file. By default the three-column protein.links file is read
with a 0.95 threshold; --detailed reads the per-channel file instead.

Proteins can be pre-filtered with --quality-threshold (0 keeps every parsed
protein). Results go to filtered_interactions.csv and
interaction_statistics.json in the output directory.`,
	RunE: runFilter,
}

// filterReport is the JSON document written by the filter command.
type filterReport struct {
	Proteins     parse.ReadStats `json:"protein_input"`
	Links        parse.ReadStats `json:"links_input"`
	Valid        int             `json:"valid_proteins"`
	Interactions filter.Stats    `json:"interactions"`
}

func runFilter(cmd *cobra.Command, args []string) error {
	confidence, _ := cmd.Flags().GetFloat64("confidence")
	detailed, _ := cmd.Flags().GetBool("detailed")
	qualityThreshold, _ := cmd.Flags().GetFloat64("quality-threshold")
	proteinsPath, _ := cmd.Flags().GetString("proteins")
	linksPath, _ := cmd.Flags().GetString("links")
	batch, _ := cmd.Flags().GetInt("batch-size")

	if detailed && !cmd.Flags().Changed("confidence") {
		confidence = types.DefaultDetailedConfidence
	}

	dataDir := viper.GetString("data_dir")
	proteinsPath, err := source.Resolve(dataDir, proteinsPath, source.ProteinInfo)
	if err != nil {
		return err
	}
	linksInput := source.Links
	if detailed {
		linksInput = source.DetailedLinks
	}
	linksPath, err = source.Resolve(dataDir, linksPath, linksInput)
	if err != nil {
		return err
	}

	scorer, err := quality.NewScorer(types.DefaultQualityConfig(qualityThreshold))
	if err != nil {
		return err
	}
	proteins, _, prs, err := pipeline.ScoreProteins(proteinsPath, scorer, types.DefaultProteinBatchSize)
	if err != nil {
		return err
	}
	valid := types.NewIDSet()
	for _, p := range proteins {
		valid.Add(p.ID)
	}

	kept, fs, lrs, err := pipeline.FilterInteractions(linksPath, detailed, valid, confidence, batch)
	if err != nil {
		return err
	}

	outDir := viper.GetString("output_dir")
	if err := ensureDir(outDir); err != nil {
		return err
	}
	if err := store.WriteInteractionsCSV(filepath.Join(outDir, store.InteractionsFile), kept); err != nil {
		return err
	}
	report := filterReport{Proteins: prs, Links: lrs, Valid: len(valid), Interactions: fs}
	if err := store.WriteJSON(filepath.Join(outDir, interactionReportFile), report); err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Interactions: %s read, %s at confidence >= %.2f (raw %d), %s between known proteins\n",
		humanize.Comma(int64(fs.Raw)), humanize.Comma(int64(fs.AfterConfidence)), fs.Threshold,
		fs.RawThreshold, humanize.Comma(int64(fs.AfterProteins)))
	fmt.Fprintf(w, "Retention: %s confidence, %s proteins, %s overall\n",
		stats.FormatPercent(fs.ConfidenceRetention), stats.FormatPercent(fs.ProteinRetention),
		stats.FormatPercent(fs.OverallRetention))
	if n := prs.Malformed + lrs.Malformed; n > 0 {
		fmt.Fprintf(w, "Malformed lines skipped: %s\n", humanize.Comma(int64(n)))
	}
	fmt.Fprintf(w, "\nWrote %s and %s to %s\n", store.InteractionsFile, interactionReportFile, outDir)
	return nil
}

func init() {
	filterCmd.Flags().Float64("confidence", types.DefaultBasicConfidence, "minimum combined score in [0,1] (detailed default 0.7)")
	filterCmd.Flags().Bool("detailed", false, "read the detailed per-channel links file")
	filterCmd.Flags().Float64("quality-threshold", 0, "minimum protein quality score for the valid protein set")
	filterCmd.Flags().String("proteins", "", "protein info file (default: newest *protein.info.* in --data-dir)")
	filterCmd.Flags().String("links", "", "links file (default: newest matching file in --data-dir)")
	filterCmd.Flags().Int("batch-size", types.DefaultInteractionBatchSize, "interaction records per batch")

	rootCmd.AddCommand(filterCmd)
}
