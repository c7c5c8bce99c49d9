// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/ppi-curator/internal/store"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Re-export the artifacts of a stored run",
	Long: `Export reads a run from the SQLite run store (the latest one unless --run
is given) and writes its CSV tables, expert groups, and statistics to the
output directory. Use --list to show the stored runs.`,
	RunE: runExport,
}

func runExport(cmd *cobra.Command, args []string) error {
	runID, _ := cmd.Flags().GetString("run")
	list, _ := cmd.Flags().GetBool("list")

	dbPath := viper.GetString("db_path")
	if dbPath == "" {
		return fmt.Errorf("no run store configured: set --db")
	}
	if _, err := os.Stat(dbPath); err != nil {
		return fmt.Errorf("opening run store: %w", err)
	}
	s, err := store.Open(dbPath)
	if err != nil {
		return err
	}
	defer s.Close()

	ctx := context.Background()
	w := cmd.OutOrStdout()
	if list {
		return listRuns(ctx, s, w)
	}

	if runID == "" {
		latest, err := s.LatestRun(ctx)
		if err != nil {
			return err
		}
		runID = latest.ID
	}
	res, err := s.LoadRun(ctx, runID)
	if err != nil {
		return err
	}

	paths, err := store.WriteArtifacts(viper.GetString("output_dir"), res)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "Exported run %s:\n", runID)
	for _, p := range paths {
		fmt.Fprintf(w, "  %s\n", p)
	}
	return nil
}

func listRuns(ctx context.Context, s *store.Store, w io.Writer) error {
	runs, err := s.ListRuns(ctx)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(w, "No stored runs.")
		return nil
	}
	fmt.Fprintf(w, "%-36s  %-16s  %s\n", "Run", "Created", "Data dir")
	for _, r := range runs {
		fmt.Fprintf(w, "%-36s  %-16s  %s\n", r.ID, humanize.Time(r.CreatedAt), r.DataDir)
	}
	fmt.Fprintf(w, "\n%d runs\n", len(runs))
	return nil
}

func init() {
	exportCmd.Flags().String("run", "", "run id to export (default: latest)")
	exportCmd.Flags().Bool("list", false, "list stored runs instead of exporting")

	rootCmd.AddCommand(exportCmd)
}
