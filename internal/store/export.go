// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/ppi-curator/internal/pipeline"
	"github.com/pdiddy/ppi-curator/pkg/types"
)

// Artifact file names inside the output directory.
const (
	ProteinsFile       = "filtered_proteins.csv"
	InteractionsFile   = "filtered_interactions.csv"
	GroupsFile         = "expert_groups.json"
	StatisticsJSONFile = "statistics.json"
	StatisticsYAMLFile = "statistics.yaml"
)

// WriteArtifacts writes every artifact of res into dir and returns the
// paths written.
func WriteArtifacts(dir string, res *pipeline.Result) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}
	steps := []struct {
		name  string
		write func(string) error
	}{
		{ProteinsFile, func(p string) error { return WriteProteinsCSV(p, res.Proteins) }},
		{InteractionsFile, func(p string) error { return WriteInteractionsCSV(p, res.Interactions) }},
		{GroupsFile, func(p string) error { return WriteGroupsJSON(p, res.Groups) }},
		{StatisticsJSONFile, func(p string) error { return WriteJSON(p, res.Stats) }},
		{StatisticsYAMLFile, func(p string) error { return WriteYAML(p, res.Stats) }},
	}
	var written []string
	for _, s := range steps {
		path := filepath.Join(dir, s.name)
		if err := s.write(path); err != nil {
			return written, err
		}
		written = append(written, path)
	}
	return written, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func writeCSV(path string, header []string, rows func(yield func([]string) error) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := rows(w.Write); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}

// WriteProteinsCSV writes the protein table with identity fields and scores.
func WriteProteinsCSV(path string, proteins []types.ProteinRecord) error {
	header := []string{
		"protein_id", "protein_name", "protein_size", "annotation", "species_id",
		"length_score", "annotation_score", "name_score", "species_score", "quality_score",
	}
	return writeCSV(path, header, func(yield func([]string) error) error {
		for _, p := range proteins {
			q := p.Scores
			err := yield([]string{
				p.ID, p.Name, strconv.Itoa(p.Size), p.Annotation, strconv.Itoa(p.SpeciesID),
				formatFloat(q.Length), formatFloat(q.Annotation), formatFloat(q.Name),
				formatFloat(q.Species), formatFloat(q.Overall),
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// WriteInteractionsCSV writes the interaction table. The seven channel
// columns are included when every record carries evidence.
func WriteInteractionsCSV(path string, interactions []types.InteractionRecord) error {
	detailed := len(interactions) > 0
	for _, rec := range interactions {
		if !rec.Detailed() {
			detailed = false
			break
		}
	}

	header := []string{"protein1", "protein2"}
	if detailed {
		for _, c := range types.Channels() {
			header = append(header, c.String())
		}
	}
	header = append(header, "combined_score")

	return writeCSV(path, header, func(yield func([]string) error) error {
		for _, rec := range interactions {
			row := []string{rec.Protein1, rec.Protein2}
			if detailed {
				for _, v := range rec.Evidence {
					row = append(row, formatFloat(v))
				}
			}
			row = append(row, formatFloat(rec.Combined))
			if err := yield(row); err != nil {
				return err
			}
		}
		return nil
	})
}

// WriteGroupsJSON writes the expert groups as an object of group name to
// member list. Keys are sorted by the encoder.
func WriteGroupsJSON(path string, groups []types.ExpertGroup) error {
	m := make(map[string][]string, len(groups))
	for _, g := range groups {
		m[g.Name] = g.Proteins
	}
	return WriteJSON(path, m)
}

// ReadGroupsJSON reads a file written by WriteGroupsJSON. Groups are
// returned in name order.
func ReadGroupsJSON(path string) ([]types.ExpertGroup, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading expert groups: %w", err)
	}
	var m map[string][]string
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing expert groups %s: %w", path, err)
	}
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	out := make([]types.ExpertGroup, 0, len(names))
	for _, name := range names {
		out = append(out, types.ExpertGroup{Name: name, Proteins: m[name]})
	}
	return out, nil
}

// WriteJSON writes v as indented JSON.
func WriteJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// WriteYAML writes v as YAML.
func WriteYAML(path string, v any) error {
	data, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshaling YAML: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
