// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/pdiddy/ppi-curator/internal/filter"
	"github.com/pdiddy/ppi-curator/internal/hierarchy"
	"github.com/pdiddy/ppi-curator/internal/parse"
	"github.com/pdiddy/ppi-curator/internal/quality"
	"github.com/pdiddy/ppi-curator/internal/source"
	"github.com/pdiddy/ppi-curator/pkg/types"
)

func readInput[T any](path string, kind parse.Kind, fn parse.Func[T], batchSize int, sink func([]T) error) (parse.ReadStats, error) {
	rc, err := source.Open(path)
	if err != nil {
		return parse.ReadStats{Kind: kind}, err
	}
	defer rc.Close()
	return parse.ReadBatches(rc, kind, fn, batchSize, sink)
}

// ScoreProteins streams the protein info file at path through a quality
// filter and returns the retained, scored records.
func ScoreProteins(path string, scorer *quality.Scorer, batchSize int) ([]types.ProteinRecord, quality.Stats, parse.ReadStats, error) {
	f := quality.NewFilter(scorer)
	var kept []types.ProteinRecord
	rs, err := readInput(path, parse.KindProteinInfo, parse.ParseProteinInfo, batchSize, func(batch []types.ProteinRecord) error {
		kept = append(kept, f.Add(batch)...)
		return nil
	})
	if err != nil {
		return nil, quality.Stats{}, rs, fmt.Errorf("scoring proteins: %w", err)
	}
	return kept, f.Stats(), rs, nil
}

// FilterInteractions streams the links file at path through the confidence
// and protein-membership filter. detailed selects the ten-column layout.
func FilterInteractions(path string, detailed bool, valid types.IDSet, threshold float64, batchSize int) ([]types.InteractionRecord, filter.Stats, parse.ReadStats, error) {
	f, err := filter.New(valid, threshold)
	if err != nil {
		return nil, filter.Stats{}, parse.ReadStats{}, err
	}
	var fn parse.Func[types.InteractionRecord] = parse.ParseLink
	kind := parse.KindLink
	if detailed {
		kind, fn = parse.KindInteraction, parse.ParseInteraction
	}
	rs, err := readInput(path, kind, fn, batchSize, func(batch []types.InteractionRecord) error {
		f.Add(batch)
		return nil
	})
	if err != nil {
		return nil, filter.Stats{}, rs, fmt.Errorf("filtering interactions: %w", err)
	}
	kept, st := f.Result()
	return kept, st, rs, nil
}

// ClusterData holds the optional cluster inputs. Fields of files that were
// not found are nil, and Missing explains each absence.
type ClusterData struct {
	Info       []types.ClusterNode
	Membership *hierarchy.Membership
	Forest     *hierarchy.Forest
	Files      []InputFile
	Missing    []string
}

// LoadClusters reads the cluster info, membership, and tree files. A
// missing file is not an error; it is recorded in Missing.
func LoadClusters(dataDir string, inputs types.InputPaths) (ClusterData, error) {
	var cd ClusterData

	locate := func(in source.Input, override string) (string, bool, error) {
		path, err := source.Resolve(dataDir, override, in)
		if errors.Is(err, source.ErrMissingInput) {
			cd.Files = append(cd.Files, InputFile{Input: in})
			cd.Missing = append(cd.Missing, err.Error())
			return "", false, nil
		}
		return path, err == nil, err
	}
	record := func(in source.Input, path string, rs parse.ReadStats) {
		cd.Files = append(cd.Files, InputFile{Input: in, File: filepath.Base(path), Found: true, Read: rs})
	}

	path, ok, err := locate(source.ClusterInfo, inputs.ClusterInfo)
	if err != nil {
		return cd, err
	}
	if ok {
		info, rs, err := readAll(path, parse.KindClusterInfo, parse.ParseClusterInfo)
		if err != nil {
			return cd, err
		}
		cd.Info = info
		record(source.ClusterInfo, path, rs)
	}

	path, ok, err = locate(source.ClusterMembership, inputs.ClusterMembership)
	if err != nil {
		return cd, err
	}
	if ok {
		rows, rs, err := readAll(path, parse.KindClusterMembership, parse.ParseMembership)
		if err != nil {
			return cd, err
		}
		cd.Membership = hierarchy.NewMembership(rows)
		record(source.ClusterMembership, path, rs)
	}

	path, ok, err = locate(source.ClusterTree, inputs.ClusterTree)
	if err != nil {
		return cd, err
	}
	if ok {
		edges, rs, err := readAll(path, parse.KindClusterTree, parse.ParseTreeEdge)
		if err != nil {
			return cd, err
		}
		cd.Forest = hierarchy.NewForest(edges)
		record(source.ClusterTree, path, rs)
	}
	return cd, nil
}

func readAll[T any](path string, kind parse.Kind, fn parse.Func[T]) ([]T, parse.ReadStats, error) {
	rc, err := source.Open(path)
	if err != nil {
		return nil, parse.ReadStats{Kind: kind}, err
	}
	defer rc.Close()
	out, rs, err := parse.ReadAll(rc, kind, fn)
	if err != nil {
		return nil, rs, fmt.Errorf("loading %s: %w", kind, err)
	}
	return out, rs, nil
}
