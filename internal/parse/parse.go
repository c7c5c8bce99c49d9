// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package parse converts delimited STRING text lines into typed records.
// Info and cluster files are tab-separated; links files are
// whitespace-separated. Lines with too few fields or unparsable numbers are
// rejected, never padded or coerced.
package parse

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/pdiddy/ppi-curator/pkg/types"
)

// Kind identifies the layout of an input file.
type Kind string

const (
	KindProteinInfo       Kind = "protein-info"
	KindInteraction       Kind = "detailed-interaction"
	KindLink              Kind = "interaction"
	KindClusterInfo       Kind = "cluster-info"
	KindClusterMembership Kind = "cluster-membership"
	KindClusterTree       Kind = "cluster-tree"
)

// MinFields returns the minimum number of fields a line of kind must have.
func MinFields(kind Kind) int {
	switch kind {
	case KindProteinInfo:
		return 4
	case KindInteraction:
		return 10
	case KindLink, KindClusterInfo, KindClusterTree:
		return 3
	case KindClusterMembership:
		return 2
	}
	return 0
}

// ErrMalformedRecord is matched by every MalformedRecordError.
var ErrMalformedRecord = errors.New("malformed record")

// MalformedRecordError describes a line that failed field-count or type
// checks. Line is 1-based and counts the header; it is 0 when the line was
// parsed outside a file.
type MalformedRecordError struct {
	Kind   Kind
	Line   int
	Reason string
}

func (e *MalformedRecordError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s line %d: %s", e.Kind, e.Line, e.Reason)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Reason)
}

func (e *MalformedRecordError) Unwrap() error { return ErrMalformedRecord }

func malformed(kind Kind, format string, args ...any) error {
	return &MalformedRecordError{Kind: kind, Reason: fmt.Sprintf(format, args...)}
}

func tabFields(line string) []string {
	return strings.Split(strings.TrimRight(line, "\r\n"), "\t")
}

func checkFields(kind Kind, fields []string) error {
	if need := MinFields(kind); len(fields) < need {
		return malformed(kind, "got %d fields, need at least %d", len(fields), need)
	}
	return nil
}

func requireID(kind Kind, field, value string) error {
	if strings.TrimSpace(value) == "" {
		return malformed(kind, "empty %s", field)
	}
	return nil
}

// SpeciesID extracts the taxonomy id from a STRING protein identifier
// ("9606.ENSP..." yields 9606). It returns types.UnknownSpecies when the
// prefix is not an integer.
func SpeciesID(proteinID string) int {
	prefix, _, _ := strings.Cut(proteinID, ".")
	id, err := strconv.Atoi(prefix)
	if err != nil {
		return types.UnknownSpecies
	}
	return id
}

// ParseProteinInfo parses
// protein_id<TAB>protein_name<TAB>protein_size<TAB>annotation.
func ParseProteinInfo(line string) (types.ProteinRecord, error) {
	const kind = KindProteinInfo
	fields := tabFields(line)
	if err := checkFields(kind, fields); err != nil {
		return types.ProteinRecord{}, err
	}
	id := strings.TrimSpace(fields[0])
	if err := requireID(kind, "protein_id", id); err != nil {
		return types.ProteinRecord{}, err
	}
	size, err := strconv.Atoi(strings.TrimSpace(fields[2]))
	if err != nil {
		return types.ProteinRecord{}, malformed(kind, "protein_size %q is not an integer", fields[2])
	}
	if size <= 0 {
		return types.ProteinRecord{}, malformed(kind, "protein_size %d is not positive", size)
	}
	return types.ProteinRecord{
		ID:         id,
		Name:       strings.TrimSpace(fields[1]),
		Size:       size,
		Annotation: strings.TrimSpace(fields[3]),
		SpeciesID:  SpeciesID(id),
	}, nil
}

// rawScore parses a 0-1000 integer score.
func rawScore(kind Kind, column, value string) (int, error) {
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, malformed(kind, "%s %q is not an integer", column, value)
	}
	if n < 0 || n > types.RawScale {
		return 0, malformed(kind, "%s %d outside 0-%d", column, n, types.RawScale)
	}
	return n, nil
}

// ParseInteraction parses a detailed links line:
// protein1 protein2 neighborhood fusion cooccurence coexpression experimental
// database textmining combined_score.
func ParseInteraction(line string) (types.InteractionRecord, error) {
	const kind = KindInteraction
	fields := strings.Fields(line)
	if err := checkFields(kind, fields); err != nil {
		return types.InteractionRecord{}, err
	}

	evidence := make([]float64, types.NumChannels)
	for c := range types.NumChannels {
		raw, err := rawScore(kind, types.Channel(c).String(), fields[2+c])
		if err != nil {
			return types.InteractionRecord{}, err
		}
		evidence[c] = types.Normalize(raw)
	}
	combined, err := rawScore(kind, "combined_score", fields[9])
	if err != nil {
		return types.InteractionRecord{}, err
	}

	return types.InteractionRecord{
		Protein1: fields[0],
		Protein2: fields[1],
		Evidence: evidence,
		Combined: types.Normalize(combined),
	}, nil
}

// ParseLink parses a basic links line: protein1 protein2 combined_score.
func ParseLink(line string) (types.InteractionRecord, error) {
	const kind = KindLink
	fields := strings.Fields(line)
	if err := checkFields(kind, fields); err != nil {
		return types.InteractionRecord{}, err
	}
	combined, err := rawScore(kind, "combined_score", fields[2])
	if err != nil {
		return types.InteractionRecord{}, err
	}
	return types.InteractionRecord{
		Protein1: fields[0],
		Protein2: fields[1],
		Combined: types.Normalize(combined),
	}, nil
}

// ParseClusterInfo parses
// cluster_id<TAB>cluster_name<TAB>cluster_description[<TAB>cluster_size].
// A missing size column yields Size 0; a present but non-integer one is
// rejected.
func ParseClusterInfo(line string) (types.ClusterNode, error) {
	const kind = KindClusterInfo
	fields := tabFields(line)
	if err := checkFields(kind, fields); err != nil {
		return types.ClusterNode{}, err
	}
	id := strings.TrimSpace(fields[0])
	if err := requireID(kind, "cluster_id", id); err != nil {
		return types.ClusterNode{}, err
	}
	node := types.ClusterNode{
		ID:          id,
		Name:        strings.TrimSpace(fields[1]),
		Description: strings.TrimSpace(fields[2]),
	}
	if len(fields) > 3 && strings.TrimSpace(fields[3]) != "" {
		size, err := strconv.Atoi(strings.TrimSpace(fields[3]))
		if err != nil || size < 0 {
			return types.ClusterNode{}, malformed(kind, "cluster_size %q is not a non-negative integer", fields[3])
		}
		node.Size = size
	}
	return node, nil
}

// ParseMembership parses cluster_id<TAB>protein_id.
func ParseMembership(line string) (types.ClusterMembership, error) {
	const kind = KindClusterMembership
	fields := tabFields(line)
	if err := checkFields(kind, fields); err != nil {
		return types.ClusterMembership{}, err
	}
	m := types.ClusterMembership{
		ClusterID: strings.TrimSpace(fields[0]),
		ProteinID: strings.TrimSpace(fields[1]),
	}
	if err := requireID(kind, "cluster_id", m.ClusterID); err != nil {
		return types.ClusterMembership{}, err
	}
	if err := requireID(kind, "protein_id", m.ProteinID); err != nil {
		return types.ClusterMembership{}, err
	}
	return m, nil
}

// ParseTreeEdge parses child_cluster_id<TAB>parent_cluster_id<TAB>distance.
func ParseTreeEdge(line string) (types.ClusterEdge, error) {
	const kind = KindClusterTree
	fields := tabFields(line)
	if err := checkFields(kind, fields); err != nil {
		return types.ClusterEdge{}, err
	}
	e := types.ClusterEdge{
		Child:  strings.TrimSpace(fields[0]),
		Parent: strings.TrimSpace(fields[1]),
	}
	if err := requireID(kind, "child_cluster_id", e.Child); err != nil {
		return types.ClusterEdge{}, err
	}
	if err := requireID(kind, "parent_cluster_id", e.Parent); err != nil {
		return types.ClusterEdge{}, err
	}
	d, err := strconv.ParseFloat(strings.TrimSpace(fields[2]), 64)
	if err != nil || math.IsNaN(d) || math.IsInf(d, 0) {
		return types.ClusterEdge{}, malformed(kind, "distance %q is not a number", fields[2])
	}
	if d < 0 {
		return types.ClusterEdge{}, malformed(kind, "distance %v is negative", d)
	}
	e.Distance = d
	return e, nil
}
