// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package source locates STRING snapshot files in a data directory and
// opens them for streaming, decompressing gzip files on the fly.
package source

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/klauspost/compress/gzip"
)

// Input names one of the snapshot files the pipeline reads.
type Input string

const (
	ProteinInfo       Input = "protein-info"
	DetailedLinks     Input = "detailed-links"
	Links             Input = "links"
	ClusterInfo       Input = "cluster-info"
	ClusterMembership Input = "cluster-membership"
	ClusterTree       Input = "cluster-tree"
)

// Patterns maps each input to the glob that discovers it below the data
// directory. STRING names files by version, e.g.
// "9606.protein.info.v12.0.txt.gz".
var Patterns = map[Input]string{
	ProteinInfo:       "**/*protein.info.*.txt*",
	DetailedLinks:     "**/*protein.links.detailed.*.txt*",
	Links:             "**/*protein.links.v*.txt*",
	ClusterInfo:       "**/*clusters.info.*.txt*",
	ClusterMembership: "**/*clusters.proteins.*.txt*",
	ClusterTree:       "**/*clusters.tree.*.txt*",
}

// stems marks where the STRING file name starts inside a base name. The
// text before it is the species prefix, e.g. "9606." or "" for the
// all-species files.
var stems = map[Input]string{
	ProteinInfo:       "protein.info.",
	DetailedLinks:     "protein.links.detailed.",
	Links:             "protein.links.v",
	ClusterInfo:       "clusters.info.",
	ClusterMembership: "clusters.proteins.",
	ClusterTree:       "clusters.tree.",
}

var versionRe = regexp.MustCompile(`\.v(\d+)(?:\.(\d+))?`)

// ErrMissingInput is matched by every MissingInputError.
var ErrMissingInput = errors.New("missing input")

// MissingInputError reports that a required snapshot file could not be found.
type MissingInputError struct {
	Name    Input
	Dir     string
	Pattern string
}

func (e *MissingInputError) Error() string {
	if e.Dir == "" {
		return fmt.Sprintf("missing %s input: %s does not exist", e.Name, e.Pattern)
	}
	return fmt.Sprintf("missing %s input: no file matching %q in %s", e.Name, e.Pattern, e.Dir)
}

func (e *MissingInputError) Unwrap() error { return ErrMissingInput }

// ErrAmbiguousInput is matched by every AmbiguousInputError.
var ErrAmbiguousInput = errors.New("ambiguous input")

// AmbiguousInputError reports files of more than one species matching the
// same input. Prefixes lists the species prefixes found, "" standing for
// the all-species file.
type AmbiguousInputError struct {
	Name     Input
	Dir      string
	Prefixes []string
}

func (e *AmbiguousInputError) Error() string {
	return fmt.Sprintf("ambiguous %s input in %s: files for species prefixes %q; pass the file explicitly",
		e.Name, e.Dir, e.Prefixes)
}

func (e *AmbiguousInputError) Unwrap() error { return ErrAmbiguousInput }

// candidate is one file matching an input pattern.
type candidate struct {
	path         string
	prefix       string
	major, minor int
}

func newCandidate(in Input, path string) candidate {
	base := filepath.Base(filepath.FromSlash(path))
	c := candidate{path: path, major: -1, minor: -1}
	if i := strings.Index(base, stems[in]); i > 0 {
		c.prefix = strings.TrimSuffix(base[:i], ".")
	}
	if m := versionRe.FindStringSubmatch(base); m != nil {
		c.major, _ = strconv.Atoi(m[1])
		if m[2] != "" {
			c.minor, _ = strconv.Atoi(m[2])
		}
	}
	return c
}

// newer orders candidates by release number, then by path.
func (c candidate) newer(o candidate) bool {
	if c.major != o.major {
		return c.major > o.major
	}
	if c.minor != o.minor {
		return c.minor > o.minor
	}
	return c.path > o.path
}

// Locate finds the file for in below dir. When several releases match, the
// highest version number wins ("v10.5" over "v9.1"). Files of different
// species prefixes are never mixed: finding more than one prefix is an
// AmbiguousInputError.
func Locate(dir string, in Input) (string, error) {
	pattern, ok := Patterns[in]
	if !ok {
		return "", fmt.Errorf("unknown input %q", in)
	}
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return "", &MissingInputError{Name: in, Dir: dir, Pattern: pattern}
	}

	matches, err := doublestar.Glob(os.DirFS(dir), pattern, doublestar.WithFilesOnly())
	if err != nil {
		return "", fmt.Errorf("globbing %s in %s: %w", pattern, dir, err)
	}
	if len(matches) == 0 {
		return "", &MissingInputError{Name: in, Dir: dir, Pattern: pattern}
	}

	prefixes := make(map[string]struct{})
	var best candidate
	for i, m := range matches {
		c := newCandidate(in, m)
		prefixes[c.prefix] = struct{}{}
		if i == 0 || c.newer(best) {
			best = c
		}
	}
	if len(prefixes) > 1 {
		found := make([]string, 0, len(prefixes))
		for p := range prefixes {
			found = append(found, p)
		}
		sort.Strings(found)
		return "", &AmbiguousInputError{Name: in, Dir: dir, Prefixes: found}
	}
	return filepath.Join(dir, filepath.FromSlash(best.path)), nil
}

// Resolve returns override when set and present on disk, and otherwise
// locates in below dir.
func Resolve(dir, override string, in Input) (string, error) {
	if override == "" {
		return Locate(dir, in)
	}
	if _, err := os.Stat(override); err != nil {
		return "", &MissingInputError{Name: in, Pattern: override}
	}
	return override, nil
}

type gzipFile struct {
	*gzip.Reader
	f *os.File
}

func (g *gzipFile) Close() error {
	return errors.Join(g.Reader.Close(), g.f.Close())
}

// Open opens path for reading. Files ending in ".gz" are decompressed
// transparently.
func Open(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	if !strings.HasSuffix(path, ".gz") {
		return f, nil
	}
	zr, err := gzip.NewReader(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("reading gzip header of %s: %w", path, err)
	}
	return &gzipFile{Reader: zr, f: f}, nil
}
