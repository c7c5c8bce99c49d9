// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestLocatePicksNewestVersion(t *testing.T) {
	for _, tt := range []struct {
		name  string
		files []string
		want  string
	}{
		{"minor release", []string{"protein.info.v11.5.txt", "protein.info.v12.0.txt"}, "protein.info.v12.0.txt"},
		{"numeric not lexical", []string{"protein.info.v9.1.txt", "protein.info.v10.5.txt"}, "protein.info.v10.5.txt"},
		{"minor numeric", []string{"protein.info.v12.9.txt", "protein.info.v12.10.txt"}, "protein.info.v12.10.txt"},
		{"species files", []string{"9606.protein.info.v9.1.txt.gz", "9606.protein.info.v12.0.txt.gz"}, "9606.protein.info.v12.0.txt.gz"},
		{"unversioned loses", []string{"protein.info.latest.txt", "protein.info.v1.0.txt"}, "protein.info.v1.0.txt"},
	} {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			for _, f := range tt.files {
				writeFile(t, filepath.Join(dir, f), "x")
			}
			writeFile(t, filepath.Join(dir, "protein.links.detailed.v99.0.txt"), "x")

			got, err := Locate(dir, ProteinInfo)
			require.NoError(t, err)
			assert.Equal(t, filepath.Join(dir, tt.want), got)
		})
	}
}

func TestLocateRejectsMixedSpecies(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "9606.protein.info.v12.0.txt.gz"), "x")
	writeFile(t, filepath.Join(dir, "511145.protein.info.v12.0.txt.gz"), "x")
	writeFile(t, filepath.Join(dir, "protein.info.v12.0.txt.gz"), "x")

	_, err := Locate(dir, ProteinInfo)
	require.ErrorIs(t, err, ErrAmbiguousInput)

	var ae *AmbiguousInputError
	require.True(t, errors.As(err, &ae))
	assert.Equal(t, []string{"", "511145", "9606"}, ae.Prefixes)
	assert.Equal(t, ProteinInfo, ae.Name)

	// An explicit file settles the choice.
	path := filepath.Join(dir, "9606.protein.info.v12.0.txt.gz")
	got, err := Resolve(dir, path, ProteinInfo)
	require.NoError(t, err)
	assert.Equal(t, path, got)
}

func TestLocateDistinguishesLinkFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "raw", "9606.protein.links.detailed.v12.0.txt.gz"), "x")
	writeFile(t, filepath.Join(dir, "raw", "9606.protein.links.v12.0.txt.gz"), "x")

	detailed, err := Locate(dir, DetailedLinks)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "raw", "9606.protein.links.detailed.v12.0.txt.gz"), detailed)

	basic, err := Locate(dir, Links)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "raw", "9606.protein.links.v12.0.txt.gz"), basic)
}

func TestLocateMissing(t *testing.T) {
	dir := t.TempDir()

	_, err := Locate(dir, ClusterTree)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingInput))

	var me *MissingInputError
	require.True(t, errors.As(err, &me))
	assert.Equal(t, ClusterTree, me.Name)
	assert.Equal(t, dir, me.Dir)

	_, err = Locate(filepath.Join(dir, "absent"), ProteinInfo)
	assert.ErrorIs(t, err, ErrMissingInput)
}

func TestResolveOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.tsv")
	writeFile(t, path, "x")

	got, err := Resolve(dir, path, ProteinInfo)
	require.NoError(t, err)
	assert.Equal(t, path, got)

	_, err = Resolve(dir, filepath.Join(dir, "nope.tsv"), ProteinInfo)
	assert.ErrorIs(t, err, ErrMissingInput)
}

func TestOpenPlain(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clusters.tree.v12.0.txt")
	writeFile(t, path, "header\nB\tA\t1\n")

	rc, err := Open(path)
	require.NoError(t, err)
	defer rc.Close()

	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "header\nB\tA\t1\n", string(data))
}

func TestOpenGzip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clusters.tree.v12.0.txt.gz")
	f, err := os.Create(path)
	require.NoError(t, err)
	zw := gzip.NewWriter(f)
	_, err = zw.Write([]byte("header\nB\tA\t1\n"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())

	rc, err := Open(path)
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, "header\nB\tA\t1\n", string(data))
}

func TestOpenMissing(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "nope.txt"))
	assert.Error(t, err)
}
