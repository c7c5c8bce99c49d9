// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package fetch downloads STRING snapshot files into a data directory.
// Files already present are skipped, and each download is written to a
// temporary file first so an interrupted run never leaves a partial file
// that source.Locate would pick up.
package fetch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/pdiddy/ppi-curator/internal/source"
)

// Defaults for the STRING download host.
const (
	DefaultBaseURL   = "https://stringdb-downloads.org/download"
	DefaultVersion   = "12.0"
	DefaultUserAgent = "ppi-curator (STRING snapshot fetch)"
)

// fileStems maps each input to its STRING file name without version.
var fileStems = map[source.Input]string{
	source.ProteinInfo:       "protein.info",
	source.DetailedLinks:     "protein.links.detailed",
	source.Links:             "protein.links",
	source.ClusterInfo:       "clusters.info",
	source.ClusterMembership: "clusters.proteins",
	source.ClusterTree:       "clusters.tree",
}

// DefaultInputs are the files the curate command reads.
var DefaultInputs = []source.Input{
	source.ProteinInfo,
	source.DetailedLinks,
	source.ClusterInfo,
	source.ClusterMembership,
	source.ClusterTree,
}

// Config controls a fetch run.
type Config struct {
	BaseURL string
	Version string

	// Species restricts the download to one NCBI taxon, e.g. "9606".
	// Empty fetches the all-species files.
	Species string

	Inputs     []source.Input
	UserAgent  string
	Delay      time.Duration
	MaxRetries int
}

// DefaultConfig returns the settings for the current STRING release.
func DefaultConfig() Config {
	return Config{
		BaseURL:   DefaultBaseURL,
		Version:   DefaultVersion,
		Inputs:    DefaultInputs,
		UserAgent: DefaultUserAgent,
		Delay:     time.Second,
	}
}

// FileName returns the STRING file name of in, e.g.
// "9606.protein.info.v12.0.txt.gz".
func FileName(in source.Input, version, species string) (string, error) {
	stem, ok := fileStems[in]
	if !ok {
		return "", fmt.Errorf("no STRING file for input %q", in)
	}
	name := stem + ".v" + version + ".txt.gz"
	if species != "" {
		name = species + "." + name
	}
	return name, nil
}

// URL returns the download location of in. Species files live in a
// directory named after the versioned stem.
func URL(cfg Config, in source.Input) (string, error) {
	name, err := FileName(in, cfg.Version, cfg.Species)
	if err != nil {
		return "", err
	}
	if cfg.Species == "" {
		return cfg.BaseURL + "/" + name, nil
	}
	return cfg.BaseURL + "/" + fileStems[in] + ".v" + cfg.Version + "/" + name, nil
}

// FileResult is the outcome for one file.
type FileResult struct {
	Input   source.Input
	Path    string
	Bytes   int64
	Skipped bool
	Err     error
}

// Result summarizes a fetch run.
type Result struct {
	Downloaded int
	Skipped    int
	Failed     int
	Files      []FileResult
}

// Total returns the number of files processed.
func (r Result) Total() int {
	return r.Downloaded + r.Skipped + r.Failed
}

// HasFailures reports whether any download failed.
func (r Result) HasFailures() bool {
	return r.Failed > 0
}

// Fetcher downloads snapshot files.
type Fetcher struct {
	client *http.Client
	cfg    Config
	logger *slog.Logger
}

// New returns a Fetcher. A nil client uses http.DefaultClient and a nil
// logger uses slog.Default.
func New(client *http.Client, cfg Config, logger *slog.Logger) *Fetcher {
	if client == nil {
		client = http.DefaultClient
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Fetcher{client: client, cfg: cfg, logger: logger}
}

// Fetch downloads every configured input into dir, printing one status line
// per file to w. It continues after individual failures; only a canceled
// context stops the run early.
func (f *Fetcher) Fetch(ctx context.Context, dir string, w io.Writer) (Result, error) {
	var res Result
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return res, fmt.Errorf("creating data directory: %w", err)
	}

	for i, in := range f.cfg.Inputs {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		fr := f.fetchOne(ctx, dir, in, i > 0)
		res.Files = append(res.Files, fr)
		switch {
		case fr.Err != nil:
			res.Failed++
			fmt.Fprintf(w, "failed:  %s (%v)\n", in, fr.Err)
		case fr.Skipped:
			res.Skipped++
			fmt.Fprintf(w, "skipped: %s (exists)\n", fr.Path)
		default:
			res.Downloaded++
			fmt.Fprintf(w, "fetched: %s (%s)\n", fr.Path, humanize.Bytes(uint64(fr.Bytes)))
		}
	}
	fmt.Fprintf(w, "\nFetch summary: %d downloaded, %d skipped, %d failed (total: %d)\n",
		res.Downloaded, res.Skipped, res.Failed, res.Total())
	return res, ctx.Err()
}

func (f *Fetcher) fetchOne(ctx context.Context, dir string, in source.Input, delay bool) FileResult {
	fr := FileResult{Input: in}
	name, err := FileName(in, f.cfg.Version, f.cfg.Species)
	if err != nil {
		fr.Err = err
		return fr
	}
	fr.Path = filepath.Join(dir, name)
	if _, err := os.Stat(fr.Path); err == nil {
		fr.Skipped = true
		return fr
	}

	if delay && f.cfg.Delay > 0 {
		select {
		case <-ctx.Done():
			fr.Err = ctx.Err()
			return fr
		case <-time.After(f.cfg.Delay):
		}
	}

	url, err := URL(f.cfg, in)
	if err != nil {
		fr.Err = err
		return fr
	}
	f.logger.Info("downloading", "input", in, "url", url)
	fr.Bytes, fr.Err = f.download(ctx, url, fr.Path)
	return fr
}

// download fetches url to destPath through a temporary file.
func (f *Fetcher) download(ctx context.Context, url, destPath string) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", f.cfg.UserAgent)

	resp, err := doWithRetry(ctx, f.client, req, f.cfg.MaxRetries, f.logger)
	if err != nil {
		return 0, fmt.Errorf("HTTP request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("HTTP %d from %s", resp.StatusCode, url)
	}

	tmpFile, err := os.CreateTemp(filepath.Dir(destPath), ".fetch-*.tmp")
	if err != nil {
		return 0, fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	n, copyErr := io.Copy(tmpFile, resp.Body)
	closeErr := tmpFile.Close()
	if copyErr != nil {
		os.Remove(tmpPath)
		return 0, fmt.Errorf("writing download: %w", copyErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return 0, fmt.Errorf("closing temp file: %w", closeErr)
	}
	if err := os.Rename(tmpPath, destPath); err != nil {
		os.Remove(tmpPath)
		return 0, fmt.Errorf("renaming temp file: %w", err)
	}
	return n, nil
}
