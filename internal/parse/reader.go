// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package parse

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

const (
	// DefaultBatchSize is used when the caller passes a non-positive size.
	DefaultBatchSize = 10000

	// maxSamples bounds the malformed-line reasons kept in ReadStats.
	maxSamples = 5

	maxLineBytes = 16 * 1024 * 1024
)

// ReadStats counts the lines of one input file.
type ReadStats struct {
	Kind Kind `json:"kind" yaml:"kind"`

	// Lines counts data lines (header and blank lines excluded).
	Lines int `json:"lines" yaml:"lines"`

	Parsed    int `json:"parsed" yaml:"parsed"`
	Malformed int `json:"malformed" yaml:"malformed"`

	// Samples keeps the first few malformed-line reasons.
	Samples []string `json:"malformed_samples,omitempty" yaml:"malformed_samples,omitempty"`
}

// Func parses one line into a record.
type Func[T any] = func(line string) (T, error)

// ReadBatches streams r line by line, skips the header line, parses each
// data line with parseFn, and hands parsed records to fn in batches of at
// most batchSize. Malformed lines are counted and skipped; any other error
// from parseFn, fn, or the reader aborts the read. Each batch is a fresh
// slice that fn may retain.
func ReadBatches[T any](r io.Reader, kind Kind, parseFn Func[T], batchSize int, fn func([]T) error) (ReadStats, error) {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	st := ReadStats{Kind: kind}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	batch := make([]T, 0, batchSize)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := fn(batch); err != nil {
			return err
		}
		batch = make([]T, 0, batchSize)
		return nil
	}

	lineNo := 0
	for sc.Scan() {
		lineNo++
		if lineNo == 1 {
			continue
		}
		line := sc.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		st.Lines++

		rec, err := parseFn(line)
		if err != nil {
			var me *MalformedRecordError
			if !errors.As(err, &me) {
				return st, fmt.Errorf("%s line %d: %w", kind, lineNo, err)
			}
			me.Line = lineNo
			st.Malformed++
			if len(st.Samples) < maxSamples {
				st.Samples = append(st.Samples, me.Error())
			}
			continue
		}
		st.Parsed++
		batch = append(batch, rec)
		if len(batch) >= batchSize {
			if err := flush(); err != nil {
				return st, err
			}
		}
	}
	if err := sc.Err(); err != nil {
		return st, fmt.Errorf("reading %s input: %w", kind, err)
	}
	if err := flush(); err != nil {
		return st, err
	}
	return st, nil
}

// ReadAll reads every record of r into memory. Use it only for inputs whose
// size is bounded, such as cluster metadata.
func ReadAll[T any](r io.Reader, kind Kind, parseFn Func[T]) ([]T, ReadStats, error) {
	var all []T
	st, err := ReadBatches(r, kind, parseFn, DefaultBatchSize, func(batch []T) error {
		all = append(all, batch...)
		return nil
	})
	return all, st, err
}
