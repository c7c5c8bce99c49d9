// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package stats computes distribution summaries over numeric samples.
// Percentiles use linear interpolation between order statistics with
// rank = p/100 * (n-1); the standard deviation is the population one.
package stats

import (
	"fmt"
	"math"
	"sort"
	"strconv"
)

// Percentile is one requested percentile and its value.
type Percentile struct {
	P     float64 `json:"p" yaml:"p"`
	Value float64 `json:"value" yaml:"value"`
}

// Summary describes a sample distribution.
type Summary struct {
	Count       int          `json:"count" yaml:"count"`
	Mean        float64      `json:"mean" yaml:"mean"`
	Std         float64      `json:"std" yaml:"std"`
	Min         float64      `json:"min" yaml:"min"`
	Max         float64      `json:"max" yaml:"max"`
	Percentiles []Percentile `json:"percentiles,omitempty" yaml:"percentiles,omitempty"`
}

// Percentile returns the stored value for p and whether it was computed.
func (s Summary) Percentile(p float64) (float64, bool) {
	for _, pc := range s.Percentiles {
		if pc.P == p {
			return pc.Value, true
		}
	}
	return 0, false
}

// Common percentile sets.
var (
	QualityPercentiles   = []float64{10, 25, 50, 75, 90, 95}
	ComponentPercentiles = []float64{25, 50, 75, 90, 95, 99}
	ClusterPercentiles   = []float64{10, 25, 50, 75, 90, 95, 99}
)

// Summarize computes the summary of values and the requested percentiles.
// values is not modified. An empty sample yields a zero Summary.
func Summarize(values []float64, percentiles ...float64) Summary {
	if len(values) == 0 {
		return Summary{}
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	var sum float64
	for _, v := range sorted {
		sum += v
	}
	mean := sum / float64(len(sorted))

	var sq float64
	for _, v := range sorted {
		d := v - mean
		sq += d * d
	}

	s := Summary{
		Count: len(sorted),
		Mean:  mean,
		Std:   math.Sqrt(sq / float64(len(sorted))),
		Min:   sorted[0],
		Max:   sorted[len(sorted)-1],
	}
	for _, p := range percentiles {
		s.Percentiles = append(s.Percentiles, Percentile{P: p, Value: PercentileSorted(sorted, p)})
	}
	return s
}

// SummarizeInts is Summarize over integer samples.
func SummarizeInts(values []int, percentiles ...float64) Summary {
	f := make([]float64, len(values))
	for i, v := range values {
		f[i] = float64(v)
	}
	return Summarize(f, percentiles...)
}

// PercentileSorted returns the p-th percentile (0-100) of an ascending
// sample using linear interpolation. It returns 0 for an empty sample.
func PercentileSorted(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 100 {
		return sorted[n-1]
	}
	rank := p / 100 * float64(n-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo == hi {
		return sorted[lo]
	}
	frac := rank - float64(lo)
	return sorted[lo] + (sorted[hi]-sorted[lo])*frac
}

// Rate returns part/whole, or 0 when whole is zero.
func Rate(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return float64(part) / float64(whole)
}

// FormatPercent renders a rate such as 0.4567 as "45.7%".
func FormatPercent(rate float64) string {
	return strconv.FormatFloat(rate*100, 'f', 1, 64) + "%"
}

// String renders the summary on one line for status output.
func (s Summary) String() string {
	return fmt.Sprintf("n=%d mean=%.3f std=%.3f min=%.3f max=%.3f", s.Count, s.Mean, s.Std, s.Min, s.Max)
}
