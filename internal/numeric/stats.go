package numeric

import (
	"math"
	"slices"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/Iron-Ham/flightdash/internal/errors"
	"github.com/Iron-Ham/flightdash/internal/series"
)

// Percentile returns the p-quantile of values using linear interpolation
// between closest ranks over a sorted copy. p is clamped to [0, 1].
// An empty input yields 0.
func Percentile(values []float64, p float64) float64 {
	n := len(values)
	if n == 0 {
		return 0
	}
	if math.IsNaN(p) {
		p = 0
	}
	p = math.Max(0, math.Min(1, p))

	sorted := slices.Clone(values)
	slices.Sort(sorted)

	h := float64(n-1) * p
	lo := int(math.Floor(h))
	hi := int(math.Ceil(h))
	if lo == hi {
		return sorted[lo]
	}
	return sorted[lo] + (h-float64(lo))*(sorted[hi]-sorted[lo])
}

// DomainOf returns the min/max range of values. It fails with
// *errors.EmptyInputError on empty input so callers pick a fallback
// explicitly.
func DomainOf(values []float64) (series.Range, error) {
	if len(values) == 0 {
		return series.Range{}, errors.NewEmptyInputError("domainOf")
	}
	return series.Range{Min: floats.Min(values), Max: floats.Max(values)}, nil
}

// DomainOr returns DomainOf(values), or fallback when values is empty.
func DomainOr(values []float64, fallback series.Range) series.Range {
	r, err := DomainOf(values)
	if err != nil {
		return fallback
	}
	return r
}

// Mean returns the arithmetic mean, or 0 for an empty input.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return stat.Mean(values, nil)
}

// RollingMean returns the mean of series[lo..hi] inclusive where
// lo = max(lowerBound, index-radius) and hi = min(upperBound, len-1, index+radius).
// lowerBound excludes leading elements whose value is undefined (for example
// the first element of a velocity-derived series). An empty window yields 0.
func RollingMean(values []float64, index, radius, lowerBound, upperBound int) float64 {
	if len(values) == 0 || radius < 0 {
		return 0
	}
	lo := max(lowerBound, index-radius, 0)
	hi := min(upperBound, len(values)-1, index+radius)
	if lo > hi {
		return 0
	}
	return stat.Mean(values[lo:hi+1], nil)
}

// SliderStep derives a control step for a range span: roughly span/200,
// rounded to one significant digit, never below 0.1. Non-positive or
// non-finite spans use a step of 1.
func SliderStep(span float64) float64 {
	if math.IsNaN(span) || math.IsInf(span, 0) || span <= 0 {
		return 1
	}
	raw := span / 200
	pow10 := math.Pow(10, math.Floor(math.Log10(raw)))
	return math.Max(0.1, math.Round(raw/pow10)*pow10)
}
