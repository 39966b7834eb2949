package numeric

import (
	"math"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/Iron-Ham/flightdash/internal/errors"
	"github.com/Iron-Ham/flightdash/internal/series"
)

func TestPercentile(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		p      float64
		want   float64
	}{
		{"interpolated median", []float64{1, 2, 3, 4}, 0.5, 2.5},
		{"unsorted input", []float64{4, 1, 3, 2}, 0.5, 2.5},
		{"minimum", []float64{5, 1, 9}, 0, 1},
		{"maximum", []float64{5, 1, 9}, 1, 9},
		{"p95 of 0..100", seq(0, 100), 0.95, 95},
		{"single value", []float64{7}, 0.3, 7},
		{"empty", nil, 0.5, 0},
		{"p clamped high", []float64{1, 2}, 3, 2},
		{"p clamped low", []float64{1, 2}, -1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Percentile(tt.values, tt.p), 1e-9)
		})
	}
}

func TestPercentile_DoesNotMutateInput(t *testing.T) {
	in := []float64{3, 1, 2}
	Percentile(in, 0.5)
	assert.Equal(t, []float64{3, 1, 2}, in)
}

func TestPercentile_WithinBounds(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		values := rapid.SliceOfN(rapid.Float64Range(-1e6, 1e6), 1, 200).Draw(t, "values")
		p := rapid.Float64Range(0, 1).Draw(t, "p")

		got := Percentile(values, p)
		lo, hi := slices.Min(values), slices.Max(values)
		if got < lo-1e-9 || got > hi+1e-9 {
			t.Fatalf("Percentile(%v) = %v outside [%v, %v]", p, got, lo, hi)
		}
	})
}

func TestDomainOf(t *testing.T) {
	_, err := DomainOf(nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrEmptyInput)

	var empty *errors.EmptyInputError
	assert.ErrorAs(t, err, &empty)

	r, err := DomainOf([]float64{5})
	require.NoError(t, err)
	assert.Equal(t, series.Range{Min: 5, Max: 5}, r)

	r, err = DomainOf([]float64{3, -2, 10, 4})
	require.NoError(t, err)
	assert.Equal(t, series.Range{Min: -2, Max: 10}, r)

	assert.Equal(t, series.Range{Min: 0, Max: 1000}, DomainOr(nil, series.Range{Min: 0, Max: 1000}))
}

func TestMean(t *testing.T) {
	assert.Equal(t, 0.0, Mean(nil))
	assert.InDelta(t, 2.0, Mean([]float64{1, 2, 3}), 1e-12)
}

func TestRollingMean(t *testing.T) {
	values := []float64{100, 1, 2, 3, 4, 5}

	tests := []struct {
		name                 string
		index, radius, lo, hi int
		want                 float64
	}{
		{"interior", 3, 1, 0, 5, 3},
		{"clamped at end", 5, 2, 0, 5, 4},
		{"lower bound excludes undefined head", 1, 2, 1, 5, 2},
		{"without lower bound head is included", 1, 1, 0, 5, (100.0 + 1 + 2) / 3},
		{"upper bound", 4, 3, 1, 3, 2},
		{"radius zero", 2, 0, 0, 5, 2},
		{"empty window", 0, 0, 1, 5, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, RollingMean(values, tt.index, tt.radius, tt.lo, tt.hi), 1e-12)
		})
	}

	assert.Equal(t, 0.0, RollingMean(nil, 0, 1, 0, 0))
}

func TestSliderStep(t *testing.T) {
	tests := []struct {
		span float64
		want float64
	}{
		{10700, 50},
		{1000, 5},
		{200, 1},
		{1, 0.1},
		{0, 1},
		{-5, 1},
		{math.Inf(1), 1},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, SliderStep(tt.span), 1e-9, "span=%v", tt.span)
	}
}

func seq(from, to int) []float64 {
	out := make([]float64, 0, to-from+1)
	for i := from; i <= to; i++ {
		out = append(out, float64(i))
	}
	return out
}
