// Package series holds the dashboard's data model (ranges, trajectory points,
// loss series, feature-loss matrices) and the ingestion step that normalizes
// loosely shaped source payloads into those types.
package series

import (
	"fmt"
	"math"
)

// Range is an inclusive [Min, Max] interval used for filters and domains.
type Range struct {
	Min float64 `json:"min" yaml:"min"`
	Max float64 `json:"max" yaml:"max"`
}

// Ordered returns r with Min and Max swapped if needed.
func (r Range) Ordered() Range {
	if r.Min > r.Max {
		return Range{Min: r.Max, Max: r.Min}
	}
	return r
}

// Contains reports whether v lies in [Min, Max].
func (r Range) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

// Span returns Max - Min.
func (r Range) Span() float64 { return r.Max - r.Min }

// Midpoint returns floor((Min+Max)/2), the cursor re-homing position.
func (r Range) Midpoint() int {
	return int(math.Floor((r.Min + r.Max) / 2))
}

// Valid reports whether both bounds are finite.
func (r Range) Valid() bool {
	return !math.IsNaN(r.Min) && !math.IsNaN(r.Max) && !math.IsInf(r.Min, 0) && !math.IsInf(r.Max, 0)
}

func (r Range) String() string {
	return fmt.Sprintf("[%g, %g]", r.Min, r.Max)
}

// Ptr returns a pointer to a copy of r.
func (r Range) Ptr() *Range { return &r }

// InFilter reports whether v passes the optional filter; nil admits everything.
func InFilter(f *Range, v float64) bool {
	return f == nil || f.Contains(v)
}

// Dimension identifies a filterable axis.
type Dimension int

const (
	DimTime Dimension = iota
	DimAltitude
)

func (d Dimension) String() string {
	switch d {
	case DimTime:
		return "time"
	case DimAltitude:
		return "altitude"
	default:
		return "unknown"
	}
}

// ParseDimension maps "time"/"t" and "altitude"/"alt" to a Dimension.
func ParseDimension(s string) (Dimension, bool) {
	switch s {
	case "time", "t":
		return DimTime, true
	case "altitude", "alt":
		return DimAltitude, true
	}
	return 0, false
}

// TrajectoryPoint is one sample of the flight path. Alt is in feet.
type TrajectoryPoint struct {
	T   int     `json:"t" yaml:"t"`
	Lat float64 `json:"lat" yaml:"lat"`
	Lon float64 `json:"lon" yaml:"lon"`
	Alt float64 `json:"alt" yaml:"alt"`
}

// Trajectory is a time-ordered flight path where index equals time.
type Trajectory []TrajectoryPoint

// Altitudes returns the altitude column.
func (tr Trajectory) Altitudes() []float64 {
	out := make([]float64, len(tr))
	for i, p := range tr {
		out[i] = p.Alt
	}
	return out
}

// LossPoint is one sample of the average reconstruction loss.
type LossPoint struct {
	T     int     `json:"t"`
	Value float64 `json:"value"`
}

// LossSeries is a time-ordered loss series where index equals time.
type LossSeries []LossPoint

// Values returns the value column.
func (ls LossSeries) Values() []float64 {
	out := make([]float64, len(ls))
	for i, p := range ls {
		out[i] = p.Value
	}
	return out
}

// TimeDomain returns [0, len-1], the index domain of the series, or false
// when the series is empty.
func (ls LossSeries) TimeDomain() (Range, bool) {
	if len(ls) == 0 {
		return Range{}, false
	}
	return Range{Min: 0, Max: float64(len(ls) - 1)}, true
}

// FeatureMatrix maps each feature to a loss sequence aligned with Time.
// Invariant: len(Losses) == len(Features) and every row has len(Time) values.
type FeatureMatrix struct {
	Features []string    `json:"features"`
	Time     []int       `json:"time"`
	Losses   [][]float64 `json:"losses"`
}

// Len returns the number of time steps.
func (m FeatureMatrix) Len() int { return len(m.Time) }

// Empty reports whether the matrix has no features or no time steps.
func (m FeatureMatrix) Empty() bool { return len(m.Features) == 0 || len(m.Time) == 0 }

// FeatureGroup is subsystem metadata for a family of features.
type FeatureGroup struct {
	Group       string `json:"group" yaml:"group"`
	Color       string `json:"color,omitempty" yaml:"color,omitempty"`
	Description string `json:"description" yaml:"description"`
}
