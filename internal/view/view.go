// Package view derives what each dashboard pane renders from raw series and
// a cursor.Snapshot. Every adapter is a pure function: it never writes the
// store and never mutates its inputs, so the same inputs always produce the
// same view.
//
// Each derived view carries a Status distinguishing "still loading",
// "fetched but empty", "nothing passes the filters", "ready" and "failed".
package view

import (
	"fmt"

	"github.com/Iron-Ham/flightdash/internal/cursor"
	"github.com/Iron-Ham/flightdash/internal/errors"
	"github.com/Iron-Ham/flightdash/internal/series"
)

// Status is the render state of a derived view.
type Status int

const (
	// StatusLoading means the raw series has not been fetched yet.
	StatusLoading Status = iota
	// StatusNoData means the fetch succeeded but returned nothing.
	StatusNoData
	// StatusEmpty means data exists but nothing passes the current filters.
	StatusEmpty
	// StatusReady means the view has content to render.
	StatusReady
	// StatusFailed means the fetch failed; the view carries the message.
	StatusFailed
)

var statusNames = map[Status]string{
	StatusLoading: "loading",
	StatusNoData:  "no_data",
	StatusEmpty:   "empty",
	StatusReady:   "ready",
	StatusFailed:  "failed",
}

func (s Status) String() string {
	if n, ok := statusNames[s]; ok {
		return n
	}
	return "unknown"
}

// MarshalText encodes the status by name.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a status name.
func (s *Status) UnmarshalText(b []byte) error {
	for k, v := range statusNames {
		if v == string(b) {
			*s = k
			return nil
		}
	}
	return fmt.Errorf("unknown view status %q", string(b))
}

// Raw is the fetch state of one raw series.
type Raw[T any] struct {
	Value   T
	Fetched bool
	Err     error
}

// Pending returns a Raw that has not been fetched.
func Pending[T any]() Raw[T] { return Raw[T]{} }

// Loaded returns a successfully fetched Raw.
func Loaded[T any](v T) Raw[T] { return Raw[T]{Value: v, Fetched: true} }

// Failed returns a Raw whose fetch failed.
func Failed[T any](err error) Raw[T] { return Raw[T]{Fetched: true, Err: err} }

// baseStatus resolves the states that do not depend on filtering. The second
// result is false when the adapter should stop and return the status as is.
func baseStatus[T any](raw Raw[T], empty func(T) bool) (Status, string, bool) {
	switch {
	case raw.Err != nil:
		return StatusFailed, errors.UserMessage(raw.Err), false
	case !raw.Fetched:
		return StatusLoading, "", false
	case empty(raw.Value):
		return StatusNoData, "", false
	}
	return StatusReady, "", true
}

// Options tunes the adapters.
type Options struct {
	TopN           int     `json:"top_n"`
	Percentile     float64 `json:"percentile"`
	HeatmapColumns int     `json:"heatmap_columns"`
	ManeuverRadius int     `json:"maneuver_radius"`
}

// DefaultOptions returns the dashboard defaults.
func DefaultOptions() Options {
	return Options{
		TopN:           10,
		Percentile:     0.95,
		HeatmapColumns: 60,
		ManeuverRadius: 3,
	}
}

// Inputs are the raw series behind all four panes.
type Inputs struct {
	Trajectory Raw[series.Trajectory]
	Losses     Raw[series.LossSeries]
	Matrix     Raw[series.FeatureMatrix]
	Groups     []series.FeatureGroup
}

// Set holds every derived view for one snapshot.
type Set struct {
	Snapshot    cursor.Snapshot `json:"snapshot"`
	Trajectory  TrajectoryView  `json:"trajectory"`
	Loss        LossView        `json:"loss"`
	TopFeatures TopFeaturesView `json:"top_features"`
	Heatmap     HeatmapView     `json:"heatmap"`
}

// Derive runs every adapter against snap.
func Derive(in Inputs, snap cursor.Snapshot, opts Options) Set {
	return Set{
		Snapshot:    snap,
		Trajectory:  Trajectory(in.Trajectory, snap, opts),
		Loss:        Loss(in.Losses, snap, opts),
		TopFeatures: TopFeatures(in.Matrix, in.Groups, snap, opts),
		Heatmap:     Heatmap(in.Matrix, snap, opts),
	}
}
