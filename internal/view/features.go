package view

import (
	"strings"

	"github.com/Iron-Ham/flightdash/internal/cursor"
	"github.com/Iron-Ham/flightdash/internal/numeric"
	"github.com/Iron-Ham/flightdash/internal/series"
)

// Mode says how feature contributions were summarized.
type Mode string

const (
	// ModePoint ranks features by their loss at the cursor.
	ModePoint Mode = "point"
	// ModeAggregate ranks features by mean loss over the time filter window.
	ModeAggregate Mode = "aggregate"
)

// FeatureScore is one ranked feature.
type FeatureScore struct {
	Feature string  `json:"feature"`
	Group   string  `json:"group,omitempty"`
	Value   float64 `json:"value"`
}

// TopFeaturesView is the derived top-contributors pane.
type TopFeaturesView struct {
	Status     Status         `json:"status"`
	Error      string         `json:"error,omitempty"`
	Mode       Mode           `json:"mode"`
	Cursor     *int           `json:"cursor,omitempty"`
	Window     *series.Range  `json:"window,omitempty"`
	Top        []FeatureScore `json:"top"`
	Other      float64        `json:"other"`
	OtherCount int            `json:"other_count"`
}

// TopFeatures ranks per-feature losses. With a cursor it uses the column at
// the cursor time; without one it averages each feature over the time filter
// window, or over the whole series when unfiltered.
func TopFeatures(raw Raw[series.FeatureMatrix], groups []series.FeatureGroup, snap cursor.Snapshot, opts Options) TopFeaturesView {
	status, msg, ok := baseStatus(raw, func(m series.FeatureMatrix) bool { return m.Empty() })
	if !ok {
		return TopFeaturesView{Status: status, Error: msg, Mode: modeFor(snap)}
	}

	m := raw.Value
	v := TopFeaturesView{Mode: modeFor(snap)}
	rows := make([]numeric.KeyValue, len(m.Features))

	if v.Mode == ModePoint {
		c := *snap.Cursor
		v.Cursor = &c
		col, found := columnOf(m.Time, c)
		if !found {
			v.Status = StatusEmpty
			return v
		}
		for f, name := range m.Features {
			rows[f] = numeric.KeyValue{Key: name, Value: m.Losses[f][col]}
		}
	} else {
		cols := windowColumns(m.Time, snap.TimeFilter)
		if len(cols) == 0 {
			v.Status = StatusEmpty
			v.Window = snap.TimeFilter
			return v
		}
		if snap.TimeFilter != nil {
			w := *snap.TimeFilter
			v.Window = &w
		}
		buf := make([]float64, len(cols))
		for f, name := range m.Features {
			for i, col := range cols {
				buf[i] = m.Losses[f][col]
			}
			rows[f] = numeric.KeyValue{Key: name, Value: numeric.Mean(buf)}
		}
	}

	top := numeric.TopNWithOther(rows, opts.TopN)
	v.Top = make([]FeatureScore, len(top.Top))
	for i, kv := range top.Top {
		v.Top[i] = FeatureScore{Feature: kv.Key, Group: GroupOf(kv.Key, groups), Value: kv.Value}
	}
	v.Other = top.OtherSum
	v.OtherCount = top.OtherCount
	v.Status = StatusReady
	return v
}

func modeFor(snap cursor.Snapshot) Mode {
	if snap.HasCursor() {
		return ModePoint
	}
	return ModeAggregate
}

// columnOf finds the matrix column whose time value is t. Matrices are
// usually indexed 0..T-1, so the direct index is checked first.
func columnOf(times []int, t int) (int, bool) {
	if t >= 0 && t < len(times) && times[t] == t {
		return t, true
	}
	for i, v := range times {
		if v == t {
			return i, true
		}
	}
	return 0, false
}

// windowColumns returns the indices of times inside the filter, in order.
func windowColumns(times []int, filter *series.Range) []int {
	cols := make([]int, 0, len(times))
	for i, t := range times {
		if series.InFilter(filter, float64(t)) {
			cols = append(cols, i)
		}
	}
	return cols
}

// GroupOf returns the subsystem a feature belongs to: the prefix before the
// first underscore, when it names a known group. With no groups, any prefix
// is accepted.
func GroupOf(feature string, groups []series.FeatureGroup) string {
	prefix, _, found := strings.Cut(feature, "_")
	if !found {
		return ""
	}
	if len(groups) == 0 {
		return prefix
	}
	for _, g := range groups {
		if g.Group == prefix {
			return prefix
		}
	}
	return ""
}
